// Package response writes the API's JSON envelopes. Success payloads
// ride under "data" with a timestamp; errors surface the core.Error
// code so clients can branch without parsing messages.
package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/quantfarer/vigil/internal/core"
)

// Envelope wraps a success payload.
type Envelope struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

// Meta carries response metadata.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
}

// ErrorBody wraps an error payload.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail is the client-facing error shape.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   string `json:"cause,omitempty"`
}

// JSON writes data wrapped in the success envelope.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, Envelope{
		Data: data,
		Meta: Meta{Timestamp: time.Now().UTC()},
	})
}

// Error writes err as an error envelope. Errors without a typed code
// degrade to INTERNAL_ERROR without leaking detail.
func Error(w http.ResponseWriter, status int, err error) {
	detail := ErrorDetail{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
	}

	var typed *core.Error
	if errors.As(err, &typed) {
		detail.Code = typed.Code
		detail.Message = typed.Message
		if typed.Cause != nil {
			detail.Cause = typed.Cause.Error()
		}
	}

	write(w, status, ErrorBody{Error: detail})
}

func write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
