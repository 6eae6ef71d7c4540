package api

import (
	"net/http"

	"github.com/quantfarer/vigil/internal/api/response"
	"github.com/quantfarer/vigil/internal/calendar"
)

type healthReport struct {
	Status   string          `json:"status"`
	Market   calendar.Status `json:"market"`
	Holdings int             `json:"holdings"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := healthReport{
		Status: "ok",
		Market: s.deps.Calendar.Status(),
	}

	if holdings, err := s.deps.Store.Holdings(r.Context()); err == nil {
		report.Holdings = len(holdings)
	}

	response.JSON(w, http.StatusOK, report)
}
