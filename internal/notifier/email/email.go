// Package email implements an SMTP-based email notifier
package email

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/quantfarer/vigil/internal/core"
)

// Email implements the Notifier interface for SMTP email
type Email struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       []string
}

// New creates a new Email notifier
func New(host string, port int, username, password, from string, to []string) (*Email, error) {
	if host == "" || from == "" || len(to) == 0 {
		return nil, fmt.Errorf("email: host, from, and to are required")
	}
	return &Email{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		to:       to,
	}, nil
}

func (e *Email) Name() string { return "email" }

func (e *Email) Send(rec core.SellSignalRecord) error {
	subject := fmt.Sprintf("Vigil Sell Signal: %s %s", rec.Symbol, rec.Kind.Label())
	body := e.formatRecord(rec)
	return e.sendEmail(subject, body)
}

func (e *Email) SendDigest(recs []core.SellSignalRecord) error {
	if len(recs) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Vigil Digest: %d Sell Signals", len(recs))

	var sb strings.Builder
	sb.WriteString("<html><body>")
	sb.WriteString("<h2>Vigil Sell Signals</h2>")
	sb.WriteString(fmt.Sprintf("<p>Generated at: %s</p>", time.Now().Format("2006-01-02 15:04:05")))
	sb.WriteString("<hr>")

	for _, rec := range recs {
		sb.WriteString(e.formatRecordHTML(rec))
		sb.WriteString("<hr>")
	}

	sb.WriteString("</body></html>")

	return e.sendEmail(subject, sb.String())
}

func (e *Email) formatRecord(rec core.SellSignalRecord) string {
	return fmt.Sprintf(`
Vigil Sell Signal

Symbol: %s
Signal: %s
Strategy: %s
P&L: %+.2f%%
Combined Score: %.1f
Reasoning: %s
Time: %s
`,
		rec.Symbol,
		rec.Kind.Label(),
		rec.Strategy,
		rec.PnLPct,
		rec.CombinedScore,
		rec.Reasoning,
		rec.SignalAt.Format("2006-01-02 15:04:05"),
	)
}

// kindColor picks the accent color for a signal kind. Hard exits are
// red, protective exits orange, everything else grey.
func kindColor(kind core.SellKind) string {
	switch kind {
	case core.SellStopLoss:
		return "#dc3545"
	case core.SellTakeProfit:
		return "#28a745"
	case core.SellTrailingStop, core.SellBreakevenStop:
		return "#fd7e14"
	case core.SellTimeStop:
		return "#6c757d"
	default:
		return "#dc3545"
	}
}

func (e *Email) formatRecordHTML(rec core.SellSignalRecord) string {
	return fmt.Sprintf(`
<div style="margin: 10px 0;">
  <h3 style="color: %s;">%s - %s</h3>
  <p><strong>Strategy:</strong> %s</p>
  <p><strong>P&amp;L:</strong> %+.2f%%</p>
  <p><strong>Combined Score:</strong> %.1f</p>
  <p><strong>Reasoning:</strong> %s</p>
  <p><small>%s</small></p>
</div>
`,
		kindColor(rec.Kind),
		rec.Symbol,
		rec.Kind.Label(),
		rec.Strategy,
		rec.PnLPct,
		rec.CombinedScore,
		rec.Reasoning,
		rec.SignalAt.Format("2006-01-02 15:04:05"),
	)
}

func (e *Email) sendEmail(subject, body string) error {
	addr := fmt.Sprintf("%s:%d", e.host, e.port)

	var auth smtp.Auth
	if e.username != "" {
		auth = smtp.PlainAuth("", e.username, e.password, e.host)
	}

	contentType := "text/plain"
	if strings.Contains(body, "<html>") {
		contentType = "text/html"
	}

	msg := fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: %s; charset=UTF-8\r\n"+
		"\r\n"+
		"%s",
		e.from,
		strings.Join(e.to, ","),
		subject,
		contentType,
		body,
	)

	return smtp.SendMail(addr, auth, e.from, e.to, []byte(msg))
}
