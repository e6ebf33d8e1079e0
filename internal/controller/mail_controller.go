// internal/controller/mail_controller.go
package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/leadmasterhq/leadmaster-backend/internal/config"
	"github.com/leadmasterhq/leadmaster-backend/internal/service"
	"github.com/leadmasterhq/leadmaster-backend/internal/smtp"
)

// GatewayFactory builds an SMTP gateway from request-supplied credentials.
// The one-off relay endpoint configures its transport per call, exactly as
// the UI expects.
type GatewayFactory func(cfg config.SMTPConfig) smtp.Gateway

// MailController serves the health, relay and validation endpoints.
type MailController struct {
	NewGateway GatewayFactory
	Validator  service.RecipientValidator
}

// Health reports readiness to the UI.
func (c *MailController) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "online",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type sendEmailRequest struct {
	Config struct {
		SMTPHost  string `json:"smtpHost"`
		SMTPPort  int    `json:"smtpPort"`
		SMTPUser  string `json:"smtpUser"`
		SMTPPass  string `json:"smtpPass"`
		FromName  string `json:"fromName"`
		FromEmail string `json:"fromEmail"`
	} `json:"config"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// SendEmail relays one message using credentials supplied in the request.
// The SMTP connection is verified before the send is attempted.
func (c *MailController) SendEmail(w http.ResponseWriter, r *http.Request) {
	var body sendEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeSendError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Config.SMTPHost == "" || body.To == "" || body.Subject == "" || body.HTML == "" {
		writeSendError(w, http.StatusBadRequest, "missing required fields (config, to, subject, html)")
		return
	}

	cfg := config.SMTPConfig{
		Host:      body.Config.SMTPHost,
		Port:      body.Config.SMTPPort,
		User:      body.Config.SMTPUser,
		Password:  body.Config.SMTPPass,
		FromName:  body.Config.FromName,
		FromEmail: body.Config.FromEmail,
		Timeout:   30 * time.Second,
	}
	gateway := c.NewGateway(cfg)

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	if err := gateway.Verify(ctx); err != nil {
		writeSendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	messageID, err := gateway.Send(ctx, smtp.Message{
		FromName:  cfg.FromName,
		FromEmail: cfg.FromEmail,
		To:        body.To,
		Subject:   body.Subject,
		HTML:      body.HTML,
	})
	if err != nil {
		writeSendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":   true,
		"messageId": messageID,
	})
}

// ValidateEmail checks one address (syntax + MX).
func (c *MailController) ValidateEmail(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{
		"isValid": c.Validator.ValidateEmail(r.Context(), body.Email),
	})
}

// ValidateBatch checks a list of addresses; the response preserves the
// input order.
func (c *MailController) ValidateBatch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Emails []string `json:"emails"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	results := c.Validator.ValidateBatch(r.Context(), body.Emails)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"results": results,
	})
}

func writeSendError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": msg,
	})
}
