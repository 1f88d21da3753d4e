package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lolinsolito-lab/VoxLux-sub002/internal/config"
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/models"
)

// Mailer is the notification sender used by fulfillment and activation.
// Every caller decides whether a send failure is fatal; in those flows it
// never is.
type Mailer interface {
	SendPurchaseConfirmation(email, courseID string, amountCents int64, currency string) error
	SendWelcome(email, courseID string) error
	SendBonusDelivery(email string, bonus *models.BonusProduct) error
}

// BrevoService sends transactional email through the Brevo API with a fixed
// sender identity. No retries: delivery reliability is the provider's
// concern and the purchase flows treat sends as best-effort.
type BrevoService struct {
	apiKey     string
	fromEmail  string
	fromName   string
	endpoint   string
	httpClient *http.Client
}

// NewBrevoService creates a Brevo mailer from configuration.
func NewBrevoService(cfg *config.Config) *BrevoService {
	return &BrevoService{
		apiKey:    cfg.BrevoAPIKey,
		fromEmail: cfg.BrevoFromEmail,
		fromName:  cfg.BrevoFromName,
		endpoint:  "https://api.brevo.com/v3/smtp/email",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// EmailRequest represents Brevo email request structure
type EmailRequest struct {
	Sender      EmailSender `json:"sender"`
	To          []EmailTo   `json:"to"`
	Subject     string      `json:"subject"`
	HTMLContent string      `json:"htmlContent"`
	TextContent string      `json:"textContent"`
}

type EmailSender struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type EmailTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// SendPurchaseConfirmation sends the post-payment confirmation email.
func (s *BrevoService) SendPurchaseConfirmation(email, courseID string, amountCents int64, currency string) error {
	return s.send(email, RenderPurchaseConfirmation(courseID, amountCents, currency))
}

// SendWelcome sends the one-per-activation welcome email.
func (s *BrevoService) SendWelcome(email, courseID string) error {
	return s.send(email, RenderWelcome(courseID))
}

// SendBonusDelivery sends the standalone bonus delivery email.
func (s *BrevoService) SendBonusDelivery(email string, bonus *models.BonusProduct) error {
	return s.send(email, RenderBonusDelivery(bonus.Title, bonus.ContentURL))
}

// send issues one HTTP POST to Brevo. A non-2xx response raises an error
// carrying the provider's response body.
func (s *BrevoService) send(to string, content EmailContent) error {
	emailReq := EmailRequest{
		Sender: EmailSender{
			Name:  s.fromName,
			Email: s.fromEmail,
		},
		To:          []EmailTo{{Email: to}},
		Subject:     content.Subject,
		HTMLContent: content.HTML,
		TextContent: content.Text,
	}

	jsonData, err := json.Marshal(emailReq)
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	httpReq, err := http.NewRequest("POST", s.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", s.apiKey)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("brevo API error: status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
