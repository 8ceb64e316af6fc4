// internal/mailer/sendgrid.go
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"mentoloop-waitlist/internal/common/config"
	"mentoloop-waitlist/internal/common/logger"
)

const sendGridBaseURL = "https://api.sendgrid.com"

// SendGridMailer sends mail through the SendGrid v3 API with a bearer API
// key.
type SendGridMailer struct {
	apiKey      string
	fromAddress string
	fromName    string
	baseURL     string
	httpClient  *http.Client
	logger      logger.Logger
}

func NewSendGrid(cfg config.EmailConfig, log logger.Logger) *SendGridMailer {
	return &SendGridMailer{
		apiKey:      cfg.SendGrid.APIKey,
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		baseURL:     sendGridBaseURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		logger:      log.WithFields(map[string]interface{}{"provider": "sendgrid"}),
	}
}

// NewSendGridWithBaseURL points the client at a different endpoint (tests).
func NewSendGridWithBaseURL(cfg config.EmailConfig, baseURL string, log logger.Logger) *SendGridMailer {
	m := NewSendGrid(cfg, log)
	m.baseURL = baseURL
	return m
}

type sendGridPayload struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Content          []sendGridContent         `json:"content"`
}

type sendGridPersonalization struct {
	To      []sendGridAddress `json:"to"`
	Subject string            `json:"subject"`
}

type sendGridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	payload := sendGridPayload{
		Personalizations: []sendGridPersonalization{
			{To: []sendGridAddress{{Email: msg.To}}, Subject: msg.Subject},
		},
		From: sendGridAddress{Email: m.fromAddress, Name: m.fromName},
		Content: []sendGridContent{
			{Type: "text/plain", Value: msg.Text},
			{Type: "text/html", Value: msg.HTML},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sendgrid payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sendgrid request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		m.logger.Error("sendgrid rejected message", map[string]interface{}{
			"status": resp.StatusCode,
			"to":     msg.To,
			"body":   string(detail),
		})
		return fmt.Errorf("sendgrid API error: %d", resp.StatusCode)
	}

	m.logger.Info("message sent", map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	return nil
}
