// internal/mailer/smtp.go
package mailer

import (
	"context"
	"fmt"

	"mentoloop-waitlist/internal/common/config"
	"mentoloop-waitlist/internal/common/logger"

	"gopkg.in/gomail.v2"
)

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	host        string
	port        int
	username    string
	password    string
	fromAddress string
	fromName    string
	logger      logger.Logger
}

func NewSMTP(cfg config.EmailConfig, log logger.Logger) *SMTPMailer {
	return &SMTPMailer{
		host:        cfg.SMTP.Host,
		port:        cfg.SMTP.Port,
		username:    cfg.SMTP.Username,
		password:    cfg.SMTP.Password,
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		logger:      log.WithFields(map[string]interface{}{"provider": "smtp"}),
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	message := gomail.NewMessage()
	message.SetHeader("From", fmt.Sprintf("%s <%s>", m.fromName, m.fromAddress))
	message.SetHeader("To", msg.To)
	message.SetHeader("Subject", msg.Subject)
	message.SetBody("text/plain", msg.Text)
	message.AddAlternative("text/html", msg.HTML)

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)
	if err := dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}

	m.logger.Info("message sent", map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	return nil
}
