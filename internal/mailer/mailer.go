// Package mailer provides the transactional email transport used by the
// notification dispatcher. Three providers implement the same interface:
// SendGrid (the platform default), SES and SMTP.
package mailer

import "context"

// Message is a fully composed email: an HTML body plus its plain-text
// fallback.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer sends a single message through one provider.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
