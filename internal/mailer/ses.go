// internal/mailer/ses.go
package mailer

import (
	"context"
	"fmt"

	"mentoloop-waitlist/internal/common/config"
	"mentoloop-waitlist/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESAPI is the slice of the SES client the mailer uses, kept as an
// interface for mocking.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESMailer sends mail through Amazon SES.
type SESMailer struct {
	client      SESAPI
	fromAddress string
	fromName    string
	logger      logger.Logger
}

func NewSES(ctx context.Context, cfg config.EmailConfig, log logger.Logger) (*SESMailer, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.SES.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &SESMailer{
		client:      ses.NewFromConfig(awsCfg),
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		logger:      log.WithFields(map[string]interface{}{"provider": "ses"}),
	}, nil
}

// NewSESWithClient injects a pre-built client (tests).
func NewSESWithClient(client SESAPI, cfg config.EmailConfig, log logger.Logger) *SESMailer {
	return &SESMailer{
		client:      client,
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		logger:      log.WithFields(map[string]interface{}{"provider": "ses"}),
	}
}

func (m *SESMailer) Send(ctx context.Context, msg Message) error {
	input := &ses.SendEmailInput{
		Source: aws.String(fmt.Sprintf("%s <%s>", m.fromName, m.fromAddress)),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject)},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(msg.HTML)},
				Text: &types.Content{Data: aws.String(msg.Text)},
			},
		},
	}

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses send failed: %w", err)
	}

	m.logger.Info("message sent", map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	return nil
}
