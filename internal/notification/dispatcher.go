// internal/notification/dispatcher.go
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"mentoloop-waitlist/internal/common/errors"
	"mentoloop-waitlist/internal/common/logger"
	"mentoloop-waitlist/internal/common/metrics"
	"mentoloop-waitlist/internal/mailer"
	"mentoloop-waitlist/internal/waitlist"
)

// SNSService is the subset of the SNS client the dispatcher publishes through.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Options configures a Dispatcher. Mailer may be nil, in which case every
// Notify call is a logged no-op success (the service runs without an email
// provider in local and preview environments).
type Options struct {
	Mailer          mailer.Mailer
	OperatorAddress string

	// Optional SMS alert channel. Both must be set for SMS to fire.
	SNSClient     SNSService
	OperatorPhone string

	Logger logger.Logger
}

// Dispatcher fans a signup out to the welcome email, the operator alert
// email, and optionally an operator SMS. The two emails are sent
// concurrently; only the welcome send can fail the dispatch.
type Dispatcher struct {
	mailer          mailer.Mailer
	operatorAddress string
	snsClient       SNSService
	operatorPhone   string
	logger          logger.Logger
}

func NewDispatcher(opts Options) *Dispatcher {
	return &Dispatcher{
		mailer:          opts.Mailer,
		operatorAddress: opts.OperatorAddress,
		snsClient:       opts.SNSClient,
		operatorPhone:   opts.OperatorPhone,
		logger:          opts.Logger,
	}
}

// Configured reports whether an email provider is wired in.
func (d *Dispatcher) Configured() bool {
	return d.mailer != nil
}

type sendResult struct {
	kind     string
	critical bool
	err      error
}

// Notify sends the welcome and operator messages for a persisted signup.
// Outcome rules:
//   - no provider configured: log and return nil, no outbound calls
//   - welcome failed: return a NOTIFICATION_SEND_FAILED StandardError
//   - operator alert failed: log only, return nil
//   - SMS failed: log only, return nil
func (d *Dispatcher) Notify(ctx context.Context, req *waitlist.SignupRequest) error {
	if !d.Configured() {
		d.logger.Info("Email provider not configured, skipping notifications", map[string]interface{}{
			"email": req.Email,
			"role":  string(req.Role),
		})
		return nil
	}

	payload := BuildPayload(req, time.Now(), d.operatorAddress)

	sends := []struct {
		kind     string
		critical bool
		msg      mailer.Message
	}{
		{kind: "welcome", critical: true, msg: payload.Welcome},
		{kind: "operator_alert", critical: false, msg: payload.OperatorAlert},
	}

	results := make(chan sendResult, len(sends))
	var wg sync.WaitGroup
	for _, s := range sends {
		wg.Add(1)
		go func(kind string, critical bool, msg mailer.Message) {
			defer wg.Done()
			results <- sendResult{kind: kind, critical: critical, err: d.mailer.Send(ctx, msg)}
		}(s.kind, s.critical, s.msg)
	}
	wg.Wait()
	close(results)

	var welcomeErr error
	for res := range results {
		status := "sent"
		if res.err != nil {
			status = "failed"
		}
		metrics.NotificationSends.WithLabelValues(res.kind, status).Inc()

		if res.err == nil {
			d.logger.Info("Notification sent", map[string]interface{}{
				"kind":  res.kind,
				"email": req.Email,
			})
			continue
		}

		if res.critical {
			welcomeErr = res.err
			d.logger.WithError(res.err).Error("Welcome email send failed", map[string]interface{}{
				"email": req.Email,
				"role":  string(req.Role),
			})
		} else {
			d.logger.Warn("Operator alert send failed", map[string]interface{}{
				"error": res.err.Error(),
				"email": req.Email,
			})
		}
	}

	d.publishSMS(ctx, payload.OperatorSMS)

	if welcomeErr != nil {
		return errors.NewNotificationSendFailedError(welcomeErr)
	}
	return nil
}

// publishSMS fires the optional operator SMS. Best effort, never surfaces.
func (d *Dispatcher) publishSMS(ctx context.Context, body string) {
	if d.snsClient == nil || d.operatorPhone == "" {
		return
	}

	_, err := d.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(d.operatorPhone),
		Message:     aws.String(body),
	})
	if err != nil {
		metrics.NotificationSends.WithLabelValues("operator_sms", "failed").Inc()
		d.logger.Warn("Operator SMS send failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.NotificationSends.WithLabelValues("operator_sms", "sent").Inc()
}
