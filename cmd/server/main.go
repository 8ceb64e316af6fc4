// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"mentoloop-waitlist/internal/api"
	"mentoloop-waitlist/internal/common/config"
	"mentoloop-waitlist/internal/common/database"
	"mentoloop-waitlist/internal/common/logger"
	"mentoloop-waitlist/internal/common/observability"
	"mentoloop-waitlist/internal/mailer"
	"mentoloop-waitlist/internal/notification"
	"mentoloop-waitlist/internal/waitlist"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	log := logger.NewZapAdapter(zapLogger)

	log.Info("Starting waitlist service", map[string]interface{}{
		"environment": cfg.App.Environment,
		"addr":        cfg.Server.Addr(),
	})

	// Postgres: an unconfigured store degrades to fail-fast submits
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		log.WithError(err).Error("Failed to connect to Postgres", nil)
		os.Exit(1)
	}
	defer pg.Close()
	if !pg.Configured() {
		log.Warn("Postgres credentials missing, persistence disabled", nil)
	}

	var cache *database.RedisClient
	if cfg.Database.Redis.IsConfigured() {
		cache, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, email-exists cache disabled", nil)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	store := waitlist.NewStore(pg, cache, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := notification.NewDispatcher(notification.Options{
		Mailer:          buildMailer(ctx, cfg.Email, log),
		OperatorAddress: cfg.Email.OperatorAddress,
		SNSClient:       buildSNSClient(ctx, cfg.Email.SMS, log),
		OperatorPhone:   cfg.Email.SMS.PhoneNumber,
		Logger:          log,
	})
	if !dispatcher.Configured() {
		log.Warn("Email provider not configured, notifications disabled", nil)
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	server := api.NewServer(store, dispatcher, obs, log)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", map[string]interface{}{"addr": httpServer.Addr})
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received", nil)
	case err := <-errCh:
		log.WithError(err).Error("HTTP server failed", nil)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed", nil)
	}
	log.Info("Waitlist service stopped", nil)
}

// buildMailer selects the provider from config. Returns nil (notifications
// disabled) when the active provider has no credential.
func buildMailer(ctx context.Context, cfg config.EmailConfig, log logger.Logger) mailer.Mailer {
	if !cfg.IsConfigured() {
		return nil
	}

	switch cfg.Provider {
	case "sendgrid":
		return mailer.NewSendGrid(cfg, log)
	case "ses":
		m, err := mailer.NewSES(ctx, cfg, log)
		if err != nil {
			log.WithError(err).Warn("SES client init failed, notifications disabled", nil)
			return nil
		}
		return m
	case "smtp":
		return mailer.NewSMTP(cfg, log)
	}
	return nil
}

// buildSNSClient wires the optional operator SMS channel.
func buildSNSClient(ctx context.Context, cfg config.SMSConfig, log logger.Logger) notification.SNSService {
	if !cfg.Enabled || cfg.PhoneNumber == "" {
		return nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		log.WithError(err).Warn("SNS client init failed, SMS alerts disabled", nil)
		return nil
	}
	return sns.NewFromConfig(awsCfg)
}
