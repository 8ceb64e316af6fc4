// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Email    EmailConfig    `mapstructure:"email"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// IsConfigured reports whether connection parameters are present. When they
// are not, persistence is disabled and every submit fails fast instead of
// attempting network I/O.
func (p PostgresConfig) IsConfigured() bool {
	return p.Host != "" && p.Database != "" && p.User != ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// IsConfigured reports whether the email-exists cache can be used.
func (r RedisConfig) IsConfigured() bool {
	return r.Address != ""
}

// --- Email / Notification Configuration ---

// EmailConfig holds the transactional email settings. Absence of the active
// provider's credential disables notification with a graceful no-op success,
// never a startup crash.
type EmailConfig struct {
	Provider string `mapstructure:"provider"` // sendgrid, ses or smtp

	SendGrid struct {
		APIKey string `mapstructure:"api_key"`
	} `mapstructure:"sendgrid"`

	SES struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"ses"`

	SMTP struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
	} `mapstructure:"smtp"`

	FromAddress     string `mapstructure:"from_address"`
	FromName        string `mapstructure:"from_name"`
	OperatorAddress string `mapstructure:"operator_address"`

	SMS SMSConfig `mapstructure:"sms"`
}

// SMSConfig holds the optional SNS operator alert channel. Disabled unless a
// phone number is configured.
type SMSConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Region      string `mapstructure:"region"`
	PhoneNumber string `mapstructure:"phone_number"`
}

// IsConfigured reports whether the active provider has its credential.
func (e EmailConfig) IsConfigured() bool {
	switch e.Provider {
	case "sendgrid":
		return e.SendGrid.APIKey != ""
	case "ses":
		return e.SES.Region != ""
	case "smtp":
		return e.SMTP.Host != ""
	}
	return false
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
