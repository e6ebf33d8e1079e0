// internal/config/config.go
package config

import (
	"fmt"
	"net/mail"
	"os"
	"strconv"
	"time"

	appErrors "github.com/leadmasterhq/leadmaster-backend/internal/errors"
)

// SMTPConfig holds the SMTP gateway credentials.
type SMTPConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	FromName  string
	FromEmail string
	Timeout   time.Duration
}

// DBConfig holds the Postgres connection settings.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN builds the lib/pq connection string.
func (d DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// WorkerConfig holds the delivery worker tunables.
type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	ThrottleMin  time.Duration
	ThrottleMax  time.Duration
	// Subject and Template compose the outbound message; Template supports
	// {{username}} and {{fullname}} placeholders.
	Subject  string
	Template string
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Addr       string
	CORSOrigin string
}

// Config is the full, typed configuration. A Config is usable only after
// Validate returns nil; partial configuration never degrades into a
// running-but-broken worker.
type Config struct {
	SMTP      SMTPConfig
	DB        DBConfig
	Worker    WorkerConfig
	Server    ServerConfig
	LogLevel  string
	LogFormat string
}

const defaultTemplate = `<p>Hola {{username}},</p><p>Te contactamos para presentarte nuestra propuesta.</p>`

// Load reads configuration from the environment. Call Validate before use.
func Load() *Config {
	return &Config{
		SMTP: SMTPConfig{
			Host:      os.Getenv("SMTP_HOST"),
			Port:      envInt("SMTP_PORT", 587),
			User:      os.Getenv("SMTP_USER"),
			Password:  os.Getenv("SMTP_PASS"),
			FromName:  envStr("SENDER_NAME", "Lead Master"),
			FromEmail: os.Getenv("SENDER_EMAIL"),
			Timeout:   envSeconds("SMTP_TIMEOUT_SECONDS", 30),
		},
		DB: DBConfig{
			Host:     envStr("DB_HOST", "localhost"),
			Port:     envInt("DB_PORT", 5432),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			SSLMode:  envStr("DB_SSLMODE", "disable"),
		},
		Worker: WorkerConfig{
			PollInterval: envSeconds("WORKER_POLL_SECONDS", 10),
			BatchSize:    envInt("WORKER_BATCH_SIZE", 5),
			MaxAttempts:  envInt("WORKER_MAX_ATTEMPTS", 3),
			ThrottleMin:  envSeconds("WORKER_THROTTLE_MIN_SECONDS", 10),
			ThrottleMax:  envSeconds("WORKER_THROTTLE_MAX_SECONDS", 25),
			Subject:      envStr("MESSAGE_SUBJECT", "Propuesta de Colaboración"),
			Template:     envStr("MESSAGE_TEMPLATE", defaultTemplate),
		},
		Server: ServerConfig{
			Addr:       envStr("HTTP_ADDR", ":8080"),
			CORSOrigin: envStr("CORS_ORIGIN", "*"),
		},
		LogLevel:  envStr("LOG_LEVEL", "info"),
		LogFormat: envStr("LOG_FORMAT", "json"),
	}
}

// Validate checks every required field and reports all problems at once.
// The worker must pass this before it is allowed to poll.
func (c *Config) Validate() error {
	fields := append(c.smtpProblems(), c.dbProblems()...)
	fields = append(fields, c.workerProblems()...)
	if len(fields) > 0 {
		return appErrors.NewConfigurationError(fields...)
	}
	return nil
}

// ValidateDB checks only the database fields, for processes that do not
// send mail from ambient configuration (the API server takes SMTP
// credentials per request).
func (c *Config) ValidateDB() error {
	if fields := c.dbProblems(); len(fields) > 0 {
		return appErrors.NewConfigurationError(fields...)
	}
	return nil
}

func (c *Config) smtpProblems() []string {
	var fields []string
	if c.SMTP.Host == "" {
		fields = append(fields, "SMTP_HOST")
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		fields = append(fields, "SMTP_PORT")
	}
	if c.SMTP.User == "" {
		fields = append(fields, "SMTP_USER")
	}
	if c.SMTP.Password == "" {
		fields = append(fields, "SMTP_PASS")
	}
	if c.SMTP.FromEmail == "" {
		fields = append(fields, "SENDER_EMAIL")
	} else if _, err := mail.ParseAddress(c.SMTP.FromEmail); err != nil {
		fields = append(fields, "SENDER_EMAIL")
	}
	return fields
}

func (c *Config) dbProblems() []string {
	var fields []string
	if c.DB.Host == "" {
		fields = append(fields, "DB_HOST")
	}
	if c.DB.User == "" {
		fields = append(fields, "DB_USER")
	}
	if c.DB.Password == "" {
		fields = append(fields, "DB_PASSWORD")
	}
	if c.DB.Name == "" {
		fields = append(fields, "DB_NAME")
	}
	return fields
}

func (c *Config) workerProblems() []string {
	var fields []string
	if c.Worker.PollInterval <= 0 {
		fields = append(fields, "WORKER_POLL_SECONDS")
	}
	if c.Worker.BatchSize < 1 {
		fields = append(fields, "WORKER_BATCH_SIZE")
	}
	if c.Worker.MaxAttempts < 1 {
		fields = append(fields, "WORKER_MAX_ATTEMPTS")
	}
	if c.Worker.ThrottleMax < c.Worker.ThrottleMin {
		fields = append(fields, "WORKER_THROTTLE_MAX_SECONDS")
	}
	return fields
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envSeconds(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Second
}
