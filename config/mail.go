package config

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// MailTransport selects how the outbox worker delivers email.
type MailTransport string

const (
	// MailTransportConsole writes messages to stdout.
	MailTransportConsole MailTransport = "console"
	// MailTransportSendGrid sends through the SendGrid v3 API.
	MailTransportSendGrid MailTransport = "sendgrid"
)

// UnmarshalText implements encoding.TextUnmarshaler for MailTransport.
func (m *MailTransport) UnmarshalText(text []byte) error {
	v := MailTransport(strings.ToLower(strings.TrimSpace(string(text))))
	switch v {
	case MailTransportConsole, MailTransportSendGrid:
		*m = v
		return nil
	default:
		return fmt.Errorf("invalid MailTransport: %q (valid options: console, sendgrid)", v)
	}
}

// MailConfig configures notification emails and the outbox worker.
type MailConfig struct {
	Transport      MailTransport `env:"TRANSPORT"        envDefault:"console"`
	From           string        `env:"FROM"             envDefault:"no-reply@example.com"`
	FromName       string        `env:"FROM_NAME"`
	SendGridAPIKey string        `env:"SENDGRID_API_KEY"`
	// AppName is the brand shown in email subjects and footers.
	AppName string `env:"APP_NAME" envDefault:"Realty"`
	// SiteURL is the public website linked from emails.
	SiteURL string `env:"SITE_URL"`

	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"5s"`
	BatchSize    int           `env:"BATCH_SIZE"    envDefault:"10"`
	MaxAttempts  int           `env:"MAX_ATTEMPTS"  envDefault:"5"`
	// Lease is how long a claimed message may stay in sending before another
	// worker may claim it again.
	Lease time.Duration `env:"LEASE" envDefault:"5m"`
}

// Sanitize clamps the worker knobs.
func (c *MailConfig) Sanitize() {
	c.From = strings.TrimSpace(c.From)
	c.SendGridAPIKey = strings.TrimSpace(c.SendGridAPIKey)
	if c.PollInterval < time.Second {
		c.PollInterval = time.Second
	}
	if c.BatchSize < 1 {
		c.BatchSize = 1
	}
	if c.BatchSize > 100 {
		c.BatchSize = 100
	}
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.Lease < time.Minute {
		c.Lease = time.Minute
	}
}

// FromAddress is the parsed sender.
func (c *MailConfig) FromAddress() (mail.Address, error) {
	addr, err := mail.ParseAddress(c.From)
	if err != nil {
		return mail.Address{}, fmt.Errorf("MAIL_FROM %q: %w", c.From, err)
	}
	if c.FromName != "" {
		addr.Name = c.FromName
	}
	return *addr, nil
}

// Validate checks what the selected transport needs.
func (c *MailConfig) Validate() error {
	if _, err := c.FromAddress(); err != nil {
		return err
	}
	if c.Transport == MailTransportSendGrid && c.SendGridAPIKey == "" {
		return errors.New("MAIL_SENDGRID_API_KEY is required when MAIL_TRANSPORT=sendgrid")
	}
	return nil
}
