// Package mailer holds the MailTransport implementations used by the mail
// worker: SendGrid for real delivery and a console transport for development.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	dmail "github.com/target/realty-admin/internal/domain/mail"
	"github.com/target/realty-admin/internal/ports"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendGridConfig configures the SendGrid transport.
type SendGridConfig struct {
	APIKey  string
	AppName string
	From    mail.Address
	// Host overrides the API host (tests).
	Host string
}

// SendGrid delivers messages through the SendGrid v3 API.
type SendGrid struct {
	key        string
	host       string
	from       *sgmail.Email
	subjPrefix string
}

var _ ports.MailTransport = (*SendGrid)(nil)

// NewSendGrid builds a SendGrid transport.
func NewSendGrid(cfg SendGridConfig) (*SendGrid, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("sendgrid api key is required")
	}
	if cfg.From.Address == "" {
		return nil, errors.New("sendgrid from address is required")
	}
	host := cfg.Host
	if host == "" {
		host = sendgridHost
	}
	name := cfg.From.Name
	if name == "" {
		name = cfg.AppName
	}
	return &SendGrid{
		key:        cfg.APIKey,
		host:       host,
		from:       sgmail.NewEmail(name, cfg.From.Address),
		subjPrefix: subjectPrefix(cfg.AppName),
	}, nil
}

// Send posts msg to SendGrid. Any status >= 400 is an error.
func (s *SendGrid) Send(ctx context.Context, msg dmail.Message) error {
	req := sendgrid.GetRequest(s.key, sendgridEndpoint, s.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	res, err := rest.SendWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid send: status %d: %s", res.StatusCode, truncate(res.Body, 200))
	}
	return nil
}

func (s *SendGrid) prepare(msg dmail.Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = s.subjPrefix + msg.Subject
	p.AddTos(sgmail.NewEmail(msg.To.Name, msg.To.Address))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	if msg.TextBody != "" {
		m.AddContent(sgmail.NewContent("text/plain", msg.TextBody))
	}
	if msg.HTMLBody != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLBody))
	}
	return m
}

func subjectPrefix(appName string) string {
	if appName == "" {
		return ""
	}
	return "[" + appName + "] "
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
