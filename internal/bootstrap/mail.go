package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/target/realty-admin/config"
	"github.com/target/realty-admin/internal/adapters/mailer"
	"github.com/target/realty-admin/internal/data"
	"github.com/target/realty-admin/internal/observability/metrics"
	"github.com/target/realty-admin/internal/ports"
	"github.com/target/realty-admin/internal/service"
)

// BuildMailTransport returns the configured delivery transport. Console
// output goes to out (stdout when nil).
//
//nolint:ireturn // the worker only needs the port
func BuildMailTransport(cfg config.MailConfig, out io.Writer) (ports.MailTransport, error) {
	from, err := cfg.FromAddress()
	if err != nil {
		return nil, err
	}
	switch cfg.Transport {
	case config.MailTransportSendGrid:
		sg, err := mailer.NewSendGrid(mailer.SendGridConfig{
			APIKey:  cfg.SendGridAPIKey,
			AppName: cfg.AppName,
			From:    from,
		})
		if err != nil {
			return nil, fmt.Errorf("create sendgrid transport: %w", err)
		}
		return sg, nil
	case config.MailTransportConsole, "":
		if out == nil {
			out = os.Stdout
		}
		return mailer.NewConsole(out, cfg.AppName, from), nil
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
	}
}

// MailWorkerConfig contains configuration for the outbox worker.
type MailWorkerConfig struct {
	DB      *sql.DB
	Mail    config.MailConfig
	Logger  *slog.Logger
	Metrics metrics.Sink
}

// RunMailWorker drains the outbox until ctx is canceled.
func RunMailWorker(ctx context.Context, cfg MailWorkerConfig) error {
	transport, err := BuildMailTransport(cfg.Mail, nil)
	if err != nil {
		return err
	}
	worker, err := service.NewMailWorker(service.MailWorkerOptions{
		Outbox:    data.NewOutboxRepo(cfg.DB),
		Transport: transport,
		Config: service.MailWorkerConfig{
			PollInterval: cfg.Mail.PollInterval,
			BatchSize:    cfg.Mail.BatchSize,
			MaxAttempts:  cfg.Mail.MaxAttempts,
			Lease:        cfg.Mail.Lease,
		},
		Logger:  cfg.Logger,
		Metrics: cfg.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create mail worker: %w", err)
	}
	if cfg.Logger != nil {
		cfg.Logger.InfoContext(ctx, "mail transport selected", "transport", cfg.Mail.Transport)
	}
	return worker.Run(ctx)
}
