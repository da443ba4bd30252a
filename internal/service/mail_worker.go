package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	dmail "github.com/target/realty-admin/internal/domain/mail"
	"github.com/target/realty-admin/internal/observability/metrics"
	"github.com/target/realty-admin/internal/ports"
)

// MailWorkerConfig tunes the outbox drain loop.
type MailWorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	// Lease is how long a claimed message may stay in sending before another
	// worker may claim it again.
	Lease time.Duration
}

func (c MailWorkerConfig) withDefaults() MailWorkerConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 10
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.Lease <= 0 {
		c.Lease = 5 * time.Minute
	}
	return c
}

// MailWorkerOptions groups dependencies for MailWorker.
type MailWorkerOptions struct {
	Outbox    ports.Outbox        // Required
	Transport ports.MailTransport // Required
	Config    MailWorkerConfig
	Logger    *slog.Logger // Optional
	Metrics   metrics.Sink // Optional
}

// MailWorker drains the outbox through a mail transport.
type MailWorker struct {
	outbox    ports.Outbox
	transport ports.MailTransport
	cfg       MailWorkerConfig
	logger    *slog.Logger
	metrics   metrics.Sink
}

// NewMailWorker constructs a MailWorker.
func NewMailWorker(opts MailWorkerOptions) (*MailWorker, error) {
	if opts.Outbox == nil {
		return nil, errors.New("outbox is required")
	}
	if opts.Transport == nil {
		return nil, errors.New("mail transport is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &MailWorker{
		outbox:    opts.Outbox,
		transport: opts.Transport,
		cfg:       opts.Config.withDefaults(),
		logger:    logger.With("component", "mail_worker"),
		metrics:   opts.Metrics,
	}, nil
}

// BatchResult summarizes one drain pass.
type BatchResult struct {
	Claimed int
	Sent    int
	Retried int
	Failed  int
}

// Run drains the outbox every PollInterval until ctx is canceled. A full
// batch is followed immediately by another pass.
func (w *MailWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "starting mail worker",
		"poll_interval", w.cfg.PollInterval, "batch_size", w.cfg.BatchSize, "max_attempts", w.cfg.MaxAttempts)

	w.waitWithJitter(ctx)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		w.drain(ctx)
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "mail worker stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *MailWorker) drain(ctx context.Context) {
	for ctx.Err() == nil {
		res, err := w.RunOnce(ctx)
		if err != nil {
			if !isContextCancellation(err) {
				w.logger.ErrorContext(ctx, "mail batch failed", "error", err)
			}
			return
		}
		if res.Claimed < w.cfg.BatchSize {
			return
		}
	}
}

// RunOnce claims one batch and attempts every message in it.
func (w *MailWorker) RunOnce(ctx context.Context) (BatchResult, error) {
	msgs, err := w.outbox.Claim(ctx, w.cfg.BatchSize, w.cfg.Lease)
	if err != nil {
		return BatchResult{}, err
	}
	res := BatchResult{Claimed: len(msgs)}
	for _, m := range msgs {
		switch w.deliver(ctx, m) {
		case dmail.StatusSent:
			res.Sent++
		case dmail.StatusFailed:
			res.Failed++
		case dmail.StatusPending:
			res.Retried++
		}
	}
	w.emitPending(ctx)
	if res.Claimed > 0 {
		w.logger.InfoContext(ctx, "mail batch done",
			"claimed", res.Claimed, "sent", res.Sent, "retried", res.Retried, "failed", res.Failed)
	}
	return res, nil
}

// deliver sends one message and records the outcome. It returns the status
// the message ends in, or "" when the outcome could not be recorded.
func (w *MailWorker) deliver(ctx context.Context, m dmail.Message) dmail.Status {
	if !m.HasContent() {
		return w.fail(ctx, m, errors.New("message has no body"), true)
	}

	start := time.Now()
	err := w.transport.Send(ctx, m)
	final := err != nil && m.Attempts >= w.cfg.MaxAttempts
	metrics.EmitMailDelivery(w.metrics, metrics.MailDelivery{
		Kind:     m.Kind,
		Final:    final,
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return w.fail(ctx, m, err, final)
	}

	if err := w.outbox.MarkSent(ctx, m.ID); err != nil {
		// The lease will make the message claimable again, so it may be sent twice.
		w.logger.ErrorContext(ctx, "mark sent failed", "message_id", m.ID, "error", err)
		return ""
	}
	w.logger.DebugContext(ctx, "mail sent", "message_id", m.ID, "kind", m.Kind)
	return dmail.StatusSent
}

func (w *MailWorker) fail(ctx context.Context, m dmail.Message, cause error, final bool) dmail.Status {
	if err := w.outbox.MarkFailed(ctx, m.ID, cause.Error(), final); err != nil {
		w.logger.ErrorContext(ctx, "mark failed failed", "message_id", m.ID, "error", err)
		return ""
	}
	if final {
		w.logger.WarnContext(ctx, "mail delivery gave up",
			"message_id", m.ID, "kind", m.Kind, "attempts", m.Attempts, "error", cause)
		return dmail.StatusFailed
	}
	w.logger.InfoContext(ctx, "mail delivery will retry",
		"message_id", m.ID, "kind", m.Kind, "attempts", m.Attempts, "error", cause)
	return dmail.StatusPending
}

func (w *MailWorker) emitPending(ctx context.Context) {
	if w.metrics == nil {
		return
	}
	n, err := w.outbox.Count(ctx, dmail.ListFilter{Status: dmail.StatusPending})
	if err != nil {
		return
	}
	w.metrics.Gauge("mail.outbox.pending", float64(n), map[string]string{})
}

// waitWithJitter delays the first pass by up to 10% of the poll interval so
// workers started together do not claim in lockstep.
func (w *MailWorker) waitWithJitter(ctx context.Context) {
	maxJitter := int64(w.cfg.PollInterval / 10)
	if maxJitter <= 0 {
		return
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return
	}
	jitter := time.Duration(int64(binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter))) // #nosec G115 - bounded by maxJitter
	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}

func isContextCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
