package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	dmail "github.com/target/realty-admin/internal/domain/mail"
	"github.com/target/realty-admin/internal/domain/realty"
	apperrors "github.com/target/realty-admin/internal/errors"
	"github.com/target/realty-admin/internal/ports"
	"github.com/target/realty-admin/internal/service/emails"
)

var (
	// ErrAlreadyQueued means an identical notification is already in the
	// outbox. Routes report it as "already notified", not as a failure.
	ErrAlreadyQueued = errors.New("notification already queued")
	// ErrNoRecipient means the record carries no usable email address.
	ErrNoRecipient = errors.New("record has no recipient email")
)

// Notification is one email about a record.
type Notification struct {
	Template string
	Resource realty.ResourceKey
	RecordID string
	To       mail.Address
	Notice   emails.Notice
	// DedupeKey overrides the default template:resource:id key.
	DedupeKey string
}

// NotificationServiceOptions groups dependencies for NotificationService.
type NotificationServiceOptions struct {
	Outbox   ports.Outbox     // Required
	Renderer *emails.Renderer // Required
	Logger   *slog.Logger     // Optional
}

// NotificationService renders emails and queues them in the outbox.
type NotificationService struct {
	outbox   ports.Outbox
	renderer *emails.Renderer
	logger   *slog.Logger
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(opts NotificationServiceOptions) *NotificationService {
	if opts.Outbox == nil {
		panic("NotificationService requires an Outbox")
	}
	if opts.Renderer == nil {
		panic("NotificationService requires a Renderer")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{
		outbox:   opts.Outbox,
		renderer: opts.Renderer,
		logger:   logger.With("component", "notification_service"),
	}
}

// Enqueue renders n and stores it in the outbox.
func (s *NotificationService) Enqueue(ctx context.Context, n Notification) (dmail.Message, error) {
	if n.To.Address == "" {
		return dmail.Message{}, ErrNoRecipient
	}
	out, err := s.renderer.Render(n.Template, n.Notice)
	if err != nil {
		return dmail.Message{}, fmt.Errorf("render %s: %w", n.Template, err)
	}

	key := n.DedupeKey
	if key == "" {
		key = dmail.DedupeKey(n.Template, string(n.Resource), n.RecordID)
	}
	msg, err := s.outbox.Enqueue(ctx, dmail.Message{
		DedupeKey: key,
		Kind:      n.Template,
		To:        n.To,
		Subject:   out.Subject,
		TextBody:  out.Text,
		HTMLBody:  out.HTML,
		Status:    dmail.StatusPending,
	})
	if apperrors.IsConflict(err) {
		s.logger.InfoContext(ctx, "notification already queued", "dedupe_key", key)
		return dmail.Message{}, ErrAlreadyQueued
	}
	if err != nil {
		return dmail.Message{}, fmt.Errorf("enqueue %s: %w", n.Template, err)
	}
	s.logger.InfoContext(ctx, "notification queued",
		"kind", n.Template, "resource", n.Resource, "record_id", n.RecordID, "message_id", msg.ID)
	return msg, nil
}

// NotifyDecision queues the email that follows decision d on rec.
func (s *NotificationService) NotifyDecision(ctx context.Context, res realty.Resource, d realty.Decision, rec realty.Record) (dmail.Message, error) {
	if d.Template == "" {
		return dmail.Message{}, nil
	}
	to, err := recipientOf(rec)
	if err != nil {
		return dmail.Message{}, err
	}
	notice := noticeFor(rec)
	notice.Status = d.Status
	return s.Enqueue(ctx, Notification{
		Template: d.Template,
		Resource: res.Key,
		RecordID: rec.ID(),
		To:       to,
		Notice:   notice,
	})
}

// Reply queues a free-text reply to the person behind rec. Every reply is a
// new message.
func (s *NotificationService) Reply(ctx context.Context, res realty.Resource, rec realty.Record, message string) (dmail.Message, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return dmail.Message{}, apperrors.ValidationField("message", "Message is required.")
	}
	to, err := recipientOf(rec)
	if err != nil {
		return dmail.Message{}, err
	}
	notice := noticeFor(rec)
	notice.Message = message
	return s.Enqueue(ctx, Notification{
		Template:  emails.ContactReply,
		Resource:  res.Key,
		RecordID:  rec.ID(),
		To:        to,
		Notice:    notice,
		DedupeKey: dmail.DedupeKey(emails.ContactReply, string(res.Key), rec.ID()+":"+uuid.NewString()),
	})
}

// recipientOf reads the contact address of a schedule or application.
func recipientOf(rec realty.Record) (mail.Address, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(rec.String("email")))
	if err != nil {
		return mail.Address{}, ErrNoRecipient
	}
	return mail.Address{Name: nameOf(rec), Address: addr.Address}, nil
}

func nameOf(rec realty.Record) string {
	for _, k := range []string{"fullName", "name"} {
		if v := strings.TrimSpace(rec.String(k)); v != "" {
			return v
		}
	}
	return ""
}

func noticeFor(rec realty.Record) emails.Notice {
	return emails.Notice{
		RecipientName: nameOf(rec),
		Property:      rec.String("property"),
		Position:      rec.String("position"),
		Date:          rec.String("date"),
		Time:          rec.String("time"),
		Status:        rec.String("status"),
	}
}
