package ports

import (
	"context"
	"time"

	"github.com/target/realty-admin/internal/domain/mail"
)

// MailTransport delivers one rendered message.
type MailTransport interface {
	Send(ctx context.Context, msg mail.Message) error
}

// Outbox persists messages until a worker delivers them.
type Outbox interface {
	// Enqueue stores a pending message. A message whose DedupeKey is already
	// queued yields a conflict AppError.
	Enqueue(ctx context.Context, msg mail.Message) (mail.Message, error)
	// Claim marks up to limit pending messages (and sends stuck longer than
	// lease) as sending and returns them.
	Claim(ctx context.Context, limit int, lease time.Duration) ([]mail.Message, error)
	MarkSent(ctx context.Context, id string) error
	// MarkFailed records a failed attempt. final moves the message to failed,
	// otherwise it returns to pending.
	MarkFailed(ctx context.Context, id, reason string, final bool) error
	// Retry moves a failed message back to pending.
	Retry(ctx context.Context, id string) error
	List(ctx context.Context, f mail.ListFilter) ([]mail.Message, error)
	Count(ctx context.Context, f mail.ListFilter) (int, error)
}

// CacheRepository is a byte cache with expiry.
type CacheRepository interface {
	// Get returns nil, nil for a missing key.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) (bool, error)
	Health(ctx context.Context) error
}
