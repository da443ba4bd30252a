package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/target/realty-admin/internal/data/database"
	"github.com/target/realty-admin/internal/data/pgxutil"
	dmail "github.com/target/realty-admin/internal/domain/mail"
	apperrors "github.com/target/realty-admin/internal/errors"
	"github.com/target/realty-admin/internal/ports"
)

const (
	outboxTable       = "mail_outbox"
	outboxColumnsSQL  = "id, dedupe_key, kind, to_name, to_address, subject, text_body, html_body, status, attempts, last_error, created_at, sent_at"
	defaultOutboxPage = 50
	maxRetryBackoff   = time.Hour
	baseRetryBackoff  = 30 * time.Second
	maxLastErrorBytes = 1000
)

var outboxColumns = strings.Split(strings.ReplaceAll(outboxColumnsSQL, " ", ""), ",")

// outboxRow mirrors one mail_outbox row as selected by outboxColumnsSQL.
type outboxRow struct {
	ID        string     `db:"id"`
	DedupeKey string     `db:"dedupe_key"`
	Kind      string     `db:"kind"`
	ToName    string     `db:"to_name"`
	ToAddress string     `db:"to_address"`
	Subject   string     `db:"subject"`
	TextBody  string     `db:"text_body"`
	HTMLBody  string     `db:"html_body"`
	Status    string     `db:"status"`
	Attempts  int        `db:"attempts"`
	LastError string     `db:"last_error"`
	CreatedAt time.Time  `db:"created_at"`
	SentAt    *time.Time `db:"sent_at"`
}

func (r outboxRow) message() dmail.Message {
	return dmail.Message{
		ID:        r.ID,
		DedupeKey: r.DedupeKey,
		Kind:      r.Kind,
		To:        mail.Address{Name: r.ToName, Address: r.ToAddress},
		Subject:   r.Subject,
		TextBody:  r.TextBody,
		HTMLBody:  r.HTMLBody,
		Status:    dmail.Status(r.Status),
		Attempts:  r.Attempts,
		LastError: r.LastError,
		CreatedAt: r.CreatedAt,
		SentAt:    r.SentAt,
	}
}

func toMessages(rows []outboxRow) []dmail.Message {
	out := make([]dmail.Message, len(rows))
	for i, r := range rows {
		out[i] = r.message()
	}
	return out
}

// OutboxRepo stores outgoing mail in Postgres. Workers claim rows with
// FOR UPDATE SKIP LOCKED so several mail-worker processes can share the table.
type OutboxRepo struct {
	DB    *sql.DB
	clock Clock
}

var _ ports.Outbox = (*OutboxRepo)(nil)

// NewOutboxRepo creates an OutboxRepo using the system clock.
func NewOutboxRepo(db *sql.DB) *OutboxRepo {
	return &OutboxRepo{DB: db, clock: systemClock{}}
}

// NewOutboxRepoWithClock creates an OutboxRepo reading time from clock.
func NewOutboxRepoWithClock(db *sql.DB, clock Clock) *OutboxRepo {
	return &OutboxRepo{DB: db, clock: clock}
}

// Enqueue inserts msg as pending. A duplicate DedupeKey maps to a conflict.
func (r *OutboxRepo) Enqueue(ctx context.Context, msg dmail.Message) (dmail.Message, error) {
	if strings.TrimSpace(msg.DedupeKey) == "" {
		return dmail.Message{}, apperrors.ValidationField("dedupe_key", "Dedupe key is required.")
	}
	if strings.TrimSpace(msg.To.Address) == "" {
		return dmail.Message{}, apperrors.ValidationField("to_address", "Recipient address is required.")
	}

	now := r.clock.Now().UTC()
	rows, err := pgxutil.CollectAll[outboxRow](ctx, r.DB, `
		INSERT INTO mail_outbox (
			id, dedupe_key, kind, to_name, to_address, subject, text_body, html_body,
			status, next_attempt_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending', $9, $9, $9)
		RETURNING `+outboxColumnsSQL,
		uuid.NewString(), msg.DedupeKey, msg.Kind, msg.To.Name, msg.To.Address,
		msg.Subject, msg.TextBody, msg.HTMLBody, now,
	)
	if err != nil {
		return dmail.Message{}, apperrors.MapDBError(err)
	}
	return rows[0].message(), nil
}

// Claim moves up to limit due messages to sending and returns them. A
// message left in sending longer than lease (a crashed worker) is claimable
// again. Each claim counts as an attempt.
func (r *OutboxRepo) Claim(ctx context.Context, limit int, lease time.Duration) ([]dmail.Message, error) {
	if limit <= 0 {
		return nil, nil
	}
	now := r.clock.Now().UTC()
	rows, err := pgxutil.CollectAll[outboxRow](ctx, r.DB, `
		UPDATE mail_outbox
		SET status = 'sending', attempts = attempts + 1, claimed_at = $1, updated_at = $1
		WHERE id IN (
			SELECT id FROM mail_outbox
			WHERE (status = 'pending' AND next_attempt_at <= $1)
			   OR (status = 'sending' AND claimed_at < $2)
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+outboxColumnsSQL,
		now, now.Add(-lease), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("claim outbox messages: %w", apperrors.MapDBError(err))
	}
	return toMessages(rows), nil
}

// MarkSent records a successful delivery.
func (r *OutboxRepo) MarkSent(ctx context.Context, id string) error {
	now := r.clock.Now().UTC()
	return r.execOne(ctx, `
		UPDATE mail_outbox
		SET status = 'sent', sent_at = $2, last_error = '', claimed_at = NULL, updated_at = $2
		WHERE id = $1`, id, now)
}

// MarkFailed records a failed attempt. Non-final failures go back to
// pending with a quadratic backoff capped at one hour.
func (r *OutboxRepo) MarkFailed(ctx context.Context, id, reason string, final bool) error {
	now := r.clock.Now().UTC()
	reason = truncateError(reason)
	if final {
		return r.execOne(ctx, `
			UPDATE mail_outbox
			SET status = 'failed', last_error = $2, claimed_at = NULL, updated_at = $3
			WHERE id = $1`, id, reason, now)
	}
	return r.execOne(ctx, `
		UPDATE mail_outbox
		SET status = 'pending', last_error = $2, claimed_at = NULL, updated_at = $3,
		    next_attempt_at = $3 + LEAST(
		        make_interval(secs => $4::float8 * attempts * attempts),
		        make_interval(secs => $5::float8))
		WHERE id = $1`, id, reason, now, baseRetryBackoff.Seconds(), maxRetryBackoff.Seconds())
}

// Retry resets a failed message so the worker picks it up on its next poll.
func (r *OutboxRepo) Retry(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NotFound("Message not found.")
	}
	now := r.clock.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		UPDATE mail_outbox
		SET status = 'pending', attempts = 0, next_attempt_at = $2, updated_at = $2
		WHERE id = $1 AND status = 'failed'`, id, now)
	if err != nil {
		return apperrors.MapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}

	var status string
	err = r.DB.QueryRowContext(ctx, `SELECT status FROM mail_outbox WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound("Message not found.")
	}
	if err != nil {
		return apperrors.MapDBError(err)
	}
	return apperrors.Conflict(fmt.Sprintf("Only failed messages can be retried; this one is %s.", status))
}

// List returns messages newest first.
func (r *OutboxRepo) List(ctx context.Context, f dmail.ListFilter) ([]dmail.Message, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultOutboxPage
	}
	q, args := database.BuildListQuery(database.NewListQueryOptions(outboxTable,
		database.WithColumns(outboxColumns...),
		database.WithCondition(database.WhereCond("status", database.Equal, string(f.Status)), f.Status != ""),
		database.WithOrderBy("created_at", "DESC"),
		database.WithPage(limit, max(f.Offset, 0)),
	))
	rows, err := pgxutil.CollectAll[outboxRow](ctx, r.DB, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list outbox: %w", apperrors.MapDBError(err))
	}
	return toMessages(rows), nil
}

// Count returns how many messages match f, ignoring paging.
func (r *OutboxRepo) Count(ctx context.Context, f dmail.ListFilter) (int, error) {
	q, args := database.BuildListQuery(database.NewListQueryOptions(outboxTable,
		database.WithCountOnly(),
		database.WithCondition(database.WhereCond("status", database.Equal, string(f.Status)), f.Status != ""),
	))
	var n int
	if err := r.DB.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count outbox: %w", apperrors.MapDBError(err))
	}
	return n, nil
}

func (r *OutboxRepo) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.MapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("Message not found.")
	}
	return nil
}

func truncateError(s string) string {
	if len(s) <= maxLastErrorBytes {
		return s
	}
	return strings.ToValidUTF8(s[:maxLastErrorBytes], "")
}
