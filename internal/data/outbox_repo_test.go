package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dmail "github.com/target/realty-admin/internal/domain/mail"
	apperrors "github.com/target/realty-admin/internal/errors"
	"github.com/target/realty-admin/internal/testutil"
)

func newTestOutbox(t *testing.T) (*OutboxRepo, *ManualClock) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db := testutil.SetupTestDB(t)
	clock := NewManualClock(testutil.TestTime())
	return NewOutboxRepoWithClock(db, clock), clock
}

func TestOutboxRepo_EnqueueDedupes(t *testing.T) {
	repo, _ := newTestOutbox(t)
	ctx := context.Background()

	msg, err := repo.Enqueue(ctx, testutil.NewMessage("s1").Build())
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, dmail.StatusPending, msg.Status)
	assert.Equal(t, "client-s1@example.ph", msg.To.Address)

	_, err = repo.Enqueue(ctx, testutil.NewMessage("s1").Build())
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.Equal(t, "dedupe_key", apperrors.GetField(err))
}

func TestOutboxRepo_EnqueueValidates(t *testing.T) {
	repo, _ := newTestOutbox(t)

	_, err := repo.Enqueue(context.Background(), testutil.NewMessage("s2").WithTo("").Build())
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestOutboxRepo_ClaimLifecycle(t *testing.T) {
	repo, clock := newTestOutbox(t)
	ctx := context.Background()

	first, err := repo.Enqueue(ctx, testutil.NewMessage("a").Build())
	require.NoError(t, err)
	clock.Advance(time.Second)
	second, err := repo.Enqueue(ctx, testutil.NewMessage("b").Build())
	require.NoError(t, err)

	claimed, err := repo.Claim(ctx, 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, claimed, 2)
	for _, m := range claimed {
		assert.Equal(t, dmail.StatusSending, m.Status)
		assert.Equal(t, 1, m.Attempts)
	}

	// Nothing is claimable while both are leased.
	again, err := repo.Claim(ctx, 10, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, again)

	require.NoError(t, repo.MarkSent(ctx, first.ID))
	require.NoError(t, repo.MarkFailed(ctx, second.ID, "smtp 421", false))

	// Backoff after one attempt is 30s.
	clock.Advance(29 * time.Second)
	due, err := repo.Claim(ctx, 10, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, due)

	clock.Advance(2 * time.Second)
	due, err = repo.Claim(ctx, 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, second.ID, due[0].ID)
	assert.Equal(t, 2, due[0].Attempts)
	assert.Equal(t, "smtp 421", due[0].LastError)

	require.NoError(t, repo.MarkFailed(ctx, second.ID, "smtp 550", true))

	sent, err := repo.Count(ctx, dmail.ListFilter{Status: dmail.StatusSent})
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	failed, err := repo.List(ctx, dmail.ListFilter{Status: dmail.StatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "smtp 550", failed[0].LastError)
}

func TestOutboxRepo_ExpiredLeaseIsReclaimed(t *testing.T) {
	repo, clock := newTestOutbox(t)
	ctx := context.Background()

	_, err := repo.Enqueue(ctx, testutil.NewMessage("lease").Build())
	require.NoError(t, err)
	claimed, err := repo.Claim(ctx, 1, time.Minute)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	clock.Advance(2 * time.Minute)
	reclaimed, err := repo.Claim(ctx, 1, time.Minute)
	require.NoError(t, err)
	require.Len(t, reclaimed, 1)
	assert.Equal(t, 2, reclaimed[0].Attempts)
}

func TestOutboxRepo_Retry(t *testing.T) {
	repo, _ := newTestOutbox(t)
	ctx := context.Background()

	msg, err := repo.Enqueue(ctx, testutil.NewMessage("r").Build())
	require.NoError(t, err)

	err = repo.Retry(ctx, msg.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err), "pending messages cannot be retried")

	_, err = repo.Claim(ctx, 1, time.Minute)
	require.NoError(t, err)
	require.NoError(t, repo.MarkFailed(ctx, msg.ID, "bounced", true))
	require.NoError(t, repo.Retry(ctx, msg.ID))

	pending, err := repo.List(ctx, dmail.ListFilter{Status: dmail.StatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Zero(t, pending[0].Attempts)

	assert.True(t, apperrors.IsNotFound(repo.Retry(ctx, "not-a-uuid")))
	assert.True(t, apperrors.IsNotFound(repo.Retry(ctx, "6f1f3c1e-8a51-4b7e-9a57-1b1f0d6f9a10")))
}

func TestOutboxRepo_ListPaging(t *testing.T) {
	repo, clock := newTestOutbox(t)
	ctx := context.Background()

	for _, id := range []string{"p1", "p2", "p3"} {
		_, err := repo.Enqueue(ctx, testutil.NewMessage(id).Build())
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	page, err := repo.List(ctx, dmail.ListFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "client-p3@example.ph", page[0].To.Address, "newest first")

	rest, err := repo.List(ctx, dmail.ListFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, rest, 1)

	total, err := repo.Count(ctx, dmail.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestTruncateError(t *testing.T) {
	long := make([]byte, maxLastErrorBytes+50)
	for i := range long {
		long[i] = 'x'
	}
	assert.Len(t, truncateError(string(long)), maxLastErrorBytes)
	assert.Equal(t, "short", truncateError("short"))
}
