package service

import (
	"context"
	"errors"
	"net/mail"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	dmail "github.com/target/realty-admin/internal/domain/mail"
	"github.com/target/realty-admin/internal/mocks"
)

func newMailWorker(t *testing.T, cfg MailWorkerConfig) (*mocks.MockOutbox, *mocks.MockMailTransport, *MailWorker) {
	t.Helper()
	ctrl := gomock.NewController(t)
	outbox := mocks.NewMockOutbox(ctrl)
	transport := mocks.NewMockMailTransport(ctrl)
	w, err := NewMailWorker(MailWorkerOptions{Outbox: outbox, Transport: transport, Config: cfg})
	require.NoError(t, err)
	return outbox, transport, w
}

func queued(id string, attempts int) dmail.Message {
	return dmail.Message{
		ID:        id,
		DedupeKey: "appointment_accepted:schedules:" + id,
		Kind:      "appointment_accepted",
		To:        mail.Address{Name: "Maria", Address: "maria@example.ph"},
		Subject:   "Your property viewing is confirmed",
		TextBody:  "Hi Maria,",
		Status:    dmail.StatusSending,
		Attempts:  attempts,
	}
}

func TestNewMailWorker_RequiresDeps(t *testing.T) {
	t.Parallel()
	_, err := NewMailWorker(MailWorkerOptions{})
	require.Error(t, err)
}

func TestMailWorker_RunOnce(t *testing.T) {
	t.Parallel()
	outbox, transport, w := newMailWorker(t, MailWorkerConfig{BatchSize: 10, MaxAttempts: 3, Lease: time.Minute})
	ctx := context.Background()

	sent, retry, give, empty := queued("m1", 1), queued("m2", 1), queued("m3", 3), queued("m4", 1)
	empty.TextBody = ""

	outbox.EXPECT().Claim(ctx, 10, time.Minute).Return([]dmail.Message{sent, retry, give, empty}, nil)

	transport.EXPECT().Send(ctx, sent).Return(nil)
	outbox.EXPECT().MarkSent(ctx, "m1").Return(nil)

	transport.EXPECT().Send(ctx, retry).Return(errors.New("status 503"))
	outbox.EXPECT().MarkFailed(ctx, "m2", "status 503", false).Return(nil)

	transport.EXPECT().Send(ctx, give).Return(errors.New("status 400"))
	outbox.EXPECT().MarkFailed(ctx, "m3", "status 400", true).Return(nil)

	outbox.EXPECT().MarkFailed(ctx, "m4", "message has no body", true).Return(nil)

	res, err := w.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Claimed: 4, Sent: 1, Retried: 1, Failed: 2}, res)
}

func TestMailWorker_RunOnceClaimError(t *testing.T) {
	t.Parallel()
	outbox, _, w := newMailWorker(t, MailWorkerConfig{})

	outbox.EXPECT().Claim(gomock.Any(), 10, 5*time.Minute).Return(nil, errors.New("db down"))

	_, err := w.RunOnce(context.Background())
	require.EqualError(t, err, "db down")
}

func TestMailWorker_RunStopsOnCancel(t *testing.T) {
	t.Parallel()
	outbox, _, w := newMailWorker(t, MailWorkerConfig{PollInterval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	outbox.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).MinTimes(1)

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("mail worker did not stop")
	}
}
