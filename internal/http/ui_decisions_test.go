package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/target/realty-admin/internal/domain/auth"
	dmail "github.com/target/realty-admin/internal/domain/mail"
	"github.com/target/realty-admin/internal/domain/realty"
	apperrors "github.com/target/realty-admin/internal/errors"
	"github.com/target/realty-admin/internal/service"
)

func scheduleRecord() realty.Record {
	return realty.Record{
		"_id":      "s1",
		"name":     "Jose Reyes",
		"email":    "jose@example.ph",
		"property": "Azure Tower",
		"date":     "2026-11-02",
		"time":     "10:00",
		"status":   "Accepted",
	}
}

func decideRequest(path, id string) *http.Request {
	req := htmxRequest(asUser(httptest.NewRequest(http.MethodPost, path, nil), domainauth.RoleUser), "")
	req.SetPathValue("id", id)
	return req
}

func TestResourceDecide_AcceptQueuesEmail(t *testing.T) {
	f := newUIFixture(t)
	res := realty.MustLookup(realty.Schedules)
	accept, ok := res.Decision("accept")
	require.True(t, ok)

	gomock.InOrder(
		f.api.EXPECT().SetStatus(gomock.Any(), testCreds, "api/schedules", "s1", "Accepted").Return(scheduleRecord(), nil),
		f.outbox.EXPECT().Enqueue(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, m dmail.Message) (dmail.Message, error) {
				assert.Equal(t, "appointment_accepted:schedules:s1", m.DedupeKey)
				assert.Equal(t, "jose@example.ph", m.To.Address)
				assert.Equal(t, dmail.StatusPending, m.Status)
				m.ID = "m1"
				return m, nil
			}),
	)

	w := httptest.NewRecorder()
	f.h.ResourceDecide(res, accept)(w, decideRequest("/schedules/s1/accept", "s1"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, hxEvents(t, w), eventRecordsChanged)
	msg, kind := toastOf(t, w)
	assert.Equal(t, "Appointment accepted. The client will be emailed.", msg)
	assert.Equal(t, toastSuccess, kind)
}

func TestResourceDecide_AlreadyNotified(t *testing.T) {
	f := newUIFixture(t)
	res := realty.MustLookup(realty.Schedules)
	accept, _ := res.Decision("accept")

	f.api.EXPECT().SetStatus(gomock.Any(), testCreds, "api/schedules", "s1", "Accepted").Return(scheduleRecord(), nil)
	f.outbox.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(dmail.Message{}, apperrors.Conflict("duplicate dedupe key"))

	w := httptest.NewRecorder()
	f.h.ResourceDecide(res, accept)(w, decideRequest("/schedules/s1/accept", "s1"))

	assert.Equal(t, http.StatusOK, w.Code)
	msg, kind := toastOf(t, w)
	assert.Equal(t, "Appointment accepted. The client was already notified.", msg)
	assert.Equal(t, toastInfo, kind)
}

func TestResourceDecide_StatusSticksWhenOutboxFails(t *testing.T) {
	f := newUIFixture(t)
	res := realty.MustLookup(realty.Schedules)
	decline, _ := res.Decision("decline")

	rec := scheduleRecord()
	rec["status"] = "Declined"
	f.api.EXPECT().SetStatus(gomock.Any(), testCreds, "api/schedules", "s1", "Declined").Return(rec, nil)
	f.outbox.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(dmail.Message{}, errors.New("connection refused"))

	w := httptest.NewRecorder()
	f.h.ResourceDecide(res, decline)(w, decideRequest("/schedules/s1/decline", "s1"))

	assert.Equal(t, http.StatusOK, w.Code)
	msg, kind := toastOf(t, w)
	assert.Equal(t, "Appointment declined. The notification email could not be queued.", msg)
	assert.Equal(t, toastWarning, kind)
}

func TestResourceDecide_APIFailureIsError(t *testing.T) {
	f := newUIFixture(t)
	res := realty.MustLookup(realty.Schedules)
	accept, _ := res.Decision("accept")

	f.api.EXPECT().SetStatus(gomock.Any(), testCreds, "api/schedules", "gone", "Accepted").
		Return(nil, apperrors.NotFound("Appointment not found."))

	w := httptest.NewRecorder()
	f.h.ResourceDecide(res, accept)(w, decideRequest("/schedules/gone/accept", "gone"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	msg, kind := toastOf(t, w)
	assert.Equal(t, "Appointment not found.", msg)
	assert.Equal(t, toastError, kind)
	assert.NotContains(t, hxEvents(t, w), eventRecordsChanged)
}

func TestDecisionToast(t *testing.T) {
	res := realty.MustLookup(realty.Schedules)
	accept, _ := res.Decision("accept")

	msg, kind := decisionToast(res, accept, service.DecisionResult{NotifyErr: service.ErrNoRecipient})
	assert.Equal(t, "Appointment accepted. No email address on file, so no email was sent.", msg)
	assert.Equal(t, toastWarning, kind)

	msg, kind = decisionToast(res, accept, service.DecisionResult{})
	assert.Equal(t, "Appointment accepted.", msg)
	assert.Equal(t, toastSuccess, kind)
}

func TestReplyForm(t *testing.T) {
	f := newUIFixture(t)
	f.api.EXPECT().Get(gomock.Any(), testCreds, "api/schedules", "s1").Return(scheduleRecord(), nil)

	w := httptest.NewRecorder()
	req := htmxRequest(asUser(httptest.NewRequest(http.MethodGet, "/schedules/s1/reply", nil), domainauth.RoleUser), modalBodyID)
	req.SetPathValue("id", "s1")
	f.h.ReplyForm(realty.MustLookup(realty.Schedules))(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, containsAll(w.Body.String(), []string{`id="reply-form"`, "/schedules/s1/reply", "jose@example.ph"}))
}

func TestReplySend(t *testing.T) {
	res := realty.MustLookup(realty.Schedules)

	t.Run("empty message", func(t *testing.T) {
		f := newUIFixture(t)
		w := httptest.NewRecorder()
		req := postForm("/schedules/s1/reply", url.Values{"message": {"   "}})
		req = htmxRequest(asUser(req, domainauth.RoleUser), "reply-form")
		req.SetPathValue("id", "s1")
		f.h.ReplySend(res)(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "has-error")
	})

	t.Run("queued", func(t *testing.T) {
		f := newUIFixture(t)
		f.api.EXPECT().Get(gomock.Any(), testCreds, "api/schedules", "s1").Return(scheduleRecord(), nil)
		f.outbox.EXPECT().Enqueue(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, m dmail.Message) (dmail.Message, error) {
				assert.Contains(t, m.TextBody, "Please bring a valid ID.")
				return m, nil
			})

		w := httptest.NewRecorder()
		req := postForm("/schedules/s1/reply", url.Values{"message": {"Please bring a valid ID."}})
		req = htmxRequest(asUser(req, domainauth.RoleUser), "reply-form")
		req.SetPathValue("id", "s1")
		f.h.ReplySend(res)(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, hxEvents(t, w), eventCloseModal)
		msg, _ := toastOf(t, w)
		assert.Equal(t, "Reply queued for delivery.", msg)
	})

	t.Run("no email on record", func(t *testing.T) {
		f := newUIFixture(t)
		rec := scheduleRecord()
		delete(rec, "email")
		f.api.EXPECT().Get(gomock.Any(), testCreds, "api/schedules", "s1").Return(rec, nil)

		w := httptest.NewRecorder()
		req := postForm("/schedules/s1/reply", url.Values{"message": {"Hello"}})
		req = htmxRequest(asUser(req, domainauth.RoleUser), "reply-form")
		req.SetPathValue("id", "s1")
		f.h.ReplySend(res)(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "This record has no email address to reply to.")
		assert.Contains(t, w.Body.String(), "Hello", "the typed message survives")
	})
}
