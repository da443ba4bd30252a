package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/target/realty-admin/internal/domain/realty"
	apperrors "github.com/target/realty-admin/internal/errors"
	"github.com/target/realty-admin/internal/service"
)

var errNoRecipientMessage = apperrors.Validation("This record has no email address to reply to.")

// ResourceDecide applies one decision (accept, decline, approve, reject) and
// reports both the status change and the notification outcome.
func (h *UIHandlers) ResourceDecide(res realty.Resource, d realty.Decision) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		result, err := h.Resources.Decide(r.Context(), CredentialsFromContext(r.Context()), res, id, d.Action)
		if err != nil {
			h.handleServiceError(w, r, err, d.Action+" "+res.Singular)
			return
		}
		h.invalidateDashboard(r.Context())

		message, kind := decisionToast(res, d, result)
		if !IsHTMX(r) {
			http.Redirect(w, r, "/"+string(res.Key), http.StatusSeeOther)
			return
		}
		HTMX(w).Toast(message, kind).Trigger(eventRecordsChanged, true)
		w.WriteHeader(http.StatusOK)
	}
}

// decisionToast words the outcome of a decision. The status change stands
// even when the email could not be queued.
func decisionToast(res realty.Resource, d realty.Decision, result service.DecisionResult) (string, string) {
	done := res.Singular + " " + strings.ToLower(d.Status) + "."
	switch {
	case result.Notified:
		return done + " The client will be emailed.", toastSuccess
	case result.NotifyErr == nil:
		return done, toastSuccess
	case errors.Is(result.NotifyErr, service.ErrAlreadyQueued):
		return done + " The client was already notified.", toastInfo
	case errors.Is(result.NotifyErr, service.ErrNoRecipient):
		return done + " No email address on file, so no email was sent.", toastWarning
	default:
		return done + " The notification email could not be queued.", toastWarning
	}
}

// ReplyForm serves the free-text reply modal.
func (h *UIHandlers) ReplyForm(res realty.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		rec, err := h.Resources.Get(r.Context(), CredentialsFromContext(r.Context()), res, id)
		if err != nil {
			h.handleServiceError(w, r, err, "load "+res.Singular)
			return
		}
		data := h.templateData(r, PageMeta{PageTitle: "Reply", CurrentPage: PageResourceForm, Section: string(res.Key)}).
			With("Resource", res).
			With("ID", id).
			With("Record", rec).
			Build()
		h.renderFragment(w, r, tmplReplyForm, data)
	}
}

// ReplySend validates and queues the reply email.
func (h *UIHandlers) ReplySend(res realty.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		message := strings.TrimSpace(r.PostFormValue("message"))

		rerender := func(fieldErrs map[string]string, err error) {
			RenderError(ErrorOpts{
				W: w, R: r,
				Err:         err,
				FieldErrors: fieldErrs,
				AppName:     h.appName(),
				PageMeta:    PageMeta{PageTitle: "Reply", CurrentPage: PageResourceForm, Section: string(res.Key)},
				Data: map[string]any{
					"Resource": res,
					"ID":       id,
					"Message":  message,
				},
				Renderer: func(w http.ResponseWriter, r *http.Request, data any) {
					h.renderFragment(w, r, tmplReplyForm, data)
				},
			})
		}

		if msg := h.validator().Field("Message", message, "required,max=5000"); msg != "" {
			rerender(map[string]string{"message": msg}, nil)
			return
		}

		err := h.Resources.Reply(r.Context(), CredentialsFromContext(r.Context()), res, id, message)
		switch {
		case err == nil, errors.Is(err, service.ErrAlreadyQueued):
		case errors.Is(err, service.ErrNoRecipient):
			rerender(nil, errNoRecipientMessage)
			return
		default:
			if apperrors.IsUnauthorized(err) {
				redirectToLogin(w, r)
				return
			}
			h.logger().WarnContext(r.Context(), "reply not queued", "resource", res.Key, "id", id, "error", err)
			rerender(nil, err)
			return
		}

		HTMX(w).Toast("Reply queued for delivery.", toastSuccess).Trigger(eventCloseModal, true)
		w.WriteHeader(http.StatusNoContent)
	}
}
