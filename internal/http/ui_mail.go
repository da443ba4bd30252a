package httpx

import (
	"context"
	"net/http"
	"strings"

	dmail "github.com/target/realty-admin/internal/domain/mail"
	apperrors "github.com/target/realty-admin/internal/errors"
	realtyfuncs "github.com/target/realty-admin/internal/http/templates/realty"
	"github.com/target/realty-admin/internal/tableview"
)

// mailStatuses are the choices of the status filter.
var mailStatuses = []dmail.Status{dmail.StatusPending, dmail.StatusSending, dmail.StatusSent, dmail.StatusFailed}

func parseMailStatus(raw string) dmail.Status {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for _, s := range mailStatuses {
		if string(s) == raw {
			return s
		}
	}
	return ""
}

// MailLog lists outbox messages. Admin only.
// GET /mail?status=failed.
func (h *UIHandlers) MailLog(w http.ResponseWriter, r *http.Request) {
	status := parseMailStatus(r.URL.Query().Get("status"))
	size := realtyfuncs.ParsePageSize(r.URL.Query().Get("size"), h.pageSize())
	page := max(parseIntQuery(r, "page", 1), 1)
	page = tableview.PageAfterResize(parseIntQuery(r, "prev_size", 0), size, page)

	HandleTable(TableHandlerOpts[dmail.Message]{
		Handler: h,
		W:       w,
		R:       r,
		Fetch: func(ctx context.Context) ([]dmail.Message, tableview.Window, error) {
			if h.Mail == nil {
				return nil, tableview.Window{}, apperrors.Internal("Email is not configured.")
			}
			total, err := h.Mail.Count(ctx, dmail.ListFilter{Status: status})
			if err != nil {
				return nil, tableview.Window{}, err
			}
			win := tableview.NewWindow(page, size, total)
			msgs, err := h.Mail.List(ctx, dmail.ListFilter{Status: status, Limit: size, Offset: win.Offset()})
			return msgs, win, err
		},
		Columns:  h.mailColumns(),
		BasePath: "/mail",
		Window:   tableview.NewWindow(1, size, 0),
		PageMeta: PageMeta{PageTitle: "Email log", CurrentPage: PageMail},
		Fragment: tmplMailTable,
		EnrichData: func(b *PageData, _ []dmail.Message) {
			b.With("Status", string(status)).
				With("Statuses", mailStatuses).
				With("PageSize", size)
		},
	})
}

// MailRetry puts a failed message back in the queue. Admin only.
// POST /mail/{id}/retry.
func (h *UIHandlers) MailRetry(w http.ResponseWriter, r *http.Request) {
	if h.Mail == nil {
		h.handleServiceError(w, r, apperrors.Internal("Email is not configured."), "retry mail")
		return
	}
	if err := h.Mail.Retry(r.Context(), r.PathValue("id")); err != nil {
		h.handleServiceError(w, r, err, "retry mail")
		return
	}
	if !IsHTMX(r) {
		http.Redirect(w, r, "/mail", http.StatusSeeOther)
		return
	}
	HTMX(w).Toast("Message queued for another attempt.", toastSuccess).Trigger(eventRecordsChanged, true)
	w.WriteHeader(http.StatusOK)
}
