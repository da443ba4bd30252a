package httpx

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/target/realty-admin/internal/domain/realty"
	realtyfuncs "github.com/target/realty-admin/internal/http/templates/realty"
	"github.com/target/realty-admin/internal/service"
	"github.com/target/realty-admin/internal/tableview"
)

// listParams are the table controls of a list page as read from the query.
type listParams struct {
	Search   string
	Page     int
	Size     int
	PrevSize int
}

// parseListParams reads q, page, size and the previous size. A changed
// search term restarts at page 1 like a changed size does.
func (h *UIHandlers) parseListParams(r *http.Request) listParams {
	q := r.URL.Query()
	p := listParams{
		Search:   strings.TrimSpace(q.Get("q")),
		Page:     max(parseIntQuery(r, "page", 1), 1),
		Size:     realtyfuncs.ParsePageSize(q.Get("size"), h.pageSize()),
		PrevSize: parseIntQuery(r, "prev_size", 0),
	}
	if q.Has("prev_q") && strings.TrimSpace(q.Get("prev_q")) != p.Search {
		p.Page = 1
	}
	return p
}

// ResourceList serves the table page of a resource.
func (h *UIHandlers) ResourceList(res realty.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := h.parseListParams(r)
		creds := CredentialsFromContext(r.Context())

		columns := append(append([]tableview.Column{}, ColumnsFor(res.Key)...), h.actionsColumn(r, res))

		HandleTable(TableHandlerOpts[realty.Record]{
			Handler: h,
			W:       w,
			R:       r,
			Fetch: func(ctx context.Context) ([]realty.Record, tableview.Window, error) {
				page, err := h.Resources.List(ctx, creds, res, service.ListRequest{
					Search:   p.Search,
					Page:     p.Page,
					Size:     p.Size,
					PrevSize: p.PrevSize,
				})
				return page.Records, page.Window, err
			},
			Columns:  columns,
			Row:      recordRow,
			BasePath: "/" + string(res.Key),
			Window:   tableview.NewWindow(1, p.Size, 0),
			PageMeta: PageMeta{
				PageTitle:   res.Title,
				CurrentPage: PageResources,
				Section:     string(res.Key),
			},
			Fragment:     tmplResourceTable,
			ErrorMessage: "Unable to load " + strings.ToLower(res.Title) + ".",
			EnrichData: func(b *PageData, _ []realty.Record) {
				b.With("Resource", res).
					With("Search", p.Search).
					With("PageSize", p.Size).
					With("Refresh", h.refreshInterval(res))
			},
		})
	}
}

// refreshInterval is the hx-trigger polling interval of a list, "" for none.
func (h *UIHandlers) refreshInterval(res realty.Resource) string {
	if res.Key != realty.Schedules || h.Config.SchedulesRefresh <= 0 {
		return ""
	}
	// htmx wants whole seconds ("every 30s"), not "1m0s".
	return strconv.Itoa(max(int(h.Config.SchedulesRefresh.Seconds()), 1)) + "s"
}

// detailField is one labeled value on a record page.
type detailField struct {
	Label string
	Cell  tableview.Cell
}

// ResourceView serves a single record: its fields, images and, for news, the
// rendered article body.
func (h *UIHandlers) ResourceView(res realty.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		rec, err := h.Resources.Get(r.Context(), CredentialsFromContext(r.Context()), res, id)
		if err != nil {
			h.handleServiceError(w, r, err, "load "+res.Singular)
			return
		}

		row := recordRow(rec)
		columns := ColumnsFor(res.Key)
		fields := make([]detailField, 0, len(columns))
		for _, c := range columns {
			fields = append(fields, detailField{Label: c.Label, Cell: tableview.FormatCell(c, c.Value(row))})
		}

		b := h.templateData(r, PageMeta{
			Title:       res.Singular + " " + id,
			PageTitle:   res.Singular,
			CurrentPage: PageResourceView,
			Section:     string(res.Key),
		}).
			With("Resource", res).
			With("Record", rec).
			With("ID", id).
			With("Fields", fields)

		if res.Key == realty.News {
			body, mdErr := realtyfuncs.Markdown(rec.String("content"))
			if mdErr != nil {
				h.logger().WarnContext(r.Context(), "article markdown failed", "id", id, "error", mdErr)
			} else {
				b.With("Body", body)
			}
		}
		h.renderDashboardPage(w, r, b.Build())
	}
}

// ResourceDelete removes a record. Admin only.
func (h *UIHandlers) ResourceDelete(res realty.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := h.Resources.Delete(r.Context(), CredentialsFromContext(r.Context()), res, id); err != nil {
			h.handleServiceError(w, r, err, "delete "+res.Singular)
			return
		}
		h.invalidateDashboard(r.Context())

		if !IsHTMX(r) {
			http.Redirect(w, r, "/"+string(res.Key), http.StatusSeeOther)
			return
		}
		// Deleting from the record page leaves nothing to show there.
		if strings.HasSuffix(r.Header.Get("Hx-Current-Url"), "/"+string(res.Key)+"/"+id) {
			HTMX(w).Toast(res.Singular+" deleted.", toastSuccess).Redirect("/" + string(res.Key))
			return
		}
		HTMX(w).Toast(res.Singular+" deleted.", toastSuccess).Trigger(eventRecordsChanged, true)
		w.WriteHeader(http.StatusOK)
	}
}

func (h *UIHandlers) invalidateDashboard(ctx context.Context) {
	if h.Dashboard != nil {
		h.Dashboard.Invalidate(ctx)
	}
}
