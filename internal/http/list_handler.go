package httpx

import (
	"context"
	"net/http"

	apperrors "github.com/target/realty-admin/internal/errors"
	"github.com/target/realty-admin/internal/tableview"
)

// TableFetcher loads the rows of the current page and the window they sit in.
type TableFetcher[T any] func(ctx context.Context) ([]T, tableview.Window, error)

// DataEnricher adds page-specific data after the rows are fetched.
type DataEnricher[T any] func(builder *PageData, items []T)

// TableHandlerOpts contains all options needed for the generic table handler.
type TableHandlerOpts[T any] struct {
	Handler *UIHandlers
	W       http.ResponseWriter
	R       *http.Request
	Fetch   TableFetcher[T]
	Columns []tableview.Column
	// Row converts an item into the value column accessors read. Defaults to
	// the item itself.
	Row func(T) any
	// BasePath is the path page links point at, e.g. "/properties".
	BasePath string
	// Window is shown when Fetch fails.
	Window   tableview.Window
	PageMeta PageMeta
	// Fragment is rendered alone when htmx targets the table region.
	Fragment     string
	ErrorMessage string
	EnrichData   DataEnricher[T]
}

// HandleTable renders a paginated table page. It handles the fetch, the
// error banner, the pager links and the choice between a full page and a
// table-only fragment.
func HandleTable[T any](opts TableHandlerOpts[T]) {
	if opts.W == nil || opts.R == nil || opts.Handler == nil || opts.Fetch == nil {
		if opts.W != nil {
			http.Error(opts.W, "Internal configuration error", http.StatusInternalServerError)
		}
		return
	}
	h := opts.Handler
	ctx := opts.R.Context()

	builder := h.templateData(opts.R, opts.PageMeta)
	items, window, err := opts.Fetch(ctx)
	if err != nil {
		if apperrors.IsUnauthorized(err) {
			redirectToLogin(opts.W, opts.R)
			return
		}
		h.logger().WarnContext(ctx, "table fetch failed", "path", opts.R.URL.Path, "error", err)
		msg := opts.ErrorMessage
		if msg == "" {
			msg = apperrors.UserMessage(err)
		}
		builder.WithError(msg)
		items, window = nil, opts.Window
	}

	rows := make([]any, len(items))
	for i, item := range items {
		if opts.Row != nil {
			rows[i] = opts.Row(item)
		} else {
			rows[i] = item
		}
	}
	window = tableview.NewWindowFrom(window)
	view := tableview.Build(rows, opts.Columns, window,
		buildPageURL(opts.BasePath, opts.R.URL.Query(), window.ItemsPerPage))
	builder.WithTable(view).With("BasePath", opts.BasePath)

	if opts.EnrichData != nil {
		opts.EnrichData(builder, items)
	}
	data := builder.Build()

	if opts.Fragment != "" && IsHTMX(opts.R) && HXTarget(opts.R) == tableRegionID {
		h.renderFragment(opts.W, opts.R, opts.Fragment, data)
		return
	}
	h.renderDashboardPage(opts.W, opts.R, data)
}
