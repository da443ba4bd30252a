package httpx

import (
	"net/http"

	"github.com/target/realty-admin/internal/tableview"
)

// PageData collects the values a page template renders, starting from the
// layout fields every page shares.
type PageData struct {
	values map[string]any
}

// NewPageData seeds the layout fields for r.
func NewPageData(r *http.Request, meta PageMeta, appName string) *PageData {
	return &PageData{values: basePageData(r, meta, appName)}
}

// WithTable sets the tableview under "Table".
func (p *PageData) WithTable(view tableview.View) *PageData {
	p.values["Table"] = view
	return p
}

// WithError shows msg in the page-level error banner.
func (p *PageData) WithError(msg string) *PageData {
	p.values["Error"] = true
	p.values["ErrorMessage"] = msg
	return p
}

// WithFieldErrors attaches per-field form errors keyed by field name.
func (p *PageData) WithFieldErrors(errs map[string]string) *PageData {
	if len(errs) > 0 {
		p.values["Errors"] = errs
	}
	return p
}

func (p *PageData) With(key string, value any) *PageData {
	p.values[key] = value
	return p
}

func (p *PageData) Build() map[string]any {
	return p.values
}
