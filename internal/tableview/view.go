package tableview

import "html/template"

// EmptyMessage is shown in the placeholder row of an empty table.
const EmptyMessage = "No data available"

// Cell is one rendered table cell.
type Cell struct {
	Text string
	// HTML is set instead of Text for fragment values (action buttons, links).
	HTML template.HTML
	// Title carries the full text of a clamped cell.
	Title string
	// Badge is non-nil for status and known-category values.
	Badge *Badge
	Price bool
	Clamp bool
}

// Row is one rendered table line.
type Row struct {
	Cells []Cell
}

// Pager holds the prev/next controls of a table.
type Pager struct {
	Window
	HasPrev bool
	HasNext bool
	PrevURL string
	NextURL string
}

// View is the fully formatted table handed to the "data-table" template.
type View struct {
	Headers      []string
	Rows         []Row
	Empty        bool
	ColSpan      int
	EmptyMessage string
	ClampLines   int
	Pager        Pager
}

// PageURL returns the link that selects page n. It is the table's
// page-change callback: following the link is how the page changes.
type PageURL func(page int) string

// Build formats rows for display. rows are already filtered and sliced to the
// current page by the caller. Build has no side effects; identical inputs
// produce identical views.
func Build(rows []any, columns []Column, w Window, pageURL PageURL) View {
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.Label
	}

	view := View{
		Headers:      headers,
		ColSpan:      max(len(columns), 1),
		EmptyMessage: EmptyMessage,
		ClampLines:   LongTextLines,
		Pager:        buildPager(w, pageURL),
	}

	if len(rows) == 0 {
		view.Empty = true
		return view
	}

	view.Rows = make([]Row, len(rows))
	for i, r := range rows {
		cells := make([]Cell, len(columns))
		for j, c := range columns {
			cells[j] = FormatCell(c, c.Value(r))
		}
		view.Rows[i] = Row{Cells: cells}
	}
	return view
}

// FormatCell applies the column's formatting policy to a raw value. Long-text
// fields are clamped whatever the column kind.
func FormatCell(c Column, v any) Cell {
	if h, ok := v.(template.HTML); ok {
		return Cell{HTML: h}
	}

	text := displayString(v)
	if IsLongTextField(c.Field) {
		return Cell{Text: truncate(text, longTextRunes), Title: text, Clamp: true}
	}
	if v == nil {
		return Cell{}
	}

	switch c.Kind {
	case Price:
		if s, ok := FormatPeso(v); ok {
			return Cell{Text: s, Price: true}
		}
	case Status:
		if text != "" {
			b := StatusBadge(text)
			return Cell{Text: b.Label, Title: text, Badge: &b}
		}
	case Category:
		if b, ok := CategoryBadge(text); ok {
			return Cell{Text: b.Label, Badge: &b}
		}
	case Plain:
	}
	return Cell{Text: text}
}

func buildPager(w Window, pageURL PageURL) Pager {
	w = NewWindowFrom(w)
	p := Pager{Window: w, HasPrev: w.HasPrev(), HasNext: w.HasNext()}
	if pageURL != nil {
		p.PrevURL = pageURL(w.Prev())
		p.NextURL = pageURL(w.Next())
	}
	return p
}

// NewWindowFrom normalizes a window assembled by hand so CurrentPage lies in
// [1, TotalPages].
func NewWindowFrom(w Window) Window {
	if w.ItemsPerPage < 1 {
		w.ItemsPerPage = 1
	}
	if w.TotalPages < 1 {
		w.TotalPages = 1
	}
	w.CurrentPage = ClampPage(w.CurrentPage, w.TotalPages)
	return w
}
