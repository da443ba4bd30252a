package tableview

// Window is the derived page state of a table: which page is shown, how many
// rows a page holds and how many pages exist. It is never stored; handlers
// rebuild it from the query string on every request.
type Window struct {
	CurrentPage  int
	ItemsPerPage int
	TotalPages   int
}

// TotalPages returns ceil(count/perPage) with a floor of one page so an empty
// table still has a navigable (single) page. perPage below 1 is treated as 1.
func TotalPages(count, perPage int) int {
	if perPage < 1 {
		perPage = 1
	}
	if count <= 0 {
		return 1
	}
	return (count + perPage - 1) / perPage
}

// ClampPage bounds page to [1, max(totalPages, 1)].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	switch {
	case page < 1:
		return 1
	case page > totalPages:
		return totalPages
	default:
		return page
	}
}

// NewWindow builds a clamped window for count filtered rows.
func NewWindow(page, perPage, count int) Window {
	if perPage < 1 {
		perPage = 1
	}
	total := TotalPages(count, perPage)
	return Window{
		CurrentPage:  ClampPage(page, total),
		ItemsPerPage: perPage,
		TotalPages:   total,
	}
}

// Prev returns the page a "previous" control navigates to. At page 1 it is
// page 1 again, so the control is a no-op.
func (w Window) Prev() int { return ClampPage(w.CurrentPage-1, w.TotalPages) }

// Next returns the page a "next" control navigates to. On the last page it
// returns the last page.
func (w Window) Next() int { return ClampPage(w.CurrentPage+1, w.TotalPages) }

// HasPrev reports whether "previous" moves anywhere.
func (w Window) HasPrev() bool { return w.Prev() != w.CurrentPage }

// HasNext reports whether "next" moves anywhere.
func (w Window) HasNext() bool { return w.Next() != w.CurrentPage }

// Offset is the index of the first row on the current page.
func (w Window) Offset() int {
	if w.CurrentPage < 1 || w.ItemsPerPage < 1 {
		return 0
	}
	return (w.CurrentPage - 1) * w.ItemsPerPage
}

// PageAfterResize returns the page to show after the user picked a page size.
// Any change of size restarts from page 1.
func PageAfterResize(prevSize, size, page int) int {
	if prevSize > 0 && prevSize != size {
		return 1
	}
	return page
}

// Paginate returns the slice of items visible in w. The caller has already
// filtered items; Paginate only slices.
func Paginate[T any](items []T, w Window) []T {
	start := w.Offset()
	if start >= len(items) {
		return nil
	}
	end := min(start+w.ItemsPerPage, len(items))
	return items[start:end]
}
