// Package viewmodel holds the shapes templates render the page chrome from.
package viewmodel

// User represents the signed-in user shown in the header.
type User struct {
	Name     string
	Email    string
	Role     string
	Initials string
}

// NavItem is one sidebar link.
type NavItem struct {
	Key    string
	Title  string
	Href   string
	Icon   string
	Active bool
	// Badge is a count shown next to the link, such as failed emails.
	Badge int
}

// Layout captures shared chrome metadata (titles, navigation state, auth flags).
type Layout struct {
	AppName         string
	Title           string
	PageTitle       string
	CurrentPage     string
	Section         string
	CSRFToken       string
	IsAuthenticated bool
	IsAdmin         bool
	User            *User
	Nav             []NavItem
}

// LayoutProvider exposes layout metadata for renderer utilities.
type LayoutProvider interface {
	LayoutData() *Layout
}

// LayoutData implements LayoutProvider.
func (l *Layout) LayoutData() *Layout { return l }
