package httpx

// Page identifiers used for navigation state and content template lookup.
const (
	PageDashboard    = "dashboard"
	PageResources    = "resources"
	PageResourceView = "resource-view"
	PageResourceForm = "resource-form"
	PageProfile      = "profile"
	PageMail         = "mail"
)

// Template paths used for loading templates in tests and production.
const (
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
	StaticPathFromRoot   = "frontend/static"
	StaticPathFromTest   = "../../frontend/static"
)

// FormMode represents the mode of a form (create or edit).
type FormMode string

const (
	FormModeEdit   FormMode = "edit"
	FormModeCreate FormMode = "create"
)

// Named templates rendered outside the page layout.
const (
	tmplDataTable     = "data-table"
	tmplResourceTable = "resource-table"
	tmplResourceForm  = "resource-form"
	tmplReplyForm     = "reply-form"
	tmplMailTable     = "mail-table"
	tmplDashboard     = "dashboard-tiles"
	tmplSignedOut     = "signed-out-page"
)

// Multipart limits: the whole body (the images of one property) and the part
// of it held in memory before spilling to temp files.
const (
	maxUploadBytes  = 64 << 20
	multipartMemory = 10 << 20
)

//nolint:gochecknoglobals // static read-only lookup
var contentTemplates = map[string]string{
	PageDashboard:    "dashboard-content",
	PageResources:    "resources-content",
	PageResourceView: "resource-view-content",
	PageResourceForm: "resource-form-content",
	PageProfile:      "profile-content",
	PageMail:         "mail-content",
}

// ContentTemplateMap returns the mapping from CurrentPage to template name.
func ContentTemplateMap() map[string]string { return contentTemplates }

// ContentTemplateFor returns the content template for the given CurrentPage.
// Falls back to dashboard-content for unknown pages.
func ContentTemplateFor(currentPage string) string {
	if name, ok := ContentTemplateMap()[currentPage]; ok {
		return name
	}
	return "dashboard-content"
}
