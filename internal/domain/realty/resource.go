// Package realty describes the back-office resources managed through the
// backend REST API: their API paths, searchable fields, form fields and the
// status decisions staff can take on them.
package realty

import (
	"slices"
	"strings"
)

// ResourceKey identifies a managed resource. It doubles as the URL segment of
// the admin pages and the API collection path.
type ResourceKey string

const (
	Properties   ResourceKey = "properties"
	Listings     ResourceKey = "listings"
	Applications ResourceKey = "applications"
	News         ResourceKey = "news"
	Testimonials ResourceKey = "testimonials"
	Videos       ResourceKey = "videos"
	Schedules    ResourceKey = "schedules"
	Profiles     ResourceKey = "profiles"
)

// FieldType is the HTML input used for a form field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldNumber   FieldType = "number"
	FieldSelect   FieldType = "select"
	FieldFile     FieldType = "file"
	FieldDate     FieldType = "date"
	FieldTime     FieldType = "time"
	FieldEmail    FieldType = "email"
	FieldURL      FieldType = "url"
	FieldTel      FieldType = "tel"
)

// FormField describes one input of a resource's create/edit modal.
// Rules is a go-playground/validator tag applied to the submitted value.
type FormField struct {
	Name     string
	Label    string
	Type     FieldType
	Options  []string
	Rules    string
	Multiple bool
	Help     string
}

// Required reports whether the field's rules demand a value.
func (f FormField) Required() bool {
	return slices.Contains(strings.Split(f.Rules, ","), "required")
}

// Decision is a status change staff can apply to a record, such as accepting
// an appointment. Template names the notification email sent afterwards.
type Decision struct {
	Action   string
	Label    string
	Status   string
	Template string
	Style    string
}

// Resource describes one managed collection.
type Resource struct {
	Key      ResourceKey
	Title    string
	Singular string
	// APIPath is relative to the API base, e.g. "api/properties".
	APIPath      string
	SearchFields []string
	Form         []FormField
	// ReadOnly resources are created elsewhere (the public site); staff can
	// review, decide and delete but not create or edit them.
	ReadOnly  bool
	Decisions []Decision
	// Icon is the sidebar icon name.
	Icon string
}

// HasFiles reports whether the form posts file uploads.
func (r Resource) HasFiles() bool {
	for _, f := range r.Form {
		if f.Type == FieldFile {
			return true
		}
	}
	return false
}

// Decision returns the decision with the given action.
func (r Resource) Decision(action string) (Decision, bool) {
	for _, d := range r.Decisions {
		if d.Action == action {
			return d, true
		}
	}
	return Decision{}, false
}

// Field returns the form field with the given name.
func (r Resource) Field(name string) (FormField, bool) {
	for _, f := range r.Form {
		if f.Name == name {
			return f, true
		}
	}
	return FormField{}, false
}
