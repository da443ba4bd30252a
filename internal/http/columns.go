package httpx

import (
	"bytes"
	"html/template"
	"net/http"

	dmail "github.com/target/realty-admin/internal/domain/mail"
	"github.com/target/realty-admin/internal/domain/realty"
	corefuncs "github.com/target/realty-admin/internal/http/templates/core"
	"github.com/target/realty-admin/internal/tableview"
)

const (
	tmplRowActions  = "row-actions"
	tmplMailActions = "mail-actions"
)

// dateColumn shows an API timestamp as a friendly date.
func dateColumn(label, field string) tableview.Column {
	get := tableview.MustPath(field)
	return tableview.Column{
		Label: label,
		Field: field,
		Accessor: func(row any) any {
			v := get(row)
			if v == nil {
				return nil
			}
			return corefuncs.FriendlyDate(v)
		},
	}
}

//nolint:gochecknoglobals // static read-only lookup
var resourceColumns = map[realty.ResourceKey][]tableview.Column{
	realty.Properties: {
		tableview.Field("Name", "name", tableview.Plain),
		tableview.Field("Location", "location", tableview.Plain),
		tableview.Field("Price", "price", tableview.Price),
		tableview.Field("Category", "category", tableview.Category),
		tableview.Field("Status", "status", tableview.Status),
		tableview.Field("Description", "description", tableview.Plain),
	},
	realty.Listings: {
		tableview.Field("Title", "title", tableview.Plain),
		tableview.Field("Location", "location", tableview.Plain),
		tableview.Field("Price", "price", tableview.Price),
		tableview.Field("Category", "category", tableview.Category),
		tableview.Field("Status", "status", tableview.Status),
	},
	realty.Applications: {
		tableview.Field("Applicant", "fullName", tableview.Plain),
		tableview.Field("Email", "email", tableview.Plain),
		tableview.Field("Phone", "phone", tableview.Plain),
		tableview.Field("Property", "property", tableview.Plain),
		tableview.Field("Status", "status", tableview.Status),
		dateColumn("Submitted", "createdAt"),
	},
	realty.News: {
		tableview.Field("Title", "title", tableview.Plain),
		tableview.Field("Category", "category", tableview.Category),
		tableview.Field("Content", "content", tableview.Plain),
		dateColumn("Published", "publishedAt"),
	},
	realty.Testimonials: {
		tableview.Field("Name", "name", tableview.Plain),
		tableview.Field("Content", "content", tableview.Plain),
		tableview.Field("Rating", "rating", tableview.Plain),
	},
	realty.Videos: {
		tableview.Field("Title", "title", tableview.Plain),
		tableview.Field("URL", "url", tableview.Plain),
		tableview.Field("Description", "description", tableview.Plain),
	},
	realty.Schedules: {
		tableview.Field("Client", "name", tableview.Plain),
		tableview.Field("Email", "email", tableview.Plain),
		tableview.Field("Property", "property", tableview.Plain),
		dateColumn("Date", "date"),
		tableview.Field("Time", "time", tableview.Plain),
		tableview.Field("Status", "status", tableview.Status),
	},
	realty.Profiles: {
		tableview.Field("Name", "name", tableview.Plain),
		tableview.Field("Email", "email", tableview.Plain),
		tableview.Field("Role", "role", tableview.Plain),
		tableview.Field("Contact", "contact", tableview.Plain),
	},
}

// ColumnsFor returns the data columns of a resource table.
func ColumnsFor(key realty.ResourceKey) []tableview.Column {
	return resourceColumns[key]
}

// recordRow turns a record into the value column accessors read. JMESPath
// only walks plain maps.
func recordRow(rec realty.Record) any {
	return map[string]any(rec)
}

// rowRecord is the inverse of recordRow.
func rowRecord(row any) realty.Record {
	switch v := row.(type) {
	case map[string]any:
		return realty.Record(v)
	case realty.Record:
		return v
	default:
		return nil
	}
}

// actionsColumn renders the per-row buttons (view, edit, decisions, delete).
func (h *UIHandlers) actionsColumn(r *http.Request, res realty.Resource) tableview.Column {
	isAdmin := false
	if s := SessionFrom(r.Context()); s != nil {
		isAdmin = s.IsAdmin()
	}
	return tableview.Column{
		Label: "Actions",
		Accessor: func(row any) any {
			rec := rowRecord(row)
			return h.renderHTML(tmplRowActions, map[string]any{
				"Resource": res,
				"ID":       rec.ID(),
				"Status":   rec.String("status"),
				"IsAdmin":  isAdmin,
			})
		},
	}
}

// renderHTML executes a partial into a string for embedding in a cell.
func (h *UIHandlers) renderHTML(name string, data any) template.HTML {
	var buf bytes.Buffer
	if err := h.T.Execute(&buf, name, data); err != nil {
		return ""
	}
	// #nosec G203 - output of html/template
	return template.HTML(buf.String())
}

// mailColumns are the columns of the outbox log.
func (h *UIHandlers) mailColumns() []tableview.Column {
	msg := func(row any) dmail.Message {
		m, _ := row.(dmail.Message)
		return m
	}
	return []tableview.Column{
		{Label: "Created", Accessor: func(row any) any { return corefuncs.FriendlyTime(msg(row).CreatedAt) }},
		{Label: "Kind", Accessor: func(row any) any { return msg(row).Kind }},
		{Label: "To", Accessor: func(row any) any { return msg(row).To.Address }},
		{Label: "Subject", Accessor: func(row any) any { return msg(row).Subject }},
		{Label: "Status", Kind: tableview.Status, Accessor: func(row any) any { return string(msg(row).Status) }},
		{Label: "Attempts", Accessor: func(row any) any { return msg(row).Attempts }},
		{Label: "Last error", Accessor: func(row any) any { return msg(row).LastError }},
		{Label: "", Accessor: func(row any) any {
			m := msg(row)
			if m.Status != dmail.StatusFailed {
				return nil
			}
			return h.renderHTML(tmplMailActions, map[string]any{"ID": m.ID})
		}},
	}
}
