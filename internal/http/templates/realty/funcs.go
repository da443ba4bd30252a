// Package realty provides template helpers for resource pages: badges, peso
// amounts, record field access and Markdown bodies.
package realty

import (
	"bytes"
	"html/template"
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	domain "github.com/target/realty-admin/internal/domain/realty"
	"github.com/target/realty-admin/internal/tableview"
)

// PageSizes are the choices of the page size select.
var PageSizes = []int{5, 10, 25, 50}

// Raw HTML in article bodies is dropped; goldmark escapes it unless the
// unsafe renderer option is set.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM, extension.Linkify))

// Funcs returns the resource page helpers.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"statusBadge": tableview.StatusBadge,
		"categoryBadge": func(category string) *tableview.Badge {
			b, ok := tableview.CategoryBadge(category)
			if !ok {
				return nil
			}
			return &b
		},
		"peso": func(v any) string {
			return tableview.FormatCell(tableview.Column{Kind: tableview.Price}, v).Text
		},
		"pageSizes":  func() []int { return PageSizes },
		"fieldValue": FieldValue,
		"recordImages": func(rec domain.Record) []string {
			for _, k := range []string{"images", "image", "photo", "thumbnail", "avatar"} {
				if urls := rec.Strings(k); len(urls) > 0 {
					return urls
				}
			}
			return nil
		},
		"markdown": Markdown,
		"isSelected": func(options []string, value string) map[string]bool {
			out := make(map[string]bool, len(options))
			for _, o := range options {
				out[o] = o == value
			}
			return out
		},
	}
}

// FieldValue returns the value a form input shows: the re-submitted value
// after a failed post, else the stored record field.
func FieldValue(rec domain.Record, submitted map[string]string, name string) string {
	if v, ok := submitted[name]; ok {
		return v
	}
	if rec == nil {
		return ""
	}
	v := rec.String(name)
	// Date inputs only accept yyyy-mm-dd.
	if len(v) > 10 && v[4] == '-' && v[7] == '-' && v[10] == 'T' {
		return v[:10]
	}
	return v
}

// Markdown renders an article body to HTML.
func Markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	// #nosec G203 - goldmark output with raw HTML disabled
	return template.HTML(buf.String()), nil
}

// ParsePageSize accepts only the offered sizes and falls back to def.
func ParsePageSize(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	for _, s := range PageSizes {
		if s == n {
			return n
		}
	}
	return def
}
