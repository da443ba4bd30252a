// Package assets provides template helpers for static asset URLs and the
// inlined critical stylesheet.
package assets

import (
	"html/template"

	httpassets "github.com/target/realty-admin/internal/http/assets"
)

// Options configures asset-related template helpers.
type Options struct {
	Resolver    *httpassets.Resolver
	CriticalCSS func() string
}

// Funcs returns the "asset" and "criticalCSS" helpers.
func Funcs(opts Options) template.FuncMap {
	return template.FuncMap{
		"asset": opts.Resolver.Resolve,
		"criticalCSS": func() template.CSS {
			if opts.CriticalCSS == nil {
				return ""
			}
			// #nosec G203 - read from our own static files
			return template.CSS(opts.CriticalCSS())
		},
	}
}
