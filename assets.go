// Package realtyadmin embeds the UI templates and static files for
// production builds. In dev mode both are read from disk instead.
package realtyadmin

import "embed"

//go:embed all:frontend/static
var StaticFS embed.FS

//go:embed all:frontend/templates
var TemplateFS embed.FS
