package httpx

import (
	"bytes"
	"errors"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"

	httpassets "github.com/target/realty-admin/internal/http/assets"
	assetfuncs "github.com/target/realty-admin/internal/http/templates/assets"
	corefuncs "github.com/target/realty-admin/internal/http/templates/core"
	realtyfuncs "github.com/target/realty-admin/internal/http/templates/realty"
)

const (
	criticalCSSPath     = "css/critical.css"
	fallbackCriticalCSS = ":root{--color-background:#f6f7f9;--color-surface:#fff;--color-text:#1f2937;}"
)

// TemplateRenderer renders HTML templates for UI responses.
type TemplateRenderer struct {
	t             *template.Template
	resolver      *httpassets.Resolver
	criticalCSSFS fs.FS  // re-read on every render in dev mode
	criticalCSS   string // cached outside dev mode
	devMode       bool
	logger        *slog.Logger
}

// TemplateRendererConfig holds configuration for creating a TemplateRenderer.
type TemplateRendererConfig struct {
	TemplateFS fs.FS // Required
	// StaticFS is rooted at the static directory. It feeds the asset
	// fingerprints and css/critical.css.
	StaticFS fs.FS
	DevMode  bool
	Logger   *slog.Logger
}

// NewTemplateRenderer parses every template under TemplateFS.
func NewTemplateRenderer(cfg TemplateRendererConfig) (*TemplateRenderer, error) {
	if cfg.TemplateFS == nil {
		return nil, errors.New("TemplateFS is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	renderer := &TemplateRenderer{
		criticalCSSFS: cfg.StaticFS,
		devMode:       cfg.DevMode,
		logger:        logger,
	}
	if cfg.StaticFS != nil {
		renderer.resolver = httpassets.NewResolver(cfg.StaticFS, cfg.DevMode, logger)
		if !cfg.DevMode {
			renderer.criticalCSS = renderer.readCriticalCSS()
		}
	}

	var t *template.Template
	var err error
	t, err = template.New("root").Funcs(createTemplateFuncs(&t, renderer)).ParseFS(cfg.TemplateFS,
		"*.tmpl",
		"pages/*.tmpl",
		"partials/*.tmpl",
	)
	if err != nil {
		logger.Error("template parsing failed", slog.Any("error", err), slog.String("phase", "initialization"))
		return nil, err
	}
	renderer.t = t
	return renderer, nil
}

func (r *TemplateRenderer) readCriticalCSS() string {
	b, err := fs.ReadFile(r.criticalCSSFS, criticalCSSPath)
	if err != nil {
		r.logger.Warn("critical css unavailable", "path", criticalCSSPath, "error", err)
		return fallbackCriticalCSS
	}
	return string(b)
}

func (r *TemplateRenderer) getCriticalCSS() string {
	if r.devMode && r.criticalCSSFS != nil {
		return r.readCriticalCSS()
	}
	return r.criticalCSS
}

// RenderFull renders the full page (layout + page content).
func (r *TemplateRenderer) RenderFull(w http.ResponseWriter, _ *http.Request, data any) error {
	return r.renderTemplate(w, "layout", data)
}

// RenderPartial renders only the main content area.
func (r *TemplateRenderer) RenderPartial(w http.ResponseWriter, _ *http.Request, data any) error {
	return r.renderTemplate(w, "content", data)
}

// RenderError renders the standalone error page.
func (r *TemplateRenderer) RenderError(w http.ResponseWriter, _ *http.Request, data any) error {
	return r.renderTemplate(w, "error-layout", data)
}

// RenderNamed renders one named template, such as a modal form or a table
// fragment swapped in by HTMX.
func (r *TemplateRenderer) RenderNamed(w http.ResponseWriter, name string, data any) error {
	return r.renderTemplate(w, name, data)
}

// Execute writes a named template to w without buffering or headers.
func (r *TemplateRenderer) Execute(w io.Writer, name string, data any) error {
	if err := r.t.ExecuteTemplate(w, name, data); err != nil {
		r.logTemplateError(name, err)
		return err
	}
	return nil
}

func (r *TemplateRenderer) renderTemplate(w http.ResponseWriter, templateName string, data any) error {
	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, templateName, data); err != nil {
		r.logTemplateError(templateName, err)
		return err
	}

	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Error("failed to write rendered template",
			slog.String("template", templateName),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

func (r *TemplateRenderer) logTemplateError(templateName string, err error) {
	if err == nil {
		return
	}
	r.logger.Error("template execution failed",
		slog.String("template", templateName),
		slog.Any("error", err),
	)
}

func createTemplateFuncs(t **template.Template, renderer *TemplateRenderer) template.FuncMap {
	funcs := template.FuncMap{}
	mergeTemplateFuncs(funcs,
		corefuncs.Funcs(corefuncs.Deps{
			Template:           t,
			ContentTemplateFor: ContentTemplateFor,
		}),
		assetfuncs.Funcs(assetfuncs.Options{
			Resolver:    renderer.resolver,
			CriticalCSS: renderer.getCriticalCSS,
		}),
		realtyfuncs.Funcs(),
	)
	return funcs
}

func mergeTemplateFuncs(dst template.FuncMap, sources ...template.FuncMap) {
	for _, src := range sources {
		for key, val := range src {
			dst[key] = val
		}
	}
}
