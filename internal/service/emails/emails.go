// Package emails renders the notification emails. Each message is a pair of
// templates, <name>.txt and <name>.gohtml, wrapped by the _base layout and
// defining "subject" and "content".
package emails

import (
	"bytes"
	"embed"
	"fmt"
	htmltmpl "html/template"
	"io/fs"
	"slices"
	"strings"
	texttmpl "text/template"
)

//go:embed templates/*.txt templates/*.gohtml
var templateFS embed.FS

// Template names.
const (
	AppointmentAccepted = "appointment_accepted"
	AppointmentDeclined = "appointment_declined"
	ApplicationApproved = "application_approved"
	ApplicationRejected = "application_rejected"
	ContactReply        = "contact_reply"
)

// Notice is the data every template receives under .Data. Templates skip
// empty fields.
type Notice struct {
	RecipientName string
	Property      string
	Position      string
	Date          string
	Time          string
	Status        string
	Message       string
}

// Paragraphs splits Message on blank lines for the HTML body.
func (n Notice) Paragraphs() []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(n.Message, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type contextData struct {
	AppName string
	SiteURL string
	Data    Notice
}

// Rendered is a rendered email.
type Rendered struct {
	Subject string
	Text    string
	HTML    string
}

// RendererConfig carries values shared by every email.
type RendererConfig struct {
	AppName string
	SiteURL string
}

type pair struct {
	text *texttmpl.Template
	html *htmltmpl.Template
}

// Renderer holds the parsed templates.
type Renderer struct {
	cfg   RendererConfig
	pairs map[string]pair
}

// NewRenderer parses every embedded template. Templates fail on missing
// fields rather than printing "<no value>".
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	names, err := templateNames()
	if err != nil {
		return nil, err
	}
	r := &Renderer{cfg: cfg, pairs: make(map[string]pair, len(names))}
	for _, name := range names {
		text, err := texttmpl.ParseFS(templateFS, "templates/_base.txt", "templates/"+name+".txt")
		if err != nil {
			return nil, fmt.Errorf("parse %s.txt: %w", name, err)
		}
		html, err := htmltmpl.ParseFS(templateFS, "templates/_base.gohtml", "templates/"+name+".gohtml")
		if err != nil {
			return nil, fmt.Errorf("parse %s.gohtml: %w", name, err)
		}
		r.pairs[name] = pair{
			text: text.Option("missingkey=error"),
			html: html.Option("missingkey=error"),
		}
	}
	return r, nil
}

// Names lists the available templates.
func (r *Renderer) Names() []string {
	out := make([]string, 0, len(r.pairs))
	for n := range r.pairs {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Render executes template name with n.
func (r *Renderer) Render(name string, n Notice) (Rendered, error) {
	p, ok := r.pairs[name]
	if !ok {
		return Rendered{}, fmt.Errorf("unknown email template %q", name)
	}
	data := contextData{AppName: r.cfg.AppName, SiteURL: r.cfg.SiteURL, Data: n}

	var subject, text, html bytes.Buffer
	if err := p.text.ExecuteTemplate(&subject, "subject", data); err != nil {
		return Rendered{}, fmt.Errorf("render %s subject: %w", name, err)
	}
	if err := p.text.Execute(&text, data); err != nil {
		return Rendered{}, fmt.Errorf("render %s.txt: %w", name, err)
	}
	if err := p.html.Execute(&html, data); err != nil {
		return Rendered{}, fmt.Errorf("render %s.gohtml: %w", name, err)
	}
	return Rendered{
		Subject: strings.TrimSpace(subject.String()),
		Text:    strings.TrimSpace(text.String()) + "\n",
		HTML:    html.String(),
	}, nil
}

// templateNames returns the names that have both a .txt and a .gohtml file.
func templateNames() ([]string, error) {
	entries, err := fs.ReadDir(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("read email templates: %w", err)
	}
	seen := map[string]int{}
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "_") {
			continue
		}
		switch {
		case strings.HasSuffix(name, ".txt"):
			seen[strings.TrimSuffix(name, ".txt")]++
		case strings.HasSuffix(name, ".gohtml"):
			seen[strings.TrimSuffix(name, ".gohtml")]++
		}
	}
	var names []string
	for n, c := range seen {
		if c != 2 {
			return nil, fmt.Errorf("email template %s needs both .txt and .gohtml", n)
		}
		names = append(names, n)
	}
	slices.Sort(names)
	return names, nil
}
