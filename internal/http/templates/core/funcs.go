// Package core provides template helpers used across every page.
package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/target/realty-admin/internal/http/uiutil"
)

// Deps holds dependencies for the core template func map.
type Deps struct {
	Template           **template.Template
	ContentTemplateFor func(string) string
	// Now overrides the clock used by relativeTime.
	Now func() time.Time
}

var numberPrinter = message.NewPrinter(language.English)

// Funcs returns helpers broadly useful across templates.
func Funcs(deps Deps) template.FuncMap {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	funcs := template.FuncMap{
		"sectionTmpl":  deps.ContentTemplateFor,
		"friendlyTime": FriendlyTime,
		"friendlyDate": FriendlyDate,
		"relativeTime": func(v any) string {
			t, ok := toTime(v)
			if !ok {
				return ""
			}
			return uiutil.FriendlyRelativeTime(t, now())
		},
		"add":          func(a, b int) int { return a + b },
		"sub":          func(a, b int) int { return a - b },
		"contains":     strings.Contains,
		"hasItem":      slices.Contains[[]string, string],
		"formatNumber": FormatNumber,
		"initials":     uiutil.Initials,
		"dict":         Dict,
	}

	addRenderFuncs(funcs, deps)
	return funcs
}

func addRenderFuncs(funcs template.FuncMap, deps Deps) {
	funcs["renderSection"] = func(page string, data any) (template.HTML, error) {
		if deps.Template == nil || *deps.Template == nil {
			return "", errors.New("template not initialized")
		}
		var buf bytes.Buffer
		if err := (*deps.Template).ExecuteTemplate(&buf, deps.ContentTemplateFor(page), data); err != nil {
			return "", err
		}
		// #nosec G203 - output of our own html/template set, already escaped
		return template.HTML(buf.String()), nil
	}

	funcs["toJSON"] = func(v any) (string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

// FriendlyTime formats a time.Time, *time.Time or API timestamp string.
func FriendlyTime(v any) string {
	t, ok := toTime(v)
	if !ok {
		if s, isStr := v.(string); isStr {
			return s
		}
		return ""
	}
	return uiutil.FormatFriendlyDateTime(t)
}

// FriendlyDate is FriendlyTime without the clock.
func FriendlyDate(v any) string {
	t, ok := toTime(v)
	if !ok {
		if s, isStr := v.(string); isStr {
			return s
		}
		return ""
	}
	return uiutil.FormatFriendlyDate(t)
}

func toTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero()
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, !x.IsZero()
	case string:
		return uiutil.ParseAPITime(x)
	default:
		return time.Time{}, false
	}
}

// FormatNumber groups thousands: 1234567 → "1,234,567".
func FormatNumber(v any) string {
	switch x := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return numberPrinter.Sprintf("%d", x)
	case float64:
		return numberPrinter.Sprintf("%.0f", x)
	default:
		return fmt.Sprint(v)
	}
}

// Dict builds a map from alternating keys and values so a template can pass
// several values to a partial.
func Dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, errors.New("dict: odd number of arguments")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
		}
		m[k] = kv[i+1]
	}
	return m, nil
}
