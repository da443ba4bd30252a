package realty

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is one JSON object returned by the backend API. Its shape belongs to
// the API; the admin reads fields by name.
type Record map[string]any

// ID returns the record identifier, accepting both "id" and "_id".
func (r Record) ID() string {
	for _, k := range []string{"id", "_id"} {
		if v, ok := r[k]; ok && v != nil {
			return scalarString(v)
		}
	}
	return ""
}

// String returns field k as display text.
func (r Record) String(k string) string {
	v, ok := r[k]
	if !ok || v == nil {
		return ""
	}
	return scalarString(v)
}

// Strings returns field k as a string slice (image URL lists and the like).
func (r Record) Strings(k string) []string {
	switch v := r[k].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := scalarString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

// Matches reports whether any of fields contains term, case-insensitively.
// An empty term matches everything.
func (r Record) Matches(term string, fields []string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(r.String(f)), term) {
			return true
		}
	}
	return false
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprint(v)
	}
}
