package httpx

import (
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// parseIntQuery returns the integer query param key, or def when absent or malformed.
func parseIntQuery(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// cleanQuery copies q without htmx bookkeeping params, blank values and the
// keys in drop.
func cleanQuery(q url.Values, drop ...string) url.Values {
	out := make(url.Values, len(q))
	for k, v := range q {
		if strings.HasPrefix(k, "hx-") || strings.HasPrefix(k, "hx_") || k == DefaultCSRFCookieName {
			continue
		}
		if slices.Contains(drop, k) {
			continue
		}
		kept := make([]string, 0, len(v))
		for _, s := range v {
			if strings.TrimSpace(s) != "" {
				kept = append(kept, s)
			}
		}
		if len(kept) > 0 {
			out[k] = kept
		}
	}
	return out
}
