package httpx

import (
	"context"
	"io"
	"net/http"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	healthResponse = `{"status":"ok"}`
	readyTimeout   = 2 * time.Second
)

// healthHandler answers liveness probes.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = io.WriteString(w, healthResponse)
}

// ReadinessCheck probes one dependency (Redis, Postgres).
type ReadinessCheck func(ctx context.Context) error

// readyHandler runs every check concurrently and answers 503 when any fails.
func readyHandler(checks map[string]ReadinessCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		results := make([]string, len(names))
		var g errgroup.Group
		for i, name := range names {
			g.Go(func() error {
				if err := checks[name](ctx); err != nil {
					results[i] = err.Error()
					return err
				}
				results[i] = "ok"
				return nil
			})
		}
		status, code := "ok", http.StatusOK
		if g.Wait() != nil {
			status, code = "unavailable", http.StatusServiceUnavailable
		}

		body := map[string]any{"status": status}
		deps := make(map[string]string, len(names))
		for i, name := range names {
			deps[name] = results[i]
		}
		if len(deps) > 0 {
			body["checks"] = deps
		}
		WriteJSON(w, code, body)
	}
}
