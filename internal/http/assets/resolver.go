// Package assets resolves logical static asset names to cache-busted URLs.
package assets

import (
	"io/fs"
	"log/slog"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Prefix is the URL path static files are served under.
const Prefix = "/static/"

// VersionParam is the query parameter carrying an asset's fingerprint.
const VersionParam = "v"

// Resolver maps "css/app.css" to "/static/css/app.css?v=<fingerprint>". The
// fingerprint is the xxhash of the file content: it is computed once per
// file, or on every call in dev mode so edits show up without a restart.
type Resolver struct {
	fsys   fs.FS
	dev    bool
	logger *slog.Logger

	mu     sync.RWMutex
	hashes map[string]string
}

// NewResolver builds a resolver over fsys, which is rooted at the static dir.
func NewResolver(fsys fs.FS, dev bool, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{fsys: fsys, dev: dev, logger: logger, hashes: make(map[string]string)}
}

// Resolve returns the URL for a logical asset name. Unknown or unreadable
// assets resolve to their plain, unversioned URL.
func (r *Resolver) Resolve(name string) string {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	plain := Prefix + name
	if r == nil || r.fsys == nil {
		return plain
	}

	sum, ok := r.cached(name)
	if !ok {
		var err error
		sum, err = r.fingerprint(name)
		if err != nil {
			r.logger.Warn("asset fingerprint failed", "asset", name, "error", err)
			return plain
		}
	}
	return plain + "?" + VersionParam + "=" + url.QueryEscape(sum)
}

func (r *Resolver) cached(name string) (string, bool) {
	if r.dev {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	sum, ok := r.hashes[name]
	return sum, ok
}

func (r *Resolver) fingerprint(name string) (string, error) {
	b, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return "", err
	}
	sum := strconv.FormatUint(xxhash.Sum64(b), 16)
	if len(sum) > 8 {
		sum = sum[:8]
	}
	if !r.dev {
		r.mu.Lock()
		r.hashes[name] = sum
		r.mu.Unlock()
	}
	return sum, nil
}

// IsVersioned reports whether a static request carries a fingerprint and can
// be cached for good.
func IsVersioned(u *url.URL) bool {
	return u != nil && u.Query().Get(VersionParam) != ""
}
