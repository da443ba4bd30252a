package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	domainauth "github.com/target/realty-admin/internal/domain/auth"
	dmail "github.com/target/realty-admin/internal/domain/mail"
	"github.com/target/realty-admin/internal/domain/realty"
	apperrors "github.com/target/realty-admin/internal/errors"
	"github.com/target/realty-admin/internal/ports"
)

const (
	dashboardCachePrefix     = "dashboard:counts:"
	defaultDashboardCacheTTL = time.Minute
	dashboardFanOut          = 4
)

// ResourceCount is one dashboard tile.
type ResourceCount struct {
	Resource realty.ResourceKey `json:"resource"`
	Title    string             `json:"title"`
	Icon     string             `json:"icon"`
	Count    int                `json:"count"`
	// Unavailable is set when the API could not count the resource.
	Unavailable bool `json:"unavailable,omitempty"`
}

// Dashboard is the landing page summary.
type Dashboard struct {
	Counts      []ResourceCount `json:"counts"`
	MailPending int             `json:"-"`
	MailFailed  int             `json:"-"`
	GeneratedAt time.Time       `json:"generated_at"`
	Cached      bool            `json:"-"`
}

// DashboardServiceConfig tunes DashboardService.
type DashboardServiceConfig struct {
	CacheTTL  time.Duration
	Resources []realty.Resource
	Now       func() time.Time
}

// DashboardServiceOptions groups dependencies for DashboardService.
type DashboardServiceOptions struct {
	API    ports.RealtyAPI       // Required
	Cache  ports.CacheRepository // Optional: counts are fetched every time without it
	Outbox ports.Outbox          // Optional
	Logger *slog.Logger
	Config DashboardServiceConfig
}

// DashboardService computes per-resource counts. Counts are cached, since
// every tile is a round trip to the API.
type DashboardService struct {
	api       ports.RealtyAPI
	cache     ports.CacheRepository
	outbox    ports.Outbox
	logger    *slog.Logger
	ttl       time.Duration
	resources []realty.Resource
	now       func() time.Time
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(opts DashboardServiceOptions) *DashboardService {
	if opts.API == nil {
		panic("DashboardService requires a RealtyAPI")
	}
	cfg := opts.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultDashboardCacheTTL
	}
	if len(cfg.Resources) == 0 {
		cfg.Resources = realty.All()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		api:       opts.API,
		cache:     opts.Cache,
		outbox:    opts.Outbox,
		logger:    logger.With("component", "dashboard_service"),
		ttl:       cfg.CacheTTL,
		resources: cfg.Resources,
		now:       cfg.Now,
	}
}

// dashboardRoles are the roles whose cached counts Invalidate drops.
var dashboardRoles = []domainauth.Role{domainauth.RoleAdmin, domainauth.RoleUser, domainauth.RoleGuest}

// dashboardCacheKey scopes cached counts to a role. Callers of the same role
// share an entry.
func dashboardCacheKey(role domainauth.Role) string {
	if role == "" {
		role = domainauth.RoleGuest
	}
	return dashboardCachePrefix + string(role)
}

// Get returns the dashboard for a caller of the given role, serving counts
// from that role's cache entry when fresh.
func (s *DashboardService) Get(ctx context.Context, creds ports.Credentials, role domainauth.Role) (Dashboard, error) {
	key := dashboardCacheKey(role)
	d, ok := s.cached(ctx, key)
	if !ok {
		counts, err := s.count(ctx, creds)
		if err != nil {
			return Dashboard{}, err
		}
		d = Dashboard{Counts: counts, GeneratedAt: s.now()}
		s.store(ctx, key, d)
	}
	s.addMail(ctx, &d)
	return d, nil
}

// Invalidate drops cached counts after a write.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for _, role := range dashboardRoles {
		if _, err := s.cache.Delete(ctx, dashboardCacheKey(role)); err != nil {
			s.logger.WarnContext(ctx, "dashboard cache invalidate failed", "role", role, "error", err)
		}
	}
}

// count fans out one Count per resource. A resource that fails to count is
// marked unavailable; only an auth failure fails the whole dashboard.
func (s *DashboardService) count(ctx context.Context, creds ports.Credentials) ([]ResourceCount, error) {
	out := make([]ResourceCount, len(s.resources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dashboardFanOut)
	for i, res := range s.resources {
		out[i] = ResourceCount{Resource: res.Key, Title: res.Title, Icon: res.Icon}
		g.Go(func() error {
			n, err := s.api.Count(gctx, creds, res.APIPath)
			if apperrors.IsUnauthorized(err) {
				return err
			}
			if err != nil {
				s.logger.WarnContext(gctx, "count failed", "resource", res.Key, "error", err)
				out[i].Unavailable = true
				return nil
			}
			out[i].Count = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DashboardService) cached(ctx context.Context, key string) (Dashboard, bool) {
	if s.cache == nil {
		return Dashboard{}, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "dashboard cache read failed", "error", err)
		return Dashboard{}, false
	}
	if raw == nil {
		return Dashboard{}, false
	}
	var d Dashboard
	if err := json.Unmarshal(raw, &d); err != nil {
		s.logger.WarnContext(ctx, "dashboard cache entry unreadable", "error", err)
		return Dashboard{}, false
	}
	d.Cached = true
	return d, true
}

func (s *DashboardService) store(ctx context.Context, key string, d Dashboard) {
	if s.cache == nil {
		return
	}
	for _, c := range d.Counts {
		if c.Unavailable {
			return
		}
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		s.logger.WarnContext(ctx, "dashboard cache write failed", "error", err)
	}
}

func (s *DashboardService) addMail(ctx context.Context, d *Dashboard) {
	if s.outbox == nil {
		return
	}
	var err error
	if d.MailPending, err = s.outbox.Count(ctx, dmail.ListFilter{Status: dmail.StatusPending}); err != nil {
		s.logger.WarnContext(ctx, "count pending mail failed", "error", err)
	}
	if d.MailFailed, err = s.outbox.Count(ctx, dmail.ListFilter{Status: dmail.StatusFailed}); err != nil {
		s.logger.WarnContext(ctx, "count failed mail failed", "error", err)
	}
}
