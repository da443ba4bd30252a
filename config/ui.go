package config

import (
	"slices"
	"time"
)

// PageSizes are the page sizes the list toolbar offers.
var PageSizes = []int{5, 10, 25, 50}

// UIConfig tunes the admin pages.
type UIConfig struct {
	AppName         string `env:"APP_NAME"          envDefault:"Realty Admin"`
	DefaultPageSize int    `env:"DEFAULT_PAGE_SIZE" envDefault:"10"`
	// SchedulesRefresh is how often the schedules list polls. 0 disables it.
	SchedulesRefresh time.Duration `env:"SCHEDULES_REFRESH"   envDefault:"30s"`
	// DashboardCacheTTL is how long dashboard counts are served from Redis.
	DashboardCacheTTL time.Duration `env:"DASHBOARD_CACHE_TTL" envDefault:"1m"`
}

// Sanitize snaps the page size to an offered choice and clamps intervals.
func (c *UIConfig) Sanitize() {
	if !slices.Contains(PageSizes, c.DefaultPageSize) {
		c.DefaultPageSize = 10
	}
	if c.SchedulesRefresh < 0 {
		c.SchedulesRefresh = 0
	}
	if c.SchedulesRefresh > 0 && c.SchedulesRefresh < 5*time.Second {
		c.SchedulesRefresh = 5 * time.Second
	}
	if c.DashboardCacheTTL < 0 {
		c.DashboardCacheTTL = 0
	}
}
