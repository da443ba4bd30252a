package config

import (
	"strings"
	"time"
)

// ObservabilityConfig groups configuration that controls metrics.
type ObservabilityConfig struct {
	Metrics ObservabilityMetricsConfig
}

// Sanitize applies guardrails to observability sub-configs.
func (c *ObservabilityConfig) Sanitize() {
	c.Metrics.Sanitize()
}

// MetricsBackend selects where metrics go.
type MetricsBackend string

const (
	MetricsBackendStatsd     MetricsBackend = "statsd"
	MetricsBackendPrometheus MetricsBackend = "prometheus"
)

// ObservabilityMetricsConfig controls emission of metrics to StatsD or a
// Prometheus /metrics endpoint.
type ObservabilityMetricsConfig struct {
	Enabled       bool           `env:"OBSERVABILITY_METRICS_ENABLED"        envDefault:"false"`
	Backend       MetricsBackend `env:"OBSERVABILITY_METRICS_BACKEND"        envDefault:"prometheus"`
	StatsdAddress string         `env:"OBSERVABILITY_METRICS_STATSD_ADDRESS" envDefault:"127.0.0.1:8125"`
	Namespace     string         `env:"OBSERVABILITY_METRICS_NAMESPACE"      envDefault:"realty_admin"`

	// StatsdFlush is how long StatsD lines are batched before a send.
	StatsdFlush time.Duration `env:"OBSERVABILITY_METRICS_STATSD_FLUSH" envDefault:"1s"`
}

// Sanitize normalises derived fields and enforces safe defaults.
func (c *ObservabilityMetricsConfig) Sanitize() {
	c.Backend = MetricsBackend(strings.ToLower(strings.TrimSpace(string(c.Backend))))
	if c.Backend != MetricsBackendStatsd {
		c.Backend = MetricsBackendPrometheus
	}
	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	if c.Backend == MetricsBackendStatsd && c.StatsdAddress == "" {
		c.Enabled = false
	}
	if c.StatsdFlush <= 0 {
		c.StatsdFlush = time.Second
	}
	if strings.TrimSpace(c.Namespace) == "" {
		c.Namespace = "realty_admin"
	}
}

// IsEnabled returns true when metrics emission is active after sanitisation.
func (c *ObservabilityMetricsConfig) IsEnabled() bool {
	return c.Enabled
}
