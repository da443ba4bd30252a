package bootstrap

import (
	"log/slog"
	"net/http"

	"github.com/target/realty-admin/config"
	"github.com/target/realty-admin/internal/observability/metrics"
	"github.com/target/realty-admin/internal/observability/statsd"
)

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	// Sink is nil when metrics are disabled; every emitter treats nil as a no-op.
	Sink metrics.Sink
	// Handler serves /metrics for the Prometheus backend.
	Handler http.Handler
	statsd  *statsd.Client
}

// Close releases the StatsD socket, if any.
func (o ObservabilityContainer) Close() error {
	if o.statsd == nil {
		return nil
	}
	return o.statsd.Close()
}

// buildObservability picks the metrics backend.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Metrics.IsEnabled() {
		return ObservabilityContainer{}
	}

	switch cfg.Metrics.Backend {
	case config.MetricsBackendStatsd:
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  cfg.Metrics.Namespace,
			Logger:  logger,

			FlushInterval: cfg.Metrics.StatsdFlush,
		})
		if err != nil {
			logger.Error("failed to initialise statsd client", "error", err)
			return ObservabilityContainer{}
		}
		logger.Info("statsd metrics enabled", "address", cfg.Metrics.StatsdAddress)
		return ObservabilityContainer{Sink: client, statsd: client}
	default:
		prom := metrics.NewPromSink(cfg.Metrics.Namespace, logger)
		logger.Info("prometheus metrics enabled", "path", "/metrics")
		return ObservabilityContainer{Sink: prom, Handler: prom.Handler()}
	}
}
