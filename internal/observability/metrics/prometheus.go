package metrics

import (
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PromSink adapts the StatsD-style Sink calls to Prometheus vectors. Each
// metric name is registered on first use with the label names of that first
// call; later calls must use the same tag keys.
type PromSink struct {
	namespace string
	registry  *prometheus.Registry
	logger    *slog.Logger

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

var _ Sink = (*PromSink)(nil)

// NewPromSink creates a sink with its own registry, pre-populated with the Go
// runtime and process collectors.
func NewPromSink(namespace string, logger *slog.Logger) *PromSink {
	if logger == nil {
		logger = slog.Default()
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &PromSink{
		namespace:  promName(namespace),
		registry:   reg,
		logger:     logger,
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (s *PromSink) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry (tests gather from it).
func (s *PromSink) Registry() *prometheus.Registry { return s.registry }

// Count adds value to the counter <name>_total.
func (s *PromSink) Count(name string, value int64, tags map[string]string) {
	keys := labelKeys(tags)
	s.mu.Lock()
	vec, ok := s.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: s.namespace,
			Name:      promName(name) + "_total",
			Help:      "Count of " + name + ".",
		}, keys)
		if !s.register(name, vec) {
			s.mu.Unlock()
			return
		}
		s.counters[name] = vec
	}
	s.mu.Unlock()

	if c, err := vec.GetMetricWith(labels(tags)); err == nil {
		c.Add(float64(value))
	} else {
		s.logger.Debug("prometheus counter labels mismatch", "metric", name, "error", err)
	}
}

// Gauge sets the gauge <name>.
func (s *PromSink) Gauge(name string, value float64, tags map[string]string) {
	keys := labelKeys(tags)
	s.mu.Lock()
	vec, ok := s.gauges[name]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: s.namespace,
			Name:      promName(name),
			Help:      "Current value of " + name + ".",
		}, keys)
		if !s.register(name, vec) {
			s.mu.Unlock()
			return
		}
		s.gauges[name] = vec
	}
	s.mu.Unlock()

	if g, err := vec.GetMetricWith(labels(tags)); err == nil {
		g.Set(value)
	} else {
		s.logger.Debug("prometheus gauge labels mismatch", "metric", name, "error", err)
	}
}

// Timing observes value in seconds on the histogram <name>_seconds.
func (s *PromSink) Timing(name string, value time.Duration, tags map[string]string) {
	keys := labelKeys(tags)
	s.mu.Lock()
	vec, ok := s.histograms[name]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: s.namespace,
			Name:      promName(name) + "_seconds",
			Help:      "Duration of " + name + ".",
			Buckets:   prometheus.DefBuckets,
		}, keys)
		if !s.register(name, vec) {
			s.mu.Unlock()
			return
		}
		s.histograms[name] = vec
	}
	s.mu.Unlock()

	if h, err := vec.GetMetricWith(labels(tags)); err == nil {
		h.Observe(value.Seconds())
	} else {
		s.logger.Debug("prometheus histogram labels mismatch", "metric", name, "error", err)
	}
}

// register must be called with s.mu held.
func (s *PromSink) register(name string, c prometheus.Collector) bool {
	if err := s.registry.Register(c); err != nil {
		s.logger.Warn("prometheus register failed", "metric", name, "error", err)
		return false
	}
	return true
}

func labelKeys(tags map[string]string) []string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		if k = promName(k); k != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func labels(tags map[string]string) prometheus.Labels {
	out := make(prometheus.Labels, len(tags))
	for k, v := range tags {
		if k = promName(k); k != "" {
			out[k] = v
		}
	}
	return out
}

// promName maps a dotted StatsD name to a Prometheus identifier.
func promName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		case r == '.', r == '-', r == '/', r == ' ':
			return '_'
		default:
			return -1
		}
	}, strings.TrimSpace(name))
}
