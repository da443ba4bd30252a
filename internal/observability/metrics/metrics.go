// Package metrics defines the metrics sink and the standard metrics the admin emits.
package metrics

import (
	"strconv"
	"time"

	obserrors "github.com/target/realty-admin/internal/observability/errors"
)

// Sink is the minimal interface required to emit StatsD-style metrics.
// Implemented by statsd.Client and PromSink.
type Sink interface {
	Count(name string, value int64, tags map[string]string)
	Gauge(name string, value float64, tags map[string]string)
	Timing(name string, value time.Duration, tags map[string]string)
}

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// UpstreamCall describes one backend API request.
type UpstreamCall struct {
	Resource string
	Method   string
	Status   int
	Duration time.Duration
	Err      error
}

// EmitUpstreamCall records count and latency of a backend API request.
func EmitUpstreamCall(sink Sink, in UpstreamCall) {
	if sink == nil {
		return
	}
	// Tag keys are fixed per metric; Prometheus label sets cannot vary.
	tags := map[string]string{
		"resource":    in.Resource,
		"method":      in.Method,
		"result":      resultOf(in.Err),
		"status":      strconv.Itoa(in.Status),
		"error_class": obserrors.Classify(in.Err),
	}
	sink.Count("api.request", 1, tags)
	sink.Timing("api.duration", in.Duration, CloneTags(tags))
}

// MailDelivery describes one outbox send attempt.
type MailDelivery struct {
	Kind     string
	Final    bool
	Duration time.Duration
	Err      error
}

// EmitMailDelivery records a send attempt by the mail worker.
func EmitMailDelivery(sink Sink, in MailDelivery) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"kind":   in.Kind,
		"result": resultOf(in.Err),
		"final":  strconv.FormatBool(in.Err != nil && in.Final),
	}
	sink.Count("mail.delivery", 1, tags)
	if in.Duration > 0 {
		sink.Timing("mail.duration", in.Duration, CloneTags(tags))
	}
}

// HTTPRequest describes one request served by the admin UI.
type HTTPRequest struct {
	Route    string
	Status   int
	Duration time.Duration
}

// EmitHTTPRequest records a served request.
func EmitHTTPRequest(sink Sink, in HTTPRequest) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"route":  in.Route,
		"status": strconv.Itoa(in.Status),
	}
	sink.Count("http.request", 1, tags)
	sink.Timing("http.duration", in.Duration, CloneTags(tags))
}

func resultOf(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		if k == "" {
			continue
		}
		out[k] = v
	}
	return out
}
