package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusHooks records hook events as Prometheus metrics.
type PrometheusHooks struct {
	registryRuns     *prometheus.CounterVec
	registryRecords  *prometheus.CounterVec
	registryDuration *prometheus.HistogramVec
	integrations     *prometheus.CounterVec
	cacheEvents      *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// NewPrometheusHooks creates the collectors and registers them with reg.
func NewPrometheusHooks(reg prometheus.Registerer) (*PrometheusHooks, error) {
	h := &PrometheusHooks{
		registryRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apiscout",
			Name:      "registry_fetches_total",
			Help:      "Registry fetches by outcome.",
		}, []string{"registry", "outcome"}),
		registryRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apiscout",
			Name:      "registry_records_total",
			Help:      "API records discovered per registry.",
		}, []string{"registry"}),
		registryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "apiscout",
			Name:      "registry_fetch_duration_seconds",
			Help:      "Time to fetch and parse one registry.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"registry"}),
		integrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apiscout",
			Name:      "integrations_total",
			Help:      "Integration hook dispatches by spec type and outcome.",
		}, []string{"type", "outcome"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apiscout",
			Name:      "cache_events_total",
			Help:      "Response cache hits, misses and writes.",
		}, []string{"namespace", "event"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apiscout",
			Name:      "http_client_requests_total",
			Help:      "Outgoing HTTP requests by host and status.",
		}, []string{"host", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "apiscout",
			Name:      "http_client_request_duration_seconds",
			Help:      "Outgoing HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"host"}),
	}

	for _, c := range []prometheus.Collector{
		h.registryRuns, h.registryRecords, h.registryDuration, h.integrations,
		h.cacheEvents, h.httpRequests, h.httpDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *PrometheusHooks) OnRegistryStart(context.Context, string) {}

func (h *PrometheusHooks) OnRegistryComplete(_ context.Context, registry string, records int, d time.Duration, err error) {
	h.registryRuns.WithLabelValues(registry, outcome(err)).Inc()
	h.registryRecords.WithLabelValues(registry).Add(float64(records))
	h.registryDuration.WithLabelValues(registry).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnIntegrate(_ context.Context, _ string, specType string, err error) {
	h.integrations.WithLabelValues(specType, outcome(err)).Inc()
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, ns string) {
	h.cacheEvents.WithLabelValues(ns, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, ns string) {
	h.cacheEvents.WithLabelValues(ns, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, ns string, _ int) {
	h.cacheEvents.WithLabelValues(ns, "set").Inc()
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string, string) {}

func (h *PrometheusHooks) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	h.httpRequests.WithLabelValues(host, strconv.Itoa(status)).Inc()
	h.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnError(_ context.Context, _, host, _ string, _ error) {
	h.httpRequests.WithLabelValues(host, "error").Inc()
}

var (
	_ DiscoveryHooks = (*PrometheusHooks)(nil)
	_ CacheHooks     = (*PrometheusHooks)(nil)
	_ HTTPHooks      = (*PrometheusHooks)(nil)
)
