package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "stablecoin_monitor"

var (
	RPCRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "rpc",
		Name:      "requests_total",
		Help:      "JSON-RPC requests by method and outcome.",
	}, []string{"method", "outcome"})

	RPCDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "rpc",
		Name:      "request_duration_seconds",
		Help:      "JSON-RPC request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	ContractCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "contract",
		Name:      "calls_total",
		Help:      "Read-only contract calls by ABI, method and outcome.",
	}, []string{"abi", "method", "outcome"})

	ListingSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "aggregator",
		Name:      "listing_skipped_total",
		Help:      "Records skipped while enumerating pools or stablecoins.",
	}, []string{"listing"})

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"route", "code"})

	UpstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "Requests to third-party APIs by upstream and outcome.",
	}, []string{"upstream", "outcome"})

	UpstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Third-party API latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"upstream"})

	registerOnce sync.Once
)

// MustRegisterMetrics registers all collectors with the default registry. Safe to call more than once.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RPCRequests, RPCDuration, ContractCalls, ListingSkipped, HTTPRequests, UpstreamRequests, UpstreamDuration)
	})
}

// ObserveRPC records one RPC round trip.
func ObserveRPC(method string, started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	RPCRequests.WithLabelValues(method, outcome).Inc()
	RPCDuration.WithLabelValues(method).Observe(time.Since(started).Seconds())
}

// ObserveUpstream records one third-party API request.
func ObserveUpstream(upstream string, started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	UpstreamRequests.WithLabelValues(upstream, outcome).Inc()
	UpstreamDuration.WithLabelValues(upstream).Observe(time.Since(started).Seconds())
}
