package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// Trades
	TradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trades_total",
			Help: "Total successful portfolio mutations",
		},
		[]string{"side"}, // buy|sell
	)

	// Market-data upstream
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_upstream_requests_total",
			Help: "Calls to the market-data provider",
		},
		[]string{"function", "outcome"}, // ok|rate_limited|error
	)
)

// Handler serves the /metrics endpoint.
var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(TradesTotal)
	prometheus.MustRegister(UpstreamRequestsTotal)
}
