package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RefreshTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "antipodes_refresh_total",
		Help: "Total fetch-and-process cycles started",
	})
	RefreshFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "antipodes_refresh_fail_total",
		Help: "Failed fetch-and-process cycles by reason",
	}, []string{"reason"})
	RefreshDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "antipodes_refresh_duration_ms",
		Help:    "Engine process call duration in milliseconds",
		Buckets: []float64{100, 500, 1000, 2000, 5000, 10000, 30000, 60000},
	})
	PairsInstalled = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "antipodes_pairs_installed",
		Help: "Deduplicated antipodal pairs in the installed match set",
	})
	TimestampFallbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "antipodes_timestamp_fallback_total",
		Help: "Run timestamps that could not be parsed",
	})
	NavigationStepsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "antipodes_navigation_steps_total",
		Help: "Single-step navigation moves by direction",
	}, []string{"direction"})
)

func init() {
	prometheus.MustRegister(RefreshTotal)
	prometheus.MustRegister(RefreshFailTotal)
	prometheus.MustRegister(RefreshDurationMs)
	prometheus.MustRegister(PairsInstalled)
	prometheus.MustRegister(TimestampFallbackTotal)
	prometheus.MustRegister(NavigationStepsTotal)
}

// Handler exposes the registered metrics for scraping.
func Handler() http.Handler { return promhttp.Handler() }
