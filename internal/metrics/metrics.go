package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/atlekbai/tourney/internal/query"
)

var (
	// RequestTotal counts HTTP requests by method, route, and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tourney_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tourney_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	// FiltersDropped counts filter keys that contributed no predicate.
	FiltersDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tourney_query_filters_dropped_total",
			Help: "Filter keys ignored while building query plans",
		},
		[]string{"entity", "reason"},
	)
	// PlansBuilt counts assembled query plans.
	PlansBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tourney_query_plans_total",
			Help: "Query plans assembled",
		},
		[]string{"entity", "kind"},
	)
	// QueryDuration is the latency of plan execution against the store.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tourney_query_duration_seconds",
			Help:    "Query execution latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"entity", "kind"},
	)
)

// QueryObserver feeds assembler events into the Prometheus vectors.
type QueryObserver struct{}

func (QueryObserver) FilterDropped(entity string, d query.DroppedFilter) {
	FiltersDropped.WithLabelValues(entity, string(d.Reason)).Inc()
}

func (QueryObserver) PlanBuilt(entity string, kind query.PlanKind) {
	PlansBuilt.WithLabelValues(entity, string(kind)).Inc()
}
