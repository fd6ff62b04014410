// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the application's collectors so they can be registered
// on a dedicated registry (tests use a fresh one each time).
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	BalanceComputation  *prometheus.HistogramVec
	ExpensesCreated     prometheus.Counter
	EventsPublishFailed prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "explit",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "explit",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		BalanceComputation: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "explit",
			Name:      "balance_computation_seconds",
			Help:      "Time spent computing team balances, by split mode.",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		}, []string{"mode"}),
		ExpensesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "explit",
			Name:      "expenses_created_total",
			Help:      "Expenses recorded, counting each half of a transfer.",
		}),
		EventsPublishFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "explit",
			Name:      "events_publish_failed_total",
			Help:      "Expense events that could not be published.",
		}),
	}
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BalanceComputation,
		m.ExpensesCreated,
		m.EventsPublishFailed,
	)
	return m
}
