package graphql

import "github.com/prometheus/client_golang/prometheus"

var (
	opTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "graphql_operations_total", Help: "Count of GraphQL operations"},
		[]string{"root_field", "outcome"},
	)
	opLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphql_operation_duration_seconds",
			Help:    "Latency of GraphQL operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"root_field"},
	)
	opErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "graphql_errors_total", Help: "Count of GraphQL errors by code"},
		[]string{"root_field", "code"},
	)
)

func init() { prometheus.MustRegister(opTotal, opLatency, opErrors) }
