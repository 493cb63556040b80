package catalog

import "github.com/prometheus/client_golang/prometheus"

var requestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "virtualtourist_catalog_requests_total",
		Help: "Remote catalog requests by operation and outcome.",
	},
	[]string{"op", "outcome"},
)

func init() {
	prometheus.MustRegister(requestsTotal)
}

func observe(op, outcome string) {
	requestsTotal.WithLabelValues(op, outcome).Inc()
}
