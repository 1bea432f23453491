// Package metrics exposes the Prometheus instrumentation the server
// maintains across the decision flow's lifecycle: halts by status and
// terminal node, request duration, and worker-pool saturation.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every collector the server registers. Built once at
// startup and threaded through the server and worker pool.
type Metrics struct {
	Halts           *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightJobs    prometheus.Gauge
}

// New constructs and registers the collectors against reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Halts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "httpresource",
			Name:      "halts_total",
			Help:      "Count of decision-flow halts by status code and terminal node.",
		}, []string{"status", "node"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "httpresource",
			Name:      "request_duration_seconds",
			Help:      "Request duration by response status class.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status_class"}),
		InFlightJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "httpresource",
			Name:      "worker_pool_in_flight_jobs",
			Help:      "Number of decision-flow runs currently executing on the worker pool.",
		}),
	}

	reg.MustRegister(m.Halts, m.RequestDuration, m.InFlightJobs)
	return m
}

// ObserveHalt records one halt at the given status code and the name of
// the flow node that produced it.
func (m *Metrics) ObserveHalt(status int, node string) {
	m.Halts.WithLabelValues(strconv.Itoa(status), node).Inc()
}

// ObserveDuration records how long a request took to run through the
// decision flow, bucketed by its response status class (e.g. "2xx").
func (m *Metrics) ObserveDuration(status int, elapsed time.Duration) {
	m.RequestDuration.WithLabelValues(statusClass(status)).Observe(elapsed.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
