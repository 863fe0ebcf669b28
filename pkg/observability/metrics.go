package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Workflow metrics
	NodesCreated prometheus.Counter
	NodesRemoved prometheus.Counter
	EdgesCreated prometheus.Counter

	// Run metrics
	RunsSubmitted prometheus.Counter
	Polls         *prometheus.CounterVec
	RunDuration   prometheus.Histogram
}

// NewCollector creates a new metrics collector with the given
// namespace. Each collector owns its own registry, so independent
// collectors never collide on registration.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	nodesCreated := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_created_total",
			Help:      "Total number of workflow nodes created",
		},
	)

	nodesRemoved := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_removed_total",
			Help:      "Total number of workflow nodes removed",
		},
	)

	edgesCreated := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edges_created_total",
			Help:      "Total number of workflow edges created",
		},
	)

	runsSubmitted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_submitted_total",
			Help:      "Total number of processing runs submitted",
		},
	)

	polls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_polls_total",
			Help:      "Total number of job status polls by result",
		},
		[]string{"result"},
	)

	runDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of processing runs from submit to terminal state",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
		},
	)

	registry.MustRegister(
		httpRequests,
		httpDuration,
		nodesCreated,
		nodesRemoved,
		edgesCreated,
		runsSubmitted,
		polls,
		runDuration,
	)

	return &Collector{
		registry:      registry,
		HTTPRequests:  httpRequests,
		HTTPDuration:  httpDuration,
		NodesCreated:  nodesCreated,
		NodesRemoved:  nodesRemoved,
		EdgesCreated:  edgesCreated,
		RunsSubmitted: runsSubmitted,
		Polls:         polls,
		RunDuration:   runDuration,
	}
}

// Registry returns the underlying Prometheus registry for exposition
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
