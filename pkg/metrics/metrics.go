// Package metrics exports pool activity as Prometheus metrics.
//
// # Overview
//
// A Collector implements pool.Observer. Pass it to pool.New with
// pool.WithObserver and every borrow, spawn, return, failure and anomaly is
// counted, and the idle and active levels of each key are tracked as gauges.
//
// # Basic Usage
//
//	reg := prometheus.NewRegistry()
//	c := metrics.NewCollector("stockpile", "arena", reg)
//	p := pool.New[*prototypes.Object](pool.WithObserver(c))
//	http.Handle("/metrics", metrics.Handler(reg))
//
// # Metric Types
//
// Counter: borrows by result (hit/miss), spawns, returns, failures by
// operation and error type, anomalies by kind.
// Gauge: idle and active instances per key.
// Histogram: soak round duration.
//
// Every metric carries a constant "pool" label with the pool name.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ajitpratap0/stockpile/pkg/errors"
	"github.com/ajitpratap0/stockpile/pkg/pool"
)

// Borrow results.
const (
	ResultHit  = "hit"
	ResultMiss = "miss"
)

// Collector records pool events into Prometheus metrics. Each pool should
// have its own collector.
type Collector struct {
	name      string
	borrows   *prometheus.CounterVec // by key and result
	spawns    *prometheus.CounterVec // by key
	returns   *prometheus.CounterVec // by key
	failures  *prometheus.CounterVec // by op and error type
	anomalies *prometheus.CounterVec // by kind
	idle      *prometheus.GaugeVec   // by key
	active    *prometheus.GaugeVec   // by key
	rounds    prometheus.Histogram   // soak round duration
}

var _ pool.Observer = (*Collector)(nil)

// NewCollector registers the pool metrics for the pool called name with reg.
// A nil reg uses prometheus.DefaultRegisterer.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	collector := metrics.NewCollector("stockpile", "arena", reg)
//	p := pool.New[*prototypes.Object](pool.WithName("arena"), pool.WithObserver(collector))
func NewCollector(namespace, name string, reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	labels := prometheus.Labels{"pool": name}

	return &Collector{
		borrows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "borrows_total",
			Help:        "Total number of borrows by result",
			ConstLabels: labels,
		}, []string{"key", "result"}),
		spawns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "spawns_total",
			Help:        "Total number of instances created from a prototype",
			ConstLabels: labels,
		}, []string{"key"}),
		returns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "returns_total",
			Help:        "Total number of instances returned to the pool",
			ConstLabels: labels,
		}, []string{"key"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "failures_total",
			Help:        "Total number of failed pool operations",
			ConstLabels: labels,
		}, []string{"op", "type"}),
		anomalies: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "anomalies_total",
			Help:        "Total number of tolerated inconsistencies",
			ConstLabels: labels,
		}, []string{"kind"}),
		idle: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "idle_instances",
			Help:        "Instances waiting in the recycle store",
			ConstLabels: labels,
		}, []string{"key"}),
		active: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "active_instances",
			Help:        "Instances currently borrowed",
			ConstLabels: labels,
		}, []string{"key"}),
		rounds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "soak_round_duration_seconds",
			Help:        "Duration of one soak workload round",
			ConstLabels: labels,
			Buckets: []float64{
				1e-6, // 1μs
				1e-5, // 10μs
				1e-4, // 100μs
				1e-3, // 1ms
				1e-2, // 10ms
				1e-1, // 100ms
			},
		}),
		name: name,
	}
}

// Name returns the pool name the collector labels metrics with.
func (c *Collector) Name() string { return c.name }

// Spawned implements pool.Observer.
func (c *Collector) Spawned(key string) {
	c.spawns.WithLabelValues(key).Inc()
}

// Borrowed implements pool.Observer.
func (c *Collector) Borrowed(key string, reused bool) {
	result := ResultMiss
	if reused {
		result = ResultHit
	}
	c.borrows.WithLabelValues(key, result).Inc()
}

// Returned implements pool.Observer.
func (c *Collector) Returned(key string) {
	c.returns.WithLabelValues(key).Inc()
}

// Failed implements pool.Observer.
func (c *Collector) Failed(op pool.Op, errType errors.ErrorType) {
	c.failures.WithLabelValues(string(op), string(errType)).Inc()
}

// Anomaly implements pool.Observer.
func (c *Collector) Anomaly(kind pool.Anomaly, _ string) {
	c.anomalies.WithLabelValues(string(kind)).Inc()
}

// Levels implements pool.Observer.
func (c *Collector) Levels(key string, idle, active int) {
	c.idle.WithLabelValues(key).Set(float64(idle))
	c.active.WithLabelValues(key).Set(float64(active))
}

// ObserveRound records the duration of one soak round.
func (c *Collector) ObserveRound(d time.Duration) {
	c.rounds.Observe(d.Seconds())
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Timer provides a simple timing mechanism for measuring operation durations.
// It captures the start time on creation and calculates elapsed time on stop.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
// The name parameter is for identification in logs.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the timer's name.
func (t *Timer) Name() string { return t.name }

// Stop returns the elapsed duration since creation. The timer can be stopped
// multiple times.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
