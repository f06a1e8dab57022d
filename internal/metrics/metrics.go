// Package metrics exports pool activity and occupancy as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrei-cloud/go_pool/internal/pool"
)

// Collector implements pool.Observer and keeps occupancy gauges.
// Counters are safe for concurrent use; Observe is called from the host loop.
type Collector struct {
	acquired  *prometheus.CounterVec
	released  *prometheus.CounterVec
	exhausted *prometheus.CounterVec
	free      *prometheus.GaugeVec
	inUse     *prometheus.GaugeVec
	pending   prometheus.Gauge
	known     map[string]struct{}
}

// NewCollector creates the pool metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		acquired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gopool",
			Name:      "acquire_total",
			Help:      "Instances handed out, by category and source.",
		}, []string{"category", "source"}),
		released: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gopool",
			Name:      "release_total",
			Help:      "Release calls, by category and outcome.",
		}, []string{"category", "outcome"}),
		exhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gopool",
			Name:      "exhausted_total",
			Help:      "Acquire calls that found no free slot.",
		}, []string{"category"}),
		free: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gopool",
			Name:      "slots_free",
			Help:      "Free pooled instances per category.",
		}, []string{"category"}),
		inUse: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gopool",
			Name:      "slots_in_use",
			Help:      "Handed-out pooled instances per category.",
		}, []string{"category"}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gopool",
			Name:      "pending_releases",
			Help:      "Scheduled delayed releases.",
		}),
		known: make(map[string]struct{}),
	}

	for _, col := range []prometheus.Collector{c.acquired, c.released, c.exhausted, c.free, c.inUse, c.pending} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Acquired implements pool.Observer.
func (c *Collector) Acquired(category string, src pool.Source) {
	c.acquired.WithLabelValues(category, src.String()).Inc()
}

// Exhausted implements pool.Observer.
func (c *Collector) Exhausted(category string) {
	c.exhausted.WithLabelValues(category).Inc()
}

// Released implements pool.Observer.
func (c *Collector) Released(category string, outcome pool.Outcome) {
	c.released.WithLabelValues(category, outcome.String()).Inc()
}

// Observe publishes an occupancy snapshot. Gauges of categories that
// disappeared since the previous snapshot are removed.
func (c *Collector) Observe(s pool.Stats) {
	seen := make(map[string]struct{}, len(s.Categories))
	for _, cs := range s.Categories {
		seen[cs.Name] = struct{}{}
		c.free.WithLabelValues(cs.Name).Set(float64(cs.Free))
		c.inUse.WithLabelValues(cs.Name).Set(float64(cs.InUse))
	}
	for name := range c.known {
		if _, ok := seen[name]; !ok {
			c.free.DeleteLabelValues(name)
			c.inUse.DeleteLabelValues(name)
		}
	}
	c.known = seen
	c.pending.Set(float64(s.PendingReleases))
}
