// Package metrics provides Prometheus metrics for the block type registry.
package metrics

import (
	"github.com/arthur-debert/blockreg/pkg/diagnostics"
	"github.com/arthur-debert/blockreg/pkg/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registration results.
const (
	ResultRegistered = "registered"
	ResultRejected   = "rejected"
)

// Collector holds the registry metrics. It is a diagnostics.Sink and a
// blocks.Observer.
type Collector struct {
	Registrations *prometheus.CounterVec
	Diagnostics   *prometheus.CounterVec
	BlockTypes    prometheus.Gauge
}

// NewWithRegistry creates a collector whose metrics are registered on reg.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		Registrations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "blockreg",
				Name:      "registrations_total",
				Help:      "Total number of block type registration attempts",
			},
			[]string{"result"},
		),
		Diagnostics: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "blockreg",
				Name:      "diagnostics_total",
				Help:      "Total number of diagnostics reported",
			},
			[]string{"level", "kind"},
		),
		BlockTypes: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "blockreg",
				Name:      "block_types",
				Help:      "Number of processed block types in the store",
			},
		),
	}
}

// ObserveRegistration counts one registration attempt.
func (c *Collector) ObserveRegistration(_ string, err error) {
	result := ResultRegistered
	if err != nil {
		result = ResultRejected
	}
	c.Registrations.WithLabelValues(result).Inc()
}

// Report counts one diagnostic.
func (c *Collector) Report(d diagnostics.Diagnostic) {
	c.Diagnostics.WithLabelValues(string(d.Level), string(d.Kind)).Inc()
}

// Watch keeps the block type gauge in step with s. The returned func stops
// watching.
func (c *Collector) Watch(s *store.Store) func() {
	c.observeState(s.State())
	return s.Subscribe(c.observeState)
}

func (c *Collector) observeState(state *store.State) {
	c.BlockTypes.Set(float64(state.BlockTypes.Len()))
}
