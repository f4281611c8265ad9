package cortex

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the show_counters surface (§6 Observability flags): a
// process-wide registry an external HTTP kit can mount, never served by
// XEPL itself. Grounded on the pack's prometheus client_golang usage for
// per-component counters, generalized onto per-lobe dispatch counts and
// registration-table sizes.
type Metrics struct {
	Registry *prometheus.Registry

	DispatchedActions *prometheus.CounterVec
	RegisteredTables  *prometheus.GaugeVec
}

// NewMetrics returns a fresh registry with the dispatched-actions counter
// and the registered-tables gauge already registered. No package in this
// module increments DispatchedActions.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	dispatched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "xepl",
		Name:      "dispatched_actions_total",
		Help:      "Total mailbox actions executed, per lobe.",
	}, []string{"lobe"})

	tables := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "xepl",
		Name:      "registered_entries",
		Help:      "Current entry count per dispatch table.",
	}, []string{"table"})

	reg.MustRegister(dispatched, tables)

	return &Metrics{Registry: reg, DispatchedActions: dispatched, RegisteredTables: tables}
}

// Observe updates the registered-table gauges from c's current table
// sizes. Register* calls do not touch the gauges and nothing in this
// module calls Observe, so the gauges change only when a caller runs it.
func (c *Cortex) Observe() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	c.Metrics.RegisteredTables.WithLabelValues("keyword").Set(float64(len(c.keywords)))
	c.Metrics.RegisteredTables.WithLabelValues("operator").Set(float64(len(c.operators)))
	c.Metrics.RegisteredTables.WithLabelValues("command").Set(float64(len(c.commands)))
	c.Metrics.RegisteredTables.WithLabelValues("mutual").Set(float64(len(c.mutuals)))
	c.Metrics.RegisteredTables.WithLabelValues("render").Set(float64(len(c.renders)))
}
