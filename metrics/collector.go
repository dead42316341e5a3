// Package metrics exports client statistics to Prometheus.
package metrics

import (
	"github.com/pior/addb"
	"github.com/pior/addb/resp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
)

// Source is implemented by addb.Client and addb.ClusterClient.
type Source interface {
	Stats() addb.ClientStats
	AllNodeStats() []addb.NodeStats
}

// Collector is a prometheus.Collector reading a client's stats at scrape time.
type Collector struct {
	source Source

	commands     *prometheus.Desc
	errors       *prometheus.Desc
	dispatches   *prometheus.Desc
	nodeFailures *prometheus.Desc

	poolConnections   *prometheus.Desc
	poolCreated       *prometheus.Desc
	poolDestroyed     *prometheus.Desc
	poolAcquireErrors *prometheus.Desc
	poolAcquireWait   *prometheus.Desc

	circuitState    *prometheus.Desc
	circuitFailures *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a collector for source. Metric names are prefixed
// with namespace, "addb" when empty.
func NewCollector(source Source, namespace string) *Collector {
	if namespace == "" {
		namespace = "addb"
	}
	name := func(subsystem, metric string) string {
		return prometheus.BuildFQName(namespace, subsystem, metric)
	}

	return &Collector{
		source: source,

		commands: prometheus.NewDesc(name("", "commands_total"),
			"Commands executed, counted once per node", []string{"command"}, nil),
		errors: prometheus.NewDesc(name("", "command_errors_total"),
			"Commands that failed, counted once per node", nil, nil),
		dispatches: prometheus.NewDesc(name("", "dispatches_total"),
			"Commands dispatched to a node selection", nil, nil),
		nodeFailures: prometheus.NewDesc(name("", "node_failures_total"),
			"Node executions that failed inside a dispatch", nil, nil),

		poolConnections: prometheus.NewDesc(name("pool", "connections"),
			"Connections of the node pool", []string{"node", "state"}, nil),
		poolCreated: prometheus.NewDesc(name("pool", "connections_created_total"),
			"Connections created", []string{"node"}, nil),
		poolDestroyed: prometheus.NewDesc(name("pool", "connections_destroyed_total"),
			"Connections destroyed", []string{"node"}, nil),
		poolAcquireErrors: prometheus.NewDesc(name("pool", "acquire_errors_total"),
			"Failed connection acquires", []string{"node"}, nil),
		poolAcquireWait: prometheus.NewDesc(name("pool", "acquire_wait_seconds_total"),
			"Time spent waiting for a connection", []string{"node"}, nil),

		circuitState: prometheus.NewDesc(name("circuit_breaker", "state"),
			"Circuit breaker state (0=closed, 1=half-open, 2=open)", []string{"node"}, nil),
		circuitFailures: prometheus.NewDesc(name("circuit_breaker", "failures"),
			"Circuit breaker failure counts in the current interval", []string{"node", "type"}, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.commands
	ch <- c.errors
	ch <- c.dispatches
	ch <- c.nodeFailures
	ch <- c.poolConnections
	ch <- c.poolCreated
	ch <- c.poolDestroyed
	ch <- c.poolAcquireErrors
	ch <- c.poolAcquireWait
	ch <- c.circuitState
	ch <- c.circuitFailures
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.source.Stats()

	counter := func(desc *prometheus.Desc, v uint64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(v), labels...)
	}
	gauge := func(desc *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, v, labels...)
	}

	counter(c.commands, stats.FpWrites, string(resp.CmdFpWrite))
	counter(c.commands, stats.FpScans, string(resp.CmdFpScan))
	counter(c.commands, stats.Metakeys, string(resp.CmdMetakeys))
	counter(c.commands, stats.Pings, string(resp.CmdPing))
	counter(c.errors, stats.Errors)
	counter(c.dispatches, stats.Dispatches)
	counter(c.nodeFailures, stats.NodeFailures)

	for _, ns := range c.source.AllNodeStats() {
		node := ns.Node.ID
		ps := ns.PoolStats

		gauge(c.poolConnections, float64(ps.TotalConns), node, "total")
		gauge(c.poolConnections, float64(ps.IdleConns), node, "idle")
		gauge(c.poolConnections, float64(ps.ActiveConns), node, "active")
		counter(c.poolCreated, ps.CreatedConns, node)
		counter(c.poolDestroyed, ps.DestroyedConns, node)
		counter(c.poolAcquireErrors, ps.AcquireErrors, node)
		ch <- prometheus.MustNewConstMetric(c.poolAcquireWait, prometheus.CounterValue,
			float64(ps.AcquireWaitTimeNs)/1e9, node)

		gauge(c.circuitState, circuitStateValue(ns.CircuitBreakerState), node)
		gauge(c.circuitFailures, float64(ns.CircuitBreakerCounts.TotalFailures), node, "total")
		gauge(c.circuitFailures, float64(ns.CircuitBreakerCounts.ConsecutiveFailures), node, "consecutive")
	}
}

func circuitStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
