package addb

import (
	"sync/atomic"
	"time"

	"github.com/pior/addb/resp"
	"github.com/sony/gobreaker/v2"
)

// PoolStats contains statistics about the connection pool of one node.
//
// For Prometheus integration, expose these as:
//   - Gauges: TotalConns, IdleConns, ActiveConns
//   - Counters: AcquireCount, AcquireWaitCount, CreatedConns, DestroyedConns, AcquireErrors
//   - Counter: AcquireWaitTimeNs, as seconds
type PoolStats struct {
	// Lifetime counters
	AcquireCount      uint64 // Total acquire attempts
	AcquireWaitCount  uint64 // Acquires that had to wait
	CreatedConns      uint64 // Total connections created
	DestroyedConns    uint64 // Total connections destroyed
	AcquireErrors     uint64 // Failed acquire attempts
	AcquireWaitTimeNs uint64 // Total nanoseconds spent waiting

	// Current state gauges
	TotalConns  int32 // Total connections in pool (active + idle)
	IdleConns   int32 // Idle connections available
	ActiveConns int32 // Connections currently in use
}

// ClientStats contains statistics about client operations.
// A command dispatched to a node selection counts once per node.
type ClientStats struct {
	FpWrites     uint64 // FPWRITE executions
	FpScans      uint64 // FPSCAN executions
	Metakeys     uint64 // METAKEYS executions
	Pings        uint64 // PING executions
	Dispatches   uint64 // Commands dispatched to a node selection
	NodeFailures uint64 // Node executions that failed inside a dispatch
	Errors       uint64 // Failed executions, single-node or per node
}

// NodeStats contains the pool and circuit breaker state of one node.
type NodeStats struct {
	Node                 Node
	PoolStats            PoolStats
	CircuitBreakerState  gobreaker.State
	CircuitBreakerCounts gobreaker.Counts
}

// poolStatsCollector is embedded by value in the pools; its zero value is ready.
type poolStatsCollector struct {
	acquireCount      atomic.Uint64
	acquireWaitCount  atomic.Uint64
	createdConns      atomic.Uint64
	destroyedConns    atomic.Uint64
	acquireErrors     atomic.Uint64
	acquireWaitTimeNs atomic.Uint64

	totalConns  atomic.Int32
	idleConns   atomic.Int32
	activeConns atomic.Int32
}

func (c *poolStatsCollector) recordAcquire() {
	c.acquireCount.Add(1)
}

func (c *poolStatsCollector) recordAcquireWait(duration time.Duration) {
	c.acquireWaitCount.Add(1)
	c.acquireWaitTimeNs.Add(uint64(duration.Nanoseconds()))
}

func (c *poolStatsCollector) recordCreate() {
	c.createdConns.Add(1)
	c.totalConns.Add(1)
}

func (c *poolStatsCollector) recordDestroy() {
	c.destroyedConns.Add(1)
	c.totalConns.Add(-1)
}

func (c *poolStatsCollector) recordAcquireError() {
	c.acquireErrors.Add(1)
}

func (c *poolStatsCollector) recordAcquireFromIdle() {
	c.idleConns.Add(-1)
	c.activeConns.Add(1)
}

func (c *poolStatsCollector) recordActivate() {
	c.activeConns.Add(1)
}

func (c *poolStatsCollector) recordDeactivate() {
	c.activeConns.Add(-1)
}

func (c *poolStatsCollector) recordRelease() {
	c.idleConns.Add(1)
	c.activeConns.Add(-1)
}

func (c *poolStatsCollector) recordIdleClosed() {
	c.idleConns.Add(-1)
}

func (c *poolStatsCollector) snapshot() PoolStats {
	return PoolStats{
		TotalConns:        c.totalConns.Load(),
		IdleConns:         c.idleConns.Load(),
		ActiveConns:       c.activeConns.Load(),
		AcquireCount:      c.acquireCount.Load(),
		AcquireWaitCount:  c.acquireWaitCount.Load(),
		CreatedConns:      c.createdConns.Load(),
		DestroyedConns:    c.destroyedConns.Load(),
		AcquireErrors:     c.acquireErrors.Load(),
		AcquireWaitTimeNs: c.acquireWaitTimeNs.Load(),
	}
}

// clientStatsCollector is updated by the clients, never by users.
type clientStatsCollector struct {
	fpWrites     atomic.Uint64
	fpScans      atomic.Uint64
	metakeys     atomic.Uint64
	pings        atomic.Uint64
	dispatches   atomic.Uint64
	nodeFailures atomic.Uint64
	errors       atomic.Uint64
}

func (c *clientStatsCollector) recordCommand(cmd resp.CmdType, err error) {
	switch cmd {
	case resp.CmdFpWrite:
		c.fpWrites.Add(1)
	case resp.CmdFpScan:
		c.fpScans.Add(1)
	case resp.CmdMetakeys:
		c.metakeys.Add(1)
	case resp.CmdPing:
		c.pings.Add(1)
	}
	if err != nil {
		c.errors.Add(1)
	}
}

func (c *clientStatsCollector) recordDispatch() {
	c.dispatches.Add(1)
}

func (c *clientStatsCollector) recordNodeFailure() {
	c.nodeFailures.Add(1)
}

func (c *clientStatsCollector) snapshot() ClientStats {
	return ClientStats{
		FpWrites:     c.fpWrites.Load(),
		FpScans:      c.fpScans.Load(),
		Metakeys:     c.metakeys.Load(),
		Pings:        c.pings.Load(),
		Dispatches:   c.dispatches.Load(),
		NodeFailures: c.nodeFailures.Load(),
		Errors:       c.errors.Load(),
	}
}
