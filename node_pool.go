package addb

import (
	"context"
	"log/slog"

	"github.com/pior/addb/resp"
	"github.com/sony/gobreaker/v2"
)

// NewNodePool creates the connection pool and circuit breaker of one node.
// No connection is dialed until the first request.
func NewNodePool(node Node, config Config) (*NodePool, error) {
	config = config.withDefaults()

	constructor := func(ctx context.Context) (*Connection, error) {
		netConn, err := config.Dialer.DialContext(ctx, "tcp", node.Addr)
		if err != nil {
			return nil, &resp.ConnectionError{Op: "dial", Err: err}
		}
		return NewConnection(netConn), nil
	}

	pool, err := config.NewPool(constructor, config.MaxSize)
	if err != nil {
		return nil, err
	}

	np := &NodePool{
		node:   node,
		pool:   pool,
		logger: config.Logger.With("node", node.ID),
	}
	if config.NewCircuitBreaker != nil {
		np.circuitBreaker = config.NewCircuitBreaker(node, config.Logger)
	}
	return np, nil
}

// NodePool wraps the connection pool and the circuit breaker of a node.
type NodePool struct {
	node           Node
	pool           Pool
	circuitBreaker *gobreaker.CircuitBreaker[*resp.Response]
	logger         *slog.Logger
}

func (np *NodePool) Node() Node {
	return np.node
}

func (np *NodePool) Stats() NodeStats {
	stats := NodeStats{
		Node:      np.node,
		PoolStats: np.pool.Stats(),
	}
	if np.circuitBreaker != nil {
		stats.CircuitBreakerState = np.circuitBreaker.State()
		stats.CircuitBreakerCounts = np.circuitBreaker.Counts()
	}
	return stats
}

// Execute runs one request-response cycle on a pooled connection.
// The request goes through the node's circuit breaker, if any.
func (np *NodePool) Execute(ctx context.Context, req *resp.Request) (*resp.Response, error) {
	if np.circuitBreaker == nil {
		return np.execRequestDirect(ctx, req)
	}

	return np.circuitBreaker.Execute(func() (*resp.Response, error) {
		return np.execRequestDirect(ctx, req)
	})
}

// execRequestDirect acquires a connection, runs the request and hands the
// connection back, or destroys it when the stream can no longer be trusted.
func (np *NodePool) execRequestDirect(ctx context.Context, req *resp.Request) (*resp.Response, error) {
	resource, err := np.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	conn := resource.Value()

	r, err := conn.Execute(ctx, req)
	if err != nil {
		if resp.ShouldCloseConnection(err) {
			np.logger.Debug("connection destroyed", "command", string(req.Command), "error", err)
			resource.Destroy()
		} else {
			resource.Release()
		}
		return nil, err
	}

	resource.Release()
	return r, nil
}

// Close closes every connection of the node.
func (np *NodePool) Close() {
	np.pool.Close()
}
