package addb

import (
	"context"
	"sync/atomic"

	"github.com/pior/addb/resp"
)

// Client runs the overlay commands against a single node, through a
// connection pool and an optional circuit breaker.
type Client struct {
	*Commands

	node   *NodePool
	stats  clientStatsCollector
	closed atomic.Bool
}

var (
	_ Executor     = (*Client)(nil)
	_ NodeExecutor = (*Client)(nil)
	_ Router       = (*Client)(nil)
)

// NewClient creates a client for the node at addr.
// No connection is dialed until the first command.
func NewClient(addr string, config Config) (*Client, error) {
	config = config.withDefaults()

	np, err := NewNodePool(NewNode(addr), config)
	if err != nil {
		return nil, err
	}

	c := &Client{node: np}
	c.Commands = &Commands{executor: c, stats: &c.stats, logger: config.Logger}
	return c, nil
}

// Execute runs a raw request on the node.
func (c *Client) Execute(ctx context.Context, req *resp.Request) (*resp.Response, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}
	return c.node.Execute(ctx, req)
}

// ExecuteOn runs req on node, which must be this client's node.
func (c *Client) ExecuteOn(ctx context.Context, node Node, req *resp.Request) (*resp.Response, error) {
	if node.ID != c.node.Node().ID {
		return nil, ErrUnknownNode
	}
	return c.Execute(ctx, req)
}

// Route always returns the client's node.
func (c *Client) Route(*resp.Request) (Node, error) {
	return c.node.Node(), nil
}

// Node returns the node of the client.
func (c *Client) Node() Node {
	return c.node.Node()
}

// Stats returns a snapshot of the command counters.
func (c *Client) Stats() ClientStats {
	return c.stats.snapshot()
}

// NodeStats returns the pool and circuit breaker state of the node.
func (c *Client) NodeStats() NodeStats {
	return c.node.Stats()
}

// AllNodeStats returns the stats of the client's only node.
func (c *Client) AllNodeStats() []NodeStats {
	return []NodeStats{c.node.Stats()}
}

// Close closes every connection. Commands fail with ErrClientClosed afterwards.
func (c *Client) Close() {
	if c.closed.Swap(true) {
		return
	}
	c.node.Close()
}
