package addb

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/pior/addb/resp"
	"github.com/puzpuzpuz/xsync/v3"
)

// ClusterClient runs the overlay commands against a set of nodes.
//
// Single-node calls (FpWrite, FpScan, ...) go to the node picked by
// Config.SelectNode from the first argument of the command. Select, All,
// Masters and Replicas run a command on every node of a selection.
type ClusterClient struct {
	*Commands

	config Config
	logger *slog.Logger
	pools  *xsync.MapOf[string, *NodePool]

	mu    sync.RWMutex
	nodes []Node // topology order

	stats  clientStatsCollector
	closed atomic.Bool
}

var (
	_ Executor     = (*ClusterClient)(nil)
	_ NodeExecutor = (*ClusterClient)(nil)
	_ Router       = (*ClusterClient)(nil)
)

// NewClusterClient creates a client for the given nodes.
// Nodes with a duplicate ID are ignored.
func NewClusterClient(nodes []Node, config Config) (*ClusterClient, error) {
	config = config.withDefaults()

	c := &ClusterClient{
		config: config,
		logger: config.Logger,
		pools:  xsync.NewMapOf[string, *NodePool](),
	}
	c.Commands = &Commands{executor: c, stats: &c.stats, logger: config.Logger}

	if err := c.UpdateTopology(nodes); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// UpdateTopology replaces the set of known nodes.
//
// New nodes get a pool, removed nodes have theirs closed, nodes that stay
// keep their connections. Executions already running on a removed node
// fail or complete on their own.
func (c *ClusterClient) UpdateTopology(nodes []Node) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	if len(nodes) == 0 {
		return ErrNoNodes
	}

	next := NewSelection(nodes...).Nodes()

	c.mu.Lock()
	defer c.mu.Unlock()

	fresh := make(map[string]*NodePool)
	for _, node := range next {
		if existing, ok := c.pools.Load(node.ID); ok && existing.Node() == node {
			continue
		}
		np, err := NewNodePool(node, c.config)
		if err != nil {
			for _, np := range fresh {
				np.Close()
			}
			return err
		}
		fresh[node.ID] = np
	}

	for id, np := range fresh {
		if old, loaded := c.pools.LoadAndStore(id, np); loaded {
			old.Close() // address or role changed
		}
	}

	removed := 0
	c.pools.Range(func(id string, np *NodePool) bool {
		if !slices.ContainsFunc(next, func(n Node) bool { return n.ID == id }) {
			if np, ok := c.pools.LoadAndDelete(id); ok {
				np.Close()
				removed++
			}
		}
		return true
	})

	c.nodes = next
	c.logger.Info("topology updated", "nodes", len(next), "added", len(fresh), "removed", removed)
	return nil
}

// Nodes returns the known nodes, in topology order.
func (c *ClusterClient) Nodes() []Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.nodes)
}

// Route picks the node of a single-node call from the command's first argument.
func (c *ClusterClient) Route(req *resp.Request) (Node, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.nodes) == 0 {
		return Node{}, ErrNoNodes
	}

	var key string
	if req.Args.Len() > 0 {
		key = req.Args.At(0).String()
	}
	return c.nodes[c.config.SelectNode(key, len(c.nodes))], nil
}

// Execute runs req on the node picked by Route.
func (c *ClusterClient) Execute(ctx context.Context, req *resp.Request) (*resp.Response, error) {
	node, err := c.Route(req)
	if err != nil {
		return nil, err
	}
	return c.ExecuteOn(ctx, node, req)
}

// ExecuteOn runs req on the given node. The node must be part of the
// topology.
func (c *ClusterClient) ExecuteOn(ctx context.Context, node Node, req *resp.Request) (*resp.Response, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}
	np, ok := c.pools.Load(node.ID)
	if !ok {
		return nil, ErrUnknownNode
	}
	return np.Execute(ctx, req)
}

// Select returns the nodes matching pred as a node selection.
func (c *ClusterClient) Select(pred NodePredicate) *NodeSelection {
	return c.Selection(Select(c.Nodes(), pred))
}

// Selection wraps an externally computed selection. Nodes unknown to the
// client fail with ErrUnknownNode.
func (c *ClusterClient) Selection(sel Selection) *NodeSelection {
	return &NodeSelection{client: c, sel: sel}
}

// All selects every node.
func (c *ClusterClient) All() *NodeSelection { return c.Select(AllNodes) }

// Masters selects the master nodes.
func (c *ClusterClient) Masters() *NodeSelection { return c.Select(Masters) }

// Replicas selects the replica nodes.
func (c *ClusterClient) Replicas() *NodeSelection { return c.Select(Replicas) }

// Stats returns a snapshot of the command counters.
func (c *ClusterClient) Stats() ClientStats {
	return c.stats.snapshot()
}

// AllNodeStats returns the pool and circuit breaker state of every node, in
// topology order.
func (c *ClusterClient) AllNodeStats() []NodeStats {
	nodes := c.Nodes()
	stats := make([]NodeStats, 0, len(nodes))
	for _, node := range nodes {
		if np, ok := c.pools.Load(node.ID); ok {
			stats = append(stats, np.Stats())
		}
	}
	return stats
}

// Close closes every node's connections.
func (c *ClusterClient) Close() {
	if c.closed.Swap(true) {
		return
	}
	c.pools.Range(func(id string, np *NodePool) bool {
		np.Close()
		c.pools.Delete(id)
		return true
	})
}
