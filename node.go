package addb

import (
	"slices"
)

// NodeRole is the replication role of a cluster node.
type NodeRole string

const (
	RoleMaster  NodeRole = "master"
	RoleReplica NodeRole = "replica"
)

// Node identifies one store node.
// ID is the identity used to key per-node results; Addr is where to dial.
type Node struct {
	ID   string
	Addr string
	Role NodeRole
}

func (n Node) String() string {
	if n.ID == n.Addr || n.ID == "" {
		return n.Addr
	}
	return n.ID + "@" + n.Addr
}

// NewNode returns a master node whose ID is its address.
func NewNode(addr string) Node {
	return Node{ID: addr, Addr: addr, Role: RoleMaster}
}

// NodesFromAddr returns one master node per address.
func NodesFromAddr(addrs ...string) []Node {
	nodes := make([]Node, len(addrs))
	for i, addr := range addrs {
		nodes[i] = NewNode(addr)
	}
	return nodes
}

// Selection is an externally computed set of nodes that should each run the
// same command. Use NewSelection or Select to build one: they drop
// duplicate IDs so that every node runs the command exactly once.
type Selection struct {
	nodes []Node
}

// NewSelection returns a selection of the given nodes, in order.
// Nodes with an ID already present are dropped.
func NewSelection(nodes ...Node) Selection {
	seen := make(map[string]struct{}, len(nodes))
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if _, dup := seen[n.ID]; dup {
			continue
		}
		seen[n.ID] = struct{}{}
		out = append(out, n)
	}
	return Selection{nodes: out}
}

// Select returns the nodes matching pred.
func Select(nodes []Node, pred NodePredicate) Selection {
	matched := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if pred == nil || pred(n) {
			matched = append(matched, n)
		}
	}
	return NewSelection(matched...)
}

// Len returns the number of selected nodes.
func (s Selection) Len() int { return len(s.nodes) }

// Nodes returns a copy of the selected nodes.
func (s Selection) Nodes() []Node { return slices.Clone(s.nodes) }

// Contains reports whether a node with the given ID is selected.
func (s Selection) Contains(id string) bool {
	return slices.ContainsFunc(s.nodes, func(n Node) bool { return n.ID == id })
}

// NodePredicate decides whether a node takes part in a selection.
type NodePredicate func(Node) bool

// AllNodes selects every node.
func AllNodes(Node) bool { return true }

// Masters selects master nodes.
func Masters(n Node) bool { return n.Role == RoleMaster }

// Replicas selects replica nodes.
func Replicas(n Node) bool { return n.Role == RoleReplica }

// ByID selects the nodes with one of the given IDs.
func ByID(ids ...string) NodePredicate {
	return func(n Node) bool { return slices.Contains(ids, n.ID) }
}

// ByAddr selects the nodes with one of the given addresses.
func ByAddr(addrs ...string) NodePredicate {
	return func(n Node) bool { return slices.Contains(addrs, n.Addr) }
}
