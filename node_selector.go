package addb

import (
	"github.com/pior/addb/internal"
	"github.com/zeebo/xxh3"
)

// NodeSelector picks the node index, in [0, nodeCount), for a key.
// ClusterClient uses it for single-node calls.
type NodeSelector func(key string, nodeCount int) int

// DefaultNodeSelector spreads keys with Jump Hash over xxh3.
// Adding a node moves the fewest keys.
func DefaultNodeSelector(key string, nodeCount int) int {
	return internal.JumpHash(xxh3.HashString(key), nodeCount)
}

// FirstNodeSelector always picks the first node.
func FirstNodeSelector(string, int) int {
	return 0
}
