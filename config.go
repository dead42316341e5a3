package addb

import (
	"log/slog"
	"net"
)

// DefaultMaxSize is the per-node connection limit when Config.MaxSize is zero.
const DefaultMaxSize = 10

// Config holds the configuration shared by every node of a client.
type Config struct {
	// MaxSize is the maximum number of connections per node.
	// Zero means DefaultMaxSize.
	MaxSize int32

	// Dialer is the net.Dialer used to create new connections.
	// If nil, the default net.Dialer is used.
	Dialer *net.Dialer

	// NewPool creates the connection pool of a node.
	// If nil, NewChannelPool is used. NewPuddlePool is the alternative.
	NewPool PoolFactory

	// NewCircuitBreaker creates the circuit breaker of a node.
	// If nil, no circuit breaker is used. See NewCircuitBreakerConfig.
	NewCircuitBreaker CircuitBreakerFactory

	// SelectNode picks the node of single-node calls on a ClusterClient.
	// If nil, DefaultNodeSelector is used.
	SelectNode NodeSelector

	// Logger receives the client's events. If nil, slog.Default() is used.
	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.MaxSize == 0 {
		c.MaxSize = DefaultMaxSize
	}
	if c.Dialer == nil {
		c.Dialer = &net.Dialer{}
	}
	if c.NewPool == nil {
		c.NewPool = NewChannelPool
	}
	if c.SelectNode == nil {
		c.SelectNode = DefaultNodeSelector
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
