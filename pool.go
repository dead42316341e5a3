package addb

import (
	"context"
	"errors"
	"time"
)

// ErrPoolClosed is returned by Acquire on a closed pool.
var ErrPoolClosed = errors.New("addb: pool closed")

// Constructor dials a new connection for a pool.
type Constructor func(ctx context.Context) (*Connection, error)

// PoolFactory creates the connection pool of one node.
// NewChannelPool and NewPuddlePool are the two implementations.
type PoolFactory func(constructor Constructor, maxSize int32) (Pool, error)

// Pool holds the connections to one node.
type Pool interface {
	// Acquire returns an idle connection, dials a new one, or waits for one
	// to be released, until ctx is done.
	Acquire(ctx context.Context) (Resource, error)

	// AcquireAllIdle takes every idle connection out of the pool.
	AcquireAllIdle() []Resource

	Close()

	Stats() PoolStats
}

// Resource is a pooled connection. Exactly one of Release, ReleaseUnused or
// Destroy must be called once the caller is done with it.
type Resource interface {
	Value() *Connection
	Release()
	ReleaseUnused()
	Destroy()
	CreationTime() time.Time
	IdleDuration() time.Duration
}
