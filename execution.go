package addb

import (
	"context"
	"fmt"
	"time"
)

// Outcome is the completed result of one node's execution: either a value
// or an error, never both. Node identity travels with the result.
type Outcome[T any] struct {
	Node     Node
	Value    T
	Err      error
	Duration time.Duration
}

// OK returns true if the node succeeded.
func (o Outcome[T]) OK() bool {
	return o.Err == nil
}

// Execution is the handle on one node's run of a command.
//
// It completes exactly once, with a value or an error. Waiting never
// consumes the result: Done, Poll, Wait and Get can be called any number of
// times from any goroutine.
type Execution[T any] struct {
	node    Node
	started time.Time
	cancel  context.CancelFunc
	done    chan struct{}

	// written once before done is closed
	outcome Outcome[T]
}

// startExecution runs fn in its own goroutine with a cancelable child of ctx.
// onDone, if set, is called after the execution completed.
func startExecution[T any](ctx context.Context, node Node, fn func(ctx context.Context) (T, error), onDone func(*Execution[T])) *Execution[T] {
	ctx, cancel := context.WithCancel(ctx)

	e := &Execution[T]{
		node:    node,
		started: time.Now(),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go func() {
		defer cancel()

		value, err := runProtected(ctx, fn)
		e.complete(value, err)

		if onDone != nil {
			onDone(e)
		}
	}()

	return e
}

// runProtected converts a panic in fn into an error, so that a bug in one
// node's decoding cannot take down its siblings.
func runProtected[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			value, err = zero, fmt.Errorf("addb: execution panicked: %v", r)
		}
	}()
	return fn(ctx)
}

func (e *Execution[T]) complete(value T, err error) {
	e.outcome = Outcome[T]{
		Node:     e.node,
		Value:    value,
		Err:      err,
		Duration: time.Since(e.started),
	}
	close(e.done)
}

// Node returns the node this execution runs against.
func (e *Execution[T]) Node() Node {
	return e.node
}

// Done returns a channel closed when the execution completed.
func (e *Execution[T]) Done() <-chan struct{} {
	return e.done
}

// IsDone reports whether the execution completed.
func (e *Execution[T]) IsDone() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

// Poll returns the outcome without blocking. ok is false while the
// execution is still running.
func (e *Execution[T]) Poll() (outcome Outcome[T], ok bool) {
	if !e.IsDone() {
		return Outcome[T]{Node: e.node}, false
	}
	return e.outcome, true
}

// Wait blocks until the execution completed or ctx is done.
// When ctx ends first, ctx.Err() is returned and the execution keeps running.
func (e *Execution[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-e.done:
		return e.outcome.Value, e.outcome.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Get blocks until the execution completed and returns its result.
func (e *Execution[T]) Get() (T, error) {
	<-e.done
	return e.outcome.Value, e.outcome.Err
}

// Outcome blocks until the execution completed and returns its outcome.
func (e *Execution[T]) Outcome() Outcome[T] {
	<-e.done
	return e.outcome
}

// Cancel cancels this execution only. A canceled execution completes with
// the error of the interrupted operation, usually context.Canceled.
func (e *Execution[T]) Cancel() {
	e.cancel()
}
