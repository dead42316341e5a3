package addb

import (
	"context"
	"iter"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/pior/addb/resp"
)

// NodeExecutor runs a request against one specific node.
type NodeExecutor interface {
	ExecuteOn(ctx context.Context, node Node, req *resp.Request) (*resp.Response, error)
}

// NodeExecutorFunc adapts a function to NodeExecutor.
type NodeExecutorFunc func(ctx context.Context, node Node, req *resp.Request) (*resp.Response, error)

func (f NodeExecutorFunc) ExecuteOn(ctx context.Context, node Node, req *resp.Request) (*resp.Response, error) {
	return f(ctx, node, req)
}

// Decoder converts a reply into the command's result type.
type Decoder[T any] func(*resp.Response) (T, error)

// Dispatch runs req on every node of sel concurrently and returns at once.
//
// Every node gets its own execution: a failure or a slow node never affects
// the others. The request is shared read-only between nodes.
func Dispatch[T any](ctx context.Context, sel Selection, exec NodeExecutor, req *resp.Request, decode Decoder[T]) *AsyncExecutions[T] {
	return dispatch(ctx, slog.Default(), sel, exec, req, decode)
}

func dispatch[T any](ctx context.Context, logger *slog.Logger, sel Selection, exec NodeExecutor, req *resp.Request, decode Decoder[T]) *AsyncExecutions[T] {
	a := &AsyncExecutions[T]{
		id:          uuid.NewString(),
		nodes:       sel.Nodes(),
		byID:        make(map[string]*Execution[T], sel.Len()),
		done:        make(chan struct{}),
		completions: make(chan *Execution[T], sel.Len()),
		remaining:   sel.Len(),
	}
	a.executions = make([]*Execution[T], len(a.nodes))

	if len(a.nodes) == 0 {
		close(a.done)
		close(a.completions)
		return a
	}

	logger = logger.With("dispatch", a.id, "command", string(req.Command))

	// Registration happens under the lock so that a fast node cannot
	// complete before its siblings are known.
	a.mu.Lock()
	for i, node := range a.nodes {
		run := func(ctx context.Context) (T, error) {
			r, err := exec.ExecuteOn(ctx, node, req)
			if err != nil {
				var zero T
				return zero, err
			}
			return decode(r)
		}
		e := startExecution(ctx, node, run, func(e *Execution[T]) {
			if err := e.outcome.Err; err != nil {
				logger.Debug("node execution failed", "node", e.node.ID, "error", err)
			}
			a.completed(e)
		})
		a.executions[i] = e
		a.byID[node.ID] = e
	}
	a.mu.Unlock()

	return a
}

// AsyncExecutions is the handle on one command dispatched to a node
// selection. Each member is an independent Execution keyed by its node.
type AsyncExecutions[T any] struct {
	id         string
	nodes      []Node
	executions []*Execution[T]
	byID       map[string]*Execution[T]

	done        chan struct{}
	completions chan *Execution[T]

	mu        sync.Mutex
	remaining int
	finished  []*Execution[T] // in completion order
	callbacks []func(*Execution[T])
}

func (a *AsyncExecutions[T]) completed(e *Execution[T]) {
	a.mu.Lock()
	a.finished = append(a.finished, e)
	callbacks := slices.Clone(a.callbacks)
	a.completions <- e // buffered for every node, never blocks
	a.mu.Unlock()

	for _, fn := range callbacks {
		fn(e)
	}

	// Done is closed after the callbacks of every node returned.
	a.mu.Lock()
	a.remaining--
	last := a.remaining == 0
	a.mu.Unlock()

	if last {
		close(a.done)
		close(a.completions)
	}
}

// ID identifies this dispatch in logs.
func (a *AsyncExecutions[T]) ID() string { return a.id }

// Len returns the number of nodes the command was dispatched to.
func (a *AsyncExecutions[T]) Len() int { return len(a.nodes) }

// Nodes returns the selected nodes, in selection order.
func (a *AsyncExecutions[T]) Nodes() []Node { return slices.Clone(a.nodes) }

// Get returns the execution of the node with the given ID.
func (a *AsyncExecutions[T]) Get(nodeID string) (*Execution[T], bool) {
	e, ok := a.byID[nodeID]
	return e, ok
}

// All iterates over the node executions in selection order.
func (a *AsyncExecutions[T]) All() iter.Seq2[Node, *Execution[T]] {
	return func(yield func(Node, *Execution[T]) bool) {
		for _, e := range a.executions {
			if !yield(e.node, e) {
				return
			}
		}
	}
}

// Done returns a channel closed once every node completed.
func (a *AsyncExecutions[T]) Done() <-chan struct{} { return a.done }

// Completions yields each execution as soon as it completes, then closes.
// It is meant for a single consumer.
func (a *AsyncExecutions[T]) Completions() <-chan *Execution[T] { return a.completions }

// OnComplete calls fn once per node when that node completes.
// Nodes that already completed are reported immediately, on the caller's
// goroutine. Other calls happen on the completing node's goroutine.
func (a *AsyncExecutions[T]) OnComplete(fn func(*Execution[T])) {
	a.mu.Lock()
	already := slices.Clone(a.finished)
	a.callbacks = append(a.callbacks, fn)
	a.mu.Unlock()

	for _, e := range already {
		fn(e)
	}
}

// Cancel cancels every execution that is still running.
func (a *AsyncExecutions[T]) Cancel() {
	for _, e := range a.executions {
		e.Cancel()
	}
}

// Wait blocks until every node completed or ctx is done.
//
// Per-node failures are reported in the returned Executions, never as the
// error. The error is an *IncompleteError when ctx ended first; the
// Executions then holds the nodes completed so far and lists the others as
// pending. Pending executions keep running.
func (a *AsyncExecutions[T]) Wait(ctx context.Context) (*Executions[T], error) {
	select {
	case <-a.done:
	case <-ctx.Done():
	}

	result := a.snapshot()
	if len(result.pending) > 0 {
		return result, &IncompleteError{Pending: result.Pending(), Err: ctx.Err()}
	}
	return result, nil
}

// snapshot captures the outcomes completed so far.
func (a *AsyncExecutions[T]) snapshot() *Executions[T] {
	result := &Executions[T]{
		id:       a.id,
		nodes:    a.nodes,
		outcomes: make(map[string]Outcome[T], len(a.nodes)),
	}
	for _, e := range a.executions {
		if o, ok := e.Poll(); ok {
			result.outcomes[e.node.ID] = o
		} else {
			result.pending = append(result.pending, e.node)
		}
	}
	return result
}

// Executions holds the outcomes of one command run on a node selection,
// keyed by node.
type Executions[T any] struct {
	id       string
	nodes    []Node
	outcomes map[string]Outcome[T]
	pending  []Node
}

// ID identifies the dispatch these outcomes come from.
func (x *Executions[T]) ID() string { return x.id }

// Len returns the number of selected nodes, completed or not.
func (x *Executions[T]) Len() int { return len(x.nodes) }

// Nodes returns the selected nodes, in selection order.
func (x *Executions[T]) Nodes() []Node { return slices.Clone(x.nodes) }

// Get returns the outcome of the node with the given ID.
// ok is false for unknown and pending nodes.
func (x *Executions[T]) Get(nodeID string) (Outcome[T], bool) {
	o, ok := x.outcomes[nodeID]
	return o, ok
}

// All iterates over the completed outcomes in selection order.
func (x *Executions[T]) All() iter.Seq2[Node, Outcome[T]] {
	return func(yield func(Node, Outcome[T]) bool) {
		for _, n := range x.nodes {
			o, ok := x.outcomes[n.ID]
			if !ok {
				continue
			}
			if !yield(n, o) {
				return
			}
		}
	}
}

// Pending returns the nodes that had not completed.
func (x *Executions[T]) Pending() []Node { return slices.Clone(x.pending) }

// Complete reports whether every selected node completed.
func (x *Executions[T]) Complete() bool { return len(x.pending) == 0 }

// Succeeded returns the nodes that completed with a value.
func (x *Executions[T]) Succeeded() []Node {
	return x.filter(func(o Outcome[T]) bool { return o.Err == nil })
}

// Failed returns the nodes that completed with an error.
func (x *Executions[T]) Failed() []Node {
	return x.filter(func(o Outcome[T]) bool { return o.Err != nil })
}

// Values returns the successful values keyed by node ID.
func (x *Executions[T]) Values() map[string]T {
	values := make(map[string]T, len(x.outcomes))
	for id, o := range x.outcomes {
		if o.Err == nil {
			values[id] = o.Value
		}
	}
	return values
}

func (x *Executions[T]) filter(keep func(Outcome[T]) bool) []Node {
	var nodes []Node
	for n, o := range x.All() {
		if keep(o) {
			nodes = append(nodes, n)
		}
	}
	return nodes
}
