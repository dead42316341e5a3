package addb

import (
	"context"

	"github.com/pior/addb/resp"
)

// NodeSelection runs a command on every node of a selection and waits for
// all of them.
//
// The methods return the per-node outcomes. The error is non-nil only when
// ctx ended before every node completed: it is then an *IncompleteError and
// the outcomes hold the nodes that did complete. Node failures are never
// returned as the error; look at Executions.Failed.
//
// ctx bounds the wait, not the node executions: a node still running when
// ctx ends is reported as pending, then canceled.
type NodeSelection struct {
	client *ClusterClient
	sel    Selection
}

// Nodes returns the selected nodes.
func (s *NodeSelection) Nodes() []Node { return s.sel.Nodes() }

// Len returns the number of selected nodes.
func (s *NodeSelection) Len() int { return s.sel.Len() }

// Async returns the asynchronous form of this selection.
func (s *NodeSelection) Async() *AsyncNodeSelection {
	return &AsyncNodeSelection{client: s.client, sel: s.sel}
}

func (s *NodeSelection) FpWrite(ctx context.Context, args FpWriteArgs) (*Executions[string], error) {
	return waitAll(ctx, func(ctx context.Context) *AsyncExecutions[string] {
		return s.Async().FpWrite(ctx, args)
	})
}

func (s *NodeSelection) FpScan(ctx context.Context, args FpScanArgs) (*Executions[[]string], error) {
	return waitAll(ctx, func(ctx context.Context) *AsyncExecutions[[]string] {
		return s.Async().FpScan(ctx, args)
	})
}

func (s *NodeSelection) Metakeys(ctx context.Context, args MetakeysArgs) (*Executions[[]string], error) {
	return waitAll(ctx, func(ctx context.Context) *AsyncExecutions[[]string] {
		return s.Async().Metakeys(ctx, args)
	})
}

func (s *NodeSelection) Ping(ctx context.Context) (*Executions[string], error) {
	return waitAll(ctx, func(ctx context.Context) *AsyncExecutions[string] {
		return s.Async().Ping(ctx)
	})
}

// waitAll dispatches without ctx's deadline or cancellation so that a node
// cannot fail with ctx's error at the moment the wait gives up on it.
func waitAll[T any](ctx context.Context, start func(context.Context) *AsyncExecutions[T]) (*Executions[T], error) {
	a := start(context.WithoutCancel(ctx))

	x, err := a.Wait(ctx)
	if err != nil {
		a.Cancel()
	}
	return x, err
}

// AsyncNodeSelection dispatches a command to every node of a selection and
// returns at once. Each node completes independently.
type AsyncNodeSelection struct {
	client *ClusterClient
	sel    Selection
}

// Nodes returns the selected nodes.
func (s *AsyncNodeSelection) Nodes() []Node { return s.sel.Nodes() }

func (s *AsyncNodeSelection) FpWrite(ctx context.Context, args FpWriteArgs) *AsyncExecutions[string] {
	return dispatchOn(ctx, s, NewRequest(args), decodeStatus)
}

func (s *AsyncNodeSelection) FpScan(ctx context.Context, args FpScanArgs) *AsyncExecutions[[]string] {
	return dispatchOn(ctx, s, NewRequest(args), decodeList)
}

func (s *AsyncNodeSelection) Metakeys(ctx context.Context, args MetakeysArgs) *AsyncExecutions[[]string] {
	return dispatchOn(ctx, s, NewRequest(args), decodeList)
}

func (s *AsyncNodeSelection) Ping(ctx context.Context) *AsyncExecutions[string] {
	return dispatchOn(ctx, s, pingRequest(), decodePong)
}

func dispatchOn[T any](ctx context.Context, s *AsyncNodeSelection, req *resp.Request, decode Decoder[T]) *AsyncExecutions[T] {
	c := s.client
	c.stats.recordDispatch()

	a := dispatch(ctx, c.logger, s.sel, c, req, decode)
	a.OnComplete(func(e *Execution[T]) {
		err := e.outcome.Err
		c.stats.recordCommand(req.Command, err)
		if err != nil {
			c.stats.recordNodeFailure()
		}
	})
	return a
}
