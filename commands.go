package addb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pior/addb/resp"
)

// Querier is the single-node command surface, sync and async.
type Querier interface {
	FpWrite(ctx context.Context, args FpWriteArgs) (string, error)
	FpScan(ctx context.Context, args FpScanArgs) ([]string, error)
	Metakeys(ctx context.Context, args MetakeysArgs) ([]string, error)
	Ping(ctx context.Context) error

	FpWriteAsync(ctx context.Context, args FpWriteArgs) *Execution[string]
	FpScanAsync(ctx context.Context, args FpScanArgs) *Execution[[]string]
	MetakeysAsync(ctx context.Context, args MetakeysArgs) *Execution[[]string]
}

// Executor executes a request on the node it is routed to.
type Executor interface {
	Execute(ctx context.Context, req *resp.Request) (*resp.Response, error)
}

// Router is implemented by executors that can tell which node a request
// goes to. Async executions of such executors report that node.
type Router interface {
	Route(req *resp.Request) (Node, error)
}

// Commands provides the typed commands over an Executor.
// It can be used independently with a custom Executor, or embedded in a
// client with pooling and circuit breaking.
type Commands struct {
	executor Executor
	stats    *clientStatsCollector
	logger   *slog.Logger
}

var _ Querier = (*Commands)(nil)

// NewCommands creates a Commands running its requests on executor.
func NewCommands(executor Executor) *Commands {
	return &Commands{
		executor: executor,
		logger:   slog.Default(),
	}
}

// FpWrite writes rows under a data key on one node. It returns the node's
// status reply, normally OK.
func (c *Commands) FpWrite(ctx context.Context, args FpWriteArgs) (string, error) {
	return execute(ctx, c, NewRequest(args), decodeStatus)
}

// FpScan reads the given columns of a data key on one node.
func (c *Commands) FpScan(ctx context.Context, args FpScanArgs) ([]string, error) {
	return execute(ctx, c, NewRequest(args), decodeList)
}

// Metakeys lists the meta keys matching a pattern and a predicate statement
// on one node.
func (c *Commands) Metakeys(ctx context.Context, args MetakeysArgs) ([]string, error) {
	return execute(ctx, c, NewRequest(args), decodeList)
}

// Ping checks that the node answers.
func (c *Commands) Ping(ctx context.Context) error {
	_, err := execute(ctx, c, pingRequest(), decodePong)
	return err
}

func (c *Commands) FpWriteAsync(ctx context.Context, args FpWriteArgs) *Execution[string] {
	return executeAsync(ctx, c, NewRequest(args), decodeStatus)
}

func (c *Commands) FpScanAsync(ctx context.Context, args FpScanArgs) *Execution[[]string] {
	return executeAsync(ctx, c, NewRequest(args), decodeList)
}

func (c *Commands) MetakeysAsync(ctx context.Context, args MetakeysArgs) *Execution[[]string] {
	return executeAsync(ctx, c, NewRequest(args), decodeList)
}

func execute[T any](ctx context.Context, c *Commands, req *resp.Request, decode Decoder[T]) (T, error) {
	value, err := runDecoded(ctx, c.executor, req, decode)
	c.record(req, err)
	return value, err
}

func executeAsync[T any](ctx context.Context, c *Commands, req *resp.Request, decode Decoder[T]) *Execution[T] {
	var node Node
	var routeErr error

	exec := c.executor
	router, canRoute := c.executor.(Router)
	nodeExec, canTarget := c.executor.(NodeExecutor)
	if canRoute && canTarget {
		node, routeErr = router.Route(req)
		exec = executorFunc(func(ctx context.Context, req *resp.Request) (*resp.Response, error) {
			return nodeExec.ExecuteOn(ctx, node, req)
		})
	}

	run := func(ctx context.Context) (T, error) {
		if routeErr != nil {
			var zero T
			return zero, routeErr
		}
		return runDecoded(ctx, exec, req, decode)
	}

	return startExecution(ctx, node, run, func(e *Execution[T]) {
		c.record(req, e.outcome.Err)
	})
}

func runDecoded[T any](ctx context.Context, exec Executor, req *resp.Request, decode Decoder[T]) (T, error) {
	r, err := exec.Execute(ctx, req)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode(r)
}

func (c *Commands) record(req *resp.Request, err error) {
	if c.stats != nil {
		c.stats.recordCommand(req.Command, err)
	}
	if err != nil {
		c.logger.Debug("command failed", "command", string(req.Command), "error", err)
	}
}

type executorFunc func(ctx context.Context, req *resp.Request) (*resp.Response, error)

func (f executorFunc) Execute(ctx context.Context, req *resp.Request) (*resp.Response, error) {
	return f(ctx, req)
}

func pingRequest() *resp.Request {
	return resp.NewRequest(resp.CmdPing, nil)
}

// decodeStatus reads the status reply of FPWRITE.
func decodeStatus(r *resp.Response) (string, error) {
	if r.HasError() {
		return "", r.Error
	}
	if r.Kind != resp.KindSimpleString && r.Kind != resp.KindBulkString {
		return "", fmt.Errorf("%w: %s reply to a write", ErrUnexpectedReply, r.Kind)
	}
	return r.Text()
}

// decodeList reads the array reply of FPSCAN and METAKEYS.
func decodeList(r *resp.Response) ([]string, error) {
	if r.HasError() {
		return nil, r.Error
	}
	if r.Kind != resp.KindArray {
		return nil, fmt.Errorf("%w: %s reply to a scan", ErrUnexpectedReply, r.Kind)
	}
	return r.Strings()
}

func decodePong(r *resp.Response) (string, error) {
	if r.HasError() {
		return "", r.Error
	}
	s, err := r.Text()
	if err != nil {
		return "", err
	}
	if s != resp.StatusPong {
		return "", fmt.Errorf("%w: %q to PING", ErrUnexpectedReply, s)
	}
	return s, nil
}
