package addb

import (
	"bufio"
	"context"
	"errors"
	"net"
	"os"
	"time"

	"github.com/pior/addb/resp"
)

// Connection is one RESP connection to a node.
// It runs one request at a time; pools hand it out exclusively.
type Connection struct {
	conn   net.Conn
	Reader *bufio.Reader
	Writer *bufio.Writer
}

// NewConnection wraps netConn with buffered reader and writer.
func NewConnection(netConn net.Conn) *Connection {
	return &Connection{
		conn:   netConn,
		Reader: bufio.NewReader(netConn),
		Writer: bufio.NewWriter(netConn),
	}
}

// Execute writes req and reads its reply.
//
// The context deadline, if any, applies to the whole round trip. A node
// error reply is returned as Response.Error with a nil error.
func (c *Connection) Execute(ctx context.Context, req *resp.Request) (*resp.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetDeadline(deadline)
	} else {
		_ = c.conn.SetDeadline(time.Time{})
	}

	// Cancellation without deadline: unblock I/O by expiring the deadline.
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	if err := resp.WriteRequest(c.Writer, req); err != nil {
		return nil, &resp.ConnectionError{Op: "write", Err: contextOr(ctx, err)}
	}
	if err := c.Writer.Flush(); err != nil {
		return nil, &resp.ConnectionError{Op: "flush", Err: contextOr(ctx, err)}
	}

	r, err := resp.ReadResponse(c.Reader)
	if !stop() {
		// The expired deadline may land after this returns: the connection
		// must not be reused.
		return nil, &resp.ConnectionError{Op: "read", Err: ctx.Err()}
	}
	if err != nil {
		if cause := contextOr(ctx, err); cause != err {
			return nil, &resp.ConnectionError{Op: "read", Err: cause}
		}
		return nil, err
	}
	return r, nil
}

// contextOr returns the context error when the I/O failure was caused by
// the context: a cancellation, or the deadline copied onto the connection.
func contextOr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if deadline, ok := ctx.Deadline(); ok && errors.Is(err, os.ErrDeadlineExceeded) && !time.Now().Before(deadline) {
		return context.DeadlineExceeded
	}
	return err
}

func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *Connection) Close() error {
	return c.conn.Close()
}
