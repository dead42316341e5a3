package testutils

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pior/addb/resp"
)

// Handler returns the raw RESP reply to a command. args[0] is the command
// name. An empty reply closes the connection without answering.
type Handler func(ctx context.Context, args []string) string

// FakeNode is a loopback RESP server answering with a Handler.
type FakeNode struct {
	listener net.Listener
	handler  Handler

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	requests [][]string
	conns    map[net.Conn]struct{}
}

// NewFakeNode starts a fake node on a random local port. It is closed
// when the test ends.
func NewFakeNode(t testing.TB, handler Handler) *FakeNode {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("fake node: listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	n := &FakeNode{
		listener: ln,
		handler:  handler,
		ctx:      ctx,
		cancel:   cancel,
		conns:    make(map[net.Conn]struct{}),
	}

	n.wg.Add(1)
	go n.serve()

	t.Cleanup(n.Close)
	return n
}

// Addr returns the host:port the node listens on.
func (n *FakeNode) Addr() string {
	return n.listener.Addr().String()
}

// Requests returns the commands received so far, in arrival order.
func (n *FakeNode) Requests() [][]string {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([][]string, len(n.requests))
	copy(out, n.requests)
	return out
}

// Close stops the node and drops its connections. Handlers blocked on
// their context are released.
func (n *FakeNode) Close() {
	n.cancel()
	_ = n.listener.Close()

	n.mu.Lock()
	for conn := range n.conns {
		_ = conn.Close()
	}
	n.mu.Unlock()

	n.wg.Wait()
}

func (n *FakeNode) serve() {
	defer n.wg.Done()

	for {
		conn, err := n.listener.Accept()
		if err != nil {
			return
		}

		n.mu.Lock()
		if n.ctx.Err() != nil {
			n.mu.Unlock()
			_ = conn.Close()
			return
		}
		n.conns[conn] = struct{}{}
		n.mu.Unlock()

		n.wg.Add(1)
		go n.handle(conn)
	}
}

func (n *FakeNode) handle(conn net.Conn) {
	defer n.wg.Done()
	defer func() {
		n.mu.Lock()
		delete(n.conns, conn)
		n.mu.Unlock()
		_ = conn.Close()
	}()

	r := bufio.NewReader(conn)
	for {
		req, err := resp.ReadResponse(r)
		if err != nil {
			return
		}
		args, err := req.Strings()
		if err != nil || len(args) == 0 {
			return
		}

		n.mu.Lock()
		n.requests = append(n.requests, args)
		n.mu.Unlock()

		reply := n.handler(n.ctx, args)
		if reply == "" {
			return
		}
		if _, err := conn.Write([]byte(reply)); err != nil {
			return
		}
	}
}

// =============================================================================
// Replies
// =============================================================================

func SimpleString(s string) string { return "+" + s + "\r\n" }

func Error(msg string) string { return "-" + msg + "\r\n" }

func Integer(i int64) string { return ":" + strconv.FormatInt(i, 10) + "\r\n" }

func BulkString(s string) string {
	return "$" + strconv.Itoa(len(s)) + "\r\n" + s + "\r\n"
}

const (
	NullBulk  = "$-1\r\n"
	NullArray = "*-1\r\n"
)

// Array encodes values as an array of bulk strings.
func Array(values ...string) string {
	var b strings.Builder
	b.WriteString("*" + strconv.Itoa(len(values)) + "\r\n")
	for _, v := range values {
		b.WriteString(BulkString(v))
	}
	return b.String()
}

// =============================================================================
// Handlers
// =============================================================================

// Overlay answers the overlay commands the way a healthy node does:
// FPWRITE with OK, FPSCAN with scan, METAKEYS with metakeys, PING with PONG.
func Overlay(scan, metakeys []string) Handler {
	return func(_ context.Context, args []string) string {
		switch strings.ToUpper(args[0]) {
		case "FPWRITE":
			return SimpleString("OK")
		case "FPSCAN":
			return Array(scan...)
		case "METAKEYS":
			return Array(metakeys...)
		case "PING":
			return SimpleString("PONG")
		default:
			return Error("ERR unknown command '" + args[0] + "'")
		}
	}
}

// Static answers every command with the same reply.
func Static(reply string) Handler {
	return func(context.Context, []string) string { return reply }
}

// Delayed waits d before answering with next. The wait ends early when the
// node is closed, and the connection is dropped.
func Delayed(d time.Duration, next Handler) Handler {
	return func(ctx context.Context, args []string) string {
		select {
		case <-time.After(d):
			return next(ctx, args)
		case <-ctx.Done():
			return ""
		}
	}
}

// Hang never answers until the node is closed.
func Hang() Handler {
	return func(ctx context.Context, _ []string) string {
		<-ctx.Done()
		return ""
	}
}

// Drop closes the connection on every command.
func Drop() Handler {
	return func(context.Context, []string) string { return "" }
}

// ErrNoNode is returned by UnusedAddr when no port could be reserved.
var ErrNoNode = errors.New("testutils: no free port")

// UnusedAddr returns a local address nothing listens on.
func UnusedAddr() (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", ErrNoNode
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr, nil
}
