package addb

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/pior/addb/internal/testutils"
	"github.com/pior/addb/resp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnection_Execute(t *testing.T) {
	mock := testutils.NewConnectionMock("+OK\r\n")
	conn := NewConnection(mock)

	r, err := conn.Execute(context.Background(), fpWriteRequest())
	require.NoError(t, err)
	assert.True(t, r.IsOK())

	assert.Equal(t,
		"*9\r\n$7\r\nFPWRITE\r\n$11\r\nD:{100:1:2}\r\n$3\r\n1:2\r\n$1\r\n4\r\n$1\r\n0\r\n"+
			"$2\r\nD1\r\n$2\r\nD2\r\n$2\r\nD3\r\n$2\r\nD4\r\n",
		mock.Written())
}

func TestConnection_ServerErrorKeepsConnection(t *testing.T) {
	mock := testutils.NewConnectionMock("-ERR wrong partition\r\n", "+OK\r\n")
	conn := NewConnection(mock)

	r, err := conn.Execute(context.Background(), fpWriteRequest())
	require.NoError(t, err)
	require.True(t, r.HasError())
	assert.False(t, resp.ShouldCloseConnection(r.Error))

	r, err = conn.Execute(context.Background(), fpWriteRequest())
	require.NoError(t, err)
	assert.True(t, r.IsOK())
}

func TestConnection_EOF(t *testing.T) {
	conn := NewConnection(testutils.NewConnectionMock())

	_, err := conn.Execute(context.Background(), fpWriteRequest())
	require.Error(t, err)

	var connErr *resp.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.True(t, errors.Is(err, io.EOF))
	assert.True(t, resp.ShouldCloseConnection(err))
}

func TestConnection_Deadline(t *testing.T) {
	mock := testutils.NewConnectionMock("+OK\r\n", "+OK\r\n")
	conn := NewConnection(mock)

	deadline := time.Now().Add(time.Minute)
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()

	_, err := conn.Execute(ctx, fpWriteRequest())
	require.NoError(t, err)
	assert.True(t, mock.Deadline().Equal(deadline))

	// Without a deadline, the previous one is cleared.
	_, err = conn.Execute(context.Background(), fpWriteRequest())
	require.NoError(t, err)
	assert.True(t, mock.Deadline().IsZero())
}

func TestConnection_CanceledContext(t *testing.T) {
	mock := testutils.NewConnectionMock("+OK\r\n")
	conn := NewConnection(mock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := conn.Execute(ctx, fpWriteRequest())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, mock.Written())
}

func TestConnection_Close(t *testing.T) {
	mock := testutils.NewConnectionMock()
	conn := NewConnection(mock)

	require.NoError(t, conn.Close())
	assert.True(t, mock.Closed())
}

// cancelOnWrite cancels the request context once the request is written and
// waits for the cancellation to expire the connection deadline. The reply is
// already buffered, so the read still succeeds.
type cancelOnWrite struct {
	*testutils.ConnectionMock

	cancel  context.CancelFunc
	once    sync.Once
	expired chan struct{}
}

func (c *cancelOnWrite) Write(b []byte) (int, error) {
	n, err := c.ConnectionMock.Write(b)
	c.cancel()
	<-c.expired
	return n, err
}

func (c *cancelOnWrite) SetDeadline(t time.Time) error {
	if !t.IsZero() && t.Before(time.Now()) {
		c.once.Do(func() { close(c.expired) })
	}
	return nil
}

func TestConnection_CanceledDuringReadIsNotReused(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mock := &cancelOnWrite{
		ConnectionMock: testutils.NewConnectionMock("+OK\r\n"),
		cancel:         cancel,
		expired:        make(chan struct{}),
	}
	conn := NewConnection(mock)

	_, err := conn.Execute(ctx, fpWriteRequest())
	require.Error(t, err)

	var connErr *resp.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, resp.ShouldCloseConnection(err))
}
