package addb

import (
	"context"
	"testing"
	"time"

	"github.com/pior/addb/internal/testutils"
	"github.com/pior/addb/resp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_FpWrite(t *testing.T) {
	client, fake := newTestClient(t, testutils.Overlay(nil, nil))

	status, err := client.FpWrite(testContext(t), fpWriteArgs())
	require.NoError(t, err)
	assert.Equal(t, "OK", status)

	assert.Equal(t,
		[][]string{{"FPWRITE", "D:{100:1:2}", "1:2", "4", "0", "D1", "D2", "D3", "D4"}},
		fake.Requests())
}

func TestClient_FpScan(t *testing.T) {
	client, fake := newTestClient(t, testutils.Overlay([]string{"D1", "D2", "D3", "D4"}, nil))

	values, err := client.FpScan(testContext(t), fpScanArgs())
	require.NoError(t, err)
	assert.Equal(t, []string{"D1", "D2", "D3", "D4"}, values)

	assert.Equal(t, [][]string{{"FPSCAN", "D:{100:1:2}", "1,2,3,4"}}, fake.Requests())
}

func TestClient_FpScanEmptyReply(t *testing.T) {
	client, _ := newTestClient(t, testutils.Static(testutils.NullArray))

	values, err := client.FpScan(testContext(t), fpScanArgs())
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestClient_Metakeys(t *testing.T) {
	client, fake := newTestClient(t, testutils.Overlay(nil, []string{"M:{100:1:2}"}))

	keys, err := client.Metakeys(testContext(t), metakeysArgs())
	require.NoError(t, err)
	assert.Equal(t, []string{"M:{100:1:2}"}, keys)

	assert.Equal(t, [][]string{{"METAKEYS", "*", "D1*1*EqualTo:$D2*2*EqualTo:$"}}, fake.Requests())
}

func TestClient_Ping(t *testing.T) {
	client, _ := newTestClient(t, testutils.Overlay(nil, nil))

	require.NoError(t, client.Ping(testContext(t)))
}

func TestClient_PingUnexpectedReply(t *testing.T) {
	client, _ := newTestClient(t, testutils.Static(testutils.SimpleString("HELLO")))

	err := client.Ping(testContext(t))
	assert.ErrorIs(t, err, ErrUnexpectedReply)
}

func TestClient_ServerError(t *testing.T) {
	client, _ := newTestClient(t, testutils.Static(testutils.Error("ERR partition 1:2 not found")))

	_, err := client.FpWrite(testContext(t), fpWriteArgs())

	var serverErr *resp.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, "ERR", serverErr.Prefix)
	assert.Equal(t, "partition 1:2 not found", serverErr.Message)

	// The connection survived the error reply.
	_, err = client.FpWrite(testContext(t), fpWriteArgs())
	require.Error(t, err)
	assert.Equal(t, uint64(1), client.NodeStats().PoolStats.CreatedConns)
}

func TestClient_UnexpectedReplyShape(t *testing.T) {
	client, _ := newTestClient(t, testutils.Static(testutils.Integer(3)))

	_, err := client.FpScan(testContext(t), fpScanArgs())
	assert.ErrorIs(t, err, ErrUnexpectedReply)
}

func TestClient_Async(t *testing.T) {
	client, _ := newTestClient(t, testutils.Overlay([]string{"v"}, []string{"M:{1}"}))
	ctx := testContext(t)

	write := client.FpWriteAsync(ctx, fpWriteArgs())
	scan := client.FpScanAsync(ctx, fpScanArgs())
	keys := client.MetakeysAsync(ctx, metakeysArgs())

	status, err := write.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "OK", status)
	assert.Equal(t, client.Node(), write.Node())

	values, err := scan.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"v"}, values)

	metakeys, err := keys.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"M:{1}"}, metakeys)
}

func TestClient_AsyncTimeout(t *testing.T) {
	client, _ := newTestClient(t, testutils.Delayed(time.Second, testutils.Overlay(nil, nil)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.FpWriteAsync(ctx, fpWriteArgs()).Wait(testContext(t))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Stats(t *testing.T) {
	client, _ := newTestClient(t, testutils.Overlay(nil, nil))
	ctx := testContext(t)

	_, _ = client.FpWrite(ctx, fpWriteArgs())
	_, _ = client.FpWrite(ctx, fpWriteArgs())
	_, _ = client.FpScan(ctx, fpScanArgs())
	_, _ = client.Metakeys(ctx, metakeysArgs())
	_ = client.Ping(ctx)
	<-client.FpWriteAsync(ctx, fpWriteArgs()).Done()

	require.Eventually(t, func() bool {
		return client.Stats().FpWrites == 3
	}, time.Second, time.Millisecond)

	stats := client.Stats()
	assert.Equal(t, uint64(1), stats.FpScans)
	assert.Equal(t, uint64(1), stats.Metakeys)
	assert.Equal(t, uint64(1), stats.Pings)
	assert.Equal(t, uint64(0), stats.Errors)
}

func TestClient_Closed(t *testing.T) {
	client, _ := newTestClient(t, testutils.Overlay(nil, nil))

	client.Close()
	client.Close()

	_, err := client.FpWrite(testContext(t), fpWriteArgs())
	assert.ErrorIs(t, err, ErrClientClosed)
	assert.Equal(t, uint64(1), client.Stats().Errors)
}

func TestClient_ExecuteOnOtherNode(t *testing.T) {
	client, _ := newTestClient(t, testutils.Overlay(nil, nil))

	_, err := client.ExecuteOn(testContext(t), NewNode("elsewhere:1"), fpWriteRequest())
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestClient_PuddlePool(t *testing.T) {
	fake := testutils.NewFakeNode(t, testutils.Overlay(nil, nil))

	config := testConfig()
	config.NewPool = NewPuddlePool

	client, err := NewClient(fake.Addr(), config)
	require.NoError(t, err)
	defer client.Close()

	status, err := client.FpWrite(testContext(t), fpWriteArgs())
	require.NoError(t, err)
	assert.Equal(t, "OK", status)
}
