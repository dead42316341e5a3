package addb

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pior/addb/internal/testutils"
	"github.com/pior/addb/resp"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testConfig() Config {
	return Config{MaxSize: 2, Logger: discardLogger}
}

func newTestClient(t testing.TB, handler testutils.Handler) (*Client, *testutils.FakeNode) {
	t.Helper()

	node := testutils.NewFakeNode(t, handler)
	client, err := NewClient(node.Addr(), testConfig())
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return client, node
}

// newTestCluster starts one fake node per handler. Node IDs are n0, n1, ...
// with n0 the only master.
func newTestCluster(t testing.TB, handlers ...testutils.Handler) (*ClusterClient, []*testutils.FakeNode) {
	t.Helper()

	fakes := make([]*testutils.FakeNode, len(handlers))
	nodes := make([]Node, len(handlers))
	for i, h := range handlers {
		fakes[i] = testutils.NewFakeNode(t, h)
		nodes[i] = Node{ID: nodeID(i), Addr: fakes[i].Addr(), Role: RoleReplica}
	}
	nodes[0].Role = RoleMaster

	client, err := NewClusterClient(nodes, testConfig())
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return client, fakes
}

func nodeID(i int) string {
	return "n" + string(rune('0'+i))
}

func testContext(t testing.TB) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func fpWriteArgs() FpWriteArgs {
	return FpWriteDataKey("D:{100:1:2}").
		PartitionInfo("1:2").
		ColumnCount("4").
		Data("D1", "D2", "D3", "D4").
		MustBuild()
}

func fpScanArgs() FpScanArgs {
	return FpScanDataKey("D:{100:1:2}").Columns("1", "2", "3", "4").MustBuild()
}

func metakeysArgs() MetakeysArgs {
	return MetakeysPattern("*").Statements("D1*1*EqualTo:$D2*2*EqualTo:$").MustBuild()
}

func okResponse() *resp.Response {
	return &resp.Response{Kind: resp.KindSimpleString, Str: resp.StatusOK}
}

func listResponse(values ...string) *resp.Response {
	r := &resp.Response{Kind: resp.KindArray}
	for _, v := range values {
		r.Array = append(r.Array, &resp.Response{Kind: resp.KindBulkString, Bulk: []byte(v)})
	}
	return r
}
