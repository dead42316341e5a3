package addb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNode_String(t *testing.T) {
	assert.Equal(t, "10.0.0.1:6379", NewNode("10.0.0.1:6379").String())
	assert.Equal(t, "a1@10.0.0.1:6379", Node{ID: "a1", Addr: "10.0.0.1:6379"}.String())
}

func TestNewSelection_DropsDuplicates(t *testing.T) {
	a, b := NewNode("a:1"), NewNode("b:1")
	sameIDAsA := Node{ID: "a:1", Addr: "elsewhere:1"}

	sel := NewSelection(b, a, sameIDAsA, b)

	assert.Equal(t, []Node{b, a}, sel.Nodes())
	assert.Equal(t, 2, sel.Len())
	assert.True(t, sel.Contains("a:1"))
	assert.False(t, sel.Contains("c:1"))
}

func TestSelection_NodesIsACopy(t *testing.T) {
	sel := NewSelection(NodesFromAddr("a:1", "b:1")...)

	nodes := sel.Nodes()
	nodes[0].ID = "mutated"

	assert.Equal(t, "a:1", sel.Nodes()[0].ID)
}

func TestSelect(t *testing.T) {
	nodes := []Node{
		{ID: "m1", Addr: "10.0.0.1:1", Role: RoleMaster},
		{ID: "r1", Addr: "10.0.0.2:1", Role: RoleReplica},
		{ID: "m2", Addr: "10.0.0.3:1", Role: RoleMaster},
		{ID: "r2", Addr: "10.0.0.4:1", Role: RoleReplica},
	}

	tests := []struct {
		name string
		pred NodePredicate
		want []string
	}{
		{"nil", nil, []string{"m1", "r1", "m2", "r2"}},
		{"all", AllNodes, []string{"m1", "r1", "m2", "r2"}},
		{"masters", Masters, []string{"m1", "m2"}},
		{"replicas", Replicas, []string{"r1", "r2"}},
		{"by id", ByID("r2", "m1"), []string{"m1", "r2"}},
		{"by addr", ByAddr("10.0.0.2:1"), []string{"r1"}},
		{"none", ByID("nope"), []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Select(nodes, tt.pred).Nodes()))
		})
	}
}
