package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/graphrecords/pkg/value"
)

func ageStore(t *testing.T) (*Memory, map[string]NodeIndex) {
	t.Helper()
	m := NewMemory()
	ids := make(map[string]NodeIndex)
	for _, n := range []struct {
		name string
		age  int64
	}{{"A", 10}, {"B", 20}, {"C", 20}} {
		ni, err := m.AddNode(Attributes{
			value.String("name"): value.String(n.name),
			value.String("age"):  value.Int(n.age),
		})
		require.NoError(t, err)
		ids[n.name] = ni
	}
	_, err := m.AddEdge(ids["A"], ids["B"], Attributes{value.String("w"): value.Int(1)})
	require.NoError(t, err)
	_, err = m.AddEdge(ids["B"], ids["C"], Attributes{value.String("w"): value.Int(2)})
	require.NoError(t, err)
	return m, ids
}

func TestAddNodeAndEdge(t *testing.T) {
	m, ids := ageStore(t)
	assert.Equal(t, 3, m.NodeCount())
	assert.Equal(t, 2, m.EdgeCount())

	out := collectEdges(m.OutgoingEdges(ids["A"]))
	assert.Len(t, out, 1)

	src, dst, err := m.EdgeEndpoints(out[0])
	require.NoError(t, err)
	assert.Equal(t, ids["A"], src)
	assert.Equal(t, ids["B"], dst)
}

func TestRemoveNodeCascadesEdges(t *testing.T) {
	m, ids := ageStore(t)
	require.NoError(t, m.RemoveNode(ids["B"]))
	assert.Equal(t, 2, m.NodeCount())
	assert.Equal(t, 0, m.EdgeCount())
}

func TestGroupsIndexed(t *testing.T) {
	m := NewMemory()
	ni, err := m.AddNode(Attributes{value.String("name"): value.String("A")}, Group("people"))
	require.NoError(t, err)

	members := collectNodes(m.NodesInGroup(Group("people")))
	assert.Equal(t, []NodeIndex{ni}, members)
}

func collectEdges(seq func(func(EdgeIndex) bool)) []EdgeIndex {
	var out []EdgeIndex
	seq(func(ei EdgeIndex) bool {
		out = append(out, ei)
		return true
	})
	return out
}

func collectNodes(seq func(func(NodeIndex) bool)) []NodeIndex {
	var out []NodeIndex
	seq(func(ni NodeIndex) bool {
		out = append(out, ni)
		return true
	})
	return out
}
