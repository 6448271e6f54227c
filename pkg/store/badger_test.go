package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/graphrecords/pkg/value"
)

func ageBadgerStore(t *testing.T) (*Badger, map[string]NodeIndex) {
	t.Helper()
	b, err := NewBadgerInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	ids := make(map[string]NodeIndex)
	for _, n := range []struct {
		name string
		age  int64
	}{{"A", 10}, {"B", 20}, {"C", 20}} {
		ni, err := b.AddNode(Attributes{
			value.String("name"): value.String(n.name),
			value.String("age"):  value.Int(n.age),
		}, Group("people"))
		require.NoError(t, err)
		ids[n.name] = ni
	}
	_, err = b.AddEdge(ids["A"], ids["B"], Attributes{value.String("w"): value.Int(1)})
	require.NoError(t, err)
	_, err = b.AddEdge(ids["B"], ids["C"], Attributes{value.String("w"): value.Int(2)})
	require.NoError(t, err)
	return b, ids
}

func TestBadgerAddNodeAndEdge(t *testing.T) {
	b, ids := ageBadgerStore(t)
	assert.Equal(t, 3, b.NodeCount())
	assert.Equal(t, 2, b.EdgeCount())

	var out []EdgeIndex
	for ei := range b.OutgoingEdges(ids["A"]) {
		out = append(out, ei)
	}
	require.Len(t, out, 1)

	src, dst, err := b.EdgeEndpoints(out[0])
	require.NoError(t, err)
	assert.Equal(t, ids["A"], src)
	assert.Equal(t, ids["B"], dst)

	attrs, err := b.NodeAttributes(ids["A"])
	require.NoError(t, err)
	assert.Equal(t, value.Int(10), attrs[value.String("age")])
}

func TestBadgerRemoveNodeCascadesEdges(t *testing.T) {
	b, ids := ageBadgerStore(t)
	require.NoError(t, b.RemoveNode(ids["B"]))
	assert.Equal(t, 2, b.NodeCount())
	assert.Equal(t, 0, b.EdgeCount())
}

func TestBadgerGroupsIndexed(t *testing.T) {
	b, ids := ageBadgerStore(t)

	var members []NodeIndex
	for ni := range b.NodesInGroup(Group("people")) {
		members = append(members, ni)
	}
	assert.ElementsMatch(t, []NodeIndex{ids["A"], ids["B"], ids["C"]}, members)
}

func TestBadgerSetAttribute(t *testing.T) {
	b, ids := ageBadgerStore(t)
	require.NoError(t, b.SetNodeAttribute(ids["A"], value.String("age"), value.Int(99)))
	attrs, err := b.NodeAttributes(ids["A"])
	require.NoError(t, err)
	assert.Equal(t, value.Int(99), attrs[value.String("age")])
}
