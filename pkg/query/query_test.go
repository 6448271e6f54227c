package query

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/graphrecords/pkg/store"
	"github.com/orneryd/graphrecords/pkg/value"
)

// ageGraph builds the canonical A(age=10)->B(age=20)->C(age=20) fixture
// with edge weights, used across the scenarios below.
func ageGraph(t *testing.T) (*store.Memory, map[string]store.NodeIndex) {
	t.Helper()
	m := store.NewMemory()
	ids := make(map[string]store.NodeIndex)
	for _, n := range []struct {
		name string
		age  int64
	}{{"A", 10}, {"B", 20}, {"C", 20}} {
		ni, err := m.AddNode(store.Attributes{
			value.String("name"): value.String(n.name),
			value.String("age"):  value.Int(n.age),
		}, store.Group("people"))
		require.NoError(t, err)
		ids[n.name] = ni
	}
	_, err := m.AddEdge(ids["A"], ids["B"], store.Attributes{value.String("w"): value.Int(1)})
	require.NoError(t, err)
	_, err = m.AddEdge(ids["B"], ids["C"], store.Attributes{value.String("w"): value.Int(2)})
	require.NoError(t, err)
	return m, ids
}

func TestFilterByValue(t *testing.T) {
	m, ids := ageGraph(t)
	ctx := NewContext(m)

	n := AllNodes().Attribute(value.String("age")).EqualTo(Literal{V: value.Int(20)})
	vals, err := n.Evaluate(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []value.Value{value.Int(20), value.Int(20)}, vals)
	_ = ids
}

func TestAggregateMax(t *testing.T) {
	m, _ := ageGraph(t)
	ctx := NewContext(m)

	max := AllNodes().Attribute(value.String("age")).Max()
	vals, err := max.Evaluate(ctx)
	require.NoError(t, err)
	require.Len(t, vals, 1)
	assert.Equal(t, value.Int(20), vals[0])
}

func TestIsMaxFilter(t *testing.T) {
	m, _ := ageGraph(t)
	ctx := NewContext(m)

	vals, err := AllNodes().Attribute(value.String("age")).IsMax().Evaluate(ctx)
	require.NoError(t, err)
	assert.Len(t, vals, 2) // B and C both age 20
}

func TestEdgeNavigation(t *testing.T) {
	m, ids := ageGraph(t)
	ctx := NewContext(m)

	targets, err := AllNodes().Indices().EqualTo(ids["A"]).Evaluate(ctx)
	require.NoError(t, err)
	require.Len(t, targets, 1)

	nodes := &NodeOperand{core: newOperand[store.NodeIndex](func(*EvalContext) (iter.Seq[store.NodeIndex], error) {
		return seqOf(targets), nil
	})}
	reached, err := nodes.OutgoingEdges().TargetNode().Evaluate(ctx)
	require.NoError(t, err)
	require.Len(t, reached, 1)
	assert.Equal(t, ids["B"], reached[0])
}

func TestGroupByPerPartitionFilter(t *testing.T) {
	m, _ := ageGraph(t)
	ctx := NewContext(m)

	grouped := AllNodes().GroupByAttribute(value.String("age"), func(g *NodeOperand) {
		g.HasAttribute(value.String("name"))
	})
	survivors, err := grouped.Evaluate(ctx)
	require.NoError(t, err)
	assert.Len(t, survivors, 3) // every node has a name, so all partitions fully survive
}

func TestEitherOrDedup(t *testing.T) {
	m, ids := ageGraph(t)
	ctx := NewContext(m)

	result := AllNodes().EitherOr(
		func(n *NodeOperand) { n.AttributeEqualTo(value.String("age"), Literal{V: value.Int(10)}) },
		func(n *NodeOperand) { n.InGroup(store.Group("people")) },
	)
	survivors, err := result.Evaluate(ctx)
	require.NoError(t, err)
	assert.Len(t, survivors, 3) // "or" branch already covers everyone; no duplicates
	assert.Contains(t, survivors, ids["A"])
}

func TestExclude(t *testing.T) {
	m, ids := ageGraph(t)
	ctx := NewContext(m)

	result := AllNodes().Exclude(func(n *NodeOperand) {
		n.AttributeEqualTo(value.String("name"), Literal{V: value.String("A")})
	})
	survivors, err := result.Evaluate(ctx)
	require.NoError(t, err)
	assert.NotContains(t, survivors, ids["A"])
	assert.Len(t, survivors, 2)
}

func TestSelectionReturnsRow(t *testing.T) {
	m, _ := ageGraph(t)
	sel := NewSelection().
		ReturnNodeCount("total", AllNodes()).
		ReturnNodeAttribute("ages", AllNodes(), value.String("age"))

	row, err := sel.Evaluate(m)
	require.NoError(t, err)
	assert.Equal(t, 3, row["total"])
	assert.Len(t, row["ages"], 3)
}

func TestAggregateMaxPreservesIndex(t *testing.T) {
	m, ids := ageGraph(t)
	ctx := NewContext(m)

	max := AllNodes().Attribute(value.String("age"))
	items, err := max.Max().evaluate(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].HasIndex)
	assert.Contains(t, []store.NodeIndex{ids["B"], ids["C"]}, items[0].Index)
	assert.Equal(t, value.Int(20), items[0].V)
}

func TestAggregateSumHasNoIndex(t *testing.T) {
	m, _ := ageGraph(t)
	ctx := NewContext(m)

	items, err := AllNodes().Attribute(value.String("age")).Sum().evaluate(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].HasIndex)
	assert.Equal(t, value.Int(50), items[0].V)
}

func TestMaxOnIncomparableTypesErrors(t *testing.T) {
	m := store.NewMemory()
	_, err := m.AddNode(store.Attributes{value.String("v"): value.String("x")})
	require.NoError(t, err)
	_, err = m.AddNode(store.Attributes{value.String("v"): value.Bool(true)})
	require.NoError(t, err)
	ctx := NewContext(m)

	_, err = AllNodes().Attribute(value.String("v")).Max().Evaluate(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot compare attributes of data types")
}

func TestIsMaxOnIncomparableTypesErrors(t *testing.T) {
	m := store.NewMemory()
	_, err := m.AddNode(store.Attributes{value.String("v"): value.String("x")})
	require.NoError(t, err)
	_, err = m.AddNode(store.Attributes{value.String("v"): value.Bool(true)})
	require.NoError(t, err)
	ctx := NewContext(m)

	_, err = AllNodes().Attribute(value.String("v")).IsMax().Evaluate(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot compare attributes of data types")
}

func TestRandomPicksOneWithIndex(t *testing.T) {
	m, _ := ageGraph(t)
	ctx := NewContext(m)

	items, err := AllNodes().Attribute(value.String("age")).Random().evaluate(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].HasIndex)
}

func TestRandomOnEmptyErrors(t *testing.T) {
	m := store.NewMemory()
	ctx := NewContext(m)

	_, err := AllNodes().Attribute(value.String("age")).Random().Evaluate(ctx)
	require.Error(t, err)
}

func TestTrimStartAndSlice(t *testing.T) {
	m := store.NewMemory()
	_, err := m.AddNode(store.Attributes{value.String("name"): value.String("  hello  ")})
	require.NoError(t, err)
	ctx := NewContext(m)

	trimmed, err := AllNodes().Attribute(value.String("name")).TrimStart().Evaluate(ctx)
	require.NoError(t, err)
	assert.Equal(t, value.String("hello  "), trimmed[0])

	sliced, err := AllNodes().Attribute(value.String("name")).Slice(2, 6).Evaluate(ctx)
	require.NoError(t, err)
	assert.Equal(t, value.String("hell"), sliced[0])
}

func TestGroupByAttributeAggregateReturnsPerPartitionResult(t *testing.T) {
	m, _ := ageGraph(t)
	ctx := NewContext(m)

	results, err := AllNodes().GroupByAttributeAggregate(ctx, value.String("age"), func(g *NodeOperand) *ValueOperand[store.NodeIndex] {
		return g.Attribute(value.String("age")).Count()
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	byKey := make(map[string][]value.Value, len(results))
	for _, r := range results {
		byKey[r.Key.canonical()] = r.Items
	}
	assert.Equal(t, []value.Value{value.Int(1)}, byKey[ValueKey(value.Int(10)).canonical()])
	assert.Equal(t, []value.Value{value.Int(2)}, byKey[ValueKey(value.Int(20)).canonical()])
}

func TestEntityPreservingFilters(t *testing.T) {
	m, ids := ageGraph(t)
	ctx := NewContext(m)

	maxNodes, err := AllNodes().AttributeIsMax(value.String("age")).Evaluate(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []store.NodeIndex{ids["B"], ids["C"]}, maxNodes)

	minNodes, err := AllNodes().AttributeIsMin(value.String("age")).Evaluate(ctx)
	require.NoError(t, err)
	assert.Equal(t, []store.NodeIndex{ids["A"]}, minNodes)

	inNodes, err := AllNodes().AttributeIsIn(value.String("name"), LiteralSet{value.String("A"), value.String("B")}).Evaluate(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []store.NodeIndex{ids["A"], ids["B"]}, inNodes)

	startNodes, err := AllNodes().AttributeStartsWith(value.String("name"), Literal{V: value.String("A")}).Evaluate(ctx)
	require.NoError(t, err)
	assert.Equal(t, []store.NodeIndex{ids["A"]}, startNodes)

	edges, err := AllEdges().AttributeNotEqualTo(value.String("w"), Literal{V: value.Int(1)}).Evaluate(ctx)
	require.NoError(t, err)
	require.Len(t, edges, 1)
}

func TestToNodesResumesNodeShapedChaining(t *testing.T) {
	m, ids := ageGraph(t)
	ctx := NewContext(m)

	reached, err := ToNodes(AllNodes().Attribute(value.String("age")).IsMax()).OutgoingEdges().TargetNode().Evaluate(ctx)
	require.NoError(t, err)
	assert.Equal(t, []store.NodeIndex{ids["C"]}, reached)
}

func TestGroupKeyCanonicalDistinctness(t *testing.T) {
	a := ValueKey(value.Int(1))
	b := ValueKey(value.Float(1))
	assert.NotEqual(t, a.canonical(), b.canonical(), "distinct kinds must not collide even with equal numeric value")

	c := PairKey(IndexKey(1), ValueKey(value.String("x")))
	d := PairKey(IndexKey(1), ValueKey(value.String("x")))
	assert.Equal(t, c.canonical(), d.canonical())
}
