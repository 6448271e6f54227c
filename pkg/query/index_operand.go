package query

import (
	"iter"

	"github.com/orneryd/graphrecords/pkg/qerr"
	"github.com/orneryd/graphrecords/pkg/store"
	"github.com/orneryd/graphrecords/pkg/value"
)

// NodeIndexOperand is a bare stream of node indices (spec §4.1's
// NodeIndices operand): comparisons are against the index's integer value
// itself, not against any attribute.
type NodeIndexOperand struct {
	core *Operand[store.NodeIndex]
}

// Evaluate runs the pipeline and returns the surviving indices.
func (n *NodeIndexOperand) Evaluate(ctx *EvalContext) ([]store.NodeIndex, error) {
	seq, err := n.core.EvaluateBackward(ctx)
	if err != nil {
		return nil, err
	}
	return collect(seq), nil
}

func (n *NodeIndexOperand) scalarValue(ctx *EvalContext) (value.Value, bool, error) {
	indices, err := n.Evaluate(ctx)
	if err != nil {
		return value.Null(), false, err
	}
	if len(indices) == 0 {
		return value.Null(), false, nil
	}
	return value.Int(int64(indices[0])), true, nil
}

// EqualTo keeps indices equal to rhs.
func (n *NodeIndexOperand) EqualTo(rhs store.NodeIndex) *NodeIndexOperand {
	n.core.Append(func(ctx *EvalContext, in iter.Seq[store.NodeIndex]) (iter.Seq[store.NodeIndex], error) {
		return filterSeq(in, func(ni store.NodeIndex) (bool, error) { return ni == rhs, nil })
	})
	return n
}

// IsIn keeps indices present in set.
func (n *NodeIndexOperand) IsIn(set ...store.NodeIndex) *NodeIndexOperand {
	n.core.Append(func(ctx *EvalContext, in iter.Seq[store.NodeIndex]) (iter.Seq[store.NodeIndex], error) {
		members := make(map[store.NodeIndex]struct{}, len(set))
		for _, s := range set {
			members[s] = struct{}{}
		}
		return filterSeq(in, func(ni store.NodeIndex) (bool, error) {
			_, ok := members[ni]
			return ok, nil
		})
	})
	return n
}

// Count returns the number of surviving indices.
func (n *NodeIndexOperand) Count(ctx *EvalContext) (int, error) {
	indices, err := n.Evaluate(ctx)
	if err != nil {
		return 0, err
	}
	return len(indices), nil
}

// Max returns the greatest surviving index.
func (n *NodeIndexOperand) Max(ctx *EvalContext) (store.NodeIndex, error) {
	indices, err := n.Evaluate(ctx)
	if err != nil {
		return 0, err
	}
	if len(indices) == 0 {
		return 0, qerr.Query("max of an empty index stream")
	}
	best := indices[0]
	for _, ni := range indices[1:] {
		if ni > best {
			best = ni
		}
	}
	return best, nil
}

// EdgeIndexOperand is a bare stream of edge indices (spec §4.1's
// EdgeIndices operand).
type EdgeIndexOperand struct {
	core *Operand[store.EdgeIndex]
}

// Evaluate runs the pipeline and returns the surviving indices.
func (e *EdgeIndexOperand) Evaluate(ctx *EvalContext) ([]store.EdgeIndex, error) {
	seq, err := e.core.EvaluateBackward(ctx)
	if err != nil {
		return nil, err
	}
	return collect(seq), nil
}

func (e *EdgeIndexOperand) scalarValue(ctx *EvalContext) (value.Value, bool, error) {
	indices, err := e.Evaluate(ctx)
	if err != nil {
		return value.Null(), false, err
	}
	if len(indices) == 0 {
		return value.Null(), false, nil
	}
	return value.Int(int64(indices[0])), true, nil
}

// EqualTo keeps indices equal to rhs.
func (e *EdgeIndexOperand) EqualTo(rhs store.EdgeIndex) *EdgeIndexOperand {
	e.core.Append(func(ctx *EvalContext, in iter.Seq[store.EdgeIndex]) (iter.Seq[store.EdgeIndex], error) {
		return filterSeq(in, func(ei store.EdgeIndex) (bool, error) { return ei == rhs, nil })
	})
	return e
}

// Count returns the number of surviving indices.
func (e *EdgeIndexOperand) Count(ctx *EvalContext) (int, error) {
	indices, err := e.Evaluate(ctx)
	if err != nil {
		return 0, err
	}
	return len(indices), nil
}
