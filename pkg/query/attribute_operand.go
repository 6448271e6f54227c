package query

import (
	"iter"

	"github.com/orneryd/graphrecords/pkg/value"
)

// AttributeOperand is a stream of attribute keys, one per entity, used by
// the SingleAttribute/MultipleAttributes operand kinds of spec §4.2 (e.g.
// ".attribute_names().equal_to(...)"). It shares the Item[I] element shape
// with ValueOperand — here the V field carries a key, not a value — since
// AttributeKey and Value are the same underlying sum type.
type AttributeOperand[I any] struct {
	core *Operand[Item[I]]
}

func newAttributeOperand[I any](backward func(ctx *EvalContext) ([]Item[I], error)) *AttributeOperand[I] {
	return &AttributeOperand[I]{core: newOperand[Item[I]](func(ctx *EvalContext) (iterSeqItem[I], error) {
		items, err := backward(ctx)
		if err != nil {
			return nil, err
		}
		return seqOf(items), nil
	})}
}

// Evaluate runs the pipeline and returns the surviving attribute keys.
func (a *AttributeOperand[I]) Evaluate(ctx *EvalContext) ([]value.AttributeKey, error) {
	seq, err := a.core.EvaluateBackward(ctx)
	if err != nil {
		return nil, err
	}
	items := collect(seq)
	out := make([]value.AttributeKey, len(items))
	for i, it := range items {
		out[i] = it.V
	}
	return out, nil
}

// EqualTo keeps entities whose attribute key equals rhs.
func (a *AttributeOperand[I]) EqualTo(rhs value.AttributeKey) *AttributeOperand[I] {
	a.core.Append(func(ctx *EvalContext, in iterSeqItem[I]) (iterSeqItem[I], error) {
		return filterSeq(in, func(it Item[I]) (bool, error) { return it.V.Equal(rhs), nil })
	})
	return a
}

// IsIn keeps entities whose attribute key is one of keys.
func (a *AttributeOperand[I]) IsIn(keys ...value.AttributeKey) *AttributeOperand[I] {
	a.core.Append(func(ctx *EvalContext, in iterSeqItem[I]) (iterSeqItem[I], error) {
		return filterSeq(in, func(it Item[I]) (bool, error) { return containsValue(keys, it.V), nil })
	})
	return a
}

// AttributesTreeOperand is a stream of the full set of attribute keys per
// entity (spec §4.2's AttributesTree operand, ".attributes()").
type AttributesTreeOperand[I any] struct {
	core *Operand[AttrList[I]]
}

func newAttributesTreeOperand[I any](backward func(ctx *EvalContext) ([]AttrList[I], error)) *AttributesTreeOperand[I] {
	return &AttributesTreeOperand[I]{core: newOperand[AttrList[I]](func(ctx *EvalContext) (iter.Seq[AttrList[I]], error) {
		lists, err := backward(ctx)
		if err != nil {
			return nil, err
		}
		return seqOf(lists), nil
	})}
}

// Evaluate runs the pipeline and returns the surviving key lists.
func (a *AttributesTreeOperand[I]) Evaluate(ctx *EvalContext) ([]AttrList[I], error) {
	seq, err := a.core.EvaluateBackward(ctx)
	if err != nil {
		return nil, err
	}
	return collect(seq), nil
}

// HasKey keeps entities whose attribute set contains key.
func (a *AttributesTreeOperand[I]) HasKey(key value.AttributeKey) *AttributesTreeOperand[I] {
	a.core.Append(func(ctx *EvalContext, in iter.Seq[AttrList[I]]) (iter.Seq[AttrList[I]], error) {
		return filterSeq(in, func(al AttrList[I]) (bool, error) { return containsValue(al.Keys, key), nil })
	})
	return a
}

// Count collapses each entity's attribute set to its cardinality, returned
// as a ValueOperand scalar-per-entity stream.
func (a *AttributesTreeOperand[I]) Count() *ValueOperand[I] {
	return newValueOperand[I](func(ctx *EvalContext) ([]Item[I], error) {
		lists, err := a.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]Item[I], len(lists))
		for i, al := range lists {
			n := value.Int(int64(len(al.Keys)))
			if al.HasIndex {
				out[i] = indexed(al.Index, n)
			} else {
				out[i] = unindexed[I](n)
			}
		}
		return out, nil
	})
}
