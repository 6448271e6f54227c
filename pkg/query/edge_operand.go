package query

import (
	"iter"

	"github.com/orneryd/graphrecords/pkg/qerr"
	"github.com/orneryd/graphrecords/pkg/store"
	"github.com/orneryd/graphrecords/pkg/value"
)

// EdgeOperand is the entity-level operand over edges (spec §4.1's Edge
// operand), mirroring NodeOperand.
type EdgeOperand struct {
	core *Operand[store.EdgeIndex]
}

// AllEdges is the root Edge operand: every edge currently in the store.
func AllEdges() *EdgeOperand {
	return &EdgeOperand{core: newOperand[store.EdgeIndex](func(ctx *EvalContext) (iter.Seq[store.EdgeIndex], error) {
		return ctx.Store.EdgeIndices(), nil
	})}
}

// StageCount reports the number of operations appended so far, for
// pkg/overview's pipeline-shape rendering.
func (e *EdgeOperand) StageCount() int { return e.core.StageCount() }

// Evaluate runs the pipeline and returns the surviving edge indices.
func (e *EdgeOperand) Evaluate(ctx *EvalContext) ([]store.EdgeIndex, error) {
	seq, err := e.core.EvaluateBackward(ctx)
	if err != nil {
		return nil, err
	}
	return collect(seq), nil
}

// HasAttribute keeps edges that carry the given attribute key.
func (e *EdgeOperand) HasAttribute(key value.AttributeKey) *EdgeOperand {
	e.core.Append(func(ctx *EvalContext, in iter.Seq[store.EdgeIndex]) (iter.Seq[store.EdgeIndex], error) {
		return filterSeq(in, func(ei store.EdgeIndex) (bool, error) {
			attrs, err := ctx.Store.EdgeAttributes(ei)
			if err != nil {
				return false, err
			}
			_, ok := attrs[key]
			return ok, nil
		})
	})
	return e
}

func (e *EdgeOperand) attributeFilter(key value.AttributeKey, rhs ScalarSource, cmp func(a, b value.Value) (bool, error)) *EdgeOperand {
	e.core.Append(func(ctx *EvalContext, in iter.Seq[store.EdgeIndex]) (iter.Seq[store.EdgeIndex], error) {
		r, err := resolveScalar(ctx, rhs)
		if err != nil {
			return nil, err
		}
		return filterSeq(in, func(ei store.EdgeIndex) (bool, error) {
			attrs, err := ctx.Store.EdgeAttributes(ei)
			if err != nil {
				return false, err
			}
			v, ok := attrs[key]
			if !ok {
				return false, nil
			}
			return cmp(v, r)
		})
	})
	return e
}

// AttributeEqualTo keeps edges whose key attribute equals rhs.
func (e *EdgeOperand) AttributeEqualTo(key value.AttributeKey, rhs ScalarSource) *EdgeOperand {
	return e.attributeFilter(key, rhs, func(a, b value.Value) (bool, error) { return a.Equal(b), nil })
}

// AttributeNotEqualTo keeps edges whose key attribute does not equal rhs.
func (e *EdgeOperand) AttributeNotEqualTo(key value.AttributeKey, rhs ScalarSource) *EdgeOperand {
	return e.attributeFilter(key, rhs, func(a, b value.Value) (bool, error) { return !a.Equal(b), nil })
}

// AttributeGreaterThan keeps edges whose key attribute orders strictly
// after rhs.
func (e *EdgeOperand) AttributeGreaterThan(key value.AttributeKey, rhs ScalarSource) *EdgeOperand {
	return e.attributeFilter(key, rhs, func(a, b value.Value) (bool, error) {
		cmp, ok := a.Compare(b)
		return ok && cmp > 0, nil
	})
}

// AttributeLessThan keeps edges whose key attribute orders strictly before
// rhs.
func (e *EdgeOperand) AttributeLessThan(key value.AttributeKey, rhs ScalarSource) *EdgeOperand {
	return e.attributeFilter(key, rhs, func(a, b value.Value) (bool, error) {
		cmp, ok := a.Compare(b)
		return ok && cmp < 0, nil
	})
}

// AttributeGreaterThanOrEqual keeps edges whose key attribute orders at or
// after rhs.
func (e *EdgeOperand) AttributeGreaterThanOrEqual(key value.AttributeKey, rhs ScalarSource) *EdgeOperand {
	return e.attributeFilter(key, rhs, func(a, b value.Value) (bool, error) {
		cmp, ok := a.Compare(b)
		return ok && cmp >= 0, nil
	})
}

// AttributeLessThanOrEqual keeps edges whose key attribute orders at or
// before rhs.
func (e *EdgeOperand) AttributeLessThanOrEqual(key value.AttributeKey, rhs ScalarSource) *EdgeOperand {
	return e.attributeFilter(key, rhs, func(a, b value.Value) (bool, error) {
		cmp, ok := a.Compare(b)
		return ok && cmp <= 0, nil
	})
}

// AttributeStartsWith keeps edges whose key attribute starts with rhs.
func (e *EdgeOperand) AttributeStartsWith(key value.AttributeKey, rhs ScalarSource) *EdgeOperand {
	return e.attributeFilter(key, rhs, func(a, b value.Value) (bool, error) { return a.StartsWith(b), nil })
}

// AttributeEndsWith keeps edges whose key attribute ends with rhs.
func (e *EdgeOperand) AttributeEndsWith(key value.AttributeKey, rhs ScalarSource) *EdgeOperand {
	return e.attributeFilter(key, rhs, func(a, b value.Value) (bool, error) { return a.EndsWith(b), nil })
}

// AttributeContains keeps edges whose key attribute contains rhs.
func (e *EdgeOperand) AttributeContains(key value.AttributeKey, rhs ScalarSource) *EdgeOperand {
	return e.attributeFilter(key, rhs, func(a, b value.Value) (bool, error) { return a.Contains(b), nil })
}

func (e *EdgeOperand) attributeKindIs(key value.AttributeKey, k value.Kind) *EdgeOperand {
	e.core.Append(func(ctx *EvalContext, in iter.Seq[store.EdgeIndex]) (iter.Seq[store.EdgeIndex], error) {
		return filterSeq(in, func(ei store.EdgeIndex) (bool, error) {
			attrs, err := ctx.Store.EdgeAttributes(ei)
			if err != nil {
				return false, err
			}
			v, ok := attrs[key]
			return ok && v.Kind() == k, nil
		})
	})
	return e
}

// AttributeIsString keeps edges whose key attribute is a string.
func (e *EdgeOperand) AttributeIsString(key value.AttributeKey) *EdgeOperand {
	return e.attributeKindIs(key, value.KindString)
}

// AttributeIsInt keeps edges whose key attribute is an int.
func (e *EdgeOperand) AttributeIsInt(key value.AttributeKey) *EdgeOperand {
	return e.attributeKindIs(key, value.KindInt)
}

// attributeSetFilter is the shared shape behind AttributeIsIn/IsNotIn.
func (e *EdgeOperand) attributeSetFilter(key value.AttributeKey, set SetSource, keep func(in bool) bool) *EdgeOperand {
	e.core.Append(func(ctx *EvalContext, in iter.Seq[store.EdgeIndex]) (iter.Seq[store.EdgeIndex], error) {
		s, err := set.scalarSet(ctx)
		if err != nil {
			return nil, err
		}
		return filterSeq(in, func(ei store.EdgeIndex) (bool, error) {
			attrs, err := ctx.Store.EdgeAttributes(ei)
			if err != nil {
				return false, err
			}
			v, ok := attrs[key]
			if !ok {
				return false, nil
			}
			return keep(containsValue(s, v)), nil
		})
	})
	return e
}

// AttributeIsIn keeps edges whose key attribute appears in set.
func (e *EdgeOperand) AttributeIsIn(key value.AttributeKey, set SetSource) *EdgeOperand {
	return e.attributeSetFilter(key, set, func(in bool) bool { return in })
}

// AttributeIsNotIn keeps edges whose key attribute is absent from set.
func (e *EdgeOperand) AttributeIsNotIn(key value.AttributeKey, set SetSource) *EdgeOperand {
	return e.attributeSetFilter(key, set, func(in bool) bool { return !in })
}

// attributeExtremum backs AttributeIsMax/AttributeIsMin.
func (e *EdgeOperand) attributeExtremum(key value.AttributeKey, keep func(cmp int) bool, fn func([]Item[store.EdgeIndex]) (Item[store.EdgeIndex], error)) *EdgeOperand {
	e.core.Append(func(ctx *EvalContext, in iter.Seq[store.EdgeIndex]) (iter.Seq[store.EdgeIndex], error) {
		indices := collect(in)
		var items []Item[store.EdgeIndex]
		for _, ei := range indices {
			attrs, err := ctx.Store.EdgeAttributes(ei)
			if err != nil {
				return nil, err
			}
			if v, ok := attrs[key]; ok {
				items = append(items, indexed(ei, v))
			}
		}
		if len(items) == 0 {
			return seqOf[store.EdgeIndex](nil), nil
		}
		extremum, err := fn(items)
		if err != nil {
			return nil, err
		}
		var out []store.EdgeIndex
		for _, it := range items {
			cmp, ok := it.V.Compare(extremum.V)
			if !ok {
				return nil, qerr.Query("Cannot compare attributes of data types %s and %s", it.V.TypeName(), extremum.V.TypeName())
			}
			if keep(cmp) {
				out = append(out, it.Index)
			}
		}
		return seqOf(out), nil
	})
	return e
}

// AttributeIsMax keeps edges whose key attribute equals the greatest value
// of key across all edges that carry it.
func (e *EdgeOperand) AttributeIsMax(key value.AttributeKey) *EdgeOperand {
	return e.attributeExtremum(key, func(c int) bool { return c == 0 }, maxReduceItem[store.EdgeIndex])
}

// AttributeIsMin keeps edges whose key attribute equals the least value of
// key across all edges that carry it.
func (e *EdgeOperand) AttributeIsMin(key value.AttributeKey) *EdgeOperand {
	return e.attributeExtremum(key, func(c int) bool { return c == 0 }, minReduceItem[store.EdgeIndex])
}

// InGroup keeps edges belonging to group g.
func (e *EdgeOperand) InGroup(g store.Group) *EdgeOperand {
	e.core.Append(func(ctx *EvalContext, in iter.Seq[store.EdgeIndex]) (iter.Seq[store.EdgeIndex], error) {
		return filterSeq(in, func(ei store.EdgeIndex) (bool, error) {
			found := false
			ctx.Store.GroupsOfEdge(ei)(func(got store.Group) bool {
				if got == g {
					found = true
					return false
				}
				return true
			})
			return found, nil
		})
	})
	return e
}

// Attribute projects to the value of key on each edge, dropping edges that
// lack it.
func (e *EdgeOperand) Attribute(key value.AttributeKey) *ValueOperand[store.EdgeIndex] {
	return newValueOperand[store.EdgeIndex](func(ctx *EvalContext) ([]Item[store.EdgeIndex], error) {
		indices, err := e.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		var out []Item[store.EdgeIndex]
		for _, ei := range indices {
			attrs, err := ctx.Store.EdgeAttributes(ei)
			if err != nil {
				return nil, err
			}
			if v, ok := attrs[key]; ok {
				out = append(out, indexed(ei, v))
			}
		}
		return out, nil
	})
}

// Attributes projects to the full attribute-key set of each edge.
func (e *EdgeOperand) Attributes() *AttributesTreeOperand[store.EdgeIndex] {
	return newAttributesTreeOperand[store.EdgeIndex](func(ctx *EvalContext) ([]AttrList[store.EdgeIndex], error) {
		indices, err := e.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]AttrList[store.EdgeIndex], len(indices))
		for i, ei := range indices {
			attrs, err := ctx.Store.EdgeAttributes(ei)
			if err != nil {
				return nil, err
			}
			keys := make([]value.AttributeKey, 0, len(attrs))
			for k := range attrs {
				keys = append(keys, k)
			}
			out[i] = AttrList[store.EdgeIndex]{Index: ei, HasIndex: true, Keys: keys}
		}
		return out, nil
	})
}

// Indices projects the edge operand down to its bare index stream.
func (e *EdgeOperand) Indices() *EdgeIndexOperand {
	return &EdgeIndexOperand{core: newOperand[store.EdgeIndex](func(ctx *EvalContext) (iter.Seq[store.EdgeIndex], error) {
		return e.core.EvaluateBackward(ctx)
	})}
}

// SourceNode navigates from each surviving edge to its source node.
func (e *EdgeOperand) SourceNode() *NodeOperand {
	return navigateEndpoint(e, func(ctx *EvalContext, ei store.EdgeIndex) (store.NodeIndex, error) {
		src, _, err := ctx.Store.EdgeEndpoints(ei)
		return src, err
	})
}

// TargetNode navigates from each surviving edge to its target node.
func (e *EdgeOperand) TargetNode() *NodeOperand {
	return navigateEndpoint(e, func(ctx *EvalContext, ei store.EdgeIndex) (store.NodeIndex, error) {
		_, dst, err := ctx.Store.EdgeEndpoints(ei)
		return dst, err
	})
}

func navigateEndpoint(e *EdgeOperand, endpoint func(ctx *EvalContext, ei store.EdgeIndex) (store.NodeIndex, error)) *NodeOperand {
	return &NodeOperand{core: newOperand[store.NodeIndex](func(ctx *EvalContext) (iter.Seq[store.NodeIndex], error) {
		indices, err := e.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		seen := make(map[store.NodeIndex]struct{})
		var out []store.NodeIndex
		for _, ei := range indices {
			ni, err := endpoint(ctx, ei)
			if err != nil {
				return nil, err
			}
			if _, ok := seen[ni]; !ok {
				seen[ni] = struct{}{}
				out = append(out, ni)
			}
		}
		return seqOf(out), nil
	})}
}

// Count returns the number of surviving edges.
func (e *EdgeOperand) Count(ctx *EvalContext) (int, error) {
	indices, err := e.Evaluate(ctx)
	if err != nil {
		return 0, err
	}
	return len(indices), nil
}

// EitherOr runs either and or on independent clones and unions the results.
func (e *EdgeOperand) EitherOr(either, or func(*EdgeOperand)) *EdgeOperand {
	a := &EdgeOperand{core: e.core.DeepClone()}
	b := &EdgeOperand{core: e.core.DeepClone()}
	either(a)
	or(b)
	return &EdgeOperand{core: newOperand[store.EdgeIndex](func(ctx *EvalContext) (iter.Seq[store.EdgeIndex], error) {
		left, err := a.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		right, err := b.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		seen := make(map[store.EdgeIndex]struct{}, len(left)+len(right))
		var out []store.EdgeIndex
		for _, ei := range left {
			if _, ok := seen[ei]; !ok {
				seen[ei] = struct{}{}
				out = append(out, ei)
			}
		}
		for _, ei := range right {
			if _, ok := seen[ei]; !ok {
				seen[ei] = struct{}{}
				out = append(out, ei)
			}
		}
		return seqOf(out), nil
	})}
}

// Exclude removes whatever a clone further filtered by f would keep.
func (e *EdgeOperand) Exclude(f func(*EdgeOperand)) *EdgeOperand {
	excluded := &EdgeOperand{core: e.core.DeepClone()}
	f(excluded)
	return &EdgeOperand{core: newOperand[store.EdgeIndex](func(ctx *EvalContext) (iter.Seq[store.EdgeIndex], error) {
		base, err := e.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		drop, err := excluded.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		dropSet := make(map[store.EdgeIndex]struct{}, len(drop))
		for _, ei := range drop {
			dropSet[ei] = struct{}{}
		}
		var out []store.EdgeIndex
		for _, ei := range base {
			if _, ok := dropSet[ei]; !ok {
				out = append(out, ei)
			}
		}
		return seqOf(out), nil
	})}
}

// DeepClone returns an independent copy of the pipeline built so far.
func (e *EdgeOperand) DeepClone() *EdgeOperand {
	return &EdgeOperand{core: e.core.DeepClone()}
}

// GroupByAttribute partitions edges by the value of key (spec §4.6).
func (e *EdgeOperand) GroupByAttribute(key value.AttributeKey, apply func(*EdgeOperand)) *EdgeOperand {
	disc := func(ctx *EvalContext, ei store.EdgeIndex) (GroupKey, error) {
		attrs, err := ctx.Store.EdgeAttributes(ei)
		if err != nil {
			return GroupKey{}, err
		}
		if v, ok := attrs[key]; ok {
			return ValueKey(v), nil
		}
		return AbsentKey(), nil
	}
	return e.groupByDiscriminator(disc, apply)
}

// GroupBySourceNode partitions edges by their source node's index (spec
// §4.6's "grouped by endpoint node").
func (e *EdgeOperand) GroupBySourceNode(apply func(*EdgeOperand)) *EdgeOperand {
	disc := func(ctx *EvalContext, ei store.EdgeIndex) (GroupKey, error) {
		src, _, err := ctx.Store.EdgeEndpoints(ei)
		if err != nil {
			return GroupKey{}, err
		}
		return IndexKey(uint64(src)), nil
	}
	return e.groupByDiscriminator(disc, apply)
}

// GroupByTargetNode partitions edges by their target node's index.
func (e *EdgeOperand) GroupByTargetNode(apply func(*EdgeOperand)) *EdgeOperand {
	disc := func(ctx *EvalContext, ei store.EdgeIndex) (GroupKey, error) {
		_, dst, err := ctx.Store.EdgeEndpoints(ei)
		if err != nil {
			return GroupKey{}, err
		}
		return IndexKey(uint64(dst)), nil
	}
	return e.groupByDiscriminator(disc, apply)
}

// GroupByComposite partitions edges by the pair (source node, attribute
// value) — a composite discriminator (spec §4.6).
func (e *EdgeOperand) GroupByComposite(key value.AttributeKey, apply func(*EdgeOperand)) *EdgeOperand {
	disc := func(ctx *EvalContext, ei store.EdgeIndex) (GroupKey, error) {
		src, _, err := ctx.Store.EdgeEndpoints(ei)
		if err != nil {
			return GroupKey{}, err
		}
		attrs, err := ctx.Store.EdgeAttributes(ei)
		if err != nil {
			return GroupKey{}, err
		}
		attrKey := AbsentKey()
		if v, ok := attrs[key]; ok {
			attrKey = ValueKey(v)
		}
		return PairKey(IndexKey(uint64(src)), attrKey), nil
	}
	return e.groupByDiscriminator(disc, apply)
}

// GroupByAttributeAggregate is the grouped-return counterpart to
// GroupByAttribute: it returns each partition's GroupKey paired with
// whatever apply produces from it instead of flattening survivors back
// into one ungrouped edge sequence (spec §4.3.2/§4.5).
func (e *EdgeOperand) GroupByAttributeAggregate(ctx *EvalContext, key value.AttributeKey, apply func(*EdgeOperand) *ValueOperand[store.EdgeIndex]) ([]GroupResult[value.Value], error) {
	elems, err := e.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	parts := newOrderedPartitions[store.EdgeIndex]()
	for _, ei := range elems {
		attrs, err := ctx.Store.EdgeAttributes(ei)
		if err != nil {
			return nil, err
		}
		k := AbsentKey()
		if v, ok := attrs[key]; ok {
			k = ValueKey(v)
		}
		parts.add(k, ei)
	}
	var out []GroupResult[value.Value]
	for _, b := range parts.partitions() {
		sub := &EdgeOperand{core: newOperand[store.EdgeIndex](func(*EvalContext) (iter.Seq[store.EdgeIndex], error) {
			return seqOf(b.items), nil
		})}
		vals, err := apply(sub).Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, GroupResult[value.Value]{Key: b.key, Items: vals})
	}
	return out, nil
}

func (e *EdgeOperand) groupByDiscriminator(disc Discriminator[store.EdgeIndex], apply func(*EdgeOperand)) *EdgeOperand {
	return &EdgeOperand{core: newOperand[store.EdgeIndex](func(ctx *EvalContext) (iter.Seq[store.EdgeIndex], error) {
		elems, err := e.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		out, err := groupBy(ctx, elems, disc, func(ctx *EvalContext, group []store.EdgeIndex) ([]store.EdgeIndex, error) {
			sub := &EdgeOperand{core: newOperand[store.EdgeIndex](func(*EvalContext) (iter.Seq[store.EdgeIndex], error) {
				return seqOf(group), nil
			})}
			apply(sub)
			return sub.Evaluate(ctx)
		})
		if err != nil {
			return nil, err
		}
		return seqOf(merge(elems, out)), nil
	})}
}
