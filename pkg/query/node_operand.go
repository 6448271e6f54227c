package query

import (
	"iter"

	"github.com/orneryd/graphrecords/pkg/qerr"
	"github.com/orneryd/graphrecords/pkg/store"
	"github.com/orneryd/graphrecords/pkg/value"
)

// NodeOperand is the entity-level operand over nodes (spec §4.1's Node
// operand). Its element type is store.NodeIndex: the identity of "this
// node" is enough, since attributes, groups and adjacency are all fetched
// from the store on demand by the operations appended here.
type NodeOperand struct {
	core *Operand[store.NodeIndex]
}

// AllNodes is the root Node operand: every node currently in the store.
func AllNodes() *NodeOperand {
	return &NodeOperand{core: newOperand[store.NodeIndex](func(ctx *EvalContext) (iter.Seq[store.NodeIndex], error) {
		return ctx.Store.NodeIndices(), nil
	})}
}

// StageCount reports the number of operations appended so far, for
// pkg/overview's pipeline-shape rendering.
func (n *NodeOperand) StageCount() int { return n.core.StageCount() }

// Evaluate runs the pipeline and returns the surviving node indices.
func (n *NodeOperand) Evaluate(ctx *EvalContext) ([]store.NodeIndex, error) {
	seq, err := n.core.EvaluateBackward(ctx)
	if err != nil {
		return nil, err
	}
	return collect(seq), nil
}

// HasAttribute keeps nodes that carry the given attribute key.
func (n *NodeOperand) HasAttribute(key value.AttributeKey) *NodeOperand {
	n.core.Append(func(ctx *EvalContext, in iter.Seq[store.NodeIndex]) (iter.Seq[store.NodeIndex], error) {
		return filterSeq(in, func(ni store.NodeIndex) (bool, error) {
			attrs, err := ctx.Store.NodeAttributes(ni)
			if err != nil {
				return false, err
			}
			_, ok := attrs[key]
			return ok, nil
		})
	})
	return n
}

// attributeFilter is the shared shape behind AttributeEqualTo and friends:
// keep a node iff it carries key and cmp(value, rhs) holds (spec §4.2's
// filter-by-attribute, as distinct from Attribute(key) which projects to
// a ValueOperand instead of preserving the Node shape).
func (n *NodeOperand) attributeFilter(key value.AttributeKey, rhs ScalarSource, cmp func(a, b value.Value) (bool, error)) *NodeOperand {
	n.core.Append(func(ctx *EvalContext, in iter.Seq[store.NodeIndex]) (iter.Seq[store.NodeIndex], error) {
		r, err := resolveScalar(ctx, rhs)
		if err != nil {
			return nil, err
		}
		return filterSeq(in, func(ni store.NodeIndex) (bool, error) {
			attrs, err := ctx.Store.NodeAttributes(ni)
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
	return n
}

// AttributeEqualTo keeps nodes whose key attribute equals rhs.
func (n *NodeOperand) AttributeEqualTo(key value.AttributeKey, rhs ScalarSource) *NodeOperand {
	return n.attributeFilter(key, rhs, func(a, b value.Value) (bool, error) { return a.Equal(b), nil })
}

// AttributeNotEqualTo keeps nodes whose key attribute does not equal rhs.
func (n *NodeOperand) AttributeNotEqualTo(key value.AttributeKey, rhs ScalarSource) *NodeOperand {
	return n.attributeFilter(key, rhs, func(a, b value.Value) (bool, error) { return !a.Equal(b), nil })
}

// AttributeGreaterThan keeps nodes whose key attribute orders strictly
// after rhs.
func (n *NodeOperand) AttributeGreaterThan(key value.AttributeKey, rhs ScalarSource) *NodeOperand {
	return n.attributeFilter(key, rhs, func(a, b value.Value) (bool, error) {
		cmp, ok := a.Compare(b)
		return ok && cmp > 0, nil
	})
}

// AttributeLessThan keeps nodes whose key attribute orders strictly before
// rhs.
func (n *NodeOperand) AttributeLessThan(key value.AttributeKey, rhs ScalarSource) *NodeOperand {
	return n.attributeFilter(key, rhs, func(a, b value.Value) (bool, error) {
		cmp, ok := a.Compare(b)
		return ok && cmp < 0, nil
	})
}

// AttributeGreaterThanOrEqual keeps nodes whose key attribute orders at or
// after rhs.
func (n *NodeOperand) AttributeGreaterThanOrEqual(key value.AttributeKey, rhs ScalarSource) *NodeOperand {
	return n.attributeFilter(key, rhs, func(a, b value.Value) (bool, error) {
		cmp, ok := a.Compare(b)
		return ok && cmp >= 0, nil
	})
}

// AttributeLessThanOrEqual keeps nodes whose key attribute orders at or
// before rhs.
func (n *NodeOperand) AttributeLessThanOrEqual(key value.AttributeKey, rhs ScalarSource) *NodeOperand {
	return n.attributeFilter(key, rhs, func(a, b value.Value) (bool, error) {
		cmp, ok := a.Compare(b)
		return ok && cmp <= 0, nil
	})
}

// AttributeStartsWith keeps nodes whose key attribute starts with rhs.
func (n *NodeOperand) AttributeStartsWith(key value.AttributeKey, rhs ScalarSource) *NodeOperand {
	return n.attributeFilter(key, rhs, func(a, b value.Value) (bool, error) { return a.StartsWith(b), nil })
}

// AttributeEndsWith keeps nodes whose key attribute ends with rhs.
func (n *NodeOperand) AttributeEndsWith(key value.AttributeKey, rhs ScalarSource) *NodeOperand {
	return n.attributeFilter(key, rhs, func(a, b value.Value) (bool, error) { return a.EndsWith(b), nil })
}

// AttributeContains keeps nodes whose key attribute contains rhs.
func (n *NodeOperand) AttributeContains(key value.AttributeKey, rhs ScalarSource) *NodeOperand {
	return n.attributeFilter(key, rhs, func(a, b value.Value) (bool, error) { return a.Contains(b), nil })
}

func (n *NodeOperand) attributeKindIs(key value.AttributeKey, k value.Kind) *NodeOperand {
	n.core.Append(func(ctx *EvalContext, in iter.Seq[store.NodeIndex]) (iter.Seq[store.NodeIndex], error) {
		return filterSeq(in, func(ni store.NodeIndex) (bool, error) {
			attrs, err := ctx.Store.NodeAttributes(ni)
			if err != nil {
				return false, err
			}
			v, ok := attrs[key]
			return ok && v.Kind() == k, nil
		})
	})
	return n
}

// AttributeIsString keeps nodes whose key attribute is a string.
func (n *NodeOperand) AttributeIsString(key value.AttributeKey) *NodeOperand {
	return n.attributeKindIs(key, value.KindString)
}

// AttributeIsInt keeps nodes whose key attribute is an int.
func (n *NodeOperand) AttributeIsInt(key value.AttributeKey) *NodeOperand {
	return n.attributeKindIs(key, value.KindInt)
}

// attributeSetFilter is the shared shape behind AttributeIsIn/IsNotIn.
func (n *NodeOperand) attributeSetFilter(key value.AttributeKey, set SetSource, keep func(in bool) bool) *NodeOperand {
	n.core.Append(func(ctx *EvalContext, in iter.Seq[store.NodeIndex]) (iter.Seq[store.NodeIndex], error) {
		s, err := set.scalarSet(ctx)
		if err != nil {
			return nil, err
		}
		return filterSeq(in, func(ni store.NodeIndex) (bool, error) {
			attrs, err := ctx.Store.NodeAttributes(ni)
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
	return n
}

// AttributeIsIn keeps nodes whose key attribute appears in set.
func (n *NodeOperand) AttributeIsIn(key value.AttributeKey, set SetSource) *NodeOperand {
	return n.attributeSetFilter(key, set, func(in bool) bool { return in })
}

// AttributeIsNotIn keeps nodes whose key attribute is absent from set.
func (n *NodeOperand) AttributeIsNotIn(key value.AttributeKey, set SetSource) *NodeOperand {
	return n.attributeSetFilter(key, set, func(in bool) bool { return !in })
}

// attributeExtremum backs AttributeIsMax/AttributeIsMin: keep the nodes
// whose key attribute equals the extremum across every node that carries
// the attribute (spec §4.1.2's entity-preserving is_max/is_min).
func (n *NodeOperand) attributeExtremum(key value.AttributeKey, keep func(cmp int) bool, fn func([]Item[store.NodeIndex]) (Item[store.NodeIndex], error)) *NodeOperand {
	n.core.Append(func(ctx *EvalContext, in iter.Seq[store.NodeIndex]) (iter.Seq[store.NodeIndex], error) {
		indices := collect(in)
		var items []Item[store.NodeIndex]
		for _, ni := range indices {
			attrs, err := ctx.Store.NodeAttributes(ni)
			if err != nil {
				return nil, err
			}
			if v, ok := attrs[key]; ok {
				items = append(items, indexed(ni, v))
			}
		}
		if len(items) == 0 {
			return seqOf[store.NodeIndex](nil), nil
		}
		extremum, err := fn(items)
		if err != nil {
			return nil, err
		}
		var out []store.NodeIndex
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
	return n
}

// AttributeIsMax keeps nodes whose key attribute equals the greatest value
// of key across all nodes that carry it.
func (n *NodeOperand) AttributeIsMax(key value.AttributeKey) *NodeOperand {
	return n.attributeExtremum(key, func(c int) bool { return c == 0 }, maxReduceItem[store.NodeIndex])
}

// AttributeIsMin keeps nodes whose key attribute equals the least value of
// key across all nodes that carry it.
func (n *NodeOperand) AttributeIsMin(key value.AttributeKey) *NodeOperand {
	return n.attributeExtremum(key, func(c int) bool { return c == 0 }, minReduceItem[store.NodeIndex])
}

// InGroup keeps nodes belonging to group g.
func (n *NodeOperand) InGroup(g store.Group) *NodeOperand {
	n.core.Append(func(ctx *EvalContext, in iter.Seq[store.NodeIndex]) (iter.Seq[store.NodeIndex], error) {
		return filterSeq(in, func(ni store.NodeIndex) (bool, error) {
			found := false
			ctx.Store.GroupsOfNode(ni)(func(got store.Group) bool {
				if got == g {
					found = true
					return false
				}
				return true
			})
			return found, nil
		})
	})
	return n
}

// Attribute projects to the value of key on each node, dropping nodes that
// lack it (spec §4.2: "entities lacking the attribute are dropped").
func (n *NodeOperand) Attribute(key value.AttributeKey) *ValueOperand[store.NodeIndex] {
	return newValueOperand[store.NodeIndex](func(ctx *EvalContext) ([]Item[store.NodeIndex], error) {
		indices, err := n.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		var out []Item[store.NodeIndex]
		for _, ni := range indices {
			attrs, err := ctx.Store.NodeAttributes(ni)
			if err != nil {
				return nil, err
			}
			if v, ok := attrs[key]; ok {
				out = append(out, indexed(ni, v))
			}
		}
		return out, nil
	})
}

// Attributes projects to the full attribute-key set of each node.
func (n *NodeOperand) Attributes() *AttributesTreeOperand[store.NodeIndex] {
	return newAttributesTreeOperand[store.NodeIndex](func(ctx *EvalContext) ([]AttrList[store.NodeIndex], error) {
		indices, err := n.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]AttrList[store.NodeIndex], len(indices))
		for i, ni := range indices {
			attrs, err := ctx.Store.NodeAttributes(ni)
			if err != nil {
				return nil, err
			}
			keys := make([]value.AttributeKey, 0, len(attrs))
			for k := range attrs {
				keys = append(keys, k)
			}
			out[i] = AttrList[store.NodeIndex]{Index: ni, HasIndex: true, Keys: keys}
		}
		return out, nil
	})
}

// AttributeNames projects to one attribute-key element per (node, key)
// pair it currently carries.
func (n *NodeOperand) AttributeNames() *AttributeOperand[store.NodeIndex] {
	return newAttributeOperand[store.NodeIndex](func(ctx *EvalContext) ([]Item[store.NodeIndex], error) {
		indices, err := n.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		var out []Item[store.NodeIndex]
		for _, ni := range indices {
			attrs, err := ctx.Store.NodeAttributes(ni)
			if err != nil {
				return nil, err
			}
			for k := range attrs {
				out = append(out, indexed(ni, k))
			}
		}
		return out, nil
	})
}

// Indices projects the node operand down to its bare index stream (spec
// §4.1's NodeIndices operand), as a new handle so further filtering there
// does not affect this one.
func (n *NodeOperand) Indices() *NodeIndexOperand {
	return &NodeIndexOperand{core: newOperand[store.NodeIndex](func(ctx *EvalContext) (iter.Seq[store.NodeIndex], error) {
		return n.core.EvaluateBackward(ctx)
	})}
}

// OutgoingEdges navigates from each surviving node to its outgoing edges.
func (n *NodeOperand) OutgoingEdges() *EdgeOperand {
	return navigateEdges(n, func(ctx *EvalContext, ni store.NodeIndex) iter.Seq[store.EdgeIndex] {
		return ctx.Store.OutgoingEdges(ni)
	})
}

// IncomingEdges navigates from each surviving node to its incoming edges.
func (n *NodeOperand) IncomingEdges() *EdgeOperand {
	return navigateEdges(n, func(ctx *EvalContext, ni store.NodeIndex) iter.Seq[store.EdgeIndex] {
		return ctx.Store.IncomingEdges(ni)
	})
}

func navigateEdges(n *NodeOperand, adj func(ctx *EvalContext, ni store.NodeIndex) iter.Seq[store.EdgeIndex]) *EdgeOperand {
	return &EdgeOperand{core: newOperand[store.EdgeIndex](func(ctx *EvalContext) (iter.Seq[store.EdgeIndex], error) {
		indices, err := n.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		var out []store.EdgeIndex
		seen := make(map[store.EdgeIndex]struct{})
		for _, ni := range indices {
			adj(ctx, ni)(func(ei store.EdgeIndex) bool {
				if _, ok := seen[ei]; !ok {
					seen[ei] = struct{}{}
					out = append(out, ei)
				}
				return true
			})
		}
		return seqOf(out), nil
	})}
}

// Count returns the number of surviving nodes.
func (n *NodeOperand) Count(ctx *EvalContext) (int, error) {
	indices, err := n.Evaluate(ctx)
	if err != nil {
		return 0, err
	}
	return len(indices), nil
}

// EitherOr runs either and or on independent clones of the current
// pipeline state and unions the two outcomes, deduplicated by index (spec
// §4.7).
func (n *NodeOperand) EitherOr(either, or func(*NodeOperand)) *NodeOperand {
	a := &NodeOperand{core: n.core.DeepClone()}
	b := &NodeOperand{core: n.core.DeepClone()}
	either(a)
	or(b)
	return &NodeOperand{core: newOperand[store.NodeIndex](func(ctx *EvalContext) (iter.Seq[store.NodeIndex], error) {
		left, err := a.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		right, err := b.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		seen := make(map[store.NodeIndex]struct{}, len(left)+len(right))
		var out []store.NodeIndex
		for _, ni := range left {
			if _, ok := seen[ni]; !ok {
				seen[ni] = struct{}{}
				out = append(out, ni)
			}
		}
		for _, ni := range right {
			if _, ok := seen[ni]; !ok {
				seen[ni] = struct{}{}
				out = append(out, ni)
			}
		}
		return seqOf(out), nil
	})}
}

// Exclude removes from the current pipeline whatever a clone of it,
// further filtered by f, would keep — i.e. a set difference (spec §4.7).
func (n *NodeOperand) Exclude(f func(*NodeOperand)) *NodeOperand {
	excluded := &NodeOperand{core: n.core.DeepClone()}
	f(excluded)
	return &NodeOperand{core: newOperand[store.NodeIndex](func(ctx *EvalContext) (iter.Seq[store.NodeIndex], error) {
		base, err := n.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		drop, err := excluded.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		dropSet := make(map[store.NodeIndex]struct{}, len(drop))
		for _, ni := range drop {
			dropSet[ni] = struct{}{}
		}
		var out []store.NodeIndex
		for _, ni := range base {
			if _, ok := dropSet[ni]; !ok {
				out = append(out, ni)
			}
		}
		return seqOf(out), nil
	})}
}

// DeepClone returns an independent copy of the pipeline built so far.
func (n *NodeOperand) DeepClone() *NodeOperand {
	return &NodeOperand{core: n.core.DeepClone()}
}

// GroupByAttribute partitions nodes by the value of key (nodes lacking it
// form their own partition), runs apply against each partition
// independently, and flattens the survivors back together (spec §4.6).
func (n *NodeOperand) GroupByAttribute(key value.AttributeKey, apply func(*NodeOperand)) *NodeOperand {
	disc := func(ctx *EvalContext, ni store.NodeIndex) (GroupKey, error) {
		attrs, err := ctx.Store.NodeAttributes(ni)
		if err != nil {
			return GroupKey{}, err
		}
		if v, ok := attrs[key]; ok {
			return ValueKey(v), nil
		}
		return AbsentKey(), nil
	}
	return n.groupByDiscriminator(disc, apply)
}

// GroupByQuery partitions nodes by the result of evaluating sub against
// each node's own context — a composite/subquery-backed discriminator
// (spec §4.6's "grouped by subquery result").
func (n *NodeOperand) GroupByQuery(sub func(ni store.NodeIndex) *ValueOperand[store.NodeIndex], apply func(*NodeOperand)) *NodeOperand {
	disc := func(ctx *EvalContext, ni store.NodeIndex) (GroupKey, error) {
		v, ok, err := sub(ni).scalarValue(ctx)
		if err != nil {
			return GroupKey{}, err
		}
		if !ok {
			return AbsentKey(), nil
		}
		return ValueKey(v), nil
	}
	return n.groupByDiscriminator(disc, apply)
}

// GroupByAttributeAggregate partitions nodes by the value of key, same as
// GroupByAttribute, but returns each partition's GroupKey paired with
// whatever apply produces from it instead of flattening survivors back
// into one ungrouped node sequence (spec §4.3.2/§4.5: "group_by(age).max(w)"
// exposes "key 10 -> 1, key 20 -> 2", not a flat node list).
func (n *NodeOperand) GroupByAttributeAggregate(ctx *EvalContext, key value.AttributeKey, apply func(*NodeOperand) *ValueOperand[store.NodeIndex]) ([]GroupResult[value.Value], error) {
	elems, err := n.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	parts := newOrderedPartitions[store.NodeIndex]()
	for _, ni := range elems {
		attrs, err := ctx.Store.NodeAttributes(ni)
		if err != nil {
			return nil, err
		}
		k := AbsentKey()
		if v, ok := attrs[key]; ok {
			k = ValueKey(v)
		}
		parts.add(k, ni)
	}
	var out []GroupResult[value.Value]
	for _, b := range parts.partitions() {
		sub := &NodeOperand{core: newOperand[store.NodeIndex](func(*EvalContext) (iter.Seq[store.NodeIndex], error) {
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

func (n *NodeOperand) groupByDiscriminator(disc Discriminator[store.NodeIndex], apply func(*NodeOperand)) *NodeOperand {
	return &NodeOperand{core: newOperand[store.NodeIndex](func(ctx *EvalContext) (iter.Seq[store.NodeIndex], error) {
		elems, err := n.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		out, err := groupBy(ctx, elems, disc, func(ctx *EvalContext, group []store.NodeIndex) ([]store.NodeIndex, error) {
			sub := &NodeOperand{core: newOperand[store.NodeIndex](func(*EvalContext) (iter.Seq[store.NodeIndex], error) {
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
