package query

import (
	"fmt"
	"iter"
	"math/rand/v2"

	"github.com/orneryd/graphrecords/pkg/qerr"
	"github.com/orneryd/graphrecords/pkg/store"
	"github.com/orneryd/graphrecords/pkg/value"
)

// ValueOperand is a stream of attribute values (or index-derived values)
// keyed by the entity they came from, parameterized over the owning
// index's type (store.NodeIndex or store.EdgeIndex). It implements the
// MultipleValuesWithIndex / SingleValueWithIndex / *WithoutIndex operand
// kinds of spec §4.2 in one generic type: "scalar" narrows to the
// single-element semantics once an aggregation has run.
type ValueOperand[I any] struct {
	core   *Operand[Item[I]]
	scalar bool
}

func newValueOperand[I any](backward func(ctx *EvalContext) ([]Item[I], error)) *ValueOperand[I] {
	return &ValueOperand[I]{core: newOperand[Item[I]](func(ctx *EvalContext) (iterSeqItem[I], error) {
		items, err := backward(ctx)
		if err != nil {
			return nil, err
		}
		return seqOf(items), nil
	})}
}

// iterSeqItem exists only to keep the generic instantiation below readable.
type iterSeqItem[I any] = iter.Seq[Item[I]]

// scalarValue satisfies ScalarSource: evaluate backward and take the first
// (and, for a well-formed query, only) item. An empty result is an error
// per spec §9: "no attribute/value/index to compare against".
func (v *ValueOperand[I]) scalarValue(ctx *EvalContext) (value.Value, bool, error) {
	items, err := v.evaluate(ctx)
	if err != nil {
		return value.Null(), false, err
	}
	if len(items) == 0 {
		return value.Null(), false, nil
	}
	return items[0].V, true, nil
}

func (v *ValueOperand[I]) scalarSet(ctx *EvalContext) ([]value.Value, error) {
	items, err := v.evaluate(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, len(items))
	for i, it := range items {
		out[i] = it.V
	}
	return out, nil
}

func (v *ValueOperand[I]) evaluate(ctx *EvalContext) ([]Item[I], error) {
	seq, err := v.core.EvaluateBackward(ctx)
	if err != nil {
		return nil, err
	}
	return collect(seq), nil
}

// Evaluate runs the pipeline and returns the surviving values, discarding
// which index each came from.
func (v *ValueOperand[I]) Evaluate(ctx *EvalContext) ([]value.Value, error) {
	items, err := v.evaluate(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, len(items))
	for i, it := range items {
		out[i] = it.V
	}
	return out, nil
}

// resolveScalar is the single chokepoint every comparison-operand
// resolution path (attributeFilter, ordered, arith, EqualTo/NotEqualTo,
// StartsWith/EndsWith/Contains) goes through, so wrapping s in the
// EvalContext-scoped scalarCache here is what makes Cached (pkg/query/
// cache.go) actually load-bearing rather than decorative: a ScalarSource
// reused across multiple filters or multiple Selection columns within one
// Evaluate is computed once and reused, keyed by its own identity. A
// Literal has no identity to key on and nothing to evaluate, so it is
// read directly.
func resolveScalar(ctx *EvalContext, s ScalarSource) (value.Value, error) {
	if lit, isLit := s.(Literal); isLit {
		return lit.V, nil
	}
	v, ok, err := Cached(fmt.Sprintf("%p:%T", s, s), s).scalarValue(ctx)
	if err != nil {
		return value.Null(), err
	}
	if !ok {
		return value.Null(), qerr.Query("comparison operand produced no value")
	}
	return v, nil
}

func (v *ValueOperand[I]) filter(pred func(a value.Value) (bool, error)) *ValueOperand[I] {
	v.core.Append(func(ctx *EvalContext, in iterSeqItem[I]) (iterSeqItem[I], error) {
		return filterSeq(in, func(it Item[I]) (bool, error) { return pred(it.V) })
	})
	return v
}

// EqualTo keeps values equal to rhs.
func (v *ValueOperand[I]) EqualTo(rhs ScalarSource) *ValueOperand[I] {
	v.core.Append(func(ctx *EvalContext, in iterSeqItem[I]) (iterSeqItem[I], error) {
		r, err := resolveScalar(ctx, rhs)
		if err != nil {
			return nil, err
		}
		return filterSeq(in, func(it Item[I]) (bool, error) { return it.V.Equal(r), nil })
	})
	return v
}

// NotEqualTo keeps values not equal to rhs.
func (v *ValueOperand[I]) NotEqualTo(rhs ScalarSource) *ValueOperand[I] {
	v.core.Append(func(ctx *EvalContext, in iterSeqItem[I]) (iterSeqItem[I], error) {
		r, err := resolveScalar(ctx, rhs)
		if err != nil {
			return nil, err
		}
		return filterSeq(in, func(it Item[I]) (bool, error) { return !it.V.Equal(r), nil })
	})
	return v
}

func (v *ValueOperand[I]) ordered(rhs ScalarSource, keep func(cmp int) bool) *ValueOperand[I] {
	v.core.Append(func(ctx *EvalContext, in iterSeqItem[I]) (iterSeqItem[I], error) {
		r, err := resolveScalar(ctx, rhs)
		if err != nil {
			return nil, err
		}
		return filterSeq(in, func(it Item[I]) (bool, error) {
			cmp, ok := it.V.Compare(r)
			if !ok {
				return false, nil
			}
			return keep(cmp), nil
		})
	})
	return v
}

// GreaterThan keeps values strictly greater than rhs.
func (v *ValueOperand[I]) GreaterThan(rhs ScalarSource) *ValueOperand[I] {
	return v.ordered(rhs, func(cmp int) bool { return cmp > 0 })
}

// GreaterThanOrEqual keeps values greater than or equal to rhs.
func (v *ValueOperand[I]) GreaterThanOrEqual(rhs ScalarSource) *ValueOperand[I] {
	return v.ordered(rhs, func(cmp int) bool { return cmp >= 0 })
}

// LessThan keeps values strictly less than rhs.
func (v *ValueOperand[I]) LessThan(rhs ScalarSource) *ValueOperand[I] {
	return v.ordered(rhs, func(cmp int) bool { return cmp < 0 })
}

// LessThanOrEqual keeps values less than or equal to rhs.
func (v *ValueOperand[I]) LessThanOrEqual(rhs ScalarSource) *ValueOperand[I] {
	return v.ordered(rhs, func(cmp int) bool { return cmp <= 0 })
}

// IsIn keeps values that appear in set.
func (v *ValueOperand[I]) IsIn(set SetSource) *ValueOperand[I] {
	v.core.Append(func(ctx *EvalContext, in iterSeqItem[I]) (iterSeqItem[I], error) {
		s, err := set.scalarSet(ctx)
		if err != nil {
			return nil, err
		}
		return filterSeq(in, func(it Item[I]) (bool, error) { return containsValue(s, it.V), nil })
	})
	return v
}

// IsNotIn keeps values absent from set.
func (v *ValueOperand[I]) IsNotIn(set SetSource) *ValueOperand[I] {
	v.core.Append(func(ctx *EvalContext, in iterSeqItem[I]) (iterSeqItem[I], error) {
		s, err := set.scalarSet(ctx)
		if err != nil {
			return nil, err
		}
		return filterSeq(in, func(it Item[I]) (bool, error) { return !containsValue(s, it.V), nil })
	})
	return v
}

// StartsWith, EndsWith and Contains are the string-like predicates of spec
// §4.4; on non-string-like variants they behave per Value's own rules.
func (v *ValueOperand[I]) StartsWith(rhs ScalarSource) *ValueOperand[I] {
	v.core.Append(func(ctx *EvalContext, in iterSeqItem[I]) (iterSeqItem[I], error) {
		r, err := resolveScalar(ctx, rhs)
		if err != nil {
			return nil, err
		}
		return filterSeq(in, func(it Item[I]) (bool, error) { return it.V.StartsWith(r), nil })
	})
	return v
}

func (v *ValueOperand[I]) EndsWith(rhs ScalarSource) *ValueOperand[I] {
	v.core.Append(func(ctx *EvalContext, in iterSeqItem[I]) (iterSeqItem[I], error) {
		r, err := resolveScalar(ctx, rhs)
		if err != nil {
			return nil, err
		}
		return filterSeq(in, func(it Item[I]) (bool, error) { return it.V.EndsWith(r), nil })
	})
	return v
}

func (v *ValueOperand[I]) Contains(rhs ScalarSource) *ValueOperand[I] {
	v.core.Append(func(ctx *EvalContext, in iterSeqItem[I]) (iterSeqItem[I], error) {
		r, err := resolveScalar(ctx, rhs)
		if err != nil {
			return nil, err
		}
		return filterSeq(in, func(it Item[I]) (bool, error) { return it.V.Contains(r), nil })
	})
	return v
}

// IsString/IsInt/IsFloat/IsBool/IsDateTime/IsDuration/IsNull keep values of
// the named kind (spec §4.2.2, "kind predicates").
func (v *ValueOperand[I]) kindIs(k value.Kind) *ValueOperand[I] {
	return v.filter(func(a value.Value) (bool, error) { return a.Kind() == k, nil })
}

func (v *ValueOperand[I]) IsString() *ValueOperand[I]   { return v.kindIs(value.KindString) }
func (v *ValueOperand[I]) IsInt() *ValueOperand[I]      { return v.kindIs(value.KindInt) }
func (v *ValueOperand[I]) IsFloat() *ValueOperand[I]    { return v.kindIs(value.KindFloat) }
func (v *ValueOperand[I]) IsBool() *ValueOperand[I]     { return v.kindIs(value.KindBool) }
func (v *ValueOperand[I]) IsDateTime() *ValueOperand[I] { return v.kindIs(value.KindDateTime) }
func (v *ValueOperand[I]) IsDuration() *ValueOperand[I] { return v.kindIs(value.KindDuration) }
func (v *ValueOperand[I]) IsNull() *ValueOperand[I]     { return v.filter(func(a value.Value) (bool, error) { return a.IsNull(), nil }) }

func (v *ValueOperand[I]) arith(rhs ScalarSource, op func(a, b value.Value) (value.Value, error)) *ValueOperand[I] {
	v.core.Append(func(ctx *EvalContext, in iterSeqItem[I]) (iterSeqItem[I], error) {
		r, err := resolveScalar(ctx, rhs)
		if err != nil {
			return nil, err
		}
		var out []Item[I]
		var outerErr error
		in(func(it Item[I]) bool {
			nv, err := op(it.V, r)
			if err != nil {
				outerErr = err
				return false
			}
			it.V = nv
			out = append(out, it)
			return true
		})
		if outerErr != nil {
			return nil, outerErr
		}
		return seqOf(out), nil
	})
	return v
}

func (v *ValueOperand[I]) Add(rhs ScalarSource) *ValueOperand[I] { return v.arith(rhs, value.Value.Add) }
func (v *ValueOperand[I]) Sub(rhs ScalarSource) *ValueOperand[I] { return v.arith(rhs, value.Value.Sub) }
func (v *ValueOperand[I]) Mul(rhs ScalarSource) *ValueOperand[I] { return v.arith(rhs, value.Value.Mul) }
func (v *ValueOperand[I]) Div(rhs ScalarSource) *ValueOperand[I] { return v.arith(rhs, value.Value.Div) }
func (v *ValueOperand[I]) Pow(rhs ScalarSource) *ValueOperand[I] { return v.arith(rhs, value.Value.Pow) }
func (v *ValueOperand[I]) Mod(rhs ScalarSource) *ValueOperand[I] { return v.arith(rhs, value.Value.Mod) }

func (v *ValueOperand[I]) unary(op func(value.Value) value.Value) *ValueOperand[I] {
	v.core.Append(func(ctx *EvalContext, in iterSeqItem[I]) (iterSeqItem[I], error) {
		var out []Item[I]
		in(func(it Item[I]) bool {
			it.V = op(it.V)
			out = append(out, it)
			return true
		})
		return seqOf(out), nil
	})
	return v
}

func (v *ValueOperand[I]) Abs() *ValueOperand[I]      { return v.unary(value.Value.Abs) }
func (v *ValueOperand[I]) Round() *ValueOperand[I]    { return v.unary(value.Value.Round) }
func (v *ValueOperand[I]) Ceil() *ValueOperand[I]     { return v.unary(value.Value.Ceil) }
func (v *ValueOperand[I]) Floor() *ValueOperand[I]    { return v.unary(value.Value.Floor) }
func (v *ValueOperand[I]) Sqrt() *ValueOperand[I]     { return v.unary(value.Value.Sqrt) }
func (v *ValueOperand[I]) Lowercase() *ValueOperand[I] { return v.unary(value.Value.Lowercase) }
func (v *ValueOperand[I]) Uppercase() *ValueOperand[I] { return v.unary(value.Value.Uppercase) }
func (v *ValueOperand[I]) Trim() *ValueOperand[I]      { return v.unary(value.Value.Trim) }
func (v *ValueOperand[I]) TrimStart() *ValueOperand[I] { return v.unary(value.Value.TrimStart) }
func (v *ValueOperand[I]) TrimEnd() *ValueOperand[I]   { return v.unary(value.Value.TrimEnd) }

// Slice narrows each value to the [lo, hi) sub-range of its string/
// collection form (spec §4.1.2's unary slice operation); a value that
// cannot be sliced aborts evaluation via value.Value.Slice's own error.
func (v *ValueOperand[I]) Slice(lo, hi int) *ValueOperand[I] {
	v.core.Append(func(ctx *EvalContext, in iterSeqItem[I]) (iterSeqItem[I], error) {
		var out []Item[I]
		var outerErr error
		in(func(it Item[I]) bool {
			nv, err := it.V.Slice(lo, hi)
			if err != nil {
				outerErr = err
				return false
			}
			it.V = nv
			out = append(out, it)
			return true
		})
		if outerErr != nil {
			return nil, outerErr
		}
		return seqOf(out), nil
	})
	return v
}

// Max collapses the stream into the single greatest value, carrying the
// index of whichever item produced it when the stream came in indexed
// (spec §4.2.2: MultipleValuesWithIndex -> SingleValueWithIndex).
func (v *ValueOperand[I]) Max() *ValueOperand[I] { return v.reduceItem(maxReduceItem[I]) }
func (v *ValueOperand[I]) Min() *ValueOperand[I] { return v.reduceItem(minReduceItem[I]) }

// Sum collapses the stream into a single value with no owning index — a
// sum has no single contributing element to credit it to.
func (v *ValueOperand[I]) Sum() *ValueOperand[I] { return v.reduceValues(sumReduce) }

// Random picks one element of the stream uniformly at random, carrying its
// index through (spec §4.1.2/§4.4's "random" aggregation kind). Unlike
// Max/Min/Sum this is explicitly non-deterministic across evaluations
// (spec §8).
func (v *ValueOperand[I]) Random() *ValueOperand[I] {
	v.core.Append(func(ctx *EvalContext, in iterSeqItem[I]) (iterSeqItem[I], error) {
		items := collect(in)
		if len(items) == 0 {
			return nil, qerr.Query("random of an empty value stream")
		}
		return seqOf([]Item[I]{items[rand.IntN(len(items))]}), nil
	})
	v.scalar = true
	return v
}

func (v *ValueOperand[I]) Count() *ValueOperand[I] {
	v.core.Append(func(ctx *EvalContext, in iterSeqItem[I]) (iterSeqItem[I], error) {
		n := len(collect(in))
		return seqOf([]Item[I]{unindexed[I](value.Int(int64(n)))}), nil
	})
	v.scalar = true
	return v
}

// reduceItem collapses the stream to the single item fn selects, preserving
// whichever index produced it (used by Max/Min).
func (v *ValueOperand[I]) reduceItem(fn func([]Item[I]) (Item[I], error)) *ValueOperand[I] {
	v.core.Append(func(ctx *EvalContext, in iterSeqItem[I]) (iterSeqItem[I], error) {
		r, err := fn(collect(in))
		if err != nil {
			return nil, err
		}
		return seqOf([]Item[I]{r}), nil
	})
	v.scalar = true
	return v
}

// reduceValues collapses the stream to a single value with no owning index
// (used by Sum, which has no single contributing element).
func (v *ValueOperand[I]) reduceValues(fn func([]value.Value) (value.Value, error)) *ValueOperand[I] {
	v.core.Append(func(ctx *EvalContext, in iterSeqItem[I]) (iterSeqItem[I], error) {
		items := collect(in)
		vals := make([]value.Value, len(items))
		for i, it := range items {
			vals[i] = it.V
		}
		r, err := fn(vals)
		if err != nil {
			return nil, err
		}
		return seqOf([]Item[I]{unindexed[I](r)}), nil
	})
	v.scalar = true
	return v
}

// maxReduceItem and minReduceItem back Max/Min/IsMax/IsMin: spec §4.2.2
// mandates a QueryError, not a silent skip, when two values have no
// defined ordering against each other.
func maxReduceItem[I any](items []Item[I]) (Item[I], error) {
	if len(items) == 0 {
		return Item[I]{}, qerr.Query("max of an empty value stream")
	}
	best := items[0]
	for _, it := range items[1:] {
		cmp, ok := it.V.Compare(best.V)
		if !ok {
			return Item[I]{}, qerr.Query("Cannot compare attributes of data types %s and %s", it.V.TypeName(), best.V.TypeName())
		}
		if cmp > 0 {
			best = it
		}
	}
	return best, nil
}

func minReduceItem[I any](items []Item[I]) (Item[I], error) {
	if len(items) == 0 {
		return Item[I]{}, qerr.Query("min of an empty value stream")
	}
	best := items[0]
	for _, it := range items[1:] {
		cmp, ok := it.V.Compare(best.V)
		if !ok {
			return Item[I]{}, qerr.Query("Cannot compare attributes of data types %s and %s", it.V.TypeName(), best.V.TypeName())
		}
		if cmp < 0 {
			best = it
		}
	}
	return best, nil
}

func sumReduce(vs []value.Value) (value.Value, error) {
	acc := value.Int(0)
	for _, v := range vs {
		next, err := acc.Add(v)
		if err != nil {
			return value.Null(), err
		}
		acc = next
	}
	return acc, nil
}

// IsMax/IsMin filter the stream down to the element(s) equal to its max/min
// (spec §4.3's non-collapsing variant — as opposed to Max/Min which
// collapse to one scalar).
func (v *ValueOperand[I]) IsMax() *ValueOperand[I] {
	return v.isExtremum(func(c int) bool { return c == 0 }, maxReduceItem[I])
}
func (v *ValueOperand[I]) IsMin() *ValueOperand[I] {
	return v.isExtremum(func(c int) bool { return c == 0 }, minReduceItem[I])
}

func (v *ValueOperand[I]) isExtremum(keep func(cmp int) bool, fn func([]Item[I]) (Item[I], error)) *ValueOperand[I] {
	v.core.Append(func(ctx *EvalContext, in iterSeqItem[I]) (iterSeqItem[I], error) {
		items := collect(in)
		if len(items) == 0 {
			return seqOf(items), nil
		}
		extremum, err := fn(items)
		if err != nil {
			return nil, err
		}
		var out []Item[I]
		for _, it := range items {
			cmp, ok := it.V.Compare(extremum.V)
			if !ok {
				return nil, qerr.Query("Cannot compare attributes of data types %s and %s", it.V.TypeName(), extremum.V.TypeName())
			}
			if keep(cmp) {
				out = append(out, it)
			}
		}
		return seqOf(out), nil
	})
	return v
}

// ToNodes projects a value stream keyed by node index back onto a
// NodeOperand over the surviving entities, dropping the values themselves
// — the entity-preserving counterpart to NodeOperand.Attribute, so a
// value-level filter chain (is_in, starts_with, is_max, ...) can resume
// node-shaped chaining afterward (spec §4.1.2: "the full filtering algebra
// applies to all operands"). Items with no owning index (the output of an
// aggregation) are dropped, since there is no entity left to preserve.
func ToNodes(v *ValueOperand[store.NodeIndex]) *NodeOperand {
	return &NodeOperand{core: newOperand[store.NodeIndex](func(ctx *EvalContext) (iter.Seq[store.NodeIndex], error) {
		items, err := v.evaluate(ctx)
		if err != nil {
			return nil, err
		}
		var out []store.NodeIndex
		for _, it := range items {
			if it.HasIndex {
				out = append(out, it.Index)
			}
		}
		return seqOf(out), nil
	})}
}

// ToEdges is ToNodes for a value stream keyed by edge index.
func ToEdges(v *ValueOperand[store.EdgeIndex]) *EdgeOperand {
	return &EdgeOperand{core: newOperand[store.EdgeIndex](func(ctx *EvalContext) (iter.Seq[store.EdgeIndex], error) {
		items, err := v.evaluate(ctx)
		if err != nil {
			return nil, err
		}
		var out []store.EdgeIndex
		for _, it := range items {
			if it.HasIndex {
				out = append(out, it.Index)
			}
		}
		return seqOf(out), nil
	})}
}
