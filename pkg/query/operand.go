package query

import (
	"iter"
	"sync"
)

// Operation is a single pipeline stage: given the elements produced so far
// (or, for the first stage, the operand's backward-evaluated source), it
// returns the elements that survive (spec §4: filtering, projection and
// aggregation operations are all expressed this way).
//
// The generic parameter E ranges over every element payload the operand
// tree carries: store.NodeIndex, store.EdgeIndex, Item[I] (a value or
// attribute key alongside its owning index), or AttrList[I] (the list of
// attribute keys an entity carries). One engine replaces the eight
// near-duplicate operand kinds of the system this was distilled from
// (Node/Edge/NodeIndices/EdgeIndices/...) — see DESIGN.md's note on this
// Operand[E] decision.
type Operation[E any] func(ctx *EvalContext, in iter.Seq[E]) (iter.Seq[E], error)

// Operand is the generic, shared-mutable pipeline node (spec §5: "operand
// nodes are shared, mutable, reference-counted structures; appending an
// operation mutates the node"). Two handles wrapping the same *Operand[E]
// see each other's appended operations; DeepClone breaks that sharing.
//
// The zero value is not usable; construct with newOperand.
type Operand[E any] struct {
	mu  sync.RWMutex
	ops []Operation[E]

	// backward produces the operand's un-filtered input, either by reading
	// the store directly (a root operand) or by deriving it from a parent
	// operand of a different element type (a projection). It is set once
	// at construction and never mutated, so it needs no lock of its own.
	backward func(ctx *EvalContext) (iter.Seq[E], error)
}

func newOperand[E any](backward func(ctx *EvalContext) (iter.Seq[E], error)) *Operand[E] {
	return &Operand[E]{backward: backward}
}

// Append pushes op onto the end of the pipeline and returns the receiver,
// so builder methods can mutate-and-return in one step (spec §5's
// "append-operation" primitive).
func (o *Operand[E]) Append(op Operation[E]) *Operand[E] {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ops = append(o.ops, op)
	return o
}

// snapshot copies the current op list under a read lock so evaluation never
// races a concurrent Append on the same node. The lock is released before
// the pipeline runs, so an Append made while an evaluation is in flight
// neither blocks nor panics: it succeeds, and that evaluation does not see
// the new operation.
func (o *Operand[E]) snapshot() []Operation[E] {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]Operation[E], len(o.ops))
	copy(out, o.ops)
	return out
}

// EvaluateBackward runs the operand's own source function, then its
// pipeline, against ctx — the entry point used when this operand is the
// root of (or has no external feed into) the current evaluation.
func (o *Operand[E]) EvaluateBackward(ctx *EvalContext) (iter.Seq[E], error) {
	seq, err := o.backward(ctx)
	if err != nil {
		return nil, err
	}
	return o.EvaluateForward(ctx, seq)
}

// EvaluateForward runs the operand's pipeline against an externally
// supplied input sequence — used when a parent operand is feeding this one
// (e.g. a Group's per-partition sub-pipeline, spec §4.6).
func (o *Operand[E]) EvaluateForward(ctx *EvalContext, in iter.Seq[E]) (iter.Seq[E], error) {
	ops := o.snapshot()
	seq := in
	for _, op := range ops {
		var err error
		seq, err = op(ctx, seq)
		if err != nil {
			return nil, err
		}
	}
	return seq, nil
}

// StageCount reports how many operations are currently appended — used by
// pkg/overview to render a pipeline's shape without evaluating it.
func (o *Operand[E]) StageCount() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.ops)
}

// DeepClone returns an operand with the same source and an independent
// copy of the current op list: further Appends on either handle are not
// visible to the other (spec §4.7's either_or/exclude fork a pipeline
// before diverging it two ways).
func (o *Operand[E]) DeepClone() *Operand[E] {
	ops := o.snapshot()
	return &Operand[E]{backward: o.backward, ops: append([]Operation[E](nil), ops...)}
}

// collect drains a sequence into a slice. Used by materializing operations
// (is_max, is_min, group_by, aggregations) that must see every element
// before producing a result (spec §4.3, §4.6).
func collect[E any](seq iter.Seq[E]) []E {
	var out []E
	seq(func(e E) bool {
		out = append(out, e)
		return true
	})
	return out
}

// seqOf turns a slice into an iter.Seq.
func seqOf[E any](xs []E) iter.Seq[E] {
	return func(yield func(E) bool) {
		for _, x := range xs {
			if !yield(x) {
				return
			}
		}
	}
}

// filterSeq is the common shape behind every predicate-based Operation. It
// materializes eagerly rather than lazily skipping: iter.Seq has no error
// channel of its own, so a predicate error (e.g. a type mismatch in a
// comparison) must short-circuit the whole operation rather than surface
// mid-iteration.
func filterSeq[E any](in iter.Seq[E], keep func(E) (bool, error)) (iter.Seq[E], error) {
	var out []E
	var outerErr error
	in(func(e E) bool {
		ok, err := keep(e)
		if err != nil {
			outerErr = err
			return false
		}
		if ok {
			out = append(out, e)
		}
		return true
	})
	if outerErr != nil {
		return nil, outerErr
	}
	return seqOf(out), nil
}
