package query

import (
	"github.com/orneryd/graphrecords/pkg/config"
	"github.com/orneryd/graphrecords/pkg/store"
)

// EvalContext carries the store an operand tree is evaluated against, plus
// the scalar-subquery cache (pkg/query/cache.go) that backs repeated
// backward evaluation of comparison sub-operands (spec §4.2.2: "Filters
// with a single comparison operand: evaluate the comparison operand
// backward against the store").
//
// A single EvalContext must not be shared across concurrent Evaluate
// calls on the same Selection (spec §5): callers either serialize
// evaluation or construct a fresh context (and, if sharing a tree, a deep
// clone of it) per call.
type EvalContext struct {
	Store store.Store
	cache *scalarCache
}

// NewContext builds an evaluation context over s. Scalar-subquery caching
// is enabled when config.IsScalarCacheEnabled() reports true; otherwise
// every comparison operand is evaluated afresh.
func NewContext(s store.Store) *EvalContext {
	ctx := &EvalContext{Store: s}
	if config.IsScalarCacheEnabled() {
		ctx.cache = newScalarCache()
	}
	return ctx
}
