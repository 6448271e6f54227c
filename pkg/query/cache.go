package query

import (
	"github.com/dgraph-io/ristretto/v2"

	"github.com/orneryd/graphrecords/pkg/value"
)

// scalarCache memoizes the result of evaluating a comparison sub-operand
// backward, keyed by the string resolveScalar builds from the operand's
// pointer and type. Each filter stage resolves its comparison operand once
// before scanning its input; the cache lets a sub-operand such as
// ".attribute(\"age\").max()" that is reused by several filters or
// Selection columns under one EvalContext be evaluated only once, same
// role ristretto plays for the teacher's page cache.
type scalarCache struct {
	store *ristretto.Cache[string, value.Value]
}

func newScalarCache() *scalarCache {
	c, err := ristretto.NewCache(&ristretto.Config[string, value.Value]{
		NumCounters: 1e5,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		// Cache construction only fails on invalid config constants above;
		// fall back to an always-miss cache rather than panic mid-query.
		return &scalarCache{}
	}
	return &scalarCache{store: c}
}

func (c *scalarCache) get(key string) (value.Value, bool) {
	if c == nil || c.store == nil {
		return value.Value{}, false
	}
	return c.store.Get(key)
}

func (c *scalarCache) set(key string, v value.Value) {
	if c == nil || c.store == nil {
		return
	}
	c.store.Set(key, v, 1)
}

// cachedScalar wraps a ScalarSource so repeated resolveScalar calls within
// one Evaluate reuse the first computed value instead of re-running the
// sub-operand's whole pipeline.
type cachedScalar struct {
	key   string
	inner ScalarSource
}

// Cached wraps src so its value is computed once per EvalContext-scoped
// cache and reused thereafter, keyed by key. resolveScalar (pkg/query/
// value_operand.go) wraps every comparison operand with this automatically,
// keyed by the operand's own identity; exported so a caller building its
// own ScalarSource outside the builder API can opt into the same caching.
func Cached(key string, src ScalarSource) ScalarSource {
	return cachedScalar{key: key, inner: src}
}

func (c cachedScalar) scalarValue(ctx *EvalContext) (value.Value, bool, error) {
	if v, ok := ctx.cache.get(c.key); ok {
		return v, true, nil
	}
	v, ok, err := c.inner.scalarValue(ctx)
	if err != nil || !ok {
		return v, ok, err
	}
	ctx.cache.set(c.key, v)
	return v, true, nil
}
