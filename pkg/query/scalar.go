package query

import "github.com/orneryd/graphrecords/pkg/value"

// ScalarSource is anything a filter or arithmetic builder method can
// compare against or combine with: a literal value, or another operand
// evaluated backward down to a single value (spec §4.2.2: "filters with a
// single comparison operand").
type ScalarSource interface {
	scalarValue(ctx *EvalContext) (value.Value, bool, error)
}

// Literal wraps a concrete value.Value so it satisfies ScalarSource and
// SetSource without needing a sub-operand evaluation.
type Literal struct{ V value.Value }

func (l Literal) scalarValue(*EvalContext) (value.Value, bool, error) { return l.V, true, nil }
func (l Literal) scalarSet(*EvalContext) ([]value.Value, error)       { return []value.Value{l.V}, nil }

// SetSource is anything is_in/is_not_in can test membership against: a
// literal set of values, or another operand evaluated backward and
// collected in full (spec §4.2.2).
type SetSource interface {
	scalarSet(ctx *EvalContext) ([]value.Value, error)
}

// LiteralSet wraps a fixed list of values.
type LiteralSet []value.Value

func (s LiteralSet) scalarSet(*EvalContext) ([]value.Value, error) { return []value.Value(s), nil }

func containsValue(set []value.Value, v value.Value) bool {
	for _, s := range set {
		if s.Equal(v) {
			return true
		}
	}
	return false
}
