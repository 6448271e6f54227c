// Package value implements the polymorphic sum-type value that flows through
// the graphrecords query core: node and edge attribute values, attribute
// keys (the same sum type, spec §3.2), group keys, and intermediate results
// of arithmetic and comparison operations.
//
// A Value is one of {String, Int, Float, Bool, DateTime, Duration, Null}.
// Equality is reflexive within a variant; Int and Float compare equal after
// numeric widening. Ordering is total within a variant (Int/Float compare
// numerically); every other cross-variant comparison is undefined.
package value

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/orneryd/graphrecords/pkg/qerr"
)

// Kind tags the active variant of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindDateTime
	KindDuration
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "String"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindBool:
		return "Bool"
	case KindDateTime:
		return "DateTime"
	case KindDuration:
		return "Duration"
	default:
		return "Null"
	}
}

// Value is the tagged union described in spec §3.1. The zero Value is Null.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
	t    time.Time
	d    time.Duration
}

// AttributeKey is the same sum type as Value (spec §3.2). Keys used as
// identifiers (node index, group name, attribute name) must be non-Null in
// well-formed inputs; Null keys never participate in indexing or
// hashing-based lookup.
type AttributeKey = Value

// Constructors.

func String(s string) Value       { return Value{kind: KindString, s: s} }
func Int(i int64) Value           { return Value{kind: KindInt, i: i} }
func Float(f float64) Value       { return Value{kind: KindFloat, f: f} }
func Bool(b bool) Value           { return Value{kind: KindBool, b: b} }
func DateTime(t time.Time) Value  { return Value{kind: KindDateTime, t: t} }
func Duration(d time.Duration) Value { return Value{kind: KindDuration, d: d} }
func Null() Value                 { return Value{kind: KindNull} }

// Kind reports the active variant.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the Null variant.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Accessors. Called against the wrong Kind, each returns the zero value of
// its result type; callers branch on Kind() before accessing.

func (v Value) AsString() string         { return v.s }
func (v Value) AsInt() int64             { return v.i }
func (v Value) AsFloat() float64         { return v.f }
func (v Value) AsBool() bool             { return v.b }
func (v Value) AsDateTime() time.Time    { return v.t }
func (v Value) AsDuration() time.Duration { return v.d }

// String renders a human-readable representation, used both for display
// and as the "decimal string representation" the spec calls for when
// coercing numeric/Bool values for starts_with/ends_with/contains/slice.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindDateTime:
		return v.t.Format(time.RFC3339Nano)
	case KindDuration:
		return v.d.String()
	default:
		return "null"
	}
}

// Equal implements the equality rule of spec §3.1: reflexive within a
// variant, with Int/Float cross-variant equality after widening, and Null
// equal only to Null.
func (v Value) Equal(other Value) bool {
	if v.kind == KindNull || other.kind == KindNull {
		return v.kind == KindNull && other.kind == KindNull
	}
	if v.kind == other.kind {
		switch v.kind {
		case KindString:
			return v.s == other.s
		case KindInt:
			return v.i == other.i
		case KindFloat:
			return v.f == other.f
		case KindBool:
			return v.b == other.b
		case KindDateTime:
			return v.t.Equal(other.t)
		case KindDuration:
			return v.d == other.d
		}
	}
	if f, ok := v.numeric(); ok {
		if g, ok2 := other.numeric(); ok2 {
			return f == g
		}
	}
	return false
}

func (v Value) numeric() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// Compare orders v against other. ok is false when ordering is undefined
// (mismatched non-numeric variants, or either side Null).
func (v Value) Compare(other Value) (cmp int, ok bool) {
	if v.kind == KindNull || other.kind == KindNull {
		return 0, false
	}
	if f, fok := v.numeric(); fok {
		if g, gok := other.numeric(); gok {
			switch {
			case f < g:
				return -1, true
			case f > g:
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}
	if v.kind != other.kind {
		return 0, false
	}
	switch v.kind {
	case KindString:
		return strings.Compare(v.s, other.s), true
	case KindBool:
		if v.b == other.b {
			return 0, true
		}
		if !v.b {
			return -1, true
		}
		return 1, true
	case KindDateTime:
		switch {
		case v.t.Before(other.t):
			return -1, true
		case v.t.After(other.t):
			return 1, true
		default:
			return 0, true
		}
	case KindDuration:
		switch {
		case v.d < other.d:
			return -1, true
		case v.d > other.d:
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}

// IsStringLike reports whether v's decimal string representation may
// participate in starts_with/ends_with/contains (String, Int, Float).
func (v Value) IsStringLike() bool {
	switch v.kind {
	case KindString, KindInt, KindFloat:
		return true
	default:
		return false
	}
}

// StartsWith, EndsWith and Contains implement the predicate helpers of
// spec §4.4: defined between string-like values (numeric values coerced to
// their decimal string form), false for every other combination — never an
// error.
func (v Value) StartsWith(other Value) bool {
	if !v.IsStringLike() || !other.IsStringLike() {
		return false
	}
	return strings.HasPrefix(v.String(), other.String())
}

func (v Value) EndsWith(other Value) bool {
	if !v.IsStringLike() || !other.IsStringLike() {
		return false
	}
	return strings.HasSuffix(v.String(), other.String())
}

func (v Value) Contains(other Value) bool {
	if !v.IsStringLike() || !other.IsStringLike() {
		return false
	}
	return strings.Contains(v.String(), other.String())
}

// cannot builds the assertion-style error the spec calls for: naming both
// operands' types.
func cannot(verb string, a, b Value) *qerr.QueryError {
	return qerr.Query("cannot %s %s and %s", verb, a.kind, b.kind)
}

// Add implements spec §4.4's `+` table.
func (v Value) Add(other Value) (Value, error) {
	switch {
	case v.kind == KindString && other.kind == KindString:
		return String(v.s + other.s), nil
	case v.kind == KindInt && other.kind == KindInt:
		return Int(v.i + other.i), nil
	case v.kind == KindInt && other.kind == KindFloat:
		return Float(float64(v.i) + other.f), nil
	case v.kind == KindFloat && other.kind == KindInt:
		return Float(v.f + float64(other.i)), nil
	case v.kind == KindFloat && other.kind == KindFloat:
		return Float(v.f + other.f), nil
	case v.kind == KindDateTime && other.kind == KindDuration:
		return DateTime(v.t.Add(other.d)), nil
	case v.kind == KindDuration && other.kind == KindDateTime:
		return DateTime(other.t.Add(v.d)), nil
	case v.kind == KindDuration && other.kind == KindDuration:
		return Duration(v.d + other.d), nil
	case v.kind == KindDateTime && other.kind == KindDateTime:
		// Flagged in spec §9 (ii) as a semantically unusual behavior
		// preserved from the source: both operands are coerced to Unix
		// seconds and summed into a new DateTime at the summed epoch.
		return DateTime(time.Unix(v.t.Unix()+other.t.Unix(), 0).UTC()), nil
	default:
		return Value{}, cannot("add", v, other)
	}
}

// Sub implements spec §4.4's `-` table. Per spec §9 (i), Duration-Duration
// is true subtraction here (the source's apparent "always add" bug is not
// reproduced).
func (v Value) Sub(other Value) (Value, error) {
	switch {
	case v.kind == KindInt && other.kind == KindInt:
		return Int(v.i - other.i), nil
	case v.kind == KindInt && other.kind == KindFloat:
		return Float(float64(v.i) - other.f), nil
	case v.kind == KindFloat && other.kind == KindInt:
		return Float(v.f - float64(other.i)), nil
	case v.kind == KindFloat && other.kind == KindFloat:
		return Float(v.f - other.f), nil
	case v.kind == KindDateTime && other.kind == KindDateTime:
		return Duration(v.t.Sub(other.t)), nil
	case v.kind == KindDateTime && other.kind == KindDuration:
		return DateTime(v.t.Add(-other.d)), nil
	case v.kind == KindDuration && other.kind == KindDuration:
		return Duration(v.d - other.d), nil
	default:
		return Value{}, cannot("subtract", v, other)
	}
}

// Mul implements spec §4.4's `*` table.
func (v Value) Mul(other Value) (Value, error) {
	switch {
	case v.kind == KindInt && other.kind == KindInt:
		return Int(v.i * other.i), nil
	case v.kind == KindInt && other.kind == KindFloat:
		return Float(float64(v.i) * other.f), nil
	case v.kind == KindFloat && other.kind == KindInt:
		return Float(v.f * float64(other.i)), nil
	case v.kind == KindFloat && other.kind == KindFloat:
		return Float(v.f * other.f), nil
	case v.kind == KindString && other.kind == KindInt:
		if other.i <= 0 {
			return String(""), nil
		}
		return String(strings.Repeat(v.s, int(other.i))), nil
	case v.kind == KindDuration && other.kind == KindInt:
		return Duration(v.d * time.Duration(other.i)), nil
	default:
		return Value{}, cannot("multiply", v, other)
	}
}

// Div implements spec §4.4's `/` table. Division by zero is reported as a
// QueryError rather than propagating Inf/NaN.
func (v Value) Div(other Value) (Value, error) {
	switch {
	case v.kind == KindInt && other.kind == KindInt:
		if other.i == 0 {
			return Value{}, qerr.Query("division by zero")
		}
		return Float(float64(v.i) / float64(other.i)), nil
	case v.kind == KindInt && other.kind == KindFloat:
		if other.f == 0 {
			return Value{}, qerr.Query("division by zero")
		}
		return Float(float64(v.i) / other.f), nil
	case v.kind == KindFloat && other.kind == KindInt:
		if other.i == 0 {
			return Value{}, qerr.Query("division by zero")
		}
		return Float(v.f / float64(other.i)), nil
	case v.kind == KindFloat && other.kind == KindFloat:
		if other.f == 0 {
			return Value{}, qerr.Query("division by zero")
		}
		return Float(v.f / other.f), nil
	case v.kind == KindDateTime && other.kind == KindInt:
		if other.i == 0 {
			return Value{}, qerr.Query("division by zero")
		}
		sec := v.t.Unix()
		q := int64(math.Floor(float64(sec) / float64(other.i)))
		return DateTime(time.Unix(q, 0).UTC()), nil
	case v.kind == KindDuration && other.kind == KindInt:
		if other.i == 0 {
			return Value{}, qerr.Query("division by zero")
		}
		return Duration(v.d / time.Duration(other.i)), nil
	default:
		return Value{}, cannot("divide", v, other)
	}
}

// Pow implements spec §4.4's `pow` row.
func (v Value) Pow(other Value) (Value, error) {
	switch {
	case v.kind == KindInt && other.kind == KindInt:
		if other.i < 0 {
			return Value{}, qerr.Query("cannot raise Int to a negative Int exponent")
		}
		result := int64(1)
		for range int(other.i) {
			result *= v.i
		}
		return Int(result), nil
	case v.kind == KindInt && other.kind == KindFloat:
		return Float(math.Pow(float64(v.i), other.f)), nil
	case v.kind == KindFloat && other.kind == KindInt:
		return Float(math.Pow(v.f, float64(other.i))), nil
	case v.kind == KindFloat && other.kind == KindFloat:
		return Float(math.Pow(v.f, other.f)), nil
	default:
		return Value{}, cannot("raise to the power of", v, other)
	}
}

// Mod implements spec §4.4's `mod` row (Int/Float mixes widen to Float).
func (v Value) Mod(other Value) (Value, error) {
	switch {
	case v.kind == KindInt && other.kind == KindInt:
		if other.i == 0 {
			return Value{}, qerr.Query("division by zero")
		}
		return Int(v.i % other.i), nil
	case (v.kind == KindInt || v.kind == KindFloat) && (other.kind == KindInt || other.kind == KindFloat):
		a, _ := v.numeric()
		b, _ := other.numeric()
		if b == 0 {
			return Value{}, qerr.Query("division by zero")
		}
		return Float(math.Mod(a, b)), nil
	default:
		return Value{}, cannot("take the modulus of", v, other)
	}
}

// Unary operations. Each passes non-applicable variants through unchanged,
// per spec §4.2.2's "Unary arithmetic operations" rule, except Sqrt/Round/
// Ceil/Floor which are numeric/Float-only (still pass through unchanged).

func (v Value) Abs() Value {
	switch v.kind {
	case KindInt:
		if v.i < 0 {
			return Int(-v.i)
		}
		return v
	case KindFloat:
		return Float(math.Abs(v.f))
	default:
		return v
	}
}

func (v Value) Sqrt() Value {
	switch v.kind {
	case KindInt:
		return Float(math.Sqrt(float64(v.i)))
	case KindFloat:
		return Float(math.Sqrt(v.f))
	default:
		return v
	}
}

func (v Value) Round() Value {
	if v.kind == KindFloat {
		return Float(math.Round(v.f))
	}
	return v
}

func (v Value) Ceil() Value {
	if v.kind == KindFloat {
		return Float(math.Ceil(v.f))
	}
	return v
}

func (v Value) Floor() Value {
	if v.kind == KindFloat {
		return Float(math.Floor(v.f))
	}
	return v
}

func (v Value) Trim() Value {
	if v.kind == KindString {
		return String(strings.TrimSpace(v.s))
	}
	return v
}

func (v Value) TrimStart() Value {
	if v.kind == KindString {
		return String(strings.TrimLeft(v.s, " \t\n\r"))
	}
	return v
}

func (v Value) TrimEnd() Value {
	if v.kind == KindString {
		return String(strings.TrimRight(v.s, " \t\n\r"))
	}
	return v
}

func (v Value) Lowercase() Value {
	if v.kind == KindString {
		return String(strings.ToLower(v.s))
	}
	return v
}

func (v Value) Uppercase() Value {
	if v.kind == KindString {
		return String(strings.ToUpper(v.s))
	}
	return v
}

// Slice implements spec §4.4's `slice(range)`: native on String, and as a
// convenience on Int/Float/Bool via their decimal/boolean string form.
func (v Value) Slice(lo, hi int) (Value, error) {
	var s string
	switch v.kind {
	case KindString, KindInt, KindFloat, KindBool:
		s = v.String()
	default:
		return Value{}, qerr.Query("cannot slice %s", v.kind)
	}
	if lo < 0 {
		lo = 0
	}
	if hi > len(s) {
		hi = len(s)
	}
	if lo > hi {
		lo = hi
	}
	return String(s[lo:hi]), nil
}

// TypeName is used by is_string/is_int filters and by error messages.
func (v Value) TypeName() string { return v.kind.String() }
