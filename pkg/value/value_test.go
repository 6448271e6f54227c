package value

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualCrossVariant(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Value
		expected bool
	}{
		{"int-int equal", Int(5), Int(5), true},
		{"int-float widen equal", Int(5), Float(5.0), true},
		{"float-int widen equal", Float(5.0), Int(5), true},
		{"int-float not equal", Int(5), Float(5.5), false},
		{"string-int never equal", Int(5), String("5"), false},
		{"null-null equal", Null(), Null(), true},
		{"null-int not equal", Null(), Int(0), false},
		{"bool-bool", Bool(true), Bool(true), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.Equal(tt.b))
		})
	}
}

func TestCompareUndefined(t *testing.T) {
	_, ok := String("a").Compare(Int(1))
	assert.False(t, ok, "string vs int ordering must be undefined")

	_, ok = Null().Compare(Int(1))
	assert.False(t, ok, "Null has no ordering")

	cmp, ok := Int(1).Compare(Float(2.5))
	require.True(t, ok)
	assert.Equal(t, -1, cmp)
}

func TestAddTable(t *testing.T) {
	v, err := Int(2).Add(Int(3))
	require.NoError(t, err)
	assert.Equal(t, Int(5), v)

	v, err = Int(2).Add(Float(1.5))
	require.NoError(t, err)
	assert.Equal(t, Float(3.5), v)

	v, err = String("foo").Add(String("bar"))
	require.NoError(t, err)
	assert.Equal(t, String("foobar"), v)

	d := time.Hour
	v, err = Duration(d).Add(Duration(d))
	require.NoError(t, err)
	assert.Equal(t, Duration(2*time.Hour), v)

	_, err = Bool(true).Add(Int(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bool")
	assert.Contains(t, err.Error(), "Int")
}

func TestSubDurationIsSubtraction(t *testing.T) {
	v, err := Duration(3 * time.Hour).Sub(Duration(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, Duration(2*time.Hour), v)
}

func TestMulStringRepeat(t *testing.T) {
	v, err := String("ab").Mul(Int(3))
	require.NoError(t, err)
	assert.Equal(t, String("ababab"), v)

	v, err = String("ab").Mul(Int(0))
	require.NoError(t, err)
	assert.Equal(t, String(""), v)

	v, err = String("ab").Mul(Int(-2))
	require.NoError(t, err)
	assert.Equal(t, String(""), v)
}

func TestDivByZero(t *testing.T) {
	_, err := Int(4).Div(Int(0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "division by zero")
}

func TestDivPromotesToFloat(t *testing.T) {
	v, err := Int(5).Div(Int(2))
	require.NoError(t, err)
	assert.Equal(t, Float(2.5), v)
}

func TestPowNonNegativeIntExponent(t *testing.T) {
	v, err := Int(2).Pow(Int(10))
	require.NoError(t, err)
	assert.Equal(t, Int(1024), v)

	_, err = Int(2).Pow(Int(-1))
	require.Error(t, err)
}

func TestModMixedWidensToFloat(t *testing.T) {
	v, err := Float(5.5).Mod(Int(2))
	require.NoError(t, err)
	assert.Equal(t, Float(1.5), v)
}

func TestUnaryPassThrough(t *testing.T) {
	assert.Equal(t, String("hello"), String("hello").Abs())
	assert.Equal(t, Int(5), Int(5).Trim())
	assert.Equal(t, Int(5), Int(-5).Abs())
	assert.Equal(t, Float(5.0), Float(-5.0).Abs())
}

func TestStringLikePredicates(t *testing.T) {
	assert.True(t, String("hello world").StartsWith(String("hello")))
	assert.True(t, Int(12345).StartsWith(String("123")))
	assert.False(t, Bool(true).StartsWith(String("t")))
	assert.False(t, DateTime(time.Now()).Contains(String("2024")))
}

func TestSlice(t *testing.T) {
	v, err := String("hello").Slice(1, 3)
	require.NoError(t, err)
	assert.Equal(t, String("el"), v)

	v, err = Int(12345).Slice(0, 2)
	require.NoError(t, err)
	assert.Equal(t, String("12"), v)
}
