package query

import "github.com/orneryd/graphrecords/pkg/value"

// Item is a value (or, when wrapped by an AttributeOperand, an attribute
// key) alongside the entity index it was read from. HasIndex is false for
// the "WithoutIndex" operand variants of spec §4.2 — the ones produced by
// an aggregation that collapses many entities into one scalar with no
// single owning index left to report.
type Item[I any] struct {
	Index    I
	HasIndex bool
	V        value.Value
}

func indexed[I any](i I, v value.Value) Item[I] {
	return Item[I]{Index: i, HasIndex: true, V: v}
}

func unindexed[I any](v value.Value) Item[I] {
	return Item[I]{V: v}
}

// AttrList is the set of attribute keys a single entity carries, as
// produced by the AttributesTree operand (spec §4.2: ".attributes()").
type AttrList[I any] struct {
	Index    I
	HasIndex bool
	Keys     []value.AttributeKey
}
