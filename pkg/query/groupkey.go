package query

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/orneryd/graphrecords/pkg/value"
)

// GroupKey is the discriminator value a GroupBy partitions on (spec §4.6):
// either a raw index (grouping edges by an endpoint node), an attribute
// value (possibly absent, for optional attributes), or a Pair combining
// two keys (composite grouping, e.g. "by (source, attribute)"). Since Go
// forbids a struct containing itself by value, Pair holds a pointer to a
// fixed-size array of the two component keys.
type GroupKey struct {
	isIndex  bool
	index    uint64
	hasValue bool
	val      value.Value
	pair     *[2]GroupKey
}

// IndexKey builds a GroupKey from a raw node/edge index.
func IndexKey(i uint64) GroupKey { return GroupKey{isIndex: true, index: i} }

// ValueKey builds a GroupKey from a present attribute value.
func ValueKey(v value.Value) GroupKey { return GroupKey{hasValue: true, val: v} }

// AbsentKey builds a GroupKey representing a missing optional attribute —
// its own partition, distinct from any present value (spec §4.6's
// "entities lacking the grouped attribute form their own partition").
func AbsentKey() GroupKey { return GroupKey{} }

// PairKey builds a composite GroupKey from two component keys.
func PairKey(a, b GroupKey) GroupKey { return GroupKey{pair: &[2]GroupKey{a, b}} }

// canonical renders a GroupKey into a string that is equal for two keys
// iff the keys are semantically equal — used as the input to the xxhash
// bucketing below.
func (k GroupKey) canonical() string {
	var b strings.Builder
	k.writeTo(&b)
	return b.String()
}

func (k GroupKey) writeTo(b *strings.Builder) {
	switch {
	case k.pair != nil:
		b.WriteByte('(')
		k.pair[0].writeTo(b)
		b.WriteByte(',')
		k.pair[1].writeTo(b)
		b.WriteByte(')')
	case k.isIndex:
		b.WriteByte('#')
		b.WriteString(strconv.FormatUint(k.index, 10))
	case k.hasValue:
		b.WriteByte('=')
		b.WriteString(k.val.Kind().String())
		b.WriteByte(':')
		b.WriteString(k.val.String())
	default:
		b.WriteString("<absent>")
	}
}

// bucket is the hash-bucketed home for one or more GroupKeys that collide
// under xxhash — partitions are kept in first-insertion order within a
// bucket and compared by their canonical string on lookup, so a hash
// collision never merges two distinct partitions.
type bucket[E any] struct {
	key   GroupKey
	canon string
	items []E
}

// orderedPartitions accumulates elements into insertion-ordered partitions
// keyed by GroupKey, using xxhash.Sum64 of the canonical form as the map
// bucket and the canonical string itself to break collisions.
type orderedPartitions[E any] struct {
	order   []uint64
	buckets map[uint64][]*bucket[E]
}

func newOrderedPartitions[E any]() *orderedPartitions[E] {
	return &orderedPartitions[E]{buckets: make(map[uint64][]*bucket[E])}
}

func (p *orderedPartitions[E]) add(k GroupKey, e E) {
	canon := k.canonical()
	h := xxhash.Sum64String(canon)
	for _, bk := range p.buckets[h] {
		if bk.canon == canon {
			bk.items = append(bk.items, e)
			return
		}
	}
	nb := &bucket[E]{key: k, canon: canon, items: []E{e}}
	if _, ok := p.buckets[h]; !ok {
		p.order = append(p.order, h)
	}
	p.buckets[h] = append(p.buckets[h], nb)
}

// partitions returns the accumulated partitions in first-insertion order.
// p.order holds each distinct hash exactly once (appended when its first
// bucket is created), so walking it and flattening every bucket under
// that hash visits every partition exactly once.
func (p *orderedPartitions[E]) partitions() []*bucket[E] {
	var out []*bucket[E]
	for _, h := range p.order {
		out = append(out, p.buckets[h]...)
	}
	return out
}
