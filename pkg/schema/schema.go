// Package schema infers and (optionally) enforces a shape over a graph's
// attribute keys: which value.Kind(s) each attribute key has been observed
// with per Group, unique constraints, and equality-lookup property indexes.
//
// The query core (pkg/query) never consults this package — spec §6's "the
// core neither enforces nor consults the schema" — and neither store
// implementation calls it either: a caller (the CLI's overview command, for
// example) drives every entry point explicitly. Adapted from the teacher's
// apoc/schema function surface and
// pkg/storage/schema.go's SchemaManager (unique constraints + property
// indexes), generalized from Neo4j-style labels to graphrecords' Group.
package schema

import (
	"fmt"
	"sync"

	"github.com/orneryd/graphrecords/pkg/store"
	"github.com/orneryd/graphrecords/pkg/value"
)

// Manager tracks inferred attribute-key shapes and enforces any unique
// constraints and property indexes registered against it. A Manager is
// safe for concurrent use.
type Manager struct {
	mu sync.RWMutex

	// kinds[group][key] is the set of value.Kind values this key has been
	// observed with for nodes/edges in that group (spec's "attribute
	// value indices" generalized to a type inference pass).
	nodeKinds map[store.Group]map[value.AttributeKey]map[value.Kind]struct{}
	edgeKinds map[store.Group]map[value.AttributeKey]map[value.Kind]struct{}

	uniqueConstraints map[constraintKey]*uniqueConstraint
	propertyIndexes   map[constraintKey]*propertyIndex
}

type constraintKey struct {
	group store.Group
	key   value.AttributeKey
}

type uniqueConstraint struct {
	mu     sync.RWMutex
	values map[string]store.NodeIndex // canonical value string -> owning node
}

type propertyIndex struct {
	mu     sync.RWMutex
	values map[string][]store.NodeIndex // canonical value string -> matching nodes
}

// New builds an empty schema manager.
func New() *Manager {
	return &Manager{
		nodeKinds:         make(map[store.Group]map[value.AttributeKey]map[value.Kind]struct{}),
		edgeKinds:         make(map[store.Group]map[value.AttributeKey]map[value.Kind]struct{}),
		uniqueConstraints: make(map[constraintKey]*uniqueConstraint),
		propertyIndexes:   make(map[constraintKey]*propertyIndex),
	}
}

func canonicalValue(v value.Value) string {
	return fmt.Sprintf("%d:%s", v.Kind(), v.String())
}

// ObserveNode folds a node's attributes into the inferred per-group kind
// sets. Call this from AddNode/SetNodeAttribute so the inferred schema
// stays current.
func (m *Manager) ObserveNode(groups []store.Group, attrs store.Attributes) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range groups {
		m.observe(m.nodeKinds, g, attrs)
	}
}

// ObserveEdge folds an edge's attributes into the inferred per-group kind
// sets.
func (m *Manager) ObserveEdge(groups []store.Group, attrs store.Attributes) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range groups {
		m.observe(m.edgeKinds, g, attrs)
	}
}

func (m *Manager) observe(into map[store.Group]map[value.AttributeKey]map[value.Kind]struct{}, g store.Group, attrs store.Attributes) {
	byKey, ok := into[g]
	if !ok {
		byKey = make(map[value.AttributeKey]map[value.Kind]struct{})
		into[g] = byKey
	}
	for k, v := range attrs {
		kinds, ok := byKey[k]
		if !ok {
			kinds = make(map[value.Kind]struct{})
			byKey[k] = kinds
		}
		kinds[v.Kind()] = struct{}{}
	}
}

// NodeAttributeKinds reports the distinct value.Kind(s) observed for key
// across every node seen in group g.
func (m *Manager) NodeAttributeKinds(g store.Group, key value.AttributeKey) []value.Kind {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return kindSlice(m.nodeKinds[g][key])
}

// EdgeAttributeKinds reports the distinct value.Kind(s) observed for key
// across every edge seen in group g.
func (m *Manager) EdgeAttributeKinds(g store.Group, key value.AttributeKey) []value.Kind {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return kindSlice(m.edgeKinds[g][key])
}

// ObservedNodeKeys returns every attribute key observed on a node in group
// g, for callers (pkg/overview) that want to enumerate a group's inferred
// shape without already knowing its key names.
func (m *Manager) ObservedNodeKeys(g store.Group) []value.AttributeKey {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return keySlice(m.nodeKinds[g])
}

// ObservedEdgeKeys returns every attribute key observed on an edge in group g.
func (m *Manager) ObservedEdgeKeys(g store.Group) []value.AttributeKey {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return keySlice(m.edgeKinds[g])
}

func keySlice(byKey map[value.AttributeKey]map[value.Kind]struct{}) []value.AttributeKey {
	out := make([]value.AttributeKey, 0, len(byKey))
	for k := range byKey {
		out = append(out, k)
	}
	return out
}

func kindSlice(set map[value.Kind]struct{}) []value.Kind {
	out := make([]value.Kind, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

// IsPolymorphic reports whether key has been observed with more than one
// value.Kind within group g — a signal the inferred schema is not clean,
// surfaced by pkg/overview.
func (m *Manager) IsPolymorphic(g store.Group, key value.AttributeKey) bool {
	return len(m.NodeAttributeKinds(g, key)) > 1
}

// AddUniqueConstraint registers (g, key) as requiring unique node attribute
// values within group g. Idempotent: registering twice is a no-op.
func (m *Manager) AddUniqueConstraint(g store.Group, key value.AttributeKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ck := constraintKey{group: g, key: key}
	if _, ok := m.uniqueConstraints[ck]; ok {
		return
	}
	m.uniqueConstraints[ck] = &uniqueConstraint{values: make(map[string]store.NodeIndex)}
}

// CheckUnique returns an error if v already belongs to a different node
// than exclude under any unique constraint registered for (g, key).
func (m *Manager) CheckUnique(g store.Group, key value.AttributeKey, v value.Value, exclude store.NodeIndex) error {
	m.mu.RLock()
	c, ok := m.uniqueConstraints[constraintKey{group: g, key: key}]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if owner, found := c.values[canonicalValue(v)]; found && owner != exclude {
		return fmt.Errorf("schema: unique constraint violated: group %q attribute %q already has value %s on node %d", g, key, v, owner)
	}
	return nil
}

// RegisterUnique records that ni now owns v for the unique constraint on
// (g, key), if one is registered.
func (m *Manager) RegisterUnique(g store.Group, key value.AttributeKey, v value.Value, ni store.NodeIndex) {
	m.mu.RLock()
	c, ok := m.uniqueConstraints[constraintKey{group: g, key: key}]
	m.mu.RUnlock()
	if !ok {
		return
	}
	c.mu.Lock()
	c.values[canonicalValue(v)] = ni
	c.mu.Unlock()
}

// UnregisterUnique releases v from the unique constraint on (g, key), if
// one is registered — called on node removal or attribute overwrite.
func (m *Manager) UnregisterUnique(g store.Group, key value.AttributeKey, v value.Value) {
	m.mu.RLock()
	c, ok := m.uniqueConstraints[constraintKey{group: g, key: key}]
	m.mu.RUnlock()
	if !ok {
		return
	}
	c.mu.Lock()
	delete(c.values, canonicalValue(v))
	c.mu.Unlock()
}

// AddPropertyIndex registers (g, key) for O(1) equality lookup via Lookup,
// instead of the query core's default O(n) attribute scan.
func (m *Manager) AddPropertyIndex(g store.Group, key value.AttributeKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ck := constraintKey{group: g, key: key}
	if _, ok := m.propertyIndexes[ck]; ok {
		return
	}
	m.propertyIndexes[ck] = &propertyIndex{values: make(map[string][]store.NodeIndex)}
}

// IndexInsert records that ni has value v for (g, key), if a property
// index is registered for it.
func (m *Manager) IndexInsert(g store.Group, key value.AttributeKey, v value.Value, ni store.NodeIndex) {
	m.mu.RLock()
	idx, ok := m.propertyIndexes[constraintKey{group: g, key: key}]
	m.mu.RUnlock()
	if !ok {
		return
	}
	idx.mu.Lock()
	ck := canonicalValue(v)
	idx.values[ck] = appendUniqueNode(idx.values[ck], ni)
	idx.mu.Unlock()
}

// IndexDelete removes ni from the (g, key) property index's entry for v.
func (m *Manager) IndexDelete(g store.Group, key value.AttributeKey, v value.Value, ni store.NodeIndex) {
	m.mu.RLock()
	idx, ok := m.propertyIndexes[constraintKey{group: g, key: key}]
	m.mu.RUnlock()
	if !ok {
		return
	}
	idx.mu.Lock()
	ck := canonicalValue(v)
	idx.values[ck] = removeNode(idx.values[ck], ni)
	idx.mu.Unlock()
}

// Lookup returns every node index indexed against (g, key) == v, or
// (nil, false) if no property index is registered for (g, key).
func (m *Manager) Lookup(g store.Group, key value.AttributeKey, v value.Value) ([]store.NodeIndex, bool) {
	m.mu.RLock()
	idx, ok := m.propertyIndexes[constraintKey{group: g, key: key}]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	nodes := idx.values[canonicalValue(v)]
	out := make([]store.NodeIndex, len(nodes))
	copy(out, nodes)
	return out, true
}

func appendUniqueNode(nodes []store.NodeIndex, ni store.NodeIndex) []store.NodeIndex {
	for _, n := range nodes {
		if n == ni {
			return nodes
		}
	}
	return append(nodes, ni)
}

func removeNode(nodes []store.NodeIndex, ni store.NodeIndex) []store.NodeIndex {
	out := nodes[:0]
	for _, n := range nodes {
		if n != ni {
			out = append(out, n)
		}
	}
	return out
}
