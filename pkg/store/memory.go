package store

import (
	"iter"
	"sync"

	"github.com/orneryd/graphrecords/pkg/qerr"
	"github.com/orneryd/graphrecords/pkg/value"
)

// Memory is a thread-safe in-memory Store/Mutable implementation, adapted
// from the teacher's storage.MemoryEngine: an adjacency structure plus
// per-group indexes, guarded by a single sync.RWMutex.
//
// Use cases: unit tests, small graphs that fit in RAM, and as the target
// of pkg/ioxport imports before (optionally) persisting to a Badger-backed
// Store.
type Memory struct {
	mu sync.RWMutex

	nodes map[NodeIndex]*nodeRecord
	edges map[EdgeIndex]*edgeRecord

	nextNode NodeIndex
	nextEdge EdgeIndex

	groupNodes map[Group]map[NodeIndex]struct{}
	groupEdges map[Group]map[EdgeIndex]struct{}

	outgoing map[NodeIndex]map[EdgeIndex]struct{}
	incoming map[NodeIndex]map[EdgeIndex]struct{}
}

type nodeRecord struct {
	attrs  Attributes
	groups []Group
}

type edgeRecord struct {
	source, target NodeIndex
	attrs           Attributes
	groups          []Group
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		nodes:      make(map[NodeIndex]*nodeRecord),
		edges:      make(map[EdgeIndex]*edgeRecord),
		groupNodes: make(map[Group]map[NodeIndex]struct{}),
		groupEdges: make(map[Group]map[EdgeIndex]struct{}),
		outgoing:   make(map[NodeIndex]map[EdgeIndex]struct{}),
		incoming:   make(map[NodeIndex]map[EdgeIndex]struct{}),
	}
}

// AddNode inserts a node with freshly allocated NodeIndex and returns it.
func (m *Memory) AddNode(attrs Attributes, groups ...Group) (NodeIndex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ni := m.nextNode
	m.nextNode++

	m.nodes[ni] = &nodeRecord{attrs: attrs.Clone(), groups: append([]Group(nil), groups...)}
	for _, g := range groups {
		m.indexNodeGroup(g, ni)
	}
	return ni, nil
}

func (m *Memory) indexNodeGroup(g Group, ni NodeIndex) {
	set, ok := m.groupNodes[g]
	if !ok {
		set = make(map[NodeIndex]struct{})
		m.groupNodes[g] = set
	}
	set[ni] = struct{}{}
}

func (m *Memory) indexEdgeGroup(g Group, ei EdgeIndex) {
	set, ok := m.groupEdges[g]
	if !ok {
		set = make(map[EdgeIndex]struct{})
		m.groupEdges[g] = set
	}
	set[ei] = struct{}{}
}

// AddEdge inserts a directed edge between two existing nodes.
func (m *Memory) AddEdge(source, target NodeIndex, attrs Attributes, groups ...Group) (EdgeIndex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.nodes[source]; !ok {
		return 0, qerr.Index("edge source node %d not found", source)
	}
	if _, ok := m.nodes[target]; !ok {
		return 0, qerr.Index("edge target node %d not found", target)
	}

	ei := m.nextEdge
	m.nextEdge++

	m.edges[ei] = &edgeRecord{source: source, target: target, attrs: attrs.Clone(), groups: append([]Group(nil), groups...)}
	for _, g := range groups {
		m.indexEdgeGroup(g, ei)
	}

	if m.outgoing[source] == nil {
		m.outgoing[source] = make(map[EdgeIndex]struct{})
	}
	m.outgoing[source][ei] = struct{}{}

	if m.incoming[target] == nil {
		m.incoming[target] = make(map[EdgeIndex]struct{})
	}
	m.incoming[target][ei] = struct{}{}

	return ei, nil
}

// RemoveNode deletes a node and every edge incident to it.
func (m *Memory) RemoveNode(ni NodeIndex) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.nodes[ni]
	if !ok {
		return qerr.Index("node %d not found", ni)
	}
	for _, g := range rec.groups {
		delete(m.groupNodes[g], ni)
	}

	for ei := range m.outgoing[ni] {
		m.removeEdgeLocked(ei)
	}
	for ei := range m.incoming[ni] {
		m.removeEdgeLocked(ei)
	}
	delete(m.outgoing, ni)
	delete(m.incoming, ni)
	delete(m.nodes, ni)
	return nil
}

// RemoveEdge deletes a single edge.
func (m *Memory) RemoveEdge(ei EdgeIndex) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.edges[ei]; !ok {
		return qerr.Index("edge %d not found", ei)
	}
	m.removeEdgeLocked(ei)
	return nil
}

func (m *Memory) removeEdgeLocked(ei EdgeIndex) {
	rec, ok := m.edges[ei]
	if !ok {
		return
	}
	for _, g := range rec.groups {
		delete(m.groupEdges[g], ei)
	}
	delete(m.outgoing[rec.source], ei)
	delete(m.incoming[rec.target], ei)
	delete(m.edges, ei)
}

// SetNodeAttribute sets (or overwrites) a single attribute on a node.
func (m *Memory) SetNodeAttribute(ni NodeIndex, key value.AttributeKey, v value.Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.nodes[ni]
	if !ok {
		return qerr.Index("node %d not found", ni)
	}
	if rec.attrs == nil {
		rec.attrs = make(Attributes)
	}
	rec.attrs[key] = v
	return nil
}

// SetEdgeAttribute sets (or overwrites) a single attribute on an edge.
func (m *Memory) SetEdgeAttribute(ei EdgeIndex, key value.AttributeKey, v value.Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.edges[ei]
	if !ok {
		return qerr.Index("edge %d not found", ei)
	}
	if rec.attrs == nil {
		rec.attrs = make(Attributes)
	}
	rec.attrs[key] = v
	return nil
}

// NodeIndices streams every node index in insertion order.
func (m *Memory) NodeIndices() iter.Seq[NodeIndex] {
	return func(yield func(NodeIndex) bool) {
		m.mu.RLock()
		indices := make([]NodeIndex, 0, len(m.nodes))
		for ni := range m.nodes {
			indices = append(indices, ni)
		}
		m.mu.RUnlock()
		sortUint64s(indices)
		for _, ni := range indices {
			if !yield(ni) {
				return
			}
		}
	}
}

// EdgeIndices streams every edge index in insertion order.
func (m *Memory) EdgeIndices() iter.Seq[EdgeIndex] {
	return func(yield func(EdgeIndex) bool) {
		m.mu.RLock()
		indices := make([]EdgeIndex, 0, len(m.edges))
		for ei := range m.edges {
			indices = append(indices, ei)
		}
		m.mu.RUnlock()
		sortUint64sEdge(indices)
		for _, ei := range indices {
			if !yield(ei) {
				return
			}
		}
	}
}

func sortUint64s(xs []NodeIndex) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

func sortUint64sEdge(xs []EdgeIndex) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

// NodeAttributes returns a copy of a node's attribute map.
func (m *Memory) NodeAttributes(ni NodeIndex) (Attributes, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.nodes[ni]
	if !ok {
		return nil, qerr.Index("node %d not found", ni)
	}
	return rec.attrs.Clone(), nil
}

// EdgeAttributes returns a copy of an edge's attribute map.
func (m *Memory) EdgeAttributes(ei EdgeIndex) (Attributes, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.edges[ei]
	if !ok {
		return nil, qerr.Index("edge %d not found", ei)
	}
	return rec.attrs.Clone(), nil
}

// EdgeEndpoints returns an edge's (source, target) node indices.
func (m *Memory) EdgeEndpoints(ei EdgeIndex) (NodeIndex, NodeIndex, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.edges[ei]
	if !ok {
		return 0, 0, qerr.Index("edge %d not found", ei)
	}
	return rec.source, rec.target, nil
}

// GroupsOfNode streams the groups a node belongs to.
func (m *Memory) GroupsOfNode(ni NodeIndex) iter.Seq[Group] {
	return func(yield func(Group) bool) {
		m.mu.RLock()
		rec, ok := m.nodes[ni]
		var groups []Group
		if ok {
			groups = append(groups, rec.groups...)
		}
		m.mu.RUnlock()
		for _, g := range groups {
			if !yield(g) {
				return
			}
		}
	}
}

// GroupsOfEdge streams the groups an edge belongs to.
func (m *Memory) GroupsOfEdge(ei EdgeIndex) iter.Seq[Group] {
	return func(yield func(Group) bool) {
		m.mu.RLock()
		rec, ok := m.edges[ei]
		var groups []Group
		if ok {
			groups = append(groups, rec.groups...)
		}
		m.mu.RUnlock()
		for _, g := range groups {
			if !yield(g) {
				return
			}
		}
	}
}

// OutgoingEdges streams the edges whose source is ni.
func (m *Memory) OutgoingEdges(ni NodeIndex) iter.Seq[EdgeIndex] {
	return m.adjacency(m.outgoing, ni)
}

// IncomingEdges streams the edges whose target is ni.
func (m *Memory) IncomingEdges(ni NodeIndex) iter.Seq[EdgeIndex] {
	return m.adjacency(m.incoming, ni)
}

func (m *Memory) adjacency(idx map[NodeIndex]map[EdgeIndex]struct{}, ni NodeIndex) iter.Seq[EdgeIndex] {
	return func(yield func(EdgeIndex) bool) {
		m.mu.RLock()
		set := idx[ni]
		out := make([]EdgeIndex, 0, len(set))
		for ei := range set {
			out = append(out, ei)
		}
		m.mu.RUnlock()
		sortUint64sEdge(out)
		for _, ei := range out {
			if !yield(ei) {
				return
			}
		}
	}
}

// NodesInGroup streams the nodes belonging to g.
func (m *Memory) NodesInGroup(g Group) iter.Seq[NodeIndex] {
	return func(yield func(NodeIndex) bool) {
		m.mu.RLock()
		set := m.groupNodes[g]
		out := make([]NodeIndex, 0, len(set))
		for ni := range set {
			out = append(out, ni)
		}
		m.mu.RUnlock()
		sortUint64s(out)
		for _, ni := range out {
			if !yield(ni) {
				return
			}
		}
	}
}

// NodeCount reports the current number of nodes.
func (m *Memory) NodeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes)
}

// EdgeCount reports the current number of edges.
func (m *Memory) EdgeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.edges)
}

var _ Mutable = (*Memory)(nil)
