// Package store defines the graph storage contract consumed by the query
// core (spec §3.3, §6) and an in-memory implementation of it.
//
// The core only ever reads through the Store interface; every mutation
// path (AddNode, AddEdge, schema enforcement, plugin hooks) lives behind
// the separate Mutable interface so the core's read contract stays exactly
// as narrow as spec §6 describes.
package store

import (
	"iter"

	"github.com/orneryd/graphrecords/pkg/value"
)

// NodeIndex is an opaque integral handle identifying a node, owned by the
// store (spec §3.3).
type NodeIndex uint64

// EdgeIndex is an opaque integral handle identifying an edge.
type EdgeIndex uint64

// Group is a named partition a node or edge may belong to (spec §1, §3.3).
type Group string

// Attributes maps attribute keys to values. Both AttributeKey and Value
// are the same sum type (spec §3.1, §3.2); nil is treated as empty.
type Attributes map[value.AttributeKey]value.Value

// Clone returns an independent copy of a.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Node is a graph vertex as the store hands it to the core: its identity,
// its attribute map, and the groups it belongs to.
type Node struct {
	Index      NodeIndex
	Attributes Attributes
	Groups     []Group
}

// Edge is a directed graph relationship between two nodes.
type Edge struct {
	Index      EdgeIndex
	Source     NodeIndex
	Target     NodeIndex
	Attributes Attributes
	Groups     []Group
}

// Store is the read-only contract the query core evaluates against (spec
// §3.3). Implementations must not be mutated while an iterator obtained
// from one of the streaming methods is still in use (spec §4.2.3, §5).
type Store interface {
	// NodeIndices streams every node index currently in the store.
	NodeIndices() iter.Seq[NodeIndex]
	// EdgeIndices streams every edge index currently in the store.
	EdgeIndices() iter.Seq[EdgeIndex]

	// NodeAttributes returns the attribute map of the given node.
	NodeAttributes(ni NodeIndex) (Attributes, error)
	// EdgeAttributes returns the attribute map of the given edge.
	EdgeAttributes(ei EdgeIndex) (Attributes, error)

	// EdgeEndpoints returns the (source, target) node indices of an edge.
	EdgeEndpoints(ei EdgeIndex) (source, target NodeIndex, err error)

	// GroupsOfNode streams the groups a node belongs to.
	GroupsOfNode(ni NodeIndex) iter.Seq[Group]
	// GroupsOfEdge streams the groups an edge belongs to.
	GroupsOfEdge(ei EdgeIndex) iter.Seq[Group]

	// OutgoingEdges streams the edges whose source is ni, used by the
	// query core's node-to-edge navigation (spec §4.1's "outgoing_edges").
	OutgoingEdges(ni NodeIndex) iter.Seq[EdgeIndex]
	// IncomingEdges streams the edges whose target is ni.
	IncomingEdges(ni NodeIndex) iter.Seq[EdgeIndex]

	// NodeCount and EdgeCount report the current cardinality, used by the
	// overview/pretty-printer and by size-hinted aggregations.
	NodeCount() int
	EdgeCount() int
}

// Mutable is the narrow write contract the core never calls (spec §6: "the
// core neither enforces nor consults the schema" and "plugins hook only
// mutation paths"). It is consumed by pkg/plugin, and by pkg/ioxport when
// loading a snapshot.
type Mutable interface {
	Store

	AddNode(attrs Attributes, groups ...Group) (NodeIndex, error)
	AddEdge(source, target NodeIndex, attrs Attributes, groups ...Group) (EdgeIndex, error)
	RemoveNode(ni NodeIndex) error
	RemoveEdge(ei EdgeIndex) error
	SetNodeAttribute(ni NodeIndex, key value.AttributeKey, v value.Value) error
	SetEdgeAttribute(ei EdgeIndex, key value.AttributeKey, v value.Value) error
}
