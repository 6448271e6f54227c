// Package ioxport exports and imports graph snapshots to/from JSON and CSV,
// adapted from the teacher's apoc.export/apoc.imports function surface
// (nornicdb/apoc/export, nornicdb/apoc/imports) and wired against
// store.Store/store.Mutable instead of ad-hoc []*Node/[]*Relationship
// slices.
package ioxport

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/orneryd/graphrecords/pkg/store"
	"github.com/orneryd/graphrecords/pkg/value"
)

// wireNode and wireEdge are the JSON-friendly shadow of store.Node/Edge —
// attribute values round-trip through Go's native JSON types (string,
// float64, bool) rather than value.Value's unexported fields, mirroring
// the teacher's apoc/export.Node/Relationship's map[string]interface{}
// Properties.
type wireNode struct {
	ID         uint64         `json:"id"`
	Groups     []string       `json:"groups"`
	Properties map[string]any `json:"properties"`
}

type wireEdge struct {
	ID         uint64         `json:"id"`
	Type       string         `json:"type"`
	StartNode  uint64         `json:"start"`
	EndNode    uint64         `json:"end"`
	Properties map[string]any `json:"properties"`
}

type wireGraph struct {
	Nodes []wireNode `json:"nodes"`
	Edges []wireEdge `json:"relationships"`
}

func attrsToProperties(attrs store.Attributes) map[string]any {
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k.AsString()] = valueToAny(v)
	}
	return out
}

func valueToAny(v value.Value) any {
	switch v.Kind() {
	case value.KindString:
		return v.AsString()
	case value.KindInt:
		return v.AsInt()
	case value.KindFloat:
		return v.AsFloat()
	case value.KindBool:
		return v.AsBool()
	case value.KindDateTime:
		return v.AsDateTime().Format("2006-01-02T15:04:05.999999999Z07:00")
	case value.KindDuration:
		return v.AsDuration().String()
	default:
		return nil
	}
}

func anyToValue(raw any) value.Value {
	switch v := raw.(type) {
	case string:
		return value.String(v)
	case float64:
		if v == float64(int64(v)) {
			return value.Int(int64(v))
		}
		return value.Float(v)
	case bool:
		return value.Bool(v)
	case nil:
		return value.Null()
	default:
		return value.String(fmt.Sprintf("%v", v))
	}
}

func propertiesToAttrs(props map[string]any) store.Attributes {
	attrs := make(store.Attributes, len(props))
	for k, v := range props {
		attrs[value.String(k)] = anyToValue(v)
	}
	return attrs
}

// ExportJSON renders every node and edge in s as a single JSON document,
// mirroring apoc.export.json(nodes, relationships).
func ExportJSON(s store.Store) (string, error) {
	g := wireGraph{}
	for ni := range s.NodeIndices() {
		attrs, err := s.NodeAttributes(ni)
		if err != nil {
			return "", fmt.Errorf("ioxport: reading node %d: %w", ni, err)
		}
		var groups []string
		for grp := range s.GroupsOfNode(ni) {
			groups = append(groups, string(grp))
		}
		g.Nodes = append(g.Nodes, wireNode{ID: uint64(ni), Groups: groups, Properties: attrsToProperties(attrs)})
	}
	for ei := range s.EdgeIndices() {
		attrs, err := s.EdgeAttributes(ei)
		if err != nil {
			return "", fmt.Errorf("ioxport: reading edge %d: %w", ei, err)
		}
		src, dst, err := s.EdgeEndpoints(ei)
		if err != nil {
			return "", fmt.Errorf("ioxport: reading endpoints of edge %d: %w", ei, err)
		}
		edgeType := ""
		for grp := range s.GroupsOfEdge(ei) {
			edgeType = string(grp)
			break
		}
		g.Edges = append(g.Edges, wireEdge{ID: uint64(ei), Type: edgeType, StartNode: uint64(src), EndNode: uint64(dst), Properties: attrsToProperties(attrs)})
	}

	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return "", fmt.Errorf("ioxport: marshaling export: %w", err)
	}
	return string(data), nil
}

// ExportJSONFile writes ExportJSON's output to filePath.
func ExportJSONFile(s store.Store, filePath string) error {
	data, err := ExportJSON(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filePath, []byte(data), 0o644); err != nil {
		return fmt.Errorf("ioxport: writing %q: %w", filePath, err)
	}
	return nil
}

// ImportResult reports how many nodes/edges an import added, mirroring
// apoc/imports.ImportResult.
type ImportResult struct {
	NodesCreated int
	EdgesCreated int
	Errors       []error
}

// ImportJSON reads a document produced by ExportJSON (or any compatible
// nodes/relationships JSON document) and replays it against m. The
// document's IDs are used only to resolve each relationship's start and end
// node; they are not stored — new NodeIndex/EdgeIndex values are assigned
// by m, since a Mutable store owns its own ID space.
func ImportJSON(r io.Reader, m store.Mutable) (*ImportResult, error) {
	var g wireGraph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("ioxport: decoding import: %w", err)
	}

	result := &ImportResult{}
	idMap := make(map[uint64]store.NodeIndex, len(g.Nodes))
	for _, n := range g.Nodes {
		groups := make([]store.Group, len(n.Groups))
		for i, grp := range n.Groups {
			groups[i] = store.Group(grp)
		}
		ni, err := m.AddNode(propertiesToAttrs(n.Properties), groups...)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("ioxport: importing node %d: %w", n.ID, err))
			continue
		}
		idMap[n.ID] = ni
		result.NodesCreated++
	}
	for _, e := range g.Edges {
		src, ok := idMap[e.StartNode]
		if !ok {
			result.Errors = append(result.Errors, fmt.Errorf("ioxport: edge %d references unknown start node %d", e.ID, e.StartNode))
			continue
		}
		dst, ok := idMap[e.EndNode]
		if !ok {
			result.Errors = append(result.Errors, fmt.Errorf("ioxport: edge %d references unknown end node %d", e.ID, e.EndNode))
			continue
		}
		var groups []store.Group
		if e.Type != "" {
			groups = append(groups, store.Group(e.Type))
		}
		if _, err := m.AddEdge(src, dst, propertiesToAttrs(e.Properties), groups...); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("ioxport: importing edge %d: %w", e.ID, err))
			continue
		}
		result.EdgesCreated++
	}
	return result, nil
}

// ImportJSONFile loads filePath via ImportJSON.
func ImportJSONFile(filePath string, m store.Mutable) (*ImportResult, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("ioxport: opening %q: %w", filePath, err)
	}
	defer f.Close()
	return ImportJSON(f, m)
}
