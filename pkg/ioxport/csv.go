package ioxport

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/orneryd/graphrecords/pkg/store"
	"github.com/orneryd/graphrecords/pkg/value"
)

// ExportNodesCSV writes every node in group g as a CSV table to w: an "id"
// column, a "groups" column (semicolon-joined), then one column per
// attribute key observed on the first node written — adapted from
// apoc/export.Csv's header-from-first-row convention.
func ExportNodesCSV(s store.Store, g store.Group, w io.Writer) error {
	var nodes []store.NodeIndex
	for ni := range s.NodeIndices() {
		if nodeInGroup(s, ni, g) {
			nodes = append(nodes, ni)
		}
	}

	cw := csv.NewWriter(w)
	defer cw.Flush()

	if len(nodes) == 0 {
		return nil
	}

	first, err := s.NodeAttributes(nodes[0])
	if err != nil {
		return fmt.Errorf("ioxport: reading node %d: %w", nodes[0], err)
	}
	var keys []string
	for k := range first {
		keys = append(keys, k.AsString())
	}
	sort.Strings(keys)

	header := append([]string{"id", "groups"}, keys...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("ioxport: writing csv header: %w", err)
	}

	for _, ni := range nodes {
		attrs, err := s.NodeAttributes(ni)
		if err != nil {
			return fmt.Errorf("ioxport: reading node %d: %w", ni, err)
		}
		var groupNames []string
		for grp := range s.GroupsOfNode(ni) {
			groupNames = append(groupNames, string(grp))
		}
		row := make([]string, 0, len(header))
		row = append(row, fmt.Sprintf("%d", ni), joinSemicolon(groupNames))
		for _, k := range keys {
			if v, ok := attrs[keyOf(k)]; ok {
				row = append(row, v.String())
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("ioxport: writing csv row for node %d: %w", ni, err)
		}
	}
	return nil
}

// ExportNodesCSVFile writes ExportNodesCSV's output to filePath.
func ExportNodesCSVFile(s store.Store, g store.Group, filePath string) error {
	f, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("ioxport: creating %q: %w", filePath, err)
	}
	defer f.Close()
	return ExportNodesCSV(s, g, f)
}

// ImportNodesCSV reads a CSV table produced by ExportNodesCSV (or any table
// with an "id"/"groups" header followed by attribute columns) and adds one
// node per data row to m, tagged with group g in addition to any groups
// named in the "groups" column.
func ImportNodesCSV(r io.Reader, g store.Group, m store.Mutable) (*ImportResult, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ioxport: reading csv: %w", err)
	}
	result := &ImportResult{}
	if len(rows) == 0 {
		return result, nil
	}
	header := rows[0]
	if len(header) < 2 || header[0] != "id" || header[1] != "groups" {
		return nil, fmt.Errorf("ioxport: csv header must start with id,groups, got %v", header)
	}
	keys := header[2:]

	for _, row := range rows[1:] {
		if len(row) != len(header) {
			result.Errors = append(result.Errors, fmt.Errorf("ioxport: csv row has %d fields, want %d", len(row), len(header)))
			continue
		}
		groups := []store.Group{g}
		for _, name := range splitSemicolon(row[1]) {
			groups = append(groups, store.Group(name))
		}
		attrs := make(store.Attributes, len(keys))
		for i, k := range keys {
			if row[2+i] == "" {
				continue
			}
			attrs[keyOf(k)] = inferCSVValue(row[2+i])
		}
		if _, err := m.AddNode(attrs, groups...); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("ioxport: importing csv row: %w", err))
			continue
		}
		result.NodesCreated++
	}
	return result, nil
}

// ImportNodesCSVFile loads filePath via ImportNodesCSV.
func ImportNodesCSVFile(filePath string, g store.Group, m store.Mutable) (*ImportResult, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("ioxport: opening %q: %w", filePath, err)
	}
	defer f.Close()
	return ImportNodesCSV(f, g, m)
}

func nodeInGroup(s store.Store, ni store.NodeIndex, g store.Group) bool {
	for grp := range s.GroupsOfNode(ni) {
		if grp == g {
			return true
		}
	}
	return false
}

func keyOf(name string) value.AttributeKey { return value.String(name) }

func joinSemicolon(parts []string) string { return strings.Join(parts, ";") }

func splitSemicolon(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ";")
}

// inferCSVValue parses a CSV cell as an int, then a float, then a bool,
// falling back to a string — mirroring how spreadsheet-style tabular
// import has no type annotations of its own to rely on.
func inferCSVValue(s string) value.Value {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return value.Int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return value.Float(f)
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return value.Bool(b)
	}
	return value.String(s)
}
