// Package overview renders human-readable summaries of a store and a query
// pipeline's shape — graphrecords' analogue of the teacher's EXPLAIN/PROFILE
// boxed plan output, narrowed from a multi-operator Cypher plan tree to
// graphrecords' linear Operand pipeline plus store-wide statistics.
//
// Grounded on nornicdb/pkg/cypher/explain.go's formatPlan/formatOperator:
// same fixed-width boxed-table rendering convention, same indent-by-depth
// idiom (collapsed here to a flat stage list, since Operand has no branching
// plan tree).
package overview

import (
	"fmt"
	"sort"
	"strings"

	"github.com/orneryd/graphrecords/pkg/schema"
	"github.com/orneryd/graphrecords/pkg/store"
	"github.com/orneryd/graphrecords/pkg/value"
)

const boxWidth = 60

func boxTop() string    { return fmt.Sprintf("+-%s-+", strings.Repeat("-", boxWidth)) }
func boxLine(s string) string {
	if len(s) > boxWidth {
		s = s[:boxWidth-3] + "..."
	}
	return fmt.Sprintf("| %-*s |", boxWidth, s)
}

// DescribeStore renders s's cardinality and, if mgr is non-nil, the
// inferred per-group attribute-kind shape and polymorphism flags
// (pkg/schema's Manager).
func DescribeStore(s store.Store, mgr *schema.Manager) string {
	var sb strings.Builder
	sb.WriteString(boxTop() + "\n")
	sb.WriteString(boxLine("Store Overview") + "\n")
	sb.WriteString(boxTop() + "\n")
	sb.WriteString(boxLine(fmt.Sprintf("Nodes: %d", s.NodeCount())) + "\n")
	sb.WriteString(boxLine(fmt.Sprintf("Edges: %d", s.EdgeCount())) + "\n")

	if mgr != nil {
		groups := observedGroups(s)
		for _, g := range groups {
			sb.WriteString(boxLine(fmt.Sprintf("Group %q:", g)) + "\n")
			for _, key := range mgr.ObservedNodeKeys(g) {
				kinds := mgr.NodeAttributeKinds(g, key)
				note := ""
				if mgr.IsPolymorphic(g, key) {
					note = " (polymorphic)"
				}
				sb.WriteString(boxLine(fmt.Sprintf("  %s: %s%s", key.AsString(), kindNames(kinds), note)) + "\n")
			}
		}
	}
	sb.WriteString(boxTop() + "\n")
	return sb.String()
}

func kindNames(kinds []value.Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	sort.Strings(names)
	return strings.Join(names, "|")
}

// observedGroups collects every distinct group referenced by any node,
// sorted for deterministic output.
func observedGroups(s store.Store) []store.Group {
	seen := make(map[store.Group]struct{})
	for ni := range s.NodeIndices() {
		for g := range s.GroupsOfNode(ni) {
			seen[g] = struct{}{}
		}
	}
	out := make([]store.Group, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PipelineDescriber is satisfied by any operand wrapper exposing its
// pipeline stage count (NodeOperand, EdgeOperand, ...), so overview does
// not need to depend on pkg/query's concrete operand types.
type PipelineDescriber interface {
	StageCount() int
}

// DescribeOperand renders a named operand's pipeline shape — the
// graphrecords analogue of EXPLAIN (no evaluation happens; only the
// appended-operation count is reported).
func DescribeOperand(label string, op PipelineDescriber) string {
	var sb strings.Builder
	sb.WriteString(boxTop() + "\n")
	sb.WriteString(boxLine(fmt.Sprintf("Operand: %s", label)) + "\n")
	sb.WriteString(boxTop() + "\n")
	sb.WriteString(boxLine(fmt.Sprintf("Stages: %d", op.StageCount())) + "\n")
	sb.WriteString(boxTop() + "\n")
	return sb.String()
}
