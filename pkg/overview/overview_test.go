package overview

import (
	"strings"
	"testing"

	"github.com/orneryd/graphrecords/pkg/query"
	"github.com/orneryd/graphrecords/pkg/schema"
	"github.com/orneryd/graphrecords/pkg/store"
	"github.com/orneryd/graphrecords/pkg/value"
)

func TestDescribeStoreReportsCountsAndSchema(t *testing.T) {
	m := store.NewMemory()
	name := value.String("name")
	a, err := m.AddNode(store.Attributes{name: value.String("ada")}, "person")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddNode(store.Attributes{name: value.Int(1)}, "person"); err != nil {
		t.Fatal(err)
	}
	b, err := m.AddNode(nil, "person")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddEdge(a, b, nil, "knows"); err != nil {
		t.Fatal(err)
	}

	mgr := schema.New()
	for ni := range m.NodeIndices() {
		attrs, _ := m.NodeAttributes(ni)
		var groups []store.Group
		for g := range m.GroupsOfNode(ni) {
			groups = append(groups, g)
		}
		mgr.ObserveNode(groups, attrs)
	}

	report := DescribeStore(m, mgr)
	if !strings.Contains(report, "Nodes: 3") {
		t.Fatalf("expected node count in report, got:\n%s", report)
	}
	if !strings.Contains(report, "Edges: 1") {
		t.Fatalf("expected edge count in report, got:\n%s", report)
	}
	if !strings.Contains(report, "polymorphic") {
		t.Fatalf("expected name to be flagged polymorphic, got:\n%s", report)
	}
}

func TestDescribeOperandReportsStageCount(t *testing.T) {
	op := query.AllNodes().HasAttribute(value.String("name"))
	report := DescribeOperand("my-nodes", op)
	if !strings.Contains(report, "Stages: 1") {
		t.Fatalf("expected one stage, got:\n%s", report)
	}
}
