package schema

import (
	"testing"

	"github.com/orneryd/graphrecords/pkg/store"
	"github.com/orneryd/graphrecords/pkg/value"
)

func TestObserveNodeInfersKinds(t *testing.T) {
	m := New()
	name := value.String("name")
	m.ObserveNode([]store.Group{"person"}, store.Attributes{name: value.String("ada")})
	m.ObserveNode([]store.Group{"person"}, store.Attributes{name: value.Int(42)})

	kinds := m.NodeAttributeKinds("person", name)
	if len(kinds) != 2 {
		t.Fatalf("expected 2 observed kinds, got %d: %v", len(kinds), kinds)
	}
	if !m.IsPolymorphic("person", name) {
		t.Fatal("expected name to be reported polymorphic")
	}
}

func TestUniqueConstraint(t *testing.T) {
	m := New()
	email := value.String("email")
	m.AddUniqueConstraint("person", email)

	v := value.String("ada@example.com")
	if err := m.CheckUnique("person", email, v, 0); err != nil {
		t.Fatalf("unexpected error on first registration: %v", err)
	}
	m.RegisterUnique("person", email, v, 1)

	if err := m.CheckUnique("person", email, v, 1); err != nil {
		t.Fatalf("same owner should not conflict: %v", err)
	}
	if err := m.CheckUnique("person", email, v, 2); err == nil {
		t.Fatal("expected a conflict for a different node")
	}

	m.UnregisterUnique("person", email, v)
	if err := m.CheckUnique("person", email, v, 2); err != nil {
		t.Fatalf("value should be free after unregister: %v", err)
	}
}

func TestUniqueConstraintUnregisteredKeyIsNoop(t *testing.T) {
	m := New()
	if err := m.CheckUnique("person", value.String("ssn"), value.String("x"), 0); err != nil {
		t.Fatalf("no constraint registered should never error: %v", err)
	}
}

func TestPropertyIndexLookup(t *testing.T) {
	m := New()
	status := value.String("status")
	m.AddPropertyIndex("task", status)

	active := value.String("active")
	m.IndexInsert("task", status, active, 10)
	m.IndexInsert("task", status, active, 11)
	m.IndexInsert("task", status, active, 10) // idempotent

	nodes, ok := m.Lookup("task", status, active)
	if !ok {
		t.Fatal("expected an index to be registered")
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 indexed nodes, got %d: %v", len(nodes), nodes)
	}

	m.IndexDelete("task", status, active, 10)
	nodes, _ = m.Lookup("task", status, active)
	if len(nodes) != 1 || nodes[0] != 11 {
		t.Fatalf("expected only node 11 left, got %v", nodes)
	}
}

func TestLookupWithoutIndexReportsAbsent(t *testing.T) {
	m := New()
	_, ok := m.Lookup("task", value.String("priority"), value.Int(1))
	if ok {
		t.Fatal("expected no index to be registered")
	}
}
