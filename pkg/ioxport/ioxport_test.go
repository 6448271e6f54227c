package ioxport

import (
	"strings"
	"testing"

	"github.com/orneryd/graphrecords/pkg/store"
	"github.com/orneryd/graphrecords/pkg/value"
)

func buildGraph(t *testing.T) *store.Memory {
	t.Helper()
	m := store.NewMemory()
	a, err := m.AddNode(store.Attributes{value.String("name"): value.String("ada")}, "person")
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.AddNode(store.Attributes{value.String("name"): value.String("grace")}, "person")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddEdge(a, b, store.Attributes{value.String("since"): value.Int(1975)}, "knows"); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestExportImportJSONRoundTrip(t *testing.T) {
	src := buildGraph(t)
	doc, err := ExportJSON(src)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(doc, "\"ada\"") {
		t.Fatalf("expected exported JSON to contain node property, got: %s", doc)
	}

	dst := store.NewMemory()
	result, err := ImportJSON(strings.NewReader(doc), dst)
	if err != nil {
		t.Fatal(err)
	}
	if result.NodesCreated != 2 || result.EdgesCreated != 1 {
		t.Fatalf("unexpected import result: %+v", result)
	}
	if dst.NodeCount() != 2 || dst.EdgeCount() != 1 {
		t.Fatalf("unexpected dst cardinality: nodes=%d edges=%d", dst.NodeCount(), dst.EdgeCount())
	}
}

func TestExportImportCSVRoundTrip(t *testing.T) {
	src := buildGraph(t)
	var buf strings.Builder
	if err := ExportNodesCSV(src, "person", &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "name") {
		t.Fatalf("expected a name column, got: %s", buf.String())
	}

	dst := store.NewMemory()
	result, err := ImportNodesCSV(strings.NewReader(buf.String()), "person", dst)
	if err != nil {
		t.Fatal(err)
	}
	if result.NodesCreated != 2 {
		t.Fatalf("expected 2 nodes imported, got %d (errors: %v)", result.NodesCreated, result.Errors)
	}
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	original := []byte("the quick brown fox jumps over the lazy dog, repeated: " + strings.Repeat("xyz", 50))
	compressed, err := Compress(original)
	if err != nil {
		t.Fatal(err)
	}
	if len(compressed) == 0 {
		t.Fatal("expected non-empty compressed output")
	}
	decompressed, err := Decompress(compressed)
	if err != nil {
		t.Fatal(err)
	}
	if string(decompressed) != string(original) {
		t.Fatal("decompressed output did not match original")
	}
}

func TestEncryptDecryptFieldsRoundTrip(t *testing.T) {
	enc, err := NewFieldEncryptor("correct horse battery staple")
	if err != nil {
		t.Fatal(err)
	}
	props := map[string]any{"email": "ada@example.com", "name": "ada"}
	if err := EncryptFields(props, []string{"email"}, enc); err != nil {
		t.Fatal(err)
	}
	if props["email"] == "ada@example.com" {
		t.Fatal("expected email to be encrypted")
	}
	if props["name"] != "ada" {
		t.Fatal("name should be untouched")
	}

	if err := DecryptFields(props, []string{"email"}, enc); err != nil {
		t.Fatal(err)
	}
	if props["email"] != "ada@example.com" {
		t.Fatalf("expected email to decrypt back to original, got %v", props["email"])
	}
}
