package plugin

import (
	"testing"

	"github.com/orneryd/graphrecords/pkg/config"
	"github.com/orneryd/graphrecords/pkg/store"
	"github.com/orneryd/graphrecords/pkg/value"
)

type recordingPlugin struct {
	nodesAdded   int
	edgesAdded   int
	nodesRemoved int
	edgesRemoved int
}

func (p *recordingPlugin) Name() string        { return "recorder" }
func (p *recordingPlugin) Version() string     { return "v1" }
func (p *recordingPlugin) Description() string { return "test recorder" }
func (p *recordingPlugin) Initialize(s store.Store) error { return nil }
func (p *recordingPlugin) Cleanup() error                 { return nil }
func (p *recordingPlugin) OnNodeAdded(store.NodeIndex, store.Attributes, []store.Group) {
	p.nodesAdded++
}
func (p *recordingPlugin) OnEdgeAdded(store.EdgeIndex, store.NodeIndex, store.NodeIndex, store.Attributes, []store.Group) {
	p.edgesAdded++
}
func (p *recordingPlugin) OnNodeRemoved(store.NodeIndex) { p.nodesRemoved++ }
func (p *recordingPlugin) OnEdgeRemoved(store.EdgeIndex) { p.edgesRemoved++ }

func TestRegistryLoadUnload(t *testing.T) {
	m := store.NewMemory()
	reg := NewRegistry(m)
	rec := &recordingPlugin{}

	if err := reg.Load(rec); err != nil {
		t.Fatal(err)
	}
	if !reg.IsLoaded("recorder") {
		t.Fatal("expected recorder to be loaded")
	}
	if err := reg.Load(rec); err == nil {
		t.Fatal("expected loading the same plugin twice to fail")
	}
	if err := reg.Unload("recorder"); err != nil {
		t.Fatal(err)
	}
	if reg.IsLoaded("recorder") {
		t.Fatal("expected recorder to be unloaded")
	}
}

func TestInstrumentedDispatchesHooks(t *testing.T) {
	config.ResetFeatureFlags()
	defer config.ResetFeatureFlags()

	m := store.NewMemory()
	reg := NewRegistry(m)
	rec := &recordingPlugin{}
	if err := reg.Load(rec); err != nil {
		t.Fatal(err)
	}

	inst := Instrument(m, reg)
	a, err := inst.AddNode(store.Attributes{value.String("k"): value.Int(1)}, "g")
	if err != nil {
		t.Fatal(err)
	}
	b, err := inst.AddNode(nil, "g")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := inst.AddEdge(a, b, nil, "rel"); err != nil {
		t.Fatal(err)
	}
	if err := inst.RemoveEdge(0); err != nil {
		t.Fatal(err)
	}
	if err := inst.RemoveNode(b); err != nil {
		t.Fatal(err)
	}

	if rec.nodesAdded != 2 || rec.edgesAdded != 1 || rec.edgesRemoved != 1 || rec.nodesRemoved != 1 {
		t.Fatalf("unexpected hook counts: %+v", rec)
	}
}

func TestInstrumentedSkipsDispatchWhenDisabled(t *testing.T) {
	config.ResetFeatureFlags()
	defer config.ResetFeatureFlags()
	config.DisablePluginHooks()

	m := store.NewMemory()
	reg := NewRegistry(m)
	rec := &recordingPlugin{}
	if err := reg.Load(rec); err != nil {
		t.Fatal(err)
	}

	inst := Instrument(m, reg)
	if _, err := inst.AddNode(nil, "g"); err != nil {
		t.Fatal(err)
	}
	if rec.nodesAdded != 0 {
		t.Fatalf("expected no dispatch while hooks disabled, got %d", rec.nodesAdded)
	}
}
