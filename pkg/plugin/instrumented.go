package plugin

import (
	"github.com/orneryd/graphrecords/pkg/config"
	"github.com/orneryd/graphrecords/pkg/store"
)

// Instrumented wraps a store.Mutable so every successful mutation notifies
// a Registry's loaded plugins, gated by config.IsPluginHooksEnabled() —
// disabling the flag turns every call into a direct passthrough with zero
// dispatch overhead.
type Instrumented struct {
	store.Mutable
	registry *Registry
}

// Instrument wraps m with hook dispatch through reg.
func Instrument(m store.Mutable, reg *Registry) *Instrumented {
	return &Instrumented{Mutable: m, registry: reg}
}

func (i *Instrumented) AddNode(attrs store.Attributes, groups ...store.Group) (store.NodeIndex, error) {
	ni, err := i.Mutable.AddNode(attrs, groups...)
	if err == nil && config.IsPluginHooksEnabled() {
		i.registry.NotifyNodeAdded(ni, attrs, groups)
	}
	return ni, err
}

func (i *Instrumented) AddEdge(source, target store.NodeIndex, attrs store.Attributes, groups ...store.Group) (store.EdgeIndex, error) {
	ei, err := i.Mutable.AddEdge(source, target, attrs, groups...)
	if err == nil && config.IsPluginHooksEnabled() {
		i.registry.NotifyEdgeAdded(ei, source, target, attrs, groups)
	}
	return ei, err
}

func (i *Instrumented) RemoveNode(ni store.NodeIndex) error {
	err := i.Mutable.RemoveNode(ni)
	if err == nil && config.IsPluginHooksEnabled() {
		i.registry.NotifyNodeRemoved(ni)
	}
	return err
}

func (i *Instrumented) RemoveEdge(ei store.EdgeIndex) error {
	err := i.Mutable.RemoveEdge(ei)
	if err == nil && config.IsPluginHooksEnabled() {
		i.registry.NotifyEdgeRemoved(ei)
	}
	return err
}

var _ store.Mutable = (*Instrumented)(nil)
