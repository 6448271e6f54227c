// Package plugin lets external code observe graphrecords' mutation path —
// AddNode, AddEdge, RemoveNode, RemoveEdge — without the query core ever
// being aware of it, mirroring SPEC_FULL.md's "plugins hook only mutation
// paths" ambient-stack requirement.
//
// Adapted from the teacher's apoc/plugin.PluginManager (load/unload/list/
// info over a named plugin registry) and apoc/registry's global-registry
// idiom, narrowed from a Cypher-function-registering plugin to a
// mutation-hook-registering one, since graphrecords has no function
// registry of its own for a plugin to extend.
package plugin

import (
	"fmt"
	"sync"

	"github.com/orneryd/graphrecords/pkg/store"
)

// Plugin is a named, versioned extension that observes graph mutations.
type Plugin interface {
	Name() string
	Version() string
	Description() string

	// Initialize is called once, when the plugin is loaded, with the
	// store it will observe.
	Initialize(s store.Store) error
	// Cleanup releases any resources the plugin acquired.
	Cleanup() error

	OnNodeAdded(ni store.NodeIndex, attrs store.Attributes, groups []store.Group)
	OnEdgeAdded(ei store.EdgeIndex, source, target store.NodeIndex, attrs store.Attributes, groups []store.Group)
	OnNodeRemoved(ni store.NodeIndex)
	OnEdgeRemoved(ei store.EdgeIndex)
}

// Registry tracks loaded plugins by name, mirroring apoc/plugin.PluginManager.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
	store   store.Store
}

// NewRegistry builds an empty registry that will initialize plugins
// against s.
func NewRegistry(s store.Store) *Registry {
	return &Registry{plugins: make(map[string]Plugin), store: s}
}

// Load initializes and registers p. Loading a name twice is an error.
func (r *Registry) Load(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.plugins[name]; exists {
		return fmt.Errorf("plugin: %q already loaded", name)
	}
	if err := p.Initialize(r.store); err != nil {
		return fmt.Errorf("plugin: initializing %q: %w", name, err)
	}
	r.plugins[name] = p
	return nil
}

// Unload cleans up and removes a loaded plugin.
func (r *Registry) Unload(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.plugins[name]
	if !exists {
		return fmt.Errorf("plugin: %q not loaded", name)
	}
	if err := p.Cleanup(); err != nil {
		return fmt.Errorf("plugin: cleaning up %q: %w", name, err)
	}
	delete(r.plugins, name)
	return nil
}

// IsLoaded reports whether name is currently loaded.
func (r *Registry) IsLoaded(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.plugins[name]
	return exists
}

// List returns every loaded plugin's name.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	return names
}

// Info describes a loaded plugin.
type Info struct {
	Name        string
	Version     string
	Description string
}

// Info returns name's metadata, or an error if it is not loaded.
func (r *Registry) Info(name string) (*Info, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, exists := r.plugins[name]
	if !exists {
		return nil, fmt.Errorf("plugin: %q not loaded", name)
	}
	return &Info{Name: p.Name(), Version: p.Version(), Description: p.Description()}, nil
}

// dispatch fans a mutation event out to every loaded plugin, under a read
// lock so Load/Unload can't race a live dispatch.
func (r *Registry) dispatch(fn func(Plugin)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.plugins {
		fn(p)
	}
}

func (r *Registry) NotifyNodeAdded(ni store.NodeIndex, attrs store.Attributes, groups []store.Group) {
	r.dispatch(func(p Plugin) { p.OnNodeAdded(ni, attrs, groups) })
}

func (r *Registry) NotifyEdgeAdded(ei store.EdgeIndex, source, target store.NodeIndex, attrs store.Attributes, groups []store.Group) {
	r.dispatch(func(p Plugin) { p.OnEdgeAdded(ei, source, target, attrs, groups) })
}

func (r *Registry) NotifyNodeRemoved(ni store.NodeIndex) {
	r.dispatch(func(p Plugin) { p.OnNodeRemoved(ni) })
}

func (r *Registry) NotifyEdgeRemoved(ei store.EdgeIndex) {
	r.dispatch(func(p Plugin) { p.OnEdgeRemoved(ei) })
}
