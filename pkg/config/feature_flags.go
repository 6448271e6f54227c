// Feature flags for graphrecords query-engine behavior, adapted from the
// teacher's NornicDB feature-flag layer: the same "atomic bool + env-var
// default + scoped With*Enabled/With*Disabled toggle" idiom, carrying
// graphrecords' own flags instead of NornicDB's (Kalman filtering, TLP,
// GPU clustering, ...).
//
// DEFAULTS:
//   - ScalarCache and PluginHooks are ENABLED by default (production-safe
//     performance and extensibility paths).
//   - StrictSchemaValidation is DISABLED by default. It only records a
//     setting: no package in this module reads it, and enabling it does not
//     make anything reject a write.
//
// Usage:
//
//	if config.IsScalarCacheEnabled() { ctx.cache = newScalarCache() }
//
//	// Runtime/test toggles:
//	defer config.WithStrictSchemaValidationEnabled()()
package config

import (
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// Environment variables toggling graphrecords feature flags.
const (
	EnvScalarCacheEnabled            = "GRAPHRECORDS_SCALAR_CACHE_ENABLED"
	EnvPluginHooksEnabled            = "GRAPHRECORDS_PLUGIN_HOOKS_ENABLED"
	EnvStrictSchemaValidationEnabled = "GRAPHRECORDS_STRICT_SCHEMA_VALIDATION_ENABLED"
)

var (
	scalarCacheEnabled     atomic.Bool
	pluginHooksEnabled     atomic.Bool
	strictSchemaValidation atomic.Bool

	customFlags   = make(map[string]bool)
	customFlagsMu sync.RWMutex
	initOnce      sync.Once
)

func init() {
	initOnce.Do(func() {
		// Tier 1 — enabled by default; disable with "false"/"0" if needed.
		scalarCacheEnabled.Store(true)
		if env := os.Getenv(EnvScalarCacheEnabled); env == "false" || env == "0" {
			scalarCacheEnabled.Store(false)
		}

		pluginHooksEnabled.Store(true)
		if env := os.Getenv(EnvPluginHooksEnabled); env == "false" || env == "0" {
			pluginHooksEnabled.Store(false)
		}

		// Experimental — disabled by default; enable with "true"/"1".
		if env := os.Getenv(EnvStrictSchemaValidationEnabled); env == "true" || env == "1" {
			strictSchemaValidation.Store(true)
		}
	})
}

// EnableScalarCache turns on the query core's scalar-subexpression cache.
func EnableScalarCache() { scalarCacheEnabled.Store(true) }

// DisableScalarCache turns off the scalar-subexpression cache — every
// repeated sub-operand re-evaluates from scratch. Useful for isolating a
// caching bug during debugging.
func DisableScalarCache() { scalarCacheEnabled.Store(false) }

// IsScalarCacheEnabled reports the scalar cache's current state.
func IsScalarCacheEnabled() bool { return scalarCacheEnabled.Load() }

// WithScalarCacheEnabled temporarily enables the scalar cache and returns a
// cleanup function restoring the prior state.
func WithScalarCacheEnabled() func() {
	prev := scalarCacheEnabled.Load()
	scalarCacheEnabled.Store(true)
	return func() { scalarCacheEnabled.Store(prev) }
}

// WithScalarCacheDisabled temporarily disables the scalar cache.
func WithScalarCacheDisabled() func() {
	prev := scalarCacheEnabled.Load()
	scalarCacheEnabled.Store(false)
	return func() { scalarCacheEnabled.Store(prev) }
}

// EnablePluginHooks turns on the mutation-path plugin registry
// (pkg/plugin): AddNode/AddEdge/RemoveNode/RemoveEdge run registered hooks.
func EnablePluginHooks() { pluginHooksEnabled.Store(true) }

// DisablePluginHooks turns off plugin hook dispatch entirely.
func DisablePluginHooks() { pluginHooksEnabled.Store(false) }

// IsPluginHooksEnabled reports whether mutation-path hooks currently run.
func IsPluginHooksEnabled() bool { return pluginHooksEnabled.Load() }

// WithPluginHooksEnabled temporarily enables plugin hooks.
func WithPluginHooksEnabled() func() {
	prev := pluginHooksEnabled.Load()
	pluginHooksEnabled.Store(true)
	return func() { pluginHooksEnabled.Store(prev) }
}

// WithPluginHooksDisabled temporarily disables plugin hooks.
func WithPluginHooksDisabled() func() {
	prev := pluginHooksEnabled.Load()
	pluginHooksEnabled.Store(false)
	return func() { pluginHooksEnabled.Store(prev) }
}

// EnableStrictSchemaValidation sets the strict-schema flag. The flag is
// reported by IsStrictSchemaValidationEnabled only; pkg/schema does not
// read it and rejects no mutation because of it.
func EnableStrictSchemaValidation() { strictSchemaValidation.Store(true) }

// DisableStrictSchemaValidation clears the strict-schema flag.
func DisableStrictSchemaValidation() { strictSchemaValidation.Store(false) }

// IsStrictSchemaValidationEnabled reports the current enforcement mode.
func IsStrictSchemaValidationEnabled() bool { return strictSchemaValidation.Load() }

// WithStrictSchemaValidationEnabled temporarily enables strict enforcement.
func WithStrictSchemaValidationEnabled() func() {
	prev := strictSchemaValidation.Load()
	strictSchemaValidation.Store(true)
	return func() { strictSchemaValidation.Store(prev) }
}

// WithStrictSchemaValidationDisabled temporarily disables strict enforcement.
func WithStrictSchemaValidationDisabled() func() {
	prev := strictSchemaValidation.Load()
	strictSchemaValidation.Store(false)
	return func() { strictSchemaValidation.Store(prev) }
}

// EnableFeature turns on an arbitrary, non-built-in named flag — an escape
// hatch for plugins (pkg/plugin) that want their own toggle without a
// dedicated atomic.Bool here.
func EnableFeature(name string) {
	customFlagsMu.Lock()
	defer customFlagsMu.Unlock()
	customFlags[strings.ToLower(name)] = true
}

// DisableFeature turns off a named custom flag.
func DisableFeature(name string) {
	customFlagsMu.Lock()
	defer customFlagsMu.Unlock()
	customFlags[strings.ToLower(name)] = false
}

// IsFeatureEnabled reports a named custom flag's state (false if never set).
func IsFeatureEnabled(name string) bool {
	customFlagsMu.RLock()
	defer customFlagsMu.RUnlock()
	return customFlags[strings.ToLower(name)]
}

// ResetFeatureFlags restores every flag to its compiled-in default — used
// between test cases that mutate global flag state.
func ResetFeatureFlags() {
	scalarCacheEnabled.Store(true)
	pluginHooksEnabled.Store(true)
	strictSchemaValidation.Store(false)
	customFlagsMu.Lock()
	customFlags = make(map[string]bool)
	customFlagsMu.Unlock()
}
