package config

import "testing"

func TestScalarCacheToggle(t *testing.T) {
	ResetFeatureFlags()
	defer ResetFeatureFlags()

	if !IsScalarCacheEnabled() {
		t.Fatal("scalar cache should be enabled by default")
	}
	DisableScalarCache()
	if IsScalarCacheEnabled() {
		t.Fatal("scalar cache should be disabled")
	}
	EnableScalarCache()
	if !IsScalarCacheEnabled() {
		t.Fatal("scalar cache should be enabled again")
	}
}

func TestWithScalarCacheDisabledRestoresPriorState(t *testing.T) {
	ResetFeatureFlags()
	defer ResetFeatureFlags()

	restore := WithScalarCacheDisabled()
	if IsScalarCacheEnabled() {
		t.Fatal("scalar cache should be disabled inside the scoped toggle")
	}
	restore()
	if !IsScalarCacheEnabled() {
		t.Fatal("scalar cache should be restored to enabled")
	}
}

func TestStrictSchemaValidationDefaultOff(t *testing.T) {
	ResetFeatureFlags()
	defer ResetFeatureFlags()

	if IsStrictSchemaValidationEnabled() {
		t.Fatal("strict schema validation should default to off")
	}
	restore := WithStrictSchemaValidationEnabled()
	if !IsStrictSchemaValidationEnabled() {
		t.Fatal("strict schema validation should be on inside the scoped toggle")
	}
	restore()
	if IsStrictSchemaValidationEnabled() {
		t.Fatal("strict schema validation should be restored to off")
	}
}

func TestCustomFeatureFlag(t *testing.T) {
	ResetFeatureFlags()
	defer ResetFeatureFlags()

	if IsFeatureEnabled("my-plugin") {
		t.Fatal("unset custom flag should report disabled")
	}
	EnableFeature("my-plugin")
	if !IsFeatureEnabled("My-Plugin") {
		t.Fatal("custom flags should be case-insensitive")
	}
	DisableFeature("my-plugin")
	if IsFeatureEnabled("my-plugin") {
		t.Fatal("custom flag should be disabled")
	}
}
