// Copyright 2025 AxonFlow
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamangupta/moa-mockup/modules/loader"
)

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR", "test_value")
	t.Setenv("OTHER_VAR", "other_value")
	t.Setenv("UNDEFINED_VAR", "")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"dollar brace syntax", "prefix ${TEST_VAR} suffix", "prefix test_value suffix"},
		{"dollar syntax", "prefix $TEST_VAR suffix", "prefix test_value suffix"},
		{"default value - var exists", "${TEST_VAR:-default}", "test_value"},
		{"default value - var not exists", "${UNDEFINED_VAR:-default_val}", "default_val"},
		{"undefined var - empty result", "${UNDEFINED_VAR}", ""},
		{"multiple vars", "${TEST_VAR} and ${OTHER_VAR}", "test_value and other_value"},
		{"no vars", "plain text without variables", "plain text without variables"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestYAMLConfigFileLoader_LoadNamespaces(t *testing.T) {
	t.Setenv("TEST_REDIS_HOST", "cache.internal")
	t.Setenv("TEST_REDIS_PORT", "")

	path := writeConfig(t, `
version: "1.0"
namespaces:
  smart-modules:
    enabled: true
    root: /srv/smart
  billing:
    enabled: true
    root: /srv/billing
    extensions: [so]
    collision: keep-first
    cache:
      enabled: true
      host: ${TEST_REDIS_HOST}
      port: ${TEST_REDIS_PORT:-6390}
      db: 1
      prefix: billing
  legacy:
    enabled: false
    root: /srv/legacy
`)

	l, err := NewYAMLConfigFileLoader(path)
	require.NoError(t, err)

	configs, err := l.LoadNamespaces()
	require.NoError(t, err)
	require.Len(t, configs, 2, "disabled namespaces are skipped")

	billing := configs[0]
	assert.Equal(t, "billing", billing.Namespace)
	assert.Equal(t, "/srv/billing", billing.Root)
	assert.Equal(t, []string{"so"}, billing.Extensions)
	assert.Equal(t, loader.CollisionKeepFirst, billing.Collision)
	assert.True(t, billing.UseCache)
	assert.Equal(t, CacheOptions{Host: "cache.internal", Port: 6390, DB: 1, Prefix: "billing"}, billing.Cache)

	smart := configs[1]
	assert.Equal(t, "smart-modules", smart.Namespace)
	assert.Equal(t, []string{"go", "so"}, smart.Extensions)
	assert.Equal(t, loader.CollisionKeepLast, smart.Collision)
	assert.False(t, smart.UseCache)
}

func TestYAMLConfigFileLoader_Reload(t *testing.T) {
	path := writeConfig(t, "version: \"1.0\"\nnamespaces:\n  a:\n    enabled: true\n")

	l, err := NewYAMLConfigFileLoader(path)
	require.NoError(t, err)
	configs, err := l.LoadNamespaces()
	require.NoError(t, err)
	require.Len(t, configs, 1)

	require.NoError(t, os.WriteFile(path, []byte("version: \"1.0\"\nnamespaces:\n  a:\n    enabled: true\n  b:\n    enabled: true\n"), 0o644))
	require.NoError(t, l.Reload())

	configs, err = l.LoadNamespaces()
	require.NoError(t, err)
	assert.Len(t, configs, 2)
}

func TestNewYAMLConfigFileLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "version: [unclosed"},
		{"missing version", "namespaces:\n  a:\n    enabled: true\n"},
		{"dotted namespace", "version: \"1\"\nnamespaces:\n  a.b:\n    enabled: true\n"},
		{"bad collision", "version: \"1\"\nnamespaces:\n  a:\n    collision: merge\n"},
		{"bad port", "version: \"1\"\nnamespaces:\n  a:\n    cache:\n      port: 99999\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewYAMLConfigFileLoader(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := NewYAMLConfigFileLoader(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestGenerateExampleConfigFile(t *testing.T) {
	t.Setenv("MODULES_ROOT", "")
	t.Setenv("BILLING_MODULES_ROOT", "")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_PORT", "")
	t.Setenv("REDIS_PASSWORD", "")

	cfg, err := ParseConfigFile([]byte(GenerateExampleConfigFile()))
	require.NoError(t, err)
	assert.Equal(t, "1.0", cfg.Version)
	assert.Len(t, cfg.Namespaces, 2)

	configs, err := cfg.Configs()
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "smart-modules", configs[0].Namespace)
	assert.Equal(t, "smartmodules", configs[0].Root)
}
