// Copyright 2025 AxonFlow
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package redis_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamangupta/moa-mockup/modules/base"
	"github.com/imamangupta/moa-mockup/modules/loader"
	"github.com/imamangupta/moa-mockup/modules/loader/loadertest"
	"github.com/imamangupta/moa-mockup/modules/metrics"
	moduleredis "github.com/imamangupta/moa-mockup/modules/redis"
	"github.com/imamangupta/moa-mockup/shared/logger"
)

type fixture struct {
	t       *testing.T
	server  *miniredis.Miniredis
	root    string
	sources *loader.StaticSourceLoader
	prefix  string
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := loadertest.WriteTree(t, t.TempDir(),
		"payments/Charge.module.go",
		"payments/Refund.module.go",
		"inventory/Product.module.go",
	)
	return &fixture{
		t:       t,
		server:  miniredis.RunT(t),
		root:    root,
		sources: loadertest.Sources(t, "Charge", "Refund", "Product"),
		metrics: metrics.New(prometheus.NewRegistry()),
	}
}

// backend builds a fresh backend (as a restarted process would) over the shared store
func (f *fixture) backend() (*moduleredis.Backend, *loadertest.CountingScanner, *bytes.Buffer) {
	f.t.Helper()
	var buf bytes.Buffer
	log := logger.NewWithWriter("test", &buf)

	dir := loader.NewDirectoryBackend(loader.Options{
		Root:    f.root,
		Sources: f.sources,
		Logger:  log,
	})
	scanner := loadertest.NewCountingScanner(dir)

	port, err := strconv.Atoi(f.server.Port())
	require.NoError(f.t, err)

	b := moduleredis.NewBackend(scanner, moduleredis.Options{
		Host:    f.server.Host(),
		Port:    port,
		Prefix:  f.prefix,
		Sources: f.sources,
		Logger:  log,
		Metrics: f.metrics,
	})
	f.t.Cleanup(func() { _ = b.Disconnect(context.Background()) })
	return b, scanner, &buf
}

func names(modules []loader.LoadedModule) []string {
	out := make([]string, 0, len(modules))
	for _, m := range modules {
		out = append(out, m.Name)
	}
	return out
}

func TestBackend_ColdStartWritesThrough(t *testing.T) {
	f := newFixture(t)
	b, scanner, _ := f.backend()

	require.NoError(t, b.LoadAll(context.Background()))

	assert.Equal(t, 1, scanner.Discovers())
	assert.Equal(t, 1, scanner.Instantiates())
	assert.ElementsMatch(t, []string{"Charge", "Refund", "Product"}, names(b.Modules()))

	list, err := f.server.List("modules:list:smart-modules")
	require.NoError(t, err)
	assert.Len(t, list, 3)

	for _, key := range []string{"module:charge", "module:refund", "module:product"} {
		assert.True(t, f.server.Exists(key), key)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CacheRequests.WithLabelValues("smart-modules", metrics.CacheMiss)))
}

func TestBackend_WarmStartSkipsScan(t *testing.T) {
	f := newFixture(t)
	first, _, _ := f.backend()
	require.NoError(t, first.LoadAll(context.Background()))

	second, scanner, _ := f.backend()
	require.NoError(t, second.LoadAll(context.Background()))

	assert.Equal(t, 0, scanner.Discovers(), "filesystem scan must not run on a cache hit")
	assert.Equal(t, 0, scanner.Instantiates())
	assert.ElementsMatch(t, names(first.Modules()), names(second.Modules()))
	assert.ElementsMatch(t, first.Known(), second.Known())

	for _, m := range second.Modules() {
		mod, ok := m.Instance.(*loadertest.Module)
		require.True(t, ok)
		assert.Equal(t, m.Name, mod.Desc.DisplayName)
		assert.Equal(t, 1, mod.Version)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CacheRequests.WithLabelValues("smart-modules", metrics.CacheHit)))
}

func TestBackend_SecondLoadAllOnSameBackendHitsCache(t *testing.T) {
	f := newFixture(t)
	b, scanner, _ := f.backend()

	require.NoError(t, b.LoadAll(context.Background()))
	require.NoError(t, b.LoadAll(context.Background()))

	assert.Equal(t, 1, scanner.Discovers())
	assert.Len(t, b.Modules(), 3)
}

func TestBackend_PartialCacheDropsMissingItems(t *testing.T) {
	f := newFixture(t)
	first, _, _ := f.backend()
	require.NoError(t, first.LoadAll(context.Background()))

	f.server.Del("module:refund")

	second, scanner, _ := f.backend()
	require.NoError(t, second.LoadAll(context.Background()))

	assert.Equal(t, 0, scanner.Discovers())
	assert.Len(t, second.Known(), 3, "descriptor of a missing item is retained")
	assert.ElementsMatch(t, []string{"Charge", "Product"}, names(second.Modules()))
}

func TestBackend_CorruptEntriesAreDropped(t *testing.T) {
	f := newFixture(t)
	first, _, _ := f.backend()
	require.NoError(t, first.LoadAll(context.Background()))

	_, err := f.server.RPush("modules:list:smart-modules", "not-json", `{"name":""}`)
	require.NoError(t, err)
	require.NoError(t, f.server.Set("module:product", "{broken"))

	second, scanner, buf := f.backend()
	require.NoError(t, second.LoadAll(context.Background()))

	assert.Equal(t, 0, scanner.Discovers())
	assert.Len(t, second.Known(), 3)
	assert.ElementsMatch(t, []string{"Charge", "Refund"}, names(second.Modules()))

	entries, err := logger.ReadEntries(buf)
	require.NoError(t, err)
	warnings := logger.Messages(entries, logger.WARN)
	assert.Contains(t, warnings, "Dropping undecodable cached descriptor")
	assert.Contains(t, warnings, "Failed to deserialize cached module")
}

func TestBackend_EmptyItemsFallBackToScan(t *testing.T) {
	f := newFixture(t)
	first, _, _ := f.backend()
	require.NoError(t, first.LoadAll(context.Background()))

	f.server.Del("module:charge")
	f.server.Del("module:refund")
	f.server.Del("module:product")

	second, scanner, _ := f.backend()
	require.NoError(t, second.LoadAll(context.Background()))

	assert.Equal(t, 1, scanner.Discovers(), "zero rehydrated modules is a miss")
	assert.Len(t, second.Known(), 3, "stale cached descriptors are not duplicated")
	assert.Len(t, second.Modules(), 3)
	assert.True(t, f.server.Exists("module:charge"), "write-through repopulates items")
}

func TestBackend_UnreachableCacheFallsBack(t *testing.T) {
	f := newFixture(t)
	f.server.SetError("ERR server unavailable")

	b, scanner, buf := f.backend()
	require.NoError(t, b.LoadAll(context.Background()), "cache errors never fail LoadAll")

	assert.Equal(t, 1, scanner.Discovers())
	assert.Len(t, b.Modules(), 3)

	entries, err := logger.ReadEntries(buf)
	require.NoError(t, err)
	warnings := logger.Messages(entries, logger.WARN)
	assert.Contains(t, warnings, "Failed to read module list from Redis cache")
	assert.Contains(t, warnings, "Failed to cache modules in Redis")

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CacheRequests.WithLabelValues("smart-modules", metrics.CacheErr)))
}

func TestBackend_DiscoveryErrorPropagates(t *testing.T) {
	f := newFixture(t)
	f.root = filepath.Join(t.TempDir(), "missing")

	b, _, _ := f.backend()
	err := b.LoadAll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, base.ErrDiscovery))
	assert.False(t, f.server.Exists("modules:list:smart-modules"))
}

func TestBackend_FlushAll(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.server.Set("unrelated", "keep-me"))

	b, scanner, _ := f.backend()
	require.NoError(t, b.LoadAll(context.Background()))

	require.NoError(t, b.FlushAll(context.Background()))
	assert.Empty(t, b.Known())
	assert.Empty(t, b.Modules())

	for _, key := range f.server.Keys() {
		assert.NotContains(t, key, "module:", "item key %s survived flush", key)
	}
	assert.False(t, f.server.Exists(b.ListKey()))
	assert.True(t, f.server.Exists("unrelated"))

	// Indistinguishable from a cold start
	require.NoError(t, b.LoadAll(context.Background()))
	assert.Equal(t, 2, scanner.Discovers())
	assert.Len(t, b.Modules(), 3)
}

func TestBackend_FlushAllFailure(t *testing.T) {
	f := newFixture(t)
	b, _, _ := f.backend()
	require.NoError(t, b.LoadAll(context.Background()))

	f.server.SetError("ERR server unavailable")
	err := b.FlushAll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, base.ErrTeardown))
	assert.Empty(t, b.Modules(), "in-memory state is cleared even when the store fails")
}

func TestBackend_KeyPrefix(t *testing.T) {
	f := newFixture(t)
	f.prefix = "tenant-a"

	b, _, _ := f.backend()
	require.NoError(t, b.LoadAll(context.Background()))

	assert.Equal(t, "tenant-a:modules:list:smart-modules", b.ListKey())
	assert.Equal(t, "tenant-a:module:charge", b.ItemKey("Charge"))
	assert.True(t, f.server.Exists("tenant-a:module:charge"))
	assert.False(t, f.server.Exists("module:charge"))

	require.NoError(t, b.FlushAll(context.Background()))
	assert.Empty(t, f.server.Keys())
}

func TestKeyPrefix(t *testing.T) {
	assert.Equal(t, "", moduleredis.KeyPrefix(""))
	assert.Equal(t, "app:", moduleredis.KeyPrefix("app"))
	assert.Equal(t, "app:", moduleredis.KeyPrefix("app:"))
}

type unserializable struct {
	loadertest.Module
	Events chan string `json:"events"`
}

func TestBackend_UnserializableModuleIsNotCached(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sources.Register("Stream", func() base.Module {
		return &unserializable{Events: make(chan string)}
	}))
	loadertest.WriteTree(t, f.root, "events/Stream.module.go")

	first, _, buf := f.backend()
	require.NoError(t, first.LoadAll(context.Background()))
	assert.Len(t, first.Modules(), 4)
	assert.False(t, f.server.Exists("module:stream"))

	entries, err := logger.ReadEntries(buf)
	require.NoError(t, err)
	assert.Contains(t, logger.Messages(entries, logger.WARN), "Failed to serialize module")

	second, scanner, _ := f.backend()
	require.NoError(t, second.LoadAll(context.Background()))
	assert.Equal(t, 0, scanner.Discovers())
	assert.Len(t, second.Known(), 4)
	assert.NotContains(t, names(second.Modules()), "Stream")
}

func TestBackend_Disconnect(t *testing.T) {
	f := newFixture(t)
	b, _, _ := f.backend()

	require.NoError(t, b.Ping(context.Background()))
	require.NoError(t, b.Disconnect(context.Background()))
	require.NoError(t, b.Disconnect(context.Background()), "disconnect is idempotent")

	err := b.Ping(context.Background())
	assert.True(t, errors.Is(err, base.ErrCache))

	var _ loader.Disconnector = b
	var _ loader.Backend = b
}
