// Copyright 2025 AxonFlow
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamangupta/moa-mockup/modules/config"
	"github.com/imamangupta/moa-mockup/modules/loader"
	"github.com/imamangupta/moa-mockup/modules/loader/loadertest"
	"github.com/imamangupta/moa-mockup/modules/redis"
	"github.com/imamangupta/moa-mockup/shared/logger"
)

func TestNewBackendFactory(t *testing.T) {
	factory := NewBackendFactory(loadertest.Sources(t, "Charge"))

	t.Run("filesystem", func(t *testing.T) {
		cfg := config.Default()
		cfg.Namespace = "payments"

		backend, err := factory(cfg, logger.Discard(), nil)
		require.NoError(t, err)
		assert.IsType(t, &loader.DirectoryBackend{}, backend)
		assert.Equal(t, "payments", backend.Namespace())
	})

	t.Run("cache", func(t *testing.T) {
		cfg := config.Default()
		cfg.UseCache = true
		cfg.Cache.Prefix = "moduled"

		backend, err := factory(cfg, logger.Discard(), nil)
		require.NoError(t, err)
		cached, ok := backend.(*redis.Backend)
		require.True(t, ok)
		defer cached.Disconnect(context.Background())

		assert.Equal(t, "smart-modules", cached.Namespace())
		assert.Equal(t, "moduled:modules:list:smart-modules", cached.ListKey())
	})

	t.Run("invalid", func(t *testing.T) {
		cfg := config.Default()
		cfg.Root = ""

		_, err := factory(cfg, logger.Discard(), nil)
		assert.Error(t, err)
	})
}
