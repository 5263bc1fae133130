// Copyright 2025 AxonFlow
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamangupta/moa-mockup/modules/base"
	"github.com/imamangupta/moa-mockup/modules/loader"
	"github.com/imamangupta/moa-mockup/modules/loader/loadertest"
)

func TestJSONCodec_DescriptorRoundTrip(t *testing.T) {
	codec := NewJSONCodec(loadertest.Sources(t, "Charge"))
	d := loader.NewDescriptor("smart-modules", "Charge", "/srv/modules/payments/Charge.module.go")

	data, err := codec.EncodeDescriptor(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "Charge",
		"locator": "/srv/modules/payments/Charge.module.go",
		"qualified_type": "smart-modules.charge"
	}`, string(data))

	decoded, err := codec.DecodeDescriptor(data)
	require.NoError(t, err)
	assert.Equal(t, d, decoded)

	again, err := codec.EncodeDescriptor(decoded)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestJSONCodec_DecodeDescriptorInvalid(t *testing.T) {
	codec := NewJSONCodec(nil)

	tests := []struct {
		name string
		data string
	}{
		{"not json", "charge"},
		{"missing name", `{"qualified_type":"smart-modules.charge"}`},
		{"missing qualified type", `{"name":"Charge"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.DecodeDescriptor([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestJSONCodec_ModuleRoundTrip(t *testing.T) {
	sources := loadertest.Sources(t, "Charge")
	codec := NewJSONCodec(sources)
	d := loader.NewDescriptor("smart-modules", "Charge", "Charge.module.go")

	factory, err := sources.Load(d.Locator, d.Name)
	require.NoError(t, err)
	original := factory().(*loadertest.Module)
	original.Version = 7
	original.Tags = []string{"billing", "stripe"}

	data, err := codec.EncodeModule(loader.LoadedModule{Name: "Charge", Instance: original})
	require.NoError(t, err)

	decoded, err := codec.DecodeModule(d, data)
	require.NoError(t, err)
	assert.Equal(t, "Charge", decoded.Name)

	mod, ok := decoded.Instance.(*loadertest.Module)
	require.True(t, ok)
	assert.NotSame(t, original, mod)
	assert.Equal(t, original, mod)

	again, err := codec.EncodeModule(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestJSONCodec_DecodeModuleErrors(t *testing.T) {
	d := loader.NewDescriptor("smart-modules", "Charge", "Charge.module.go")

	t.Run("no sources", func(t *testing.T) {
		_, err := NewJSONCodec(nil).DecodeModule(d, []byte(`{}`))
		assert.Error(t, err)
	})

	t.Run("unknown symbol", func(t *testing.T) {
		_, err := NewJSONCodec(loadertest.Sources(t, "Refund")).DecodeModule(d, []byte(`{}`))
		assert.ErrorIs(t, err, loader.ErrSymbolNotFound)
	})

	t.Run("corrupt payload", func(t *testing.T) {
		_, err := NewJSONCodec(loadertest.Sources(t, "Charge")).DecodeModule(d, []byte(`{"version":"seven"}`))
		assert.Error(t, err)
	})

	t.Run("panicking constructor", func(t *testing.T) {
		sources := loader.NewStaticSourceLoader()
		require.NoError(t, sources.Register("Charge", func() base.Module { panic("boom") }))
		_, err := NewJSONCodec(sources).DecodeModule(d, []byte(`{}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "panicked")
	})

	t.Run("nil constructor result", func(t *testing.T) {
		sources := loader.NewStaticSourceLoader()
		require.NoError(t, sources.Register("Charge", func() base.Module { return nil }))
		_, err := NewJSONCodec(sources).DecodeModule(d, []byte(`{}`))
		assert.Error(t, err)
	})
}

func TestJSONCodec_EncodeModuleErrors(t *testing.T) {
	codec := NewJSONCodec(nil)

	_, err := codec.EncodeModule(loader.LoadedModule{Name: "Charge"})
	assert.Error(t, err)

	_, err = codec.EncodeModule(loader.LoadedModule{Name: "Stream", Instance: &channelModule{C: make(chan int)}})
	assert.Error(t, err)
}

type channelModule struct {
	loadertest.Module
	C chan int
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, "app:module:", escapeGlob("app:module:"))
	assert.Equal(t, `a\*b\?c\[d\]e\\f`, escapeGlob(`a*b?c[d]e\f`))
}
