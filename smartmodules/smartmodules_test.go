// Copyright 2025 AxonFlow
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package smartmodules

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamangupta/moa-mockup/modules/base"
	"github.com/imamangupta/moa-mockup/modules/memory"
)

func TestRepository_FallbackIsShared(t *testing.T) {
	SetRepositoryProvider(nil)

	a := Repository("orders")
	b := Repository("orders")
	assert.Same(t, a, b)
	assert.NotSame(t, a, Repository("invoices"))
	assert.Equal(t, "orders", a.Collection())
}

func TestRepository_Provider(t *testing.T) {
	var requested []string
	shared := memory.NewRepository("shared")
	SetRepositoryProvider(func(collection string) base.Repository {
		requested = append(requested, collection)
		return shared
	})
	t.Cleanup(func() { SetRepositoryProvider(nil) })

	assert.Same(t, shared, Repository("charges"))
	assert.Equal(t, []string{"charges"}, requested)
}

func TestStringParam(t *testing.T) {
	params := map[string]interface{}{"name": "widget", "count": 3}

	got, err := StringParam(params, "name")
	require.NoError(t, err)
	assert.Equal(t, "widget", got)

	_, err = StringParam(params, "count")
	assert.ErrorContains(t, err, "must be a string")

	_, err = StringParam(params, "missing")
	assert.ErrorContains(t, err, "missing parameter")
}

func TestNumberParam(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		want    float64
		wantErr bool
	}{
		{"float", 2.5, 2.5, false},
		{"int", 4, 4, false},
		{"int64", int64(7), 7, false},
		{"json number", json.Number("1.25"), 1.25, false},
		{"string", "12", 0, true},
		{"nil", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NumberParam(map[string]interface{}{"v": tt.value}, "v")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResults(t *testing.T) {
	out := Results([]base.Document{{"_id": "a"}, {"_id": "b"}})
	assert.Equal(t, 2, out["count"])
	assert.Len(t, out["items"], 2)

	empty := Results(nil)
	assert.Equal(t, 0, empty["count"])
	assert.Equal(t, []interface{}{}, empty["items"])
}
