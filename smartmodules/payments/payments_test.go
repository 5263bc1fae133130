// Copyright 2025 AxonFlow
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package payments_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamangupta/moa-mockup/modules/base"
	"github.com/imamangupta/moa-mockup/modules/config"
	"github.com/imamangupta/moa-mockup/modules/execution"
	"github.com/imamangupta/moa-mockup/modules/loader"
	"github.com/imamangupta/moa-mockup/modules/memory"
	"github.com/imamangupta/moa-mockup/modules/registry"
	"github.com/imamangupta/moa-mockup/shared/logger"
	"github.com/imamangupta/moa-mockup/smartmodules/payments"
)

func TestRegisteredWithLoader(t *testing.T) {
	symbols := loader.DefaultSources().Symbols()
	assert.Contains(t, symbols, "Charge")
	assert.Contains(t, symbols, "Refund")

	factory, err := loader.DefaultSources().Load("payments/Charge.module.go", "Charge")
	require.NoError(t, err)
	assert.IsType(t, &payments.Charge{}, factory())
}

func TestRegistryResolvesCharge(t *testing.T) {
	cfg := config.Default()
	cfg.Root = ".."

	reg := registry.NewRegistry(registry.WithLogger(logger.Discard()))
	require.NoError(t, reg.Init(context.Background(), cfg))

	mod, err := reg.GetModuleByType("smart-modules.charge")
	require.NoError(t, err)
	assert.Equal(t, "Charge", mod.Description().DisplayName)

	all := reg.GetAllModules()
	assert.Contains(t, all, "smart-modules.charge")
	assert.Contains(t, all, "smart-modules.refund")
}

func newModules() (*payments.Charge, *payments.Refund) {
	charges := memory.NewRepository("charges")
	charge := payments.NewCharge()
	charge.Store = charges

	refund := payments.NewRefund()
	refund.Store = memory.NewRepository("refunds")
	refund.Charges = charges
	return charge, refund
}

func TestCharge_Lifecycle(t *testing.T) {
	ctx := context.Background()
	charge, refund := newModules()

	created, err := charge.Execute(ctx, "create", map[string]interface{}{"amount": 25, "currency": "EUR"})
	require.NoError(t, err)
	id := created["_id"].(string)
	assert.Equal(t, "eur", created["currency"])
	assert.Equal(t, payments.StatusPending, created["status"])

	_, err = refund.Execute(ctx, "create", map[string]interface{}{"charge_id": id})
	assert.True(t, errors.Is(err, base.ErrRejected), "pending charges cannot be refunded")

	captured, err := charge.Execute(ctx, "capture", map[string]interface{}{"id": id})
	require.NoError(t, err)
	assert.Equal(t, payments.StatusCaptured, captured["status"])

	_, err = charge.Execute(ctx, "capture", map[string]interface{}{"id": id})
	assert.True(t, errors.Is(err, base.ErrRejected), "captured charges cannot be captured again")

	_, err = refund.Execute(ctx, "create", map[string]interface{}{"charge_id": id, "amount": 30})
	assert.True(t, errors.Is(err, base.ErrRejected), "refund cannot exceed the charge")

	refunded, err := refund.Execute(ctx, "create", map[string]interface{}{"charge_id": id, "amount": 10})
	require.NoError(t, err)
	assert.Equal(t, 10.0, refunded["amount"])

	got, err := charge.Execute(ctx, "get", map[string]interface{}{"id": id})
	require.NoError(t, err)
	assert.Equal(t, payments.StatusRefunded, got["status"])

	listed, err := charge.Execute(ctx, "list", map[string]interface{}{"status": payments.StatusRefunded})
	require.NoError(t, err)
	assert.Equal(t, 1, listed["count"])
}

func TestCharge_Errors(t *testing.T) {
	ctx := context.Background()
	charge, refund := newModules()

	_, err := charge.Execute(ctx, "create", map[string]interface{}{"amount": -1})
	assert.True(t, errors.Is(err, base.ErrRejected))

	_, err = charge.Execute(ctx, "create", map[string]interface{}{"amount": "ten"})
	assert.True(t, errors.Is(err, execution.ErrInvalidParameters))

	_, err = charge.Execute(ctx, "get", map[string]interface{}{"id": "missing"})
	assert.True(t, errors.Is(err, base.ErrDocumentNotFound))

	_, err = refund.Execute(ctx, "create", map[string]interface{}{"charge_id": "missing"})
	assert.True(t, errors.Is(err, base.ErrDocumentNotFound))

	_, err = charge.Execute(ctx, "void", nil)
	assert.True(t, errors.Is(err, execution.ErrUnsupportedFunction))
}

func TestCharge_JSONRoundTrip(t *testing.T) {
	charge := payments.NewCharge()
	charge.DefaultCurrency = "gbp"
	charge.Store = memory.NewRepository("charges")

	data, err := json.Marshal(charge)
	require.NoError(t, err)
	assert.JSONEq(t, `{"collection":"charges","default_currency":"gbp"}`, string(data))

	restored := payments.NewCharge()
	require.NoError(t, json.Unmarshal(data, restored))
	assert.Equal(t, "gbp", restored.DefaultCurrency)
	assert.Nil(t, restored.Store)
	assert.NotNil(t, restored.Repository(), "repository falls back to the shared provider")
}

func TestCharge_ExecutedAsNodes(t *testing.T) {
	ctx := context.Background()
	charge, _ := newModules()
	outputs := execution.NewOutputs()

	create := &execution.NodeExecutor{
		NodeID:     "create",
		NodeType:   "smart-modules.charge",
		Function:   "create",
		Module:     charge,
		Parameters: map[string]interface{}{"amount": 5},
		Outputs:    outputs,
		Logger:     logger.Discard(),
	}
	_, err := create.Run(ctx)
	require.NoError(t, err)

	capture := &execution.NodeExecutor{
		NodeID:     "capture",
		NodeType:   "smart-modules.charge",
		Function:   "capture",
		Module:     charge,
		Parameters: map[string]interface{}{"id": "{{nodes.create.output._id}}"},
		Outputs:    outputs,
		Logger:     logger.Discard(),
	}
	out, err := capture.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, payments.StatusCaptured, out["status"])

	_, err = (&execution.NodeExecutor{
		NodeType: "smart-modules.charge", Function: "create", Module: charge,
		Parameters: map[string]interface{}{"amount": "five"},
	}).Run(ctx)
	assert.True(t, errors.Is(err, execution.ErrInvalidParameters))
}
