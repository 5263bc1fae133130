// Copyright 2025 AxonFlow
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package payments

import (
	"context"
	"fmt"

	"github.com/imamangupta/moa-mockup/modules/base"
	"github.com/imamangupta/moa-mockup/modules/execution"
	"github.com/imamangupta/moa-mockup/modules/loader"
	"github.com/imamangupta/moa-mockup/smartmodules"
)

func init() {
	loader.Register("Refund", func() base.Module { return NewRefund() })
}

// Refund returns captured charges
type Refund struct {
	Collection       string `json:"collection"`
	ChargeCollection string `json:"charge_collection"`

	Store   base.Repository `json:"-"`
	Charges base.Repository `json:"-"`
}

// NewRefund creates a Refund module over the "refunds" collection
func NewRefund() *Refund {
	return &Refund{
		Collection:       "refunds",
		ChargeCollection: "charges",
	}
}

// Description implements base.Module
func (r *Refund) Description() base.Description {
	create := base.Function{Name: "create", Parameters: []map[string]interface{}{
		{"name": "charge_id", "type": "string", "required": true},
		{"name": "amount", "type": "number"},
	}}
	get := base.Function{Name: "get", Parameters: []map[string]interface{}{
		{"name": "id", "type": "string", "required": true},
	}}

	return base.Description{
		DisplayName:        "Refund",
		SupportedFunctions: []base.Function{create, get},
		HTTPMethods: []base.HTTPMethod{
			{Function: create, Method: "POST", Endpoint: "/refunds"},
			{Function: get, Method: "GET", Endpoint: "/refunds/{id}"},
		},
	}
}

// Repository implements base.Module
func (r *Refund) Repository() base.Repository {
	if r.Store != nil {
		return r.Store
	}
	return smartmodules.Repository(r.Collection)
}

func (r *Refund) charges() base.Repository {
	if r.Charges != nil {
		return r.Charges
	}
	return smartmodules.Repository(r.ChargeCollection)
}

// Execute implements base.Executable
func (r *Refund) Execute(ctx context.Context, function string, params map[string]interface{}) (map[string]interface{}, error) {
	switch function {
	case "create":
		chargeID, err := smartmodules.StringParam(params, "charge_id")
		if err != nil {
			return nil, err
		}
		charge, err := r.charges().FindByID(ctx, chargeID)
		if err != nil {
			return nil, err
		}
		if charge["status"] != StatusCaptured {
			return nil, fmt.Errorf("%w: charge '%s' is %v, only captured charges can be refunded", base.ErrRejected, chargeID, charge["status"])
		}

		charged, _ := smartmodules.NumberParam(charge, "amount")
		amount := charged
		if _, ok := params["amount"]; ok {
			if amount, err = smartmodules.NumberParam(params, "amount"); err != nil {
				return nil, err
			}
		}
		if amount <= 0 || amount > charged {
			return nil, fmt.Errorf("%w: refund amount must be between 0 and %v", base.ErrRejected, charged)
		}

		refund, err := r.Repository().Create(ctx, base.Document{
			"charge_id": chargeID,
			"amount":    amount,
		})
		if err != nil {
			return nil, err
		}
		if _, err := r.charges().Update(ctx, chargeID, base.Document{"status": StatusRefunded}); err != nil {
			return nil, err
		}
		return smartmodules.Result(refund), nil

	case "get":
		id, err := smartmodules.StringParam(params, "id")
		if err != nil {
			return nil, err
		}
		doc, err := r.Repository().FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return smartmodules.Result(doc), nil

	default:
		return nil, fmt.Errorf("%w: refund does not support '%s'", execution.ErrUnsupportedFunction, function)
	}
}
