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
	"strings"

	"github.com/imamangupta/moa-mockup/modules/base"
	"github.com/imamangupta/moa-mockup/modules/execution"
	"github.com/imamangupta/moa-mockup/modules/loader"
	"github.com/imamangupta/moa-mockup/smartmodules"
)

func init() {
	loader.Register("Charge", func() base.Module { return NewCharge() })
}

// Charge statuses
const (
	StatusPending  = "pending"
	StatusCaptured = "captured"
	StatusRefunded = "refunded"
)

// Charge creates and captures payment charges
type Charge struct {
	Collection      string `json:"collection"`
	DefaultCurrency string `json:"default_currency"`

	Store base.Repository `json:"-"`
}

// NewCharge creates a Charge module over the "charges" collection
func NewCharge() *Charge {
	return &Charge{
		Collection:      "charges",
		DefaultCurrency: "usd",
	}
}

// Description implements base.Module
func (c *Charge) Description() base.Description {
	create := base.Function{Name: "create", Parameters: []map[string]interface{}{
		{"name": "amount", "type": "number", "required": true},
		{"name": "currency", "type": "string"},
	}}
	get := base.Function{Name: "get", Parameters: []map[string]interface{}{
		{"name": "id", "type": "string", "required": true},
	}}
	capture := base.Function{Name: "capture", Parameters: []map[string]interface{}{
		{"name": "id", "type": "string", "required": true},
	}}
	list := base.Function{Name: "list", Parameters: []map[string]interface{}{
		{"name": "status", "type": "string"},
	}}

	return base.Description{
		DisplayName:        "Charge",
		SupportedFunctions: []base.Function{create, get, capture, list},
		HTTPMethods: []base.HTTPMethod{
			{Function: create, Method: "POST", Endpoint: "/charges"},
			{Function: get, Method: "GET", Endpoint: "/charges/{id}"},
			{Function: capture, Method: "POST", Endpoint: "/charges/{id}/capture"},
			{Function: list, Method: "GET", Endpoint: "/charges"},
		},
	}
}

// Repository implements base.Module
func (c *Charge) Repository() base.Repository {
	if c.Store != nil {
		return c.Store
	}
	return smartmodules.Repository(c.Collection)
}

// Execute implements base.Executable
func (c *Charge) Execute(ctx context.Context, function string, params map[string]interface{}) (map[string]interface{}, error) {
	repo := c.Repository()

	switch function {
	case "create":
		amount, err := smartmodules.NumberParam(params, "amount")
		if err != nil {
			return nil, err
		}
		if amount <= 0 {
			return nil, fmt.Errorf("%w: amount must be positive", base.ErrRejected)
		}
		currency := c.DefaultCurrency
		if cur, ok := params["currency"].(string); ok && cur != "" {
			currency = strings.ToLower(cur)
		}
		doc, err := repo.Create(ctx, base.Document{
			"amount":   amount,
			"currency": currency,
			"status":   StatusPending,
		})
		if err != nil {
			return nil, err
		}
		return smartmodules.Result(doc), nil

	case "get":
		id, err := smartmodules.StringParam(params, "id")
		if err != nil {
			return nil, err
		}
		doc, err := repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return smartmodules.Result(doc), nil

	case "capture":
		id, err := smartmodules.StringParam(params, "id")
		if err != nil {
			return nil, err
		}
		charge, err := repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if charge["status"] != StatusPending {
			return nil, fmt.Errorf("%w: charge '%s' is %v, only pending charges can be captured", base.ErrRejected, id, charge["status"])
		}
		doc, err := repo.Update(ctx, id, base.Document{"status": StatusCaptured})
		if err != nil {
			return nil, err
		}
		return smartmodules.Result(doc), nil

	case "list":
		query := base.Document{}
		if status, ok := params["status"].(string); ok && status != "" {
			query["status"] = status
		}
		docs, err := repo.Find(ctx, query)
		if err != nil {
			return nil, err
		}
		return smartmodules.Results(docs), nil

	default:
		return nil, fmt.Errorf("%w: charge does not support '%s'", execution.ErrUnsupportedFunction, function)
	}
}
