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

package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/imamangupta/moa-mockup/modules/base"
	"github.com/imamangupta/moa-mockup/modules/execution"
	"github.com/imamangupta/moa-mockup/modules/loader"
	"github.com/imamangupta/moa-mockup/smartmodules"
)

func init() {
	loader.Register("Product", func() base.Module { return NewProduct() })
}

// Product manages the product catalogue
type Product struct {
	Collection string `json:"collection"`

	Store base.Repository `json:"-"`
}

// NewProduct creates a Product module over the "products" collection
func NewProduct() *Product {
	return &Product{Collection: "products"}
}

// Description implements base.Module
func (p *Product) Description() base.Description {
	create := base.Function{Name: "create", Parameters: []map[string]interface{}{
		{"name": "sku", "type": "string", "required": true},
		{"name": "name", "type": "string", "required": true},
		{"name": "price", "type": "number", "required": true},
	}}
	get := base.Function{Name: "get", Parameters: []map[string]interface{}{
		{"name": "id", "type": "string", "required": true},
	}}
	list := base.Function{Name: "list"}
	remove := base.Function{Name: "delete", Parameters: []map[string]interface{}{
		{"name": "id", "type": "string", "required": true},
	}}

	return base.Description{
		DisplayName:        "Product",
		SupportedFunctions: []base.Function{create, get, list, remove},
		HTTPMethods: []base.HTTPMethod{
			{Function: create, Method: "POST", Endpoint: "/products"},
			{Function: get, Method: "GET", Endpoint: "/products/{id}"},
			{Function: list, Method: "GET", Endpoint: "/products"},
			{Function: remove, Method: "DELETE", Endpoint: "/products/{id}"},
		},
	}
}

// Repository implements base.Module
func (p *Product) Repository() base.Repository {
	if p.Store != nil {
		return p.Store
	}
	return smartmodules.Repository(p.Collection)
}

// Execute implements base.Executable
func (p *Product) Execute(ctx context.Context, function string, params map[string]interface{}) (map[string]interface{}, error) {
	repo := p.Repository()

	switch function {
	case "create":
		sku, err := smartmodules.StringParam(params, "sku")
		if err != nil {
			return nil, err
		}
		name, err := smartmodules.StringParam(params, "name")
		if err != nil {
			return nil, err
		}
		price, err := smartmodules.NumberParam(params, "price")
		if err != nil {
			return nil, err
		}
		if price < 0 {
			return nil, fmt.Errorf("%w: price must not be negative", base.ErrRejected)
		}

		if _, err := repo.FindOne(ctx, base.Document{"sku": sku}); err == nil {
			return nil, fmt.Errorf("%w: product with sku '%s' already exists", base.ErrRejected, sku)
		} else if !errors.Is(err, base.ErrDocumentNotFound) {
			return nil, err
		}

		doc, err := repo.Create(ctx, base.Document{"sku": sku, "name": name, "price": price})
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

	case "list":
		docs, err := repo.Find(ctx, base.Document{})
		if err != nil {
			return nil, err
		}
		return smartmodules.Results(docs), nil

	case "delete":
		id, err := smartmodules.StringParam(params, "id")
		if err != nil {
			return nil, err
		}
		doc, err := repo.FindByIDAndDelete(ctx, id)
		if err != nil {
			return nil, err
		}
		return smartmodules.Result(doc), nil

	default:
		return nil, fmt.Errorf("%w: product does not support '%s'", execution.ErrUnsupportedFunction, function)
	}
}
