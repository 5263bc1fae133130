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

package base

import (
	"context"
	"encoding/json"
	"fmt"
)

// Document is a schemaless record stored by a Repository
type Document map[string]interface{}

// ID returns the document identifier, or "" when the document has none or
// its _id cannot be used as a key
func (d Document) ID() string {
	id, _ := d.ResolveID()
	return id
}

// ResolveID returns the string key for _id. Strings are used as-is, values
// with a Hex method (ObjectIDs) by their hex form and numbers in decimal.
// Any other _id yields ErrInvalidDocumentID; a missing _id yields "".
func (d Document) ResolveID() (string, error) {
	switch id := d["_id"].(type) {
	case nil:
		return "", nil
	case string:
		return id, nil
	case interface{ Hex() string }:
		return id.Hex(), nil
	case json.Number:
		return id.String(), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(id), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrInvalidDocumentID, id)
	}
}

// Repository is the CRUD contract modules use to persist state in a document store.
// Lookups that match nothing return ErrDocumentNotFound.
type Repository interface {
	// Collection returns the name of the collection or table the repository targets
	Collection() string

	FindByID(ctx context.Context, id string) (Document, error)
	FindOne(ctx context.Context, query Document) (Document, error)
	Find(ctx context.Context, query Document) ([]Document, error)
	Create(ctx context.Context, data Document) (Document, error)
	Update(ctx context.Context, id string, data Document) (Document, error)
	Delete(ctx context.Context, id string) (Document, error)
	DeleteMany(ctx context.Context, query Document) ([]Document, error)

	FindByIDAndUpdate(ctx context.Context, id string, data Document) (Document, error)
	FindByIDAndDelete(ctx context.Context, id string) (Document, error)
	FindOneAndUpdate(ctx context.Context, query Document, data Document) (Document, error)
	FindOneAndDelete(ctx context.Context, query Document) (Document, error)
}
