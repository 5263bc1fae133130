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

package memory

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/imamangupta/moa-mockup/modules/base"
)

// Repository is an in-memory base.Repository. Queries match documents whose
// top-level fields equal every field of the query document.
// Thread-safe for concurrent access.
type Repository struct {
	collection string
	docs       map[string]base.Document
	order      []string
	mu         sync.RWMutex
}

// NewRepository creates an empty repository for collection
func NewRepository(collection string) *Repository {
	return &Repository{
		collection: collection,
		docs:       make(map[string]base.Document),
	}
}

// Collection implements base.Repository
func (r *Repository) Collection() string {
	return r.collection
}

// FindByID implements base.Repository
func (r *Repository) FindByID(ctx context.Context, id string) (base.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[id]
	if !ok {
		return nil, r.notFound("FindByID")
	}
	return clone(doc), nil
}

// FindOne implements base.Repository
func (r *Repository) FindOne(ctx context.Context, query base.Document) (base.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.first(query)
	if !ok {
		return nil, r.notFound("FindOne")
	}
	return clone(r.docs[id]), nil
}

// Find implements base.Repository
func (r *Repository) Find(ctx context.Context, query base.Document) ([]base.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := []base.Document{}
	for _, id := range r.order {
		if matches(r.docs[id], query) {
			docs = append(docs, clone(r.docs[id]))
		}
	}
	return docs, nil
}

// Create implements base.Repository. A missing _id is assigned a UUID.
func (r *Repository) Create(ctx context.Context, data base.Document) (base.Document, error) {
	doc := clone(data)
	id, err := doc.ResolveID()
	if err != nil {
		return nil, fmt.Errorf("%s Create: %w", r.collection, err)
	}
	if id == "" {
		id = uuid.NewString()
	}
	doc["_id"] = id

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.docs[id]; exists {
		return nil, fmt.Errorf("%s Create: duplicate id '%s'", r.collection, id)
	}
	r.docs[id] = doc
	r.order = append(r.order, id)
	return clone(doc), nil
}

// Update implements base.Repository and returns the updated document
func (r *Repository) Update(ctx context.Context, id string, data base.Document) (base.Document, error) {
	return r.updateByID("Update", id, data)
}

// Delete implements base.Repository and returns the removed document
func (r *Repository) Delete(ctx context.Context, id string) (base.Document, error) {
	return r.deleteByID("Delete", id)
}

// DeleteMany implements base.Repository and returns the removed documents
func (r *Repository) DeleteMany(ctx context.Context, query base.Document) ([]base.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := []base.Document{}
	kept := r.order[:0]
	for _, id := range r.order {
		if matches(r.docs[id], query) {
			removed = append(removed, r.docs[id])
			delete(r.docs, id)
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
	return removed, nil
}

// FindByIDAndUpdate implements base.Repository
func (r *Repository) FindByIDAndUpdate(ctx context.Context, id string, data base.Document) (base.Document, error) {
	return r.updateByID("FindByIDAndUpdate", id, data)
}

// FindByIDAndDelete implements base.Repository
func (r *Repository) FindByIDAndDelete(ctx context.Context, id string) (base.Document, error) {
	return r.deleteByID("FindByIDAndDelete", id)
}

// FindOneAndUpdate implements base.Repository
func (r *Repository) FindOneAndUpdate(ctx context.Context, query base.Document, data base.Document) (base.Document, error) {
	r.mu.RLock()
	id, ok := r.first(query)
	r.mu.RUnlock()
	if !ok {
		return nil, r.notFound("FindOneAndUpdate")
	}
	return r.updateByID("FindOneAndUpdate", id, data)
}

// FindOneAndDelete implements base.Repository
func (r *Repository) FindOneAndDelete(ctx context.Context, query base.Document) (base.Document, error) {
	r.mu.RLock()
	id, ok := r.first(query)
	r.mu.RUnlock()
	if !ok {
		return nil, r.notFound("FindOneAndDelete")
	}
	return r.deleteByID("FindOneAndDelete", id)
}

func (r *Repository) updateByID(op, id string, data base.Document) (base.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[id]
	if !ok {
		return nil, r.notFound(op)
	}
	for k, v := range data {
		if k != "_id" {
			doc[k] = v
		}
	}
	return clone(doc), nil
}

func (r *Repository) deleteByID(op, id string) (base.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[id]
	if !ok {
		return nil, r.notFound(op)
	}
	delete(r.docs, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return doc, nil
}

// first must be called with r.mu held
func (r *Repository) first(query base.Document) (string, bool) {
	for _, id := range r.order {
		if matches(r.docs[id], query) {
			return id, true
		}
	}
	return "", false
}

func (r *Repository) notFound(op string) error {
	return fmt.Errorf("%s %s: %w", r.collection, op, base.ErrDocumentNotFound)
}

func matches(doc, query base.Document) bool {
	for k, want := range query {
		got, ok := doc[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func clone(doc base.Document) base.Document {
	out := make(base.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
