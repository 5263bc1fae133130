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

package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/imamangupta/moa-mockup/modules/base"
)

// Repository implements base.Repository over one MongoDB collection.
// Identifiers may be ObjectID hex strings or plain strings.
type Repository struct {
	collection *mongo.Collection
}

// NewRepository wraps collection
func NewRepository(collection *mongo.Collection) *Repository {
	return &Repository{collection: collection}
}

// Collection implements base.Repository
func (r *Repository) Collection() string {
	return r.collection.Name()
}

// FindByID implements base.Repository
func (r *Repository) FindByID(ctx context.Context, id string) (base.Document, error) {
	return r.findOne(ctx, "FindByID", idFilter(id))
}

// FindOne implements base.Repository
func (r *Repository) FindOne(ctx context.Context, query base.Document) (base.Document, error) {
	return r.findOne(ctx, "FindOne", toBSON(query))
}

// Find implements base.Repository
func (r *Repository) Find(ctx context.Context, query base.Document) ([]base.Document, error) {
	cursor, err := r.collection.Find(ctx, toBSON(query))
	if err != nil {
		return nil, r.wrap("Find", err)
	}
	defer cursor.Close(ctx)

	docs, err := decodeCursor(ctx, cursor)
	if err != nil {
		return nil, r.wrap("Find", err)
	}
	return docs, nil
}

// Create implements base.Repository. The returned document carries the assigned _id.
func (r *Repository) Create(ctx context.Context, data base.Document) (base.Document, error) {
	body, err := insertBody(data)
	if err != nil {
		return nil, r.wrap("Create", err)
	}
	result, err := r.collection.InsertOne(ctx, body)
	if err != nil {
		return nil, r.wrap("Create", err)
	}

	created := make(base.Document, len(data)+1)
	for k, v := range data {
		created[k] = v
	}
	created["_id"] = decodeValue(result.InsertedID)
	return created, nil
}

// Update implements base.Repository and returns the updated document
func (r *Repository) Update(ctx context.Context, id string, data base.Document) (base.Document, error) {
	return r.findOneAndUpdate(ctx, "Update", idFilter(id), data)
}

// Delete implements base.Repository and returns the removed document
func (r *Repository) Delete(ctx context.Context, id string) (base.Document, error) {
	return r.findOneAndDelete(ctx, "Delete", idFilter(id))
}

// DeleteMany implements base.Repository and returns the removed documents
func (r *Repository) DeleteMany(ctx context.Context, query base.Document) ([]base.Document, error) {
	docs, err := r.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return docs, nil
	}

	ids := make(bson.A, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, idFilter(doc.ID())["_id"])
	}
	filter := bson.M{"$or": orIDs(ids)}

	if _, err := r.collection.DeleteMany(ctx, filter); err != nil {
		return nil, r.wrap("DeleteMany", err)
	}
	return docs, nil
}

// FindByIDAndUpdate implements base.Repository
func (r *Repository) FindByIDAndUpdate(ctx context.Context, id string, data base.Document) (base.Document, error) {
	return r.findOneAndUpdate(ctx, "FindByIDAndUpdate", idFilter(id), data)
}

// FindByIDAndDelete implements base.Repository
func (r *Repository) FindByIDAndDelete(ctx context.Context, id string) (base.Document, error) {
	return r.findOneAndDelete(ctx, "FindByIDAndDelete", idFilter(id))
}

// FindOneAndUpdate implements base.Repository
func (r *Repository) FindOneAndUpdate(ctx context.Context, query base.Document, data base.Document) (base.Document, error) {
	return r.findOneAndUpdate(ctx, "FindOneAndUpdate", toBSON(query), data)
}

// FindOneAndDelete implements base.Repository
func (r *Repository) FindOneAndDelete(ctx context.Context, query base.Document) (base.Document, error) {
	return r.findOneAndDelete(ctx, "FindOneAndDelete", toBSON(query))
}

func (r *Repository) findOne(ctx context.Context, op string, filter bson.M) (base.Document, error) {
	var doc bson.M
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, r.wrap(op, err)
	}
	return toDocument(doc), nil
}

func (r *Repository) findOneAndUpdate(ctx context.Context, op string, filter bson.M, data base.Document) (base.Document, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc bson.M
	if err := r.collection.FindOneAndUpdate(ctx, filter, setUpdate(data), opts).Decode(&doc); err != nil {
		return nil, r.wrap(op, err)
	}
	return toDocument(doc), nil
}

func (r *Repository) findOneAndDelete(ctx context.Context, op string, filter bson.M) (base.Document, error) {
	var doc bson.M
	if err := r.collection.FindOneAndDelete(ctx, filter).Decode(&doc); err != nil {
		return nil, r.wrap(op, err)
	}
	return toDocument(doc), nil
}

// wrap maps mongo.ErrNoDocuments to base.ErrDocumentNotFound
func (r *Repository) wrap(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s %s: %w", r.collection.Name(), op, base.ErrDocumentNotFound)
	}
	return fmt.Errorf("%s %s: %w", r.collection.Name(), op, err)
}

// decodeCursor decodes all documents from a cursor
func decodeCursor(ctx context.Context, cursor *mongo.Cursor) ([]base.Document, error) {
	results := []base.Document{}

	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		results = append(results, toDocument(doc))
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func orIDs(ids bson.A) bson.A {
	or := make(bson.A, 0, len(ids))
	for _, id := range ids {
		or = append(or, bson.M{"_id": id})
	}
	return or
}
