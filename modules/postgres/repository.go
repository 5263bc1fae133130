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

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/imamangupta/moa-mockup/modules/base"
)

// DefaultTable holds the documents of every collection
const DefaultTable = "module_documents"

var tableNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Open opens a pooled PostgreSQL connection and verifies it with a ping
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the document table and its indexes when missing
func EnsureSchema(ctx context.Context, db *sql.DB, table string) error {
	if !tableNameRegex.MatchString(table) {
		return fmt.Errorf("invalid table name '%s'", table)
	}
	t := pq.QuoteIdentifier(table)

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + t + ` (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			body       JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (collection, id)
		)`,
		`CREATE INDEX IF NOT EXISTS ` + pq.QuoteIdentifier(table+"_body_idx") + ` ON ` + t + ` USING GIN (body)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Repository implements base.Repository over a JSONB table shared by all
// collections. Queries match with JSONB containment, so a query document
// selects rows whose body contains every given key and value.
type Repository struct {
	db         *sql.DB
	table      string
	collection string
}

// NewRepository returns the repository for collection in DefaultTable
func NewRepository(db *sql.DB, collection string) *Repository {
	return &Repository{db: db, table: pq.QuoteIdentifier(DefaultTable), collection: collection}
}

// NewRepositoryWithTable returns the repository for collection in table
func NewRepositoryWithTable(db *sql.DB, table, collection string) (*Repository, error) {
	if !tableNameRegex.MatchString(table) {
		return nil, fmt.Errorf("invalid table name '%s'", table)
	}
	return &Repository{db: db, table: pq.QuoteIdentifier(table), collection: collection}, nil
}

// Collection implements base.Repository
func (r *Repository) Collection() string {
	return r.collection
}

// FindByID implements base.Repository
func (r *Repository) FindByID(ctx context.Context, id string) (base.Document, error) {
	q := `SELECT body FROM ` + r.table + ` WHERE collection = $1 AND id = $2`
	return r.queryOne(ctx, "FindByID", q, r.collection, id)
}

// FindOne implements base.Repository
func (r *Repository) FindOne(ctx context.Context, query base.Document) (base.Document, error) {
	filter, err := encode(query)
	if err != nil {
		return nil, r.wrap("FindOne", err)
	}
	q := `SELECT body FROM ` + r.table + ` WHERE collection = $1 AND body @> $2::jsonb ORDER BY created_at LIMIT 1`
	return r.queryOne(ctx, "FindOne", q, r.collection, filter)
}

// Find implements base.Repository
func (r *Repository) Find(ctx context.Context, query base.Document) ([]base.Document, error) {
	filter, err := encode(query)
	if err != nil {
		return nil, r.wrap("Find", err)
	}
	q := `SELECT body FROM ` + r.table + ` WHERE collection = $1 AND body @> $2::jsonb ORDER BY created_at`
	return r.queryMany(ctx, "Find", q, r.collection, filter)
}

// Create implements base.Repository. A missing _id is assigned a UUID.
func (r *Repository) Create(ctx context.Context, data base.Document) (base.Document, error) {
	doc := make(base.Document, len(data)+1)
	for k, v := range data {
		doc[k] = v
	}
	id, err := doc.ResolveID()
	if err != nil {
		return nil, r.wrap("Create", err)
	}
	if id == "" {
		id = uuid.NewString()
	}
	doc["_id"] = id

	body, err := encode(doc)
	if err != nil {
		return nil, r.wrap("Create", err)
	}
	q := `INSERT INTO ` + r.table + ` (collection, id, body) VALUES ($1, $2, $3::jsonb) RETURNING body`
	return r.queryOne(ctx, "Create", q, r.collection, id, body)
}

// Update implements base.Repository and returns the updated document
func (r *Repository) Update(ctx context.Context, id string, data base.Document) (base.Document, error) {
	return r.updateByID(ctx, "Update", id, data)
}

// Delete implements base.Repository and returns the removed document
func (r *Repository) Delete(ctx context.Context, id string) (base.Document, error) {
	return r.deleteByID(ctx, "Delete", id)
}

// DeleteMany implements base.Repository and returns the removed documents
func (r *Repository) DeleteMany(ctx context.Context, query base.Document) ([]base.Document, error) {
	filter, err := encode(query)
	if err != nil {
		return nil, r.wrap("DeleteMany", err)
	}
	q := `DELETE FROM ` + r.table + ` WHERE collection = $1 AND body @> $2::jsonb RETURNING body`
	return r.queryMany(ctx, "DeleteMany", q, r.collection, filter)
}

// FindByIDAndUpdate implements base.Repository
func (r *Repository) FindByIDAndUpdate(ctx context.Context, id string, data base.Document) (base.Document, error) {
	return r.updateByID(ctx, "FindByIDAndUpdate", id, data)
}

// FindByIDAndDelete implements base.Repository
func (r *Repository) FindByIDAndDelete(ctx context.Context, id string) (base.Document, error) {
	return r.deleteByID(ctx, "FindByIDAndDelete", id)
}

// FindOneAndUpdate implements base.Repository
func (r *Repository) FindOneAndUpdate(ctx context.Context, query base.Document, data base.Document) (base.Document, error) {
	filter, err := encode(query)
	if err != nil {
		return nil, r.wrap("FindOneAndUpdate", err)
	}
	patch, err := encode(withoutID(data))
	if err != nil {
		return nil, r.wrap("FindOneAndUpdate", err)
	}
	q := `UPDATE ` + r.table + ` SET body = body || $3::jsonb, updated_at = NOW()
		WHERE collection = $1 AND id = (
			SELECT id FROM ` + r.table + ` WHERE collection = $1 AND body @> $2::jsonb ORDER BY created_at LIMIT 1
		) RETURNING body`
	return r.queryOne(ctx, "FindOneAndUpdate", q, r.collection, filter, patch)
}

// FindOneAndDelete implements base.Repository
func (r *Repository) FindOneAndDelete(ctx context.Context, query base.Document) (base.Document, error) {
	filter, err := encode(query)
	if err != nil {
		return nil, r.wrap("FindOneAndDelete", err)
	}
	q := `DELETE FROM ` + r.table + `
		WHERE collection = $1 AND id = (
			SELECT id FROM ` + r.table + ` WHERE collection = $1 AND body @> $2::jsonb ORDER BY created_at LIMIT 1
		) RETURNING body`
	return r.queryOne(ctx, "FindOneAndDelete", q, r.collection, filter)
}

func (r *Repository) updateByID(ctx context.Context, op, id string, data base.Document) (base.Document, error) {
	patch, err := encode(withoutID(data))
	if err != nil {
		return nil, r.wrap(op, err)
	}
	q := `UPDATE ` + r.table + ` SET body = body || $3::jsonb, updated_at = NOW() WHERE collection = $1 AND id = $2 RETURNING body`
	return r.queryOne(ctx, op, q, r.collection, id, patch)
}

func (r *Repository) deleteByID(ctx context.Context, op, id string) (base.Document, error) {
	q := `DELETE FROM ` + r.table + ` WHERE collection = $1 AND id = $2 RETURNING body`
	return r.queryOne(ctx, op, q, r.collection, id)
}

func (r *Repository) queryOne(ctx context.Context, op, q string, args ...interface{}) (base.Document, error) {
	var body []byte
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&body); err != nil {
		return nil, r.wrap(op, err)
	}
	doc, err := decode(body)
	if err != nil {
		return nil, r.wrap(op, err)
	}
	return doc, nil
}

func (r *Repository) queryMany(ctx context.Context, op, q string, args ...interface{}) ([]base.Document, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, r.wrap(op, err)
	}
	defer rows.Close()

	docs := []base.Document{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, r.wrap(op, err)
		}
		doc, err := decode(body)
		if err != nil {
			return nil, r.wrap(op, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, r.wrap(op, err)
	}
	return docs, nil
}

// wrap maps sql.ErrNoRows to base.ErrDocumentNotFound
func (r *Repository) wrap(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", r.collection, op, base.ErrDocumentNotFound)
	}
	return fmt.Errorf("%s %s: %w", r.collection, op, err)
}

func encode(doc base.Document) (string, error) {
	if doc == nil {
		return "{}", nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	return string(data), nil
}

func decode(body []byte) (base.Document, error) {
	var doc base.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}

func withoutID(data base.Document) base.Document {
	out := make(base.Document, len(data))
	for k, v := range data {
		if k != "_id" {
			out[k] = v
		}
	}
	return out
}
