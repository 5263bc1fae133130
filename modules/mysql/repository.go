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

package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/imamangupta/moa-mockup/modules/base"
)

const (
	// DefaultTable holds the documents of every collection
	DefaultTable = "module_documents"
	// DefaultPort is the MySQL port used when none is configured
	DefaultPort = 3306

	DefaultMaxOpenConns    = 25
	DefaultMaxIdleConns    = 5
	DefaultConnMaxLifetime = 5 * time.Minute
)

var tableNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Options describes a MySQL server when no DSN is given
type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
	TLS      string // name registered with RegisterTLSConfig of the driver, or "true"/"skip-verify"
}

// BuildDSN returns the driver DSN for opts with UTC time parsing enabled
func BuildDSN(opts Options) (string, error) {
	if opts.Database == "" {
		return "", fmt.Errorf("database name is required")
	}
	host := opts.Host
	if host == "" {
		host = "localhost"
	}
	port := opts.Port
	if port == 0 {
		port = DefaultPort
	}

	cfg := gomysql.NewConfig()
	cfg.User = opts.Username
	cfg.Passwd = opts.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	cfg.DBName = opts.Database
	cfg.TLSConfig = opts.TLS
	applyDefaults(cfg)
	return cfg.FormatDSN(), nil
}

// Open opens a pooled MySQL connection for dsn and verifies it with a ping
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid DSN: %w", err)
	}
	applyDefaults(cfg)

	connector, err := gomysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func applyDefaults(cfg *gomysql.Config) {
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.MultiStatements = false
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
}

// EnsureSchema creates the document table when missing
func EnsureSchema(ctx context.Context, db *sql.DB, table string) error {
	if !tableNameRegex.MatchString(table) {
		return fmt.Errorf("invalid table name '%s'", table)
	}

	stmt := `CREATE TABLE IF NOT EXISTS ` + quote(table) + ` (
		collection VARCHAR(191) NOT NULL,
		id         VARCHAR(191) NOT NULL,
		body       JSON NOT NULL,
		created_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updated_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
		PRIMARY KEY (collection, id)
	) DEFAULT CHARSET=utf8mb4`
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Repository implements base.Repository over a JSON column shared by all
// collections. Queries match with JSON_CONTAINS. MySQL has no RETURNING,
// so mutate-and-return operations lock the row in a transaction first.
type Repository struct {
	db         *sql.DB
	table      string
	collection string
}

// NewRepository returns the repository for collection in DefaultTable
func NewRepository(db *sql.DB, collection string) *Repository {
	return &Repository{db: db, table: quote(DefaultTable), collection: collection}
}

// NewRepositoryWithTable returns the repository for collection in table
func NewRepositoryWithTable(db *sql.DB, table, collection string) (*Repository, error) {
	if !tableNameRegex.MatchString(table) {
		return nil, fmt.Errorf("invalid table name '%s'", table)
	}
	return &Repository{db: db, table: quote(table), collection: collection}, nil
}

// Collection implements base.Repository
func (r *Repository) Collection() string {
	return r.collection
}

// FindByID implements base.Repository
func (r *Repository) FindByID(ctx context.Context, id string) (base.Document, error) {
	var body []byte
	q := `SELECT body FROM ` + r.table + ` WHERE collection = ? AND id = ?`
	if err := r.db.QueryRowContext(ctx, q, r.collection, id).Scan(&body); err != nil {
		return nil, r.wrap("FindByID", err)
	}
	return r.decode("FindByID", body)
}

// FindOne implements base.Repository
func (r *Repository) FindOne(ctx context.Context, query base.Document) (base.Document, error) {
	docs, err := r.find(ctx, "FindOne", query, " LIMIT 1")
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, r.wrap("FindOne", sql.ErrNoRows)
	}
	return docs[0], nil
}

// Find implements base.Repository
func (r *Repository) Find(ctx context.Context, query base.Document) ([]base.Document, error) {
	return r.find(ctx, "Find", query, "")
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
	q := `INSERT INTO ` + r.table + ` (collection, id, body) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, r.collection, id, body); err != nil {
		return nil, r.wrap("Create", err)
	}
	return r.decode("Create", []byte(body))
}

// Update implements base.Repository and returns the updated document
func (r *Repository) Update(ctx context.Context, id string, data base.Document) (base.Document, error) {
	return r.updateOne(ctx, "Update", byID(id), data)
}

// Delete implements base.Repository and returns the removed document
func (r *Repository) Delete(ctx context.Context, id string) (base.Document, error) {
	return r.deleteOne(ctx, "Delete", byID(id))
}

// DeleteMany implements base.Repository and returns the removed documents
func (r *Repository) DeleteMany(ctx context.Context, query base.Document) ([]base.Document, error) {
	filter, err := encode(query)
	if err != nil {
		return nil, r.wrap("DeleteMany", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, r.wrap("DeleteMany", err)
	}
	defer tx.Rollback()

	q := `SELECT body FROM ` + r.table + ` WHERE collection = ? AND JSON_CONTAINS(body, CAST(? AS JSON)) ORDER BY created_at FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, r.collection, filter)
	if err != nil {
		return nil, r.wrap("DeleteMany", err)
	}
	docs, err := r.scanRows("DeleteMany", rows)
	if err != nil {
		return nil, err
	}

	del := `DELETE FROM ` + r.table + ` WHERE collection = ? AND JSON_CONTAINS(body, CAST(? AS JSON))`
	if _, err := tx.ExecContext(ctx, del, r.collection, filter); err != nil {
		return nil, r.wrap("DeleteMany", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, r.wrap("DeleteMany", err)
	}
	return docs, nil
}

// FindByIDAndUpdate implements base.Repository
func (r *Repository) FindByIDAndUpdate(ctx context.Context, id string, data base.Document) (base.Document, error) {
	return r.updateOne(ctx, "FindByIDAndUpdate", byID(id), data)
}

// FindByIDAndDelete implements base.Repository
func (r *Repository) FindByIDAndDelete(ctx context.Context, id string) (base.Document, error) {
	return r.deleteOne(ctx, "FindByIDAndDelete", byID(id))
}

// FindOneAndUpdate implements base.Repository
func (r *Repository) FindOneAndUpdate(ctx context.Context, query base.Document, data base.Document) (base.Document, error) {
	sel, err := byQuery(query)
	if err != nil {
		return nil, r.wrap("FindOneAndUpdate", err)
	}
	return r.updateOne(ctx, "FindOneAndUpdate", sel, data)
}

// FindOneAndDelete implements base.Repository
func (r *Repository) FindOneAndDelete(ctx context.Context, query base.Document) (base.Document, error) {
	sel, err := byQuery(query)
	if err != nil {
		return nil, r.wrap("FindOneAndDelete", err)
	}
	return r.deleteOne(ctx, "FindOneAndDelete", sel)
}

// selector is the WHERE clause picking the single row a mutation targets
type selector struct {
	where string
	arg   interface{}
}

func byID(id string) selector {
	return selector{where: `id = ?`, arg: id}
}

func byQuery(query base.Document) (selector, error) {
	filter, err := encode(query)
	if err != nil {
		return selector{}, err
	}
	return selector{where: `JSON_CONTAINS(body, CAST(? AS JSON))`, arg: filter}, nil
}

func (r *Repository) find(ctx context.Context, op string, query base.Document, limit string) ([]base.Document, error) {
	filter, err := encode(query)
	if err != nil {
		return nil, r.wrap(op, err)
	}
	q := `SELECT body FROM ` + r.table + ` WHERE collection = ? AND JSON_CONTAINS(body, CAST(? AS JSON)) ORDER BY created_at` + limit
	rows, err := r.db.QueryContext(ctx, q, r.collection, filter)
	if err != nil {
		return nil, r.wrap(op, err)
	}
	return r.scanRows(op, rows)
}

// lockOne selects and locks the first row matching sel inside tx
func (r *Repository) lockOne(ctx context.Context, tx *sql.Tx, op string, sel selector) (string, base.Document, error) {
	q := `SELECT id, body FROM ` + r.table + ` WHERE collection = ? AND ` + sel.where + ` ORDER BY created_at LIMIT 1 FOR UPDATE`

	var id string
	var body []byte
	if err := tx.QueryRowContext(ctx, q, r.collection, sel.arg).Scan(&id, &body); err != nil {
		return "", nil, r.wrap(op, err)
	}
	doc, err := r.decode(op, body)
	return id, doc, err
}

func (r *Repository) updateOne(ctx context.Context, op string, sel selector, data base.Document) (base.Document, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, r.wrap(op, err)
	}
	defer tx.Rollback()

	id, doc, err := r.lockOne(ctx, tx, op, sel)
	if err != nil {
		return nil, err
	}
	for k, v := range data {
		if k != "_id" {
			doc[k] = v
		}
	}

	body, err := encode(doc)
	if err != nil {
		return nil, r.wrap(op, err)
	}
	q := `UPDATE ` + r.table + ` SET body = ? WHERE collection = ? AND id = ?`
	if _, err := tx.ExecContext(ctx, q, body, r.collection, id); err != nil {
		return nil, r.wrap(op, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, r.wrap(op, err)
	}
	return r.decode(op, []byte(body))
}

func (r *Repository) deleteOne(ctx context.Context, op string, sel selector) (base.Document, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, r.wrap(op, err)
	}
	defer tx.Rollback()

	id, doc, err := r.lockOne(ctx, tx, op, sel)
	if err != nil {
		return nil, err
	}

	q := `DELETE FROM ` + r.table + ` WHERE collection = ? AND id = ?`
	if _, err := tx.ExecContext(ctx, q, r.collection, id); err != nil {
		return nil, r.wrap(op, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, r.wrap(op, err)
	}
	return doc, nil
}

func (r *Repository) scanRows(op string, rows *sql.Rows) ([]base.Document, error) {
	defer rows.Close()

	docs := []base.Document{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, r.wrap(op, err)
		}
		doc, err := r.decode(op, body)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, r.wrap(op, err)
	}
	return docs, nil
}

func (r *Repository) decode(op string, body []byte) (base.Document, error) {
	var doc base.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, r.wrap(op, fmt.Errorf("failed to decode document: %w", err))
	}
	return doc, nil
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

func quote(table string) string {
	return "`" + table + "`"
}
