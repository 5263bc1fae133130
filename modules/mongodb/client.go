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
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/imamangupta/moa-mockup/shared/logger"
)

const (
	// DefaultConnectTimeout is the default connection timeout
	DefaultConnectTimeout = 10 * time.Second
	// DefaultMaxPoolSize is the default maximum connection pool size
	DefaultMaxPoolSize = 100
	// DefaultMinPoolSize is the default minimum connection pool size
	DefaultMinPoolSize = 10
	// DefaultAppName identifies the registry in MongoDB monitoring
	DefaultAppName = "moduled"
)

// Options configures the MongoDB connection. URI wins over the individual
// host settings when set.
type Options struct {
	URI      string
	Host     string
	Port     int
	Username string
	Password string
	Database string

	AuthDatabase     string
	ReplicaSet       string
	TLS              bool
	DirectConnection bool

	MaxPoolSize    uint64
	MinPoolSize    uint64
	ConnectTimeout time.Duration
	AppName        string

	Logger *logger.Logger
}

// Client is a connected MongoDB database handing out per-collection repositories
type Client struct {
	client   *mongo.Client
	database *mongo.Database
	logger   *logger.Logger
}

// Connect establishes a pooled connection and verifies it with a ping
func Connect(ctx context.Context, opts Options) (*Client, error) {
	if opts.Database == "" {
		return nil, fmt.Errorf("database name is required")
	}

	log := opts.Logger
	if log == nil {
		log = logger.New("mongodb")
	}

	maxPool := opts.MaxPoolSize
	if maxPool == 0 {
		maxPool = DefaultMaxPoolSize
	}
	minPool := opts.MinPoolSize
	if minPool == 0 {
		minPool = DefaultMinPoolSize
	}
	connectTimeout := opts.ConnectTimeout
	if connectTimeout == 0 {
		connectTimeout = DefaultConnectTimeout
	}
	appName := opts.AppName
	if appName == "" {
		appName = DefaultAppName
	}

	clientOpts := options.Client().
		ApplyURI(BuildURI(opts)).
		SetMaxPoolSize(maxPool).
		SetMinPoolSize(minPool).
		SetConnectTimeout(connectTimeout).
		SetAppName(appName).
		SetRetryWrites(true).
		SetRetryReads(true)

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Info("", "", "Connected to MongoDB", map[string]interface{}{
		"database": opts.Database,
		"max_pool": maxPool,
	})

	return &Client{
		client:   client,
		database: client.Database(opts.Database),
		logger:   log,
	}, nil
}

// BuildURI constructs the connection URI from opts
func BuildURI(opts Options) string {
	if opts.URI != "" {
		return opts.URI
	}

	host := opts.Host
	if host == "" {
		host = "localhost"
	}
	port := opts.Port
	if port == 0 {
		port = 27017
	}

	var uri string
	if opts.Username != "" && opts.Password != "" {
		uri = fmt.Sprintf("mongodb://%s:%s@%s:%d", opts.Username, opts.Password, host, port)
	} else {
		uri = fmt.Sprintf("mongodb://%s:%d", host, port)
	}

	params := []string{}
	if opts.AuthDatabase != "" {
		params = append(params, "authSource="+opts.AuthDatabase)
	}
	if opts.ReplicaSet != "" {
		params = append(params, "replicaSet="+opts.ReplicaSet)
	}
	if opts.TLS {
		params = append(params, "tls=true")
	}
	if opts.DirectConnection {
		params = append(params, "directConnection=true")
	}

	if len(params) > 0 {
		uri += "?" + strings.Join(params, "&")
	}
	return uri
}

// Repository returns the repository for one collection
func (c *Client) Repository(collection string) *Repository {
	return NewRepository(c.database.Collection(collection))
}

// Ping verifies the connection
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Disconnect closes the MongoDB client connection
func (c *Client) Disconnect(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}

	disconnectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := c.client.Disconnect(disconnectCtx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}

	c.logger.Info("", "", "Disconnected from MongoDB", nil)
	return nil
}
