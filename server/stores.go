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

package server

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/imamangupta/moa-mockup/modules/base"
	"github.com/imamangupta/moa-mockup/modules/mongodb"
	"github.com/imamangupta/moa-mockup/modules/mysql"
	"github.com/imamangupta/moa-mockup/modules/postgres"
	"github.com/imamangupta/moa-mockup/shared/logger"
	"github.com/imamangupta/moa-mockup/smartmodules"
)

// configureStores selects the document store modules persist through.
// MONGODB_URI takes precedence over DATABASE_URL, which takes precedence over
// MYSQL_DSN; with none set modules keep their in-memory repositories. The returned func releases the connection.
func configureStores(ctx context.Context, log *logger.Logger) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		client, err := mongodb.Connect(ctx, mongodb.Options{
			URI:            uri,
			Database:       getEnv("MONGODB_DATABASE", "smartmodules"),
			ConnectTimeout: 10 * time.Second,
			AppName:        "moduled",
			Logger:         log,
		})
		if err != nil {
			return noop, fmt.Errorf("failed to connect document store: %w", err)
		}
		smartmodules.SetRepositoryProvider(func(collection string) base.Repository {
			return client.Repository(collection)
		})
		log.Info("", "", "Modules persist to MongoDB", nil)
		return client.Disconnect, nil
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		db, err := postgres.Open(ctx, dbURL)
		if err != nil {
			return noop, fmt.Errorf("failed to connect document store: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, db, postgres.DefaultTable); err != nil {
			db.Close()
			return noop, fmt.Errorf("failed to prepare document store: %w", err)
		}
		smartmodules.SetRepositoryProvider(func(collection string) base.Repository {
			return postgres.NewRepository(db, collection)
		})
		log.Info("", "", "Modules persist to PostgreSQL", nil)
		return func(context.Context) error { return db.Close() }, nil
	}

	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		db, err := mysql.Open(ctx, dsn)
		if err != nil {
			return noop, fmt.Errorf("failed to connect document store: %w", err)
		}
		if err := mysql.EnsureSchema(ctx, db, mysql.DefaultTable); err != nil {
			db.Close()
			return noop, fmt.Errorf("failed to prepare document store: %w", err)
		}
		smartmodules.SetRepositoryProvider(func(collection string) base.Repository {
			return mysql.NewRepository(db, collection)
		})
		log.Info("", "", "Modules persist to MySQL", nil)
		return func(context.Context) error { return db.Close() }, nil
	}

	log.Warn("", "", "No document store configured, modules persist in memory", nil)
	return noop, nil
}
