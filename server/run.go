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
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/imamangupta/moa-mockup/modules/config"
	"github.com/imamangupta/moa-mockup/modules/metrics"
	"github.com/imamangupta/moa-mockup/modules/registry"
	"github.com/imamangupta/moa-mockup/shared/logger"
)

const shutdownTimeout = 15 * time.Second

// Run starts the module registry service.
//
// Environment Variables:
//   - PORT: listen port (default: 8080)
//   - MODULES_CONFIG_FILE: YAML file with one entry per namespace; when unset a
//     single namespace is configured from PACKAGE_NAME, MODULES_ROOT and REDIS_*
//   - MONGODB_URI, MONGODB_DATABASE: MongoDB document store (optional)
//   - DATABASE_URL: PostgreSQL document store (optional)
//   - MYSQL_DSN: MySQL document store (optional)
//   - MODULES_JWT_SECRET: HS256 secret; when set, execute and flush require a bearer token
func Run() {
	log := logger.New("module-registry")
	log.Info("", "", "Starting module registry", nil)

	if err := run(context.Background(), log); err != nil {
		log.ErrorWithCause("", "", "Module registry stopped", err, nil)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	cfgs, err := loadConfigs()
	if err != nil {
		return err
	}

	closeStores, err := configureStores(ctx, log)
	if err != nil {
		return err
	}

	reg := registry.NewRegistry(
		registry.WithLogger(log),
		registry.WithMetrics(metrics.New(prometheus.DefaultRegisterer)),
	)
	if err := reg.InitAll(ctx, cfgs); err != nil {
		_ = reg.Shutdown(ctx)
		_ = closeStores(ctx)
		return err
	}

	port := getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           NewRouter(reg, log, NewAuthenticator(os.Getenv("MODULES_JWT_SECRET"))),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("", "", "Module registry listening", map[string]interface{}{"port": port})
		serveErr <- srv.ListenAndServe()
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err = <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	case <-sigCtx.Done():
		log.Info("", "", "Shutting down", nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return errors.Join(
		err,
		srv.Shutdown(shutdownCtx),
		reg.Shutdown(shutdownCtx),
		closeStores(shutdownCtx),
	)
}

// loadConfigs reads MODULES_CONFIG_FILE when set and falls back to a single
// namespace configured from the environment
func loadConfigs() ([]*config.Config, error) {
	if path := os.Getenv("MODULES_CONFIG_FILE"); path != "" {
		fileLoader, err := config.NewYAMLConfigFileLoader(path)
		if err != nil {
			return nil, err
		}
		return fileLoader.LoadNamespaces()
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	return []*config.Config{cfg}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
