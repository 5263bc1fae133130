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

package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/imamangupta/moa-mockup/modules/base"
	"github.com/imamangupta/moa-mockup/modules/config"
	"github.com/imamangupta/moa-mockup/modules/loader"
	"github.com/imamangupta/moa-mockup/modules/metrics"
	"github.com/imamangupta/moa-mockup/shared/logger"
)

// Registry maps namespaces to the backend serving them and resolves
// qualified types to module instances.
// Thread-safe for concurrent access.
type Registry struct {
	backends map[string]loader.Backend
	factory  BackendFactory
	logger   *logger.Logger
	metrics  *metrics.Metrics
	mu       sync.RWMutex
}

// Option configures a Registry
type Option func(*Registry)

// WithFactory sets the factory used to build namespace backends
func WithFactory(factory BackendFactory) Option {
	return func(r *Registry) { r.factory = factory }
}

// WithLogger sets the logger shared with every backend
func WithLogger(log *logger.Logger) Option {
	return func(r *Registry) { r.logger = log }
}

// WithMetrics sets the collectors shared with every backend
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// NewRegistry creates an empty registry
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		backends: make(map[string]loader.Backend),
		factory:  DefaultFactory,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.New("module-registry")
	}
	return r
}

// Init builds the backend for cfg, loads it and registers it under its
// namespace. A nil cfg uses config.Default(). Re-initialising a namespace
// replaces its backend and disconnects the old one.
func (r *Registry) Init(ctx context.Context, cfg *config.Config) error {
	if cfg == nil {
		cfg = config.Default()
	}
	start := time.Now()

	backend, err := r.factory(cfg, r.logger, r.metrics)
	if err != nil {
		return base.NewModuleError(cfg.Namespace, "Init", "failed to create backend", err)
	}

	if err := backend.LoadAll(ctx); err != nil {
		r.disconnect(ctx, backend)
		return err
	}

	ns := backend.Namespace()
	r.mu.Lock()
	previous := r.backends[ns]
	r.backends[ns] = backend
	r.mu.Unlock()

	if previous != nil && previous != backend {
		r.disconnect(ctx, previous)
	}

	r.logger.InfoWithDuration(ns, "", "Initialized namespace",
		float64(time.Since(start).Microseconds())/1000, map[string]interface{}{
			"backend":  fmt.Sprintf("%T", backend),
			"known":    len(backend.Known()),
			"loaded":   len(backend.Modules()),
			"replaced": previous != nil,
		})
	return nil
}

// InitAll initialises several namespaces concurrently and returns the first error
func (r *Registry) InitAll(ctx context.Context, cfgs []*config.Config) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, cfg := range cfgs {
		cfg := cfg
		g.Go(func() error {
			return r.Init(gctx, cfg)
		})
	}
	return g.Wait()
}

// GetModuleByType resolves "<namespace>.<type>" to a loaded module.
// The type part matches module names case-insensitively. Every failure
// wraps base.ErrNotFound.
func (r *Registry) GetModuleByType(qualifiedType string) (base.Module, error) {
	mod, err := r.lookup(qualifiedType)
	r.metrics.RecordLookup(err == nil)
	return mod, err
}

func (r *Registry) lookup(qualifiedType string) (base.Module, error) {
	ns, localType, ok := loader.SplitQualifiedType(qualifiedType)
	if !ok {
		return nil, base.NewModuleError(ns, "GetModuleByType",
			fmt.Sprintf("malformed module type '%s'", qualifiedType), base.ErrNotFound)
	}

	r.mu.RLock()
	backend, exists := r.backends[ns]
	r.mu.RUnlock()

	if !exists {
		return nil, base.NewModuleError(ns, "GetModuleByType",
			fmt.Sprintf("namespace '%s' is not registered", ns), base.ErrNotFound)
	}
	if len(backend.Known()) == 0 {
		return nil, base.NewModuleError(ns, "GetModuleByType",
			fmt.Sprintf("no modules available for '%s'", qualifiedType), base.ErrNotFound)
	}

	for _, m := range backend.Modules() {
		if strings.EqualFold(m.Name, localType) {
			return m.Instance, nil
		}
	}

	return nil, base.NewModuleError(ns, "GetModuleByType",
		fmt.Sprintf("module '%s' not found", qualifiedType), base.ErrNotFound)
}

// GetAllModules returns every loaded module keyed by qualified type.
// Namespaces are visited in sorted order; on a key clash the last write wins.
func (r *Registry) GetAllModules() map[string]base.Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make(map[string]base.Module)
	for _, ns := range r.sortedNamespaces() {
		for _, m := range r.backends[ns].Modules() {
			all[loader.QualifiedType(ns, m.Name)] = m.Instance
		}
	}
	return all
}

// Namespaces returns the registered namespaces in sorted order
func (r *Registry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNamespaces()
}

// Backend returns the backend registered for namespace
func (r *Registry) Backend(namespace string) (loader.Backend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	backend, ok := r.backends[namespace]
	return backend, ok
}

// Count returns the number of loaded modules across all namespaces
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, backend := range r.backends {
		n += len(backend.Modules())
	}
	return n
}

// Flush drops the modules of one namespace, including any cached copies
func (r *Registry) Flush(ctx context.Context, namespace string) error {
	backend, ok := r.Backend(namespace)
	if !ok {
		return base.NewModuleError(namespace, "Flush",
			fmt.Sprintf("namespace '%s' is not registered", namespace), base.ErrNotFound)
	}

	if err := backend.FlushAll(ctx); err != nil {
		r.logger.ErrorWithCause(namespace, "", "Failed to flush namespace", err, nil)
		return err
	}

	r.logger.Info(namespace, "", "Flushed namespace", nil)
	return nil
}

// Shutdown disconnects every backend holding an external connection.
// All backends are attempted; their errors are joined.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.RLock()
	backends := make([]loader.Backend, 0, len(r.backends))
	for _, ns := range r.sortedNamespaces() {
		backends = append(backends, r.backends[ns])
	}
	r.mu.RUnlock()

	var errs []error
	for _, backend := range backends {
		if err := r.disconnect(ctx, backend); err != nil {
			errs = append(errs, err)
		}
	}

	r.logger.Info("", "", "Registry shut down", map[string]interface{}{
		"namespaces": len(backends),
		"errors":     len(errs),
	})
	return errors.Join(errs...)
}

func (r *Registry) disconnect(ctx context.Context, backend loader.Backend) error {
	d, ok := backend.(loader.Disconnector)
	if !ok {
		return nil
	}

	if err := d.Disconnect(ctx); err != nil {
		r.logger.ErrorWithCause(backend.Namespace(), "", "Failed to disconnect backend", err, nil)
		if !errors.Is(err, base.ErrTeardown) {
			err = base.NewModuleError(backend.Namespace(), "Shutdown", "failed to disconnect backend",
				fmt.Errorf("%w: %w", base.ErrTeardown, err))
		}
		return err
	}
	return nil
}

// sortedNamespaces must be called with r.mu held
func (r *Registry) sortedNamespaces() []string {
	names := make([]string, 0, len(r.backends))
	for ns := range r.backends {
		names = append(names, ns)
	}
	sort.Strings(names)
	return names
}
