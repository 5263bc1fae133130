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
	"github.com/imamangupta/moa-mockup/modules/config"
	"github.com/imamangupta/moa-mockup/modules/loader"
	"github.com/imamangupta/moa-mockup/modules/metrics"
	"github.com/imamangupta/moa-mockup/modules/redis"
	"github.com/imamangupta/moa-mockup/shared/logger"
)

// BackendFactory builds the backend serving one namespace configuration
type BackendFactory func(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (loader.Backend, error)

// NewBackendFactory returns a factory that builds a filesystem backend over
// sources, wrapped in a Redis cache-aside backend when cfg.UseCache is set
func NewBackendFactory(sources loader.SourceLoader) BackendFactory {
	return func(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (loader.Backend, error) {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}

		dir := loader.NewDirectoryBackend(loader.Options{
			Namespace:  cfg.Namespace,
			Root:       cfg.Root,
			Extensions: cfg.Extensions,
			Collision:  cfg.Collision,
			Sources:    sources,
			Logger:     log,
			Metrics:    m,
		})
		if !cfg.UseCache {
			return dir, nil
		}

		return redis.NewBackend(dir, redis.Options{
			Host:     cfg.Cache.Host,
			Port:     cfg.Cache.Port,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			Prefix:   cfg.Cache.Prefix,
			Sources:  sources,
			Logger:   log,
			Metrics:  m,
		}), nil
	}
}

// DefaultFactory builds backends over loader.DefaultSourceLoader
func DefaultFactory(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (loader.Backend, error) {
	return NewBackendFactory(loader.DefaultSourceLoader())(cfg, log, m)
}
