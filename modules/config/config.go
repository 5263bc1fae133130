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

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/imamangupta/moa-mockup/modules/loader"
)

const (
	// DefaultRoot is the module root used when MODULES_ROOT is unset
	DefaultRoot = "smartmodules"
	// DefaultCacheHost is the Redis host used when REDIS_HOST is unset
	DefaultCacheHost = "localhost"
	// DefaultCachePort is the Redis port used when REDIS_PORT is unset
	DefaultCachePort = 6379
)

// Config describes one namespace: where its modules live and whether they
// are served through the Redis cache
type Config struct {
	Namespace  string
	Root       string
	Extensions []string
	Collision  loader.CollisionPolicy
	UseCache   bool
	Cache      CacheOptions
}

// CacheOptions holds the Redis connection settings of a namespace
type CacheOptions struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Namespace:  loader.DefaultNamespace,
		Root:       DefaultRoot,
		Extensions: append([]string(nil), loader.DefaultExtensions...),
		Collision:  loader.CollisionKeepLast,
		Cache: CacheOptions{
			Host: DefaultCacheHost,
			Port: DefaultCachePort,
		},
	}
}

// LoadFromEnv loads a namespace configuration from environment variables.
// Unset variables keep their Default values.
//
//	PACKAGE_NAME             namespace (default smart-modules)
//	MODULES_ROOT             module root directory (default smartmodules)
//	MODULE_EXTENSIONS        comma separated source extensions (default go,so)
//	MODULE_COLLISION_POLICY  keep-last, keep-first or error
//	MODULE_CACHE_ENABLED     serve modules through Redis
//	REDIS_HOST, REDIS_PORT, REDIS_PASSWORD, REDIS_DB, REDIS_PREFIX
func LoadFromEnv() (*Config, error) {
	cfg := Default()

	cfg.Namespace = getEnvOrDefault("PACKAGE_NAME", cfg.Namespace)
	cfg.Root = getEnvOrDefault("MODULES_ROOT", cfg.Root)

	if exts := os.Getenv("MODULE_EXTENSIONS"); exts != "" {
		cfg.Extensions = splitList(exts)
	}

	collision, err := loader.ParseCollisionPolicy(os.Getenv("MODULE_COLLISION_POLICY"))
	if err != nil {
		return nil, err
	}
	cfg.Collision = collision

	if enabled := os.Getenv("MODULE_CACHE_ENABLED"); enabled != "" {
		useCache, err := strconv.ParseBool(enabled)
		if err != nil {
			return nil, fmt.Errorf("invalid MODULE_CACHE_ENABLED format: %s", enabled)
		}
		cfg.UseCache = useCache
	}

	cfg.Cache.Host = getEnvOrDefault("REDIS_HOST", cfg.Cache.Host)
	cfg.Cache.Password = os.Getenv("REDIS_PASSWORD")
	cfg.Cache.Prefix = os.Getenv("REDIS_PREFIX")

	if portStr := os.Getenv("REDIS_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_PORT format: %s", portStr)
		}
		cfg.Cache.Port = port
	}

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB format: %s", dbStr)
		}
		cfg.Cache.DB = db
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration can build a backend
func (c *Config) Validate() error {
	if c.Namespace == "" {
		return fmt.Errorf("namespace is required")
	}
	// Qualified types split on the first '.', so the namespace cannot contain one
	if strings.Contains(c.Namespace, ".") {
		return fmt.Errorf("namespace '%s' must not contain '.'", c.Namespace)
	}
	if c.Root == "" {
		return fmt.Errorf("namespace '%s': module root is required", c.Namespace)
	}
	for _, ext := range c.Extensions {
		if ext == "" || strings.Contains(ext, ".") {
			return fmt.Errorf("namespace '%s': invalid extension '%s'", c.Namespace, ext)
		}
	}
	if _, err := loader.ParseCollisionPolicy(string(c.Collision)); err != nil {
		return fmt.Errorf("namespace '%s': %w", c.Namespace, err)
	}

	if c.UseCache {
		if c.Cache.Port < 0 || c.Cache.Port > 65535 {
			return fmt.Errorf("namespace '%s': invalid Redis port %d", c.Namespace, c.Cache.Port)
		}
		if c.Cache.DB < 0 {
			return fmt.Errorf("namespace '%s': invalid Redis db %d", c.Namespace, c.Cache.DB)
		}
	}
	return nil
}

// Clone returns a deep copy of c
func (c *Config) Clone() *Config {
	out := *c
	out.Extensions = append([]string(nil), c.Extensions...)
	return &out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimPrefix(strings.TrimSpace(part), ".")
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
