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

package redis

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/imamangupta/moa-mockup/modules/base"
	"github.com/imamangupta/moa-mockup/modules/loader"
	"github.com/imamangupta/moa-mockup/modules/metrics"
	"github.com/imamangupta/moa-mockup/shared/logger"
)

const (
	// DefaultHost is the Redis host used when none is configured
	DefaultHost = "localhost"
	// DefaultPort is the Redis port used when none is configured
	DefaultPort = 6379

	itemKeySegment = "module:"
	listKeySegment = "modules:list:"
)

// Options configures the Redis connection and cache keys of a Backend
type Options struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string // Key prefix; a ':' separator is appended when missing

	Codec   ModuleCodec         // default: JSONCodec over Sources
	Sources loader.SourceLoader // default: loader.DefaultSourceLoader()
	Logger  *logger.Logger
	Metrics *metrics.Metrics
}

// Backend is a cache-aside module backend. LoadAll first rehydrates
// descriptors and instances from Redis and only scans the filesystem on a
// miss, writing the result back for the next start.
// Thread-safe for concurrent access.
type Backend struct {
	scanner loader.Scanner
	client  *redis.Client
	codec   ModuleCodec
	logger  *logger.Logger
	metrics *metrics.Metrics

	itemPrefix string
	listKey    string

	known  []loader.Descriptor
	loaded []loader.LoadedModule
	mu     sync.RWMutex

	closeOnce sync.Once
	closeErr  error
}

// NewBackend creates a cache-aside backend wrapping scanner.
// The backend owns its Redis client; release it with Disconnect.
func NewBackend(scanner loader.Scanner, opts Options) *Backend {
	host := opts.Host
	if host == "" {
		host = DefaultHost
	}
	port := opts.Port
	if port == 0 {
		port = DefaultPort
	}

	client := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(host, strconv.Itoa(port)),
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	codec := opts.Codec
	if codec == nil {
		sources := opts.Sources
		if sources == nil {
			sources = loader.DefaultSourceLoader()
		}
		codec = NewJSONCodec(sources)
	}

	log := opts.Logger
	if log == nil {
		log = logger.New("redis-loader")
	}

	prefix := KeyPrefix(opts.Prefix)

	return &Backend{
		scanner:    scanner,
		client:     client,
		codec:      codec,
		logger:     log,
		metrics:    opts.Metrics,
		itemPrefix: prefix + itemKeySegment,
		listKey:    prefix + listKeySegment + scanner.Namespace(),
	}
}

// KeyPrefix normalises a configured prefix: "" stays empty, otherwise a ':' separator is ensured
func KeyPrefix(prefix string) string {
	if prefix == "" || strings.HasSuffix(prefix, ":") {
		return prefix
	}
	return prefix + ":"
}

// Namespace returns the package namespace of the wrapped scanner
func (b *Backend) Namespace() string {
	return b.scanner.Namespace()
}

// ItemKey returns the cache key holding the serialized module name
func (b *Backend) ItemKey(name string) string {
	return b.itemPrefix + strings.ToLower(name)
}

// ListKey returns the cache key holding the serialized descriptor list
func (b *Backend) ListKey() string {
	return b.listKey
}

// Known returns a copy of the known descriptors
func (b *Backend) Known() []loader.Descriptor {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]loader.Descriptor(nil), b.known...)
}

// Modules returns a copy of the loaded modules
func (b *Backend) Modules() []loader.LoadedModule {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]loader.LoadedModule(nil), b.loaded...)
}

// LoadAll rehydrates modules from Redis, falling back to a filesystem scan
// followed by a write-through when the cache is empty or unreadable.
// Cache errors never fail LoadAll; discovery errors from the scan do.
func (b *Backend) LoadAll(ctx context.Context) error {
	ns := b.Namespace()
	start := time.Now()

	if known, loaded, hit := b.loadFromCache(ctx); hit {
		b.setState(known, loaded)

		elapsed := time.Since(start)
		b.metrics.RecordCache(ns, metrics.CacheHit)
		b.metrics.RecordLoad(ns, metrics.SourceCache, len(loaded), elapsed)
		b.logger.InfoWithDuration(ns, "", "Loaded modules from Redis cache",
			float64(elapsed.Microseconds())/1000, map[string]interface{}{
				"known":  len(known),
				"loaded": len(loaded),
			})
		return nil
	}
	b.metrics.RecordCache(ns, metrics.CacheMiss)
	b.setState(nil, nil)

	known, err := b.scanner.Discover(ctx)
	if err != nil {
		return err
	}
	loaded := b.scanner.Instantiate(ctx, known)
	b.setState(known, loaded)

	elapsed := time.Since(start)
	b.metrics.RecordLoad(ns, metrics.SourceFilesystem, len(loaded), elapsed)
	b.logger.InfoWithDuration(ns, "", "Loaded modules from filesystem after cache miss",
		float64(elapsed.Microseconds())/1000, map[string]interface{}{
			"known":  len(known),
			"loaded": len(loaded),
		})

	b.writeThrough(ctx, known, loaded)
	return nil
}

// FlushAll clears in-memory state and deletes every item key under the
// prefix plus the list key
func (b *Backend) FlushAll(ctx context.Context) error {
	ns := b.Namespace()
	b.setState(nil, nil)

	keys, err := b.scanKeys(ctx, escapeGlob(b.itemPrefix)+"*")
	if err != nil {
		return base.NewModuleError(ns, "FlushAll", "failed to list cached modules",
			fmt.Errorf("%w: %w", base.ErrTeardown, err))
	}
	keys = append(keys, b.listKey)

	deleted, err := b.client.Del(ctx, keys...).Result()
	if err != nil {
		return base.NewModuleError(ns, "FlushAll", "failed to delete cached modules",
			fmt.Errorf("%w: %w", base.ErrTeardown, err))
	}

	b.logger.Info(ns, "", "Flushed modules from Redis cache", map[string]interface{}{
		"deleted": deleted,
	})
	return nil
}

// Disconnect closes the Redis client. Safe to call more than once.
func (b *Backend) Disconnect(ctx context.Context) error {
	b.closeOnce.Do(func() {
		if err := b.client.Close(); err != nil {
			b.closeErr = base.NewModuleError(b.Namespace(), "Disconnect", "failed to close Redis connection",
				fmt.Errorf("%w: %w", base.ErrTeardown, err))
			return
		}
		b.logger.Info(b.Namespace(), "", "Disconnected from Redis", nil)
	})
	return b.closeErr
}

// Ping verifies the Redis connection
func (b *Backend) Ping(ctx context.Context) error {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return base.NewModuleError(b.Namespace(), "Ping", "failed to ping Redis",
			fmt.Errorf("%w: %w", base.ErrCache, err))
	}
	return nil
}

func (b *Backend) setState(known []loader.Descriptor, loaded []loader.LoadedModule) {
	b.mu.Lock()
	b.known = known
	b.loaded = loaded
	b.mu.Unlock()
}

// loadFromCache reads the descriptor list and one item per descriptor in a
// single pipeline. hit is true when at least one module was rehydrated.
func (b *Backend) loadFromCache(ctx context.Context) (known []loader.Descriptor, loaded []loader.LoadedModule, hit bool) {
	ns := b.Namespace()

	raw, err := b.client.LRange(ctx, b.listKey, 0, -1).Result()
	if err != nil {
		b.metrics.RecordCache(ns, metrics.CacheErr)
		b.logger.WarnWithCause(ns, "", "Failed to read module list from Redis cache", err, map[string]interface{}{
			"key": b.listKey,
		})
		return nil, nil, false
	}
	if len(raw) == 0 {
		return nil, nil, false
	}

	known = make([]loader.Descriptor, 0, len(raw))
	for _, item := range raw {
		d, err := b.codec.DecodeDescriptor([]byte(item))
		if err != nil {
			b.logger.WarnWithCause(ns, "", "Dropping undecodable cached descriptor", err, nil)
			continue
		}
		known = append(known, d)
	}
	if len(known) == 0 {
		return nil, nil, false
	}

	pipe := b.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(known))
	for i, d := range known {
		cmds[i] = pipe.Get(ctx, b.ItemKey(d.Name))
	}
	// Per-command errors are inspected below; redis.Nil only means a missing item
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		b.logger.WarnWithCause(ns, "", "Pipelined cache read reported errors", err, nil)
	}

	loaded = make([]loader.LoadedModule, 0, len(known))
	for i, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil || len(data) == 0 {
			if err != nil && err != redis.Nil {
				b.logger.WarnWithCause(ns, "", "Failed to read cached module", err, map[string]interface{}{
					"module": known[i].Name,
				})
			}
			continue
		}

		m, err := b.codec.DecodeModule(known[i], data)
		if err != nil {
			b.logger.WarnWithCause(ns, "", "Failed to deserialize cached module", err, map[string]interface{}{
				"module": known[i].Name,
			})
			continue
		}
		loaded = append(loaded, m)
	}

	return known, loaded, len(loaded) > 0
}

// writeThrough replaces the cached descriptor list and stores every
// encodable module in one pipeline. Failures are logged, never returned.
func (b *Backend) writeThrough(ctx context.Context, known []loader.Descriptor, loaded []loader.LoadedModule) {
	ns := b.Namespace()
	pipe := b.client.Pipeline()

	pipe.Del(ctx, b.listKey)

	descriptors := make([]interface{}, 0, len(known))
	for _, d := range known {
		data, err := b.codec.EncodeDescriptor(d)
		if err != nil {
			b.logger.WarnWithCause(ns, "", "Failed to serialize descriptor", err, map[string]interface{}{
				"module": d.Name,
			})
			continue
		}
		descriptors = append(descriptors, data)
	}
	if len(descriptors) > 0 {
		pipe.RPush(ctx, b.listKey, descriptors...)
	}

	cached := 0
	for _, m := range loaded {
		data, err := b.codec.EncodeModule(m)
		if err != nil {
			b.logger.WarnWithCause(ns, "", "Failed to serialize module", err, map[string]interface{}{
				"module": m.Name,
			})
			continue
		}
		pipe.Set(ctx, b.ItemKey(m.Name), data, 0)
		cached++
	}

	if _, err := pipe.Exec(ctx); err != nil {
		b.logger.WarnWithCause(ns, "", "Failed to cache modules in Redis", fmt.Errorf("%w: %w", base.ErrCache, err), nil)
		return
	}

	b.logger.Info(ns, "", "Cached modules in Redis", map[string]interface{}{
		"descriptors": len(descriptors),
		"modules":     cached,
	})
}

// scanKeys lists keys matching pattern with SCAN
func (b *Backend) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var cursor uint64
	var keys []string
	for {
		batch, next, err := b.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

// escapeGlob escapes the characters SCAN MATCH treats as wildcards
func escapeGlob(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
