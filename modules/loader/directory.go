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

package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/imamangupta/moa-mockup/modules/base"
	"github.com/imamangupta/moa-mockup/modules/metrics"
	"github.com/imamangupta/moa-mockup/shared/logger"
)

// DefaultExtensions are the source extensions recognised when none are configured
var DefaultExtensions = []string{"go", "so"}

// Options configures a DirectoryBackend
type Options struct {
	Namespace  string          // Package namespace (default: DefaultNamespace)
	Root       string          // Directory whose subdirectories hold module files
	Extensions []string        // Recognised source extensions (default: DefaultExtensions)
	Collision  CollisionPolicy // Duplicate qualified type policy (default: keep-last)
	Sources    SourceLoader    // Resolves descriptors to factories (default: DefaultSourceLoader())
	Logger     *logger.Logger
	Metrics    *metrics.Metrics
}

// DirectoryBackend discovers modules by scanning Root one level deep and
// instantiating every <Name>.module.<ext> file it finds.
// Thread-safe for concurrent access.
type DirectoryBackend struct {
	namespace  string
	root       string
	extensions map[string]bool
	collision  CollisionPolicy
	sources    SourceLoader
	logger     *logger.Logger
	metrics    *metrics.Metrics

	known  []Descriptor
	loaded []LoadedModule
	mu     sync.RWMutex
}

// NewDirectoryBackend creates a filesystem backend. Nothing is scanned until LoadAll.
func NewDirectoryBackend(opts Options) *DirectoryBackend {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	extensions := make(map[string]bool, len(exts))
	for _, ext := range exts {
		extensions[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}

	sources := opts.Sources
	if sources == nil {
		sources = DefaultSourceLoader()
	}

	log := opts.Logger
	if log == nil {
		log = logger.New("directory-loader")
	}

	collision, err := ParseCollisionPolicy(string(opts.Collision))
	if err != nil {
		log.WarnWithCause(namespace, "", "Unknown collision policy, keeping last duplicate", err, nil)
		collision = CollisionKeepLast
	}

	return &DirectoryBackend{
		namespace:  namespace,
		root:       opts.Root,
		extensions: extensions,
		collision:  collision,
		sources:    sources,
		logger:     log,
		metrics:    opts.Metrics,
	}
}

// Namespace returns the package namespace
func (b *DirectoryBackend) Namespace() string {
	return b.namespace
}

// Root returns the scanned directory
func (b *DirectoryBackend) Root() string {
	return b.root
}

// Known returns a copy of the discovered descriptors
func (b *DirectoryBackend) Known() []Descriptor {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Descriptor(nil), b.known...)
}

// Modules returns a copy of the loaded modules
func (b *DirectoryBackend) Modules() []LoadedModule {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]LoadedModule(nil), b.loaded...)
}

// LoadAll scans the root and instantiates every discovered module.
// A directory read failure aborts the load; a module that fails to
// instantiate is logged and skipped.
func (b *DirectoryBackend) LoadAll(ctx context.Context) error {
	start := time.Now()

	known, err := b.Discover(ctx)
	if err != nil {
		return err
	}
	loaded := b.Instantiate(ctx, known)

	b.mu.Lock()
	b.known = known
	b.loaded = loaded
	b.mu.Unlock()

	elapsed := time.Since(start)
	b.metrics.RecordLoad(b.namespace, metrics.SourceFilesystem, len(loaded), elapsed)
	b.logger.InfoWithDuration(b.namespace, "", "Loaded modules from filesystem",
		float64(elapsed.Microseconds())/1000, map[string]interface{}{
			"root":   b.root,
			"known":  len(known),
			"loaded": len(loaded),
		})

	return nil
}

// FlushAll clears descriptors and instances; it has no external side effects
func (b *DirectoryBackend) FlushAll(ctx context.Context) error {
	b.mu.Lock()
	b.known = nil
	b.loaded = nil
	b.mu.Unlock()

	b.logger.Info(b.namespace, "", "Flushed in-memory modules", nil)
	return nil
}

// Discover walks the root one level into subdirectories and returns a
// descriptor per matching module file, in enumeration order.
func (b *DirectoryBackend) Discover(ctx context.Context) ([]Descriptor, error) {
	entries, err := os.ReadDir(b.root)
	if err != nil {
		return nil, b.discoveryError("failed to read module root", err)
	}

	var descriptors []Descriptor
	removed := make(map[int]bool)
	index := make(map[string]int)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, b.discoveryError("discovery cancelled", err)
		}

		folderPath := filepath.Join(b.root, entry.Name())
		files, err := os.ReadDir(folderPath)
		if err != nil {
			return nil, b.discoveryError(fmt.Sprintf("failed to read module folder %s", folderPath), err)
		}

		for _, file := range files {
			if file.IsDir() {
				continue
			}
			name, ok := b.moduleName(file.Name())
			if !ok {
				continue
			}

			d := NewDescriptor(b.namespace, name, filepath.Join(folderPath, file.Name()))

			if prev, dup := index[d.QualifiedType]; dup {
				switch b.collision {
				case CollisionError:
					return nil, b.discoveryError(
						fmt.Sprintf("%s found at %s and %s", d.QualifiedType, descriptors[prev].Locator, d.Locator),
						base.ErrDuplicateModule)
				case CollisionKeepFirst:
					b.logger.Warn(b.namespace, "", "Ignoring duplicate module", map[string]interface{}{
						"qualified_type": d.QualifiedType,
						"kept":           descriptors[prev].Locator,
						"ignored":        d.Locator,
					})
					continue
				default:
					b.logger.Warn(b.namespace, "", "Replacing duplicate module", map[string]interface{}{
						"qualified_type": d.QualifiedType,
						"replaced":       descriptors[prev].Locator,
						"kept":           d.Locator,
					})
					removed[prev] = true
				}
			}

			index[d.QualifiedType] = len(descriptors)
			descriptors = append(descriptors, d)
		}
	}

	if len(removed) == 0 {
		return descriptors, nil
	}

	compacted := make([]Descriptor, 0, len(descriptors)-len(removed))
	for i, d := range descriptors {
		if !removed[i] {
			compacted = append(compacted, d)
		}
	}
	return compacted, nil
}

// Instantiate resolves and constructs each descriptor's module.
// Failures are logged, counted and skipped.
func (b *DirectoryBackend) Instantiate(ctx context.Context, descriptors []Descriptor) []LoadedModule {
	loaded := make([]LoadedModule, 0, len(descriptors))

	for _, d := range descriptors {
		if err := ctx.Err(); err != nil {
			b.logger.WarnWithCause(b.namespace, "", "Instantiation cancelled", err, map[string]interface{}{
				"remaining": len(descriptors) - len(loaded),
			})
			break
		}

		instance, err := b.construct(d)
		if err != nil {
			b.metrics.RecordInstantiationFailure(b.namespace)
			b.logger.ErrorWithCause(b.namespace, "", "Failed to load module", err, map[string]interface{}{
				"module":  d.Name,
				"locator": d.Locator,
			})
			continue
		}

		loaded = append(loaded, LoadedModule{Name: d.Name, Instance: instance})
	}

	return loaded
}

// construct loads the factory for d and calls it, converting panics into errors
func (b *DirectoryBackend) construct(d Descriptor) (instance base.Module, err error) {
	factory, err := b.sources.Load(d.Locator, d.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", base.ErrInstantiation, err)
	}

	defer func() {
		if r := recover(); r != nil {
			instance = nil
			err = fmt.Errorf("%w: constructor for '%s' panicked: %v", base.ErrInstantiation, d.Name, r)
		}
	}()

	instance = factory()
	if instance == nil {
		return nil, fmt.Errorf("%w: constructor for '%s' returned nil", base.ErrInstantiation, d.Name)
	}
	return instance, nil
}

// moduleName returns the module name for a file named <Name>[.x].module.<ext>
func (b *DirectoryBackend) moduleName(fileName string) (string, bool) {
	ext := filepath.Ext(fileName)
	if ext == "" || !b.extensions[strings.ToLower(ext[1:])] {
		return "", false
	}
	if !strings.HasSuffix(strings.TrimSuffix(fileName, ext), ".module") {
		return "", false
	}

	name := strings.SplitN(fileName, ".", 2)[0]
	if name == "" {
		return "", false
	}
	return name, true
}

func (b *DirectoryBackend) discoveryError(message string, cause error) error {
	return base.NewModuleError(b.namespace, "LoadAll", message, fmt.Errorf("%w: %w", base.ErrDiscovery, cause))
}
