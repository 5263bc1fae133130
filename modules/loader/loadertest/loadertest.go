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

// Package loadertest provides fixtures for tests that exercise module backends.
package loadertest

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/imamangupta/moa-mockup/modules/base"
	"github.com/imamangupta/moa-mockup/modules/loader"
)

// Module is a JSON round-trippable module used in tests
type Module struct {
	Desc    base.Description `json:"description"`
	Version int              `json:"version"`
	Tags    []string         `json:"tags,omitempty"`
}

// Description implements base.Module
func (m *Module) Description() base.Description { return m.Desc }

// Repository implements base.Module
func (m *Module) Repository() base.Repository { return nil }

// Factory returns a factory producing a Module named displayName
func Factory(displayName string) loader.Factory {
	return func() base.Module {
		return &Module{
			Desc: base.Description{
				DisplayName:        displayName,
				SupportedFunctions: []base.Function{{Name: "create"}, {Name: "list"}},
				HTTPMethods: []base.HTTPMethod{
					{Function: base.Function{Name: "create"}, Method: "POST", Endpoint: "/" + displayName},
				},
			},
			Version: 1,
		}
	}
}

// Sources returns a static source loader with a Factory registered for each name
func Sources(t testing.TB, names ...string) *loader.StaticSourceLoader {
	t.Helper()
	sources := loader.NewStaticSourceLoader()
	for _, name := range names {
		if err := sources.Register(name, Factory(name)); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	return sources
}

// WriteTree creates each relative path under root as an empty file and returns root
func WriteTree(t testing.TB, root string, paths ...string) string {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", full, err)
		}
		if err := os.WriteFile(full, []byte("package fixture\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", full, err)
		}
	}
	return root
}

// CountingScanner wraps a Scanner and counts Discover and Instantiate calls
type CountingScanner struct {
	loader.Scanner
	discovers    atomic.Int32
	instantiates atomic.Int32
}

// NewCountingScanner wraps s
func NewCountingScanner(s loader.Scanner) *CountingScanner {
	return &CountingScanner{Scanner: s}
}

// Discover implements loader.Scanner
func (c *CountingScanner) Discover(ctx context.Context) ([]loader.Descriptor, error) {
	c.discovers.Add(1)
	return c.Scanner.Discover(ctx)
}

// Instantiate implements loader.Scanner
func (c *CountingScanner) Instantiate(ctx context.Context, descriptors []loader.Descriptor) []loader.LoadedModule {
	c.instantiates.Add(1)
	return c.Scanner.Instantiate(ctx, descriptors)
}

// Discovers returns how many times Discover ran
func (c *CountingScanner) Discovers() int { return int(c.discovers.Load()) }

// Instantiates returns how many times Instantiate ran
func (c *CountingScanner) Instantiates() int { return int(c.instantiates.Load()) }
