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
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/imamangupta/moa-mockup/modules/base"
)

var (
	// ErrSymbolNotFound means the source unit does not export the requested symbol
	ErrSymbolNotFound = errors.New("module symbol not found")

	// ErrUnsupportedSource means no loader handles the locator's extension
	ErrUnsupportedSource = errors.New("unsupported module source")
)

// Factory constructs a module with no arguments
type Factory func() base.Module

// SourceLoader resolves a discovered source unit to the factory of its exported symbol
type SourceLoader interface {
	Load(locator, symbol string) (Factory, error)
}

// StaticSourceLoader resolves symbols from a table populated at compile time.
// Module packages call Register from init() and are linked in with a blank import.
type StaticSourceLoader struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

// NewStaticSourceLoader creates an empty static table
func NewStaticSourceLoader() *StaticSourceLoader {
	return &StaticSourceLoader{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory for symbol.
// Returns error if the symbol is already registered.
func (s *StaticSourceLoader) Register(symbol string, factory Factory) error {
	if symbol == "" {
		return fmt.Errorf("module symbol must not be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory for module '%s' must not be nil", symbol)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.factories[symbol]; exists {
		return fmt.Errorf("module '%s' already registered", symbol)
	}
	s.factories[symbol] = factory
	return nil
}

// Load returns the factory registered for symbol; the locator is not consulted
func (s *StaticSourceLoader) Load(locator, symbol string) (Factory, error) {
	s.mu.RLock()
	factory, ok := s.factories[symbol]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: '%s' (source %s)", ErrSymbolNotFound, symbol, locator)
	}
	return factory, nil
}

// Symbols returns the registered symbols in sorted order
func (s *StaticSourceLoader) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	symbols := make([]string, 0, len(s.factories))
	for symbol := range s.factories {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

var defaultSources = NewStaticSourceLoader()

// Register adds a factory to the process-wide static table.
// It panics on duplicates and is meant to be called from init().
func Register(symbol string, factory Factory) {
	if err := defaultSources.Register(symbol, factory); err != nil {
		panic(err)
	}
}

// DefaultSources returns the process-wide static table
func DefaultSources() *StaticSourceLoader {
	return defaultSources
}

// ExtensionSourceLoader dispatches to a SourceLoader by file extension (without the dot)
type ExtensionSourceLoader map[string]SourceLoader

// Load implements SourceLoader
func (e ExtensionSourceLoader) Load(locator, symbol string) (Factory, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(locator), "."))
	loader, ok := e[ext]
	if !ok {
		return nil, fmt.Errorf("%w: extension %q (source %s)", ErrUnsupportedSource, ext, locator)
	}
	return loader.Load(locator, symbol)
}

// DefaultSourceLoader resolves .go sources from the static table and .so sources as Go plugins
func DefaultSourceLoader() SourceLoader {
	return ExtensionSourceLoader{
		"go": DefaultSources(),
		"so": NewPluginSourceLoader(),
	}
}
