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
	"fmt"
	"plugin"

	"github.com/imamangupta/moa-mockup/modules/base"
)

// PluginSourceLoader opens Go plugins (.so) and looks up the exported symbol.
// The symbol must be a func() base.Module, or a variable of that type.
type PluginSourceLoader struct {
	open func(path string) (*plugin.Plugin, error)
}

// NewPluginSourceLoader creates a loader backed by plugin.Open
func NewPluginSourceLoader() *PluginSourceLoader {
	return &PluginSourceLoader{open: plugin.Open}
}

// Load implements SourceLoader
func (p *PluginSourceLoader) Load(locator, symbol string) (Factory, error) {
	plug, err := p.open(locator)
	if err != nil {
		return nil, fmt.Errorf("failed to open plugin %s: %w", locator, err)
	}

	sym, err := plug.Lookup(symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: '%s' in plugin %s: %v", ErrSymbolNotFound, symbol, locator, err)
	}

	return factoryFromSymbol(symbol, sym)
}

// factoryFromSymbol adapts the value found by plugin.Lookup to a Factory
func factoryFromSymbol(symbol string, sym interface{}) (Factory, error) {
	switch fn := sym.(type) {
	case func() base.Module:
		return fn, nil
	case *func() base.Module:
		if fn == nil || *fn == nil {
			return nil, fmt.Errorf("symbol '%s' is a nil factory", symbol)
		}
		return *fn, nil
	case Factory:
		return fn, nil
	case *Factory:
		if fn == nil || *fn == nil {
			return nil, fmt.Errorf("symbol '%s' is a nil factory", symbol)
		}
		return *fn, nil
	default:
		return nil, fmt.Errorf("symbol '%s' has type %T, want func() base.Module", symbol, sym)
	}
}
