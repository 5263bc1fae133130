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
	"encoding/json"
	"fmt"

	"github.com/imamangupta/moa-mockup/modules/base"
	"github.com/imamangupta/moa-mockup/modules/loader"
)

// ModuleCodec converts descriptors and module instances to and from their cached form
type ModuleCodec interface {
	EncodeDescriptor(d loader.Descriptor) ([]byte, error)
	DecodeDescriptor(data []byte) (loader.Descriptor, error)
	EncodeModule(m loader.LoadedModule) ([]byte, error)
	DecodeModule(d loader.Descriptor, data []byte) (loader.LoadedModule, error)
}

// JSONCodec stores descriptors and module state as JSON.
//
// Rehydrating a module asks Sources for a fresh instance of the descriptor's
// symbol and unmarshals the cached state into it, so only exported,
// JSON-encodable fields survive a round trip. Instances must be pointers.
type JSONCodec struct {
	Sources loader.SourceLoader
}

// NewJSONCodec creates a codec that rehydrates through sources
func NewJSONCodec(sources loader.SourceLoader) *JSONCodec {
	return &JSONCodec{Sources: sources}
}

// EncodeDescriptor implements ModuleCodec
func (c *JSONCodec) EncodeDescriptor(d loader.Descriptor) ([]byte, error) {
	return json.Marshal(d)
}

// DecodeDescriptor implements ModuleCodec
func (c *JSONCodec) DecodeDescriptor(data []byte) (loader.Descriptor, error) {
	var d loader.Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return loader.Descriptor{}, fmt.Errorf("invalid descriptor: %w", err)
	}
	if d.Name == "" || d.QualifiedType == "" {
		return loader.Descriptor{}, fmt.Errorf("invalid descriptor: name and qualified_type are required")
	}
	return d, nil
}

// EncodeModule implements ModuleCodec
func (c *JSONCodec) EncodeModule(m loader.LoadedModule) ([]byte, error) {
	if m.Instance == nil {
		return nil, fmt.Errorf("module '%s' has no instance", m.Name)
	}
	data, err := json.Marshal(m.Instance)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize module '%s': %w", m.Name, err)
	}
	return data, nil
}

// DecodeModule implements ModuleCodec
func (c *JSONCodec) DecodeModule(d loader.Descriptor, data []byte) (loader.LoadedModule, error) {
	if c.Sources == nil {
		return loader.LoadedModule{}, fmt.Errorf("no source loader configured to rehydrate '%s'", d.Name)
	}

	instance, err := c.newInstance(d)
	if err != nil {
		return loader.LoadedModule{}, err
	}

	if err := json.Unmarshal(data, instance); err != nil {
		return loader.LoadedModule{}, fmt.Errorf("failed to deserialize module '%s': %w", d.Name, err)
	}

	return loader.LoadedModule{Name: d.Name, Instance: instance}, nil
}

func (c *JSONCodec) newInstance(d loader.Descriptor) (instance base.Module, err error) {
	factory, err := c.Sources.Load(d.Locator, d.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve module '%s': %w", d.Name, err)
	}

	defer func() {
		if r := recover(); r != nil {
			instance = nil
			err = fmt.Errorf("constructor for '%s' panicked: %v", d.Name, r)
		}
	}()

	instance = factory()
	if instance == nil {
		return nil, fmt.Errorf("constructor for '%s' returned nil", d.Name)
	}
	return instance, nil
}
