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
)

// Backend is a discovery strategy producing descriptors and instances for one namespace
type Backend interface {
	// Namespace returns the package namespace this backend serves
	Namespace() string

	// Known returns the descriptors found by the last LoadAll
	Known() []Descriptor

	// Modules returns the instances produced by the last LoadAll
	Modules() []LoadedModule

	// LoadAll discovers and instantiates modules, replacing any previous state
	LoadAll(ctx context.Context) error

	// FlushAll drops every descriptor and instance held by the backend
	FlushAll(ctx context.Context) error
}

// Disconnector is implemented by backends holding an external connection.
// The registry calls Disconnect during shutdown.
type Disconnector interface {
	Disconnect(ctx context.Context) error
}

// Scanner is the filesystem discovery and instantiation step a cache layer wraps
type Scanner interface {
	Namespace() string
	Discover(ctx context.Context) ([]Descriptor, error)
	Instantiate(ctx context.Context, descriptors []Descriptor) []LoadedModule
}
