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

package base

import (
	"context"
)

// Module defines the capability every discoverable module must satisfy.
// Instances are created with no arguments by a loader.Factory.
type Module interface {
	// Description returns the module's self-description
	Description() Description

	// Repository returns the document repository the module persists through.
	// May be nil when the module has no backing store configured.
	Repository() Repository
}

// Executable is implemented by modules that can be invoked by a node executor.
// function is one of the names in the module's SupportedFunctions.
type Executable interface {
	Execute(ctx context.Context, function string, params map[string]interface{}) (map[string]interface{}, error)
}

// Description is the metadata a module declares about itself
type Description struct {
	DisplayName        string       `json:"display_name"`
	SupportedFunctions []Function   `json:"supported_functions"`
	HTTPMethods        []HTTPMethod `json:"http_methods"`
}

// Function is a named operation a module supports
type Function struct {
	Name       string                   `json:"name"`
	Parameters []map[string]interface{} `json:"parameters,omitempty"`
}

// HTTPMethod binds a module function to an HTTP method and endpoint
type HTTPMethod struct {
	Function
	Method   string `json:"method"`
	Endpoint string `json:"endpoint"`
}

// FunctionNames returns the names of all supported functions in declaration order
func (d Description) FunctionNames() []string {
	names := make([]string, 0, len(d.SupportedFunctions))
	for _, fn := range d.SupportedFunctions {
		names = append(names, fn.Name)
	}
	return names
}

// Supports reports whether the description declares the named function
func (d Description) Supports(name string) bool {
	_, ok := d.Function(name)
	return ok
}

// Function returns the declared function with the given name
func (d Description) Function(name string) (Function, bool) {
	for _, fn := range d.SupportedFunctions {
		if fn.Name == name {
			return fn, true
		}
	}
	return Function{}, false
}
