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
	"strings"

	"github.com/imamangupta/moa-mockup/modules/base"
)

// DefaultNamespace is used when no package namespace is configured
const DefaultNamespace = "smart-modules"

// Descriptor identifies a discovered module independent of whether it was instantiated
type Descriptor struct {
	Name          string `json:"name"`
	Locator       string `json:"locator"`
	QualifiedType string `json:"qualified_type"`
}

// LoadedModule is an instantiated module owned by the backend that produced it
type LoadedModule struct {
	Name     string
	Instance base.Module
}

// QualifiedType returns "<namespace>.<lower(name)>"
func QualifiedType(namespace, name string) string {
	return namespace + "." + strings.ToLower(name)
}

// SplitQualifiedType splits a qualified type on its first dot.
// ok is false unless both parts are non-empty.
func SplitQualifiedType(qualifiedType string) (namespace, localType string, ok bool) {
	namespace, localType, found := strings.Cut(qualifiedType, ".")
	if !found || namespace == "" || localType == "" {
		return "", "", false
	}
	return namespace, localType, true
}

// NewDescriptor builds a descriptor for name found at locator within namespace
func NewDescriptor(namespace, name, locator string) Descriptor {
	return Descriptor{
		Name:          name,
		Locator:       locator,
		QualifiedType: QualifiedType(namespace, name),
	}
}
