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
	"errors"
)

// Error categories. Use errors.Is to classify a returned error.
var (
	// ErrDiscovery means the module root could not be read
	ErrDiscovery = errors.New("module discovery failed")

	// ErrInstantiation means a single module failed to load or construct
	ErrInstantiation = errors.New("module instantiation failed")

	// ErrCache means an external cache read or write failed
	ErrCache = errors.New("module cache operation failed")

	// ErrNotFound means a qualified type did not resolve to a loaded module
	ErrNotFound = errors.New("module not found")

	// ErrTeardown means flushing or disconnecting a backend failed
	ErrTeardown = errors.New("module backend teardown failed")

	// ErrDuplicateModule means two descriptors resolved to the same qualified type
	ErrDuplicateModule = errors.New("duplicate module qualified type")

	// ErrDocumentNotFound is returned by repositories when nothing matches
	ErrDocumentNotFound = errors.New("document not found")

	// ErrInvalidDocumentID means a document carries an _id that cannot be used as a key
	ErrInvalidDocumentID = errors.New("invalid document id")

	// ErrRejected means a module refused a well-formed request on a business rule
	ErrRejected = errors.New("request rejected by module")
)

// ModuleError carries the operation and namespace that produced an error
type ModuleError struct {
	Namespace string
	Operation string
	Message   string
	Cause     error
}

func (e *ModuleError) Error() string {
	if e.Cause != nil {
		return e.Namespace + "." + e.Operation + ": " + e.Message + " (cause: " + e.Cause.Error() + ")"
	}
	return e.Namespace + "." + e.Operation + ": " + e.Message
}

func (e *ModuleError) Unwrap() error {
	return e.Cause
}

// NewModuleError creates a new ModuleError
func NewModuleError(namespace, operation, message string, cause error) *ModuleError {
	return &ModuleError{
		Namespace: namespace,
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}
