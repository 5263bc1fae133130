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

// Package smartmodules holds the modules served by the default namespace.
// Each subdirectory is a module package whose <Name>.module.go file
// registers its factory with the loader from init; cmd/moduled links them
// in with blank imports. Files directly under this directory are not
// modules.
package smartmodules

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/imamangupta/moa-mockup/modules/base"
	"github.com/imamangupta/moa-mockup/modules/execution"
	"github.com/imamangupta/moa-mockup/modules/memory"
)

// RepositoryProvider returns the repository backing a collection
type RepositoryProvider func(collection string) base.Repository

var (
	providerMu sync.RWMutex
	provider   RepositoryProvider
	fallback   = map[string]*memory.Repository{}
)

// SetRepositoryProvider sets the document store used by every module.
// A nil provider restores the in-memory default.
func SetRepositoryProvider(p RepositoryProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	provider = p
	fallback = map[string]*memory.Repository{}
}

// Repository returns the repository for collection from the configured
// provider, or a process-wide in-memory repository
func Repository(collection string) base.Repository {
	providerMu.RLock()
	p := provider
	providerMu.RUnlock()
	if p != nil {
		return p(collection)
	}

	providerMu.Lock()
	defer providerMu.Unlock()
	repo, ok := fallback[collection]
	if !ok {
		repo = memory.NewRepository(collection)
		fallback[collection] = repo
	}
	return repo
}

// StringParam returns params[key] as a string
func StringParam(params map[string]interface{}, key string) (string, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: missing parameter '%s'", execution.ErrInvalidParameters, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: parameter '%s' must be a string, got %T", execution.ErrInvalidParameters, key, v)
	}
	return s, nil
}

// NumberParam returns params[key] as a float64
func NumberParam(params map[string]interface{}, key string) (float64, error) {
	switch v := params[key].(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: parameter '%s': %v", execution.ErrInvalidParameters, key, err)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("%w: missing parameter '%s'", execution.ErrInvalidParameters, key)
	default:
		return 0, fmt.Errorf("%w: parameter '%s' must be a number, got %T", execution.ErrInvalidParameters, key, v)
	}
}

// Result wraps a document as an execution output
func Result(doc base.Document) map[string]interface{} {
	return map[string]interface{}(doc)
}

// Results wraps documents as an execution output
func Results(docs []base.Document) map[string]interface{} {
	items := make([]interface{}, 0, len(docs))
	for _, d := range docs {
		items = append(items, map[string]interface{}(d))
	}
	return map[string]interface{}{"items": items, "count": len(items)}
}
