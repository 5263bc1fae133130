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

package execution

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/imamangupta/moa-mockup/modules/base"
)

// ErrReferenceNotFound means a node output reference could not be resolved
var ErrReferenceNotFound = errors.New("node reference not found")

// Context is what a node sees while it runs: its own parameters plus the
// outputs of nodes that ran before it
type Context interface {
	// Parameters returns the raw parameters the node was configured with
	Parameters() map[string]interface{}

	// ResolveParameters returns the parameters with every node output reference replaced
	ResolveParameters(ctx context.Context) (map[string]interface{}, error)

	// GetParameters returns a copy of the raw parameters
	GetParameters(ctx context.Context) (map[string]interface{}, error)

	// GetNodeOutputByNodeType returns the latest output of a node of nodeType
	GetNodeOutputByNodeType(ctx context.Context, nodeType string) (map[string]interface{}, error)

	// ResolveReference returns the value at the dotted path ref in the output of nodeID
	ResolveReference(ctx context.Context, ref, nodeID string) (interface{}, error)

	// GetNodeDetails describes the node owning this context
	GetNodeDetails(ctx context.Context) (map[string]interface{}, error)
}

// referenceRegex matches a parameter value of the form {{nodes.<node id>.output.<path>}}
var referenceRegex = regexp.MustCompile(`^\{\{\s*nodes\.([^.\s}]+)\.output\.([^\s}]+)\s*\}\}$`)

// ModuleContext is the Context handed to a module node
type ModuleContext struct {
	nodeID   string
	nodeType string
	params   map[string]interface{}
	outputs  *Outputs
}

// NewModuleContext creates a context for one node; outputs may be nil
func NewModuleContext(nodeID, nodeType string, params map[string]interface{}, outputs *Outputs) *ModuleContext {
	if params == nil {
		params = make(map[string]interface{})
	}
	return &ModuleContext{
		nodeID:   nodeID,
		nodeType: nodeType,
		params:   params,
		outputs:  outputs,
	}
}

// Parameters implements Context
func (c *ModuleContext) Parameters() map[string]interface{} {
	return c.params
}

// GetParameters implements Context
func (c *ModuleContext) GetParameters(ctx context.Context) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[string]interface{}, len(c.params))
	for k, v := range c.params {
		out[k] = v
	}
	return out, nil
}

// ResolveParameters implements Context. Nested maps and slices are walked;
// only string values that are a whole reference are replaced.
func (c *ModuleContext) ResolveParameters(ctx context.Context) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resolved, err := c.resolveValue(ctx, c.params)
	if err != nil {
		return nil, err
	}
	return resolved.(map[string]interface{}), nil
}

func (c *ModuleContext) resolveValue(ctx context.Context, value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string:
		m := referenceRegex.FindStringSubmatch(v)
		if m == nil {
			return v, nil
		}
		return c.ResolveReference(ctx, m[2], m[1])
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, item := range v {
			r, err := c.resolveValue(ctx, item)
			if err != nil {
				return nil, fmt.Errorf("parameter '%s': %w", k, err)
			}
			out[k] = r
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			r, err := c.resolveValue(ctx, item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = r
		}
		return out, nil
	default:
		return v, nil
	}
}

// GetNodeOutputByNodeType implements Context
func (c *ModuleContext) GetNodeOutputByNodeType(ctx context.Context, nodeType string) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, ok := c.outputs.ByNodeType(nodeType)
	if !ok {
		return nil, fmt.Errorf("%w: no output for node type '%s'", ErrReferenceNotFound, nodeType)
	}
	return out.Data, nil
}

// ResolveReference implements Context
func (c *ModuleContext) ResolveReference(ctx context.Context, ref, nodeID string) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, ok := c.outputs.ByNodeID(nodeID)
	if !ok {
		return nil, fmt.Errorf("%w: node '%s' has no output", ErrReferenceNotFound, nodeID)
	}

	var current interface{} = out.Data
	for _, key := range strings.Split(ref, ".") {
		var next interface{}
		var found bool
		switch m := current.(type) {
		case map[string]interface{}:
			next, found = m[key]
		case base.Document:
			next, found = m[key]
		}
		if !found {
			return nil, fmt.Errorf("%w: '%s' in output of node '%s'", ErrReferenceNotFound, ref, nodeID)
		}
		current = next
	}
	return current, nil
}

// GetNodeDetails implements Context
func (c *ModuleContext) GetNodeDetails(ctx context.Context) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"node_id":    c.nodeID,
		"node_type":  c.nodeType,
		"parameters": len(c.params),
	}, nil
}

// ValidateParameters checks the raw parameters against fn
func (c *ModuleContext) ValidateParameters(fn base.Function) error {
	return ValidateParameters(fn, c.params)
}
