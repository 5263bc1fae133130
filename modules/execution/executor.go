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
	"time"

	"github.com/imamangupta/moa-mockup/modules/base"
	"github.com/imamangupta/moa-mockup/modules/loader"
	"github.com/imamangupta/moa-mockup/shared/logger"
)

var (
	// ErrNotExecutable means the module does not implement base.Executable
	ErrNotExecutable = errors.New("module is not executable")

	// ErrUnsupportedFunction means the module does not declare the requested function
	ErrUnsupportedFunction = errors.New("function not supported by module")
)

// NodeExecutor runs one function of a module as a workflow node
type NodeExecutor struct {
	NodeID     string
	NodeType   string // Qualified module type, e.g. smart-modules.charge
	Function   string
	Module     base.Module
	Parameters map[string]interface{}
	Outputs    *Outputs // Shared with the other nodes of the run; may be nil
	Logger     *logger.Logger
}

// Context builds the execution context of the node
func (e *NodeExecutor) Context() *ModuleContext {
	return NewModuleContext(e.NodeID, e.NodeType, e.Parameters, e.Outputs)
}

// Run resolves the node parameters, validates them against the function
// declaration, executes the module and records its output
func (e *NodeExecutor) Run(ctx context.Context) (map[string]interface{}, error) {
	ns, _, _ := loader.SplitQualifiedType(e.NodeType)
	start := time.Now()

	exec, ok := e.Module.(base.Executable)
	if !ok {
		return nil, base.NewModuleError(ns, "Run",
			fmt.Sprintf("module '%s' cannot be executed", e.NodeType), ErrNotExecutable)
	}

	fn, ok := e.Module.Description().Function(e.Function)
	if !ok {
		return nil, base.NewModuleError(ns, "Run",
			fmt.Sprintf("module '%s' does not support '%s'", e.NodeType, e.Function), ErrUnsupportedFunction)
	}

	mc := e.Context()
	params, err := mc.ResolveParameters(ctx)
	if err != nil {
		return nil, base.NewModuleError(ns, "Run", "failed to resolve parameters", err)
	}
	if err := ValidateParameters(fn, params); err != nil {
		return nil, base.NewModuleError(ns, "Run", "parameter validation failed", err)
	}

	output, err := exec.Execute(ctx, fn.Name, params)
	if err != nil {
		e.Logger.ErrorWithCause(ns, e.NodeID, "Node execution failed", err, map[string]interface{}{
			"node_type": e.NodeType,
			"function":  fn.Name,
		})
		return nil, base.NewModuleError(ns, "Run",
			fmt.Sprintf("'%s.%s' failed", e.NodeType, fn.Name), err)
	}
	if output == nil {
		output = make(map[string]interface{})
	}

	if e.Outputs != nil {
		e.Outputs.Record(e.NodeID, e.NodeType, output)
	}

	e.Logger.InfoWithDuration(ns, e.NodeID, "Executed node",
		float64(time.Since(start).Microseconds())/1000, map[string]interface{}{
			"node_type": e.NodeType,
			"function":  fn.Name,
		})
	return output, nil
}
