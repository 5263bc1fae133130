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
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/imamangupta/moa-mockup/modules/base"
)

// ErrInvalidParameters means node parameters do not match the function declaration
var ErrInvalidParameters = errors.New("invalid node parameters")

// ParameterSpec is one declared parameter of a module function.
//
// Declarations are maps in base.Function.Parameters:
//
//	{"name": "amount", "type": "number", "required": true}
//
// type is one of string, number, boolean, object, array or empty for any.
type ParameterSpec struct {
	Name     string
	Type     string
	Required bool
}

// ParameterSpecs parses the parameter declarations of fn. Entries without a name are skipped.
func ParameterSpecs(fn base.Function) []ParameterSpec {
	specs := make([]ParameterSpec, 0, len(fn.Parameters))
	for _, decl := range fn.Parameters {
		name, _ := decl["name"].(string)
		if name == "" {
			continue
		}
		typ, _ := decl["type"].(string)
		required, _ := decl["required"].(bool)
		specs = append(specs, ParameterSpec{
			Name:     name,
			Type:     strings.ToLower(typ),
			Required: required,
		})
	}
	return specs
}

// ValidateParameters checks params against the declarations of fn.
// Undeclared parameters are allowed.
func ValidateParameters(fn base.Function, params map[string]interface{}) error {
	var problems []string
	for _, spec := range ParameterSpecs(fn) {
		value, ok := params[spec.Name]
		if !ok || value == nil {
			if spec.Required {
				problems = append(problems, fmt.Sprintf("missing required parameter '%s'", spec.Name))
			}
			continue
		}
		if !matchesType(spec.Type, value) {
			problems = append(problems, fmt.Sprintf("parameter '%s' must be of type %s, got %T", spec.Name, spec.Type, value))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: function '%s': %s", ErrInvalidParameters, fn.Name, strings.Join(problems, "; "))
	}
	return nil
}

func matchesType(typ string, value interface{}) bool {
	switch typ {
	case "", "any":
		return true
	case "string":
		_, ok := value.(string)
		return ok
	case "number":
		switch value.(type) {
		case int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64,
			float32, float64, json.Number:
			return true
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "object":
		switch value.(type) {
		case map[string]interface{}, base.Document:
			return true
		}
		return false
	case "array":
		_, ok := value.([]interface{})
		return ok
	default:
		return false
	}
}
