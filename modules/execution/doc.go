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

/*
Package execution runs module functions as workflow nodes.

A NodeExecutor binds a module, one of its declared functions and the node
parameters. Parameter values of the form

	{{nodes.<node id>.output.<path>}}

are replaced with the output an earlier node recorded in the shared Outputs
store before the parameters are validated against the function's
declarations and passed to the module's Execute method.
*/
package execution
