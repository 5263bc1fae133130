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
Package registry resolves qualified module types across namespaces.

Each namespace is served by exactly one loader.Backend built by a
BackendFactory from a config.Config:

	reg := registry.NewRegistry(registry.WithLogger(logger.New("moduled")))
	if err := reg.Init(ctx, config.Default()); err != nil {
	    return err
	}
	defer reg.Shutdown(ctx)

	charge, err := reg.GetModuleByType("smart-modules.charge")

Lookups split the qualified type on its first '.', pick the backend for the
namespace part and match the remainder against module names without regard
to case. Every lookup failure wraps base.ErrNotFound.
*/
package registry
