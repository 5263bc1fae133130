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
Package base provides the contracts shared by every module, loader and
repository in the module registry.

# Module Interface

A module is any value that can describe itself and hand out the document
repository it persists through:

	type Module interface {
	    Description() Description
	    Repository() Repository
	}

Modules are constructed with no arguments by a factory registered with the
loader package, so all configuration a module needs must come from its
package (for example a shared repository connection).

# Description

The description lists the display name, the named functions a module
supports and the HTTP bindings of those functions:

	base.Description{
	    DisplayName: "Charge",
	    SupportedFunctions: []base.Function{{Name: "create"}},
	    HTTPMethods: []base.HTTPMethod{
	        {Function: base.Function{Name: "create"}, Method: "POST", Endpoint: "/charges"},
	    },
	}

# Repository

Repository is the CRUD contract over a document store. The mongodb,
postgres, mysql and memory packages provide implementations; lookups that
match nothing return ErrDocumentNotFound.

# Errors

Errors are classified with sentinel values (ErrDiscovery, ErrInstantiation,
ErrCache, ErrNotFound, ErrTeardown, ErrDuplicateModule) and wrapped in a
ModuleError carrying the namespace and operation. Modules report refused
requests with ErrRejected; repositories reject unusable ids with
ErrInvalidDocumentID.

	_, err := reg.GetModuleByType("smart-modules.unknown")
	if errors.Is(err, base.ErrNotFound) {
	    // lookup failure
	}
*/
package base
