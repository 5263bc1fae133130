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
Package loader discovers and instantiates modules for one package namespace.

# Discovery Layout

A DirectoryBackend scans a root directory one level deep:

	<root>/
	    payments/
	        Charge.module.go
	        Refund.module.go
	    inventory/
	        Product.module.go

Every file named <Name>.module.<ext> with a recognised extension becomes a
Descriptor with qualified type "<namespace>.<lower(Name)>". Other files are
ignored. Enumeration order follows the directory listing; callers must rely
on lookups by qualified type, not on load order.

# Source Loaders

Go has no safe way to require arbitrary source at runtime, so a
SourceLoader maps a descriptor to a Factory:

  - StaticSourceLoader: a compile-time table filled by Register from init()
  - PluginSourceLoader: Go plugins (.so) opened with plugin.Open
  - ExtensionSourceLoader: picks one of the above by file extension

A module package registers itself and is linked in with a blank import:

	func init() {
	    loader.Register("Charge", func() base.Module { return NewCharge() })
	}

# Failure Policy

A directory read failure aborts LoadAll with an error wrapping
base.ErrDiscovery. A module whose factory cannot be resolved, panics or
returns nil is logged and skipped; LoadAll still succeeds.

# Collisions

Two files resolving to the same qualified type are handled by the
CollisionPolicy: keep-last (default), keep-first or error.

# Backends

Backend is the interface the registry depends on. DirectoryBackend is the
filesystem variant; the redis package provides a cache-aside variant that
wraps any Scanner. Backends holding external connections also implement
Disconnector.
*/
package loader
