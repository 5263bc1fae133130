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
Package redis provides a cache-aside module backend on top of go-redis.

The backend wraps a loader.Scanner (normally a loader.DirectoryBackend) and
keeps two kinds of keys per namespace:

	<prefix>modules:list:<namespace>   list of JSON descriptors
	<prefix>module:<lower name>        JSON state of one module instance

LoadAll reads the list, then fetches every item in one pipeline. When at
least one module rehydrates the filesystem is not touched. Otherwise the
scanner runs and the result is written back in a second pipeline. Redis
errors are logged and never fail LoadAll.

Two namespaces configured with the same prefix share item keys, so give each
namespace its own prefix when module names can collide.

# Usage

	dir := loader.NewDirectoryBackend(loader.Options{Root: "smartmodules"})
	backend := redis.NewBackend(dir, redis.Options{
	    Host:   "localhost",
	    Port:   6379,
	    Prefix: "moduled",
	})
	defer backend.Disconnect(ctx)

	if err := backend.LoadAll(ctx); err != nil {
	    return err
	}
*/
package redis
