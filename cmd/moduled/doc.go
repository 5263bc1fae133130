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
Command moduled runs the module registry service.

It scans the configured module roots, instantiates every module linked into
the binary and serves the registry over HTTP.

# Usage

	moduled

# Environment Variables

Optional:
  - PORT: HTTP server port (default: 8080)
  - MODULES_CONFIG_FILE: YAML namespace configuration
  - PACKAGE_NAME: namespace when no config file is set (default: smart-modules)
  - MODULES_ROOT: module root when no config file is set (default: smartmodules)
  - MODULE_CACHE_ENABLED, REDIS_HOST, REDIS_PORT, REDIS_PASSWORD, REDIS_DB, REDIS_PREFIX:
    Redis cache for the namespace
  - MONGODB_URI, MONGODB_DATABASE: MongoDB document store
  - DATABASE_URL: PostgreSQL document store
  - MYSQL_DSN: MySQL document store
  - MODULES_JWT_SECRET: require bearer tokens on execute and flush
  - LOG_LEVEL: DEBUG, INFO, WARN or ERROR

# Adding Modules

A module lives at <root>/<group>/<Name>.module.go and registers its factory
under <Name> from init():

	func init() {
	    loader.Register("Charge", func() base.Module { return NewCharge() })
	}

Link the package into this command with a blank import in module_imports.go.
Modules built with -buildmode=plugin are loaded from <Name>.module.so files
when "so" is among the configured extensions.
*/
package main
