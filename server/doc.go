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

// Package server exposes the module registry over HTTP.
//
// API Endpoints:
//   - GET  /health                                     - Liveness and module counts
//   - GET  /api/modules                                - Every loaded module keyed by qualified type
//   - GET  /api/modules/{type}                         - One module description
//   - POST /api/modules/{type}/execute/{function}      - Run a module function
//   - GET  /api/namespaces                             - Registered namespaces
//   - POST /api/namespaces/{namespace}/flush           - Drop a namespace's modules and cache
//   - GET  /prometheus                                 - Prometheus metrics
//
// Every response carries an X-Request-ID header; a client-supplied value is
// echoed, otherwise a UUID is generated.
//
// When MODULES_JWT_SECRET is set, execute needs a bearer token whose
// "permissions" claim lists modules:execute and flush needs modules:admin.
package server
