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
Package logger provides structured JSON logging for the module registry.

# Overview

Each log entry is a single JSON line that includes:
  - Timestamp (RFC3339Nano format)
  - Log level (DEBUG, INFO, WARN, ERROR)
  - Component name (registry, redis-loader, server, ...)
  - Instance ID and container name
  - Package namespace the entry concerns
  - Request ID (for request correlation)
  - Custom fields

# Usage

Create a logger for your component:

	log := logger.New("registry")

Log messages with namespace and request context:

	log.Info("smart-modules", "", "Loaded modules", map[string]interface{}{
	    "count": 3,
	})

Log errors with their cause:

	log.ErrorWithCause("smart-modules", "", "Failed to load module", err, map[string]interface{}{
	    "locator": "/srv/modules/payments/Charge.module.go",
	})

# Observability Sink

Backends and the registry receive a *Logger by reference. Tests create one
over a buffer and decode what was emitted:

	var buf bytes.Buffer
	log := logger.NewWithWriter("test", &buf)
	// ... exercise code ...
	entries, _ := logger.ReadEntries(&buf)

# Environment Variables

  - INSTANCE_ID: Deployment instance identifier
  - LOG_LEVEL: Minimum level written (default DEBUG)

# Thread Safety

Logger instances are safe for concurrent use from multiple goroutines.
*/
package logger
