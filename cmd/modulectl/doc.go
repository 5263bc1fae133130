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
Command modulectl inspects module roots and manages the module cache.

# Usage

	modulectl modules list [--root DIR] [--namespace NS] [--config FILE]
	modulectl modules inspect <type>
	modulectl config example
	modulectl config validate <file>
	modulectl cache warm  [--redis-host HOST] [--redis-port PORT] [--prefix P]
	modulectl cache flush [--redis-host HOST] [--redis-port PORT] [--prefix P]

Only modules linked into modulectl (see module_imports.go) instantiate; the
rest are reported on stderr and skipped.
*/
package main
