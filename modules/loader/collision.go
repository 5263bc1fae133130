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

package loader

import (
	"fmt"
	"strings"
)

// CollisionPolicy decides what happens when two descriptors share a qualified type
type CollisionPolicy string

const (
	// CollisionKeepLast replaces the earlier descriptor with the later one
	CollisionKeepLast CollisionPolicy = "keep-last"
	// CollisionKeepFirst ignores later descriptors
	CollisionKeepFirst CollisionPolicy = "keep-first"
	// CollisionError fails discovery
	CollisionError CollisionPolicy = "error"
)

// ParseCollisionPolicy parses a policy name; "" yields CollisionKeepLast
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch CollisionPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", CollisionKeepLast:
		return CollisionKeepLast, nil
	case CollisionKeepFirst:
		return CollisionKeepFirst, nil
	case CollisionError:
		return CollisionError, nil
	default:
		return "", fmt.Errorf("invalid collision policy %q (want keep-last, keep-first or error)", s)
	}
}
