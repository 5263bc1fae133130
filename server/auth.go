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

package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Permissions carried in the comma separated "permissions" token claim
const (
	PermissionExecute = "modules:execute"
	PermissionAdmin   = "modules:admin"
)

// Authenticator validates HS256 bearer tokens on mutating routes.
// A nil *Authenticator lets every request through.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator returns an Authenticator for secret, or nil when secret is empty
func NewAuthenticator(secret string) *Authenticator {
	if secret == "" {
		return nil
	}
	return &Authenticator{secret: []byte(secret)}
}

// Validate parses tokenString and returns its claims
func (a *Authenticator) Validate(tokenString string) (jwt.MapClaims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token required")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// Require wraps next so it only runs for tokens granting permission
func (a *Authenticator) Require(permission string, next http.HandlerFunc) http.HandlerFunc {
	if a == nil {
		return next
	}

	return func(w http.ResponseWriter, r *http.Request) {
		tokenString, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !found {
			writeJSONError(w, "Bearer token required", http.StatusUnauthorized)
			return
		}

		claims, err := a.Validate(strings.TrimSpace(tokenString))
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusUnauthorized)
			return
		}

		for _, p := range getClaimStringArray(claims, "permissions") {
			if p == permission || p == PermissionAdmin {
				next(w, r)
				return
			}
		}
		writeJSONError(w, fmt.Sprintf("permission '%s' required", permission), http.StatusForbidden)
	}
}

func getClaimStringArray(claims jwt.MapClaims, key string) []string {
	if val, ok := claims[key].(string); ok {
		if val == "" {
			return []string{}
		}
		parts := strings.Split(val, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return []string{}
}
