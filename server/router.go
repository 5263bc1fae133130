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
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/imamangupta/moa-mockup/modules/registry"
	"github.com/imamangupta/moa-mockup/shared/logger"
)

// RequestIDHeader carries the per-request identifier
const RequestIDHeader = "X-Request-ID"

type contextKey string

const requestIDKey contextKey = "request_id"

// NewRouter builds the HTTP handler serving reg, wrapped in CORS and request ID
// middleware. When auth is non-nil the execute and flush routes require a bearer token.
func NewRouter(reg *registry.Registry, log *logger.Logger, auth *Authenticator) http.Handler {
	r := mux.NewRouter()

	NewHandler(reg, log, auth).RegisterRoutes(r)
	r.Handle("/prometheus", promhttp.Handler()).Methods("GET")

	r.Use(requestIDMiddleware(log))

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

// RequestIDFromContext returns the request ID attached by the router, or ""
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func requestIDMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDKey, requestID)))

			log.InfoWithDuration("", requestID, "Handled request",
				float64(time.Since(start).Microseconds())/1000, map[string]interface{}{
					"method": r.Method,
					"path":   r.URL.Path,
					"status": rec.status,
				})
		})
	}
}
