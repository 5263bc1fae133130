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
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/imamangupta/moa-mockup/modules/base"
	"github.com/imamangupta/moa-mockup/modules/execution"
	"github.com/imamangupta/moa-mockup/modules/loader"
	"github.com/imamangupta/moa-mockup/modules/registry"
	"github.com/imamangupta/moa-mockup/shared/logger"
)

// ModuleInfo describes one loaded module
type ModuleInfo struct {
	Type        string           `json:"type"`
	Namespace   string           `json:"namespace"`
	Description base.Description `json:"description"`
	Executable  bool             `json:"executable"`
}

// NamespaceInfo summarizes one registered backend
type NamespaceInfo struct {
	Namespace string `json:"namespace"`
	Known     int    `json:"known"`
	Loaded    int    `json:"loaded"`
	Cached    bool   `json:"cached"`
}

// ExecuteRequest is the body of POST /api/modules/{type}/execute/{function}
type ExecuteRequest struct {
	NodeID     string                 `json:"node_id"`
	Parameters map[string]interface{} `json:"parameters"`
}

// ExecuteResponse carries the output of one module function
type ExecuteResponse struct {
	NodeID   string                 `json:"node_id"`
	Type     string                 `json:"type"`
	Function string                 `json:"function"`
	Output   map[string]interface{} `json:"output"`
}

// Handler serves the module registry API
type Handler struct {
	registry *registry.Registry
	logger   *logger.Logger
	auth     *Authenticator
}

// NewHandler creates a handler over reg. A nil auth leaves every route open.
func NewHandler(reg *registry.Registry, log *logger.Logger, auth *Authenticator) *Handler {
	return &Handler{registry: reg, logger: log, auth: auth}
}

// RegisterRoutes adds the module registry routes to router
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HandleHealth).Methods("GET")

	router.HandleFunc("/api/modules", h.HandleListModules).Methods("GET")
	router.HandleFunc("/api/modules/{type}", h.HandleGetModule).Methods("GET")
	router.HandleFunc("/api/modules/{type}/execute/{function}", h.auth.Require(PermissionExecute, h.HandleExecute)).Methods("POST")

	router.HandleFunc("/api/namespaces", h.HandleListNamespaces).Methods("GET")
	router.HandleFunc("/api/namespaces/{namespace}/flush", h.auth.Require(PermissionAdmin, h.HandleFlush)).Methods("POST")
}

// HandleHealth handles GET /health
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, map[string]interface{}{
		"status":     "healthy",
		"namespaces": len(h.registry.Namespaces()),
		"modules":    h.registry.Count(),
	}, http.StatusOK)
}

// HandleListModules handles GET /api/modules
func (h *Handler) HandleListModules(w http.ResponseWriter, r *http.Request) {
	all := h.registry.GetAllModules()

	modules := make(map[string]ModuleInfo, len(all))
	for qualifiedType, mod := range all {
		modules[qualifiedType] = moduleInfo(qualifiedType, mod)
	}

	writeJSONResponse(w, map[string]interface{}{
		"modules": modules,
		"count":   len(modules),
	}, http.StatusOK)
}

// HandleGetModule handles GET /api/modules/{type}
func (h *Handler) HandleGetModule(w http.ResponseWriter, r *http.Request) {
	qualifiedType := mux.Vars(r)["type"]

	mod, err := h.registry.GetModuleByType(qualifiedType)
	if err != nil {
		h.writeLookupError(w, r, qualifiedType, err)
		return
	}

	writeJSONResponse(w, moduleInfo(qualifiedType, mod), http.StatusOK)
}

// HandleExecute handles POST /api/modules/{type}/execute/{function}.
// Parameters may reference earlier outputs only within the same request,
// so a standalone call resolves literal values.
func (h *Handler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	qualifiedType := vars["type"]
	requestID := RequestIDFromContext(r.Context())

	mod, err := h.registry.GetModuleByType(qualifiedType)
	if err != nil {
		h.writeLookupError(w, r, qualifiedType, err)
		return
	}

	var req ExecuteRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	if req.NodeID == "" {
		req.NodeID = requestID
	}
	if req.Parameters == nil {
		req.Parameters = make(map[string]interface{})
	}

	executor := &execution.NodeExecutor{
		NodeID:     req.NodeID,
		NodeType:   qualifiedType,
		Function:   vars["function"],
		Module:     mod,
		Parameters: req.Parameters,
		Outputs:    execution.NewOutputs(),
		Logger:     h.logger,
	}

	output, err := executor.Run(r.Context())
	if err != nil {
		status := executionStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.ErrorWithCause("", requestID, "Module execution failed", err, map[string]interface{}{
				"type":     qualifiedType,
				"function": vars["function"],
			})
			writeJSONError(w, "Module execution failed", status)
			return
		}
		writeJSONError(w, err.Error(), status)
		return
	}

	writeJSONResponse(w, ExecuteResponse{
		NodeID:   req.NodeID,
		Type:     qualifiedType,
		Function: vars["function"],
		Output:   output,
	}, http.StatusOK)
}

// HandleListNamespaces handles GET /api/namespaces
func (h *Handler) HandleListNamespaces(w http.ResponseWriter, r *http.Request) {
	namespaces := make([]NamespaceInfo, 0)
	for _, ns := range h.registry.Namespaces() {
		backend, ok := h.registry.Backend(ns)
		if !ok {
			continue
		}
		_, cached := backend.(loader.Disconnector)
		namespaces = append(namespaces, NamespaceInfo{
			Namespace: ns,
			Known:     len(backend.Known()),
			Loaded:    len(backend.Modules()),
			Cached:    cached,
		})
	}

	writeJSONResponse(w, map[string]interface{}{
		"namespaces": namespaces,
		"count":      len(namespaces),
	}, http.StatusOK)
}

// HandleFlush handles POST /api/namespaces/{namespace}/flush
func (h *Handler) HandleFlush(w http.ResponseWriter, r *http.Request) {
	ns := mux.Vars(r)["namespace"]

	if err := h.registry.Flush(r.Context(), ns); err != nil {
		if errors.Is(err, base.ErrNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.ErrorWithCause(ns, RequestIDFromContext(r.Context()), "Flush failed", err, nil)
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSONResponse(w, map[string]interface{}{
		"namespace": ns,
		"flushed":   true,
	}, http.StatusOK)
}

func (h *Handler) writeLookupError(w http.ResponseWriter, r *http.Request, qualifiedType string, err error) {
	if errors.Is(err, base.ErrNotFound) {
		writeJSONError(w, err.Error(), http.StatusNotFound)
		return
	}
	h.logger.ErrorWithCause("", RequestIDFromContext(r.Context()), "Module lookup failed", err, map[string]interface{}{
		"type": qualifiedType,
	})
	writeJSONError(w, err.Error(), http.StatusInternalServerError)
}

func moduleInfo(qualifiedType string, mod base.Module) ModuleInfo {
	ns, _, _ := loader.SplitQualifiedType(qualifiedType)
	_, executable := mod.(base.Executable)
	return ModuleInfo{
		Type:        qualifiedType,
		Namespace:   ns,
		Description: mod.Description(),
		Executable:  executable,
	}
}

func executionStatus(err error) int {
	switch {
	case errors.Is(err, execution.ErrNotExecutable),
		errors.Is(err, execution.ErrUnsupportedFunction),
		errors.Is(err, execution.ErrInvalidParameters),
		errors.Is(err, execution.ErrReferenceNotFound):
		return http.StatusBadRequest
	case errors.Is(err, base.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, base.ErrRejected):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeJSONResponse writes a JSON response with the given status code
func writeJSONResponse(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeJSONError writes a JSON error response
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSONResponse(w, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    statusCode,
			"message": message,
		},
	}, statusCode)
}
