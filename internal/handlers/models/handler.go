package models

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"gitlab.com/prompteval-2025.net/internal/core/ports/primary"
	"gitlab.com/prompteval-2025.net/internal/core/ports/secondary"
	"gitlab.com/prompteval-2025.net/internal/core/services/run"
	"gitlab.com/prompteval-2025.net/internal/handlers/response"
)

const (
	defaultSearchQuery = "gguf"
	defaultSearchLimit = 100
)

// ModelHandler handles model discovery API requests
type ModelHandler struct {
	client     secondary.InvocationClient
	runService run.IRunService
	logger     primary.Logger
}

// NewModelHandler creates a new model handler
func NewModelHandler(client secondary.InvocationClient, runService run.IRunService, logger primary.Logger) *ModelHandler {
	return &ModelHandler{
		client:     client,
		runService: runService,
		logger:     logger,
	}
}

// RegisterRoutes registers the API routes for ModelHandler
func (h *ModelHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/models", h.ListModels).Methods("GET")
	router.HandleFunc("/api/models/results", h.DeleteModelResults).Methods("DELETE")
}

// ListModels handles model listing against whichever backend is active
func (h *ModelHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		query = defaultSearchQuery
	}
	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.WriteError(w, response.ErrorMessage{Message: "Invalid limit", StatusCode: http.StatusBadRequest})
			return
		}
		limit = parsed
	}

	descriptors, err := h.client.ListModels(r.Context(), query, limit)
	if err != nil {
		h.logger.Error("Failed to list models", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to list models", StatusCode: http.StatusInternalServerError})
		return
	}

	response.WriteSuccess(w, descriptors)
}

// DeleteModelResults handles bulk removal of every result for one model
func (h *ModelHandler) DeleteModelResults(w http.ResponseWriter, r *http.Request) {
	modelID := r.URL.Query().Get("modelId")
	if modelID == "" {
		response.WriteError(w, response.ErrorMessage{Message: "modelId is required", StatusCode: http.StatusBadRequest})
		return
	}

	if err := h.runService.DeleteAllForModel(r.Context(), modelID); err != nil {
		h.logger.Error("Failed to delete model results", "modelId", modelID, "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to delete model results", StatusCode: http.StatusInternalServerError})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
