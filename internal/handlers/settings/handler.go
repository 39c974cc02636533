package settings

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/prompteval-2025.net/internal/core/ports/primary"
	"gitlab.com/prompteval-2025.net/internal/core/ports/secondary"
	"gitlab.com/prompteval-2025.net/internal/handlers/response"
)

// SettingRequest is the payload for updating a setting value
type SettingRequest struct {
	Value string `json:"value"`
}

// SettingHandler handles settings API requests
type SettingHandler struct {
	settingsRepo secondary.SettingsRepository
	logger       primary.Logger
}

// NewSettingHandler creates a new settings handler
func NewSettingHandler(settingsRepo secondary.SettingsRepository, logger primary.Logger) *SettingHandler {
	return &SettingHandler{
		settingsRepo: settingsRepo,
		logger:       logger,
	}
}

// RegisterRoutes registers the API routes for SettingHandler
func (h *SettingHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/settings/{key}", h.GetSetting).Methods("GET")
	router.HandleFunc("/api/settings/{key}", h.SaveSetting).Methods("PUT")
}

// GetSetting handles retrieval of a single setting. Absent keys read as an
// empty value rather than a 404.
func (h *SettingHandler) GetSetting(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	value, err := h.settingsRepo.GetSetting(r.Context(), key)
	if err != nil {
		h.logger.Error("Failed to get setting", "key", key, "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to get setting", StatusCode: http.StatusInternalServerError})
		return
	}

	response.WriteSuccess(w, map[string]string{
		"key":   key,
		"value": value,
	})
}

// SaveSetting handles creation or update of a single setting
func (h *SettingHandler) SaveSetting(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	var req SettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Invalid request", StatusCode: http.StatusBadRequest})
		return
	}

	if err := h.settingsRepo.SaveSetting(r.Context(), key, req.Value); err != nil {
		h.logger.Error("Failed to save setting", "key", key, "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to save setting", StatusCode: http.StatusInternalServerError})
		return
	}

	response.WriteSuccess(w, map[string]string{
		"key":   key,
		"value": req.Value,
	})
}
