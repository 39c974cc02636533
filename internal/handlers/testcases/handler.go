package testcases

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gitlab.com/prompteval-2025.net/internal/config"
	"gitlab.com/prompteval-2025.net/internal/core/ports/primary"
	"gitlab.com/prompteval-2025.net/internal/core/services/run"
	"gitlab.com/prompteval-2025.net/internal/core/services/testcase"
	"gitlab.com/prompteval-2025.net/internal/domain"
	"gitlab.com/prompteval-2025.net/internal/handlers/response"
)

// TestCaseHandler handles test case API requests
type TestCaseHandler struct {
	testCaseService testcase.ITestCaseService
	runService      run.IRunService
	llmCfg          *config.LLMConfig
	logger          primary.Logger
}

// NewTestCaseHandler creates a new test case handler
func NewTestCaseHandler(
	testCaseService testcase.ITestCaseService,
	runService run.IRunService,
	llmCfg *config.LLMConfig,
	logger primary.Logger,
) *TestCaseHandler {
	return &TestCaseHandler{
		testCaseService: testCaseService,
		runService:      runService,
		llmCfg:          llmCfg,
		logger:          logger,
	}
}

// RegisterRoutes registers the API routes for TestCaseHandler
func (h *TestCaseHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/testcases", h.ListTestCases).Methods("GET")
	router.HandleFunc("/api/testcases", h.CreateTestCase).Methods("POST")
	router.HandleFunc("/api/testcases/{testCaseId}", h.UpdateTestCase).Methods("PUT")
	router.HandleFunc("/api/testcases/{testCaseId}", h.DeleteTestCase).Methods("DELETE")
	router.HandleFunc("/api/testcases/{testCaseId}/run", h.RunTestCase).Methods("POST")
	router.HandleFunc("/api/snapshot", h.ExportSnapshot).Methods("GET")
	router.HandleFunc("/api/snapshot", h.ImportSnapshot).Methods("POST")
	router.HandleFunc("/api/data", h.ClearAllData).Methods("DELETE")
}

// ListTestCases handles test case listing requests
func (h *TestCaseHandler) ListTestCases(w http.ResponseWriter, r *http.Request) {
	testCases, err := h.testCaseService.ListTestCases(r.Context())
	if err != nil {
		h.logger.Error("Failed to list test cases", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to list test cases", StatusCode: http.StatusInternalServerError})
		return
	}

	response.WriteSuccess(w, testCases)
}

// CreateTestCase handles test case creation requests
func (h *TestCaseHandler) CreateTestCase(w http.ResponseWriter, r *http.Request) {
	var req TestCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Invalid request", StatusCode: http.StatusBadRequest})
		return
	}

	tc, err := h.testCaseService.CreateTestCase(r.Context(), testcase.CreateTestCaseInput{
		Name:           req.Name,
		SystemPrompt:   req.SystemPrompt,
		UserPrompt:     req.UserPrompt,
		SourceText:     req.SourceText,
		ExpectedResult: req.ExpectedResult,
	})
	if err != nil {
		h.logger.Error("Failed to create test case", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: err.Error(), StatusCode: http.StatusBadRequest})
		return
	}

	response.WriteStatus(w, http.StatusCreated, tc)
}

// UpdateTestCase handles test case edit requests
func (h *TestCaseHandler) UpdateTestCase(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req TestCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Invalid request", StatusCode: http.StatusBadRequest})
		return
	}

	tc, err := h.testCaseService.UpdateTestCase(r.Context(), id, testcase.CreateTestCaseInput{
		Name:           req.Name,
		SystemPrompt:   req.SystemPrompt,
		UserPrompt:     req.UserPrompt,
		SourceText:     req.SourceText,
		ExpectedResult: req.ExpectedResult,
	})
	if err != nil {
		h.logger.Error("Failed to update test case", "testCaseId", id, "error", err)
		response.WriteError(w, response.ErrorMessage{Message: err.Error(), StatusCode: http.StatusBadRequest})
		return
	}

	response.WriteSuccess(w, tc)
}

// DeleteTestCase handles test case deletion, cascading to results and grades
func (h *TestCaseHandler) DeleteTestCase(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.testCaseService.DeleteTestCase(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete test case", "testCaseId", id, "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to delete test case", StatusCode: http.StatusInternalServerError})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RunTestCase starts a run of one test case against the requested models.
// The run executes in the background; progress surfaces as status and result
// events.
func (h *TestCaseHandler) RunTestCase(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Invalid request", StatusCode: http.StatusBadRequest})
		return
	}
	if len(req.ModelIDs) == 0 {
		response.WriteError(w, response.ErrorMessage{Message: "modelIds is required", StatusCode: http.StatusBadRequest})
		return
	}

	tc, err := h.testCaseService.GetTestCase(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get test case", "testCaseId", id, "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to get test case", StatusCode: http.StatusInternalServerError})
		return
	}
	if tc == nil {
		response.WriteError(w, response.ErrorMessage{Message: "Test case not found", StatusCode: http.StatusNotFound})
		return
	}

	translationModelID := req.TranslationModelID
	if translationModelID == "" {
		translationModelID = h.llmCfg.TranslationModel
	}

	// The request context ends with this response; the run outlives it.
	go func() {
		if err := h.runService.RunTestCase(context.Background(), tc, req.ModelIDs, req.EnableRoundTrip, translationModelID); err != nil {
			h.logger.Error("Run failed to start", "testCaseId", tc.ID, "error", err)
		}
	}()

	response.WriteStatus(w, http.StatusAccepted, map[string]interface{}{
		"testCaseId": tc.ID,
		"models":     req.ModelIDs,
	})
}

// ExportSnapshot handles read-only export of all stored evaluation data
func (h *TestCaseHandler) ExportSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.testCaseService.Snapshot(r.Context())
	if err != nil {
		h.logger.Error("Failed to build snapshot", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to build snapshot", StatusCode: http.StatusInternalServerError})
		return
	}

	response.WriteSuccess(w, snapshot)
}

// ImportSnapshot handles bulk import of a previously exported snapshot
func (h *TestCaseHandler) ImportSnapshot(w http.ResponseWriter, r *http.Request) {
	var snapshot domain.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snapshot); err != nil {
		h.logger.Error("Failed to decode snapshot", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Invalid snapshot", StatusCode: http.StatusBadRequest})
		return
	}

	if err := h.testCaseService.ImportSnapshot(r.Context(), &snapshot); err != nil {
		h.logger.Error("Failed to import snapshot", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to import snapshot", StatusCode: http.StatusInternalServerError})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearAllData handles full truncation of test cases, results and grades
func (h *TestCaseHandler) ClearAllData(w http.ResponseWriter, r *http.Request) {
	if err := h.testCaseService.ClearAllData(r.Context()); err != nil {
		h.logger.Error("Failed to clear data", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to clear data", StatusCode: http.StatusInternalServerError})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TestCaseHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["testCaseId"])
	if err != nil {
		response.WriteError(w, response.ErrorMessage{Message: "Invalid test case id", StatusCode: http.StatusBadRequest})
		return uuid.Nil, false
	}
	return id, true
}
