package results

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gitlab.com/prompteval-2025.net/internal/config"
	"gitlab.com/prompteval-2025.net/internal/core/ports/primary"
	"gitlab.com/prompteval-2025.net/internal/core/ports/secondary"
	"gitlab.com/prompteval-2025.net/internal/core/services/grading"
	"gitlab.com/prompteval-2025.net/internal/core/services/run"
	"gitlab.com/prompteval-2025.net/internal/core/services/testcase"
	"gitlab.com/prompteval-2025.net/internal/domain"
	"gitlab.com/prompteval-2025.net/internal/handlers/response"
)

// GradeRequest is the payload for grading one execution result. Model ids
// contain slashes, so they travel in the body or query string, never in the
// path.
type GradeRequest struct {
	ModelID      string `json:"modelId"`
	Method       string `json:"method"`
	Score        int    `json:"score"`
	Comments     string `json:"comments"`
	JudgeModelID string `json:"judgeModelId"`
}

// ResultHandler handles result, status and grade API requests
type ResultHandler struct {
	testCaseService testcase.ITestCaseService
	runService      run.IRunService
	gradingService  grading.IGradingService
	resultRepo      secondary.ResultRepository
	llmCfg          *config.LLMConfig
	logger          primary.Logger
}

// NewResultHandler creates a new result handler
func NewResultHandler(
	testCaseService testcase.ITestCaseService,
	runService run.IRunService,
	gradingService grading.IGradingService,
	resultRepo secondary.ResultRepository,
	llmCfg *config.LLMConfig,
	logger primary.Logger,
) *ResultHandler {
	return &ResultHandler{
		testCaseService: testCaseService,
		runService:      runService,
		gradingService:  gradingService,
		resultRepo:      resultRepo,
		llmCfg:          llmCfg,
		logger:          logger,
	}
}

// RegisterRoutes registers the API routes for ResultHandler
func (h *ResultHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/results", h.GetResults).Methods("GET")
	router.HandleFunc("/api/results/{testCaseId}", h.DeleteResult).Methods("DELETE")
	router.HandleFunc("/api/status/{testCaseId}", h.GetStatus).Methods("GET")
	router.HandleFunc("/api/grades", h.GetGrades).Methods("GET")
	router.HandleFunc("/api/testcases/{testCaseId}/grade", h.GradeResult).Methods("POST")
}

// GetResults handles result retrieval, optionally filtered by test case
func (h *ResultHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	var results []*domain.ExecutionResult
	var err error

	if testCaseID := r.URL.Query().Get("testCaseId"); testCaseID != "" {
		id, parseErr := uuid.Parse(testCaseID)
		if parseErr != nil {
			response.WriteError(w, response.ErrorMessage{Message: "Invalid test case id", StatusCode: http.StatusBadRequest})
			return
		}
		results, err = h.resultRepo.GetResultsForTestCase(r.Context(), id)
	} else {
		results, err = h.resultRepo.GetAllResults(r.Context())
	}

	if err != nil {
		h.logger.Error("Failed to get results", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to get results", StatusCode: http.StatusInternalServerError})
		return
	}

	response.WriteSuccess(w, results)
}

// GetGrades handles grade retrieval, optionally filtered by test case
func (h *ResultHandler) GetGrades(w http.ResponseWriter, r *http.Request) {
	var grades []*domain.Grade
	var err error

	if testCaseID := r.URL.Query().Get("testCaseId"); testCaseID != "" {
		id, parseErr := uuid.Parse(testCaseID)
		if parseErr != nil {
			response.WriteError(w, response.ErrorMessage{Message: "Invalid test case id", StatusCode: http.StatusBadRequest})
			return
		}
		grades, err = h.resultRepo.GetGradesForTestCase(r.Context(), id)
	} else {
		grades, err = h.resultRepo.GetAllGrades(r.Context())
	}

	if err != nil {
		h.logger.Error("Failed to get grades", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to get grades", StatusCode: http.StatusInternalServerError})
		return
	}

	response.WriteSuccess(w, grades)
}

// GetStatus handles execution lifecycle queries for one (testCase, model) pair
func (h *ResultHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	testCaseID, modelID, ok := h.pairKey(w, r)
	if !ok {
		return
	}

	state, err := h.runService.StateFor(r.Context(), testCaseID, modelID)
	if err != nil {
		h.logger.Error("Failed to get execution status", "testCaseId", testCaseID, "modelId", modelID, "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to get execution status", StatusCode: http.StatusInternalServerError})
		return
	}

	response.WriteSuccess(w, map[string]interface{}{
		"testCaseId": testCaseID,
		"modelId":    modelID,
		"status":     state,
	})
}

// DeleteResult handles removal of one (testCase, model) result and its grade
func (h *ResultHandler) DeleteResult(w http.ResponseWriter, r *http.Request) {
	testCaseID, modelID, ok := h.pairKey(w, r)
	if !ok {
		return
	}

	if err := h.runService.DeleteResult(r.Context(), testCaseID, modelID); err != nil {
		h.logger.Error("Failed to delete result", "testCaseId", testCaseID, "modelId", modelID, "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to delete result", StatusCode: http.StatusInternalServerError})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GradeResult handles manual and automatic grading of one execution result
func (h *ResultHandler) GradeResult(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	testCaseID, err := uuid.Parse(vars["testCaseId"])
	if err != nil {
		response.WriteError(w, response.ErrorMessage{Message: "Invalid test case id", StatusCode: http.StatusBadRequest})
		return
	}

	var req GradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Invalid request", StatusCode: http.StatusBadRequest})
		return
	}
	if req.ModelID == "" {
		response.WriteError(w, response.ErrorMessage{Message: "modelId is required", StatusCode: http.StatusBadRequest})
		return
	}

	tc, err := h.testCaseService.GetTestCase(r.Context(), testCaseID)
	if err != nil {
		h.logger.Error("Failed to get test case", "testCaseId", testCaseID, "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to get test case", StatusCode: http.StatusInternalServerError})
		return
	}
	if tc == nil {
		response.WriteError(w, response.ErrorMessage{Message: "Test case not found", StatusCode: http.StatusNotFound})
		return
	}

	result, err := h.resultRepo.GetResult(r.Context(), testCaseID, req.ModelID)
	if err != nil {
		h.logger.Error("Failed to get result", "testCaseId", testCaseID, "modelId", req.ModelID, "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to get result", StatusCode: http.StatusInternalServerError})
		return
	}
	if result == nil {
		response.WriteError(w, response.ErrorMessage{Message: "Result not found", StatusCode: http.StatusNotFound})
		return
	}

	judgeModelID := req.JudgeModelID
	if judgeModelID == "" {
		judgeModelID = h.llmCfg.JudgeModel
	}

	grade, err := h.gradingService.Grade(r.Context(), grading.GradeRequest{
		TestCase:     tc,
		Result:       result,
		Method:       domain.GradeMethod(req.Method),
		ManualScore:  req.Score,
		Comments:     req.Comments,
		JudgeModelID: judgeModelID,
	})
	if err != nil {
		h.logger.Error("Failed to grade result", "testCaseId", testCaseID, "modelId", req.ModelID, "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to grade result", StatusCode: http.StatusInternalServerError})
		return
	}

	response.WriteSuccess(w, grade)
}

func (h *ResultHandler) pairKey(w http.ResponseWriter, r *http.Request) (uuid.UUID, string, bool) {
	vars := mux.Vars(r)
	testCaseID, err := uuid.Parse(vars["testCaseId"])
	if err != nil {
		response.WriteError(w, response.ErrorMessage{Message: "Invalid test case id", StatusCode: http.StatusBadRequest})
		return uuid.Nil, "", false
	}
	modelID := r.URL.Query().Get("modelId")
	if modelID == "" {
		response.WriteError(w, response.ErrorMessage{Message: "modelId is required", StatusCode: http.StatusBadRequest})
		return uuid.Nil, "", false
	}
	return testCaseID, modelID, true
}
