package run

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gitlab.com/prompteval-2025.net/internal/core/ports/primary"
	"gitlab.com/prompteval-2025.net/internal/core/ports/secondary"
	"gitlab.com/prompteval-2025.net/internal/core/services/roundtrip"
	"gitlab.com/prompteval-2025.net/internal/diff"
	"gitlab.com/prompteval-2025.net/internal/domain"
)

var _ IRunService = (*RunService)(nil)

// RunService implements the IRunService interface
type RunService struct {
	client     secondary.InvocationClient
	roundTrip  roundtrip.IRoundTripService
	resultRepo secondary.ResultRepository
	publisher  secondary.ExecutionEventPublisher
	tracker    *StatusTracker
	logger     primary.Logger
}

// NewRunService creates a new run service
func NewRunService(
	client secondary.InvocationClient,
	roundTrip roundtrip.IRoundTripService,
	resultRepo secondary.ResultRepository,
	publisher secondary.ExecutionEventPublisher,
	logger primary.Logger,
) *RunService {
	return &RunService{
		client:     client,
		roundTrip:  roundTrip,
		resultRepo: resultRepo,
		publisher:  publisher,
		tracker:    NewStatusTracker(),
		logger:     logger,
	}
}

// RunTestCase executes the given model ids strictly in order, one at a time.
// Each model's result is persisted and published before the next model
// begins, so a crash mid-run loses at most the in-flight model.
func (s *RunService) RunTestCase(ctx context.Context, tc *domain.TestCase, modelIDs []string, enableRoundTrip bool, translationModelID string) error {
	if tc == nil {
		return fmt.Errorf("test case is required")
	}
	if len(modelIDs) == 0 {
		return fmt.Errorf("at least one model id is required")
	}

	s.logger.Info("Running test case",
		"testCaseId", tc.ID,
		"models", len(modelIDs),
		"roundTrip", enableRoundTrip)

	for _, modelID := range modelIDs {
		s.runModel(ctx, tc, modelID, enableRoundTrip, translationModelID)
	}

	return nil
}

// runModel drives one model through its full lifecycle. Invocation failures
// are converted to a failed result, never returned, so sibling models in the
// batch are unaffected.
func (s *RunService) runModel(ctx context.Context, tc *domain.TestCase, modelID string, enableRoundTrip bool, translationModelID string) {
	if err := s.tracker.MarkRunning(tc.ID, modelID); err != nil {
		s.logger.Warn("Skipping model already running", "testCaseId", tc.ID, "modelId", modelID)
		return
	}
	s.publishStatus(ctx, tc.ID, modelID, domain.ExecutionStateRunning)

	result := s.invoke(ctx, tc, modelID, enableRoundTrip, translationModelID)

	// A failed durable write is a warning, not a failure of the run: the
	// result is still published so observers see it.
	if err := s.resultRepo.SaveResult(ctx, result); err != nil {
		s.logger.Warn("Failed to persist result",
			"testCaseId", tc.ID,
			"modelId", modelID,
			"error", err)
	}

	if err := s.publisher.PublishResult(ctx, result); err != nil {
		s.logger.Warn("Failed to publish result", "testCaseId", tc.ID, "modelId", modelID, "error", err)
	}

	s.tracker.MarkCompleted(tc.ID, modelID)
	s.publishStatus(ctx, tc.ID, modelID, domain.ExecutionStateCompleted)
}

func (s *RunService) invoke(ctx context.Context, tc *domain.TestCase, modelID string, enableRoundTrip bool, translationModelID string) *domain.ExecutionResult {
	result := &domain.ExecutionResult{
		TestCaseID: tc.ID,
		ModelID:    modelID,
		Timestamp:  time.Now(),
	}

	if enableRoundTrip {
		out, err := s.roundTrip.Run(ctx, tc, modelID, translationModelID)
		if err != nil {
			s.logger.Error("Round-trip run failed", "testCaseId", tc.ID, "modelId", modelID, "error", err)
			result.Status = domain.ResultStatusFailed
			result.Error = err.Error()
			return result
		}
		result.Output = out.Output
		result.RoundTripOutput = out.RoundTripOutput
		result.TranslatedPrompt = out.TranslatedPrompt
		result.TokensUsed = out.TokensUsed
		result.LatencyMs = out.LatencyMs
	} else {
		out, err := s.client.Complete(ctx, tc, modelID)
		if err != nil {
			s.logger.Error("Completion failed", "testCaseId", tc.ID, "modelId", modelID, "error", err)
			result.Status = domain.ResultStatusFailed
			result.Error = err.Error()
			return result
		}
		result.Output = out.Output
		result.TokensUsed = out.TokensUsed
		result.LatencyMs = out.LatencyMs
	}

	result.Status = domain.ResultStatusCompleted
	if tc.ExpectedResult != "" {
		result.Diff = diff.Compute(tc.ExpectedResult, result.Output)
	}
	result.Timestamp = time.Now()
	return result
}

func (s *RunService) publishStatus(ctx context.Context, testCaseID uuid.UUID, modelID string, state domain.ExecutionState) {
	if err := s.publisher.PublishStatus(ctx, testCaseID, modelID, state); err != nil {
		s.logger.Warn("Failed to publish status event",
			"testCaseId", testCaseID,
			"modelId", modelID,
			"status", state,
			"error", err)
	}
}

// StateFor reports the execution lifecycle of one (testCase, model) pair.
// A pair with a stored result is completed even across restarts.
func (s *RunService) StateFor(ctx context.Context, testCaseID uuid.UUID, modelID string) (domain.ExecutionState, error) {
	if state := s.tracker.State(testCaseID, modelID); state != domain.ExecutionStatePending {
		return state, nil
	}

	result, err := s.resultRepo.GetResult(ctx, testCaseID, modelID)
	if err != nil {
		return "", fmt.Errorf("failed to get result: %w", err)
	}
	if result != nil {
		return domain.ExecutionStateCompleted, nil
	}

	return domain.ExecutionStatePending, nil
}

// DeleteResult removes the stored result and grade for one pair
func (s *RunService) DeleteResult(ctx context.Context, testCaseID uuid.UUID, modelID string) error {
	if err := s.resultRepo.DeleteResult(ctx, testCaseID, modelID); err != nil {
		return err
	}
	s.tracker.Clear(testCaseID, modelID)
	return nil
}

// DeleteAllForModel removes every stored result and grade for one model
func (s *RunService) DeleteAllForModel(ctx context.Context, modelID string) error {
	if err := s.resultRepo.DeleteAllForModel(ctx, modelID); err != nil {
		return err
	}
	s.tracker.ClearModel(modelID)
	return nil
}

// ClearTestCaseState forgets the tracked lifecycle of every pair for one
// test case. Called when a test case delete cascades its stored results, so
// StateFor cannot keep reporting completed for results that no longer exist.
func (s *RunService) ClearTestCaseState(testCaseID uuid.UUID) {
	s.tracker.ClearTestCase(testCaseID)
}

// ClearAllState forgets every tracked pair. Called when all stored data is
// truncated.
func (s *RunService) ClearAllState() {
	s.tracker.ClearAll()
}
