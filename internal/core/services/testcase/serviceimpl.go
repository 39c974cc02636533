package testcase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gitlab.com/prompteval-2025.net/internal/core/ports/primary"
	"gitlab.com/prompteval-2025.net/internal/core/ports/secondary"
	"gitlab.com/prompteval-2025.net/internal/domain"
)

var _ ITestCaseService = (*TestCaseService)(nil)

// TestCaseService implements the ITestCaseService interface
type TestCaseService struct {
	testCaseRepo secondary.TestCaseRepository
	resultRepo   secondary.ResultRepository
	states       ExecutionStateStore
	logger       primary.Logger
}

// NewTestCaseService creates a new test case service
func NewTestCaseService(
	testCaseRepo secondary.TestCaseRepository,
	resultRepo secondary.ResultRepository,
	states ExecutionStateStore,
	logger primary.Logger,
) *TestCaseService {
	return &TestCaseService{
		testCaseRepo: testCaseRepo,
		resultRepo:   resultRepo,
		states:       states,
		logger:       logger,
	}
}

// CreateTestCase creates and persists a new test case
func (s *TestCaseService) CreateTestCase(ctx context.Context, input CreateTestCaseInput) (*domain.TestCase, error) {
	if input.UserPrompt == "" {
		return nil, fmt.Errorf("user prompt is required")
	}

	tc := domain.NewTestCase(input.Name, input.SystemPrompt, input.UserPrompt, input.SourceText, input.ExpectedResult)

	if err := s.testCaseRepo.SaveTestCase(ctx, tc); err != nil {
		s.logger.Error("Failed to save test case", "testCaseId", tc.ID, "error", err)
		return nil, fmt.Errorf("failed to save test case: %w", err)
	}

	s.logger.Info("Test case created", "testCaseId", tc.ID, "name", tc.Name)
	return tc, nil
}

// UpdateTestCase applies edits to an existing test case and persists it
func (s *TestCaseService) UpdateTestCase(ctx context.Context, id uuid.UUID, input CreateTestCaseInput) (*domain.TestCase, error) {
	tc, err := s.testCaseRepo.GetTestCase(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get test case: %w", err)
	}
	if tc == nil {
		return nil, fmt.Errorf("test case not found: %s", id)
	}
	if input.UserPrompt == "" {
		return nil, fmt.Errorf("user prompt is required")
	}

	tc.Name = input.Name
	tc.SystemPrompt = input.SystemPrompt
	tc.UserPrompt = input.UserPrompt
	tc.SourceText = input.SourceText
	tc.ExpectedResult = input.ExpectedResult
	tc.UpdatedAt = time.Now()

	if err := s.testCaseRepo.SaveTestCase(ctx, tc); err != nil {
		s.logger.Error("Failed to update test case", "testCaseId", id, "error", err)
		return nil, fmt.Errorf("failed to update test case: %w", err)
	}

	return tc, nil
}

// GetTestCase retrieves one test case
func (s *TestCaseService) GetTestCase(ctx context.Context, id uuid.UUID) (*domain.TestCase, error) {
	return s.testCaseRepo.GetTestCase(ctx, id)
}

// ListTestCases retrieves every stored test case
func (s *TestCaseService) ListTestCases(ctx context.Context) ([]*domain.TestCase, error) {
	return s.testCaseRepo.GetAllTestCases(ctx)
}

// DeleteTestCase removes a test case and cascades to its results and grades.
// The tracked execution state for its pairs goes with them, so a later
// status query falls back to pending rather than a completed state whose
// result rows are gone.
func (s *TestCaseService) DeleteTestCase(ctx context.Context, id uuid.UUID) error {
	if err := s.testCaseRepo.DeleteTestCase(ctx, id); err != nil {
		s.logger.Error("Failed to delete test case", "testCaseId", id, "error", err)
		return err
	}
	s.states.ClearTestCaseState(id)
	return nil
}

// Snapshot projects all stored test cases, results and grades into one
// read-only export structure
func (s *TestCaseService) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	testCases, err := s.testCaseRepo.GetAllTestCases(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get test cases: %w", err)
	}
	results, err := s.resultRepo.GetAllResults(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get results: %w", err)
	}
	grades, err := s.resultRepo.GetAllGrades(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get grades: %w", err)
	}

	return &domain.Snapshot{
		TestCases:  testCases,
		Results:    results,
		Grades:     grades,
		ExportDate: time.Now(),
	}, nil
}

// ImportSnapshot bulk-upserts a previously exported snapshot
func (s *TestCaseService) ImportSnapshot(ctx context.Context, snapshot *domain.Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot is required")
	}
	return s.testCaseRepo.ImportSnapshot(ctx, snapshot)
}

// ClearAllData removes all test cases, results and grades, and forgets all
// tracked execution state
func (s *TestCaseService) ClearAllData(ctx context.Context) error {
	if err := s.testCaseRepo.ClearAllData(ctx); err != nil {
		return err
	}
	s.states.ClearAllState()
	return nil
}
