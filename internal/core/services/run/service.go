package run

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/prompteval-2025.net/internal/domain"
)

// IRunService defines the interface for executing test cases against models
type IRunService interface {
	// RunTestCase executes the given model ids strictly in order, one at a
	// time, persisting and publishing each model's result before the next
	// model begins. One model's failure never aborts the remaining models.
	RunTestCase(ctx context.Context, tc *domain.TestCase, modelIDs []string, enableRoundTrip bool, translationModelID string) error

	// StateFor reports the execution lifecycle of one (testCase, model)
	// pair: completed when a result exists, otherwise the tracker value,
	// otherwise pending
	StateFor(ctx context.Context, testCaseID uuid.UUID, modelID string) (domain.ExecutionState, error)

	// DeleteResult removes the stored result and grade for one pair
	DeleteResult(ctx context.Context, testCaseID uuid.UUID, modelID string) error

	// DeleteAllForModel removes every stored result and grade for one model
	DeleteAllForModel(ctx context.Context, modelID string) error

	// ClearTestCaseState forgets the tracked lifecycle of every pair for
	// one test case
	ClearTestCaseState(testCaseID uuid.UUID)

	// ClearAllState forgets every tracked pair
	ClearAllState()
}
