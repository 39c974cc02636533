package secondary

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/prompteval-2025.net/internal/domain"
)

// ResultRepository is the durable store for execution results and grades,
// both addressed by the composite (testCaseId, modelId) key with
// overwrite-by-key semantics
type ResultRepository interface {
	// SaveResult inserts or overwrites a result by its composite key
	SaveResult(ctx context.Context, result *domain.ExecutionResult) error

	// GetResult retrieves one result, (nil, nil) when absent
	GetResult(ctx context.Context, testCaseID uuid.UUID, modelID string) (*domain.ExecutionResult, error)

	// GetAllResults retrieves every stored result
	GetAllResults(ctx context.Context) ([]*domain.ExecutionResult, error)

	// GetResultsForTestCase retrieves all results for one test case
	GetResultsForTestCase(ctx context.Context, testCaseID uuid.UUID) ([]*domain.ExecutionResult, error)

	// DeleteResult removes the result and grade rows for one
	// (testCase, model) pair, transactionally
	DeleteResult(ctx context.Context, testCaseID uuid.UUID, modelID string) error

	// DeleteAllForModel removes every result and grade row matching the
	// model id across all test cases, transactionally
	DeleteAllForModel(ctx context.Context, modelID string) error

	// SaveGrade inserts or overwrites a grade by its composite key
	SaveGrade(ctx context.Context, grade *domain.Grade) error

	// GetAllGrades retrieves every stored grade
	GetAllGrades(ctx context.Context) ([]*domain.Grade, error)

	// GetGradesForTestCase retrieves all grades for one test case
	GetGradesForTestCase(ctx context.Context, testCaseID uuid.UUID) ([]*domain.Grade, error)
}
