package testcase

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/prompteval-2025.net/internal/domain"
)

// ExecutionStateStore is the in-memory execution lifecycle owned by the run
// layer. Deletes here must purge it, so a stale completed state cannot
// outlive the stored result it was derived from.
type ExecutionStateStore interface {
	ClearTestCaseState(testCaseID uuid.UUID)
	ClearAllState()
}

// CreateTestCaseInput carries the user-editable fields of a test case
type CreateTestCaseInput struct {
	Name           string
	SystemPrompt   string
	UserPrompt     string
	SourceText     string
	ExpectedResult string
}

// ITestCaseService defines the interface for managing test cases and the
// stored evaluation data rooted at them
type ITestCaseService interface {
	// CreateTestCase creates and persists a new test case
	CreateTestCase(ctx context.Context, input CreateTestCaseInput) (*domain.TestCase, error)

	// UpdateTestCase applies edits to an existing test case and persists it
	UpdateTestCase(ctx context.Context, id uuid.UUID, input CreateTestCaseInput) (*domain.TestCase, error)

	// GetTestCase retrieves one test case, (nil, nil) when absent
	GetTestCase(ctx context.Context, id uuid.UUID) (*domain.TestCase, error)

	// ListTestCases retrieves every stored test case
	ListTestCases(ctx context.Context) ([]*domain.TestCase, error)

	// DeleteTestCase removes a test case and cascades to its results and
	// grades
	DeleteTestCase(ctx context.Context, id uuid.UUID) error

	// Snapshot projects all stored test cases, results and grades into one
	// read-only export structure
	Snapshot(ctx context.Context) (*domain.Snapshot, error)

	// ImportSnapshot bulk-upserts a previously exported snapshot
	ImportSnapshot(ctx context.Context, snapshot *domain.Snapshot) error

	// ClearAllData removes all test cases, results and grades; settings are
	// retained
	ClearAllData(ctx context.Context) error
}
