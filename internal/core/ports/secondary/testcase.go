package secondary

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/prompteval-2025.net/internal/domain"
)

// TestCaseRepository is the durable store for test cases. It also owns the
// cross-table operations rooted at the test case aggregate: cascading
// deletes, full truncation and bulk import, each as one atomic unit.
type TestCaseRepository interface {
	// SaveTestCase inserts or overwrites a test case by id
	SaveTestCase(ctx context.Context, tc *domain.TestCase) error

	// GetTestCase retrieves a test case by id, (nil, nil) when absent
	GetTestCase(ctx context.Context, id uuid.UUID) (*domain.TestCase, error)

	// GetAllTestCases retrieves every stored test case
	GetAllTestCases(ctx context.Context) ([]*domain.TestCase, error)

	// DeleteTestCase removes the test case row and every result and grade
	// row whose testCaseId matches, transactionally
	DeleteTestCase(ctx context.Context, id uuid.UUID) error

	// ClearAllData removes all test cases, results and grades in one
	// transaction. Settings are retained.
	ClearAllData(ctx context.Context) error

	// ImportSnapshot bulk-upserts a previously exported snapshot in one
	// transaction
	ImportSnapshot(ctx context.Context, snapshot *domain.Snapshot) error
}
