// package testcaserepository contains the PostgreSQL implementation of the
// test case store, including the cross-table operations rooted at the test
// case aggregate.
package testcaserepository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jmoiron/sqlx"

	"gitlab.com/prompteval-2025.net/internal/core/ports/primary"
	"gitlab.com/prompteval-2025.net/internal/core/ports/secondary"
	"gitlab.com/prompteval-2025.net/internal/domain"
)

// TestCaseRepository implements the TestCaseRepository interface with PostgreSQL
type TestCaseRepository struct {
	db     *sqlx.DB
	logger primary.Logger
}

var _ secondary.TestCaseRepository = (*TestCaseRepository)(nil)

// NewTestCaseRepository creates a new PostgreSQL test case repository
func NewTestCaseRepository(db *sqlx.DB, logger primary.Logger) *TestCaseRepository {
	return &TestCaseRepository{
		db:     db,
		logger: logger,
	}
}

// SaveTestCase saves a test case, overwriting by id
func (r *TestCaseRepository) SaveTestCase(ctx context.Context, tc *domain.TestCase) error {
	query := `
		INSERT INTO test_cases (
			id, name, system_prompt, user_prompt, source_text, expected_result,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			system_prompt = EXCLUDED.system_prompt,
			user_prompt = EXCLUDED.user_prompt,
			source_text = EXCLUDED.source_text,
			expected_result = EXCLUDED.expected_result,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		tc.ID,
		tc.Name,
		tc.SystemPrompt,
		tc.UserPrompt,
		tc.SourceText,
		tc.ExpectedResult,
		tc.CreatedAt,
		tc.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to save test case", "testCaseId", tc.ID, "error", err)
		return fmt.Errorf("failed to save test case: %w", err)
	}

	return nil
}

// GetTestCase retrieves a test case by id
func (r *TestCaseRepository) GetTestCase(ctx context.Context, id uuid.UUID) (*domain.TestCase, error) {
	query := `
		SELECT id, name, system_prompt, user_prompt, source_text, expected_result,
			   created_at, updated_at
		FROM test_cases
		WHERE id = $1
	`

	var tc domain.TestCase
	err := r.db.GetContext(ctx, &tc, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get test case", "testCaseId", id, "error", err)
		return nil, fmt.Errorf("failed to get test case: %w", err)
	}

	return &tc, nil
}

// GetAllTestCases retrieves every stored test case
func (r *TestCaseRepository) GetAllTestCases(ctx context.Context) ([]*domain.TestCase, error) {
	query := `
		SELECT id, name, system_prompt, user_prompt, source_text, expected_result,
			   created_at, updated_at
		FROM test_cases
		ORDER BY created_at ASC
	`

	testCases := make([]*domain.TestCase, 0)
	if err := r.db.SelectContext(ctx, &testCases, query); err != nil {
		r.logger.Error("Failed to get test cases", "error", err)
		return nil, fmt.Errorf("failed to get test cases: %w", err)
	}

	return testCases, nil
}

// DeleteTestCase removes the test case row and all result and grade rows
// whose testCaseId matches, as one atomic unit
func (r *TestCaseRepository) DeleteTestCase(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction", "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Will be ignored if the transaction is committed

	if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE test_case_id = $1`, id); err != nil {
		r.logger.Error("Failed to delete results for test case", "testCaseId", id, "error", err)
		return fmt.Errorf("failed to delete results for test case: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM grades WHERE test_case_id = $1`, id); err != nil {
		r.logger.Error("Failed to delete grades for test case", "testCaseId", id, "error", err)
		return fmt.Errorf("failed to delete grades for test case: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM test_cases WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete test case", "testCaseId", id, "error", err)
		return fmt.Errorf("failed to delete test case: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Error checking rows affected", "error", err)
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("test case not found: %s", id)
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit transaction", "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("Test case deleted", "testCaseId", id)
	return nil
}

// ClearAllData removes all test cases, results and grades in one
// transaction. Settings are retained.
func (r *TestCaseRepository) ClearAllData(ctx context.Context) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction", "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"results", "grades", "test_cases"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			r.logger.Error("Failed to clear table", "table", table, "error", err)
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit transaction", "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("All evaluation data cleared")
	return nil
}

// ImportSnapshot bulk-upserts a previously exported snapshot in one
// transaction
func (r *TestCaseRepository) ImportSnapshot(ctx context.Context, snapshot *domain.Snapshot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction", "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, tc := range snapshot.TestCases {
		if err := upsertTestCase(ctx, tx, tc); err != nil {
			r.logger.Error("Failed to import test case", "testCaseId", tc.ID, "error", err)
			return fmt.Errorf("failed to import test case: %w", err)
		}
	}
	for _, result := range snapshot.Results {
		if err := upsertResult(ctx, tx, result); err != nil {
			r.logger.Error("Failed to import result", "testCaseId", result.TestCaseID, "modelId", result.ModelID, "error", err)
			return fmt.Errorf("failed to import result: %w", err)
		}
	}
	for _, grade := range snapshot.Grades {
		if err := upsertGrade(ctx, tx, grade); err != nil {
			r.logger.Error("Failed to import grade", "testCaseId", grade.TestCaseID, "modelId", grade.ModelID, "error", err)
			return fmt.Errorf("failed to import grade: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit transaction", "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("Snapshot imported",
		"testCases", len(snapshot.TestCases),
		"results", len(snapshot.Results),
		"grades", len(snapshot.Grades))
	return nil
}
