// package resultrepository contains the PostgreSQL implementation of the
// result and grade store, both keyed by (testCaseId, modelId).
package resultrepository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jmoiron/sqlx"

	"gitlab.com/prompteval-2025.net/internal/core/ports/primary"
	"gitlab.com/prompteval-2025.net/internal/core/ports/secondary"
	"gitlab.com/prompteval-2025.net/internal/domain"
)

// ResultRepository implements the ResultRepository interface with PostgreSQL
type ResultRepository struct {
	db     *sqlx.DB
	logger primary.Logger
}

var _ secondary.ResultRepository = (*ResultRepository)(nil)

// NewResultRepository creates a new PostgreSQL result repository
func NewResultRepository(db *sqlx.DB, logger primary.Logger) *ResultRepository {
	return &ResultRepository{
		db:     db,
		logger: logger,
	}
}

// SaveResult saves an execution result, overwriting by composite key
func (r *ResultRepository) SaveResult(ctx context.Context, result *domain.ExecutionResult) error {
	var diffJSON []byte
	if result.Diff != nil {
		var err error
		diffJSON, err = json.Marshal(result.Diff)
		if err != nil {
			r.logger.Error("Failed to marshal diff", "error", err)
			return fmt.Errorf("failed to marshal diff: %w", err)
		}
	}

	query := `
		INSERT INTO results (
			test_case_id, model_id, output, round_trip_output, translated_prompt,
			tokens_used, latency_ms, timestamp, status, error, diff
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (test_case_id, model_id) DO UPDATE SET
			output = EXCLUDED.output,
			round_trip_output = EXCLUDED.round_trip_output,
			translated_prompt = EXCLUDED.translated_prompt,
			tokens_used = EXCLUDED.tokens_used,
			latency_ms = EXCLUDED.latency_ms,
			timestamp = EXCLUDED.timestamp,
			status = EXCLUDED.status,
			error = EXCLUDED.error,
			diff = EXCLUDED.diff
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		result.TestCaseID,
		result.ModelID,
		result.Output,
		result.RoundTripOutput,
		result.TranslatedPrompt,
		result.TokensUsed,
		result.LatencyMs,
		result.Timestamp,
		result.Status,
		result.Error,
		diffJSON,
	)

	if err != nil {
		r.logger.Error("Failed to save result", "testCaseId", result.TestCaseID, "modelId", result.ModelID, "error", err)
		return fmt.Errorf("failed to save result: %w", err)
	}

	return nil
}

const resultColumns = `
	test_case_id, model_id, output, round_trip_output, translated_prompt,
	tokens_used, latency_ms, timestamp, status, error, diff
`

func scanResult(rows interface {
	Scan(dest ...interface{}) error
}) (*domain.ExecutionResult, error) {
	var result domain.ExecutionResult
	var diffJSON []byte

	err := rows.Scan(
		&result.TestCaseID,
		&result.ModelID,
		&result.Output,
		&result.RoundTripOutput,
		&result.TranslatedPrompt,
		&result.TokensUsed,
		&result.LatencyMs,
		&result.Timestamp,
		&result.Status,
		&result.Error,
		&diffJSON,
	)
	if err != nil {
		return nil, err
	}

	if len(diffJSON) > 0 {
		var d domain.Diff
		if err := json.Unmarshal(diffJSON, &d); err != nil {
			return nil, fmt.Errorf("failed to unmarshal diff: %w", err)
		}
		result.Diff = &d
	}

	return &result, nil
}

// GetResult retrieves one result by composite key
func (r *ResultRepository) GetResult(ctx context.Context, testCaseID uuid.UUID, modelID string) (*domain.ExecutionResult, error) {
	query := `SELECT ` + resultColumns + ` FROM results WHERE test_case_id = $1 AND model_id = $2`

	result, err := scanResult(r.db.QueryRowContext(ctx, query, testCaseID, modelID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get result", "testCaseId", testCaseID, "modelId", modelID, "error", err)
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	return result, nil
}

// GetAllResults retrieves every stored result
func (r *ResultRepository) GetAllResults(ctx context.Context) ([]*domain.ExecutionResult, error) {
	query := `SELECT ` + resultColumns + ` FROM results ORDER BY timestamp ASC`
	return r.queryResults(ctx, query)
}

// GetResultsForTestCase retrieves all results for one test case
func (r *ResultRepository) GetResultsForTestCase(ctx context.Context, testCaseID uuid.UUID) ([]*domain.ExecutionResult, error) {
	query := `SELECT ` + resultColumns + ` FROM results WHERE test_case_id = $1 ORDER BY timestamp ASC`
	return r.queryResults(ctx, query, testCaseID)
}

func (r *ResultRepository) queryResults(ctx context.Context, query string, args ...interface{}) ([]*domain.ExecutionResult, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query results", "error", err)
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	results := make([]*domain.ExecutionResult, 0)
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			r.logger.Error("Failed to scan result row", "error", err)
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating result rows", "error", err)
		return nil, fmt.Errorf("error iterating result rows: %w", err)
	}

	return results, nil
}

// DeleteResult removes the result and grade rows for one (testCase, model)
// pair as one atomic unit
func (r *ResultRepository) DeleteResult(ctx context.Context, testCaseID uuid.UUID, modelID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction", "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Will be ignored if the transaction is committed

	if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE test_case_id = $1 AND model_id = $2`, testCaseID, modelID); err != nil {
		r.logger.Error("Failed to delete result", "testCaseId", testCaseID, "modelId", modelID, "error", err)
		return fmt.Errorf("failed to delete result: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM grades WHERE test_case_id = $1 AND model_id = $2`, testCaseID, modelID); err != nil {
		r.logger.Error("Failed to delete grade", "testCaseId", testCaseID, "modelId", modelID, "error", err)
		return fmt.Errorf("failed to delete grade: %w", err)
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit transaction", "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteAllForModel removes every result and grade row matching the model id
// across all test cases, as one atomic unit
func (r *ResultRepository) DeleteAllForModel(ctx context.Context, modelID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction", "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE model_id = $1`, modelID); err != nil {
		r.logger.Error("Failed to delete results for model", "modelId", modelID, "error", err)
		return fmt.Errorf("failed to delete results for model: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM grades WHERE model_id = $1`, modelID); err != nil {
		r.logger.Error("Failed to delete grades for model", "modelId", modelID, "error", err)
		return fmt.Errorf("failed to delete grades for model: %w", err)
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit transaction", "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("Deleted all results for model", "modelId", modelID)
	return nil
}

// SaveGrade saves a grade, overwriting by composite key
func (r *ResultRepository) SaveGrade(ctx context.Context, grade *domain.Grade) error {
	query := `
		INSERT INTO grades (
			test_case_id, model_id, score, method, comments, feedback, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (test_case_id, model_id) DO UPDATE SET
			score = EXCLUDED.score,
			method = EXCLUDED.method,
			comments = EXCLUDED.comments,
			feedback = EXCLUDED.feedback,
			timestamp = EXCLUDED.timestamp
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		grade.TestCaseID,
		grade.ModelID,
		grade.Score,
		grade.Method,
		grade.Comments,
		grade.Feedback,
		grade.Timestamp,
	)

	if err != nil {
		r.logger.Error("Failed to save grade", "testCaseId", grade.TestCaseID, "modelId", grade.ModelID, "error", err)
		return fmt.Errorf("failed to save grade: %w", err)
	}

	return nil
}

// GetAllGrades retrieves every stored grade
func (r *ResultRepository) GetAllGrades(ctx context.Context) ([]*domain.Grade, error) {
	query := `
		SELECT test_case_id, model_id, score, method, comments, feedback, timestamp
		FROM grades
		ORDER BY timestamp ASC
	`

	grades := make([]*domain.Grade, 0)
	if err := r.db.SelectContext(ctx, &grades, query); err != nil {
		r.logger.Error("Failed to get grades", "error", err)
		return nil, fmt.Errorf("failed to get grades: %w", err)
	}

	return grades, nil
}

// GetGradesForTestCase retrieves all grades for one test case
func (r *ResultRepository) GetGradesForTestCase(ctx context.Context, testCaseID uuid.UUID) ([]*domain.Grade, error) {
	query := `
		SELECT test_case_id, model_id, score, method, comments, feedback, timestamp
		FROM grades
		WHERE test_case_id = $1
		ORDER BY timestamp ASC
	`

	grades := make([]*domain.Grade, 0)
	if err := r.db.SelectContext(ctx, &grades, query, testCaseID); err != nil {
		r.logger.Error("Failed to get grades for test case", "testCaseId", testCaseID, "error", err)
		return nil, fmt.Errorf("failed to get grades for test case: %w", err)
	}

	return grades, nil
}
