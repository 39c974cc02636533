package testcaserepository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"gitlab.com/prompteval-2025.net/internal/domain"
)

// Transaction-scoped upserts used by snapshot import. They mirror the
// single-row save statements of the repositories so an import observes the
// same overwrite-by-key semantics.

func upsertTestCase(ctx context.Context, tx *sqlx.Tx, tc *domain.TestCase) error {
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
	_, err := tx.ExecContext(ctx, query,
		tc.ID, tc.Name, tc.SystemPrompt, tc.UserPrompt, tc.SourceText,
		tc.ExpectedResult, tc.CreatedAt, tc.UpdatedAt)
	return err
}

func upsertResult(ctx context.Context, tx *sqlx.Tx, result *domain.ExecutionResult) error {
	var diffJSON []byte
	if result.Diff != nil {
		var err error
		diffJSON, err = json.Marshal(result.Diff)
		if err != nil {
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
	_, err := tx.ExecContext(ctx, query,
		result.TestCaseID, result.ModelID, result.Output, result.RoundTripOutput,
		result.TranslatedPrompt, result.TokensUsed, result.LatencyMs,
		result.Timestamp, result.Status, result.Error, diffJSON)
	return err
}

func upsertGrade(ctx context.Context, tx *sqlx.Tx, grade *domain.Grade) error {
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
	_, err := tx.ExecContext(ctx, query,
		grade.TestCaseID, grade.ModelID, grade.Score, grade.Method,
		grade.Comments, grade.Feedback, grade.Timestamp)
	return err
}
