package roundtrip

import (
	"context"

	"gitlab.com/prompteval-2025.net/internal/domain"
)

// IRoundTripService defines the interface for translate-infer-translate-back
// evaluation runs
type IRoundTripService interface {
	// Run translates the test case's prompt to the pivot language, runs the
	// completion on the target model, and translates the output back. Any
	// step failing aborts the whole pipeline; nothing partial is returned.
	Run(ctx context.Context, tc *domain.TestCase, modelID, translationModelID string) (*domain.RoundTripOutput, error)
}
