package secondary

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/prompteval-2025.net/internal/domain"
)

// ExecutionEventPublisher surfaces per-model progress of a run to observers.
// Events for one model are fully published before the next model begins.
type ExecutionEventPublisher interface {
	// PublishStatus announces a lifecycle transition for one
	// (testCase, model) pair
	PublishStatus(ctx context.Context, testCaseID uuid.UUID, modelID string, state domain.ExecutionState) error

	// PublishResult announces a freshly persisted execution result
	PublishResult(ctx context.Context, result *domain.ExecutionResult) error
}
