// package eventbus publishes execution progress over Redis pub/sub so the
// presentation layer can observe a run live without polling.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/google/uuid"

	"gitlab.com/prompteval-2025.net/internal/core/ports/primary"
	"gitlab.com/prompteval-2025.net/internal/core/ports/secondary"
	"gitlab.com/prompteval-2025.net/internal/domain"
)

const (
	statusChannel = "execution:status"
	resultChannel = "execution:results"
)

// StatusEvent is the wire form of a lifecycle transition
type StatusEvent struct {
	TestCaseID uuid.UUID             `json:"testCaseId"`
	ModelID    string                `json:"modelId"`
	Status     domain.ExecutionState `json:"status"`
	Timestamp  time.Time             `json:"timestamp"`
}

// RedisEventBus implements the ExecutionEventPublisher interface with Redis
// pub/sub
type RedisEventBus struct {
	redisClient *redis.Client
	logger      primary.Logger
}

var _ secondary.ExecutionEventPublisher = (*RedisEventBus)(nil)

// NewRedisEventBus creates a new Redis event bus
func NewRedisEventBus(redisClient *redis.Client, logger primary.Logger) *RedisEventBus {
	return &RedisEventBus{
		redisClient: redisClient,
		logger:      logger,
	}
}

// PublishStatus announces a lifecycle transition for one (testCase, model) pair
func (b *RedisEventBus) PublishStatus(ctx context.Context, testCaseID uuid.UUID, modelID string, state domain.ExecutionState) error {
	event := StatusEvent{
		TestCaseID: testCaseID,
		ModelID:    modelID,
		Status:     state,
		Timestamp:  time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal status event", "error", err)
		return fmt.Errorf("failed to marshal status event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, statusChannel, payload).Err(); err != nil {
		b.logger.Error("Failed to publish status event", "testCaseId", testCaseID, "modelId", modelID, "error", err)
		return fmt.Errorf("failed to publish status event: %w", err)
	}

	return nil
}

// PublishResult announces a freshly persisted execution result
func (b *RedisEventBus) PublishResult(ctx context.Context, result *domain.ExecutionResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		b.logger.Error("Failed to marshal result event", "error", err)
		return fmt.Errorf("failed to marshal result event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, resultChannel, payload).Err(); err != nil {
		b.logger.Error("Failed to publish result event", "testCaseId", result.TestCaseID, "modelId", result.ModelID, "error", err)
		return fmt.Errorf("failed to publish result event: %w", err)
	}

	return nil
}
