package run

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"gitlab.com/prompteval-2025.net/internal/domain"
)

type statusKey struct {
	TestCaseID uuid.UUID
	ModelID    string
}

// StatusTracker holds the in-memory execution lifecycle per (testCase, model)
// pair as explicit tagged states with enforced transitions. A pair that was
// never touched is pending; no pair can be running twice.
type StatusTracker struct {
	mu     sync.RWMutex
	states map[statusKey]domain.ExecutionState
}

// NewStatusTracker creates an empty tracker
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{
		states: make(map[statusKey]domain.ExecutionState),
	}
}

// MarkRunning transitions a pair from pending to running. Returns an error
// when the pair is already running.
func (t *StatusTracker) MarkRunning(testCaseID uuid.UUID, modelID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := statusKey{TestCaseID: testCaseID, ModelID: modelID}
	if t.states[key] == domain.ExecutionStateRunning {
		return fmt.Errorf("execution already running for test case %s and model %s", testCaseID, modelID)
	}
	t.states[key] = domain.ExecutionStateRunning
	return nil
}

// MarkCompleted transitions a pair to completed. This is the lifecycle end
// state regardless of whether the invocation succeeded or failed.
func (t *StatusTracker) MarkCompleted(testCaseID uuid.UUID, modelID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.states[statusKey{TestCaseID: testCaseID, ModelID: modelID}] = domain.ExecutionStateCompleted
}

// State returns the tracked state for a pair, pending when never touched
func (t *StatusTracker) State(testCaseID uuid.UUID, modelID string) domain.ExecutionState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if state, ok := t.states[statusKey{TestCaseID: testCaseID, ModelID: modelID}]; ok {
		return state
	}
	return domain.ExecutionStatePending
}

// Clear forgets the tracked state for one pair
func (t *StatusTracker) Clear(testCaseID uuid.UUID, modelID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.states, statusKey{TestCaseID: testCaseID, ModelID: modelID})
}

// ClearModel forgets the tracked state of every pair with the given model id
func (t *StatusTracker) ClearModel(modelID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for key := range t.states {
		if key.ModelID == modelID {
			delete(t.states, key)
		}
	}
}

// ClearTestCase forgets the tracked state of every pair with the given test
// case id
func (t *StatusTracker) ClearTestCase(testCaseID uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for key := range t.states {
		if key.TestCaseID == testCaseID {
			delete(t.states, key)
		}
	}
}

// ClearAll forgets every tracked pair
func (t *StatusTracker) ClearAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.states = make(map[statusKey]domain.ExecutionState)
}
