package domain

import "fmt"

// InvocationError is a transport or non-2xx failure from a model invocation,
// carrying the model id and the underlying cause. Never retried in-engine.
type InvocationError struct {
	ModelID string
	Err     error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("failed to run test with %s: %v", e.ModelID, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// Translation pipeline stages
const (
	StageTranslatePrompt = "translate-prompt"
	StageCompletion      = "completion"
	StageTranslateOutput = "translate-output"
)

// TranslationError is a failure of one stage of the round-trip pipeline.
// It aborts only that model's attempt.
type TranslationError struct {
	Stage string
	Err   error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("round-trip %s stage failed: %v", e.Stage, e.Err)
}

func (e *TranslationError) Unwrap() error {
	return e.Err
}
