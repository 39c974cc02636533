package secondary

import (
	"context"

	"gitlab.com/prompteval-2025.net/internal/domain"
)

// InvocationClient abstracts the remote model backends. Which backend a call
// targets is resolved per call, not once at startup.
type InvocationClient interface {
	// ListModels lists available models, normalized to uniform descriptors
	ListModels(ctx context.Context, query string, limit int) ([]domain.ModelDescriptor, error)

	// Complete runs a single chat completion built from the test case's
	// prompts against the given model
	Complete(ctx context.Context, tc *domain.TestCase, modelID string) (*domain.CompletionOutput, error)

	// TranslatePrompt translates a user prompt (and optional source text)
	// from the source language to the pivot language
	TranslatePrompt(ctx context.Context, userPrompt, sourceText, modelID string) (*domain.TranslatedPrompt, error)

	// TranslateBack translates model output from the pivot language back to
	// the source language
	TranslateBack(ctx context.Context, text, modelID string) (string, error)

	// JudgeCompletion runs an evaluation prompt against a judge model and
	// returns the raw response text
	JudgeCompletion(ctx context.Context, prompt, modelID string) (string, error)
}

// BackendResolver resolves the invocation target for a single call, reading
// the current self-hosted toggle and endpoint fresh each time
type BackendResolver interface {
	Resolve(ctx context.Context) (*domain.BackendConfig, error)
}
