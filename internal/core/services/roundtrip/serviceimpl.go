package roundtrip

import (
	"context"

	"gitlab.com/prompteval-2025.net/internal/core/ports/primary"
	"gitlab.com/prompteval-2025.net/internal/core/ports/secondary"
	"gitlab.com/prompteval-2025.net/internal/domain"
)

var _ IRoundTripService = (*RoundTripService)(nil)

// RoundTripService implements the IRoundTripService interface
type RoundTripService struct {
	client secondary.InvocationClient
	logger primary.Logger
}

// NewRoundTripService creates a new round-trip service
func NewRoundTripService(client secondary.InvocationClient, logger primary.Logger) *RoundTripService {
	return &RoundTripService{
		client: client,
		logger: logger,
	}
}

// Run executes the three pipeline steps strictly in sequence. Reported
// tokens and latency reflect only the completion step.
func (s *RoundTripService) Run(ctx context.Context, tc *domain.TestCase, modelID, translationModelID string) (*domain.RoundTripOutput, error) {
	s.logger.Debug("Starting round-trip run",
		"testCaseId", tc.ID,
		"modelId", modelID,
		"translationModelId", translationModelID)

	translated, err := s.client.TranslatePrompt(ctx, tc.UserPrompt, tc.SourceText, translationModelID)
	if err != nil {
		return nil, &domain.TranslationError{Stage: domain.StageTranslatePrompt, Err: err}
	}

	translatedCase := *tc
	translatedCase.UserPrompt = translated.UserPrompt
	translatedCase.SourceText = translated.SourceText

	completion, err := s.client.Complete(ctx, &translatedCase, modelID)
	if err != nil {
		return nil, &domain.TranslationError{Stage: domain.StageCompletion, Err: err}
	}

	backTranslated, err := s.client.TranslateBack(ctx, completion.Output, translationModelID)
	if err != nil {
		return nil, &domain.TranslationError{Stage: domain.StageTranslateOutput, Err: err}
	}

	return &domain.RoundTripOutput{
		Output:           completion.Output,
		RoundTripOutput:  backTranslated,
		TranslatedPrompt: translated.UserPrompt,
		TokensUsed:       completion.TokensUsed,
		LatencyMs:        completion.LatencyMs,
	}, nil
}
