package grading

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"gitlab.com/prompteval-2025.net/internal/core/ports/primary"
	"gitlab.com/prompteval-2025.net/internal/core/ports/secondary"
	"gitlab.com/prompteval-2025.net/internal/domain"
)

var scorePattern = regexp.MustCompile(`(?i)Score:\s*(\d{1,3})`)

var _ IGradingService = (*GradingService)(nil)

// GradingService implements the IGradingService interface
type GradingService struct {
	client     secondary.InvocationClient
	resultRepo secondary.ResultRepository
	logger     primary.Logger
}

// NewGradingService creates a new grading service
func NewGradingService(
	client secondary.InvocationClient,
	resultRepo secondary.ResultRepository,
	logger primary.Logger,
) *GradingService {
	return &GradingService{
		client:     client,
		resultRepo: resultRepo,
		logger:     logger,
	}
}

// Grade produces and persists a normalized grade for one (testCase, model)
// execution result. Later grading overwrites.
func (s *GradingService) Grade(ctx context.Context, req GradeRequest) (*domain.Grade, error) {
	if req.TestCase == nil || req.Result == nil {
		return nil, fmt.Errorf("test case and result are required")
	}

	var grade *domain.Grade
	switch req.Method {
	case domain.GradeMethodManual:
		if req.ManualScore < 0 || req.ManualScore > 100 {
			return nil, fmt.Errorf("manual score must be between 0 and 100, got %d", req.ManualScore)
		}
		grade = &domain.Grade{
			TestCaseID: req.TestCase.ID,
			ModelID:    req.Result.ModelID,
			Score:      req.ManualScore,
			Method:     domain.GradeMethodManual,
			Comments:   req.Comments,
			Timestamp:  time.Now(),
		}
	case domain.GradeMethodAutomatic:
		autoGrade, err := s.autoGrade(ctx, req)
		if err != nil {
			return nil, err
		}
		grade = autoGrade
	default:
		return nil, fmt.Errorf("unknown grading method: %s", req.Method)
	}

	if err := s.resultRepo.SaveGrade(ctx, grade); err != nil {
		s.logger.Error("Failed to save grade",
			"testCaseId", grade.TestCaseID,
			"modelId", grade.ModelID,
			"error", err)
		return nil, fmt.Errorf("failed to save grade: %w", err)
	}

	s.logger.Info("Graded result",
		"testCaseId", grade.TestCaseID,
		"modelId", grade.ModelID,
		"method", grade.Method,
		"score", grade.Score)
	return grade, nil
}

// autoGrade asks the judge model for a 0-100 score and free-text feedback.
// The full raw judge response is always kept as feedback, even when no score
// can be parsed out of it.
func (s *GradingService) autoGrade(ctx context.Context, req GradeRequest) (*domain.Grade, error) {
	prompt := buildJudgePrompt(req.TestCase, req.Result)

	response, err := s.client.JudgeCompletion(ctx, prompt, req.JudgeModelID)
	if err != nil {
		s.logger.Error("Judge call failed", "modelId", req.JudgeModelID, "error", err)
		return nil, fmt.Errorf("failed to auto-grade response: %w", err)
	}

	return &domain.Grade{
		TestCaseID: req.TestCase.ID,
		ModelID:    req.Result.ModelID,
		Score:      parseScore(response),
		Method:     domain.GradeMethodAutomatic,
		Feedback:   response,
		Timestamp:  time.Now(),
	}, nil
}

// parseScore extracts the integer following "Score:". A missing or
// malformed score degrades to 0, never a hard failure.
func parseScore(response string) int {
	match := scorePattern.FindStringSubmatch(response)
	if match == nil {
		return 0
	}
	score, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return score
}

func buildJudgePrompt(tc *domain.TestCase, result *domain.ExecutionResult) string {
	return fmt.Sprintf(`
You are an expert evaluator. You will be given a test case with a prompt and the model's response. Evaluate the quality of the response.

Test Case Information:
System Prompt: %s
User Prompt: %s
Source Text: %s
Expected Result: %s

Model Response: %s

Please evaluate this response and provide:
1. A numeric score from 0-100
2. Brief feedback explaining the score
3. Key strengths and weaknesses

Format your response as:
Score: [number]
Feedback: [your detailed feedback]`,
		orNone(tc.SystemPrompt, "None"),
		tc.UserPrompt,
		orNone(tc.SourceText, "None"),
		orNone(tc.ExpectedResult, "None provided"),
		result.Output)
}

func orNone(value, placeholder string) string {
	if value == "" {
		return placeholder
	}
	return value
}
