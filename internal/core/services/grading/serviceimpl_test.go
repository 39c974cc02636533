package grading

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/prompteval-2025.net/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Warn(msg string, args ...interface{})  {}

type judgeClient struct {
	response string
	err      error

	prompt  string
	modelID string
}

func (c *judgeClient) ListModels(ctx context.Context, query string, limit int) ([]domain.ModelDescriptor, error) {
	return nil, nil
}

func (c *judgeClient) Complete(ctx context.Context, tc *domain.TestCase, modelID string) (*domain.CompletionOutput, error) {
	return nil, nil
}

func (c *judgeClient) TranslatePrompt(ctx context.Context, userPrompt, sourceText, modelID string) (*domain.TranslatedPrompt, error) {
	return nil, nil
}

func (c *judgeClient) TranslateBack(ctx context.Context, text, modelID string) (string, error) {
	return "", nil
}

func (c *judgeClient) JudgeCompletion(ctx context.Context, prompt, modelID string) (string, error) {
	c.prompt = prompt
	c.modelID = modelID
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

type gradeStore struct {
	saved   []*domain.Grade
	saveErr error
}

func (s *gradeStore) SaveResult(ctx context.Context, result *domain.ExecutionResult) error {
	return nil
}

func (s *gradeStore) GetResult(ctx context.Context, testCaseID uuid.UUID, modelID string) (*domain.ExecutionResult, error) {
	return nil, nil
}

func (s *gradeStore) GetAllResults(ctx context.Context) ([]*domain.ExecutionResult, error) {
	return nil, nil
}

func (s *gradeStore) GetResultsForTestCase(ctx context.Context, testCaseID uuid.UUID) ([]*domain.ExecutionResult, error) {
	return nil, nil
}

func (s *gradeStore) DeleteResult(ctx context.Context, testCaseID uuid.UUID, modelID string) error {
	return nil
}

func (s *gradeStore) DeleteAllForModel(ctx context.Context, modelID string) error {
	return nil
}

func (s *gradeStore) SaveGrade(ctx context.Context, grade *domain.Grade) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, grade)
	return nil
}

func (s *gradeStore) GetAllGrades(ctx context.Context) ([]*domain.Grade, error) {
	return nil, nil
}

func (s *gradeStore) GetGradesForTestCase(ctx context.Context, testCaseID uuid.UUID) ([]*domain.Grade, error) {
	return nil, nil
}

func gradeFixture() (*domain.TestCase, *domain.ExecutionResult) {
	tc := domain.NewTestCase("grading", "be precise", "vertaal dit", "brontekst", "the expected text")
	result := &domain.ExecutionResult{
		TestCaseID: tc.ID,
		ModelID:    "openai/gpt-4.1",
		Output:     "the actual text",
		Status:     domain.ResultStatusCompleted,
	}
	return tc, result
}

func TestGradeManual(t *testing.T) {
	store := &gradeStore{}
	svc := NewGradingService(&judgeClient{}, store, nopLogger{})

	tc, result := gradeFixture()
	grade, err := svc.Grade(context.Background(), GradeRequest{
		TestCase:    tc,
		Result:      result,
		Method:      domain.GradeMethodManual,
		ManualScore: 85,
		Comments:    "solid translation",
	})
	require.NoError(t, err)

	assert.Equal(t, tc.ID, grade.TestCaseID)
	assert.Equal(t, "openai/gpt-4.1", grade.ModelID)
	assert.Equal(t, 85, grade.Score)
	assert.Equal(t, domain.GradeMethodManual, grade.Method)
	assert.Equal(t, "solid translation", grade.Comments)
	assert.Empty(t, grade.Feedback)

	require.Len(t, store.saved, 1)
	assert.Equal(t, grade, store.saved[0])
}

func TestGradeAutomaticParsesScore(t *testing.T) {
	client := &judgeClient{response: "Score: 87\nFeedback: Good job"}
	store := &gradeStore{}
	svc := NewGradingService(client, store, nopLogger{})

	tc, result := gradeFixture()
	grade, err := svc.Grade(context.Background(), GradeRequest{
		TestCase:     tc,
		Result:       result,
		Method:       domain.GradeMethodAutomatic,
		JudgeModelID: "judge-model",
	})
	require.NoError(t, err)

	assert.Equal(t, 87, grade.Score)
	assert.Equal(t, domain.GradeMethodAutomatic, grade.Method)
	assert.Equal(t, "Score: 87\nFeedback: Good job", grade.Feedback)
	assert.Equal(t, "judge-model", client.modelID)
	require.Len(t, store.saved, 1)
}

func TestGradeAutomaticPromptContents(t *testing.T) {
	client := &judgeClient{response: "Score: 50"}
	svc := NewGradingService(client, &gradeStore{}, nopLogger{})

	tc, result := gradeFixture()
	_, err := svc.Grade(context.Background(), GradeRequest{
		TestCase:     tc,
		Result:       result,
		Method:       domain.GradeMethodAutomatic,
		JudgeModelID: "judge-model",
	})
	require.NoError(t, err)

	assert.Contains(t, client.prompt, "System Prompt: be precise")
	assert.Contains(t, client.prompt, "User Prompt: vertaal dit")
	assert.Contains(t, client.prompt, "Expected Result: the expected text")
	assert.Contains(t, client.prompt, "Model Response: the actual text")
	assert.Contains(t, client.prompt, "Score: [number]")
}

func TestGradeAutomaticPromptPlaceholders(t *testing.T) {
	client := &judgeClient{response: "Score: 50"}
	svc := NewGradingService(client, &gradeStore{}, nopLogger{})

	tc := domain.NewTestCase("bare", "", "vertaal dit", "", "")
	result := &domain.ExecutionResult{TestCaseID: tc.ID, ModelID: "m", Output: "out"}
	_, err := svc.Grade(context.Background(), GradeRequest{
		TestCase: tc,
		Result:   result,
		Method:   domain.GradeMethodAutomatic,
	})
	require.NoError(t, err)

	assert.Contains(t, client.prompt, "System Prompt: None\n")
	assert.Contains(t, client.prompt, "Source Text: None\n")
	assert.Contains(t, client.prompt, "Expected Result: None provided")
}

func TestGradeAutomaticMissingScoreDegradesToZero(t *testing.T) {
	client := &judgeClient{response: "The response is adequate but misses nuance."}
	store := &gradeStore{}
	svc := NewGradingService(client, store, nopLogger{})

	tc, result := gradeFixture()
	grade, err := svc.Grade(context.Background(), GradeRequest{
		TestCase: tc,
		Result:   result,
		Method:   domain.GradeMethodAutomatic,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, grade.Score)
	assert.Equal(t, "The response is adequate but misses nuance.", grade.Feedback)
	require.Len(t, store.saved, 1)
}

func TestGradeAutomaticJudgeFailure(t *testing.T) {
	client := &judgeClient{err: fmt.Errorf("judge unavailable")}
	store := &gradeStore{}
	svc := NewGradingService(client, store, nopLogger{})

	tc, result := gradeFixture()
	grade, err := svc.Grade(context.Background(), GradeRequest{
		TestCase: tc,
		Result:   result,
		Method:   domain.GradeMethodAutomatic,
	})
	require.Error(t, err)
	assert.Nil(t, grade)
	assert.Empty(t, store.saved)
}

func TestGradePersistFailureIsAnError(t *testing.T) {
	store := &gradeStore{saveErr: fmt.Errorf("disk full")}
	svc := NewGradingService(&judgeClient{}, store, nopLogger{})

	tc, result := gradeFixture()
	_, err := svc.Grade(context.Background(), GradeRequest{
		TestCase:    tc,
		Result:      result,
		Method:      domain.GradeMethodManual,
		ManualScore: 70,
	})
	require.Error(t, err)
}

func TestGradeManualRejectsOutOfRangeScore(t *testing.T) {
	store := &gradeStore{}
	svc := NewGradingService(&judgeClient{}, store, nopLogger{})

	tc, result := gradeFixture()
	for _, score := range []int{-5, 101, 500} {
		_, err := svc.Grade(context.Background(), GradeRequest{
			TestCase:    tc,
			Result:      result,
			Method:      domain.GradeMethodManual,
			ManualScore: score,
		})
		require.Error(t, err, "score %d", score)
	}
	assert.Empty(t, store.saved)

	// The range bounds themselves are valid.
	for _, score := range []int{0, 100} {
		_, err := svc.Grade(context.Background(), GradeRequest{
			TestCase:    tc,
			Result:      result,
			Method:      domain.GradeMethodManual,
			ManualScore: score,
		})
		require.NoError(t, err, "score %d", score)
	}
}

func TestGradeValidation(t *testing.T) {
	svc := NewGradingService(&judgeClient{}, &gradeStore{}, nopLogger{})

	_, err := svc.Grade(context.Background(), GradeRequest{Method: domain.GradeMethodManual})
	assert.Error(t, err)

	tc, result := gradeFixture()
	_, err = svc.Grade(context.Background(), GradeRequest{
		TestCase: tc,
		Result:   result,
		Method:   domain.GradeMethod("weighted"),
	})
	assert.Error(t, err)
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		response string
		want     int
	}{
		{"Score: 87\nFeedback: Good", 87},
		{"score: 42", 42},
		{"SCORE:100", 100},
		{"Score:  5", 5},
		{"Feedback only, no number", 0},
		{"", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseScore(tt.response), "response %q", tt.response)
	}
}
