package grading

import (
	"context"

	"gitlab.com/prompteval-2025.net/internal/domain"
)

// GradeRequest carries everything needed to grade one execution result
type GradeRequest struct {
	TestCase     *domain.TestCase
	Result       *domain.ExecutionResult
	Method       domain.GradeMethod
	ManualScore  int
	Comments     string
	JudgeModelID string
}

// IGradingService defines the interface for grading execution results
type IGradingService interface {
	// Grade produces and persists a normalized grade, either from a
	// human-entered score and comments or from an automatic judge call.
	// A judge-call failure returns an error and persists nothing.
	Grade(ctx context.Context, req GradeRequest) (*domain.Grade, error)
}
