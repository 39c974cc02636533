package domain

import (
	"time"

	"github.com/google/uuid"
)

// TestCase represents a named prompt scenario to be evaluated against one or more models
type TestCase struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	SystemPrompt   string    `db:"system_prompt" json:"systemPrompt"`
	UserPrompt     string    `db:"user_prompt" json:"userPrompt"`
	SourceText     string    `db:"source_text" json:"sourceText"`
	ExpectedResult string    `db:"expected_result" json:"expectedResult"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

type TestCaseTable struct {
	ID             string
	Name           string
	SystemPrompt   string
	UserPrompt     string
	SourceText     string
	ExpectedResult string
	CreatedAt      string
	UpdatedAt      string
}

func GetTestCaseTable() TestCaseTable {
	return TestCaseTable{
		ID:             "id",
		Name:           "name",
		SystemPrompt:   "system_prompt",
		UserPrompt:     "user_prompt",
		SourceText:     "source_text",
		ExpectedResult: "expected_result",
		CreatedAt:      "created_at",
		UpdatedAt:      "updated_at",
	}
}

func (TestCaseTable) TableName() string {
	return "test_cases"
}

// NewTestCase creates a new test case
func NewTestCase(name, systemPrompt, userPrompt, sourceText, expectedResult string) *TestCase {
	now := time.Now()
	if name == "" {
		name = "New Test Case"
	}
	return &TestCase{
		ID:             uuid.New(),
		Name:           name,
		SystemPrompt:   systemPrompt,
		UserPrompt:     userPrompt,
		SourceText:     sourceText,
		ExpectedResult: expectedResult,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
