package domain

import (
	"time"

	"github.com/google/uuid"
)

// ResultStatus represents the logical outcome of one model invocation
type ResultStatus string

const (
	ResultStatusCompleted ResultStatus = "completed"
	ResultStatusFailed    ResultStatus = "failed"
)

// ExecutionState represents the in-memory lifecycle of one (testCase, model)
// attempt. It only tracks whether the attempt has finished, not whether it
// succeeded.
type ExecutionState string

const (
	ExecutionStatePending   ExecutionState = "pending"
	ExecutionStateRunning   ExecutionState = "running"
	ExecutionStateCompleted ExecutionState = "completed"
)

// ExecutionResult represents the persisted outcome of running one test case
// against one model. At most one current result exists per (testCaseId,
// modelId) pair; re-running overwrites.
type ExecutionResult struct {
	TestCaseID       uuid.UUID    `db:"test_case_id" json:"testCaseId"`
	ModelID          string       `db:"model_id" json:"modelId"`
	Output           string       `db:"output" json:"output,omitempty"`
	RoundTripOutput  string       `db:"round_trip_output" json:"roundTripOutput,omitempty"`
	TranslatedPrompt string       `db:"translated_prompt" json:"translatedPrompt,omitempty"`
	TokensUsed       int          `db:"tokens_used" json:"tokensUsed"`
	LatencyMs        int64        `db:"latency_ms" json:"latency"`
	Timestamp        time.Time    `db:"timestamp" json:"timestamp"`
	Status           ResultStatus `db:"status" json:"status"`
	Error            string       `db:"error" json:"error,omitempty"`
	Diff             *Diff        `db:"diff" json:"diff,omitempty"`
}

type ResultTable struct {
	TestCaseID       string
	ModelID          string
	Output           string
	RoundTripOutput  string
	TranslatedPrompt string
	TokensUsed       string
	LatencyMs        string
	Timestamp        string
	Status           string
	Error            string
	Diff             string
}

func GetResultTable() ResultTable {
	return ResultTable{
		TestCaseID:       "test_case_id",
		ModelID:          "model_id",
		Output:           "output",
		RoundTripOutput:  "round_trip_output",
		TranslatedPrompt: "translated_prompt",
		TokensUsed:       "tokens_used",
		LatencyMs:        "latency_ms",
		Timestamp:        "timestamp",
		Status:           "status",
		Error:            "error",
		Diff:             "diff",
	}
}

func (ResultTable) TableName() string {
	return "results"
}

// CompletionOutput is the normalized outcome of a single chat completion call
type CompletionOutput struct {
	Output     string `json:"output"`
	TokensUsed int    `json:"tokensUsed"`
	LatencyMs  int64  `json:"latency"`
}

// RoundTripOutput is the outcome of a translate-infer-translate-back run.
// TokensUsed and LatencyMs reflect only the completion step.
type RoundTripOutput struct {
	Output           string `json:"output"`
	RoundTripOutput  string `json:"roundTripOutput"`
	TranslatedPrompt string `json:"translatedPrompt"`
	TokensUsed       int    `json:"tokensUsed"`
	LatencyMs        int64  `json:"latency"`
}

// TranslatedPrompt is a user prompt plus optional source text after a
// translation pass
type TranslatedPrompt struct {
	UserPrompt string `json:"userPrompt"`
	SourceText string `json:"sourceText"`
}
