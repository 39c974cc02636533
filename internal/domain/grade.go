package domain

import (
	"time"

	"github.com/google/uuid"
)

// GradeMethod represents how a grade was produced
type GradeMethod string

const (
	GradeMethodManual    GradeMethod = "manual"
	GradeMethodAutomatic GradeMethod = "automatic"
)

// Grade is a 0-100 score plus qualitative feedback attached to one
// (testCase, model) execution result. Later grading overwrites.
type Grade struct {
	TestCaseID uuid.UUID   `db:"test_case_id" json:"testCaseId"`
	ModelID    string      `db:"model_id" json:"modelId"`
	Score      int         `db:"score" json:"score"`
	Method     GradeMethod `db:"method" json:"method"`
	Comments   string      `db:"comments" json:"comments,omitempty"`
	Feedback   string      `db:"feedback" json:"feedback,omitempty"`
	Timestamp  time.Time   `db:"timestamp" json:"timestamp"`
}

type GradeTable struct {
	TestCaseID string
	ModelID    string
	Score      string
	Method     string
	Comments   string
	Feedback   string
	Timestamp  string
}

func GetGradeTable() GradeTable {
	return GradeTable{
		TestCaseID: "test_case_id",
		ModelID:    "model_id",
		Score:      "score",
		Method:     "method",
		Comments:   "comments",
		Feedback:   "feedback",
		Timestamp:  "timestamp",
	}
}

func (GradeTable) TableName() string {
	return "grades"
}
