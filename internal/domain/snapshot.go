package domain

import "time"

// Snapshot is the read-only projection of all stored evaluation data,
// consumed by export collaborators and produced by bulk import
type Snapshot struct {
	TestCases  []*TestCase        `json:"testCases"`
	Results    []*ExecutionResult `json:"results"`
	Grades     []*Grade           `json:"grades"`
	ExportDate time.Time          `json:"exportDate"`
}
