package testcases

// TestCaseRequest is the payload for creating or updating a test case
type TestCaseRequest struct {
	Name           string `json:"name"`
	SystemPrompt   string `json:"systemPrompt"`
	UserPrompt     string `json:"userPrompt"`
	SourceText     string `json:"sourceText"`
	ExpectedResult string `json:"expectedResult"`
}

// RunRequest is the payload for running a test case against models
type RunRequest struct {
	ModelIDs           []string `json:"modelIds"`
	EnableRoundTrip    bool     `json:"enableRoundTrip"`
	TranslationModelID string   `json:"translationModelId"`
}
