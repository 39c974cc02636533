package domain

// LineEntry is one added or removed line, tagged with its 0-based index
type LineEntry struct {
	Line    int    `json:"line"`
	Content string `json:"content"`
}

// ModifiedEntry is a line index where both texts have content but differ
type ModifiedEntry struct {
	Line     int    `json:"line"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// Diff is a positional line comparison between an expected and an actual
// text. Similarity is a percentage in [0,100].
type Diff struct {
	Added      []LineEntry     `json:"added"`
	Removed    []LineEntry     `json:"removed"`
	Modified   []ModifiedEntry `json:"modified"`
	Similarity float64         `json:"similarity"`
}
