// package diff implements the positional line diff used to compare an
// expected result against a model's actual output.
package diff

import (
	"strings"

	"gitlab.com/prompteval-2025.net/internal/domain"
)

// Compute compares the expected text to the actual text line by line and
// returns a structured diff plus a similarity percentage. Returns nil when
// either input is empty.
//
// The comparison is strictly positional: line i of one text is only ever
// compared against line i of the other, so an inserted line shifts every
// subsequent line out of alignment. Persisted similarity numbers depend on
// this, so it must not be replaced with an aligning algorithm.
func Compute(expected, actual string) *domain.Diff {
	if expected == "" || actual == "" {
		return nil
	}

	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")

	d := &domain.Diff{
		Added:    []domain.LineEntry{},
		Removed:  []domain.LineEntry{},
		Modified: []domain.ModifiedEntry{},
	}

	maxLength := len(expectedLines)
	if len(actualLines) > maxLength {
		maxLength = len(actualLines)
	}

	matchingLines := 0
	for i := 0; i < maxLength; i++ {
		expectedLine, hasExpected := lineAt(expectedLines, i)
		actualLine, hasActual := lineAt(actualLines, i)

		switch {
		case hasExpected && hasActual && expectedLine == actualLine:
			matchingLines++
		case isBlank(actualLine, hasActual) && expectedLine != "":
			d.Removed = append(d.Removed, domain.LineEntry{Line: i, Content: expectedLine})
		case actualLine != "" && isBlank(expectedLine, hasExpected):
			d.Added = append(d.Added, domain.LineEntry{Line: i, Content: actualLine})
		default:
			d.Modified = append(d.Modified, domain.ModifiedEntry{
				Line:     i,
				Expected: expectedLine,
				Actual:   actualLine,
			})
		}
	}

	if maxLength > 0 {
		d.Similarity = float64(matchingLines) / float64(maxLength) * 100
	} else {
		d.Similarity = 100
	}

	return d
}

func lineAt(lines []string, i int) (string, bool) {
	if i < len(lines) {
		return lines[i], true
	}
	return "", false
}

// A line counts as blank when it is past the end of its text or empty.
func isBlank(line string, present bool) bool {
	return !present || line == ""
}
