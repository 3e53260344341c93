package scenario

import (
	"bytes"

	"github.com/pmezard/go-difflib/difflib"
	sgdiff "github.com/sourcegraph/go-diff/diff"
)

// DiffStats counts changed lines of a unified diff
type DiffStats struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Hunks   int `json:"hunks"`
}

// GenerateDiff produces a unified diff between expected and actual text with
// its line statistics. Identical inputs yield an empty diff.
func GenerateDiff(expected, actual []byte, name string, contextLines int) (string, DiffStats, error) {
	if contextLines <= 0 {
		contextLines = 3
	}
	if bytes.Equal(expected, actual) {
		return "", DiffStats{}, nil
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(expected)),
		B:        difflib.SplitLines(string(actual)),
		FromFile: name + " (expected)",
		ToFile:   name + " (actual)",
		Context:  contextLines,
	}
	patch, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", DiffStats{}, err
	}
	stats, err := diffStats(patch)
	return patch, stats, err
}

func diffStats(patch string) (DiffStats, error) {
	var ret DiffStats
	if patch == "" {
		return ret, nil
	}
	fileDiff, err := sgdiff.ParseFileDiff([]byte(patch))
	if err != nil {
		return ret, err
	}
	ret.Hunks = len(fileDiff.Hunks)
	for _, hunk := range fileDiff.Hunks {
		for _, line := range bytes.Split(hunk.Body, []byte("\n")) {
			if len(line) == 0 {
				continue
			}
			switch line[0] {
			case '+':
				ret.Added++
			case '-':
				ret.Removed++
			}
		}
	}
	return ret, nil
}
