package assistant

import "strings"

// Marker emoji the preamble asks the model to use.
const (
	WarningEmoji = "⚠"
	SuccessEmoji = "✅"
	TipEmoji     = "💡"
)

var (
	defaultWarningMarkers = []string{WarningEmoji, "warning", "fraud", "risk"}
	defaultSuccessMarkers = []string{SuccessEmoji, "safe", "secure"}
)

// Classifier tags assistant text by case-insensitive substring scan. Warning
// markers are checked before success markers and the first match wins.
type Classifier struct {
	warning []string
	success []string
}

// NewClassifier builds a classifier from the default marker sets plus any
// extra keywords. Extras are lowercased; blanks are ignored.
func NewClassifier(extraWarning, extraSuccess []string) Classifier {
	return Classifier{
		warning: mergeMarkers(defaultWarningMarkers, extraWarning),
		success: mergeMarkers(defaultSuccessMarkers, extraSuccess),
	}
}

// DefaultClassifier uses only the built-in marker sets.
func DefaultClassifier() Classifier {
	return NewClassifier(nil, nil)
}

// Classify returns TagWarning, TagSuccess or TagInfo. It never returns TagNone.
func (c Classifier) Classify(text string) Tag {
	lower := strings.ToLower(text)
	if containsAny(lower, c.warning) {
		return TagWarning
	}
	if containsAny(lower, c.success) {
		return TagSuccess
	}
	return TagInfo
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func mergeMarkers(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, m := range list {
			m = strings.ToLower(strings.TrimSpace(m))
			if m == "" {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}
