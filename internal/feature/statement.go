// Package feature parses free-text feature descriptions into typed
// statements and classifies them into category, complexity, and hour
// estimates using fixed keyword rule tables. All functions are pure and
// total: arbitrary input text never produces an error.
package feature

import (
	"regexp"
	"strings"
)

// Priority of a feature, either declared inline or defaulted downstream.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Statement is one parsed line of raw feature text. Immutable once parsed;
// its index in the parsed slice is the stable identifier used by tasks and
// milestones downstream.
type Statement struct {
	Text             string
	DeclaredPriority Priority // empty when no inline annotation was found
	Completed        bool     // line carried a checkmark decoration
}

var prioritySuffix = regexp.MustCompile(`(?i)\(\s*(high|medium|low)\s+priority\s*\)\s*$`)

// Parse splits raw feature text into ordered statements, one per non-empty
// line. Blank lines are dropped, leading bracket/checkmark/bullet decoration
// is stripped, and a trailing "(high|medium|low priority)" annotation is
// removed from the text and captured as the declared priority. Malformed
// annotations are left in the text untouched. Empty input yields an empty
// slice, never an error.
func Parse(raw string) []Statement {
	var stmts []Statement
	for _, line := range strings.Split(raw, "\n") {
		text, completed := stripDecoration(line)
		if text == "" {
			continue
		}

		var declared Priority
		if m := prioritySuffix.FindStringSubmatch(text); m != nil {
			declared = Priority(strings.ToLower(m[1]))
			text = strings.TrimSpace(text[:len(text)-len(m[0])])
		}
		if text == "" {
			// Annotation-only line, nothing to classify.
			continue
		}

		stmts = append(stmts, Statement{
			Text:             text,
			DeclaredPriority: declared,
			Completed:        completed,
		})
	}
	return stmts
}

// stripDecoration removes leading list markers ([, ], -, *) and checkmarks
// from a line. A checkmark in either leading or trailing position marks the
// statement as already completed.
func stripDecoration(line string) (string, bool) {
	completed := false
	s := strings.TrimSpace(line)
	for {
		switch {
		case strings.HasPrefix(s, "✓"):
			completed = true
			s = strings.TrimSpace(strings.TrimPrefix(s, "✓"))
		case strings.HasPrefix(s, "["), strings.HasPrefix(s, "]"),
			strings.HasPrefix(s, "-"), strings.HasPrefix(s, "*"):
			s = strings.TrimSpace(s[1:])
		case strings.HasSuffix(s, "✓"):
			completed = true
			s = strings.TrimSpace(strings.TrimSuffix(s, "✓"))
		default:
			return s, completed
		}
	}
}
