package clean

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultExcerptLength is the default excerpt bound in characters.
const DefaultExcerptLength = 2000

// Ellipsis is appended when the excerpt is hard-truncated mid-sentence.
const Ellipsis = "…"

// boilerplatePattern matches trailing unsubscribe/preference boilerplate at
// the start of a line. Everything from the first match onward is discarded.
// This is a hard suffix cut: a legitimate sentence opening a line with
// "Unsubscribe" would be over-trimmed. Known limitation, kept for parity
// with established capture behavior.
var boilerplatePattern = regexp.MustCompile(`(?im)^[ \t>*+-]*\[?(?:you'?re receiving this|you are receiving this|unsubscribe|update your preferences)`)

// newlineRunPattern matches runs of three or more newlines.
var newlineRunPattern = regexp.MustCompile(`\n{3,}`)

// Extract produces a bounded excerpt from converted newsletter text: trailing
// boilerplate removed, blank runs normalized, truncated at a sentence
// boundary when one falls in the second half of the budget.
func Extract(text string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultExcerptLength
	}

	if loc := boilerplatePattern.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}

	text = newlineRunPattern.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}

	runes := []rune(text)
	truncated := string(runes[:maxLength])

	// The last boundary within the budget is the only candidate considered.
	// When it falls in the first half it is rejected outright rather than
	// retrying earlier boundaries; those are even shorter, and a single early
	// sentence must not collapse the excerpt.
	if cut := strings.LastIndex(truncated, ". "); cut >= 0 {
		// Keep the period.
		if utf8.RuneCountInString(truncated[:cut]) >= maxLength/2 {
			return truncated[:cut+1]
		}
	}

	return truncated + Ellipsis
}
