package clean

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExtract_CutsTrailingBoilerplate(t *testing.T) {
	got := Extract("Real content here.\n\nUnsubscribe from this list.", DefaultExcerptLength)
	if got != "Real content here." {
		t.Errorf("Extract = %q, want %q", got, "Real content here.")
	}
}

func TestExtract_BoilerplateVariants(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"receiving this",
			"The issue body.\n\nYou're receiving this because you signed up.",
			"The issue body.",
		},
		{
			"you are receiving",
			"The issue body.\n\nYou are receiving this as a subscriber.",
			"The issue body.",
		},
		{
			"update preferences",
			"The issue body.\n\nUpdate your preferences here.",
			"The issue body.",
		},
		{
			"linked unsubscribe",
			"The issue body.\n\n[Unsubscribe](https://x.example/u)",
			"The issue body.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(tt.in, DefaultExcerptLength); got != tt.want {
				t.Errorf("Extract = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtract_ViewInBrowserIsNotBoilerplate(t *testing.T) {
	in := "View in browser\n\nThe actual content."
	got := Extract(in, DefaultExcerptLength)
	if !strings.Contains(got, "View in browser") || !strings.Contains(got, "actual content") {
		t.Errorf("Extract over-trimmed: %q", got)
	}
}

func TestExtract_MidSentenceMentionSurvives(t *testing.T) {
	in := "This tool helps you unsubscribe from noisy lists."
	got := Extract(in, DefaultExcerptLength)
	if got != in {
		t.Errorf("mid-sentence mention trimmed: %q", got)
	}
}

func TestExtract_NormalizesNewlineRuns(t *testing.T) {
	got := Extract("para one\n\n\n\n\npara two", DefaultExcerptLength)
	if got != "para one\n\npara two" {
		t.Errorf("Extract = %q", got)
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	if got := Extract("", DefaultExcerptLength); got != "" {
		t.Errorf("Extract(\"\") = %q, want empty", got)
	}
	if got := Extract("   \n\n  ", DefaultExcerptLength); got != "" {
		t.Errorf("Extract(whitespace) = %q, want empty", got)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	in := "First sentence. Second sentence.\n\n\n\nThird paragraph.\n\nUnsubscribe here."
	once := Extract(in, DefaultExcerptLength)
	twice := Extract(once, DefaultExcerptLength)
	if once != twice {
		t.Errorf("not idempotent: %q != %q", once, twice)
	}
}

func TestExtract_SentenceBoundaryTruncation(t *testing.T) {
	// Boundary falls past the 50% mark, so the cut keeps the period
	in := strings.Repeat("x", 70) + ". " + strings.Repeat("y", 100)
	got := Extract(in, 100)
	want := strings.Repeat("x", 70) + "."
	if got != want {
		t.Errorf("Extract = %q (len %d), want sentence cut at 71", got, len(got))
	}
}

func TestExtract_EarlyBoundaryIgnored(t *testing.T) {
	// The only sentence boundary is before the 50% mark; hard truncate
	in := "Hi. " + strings.Repeat("z", 300)
	got := Extract(in, 100)
	if !strings.HasSuffix(got, Ellipsis) {
		t.Errorf("expected ellipsis on hard truncation: %q", got)
	}
	if utf8.RuneCountInString(got) != 100+utf8.RuneCountInString(Ellipsis) {
		t.Errorf("hard truncation length = %d", utf8.RuneCountInString(got))
	}
}

func TestExtract_NeverExceedsBudget(t *testing.T) {
	inputs := []string{
		strings.Repeat("a", 500),
		strings.Repeat("word. ", 200),
		strings.Repeat("längre ", 100), // multi-byte runes
	}
	const maxLength = 120
	for _, in := range inputs {
		got := Extract(in, maxLength)
		if n := utf8.RuneCountInString(got); n > maxLength+utf8.RuneCountInString(Ellipsis) {
			t.Errorf("excerpt length %d exceeds budget for %q...", n, in[:10])
		}
	}
}

func TestExtract_ShortInputUnchanged(t *testing.T) {
	in := "Already short."
	if got := Extract(in, 100); got != in {
		t.Errorf("Extract = %q, want unchanged", got)
	}
}
