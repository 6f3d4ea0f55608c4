// Package clean implements the newsletter content-normalization pipeline:
// HTML sanitization, markdown conversion, and bounded excerpt extraction.
package clean

import "github.com/askeland/mailfold/internal/config"

// CleanedContent is the derived content of one message. Ephemeral: only the
// excerpt (and optionally the sanitized HTML) outlive the pipeline invocation.
type CleanedContent struct {
	// SanitizedHTML is the HTML body after tracker/boilerplate removal
	SanitizedHTML string

	// ConvertedText is the markdown-flavored rendering of SanitizedHTML
	ConvertedText string

	// Excerpt is the bounded digest excerpt
	Excerpt string

	// BrowserLink is the hosted-copy URL, if the message carries one
	BrowserLink string
}

// Cleaner runs the full sanitize-convert-excerpt pass for one message body.
type Cleaner struct {
	sanitizer *Sanitizer
	converter *Converter
	maxChars  int
}

// NewCleaner builds a cleaner from configuration.
func NewCleaner(cfg *config.Config) *Cleaner {
	maxChars := cfg.ExcerptMaxChars
	if maxChars <= 0 {
		maxChars = DefaultExcerptLength
	}
	return &Cleaner{
		sanitizer: NewSanitizer(cfg),
		converter: NewConverter(),
		maxChars:  maxChars,
	}
}

// Clean normalizes one message body. Pure and never fails: the conversion
// fallback chain ends in a placeholder.
func (c *Cleaner) Clean(htmlBody, textBody string) CleanedContent {
	sanitized := ""
	if htmlBody != "" {
		sanitized = c.sanitizer.Sanitize(htmlBody)
	}
	converted := c.converter.Render(sanitized, textBody)

	return CleanedContent{
		SanitizedHTML: sanitized,
		ConvertedText: converted,
		Excerpt:       Extract(converted, c.maxChars),
		BrowserLink:   BrowserLink(sanitized),
	}
}
