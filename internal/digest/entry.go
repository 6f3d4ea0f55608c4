// Package digest implements the per-day digest document: its canonical
// in-memory model, the renderer/parser pair, and the read-modify-write merge.
package digest

import "strings"

// Entry is one newsletter's contribution to a digest. Created once per
// message and immutable afterwards; entries are appended or dropped via
// dedup, never edited in place.
type Entry struct {
	// SourceMessageID identifies the originating message for dedup
	SourceMessageID string

	// Topic is the classified topic name
	Topic string

	// Block is the fully formatted sub-section: heading, source marker,
	// optional read-more link, blockquoted excerpt
	Block string
}

// sourceMarkerPrefix tags each rendered block with its message id. The
// comment is invisible in rendered markdown and lets the parser recover ids
// from documents whose frontmatter has been lost.
const sourceMarkerPrefix = "<!-- source: "

// RenderBlock formats one entry block.
func RenderBlock(messageID, sender, subject, link, excerpt string) string {
	var sb strings.Builder

	sb.WriteString("### ")
	sb.WriteString(strings.TrimSpace(sender))
	if subject = strings.TrimSpace(subject); subject != "" {
		sb.WriteString(" — ")
		sb.WriteString(subject)
	}
	sb.WriteString("\n\n")

	sb.WriteString(sourceMarkerPrefix)
	sb.WriteString(messageID)
	sb.WriteString(" -->\n")

	if link != "" {
		sb.WriteString("\n[Read full issue](")
		sb.WriteString(link)
		sb.WriteString(")\n")
	}

	if excerpt = strings.TrimSpace(excerpt); excerpt != "" {
		sb.WriteString("\n")
		sb.WriteString(blockquote(excerpt))
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

// blockquote prefixes every line with a quote marker.
func blockquote(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + line
		}
	}
	return strings.Join(lines, "\n")
}
