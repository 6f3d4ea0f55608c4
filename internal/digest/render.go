package digest

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/askeland/mailfold/internal/topic"
)

// frontmatter is the structured header region of a digest document. Message
// ids and topics are listed in merge order, parallel by index; this region is
// the authoritative source for dedup and insertion-order recovery. The body
// below it is re-sorted by topic priority and may order entries differently.
type frontmatter struct {
	Date       string   `yaml:"date"`
	Entries    int      `yaml:"entries"`
	MessageIDs []string `yaml:"message_ids"`
	Topics     []string `yaml:"topics"`
}

const frontmatterFence = "---"

// Render serializes a document into its canonical shape: YAML frontmatter,
// a title line, then topic-grouped entry blocks in topic-priority order.
// Empty topic groups are never emitted.
func Render(doc *Document, topics *topic.Set) ([]byte, error) {
	if len(doc.Entries) == 0 {
		return nil, fmt.Errorf("digest for %s has no entries", doc.Date)
	}

	fm := frontmatter{
		Date:       doc.Date,
		Entries:    len(doc.Entries),
		MessageIDs: doc.IDs(),
		Topics:     doc.Topics(),
	}
	header, err := yaml.Marshal(&fm)
	if err != nil {
		return nil, fmt.Errorf("marshal digest frontmatter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(frontmatterFence)
	sb.WriteString("\n")
	sb.Write(header)
	sb.WriteString(frontmatterFence)
	sb.WriteString("\n\n")

	sb.WriteString("# Daily Digest ")
	sb.WriteString(doc.Date)
	sb.WriteString("\n")

	for _, sec := range doc.sections(topics) {
		sb.WriteString("\n## ")
		sb.WriteString(sectionHeading(sec.topic, topics))
		sb.WriteString("\n")
		for _, e := range sec.entries {
			sb.WriteString("\n")
			sb.WriteString(strings.TrimRight(e.Block, "\n"))
			sb.WriteString("\n")
		}
	}

	return []byte(sb.String()), nil
}

// sectionHeading returns the display heading for a topic name. Topics outside
// the configured enumeration render without a label.
func sectionHeading(name string, topics *topic.Set) string {
	if t, ok := topics.Lookup(name); ok {
		return t.Heading()
	}
	return name
}
