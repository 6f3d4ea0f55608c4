package digest

import (
	"strings"
	"testing"

	"github.com/askeland/mailfold/internal/config"
	"github.com/askeland/mailfold/internal/topic"
)

func newTopics(t *testing.T) *topic.Set {
	t.Helper()
	s, err := topic.NewSet(config.DefaultConfig())
	if err != nil {
		t.Fatalf("topic.NewSet failed: %v", err)
	}
	return s
}

func testEntry(id, topicName, sender, subject string) Entry {
	return Entry{
		SourceMessageID: id,
		Topic:           topicName,
		Block:           RenderBlock(id, sender, subject, "", "Excerpt for "+id+"."),
	}
}

func TestRenderBlock_Shape(t *testing.T) {
	block := RenderBlock("id-1", "Design Weekly", "Issue #47",
		"https://dw.example/47", "First line.\n\nSecond line.")

	if !strings.HasPrefix(block, "### Design Weekly — Issue #47") {
		t.Errorf("missing heading: %q", block)
	}
	if !strings.Contains(block, "<!-- source: id-1 -->") {
		t.Errorf("missing source marker: %q", block)
	}
	if !strings.Contains(block, "[Read full issue](https://dw.example/47)") {
		t.Errorf("missing read-more link: %q", block)
	}
	if !strings.Contains(block, "> First line.") || !strings.Contains(block, "> Second line.") {
		t.Errorf("excerpt not blockquoted: %q", block)
	}
}

func TestRenderParse_RoundTrip(t *testing.T) {
	topics := newTopics(t)
	doc := &Document{
		Date: "2026-08-28",
		Entries: []Entry{
			testEntry("id-1", "Tech", "Byte Weekly", "Compilers"),
			testEntry("id-2", "Design", "Design Weekly", "Issue #47"),
			testEntry("id-3", "Tech", "Byte Weekly", "Allocators"),
			testEntry("id-4", "Sports", "Box Scores", "Week 3"),
		},
	}

	rendered, err := Render(doc, topics)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	parsed, err := Parse(rendered)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if parsed.Date != doc.Date {
		t.Errorf("Date = %q, want %q", parsed.Date, doc.Date)
	}
	if len(parsed.Entries) != len(doc.Entries) {
		t.Fatalf("entry count = %d, want %d", len(parsed.Entries), len(doc.Entries))
	}
	for i := range doc.Entries {
		if parsed.Entries[i].SourceMessageID != doc.Entries[i].SourceMessageID {
			t.Errorf("ids[%d] = %q, want %q (merge order must survive)",
				i, parsed.Entries[i].SourceMessageID, doc.Entries[i].SourceMessageID)
		}
		if parsed.Entries[i].Topic != doc.Entries[i].Topic {
			t.Errorf("topics[%d] = %q, want %q", i, parsed.Entries[i].Topic, doc.Entries[i].Topic)
		}
		if parsed.Entries[i].Block != doc.Entries[i].Block {
			t.Errorf("blocks[%d] diverged:\n%q\nvs\n%q", i, parsed.Entries[i].Block, doc.Entries[i].Block)
		}
	}
}

func TestRender_GroupsByTopicPriority(t *testing.T) {
	topics := newTopics(t)
	// Design arrives before Tech; sections must still follow priority order
	doc := &Document{
		Date: "2026-08-28",
		Entries: []Entry{
			testEntry("id-design", "Design", "Design Weekly", "Issue"),
			testEntry("id-tech", "Tech", "Byte Weekly", "Issue"),
		},
	}

	rendered, err := Render(doc, topics)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	body := string(rendered)

	techAt := strings.Index(body, "## 💻 Tech")
	designAt := strings.Index(body, "## 🎨 Design")
	if techAt < 0 || designAt < 0 {
		t.Fatalf("missing sections:\n%s", body)
	}
	if techAt > designAt {
		t.Errorf("sections not in priority order:\n%s", body)
	}

	// Header region keeps arrival order, not priority order; the first
	// occurrence of each id is its frontmatter listing.
	idxDesign := strings.Index(body, "id-design")
	idxTech := strings.Index(body, "id-tech")
	if idxDesign < 0 || idxTech < 0 || idxDesign > idxTech {
		t.Errorf("frontmatter ids not in arrival order:\n%s", body)
	}
}

func TestRender_InsertionOrderWithinTopic(t *testing.T) {
	topics := newTopics(t)
	doc := &Document{
		Date: "2026-08-28",
		Entries: []Entry{
			testEntry("id-a", "Tech", "A", "first arrival"),
			testEntry("id-b", "Tech", "B", "second arrival"),
		},
	}

	rendered, err := Render(doc, topics)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	body := string(rendered)

	if strings.Index(body, "first arrival") > strings.Index(body, "second arrival") {
		t.Errorf("within-topic insertion order not preserved:\n%s", body)
	}
}

func TestRender_UnknownTopicAfterKnown(t *testing.T) {
	topics := newTopics(t)
	doc := &Document{
		Date: "2026-08-28",
		Entries: []Entry{
			testEntry("id-s", "Sports", "Box Scores", "Week 3"),
			testEntry("id-t", "Tech", "Byte Weekly", "Compilers"),
		},
	}

	rendered, err := Render(doc, topics)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	body := string(rendered)

	if strings.Index(body, "## Sports") < strings.Index(body, "## 💻 Tech") {
		t.Errorf("unknown topic should sort after known topics:\n%s", body)
	}
}

func TestRender_EmptyDocumentFails(t *testing.T) {
	topics := newTopics(t)
	if _, err := Render(&Document{Date: "2026-08-28"}, topics); err == nil {
		t.Error("expected error rendering an empty document")
	}
}

func TestParse_FallbackWithoutFrontmatter(t *testing.T) {
	topics := newTopics(t)
	doc := &Document{
		Date: "2026-08-28",
		Entries: []Entry{
			testEntry("id-1", "Tech", "Byte Weekly", "Compilers"),
			testEntry("id-2", "Design", "Design Weekly", "Issue #47"),
		},
	}
	rendered, err := Render(doc, topics)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	// Simulate a document written before the header region existed
	text := string(rendered)
	bodyStart := strings.Index(text, "\n# Daily Digest")
	if bodyStart < 0 {
		t.Fatalf("no title in rendered document:\n%s", text)
	}
	legacy := text[bodyStart+1:]

	parsed, err := Parse([]byte(legacy))
	if err != nil {
		t.Fatalf("Parse of legacy document failed: %v", err)
	}

	if len(parsed.Entries) != 2 {
		t.Fatalf("entry count = %d, want 2", len(parsed.Entries))
	}
	if parsed.Date != "2026-08-28" {
		t.Errorf("Date = %q, want recovered from title", parsed.Date)
	}

	// Ids recovered from block markers; topics from body grouping
	ids := map[string]bool{}
	for _, e := range parsed.Entries {
		ids[e.SourceMessageID] = true
	}
	if !ids["id-1"] || !ids["id-2"] {
		t.Errorf("ids not recovered from source markers: %v", parsed.IDs())
	}
	for _, e := range parsed.Entries {
		if e.SourceMessageID == "id-1" && e.Topic != "Tech" {
			t.Errorf("topic of id-1 = %q, want Tech", e.Topic)
		}
		if e.SourceMessageID == "id-2" && e.Topic != "Design" {
			t.Errorf("topic of id-2 = %q, want Design", e.Topic)
		}
	}
}

func TestParse_ParallelInvariantEnforced(t *testing.T) {
	malformed := "---\n" +
		"date: \"2026-08-28\"\n" +
		"entries: 2\n" +
		"message_ids:\n    - id-1\n    - id-2\n" +
		"topics:\n    - Tech\n" +
		"---\n" +
		"\n# Daily Digest 2026-08-28\n\n## 💻 Tech\n\n### A\n"

	if _, err := Parse([]byte(malformed)); err == nil {
		t.Error("expected error for id/topic count mismatch")
	}
}

func TestParse_Garbage(t *testing.T) {
	if _, err := Parse([]byte("not a digest at all")); err == nil {
		t.Error("expected error parsing garbage")
	}
}
