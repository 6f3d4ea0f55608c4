package digest

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

var (
	headingPattern    = regexp.MustCompile(`(?m)^## (.+)$`)
	blockStartPattern = regexp.MustCompile(`(?m)^### `)
	sourcePattern     = regexp.MustCompile(`<!-- source: (.+?) -->`)
	titleDatePattern  = regexp.MustCompile(`(?m)^# .*?(\d{4}-\d{2}-\d{2})`)
)

// Parse reconstructs a document from its serialized form. Ids and topics are
// taken from the frontmatter header region when present; without it, topics
// fall back to the body's grouping structure (documents written before topic
// metadata existed) and ids to the per-block source markers.
func Parse(data []byte) (*Document, error) {
	text := string(data)

	fm, body, hasHeader, err := splitFrontmatter(text)
	if err != nil {
		return nil, err
	}

	sections, err := parseBody(body)
	if err != nil {
		return nil, err
	}

	if !hasHeader {
		return documentFromBody(body, sections)
	}

	if len(fm.MessageIDs) != len(fm.Topics) {
		return nil, fmt.Errorf("frontmatter lists %d message ids but %d topics",
			len(fm.MessageIDs), len(fm.Topics))
	}
	if fm.Entries != len(fm.MessageIDs) {
		return nil, fmt.Errorf("frontmatter entry count %d does not match %d message ids",
			fm.Entries, len(fm.MessageIDs))
	}
	if len(fm.MessageIDs) == 0 {
		return nil, fmt.Errorf("frontmatter lists no message ids")
	}

	// The k-th block of a topic's section corresponds to the k-th header
	// entry carrying that topic: body sections preserve merge order within
	// a group, so the pairing is positional.
	blocksByTopic := map[string][]string{}
	for _, sec := range sections {
		blocksByTopic[sec.topic] = append(blocksByTopic[sec.topic], sec.blocks...)
	}

	doc := &Document{Date: fm.Date}
	taken := map[string]int{}
	for i, id := range fm.MessageIDs {
		topicName := fm.Topics[i]
		blocks := blocksByTopic[topicName]
		k := taken[topicName]
		if k >= len(blocks) {
			return nil, fmt.Errorf("no body block for message %s (topic %s)", id, topicName)
		}
		taken[topicName] = k + 1
		doc.Entries = append(doc.Entries, Entry{
			SourceMessageID: id,
			Topic:           topicName,
			Block:           blocks[k],
		})
	}

	for topicName, blocks := range blocksByTopic {
		if taken[topicName] != len(blocks) {
			return nil, fmt.Errorf("body has %d extra blocks for topic %s",
				len(blocks)-taken[topicName], topicName)
		}
	}

	return doc, nil
}

// splitFrontmatter separates the header region from the body. A missing
// fence is not an error (legacy documents); a fence that never closes is.
func splitFrontmatter(text string) (frontmatter, string, bool, error) {
	var fm frontmatter

	if !strings.HasPrefix(text, frontmatterFence+"\n") {
		return fm, text, false, nil
	}

	rest := text[len(frontmatterFence)+1:]
	end := strings.Index(rest, "\n"+frontmatterFence+"\n")
	if end < 0 {
		return fm, "", false, fmt.Errorf("frontmatter fence never closes")
	}

	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return fm, "", false, fmt.Errorf("parse digest frontmatter: %w", err)
	}

	body := rest[end+len(frontmatterFence)+2:]
	return fm, body, true, nil
}

// bodySection is one topic group as it appears in the body region.
type bodySection struct {
	topic  string
	blocks []string
}

// parseBody splits the body region into topic sections and entry blocks.
func parseBody(body string) ([]bodySection, error) {
	headings := headingPattern.FindAllStringSubmatchIndex(body, -1)
	if len(headings) == 0 {
		return nil, fmt.Errorf("digest body has no topic sections")
	}

	sections := make([]bodySection, 0, len(headings))
	for i, h := range headings {
		contentStart := h[1]
		contentEnd := len(body)
		if i+1 < len(headings) {
			contentEnd = headings[i+1][0]
		}

		sections = append(sections, bodySection{
			topic:  stripLabel(body[h[2]:h[3]]),
			blocks: splitBlocks(body[contentStart:contentEnd]),
		})
	}

	return sections, nil
}

// splitBlocks returns the entry blocks of one section in order.
func splitBlocks(content string) []string {
	starts := blockStartPattern.FindAllStringIndex(content, -1)
	blocks := make([]string, 0, len(starts))
	for i, loc := range starts {
		end := len(content)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		block := strings.TrimSpace(content[loc[0]:end])
		if block != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

// stripLabel removes the display marker from a section heading. The marker is
// a leading non-word token (emoji); topic names themselves start with a
// letter or digit.
func stripLabel(heading string) string {
	fields := strings.Fields(heading)
	if len(fields) > 1 && !startsWordLike(fields[0]) {
		return strings.Join(fields[1:], " ")
	}
	return strings.TrimSpace(heading)
}

func startsWordLike(s string) bool {
	for _, r := range s {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}
	return false
}

// documentFromBody recovers a document with no header region. Topics come
// from section grouping; ids from per-block source markers, or a stable
// content hash for blocks written before markers existed.
func documentFromBody(body string, sections []bodySection) (*Document, error) {
	doc := &Document{}
	if m := titleDatePattern.FindStringSubmatch(body); m != nil {
		doc.Date = m[1]
	}

	for _, sec := range sections {
		for _, block := range sec.blocks {
			id := ""
			if m := sourcePattern.FindStringSubmatch(block); m != nil {
				id = m[1]
			} else {
				id = legacyID(block)
			}
			doc.Entries = append(doc.Entries, Entry{
				SourceMessageID: id,
				Topic:           sec.topic,
				Block:           block,
			})
		}
	}

	if len(doc.Entries) == 0 {
		return nil, fmt.Errorf("digest body has no entries")
	}
	return doc, nil
}

// legacyID derives a stable id from block content for pre-marker documents.
func legacyID(block string) string {
	h := fnv.New32a()
	h.Write([]byte(block))
	return fmt.Sprintf("legacy-%08x", h.Sum32())
}
