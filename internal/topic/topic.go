package topic

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/askeland/mailfold/internal/config"
)

// Topic is one label from the closed topic enumeration.
type Topic struct {
	// Name is the canonical label, e.g. "Design"
	Name string

	// Label is the display marker used in digest section headings
	Label string
}

// Heading returns the digest section heading text for this topic.
func (t Topic) Heading() string {
	if t.Label == "" {
		return t.Name
	}
	return t.Label + " " + t.Name
}

// rule is one compiled subject-keyword rule.
type rule struct {
	topic   Topic
	pattern *regexp.Regexp
}

// Set is the closed, ordered topic enumeration with its classification rules.
// Built once from configuration; immutable afterwards, safe for concurrent use.
type Set struct {
	topics    []Topic
	index     map[string]int // lowercased name -> priority position
	rules     []rule
	overrides map[string]Topic // normalized sender name -> topic
	fallback  Topic
}

// NewSet builds a topic set from configuration.
// Returns an error when the default topic is not part of the enumeration or a
// sender override references an unknown topic.
func NewSet(cfg *config.Config) (*Set, error) {
	if len(cfg.Topics) == 0 {
		return nil, fmt.Errorf("topic table is empty")
	}

	s := &Set{
		index:     make(map[string]int, len(cfg.Topics)),
		overrides: make(map[string]Topic, len(cfg.SenderTopics)),
	}

	for i, spec := range cfg.Topics {
		t := Topic{Name: spec.Name, Label: spec.Label}
		s.topics = append(s.topics, t)
		s.index[strings.ToLower(spec.Name)] = i

		if len(spec.Keywords) > 0 {
			pattern, err := compileKeywords(spec.Keywords)
			if err != nil {
				return nil, fmt.Errorf("topic %s: %w", spec.Name, err)
			}
			s.rules = append(s.rules, rule{topic: t, pattern: pattern})
		}
	}

	fallback, ok := s.Lookup(cfg.DefaultTopic)
	if !ok {
		return nil, fmt.Errorf("default topic %q is not in the topic table", cfg.DefaultTopic)
	}
	s.fallback = fallback

	for sender, name := range cfg.SenderTopics {
		t, ok := s.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("sender override %q references unknown topic %q", sender, name)
		}
		s.overrides[normalize(sender)] = t
	}

	return s, nil
}

// compileKeywords builds a single case-insensitive word-boundary alternation.
func compileKeywords(keywords []string) (*regexp.Regexp, error) {
	quoted := make([]string, len(keywords))
	for i, kw := range keywords {
		quoted[i] = regexp.QuoteMeta(strings.TrimSpace(kw))
	}
	return regexp.Compile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// normalize lowercases, trims, and collapses internal whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Classify assigns a topic to a message. The sender override map takes
// precedence; otherwise the subject is tested against the ordered keyword
// rules; otherwise the default topic applies. Pure for fixed configuration.
func (s *Set) Classify(senderName, subject string) Topic {
	if t, ok := s.overrides[normalize(senderName)]; ok {
		return t
	}
	for _, r := range s.rules {
		if r.pattern.MatchString(subject) {
			return r.topic
		}
	}
	return s.fallback
}

// Lookup returns the topic with the given name (case-insensitive).
func (s *Set) Lookup(name string) (Topic, bool) {
	i, ok := s.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Topic{}, false
	}
	return s.topics[i], true
}

// Priority returns the section ordering position for a topic name.
// Unknown names sort after every known topic.
func (s *Set) Priority(name string) int {
	if i, ok := s.index[strings.ToLower(strings.TrimSpace(name))]; ok {
		return i
	}
	return len(s.topics)
}

// Fallback returns the default topic.
func (s *Set) Fallback() Topic {
	return s.fallback
}

// All returns the enumeration in priority order.
func (s *Set) All() []Topic {
	out := make([]Topic, len(s.topics))
	copy(out, s.topics)
	return out
}
