package digest

import (
	"sort"

	"github.com/askeland/mailfold/internal/topic"
)

// Document is the canonical in-memory model of one day's digest. Entries are
// kept in merge order; the header and body regions of the serialized form are
// both generated from this single model on every render so they cannot
// diverge.
type Document struct {
	// Date is the digest day, formatted 2006-01-02
	Date string

	// Entries in merge (arrival) order
	Entries []Entry
}

// ContainsID reports whether a message id is already merged.
func (d *Document) ContainsID(id string) bool {
	for _, e := range d.Entries {
		if e.SourceMessageID == id {
			return true
		}
	}
	return false
}

// IDs returns the message ids in merge order.
func (d *Document) IDs() []string {
	ids := make([]string, len(d.Entries))
	for i, e := range d.Entries {
		ids[i] = e.SourceMessageID
	}
	return ids
}

// Topics returns the per-entry topic names in merge order, parallel to IDs.
func (d *Document) Topics() []string {
	topics := make([]string, len(d.Entries))
	for i, e := range d.Entries {
		topics[i] = e.Topic
	}
	return topics
}

// section is one topic group of the rendered body.
type section struct {
	topic   string
	entries []Entry
}

// sections buckets entries by topic and orders the buckets by topic priority.
// Within a bucket, merge order is preserved; unknown topics sort after every
// known topic, keeping their relative first-appearance order.
func (d *Document) sections(topics *topic.Set) []section {
	var out []section
	index := map[string]int{}

	for _, e := range d.Entries {
		i, ok := index[e.Topic]
		if !ok {
			i = len(out)
			index[e.Topic] = i
			out = append(out, section{topic: e.Topic})
		}
		out[i].entries = append(out[i].entries, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return topics.Priority(out[i].topic) < topics.Priority(out[j].topic)
	})

	return out
}
