package digest

import (
	"github.com/askeland/mailfold/internal/errors"
	"github.com/askeland/mailfold/internal/topic"
)

// MergeResult is the outcome of a merge: whether the caller must write, and
// the document bytes to write when it must.
type MergeResult struct {
	ShouldWrite bool
	Document    []byte
}

// Merge folds a new entry into an existing digest document.
//
// A nil/empty existing document yields a fresh single-entry document. An
// existing document is parsed, deduplicated by message id (re-delivery is a
// silent no-op, never an error), appended to, and re-rendered with the full
// topic-priority re-sort. A parse failure is surfaced so the caller never
// overwrites previously aggregated entries with only the new one.
func Merge(existing []byte, date string, entry Entry, topics *topic.Set) (MergeResult, error) {
	if len(existing) == 0 {
		doc := &Document{Date: date, Entries: []Entry{entry}}
		rendered, err := Render(doc, topics)
		if err != nil {
			return MergeResult{}, errors.NewInternal(err)
		}
		return MergeResult{ShouldWrite: true, Document: rendered}, nil
	}

	doc, err := Parse(existing)
	if err != nil {
		return MergeResult{}, err
	}

	if doc.ContainsID(entry.SourceMessageID) {
		return MergeResult{ShouldWrite: false, Document: existing}, nil
	}

	doc.Entries = append(doc.Entries, entry)
	if doc.Date == "" {
		doc.Date = date
	}

	rendered, err := Render(doc, topics)
	if err != nil {
		return MergeResult{}, errors.NewInternal(err)
	}
	return MergeResult{ShouldWrite: true, Document: rendered}, nil
}
