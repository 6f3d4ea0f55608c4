// Package store provides the object store the pipeline reads and writes
// documents through, plus the deterministic key scheme.
package store

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// Store is a strongly consistent key-value object store: a Put followed by a
// Get on the same key observes the write.
type Store interface {
	// Get returns the object bytes, or a NOT_FOUND error
	Get(ctx context.Context, key string) ([]byte, error)

	// Put creates or replaces the object
	Put(ctx context.Context, key string, data []byte) error

	// Exists reports whether the key is present
	Exists(ctx context.Context, key string) (bool, error)

	// List returns keys with the given prefix in lexical order
	List(ctx context.Context, prefix string) ([]string, error)
}

// Key prefixes for the document families.
const (
	DigestPrefix = "digests/"
	NotePrefix   = "notes/"
	RawPrefix    = "raw/"
	HTMLPrefix   = "html/"
)

// DigestKey returns the per-day digest document key.
func DigestKey(day time.Time) string {
	return DigestPrefix + day.UTC().Format("2006-01-02") + ".md"
}

// NoteKey returns the key for a single-message note.
func NoteKey(day time.Time, subject string) string {
	return NotePrefix + day.UTC().Format("2006-01-02") + "-" + Slug(subject) + ".md"
}

// RawKey returns the key for an archived raw message.
func RawKey(messageID string) string {
	return RawPrefix + Slug(messageID) + ".eml"
}

// HTMLKey returns the key for a newsletter's retained sanitized HTML.
func HTMLKey(messageID string) string {
	return HTMLPrefix + Slug(messageID) + ".html"
}

var nonSlugPattern = regexp.MustCompile(`[^a-z0-9]+`)

const maxSlugLength = 60

// Slug sanitizes a string for use in an object key: lowercased, non
// alphanumeric runs collapsed to single dashes, bounded length.
func Slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlugPattern.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "untitled"
	}
	if len(s) > maxSlugLength {
		s = strings.Trim(s[:maxSlugLength], "-")
	}
	return s
}
