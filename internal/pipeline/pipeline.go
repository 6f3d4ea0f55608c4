// Package pipeline orchestrates the per-message capture pass: decode, raw
// archive, content normalization, classification, and digest or note write.
package pipeline

import (
	"context"
	"crypto/rand"
	stderrors "errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/askeland/mailfold/internal/clean"
	"github.com/askeland/mailfold/internal/config"
	"github.com/askeland/mailfold/internal/digest"
	"github.com/askeland/mailfold/internal/errors"
	"github.com/askeland/mailfold/internal/message"
	"github.com/askeland/mailfold/internal/store"
	"github.com/askeland/mailfold/internal/topic"
)

// Pipeline processes inbound messages into digest entries and notes.
// Safe for concurrent use; merges to the same day's digest are serialized
// with a per-key mutex. That only covers a single process. A stricter
// deployment needs a conditional put or a single-writer queue per day key.
type Pipeline struct {
	store   store.Store
	cfg     *config.Config
	topics  *topic.Set
	cleaner *clean.Cleaner

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New builds a pipeline over the given store and configuration.
func New(st store.Store, cfg *config.Config) (*Pipeline, error) {
	topics, err := topic.NewSet(cfg)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	return &Pipeline{
		store:   st,
		cfg:     cfg,
		topics:  topics,
		cleaner: clean.NewCleaner(cfg),
		locks:   map[string]*sync.Mutex{},
	}, nil
}

// Topics exposes the compiled topic set (used by the web viewer and CLI).
func (p *Pipeline) Topics() *topic.Set {
	return p.topics
}

// Result reports what one Process call did.
type Result struct {
	MessageID  string
	Newsletter bool
	Topic      string
	Key        string
	Written    bool
}

// Process captures one raw message. The raw bytes are archived before any
// content processing so the message is never lost, even on later failures.
func (p *Pipeline) Process(ctx context.Context, raw []byte) (*Result, error) {
	msg, err := message.Decode(raw)
	if err != nil {
		// Keep the undecodable bytes reachable before failing
		_ = p.store.Put(ctx, store.RawKey(newFallbackID()), raw)
		return nil, err
	}

	if err := p.store.Put(ctx, store.RawKey(msg.ID), raw); err != nil {
		return nil, err
	}

	if msg.IsNewsletter(p.cfg.NewsletterAddresses) {
		return p.processNewsletter(ctx, msg)
	}
	return p.processNote(ctx, msg)
}

// processNewsletter runs the normalization pipeline and merges the result
// into the day's digest document.
func (p *Pipeline) processNewsletter(ctx context.Context, msg *message.Message) (*Result, error) {
	content := p.cleaner.Clean(msg.HTMLBody, msg.TextBody)

	// Retain the cleaned HTML for later full-content access
	if content.SanitizedHTML != "" {
		if err := p.store.Put(ctx, store.HTMLKey(msg.ID), []byte(content.SanitizedHTML)); err != nil {
			return nil, err
		}
	}

	t := p.topics.Classify(msg.SenderName(), msg.Subject)
	entry := digest.Entry{
		SourceMessageID: msg.ID,
		Topic:           t.Name,
		Block: digest.RenderBlock(
			msg.ID, msg.SenderName(), msg.Subject, content.BrowserLink, content.Excerpt),
	}

	key := store.DigestKey(msg.ReceivedAt)
	day := msg.ReceivedAt.UTC().Format("2006-01-02")

	lock := p.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	existing, err := p.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}
		existing = nil
	}

	merged, err := digest.Merge(existing, day, entry, p.topics)
	if err != nil {
		var fErr *errors.FoldError
		if stderrors.As(err, &fErr) {
			return nil, err
		}
		return nil, errors.NewDigestMalformed(key, err)
	}

	if merged.ShouldWrite {
		if err := p.store.Put(ctx, key, merged.Document); err != nil {
			return nil, err
		}
	}

	return &Result{
		MessageID:  msg.ID,
		Newsletter: true,
		Topic:      t.Name,
		Key:        key,
		Written:    merged.ShouldWrite,
	}, nil
}

// processNote writes a standalone markdown note for a non-newsletter message.
// An existing note for the same subject and day absorbs the re-delivery.
func (p *Pipeline) processNote(ctx context.Context, msg *message.Message) (*Result, error) {
	key := store.NoteKey(msg.ReceivedAt, msg.Subject)

	exists, err := p.store.Exists(ctx, key)
	if err != nil {
		return nil, err
	}
	if exists {
		return &Result{MessageID: msg.ID, Key: key, Written: false}, nil
	}

	content := p.cleaner.Clean(msg.HTMLBody, msg.TextBody)
	note := renderNote(msg, content.ConvertedText)

	if err := p.store.Put(ctx, key, []byte(note)); err != nil {
		return nil, err
	}

	return &Result{MessageID: msg.ID, Key: key, Written: true}, nil
}

// keyLock returns the mutex serializing writes to one digest key.
func (p *Pipeline) keyLock(key string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	lock, ok := p.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[key] = lock
	}
	return lock
}

func newFallbackID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
