// Package store persists records durably: a primary SQLite document store
// with transparent failover to a local capped fallback log. Callers cannot
// tell which path served a write; both return the same stored form.
package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yupi/agentcore/internal/record"
)

// Primary is the durable document backend.
type Primary interface {
	SaveRecord(r record.Stored) error
	RecentRecords(c record.Collection, limit int) ([]record.Stored, error)
}

// Embedder produces an embedding vector for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store routes record writes and reads, deciding per call whether the
// primary or the fallback path serves them.
type Store struct {
	primary  Primary
	fallback *Fallback
	embedder Embedder
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Store. embedder may be nil, in which case records are
// saved without embeddings.
func New(primary Primary, fallback *Fallback, embedder Embedder, logger *slog.Logger) *Store {
	return &Store{
		primary:  primary,
		fallback: fallback,
		embedder: embedder,
		logger:   logger,
		now:      time.Now,
	}
}

// Save validates and persists a payload, returning the stored record. The
// envelope (id, creation time) is stamped here. Embedding enrichment is
// best-effort: a failure is logged and the write proceeds without a vector.
// A primary failure falls through to the fallback log unless it is a
// ConfigurationError, which is surfaced instead of retried.
func (s *Store) Save(ctx context.Context, p record.Payload, source string) (record.Stored, error) {
	if err := p.Validate(); err != nil {
		return record.Stored{}, err
	}

	doc := p.Doc()
	stored := record.Stored{
		Envelope: record.Envelope{
			ID:         uuid.NewString(),
			Collection: p.Collection(),
			CreatedAt:  s.now().UTC(),
			Source:     source,
		},
		Doc: doc,
	}

	if s.embedder != nil {
		vec, err := s.embedder.Embed(ctx, doc.Text())
		if err != nil {
			s.logger.Warn("embedding failed, saving without vector", "collection", stored.Collection, "error", err)
		} else {
			stored.Embedding = vec
		}
	}

	err := s.primary.SaveRecord(stored)
	if err == nil {
		return stored, nil
	}
	var cerr *ConfigurationError
	if errors.As(err, &cerr) {
		return record.Stored{}, err
	}

	s.logger.Warn("primary store unavailable, using fallback log", "collection", stored.Collection, "error", err)

	fb, err := s.fallback.Append(stored.Collection, doc, source)
	if err != nil {
		return record.Stored{}, err
	}
	return fb, nil
}

// QueryRecent returns up to limit records of a collection, newest first.
// A primary failure falls through to the fallback log.
func (s *Store) QueryRecent(ctx context.Context, c record.Collection, limit int) ([]record.Stored, error) {
	results, err := s.primary.RecentRecords(c, limit)
	if err == nil {
		return results, nil
	}
	var cerr *ConfigurationError
	if errors.As(err, &cerr) {
		return nil, err
	}

	s.logger.Warn("primary store unavailable, reading fallback log", "collection", c, "error", err)
	return s.fallback.Recent(c, limit)
}
