package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/yupi/agentcore/internal/record"
)

// Fallback is a local capped append log, one JSON file per collection,
// used when the primary store is unavailable. Entries are kept newest
// first so reads need no sorting.
type Fallback struct {
	dir    string
	cap    int
	window time.Duration
	now    func() time.Time

	mu  sync.Mutex // guards the read-modify-write cycle on the log files
	seq uint64     // distinguishes ids minted within the same millisecond
}

// NewFallback creates a fallback log rooted at dir. cap bounds the number
// of entries kept per collection; window is the duplicate-suppression
// horizon against the most recent entry.
func NewFallback(dir string, cap int, window time.Duration) *Fallback {
	return &Fallback{
		dir:    dir,
		cap:    cap,
		window: window,
		now:    time.Now,
	}
}

func (f *Fallback) path(c record.Collection) string {
	return filepath.Join(f.dir, string(c)+".json")
}

// Append writes a record to the collection's log and returns it in stored
// form. When the newest existing entry carries the same document and is
// younger than the dedup window, no new entry is written and the existing
// one is returned. The oldest entry is evicted once the log exceeds its cap.
func (f *Fallback) Append(c record.Collection, doc record.Doc, source string) (record.Stored, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read(c)
	if err != nil {
		return record.Stored{}, err
	}

	now := f.now().UTC()
	if len(entries) > 0 {
		latest := entries[0]
		if sameDoc(latest.Doc, doc) && now.Sub(latest.CreatedAt) < f.window {
			return latest, nil
		}
	}

	f.seq++
	stored := record.Stored{
		Envelope: record.Envelope{
			ID:         fmt.Sprintf("local_%d_%d", now.UnixMilli(), f.seq),
			Collection: c,
			CreatedAt:  now,
			Source:     source,
		},
		Doc: doc,
	}

	entries = append([]record.Stored{stored}, entries...)
	if len(entries) > f.cap {
		entries = entries[:f.cap]
	}

	if err := f.write(c, entries); err != nil {
		return record.Stored{}, err
	}
	return stored, nil
}

// Recent returns up to limit entries of a collection, newest first.
func (f *Fallback) Recent(c record.Collection, limit int) ([]record.Stored, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read(c)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (f *Fallback) read(c record.Collection) ([]record.Stored, error) {
	raw, err := os.ReadFile(f.path(c))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading fallback log: %w", err)
	}

	var entries []record.Stored
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decoding fallback log: %w", err)
	}
	return entries, nil
}

func (f *Fallback) write(c record.Collection, entries []record.Stored) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return &ConfigurationError{Err: fmt.Errorf("creating fallback directory: %w", err)}
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding fallback log: %w", err)
	}

	tmp := f.path(c) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("writing fallback log: %w", err)
	}
	if err := os.Rename(tmp, f.path(c)); err != nil {
		return fmt.Errorf("replacing fallback log: %w", err)
	}
	return nil
}

// sameDoc reports whether two documents are duplicates for the purposes of
// the dedup window. Action items are compared by value.
func sameDoc(a, b record.Doc) bool {
	if a.Title != b.Title || a.Content != b.Content || a.Description != b.Description {
		return false
	}
	if a.Date != b.Date || a.StartTime != b.StartTime || a.EndTime != b.EndTime || a.DueDate != b.DueDate {
		return false
	}
	if len(a.ActionItems) != len(b.ActionItems) {
		return false
	}
	for i := range a.ActionItems {
		if a.ActionItems[i] != b.ActionItems[i] {
			return false
		}
	}
	return true
}
