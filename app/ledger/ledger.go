package ledger

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Ledger keeps the durable record of already-posted videos. All entries are
// held in memory and the whole file is rewritten on every Record call, so a
// crash immediately after Record returns cannot lose the entry.
type Ledger struct {
	path    string
	entries []Entry
	index   map[string]int // source URL -> position in entries
	mu      sync.RWMutex
}

func NewLedger(path string) *Ledger {
	return &Ledger{
		path:  path,
		index: make(map[string]int),
	}
}

// Run loads the ledger file. A missing or empty file means no entries yet.
// An unreadable or corrupt file is logged and replaced by an empty in-memory
// ledger: already-posted videos may then be posted again, which is preferred
// over wedging the whole service on one bad write.
func (l *Ledger) Run() error {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		slog.Warn("Ledger file unreadable, starting with empty ledger", "path", l.path, "error", err)
		return nil
	}

	if len(data) == 0 {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		slog.Warn("Ledger file corrupt, starting with empty ledger", "path", l.path, "error", err)
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = entries
	for i, entry := range entries {
		if _, ok := l.index[entry.SourceURL]; !ok {
			l.index[entry.SourceURL] = i
		}
	}

	slog.Debug("Ledger loaded", "path", l.path, "entries", len(entries))

	return nil
}

// Contains reports whether a video with the given source URL has already
// been recorded.
func (l *Ledger) Contains(sourceURL string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.index[sourceURL]
	return ok
}

// Record appends an entry and persists the full ledger before returning.
// Recording a source URL that is already present is a no-op, so concurrent
// double-processing of the same video cannot produce duplicate entries.
// A persistence failure keeps the entry in memory and returns the error;
// the caller decides whether running in-memory-only is acceptable.
func (l *Ledger) Record(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.index[entry.SourceURL]; ok {
		slog.Debug("Ledger entry already recorded, skipping", "url", entry.SourceURL)
		return nil
	}

	l.entries = append(l.entries, entry)
	l.index[entry.SourceURL] = len(l.entries) - 1

	if err := l.save(); err != nil {
		return fmt.Errorf("failed to persist ledger: %w", err)
	}

	return nil
}

// GetCount returns the number of recorded entries.
func (l *Ledger) GetCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// GetEntry returns the recorded entry for a source URL, if any.
func (l *Ledger) GetEntry(sourceURL string) (*Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, ok := l.index[sourceURL]
	if !ok {
		return nil, false
	}
	entry := l.entries[i]
	return &entry, true
}

// GetRecentEntries returns up to limit entries, newest first.
func (l *Ledger) GetRecentEntries(limit int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit <= 0 || limit > len(l.entries) {
		limit = len(l.entries)
	}

	recent := make([]Entry, 0, limit)
	for i := len(l.entries) - 1; i >= len(l.entries)-limit; i-- {
		recent = append(recent, l.entries[i])
	}
	return recent
}

// save writes the full entry list to a temporary file and renames it into
// place, so readers never observe a partially written ledger.
func (l *Ledger) save() error {
	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entries: %w", err)
	}

	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(l.path)+".tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), l.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace ledger file: %w", err)
	}

	return nil
}
