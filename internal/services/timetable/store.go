// Package timetable implements the durable, operator-editable schedule
// store: a single JSON file of entries kept ordered by time of day.
package timetable

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
)

const (
	// DefaultDir is the directory used when none is configured.
	DefaultDir = ".timetables"
	// DefaultName is the file name (without extension) used when none is
	// configured.
	DefaultName = "timetable"
	// FormatJSON is the reference timetable file format.
	FormatJSON = "json"
)

// Store is a file-backed TimetableStore. All rewrites go through a
// temp-file-then-rename so a concurrent reader never observes a truncated
// file. The store assumes a single owning process; there is no cross-process
// lock.
type Store struct {
	path      string
	logger    arbor.ILogger
	mu        sync.Mutex
	lastWrite atomic.Int64
}

// New creates a Store for dir/name.format, lazily bootstrapping the
// directory and file. An unsupported format fails construction with
// ErrUnsupportedFormat; only JSON is implemented.
func New(dir, name, format string, logger arbor.ILogger) (*Store, error) {
	if format != FormatJSON {
		return nil, models.NewError(models.ErrUnsupportedFormat, "timetable format %q is not supported", format)
	}
	if dir == "" {
		dir = DefaultDir
	}
	if name == "" {
		name = DefaultName
	}

	if _, err := EnsureDir(dir); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, name+"."+format)
	s := &Store{
		path:   path,
		logger: logger,
	}

	created, err := EnsureFile(path)
	if err != nil {
		return nil, err
	}
	if created {
		if err := s.rewrite(nil); err != nil {
			return nil, err
		}
		logger.Info().Str("path", path).Msg("Timetable file created")
	}

	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// LastWrite returns the time of the store's own most recent rewrite.
// File watchers use it to tell the store's writes apart from external
// edits.
func (s *Store) LastWrite() time.Time {
	nanos := s.lastWrite.Load()
	if nanos == 0 {
		return time.Time{}
	}
	return time.Unix(0, nanos)
}

// Get returns the entries ordered by time of day. A missing file is
// recreated empty; an unreadable or corrupt file degrades to an empty
// schedule with a warning rather than failing the caller.
func (s *Store) Get() ([]models.ScheduleEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Add validates and appends one entry, re-sorts, and atomically rewrites
// the backing file. Nothing is persisted when validation fails.
func (s *Store) Add(entry models.ScheduleEntry) error {
	return s.AddBatch([]models.ScheduleEntry{entry})
}

// AddBatch validates every entry up front; the whole batch is rejected on
// the first invalid entry so a failed call never partially applies.
func (s *Store) AddBatch(entries []models.ScheduleEntry) error {
	for _, entry := range entries {
		if err := entry.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := s.load()
	if err != nil {
		return err
	}

	content = append(content, entries...)
	sortEntries(content)

	if err := s.rewrite(content); err != nil {
		return err
	}

	s.logger.Info().
		Int("added", len(entries)).
		Int("total", len(content)).
		Msg("Timetable entries added")
	return nil
}

// Remove deletes every entry matching the (query, time) pair. The scan
// always runs to completion; removing an absent entry is a no-op.
func (s *Store) Remove(entry models.ScheduleEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := s.load()
	if err != nil {
		return err
	}

	kept := content[:0]
	for _, e := range content {
		if !e.Matches(entry) {
			kept = append(kept, e)
		}
	}

	removed := len(content) - len(kept)
	if removed == 0 {
		s.logger.Debug().
			Str("query", entry.Query).
			Str("time", entry.Time).
			Msg("Timetable entry not found, nothing removed")
		return nil
	}

	if err := s.rewrite(kept); err != nil {
		return err
	}

	s.logger.Info().
		Str("query", entry.Query).
		Str("time", entry.Time).
		Int("removed", removed).
		Msg("Timetable entries removed")
	return nil
}

// load reads and decodes the backing file. Callers hold s.mu.
func (s *Store) load() ([]models.ScheduleEntry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			// Recreate lazily; someone deleted the file out from under us.
			if err := s.rewrite(nil); err != nil {
				return nil, err
			}
			return []models.ScheduleEntry{}, nil
		}
		return nil, fmt.Errorf("failed to read timetable file: %w", err)
	}

	if len(data) == 0 {
		return []models.ScheduleEntry{}, nil
	}

	var entries []models.ScheduleEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn().
			Err(err).
			Str("path", s.path).
			Msg("Timetable file is corrupt, treating as empty")
		return []models.ScheduleEntry{}, nil
	}

	return entries, nil
}

// rewrite atomically replaces the backing file with the encoded entries.
func (s *Store) rewrite(entries []models.ScheduleEntry) error {
	if entries == nil {
		entries = []models.ScheduleEntry{}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode timetable: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp timetable file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp timetable file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp timetable file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to chmod temp timetable file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace timetable file: %w", err)
	}

	s.lastWrite.Store(time.Now().UnixNano())
	return nil
}

// sortEntries orders entries by time of day ascending. The sort is stable
// so entries sharing a time keep their insertion order. Times are strict
// zero-padded HH:MM, so lexical order is chronological order.
func sortEntries(entries []models.ScheduleEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time < entries[j].Time
	})
}

// compile-time interface check
var _ interfaces.TimetableStore = (*Store)(nil)
