// Package jsonl persists the corpus as one JSON-encoded thread record
// per line. This is the dataset's durable boundary format: consumers
// tolerate blank lines and let later records for a thread id supersede
// earlier ones.
package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/medforum-cli/internal/core/domain"
	"github.com/custodia-labs/medforum-cli/internal/core/ports/driven"
	"github.com/custodia-labs/medforum-cli/internal/logger"
)

// Ensure ThreadStore implements the interface.
var _ driven.ThreadStore = (*ThreadStore)(nil)

// ThreadStore stores thread records in a JSONL file. The file is the
// single source of truth; an in-memory view is rebuilt lazily and kept
// in step with writes. Replacements rewrite the file atomically (temp
// file + rename) so concurrent readers never observe a partial record.
type ThreadStore struct {
	mu        sync.RWMutex
	path      string
	loaded    bool
	order     []string
	records   map[string]domain.ThreadRecord
	malformed int
}

// NewThreadStore creates a store backed by the given file path. The
// file is created on first write; a missing file loads as empty.
func NewThreadStore(path string) (*ThreadStore, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: dataset path is required", domain.ErrConfiguration)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	return &ThreadStore{
		path:    path,
		records: make(map[string]domain.ThreadRecord),
	}, nil
}

// Path returns the dataset file path.
func (s *ThreadStore) Path() string {
	return s.path
}

// Load returns every stored record in file order, with later records
// for a thread id superseding earlier ones. The second value counts
// malformed lines skipped during the read.
func (s *ThreadStore) Load(_ context.Context) ([]domain.ThreadRecord, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return nil, 0, err
	}

	records := make([]domain.ThreadRecord, 0, len(s.order))
	for _, id := range s.order {
		records = append(records, s.records[id])
	}
	return records, s.malformed, nil
}

// Upsert inserts or replaces a record. A new thread id appends one
// line; a replacement rewrites the whole file so the replaced record
// keeps its original position. Upserting identical content is a no-op.
func (s *ThreadStore) Upsert(_ context.Context, record domain.ThreadRecord) (bool, error) {
	if record.ThreadID == "" {
		return false, domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return false, err
	}

	existing, ok := s.records[record.ThreadID]
	if ok && existing.Equal(&record) {
		logger.Debug("upsert %s: unchanged, skipping write", record.ThreadID)
		return false, nil
	}

	if !ok {
		if err := s.appendRecord(record); err != nil {
			return false, err
		}
		s.order = append(s.order, record.ThreadID)
		s.records[record.ThreadID] = record
		return true, nil
	}

	// Replacement: rewrite atomically to keep the record's position.
	s.records[record.ThreadID] = record
	if err := s.rewrite(); err != nil {
		s.records[record.ThreadID] = existing
		return false, err
	}
	return true, nil
}

// Contains reports whether a thread id is stored.
func (s *ThreadStore) Contains(_ context.Context, threadID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return false, err
	}
	_, ok := s.records[threadID]
	return ok, nil
}

// AllIDs returns the set of stored thread ids.
func (s *ThreadStore) AllIDs(_ context.Context) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}

	ids := make(map[string]struct{}, len(s.records))
	for id := range s.records {
		ids[id] = struct{}{}
	}
	return ids, nil
}

// ensureLoaded reads the file into memory once. Caller holds the lock.
func (s *ThreadStore) ensureLoaded() error {
	if s.loaded {
		return nil
	}

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.loaded = true
			return nil
		}
		return fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record domain.ThreadRecord
		if err := json.Unmarshal(line, &record); err != nil || record.ThreadID == "" {
			s.malformed++
			logger.Warn("skipping malformed dataset line: %v", err)
			continue
		}

		if _, ok := s.records[record.ThreadID]; !ok {
			s.order = append(s.order, record.ThreadID)
		}
		s.records[record.ThreadID] = record
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading dataset: %w", err)
	}

	s.loaded = true
	return nil
}

// appendRecord writes one record to the end of the file.
func (s *ThreadStore) appendRecord(record domain.ThreadRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening dataset for append: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("appending record: %w", err)
	}
	return nil
}

// rewrite dumps the in-memory view to a temp file and renames it over
// the dataset, so readers see either the old or the new file, never a
// mix. Caller holds the lock.
func (s *ThreadStore) rewrite() error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".forum_data-*.jsonl")
	if err != nil {
		return fmt.Errorf("creating temp dataset: %w", err)
	}
	tmpPath := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, id := range s.order {
		data, err := json.Marshal(s.records[id])
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("encoding record %s: %w", id, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("writing record %s: %w", id, err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flushing dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp dataset: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing dataset: %w", err)
	}
	return nil
}
