package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cognicore/phrasemine/pkg/phrasemine"
	"github.com/cognicore/phrasemine/pkg/phrasemine/internalerr"
	"github.com/cognicore/phrasemine/pkg/phrasemine/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu      sync.RWMutex
	runs    map[string]store.Run
	order   []string // run IDs in save order
	records map[string][]phrasemine.ExtractedRecord
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		runs:    make(map[string]store.Run),
		records: make(map[string][]phrasemine.ExtractedRecord),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveRun stores a copy of the run and its records.
func (s *Store) SaveRun(ctx context.Context, run store.Run, records []phrasemine.ExtractedRecord) error {
	if run.ID == "" {
		return fmt.Errorf("save run: empty id: %w", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[run.ID]; ok {
		return fmt.Errorf("save run: duplicate id %s: %w", run.ID, internalerr.ErrInvalidInput)
	}
	run.URLs = append([]string{}, run.URLs...)
	run.Failed = append([]string{}, run.Failed...)
	run.Records = len(records)
	s.runs[run.ID] = run
	s.order = append(s.order, run.ID)
	s.records[run.ID] = append([]phrasemine.ExtractedRecord(nil), records...)
	return nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return copyRun(run), nil
}

// ListRuns returns runs newest first. IDs are ULIDs, so the newest sorts last.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := append([]string(nil), s.order...)
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]store.Run, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyRun(s.runs[id]))
	}
	return out, nil
}

func copyRun(r store.Run) store.Run {
	r.URLs = append([]string{}, r.URLs...)
	r.Failed = append([]string{}, r.Failed...)
	return r
}

// RunRecords returns a run's records in insertion order.
func (s *Store) RunRecords(ctx context.Context, runID string) ([]phrasemine.ExtractedRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]phrasemine.ExtractedRecord(nil), s.records[runID]...), nil
}

// RecordsBySource returns records for one source across runs, oldest first.
func (s *Store) RecordsBySource(ctx context.Context, source string, limit int) ([]phrasemine.ExtractedRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := append([]string(nil), s.order...)
	sort.Strings(ids)

	var out []phrasemine.ExtractedRecord
	for _, id := range ids {
		for _, r := range s.records[id] {
			if r.Source != source {
				continue
			}
			out = append(out, r)
			if limit > 0 && len(out) == limit {
				return out, nil
			}
		}
	}
	return out, nil
}

// PhraseCounts counts phrases case-insensitively across all runs. The
// reported form is the smallest surface variant, matching the SQLite store.
func (s *Store) PhraseCounts(ctx context.Context, phraseType phrasemine.PhraseType, k int) ([]store.PhraseCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]*store.PhraseCount)
	for _, recs := range s.records {
		for _, r := range recs {
			if r.PhraseType != phraseType {
				continue
			}
			key := strings.ToLower(r.Description)
			pc, ok := counts[key]
			if !ok {
				pc = &store.PhraseCount{Phrase: r.Description}
				counts[key] = pc
			}
			if r.Description < pc.Phrase {
				pc.Phrase = r.Description
			}
			pc.Count++
		}
	}

	out := make([]store.PhraseCount, 0, len(counts))
	for _, pc := range counts {
		out = append(out, *pc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return strings.ToLower(out[i].Phrase) < strings.ToLower(out[j].Phrase)
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out, nil
}
