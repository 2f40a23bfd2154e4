package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/phrasemine/pkg/phrasemine"
)

// Store is an append-only archive of extraction runs. Records are never
// deduplicated across runs.
type Store interface {
	Close() error

	// SaveRun writes a run and its records atomically. run.ID must be set.
	SaveRun(ctx context.Context, run Run, records []phrasemine.ExtractedRecord) error
	// GetRun returns internalerr.ErrNotFound for an unknown ID.
	GetRun(ctx context.Context, id string) (Run, error)
	// ListRuns returns runs newest first; limit <= 0 means all.
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	RunRecords(ctx context.Context, runID string) ([]phrasemine.ExtractedRecord, error)
	RecordsBySource(ctx context.Context, source string, limit int) ([]phrasemine.ExtractedRecord, error)
	// PhraseCounts counts phrases of one type across all runs, case-insensitively.
	PhraseCounts(ctx context.Context, phraseType phrasemine.PhraseType, k int) ([]PhraseCount, error)
}

// Run describes one batch execution.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	URLs       []string
	Failed     []string
	Records    int
}

// PhraseCount is a phrase with its archived frequency.
type PhraseCount struct {
	Phrase string
	Count  int64
}

// IDs generates monotonic ULIDs for runs and records.
type IDs struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewIDs creates a generator seeded from crypto/rand.
func NewIDs() *IDs {
	return &IDs{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// New returns a ULID string that sorts after every earlier one from g.
func (g *IDs) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Now(), g.entropy).String()
}

// Time extracts the creation time encoded in an ID.
func Time(id string) (time.Time, error) {
	u, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}
