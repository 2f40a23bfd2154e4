package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/phrasemine/pkg/phrasemine"
	"github.com/cognicore/phrasemine/pkg/phrasemine/internalerr"
	"github.com/cognicore/phrasemine/pkg/phrasemine/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db  *sql.DB
	ids *store.IDs
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &sqliteStore{db: db, ids: store.NewIDs()}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	urls TEXT NOT NULL,
	failed TEXT NOT NULL,
	record_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	description TEXT NOT NULL,
	sentence_context TEXT NOT NULL,
	phrase_type TEXT NOT NULL,
	language TEXT NOT NULL,
	location TEXT NOT NULL,
	osm_tag_key TEXT NOT NULL DEFAULT '',
	osm_tag_value TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL,
	coordinates TEXT NOT NULL DEFAULT '',
	extracted_at TEXT NOT NULL,
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_records_run ON records(run_id);
CREATE INDEX IF NOT EXISTS idx_records_source ON records(source);
CREATE INDEX IF NOT EXISTS idx_records_type ON records(phrase_type);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun inserts the run row and every record in one transaction
func (s *sqliteStore) SaveRun(ctx context.Context, run store.Run, records []phrasemine.ExtractedRecord) error {
	if run.ID == "" {
		return fmt.Errorf("save run: empty id: %w", internalerr.ErrInvalidInput)
	}
	urls, err := json.Marshal(nonNil(run.URLs))
	if err != nil {
		return err
	}
	failed, err := json.Marshal(nonNil(run.Failed))
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (id, started_at, finished_at, urls, failed, record_count)
VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		string(urls),
		string(failed),
		len(records),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO records (id, run_id, description, sentence_context, phrase_type, language, location,
	osm_tag_key, osm_tag_value, source, coordinates, extracted_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			s.ids.New(),
			run.ID,
			r.Description,
			r.SentenceContext,
			string(r.PhraseType),
			r.Language,
			r.Location,
			r.OSMTagKey,
			r.OSMTagValue,
			r.Source,
			r.Coordinates,
			r.ExtractedAtString(),
		); err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
	}

	return tx.Commit()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// GetRun returns a run by ID
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, started_at, finished_at, urls, failed, record_count FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return run, err
}

// ListRuns returns runs newest first
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	query := `SELECT id, started_at, finished_at, urls, failed, record_count FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (store.Run, error) {
	var (
		run               store.Run
		started, finished string
		urls, failed      string
	)
	if err := sc.Scan(&run.ID, &started, &finished, &urls, &failed, &run.Records); err != nil {
		return store.Run{}, err
	}
	var err error
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return store.Run{}, fmt.Errorf("run %s started_at: %w", run.ID, err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return store.Run{}, fmt.Errorf("run %s finished_at: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(urls), &run.URLs); err != nil {
		return store.Run{}, fmt.Errorf("run %s urls: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(failed), &run.Failed); err != nil {
		return store.Run{}, fmt.Errorf("run %s failed: %w", run.ID, err)
	}
	return run, nil
}

const recordColumns = `description, sentence_context, phrase_type, language, location,
	osm_tag_key, osm_tag_value, source, coordinates, extracted_at`

// RunRecords returns a run's records in insertion order
func (s *sqliteStore) RunRecords(ctx context.Context, runID string) ([]phrasemine.ExtractedRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

// RecordsBySource returns records for one source across runs, oldest first
func (s *sqliteStore) RecordsBySource(ctx context.Context, source string, limit int) ([]phrasemine.ExtractedRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE source = ? ORDER BY id`
	args := []any{source}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]phrasemine.ExtractedRecord, error) {
	defer rows.Close()

	var out []phrasemine.ExtractedRecord
	for rows.Next() {
		var (
			r          phrasemine.ExtractedRecord
			phraseType string
			at         string
		)
		if err := rows.Scan(
			&r.Description,
			&r.SentenceContext,
			&phraseType,
			&r.Language,
			&r.Location,
			&r.OSMTagKey,
			&r.OSMTagValue,
			&r.Source,
			&r.Coordinates,
			&at,
		); err != nil {
			return nil, err
		}
		r.PhraseType = phrasemine.PhraseType(phraseType)
		ts, err := time.ParseInLocation(phrasemine.TimestampLayout, at, time.Local)
		if err != nil {
			return nil, fmt.Errorf("extracted_at %q: %w", at, err)
		}
		r.ExtractedAt = ts
		out = append(out, r)
	}
	return out, rows.Err()
}

// PhraseCounts returns the k most frequent phrases of a type across all runs
func (s *sqliteStore) PhraseCounts(ctx context.Context, phraseType phrasemine.PhraseType, k int) ([]store.PhraseCount, error) {
	query := `
SELECT MIN(description), COUNT(*) AS c
FROM records
WHERE phrase_type = ?
GROUP BY LOWER(description)
ORDER BY c DESC, LOWER(description) ASC`
	args := []any{string(phraseType)}
	if k > 0 {
		query += ` LIMIT ?`
		args = append(args, k)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.PhraseCount
	for rows.Next() {
		var pc store.PhraseCount
		if err := rows.Scan(&pc.Phrase, &pc.Count); err != nil {
			return nil, err
		}
		out = append(out, pc)
	}
	return out, rows.Err()
}
