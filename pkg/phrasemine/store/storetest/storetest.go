// Package storetest holds behaviour tests shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cognicore/phrasemine/pkg/phrasemine"
	"github.com/cognicore/phrasemine/pkg/phrasemine/internalerr"
	"github.com/cognicore/phrasemine/pkg/phrasemine/store"
)

const (
	srcMosque = "https://en.wikipedia.org/wiki/Faisal_Mosque"
	srcHills  = "https://en.wikipedia.org/wiki/Margalla_Hills_National_Park"
)

var at = time.Date(2024, 2, 3, 4, 5, 6, 789000000, time.Local)

func record(desc string, typ phrasemine.PhraseType, src string) phrasemine.ExtractedRecord {
	return phrasemine.ExtractedRecord{
		Description:     desc,
		SentenceContext: "context for " + desc,
		PhraseType:      typ,
		Language:        phrasemine.DefaultLanguage,
		Location:        phrasemine.DefaultLocation,
		Source:          src,
		ExtractedAt:     at,
	}
}

// Run exercises st against the store.Store contract. st must be empty.
func Run(t *testing.T, st store.Store) {
	t.Helper()
	ctx := context.Background()
	ids := store.NewIDs()

	first := store.Run{
		ID:         ids.New(),
		StartedAt:  at,
		FinishedAt: at.Add(5 * time.Second),
		URLs:       []string{srcMosque, srcHills},
		Failed:     []string{srcHills},
	}
	firstRecords := []phrasemine.ExtractedRecord{
		record("beautiful mosque", phrasemine.PhraseAdjectiveNoun, srcMosque),
		record("The beautiful mosque", phrasemine.PhraseAdjectiveNoun, srcMosque),
		record("the city", phrasemine.PhraseNoun, srcMosque),
	}
	if err := st.SaveRun(ctx, first, firstRecords); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	second := store.Run{
		ID:         ids.New(),
		StartedAt:  at.Add(time.Hour),
		FinishedAt: at.Add(time.Hour + time.Second),
		URLs:       []string{srcHills},
	}
	secondRecords := []phrasemine.ExtractedRecord{
		record("Beautiful mosque", phrasemine.PhraseAdjectiveNoun, srcHills),
		record("green hills", phrasemine.PhraseAdjectiveNoun, srcHills),
	}
	if err := st.SaveRun(ctx, second, secondRecords); err != nil {
		t.Fatalf("SaveRun second: %v", err)
	}

	t.Run("GetRun", func(t *testing.T) {
		got, err := st.GetRun(ctx, first.ID)
		if err != nil {
			t.Fatalf("GetRun: %v", err)
		}
		if got.Records != 3 {
			t.Errorf("Records = %d, want 3", got.Records)
		}
		if len(got.URLs) != 2 || len(got.Failed) != 1 || got.Failed[0] != srcHills {
			t.Errorf("URLs/Failed = %v/%v", got.URLs, got.Failed)
		}
		if !got.StartedAt.Equal(first.StartedAt) || !got.FinishedAt.Equal(first.FinishedAt) {
			t.Errorf("times = %v..%v", got.StartedAt, got.FinishedAt)
		}

		if _, err := st.GetRun(ctx, "missing"); !errors.Is(err, internalerr.ErrNotFound) {
			t.Errorf("missing run: got %v, want ErrNotFound", err)
		}
	})

	t.Run("ListRuns", func(t *testing.T) {
		runs, err := st.ListRuns(ctx, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(runs) != 2 || runs[0].ID != second.ID || runs[1].ID != first.ID {
			t.Errorf("ListRuns should be newest first, got %d runs", len(runs))
		}
		limited, err := st.ListRuns(ctx, 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(limited) != 1 {
			t.Errorf("limit ignored: %d runs", len(limited))
		}
	})

	t.Run("RunRecords", func(t *testing.T) {
		recs, err := st.RunRecords(ctx, first.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(recs) != 3 {
			t.Fatalf("RunRecords = %d, want 3", len(recs))
		}
		for i, r := range recs {
			if r.Description != firstRecords[i].Description {
				t.Errorf("record %d = %q, want insertion order", i, r.Description)
			}
			if r.ExtractedAtString() != firstRecords[i].ExtractedAtString() {
				t.Errorf("record %d extracted_at = %s", i, r.ExtractedAtString())
			}
			if r.OSMTagKey != "" || r.Coordinates != "" {
				t.Errorf("reserved fields should round-trip empty: %+v", r)
			}
		}
	})

	t.Run("RecordsBySource", func(t *testing.T) {
		recs, err := st.RecordsBySource(ctx, srcHills, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(recs) != 2 {
			t.Errorf("RecordsBySource = %d, want 2", len(recs))
		}
		one, err := st.RecordsBySource(ctx, srcMosque, 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(one) != 1 || one[0].Description != "beautiful mosque" {
			t.Errorf("limited RecordsBySource = %+v", one)
		}
	})

	t.Run("PhraseCounts", func(t *testing.T) {
		counts, err := st.PhraseCounts(ctx, phrasemine.PhraseAdjectiveNoun, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(counts) != 3 {
			t.Fatalf("PhraseCounts = %+v, want 3 distinct phrases", counts)
		}
		if counts[0].Count != 2 || counts[0].Phrase != "Beautiful mosque" {
			t.Errorf("top phrase = %+v, want case-insensitive merge across runs", counts[0])
		}
		top, err := st.PhraseCounts(ctx, phrasemine.PhraseNoun, 5)
		if err != nil {
			t.Fatal(err)
		}
		if len(top) != 1 || top[0].Phrase != "the city" {
			t.Errorf("noun phrase counts = %+v", top)
		}
	})

	t.Run("RejectsEmptyID", func(t *testing.T) {
		err := st.SaveRun(ctx, store.Run{}, nil)
		if !errors.Is(err, internalerr.ErrInvalidInput) {
			t.Errorf("empty id: got %v, want ErrInvalidInput", err)
		}
	})
}
