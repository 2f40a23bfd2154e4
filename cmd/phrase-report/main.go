package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/cognicore/phrasemine/pkg/phrasemine"
	"github.com/cognicore/phrasemine/pkg/phrasemine/analytics"
	"github.com/cognicore/phrasemine/pkg/phrasemine/export"
	"github.com/cognicore/phrasemine/pkg/phrasemine/store"
	"github.com/cognicore/phrasemine/pkg/phrasemine/store/sqlite"
)

// selection picks the archived records a report covers.
type selection struct {
	runID   string
	source  string
	allRuns bool
}

type report struct {
	TotalRecords  int64            `json:"total_records"`
	Sentences     int              `json:"sentences"`
	ByType        map[string]int64 `json:"by_type"`
	Sources       []sourceEntry    `json:"sources"`
	AdjNoun       []phraseEntry    `json:"top_adjective_noun"`
	NounPhrases   []phraseEntry    `json:"top_noun_phrases"`
	HeadNouns     []headEntry      `json:"head_nouns"`
	ModifierPairs []pairEntry      `json:"modifier_pairs"`
	Archive       *archiveEntry    `json:"archive,omitempty"`
}

// archiveEntry holds phrase frequencies counted by the archive across every
// run, case-insensitively.
type archiveEntry struct {
	Runs        int           `json:"runs"`
	AdjNoun     []phraseEntry `json:"top_adjective_noun"`
	NounPhrases []phraseEntry `json:"top_noun_phrases"`
}

type sourceEntry struct {
	Source        string `json:"source"`
	AdjectiveNoun int64  `json:"adjective_noun"`
	NounPhrase    int64  `json:"noun_phrase"`
}

type phraseEntry struct {
	Phrase string `json:"phrase"`
	Count  int64  `json:"count"`
}

type headEntry struct {
	Head    string  `json:"head"`
	Count   int64   `json:"count"`
	Sources int     `json:"sources"`
	Spread  float64 `json:"spread"`
}

type pairEntry struct {
	Modifier string  `json:"modifier"`
	Head     string  `json:"head"`
	Count    int64   `json:"count"`
	PMI      float64 `json:"pmi"`
}

func main() {
	var (
		inputs  = flag.String("input", "", "Comma-separated combined CSV files")
		dbPath  = flag.String("db", "", "SQLite run archive to read instead of CSV")
		runID   = flag.String("run", "", "Run ID within -db (default: latest run)")
		source  = flag.String("source", "", "Report on one source URL across all runs in -db")
		allRuns = flag.Bool("all-runs", false, "Report on every run in -db")
		limit   = flag.Int("limit", 20, "Entries per ranked list")
		minPMI  = flag.Float64("min-pmi", 0, "Minimum PMI for modifier pairs")
	)
	flag.Parse()

	if *inputs == "" && *dbPath == "" {
		log.Fatal("--input or --db required")
	}

	var r report
	if *dbPath != "" {
		ctx := context.Background()
		st, err := sqlite.OpenSQLite(ctx, *dbPath)
		if err != nil {
			log.Fatalf("open archive: %v", err)
		}
		defer st.Close()

		sel := selection{runID: *runID, source: *source, allRuns: *allRuns}
		records, err := loadFromStore(ctx, st, sel)
		if err != nil {
			log.Fatalf("load records: %v", err)
		}
		r = buildReport(records, *limit, *minPMI)
		if sel.allRuns {
			if r.Archive, err = archiveSummary(ctx, st, *limit); err != nil {
				log.Fatalf("archive counts: %v", err)
			}
		}
	} else {
		records, err := loadFromCSV(strings.Split(*inputs, ","))
		if err != nil {
			log.Fatalf("load records: %v", err)
		}
		r = buildReport(records, *limit, *minPMI)
	}

	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		log.Fatalf("marshal report: %v", err)
	}
	fmt.Println(string(out))
}

func loadFromCSV(paths []string) ([]phrasemine.ExtractedRecord, error) {
	var all []phrasemine.ExtractedRecord
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		recs, err := export.ReadRecordsFile(p)
		if err != nil {
			return nil, err
		}
		all = append(all, recs...)
	}
	return all, nil
}

func loadFromStore(ctx context.Context, st store.Store, sel selection) ([]phrasemine.ExtractedRecord, error) {
	switch {
	case sel.source != "" && sel.runID != "":
		return nil, errors.New("-run and -source cannot be combined")
	case sel.source != "":
		recs, err := st.RecordsBySource(ctx, sel.source, 0)
		if err != nil {
			return nil, err
		}
		if len(recs) == 0 {
			return nil, fmt.Errorf("no archived records from %s", sel.source)
		}
		log.Printf("Reporting on %d records from %s", len(recs), sel.source)
		return recs, nil
	case sel.allRuns:
		runs, err := st.ListRuns(ctx, 0)
		if err != nil {
			return nil, err
		}
		if len(runs) == 0 {
			return nil, errors.New("no runs in archive")
		}
		var all []phrasemine.ExtractedRecord
		for i := len(runs) - 1; i >= 0; i-- {
			recs, err := st.RunRecords(ctx, runs[i].ID)
			if err != nil {
				return nil, fmt.Errorf("run %s: %w", runs[i].ID, err)
			}
			all = append(all, recs...)
		}
		log.Printf("Reporting on %d runs (%d records)", len(runs), len(all))
		return all, nil
	}

	run, err := selectRun(ctx, st, sel.runID)
	if err != nil {
		return nil, err
	}
	if created, err := store.Time(run.ID); err == nil {
		log.Printf("Reporting on run %s from %s (%d records, %d failed URLs)",
			run.ID, created.Local().Format("2006-01-02 15:04:05"), run.Records, len(run.Failed))
	}
	return st.RunRecords(ctx, run.ID)
}

// selectRun returns the run with the given ID, or the newest run when id is
// empty.
func selectRun(ctx context.Context, st store.Store, id string) (store.Run, error) {
	if id != "" {
		return st.GetRun(ctx, id)
	}
	runs, err := st.ListRuns(ctx, 1)
	if err != nil {
		return store.Run{}, err
	}
	if len(runs) == 0 {
		return store.Run{}, errors.New("no runs in archive")
	}
	return runs[0], nil
}

func archiveSummary(ctx context.Context, st store.Store, limit int) (*archiveEntry, error) {
	runs, err := st.ListRuns(ctx, 0)
	if err != nil {
		return nil, err
	}
	a := &archiveEntry{Runs: len(runs)}
	for _, c := range []struct {
		typ phrasemine.PhraseType
		dst *[]phraseEntry
	}{
		{phrasemine.PhraseAdjectiveNoun, &a.AdjNoun},
		{phrasemine.PhraseNoun, &a.NounPhrases},
	} {
		counts, err := st.PhraseCounts(ctx, c.typ, limit)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", c.typ, err)
		}
		for _, pc := range counts {
			*c.dst = append(*c.dst, phraseEntry{Phrase: pc.Phrase, Count: pc.Count})
		}
	}
	return a, nil
}

func buildReport(records []phrasemine.ExtractedRecord, limit int, minPMI float64) report {
	analyzer := analytics.NewAnalyzer()
	analyzer.ProcessAll(records)
	stats := analyzer.Snapshot()

	r := report{
		TotalRecords: stats.TotalRecords,
		Sentences:    stats.Sentences,
		ByType:       make(map[string]int64, len(stats.TypeCounts)),
	}
	for typ, count := range stats.TypeCounts {
		r.ByType[string(typ)] = count
	}
	for _, s := range stats.SourceTotals() {
		r.Sources = append(r.Sources, sourceEntry{Source: s.Source, AdjectiveNoun: s.AdjectiveNoun, NounPhrase: s.NounPhrase})
	}
	for _, p := range stats.TopPhrases(phrasemine.PhraseAdjectiveNoun, limit) {
		r.AdjNoun = append(r.AdjNoun, phraseEntry{Phrase: p.Phrase, Count: p.Count})
	}
	for _, p := range stats.TopPhrases(phrasemine.PhraseNoun, limit) {
		r.NounPhrases = append(r.NounPhrases, phraseEntry{Phrase: p.Phrase, Count: p.Count})
	}
	for _, h := range stats.TopHeads(limit) {
		r.HeadNouns = append(r.HeadNouns, headEntry{Head: h.Head, Count: h.Count, Sources: h.Sources, Spread: h.Spread})
	}
	for _, p := range stats.TopPairs(limit, minPMI) {
		r.ModifierPairs = append(r.ModifierPairs, pairEntry{Modifier: p.Modifier, Head: p.Head, Count: p.Count, PMI: p.PMI})
	}
	return r
}
