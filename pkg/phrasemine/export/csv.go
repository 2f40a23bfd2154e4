// Package export writes and reads the pipeline's CSV outputs.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cognicore/phrasemine/pkg/phrasemine"
	"github.com/cognicore/phrasemine/pkg/phrasemine/internalerr"
)

// DefaultPrefix names the output files when no prefix is configured.
const DefaultPrefix = "islamabad"

// readLayout accepts extracted_at with or without fractional seconds.
const readLayout = "2006-01-02T15:04:05"

// Column headers for the four output files.
var (
	AdjNounHeader  = []string{"adj_noun_phrase", "sentence", "source"}
	NounHeader     = []string{"noun_phrase", "sentence", "source"}
	SentenceHeader = []string{"sentence", "source"}
	RecordHeader   = []string{
		"description", "sentence_context", "phrase_type", "language", "location",
		"osm_tag_key", "osm_tag_value", "source", "coordinates", "extracted_at",
	}
)

// PhraseRow is a row of the adjective-noun or noun-phrase file.
type PhraseRow struct {
	Phrase   string
	Sentence string
	Source   string
}

// SentenceRow is a row of the sentences file.
type SentenceRow struct {
	Sentence string
	Source   string
}

// Output is everything a run accumulates before the final write.
type Output struct {
	AdjNoun     []PhraseRow
	NounPhrases []PhraseRow
	Sentences   []SentenceRow
	Records     []phrasemine.ExtractedRecord
}

// Paths are the four file locations for one run.
type Paths struct {
	AdjNoun     string
	NounPhrases string
	Sentences   string
	Combined    string
}

// PathsFor derives the file names from an output dir and prefix.
func PathsFor(dir, prefix string) Paths {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Paths{
		AdjNoun:     filepath.Join(dir, prefix+"_adj_noun_phrases.csv"),
		NounPhrases: filepath.Join(dir, prefix+"_noun_phrases.csv"),
		Sentences:   filepath.Join(dir, prefix+"_sentences.csv"),
		Combined:    filepath.Join(dir, prefix+"_extracted_phrases.csv"),
	}
}

// WriteAll creates dir and writes all four files, header rows included even
// when a collection is empty.
func WriteAll(dir, prefix string, out Output) (Paths, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Paths{}, fmt.Errorf("create output dir: %w", err)
	}
	paths := PathsFor(dir, prefix)

	if err := writeFile(paths.AdjNoun, func(w io.Writer) error { return WritePhrases(w, AdjNounHeader, out.AdjNoun) }); err != nil {
		return paths, err
	}
	if err := writeFile(paths.NounPhrases, func(w io.Writer) error { return WritePhrases(w, NounHeader, out.NounPhrases) }); err != nil {
		return paths, err
	}
	if err := writeFile(paths.Sentences, func(w io.Writer) error { return WriteSentences(w, out.Sentences) }); err != nil {
		return paths, err
	}
	if err := writeFile(paths.Combined, func(w io.Writer) error { return WriteRecords(w, out.Records) }); err != nil {
		return paths, err
	}
	return paths, nil
}

// writeFile writes to a temp file next to path and renames it into place.
func writeFile(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// WritePhrases writes a phrase file with the given header.
func WritePhrases(w io.Writer, header []string, rows []PhraseRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Phrase, r.Sentence, r.Source}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSentences writes the sentences file.
func WriteSentences(w io.Writer, rows []SentenceRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SentenceHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Sentence, r.Source}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRecords writes the combined file in RecordHeader column order.
func WriteRecords(w io.Writer, records []phrasemine.ExtractedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RecordHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
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
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadRecords parses a combined file. Columns are located by header name, so
// reordered files still load; a missing column is ErrInvalidInput.
func ReadRecords(r io.Reader) ([]phrasemine.ExtractedRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file: %w", internalerr.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range RecordHeader {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("missing column %q: %w", name, internalerr.ErrInvalidInput)
		}
	}

	var records []phrasemine.ExtractedRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if len(row) != len(header) {
			return nil, fmt.Errorf("line %d: %d fields, want %d: %w", line, len(row), len(header), internalerr.ErrInvalidInput)
		}
		col := func(name string) string { return row[index[name]] }

		rec := phrasemine.ExtractedRecord{
			Description:     col("description"),
			SentenceContext: col("sentence_context"),
			PhraseType:      phrasemine.PhraseType(col("phrase_type")),
			Language:        col("language"),
			Location:        col("location"),
			OSMTagKey:       col("osm_tag_key"),
			OSMTagValue:     col("osm_tag_value"),
			Source:          col("source"),
			Coordinates:     col("coordinates"),
		}
		if ts := col("extracted_at"); ts != "" {
			at, err := time.ParseInLocation(readLayout, ts, time.Local)
			if err != nil {
				return nil, fmt.Errorf("line %d: extracted_at: %w", line, err)
			}
			rec.ExtractedAt = at
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadRecordsFile opens and parses a combined file.
func ReadRecordsFile(path string) ([]phrasemine.ExtractedRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	records, err := ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}
