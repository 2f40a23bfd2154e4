// Package assemble turns phrase matches into output records.
package assemble

import (
	"time"

	"github.com/cognicore/phrasemine/pkg/phrasemine"
)

// Assembler stamps matches with the fixed schema fields.
type Assembler struct {
	now      func() time.Time
	language string
	location string
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// WithLanguage overrides the language column.
func WithLanguage(language string) Option {
	return func(a *Assembler) { a.language = language }
}

// WithLocation overrides the location column.
func WithLocation(location string) Option {
	return func(a *Assembler) { a.location = location }
}

// New creates an Assembler writing English/Islamabad records.
func New(opts ...Option) *Assembler {
	a := &Assembler{
		now:      time.Now,
		language: phrasemine.DefaultLanguage,
		location: phrasemine.DefaultLocation,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble maps each match to one record. The clock is read once per record,
// at assembly time. Reserved OSM and coordinate columns stay empty.
func (a *Assembler) Assemble(matches []phrasemine.PhraseMatch, sourceURL string) []phrasemine.ExtractedRecord {
	records := make([]phrasemine.ExtractedRecord, 0, len(matches))
	for _, m := range matches {
		records = append(records, phrasemine.ExtractedRecord{
			Description:     m.Phrase,
			SentenceContext: m.Sentence.Text,
			PhraseType:      m.Pattern.PhraseType(),
			Language:        a.language,
			Location:        a.location,
			Source:          sourceURL,
			ExtractedAt:     a.now(),
		})
	}
	return records
}
