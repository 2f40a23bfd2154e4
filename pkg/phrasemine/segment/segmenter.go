// Package segment splits cleaned document text into sentences.
package segment

import (
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/cognicore/phrasemine/pkg/phrasemine"
)

// Splitter is the sentence-boundary part of a linguistic model.
type Splitter interface {
	Segment(text string) ([]string, error)
}

// Segmenter drops sentence units too short to carry a phrase.
type Segmenter struct {
	splitter Splitter
	minLen   int
}

// New creates a Segmenter keeping units longer than phrasemine.MinSentenceLen.
func New(splitter Splitter) *Segmenter {
	return &Segmenter{splitter: splitter, minLen: phrasemine.MinSentenceLen}
}

// Segment runs the boundary model once and returns the kept units in text
// order. The sequence is finite and can be ranged over more than once.
func (s *Segmenter) Segment(text string) (iter.Seq[string], error) {
	if strings.TrimSpace(text) == "" {
		return func(func(string) bool) {}, nil
	}
	units, err := s.splitter.Segment(text)
	if err != nil {
		return nil, fmt.Errorf("segment: %w", err)
	}
	return func(yield func(string) bool) {
		for _, u := range units {
			u = strings.TrimSpace(u)
			if !s.Keep(u) {
				continue
			}
			if !yield(u) {
				return
			}
		}
	}, nil
}

// Sentences segments a document and tags each sentence with its source URL.
func (s *Segmenter) Sentences(doc phrasemine.CleanedText) (iter.Seq[phrasemine.Sentence], error) {
	seq, err := s.Segment(doc.Text)
	if err != nil {
		return nil, err
	}
	return func(yield func(phrasemine.Sentence) bool) {
		for text := range seq {
			if !yield(phrasemine.Sentence{Text: text, SourceURL: doc.URL}) {
				return
			}
		}
	}, nil
}

// Keep reports whether a unit is long enough to be a sentence.
func (s *Segmenter) Keep(unit string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(unit)) > s.minLen
}
