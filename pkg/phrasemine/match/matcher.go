// Package match finds adjective-noun phrases and noun chunks in sentences.
package match

import (
	"fmt"
	"sort"

	"github.com/cognicore/phrasemine/pkg/phrasemine"
	"github.com/cognicore/phrasemine/pkg/phrasemine/stoplist"
)

// Tagger is the part-of-speech part of a linguistic model.
type Tagger interface {
	Tag(sentence string) ([]phrasemine.Token, error)
}

// Result holds the accepted matches for one sentence.
type Result struct {
	// AdjNoun holds ADJ_NOUN and DET_ADJ_NOUN matches. A span matched by
	// both patterns appears twice, once per pattern.
	AdjNoun    []phrasemine.PhraseMatch
	NounChunks []phrasemine.PhraseMatch
}

// Matcher tags a sentence and runs every pattern over the tokens.
type Matcher struct {
	tagger      Tagger
	patternRule stoplist.Rule
	chunkRule   stoplist.Rule
}

// New creates a Matcher with the default length/stopword rules.
func New(tagger Tagger) *Matcher {
	return NewWithRules(tagger, stoplist.PatternRule(), stoplist.ChunkRule())
}

// NewWithRules creates a Matcher with explicit filters for pattern matches
// and noun chunks.
func NewWithRules(tagger Tagger, patternRule, chunkRule stoplist.Rule) *Matcher {
	return &Matcher{tagger: tagger, patternRule: patternRule, chunkRule: chunkRule}
}

// Match tags the sentence once and returns the filtered matches. Sentences
// are independent; no state carries over between calls.
func (m *Matcher) Match(sentence phrasemine.Sentence) (Result, error) {
	tokens, err := m.tagger.Tag(sentence.Text)
	if err != nil {
		return Result{}, fmt.Errorf("tag sentence: %w", err)
	}
	return m.MatchTokens(sentence, tokens), nil
}

// MatchTokens runs the patterns over already-tagged tokens.
func (m *Matcher) MatchTokens(sentence phrasemine.Sentence, tokens []phrasemine.Token) Result {
	var res Result

	var hits []phrasemine.PhraseMatch
	hits = m.collect(hits, sentence, tokens, phrasemine.AdjNoun, FindAdjNoun(tokens), m.patternRule)
	hits = m.collect(hits, sentence, tokens, phrasemine.DetAdjNoun, FindDetAdjNoun(tokens), m.patternRule)
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Span.Start != hits[j].Span.Start {
			return hits[i].Span.Start < hits[j].Span.Start
		}
		return hits[i].Span.End < hits[j].Span.End
	})
	res.AdjNoun = hits

	res.NounChunks = m.collect(nil, sentence, tokens, phrasemine.NounChunk, FindNounChunks(tokens), m.chunkRule)
	return res
}

func (m *Matcher) collect(dst []phrasemine.PhraseMatch, sentence phrasemine.Sentence, tokens []phrasemine.Token,
	pattern phrasemine.PatternType, spans []phrasemine.Span, rule stoplist.Rule) []phrasemine.PhraseMatch {
	for _, span := range spans {
		phrase := SurfaceText(sentence.Text, tokens, span)
		if !rule.Accept(phrase) {
			continue
		}
		dst = append(dst, phrasemine.PhraseMatch{
			Phrase:    phrase,
			Pattern:   pattern,
			Span:      span,
			Sentence:  sentence,
			SourceURL: sentence.SourceURL,
		})
	}
	return dst
}
