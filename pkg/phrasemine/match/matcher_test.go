package match

import (
	"errors"
	"strings"
	"testing"

	"github.com/cognicore/phrasemine/pkg/phrasemine"
	"github.com/cognicore/phrasemine/pkg/phrasemine/nlp"
	"github.com/cognicore/phrasemine/pkg/phrasemine/stoplist"
)

const testURL = "https://example.com/islamabad"

func testLexicon() *nlp.Lexicon {
	lex := nlp.NewLexicon()
	lex.Add(phrasemine.Det, "the", "a", "an", "that")
	lex.Add(phrasemine.Adj, "beautiful", "green", "small", "lush", "tall", "old", "quiet", "x")
	lex.Add(phrasemine.Noun, "mosque", "hills", "city", "vendor", "snacks", "market", "stalls", "y")
	lex.Add(phrasemine.PropNoun, "islamabad", "faisal")
	lex.Add(phrasemine.Pron, "it", "this", "they")
	lex.Add(phrasemine.Verb, "stands", "surround", "sells", "is", "loves", "visit")
	return lex
}

func sentence(text string) phrasemine.Sentence {
	return phrasemine.Sentence{Text: text, SourceURL: testURL}
}

func phrases(ms []phrasemine.PhraseMatch) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Phrase
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMatchDualPattern(t *testing.T) {
	m := New(testLexicon())
	res, err := m.Match(sentence("The beautiful mosque stands tall."))
	if err != nil {
		t.Fatalf("Match: %v", err)
	}

	want := []string{"The beautiful mosque", "beautiful mosque"}
	if got := phrases(res.AdjNoun); !equalStrings(got, want) {
		t.Fatalf("AdjNoun = %q, want %q", got, want)
	}
	if res.AdjNoun[0].Pattern != phrasemine.DetAdjNoun || res.AdjNoun[1].Pattern != phrasemine.AdjNoun {
		t.Errorf("patterns = %v, %v; want DET_ADJ_NOUN, ADJ_NOUN", res.AdjNoun[0].Pattern, res.AdjNoun[1].Pattern)
	}
	for _, pm := range res.AdjNoun {
		if pm.Pattern.PhraseType() != phrasemine.PhraseAdjectiveNoun {
			t.Errorf("%q should map to adjective_noun", pm.Phrase)
		}
		if pm.Sentence.Text != "The beautiful mosque stands tall." || pm.SourceURL != testURL {
			t.Errorf("match should carry its sentence and source, got %+v", pm)
		}
	}

	if got := phrases(res.NounChunks); !equalStrings(got, []string{"The beautiful mosque"}) {
		t.Errorf("NounChunks = %q", got)
	}
}

func TestMatchSameSpanBothPatterns(t *testing.T) {
	// Without a determiner both patterns cover the same span; both are kept.
	m := New(testLexicon())
	res, err := m.Match(sentence("Lush green hills surround the city."))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Lush green hills", "Lush green hills"}
	if got := phrases(res.AdjNoun); !equalStrings(got, want) {
		t.Errorf("AdjNoun = %q, want %q", got, want)
	}
	if got := phrases(res.NounChunks); !equalStrings(got, []string{"Lush green hills", "the city"}) {
		t.Errorf("NounChunks = %q, want [Lush green hills, the city]", got)
	}
}

func TestMatchEndToEndExample(t *testing.T) {
	m := New(testLexicon())
	res, err := m.Match(sentence("A small vendor sells snacks."))
	if err != nil {
		t.Fatal(err)
	}
	if got := phrases(res.AdjNoun); !equalStrings(got, []string{"A small vendor", "small vendor"}) {
		t.Errorf("AdjNoun = %q", got)
	}
	if got := phrases(res.NounChunks); !equalStrings(got, []string{"A small vendor", "snacks"}) {
		t.Errorf("NounChunks = %q", got)
	}
}

func TestMatchFilters(t *testing.T) {
	m := New(testLexicon())

	res, err := m.Match(sentence("x y is what this is. It loves them."))
	if err != nil {
		t.Fatal(err)
	}
	for _, pm := range res.AdjNoun {
		if pm.Phrase == "x y" {
			t.Error("3-character pattern phrase should be filtered")
		}
	}
	for _, pm := range res.NounChunks {
		switch strings.ToLower(pm.Phrase) {
		case "this", "it", "that":
			t.Errorf("chunk %q should be filtered", pm.Phrase)
		}
	}
}

func TestMatchInvariants(t *testing.T) {
	m := New(testLexicon())
	texts := []string{
		"The beautiful mosque stands tall.",
		"Lush green hills surround the city.",
		"They visit that quiet old market and the tall green stalls.",
		"x y is this.",
		"Faisal mosque is in Islamabad.",
	}
	patternStops := map[string]bool{"the": true, "a": true, "an": true}
	chunkStops := map[string]bool{"the": true, "a": true, "an": true, "this": true, "that": true}

	for _, text := range texts {
		res, err := m.Match(sentence(text))
		if err != nil {
			t.Fatal(err)
		}
		for _, pm := range res.AdjNoun {
			if len([]rune(pm.Phrase)) <= 3 || patternStops[strings.ToLower(pm.Phrase)] {
				t.Errorf("pattern phrase %q violates filter", pm.Phrase)
			}
		}
		for _, pm := range res.NounChunks {
			if len([]rune(pm.Phrase)) <= 2 || chunkStops[strings.ToLower(pm.Phrase)] {
				t.Errorf("chunk %q violates filter", pm.Phrase)
			}
		}
		assertNoOverlap(t, text, res.AdjNoun, phrasemine.AdjNoun)
		assertNoOverlap(t, text, res.AdjNoun, phrasemine.DetAdjNoun)
		assertNoOverlap(t, text, res.NounChunks, phrasemine.NounChunk)
	}
}

func assertNoOverlap(t *testing.T, text string, ms []phrasemine.PhraseMatch, pattern phrasemine.PatternType) {
	t.Helper()
	var spans []phrasemine.Span
	for _, pm := range ms {
		if pm.Pattern == pattern {
			spans = append(spans, pm.Span)
		}
	}
	for i := range spans {
		for j := i + 1; j < len(spans); j++ {
			if spans[i].Overlaps(spans[j]) {
				t.Errorf("%q: %v spans %v and %v overlap", text, pattern, spans[i], spans[j])
			}
		}
	}
}

func TestMatchProperNounsNotInPatterns(t *testing.T) {
	m := New(testLexicon())
	res, err := m.Match(sentence("Tourists love beautiful Islamabad."))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.AdjNoun) != 0 {
		t.Errorf("ADJ + PROPN should not match the adjective patterns, got %q", phrases(res.AdjNoun))
	}
	if got := phrases(res.NounChunks); !equalStrings(got, []string{"beautiful Islamabad"}) {
		t.Errorf("NounChunks = %q, want [beautiful Islamabad]", got)
	}
}

func TestMatchCustomRules(t *testing.T) {
	chunk := stoplist.Rule{MinLen: 2, Stops: stoplist.NewManager([]string{"the city"})}
	m := NewWithRules(testLexicon(), stoplist.PatternRule(), chunk)
	res, err := m.Match(sentence("Lush green hills surround the city."))
	if err != nil {
		t.Fatal(err)
	}
	if got := phrases(res.NounChunks); !equalStrings(got, []string{"Lush green hills"}) {
		t.Errorf("NounChunks = %q, want custom stopword removed", got)
	}
}

type failingTagger struct{}

func (failingTagger) Tag(string) ([]phrasemine.Token, error) { return nil, errors.New("no model") }

func TestMatchTaggerError(t *testing.T) {
	if _, err := New(failingTagger{}).Match(sentence("Any sentence at all.")); err == nil {
		t.Error("tagger failure should be returned")
	}
}

func TestMatchProseQuotedWord(t *testing.T) {
	model, err := nlp.NewProse()
	if err != nil {
		t.Fatalf("NewProse: %v", err)
	}
	m := New(model)

	res, err := m.Match(sentence(`Dr. Smith visited the "old" market at 5 p.m. yesterday and it was great.`))
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	for _, pm := range append(res.AdjNoun, res.NounChunks...) {
		if strings.ContainsAny(pm.Phrase, "\"`") {
			t.Errorf("%s match %q contains a quote mark", pm.Pattern, pm.Phrase)
		}
	}
}
