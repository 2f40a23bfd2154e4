package match

import (
	"strings"

	"github.com/cognicore/phrasemine/pkg/phrasemine"
)

// FindAdjNoun returns spans of ADJ+ NOUN+ (pattern ADJ_NOUN). The scan is
// leftmost-first and greedy: after a hit it resumes past the span's end, so
// spans never share a token.
func FindAdjNoun(tokens []phrasemine.Token) []phrasemine.Span {
	var spans []phrasemine.Span
	i := 0
	for i < len(tokens) {
		end, next := adjNounAt(tokens, i)
		if end > i {
			spans = append(spans, phrasemine.Span{Start: i, End: end})
			i = end
			continue
		}
		i = next
	}
	return spans
}

// FindDetAdjNoun returns spans of DET? ADJ+ NOUN+ (pattern DET_ADJ_NOUN),
// preferring to include the determiner when one is present.
func FindDetAdjNoun(tokens []phrasemine.Token) []phrasemine.Span {
	var spans []phrasemine.Span
	i := 0
	for i < len(tokens) {
		if tokens[i].POS == phrasemine.Det {
			if end, _ := adjNounAt(tokens, i+1); end > i+1 {
				spans = append(spans, phrasemine.Span{Start: i, End: end})
				i = end
				continue
			}
			i++
			continue
		}
		end, next := adjNounAt(tokens, i)
		if end > i {
			spans = append(spans, phrasemine.Span{Start: i, End: end})
			i = end
			continue
		}
		i = next
	}
	return spans
}

// adjNounAt tries ADJ+ NOUN+ starting at i. It returns the exclusive end of
// the match (or i when there is none) and the next position worth trying.
func adjNounAt(tokens []phrasemine.Token, i int) (end, next int) {
	j := i
	for j < len(tokens) && tokens[j].POS == phrasemine.Adj {
		j++
	}
	if j == i {
		return i, i + 1
	}
	k := j
	for k < len(tokens) && tokens[k].POS == phrasemine.Noun {
		k++
	}
	if k == j {
		// Every start inside this adjective run ends at the same j.
		return i, j
	}
	return k, k
}

// FindNounChunks returns maximal base noun phrases:
// DET? (ADJ|NUM|NOUN|PROPN)* (NOUN|PROPN), or a lone PRON.
// Chunks end on their last nominal token and never overlap.
func FindNounChunks(tokens []phrasemine.Token) []phrasemine.Span {
	var spans []phrasemine.Span
	i := 0
	for i < len(tokens) {
		if tokens[i].POS == phrasemine.Pron {
			spans = append(spans, phrasemine.Span{Start: i, End: i + 1})
			i++
			continue
		}

		p := i
		if tokens[p].POS == phrasemine.Det {
			p++
		}
		lastNominal := -1
		for p < len(tokens) && isChunkModifier(tokens[p].POS) {
			if tokens[p].POS.IsNominal() {
				lastNominal = p
			}
			p++
		}

		if lastNominal < 0 {
			i++
			continue
		}
		spans = append(spans, phrasemine.Span{Start: i, End: lastNominal + 1})
		i = lastNominal + 1
	}
	return spans
}

func isChunkModifier(p phrasemine.POS) bool {
	switch p {
	case phrasemine.Adj, phrasemine.Num, phrasemine.Noun, phrasemine.PropNoun:
		return true
	}
	return false
}

// SurfaceText returns the sentence text covered by span, trimmed. When the
// tokens carry no usable offsets the token texts are joined with spaces.
func SurfaceText(sentence string, tokens []phrasemine.Token, span phrasemine.Span) string {
	if span.Len() <= 0 || span.Start < 0 || span.End > len(tokens) {
		return ""
	}
	first, last := tokens[span.Start], tokens[span.End-1]
	if hasOffsets(tokens[span.Start:span.End]) && first.Start <= last.End && last.End <= len(sentence) {
		return strings.TrimSpace(sentence[first.Start:last.End])
	}

	words := make([]string, 0, span.Len())
	for _, tok := range tokens[span.Start:span.End] {
		words = append(words, tok.Text)
	}
	return strings.TrimSpace(strings.Join(words, " "))
}

func hasOffsets(tokens []phrasemine.Token) bool {
	for _, tok := range tokens {
		if tok.End <= tok.Start {
			return false
		}
	}
	return true
}
