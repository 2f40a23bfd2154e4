// Package phrasemine holds the data model shared by the phrase extraction
// pipeline: fetched documents, sentences, tagged tokens, phrase matches and
// the final extracted record schema.
package phrasemine

import "time"

// Fixed values written into every ExtractedRecord.
const (
	DefaultLanguage = "English"
	DefaultLocation = "Islamabad"
)

// TimestampLayout is the ISO-8601 local layout used for extracted_at.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// MinSentenceLen is the exclusive lower bound on trimmed sentence length.
const MinSentenceLen = 10

// SourceDocument is the raw markup fetched for a URL.
type SourceDocument struct {
	URL     string
	RawHTML string
}

// CleanedText is the visible text of a document, whitespace-normalized.
type CleanedText struct {
	URL  string
	Text string
}

// Sentence is a sentence-like unit of cleaned text.
type Sentence struct {
	Text      string
	SourceURL string
}

// POS is a coarse part-of-speech category.
type POS int

const (
	Other POS = iota
	Adj
	Noun
	PropNoun
	Pron
	Det
	Verb
	Aux
	Adv
	Adp
	Num
	CConj
	Part
	Punct
)

var posNames = map[POS]string{
	Other:    "OTHER",
	Adj:      "ADJ",
	Noun:     "NOUN",
	PropNoun: "PROPN",
	Pron:     "PRON",
	Det:      "DET",
	Verb:     "VERB",
	Aux:      "AUX",
	Adv:      "ADV",
	Adp:      "ADP",
	Num:      "NUM",
	CConj:    "CCONJ",
	Part:     "PART",
	Punct:    "PUNCT",
}

// String returns the upper-case tag name, e.g. "ADJ".
func (p POS) String() string {
	if name, ok := posNames[p]; ok {
		return name
	}
	return "OTHER"
}

// ParsePOS maps a tag name back to a POS. Unknown names map to Other.
func ParsePOS(name string) (POS, bool) {
	for p, n := range posNames {
		if n == name {
			return p, true
		}
	}
	return Other, false
}

// IsNominal reports whether the tag can head a noun chunk.
func (p POS) IsNominal() bool {
	return p == Noun || p == PropNoun
}

// Token is a tagged word with its byte offsets in the sentence.
type Token struct {
	Text  string
	POS   POS
	Start int
	End   int
}

// PatternType identifies which pattern produced a match.
type PatternType int

const (
	AdjNoun PatternType = iota
	DetAdjNoun
	NounChunk
)

// String returns the pattern name.
func (t PatternType) String() string {
	switch t {
	case AdjNoun:
		return "ADJ_NOUN"
	case DetAdjNoun:
		return "DET_ADJ_NOUN"
	case NounChunk:
		return "NOUN_CHUNK"
	default:
		return "UNKNOWN"
	}
}

// PhraseType is the category written to the phrase_type column.
type PhraseType string

const (
	PhraseAdjectiveNoun PhraseType = "adjective_noun"
	PhraseNoun          PhraseType = "noun_phrase"
)

// PhraseType collapses pattern identity into the output category.
func (t PatternType) PhraseType() PhraseType {
	if t == NounChunk {
		return PhraseNoun
	}
	return PhraseAdjectiveNoun
}

// Span is a half-open token index range [Start, End).
type Span struct {
	Start int
	End   int
}

// Len returns the number of tokens covered.
func (s Span) Len() int { return s.End - s.Start }

// Overlaps reports whether two spans share a token position.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// PhraseMatch is a pattern hit within one sentence.
type PhraseMatch struct {
	Phrase    string
	Pattern   PatternType
	Span      Span
	Sentence  Sentence
	SourceURL string
}

// ExtractedRecord is one row of the combined output file.
type ExtractedRecord struct {
	Description     string
	SentenceContext string
	PhraseType      PhraseType
	Language        string
	Location        string
	OSMTagKey       string
	OSMTagValue     string
	Source          string
	Coordinates     string
	ExtractedAt     time.Time
}

// ExtractedAtString formats ExtractedAt with TimestampLayout.
func (r ExtractedRecord) ExtractedAtString() string {
	return r.ExtractedAt.Format(TimestampLayout)
}
