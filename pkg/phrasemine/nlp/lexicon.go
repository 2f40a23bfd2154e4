package nlp

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/phrasemine/pkg/phrasemine"
)

// defaultAbbreviations never end a sentence when followed by a period.
var defaultAbbreviations = []string{
	"mr", "mrs", "ms", "dr", "prof", "st", "sr", "jr", "vs", "etc",
	"e.g", "i.e", "no", "approx", "km", "sq", "mt", "ft",
}

// Lexicon is a deterministic model: a word -> tag table plus a rule-based,
// abbreviation-aware sentence splitter. Useful for reproducible runs and
// tests where a statistical tagger would make output depend on model weights.
type Lexicon struct {
	tags          map[string]phrasemine.POS
	fallback      phrasemine.POS
	abbreviations map[string]struct{}
}

// NewLexicon creates an empty lexicon whose unknown words tag as OTHER.
func NewLexicon() *Lexicon {
	l := &Lexicon{
		tags:          make(map[string]phrasemine.POS),
		fallback:      phrasemine.Other,
		abbreviations: make(map[string]struct{}),
	}
	for _, a := range defaultAbbreviations {
		l.abbreviations[a] = struct{}{}
	}
	return l
}

// LoadLexicon loads a tag table from a YAML file.
//
// Expected format:
//
//	fallback: NOUN
//	abbreviations: [approx, sq]
//	tags:
//	  ADJ: [beautiful, green, small]
//	  NOUN: [mosque, hills, city]
//	  DET: [the, a, an]
//
// Words are case-insensitive. Tag names are the coarse names (ADJ, NOUN,
// PROPN, PRON, DET, VERB, AUX, ADV, ADP, NUM, CCONJ, PART, PUNCT, OTHER).
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseLexicon(data)
}

// ParseLexicon parses the YAML format accepted by LoadLexicon.
func ParseLexicon(data []byte) (*Lexicon, error) {
	var cfg struct {
		Fallback      string              `yaml:"fallback"`
		Abbreviations []string            `yaml:"abbreviations"`
		Tags          map[string][]string `yaml:"tags"`
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	lex := NewLexicon()
	if cfg.Fallback != "" {
		pos, ok := phrasemine.ParsePOS(strings.ToUpper(cfg.Fallback))
		if !ok {
			return nil, fmt.Errorf("unknown fallback tag %q", cfg.Fallback)
		}
		lex.SetFallback(pos)
	}
	for name, words := range cfg.Tags {
		pos, ok := phrasemine.ParsePOS(strings.ToUpper(name))
		if !ok {
			return nil, fmt.Errorf("unknown tag %q", name)
		}
		lex.Add(pos, words...)
	}
	for _, a := range cfg.Abbreviations {
		lex.AddAbbreviation(a)
	}
	return lex, nil
}

// Add registers words under a tag. Later registrations win.
func (l *Lexicon) Add(pos phrasemine.POS, words ...string) {
	for _, w := range words {
		l.tags[strings.ToLower(w)] = pos
	}
}

// SetFallback sets the tag used for words not in the table.
func (l *Lexicon) SetFallback(pos phrasemine.POS) {
	l.fallback = pos
}

// AddAbbreviation registers a word that does not end a sentence.
func (l *Lexicon) AddAbbreviation(word string) {
	l.abbreviations[strings.TrimSuffix(strings.ToLower(word), ".")] = struct{}{}
}

// Lookup returns the tag for a single word.
func (l *Lexicon) Lookup(word string) phrasemine.POS {
	if pos, ok := l.tags[strings.ToLower(word)]; ok {
		return pos
	}
	if isPunctToken(word) {
		return phrasemine.Punct
	}
	if isNumericOnly(word) {
		return phrasemine.Num
	}
	return l.fallback
}

// Name implements Model.
func (l *Lexicon) Name() string { return ModelLexicon }

// Tag implements Model.
func (l *Lexicon) Tag(sentence string) ([]phrasemine.Token, error) {
	tokens := tokenize(sentence)
	for i := range tokens {
		tokens[i].POS = l.Lookup(tokens[i].Text)
	}
	return tokens, nil
}

// Segment implements Model. A sentence ends at '.', '!' or '?' (plus any
// closing quotes or brackets) followed by whitespace and an upper-case
// letter, digit or opening quote, unless the period closes an abbreviation
// or a single-letter initial.
func (l *Lexicon) Segment(text string) ([]string, error) {
	runes := []rune(text)
	var out []string
	start := 0

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		end := i + 1
		for end < len(runes) && strings.ContainsRune(`"')]”’`, runes[end]) {
			end++
		}
		if end < len(runes) && !unicode.IsSpace(runes[end]) {
			continue
		}
		next := end
		for next < len(runes) && unicode.IsSpace(runes[next]) {
			next++
		}
		if next < len(runes) && !opensSentence(runes[next]) {
			continue
		}
		if r == '.' && l.isAbbreviation(lastWord(runes[start:i])) {
			continue
		}

		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			out = append(out, s)
		}
		start = end
		i = end - 1
	}

	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out, nil
}

func (l *Lexicon) isAbbreviation(word string) bool {
	if word == "" {
		return false
	}
	if len([]rune(word)) == 1 && unicode.IsLetter([]rune(word)[0]) {
		return true
	}
	_, ok := l.abbreviations[strings.ToLower(word)]
	return ok
}

// lastWord returns the trailing run of letters and inner periods.
func lastWord(runes []rune) string {
	end := len(runes)
	i := end
	for i > 0 && (unicode.IsLetter(runes[i-1]) || runes[i-1] == '.') {
		i--
	}
	return strings.Trim(string(runes[i:end]), ".")
}

func opensSentence(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsDigit(r) || strings.ContainsRune(`"'(“‘[`, r)
}

// tokenize splits a sentence into word and punctuation tokens with byte
// offsets. Words are runs of letters, digits, hyphens and apostrophes.
func tokenize(text string) []phrasemine.Token {
	var tokens []phrasemine.Token
	start := -1

	flush := func(end int) {
		if start < 0 {
			return
		}
		word := strings.TrimRight(text[start:end], "-'")
		if word != "" {
			tokens = append(tokens, phrasemine.Token{Text: word, Start: start, End: start + len(word)})
		}
		start = -1
	}

	for i, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || r == '\'' {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
		if !unicode.IsSpace(r) {
			end := i + len(string(r))
			tokens = append(tokens, phrasemine.Token{Text: text[i:end], Start: i, End: end})
		}
	}
	flush(len(text))
	return tokens
}

func isPunctToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return true
}

// isNumericOnly returns true if the token contains only digits and separators.
func isNumericOnly(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '-' || r == ',' || r == '.':
		default:
			return false
		}
	}
	return digits > 0
}
