// Package nlp wraps the linguistic model used by the pipeline: sentence
// segmentation and coarse part-of-speech tagging.
//
// A Model is built once at startup and is read-only afterwards. Load fails
// fast with internalerr.ErrModelUnavailable instead of failing mid-run.
package nlp

import (
	"fmt"
	"strings"

	"github.com/cognicore/phrasemine/pkg/phrasemine"
	"github.com/cognicore/phrasemine/pkg/phrasemine/internalerr"
)

// Model names accepted by Load.
const (
	ModelProse   = "prose"
	ModelLexicon = "lexicon"
)

// Model segments text into sentences and tags sentence tokens.
type Model interface {
	Name() string
	Segment(text string) ([]string, error)
	Tag(sentence string) ([]phrasemine.Token, error)
}

// Options selects and configures a model.
type Options struct {
	Name        string // "prose" (default) or "lexicon"
	LexiconPath string // required for "lexicon"
}

// Load constructs the named model.
func Load(opts Options) (Model, error) {
	name := strings.ToLower(strings.TrimSpace(opts.Name))
	switch name {
	case "", ModelProse:
		return NewProse()
	case ModelLexicon:
		if opts.LexiconPath == "" {
			return nil, fmt.Errorf("lexicon model needs a lexicon path: %w", internalerr.ErrModelUnavailable)
		}
		lex, err := LoadLexicon(opts.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("load lexicon %s: %v: %w", opts.LexiconPath, err, internalerr.ErrModelUnavailable)
		}
		return lex, nil
	default:
		return nil, fmt.Errorf("unknown model %q: %w", opts.Name, internalerr.ErrModelUnavailable)
	}
}

// alignOffsets assigns byte offsets to tokens by locating each token's text
// in the sentence, left to right. A token the tokenizer rewrote (so it no
// longer occurs verbatim) gets a zero-width span at the cursor.
func alignOffsets(sentence string, tokens []phrasemine.Token) {
	cursor := 0
	for i := range tokens {
		idx := strings.Index(sentence[cursor:], tokens[i].Text)
		if tokens[i].Text == "" || idx < 0 {
			tokens[i].Start, tokens[i].End = cursor, cursor
			continue
		}
		tokens[i].Start = cursor + idx
		tokens[i].End = tokens[i].Start + len(tokens[i].Text)
		cursor = tokens[i].End
	}
}
