package nlp

import (
	"fmt"

	"github.com/jdkato/prose/v2"

	"github.com/cognicore/phrasemine/pkg/phrasemine"
	"github.com/cognicore/phrasemine/pkg/phrasemine/internalerr"
)

// Prose uses the punkt sentence tokenizer and averaged-perceptron tagger
// bundled with github.com/jdkato/prose/v2.
type Prose struct{}

// NewProse loads the bundled model and checks that it tags a short sentence.
func NewProse() (*Prose, error) {
	doc, err := prose.NewDocument("The model is ready.", prose.WithExtraction(false))
	if err != nil {
		return nil, fmt.Errorf("prose self-check: %v: %w", err, internalerr.ErrModelUnavailable)
	}
	if len(doc.Tokens()) == 0 || doc.Tokens()[0].Tag == "" {
		return nil, fmt.Errorf("prose self-check produced no tags: %w", internalerr.ErrModelUnavailable)
	}
	return &Prose{}, nil
}

// Name implements Model.
func (p *Prose) Name() string { return ModelProse }

// Segment implements Model.
func (p *Prose) Segment(text string) ([]string, error) {
	doc, err := prose.NewDocument(text,
		prose.WithTokenization(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("segment: %w", err)
	}
	sents := doc.Sentences()
	out := make([]string, 0, len(sents))
	for _, s := range sents {
		out = append(out, s.Text)
	}
	return out, nil
}

// Tag implements Model. Punctuation-only tokens are always PUNCT; the
// perceptron tags quote marks as nouns.
func (p *Prose) Tag(sentence string) ([]phrasemine.Token, error) {
	doc, err := prose.NewDocument(sentence,
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("tag: %w", err)
	}
	toks := doc.Tokens()
	out := make([]phrasemine.Token, len(toks))
	for i, tok := range toks {
		pos := FromPenn(tok.Tag)
		if isPunctToken(tok.Text) {
			pos = phrasemine.Punct
		}
		out[i] = phrasemine.Token{Text: tok.Text, POS: pos}
	}
	alignOffsets(sentence, out)
	return out, nil
}
