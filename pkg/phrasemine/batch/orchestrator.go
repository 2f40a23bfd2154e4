// Package batch runs the fetch → segment → match → assemble pipeline over an
// ordered list of URLs.
package batch

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"time"

	"github.com/cognicore/phrasemine/pkg/phrasemine"
	"github.com/cognicore/phrasemine/pkg/phrasemine/export"
	"github.com/cognicore/phrasemine/pkg/phrasemine/fn"
	"github.com/cognicore/phrasemine/pkg/phrasemine/internalerr"
	"github.com/cognicore/phrasemine/pkg/phrasemine/match"
)

// DefaultPause is the politeness delay after each URL.
const DefaultPause = time.Second

// Fetcher returns the cleaned text of a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) fn.Result[phrasemine.CleanedText]
}

// Segmenter splits a document into kept sentences.
type Segmenter interface {
	Sentences(doc phrasemine.CleanedText) (iter.Seq[phrasemine.Sentence], error)
}

// Matcher finds phrases in one sentence.
type Matcher interface {
	Match(sentence phrasemine.Sentence) (match.Result, error)
}

// Assembler maps matches to output records.
type Assembler interface {
	Assemble(matches []phrasemine.PhraseMatch, sourceURL string) []phrasemine.ExtractedRecord
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Orchestrator processes URLs one at a time.
type Orchestrator struct {
	fetcher   Fetcher
	segmenter Segmenter
	matcher   Matcher
	assembler Assembler
	pause     time.Duration
	sleep     SleepFunc
	logger    *log.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPause overrides DefaultPause.
func WithPause(d time.Duration) Option {
	return func(o *Orchestrator) { o.pause = d }
}

// WithSleep replaces the timer-based sleep, mainly for tests.
func WithSleep(sleep SleepFunc) Option {
	return func(o *Orchestrator) { o.sleep = sleep }
}

// WithLogger sets the progress logger. Nil means log.Default().
func WithLogger(logger *log.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// New wires the four pipeline stages together.
func New(fetcher Fetcher, segmenter Segmenter, matcher Matcher, assembler Assembler, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		fetcher:   fetcher,
		segmenter: segmenter,
		matcher:   matcher,
		assembler: assembler,
		pause:     DefaultPause,
		sleep:     Sleep,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	return o
}

// URLResult records what one URL contributed.
type URLResult struct {
	URL         string
	Sentences   int
	AdjNoun     int
	NounPhrases int
	Empty       bool
	Err         error
}

// Failed reports whether the URL contributed nothing because of an error.
func (r URLResult) Failed() bool { return r.Err != nil }

// Report is the outcome of a run.
type Report struct {
	Output     export.Output
	URLs       []URLResult
	StartedAt  time.Time
	FinishedAt time.Time
}

// Failures returns the URLs that failed, in run order.
func (r *Report) Failures() []URLResult {
	var out []URLResult
	for _, u := range r.URLs {
		if u.Failed() {
			out = append(out, u)
		}
	}
	return out
}

// Run processes urls in order. A failing URL is logged and contributes zero
// rows; the pause still follows it. Run returns a nil error unless ctx is
// cancelled, in which case the report holds everything accumulated so far.
//
// The combined records list every adjective_noun record of the run, in URL
// order, followed by every noun_phrase record.
func (o *Orchestrator) Run(ctx context.Context, urls []string) (*Report, error) {
	report := &Report{StartedAt: time.Now()}
	var adjRecords, chunkRecords []phrasemine.ExtractedRecord
	defer func() {
		report.Output.Records = append(adjRecords, chunkRecords...)
		report.FinishedAt = time.Now()
	}()

	for i, url := range urls {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		o.logger.Printf("Processing %d/%d: %s", i+1, len(urls), url)

		part, res := o.process(ctx, url)
		if res.Err != nil {
			o.logger.Printf("warning: %s: %v", url, res.Err)
		} else {
			appendOutput(&report.Output, part.Output)
			adjRecords = append(adjRecords, part.adjRecords...)
			chunkRecords = append(chunkRecords, part.chunkRecords...)
		}
		report.URLs = append(report.URLs, res)

		if err := o.sleep(ctx, o.pause); err != nil {
			return report, err
		}
	}
	return report, nil
}

// urlOutput is the rows of one URL, with its records kept by phrase type
// until the run combines them.
type urlOutput struct {
	export.Output
	adjRecords   []phrasemine.ExtractedRecord
	chunkRecords []phrasemine.ExtractedRecord
}

// process runs one URL through the pipeline. Rows are returned only when the
// whole URL succeeded.
func (o *Orchestrator) process(ctx context.Context, url string) (urlOutput, URLResult) {
	res := URLResult{URL: url}

	fetched := o.fetcher.Fetch(ctx, url)
	if fetched.IsErr() {
		if errors.Is(fetched.Error(), internalerr.ErrEmptyDocument) {
			res.Empty = true
		} else {
			res.Err = fetched.Error()
		}
		return urlOutput{}, res
	}
	doc, _ := fetched.Unwrap()

	sentences, err := o.segmenter.Sentences(doc)
	if err != nil {
		res.Err = fmt.Errorf("segment: %w", err)
		return urlOutput{}, res
	}

	var out urlOutput
	var adjMatches, chunkMatches []phrasemine.PhraseMatch
	for s := range sentences {
		out.Sentences = append(out.Sentences, export.SentenceRow{Sentence: s.Text, Source: url})

		m, err := o.matcher.Match(s)
		if err != nil {
			res.Err = fmt.Errorf("match: %w", err)
			return urlOutput{}, res
		}
		for _, pm := range m.AdjNoun {
			out.AdjNoun = append(out.AdjNoun, export.PhraseRow{Phrase: pm.Phrase, Sentence: s.Text, Source: url})
		}
		for _, pm := range m.NounChunks {
			out.NounPhrases = append(out.NounPhrases, export.PhraseRow{Phrase: pm.Phrase, Sentence: s.Text, Source: url})
		}
		adjMatches = append(adjMatches, m.AdjNoun...)
		chunkMatches = append(chunkMatches, m.NounChunks...)
	}
	out.adjRecords = o.assembler.Assemble(adjMatches, url)
	out.chunkRecords = o.assembler.Assemble(chunkMatches, url)

	res.Sentences = len(out.Sentences)
	res.AdjNoun = len(out.AdjNoun)
	res.NounPhrases = len(out.NounPhrases)
	o.logger.Printf("Extracted %d sentences, %d adjective-noun phrases, %d noun phrases from %s",
		res.Sentences, res.AdjNoun, res.NounPhrases, url)
	return out, res
}

func appendOutput(dst *export.Output, src export.Output) {
	dst.AdjNoun = append(dst.AdjNoun, src.AdjNoun...)
	dst.NounPhrases = append(dst.NounPhrases, src.NounPhrases...)
	dst.Sentences = append(dst.Sentences, src.Sentences...)
}

// Sleep waits for d on a timer, returning early with ctx.Err() on cancellation.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
