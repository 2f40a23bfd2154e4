package config

import (
	"context"
	"fmt"
	"log"

	"github.com/cognicore/phrasemine/pkg/phrasemine/assemble"
	"github.com/cognicore/phrasemine/pkg/phrasemine/batch"
	"github.com/cognicore/phrasemine/pkg/phrasemine/fetch"
	"github.com/cognicore/phrasemine/pkg/phrasemine/match"
	"github.com/cognicore/phrasemine/pkg/phrasemine/nlp"
	"github.com/cognicore/phrasemine/pkg/phrasemine/segment"
	"github.com/cognicore/phrasemine/pkg/phrasemine/stoplist"
	"github.com/cognicore/phrasemine/pkg/phrasemine/store"
	"github.com/cognicore/phrasemine/pkg/phrasemine/store/sqlite"
)

// Loader builds pipeline components from a Config
type Loader struct {
	Config Config
	Logger *log.Logger // nil means log.Default()
}

// Components holds everything a run needs
type Components struct {
	Model        nlp.Model
	Fetcher      *fetch.Fetcher
	Segmenter    *segment.Segmenter
	Matcher      *match.Matcher
	Assembler    *assemble.Assembler
	Orchestrator *batch.Orchestrator
	Store        store.Store // nil when the archive is disabled
}

// Load constructs the components. The model is loaded first so a missing
// model fails before any network access.
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	cfg := l.Config
	logger := l.Logger
	if logger == nil {
		logger = log.Default()
	}

	model, err := nlp.Load(nlp.Options{Name: cfg.Model.Name, LexiconPath: cfg.Model.LexiconPath})
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	comp := &Components{Model: model}
	comp.Fetcher = fetch.New(fetch.Config{
		Timeout:   cfg.FetchTimeout,
		UserAgent: cfg.UserAgent,
	}, logger)
	comp.Segmenter = segment.New(model)
	comp.Matcher = match.NewWithRules(model,
		stoplist.Rule{MinLen: stoplist.DefaultPatternMinLen, Stops: stoplist.NewManager(cfg.Stopwords.Pattern)},
		stoplist.Rule{MinLen: stoplist.DefaultChunkMinLen, Stops: stoplist.NewManager(cfg.Stopwords.Chunk)},
	)
	comp.Assembler = assemble.New(
		assemble.WithLanguage(cfg.Language),
		assemble.WithLocation(cfg.Location),
	)
	comp.Orchestrator = batch.New(comp.Fetcher, comp.Segmenter, comp.Matcher, comp.Assembler,
		batch.WithPause(cfg.Pause),
		batch.WithLogger(logger),
	)

	if cfg.Store.SQLitePath != "" {
		st, err := sqlite.OpenSQLite(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		comp.Store = st
	}

	return comp, nil
}

// Close releases the store, if any.
func (c *Components) Close() error {
	if c.Store == nil {
		return nil
	}
	return c.Store.Close()
}
