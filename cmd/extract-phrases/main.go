package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cognicore/phrasemine/pkg/phrasemine/batch"
	"github.com/cognicore/phrasemine/pkg/phrasemine/config"
	"github.com/cognicore/phrasemine/pkg/phrasemine/export"
	"github.com/cognicore/phrasemine/pkg/phrasemine/store"
)

type options struct {
	configPath  string
	outputDir   string
	dbPath      string
	model       string
	lexiconPath string
	sourcesFile string
	samples     int
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "YAML config file (optional)")
	flag.StringVar(&opts.outputDir, "out", "", "Output directory (default: data)")
	flag.StringVar(&opts.dbPath, "db", "", "SQLite run archive (optional)")
	flag.StringVar(&opts.model, "model", "", "Linguistic model: prose or lexicon")
	flag.StringVar(&opts.lexiconPath, "lexicon", "", "Lexicon YAML for the lexicon model")
	flag.StringVar(&opts.sourcesFile, "sources", "", "File with one URL (or JSON object) per line")
	flag.IntVar(&opts.samples, "samples", 5, "Sample rows to print per file")
	flag.Parse()

	cfg, err := buildConfig(opts)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts.samples, os.Stdout, log.Default()); err != nil {
		log.Fatalf("extract-phrases: %v", err)
	}
}

// buildConfig loads the config file, if any, and applies flag overrides.
func buildConfig(opts options) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		cfg, err = config.Load(opts.configPath)
		if err != nil {
			return config.Config{}, err
		}
	}
	if opts.outputDir != "" {
		cfg.OutputDir = opts.outputDir
	}
	if opts.dbPath != "" {
		cfg.Store.SQLitePath = opts.dbPath
	}
	if opts.model != "" {
		cfg.Model.Name = opts.model
	}
	if opts.lexiconPath != "" {
		cfg.Model.LexiconPath = opts.lexiconPath
	}
	if opts.sourcesFile != "" {
		cfg.SourcesFile = opts.sourcesFile
	}
	return cfg, cfg.Validate()
}

// run executes one batch and writes the four files. A cancelled run still
// writes what it accumulated before returning the cancellation error.
func run(ctx context.Context, cfg config.Config, samples int, stdout io.Writer, logger *log.Logger) error {
	urls, err := cfg.URLs()
	if err != nil {
		return err
	}

	loader := config.Loader{Config: cfg, Logger: logger}
	comp, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	defer comp.Close()

	logger.Printf("Extracting phrases from %d URLs with the %s model", len(urls), comp.Model.Name())
	report, runErr := comp.Orchestrator.Run(ctx, urls)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	if runErr != nil {
		logger.Printf("warning: run cancelled after %d/%d URLs, writing partial results", len(report.URLs), len(urls))
	}

	paths, err := export.WriteAll(cfg.OutputDir, cfg.FilePrefix, report.Output)
	if err != nil {
		return fmt.Errorf("write outputs: %w", err)
	}
	logger.Printf("Wrote %s, %s, %s, %s", paths.AdjNoun, paths.NounPhrases, paths.Sentences, paths.Combined)

	if comp.Store != nil {
		id, err := archive(ctx, comp.Store, report)
		if err != nil {
			return fmt.Errorf("archive run: %w", err)
		}
		logger.Printf("Archived run %s (%d records)", id, len(report.Output.Records))
	}

	batch.WriteSummary(stdout, report, samples)
	return runErr
}

func archive(ctx context.Context, st store.Store, report *batch.Report) (string, error) {
	run := store.Run{
		ID:         store.NewIDs().New(),
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
	}
	for _, u := range report.URLs {
		run.URLs = append(run.URLs, u.URL)
		if u.Failed() {
			run.Failed = append(run.Failed, u.URL)
		}
	}
	// Archive even when ctx ended the run.
	if err := st.SaveRun(context.WithoutCancel(ctx), run, report.Output.Records); err != nil {
		return "", err
	}
	return run.ID, nil
}
