package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/phrasemine/pkg/phrasemine/config"
	"github.com/cognicore/phrasemine/pkg/phrasemine/export"
	"github.com/cognicore/phrasemine/pkg/phrasemine/store/sqlite"
)

const lexiconYAML = `tags:
  DET: [the, a]
  ADJ: [green, lush, small, beautiful, tall]
  NOUN: [hills, city, vendor, snacks, mosque]
  VERB: [surround, sells, stands]
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildConfigFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lexicon.yaml", lexiconYAML)
	cfgPath := writeFile(t, dir, "run.yaml", "output_dir: from-file\nmodel:\n  name: lexicon\n  lexicon_path: lexicon.yaml\n")

	cfg, err := buildConfig(options{configPath: cfgPath, outputDir: "from-flag", dbPath: "runs.db"})
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	if cfg.OutputDir != "from-flag" {
		t.Errorf("OutputDir = %s, want flag value", cfg.OutputDir)
	}
	if cfg.Store.SQLitePath != "runs.db" {
		t.Errorf("SQLitePath = %s", cfg.Store.SQLitePath)
	}
	if cfg.Model.Name != "lexicon" {
		t.Errorf("model from file lost: %s", cfg.Model.Name)
	}
}

func TestBuildConfigInvalidFlag(t *testing.T) {
	if _, err := buildConfig(options{model: "lexicon"}); err == nil {
		t.Error("lexicon model without a lexicon path should fail validation")
	}
}

func TestRunEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/hills":
			fmt.Fprint(w, `<html><body><header>Site</header><main>
<h1>Hills</h1>
<p>Lush green hills surround the city. A small vendor sells snacks.</p>
</main></body></html>`)
		case "/mosque":
			fmt.Fprint(w, `<html><body><p>The beautiful mosque stands tall.</p></body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Sources = []string{srv.URL + "/hills", srv.URL + "/missing", srv.URL + "/mosque"}
	cfg.OutputDir = filepath.Join(dir, "data")
	cfg.Pause = 0
	cfg.Model = config.Model{Name: "lexicon", LexiconPath: writeFile(t, dir, "lexicon.yaml", lexiconYAML)}
	cfg.Store.SQLitePath = filepath.Join(dir, "runs.db")

	var stdout, logs bytes.Buffer
	if err := run(context.Background(), cfg, 5, &stdout, log.New(&logs, "", 0)); err != nil {
		t.Fatalf("run: %v\nlogs:\n%s", err, logs.String())
	}

	paths := export.PathsFor(cfg.OutputDir, "islamabad")
	records, err := export.ReadRecordsFile(paths.Combined)
	if err != nil {
		t.Fatalf("read combined: %v", err)
	}
	if len(records) != 11 {
		t.Errorf("combined records = %d, want 11", len(records))
	}
	for _, rec := range records {
		if strings.HasSuffix(rec.Source, "/missing") {
			t.Errorf("failed URL produced a record: %+v", rec)
		}
	}
	for _, p := range []string{paths.AdjNoun, paths.NounPhrases, paths.Sentences} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing output %s: %v", p, err)
		}
	}

	if !strings.Contains(stdout.String(), "1 failed") {
		t.Errorf("summary should report the failure:\n%s", stdout.String())
	}

	st, err := sqlite.OpenSQLite(context.Background(), cfg.Store.SQLitePath)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	runs, err := st.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Records != 11 || len(runs[0].Failed) != 1 {
		t.Errorf("archived runs = %+v", runs)
	}
}

func TestRunCancelledStillWrites(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Sources = []string{"http://127.0.0.1:1/a"}
	cfg.OutputDir = filepath.Join(dir, "data")
	cfg.Model = config.Model{Name: "lexicon", LexiconPath: writeFile(t, dir, "lexicon.yaml", lexiconYAML)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout bytes.Buffer
	err := run(ctx, cfg, 0, &stdout, log.New(&bytes.Buffer{}, "", 0))
	if err == nil {
		t.Fatal("cancelled run should report cancellation")
	}
	if _, statErr := os.Stat(export.PathsFor(cfg.OutputDir, "").Combined); statErr != nil {
		t.Errorf("outputs should still be written: %v", statErr)
	}
}
