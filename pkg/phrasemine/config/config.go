package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/phrasemine/internal/sources"
	"github.com/cognicore/phrasemine/pkg/phrasemine"
	"github.com/cognicore/phrasemine/pkg/phrasemine/batch"
	"github.com/cognicore/phrasemine/pkg/phrasemine/export"
	"github.com/cognicore/phrasemine/pkg/phrasemine/fetch"
	"github.com/cognicore/phrasemine/pkg/phrasemine/internalerr"
	"github.com/cognicore/phrasemine/pkg/phrasemine/nlp"
	"github.com/cognicore/phrasemine/pkg/phrasemine/stoplist"
)

// DefaultOutputDir is where the CSV files go when output_dir is unset.
const DefaultOutputDir = "data"

// Config is the YAML run configuration. Every field is optional.
type Config struct {
	Sources      []string      `yaml:"sources"`
	SourcesFile  string        `yaml:"sources_file"`
	OutputDir    string        `yaml:"output_dir"`
	UserAgent    string        `yaml:"user_agent"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	Pause        time.Duration `yaml:"pause"`
	Location     string        `yaml:"location"`
	Language     string        `yaml:"language"`
	FilePrefix   string        `yaml:"file_prefix"`
	Model        Model         `yaml:"model"`
	Stopwords    Stopwords     `yaml:"stopwords"`
	Store        Store         `yaml:"store"`
}

// Model selects the linguistic model.
type Model struct {
	Name        string `yaml:"name"`
	LexiconPath string `yaml:"lexicon_path"`
}

// Stopwords overrides the phrase stopword sets.
type Stopwords struct {
	Pattern []string `yaml:"pattern"`
	Chunk   []string `yaml:"chunk"`
}

// Store configures the optional run archive.
type Store struct {
	SQLitePath string `yaml:"sqlite_path"`
}

// Default returns the reference run configuration.
func Default() Config {
	return Config{
		OutputDir:    DefaultOutputDir,
		UserAgent:    fetch.DefaultUserAgent,
		FetchTimeout: fetch.DefaultTimeout,
		Pause:        batch.DefaultPause,
		Location:     phrasemine.DefaultLocation,
		Language:     phrasemine.DefaultLanguage,
		FilePrefix:   export.DefaultPrefix,
		Model:        Model{Name: nlp.ModelProse},
		Stopwords: Stopwords{
			Pattern: append([]string(nil), stoplist.DefaultPatternStops...),
			Chunk:   append([]string(nil), stoplist.DefaultChunkStops...),
		},
	}
}

// Load reads a YAML file over Default and validates the result. Relative
// paths inside the file are resolved against the file's directory.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	base := filepath.Dir(path)
	cfg.SourcesFile = resolve(base, cfg.SourcesFile)
	cfg.Model.LexiconPath = resolve(base, cfg.Model.LexiconPath)
	cfg.Store.SQLitePath = resolve(base, cfg.Store.SQLitePath)
	return cfg, nil
}

// Parse decodes YAML over Default and validates it.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %v: %w", err, internalerr.ErrInvalidConfig)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) || p == ":memory:" {
		return p
	}
	return filepath.Join(base, p)
}

// applyDefaults fills fields an explicit empty YAML value cleared.
func (c *Config) applyDefaults() {
	d := Default()
	if c.OutputDir == "" {
		c.OutputDir = d.OutputDir
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = d.FetchTimeout
	}
	if c.Location == "" {
		c.Location = d.Location
	}
	if c.Language == "" {
		c.Language = d.Language
	}
	if c.FilePrefix == "" {
		c.FilePrefix = d.FilePrefix
	}
	if c.Model.Name == "" {
		c.Model.Name = d.Model.Name
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	var problems []string
	if c.FetchTimeout < 0 {
		problems = append(problems, "fetch_timeout must not be negative")
	}
	if c.Pause < 0 {
		problems = append(problems, "pause must not be negative")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		problems = append(problems, "output_dir must not be empty")
	}
	if strings.ContainsAny(c.FilePrefix, `/\`) {
		problems = append(problems, "file_prefix must not contain path separators")
	}
	switch strings.ToLower(c.Model.Name) {
	case nlp.ModelProse:
	case nlp.ModelLexicon:
		if c.Model.LexiconPath == "" {
			problems = append(problems, "model.lexicon_path is required for the lexicon model")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown model %q", c.Model.Name))
	}
	for _, u := range c.Sources {
		if err := sources.Validate(u); err != nil {
			problems = append(problems, "sources: "+err.Error())
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s: %w", strings.Join(problems, "; "), internalerr.ErrInvalidConfig)
	}
	return nil
}

// URLs returns the ordered source list: inline sources, then the sources
// file, deduplicated. With neither set it is the reference list.
func (c Config) URLs() ([]string, error) {
	var fromFile []string
	if c.SourcesFile != "" {
		var err error
		fromFile, err = sources.LoadFile(c.SourcesFile)
		if err != nil {
			return nil, fmt.Errorf("load sources: %w", err)
		}
	}
	urls := sources.Merge(c.Sources, fromFile)
	if len(urls) == 0 {
		return append([]string(nil), sources.Default...), nil
	}
	return urls, nil
}
