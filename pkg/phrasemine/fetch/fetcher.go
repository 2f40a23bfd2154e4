// Package fetch retrieves web pages and reduces them to their visible text.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html/charset"

	"github.com/cognicore/phrasemine/pkg/phrasemine"
	"github.com/cognicore/phrasemine/pkg/phrasemine/fn"
	"github.com/cognicore/phrasemine/pkg/phrasemine/internalerr"
)

// DefaultUserAgent is a browser-like agent string; several sources refuse
// requests from obvious bots.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// DefaultTimeout bounds a single GET, including reading the body.
const DefaultTimeout = 10 * time.Second

// Config configures the fetcher.
type Config struct {
	Timeout   time.Duration // Default: 10s.
	UserAgent string
	MaxBytes  int64 // Max response body size. Default: 10MB.
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10 * 1024 * 1024
	}
}

// FetchError reports a network failure, timeout or non-2xx response.
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: http %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, internalerr.ErrFetch) match any FetchError.
func (e *FetchError) Is(target error) bool {
	return target == internalerr.ErrFetch
}

// Fetcher performs one GET per URL and cleans the markup. No retries.
type Fetcher struct {
	client *http.Client
	config Config
	logger *log.Logger
}

// New creates a Fetcher. A nil logger uses log.Default().
func New(cfg Config, logger *log.Logger) *Fetcher {
	cfg.defaults()
	if logger == nil {
		logger = log.Default()
	}
	return &Fetcher{
		client: &http.Client{Timeout: cfg.Timeout},
		config: cfg,
		logger: logger,
	}
}

// Fetch retrieves url and returns its cleaned text. Failures are returned in
// the Result: a *FetchError for transport/status problems and
// internalerr.ErrEmptyDocument when nothing readable remains.
func (f *Fetcher) Fetch(ctx context.Context, url string) fn.Result[phrasemine.CleanedText] {
	doc, err := f.get(ctx, url)
	if err != nil {
		return fn.Err[phrasemine.CleanedText](err)
	}
	return f.clean(doc)
}

func (f *Fetcher) get(ctx context.Context, url string) (phrasemine.SourceDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return phrasemine.SourceDocument{}, &FetchError{URL: url, Err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return phrasemine.SourceDocument{}, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return phrasemine.SourceDocument{}, &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, f.config.MaxBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return phrasemine.SourceDocument{}, &FetchError{URL: url, Err: fmt.Errorf("decode charset: %w", err)}
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return phrasemine.SourceDocument{}, &FetchError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	return phrasemine.SourceDocument{URL: url, RawHTML: string(raw)}, nil
}

func (f *Fetcher) clean(doc phrasemine.SourceDocument) fn.Result[phrasemine.CleanedText] {
	text, err := CleanString(doc.RawHTML)
	if err != nil {
		return fn.Err[phrasemine.CleanedText](&FetchError{URL: doc.URL, Err: err})
	}
	f.logger.Printf("Fetched %d characters from %s", utf8.RuneCountInString(text), doc.URL)
	if text == "" {
		return fn.Err[phrasemine.CleanedText](fmt.Errorf("%s: %w", doc.URL, internalerr.ErrEmptyDocument))
	}
	return fn.Ok(phrasemine.CleanedText{URL: doc.URL, Text: text})
}

// IsFetchError reports whether err came from the transport or status check.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
