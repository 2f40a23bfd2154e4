package fetch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cognicore/phrasemine/pkg/phrasemine/internalerr"
)

func newTestFetcher(cfg Config) (*Fetcher, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(cfg, log.New(&buf, "", 0)), &buf
}

func TestFetchSuccess(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, `<html><body><nav><li>Home</li></nav><h1>Faisal Mosque</h1><p>The   beautiful mosque
stands tall.</p></body></html>`)
	}))
	defer srv.Close()

	f, logs := newTestFetcher(Config{})
	res := f.Fetch(context.Background(), srv.URL)
	doc, err := res.Unwrap()
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if doc.URL != srv.URL {
		t.Errorf("URL = %q, want %q", doc.URL, srv.URL)
	}
	want := "Faisal Mosque The beautiful mosque stands tall."
	if doc.Text != want {
		t.Errorf("Text = %q, want %q", doc.Text, want)
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("User-Agent = %q, want browser-like default", gotUA)
	}
	if !strings.Contains(logs.String(), "Fetched 47 characters") {
		t.Errorf("expected progress log with character count, got %q", logs.String())
	}
}

func TestFetchCustomUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		io.WriteString(w, "<p>Some content here.</p>")
	}))
	defer srv.Close()

	f, _ := newTestFetcher(Config{UserAgent: "phrasemine-test/1.0"})
	if res := f.Fetch(context.Background(), srv.URL); res.IsErr() {
		t.Fatalf("Fetch: %v", res.Error())
	}
	if gotUA != "phrasemine-test/1.0" {
		t.Errorf("User-Agent = %q, want custom agent", gotUA)
	}
}

func TestFetchNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f, _ := newTestFetcher(Config{})
	res := f.Fetch(context.Background(), srv.URL)
	if !res.IsErr() {
		t.Fatal("expected error for 404")
	}

	var fe *FetchError
	if !errors.As(res.Error(), &fe) {
		t.Fatalf("error should be *FetchError, got %T", res.Error())
	}
	if fe.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", fe.StatusCode)
	}
	if !errors.Is(res.Error(), internalerr.ErrFetch) {
		t.Error("FetchError should match internalerr.ErrFetch")
	}
}

func TestFetchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	f, _ := newTestFetcher(Config{})
	res := f.Fetch(context.Background(), url)
	if !IsFetchError(res.Error()) {
		t.Errorf("closed server should yield FetchError, got %v", res.Error())
	}
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f, _ := newTestFetcher(Config{Timeout: 50 * time.Millisecond})
	res := f.Fetch(context.Background(), srv.URL)
	if !errors.Is(res.Error(), internalerr.ErrFetch) {
		t.Errorf("timeout should yield ErrFetch, got %v", res.Error())
	}
}

func TestFetchEmptyDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html><body><nav><p>Only navigation</p></nav></body></html>")
	}))
	defer srv.Close()

	f, _ := newTestFetcher(Config{})
	res := f.Fetch(context.Background(), srv.URL)
	if !errors.Is(res.Error(), internalerr.ErrEmptyDocument) {
		t.Errorf("expected ErrEmptyDocument, got %v", res.Error())
	}
	if IsFetchError(res.Error()) {
		t.Error("empty document is not a fetch error")
	}
}

func TestFetchDecodesCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "café" in Latin-1
		w.Write([]byte("<p>Caf\xe9 near the lake.</p>"))
	}))
	defer srv.Close()

	f, _ := newTestFetcher(Config{})
	doc, err := f.Fetch(context.Background(), srv.URL).Unwrap()
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if doc.Text != "Café near the lake." {
		t.Errorf("Text = %q, want decoded UTF-8", doc.Text)
	}
}
