package assemble

import (
	"reflect"
	"testing"
	"time"

	"github.com/cognicore/phrasemine/pkg/phrasemine"
)

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func sampleMatches() []phrasemine.PhraseMatch {
	s := phrasemine.Sentence{Text: "The beautiful mosque stands tall.", SourceURL: "https://example.com/a"}
	return []phrasemine.PhraseMatch{
		{Phrase: "The beautiful mosque", Pattern: phrasemine.DetAdjNoun, Sentence: s, SourceURL: s.SourceURL},
		{Phrase: "beautiful mosque", Pattern: phrasemine.AdjNoun, Sentence: s, SourceURL: s.SourceURL},
		{Phrase: "The beautiful mosque", Pattern: phrasemine.NounChunk, Sentence: s, SourceURL: s.SourceURL},
	}
}

func TestAssembleFields(t *testing.T) {
	ts := time.Date(2024, 3, 14, 9, 26, 53, 589793000, time.Local)
	a := New(WithClock(fixedClock(ts)))

	records := a.Assemble(sampleMatches(), "https://example.com/a")
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	wantTypes := []phrasemine.PhraseType{
		phrasemine.PhraseAdjectiveNoun,
		phrasemine.PhraseAdjectiveNoun,
		phrasemine.PhraseNoun,
	}
	for i, r := range records {
		if r.PhraseType != wantTypes[i] {
			t.Errorf("record %d PhraseType = %q, want %q", i, r.PhraseType, wantTypes[i])
		}
		if r.Language != "English" || r.Location != "Islamabad" {
			t.Errorf("record %d fixed fields = %q/%q", i, r.Language, r.Location)
		}
		if r.OSMTagKey != "" || r.OSMTagValue != "" || r.Coordinates != "" {
			t.Errorf("record %d reserved fields should be empty: %+v", i, r)
		}
		if r.Source != "https://example.com/a" {
			t.Errorf("record %d Source = %q", i, r.Source)
		}
		if r.SentenceContext != "The beautiful mosque stands tall." {
			t.Errorf("record %d SentenceContext = %q", i, r.SentenceContext)
		}
		if got := r.ExtractedAtString(); got != "2024-03-14T09:26:53.589793" {
			t.Errorf("record %d ExtractedAt = %q", i, got)
		}
	}
}

func TestAssembleUsesSourceArgument(t *testing.T) {
	a := New()
	records := a.Assemble(sampleMatches()[:1], "https://other.example/b")
	if records[0].Source != "https://other.example/b" {
		t.Errorf("Source = %q, want the sourceURL argument", records[0].Source)
	}
}

func TestAssembleIdempotentWithFixedClock(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	a := New(WithClock(fixedClock(ts)))

	first := a.Assemble(sampleMatches(), "https://example.com/a")
	second := a.Assemble(sampleMatches(), "https://example.com/a")
	if !reflect.DeepEqual(first, second) {
		t.Error("assembling the same matches with a fixed clock should be identical")
	}
}

func TestAssembleClockPerRecord(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	calls := 0
	a := New(WithClock(func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	}))

	records := a.Assemble(sampleMatches(), "https://example.com/a")
	if calls != len(records) {
		t.Errorf("clock read %d times, want once per record (%d)", calls, len(records))
	}
	if !records[2].ExtractedAt.After(records[0].ExtractedAt) {
		t.Error("timestamps should advance independently per record")
	}
}

func TestAssembleOverrides(t *testing.T) {
	a := New(WithLanguage("Urdu"), WithLocation("Rawalpindi"))
	r := a.Assemble(sampleMatches()[:1], "u")[0]
	if r.Language != "Urdu" || r.Location != "Rawalpindi" {
		t.Errorf("overrides not applied: %+v", r)
	}
}

func TestAssembleEmpty(t *testing.T) {
	if got := New().Assemble(nil, "u"); len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
}
