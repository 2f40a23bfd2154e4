// Package analytics aggregates extracted records into phrase statistics:
// frequent phrases, head nouns and adjective-noun pair strength.
package analytics

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/cognicore/phrasemine/pkg/phrasemine"
	"github.com/cognicore/phrasemine/pkg/phrasemine/stoplist"
)

// Analyzer accumulates counts over ExtractedRecords.
type Analyzer struct {
	totalRecords int64
	typeCounts   map[phrasemine.PhraseType]int64
	sourceCounts map[string]map[phrasemine.PhraseType]int64
	phraseFreq   map[phraseKey]int64
	phraseText   map[phraseKey]string // first surface form seen
	headFreq     map[string]int64
	headSources  map[string]map[string]int64
	modifierDF   map[string]int64
	headDF       map[string]int64
	pairCounts   map[pair]int64 // ordered (modifier, head)
	adjRecords   int64
	sentences    map[string]struct{}
	stops        *stoplist.Manager
}

type phraseKey struct {
	Type   phrasemine.PhraseType
	Phrase string
}

type pair struct {
	Modifier string
	Head     string
}

// NewAnalyzer creates an empty analyzer. Determiners are ignored when
// splitting phrases into modifiers and heads.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		typeCounts:   make(map[phrasemine.PhraseType]int64),
		sourceCounts: make(map[string]map[phrasemine.PhraseType]int64),
		phraseFreq:   make(map[phraseKey]int64),
		phraseText:   make(map[phraseKey]string),
		headFreq:     make(map[string]int64),
		headSources:  make(map[string]map[string]int64),
		modifierDF:   make(map[string]int64),
		headDF:       make(map[string]int64),
		pairCounts:   make(map[pair]int64),
		sentences:    make(map[string]struct{}),
		stops:        stoplist.NewManager(stoplist.DefaultChunkStops),
	}
}

// Process consumes one record.
func (a *Analyzer) Process(rec phrasemine.ExtractedRecord) {
	words := a.words(rec.Description)
	if len(words) == 0 {
		return
	}
	a.totalRecords++
	a.typeCounts[rec.PhraseType]++
	if a.sourceCounts[rec.Source] == nil {
		a.sourceCounts[rec.Source] = make(map[phrasemine.PhraseType]int64)
	}
	a.sourceCounts[rec.Source][rec.PhraseType]++
	if rec.SentenceContext != "" {
		a.sentences[rec.SentenceContext] = struct{}{}
	}

	key := phraseKey{Type: rec.PhraseType, Phrase: strings.Join(words, " ")}
	a.phraseFreq[key]++
	if _, ok := a.phraseText[key]; !ok {
		a.phraseText[key] = strings.TrimSpace(rec.Description)
	}

	head := words[len(words)-1]
	a.headFreq[head]++
	if a.headSources[head] == nil {
		a.headSources[head] = make(map[string]int64)
	}
	a.headSources[head][rec.Source]++

	if rec.PhraseType != phrasemine.PhraseAdjectiveNoun {
		return
	}
	// Each adjective-noun record is one observation for pair PMI.
	a.adjRecords++
	a.headDF[head]++
	seen := make(map[string]struct{})
	for _, mod := range words[:len(words)-1] {
		if _, ok := seen[mod]; ok {
			continue
		}
		seen[mod] = struct{}{}
		a.modifierDF[mod]++
		a.pairCounts[pair{Modifier: mod, Head: head}]++
	}
}

// ProcessAll consumes records in order.
func (a *Analyzer) ProcessAll(records []phrasemine.ExtractedRecord) {
	for _, rec := range records {
		a.Process(rec)
	}
}

// words lower-cases, strips edge punctuation and drops determiners.
func (a *Analyzer) words(phrase string) []string {
	var out []string
	for _, f := range strings.Fields(strings.ToLower(phrase)) {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if f == "" || a.stops.IsStop(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Stats exposes the aggregated counts.
type Stats struct {
	TotalRecords int64
	Sentences    int
	TypeCounts   map[phrasemine.PhraseType]int64
	SourceCounts map[string]map[phrasemine.PhraseType]int64
	PhraseFreq   map[phraseKey]int64
	PhraseText   map[phraseKey]string
	HeadFreq     map[string]int64
	HeadSources  map[string]map[string]int64
	ModifierDF   map[string]int64
	HeadDF       map[string]int64
	PairCounts   map[pair]int64
	AdjRecords   int64
}

// Snapshot returns a copy of the accumulated statistics.
func (a *Analyzer) Snapshot() Stats {
	return Stats{
		TotalRecords: a.totalRecords,
		Sentences:    len(a.sentences),
		TypeCounts:   copyMap(a.typeCounts),
		SourceCounts: copyNested(a.sourceCounts),
		PhraseFreq:   copyMap(a.phraseFreq),
		PhraseText:   copyMap(a.phraseText),
		HeadFreq:     copyMap(a.headFreq),
		HeadSources:  copyNested(a.headSources),
		ModifierDF:   copyMap(a.modifierDF),
		HeadDF:       copyMap(a.headDF),
		PairCounts:   copyMap(a.pairCounts),
		AdjRecords:   a.adjRecords,
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyNested[K, J comparable, V any](m map[K]map[J]V) map[K]map[J]V {
	out := make(map[K]map[J]V, len(m))
	for k, inner := range m {
		out[k] = copyMap(inner)
	}
	return out
}

// PhraseCount is a phrase with its frequency.
type PhraseCount struct {
	Phrase string
	Type   phrasemine.PhraseType
	Count  int64
}

// TopPhrases returns the most frequent phrases of one type, matched
// case-insensitively. Ties sort alphabetically.
func (s Stats) TopPhrases(phraseType phrasemine.PhraseType, limit int) []PhraseCount {
	var out []PhraseCount
	for key, count := range s.PhraseFreq {
		if key.Type != phraseType {
			continue
		}
		out = append(out, PhraseCount{Phrase: s.PhraseText[key], Type: key.Type, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Phrase < out[j].Phrase
		}
		return out[i].Count > out[j].Count
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// HeadStat describes a head noun.
type HeadStat struct {
	Head    string
	Count   int64
	Sources int
	// Spread is the normalized entropy of the head across sources: 0 when it
	// appears in one source, approaching 1 when evenly spread.
	Spread float64
}

// TopHeads returns the most frequent head nouns.
func (s Stats) TopHeads(limit int) []HeadStat {
	out := make([]HeadStat, 0, len(s.HeadFreq))
	for head, count := range s.HeadFreq {
		out = append(out, HeadStat{
			Head:    head,
			Count:   count,
			Sources: len(s.HeadSources[head]),
			Spread:  entropy(s.HeadSources[head]),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Head < out[j].Head
		}
		return out[i].Count > out[j].Count
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func entropy(counts map[string]int64) float64 {
	if len(counts) <= 1 {
		return 0
	}
	var total float64
	for _, c := range counts {
		total += float64(c)
	}
	if total == 0 {
		return 0
	}
	var h float64
	for _, c := range counts {
		p := float64(c) / total
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h / math.Log2(float64(len(counts)))
}

// PairStat describes a modifier → head pair from adjective-noun phrases.
type PairStat struct {
	Modifier string
	Head     string
	Count    int64
	PMI      float64
	Score    float64 // Count * PMI
}

// TopPairs ranks modifier → head pairs by count weighted by PMI, dropping
// pairs below minPMI.
func (s Stats) TopPairs(limit int, minPMI float64) []PairStat {
	if s.AdjRecords == 0 {
		return nil
	}
	var out []PairStat
	for p, count := range s.PairCounts {
		pmi := computePMI(count, s.ModifierDF[p.Modifier], s.HeadDF[p.Head], s.AdjRecords)
		if pmi < minPMI {
			continue
		}
		out = append(out, PairStat{
			Modifier: p.Modifier,
			Head:     p.Head,
			Count:    count,
			PMI:      pmi,
			Score:    float64(count) * pmi,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Modifier != out[j].Modifier {
			return out[i].Modifier < out[j].Modifier
		}
		return out[i].Head < out[j].Head
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// PairCount returns how often modifier preceded head in an adjective-noun phrase.
func (s Stats) PairCount(modifier, head string) int64 {
	return s.PairCounts[pair{Modifier: modifier, Head: head}]
}

func computePMI(pairCount, dfA, dfB, total int64) float64 {
	if dfA == 0 || dfB == 0 || total == 0 {
		return 0
	}
	smooth := 1.0
	numerator := (float64(pairCount) + smooth) / float64(total)
	denominator := ((float64(dfA) + smooth) / float64(total)) * ((float64(dfB) + smooth) / float64(total))
	return math.Log(numerator / denominator)
}

// SourceTotal is the per-source record breakdown.
type SourceTotal struct {
	Source        string
	AdjectiveNoun int64
	NounPhrase    int64
}

// Total returns both categories combined.
func (t SourceTotal) Total() int64 { return t.AdjectiveNoun + t.NounPhrase }

// SourceTotals lists sources sorted by name.
func (s Stats) SourceTotals() []SourceTotal {
	out := make([]SourceTotal, 0, len(s.SourceCounts))
	for src, counts := range s.SourceCounts {
		out = append(out, SourceTotal{
			Source:        src,
			AdjectiveNoun: counts[phrasemine.PhraseAdjectiveNoun],
			NounPhrase:    counts[phrasemine.PhraseNoun],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}
