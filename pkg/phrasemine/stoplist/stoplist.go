package stoplist

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Default stopword sets. A phrase equal to one of these (ignoring case) is
// never emitted; phrases merely containing them are kept.
var (
	DefaultPatternStops = []string{"the", "a", "an"}
	DefaultChunkStops   = []string{"the", "a", "an", "this", "that"}
)

// Default exclusive minimum phrase lengths, in characters.
const (
	DefaultPatternMinLen = 3
	DefaultChunkMinLen   = 2
)

// Manager holds a case-insensitive stopword set.
type Manager struct {
	stops map[string]struct{}
}

// NewManager creates a new stoplist manager
func NewManager(initialStops []string) *Manager {
	m := &Manager{stops: make(map[string]struct{}, len(initialStops))}
	for _, s := range initialStops {
		m.Add(s)
	}
	return m
}

// IsStop checks if a phrase is a stopword
func (m *Manager) IsStop(phrase string) bool {
	_, ok := m.stops[normalize(phrase)]
	return ok
}

// Add adds a word to the stoplist
func (m *Manager) Add(word string) {
	if w := normalize(word); w != "" {
		m.stops[w] = struct{}{}
	}
}

// Remove removes a word from the stoplist
func (m *Manager) Remove(word string) {
	delete(m.stops, normalize(word))
}

// All returns all stopwords, sorted
func (m *Manager) All() []string {
	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Rule accepts phrases longer than MinLen characters that are not stopwords.
type Rule struct {
	MinLen int
	Stops  *Manager
}

// Accept reports whether phrase passes the length and stopword checks.
func (r Rule) Accept(phrase string) bool {
	if utf8.RuneCountInString(phrase) <= r.MinLen {
		return false
	}
	return r.Stops == nil || !r.Stops.IsStop(phrase)
}

// PatternRule is the filter for adjective-noun pattern matches.
func PatternRule() Rule {
	return Rule{MinLen: DefaultPatternMinLen, Stops: NewManager(DefaultPatternStops)}
}

// ChunkRule is the filter for noun chunks.
func ChunkRule() Rule {
	return Rule{MinLen: DefaultChunkMinLen, Stops: NewManager(DefaultChunkStops)}
}
