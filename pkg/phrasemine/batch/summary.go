package batch

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// WriteSummary prints per-category counts, per-URL results and the first
// samples rows of each collection. It is for humans only.
func WriteSummary(w io.Writer, r *Report, samples int) {
	out := r.Output
	fmt.Fprintf(w, "Processed %d URLs in %s (%d failed)\n",
		len(r.URLs), r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond), len(r.Failures()))
	fmt.Fprintf(w, "  sentences:              %d\n", len(out.Sentences))
	fmt.Fprintf(w, "  adjective-noun phrases: %d\n", len(out.AdjNoun))
	fmt.Fprintf(w, "  noun phrases:           %d\n", len(out.NounPhrases))
	fmt.Fprintf(w, "  combined records:       %d\n", len(out.Records))

	fmt.Fprintln(w, "\nPer source:")
	for _, u := range r.URLs {
		switch {
		case u.Failed():
			fmt.Fprintf(w, "  %s: FAILED (%v)\n", u.URL, u.Err)
		case u.Empty:
			fmt.Fprintf(w, "  %s: empty document\n", u.URL)
		default:
			fmt.Fprintf(w, "  %s: %d sentences, %d adjective-noun, %d noun phrases\n",
				u.URL, u.Sentences, u.AdjNoun, u.NounPhrases)
		}
	}

	if samples <= 0 {
		return
	}
	fmt.Fprintln(w, "\nSample adjective-noun phrases:")
	for i, row := range out.AdjNoun {
		if i >= samples {
			break
		}
		fmt.Fprintf(w, "  %q  (%s)\n", row.Phrase, clip(row.Sentence, 60))
	}
	fmt.Fprintln(w, "\nSample noun phrases:")
	for i, row := range out.NounPhrases {
		if i >= samples {
			break
		}
		fmt.Fprintf(w, "  %q  (%s)\n", row.Phrase, clip(row.Sentence, 60))
	}
	fmt.Fprintln(w, "\nSample records:")
	for i, rec := range out.Records {
		if i >= samples {
			break
		}
		fmt.Fprintf(w, "  %-14s %q %s\n", rec.PhraseType, rec.Description, rec.ExtractedAtString())
	}
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "..."
}
