// Package sources loads the ordered list of URLs to process.
package sources

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
)

// Default is the Islamabad travel blog list, in processing order.
var Default = []string{
	"https://travelwithmansoureh.com/blog/travel-guide-places-to-visit-in-islamabad-and-things-to-do",
	"https://travelpakistani.com/blogs/top-10-most-beautiful-places-in-islamabad-2024/125",
	"https://www.bucketlistly.blog/posts/6-best-places-visit-things-to-do-islamabad-pakistan",
	"https://www.pakistantravelblog.com/top-6-tourist-attractions-near-islamabad/",
}

// Entry is one JSONL line of a sources file.
type Entry struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// LoadFile reads URLs from path. Each non-blank line is either a bare URL or
// a JSON object with a "url" field; lines starting with # are comments.
// Malformed lines are logged and skipped. Order is preserved.
func LoadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	var urls []string
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		raw := line
		if strings.HasPrefix(line, "{") {
			var e Entry
			if err := json.Unmarshal([]byte(line), &e); err != nil {
				log.Printf("Warning: skipping malformed JSON at line %d in %s: %v", i+1, path, err)
				continue
			}
			raw = strings.TrimSpace(e.URL)
		}
		if err := Validate(raw); err != nil {
			log.Printf("Warning: skipping line %d in %s: %v", i+1, path, err)
			continue
		}
		urls = append(urls, raw)
	}

	if len(urls) == 0 {
		return nil, fmt.Errorf("no valid URLs found in %s", path)
	}
	return urls, nil
}

// Validate accepts absolute http and https URLs.
func Validate(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q: missing host", raw)
	}
	return nil
}

// Merge concatenates lists. A URL already listed by an earlier list is
// skipped; repeats within one list are kept, so that list is processed as
// given.
func Merge(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, u := range list {
			if _, ok := seen[u]; ok {
				continue
			}
			out = append(out, u)
		}
		for _, u := range list {
			seen[u] = struct{}{}
		}
	}
	return out
}
