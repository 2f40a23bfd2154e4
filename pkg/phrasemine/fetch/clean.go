package fetch

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// chromeElements are removed with their whole subtree before text collection.
var chromeElements = []atom.Atom{
	atom.Script, atom.Style, atom.Header, atom.Footer,
	atom.Nav, atom.Aside, atom.Form, atom.Button,
}

// contentElements contribute their text, in document order.
var contentElements = []atom.Atom{
	atom.P, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Li,
}

var (
	chromeSelector  = selectorFor(chromeElements)
	contentSelector = selectorFor(contentElements)
)

func selectorFor(atoms []atom.Atom) string {
	names := make([]string, len(atoms))
	for i, a := range atoms {
		names[i] = a.String()
	}
	return strings.Join(names, ", ")
}

// Clean parses markup and returns the visible text of content elements,
// with every whitespace run collapsed to a single space.
//
// A content element nested in another (a <p> inside an <li>) contributes its
// text once for each matching ancestor, mirroring a flat find-all over tags.
func Clean(r io.Reader) (string, error) {
	root, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc := goquery.NewDocumentFromNode(root)
	doc.Find(chromeSelector).Remove()

	var parts []string
	doc.Find(contentSelector).Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			if text := elementText(n); text != "" {
				parts = append(parts, text)
			}
		}
	})

	return NormalizeSpace(strings.Join(parts, " ")), nil
}

// CleanString is Clean over an in-memory document.
func CleanString(markup string) (string, error) {
	return Clean(strings.NewReader(markup))
}

// elementText joins the trimmed text nodes below n with single spaces.
func elementText(n *html.Node) string {
	var pieces []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				pieces = append(pieces, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(pieces, " ")
}

// NormalizeSpace collapses whitespace runs (including newlines) to one space
// and trims both ends.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
