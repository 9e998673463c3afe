// Package whttp carries shared HTTP request plumbing for the collaborator
// service clients.
package whttp

import (
	"strings"

	"golang.org/x/net/html"
)

// ErrorSnippet condenses a non-JSON error body into something usable inside
// an error message. Misconfigured collaborator services tend to answer with
// HTML error pages; when the body parses as HTML with a title, the title is
// the most useful part.
func ErrorSnippet(body string) string {
	if title, ok := htmlTitle(body); ok && title != "" {
		return title
	}
	trimmed := strings.TrimSpace(body)
	if len(trimmed) > 200 {
		trimmed = trimmed[:200] + "..."
	}
	return trimmed
}

func isTitleElement(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "title"
}

func traverse(n *html.Node) (string, bool) {
	if isTitleElement(n) {
		if n.FirstChild != nil {
			return strings.TrimSpace(n.FirstChild.Data), true
		}
		return "", true
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		result, ok := traverse(c)
		if ok {
			return result, ok
		}
	}

	return "", false
}

func htmlTitle(body string) (string, bool) {
	if !strings.Contains(body, "<") {
		return "", false
	}
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", false
	}
	return traverse(doc)
}
