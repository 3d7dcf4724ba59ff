package crawl

import (
	"net/url"
	"regexp"
)

// hrefPattern is a tolerant, case-insensitive match for an anchor's href
// attribute — spec C9 explicitly calls for a regex extraction rather than
// a full HTML parse for this step, since only anchors matter here and a
// parser is already used downstream for article extraction.
var hrefPattern = regexp.MustCompile(`(?i)<a\s[^>]*?href\s*=\s*["']([^"']*)["']`)

// ListLinks extracts every <a href="..."> target in html, resolves it
// against base, strips fragments, re-encodes the query, and returns the
// cleaned absolute URLs in source order. Resolution failures are skipped.
func ListLinks(base *url.URL, html string) []string {
	matches := hrefPattern.FindAllStringSubmatch(html, -1)
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		href := m[1]
		if href == "" {
			continue
		}
		if resolved := Resolve(base, href); resolved != "" {
			links = append(links, resolved)
		}
	}
	return links
}
