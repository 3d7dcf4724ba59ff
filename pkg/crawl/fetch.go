package crawl

import (
	"context"
	"io"
	"net/http"
	"strings"
)

// Fetch performs the HtmlFetcher of spec C9: a single GET against url,
// following up to redirects Location-header hops on its own rather than
// relying on net/http's transport-level redirect policy, since the spec
// pins the exact status/redirects-remaining contract. It returns the body
// iff the final response is status 200 with a Content-Type starting with
// text/html (case-insensitive, first value before any ";"). Any other
// outcome — non-200, non-html, exhausted redirects, transport error —
// yields a nil body.
func Fetch(ctx context.Context, client *http.Client, url string, redirects int) ([]byte, error) {
	noFollow := &http.Client{
		Transport:     client.Transport,
		Timeout:       client.Timeout,
		Jar:           client.Jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error { return http.ErrUseLastResponse },
	}

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := noFollow.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= 300 && resp.StatusCode < 400 {
			loc := resp.Header.Get("Location")
			resp.Body.Close()
			if loc == "" || redirects <= 0 {
				return nil, nil
			}
			url = loc
			redirects--
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, nil
		}

		ct := firstContentType(resp.Header.Get("Content-Type"))
		if !strings.HasPrefix(strings.ToLower(ct), "text/html") {
			resp.Body.Close()
			return nil, nil
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		return body, nil
	}
}

// firstContentType returns the first comma/semicolon-delimited value of a
// Content-Type header, e.g. "text/html; charset=utf-8" -> "text/html".
func firstContentType(header string) string {
	if i := strings.IndexAny(header, ";,"); i >= 0 {
		return strings.TrimSpace(header[:i])
	}
	return strings.TrimSpace(header)
}
