package crawl

import "net/url"

// Clean is the UrlCleaner of spec C9: strips the fragment and
// canonicalizes query encoding. A URL that fails to parse is returned
// unchanged.
func Clean(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	if u.RawQuery != "" {
		q, err := url.ParseQuery(u.RawQuery)
		if err == nil {
			u.RawQuery = q.Encode()
		}
	}
	return u.String()
}

// Resolve resolves ref against base, returning the cleaned absolute form.
// A ref that fails to parse, or that does not resolve against base, is
// discarded (empty string).
func Resolve(base *url.URL, ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(u)
	return Clean(resolved.String())
}
