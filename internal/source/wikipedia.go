package source

// PageInfoResponse is the subset of a MediaWiki "prop=info" query
// (formatversion=2) the slug stage reads.
type PageInfoResponse struct {
	Query struct {
		Pages []PageInfo `json:"pages"`
	} `json:"query"`
}

// PageInfo describes one page of the query result.
type PageInfo struct {
	PageID       int    `json:"pageid"`
	Title        string `json:"title"`
	CanonicalURL string `json:"canonicalurl"`
	Missing      bool   `json:"missing"`
	Invalid      bool   `json:"invalid"`
}

// CanonicalSlug returns the canonical slug of the first existing page. ok is
// false when the title resolved to no page.
func (r *PageInfoResponse) CanonicalSlug() (slug string, ok bool) {
	for _, p := range r.Query.Pages {
		if p.Missing || p.Invalid || p.CanonicalURL == "" {
			continue
		}
		return SlugFromURL(p.CanonicalURL), true
	}
	return "", false
}
