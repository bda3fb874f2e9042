// Package source parses the public pages and documents the dataset is
// scraped from: the ISO 3166-1 and ISO 3166-2 Wikipedia pages, the UNSD M49
// region table, the Wikipedia and Wikidata APIs, and GeoNames RDF.
package source

import (
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

// Endpoints are the base URLs of every remote source.
type Endpoints struct {
	Wikipedia    string
	WikipediaAPI string
	WikidataAPI  string
	GeoNames     string
	UNSD         string
}

// DefaultEndpoints returns the production sources.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Wikipedia:    "https://en.wikipedia.org",
		WikipediaAPI: "https://en.wikipedia.org/w/api.php",
		WikidataAPI:  "https://www.wikidata.org/w/api.php",
		GeoNames:     "https://sws.geonames.org",
		UNSD:         "https://unstats.un.org/unsd/methods/m49/m49regin.htm",
	}
}

// CountryListURL is the ISO 3166-1 page.
func (e Endpoints) CountryListURL() string {
	return strings.TrimRight(e.Wikipedia, "/") + "/wiki/ISO_3166-1"
}

// SubdivisionPageURL is the ISO 3166-2 page of a country.
func (e Endpoints) SubdivisionPageURL(alpha2 string) string {
	return strings.TrimRight(e.Wikipedia, "/") + "/wiki/ISO_3166-2:" + strings.ToUpper(alpha2)
}

// ArticleURL returns the Wikipedia article URL for slug.
func (e Endpoints) ArticleURL(slug string) string {
	return strings.TrimRight(e.Wikipedia, "/") + "/wiki/" + slug
}

// ResolveLink resolves a scraped href against the Wikipedia base.
func (e Endpoints) ResolveLink(href string) (string, error) {
	base, err := url.Parse(strings.TrimRight(e.Wikipedia, "/") + "/")
	if err != nil {
		return "", eris.Wrap(err, "source: parse wikipedia base")
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", eris.Wrapf(err, "source: parse link %q", href)
	}
	return base.ResolveReference(ref).String(), nil
}

// PageInfoURL queries the canonical URL of a page, following redirects.
func (e Endpoints) PageInfoURL(title string) string {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("prop", "info")
	q.Set("inprop", "url")
	q.Set("redirects", "1")
	q.Set("format", "json")
	q.Set("formatversion", "2")
	q.Set("titles", title)
	return e.WikipediaAPI + "?" + q.Encode()
}

// EntitiesURL queries the Wikidata entity linked to an English Wikipedia
// page.
func (e Endpoints) EntitiesURL(title string) string {
	q := url.Values{}
	q.Set("action", "wbgetentities")
	q.Set("sites", "enwiki")
	q.Set("props", "labels|claims")
	q.Set("format", "json")
	q.Set("titles", title)
	return e.WikidataAPI + "?" + q.Encode()
}

// GeoNamesURL is the RDF description of a GeoNames feature.
func (e Endpoints) GeoNamesURL(id string) string {
	return strings.TrimRight(e.GeoNames, "/") + "/" + id + "/about.rdf"
}

// TitleFromURL returns the decoded last path segment of a page URL, which is
// the page title the Wikipedia and Wikidata APIs expect.
func TitleFromURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", eris.Wrapf(err, "source: parse page url %q", raw)
	}
	path := strings.TrimRight(u.EscapedPath(), "/")
	slug := path[strings.LastIndex(path, "/")+1:]
	if slug == "" {
		return "", eris.Errorf("source: no page title in %q", raw)
	}
	title, err := url.PathUnescape(slug)
	if err != nil {
		return "", eris.Wrapf(err, "source: unescape %q", slug)
	}
	return title, nil
}

// SlugFromURL returns the last path segment of a canonical URL as-is.
func SlugFromURL(raw string) string {
	s := strings.TrimRight(raw, "/")
	return s[strings.LastIndex(s, "/")+1:]
}
