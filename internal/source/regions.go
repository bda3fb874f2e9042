package source

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/countries-cli/internal/model"
	"github.com/sells-group/countries-cli/internal/overrides"
)

// brokenRow matches the Saint-Barthélemy row of the UNSD page, which is
// missing the <tr> that opens the following row.
var brokenRow = regexp.MustCompile(`(?s)(Saint-Barth.+?</tr>)`)

var whitespace = regexp.MustCompile(`\s`)

// PatchUNSD inserts the missing <tr> after the Saint-Barthélemy row. Only the
// first occurrence is patched.
func PatchUNSD(page []byte) []byte {
	loc := brokenRow.FindIndex(page)
	if loc == nil {
		return page
	}
	out := make([]byte, 0, len(page)+4)
	out = append(out, page[:loc[1]]...)
	out = append(out, "<tr>"...)
	return append(out, page[loc[1]:]...)
}

// RegionParser reads the UNSD M49 composition table.
type RegionParser struct {
	Endpoints Endpoints
	// Pages corrects derived article slugs.
	Pages *overrides.Table
}

// Parse classifies the rows of the M49 table into continents and regions and
// links every country whose numeric code appears under a region. Rows are
// read in order: a bold heading cell opens a continent, a bold cell opens a
// region of the latest continent, and any other code is a country of the
// latest region.
func (p *RegionParser) Parse(page []byte, countries []*model.Country) ([]*model.Continent, []*model.Region, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(PatchUNSD(page)))
	if err != nil {
		return nil, nil, eris.Wrap(err, "source: parse unsd page")
	}

	table := doc.Find(`td.content[width="100%"]>table:nth-of-type(4)`)
	if table.Length() == 0 {
		return nil, nil, eris.New("source: unsd region table not found")
	}

	byNumeric := make(map[string]*model.Country, len(countries))
	for _, c := range countries {
		if c.ISOThreeDigitCode != "" {
			byNumeric[c.ISOThreeDigitCode] = c
		}
	}

	var (
		continents []*model.Continent
		regions    []*model.Region
		parseErr   error
	)
	table.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if row.Find("td.cheader2").Length() > 0 {
			return i == 0
		}

		tds := row.Find("td")
		code := strings.TrimSpace(tds.Eq(0).Text())
		if code == "" {
			return true
		}
		label := tds.Eq(1)

		if heading := label.Find("h3 b"); heading.Length() > 0 {
			if span := heading.Find("span.content"); span.Length() > 0 {
				heading = span
			}
			c := &model.Continent{UNM49Code: code}
			c.SourceURL = p.articleURL(strings.TrimSpace(heading.Text()))
			continents = append(continents, c)
			return true
		}

		if bold := label.Find("b"); bold.Length() > 0 {
			if len(continents) == 0 {
				parseErr = eris.Errorf("source: unsd region %s listed before any continent", code)
				return false
			}
			r := &model.Region{UNM49Code: code}
			r.SourceURL = p.articleURL(strings.TrimSpace(bold.Text()))
			continents[len(continents)-1].AddRegion(r)
			regions = append(regions, r)
			return true
		}

		if c, ok := byNumeric[code]; ok && len(regions) > 0 {
			regions[len(regions)-1].AddCountry(c)
		}
		return true
	})
	if parseErr != nil {
		return nil, nil, parseErr
	}
	return continents, regions, nil
}

// articleURL derives a Wikipedia article URL from a UNSD label. A suppressed
// page override yields no URL.
func (p *RegionParser) articleURL(label string) string {
	slug := whitespace.ReplaceAllString(label, "_")
	if o, ok := p.Pages.Lookup(slug); ok {
		if o.Suppressed {
			return ""
		}
		slug = o.Value
	}
	return p.Endpoints.ArticleURL(slug)
}
