package source

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/countries-cli/internal/model"
)

// ParseCountryList reads the "Officially assigned code elements" table of
// the ISO 3166-1 page. Each row yields a country stub carrying its codes and
// the link to its article.
func ParseCountryList(r io.Reader, ep Endpoints) ([]*model.Country, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, eris.Wrap(err, "source: parse country list")
	}

	heading := sectionHeading(doc.Find("#Officially_assigned_code_elements").First(), "h2, h3")
	if heading.Length() == 0 {
		return nil, eris.New("source: country list section not found")
	}
	table := heading.NextAllFiltered("table.wikitable").First()
	if table.Length() == 0 {
		return nil, eris.New("source: country list table not found")
	}

	var (
		countries []*model.Country
		rowErr    error
	)
	table.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Children()
		if cells.Filter("td").Length() < 4 {
			return true
		}
		c := &model.Country{
			EnglishShortName:     cellText(cells, 0),
			ISOTwoLetterCode:     strings.ToUpper(cellText(cells, 1)),
			ISOThreeLetterCode:   strings.ToUpper(cellText(cells, 2)),
			ISOThreeDigitCode:    cellText(cells, 3),
			SubdivisionCodeLabel: cellText(cells, 4),
		}
		if c.ISOTwoLetterCode == "" {
			return true
		}
		if href := pageLink(cells.Eq(0).Find("a")); href != "" {
			c.SourceURL, rowErr = ep.ResolveLink(href)
			if rowErr != nil {
				return false
			}
		}
		countries = append(countries, c)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return countries, nil
}

// sectionHeading returns the heading element holding anchor. Current
// Wikipedia markup wraps headings in div.mw-heading; older markup nests a
// span.mw-headline inside the heading.
func sectionHeading(anchor *goquery.Selection, levels string) *goquery.Selection {
	h := anchor.Closest(levels)
	if h.Length() == 0 {
		return h
	}
	if p := h.Parent(); p.HasClass("mw-heading") {
		return p
	}
	return h
}

// cellText returns the trimmed text of the i-th child of a row when that
// child is a td.
func cellText(cells *goquery.Selection, i int) string {
	if i < 0 {
		return ""
	}
	cell := cells.Eq(i)
	if !cell.Is("td") {
		return ""
	}
	return strings.TrimSpace(cell.Text())
}

// pageLink returns the href of the first article link among anchors.
func pageLink(anchors *goquery.Selection) string {
	var href string
	anchors.EachWithBreak(func(_ int, a *goquery.Selection) bool {
		h, _ := a.Attr("href")
		if !isArticleHref(h) {
			return true
		}
		href = h
		return false
	})
	return href
}

// isArticleHref accepts site-relative /wiki/<title> links. Footnotes, red
// links (/w/index.php), external links, images and language articles are
// rejected.
func isArticleHref(href string) bool {
	title, ok := strings.CutPrefix(href, "/wiki/")
	if !ok {
		return false
	}
	title, _, _ = strings.Cut(title, "#")
	return title != "" && !strings.HasPrefix(title, "File:") && !strings.HasSuffix(title, "_language")
}
