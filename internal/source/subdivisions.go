package source

import (
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/countries-cli/internal/model"
	"github.com/sells-group/countries-cli/internal/overrides"
)

// ColumnRole is what a subdivision table column holds.
type ColumnRole int

const (
	ColumnUnknown ColumnRole = iota
	ColumnCode
	ColumnCategory
	ColumnParent
)

var (
	codeHeader     = regexp.MustCompile(`(?i)code`)
	categoryHeader = regexp.MustCompile(`(?i)category`)
	parentHeader   = regexp.MustCompile(`(?im)^(in|parent)`)
)

// ResolveColumn maps a header cell's text to its column role.
func ResolveColumn(header string) ColumnRole {
	switch {
	case codeHeader.MatchString(header):
		return ColumnCode
	case categoryHeader.MatchString(header):
		return ColumnCategory
	case parentHeader.MatchString(header):
		return ColumnParent
	default:
		return ColumnUnknown
	}
}

// columns holds the index of each role in a table, -1 when absent.
type columns struct {
	code, category, parent int
}

func resolveColumns(table *goquery.Selection) columns {
	cols := columns{code: -1, category: -1, parent: -1}
	table.Find("th").Each(func(i int, th *goquery.Selection) {
		switch ResolveColumn(th.Text()) {
		case ColumnCode:
			cols.code = i
		case ColumnCategory:
			cols.category = i
		case ColumnParent:
			cols.parent = i
		}
	})
	return cols
}

// CategoryFromHeading derives a subdivision category from a section
// heading. ok is false when the heading names no category.
func CategoryFromHeading(heading string) (category string, ok bool) {
	heading = strings.TrimSpace(heading)
	switch heading {
	case "Chains (of islands)":
		return "Chain", true
	case "Municipalities":
		return "Municipality", true
	case "Parishes":
		return "Parish", true
	case "Counties", "47 counties":
		return "County", true
	case "Autonomous republic":
		return heading, true
	}
	if strings.HasSuffix(heading, "s") {
		return strings.TrimSuffix(heading, "s"), true
	}
	return "", false
}

// capitalize upper-cases the first letter and leaves the rest untouched.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return cases.Upper(language.Und).String(string(r)) + s[size:]
}

// SubdivisionParser reads ISO 3166-2 pages.
type SubdivisionParser struct {
	Endpoints Endpoints
	Overrides *overrides.Set
}

// Parse reads the "Current codes" section of country's ISO 3166-2 page and
// returns its subdivisions, linked to country and to their parents.
func (p *SubdivisionParser) Parse(r io.Reader, country *model.Country) ([]*model.Subdivision, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, eris.Wrapf(err, "source: parse subdivisions of %s", country.ISOTwoLetterCode)
	}

	heading := sectionHeading(doc.Find("#Current_codes").First(), "h2")
	if heading.Length() == 0 {
		return nil, nil
	}

	alpha2 := strings.ToUpper(country.ISOTwoLetterCode)
	category, fixed := "", false
	if o, ok := p.Overrides.Categories.Lookup(alpha2); ok && !o.Suppressed {
		category, fixed = o.Value, true
	}

	var (
		subdivisions []*model.Subdivision
		byCode       = make(map[string]*model.Subdivision)
		tableIndex   int
		parseErr     error
	)
	heading.NextAll().EachWithBreak(func(_ int, el *goquery.Selection) bool {
		switch {
		case el.Is("h2") || el.HasClass("mw-heading2"):
			return false
		case el.Is("h3") || el.HasClass("mw-heading3"):
			if fixed {
				return true
			}
			if c, ok := CategoryFromHeading(headingText(el)); ok {
				category = c
			}
		case el.Is("table"):
			parseErr = p.parseTable(el, tableIndex, category, country, &subdivisions, byCode)
			if parseErr != nil {
				return false
			}
			tableIndex++
		}
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return subdivisions, nil
}

func (p *SubdivisionParser) parseTable(
	table *goquery.Selection,
	tableIndex int,
	defaultCategory string,
	country *model.Country,
	out *[]*model.Subdivision,
	byCode map[string]*model.Subdivision,
) error {
	cols := resolveColumns(table)
	if cols.code < 0 {
		return nil
	}
	log := zap.L().With(zap.String("component", "source"), zap.String("country", country.ISOTwoLetterCode))

	var rowErr error
	table.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Children()
		code := strings.ToUpper(cellText(cells, cols.code))
		if code == "" || byCode[code] != nil {
			return true
		}

		s := model.NewSubdivision(code)
		if o, ok := p.Overrides.Subdivisions.Lookup(code); ok {
			s.SourceURL = o.Value
		} else if href := pageLink(row.Find("td a")); href != "" {
			if s.SourceURL, rowErr = p.Endpoints.ResolveLink(href); rowErr != nil {
				return false
			}
		}
		if s.SourceURL == "" {
			s.Name = cellText(cells, cols.code+1)
		}

		if cols.category >= 0 {
			s.ISOSubdivisionCategory = capitalize(cellText(cells, cols.category))
		} else {
			s.ISOSubdivisionCategory = defaultCategory
		}

		if tableIndex > 0 && cols.parent >= 0 {
			if ref := parentRef(cells.Eq(cols.parent)); ref != "" {
				parent := findBySuffix(*out, ref)
				if parent == nil {
					log.Warn("parent subdivision not found",
						zap.String("subdivision", code),
						zap.String("parent", ref),
					)
				} else {
					s.SetParent(parent)
				}
			}
		}

		country.AddSubdivision(s)
		byCode[code] = s
		*out = append(*out, s)
		return true
	})
	return rowErr
}

// parentRef reads the parent cell: the first link's text, or the cell text.
// An em-dash means no parent; a full code is reduced to its suffix.
func parentRef(cell *goquery.Selection) string {
	if !cell.Is("td") {
		return ""
	}
	text := cell.Find("a").First().Text()
	if strings.TrimSpace(text) == "" {
		text = cell.Text()
	}
	text = strings.TrimSpace(text)
	if text == "" || strings.Contains(text, "—") {
		return ""
	}
	return model.SubdivisionSuffix(text)
}

func findBySuffix(list []*model.Subdivision, suffix string) *model.Subdivision {
	for _, s := range list {
		if s.ISOSubdivisionCode == suffix {
			return s
		}
	}
	return nil
}

func headingText(el *goquery.Selection) string {
	if h := el.Find(".mw-headline"); h.Length() > 0 {
		return h.First().Text()
	}
	if el.Is("h3") {
		return el.Text()
	}
	return el.Find("h3").First().Text()
}
