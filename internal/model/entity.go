package model

import (
	"slices"
	"strings"
)

// Kind names an entity collection.
type Kind string

const (
	KindContinent   Kind = "continent"
	KindRegion      Kind = "region"
	KindCountry     Kind = "country"
	KindSubdivision Kind = "subdivision"
)

// Descriptor holds the identifiers and descriptive fields every entity
// carries. SourceURL is the scraped page link and is never persisted.
type Descriptor struct {
	WikipediaSlug string    `json:"wikipediaSlug,omitempty"`
	WikidataID    string    `json:"wikidataId,omitempty"`
	GeoNamesID    string    `json:"geoNamesId,omitempty"`
	Name          string    `json:"name,omitempty"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	Names         Localized `json:"names,omitempty"`

	SourceURL string `json:"-"`
}

// Entity is implemented by all four collections so enrichment stages can run
// over them uniformly.
type Entity interface {
	Describe() *Descriptor
	Key() string
	Kind() Kind
}

// Continent is a UN M49 continental region.
type Continent struct {
	UNM49Code string `json:"unM49Code"`
	Descriptor

	Regions []*Region `json:"-"`
}

func (c *Continent) Describe() *Descriptor { return &c.Descriptor }
func (c *Continent) Key() string           { return c.UNM49Code }
func (c *Continent) Kind() Kind            { return KindContinent }

// AddRegion links r under c in both directions. r is detached from any
// previous continent first.
func (c *Continent) AddRegion(r *Region) {
	if r.Continent != nil && r.Continent != c {
		r.Continent.Regions = remove(r.Continent.Regions, r)
	}
	r.Continent = c
	if !slices.Contains(c.Regions, r) {
		c.Regions = append(c.Regions, r)
	}
}

// Region is a UN M49 sub-continental region.
type Region struct {
	UNM49Code string `json:"unM49Code"`
	Descriptor

	Continent *Continent `json:"-"`
	Countries []*Country `json:"-"`
}

func (r *Region) Describe() *Descriptor { return &r.Descriptor }
func (r *Region) Key() string           { return r.UNM49Code }
func (r *Region) Kind() Kind            { return KindRegion }

// AddCountry links c under r in both directions.
func (r *Region) AddCountry(c *Country) {
	if c.Region != nil && c.Region != r {
		c.Region.Countries = remove(c.Region.Countries, c)
	}
	c.Region = r
	if !slices.Contains(r.Countries, c) {
		r.Countries = append(r.Countries, c)
	}
}

// Country is an ISO 3166-1 country.
type Country struct {
	ISOTwoLetterCode   string `json:"isoTwoLetterCountryCode"`
	ISOThreeLetterCode string `json:"isoThreeLetterCountryCode,omitempty"`
	ISOThreeDigitCode  string `json:"isoThreeDigitCountryCode,omitempty"`
	// SubdivisionCodeLabel is the "ISO 3166-2:XX" column of the country list.
	SubdivisionCodeLabel string `json:"isoCountrySubdivisionCode,omitempty"`
	EnglishShortName     string `json:"englishShortName,omitempty"`
	Descriptor

	Region       *Region        `json:"-"`
	Subdivisions []*Subdivision `json:"-"`
}

func (c *Country) Describe() *Descriptor { return &c.Descriptor }
func (c *Country) Key() string           { return c.ISOTwoLetterCode }
func (c *Country) Kind() Kind            { return KindCountry }

// Continent returns the continent of the country's region, if any.
func (c *Country) Continent() *Continent {
	if c.Region == nil {
		return nil
	}
	return c.Region.Continent
}

// AddSubdivision links s under c in both directions.
func (c *Country) AddSubdivision(s *Subdivision) {
	if s.Country != nil && s.Country != c {
		s.Country.Subdivisions = remove(s.Country.Subdivisions, s)
	}
	s.Country = c
	if !slices.Contains(c.Subdivisions, s) {
		c.Subdivisions = append(c.Subdivisions, s)
	}
}

// Subdivision is an ISO 3166-2 subdivision.
type Subdivision struct {
	ISOCountrySubdivisionCode string `json:"isoCountrySubdivisionCode"`
	ISOSubdivisionCode        string `json:"isoSubdivisionCode"`
	ISOSubdivisionCategory    string `json:"isoSubdivisionCategory,omitempty"`
	Descriptor

	Country         *Country       `json:"-"`
	Parent          *Subdivision   `json:"-"`
	SubSubdivisions []*Subdivision `json:"-"`
}

// NewSubdivision returns a subdivision for the given "CC-XXX" code.
func NewSubdivision(code string) *Subdivision {
	return &Subdivision{
		ISOCountrySubdivisionCode: code,
		ISOSubdivisionCode:        SubdivisionSuffix(code),
	}
}

// SubdivisionSuffix returns the component after the last "-".
func SubdivisionSuffix(code string) string {
	if i := strings.LastIndex(code, "-"); i >= 0 {
		return code[i+1:]
	}
	return code
}

func (s *Subdivision) Describe() *Descriptor { return &s.Descriptor }
func (s *Subdivision) Key() string           { return s.ISOCountrySubdivisionCode }
func (s *Subdivision) Kind() Kind            { return KindSubdivision }

// SetParent links s under parent in both directions.
func (s *Subdivision) SetParent(parent *Subdivision) {
	if s.Parent != nil && s.Parent != parent {
		s.Parent.SubSubdivisions = remove(s.Parent.SubSubdivisions, s)
	}
	s.Parent = parent
	if !slices.Contains(parent.SubSubdivisions, s) {
		parent.SubSubdivisions = append(parent.SubSubdivisions, s)
	}
}

// DisplayName prefers the GeoNames name and falls back to the English
// Wikipedia label.
func (d *Descriptor) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Names.Get("en", WikipediaLabel).First()
}

func remove[T comparable](list []T, item T) []T {
	if i := slices.Index(list, item); i >= 0 {
		return slices.Delete(list, i, i+1)
	}
	return list
}
