package model

// Table names of the persisted snapshot.
const (
	TableContinents   = "continents"
	TableRegions      = "regions"
	TableCountries    = "countries"
	TableSubdivisions = "subdivisions"
)

// TableNames lists the snapshot tables in load order.
var TableNames = []string{TableContinents, TableRegions, TableCountries, TableSubdivisions}

// ContinentRecord is the persisted form of a Continent. Regions are rebuilt
// on load.
type ContinentRecord struct {
	UNM49Code string `json:"unM49Code"`
	Descriptor
}

// RegionRecord is the persisted form of a Region.
type RegionRecord struct {
	UNM49Code string `json:"unM49Code"`
	Descriptor
	Continent string `json:"continent,omitempty"`
}

// CountryRecord is the persisted form of a Country.
type CountryRecord struct {
	ISOTwoLetterCode     string `json:"isoTwoLetterCountryCode"`
	ISOThreeLetterCode   string `json:"isoThreeLetterCountryCode,omitempty"`
	ISOThreeDigitCode    string `json:"isoThreeDigitCountryCode,omitempty"`
	SubdivisionCodeLabel string `json:"isoCountrySubdivisionCode,omitempty"`
	EnglishShortName     string `json:"englishShortName,omitempty"`
	Descriptor
	Region string `json:"region,omitempty"`
}

// SubdivisionRecord is the persisted form of a Subdivision.
type SubdivisionRecord struct {
	ISOCountrySubdivisionCode string `json:"isoCountrySubdivisionCode"`
	ISOSubdivisionCode        string `json:"isoSubdivisionCode"`
	ISOSubdivisionCategory    string `json:"isoSubdivisionCategory,omitempty"`
	Descriptor
	Country           string `json:"country"`
	ParentSubdivision string `json:"parentSubdivision,omitempty"`
}

// Tables is the flat, reference-free snapshot.
type Tables struct {
	Continents   []ContinentRecord
	Regions      []RegionRecord
	Countries    []CountryRecord
	Subdivisions []SubdivisionRecord
}
