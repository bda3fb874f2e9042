// Package graph converts between the linked in-memory dataset and the flat,
// key-referenced tables it is persisted as.
package graph

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/countries-cli/internal/model"
)

// ErrDanglingReference is returned when a stored key names no entity.
var ErrDanglingReference = eris.New("graph: dangling reference")

// Flatten projects ds onto flat records. Upward references become natural
// keys; downward lists are dropped.
func Flatten(ds *model.Dataset) *model.Tables {
	t := &model.Tables{
		Continents:   make([]model.ContinentRecord, 0, len(ds.Continents)),
		Regions:      make([]model.RegionRecord, 0, len(ds.Regions)),
		Countries:    make([]model.CountryRecord, 0, len(ds.Countries)),
		Subdivisions: make([]model.SubdivisionRecord, 0, len(ds.Subdivisions)),
	}
	for _, c := range ds.Continents {
		t.Continents = append(t.Continents, model.ContinentRecord{
			UNM49Code:  c.UNM49Code,
			Descriptor: persisted(c.Descriptor),
		})
	}
	for _, r := range ds.Regions {
		rec := model.RegionRecord{UNM49Code: r.UNM49Code, Descriptor: persisted(r.Descriptor)}
		if r.Continent != nil {
			rec.Continent = r.Continent.UNM49Code
		}
		t.Regions = append(t.Regions, rec)
	}
	for _, c := range ds.Countries {
		rec := model.CountryRecord{
			ISOTwoLetterCode:     c.ISOTwoLetterCode,
			ISOThreeLetterCode:   c.ISOThreeLetterCode,
			ISOThreeDigitCode:    c.ISOThreeDigitCode,
			SubdivisionCodeLabel: c.SubdivisionCodeLabel,
			EnglishShortName:     c.EnglishShortName,
			Descriptor:           persisted(c.Descriptor),
		}
		if c.Region != nil {
			rec.Region = c.Region.UNM49Code
		}
		t.Countries = append(t.Countries, rec)
	}
	for _, s := range ds.Subdivisions {
		rec := model.SubdivisionRecord{
			ISOCountrySubdivisionCode: s.ISOCountrySubdivisionCode,
			ISOSubdivisionCode:        s.ISOSubdivisionCode,
			ISOSubdivisionCategory:    s.ISOSubdivisionCategory,
			Descriptor:                persisted(s.Descriptor),
		}
		if s.Country != nil {
			rec.Country = s.Country.ISOTwoLetterCode
		}
		if s.Parent != nil {
			rec.ParentSubdivision = s.Parent.ISOCountrySubdivisionCode
		}
		t.Subdivisions = append(t.Subdivisions, rec)
	}
	return t
}

// persisted copies the stored part of a descriptor.
func persisted(d model.Descriptor) model.Descriptor {
	d.SourceURL = ""
	d.Names = d.Names.Clone()
	return d
}

// Rebuild links flat tables back into a dataset. Every stored key must
// resolve, otherwise an error wrapping ErrDanglingReference is returned.
// Rebuilding the same tables twice yields equal graphs.
func Rebuild(t *model.Tables) (*model.Dataset, error) {
	ds := &model.Dataset{
		Continents:   make([]*model.Continent, 0, len(t.Continents)),
		Regions:      make([]*model.Region, 0, len(t.Regions)),
		Countries:    make([]*model.Country, 0, len(t.Countries)),
		Subdivisions: make([]*model.Subdivision, 0, len(t.Subdivisions)),
	}

	continents := make(map[string]*model.Continent, len(t.Continents))
	for _, rec := range t.Continents {
		c := &model.Continent{UNM49Code: rec.UNM49Code, Descriptor: persisted(rec.Descriptor)}
		continents[c.UNM49Code] = c
		ds.Continents = append(ds.Continents, c)
	}

	regions := make(map[string]*model.Region, len(t.Regions))
	for _, rec := range t.Regions {
		r := &model.Region{UNM49Code: rec.UNM49Code, Descriptor: persisted(rec.Descriptor)}
		if rec.Continent != "" {
			c, ok := continents[rec.Continent]
			if !ok {
				return nil, eris.Wrapf(ErrDanglingReference, "region %s: continent %s", rec.UNM49Code, rec.Continent)
			}
			c.AddRegion(r)
		}
		regions[r.UNM49Code] = r
		ds.Regions = append(ds.Regions, r)
	}

	countries := make(map[string]*model.Country, len(t.Countries))
	for _, rec := range t.Countries {
		c := &model.Country{
			ISOTwoLetterCode:     rec.ISOTwoLetterCode,
			ISOThreeLetterCode:   rec.ISOThreeLetterCode,
			ISOThreeDigitCode:    rec.ISOThreeDigitCode,
			SubdivisionCodeLabel: rec.SubdivisionCodeLabel,
			EnglishShortName:     rec.EnglishShortName,
			Descriptor:           persisted(rec.Descriptor),
		}
		if rec.Region != "" {
			r, ok := regions[rec.Region]
			if !ok {
				return nil, eris.Wrapf(ErrDanglingReference, "country %s: region %s", rec.ISOTwoLetterCode, rec.Region)
			}
			r.AddCountry(c)
		}
		countries[c.ISOTwoLetterCode] = c
		ds.Countries = append(ds.Countries, c)
	}

	// Parents may be stored after their children, so link them in a second
	// pass once every subdivision exists.
	subdivisions := make(map[string]*model.Subdivision, len(t.Subdivisions))
	for _, rec := range t.Subdivisions {
		s := &model.Subdivision{
			ISOCountrySubdivisionCode: rec.ISOCountrySubdivisionCode,
			ISOSubdivisionCode:        rec.ISOSubdivisionCode,
			ISOSubdivisionCategory:    rec.ISOSubdivisionCategory,
			Descriptor:                persisted(rec.Descriptor),
		}
		c, ok := countries[rec.Country]
		if !ok {
			return nil, eris.Wrapf(ErrDanglingReference, "subdivision %s: country %q", rec.ISOCountrySubdivisionCode, rec.Country)
		}
		c.AddSubdivision(s)
		subdivisions[s.ISOCountrySubdivisionCode] = s
		ds.Subdivisions = append(ds.Subdivisions, s)
	}
	for i, rec := range t.Subdivisions {
		if rec.ParentSubdivision == "" {
			continue
		}
		p, ok := subdivisions[rec.ParentSubdivision]
		if !ok {
			return nil, eris.Wrapf(ErrDanglingReference, "subdivision %s: parent %s", rec.ISOCountrySubdivisionCode, rec.ParentSubdivision)
		}
		ds.Subdivisions[i].SetParent(p)
	}

	return ds, nil
}
