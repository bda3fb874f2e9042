package graph

import (
	"fmt"

	"github.com/sells-group/countries-cli/internal/model"
)

// Violation is one broken graph invariant.
type Violation struct {
	Kind    model.Kind
	Key     string
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %s: %s", v.Kind, v.Key, v.Message)
}

// Verify checks that keys are unique, every link is recorded in both
// directions exactly once, subdivision codes agree with their suffix, and
// parent chains are acyclic.
func Verify(ds *model.Dataset) []Violation {
	var out []Violation
	add := func(e model.Entity, format string, args ...any) {
		out = append(out, Violation{Kind: e.Kind(), Key: e.Key(), Message: fmt.Sprintf(format, args...)})
	}

	for _, coll := range ds.Collections() {
		seen := make(map[string]bool, len(coll))
		for _, e := range coll {
			if seen[e.Key()] {
				add(e, "duplicate key")
			}
			seen[e.Key()] = true
		}
	}

	for _, r := range ds.Regions {
		if r.Continent != nil && count(r.Continent.Regions, r) != 1 {
			add(r, "listed %d times under continent %s", count(r.Continent.Regions, r), r.Continent.UNM49Code)
		}
		for _, c := range r.Countries {
			if c.Region != r {
				add(c, "listed under region %s but linked elsewhere", r.UNM49Code)
			}
		}
	}
	for _, c := range ds.Continents {
		for _, r := range c.Regions {
			if r.Continent != c {
				add(r, "listed under continent %s but linked elsewhere", c.UNM49Code)
			}
		}
	}

	for _, c := range ds.Countries {
		if c.Region != nil && count(c.Region.Countries, c) != 1 {
			add(c, "listed %d times under region %s", count(c.Region.Countries, c), c.Region.UNM49Code)
		}
		for _, s := range c.Subdivisions {
			if s.Country != c {
				add(s, "listed under country %s but linked elsewhere", c.ISOTwoLetterCode)
			}
		}
	}

	for _, s := range ds.Subdivisions {
		if s.ISOSubdivisionCode != model.SubdivisionSuffix(s.ISOCountrySubdivisionCode) {
			add(s, "subdivision code %q does not match suffix", s.ISOSubdivisionCode)
		}
		if s.Country == nil {
			add(s, "no country")
		} else if count(s.Country.Subdivisions, s) != 1 {
			add(s, "listed %d times under country %s", count(s.Country.Subdivisions, s), s.Country.ISOTwoLetterCode)
		}
		if s.Parent != nil && count(s.Parent.SubSubdivisions, s) != 1 {
			add(s, "listed %d times under parent %s", count(s.Parent.SubSubdivisions, s), s.Parent.ISOCountrySubdivisionCode)
		}
		if hasCycle(s) {
			add(s, "parent chain forms a cycle")
		}
	}

	return out
}

func count[T comparable](list []T, item T) int {
	n := 0
	for _, x := range list {
		if x == item {
			n++
		}
	}
	return n
}

func hasCycle(s *model.Subdivision) bool {
	seen := map[*model.Subdivision]bool{s: true}
	for p := s.Parent; p != nil; p = p.Parent {
		if seen[p] {
			return true
		}
		seen[p] = true
	}
	return false
}
