// Package overrides holds the static exception tables consulted before any
// automatic resolution. The tables are embedded YAML, parsed once, and never
// mutated afterwards.
package overrides

import (
	"embed"
	"maps"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var files embed.FS

// Override is the result of a table hit. Suppressed means the key is listed
// with a null value: no resolution exists and none should be attempted.
type Override struct {
	Value      string
	Suppressed bool
}

// Table is an immutable key → override mapping.
type Table struct {
	name    string
	entries map[string]*string
}

// NewTable builds a table from entries; a nil value marks a suppressed key.
func NewTable(name string, entries map[string]*string) *Table {
	return &Table{name: name, entries: maps.Clone(entries)}
}

// Parse decodes a YAML mapping of string keys to string or null values.
func Parse(name string, data []byte) (*Table, error) {
	entries := make(map[string]*string)
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, eris.Wrapf(err, "overrides: parse %s", name)
	}
	return &Table{name: name, entries: entries}, nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Len returns the number of keys.
func (t *Table) Len() int { return len(t.entries) }

// Lookup reports the override for key. ok is false when the key is absent
// and the caller should fall through to automatic resolution.
func (t *Table) Lookup(key string) (o Override, ok bool) {
	if t == nil {
		return Override{}, false
	}
	v, ok := t.entries[key]
	if !ok {
		return Override{}, false
	}
	if v == nil {
		return Override{Suppressed: true}, true
	}
	return Override{Value: *v}, true
}

// Set groups the tables used by the pipeline.
type Set struct {
	// GeoNames maps Wikidata ids to GeoNames ids.
	GeoNames *Table
	// Subdivisions maps ISO 3166-2 codes to Wikipedia page URLs.
	Subdivisions *Table
	// Pages maps derived page slugs to corrected slugs.
	Pages *Table
	// Categories maps ISO 3166-1 alpha-2 codes to a default subdivision
	// category.
	Categories *Table
}

// Load parses the embedded tables.
func Load() (*Set, error) {
	var s Set
	for _, t := range []struct {
		file string
		dst  **Table
	}{
		{"geonames.yaml", &s.GeoNames},
		{"subdivisions.yaml", &s.Subdivisions},
		{"pages.yaml", &s.Pages},
		{"categories.yaml", &s.Categories},
	} {
		data, err := files.ReadFile("data/" + t.file)
		if err != nil {
			return nil, eris.Wrapf(err, "overrides: read %s", t.file)
		}
		table, err := Parse(t.file, data)
		if err != nil {
			return nil, err
		}
		*t.dst = table
	}
	return &s, nil
}

// Default returns the embedded tables, parsed on first use.
var Default = sync.OnceValue(func() *Set {
	s, err := Load()
	if err != nil {
		panic(err)
	}
	return s
})
