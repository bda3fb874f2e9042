// Package store persists the four snapshot tables. Every backend stores one
// JSON document per record, in input order, under the record's natural key.
package store

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/sells-group/countries-cli/internal/model"
)

// ErrUnknownTable is returned for a table name outside model.TableNames.
var ErrUnknownTable = eris.New("store: unknown table")

// Record is one persisted entity. Key is the natural key; backends that keep
// only the document (JSON files) leave it empty on read.
type Record struct {
	Key  string
	Data json.RawMessage
}

// Table is the full contents of one snapshot table.
type Table struct {
	Name    string
	Records []Record
}

func checkTables(tables []Table) error {
	for _, t := range tables {
		if err := checkTable(t.Name); err != nil {
			return err
		}
	}
	return nil
}

// Store defines the persistence interface for snapshot tables.
type Store interface {
	// SaveTables replaces the contents of every listed table as one
	// snapshot. A failure while writing leaves the previous snapshot in place.
	SaveTables(ctx context.Context, tables []Table) error
	// LoadTable returns the records of table in saved order. A table that was
	// never saved is empty.
	LoadTable(ctx context.Context, table string) ([]Record, error)

	Migrate(ctx context.Context) error
	Close() error
}

func checkTable(table string) error {
	if !slices.Contains(model.TableNames, table) {
		return eris.Wrapf(ErrUnknownTable, "%q", table)
	}
	return nil
}

// Save writes all four tables as one snapshot.
func Save(ctx context.Context, s Store, t *model.Tables) error {
	tables := make([]Table, 0, len(model.TableNames))
	for _, tbl := range []struct {
		name    string
		records func() ([]Record, error)
	}{
		{model.TableContinents, func() ([]Record, error) {
			return encode(t.Continents, func(r model.ContinentRecord) string { return r.UNM49Code })
		}},
		{model.TableRegions, func() ([]Record, error) {
			return encode(t.Regions, func(r model.RegionRecord) string { return r.UNM49Code })
		}},
		{model.TableCountries, func() ([]Record, error) {
			return encode(t.Countries, func(r model.CountryRecord) string { return r.ISOTwoLetterCode })
		}},
		{model.TableSubdivisions, func() ([]Record, error) {
			return encode(t.Subdivisions, func(r model.SubdivisionRecord) string { return r.ISOCountrySubdivisionCode })
		}},
	} {
		records, err := tbl.records()
		if err != nil {
			return eris.Wrapf(err, "store: encode %s", tbl.name)
		}
		tables = append(tables, Table{Name: tbl.name, Records: records})
	}
	return s.SaveTables(ctx, tables)
}

// Load reads all four tables.
func Load(ctx context.Context, s Store) (*model.Tables, error) {
	var (
		t   model.Tables
		err error
	)
	if t.Continents, err = loadTable[model.ContinentRecord](ctx, s, model.TableContinents); err != nil {
		return nil, err
	}
	if t.Regions, err = loadTable[model.RegionRecord](ctx, s, model.TableRegions); err != nil {
		return nil, err
	}
	if t.Countries, err = loadTable[model.CountryRecord](ctx, s, model.TableCountries); err != nil {
		return nil, err
	}
	if t.Subdivisions, err = loadTable[model.SubdivisionRecord](ctx, s, model.TableSubdivisions); err != nil {
		return nil, err
	}
	return &t, nil
}

func encode[T any](rows []T, key func(T) string) ([]Record, error) {
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		data, err := json.Marshal(r)
		if err != nil {
			return nil, eris.Wrapf(err, "marshal %s", key(r))
		}
		out = append(out, Record{Key: key(r), Data: data})
	}
	return out, nil
}

func loadTable[T any](ctx context.Context, s Store, table string) ([]T, error) {
	records, err := s.LoadTable(ctx, table)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(records))
	for i, rec := range records {
		var v T
		if err := json.Unmarshal(rec.Data, &v); err != nil {
			return nil, eris.Wrapf(err, "store: decode %s record %d", table, i)
		}
		out = append(out, v)
	}
	return out, nil
}
