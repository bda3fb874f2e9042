package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/countries-cli/internal/fetcher"
)

// JSONStore keeps each table in <dir>/<table>.json as a JSON array with one
// record per line.
type JSONStore struct {
	dir string
}

// NewJSON returns a store rooted at dir.
func NewJSON(dir string) *JSONStore {
	return &JSONStore{dir: dir}
}

// Migrate creates the data directory.
func (s *JSONStore) Migrate(_ context.Context) error {
	return eris.Wrapf(os.MkdirAll(s.dir, 0o755), "json: create %s", s.dir)
}

func (s *JSONStore) Close() error { return nil }

func (s *JSONStore) path(table string) string {
	return filepath.Join(s.dir, table+".json")
}

// SaveTable replaces one table.
func (s *JSONStore) SaveTable(ctx context.Context, table string, records []Record) error {
	return s.SaveTables(ctx, []Table{{Name: table, Records: records}})
}

// SaveTables writes every table to a temp file first and renames the files
// into place only once all of them are written. A failed encode or write
// leaves the previous snapshot untouched.
func (s *JSONStore) SaveTables(ctx context.Context, tables []Table) error {
	if err := checkTables(tables); err != nil {
		return err
	}

	staged := make([]string, 0, len(tables))
	defer func() {
		for _, tmp := range staged {
			os.Remove(tmp) //nolint:errcheck
		}
	}()
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		tmp, err := s.stage(t)
		if err != nil {
			return err
		}
		staged = append(staged, tmp)
	}

	for i, t := range tables {
		if err := os.Rename(staged[i], s.path(t.Name)); err != nil {
			return eris.Wrapf(err, "json: rename %s", t.Name)
		}
	}
	return nil
}

// stage writes t to a temp file next to its final path.
func (s *JSONStore) stage(t Table) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("[\n")
	for i, rec := range t.Records {
		if i > 0 {
			buf.WriteString(",\n")
		}
		if err := json.Compact(&buf, rec.Data); err != nil {
			return "", eris.Wrapf(err, "json: compact %s record %s", t.Name, rec.Key)
		}
	}
	if len(t.Records) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("]\n")

	tmp, err := os.CreateTemp(s.dir, "."+t.Name+"-*.json")
	if err != nil {
		return "", eris.Wrapf(err, "json: create temp for %s", t.Name)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()           //nolint:errcheck
		os.Remove(tmp.Name()) //nolint:errcheck
		return "", eris.Wrapf(err, "json: write %s", t.Name)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck
		return "", eris.Wrapf(err, "json: close %s", t.Name)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck
		return "", eris.Wrapf(err, "json: chmod %s", t.Name)
	}
	return tmp.Name(), nil
}

// LoadTable reads <dir>/<table>.json. A missing file is an empty table.
func (s *JSONStore) LoadTable(_ context.Context, table string) ([]Record, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path(table))
	if errors.Is(err, fs.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "json: open %s", table)
	}
	defer f.Close() //nolint:errcheck

	docs, err := fetcher.DecodeJSONArray[json.RawMessage](f)
	if err != nil {
		return nil, eris.Wrapf(err, "json: read %s", table)
	}
	out := make([]Record, len(docs))
	for i, d := range docs {
		out[i] = Record{Data: d}
	}
	return out, nil
}
