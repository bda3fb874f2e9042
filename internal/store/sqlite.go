package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/countries-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Each snapshot table
// is a SQL table of (ordinal, key, data) rows.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func sqliteMigration() string {
	var b strings.Builder
	for _, t := range model.TableNames {
		fmt.Fprintf(&b, `
CREATE TABLE IF NOT EXISTS %[1]s (
	ordinal INTEGER PRIMARY KEY,
	key     TEXT NOT NULL,
	data    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_%[1]s_key ON %[1]s(key);
`, t)
	}
	return b.String()
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration())
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveTable replaces one table.
func (s *SQLiteStore) SaveTable(ctx context.Context, table string, records []Record) error {
	return s.SaveTables(ctx, []Table{{Name: table, Records: records}})
}

// SaveTables replaces every listed table in one transaction.
func (s *SQLiteStore) SaveTables(ctx context.Context, tables []Table) error {
	if err := checkTables(tables); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, t := range tables {
		if err := replaceSQLiteTable(ctx, tx, t); err != nil {
			return err
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

func replaceSQLiteTable(ctx context.Context, tx *sql.Tx, t Table) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+t.Name); err != nil {
		return eris.Wrapf(err, "sqlite: clear %s", t.Name)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+t.Name+` (ordinal, key, data) VALUES (?, ?, ?)`)
	if err != nil {
		return eris.Wrapf(err, "sqlite: prepare insert %s", t.Name)
	}
	defer stmt.Close() //nolint:errcheck

	for i, rec := range t.Records {
		if _, err := stmt.ExecContext(ctx, i, rec.Key, string(rec.Data)); err != nil {
			return eris.Wrapf(err, "sqlite: insert %s %s", t.Name, rec.Key)
		}
	}
	return nil
}

func (s *SQLiteStore) LoadTable(ctx context.Context, table string) ([]Record, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT key, data FROM `+table+` ORDER BY ordinal`)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: query %s", table)
	}
	defer rows.Close() //nolint:errcheck

	out := []Record{}
	for rows.Next() {
		var (
			rec  Record
			data string
		)
		if err := rows.Scan(&rec.Key, &data); err != nil {
			return nil, eris.Wrapf(err, "sqlite: scan %s", table)
		}
		rec.Data = []byte(data)
		out = append(out, rec)
	}
	return out, eris.Wrapf(rows.Err(), "sqlite: iterate %s", table)
}
