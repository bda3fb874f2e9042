package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/countries-cli/internal/db"
	"github.com/sells-group/countries-cli/internal/model"
)

// PostgresStore implements Store using pgxpool. Records are JSONB documents.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

var copyColumns = []string{"ordinal", "key", "data"}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 4
	pgxCfg.MinConns = 1
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			pgxCfg.MaxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			pgxCfg.MinConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

func postgresMigration() string {
	var b strings.Builder
	for _, t := range model.TableNames {
		fmt.Fprintf(&b, `
CREATE TABLE IF NOT EXISTS %[1]s (
	ordinal INTEGER PRIMARY KEY,
	key     TEXT NOT NULL,
	data    JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_%[1]s_key ON %[1]s (key);
`, t)
	}
	return b.String()
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration())
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// SaveTable replaces one table.
func (s *PostgresStore) SaveTable(ctx context.Context, table string, records []Record) error {
	return s.SaveTables(ctx, []Table{{Name: table, Records: records}})
}

// SaveTables clears every listed table and COPYs its records, all in one
// transaction.
func (s *PostgresStore) SaveTables(ctx context.Context, tables []Table) error {
	if err := checkTables(tables); err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin save")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, t := range tables {
		if _, err := tx.Exec(ctx, `DELETE FROM `+t.Name); err != nil {
			return eris.Wrapf(err, "postgres: clear %s", t.Name)
		}
		rows := make([][]any, len(t.Records))
		for i, rec := range t.Records {
			rows[i] = []any{int32(i), rec.Key, string(rec.Data)}
		}
		if _, err := db.CopyFrom(ctx, tx, t.Name, copyColumns, rows); err != nil {
			return eris.Wrapf(err, "postgres: save %s", t.Name)
		}
	}
	return eris.Wrap(tx.Commit(ctx), "postgres: commit")
}

func (s *PostgresStore) LoadTable(ctx context.Context, table string) ([]Record, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `SELECT key, data FROM `+table+` ORDER BY ordinal`)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: query %s", table)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var (
			rec  Record
			data []byte
		)
		if err := rows.Scan(&rec.Key, &data); err != nil {
			return nil, eris.Wrapf(err, "postgres: scan %s", table)
		}
		rec.Data = data
		out = append(out, rec)
	}
	return out, eris.Wrapf(rows.Err(), "postgres: iterate %s", table)
}
