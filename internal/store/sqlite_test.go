package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/countries-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_RoundTrip(t *testing.T) {
	storeRoundTrip(t, newTestSQLiteStore(t))
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.Migrate(context.Background()))
}

func TestSQLite_KeysAndOrder(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	in := []Record{
		{Key: "MC", Data: []byte(`{"isoTwoLetterCountryCode":"MC"}`)},
		{Key: "AD", Data: []byte(`{"isoTwoLetterCountryCode":"AD"}`)},
	}
	require.NoError(t, st.SaveTable(ctx, model.TableCountries, in))

	out, err := st.LoadTable(ctx, model.TableCountries)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "MC", out[0].Key)
	assert.Equal(t, "AD", out[1].Key)
	assert.JSONEq(t, `{"isoTwoLetterCountryCode":"AD"}`, string(out[1].Data))

	var n int
	require.NoError(t, st.db.QueryRowContext(ctx, `SELECT count(*) FROM countries WHERE key = 'MC'`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSQLite_EmptyTable(t *testing.T) {
	st := newTestSQLiteStore(t)
	out, err := st.LoadTable(context.Background(), model.TableSubdivisions)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestSQLite_UnknownTable(t *testing.T) {
	st := newTestSQLiteStore(t)
	_, err := st.LoadTable(context.Background(), "sqlite_master")
	assert.True(t, eris.Is(err, ErrUnknownTable))
}

func TestSQLite_FailedSaveKeepsPreviousSnapshot(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	before := sampleTables()
	require.NoError(t, Save(ctx, st, before))

	_, err := st.db.ExecContext(ctx, `DROP TABLE subdivisions`)
	require.NoError(t, err)

	next := sampleTables()
	next.Continents[0].WikidataID = "Q0"
	next.Countries = nil
	err = Save(ctx, st, next)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite: clear subdivisions")

	require.NoError(t, st.Migrate(ctx))
	got, err := Load(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, before.Continents, got.Continents)
	assert.Equal(t, before.Countries, got.Countries)
}
