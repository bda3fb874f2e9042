package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/countries-cli/internal/config"
	"github.com/sells-group/countries-cli/internal/graph"
	"github.com/sells-group/countries-cli/internal/model"
	"github.com/sells-group/countries-cli/internal/store"
)

func initStore(ctx context.Context, c config.StoreConfig) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch c.Driver {
	case "json":
		st = store.NewJSON(c.Dir)
	case "sqlite":
		dsn := c.DatabaseURL
		if dsn == "" {
			if err := os.MkdirAll(c.Dir, 0o755); err != nil {
				return nil, eris.Wrapf(err, "create %s", c.Dir)
			}
			dsn = filepath.Join(c.Dir, "countries.db")
		}
		st, err = store.NewSQLite(dsn)
	case "postgres":
		st, err = store.NewPostgres(ctx, c.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", c.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// loadDataset reads the saved snapshot and links it back into a graph.
func loadDataset(ctx context.Context, c config.StoreConfig) (*model.Dataset, error) {
	st, err := initStore(ctx, c)
	if err != nil {
		return nil, err
	}
	defer st.Close() //nolint:errcheck

	tables, err := store.Load(ctx, st)
	if err != nil {
		return nil, eris.Wrap(err, "load snapshot")
	}
	return graph.Rebuild(tables)
}
