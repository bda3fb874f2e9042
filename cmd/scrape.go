package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/countries-cli/internal/fetcher"
	"github.com/sells-group/countries-cli/internal/graph"
	"github.com/sells-group/countries-cli/internal/model"
	"github.com/sells-group/countries-cli/internal/overrides"
	"github.com/sells-group/countries-cli/internal/pipeline"
	"github.com/sells-group/countries-cli/internal/progress"
	"github.com/sells-group/countries-cli/internal/store"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape and save the dataset",
	Long:  "Fetches every source, resolves Wikipedia, Wikidata and GeoNames identifiers, and replaces the saved snapshot.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cmd.Flags().Changed("driver") {
			cfg.Store.Driver, _ = cmd.Flags().GetString("driver")
		}
		if cmd.Flags().Changed("dir") {
			cfg.Store.Dir, _ = cmd.Flags().GetString("dir")
		}
		if cmd.Flags().Changed("strict") {
			cfg.Scrape.Strict, _ = cmd.Flags().GetBool("strict")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		overrideSet, err := overrides.Load()
		if err != nil {
			return err
		}

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:  cfg.Scrape.UserAgent,
			Timeout:    cfg.Scrape.Timeout,
			MaxRetries: cfg.Scrape.MaxRetries,
		})
		scraper := pipeline.New(f, pipeline.Options{
			Endpoints:        cfg.Sources.Endpoints(),
			Overrides:        overrideSet,
			Schedule:         cfg.Scrape.Schedule(),
			GeoNamesSchedule: cfg.Scrape.GeoNamesSchedule(),
			Strict:           cfg.Scrape.Strict,
			Progress:         progress.ForEnv(cfg.Env),
		})

		start := time.Now()
		ds, err := scraper.GetData(ctx)
		if err != nil {
			return eris.Wrap(err, "scrape")
		}

		report := scraper.Report()
		for _, m := range report.Misses() {
			zap.L().Warn("unresolved entity",
				zap.String("run_id", report.RunID),
				zap.String("kind", string(m.Kind)),
				zap.String("key", m.Key),
				zap.String("wikidata_id", m.WikidataID),
				zap.String("reason", m.Reason),
			)
		}

		st, err := initStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := store.Save(ctx, st, graph.Flatten(ds)); err != nil {
			return eris.Wrap(err, "save snapshot")
		}

		formatSummary(os.Stdout, ds, report.Len(), time.Since(start))
		return nil
	},
}

// formatSummary prints collection counts.
func formatSummary(w io.Writer, ds *model.Dataset, misses int, elapsed time.Duration) {
	fmt.Fprintf(w, "Continents:   %s\n", humanize.Comma(int64(len(ds.Continents))))
	fmt.Fprintf(w, "Regions:      %s\n", humanize.Comma(int64(len(ds.Regions))))
	fmt.Fprintf(w, "Countries:    %s\n", humanize.Comma(int64(len(ds.Countries))))
	fmt.Fprintf(w, "Subdivisions: %s\n", humanize.Comma(int64(len(ds.Subdivisions))))
	if misses > 0 {
		fmt.Fprintf(w, "Unresolved:   %s\n", humanize.Comma(int64(misses)))
	}
	if elapsed > 0 {
		fmt.Fprintf(w, "Elapsed:      %s\n", elapsed.Round(time.Second))
	}
}

func init() {
	scrapeCmd.Flags().String("driver", "", "store driver (json, sqlite, postgres)")
	scrapeCmd.Flags().String("dir", "", "snapshot directory for the json and sqlite drivers")
	scrapeCmd.Flags().Bool("strict", false, "fail on the first entity without a GeoNames mapping")
	rootCmd.AddCommand(scrapeCmd)
}
