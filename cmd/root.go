package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/countries-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "countries",
	Short:         "Country, region and subdivision dataset scraper",
	Long:          "Scrapes ISO 3166 countries and subdivisions from Wikipedia, groups them into UN M49 regions, enriches them with Wikidata and GeoNames, and saves the linked dataset.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		if err := config.InitLogger(c.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}
		cfg = c
		zap.L().Debug("config loaded",
			zap.String("command", cmd.Name()),
			zap.String("env", cfg.Env),
			zap.String("store", cfg.Store.Driver),
		)
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "countries:", err)
		os.Exit(1)
	}
}
