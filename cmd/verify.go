package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/countries-cli/internal/graph"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the saved snapshot",
	Long:  "Loads the saved snapshot and checks that every reference resolves and every link is recorded in both directions.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ds, err := loadDataset(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}

		violations := graph.Verify(ds)
		for _, v := range violations {
			fmt.Fprintln(os.Stderr, v.String())
		}
		if len(violations) > 0 {
			return eris.Errorf("verify: %d violations", len(violations))
		}
		fmt.Fprintf(os.Stdout, "OK: %d entities\n", ds.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
