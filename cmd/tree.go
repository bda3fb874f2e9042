package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/countries-cli/internal/model"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the saved hierarchy",
	Long:  "Loads the saved snapshot, links it back into a graph, and prints continents, regions, countries and subdivisions as an indented tree.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ds, err := loadDataset(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}

		depth, _ := cmd.Flags().GetInt("depth")
		formatTree(os.Stdout, ds, depth)
		zap.L().Debug("tree printed",
			zap.Int("countries", len(ds.Countries)),
			zap.Int("subdivisions", len(ds.Subdivisions)),
		)
		return nil
	},
}

// formatTree writes one line per entity, indented by level. depth limits the
// levels shown: 1 continents, 2 regions, 3 countries, 0 or 4+ everything.
// Countries outside any region are listed last.
func formatTree(w io.Writer, ds *model.Dataset, depth int) {
	if depth <= 0 {
		depth = 1 << 30
	}
	line := func(level int, format string, args ...any) {
		fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", level), fmt.Sprintf(format, args...))
	}

	for _, c := range ds.Continents {
		line(0, "%s %s", c.UNM49Code, c.DisplayName())
		if depth < 2 {
			continue
		}
		for _, r := range c.Regions {
			line(1, "%s %s (%s countries)", r.UNM49Code, r.DisplayName(), humanize.Comma(int64(len(r.Countries))))
			if depth < 3 {
				continue
			}
			for _, country := range r.Countries {
				writeCountry(line, 2, country, depth)
			}
		}
	}

	var orphans []*model.Country
	for _, c := range ds.Countries {
		if c.Region == nil {
			orphans = append(orphans, c)
		}
	}
	if len(orphans) > 0 && depth >= 3 {
		line(0, "(no region)")
		for _, c := range orphans {
			writeCountry(line, 1, c, depth)
		}
	}
}

func writeCountry(line func(int, string, ...any), level int, c *model.Country, depth int) {
	name := c.DisplayName()
	if name == "" {
		name = c.EnglishShortName
	}
	line(level, "%s %s (%s subdivisions)", c.ISOTwoLetterCode, name, humanize.Comma(int64(len(c.Subdivisions))))
	if depth < 4 {
		return
	}
	for _, s := range c.Subdivisions {
		if s.Parent == nil {
			writeSubdivision(line, level+1, s)
		}
	}
}

func writeSubdivision(line func(int, string, ...any), level int, s *model.Subdivision) {
	name := s.DisplayName()
	if s.ISOSubdivisionCategory != "" {
		name += " [" + s.ISOSubdivisionCategory + "]"
	}
	line(level, "%s %s", s.ISOCountrySubdivisionCode, name)
	for _, child := range s.SubSubdivisions {
		writeSubdivision(line, level+1, child)
	}
}

func init() {
	treeCmd.Flags().Int("depth", 0, "levels to print (1 continents, 2 regions, 3 countries, 0 all)")
	rootCmd.AddCommand(treeCmd)
}
