// internal/cli/stats.go
package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"scheme-assist/internal/eligibility"
	"scheme-assist/internal/models"
)

func (c *cli) newStatsCommand() *cobra.Command {
	var (
		catalogPath string
		format      string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print statistics about the active schemes in the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != formatTable && format != formatJSON {
				return fmt.Errorf("unknown format %q, want table or json", format)
			}

			provider, _, closeFn, err := c.openProvider(cmd.Context(), catalogPath)
			if err != nil {
				return err
			}
			defer closeFn()

			catalog, err := provider.Load(cmd.Context())
			if err != nil {
				return err
			}
			stats := eligibility.Stats(catalog)

			if format == formatJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			return printStats(cmd, stats)
		},
	}

	cmd.Flags().StringVarP(&catalogPath, "catalog", "c", "", "catalog JSON file (overrides the configured source)")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table or json")

	return cmd
}

func printStats(cmd *cobra.Command, stats models.SchemeStats) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)

	fmt.Fprintf(w, "ACTIVE SCHEMES\t%d\n", stats.TotalSchemes)
	fmt.Fprintf(w, "NEW SCHEMES\t%d\n", stats.NewSchemes)
	fmt.Fprintf(w, "WITH DEADLINES\t%d\n", stats.SchemesWithDeadlines)
	fmt.Fprintln(w, "\t")

	fmt.Fprintln(w, "LEVEL\tSCHEMES")
	for _, level := range sortedKeys(stats.LevelCounts) {
		fmt.Fprintf(w, "%s\t%d\n", level, stats.LevelCounts[level])
	}
	fmt.Fprintln(w, "\t")

	fmt.Fprintln(w, "CATEGORY\tSCHEMES")
	for _, category := range sortedKeys(stats.CategoryCounts) {
		fmt.Fprintf(w, "%s\t%d\n", category, stats.CategoryCounts[category])
	}

	return w.Flush()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
