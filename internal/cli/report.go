// internal/cli/report.go
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"scheme-assist/internal/eligibility"
)

const (
	formatJSON     = "json"
	formatMarkdown = "markdown"
	formatTable    = "table"
)

func (c *cli) newReportCommand() *cobra.Command {
	var (
		profilePath string
		catalogPath string
		format      string
		minScore    int
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build a recommendation report for a profile",
		Long: `Build a recommendation report for the profile in --profile ("-" reads stdin).
The catalog comes from --catalog, or from the configured catalog source.`,
		Example: `  scheme-cli report --profile profile.json --catalog data/schemes.json --format markdown`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != formatJSON && format != formatMarkdown {
				return fmt.Errorf("unknown format %q, want json or markdown", format)
			}

			data, err := readProfile(cmd, profilePath)
			if err != nil {
				return err
			}
			profile, err := eligibility.DecodeProfile(data)
			if err != nil {
				return err
			}

			provider, cfg, closeFn, err := c.openProvider(cmd.Context(), catalogPath)
			if err != nil {
				return err
			}
			defer closeFn()

			if minScore < 0 {
				minScore = eligibility.DefaultMinScore
				if cfg != nil {
					minScore = cfg.Recommendation.MinScore
				}
			}
			if limit <= 0 && cfg != nil {
				limit = cfg.Recommendation.MarkdownLimit
			}

			builder := eligibility.NewBuilder(provider, c.log, eligibility.WithMinScore(minScore))
			report, err := builder.Build(cmd.Context(), profile)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == formatMarkdown {
				_, err = io.WriteString(out, eligibility.RenderMarkdown(report, limit))
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", `profile JSON file, or "-" for stdin`)
	cmd.Flags().StringVarP(&catalogPath, "catalog", "c", "", "catalog JSON file (overrides the configured source)")
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json or markdown")
	cmd.Flags().IntVar(&minScore, "min-score", -1, "minimum eligibility score (default from config, or 30)")
	cmd.Flags().IntVar(&limit, "limit", 0, "schemes listed in markdown output (default from config, or 20)")
	_ = cmd.MarkFlagRequired("profile")

	return cmd
}

func readProfile(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return data, nil
}
