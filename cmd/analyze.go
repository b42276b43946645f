package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/civicdata/cpahealth/internal/dataset"
)

var (
	analyzeInput       string
	analyzeFormat      string
	analyzeOutput      string
	analyzeMetricsFile string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the load → derive → correlate pipeline once",
	Long: `Loads the town dataset from a file, URL, or FTP path, derives per-capita
funding, and computes the correlation matrix and per-metric summaries.

Examples:
  # Local CSV, human-readable report
  cpahealth analyze --input towns.csv --format report

  # Remote dataset, JSON products to a file
  cpahealth analyze --input https://example.org/cpa_health.csv --output products.json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		source, err := resolveSource(analyzeInput)
		if err != nil {
			return err
		}

		reg, err := loadMetrics(analyzeMetricsFile)
		if err != nil {
			return err
		}

		snap, err := newPipeline(cfg).Load(ctx, source)
		if err != nil {
			return eris.Wrap(err, "analyze: load dataset")
		}

		analysis, err := dataset.Analyze(snap)
		if err != nil {
			return eris.Wrap(err, "analyze: compute products")
		}

		zap.L().Info("analysis complete",
			zap.String("snapshot_id", analysis.SnapshotID),
			zap.Int("towns", len(analysis.Records)),
			zap.Int("matrix_cells", len(analysis.Matrix.Cells)),
		)

		out := os.Stdout
		if analyzeOutput != "" {
			f, err := os.Create(analyzeOutput)
			if err != nil {
				return eris.Wrap(err, "analyze: create output file")
			}
			defer f.Close() //nolint:errcheck
			out = f
		}

		if analyzeFormat == "report" {
			dataset.WriteReport(out, analysis, reg)
			return nil
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeInput, "input", "", "dataset path or URL (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "json", "output format: json (default) or report")
	analyzeCmd.Flags().StringVar(&analyzeOutput, "output", "", "write output to file (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeMetricsFile, "metrics-file", "", "YAML metric definition overrides")
	rootCmd.AddCommand(analyzeCmd)
}
