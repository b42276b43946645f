package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var metricsFile string

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Print the effective metric definitions",
	RunE: func(_ *cobra.Command, _ []string) error {
		file := metricsFile
		if file == "" {
			file = cfg.Dataset.MetricsFile
		}
		reg, err := loadMetrics(file)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reg.All())
	},
}

func init() {
	metricsCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "YAML metric definition overrides")
	rootCmd.AddCommand(metricsCmd)
}
