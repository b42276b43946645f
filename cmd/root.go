package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/civicdata/cpahealth/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "cpahealth",
	Short: "Municipal CPA funding vs health outcome analysis",
	Long:  "Ingests a town-level dataset of CPA appropriations and CDC PLACES health prevalences, derives per-capita funding, and computes the funding × health correlation matrix and per-metric summaries.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
