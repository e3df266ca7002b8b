package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/civicdata/nyc311-ingress/pkg/config"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "nyc311",
	Short: "NYC 311 service-request cleaning pipeline",
	Long: `nyc311 ingests a raw NYC 311 service-request extract and produces a
validated, analysis-ready dataset: normalized fields, quality flags,
key-level deduplication, and summary statistics.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("could not load configuration: %w", err)
		}
		logger, err = config.NewLogger(cfg)
		if err != nil {
			return fmt.Errorf("could not build logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().String("input", "", "path to the raw 311 CSV extract")
	rootCmd.PersistentFlags().Int("workers", 0, "per-row worker count (0 = number of CPUs)")
}
