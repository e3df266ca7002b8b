package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/civicdata/nyc311-ingress/pkg/normalize"
	"github.com/civicdata/nyc311-ingress/pkg/pipeline"
	"github.com/civicdata/nyc311-ingress/pkg/source"
	"github.com/civicdata/nyc311-ingress/pkg/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full cleaning pipeline",
	Long: `Load the raw extract, clean it, and print the run summary.
With --materialize the cleaned table and the cleaning-operations ledger
are written to the configured PostgreSQL database.`,
	Example: `  nyc311 run --input 311_requests.csv
  nyc311 run --input 311_requests.csv --materialize --workers 8`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		if input == "" {
			return fmt.Errorf("--input is required")
		}
		materialize, _ := cmd.Flags().GetBool("materialize")

		result, err := executePipeline(cmd, input)
		if err != nil {
			return err
		}

		printSummary(result)

		if materialize {
			if cfg.Postgres == nil {
				return fmt.Errorf("--materialize requires PostgreSQL configuration (POSTGRES_HOST etc.)")
			}
			st, err := store.Open(cmd.Context(), cfg.Postgres, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.EnsureSchema(cmd.Context()); err != nil {
				return err
			}
			if err := st.MaterializeRun(cmd.Context(), result); err != nil {
				return err
			}
			fmt.Printf("Materialized %d records to PostgreSQL\n", len(result.Records))
		}

		return nil
	},
}

// executePipeline loads the extract and runs one cleaning batch over it.
func executePipeline(cmd *cobra.Command, input string) (*pipeline.Result, error) {
	rows, err := source.LoadCSVFile(input, logger)
	if err != nil {
		return nil, err
	}

	p, err := pipeline.New(normalize.DefaultRules(), logger)
	if err != nil {
		return nil, err
	}

	workers, _ := cmd.Flags().GetInt("workers")
	if workers == 0 {
		workers = cfg.WorkerCount
	}
	p.WithWorkerCount(workers)

	return p.Run(cmd.Context(), rows)
}

func printSummary(result *pipeline.Result) {
	s := result.Summary
	fmt.Printf("Run %s\n", s.RunID)
	fmt.Printf("  Raw rows:              %d\n", s.RawRows)
	fmt.Printf("  Duplicates dropped:    %d\n", s.DuplicatesDropped)
	fmt.Printf("  Out-of-range dropped:  %d\n", s.OutOfRangeDropped)
	fmt.Printf("  Admitted:              %d\n", s.Admitted)
	fmt.Printf("  Valid borough:         %d (%s)\n", s.ValidBorough, pct(s.ValidBorough, s.Admitted))
	fmt.Printf("  Valid coordinates:     %d (%s)\n", s.ValidCoordinates, pct(s.ValidCoordinates, s.Admitted))
	fmt.Printf("  Closed date present:   %d (%s)\n", s.ClosedDate, pct(s.ClosedDate, s.Admitted))
	fmt.Printf("  Cleaning operations:   %d\n", s.CleaningOperations)
	fmt.Printf("  Duration:              %s\n", s.Duration)
}

func pct(part, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(part)/float64(total))
}

func init() {
	runCmd.Flags().Bool("materialize", false, "write the cleaned table to PostgreSQL")
	rootCmd.AddCommand(runCmd)
}
