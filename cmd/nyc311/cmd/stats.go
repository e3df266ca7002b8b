package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/civicdata/nyc311-ingress/pkg/dataset"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print summary statistics over the cleaned table",
	Long: `Run the cleaning pipeline over the raw extract and print the
summary statistics the reporting collaborators consume: borough and
complaint-type distributions, quality-flag totals, and distinct counts.`,
	Example: `  nyc311 stats --input 311_requests.csv --top 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		if input == "" {
			return fmt.Errorf("--input is required")
		}

		result, err := executePipeline(cmd, input)
		if err != nil {
			return err
		}

		top, _ := cmd.Flags().GetInt("top")
		if top == 0 {
			top = cfg.TopTypes
		}

		ds := dataset.New(result.Records)
		stats := ds.Stats(top)

		fmt.Printf("Total records: %d\n", stats.TotalRecords)
		fmt.Printf("Valid borough: %d, valid coordinates: %d, closed date: %d\n",
			stats.ValidBorough, stats.ValidCoordinates, stats.ClosedDate)
		fmt.Printf("Distinct boroughs: %d, distinct complaint types: %d\n",
			stats.DistinctBoroughs, stats.DistinctComplaintTypes)

		fmt.Println("\nBorough distribution:")
		for _, bc := range stats.Boroughs {
			fmt.Printf("  %-14s %8d  (%.1f%%)\n", bc.Borough, bc.Count, bc.Percent)
		}

		fmt.Printf("\nTop %d complaint types:\n", top)
		for _, tc := range stats.TopComplaintTypes {
			fmt.Printf("  %-32s %8d  (%.1f%%)\n", tc.ComplaintType, tc.Count, tc.Percent)
		}

		if mean, ok := ds.MeanResponseTime(); ok {
			fmt.Printf("\nMean response time: %s\n", mean)
		}

		return nil
	},
}

func init() {
	statsCmd.Flags().Int("top", 0, "complaint-type ranking size (0 = configured default)")
	rootCmd.AddCommand(statsCmd)
}
