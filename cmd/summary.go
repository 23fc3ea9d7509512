package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-rva-metrics/internal/report"
	"github.com/pable/go-rva-metrics/internal/storage"
)

var summaryTop int

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show database-wide RVA totals and the top players",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := storage.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer db.Close()

		ov, err := db.GetOverview(summaryTop)
		if err != nil {
			return fmt.Errorf("query overview: %w", err)
		}
		if ov.NMatches == 0 {
			fmt.Println("no matches stored; run 'rvametrics analyze <match-id>' first")
			return nil
		}
		report.PrintOverview(os.Stdout, ov)
		return nil
	},
}

func init() {
	summaryCmd.Flags().IntVar(&summaryTop, "top", 15, "number of top players to print")
}
