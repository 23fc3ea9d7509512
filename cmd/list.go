package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-rva-metrics/internal/report"
	"github.com/pable/go-rva-metrics/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored matches",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := storage.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer db.Close()

		matches, err := db.ListMatches()
		if err != nil {
			return fmt.Errorf("query matches: %w", err)
		}
		if len(matches) == 0 {
			fmt.Println("no matches stored; run 'rvametrics analyze <match-id>' first")
			return nil
		}
		report.PrintMatchList(os.Stdout, matches)
		return nil
	},
}
