package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-rva-metrics/internal/report"
	"github.com/pable/go-rva-metrics/internal/storage"
)

var playerCmd = &cobra.Command{
	Use:   "player <player-name>",
	Short: "Show a player's RVA across all stored matches",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		db, err := storage.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer db.Close()

		rows, err := db.GetPlayerAcrossMatches(name)
		if err != nil {
			return fmt.Errorf("query player: %w", err)
		}
		if len(rows) == 0 {
			return fmt.Errorf("no data found for player %q", name)
		}
		report.PrintPlayerHistory(os.Stdout, name, rows)
		return nil
	},
}
