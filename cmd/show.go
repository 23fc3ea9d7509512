package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pable/go-rva-metrics/internal/report"
	"github.com/pable/go-rva-metrics/internal/storage"
)

var showRuns int

var showCmd = &cobra.Command{
	Use:   "show <match-id>",
	Short: "Show stored results for a match",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().IntVar(&showRuns, "runs", 20, "number of top runs to print (0 = all)")
}

func runShow(cmd *cobra.Command, args []string) error {
	matchID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid match id %q: %w", args[0], err)
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	summary, err := db.GetMatch(matchID)
	if err != nil {
		return fmt.Errorf("query match: %w", err)
	}
	if summary == nil {
		return fmt.Errorf("match %d not found; run 'rvametrics analyze %d' first", matchID, matchID)
	}
	players, err := db.GetPlayerSummaries(matchID)
	if err != nil {
		return fmt.Errorf("query player summaries: %w", err)
	}
	runs, err := db.GetScoredRuns(matchID)
	if err != nil {
		return fmt.Errorf("query scored runs: %w", err)
	}

	out := os.Stdout
	report.PrintMatchHeader(out, *summary)
	report.PrintPlayerTable(out, players)
	fmt.Fprintln(out, "\nTop runs:")
	report.PrintRunTable(out, runs, showRuns)
	return nil
}
