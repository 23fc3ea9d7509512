package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pable/go-rva-metrics/internal/loader"
	"github.com/pable/go-rva-metrics/internal/model"
	"github.com/pable/go-rva-metrics/internal/report"
	"github.com/pable/go-rva-metrics/internal/rva"
	"github.com/pable/go-rva-metrics/internal/skillcorner"
	"github.com/pable/go-rva-metrics/internal/storage"
)

var (
	analyzeMinutes int
	analyzeRefresh bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <match-id>",
	Short: "Fetch a match, score its off-ball runs and store the results",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeMinutes, "minutes", 0, "analyze only the first N minutes of tracking (0 = full match)")
	analyzeCmd.Flags().BoolVar(&analyzeRefresh, "refresh", false, "re-fetch and re-analyze even if the match is already stored")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	matchID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid match id %q: %w", args[0], err)
	}

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	exists, err := db.MatchExists(matchID)
	if err != nil {
		return fmt.Errorf("check storage: %w", err)
	}
	if exists && !analyzeRefresh {
		log.Info("match already stored, printing cached results", zap.Int64("match_id", matchID))
		return printStoredMatch(db, matchID)
	}
	if exists {
		if err := db.DeleteMatch(matchID); err != nil {
			return fmt.Errorf("clear stored match: %w", err)
		}
	}

	client := skillcorner.NewClient(cfg, log)
	data, err := loader.New(client, cfg.DefaultMatchSeconds, log).LoadMatch(matchID, analyzeMinutes)
	if err != nil {
		return fmt.Errorf("load match %d: %w", matchID, err)
	}
	log.Info("match loaded",
		zap.Int64("match_id", matchID),
		zap.Int("tracking_rows", len(data.Tracking)),
		zap.Int("synced_rows", len(data.Synced)),
		zap.Int("events", len(data.Events.Events)),
		zap.Int("roster", len(data.Roster)))

	possessionEvents, runEvents := rva.Partition(&data.Events)
	possessions := rva.LinkRuns(possessionEvents, runEvents, &data.Events, log)
	scored := rva.Score(runEvents, possessions)
	stats := rva.Summarize(scored)
	players := rva.SummarizePlayers(matchID, scored)

	summary := model.MatchSummary{
		MatchID:      matchID,
		MatchName:    data.Info.MatchName,
		DateTime:     data.Info.DateTime,
		NPossessions: len(possessions),
		NRuns:        len(scored),
		NPlayers:     len(players),
		MeanRVA:      stats.MeanRVA,
		Minutes:      analyzeMinutes,
	}
	if err := db.InsertMatch(summary); err != nil {
		return fmt.Errorf("store match: %w", err)
	}
	if err := db.InsertScoredRuns(matchID, scored); err != nil {
		return fmt.Errorf("store scored runs: %w", err)
	}
	if err := db.InsertPlayerSummaries(players); err != nil {
		return fmt.Errorf("store player summaries: %w", err)
	}

	out := os.Stdout
	report.PrintMatchHeader(out, summary)
	report.PrintPlayerTable(out, players)
	fmt.Fprintln(out)
	report.PrintSummaryStats(out, stats)

	fmt.Fprintln(out, "\nDangerous-run impact:")
	report.PrintRunImpact(out, rva.RunImpact(possessions, &data.Events, log))

	fmt.Fprintln(out, "\nTargeted vs ignored dangerous runs:")
	report.PrintUntargeted(out, rva.UntargetedRuns(possessions, &data.Events))

	fmt.Fprintln(out, "\nPossessions with vs without off-ball runs:")
	report.PrintComparison(out, rva.CompareRuns(possessions, &data.Events, log))

	fmt.Fprintln(out, "\nRun-feature correlations:")
	report.PrintCorrelations(out, rva.Correlations(possessions, &data.Events))

	return nil
}

func printStoredMatch(db *storage.DB, matchID int64) error {
	summary, err := db.GetMatch(matchID)
	if err != nil {
		return fmt.Errorf("query match: %w", err)
	}
	if summary == nil {
		return fmt.Errorf("match %d not found in storage", matchID)
	}
	players, err := db.GetPlayerSummaries(matchID)
	if err != nil {
		return fmt.Errorf("query player summaries: %w", err)
	}

	report.PrintMatchHeader(os.Stdout, *summary)
	report.PrintPlayerTable(os.Stdout, players)
	return nil
}
