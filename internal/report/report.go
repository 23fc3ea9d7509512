// Package report renders analysis results as console tables.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-rva-metrics/internal/model"
	"github.com/pable/go-rva-metrics/internal/rva"
	"github.com/pable/go-rva-metrics/internal/storage"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// fnum formats a nullable float; NaN renders as "—".
func fnum(v float64, decimals int) string {
	if math.IsNaN(v) {
		return "—"
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

func flag(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// PrintMatchHeader prints a one-line summary header for the match.
func PrintMatchHeader(w io.Writer, s model.MatchSummary) {
	window := "full match"
	if s.Minutes > 0 {
		window = fmt.Sprintf("first %d min", s.Minutes)
	}
	fmt.Fprintf(w, "\nMatch: %s  |  Date: %s  |  Possessions: %d  |  Runs: %d  |  Mean RVA: %s  |  Window: %s\n\n",
		s.MatchName, s.DateTime, s.NPossessions, s.NRuns, fnum(s.MeanRVA, 4), window)
}

// PrintPlayerTable prints the per-player RVA ranking.
func PrintPlayerTable(w io.Writer, summaries []model.PlayerRVASummary) {
	table := newTable(w)
	table.Header("#", "PLAYER", "TOTAL_RVA", "AVG_RVA", "RUNS", "TARGETED", "DANGEROUS", "SHOT_VAL", "DIRECT_VAL")

	for i, s := range summaries {
		table.Append(
			strconv.Itoa(i+1),
			s.PlayerName,
			fnum(s.TotalRVA, 4),
			fnum(s.AvgRVA, 4),
			strconv.Itoa(s.NRuns),
			strconv.Itoa(s.NTargeted),
			strconv.Itoa(s.NDangerous),
			fnum(s.ShotContribution, 4),
			fnum(s.DirectContribution, 4),
		)
	}
	table.Render()
}

// PrintRunTable prints individual scored runs with their component breakdown.
// Limit caps the number of rows; 0 prints all.
func PrintRunTable(w io.Writer, runs []model.ScoredRun, limit int) {
	table := newTable(w)
	table.Header("EVENT", "PLAYER", "DANG", "TARG", "XTHREAT", "SHOT", "DIRECT", "PROGR", "DECOY", "OVERLOAD", "RVA")

	for i, s := range runs {
		if limit > 0 && i >= limit {
			break
		}
		table.Append(
			strconv.FormatInt(s.Run.EventID, 10),
			s.Run.PlayerName,
			flag(s.Run.Dangerous),
			flag(s.Run.Targeted),
			fnum(s.Run.XThreat, 3),
			fnum(s.ShotValue, 4),
			fnum(s.DirectValue, 4),
			fnum(s.ProgressionValue, 4),
			fnum(s.DecoyPenalty, 4),
			fnum(s.OverloadValue, 4),
			fnum(s.RVA, 4),
		)
	}
	table.Render()
	if limit > 0 && len(runs) > limit {
		fmt.Fprintf(w, "... %d more runs\n", len(runs)-limit)
	}
}

// PrintSummaryStats prints the match-level RVA breakdown.
func PrintSummaryStats(w io.Writer, stats rva.SummaryStats) {
	table := newTable(w)
	table.Header("METRIC", "VALUE")
	rows := []struct {
		name  string
		value string
	}{
		{"runs scored", strconv.Itoa(stats.NRuns)},
		{"mean RVA", fnum(stats.MeanRVA, 4)},
		{"mean RVA (targeted)", fnum(stats.MeanRVATargeted, 4)},
		{"mean RVA (untargeted)", fnum(stats.MeanRVAUntargeted, 4)},
		{"mean RVA (ignored dangerous)", fnum(stats.MeanRVAUntargetedDangerous, 4)},
		{"mean shot value", fnum(stats.MeanShotValue, 4)},
		{"mean direct value", fnum(stats.MeanDirectValue, 4)},
		{"mean progression value", fnum(stats.MeanProgressionValue, 4)},
		{"mean decoy penalty", fnum(stats.MeanDecoyPenalty, 4)},
		{"mean overload value", fnum(stats.MeanOverloadValue, 4)},
	}
	for _, r := range rows {
		table.Append(r.name, r.value)
	}
	table.Render()
}

// PrintRunImpact prints the dangerous-run impact comparison.
func PrintRunImpact(w io.Writer, report rva.RunImpactReport) {
	fmt.Fprintf(w, "\nPossessions with runs: %d  |  with dangerous run: %d  |  with ignored dangerous run: %d\n\n",
		report.NPossessionsWithRuns, report.NWithDangerousRun, report.NWithUntargetedDangerous)
	printComparisons(w, "WITH_DANG", "WITHOUT", report.Outcomes)
}

// PrintComparison prints the possessions-with-runs vs without comparison.
func PrintComparison(w io.Writer, outcomes []rva.OutcomeComparison) {
	if len(outcomes) == 0 {
		fmt.Fprintln(w, "no run-count column available, comparison skipped")
		return
	}
	printComparisons(w, "WITH_RUNS", "WITHOUT", outcomes)
}

func printComparisons(w io.Writer, withLabel, withoutLabel string, outcomes []rva.OutcomeComparison) {
	table := newTable(w)
	table.Header("METRIC", withLabel, withoutLabel, "DIFF", "P", "SIG")
	for _, c := range outcomes {
		table.Append(
			c.Metric,
			fnum(c.WithMean, 4),
			fnum(c.WithoutMean, 4),
			fnum(c.Difference, 4),
			fnum(c.PValue, 4),
			c.Significance,
		)
	}
	table.Render()
}

// PrintUntargeted prints the targeted vs ignored dangerous-run analysis.
func PrintUntargeted(w io.Writer, report rva.UntargetedRunReport) {
	table := newTable(w)
	table.Header("METRIC", "VALUE")
	table.Append("possessions, dangerous run targeted", strconv.Itoa(report.NTargeted))
	table.Append("possessions, dangerous run ignored", strconv.Itoa(report.NIgnored))
	table.Append("mean xthreat when targeted", fnum(report.XThreatTargeted, 4))
	table.Append("mean xthreat when ignored", fnum(report.XThreatIgnored, 4))
	table.Append("xthreat difference", fnum(report.XThreatDiff, 4))
	table.Append("mean separation gain when ignored", fnum(report.SeparationGainIgnored, 2))
	table.Render()
}

// PrintCorrelations prints run-feature vs outcome correlations.
func PrintCorrelations(w io.Writer, results []rva.CorrelationResult) {
	if len(results) == 0 {
		return
	}
	table := newTable(w)
	table.Header("OUTCOME", "RUN_FEATURE", "R")
	for _, r := range results {
		table.Append(r.Outcome, r.Feature, fnum(r.R, 3))
	}
	table.Render()
}

// PrintMatchList prints the stored matches table.
func PrintMatchList(w io.Writer, matches []model.MatchSummary) {
	table := newTable(w)
	table.Header("MATCH_ID", "NAME", "DATE", "POSSESSIONS", "RUNS", "PLAYERS", "MEAN_RVA")
	for _, m := range matches {
		table.Append(
			strconv.FormatInt(m.MatchID, 10),
			m.MatchName,
			m.DateTime,
			strconv.Itoa(m.NPossessions),
			strconv.Itoa(m.NRuns),
			strconv.Itoa(m.NPlayers),
			fnum(m.MeanRVA, 4),
		)
	}
	table.Render()
}

// PrintOverview prints the database-wide rollup.
func PrintOverview(w io.Writer, ov storage.Overview) {
	fmt.Fprintf(w, "\nMatches: %d  |  Runs: %d  |  Players: %d  |  Mean RVA: %s\n\n",
		ov.NMatches, ov.NRuns, ov.NPlayers, fnum(ov.MeanRVA, 4))
	if len(ov.TopPlayers) > 0 {
		PrintPlayerTable(w, ov.TopPlayers)
	}
}

// PrintPlayerHistory prints one player's per-match rollups.
func PrintPlayerHistory(w io.Writer, name string, rows []model.PlayerRVASummary) {
	fmt.Fprintf(w, "\nPlayer: %s  |  Matches: %d\n\n", name, len(rows))
	table := newTable(w)
	table.Header("MATCH_ID", "TOTAL_RVA", "AVG_RVA", "RUNS", "TARGETED", "DANGEROUS")
	for _, s := range rows {
		table.Append(
			strconv.FormatInt(s.MatchID, 10),
			fnum(s.TotalRVA, 4),
			fnum(s.AvgRVA, 4),
			strconv.Itoa(s.NRuns),
			strconv.Itoa(s.NTargeted),
			strconv.Itoa(s.NDangerous),
		)
	}
	table.Render()
}
