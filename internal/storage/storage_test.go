package storage

import (
	"math"
	"testing"

	"github.com/pable/go-rva-metrics/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMatchInsertAndExists(t *testing.T) {
	db := openMemDB(t)

	summary := model.MatchSummary{
		MatchID:      2068,
		MatchName:    "Home FC vs Away FC",
		DateTime:     "2020-08-29T18:00:00Z",
		NPossessions: 120,
		NRuns:        340,
		NPlayers:     28,
		MeanRVA:      0.012,
	}
	if err := db.InsertMatch(summary); err != nil {
		t.Fatalf("InsertMatch: %v", err)
	}

	exists, err := db.MatchExists(2068)
	if err != nil {
		t.Fatalf("MatchExists: %v", err)
	}
	if !exists {
		t.Error("expected match to exist after insert")
	}
	exists2, _ := db.MatchExists(9999)
	if exists2 {
		t.Error("expected unknown match to not exist")
	}

	got, err := db.GetMatch(2068)
	if err != nil {
		t.Fatalf("GetMatch: %v", err)
	}
	if got == nil || got.MatchName != "Home FC vs Away FC" || got.NRuns != 340 {
		t.Errorf("round trip mismatch: %+v", got)
	}

	none, err := db.GetMatch(9999)
	if err != nil {
		t.Fatalf("GetMatch unknown: %v", err)
	}
	if none != nil {
		t.Error("expected nil for unknown match")
	}
}

func TestInsertIdempotency(t *testing.T) {
	db := openMemDB(t)

	s := model.MatchSummary{MatchID: 1, MatchName: "A vs B", DateTime: "2020-01-01"}
	db.InsertMatch(s)
	// Second insert should not error (INSERT OR REPLACE).
	if err := db.InsertMatch(s); err != nil {
		t.Errorf("second InsertMatch should succeed (idempotent): %v", err)
	}
	matches, _ := db.ListMatches()
	if len(matches) != 1 {
		t.Errorf("expected 1 match after re-insert, got %d", len(matches))
	}
}

func TestScoredRunsRoundTrip(t *testing.T) {
	db := openMemDB(t)
	db.InsertMatch(model.MatchSummary{MatchID: 1, MatchName: "A vs B"})

	runs := []model.ScoredRun{
		{
			Run: model.MatchEvent{
				EventID: 10, PlayerID: 100, PlayerName: "Alice",
				Dangerous: true, Targeted: true,
				XThreat: 0.2, XPassCompletion: 0.8, NSimultaneousRuns: 2,
			},
			ParentEventID: 500, PassOutcome: "successful",
			SeparationGain: 3.5, LeadToShot: 1,
			ShotValue: 0.5, DirectValue: 0.16, ProgressionValue: 0.024,
			DecoyPenalty: 0, OverloadValue: 0.032, RVA: 0.716,
		},
		{
			// Unlinked run: the nullable fields are all undefined.
			Run: model.MatchEvent{
				EventID: 11, PlayerID: 101, PlayerName: "Bob",
				XThreat: math.NaN(), XPassCompletion: math.NaN(),
			},
			SeparationGain: math.NaN(), LeadToShot: math.NaN(),
			ShotValue: 0, DirectValue: 0, ProgressionValue: 0,
			DecoyPenalty: 0, OverloadValue: 0, RVA: math.NaN(),
		},
	}
	if err := db.InsertScoredRuns(1, runs); err != nil {
		t.Fatalf("InsertScoredRuns: %v", err)
	}

	got, err := db.GetScoredRuns(1)
	if err != nil {
		t.Fatalf("GetScoredRuns: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(got))
	}

	// Defined RVA first, NULL last.
	first := got[0]
	if first.Run.EventID != 10 || first.Run.PlayerName != "Alice" {
		t.Errorf("ordering wrong, first run: %+v", first.Run)
	}
	if !first.Run.Dangerous || !first.Run.Targeted {
		t.Errorf("flags lost: %+v", first.Run)
	}
	if first.RVA != 0.716 || first.ShotValue != 0.5 {
		t.Errorf("components lost: rva=%f shot=%f", first.RVA, first.ShotValue)
	}
	if first.ParentEventID != 500 || first.PassOutcome != "successful" {
		t.Errorf("parent fields lost: %+v", first)
	}

	// NULL round-trips back to NaN, never 0.
	second := got[1]
	if !math.IsNaN(second.RVA) || !math.IsNaN(second.Run.XThreat) || !math.IsNaN(second.LeadToShot) {
		t.Errorf("NULL should scan as NaN: %+v", second)
	}
}

func TestPlayerSummariesRoundTrip(t *testing.T) {
	db := openMemDB(t)
	db.InsertMatch(model.MatchSummary{MatchID: 1, MatchName: "A vs B"})
	db.InsertMatch(model.MatchSummary{MatchID: 2, MatchName: "A vs C"})

	summaries := []model.PlayerRVASummary{
		{MatchID: 1, PlayerName: "Alice", TotalRVA: 0.7, AvgRVA: 0.35, NRuns: 2, NTargeted: 1, NDangerous: 2},
		{MatchID: 1, PlayerName: "Bob", TotalRVA: 1.0, AvgRVA: 0.5, NRuns: 2, NTargeted: 2, NDangerous: 1},
		{MatchID: 2, PlayerName: "Alice", TotalRVA: 0.1, AvgRVA: 0.1, NRuns: 1},
	}
	if err := db.InsertPlayerSummaries(summaries); err != nil {
		t.Fatalf("InsertPlayerSummaries: %v", err)
	}

	perMatch, err := db.GetPlayerSummaries(1)
	if err != nil {
		t.Fatalf("GetPlayerSummaries: %v", err)
	}
	if len(perMatch) != 2 {
		t.Fatalf("expected 2 players for match 1, got %d", len(perMatch))
	}
	if perMatch[0].PlayerName != "Bob" {
		t.Errorf("expected Bob first (highest total), got %s", perMatch[0].PlayerName)
	}

	history, err := db.GetPlayerAcrossMatches("Alice")
	if err != nil {
		t.Fatalf("GetPlayerAcrossMatches: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected Alice in 2 matches, got %d", len(history))
	}
	if history[0].TotalRVA != 0.7 || history[1].TotalRVA != 0.1 {
		t.Errorf("history ordering wrong: %f, %f", history[0].TotalRVA, history[1].TotalRVA)
	}
}

func TestDeleteMatch(t *testing.T) {
	db := openMemDB(t)
	db.InsertMatch(model.MatchSummary{MatchID: 1, MatchName: "A vs B"})
	db.InsertScoredRuns(1, []model.ScoredRun{{Run: model.MatchEvent{EventID: 10, PlayerName: "Alice"}}})
	db.InsertPlayerSummaries([]model.PlayerRVASummary{{MatchID: 1, PlayerName: "Alice", NRuns: 1}})

	if err := db.DeleteMatch(1); err != nil {
		t.Fatalf("DeleteMatch: %v", err)
	}

	exists, _ := db.MatchExists(1)
	if exists {
		t.Error("match should be gone")
	}
	runs, _ := db.GetScoredRuns(1)
	if len(runs) != 0 {
		t.Errorf("scored runs should be gone, got %d", len(runs))
	}
	players, _ := db.GetPlayerSummaries(1)
	if len(players) != 0 {
		t.Errorf("player summaries should be gone, got %d", len(players))
	}
}

func TestGetOverview(t *testing.T) {
	db := openMemDB(t)
	db.InsertMatch(model.MatchSummary{MatchID: 1, MatchName: "A vs B", NRuns: 2})
	db.InsertMatch(model.MatchSummary{MatchID: 2, MatchName: "A vs C", NRuns: 1})
	db.InsertScoredRuns(1, []model.ScoredRun{
		{Run: model.MatchEvent{EventID: 10, PlayerName: "Alice"}, RVA: 0.4},
		{Run: model.MatchEvent{EventID: 11, PlayerName: "Bob"}, RVA: 0.2},
	})
	db.InsertScoredRuns(2, []model.ScoredRun{
		{Run: model.MatchEvent{EventID: 12, PlayerName: "Alice"}, RVA: 0.6},
	})
	db.InsertPlayerSummaries([]model.PlayerRVASummary{
		{MatchID: 1, PlayerName: "Alice", TotalRVA: 0.4, NRuns: 1},
		{MatchID: 1, PlayerName: "Bob", TotalRVA: 0.2, NRuns: 1},
		{MatchID: 2, PlayerName: "Alice", TotalRVA: 0.6, NRuns: 1},
	})

	ov, err := db.GetOverview(10)
	if err != nil {
		t.Fatalf("GetOverview: %v", err)
	}
	if ov.NMatches != 2 || ov.NRuns != 3 || ov.NPlayers != 2 {
		t.Errorf("overview counts: matches=%d runs=%d players=%d", ov.NMatches, ov.NRuns, ov.NPlayers)
	}
	if math.Abs(ov.MeanRVA-0.4) > 1e-9 {
		t.Errorf("mean RVA: want 0.4, got %f", ov.MeanRVA)
	}
	if len(ov.TopPlayers) != 2 || ov.TopPlayers[0].PlayerName != "Alice" {
		t.Fatalf("top players wrong: %+v", ov.TopPlayers)
	}
	if math.Abs(ov.TopPlayers[0].TotalRVA-1.0) > 1e-9 {
		t.Errorf("Alice total across matches: want 1.0, got %f", ov.TopPlayers[0].TotalRVA)
	}
}
