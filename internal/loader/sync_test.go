package loader

import (
	"testing"

	"github.com/pable/go-rva-metrics/internal/model"
)

func trackingRow(playerID, teamID int64, frame int) model.TrackingRow {
	return model.TrackingRow{
		TrackingRecord: model.TrackingRecord{PlayerID: playerID, Frame: frame},
		Roster:         &model.PlayerRosterEntry{PlayerID: playerID, TeamID: teamID},
	}
}

func TestSyncFramesLeftJoin(t *testing.T) {
	tracking := []model.TrackingRow{
		trackingRow(10, 1, 100),
		trackingRow(11, 2, 200),
	}
	events := []model.MatchEvent{
		{EventID: 1, FrameEnd: 100, PlayerID: 10, TeamID: 1},
	}

	synced := SyncFrames(tracking, events)
	if len(synced) != 2 {
		t.Fatalf("expected 2 synced rows, got %d", len(synced))
	}
	if synced[0].Event == nil || synced[0].Event.EventID != 1 {
		t.Error("matching row should carry its event")
	}
	// Rows with no event at their frame survive with a nil event.
	if synced[1].Event != nil {
		t.Error("non-matching row should have nil event")
	}
}

func TestSyncFramesFanOut(t *testing.T) {
	// N tracking rows at a frame where P events end produce N*P rows,
	// in event-log order, never deduplicated.
	tracking := []model.TrackingRow{
		trackingRow(10, 1, 100),
		trackingRow(11, 2, 100),
		trackingRow(12, 1, 100),
	}
	events := []model.MatchEvent{
		{EventID: 1, FrameEnd: 100},
		{EventID: 2, FrameEnd: 100},
	}

	synced := SyncFrames(tracking, events)
	if len(synced) != 6 {
		t.Fatalf("expected 3*2=6 synced rows, got %d", len(synced))
	}
	// Each tracking row appears once per event, events in log order.
	if synced[0].Event.EventID != 1 || synced[1].Event.EventID != 2 {
		t.Errorf("event order wrong: %d, %d", synced[0].Event.EventID, synced[1].Event.EventID)
	}
	if synced[0].Tracking != synced[1].Tracking {
		t.Error("fan-out rows of one tracking row should share the tracking pointer")
	}
}

func TestSyncFramesFlags(t *testing.T) {
	tracking := []model.TrackingRow{
		trackingRow(10, 1, 100), // the runner
		trackingRow(11, 1, 100), // the ball carrier
		trackingRow(12, 2, 100), // opponent
	}
	events := []model.MatchEvent{
		{EventID: 1, FrameEnd: 100, PlayerID: 10, PlayerInPossessionID: 11, TeamID: 1},
	}

	synced := SyncFrames(tracking, events)
	if len(synced) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(synced))
	}

	runner, carrier, opponent := synced[0], synced[1], synced[2]
	if !runner.Runner || runner.BallCarrier {
		t.Errorf("runner flags: %+v", runner)
	}
	if !carrier.BallCarrier || carrier.Runner {
		t.Errorf("carrier flags: %+v", carrier)
	}
	if !runner.TeamInPossession || !carrier.TeamInPossession || opponent.TeamInPossession {
		t.Error("team-in-possession flags wrong")
	}
}

func TestSyncFramesZeroIDsNeverMatch(t *testing.T) {
	// A tracking row can never be flagged against an event whose id columns
	// were empty, even though empty ids decode to 0.
	tracking := []model.TrackingRow{
		{TrackingRecord: model.TrackingRecord{PlayerID: 0, Frame: 100}},
	}
	events := []model.MatchEvent{{EventID: 1, FrameEnd: 100}}

	synced := SyncFrames(tracking, events)
	if synced[0].Runner || synced[0].BallCarrier || synced[0].TeamInPossession {
		t.Errorf("zero ids must not match: %+v", synced[0])
	}
}
