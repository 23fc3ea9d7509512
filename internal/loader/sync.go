package loader

import (
	"github.com/pable/go-rva-metrics/internal/model"
)

// SyncFrames left-joins tracking rows to events on Frame == FrameEnd.
//
// Every tracking row is kept; Event is nil when no event ends at its frame.
// When several events share a FrameEnd the join fans out: one tracking row
// becomes one synced row per matching event, in event-log order. Ties are
// never broken or deduplicated, so a single frame may yield duplicate player
// rows and consumers must expect that.
func SyncFrames(tracking []model.TrackingRow, events []model.MatchEvent) []model.SyncedRow {
	byFrameEnd := make(map[int][]*model.MatchEvent)
	for i := range events {
		ev := &events[i]
		byFrameEnd[ev.FrameEnd] = append(byFrameEnd[ev.FrameEnd], ev)
	}

	synced := make([]model.SyncedRow, 0, len(tracking))
	for i := range tracking {
		row := &tracking[i]
		matches := byFrameEnd[row.Frame]
		if len(matches) == 0 {
			synced = append(synced, model.SyncedRow{Tracking: row})
			continue
		}
		for _, ev := range matches {
			synced = append(synced, model.SyncedRow{
				Tracking:         row,
				Event:            ev,
				Runner:           ev.PlayerID != 0 && row.PlayerID == ev.PlayerID,
				BallCarrier:      ev.PlayerInPossessionID != 0 && row.PlayerID == ev.PlayerInPossessionID,
				TeamInPossession: ev.TeamID != 0 && row.Roster != nil && row.Roster.TeamID == ev.TeamID,
			})
		}
	}
	return synced
}
