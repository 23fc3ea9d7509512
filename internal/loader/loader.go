// Package loader turns raw SkillCorner payloads into the in-memory tables
// the pipeline works on: a flattened per-player tracking table enriched with
// roster attributes, the parsed event log, and the frame-synced join of the
// two.
package loader

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pable/go-rva-metrics/internal/model"
	"github.com/pable/go-rva-metrics/internal/skillcorner"
)

// Source is the raw-data provider. *skillcorner.Client satisfies it.
type Source interface {
	FetchTracking(matchID int64) ([]skillcorner.RawFrame, error)
	FetchMeta(matchID int64) (*skillcorner.RawMatchMeta, error)
	FetchEvents(matchID int64) ([]byte, error)
}

// MatchData is everything one match load produces. Each table is built once
// and treated as immutable afterwards.
type MatchData struct {
	Info     model.MatchInfo
	Roster   []model.PlayerRosterEntry
	Events   model.EventLog
	Tracking []model.TrackingRow
	Synced   []model.SyncedRow
}

// Loader builds MatchData from a Source.
type Loader struct {
	src Source
	// Assumed end-of-match second for players with a null end time.
	defaultMatchSeconds float64
	log                 *zap.Logger
}

// New returns a Loader. defaultMatchSeconds is the configured full-match
// length used for null roster end times.
func New(src Source, defaultMatchSeconds float64, log *zap.Logger) *Loader {
	return &Loader{src: src, defaultMatchSeconds: defaultMatchSeconds, log: log}
}

// LoadMatch fetches, flattens and synchronizes one match. minutes > 0 keeps
// only tracking rows within that many minutes of the first valid timestamp.
func (l *Loader) LoadMatch(matchID int64, minutes int) (*MatchData, error) {
	frames, err := l.src.FetchTracking(matchID)
	if err != nil {
		return nil, err
	}
	records, err := FlattenFrames(matchID, frames)
	if err != nil {
		return nil, err
	}

	meta, err := l.src.FetchMeta(matchID)
	if err != nil {
		return nil, err
	}
	info, roster, err := BuildRoster(meta, l.defaultMatchSeconds)
	if err != nil {
		return nil, err
	}

	tracking, dropped := Enrich(records, roster)
	if dropped > 0 {
		l.log.Warn("tracking rows without roster entry dropped",
			zap.Int64("match_id", matchID),
			zap.Int("rows", dropped))
	}
	if minutes > 0 {
		tracking = FilterWindow(tracking, minutes)
	}

	rawCSV, err := l.src.FetchEvents(matchID)
	if err != nil {
		return nil, err
	}
	events, err := ParseEventsCSV(rawCSV)
	if err != nil {
		return nil, err
	}

	return &MatchData{
		Info:     info,
		Roster:   roster,
		Events:   events,
		Tracking: tracking,
		Synced:   SyncFrames(tracking, events.Events),
	}, nil
}

// FlattenFrames produces one TrackingRecord per (frame, player), carrying
// the frame-level fields onto every player row. Ball sub-fields are decoded
// by name; absent coordinates become NaN.
func FlattenFrames(matchID int64, frames []skillcorner.RawFrame) ([]model.TrackingRecord, error) {
	var out []model.TrackingRecord
	for i, f := range frames {
		clock, err := parseClock(f.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("frame %d (index %d): %w", f.Frame, i, err)
		}

		var possPlayer int64
		var possGroup string
		if f.Possession != nil {
			if f.Possession.PlayerID != nil {
				possPlayer = *f.Possession.PlayerID
			}
			if f.Possession.Group != nil {
				possGroup = *f.Possession.Group
			}
		}

		ballX, ballY, ballZ := math.NaN(), math.NaN(), math.NaN()
		detected := false
		if f.Ball != nil {
			if f.Ball.X != nil {
				ballX = *f.Ball.X
			}
			if f.Ball.Y != nil {
				ballY = *f.Ball.Y
			}
			if f.Ball.Z != nil {
				ballZ = *f.Ball.Z
			}
			if f.Ball.IsDetected != nil {
				detected = *f.Ball.IsDetected
			}
		}

		period := 0
		if f.Period != nil {
			period = *f.Period
		}

		for _, p := range f.PlayerData {
			out = append(out, model.TrackingRecord{
				MatchID:            matchID,
				PlayerID:           p.PlayerID,
				Frame:              f.Frame,
				Clock:              clock,
				Period:             period,
				X:                  p.X,
				Y:                  p.Y,
				PossessionPlayerID: possPlayer,
				PossessionGroup:    possGroup,
				BallX:              ballX,
				BallY:              ballY,
				BallZ:              ballZ,
				IsDetectedBall:     detected,
			})
		}
	}
	return out, nil
}

// parseClock parses an elapsed "HH:MM:SS[.ff]" timestamp. A nil timestamp
// (frames between periods) yields an invalid clock.
func parseClock(s *string) (model.MatchClock, error) {
	if s == nil || *s == "" {
		return model.MatchClock{}, nil
	}
	parts := strings.SplitN(*s, ":", 3)
	if len(parts) != 3 {
		return model.MatchClock{}, fmt.Errorf("malformed timestamp %q", *s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return model.MatchClock{}, fmt.Errorf("malformed timestamp %q", *s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return model.MatchClock{}, fmt.Errorf("malformed timestamp %q", *s)
	}
	sec, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return model.MatchClock{}, fmt.Errorf("malformed timestamp %q", *s)
	}
	elapsed := time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec*float64(time.Second))
	return model.MatchClock{Elapsed: elapsed, Valid: true}, nil
}

// timeToSeconds converts a wall-clock "HH:MM:SS" roster time to seconds from
// kickoff. A nil time defaults to defaultSeconds (full-match assumption).
func timeToSeconds(s *string, defaultSeconds float64) (float64, error) {
	if s == nil || *s == "" {
		return defaultSeconds, nil
	}
	parts := strings.SplitN(*s, ":", 3)
	if len(parts) != 3 {
		return 0, fmt.Errorf("malformed roster time %q", *s)
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	sec, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, fmt.Errorf("malformed roster time %q", *s)
	}
	return float64(h*3600 + m*60 + sec), nil
}

// BuildRoster derives the enriched roster and match info from raw metadata.
// Players with neither a start nor an end time are excluded: they never
// appeared on the pitch.
func BuildRoster(meta *skillcorner.RawMatchMeta, defaultSeconds float64) (model.MatchInfo, []model.PlayerRosterEntry, error) {
	if len(meta.HomeTeamSide) != 2 {
		return model.MatchInfo{}, nil, fmt.Errorf("match meta: want 2 home_team_side values, got %d", len(meta.HomeTeamSide))
	}
	homeSide1st, homeSide2nd := meta.HomeTeamSide[0], meta.HomeTeamSide[1]

	info := model.MatchInfo{
		MatchID:            meta.ID,
		MatchName:          meta.HomeTeam.Name + " vs " + meta.AwayTeam.Name,
		DateTime:           meta.DateTime,
		HomeTeamID:         meta.HomeTeam.ID,
		HomeTeamName:       meta.HomeTeam.Name,
		AwayTeamID:         meta.AwayTeam.ID,
		AwayTeamName:       meta.AwayTeam.Name,
		HomeTeamScore:      meta.HomeTeamScore,
		AwayTeamScore:      meta.AwayTeamScore,
		HomeSideFirstHalf:  homeSide1st,
		HomeSideSecondHalf: homeSide2nd,
	}

	var roster []model.PlayerRosterEntry
	for _, p := range meta.Players {
		if p.StartTime == nil && p.EndTime == nil {
			continue
		}

		startSec, err := timeToSeconds(p.StartTime, defaultSeconds)
		if err != nil {
			return model.MatchInfo{}, nil, fmt.Errorf("player %d: %w", p.ID, err)
		}
		endSec, err := timeToSeconds(p.EndTime, defaultSeconds)
		if err != nil {
			return model.MatchInfo{}, nil, fmt.Errorf("player %d: %w", p.ID, err)
		}

		entry := model.PlayerRosterEntry{
			PlayerID:      p.ID,
			TeamID:        p.TeamID,
			ShortName:     p.ShortName,
			Number:        p.Number,
			StartSeconds:  startSec,
			EndSeconds:    endSec,
			TotalTime:     endSec - startSec,
			Role:          p.Role.Name,
			RoleAcronym:   p.Role.Acronym,
			PositionGroup: p.Role.PositionGroup,
			IsGoalkeeper:  p.Role.Acronym == "GK",
		}
		if p.StartTime != nil {
			entry.StartTime = *p.StartTime
		}
		if p.EndTime != nil {
			entry.EndTime = *p.EndTime
		}

		// Sides flip at half-time; an away player moves in the home team's
		// second-half direction during the first half, and vice versa.
		if p.TeamID == meta.HomeTeam.ID {
			entry.HomeAway = "Home"
			entry.TeamName = meta.HomeTeam.Name
			entry.DirectionFirstHalf = homeSide1st
			entry.DirectionSecondHalf = homeSide2nd
		} else {
			entry.HomeAway = "Away"
			entry.TeamName = meta.AwayTeam.Name
			entry.DirectionFirstHalf = homeSide2nd
			entry.DirectionSecondHalf = homeSide1st
		}

		roster = append(roster, entry)
	}
	return info, roster, nil
}

// Enrich inner-joins tracking records with roster entries on player id.
// Records whose player has no roster entry are dropped; the count of dropped
// rows is returned for diagnostics.
func Enrich(records []model.TrackingRecord, roster []model.PlayerRosterEntry) ([]model.TrackingRow, int) {
	byID := make(map[int64]*model.PlayerRosterEntry, len(roster))
	for i := range roster {
		byID[roster[i].PlayerID] = &roster[i]
	}

	rows := make([]model.TrackingRow, 0, len(records))
	dropped := 0
	for _, rec := range records {
		entry, ok := byID[rec.PlayerID]
		if !ok {
			dropped++
			continue
		}
		rows = append(rows, model.TrackingRow{TrackingRecord: rec, Roster: entry})
	}
	return rows, dropped
}

// FilterWindow keeps rows within the given number of minutes of the first
// valid timestamp. Rows without a valid clock are dropped: they cannot be
// placed inside or outside the window.
func FilterWindow(rows []model.TrackingRow, minutes int) []model.TrackingRow {
	start := time.Duration(-1)
	for _, r := range rows {
		if !r.Clock.Valid {
			continue
		}
		if start < 0 || r.Clock.Elapsed < start {
			start = r.Clock.Elapsed
		}
	}
	if start < 0 {
		return nil
	}

	cutoff := start + time.Duration(minutes)*time.Minute
	out := make([]model.TrackingRow, 0, len(rows))
	for _, r := range rows {
		if r.Clock.Valid && r.Clock.Elapsed <= cutoff {
			out = append(out, r)
		}
	}
	return out
}
