package model

import (
	"math"
	"time"
)

// Playing directions as reported by the provider per half.
const (
	DirectionLeftToRight = "left_to_right"
	DirectionRightToLeft = "right_to_left"
)

// Event types the pipeline cares about. All other types pass through the
// synced table but are ignored by the linker and scorer.
const (
	EventPlayerPossession = "player_possession"
	EventPassingOption    = "passing_option"
)

// MatchClock is an elapsed time since kickoff. Tracking frames between
// periods carry no timestamp; those clocks are not Valid.
type MatchClock struct {
	Elapsed time.Duration
	Valid   bool
}

// Seconds returns the elapsed seconds, or NaN for an invalid clock.
func (c MatchClock) Seconds() float64 {
	if !c.Valid {
		return math.NaN()
	}
	return c.Elapsed.Seconds()
}

// TrackingRecord is one (player, frame) sample, flattened from a raw frame.
// Frame-level fields (timestamp, period, possession, ball) are repeated on
// every player row of that frame. Immutable once produced.
type TrackingRecord struct {
	MatchID  int64
	PlayerID int64
	Frame    int
	Clock    MatchClock
	Period   int

	X, Y float64

	// PossessionPlayerID is 0 when the frame has no possession object.
	PossessionPlayerID int64
	PossessionGroup    string

	// Ball position; NaN coordinates when the ball object omits them.
	BallX, BallY, BallZ float64
	IsDetectedBall      bool
}

// PlayerRosterEntry is one player's match participation window, derived from
// match metadata. Players with neither a start nor an end time never appear
// on the pitch and are excluded during roster construction.
type PlayerRosterEntry struct {
	PlayerID  int64
	TeamID    int64
	TeamName  string
	ShortName string
	Number    int

	// Raw wall-clock strings ("HH:MM:SS"); empty when null upstream.
	StartTime string
	EndTime   string

	// Seconds from kickoff. A null end time defaults to the configured
	// full-match length.
	StartSeconds float64
	EndSeconds   float64
	TotalTime    float64

	Role          string
	RoleAcronym   string
	PositionGroup string
	IsGoalkeeper  bool

	// "Home" or "Away".
	HomeAway string

	DirectionFirstHalf  string
	DirectionSecondHalf string
}

// MatchInfo is the match-level slice of the metadata payload.
type MatchInfo struct {
	MatchID       int64
	MatchName     string
	DateTime      string
	HomeTeamID    int64
	HomeTeamName  string
	AwayTeamID    int64
	AwayTeamName  string
	HomeTeamScore int
	AwayTeamScore int

	// Home team's direction of play in each half.
	HomeSideFirstHalf  string
	HomeSideSecondHalf string
}

// MatchEvent is one row of the dynamic-events log. Nullable numeric columns
// are NaN when absent so that aggregation follows "undefined, not zero"
// semantics end to end. Immutable, loaded once per match.
type MatchEvent struct {
	EventID    int64
	EventType  string
	FrameStart int
	FrameEnd   int

	// 0 when the column is empty for this row.
	PlayerID             int64
	TeamID               int64
	PlayerInPossessionID int64
	PlayerName           string

	Dangerous bool
	Targeted  bool

	XThreat           float64
	XPassCompletion   float64
	NSimultaneousRuns int

	PassOutcome string
	LeadToShot  float64
	LeadToGoal  float64

	SeparationGain               float64
	DeltaToLastDefensiveLineGain float64

	// Possession rows only.
	NOffBallRuns float64

	// Foreign key to the parent possession's EventID; 0 when unlinked.
	AssociatedPossessionEventID int64
}

// EventLog is the parsed event table plus the set of columns the source CSV
// actually carried, so consumers can degrade when optional columns are absent.
type EventLog struct {
	Columns []string
	Events  []MatchEvent
}

// HasColumn reports whether the source CSV carried the named column.
func (l *EventLog) HasColumn(name string) bool {
	for _, c := range l.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// ColumnsMatching returns the column names containing substr.
func (l *EventLog) ColumnsMatching(substr string) []string {
	var out []string
	for _, c := range l.Columns {
		if substr == "" || containsFold(c, substr) {
			out = append(out, c)
		}
	}
	return out
}

func containsFold(s, substr string) bool {
	n := len(substr)
	for i := 0; i+n <= len(s); i++ {
		match := true
		for j := 0; j < n; j++ {
			a, b := s[i+j], substr[j]
			if 'A' <= a && a <= 'Z' {
				a += 'a' - 'A'
			}
			if 'A' <= b && b <= 'Z' {
				b += 'a' - 'A'
			}
			if a != b {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// TrackingRow is a tracking record enriched with its roster entry. Rows whose
// player has no roster entry are dropped during enrichment (inner join).
type TrackingRow struct {
	TrackingRecord
	Roster *PlayerRosterEntry
}

// SyncedRow is the left join of one tracking row with one event whose
// FrameEnd equals the row's Frame. Event is nil when no event ends at that
// frame. When several events share a FrameEnd the join fans out: the same
// tracking row appears once per event.
type SyncedRow struct {
	Tracking *TrackingRow
	Event    *MatchEvent

	// Runner: this row's player is the event's subject player.
	Runner bool
	// BallCarrier: this row's player currently holds the ball per the event.
	BallCarrier bool
	// TeamInPossession: this row's team is the event's team.
	TeamInPossession bool
}

// RunAggregate holds per-possession statistics over its linked runs. All
// fields are NaN for a possession with no linked runs (left-merge null).
type RunAggregate struct {
	NDangerousRuns  float64
	AnyDangerousRun float64
	AvgXThreat      float64
	MaxXThreat      float64
	TotalXThreat    float64
	NTargetedRuns   float64
	NTotalRuns      float64

	// Highest n_simultaneous_runs among the linked runs.
	MaxSimultaneousRuns float64

	// NDangerousRuns − NTargetedRuns, with a null targeted count treated
	// as zero before subtracting.
	NUntargetedDangerous float64
}

// Possession is a player_possession event enriched one-to-one with run
// aggregates.
type Possession struct {
	Event MatchEvent
	Runs  RunAggregate
}

// HasRuns reports whether any passing option was linked to this possession.
func (p *Possession) HasRuns() bool {
	return !math.IsNaN(p.Runs.NTotalRuns) && p.Runs.NTotalRuns > 0
}

// ScoredRun is a passing option with its parent possession's outcome fields
// merged in and the five RVA components computed.
type ScoredRun struct {
	Run MatchEvent

	// Parent possession fields (left merge; NaN / empty when unlinked).
	ParentEventID  int64
	PassOutcome    string
	SeparationGain float64
	LeadToShot     float64

	ShotValue        float64
	DirectValue      float64
	ProgressionValue float64
	DecoyPenalty     float64
	OverloadValue    float64
	RVA              float64
}

// PlayerRVASummary is the per-player rollup of scored runs for one match.
type PlayerRVASummary struct {
	MatchID    int64
	PlayerName string

	TotalRVA   float64
	AvgRVA     float64
	NRuns      int
	NTargeted  int
	NDangerous int

	ShotContribution   float64
	DirectContribution float64
}

// MatchSummary is a lightweight record for list/show commands.
type MatchSummary struct {
	MatchID      int64
	MatchName    string
	DateTime     string
	NPossessions int
	NRuns        int
	NPlayers     int
	MeanRVA      float64

	// Minutes of tracking analyzed; 0 means the full match.
	Minutes int
}
