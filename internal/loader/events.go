package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pable/go-rva-metrics/internal/model"
)

// Event-log column names used by the pipeline. event_id, event_type and
// frame_end are required; everything else degrades to null when absent.
const (
	ColEventID                = "event_id"
	ColEventType              = "event_type"
	ColFrameStart             = "frame_start"
	ColFrameEnd               = "frame_end"
	ColPlayerID               = "player_id"
	ColPlayerName             = "player_name"
	ColTeamID                 = "team_id"
	ColPlayerInPossessionID   = "player_in_possession_id"
	ColDangerous              = "dangerous"
	ColTargeted               = "targeted"
	ColXThreat                = "xthreat"
	ColXPassCompletion        = "xpass_completion"
	ColNSimultaneousRuns      = "n_simultaneous_runs"
	ColPassOutcome            = "pass_outcome"
	ColLeadToShot             = "lead_to_shot"
	ColLeadToGoal             = "lead_to_goal"
	ColSeparationGain         = "separation_gain"
	ColDeltaToLastDefLine     = "delta_to_last_defensive_line_gain"
	ColNOffBallRuns           = "n_off_ball_runs"
	ColAssociatedPossessionID = "associated_player_possession_event_id"
)

// ParseEventsCSV parses the raw event-log CSV into an EventLog. The returned
// log records which columns the source carried so consumers can degrade when
// optional columns are absent.
func ParseEventsCSV(data []byte) (model.EventLog, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return model.EventLog{}, fmt.Errorf("read event header: %w", err)
	}
	cols := make([]string, len(header))
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		cols[i] = name
		idx[name] = i
	}

	for _, required := range []string{ColEventID, ColEventType, ColFrameEnd} {
		if _, ok := idx[required]; !ok {
			return model.EventLog{}, fmt.Errorf("event log missing required column %q", required)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var events []model.MatchEvent
	line := 1
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.EventLog{}, fmt.Errorf("read event row %d: %w", line, err)
		}
		line++

		eventID, err := parseID(field(rec, ColEventID))
		if err != nil || eventID == 0 {
			return model.EventLog{}, fmt.Errorf("event row %d: bad event_id %q", line, field(rec, ColEventID))
		}
		frameEnd, err := parseIntDefault(field(rec, ColFrameEnd), 0)
		if err != nil {
			return model.EventLog{}, fmt.Errorf("event row %d: bad frame_end %q", line, field(rec, ColFrameEnd))
		}

		frameStart, _ := parseIntDefault(field(rec, ColFrameStart), 0)
		playerID, _ := parseID(field(rec, ColPlayerID))
		teamID, _ := parseID(field(rec, ColTeamID))
		pipID, _ := parseID(field(rec, ColPlayerInPossessionID))
		assocID, _ := parseID(field(rec, ColAssociatedPossessionID))
		nSim, _ := parseIntDefault(field(rec, ColNSimultaneousRuns), 0)

		events = append(events, model.MatchEvent{
			EventID:                      eventID,
			EventType:                    field(rec, ColEventType),
			FrameStart:                   frameStart,
			FrameEnd:                     frameEnd,
			PlayerID:                     playerID,
			PlayerName:                   field(rec, ColPlayerName),
			TeamID:                       teamID,
			PlayerInPossessionID:         pipID,
			Dangerous:                    parseTruthy(field(rec, ColDangerous)),
			Targeted:                     parseTruthy(field(rec, ColTargeted)),
			XThreat:                      parseFloatNaN(field(rec, ColXThreat)),
			XPassCompletion:              parseFloatNaN(field(rec, ColXPassCompletion)),
			NSimultaneousRuns:            nSim,
			PassOutcome:                  field(rec, ColPassOutcome),
			LeadToShot:                   parseFloatNaN(field(rec, ColLeadToShot)),
			LeadToGoal:                   parseFloatNaN(field(rec, ColLeadToGoal)),
			SeparationGain:               parseFloatNaN(field(rec, ColSeparationGain)),
			DeltaToLastDefensiveLineGain: parseFloatNaN(field(rec, ColDeltaToLastDefLine)),
			NOffBallRuns:                 parseFloatNaN(field(rec, ColNOffBallRuns)),
			AssociatedPossessionEventID:  assocID,
		})
	}

	return model.EventLog{Columns: cols, Events: events}, nil
}

// parseID parses an integer identifier column. Empty values yield 0; values
// serialized as floats ("12345.0") are accepted.
func parseID(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse id %q: %w", s, err)
	}
	return int64(f), nil
}

func parseIntDefault(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def, err
	}
	return int(f), nil
}

// parseFloatNaN parses a nullable float column; empty or unparseable values
// become NaN (undefined), never zero.
func parseFloatNaN(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// parseTruthy parses a 0/1 flag column that may also be serialized as
// True/False or a float.
func parseTruthy(s string) bool {
	switch strings.ToLower(s) {
	case "", "0", "0.0", "false":
		return false
	case "1", "1.0", "true":
		return true
	}
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && f != 0
}
