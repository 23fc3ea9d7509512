package rva

import (
	"math"

	"github.com/pable/go-rva-metrics/internal/model"
)

// RVA calibration coefficients. These are fixed empirical constants; output
// compatibility requires the exact values.
const (
	// Full shot credit for a dangerous run that was targeted.
	ShotTargetedCoeff = 2.5
	// Minimal shot credit for a dangerous run that was ignored.
	ShotIgnoredCoeff = 0.3
	// All dangerous runs help advance play, targeted or not.
	ProgressionCoeff = 0.12
	// Ignored dangerous runs cause hesitation and space loss.
	DecoyCoeff = -0.25
	// Simultaneous runs stress the defense more.
	OverloadCoeff = 0.08
)

// Score merges each passing option with its parent possession's outcome
// fields and computes the five RVA components plus their sum.
//
// Every component is a pure function of one run's fields and its merged
// parent attributes; scoring a slice twice yields identical values.
func Score(runs []model.MatchEvent, possessions []model.Possession) []model.ScoredRun {
	byID := make(map[int64]*model.Possession, len(possessions))
	for i := range possessions {
		byID[possessions[i].Event.EventID] = &possessions[i]
	}

	scored := make([]model.ScoredRun, 0, len(runs))
	for _, run := range runs {
		sr := model.ScoredRun{
			Run:            run,
			SeparationGain: math.NaN(),
			LeadToShot:     math.NaN(),
		}
		if parent, ok := byID[run.AssociatedPossessionEventID]; ok && run.AssociatedPossessionEventID != 0 {
			sr.ParentEventID = parent.Event.EventID
			sr.PassOutcome = parent.Event.PassOutcome
			sr.SeparationGain = parent.Event.SeparationGain
			sr.LeadToShot = parent.Event.LeadToShot
		}
		scoreRun(&sr)
		scored = append(scored, sr)
	}
	return scored
}

// scoreRun fills in the five components and the total for one run.
func scoreRun(sr *model.ScoredRun) {
	run := &sr.Run

	// Shot credit belongs to the possession, not the run; treat an unknown
	// outcome as "no shot".
	shotCreated := sr.LeadToShot
	if math.IsNaN(shotCreated) {
		shotCreated = 0
	}

	switch {
	case run.Dangerous && run.Targeted:
		sr.ShotValue = run.XThreat * shotCreated * ShotTargetedCoeff
	case run.Dangerous:
		sr.ShotValue = run.XThreat * shotCreated * ShotIgnoredCoeff
	default:
		sr.ShotValue = 0
	}

	if run.Targeted {
		sr.DirectValue = run.XThreat * run.XPassCompletion
	} else {
		sr.DirectValue = 0
	}

	if run.Dangerous {
		sr.ProgressionValue = run.XThreat * ProgressionCoeff
	} else {
		sr.ProgressionValue = 0
	}

	if run.Dangerous && !run.Targeted {
		sr.DecoyPenalty = run.XThreat * DecoyCoeff
	} else {
		sr.DecoyPenalty = 0
	}

	if run.Dangerous && run.NSimultaneousRuns > 1 {
		sr.OverloadValue = run.XThreat * OverloadCoeff * float64(run.NSimultaneousRuns)
	} else {
		sr.OverloadValue = 0
	}

	sr.RVA = sr.ShotValue + sr.DirectValue + sr.ProgressionValue + sr.DecoyPenalty + sr.OverloadValue
}
