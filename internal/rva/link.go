// Package rva links off-ball passing options to their parent possessions and
// scores each run with the Run Value Added formula.
package rva

import (
	"math"

	"go.uber.org/zap"

	"github.com/pable/go-rva-metrics/internal/loader"
	"github.com/pable/go-rva-metrics/internal/model"
)

// Partition splits the event log into possession and passing-option subsets
// by event type. All other event types are ignored.
func Partition(log *model.EventLog) (possessions, runs []model.MatchEvent) {
	for _, ev := range log.Events {
		switch ev.EventType {
		case model.EventPlayerPossession:
			possessions = append(possessions, ev)
		case model.EventPassingOption:
			runs = append(runs, ev)
		}
	}
	return possessions, runs
}

// emptyAggregate is the left-merge null: every field undefined.
func emptyAggregate() model.RunAggregate {
	nan := math.NaN()
	return model.RunAggregate{
		NDangerousRuns:       nan,
		AnyDangerousRun:      nan,
		AvgXThreat:           nan,
		MaxXThreat:           nan,
		TotalXThreat:         nan,
		NTargetedRuns:        nan,
		NTotalRuns:           nan,
		MaxSimultaneousRuns:  nan,
		NUntargetedDangerous: nan,
	}
}

// untargetedDangerous computes nDangerous − nTargeted with a null targeted
// count treated as zero before subtracting. A null dangerous count stays
// null.
func untargetedDangerous(nDangerous, nTargeted float64) float64 {
	if math.IsNaN(nTargeted) {
		nTargeted = 0
	}
	return nDangerous - nTargeted
}

// LinkRuns links passing options to their parent possessions through the
// associated_player_possession_event_id column and enriches each possession
// with aggregated run statistics.
//
// Linking is best-effort, never fatal: when the event log lacks the foreign
// key column, a diagnostic listing candidate columns is logged and the
// possession set is returned unenriched: same rows, all aggregates null.
func LinkRuns(possessions, runs []model.MatchEvent, eventLog *model.EventLog, log *zap.Logger) []model.Possession {
	out := make([]model.Possession, len(possessions))
	for i, p := range possessions {
		out[i] = model.Possession{Event: p, Runs: emptyAggregate()}
	}

	if !eventLog.HasColumn(loader.ColAssociatedPossessionID) {
		log.Warn("cannot find linking column, returning possessions unenriched",
			zap.String("wanted", loader.ColAssociatedPossessionID),
			zap.Strings("candidates", eventLog.ColumnsMatching("event_id")))
		return out
	}

	// Group runs by parent possession.
	byParent := make(map[int64][]*model.MatchEvent)
	for i := range runs {
		r := &runs[i]
		if r.AssociatedPossessionEventID == 0 {
			continue
		}
		byParent[r.AssociatedPossessionEventID] = append(byParent[r.AssociatedPossessionEventID], r)
	}

	for i := range out {
		group := byParent[out[i].Event.EventID]
		if len(group) == 0 {
			continue
		}

		var nDangerous, nTargeted, anyDangerous float64
		maxSim := 0
		xthreats := make([]float64, 0, len(group))
		for _, r := range group {
			if r.Dangerous {
				nDangerous++
				anyDangerous = 1
			}
			if r.Targeted {
				nTargeted++
			}
			if r.NSimultaneousRuns > maxSim {
				maxSim = r.NSimultaneousRuns
			}
			xthreats = append(xthreats, r.XThreat)
		}

		out[i].Runs = model.RunAggregate{
			NDangerousRuns:       nDangerous,
			AnyDangerousRun:      anyDangerous,
			AvgXThreat:           nanMean(xthreats),
			MaxXThreat:           nanMax(xthreats),
			TotalXThreat:         nanSum(xthreats),
			NTargetedRuns:        nTargeted,
			NTotalRuns:           float64(len(group)),
			MaxSimultaneousRuns:  float64(maxSim),
			NUntargetedDangerous: untargetedDangerous(nDangerous, nTargeted),
		}
	}

	log.Info("linked runs to possessions",
		zap.Int("possessions", len(out)),
		zap.Int("linked_groups", len(byParent)),
		zap.Int("runs", len(runs)))
	return out
}
