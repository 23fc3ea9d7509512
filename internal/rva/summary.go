package rva

import (
	"math"
	"sort"

	"github.com/pable/go-rva-metrics/internal/model"
)

// SummaryStats are match-level RVA statistics over all scored runs.
type SummaryStats struct {
	NRuns int

	MeanRVA                    float64
	MeanRVATargeted            float64
	MeanRVAUntargeted          float64
	MeanRVAUntargetedDangerous float64

	MeanShotValue        float64
	MeanDirectValue      float64
	MeanProgressionValue float64
	MeanDecoyPenalty     float64
	MeanOverloadValue    float64
}

// Summarize computes match-level RVA statistics from scored runs.
func Summarize(scored []model.ScoredRun) SummaryStats {
	var all, targeted, untargeted, untargetedDang []float64
	var shot, direct, prog, decoy, overload []float64
	for _, s := range scored {
		all = append(all, s.RVA)
		if s.Run.Targeted {
			targeted = append(targeted, s.RVA)
		} else {
			untargeted = append(untargeted, s.RVA)
			if s.Run.Dangerous {
				untargetedDang = append(untargetedDang, s.RVA)
			}
		}
		shot = append(shot, s.ShotValue)
		direct = append(direct, s.DirectValue)
		prog = append(prog, s.ProgressionValue)
		decoy = append(decoy, s.DecoyPenalty)
		overload = append(overload, s.OverloadValue)
	}
	return SummaryStats{
		NRuns:                      len(scored),
		MeanRVA:                    nanMean(all),
		MeanRVATargeted:            nanMean(targeted),
		MeanRVAUntargeted:          nanMean(untargeted),
		MeanRVAUntargetedDangerous: nanMean(untargetedDang),
		MeanShotValue:              nanMean(shot),
		MeanDirectValue:            nanMean(direct),
		MeanProgressionValue:       nanMean(prog),
		MeanDecoyPenalty:           nanMean(decoy),
		MeanOverloadValue:          nanMean(overload),
	}
}

// SummarizePlayers rolls scored runs up per player and ranks them by total
// RVA descending. Undefined RVA values (missing xthreat upstream) are
// excluded from sums and means but still counted as runs.
func SummarizePlayers(matchID int64, scored []model.ScoredRun) []model.PlayerRVASummary {
	type accum struct {
		rvas       []float64
		shot       float64
		direct     float64
		nRuns      int
		nTargeted  int
		nDangerous int
	}
	byPlayer := make(map[string]*accum)
	var order []string

	for _, s := range scored {
		name := s.Run.PlayerName
		acc := byPlayer[name]
		if acc == nil {
			acc = &accum{}
			byPlayer[name] = acc
			order = append(order, name)
		}
		acc.rvas = append(acc.rvas, s.RVA)
		if !math.IsNaN(s.ShotValue) {
			acc.shot += s.ShotValue
		}
		if !math.IsNaN(s.DirectValue) {
			acc.direct += s.DirectValue
		}
		acc.nRuns++
		if s.Run.Targeted {
			acc.nTargeted++
		}
		if s.Run.Dangerous {
			acc.nDangerous++
		}
	}

	out := make([]model.PlayerRVASummary, 0, len(byPlayer))
	for _, name := range order {
		acc := byPlayer[name]
		out = append(out, model.PlayerRVASummary{
			MatchID:            matchID,
			PlayerName:         name,
			TotalRVA:           nanSum(acc.rvas),
			AvgRVA:             nanMean(acc.rvas),
			NRuns:              acc.nRuns,
			NTargeted:          acc.nTargeted,
			NDangerous:         acc.nDangerous,
			ShotContribution:   acc.shot,
			DirectContribution: acc.direct,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalRVA != out[j].TotalRVA {
			return descending(out[i].TotalRVA, out[j].TotalRVA)
		}
		return out[i].PlayerName < out[j].PlayerName
	})
	return out
}
