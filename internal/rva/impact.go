package rva

import (
	"math"

	"go.uber.org/zap"

	"github.com/pable/go-rva-metrics/internal/loader"
	"github.com/pable/go-rva-metrics/internal/model"
)

// OutcomeComparison compares the mean of one outcome metric between two
// possession groups. Means are NaN when a group has no defined samples.
type OutcomeComparison struct {
	Metric       string
	WithMean     float64
	WithoutMean  float64
	Difference   float64
	PValue       float64
	Significance string
}

// RunImpactReport describes how dangerous runs relate to possession outcomes.
type RunImpactReport struct {
	NPossessionsWithRuns     int
	NWithDangerousRun        int
	NWithUntargetedDangerous int
	Outcomes                 []OutcomeComparison
}

// minSampleForTest gates the significance test: the normal approximation is
// only applied when both groups exceed this size.
const minSampleForTest = 20

// RunImpact compares possessions that had at least one dangerous run against
// those that had runs but no dangerous one, over the numeric outcome columns
// present in the event log. Missing optional columns skip that metric.
func RunImpact(possessions []model.Possession, eventLog *model.EventLog, log *zap.Logger) RunImpactReport {
	report := RunImpactReport{}

	var withDangerous, withoutDangerous []*model.Possession
	for i := range possessions {
		p := &possessions[i]
		if !p.HasRuns() {
			continue
		}
		report.NPossessionsWithRuns++
		if p.Runs.AnyDangerousRun > 0 {
			report.NWithDangerousRun++
			withDangerous = append(withDangerous, p)
		} else {
			withoutDangerous = append(withoutDangerous, p)
		}
		if p.Runs.NUntargetedDangerous > 0 {
			report.NWithUntargetedDangerous++
		}
	}

	metrics := []struct {
		column string
		value  func(*model.Possession) float64
	}{
		{loader.ColXThreat, func(p *model.Possession) float64 { return p.Event.XThreat }},
		{loader.ColLeadToShot, func(p *model.Possession) float64 { return p.Event.LeadToShot }},
		{loader.ColLeadToGoal, func(p *model.Possession) float64 { return p.Event.LeadToGoal }},
	}
	for _, m := range metrics {
		if !eventLog.HasColumn(m.column) {
			log.Info("outcome column absent, skipping metric", zap.String("column", m.column))
			continue
		}
		report.Outcomes = append(report.Outcomes,
			compareGroups(m.column, collect(withDangerous, m.value), collect(withoutDangerous, m.value)))
	}
	return report
}

// UntargetedRunReport quantifies the cost of ignoring a dangerous run.
type UntargetedRunReport struct {
	// Possessions where a dangerous run existed and at least one was
	// targeted, vs. none targeted.
	NTargeted int
	NIgnored  int

	XThreatTargeted float64
	XThreatIgnored  float64
	XThreatDiff     float64

	// Mean separation gained on possessions whose dangerous runs were all
	// ignored; NaN when the column is absent or the sample empty.
	SeparationGainIgnored float64
}

// UntargetedRuns analyzes possessions where a dangerous run was targeted
// versus ignored.
func UntargetedRuns(possessions []model.Possession, eventLog *model.EventLog) UntargetedRunReport {
	var targeted, ignored []*model.Possession
	for i := range possessions {
		p := &possessions[i]
		if !p.HasRuns() || !(p.Runs.NDangerousRuns > 0) {
			continue
		}
		if p.Runs.NTargetedRuns > 0 {
			targeted = append(targeted, p)
		} else {
			ignored = append(ignored, p)
		}
	}

	report := UntargetedRunReport{
		NTargeted:             len(targeted),
		NIgnored:              len(ignored),
		SeparationGainIgnored: math.NaN(),
	}
	report.XThreatTargeted = nanMean(collect(targeted, func(p *model.Possession) float64 { return p.Event.XThreat }))
	report.XThreatIgnored = nanMean(collect(ignored, func(p *model.Possession) float64 { return p.Event.XThreat }))
	report.XThreatDiff = report.XThreatTargeted - report.XThreatIgnored

	if eventLog.HasColumn(loader.ColSeparationGain) {
		report.SeparationGainIgnored = nanMean(collect(ignored,
			func(p *model.Possession) float64 { return p.Event.SeparationGain }))
	}
	return report
}

// CompareRuns compares possessions with off-ball runs against those without,
// across the outcome metrics whose columns exist. The split uses the
// provider's own n_off_ball_runs possession column; without it the
// comparison is skipped entirely.
func CompareRuns(possessions []model.Possession, eventLog *model.EventLog, log *zap.Logger) []OutcomeComparison {
	if !eventLog.HasColumn(loader.ColNOffBallRuns) {
		log.Info("n_off_ball_runs column absent, skipping with/without comparison")
		return nil
	}

	var withRuns, withoutRuns []*model.Possession
	for i := range possessions {
		p := &possessions[i]
		if math.IsNaN(p.Event.NOffBallRuns) {
			continue
		}
		if p.Event.NOffBallRuns > 0 {
			withRuns = append(withRuns, p)
		} else {
			withoutRuns = append(withoutRuns, p)
		}
	}

	metrics := []struct {
		name   string
		column string
		value  func(*model.Possession) float64
	}{
		{"pass_success", loader.ColPassOutcome, func(p *model.Possession) float64 {
			if p.Event.PassOutcome == "" {
				return math.NaN()
			}
			if p.Event.PassOutcome == "successful" {
				return 1
			}
			return 0
		}},
		{"progression", loader.ColDeltaToLastDefLine, func(p *model.Possession) float64 {
			return p.Event.DeltaToLastDefensiveLineGain
		}},
		{"separation_gained", loader.ColSeparationGain, func(p *model.Possession) float64 {
			return p.Event.SeparationGain
		}},
		{"lead_to_shot", loader.ColLeadToShot, func(p *model.Possession) float64 {
			// An unknown shot outcome counts as no shot here.
			if math.IsNaN(p.Event.LeadToShot) {
				return 0
			}
			return p.Event.LeadToShot
		}},
	}

	var out []OutcomeComparison
	for _, m := range metrics {
		if !eventLog.HasColumn(m.column) {
			log.Info("outcome column absent, skipping metric", zap.String("column", m.column))
			continue
		}
		out = append(out, compareGroups(m.name, collect(withRuns, m.value), collect(withoutRuns, m.value)))
	}
	return out
}

// CorrelationResult is the Pearson correlation between a run feature and a
// possession outcome.
type CorrelationResult struct {
	Outcome string
	Feature string
	R       float64
}

// Correlations measures which aggregated run features move with better
// possession outcomes.
func Correlations(possessions []model.Possession, eventLog *model.EventLog) []CorrelationResult {
	var withRuns []*model.Possession
	for i := range possessions {
		if possessions[i].HasRuns() {
			withRuns = append(withRuns, &possessions[i])
		}
	}

	features := []struct {
		name  string
		value func(*model.Possession) float64
	}{
		{"n_dangerous", func(p *model.Possession) float64 { return p.Runs.NDangerousRuns }},
		{"max_simultaneous", func(p *model.Possession) float64 { return p.Runs.MaxSimultaneousRuns }},
		{"n_runs", func(p *model.Possession) float64 { return p.Runs.NTotalRuns }},
	}
	outcomes := []struct {
		name   string
		column string
		value  func(*model.Possession) float64
	}{
		{"pass_success", loader.ColPassOutcome, func(p *model.Possession) float64 {
			if p.Event.PassOutcome == "" {
				return math.NaN()
			}
			if p.Event.PassOutcome == "successful" {
				return 1
			}
			return 0
		}},
		{"progression", loader.ColDeltaToLastDefLine, func(p *model.Possession) float64 {
			return p.Event.DeltaToLastDefensiveLineGain
		}},
		{"separation_gained", loader.ColSeparationGain, func(p *model.Possession) float64 {
			return p.Event.SeparationGain
		}},
	}

	var out []CorrelationResult
	for _, oc := range outcomes {
		if !eventLog.HasColumn(oc.column) {
			continue
		}
		ys := collect(withRuns, oc.value)
		for _, f := range features {
			out = append(out, CorrelationResult{
				Outcome: oc.name,
				Feature: f.name,
				R:       pearson(collect(withRuns, f.value), ys),
			})
		}
	}
	return out
}

func collect(ps []*model.Possession, f func(*model.Possession) float64) []float64 {
	out := make([]float64, 0, len(ps))
	for _, p := range ps {
		out = append(out, f(p))
	}
	return out
}

func compareGroups(metric string, with, without []float64) OutcomeComparison {
	cmp := OutcomeComparison{
		Metric:      metric,
		WithMean:    nanMean(with),
		WithoutMean: nanMean(without),
		PValue:      math.NaN(),
	}
	cmp.Difference = cmp.WithMean - cmp.WithoutMean
	if nanCount(with) > minSampleForTest && nanCount(without) > minSampleForTest {
		cmp.PValue = welchP(with, without)
	}
	cmp.Significance = significance(cmp.PValue)
	return cmp
}
