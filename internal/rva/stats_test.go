package rva

import (
	"math"
	"testing"
)

func TestNanMean(t *testing.T) {
	if got := nanMean([]float64{1, math.NaN(), 3}); got != 2 {
		t.Errorf("nanMean: want 2, got %f", got)
	}
	if !math.IsNaN(nanMean(nil)) {
		t.Error("mean of nothing should be NaN")
	}
	if !math.IsNaN(nanMean([]float64{math.NaN()})) {
		t.Error("mean of only NaN should be NaN")
	}
}

func TestNanSumMax(t *testing.T) {
	vals := []float64{math.NaN(), -1, 2.5}
	if got := nanSum(vals); got != 1.5 {
		t.Errorf("nanSum: want 1.5, got %f", got)
	}
	if got := nanMax(vals); got != 2.5 {
		t.Errorf("nanMax: want 2.5, got %f", got)
	}
	if nanSum([]float64{math.NaN()}) != 0 {
		t.Error("sum with no defined values is 0")
	}
	if !math.IsNaN(nanMax([]float64{math.NaN()})) {
		t.Error("max with no defined values is NaN")
	}
	// Max must handle all-negative samples.
	if got := nanMax([]float64{-3, -1, -2}); got != -1 {
		t.Errorf("nanMax negatives: want -1, got %f", got)
	}
}

func TestPearson(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	ys := []float64{2, 4, 6, 8}
	if got := pearson(xs, ys); !almostEqual(got, 1) {
		t.Errorf("perfect correlation: want 1, got %f", got)
	}

	ysNeg := []float64{8, 6, 4, 2}
	if got := pearson(xs, ysNeg); !almostEqual(got, -1) {
		t.Errorf("perfect anticorrelation: want -1, got %f", got)
	}

	// Pairs with a NaN on either side are excluded pairwise.
	xsNaN := []float64{1, math.NaN(), 3, 4}
	if got := pearson(xsNaN, ys); !almostEqual(got, 1) {
		t.Errorf("pairwise-complete correlation: want 1, got %f", got)
	}

	if !math.IsNaN(pearson([]float64{1}, []float64{2})) {
		t.Error("single pair should be NaN")
	}
	if !math.IsNaN(pearson([]float64{1, 1, 1}, []float64{1, 2, 3})) {
		t.Error("zero variance should be NaN")
	}
}

func TestWelchP(t *testing.T) {
	same := []float64{1, 2, 3, 4, 5, 1, 2, 3, 4, 5}
	p := welchP(same, same)
	if math.IsNaN(p) || p < 0.99 {
		t.Errorf("identical samples: want p near 1, got %f", p)
	}

	a := []float64{10, 11, 10, 12, 11, 10, 11, 12, 10, 11}
	b := []float64{1, 2, 1, 2, 1, 2, 1, 2, 1, 2}
	p = welchP(a, b)
	if math.IsNaN(p) || p > 0.001 {
		t.Errorf("clearly different samples: want tiny p, got %f", p)
	}

	if !math.IsNaN(welchP([]float64{1}, a)) {
		t.Error("undefined variance should yield NaN")
	}
}

func TestSignificance(t *testing.T) {
	cases := []struct {
		p    float64
		want string
	}{
		{0.0001, "***"},
		{0.005, "**"},
		{0.04, "*"},
		{0.2, ""},
		{math.NaN(), ""},
	}
	for _, c := range cases {
		if got := significance(c.p); got != c.want {
			t.Errorf("significance(%f): want %q, got %q", c.p, c.want, got)
		}
	}
}

func TestDescending(t *testing.T) {
	if !descending(2, 1) || descending(1, 2) {
		t.Error("basic ordering wrong")
	}
	if descending(math.NaN(), 1) {
		t.Error("NaN must sort after defined values")
	}
	if !descending(1, math.NaN()) {
		t.Error("defined values must sort before NaN")
	}
}
