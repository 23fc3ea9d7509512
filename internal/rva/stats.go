package rva

import (
	"math"
)

// NaN-aware aggregation helpers. Undefined results are NaN, never zero: a
// mean over an empty group means "insufficient sample", and consumers must
// not confuse it with a measured 0.

// nanMean returns the mean of the non-NaN values, or NaN if there are none.
func nanMean(vals []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// nanSum returns the sum of the non-NaN values. A group with no defined
// values sums to 0, matching the usual relational SUM-with-skip semantics.
func nanSum(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		if !math.IsNaN(v) {
			sum += v
		}
	}
	return sum
}

// nanMax returns the max of the non-NaN values, or NaN if there are none.
func nanMax(vals []float64) float64 {
	best, seen := 0.0, false
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if !seen || v > best {
			best, seen = v, true
		}
	}
	if !seen {
		return math.NaN()
	}
	return best
}

// nanVariance returns the sample variance of the non-NaN values, or NaN when
// fewer than two are defined.
func nanVariance(vals []float64) float64 {
	mean := nanMean(vals)
	if math.IsNaN(mean) {
		return math.NaN()
	}
	ss, n := 0.0, 0
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		d := v - mean
		ss += d * d
		n++
	}
	if n < 2 {
		return math.NaN()
	}
	return ss / float64(n-1)
}

// pearson returns the Pearson correlation of the pairs where both values are
// defined, or NaN with fewer than two such pairs or zero variance.
func pearson(xs, ys []float64) float64 {
	if len(xs) != len(ys) {
		return math.NaN()
	}
	var fx, fy []float64
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		fx = append(fx, xs[i])
		fy = append(fy, ys[i])
	}
	if len(fx) < 2 {
		return math.NaN()
	}
	mx, my := nanMean(fx), nanMean(fy)
	var sxy, sxx, syy float64
	for i := range fx {
		dx, dy := fx[i]-mx, fy[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return math.NaN()
	}
	return sxy / math.Sqrt(sxx*syy)
}

// welchP returns the two-sided p-value for the difference of two sample
// means, using Welch's statistic with a normal approximation. Only applied
// to samples large enough (>20 each) for the approximation to hold; callers
// gate on sample size. Returns NaN when either variance is undefined.
func welchP(a, b []float64) float64 {
	va, vb := nanVariance(a), nanVariance(b)
	if math.IsNaN(va) || math.IsNaN(vb) {
		return math.NaN()
	}
	na, nb := float64(nanCount(a)), float64(nanCount(b))
	se := math.Sqrt(va/na + vb/nb)
	if se == 0 {
		return math.NaN()
	}
	t := (nanMean(a) - nanMean(b)) / se
	return 2 * (1 - normalCDF(math.Abs(t)))
}

func nanCount(vals []float64) int {
	n := 0
	for _, v := range vals {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

func normalCDF(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}

// significance maps a p-value to the conventional star marker.
func significance(p float64) string {
	switch {
	case math.IsNaN(p):
		return ""
	case p < 0.001:
		return "***"
	case p < 0.01:
		return "**"
	case p < 0.05:
		return "*"
	default:
		return ""
	}
}

// descending reports whether a should sort before b for a descending order
// where NaN sorts last.
func descending(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a > b
}
