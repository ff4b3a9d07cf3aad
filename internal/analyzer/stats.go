// Package analyzer turns per-channel sample buffers into channel verdicts.
//
// Analyzers are pure functions: same buffer and calibration in, same verdict
// out. They never log and never touch shared state, which keeps them
// trivially testable against synthetic sessions.
package analyzer

import "math"

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Variance returns the population variance, 0 for an empty slice.
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// CoefVariation returns stddev/mean, a scale-free regularity measure.
// Returns 0 when the mean is 0.
func CoefVariation(values []float64) float64 {
	mean := Mean(values)
	if mean == 0 {
		return 0
	}
	return StdDev(values) / math.Abs(mean)
}

// NormalizedEntropy buckets values into binWidth-sized bins and returns the
// Shannon entropy of the histogram normalized to [0,1] by the maximum
// entropy possible for the sample count. Low values mean predictable,
// machine-like timing.
func NormalizedEntropy(values []float64, binWidth float64) float64 {
	if len(values) < 2 || binWidth <= 0 {
		return 0
	}
	histogram := make(map[int]int)
	for _, v := range values {
		histogram[int(math.Floor(v/binWidth))]++
	}
	n := float64(len(values))
	entropy := 0.0
	for _, count := range histogram {
		p := float64(count) / n
		entropy -= p * math.Log2(p)
	}
	max := math.Log2(n)
	if max == 0 {
		return 0
	}
	e := entropy / max
	if e > 1 {
		e = 1
	}
	return e
}

// Detrend subtracts the least-squares line from the series, leaving the
// residual around the trend.
func Detrend(values []float64) []float64 {
	n := len(values)
	if n < 2 {
		return nil
	}
	// Fit y = a + b*x over x = 0..n-1.
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	nf := float64(n)
	denom := nf*sumXX - sumX*sumX
	var a, b float64
	if denom != 0 {
		b = (nf*sumXY - sumX*sumY) / denom
		a = (sumY - b*sumX) / nf
	} else {
		a = sumY / nf
	}
	residual := make([]float64, n)
	for i, v := range values {
		residual[i] = v - (a + b*float64(i))
	}
	return residual
}

// MaxAutocorr returns the maximum normalized autocorrelation of the
// mean-centered series over lags [minLag, maxLag]. Values near 1 indicate a
// strongly periodic signal.
func MaxAutocorr(values []float64, minLag, maxLag int) float64 {
	n := len(values)
	if n < minLag+2 || minLag < 1 {
		return 0
	}
	mean := Mean(values)
	centered := make([]float64, n)
	var denom float64
	for i, v := range values {
		centered[i] = v - mean
		denom += centered[i] * centered[i]
	}
	if denom == 0 {
		return 0
	}
	best := 0.0
	for lag := minLag; lag <= maxLag && lag < n; lag++ {
		var num float64
		for i := lag; i < n; i++ {
			num += centered[i] * centered[i-lag]
		}
		r := num / denom
		if r > best {
			best = r
		}
	}
	return best
}

// clamp01 bounds a score to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
