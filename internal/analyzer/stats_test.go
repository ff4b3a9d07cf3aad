package analyzer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, Mean([]float64{}))
	assert.Equal(t, 3.0, Mean([]float64{1, 2, 3, 4, 5}))
	assert.Equal(t, -2.0, Mean([]float64{-2, -2}))
}

func TestVariance(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{7}, 0},
		{"one through five", []float64{1, 2, 3, 4, 5}, 2},
		{"constant", []float64{4, 4, 4, 4}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Variance(tt.values), 1e-12)
		})
	}
}

func TestCoefVariation(t *testing.T) {
	// Constant series has zero spread.
	assert.Equal(t, 0.0, CoefVariation([]float64{10, 10, 10}))

	// CV is scale-invariant.
	a := CoefVariation([]float64{10, 12, 14})
	b := CoefVariation([]float64{100, 120, 140})
	assert.InDelta(t, a, b, 1e-12)

	// Zero mean cannot be normalized.
	assert.Equal(t, 0.0, CoefVariation([]float64{-1, 1}))
}

func TestNormalizedEntropy(t *testing.T) {
	// Identical values collapse into one bin: zero entropy.
	assert.Equal(t, 0.0, NormalizedEntropy([]float64{16, 16, 16, 16}, 10))

	// All values in distinct bins: maximum entropy, normalized to 1.
	spread := []float64{5, 15, 25, 35, 45, 55, 65, 75}
	assert.InDelta(t, 1.0, NormalizedEntropy(spread, 10), 1e-12)

	// In between.
	mixed := []float64{5, 5, 5, 5, 25, 45, 65, 85}
	e := NormalizedEntropy(mixed, 10)
	assert.Greater(t, e, 0.0)
	assert.Less(t, e, 1.0)

	assert.Equal(t, 0.0, NormalizedEntropy(nil, 10))
	assert.Equal(t, 0.0, NormalizedEntropy([]float64{1}, 10))
}

func TestDetrend(t *testing.T) {
	// A perfect line detrends to zero residuals.
	line := []float64{2, 4, 6, 8, 10}
	for _, r := range Detrend(line) {
		assert.InDelta(t, 0.0, r, 1e-9)
	}

	// Residuals of any series sum to roughly zero.
	series := []float64{1, 5, 2, 8, 3, 9, 4}
	sum := 0.0
	for _, r := range Detrend(series) {
		sum += r
	}
	assert.InDelta(t, 0.0, sum, 1e-9)
}

func TestMaxAutocorr(t *testing.T) {
	// A sine wave sampled at its period correlates strongly with itself.
	periodic := make([]float64, 100)
	for i := range periodic {
		periodic[i] = math.Sin(2 * math.Pi * float64(i) / 10)
	}
	require.Greater(t, MaxAutocorr(periodic, 2, 20), 0.85)

	// Deterministic but aperiodic noise stays low.
	noise := make([]float64, 100)
	seed := 42.0
	for i := range noise {
		seed = math.Mod(seed*97.31+13.7, 29)
		noise[i] = seed
	}
	assert.Less(t, MaxAutocorr(noise, 2, 20), 0.5)

	// Short series cannot support the requested lags.
	assert.Equal(t, 0.0, MaxAutocorr([]float64{1, 2, 3}, 2, 20))
}
