// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package estimate

import (
	"math"
	"slices"
)

const (
	// iqrFactor scales the interquartile range into the accepted band
	// around the quartiles.
	iqrFactor = 1.5

	// minQuartileSamples is the smallest sample count that is
	// outlier-filtered. Smaller sets are summarized as-is.
	minQuartileSamples = 4
)

// OpacityFromAlpha converts a 0-255 alpha to a rounded 0-100 opacity.
func OpacityFromAlpha(alpha uint8) int {
	return int(math.Round(float64(alpha) / 255 * 100))
}

// RobustWidth summarizes thickness samples. Crossing strokes inflate a
// minority of samples, so values outside [Q1 - 1.5 IQR, Q3 + 1.5 IQR] are
// dropped before taking the lower median. Returns 1 for an empty set or
// when filtering removes everything.
func RobustWidth(samples []int) int {
	if len(samples) == 0 {
		return 1
	}
	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	kept := filterIQR(sorted)
	if len(kept) == 0 {
		return 1
	}
	return kept[(len(kept)-1)/2]
}

// filterIQR keeps the values of sorted within the IQR band. Quartiles are
// taken by index, n/4 and 3n/4.
func filterIQR(sorted []int) []int {
	n := len(sorted)
	if n < minQuartileSamples {
		return sorted
	}

	q1 := float64(sorted[n/4])
	q3 := float64(sorted[3*n/4])
	iqr := q3 - q1
	lo, hi := q1-iqrFactor*iqr, q3+iqrFactor*iqr

	kept := make([]int, 0, n)
	for _, v := range sorted {
		if f := float64(v); f >= lo && f <= hi {
			kept = append(kept, v)
		}
	}
	return kept
}
