// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package segment groups unordered pen samples into strokes. Samples are
// sorted by timestamp and split wherever the gap between neighbours
// reaches the threshold, or wherever a boundary Policy reports a change.
package segment

import (
	"cmp"
	"math"
	"slices"

	"github.com/pdiddy/petrify/internal/raster"
	"github.com/pdiddy/petrify/pkg/types"
)

// DefaultGapThreshold is the timestamp delta, in device sample ticks, at or
// above which two consecutive samples belong to different strokes. Points
// inside one gesture are observed at most 5 ticks apart.
const DefaultGapThreshold int64 = 6

// Policy supplies boundaries beyond the temporal gap.
type Policy interface {
	// Walk returns a Detector for one pass over time-sorted samples.
	Walk() Detector
}

// Detector is fed every sample of a pass in order.
type Detector interface {
	// Next reports whether p must start a new stroke. gap is set when the
	// temporal gap before p already starts one.
	Next(p types.Point, gap bool) bool
}

// Temporal splits on timestamp gaps only. It is used when a page has no
// raster to sample.
type Temporal struct{}

// Walk implements Policy.
func (Temporal) Walk() Detector { return noBoundary{} }

type noBoundary struct{}

func (noBoundary) Next(types.Point, bool) bool { return false }

// ColorSampler answers pixel color queries.
type ColorSampler interface {
	ColorAt(x, y int) (string, uint8)
}

// InkChange additionally splits when the sampled ink color changes, as
// when the writer switches pens without lifting for long. Background
// samples inherit the running color and never force a split, including
// at the start of a stroke before any ink has been seen.
type InkChange struct {
	Sampler ColorSampler
}

// Walk implements Policy.
func (c InkChange) Walk() Detector {
	return &inkDetector{sampler: c.Sampler}
}

type inkDetector struct {
	sampler ColorSampler
	current string
	started bool
}

func (d *inkDetector) Next(p types.Point, gap bool) bool {
	if gap {
		d.started = false
	}
	hex, alpha := d.sampler.ColorAt(PixelCoord(p.X), PixelCoord(p.Y))
	if raster.IsBackground(hex, alpha) {
		return false
	}

	changed := d.started && hex != d.current
	d.current = hex
	d.started = true
	return changed
}

// PixelCoord maps a sample coordinate to the pixel that contains it.
func PixelCoord(v float64) int {
	return int(math.Floor(v))
}

// Segmenter splits samples into strokes.
type Segmenter struct {
	// GapThreshold is the minimum timestamp delta that starts a new
	// stroke. Zero or negative means DefaultGapThreshold.
	GapThreshold int64
}

// New returns a Segmenter using DefaultGapThreshold.
func New() Segmenter {
	return Segmenter{GapThreshold: DefaultGapThreshold}
}

func (s Segmenter) threshold() int64 {
	if s.GapThreshold <= 0 {
		return DefaultGapThreshold
	}
	return s.GapThreshold
}

// Segment sorts points by timestamp, keeping the input order of equal
// timestamps, and returns the maximal runs between boundaries in time
// order. The input slice is not modified. Empty input yields no runs.
func (s Segmenter) Segment(points []types.Point, policy Policy) [][]types.Point {
	if len(points) == 0 {
		return nil
	}
	if policy == nil {
		policy = Temporal{}
	}

	sorted := slices.Clone(points)
	slices.SortStableFunc(sorted, func(a, b types.Point) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})

	threshold := s.threshold()
	detector := policy.Walk()

	var runs [][]types.Point
	var current []types.Point
	for i, p := range sorted {
		gap := i > 0 && p.Timestamp-sorted[i-1].Timestamp >= threshold
		changed := detector.Next(p, gap)
		if i > 0 && (gap || changed) {
			runs = append(runs, current)
			current = nil
		}
		current = append(current, p)
	}
	return append(runs, current)
}
