// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package estimate assigns one color, opacity and width to a segmented
// stroke by sampling the page raster under each of its points. Single
// samples are noisy (anti-aliasing, compression, self-overlap), so each
// attribute is reduced with a robust statistic.
package estimate

import (
	"github.com/pdiddy/petrify/internal/raster"
	"github.com/pdiddy/petrify/internal/segment"
	"github.com/pdiddy/petrify/pkg/types"
)

// Sampler answers the pixel queries the estimator needs.
// *raster.Sampler implements it.
type Sampler interface {
	ColorAt(x, y int) (string, uint8)
	LocalThickness(x, y int) int
}

// Estimator reduces raster samples to stroke attributes.
type Estimator struct {
	sampler Sampler
}

// New returns an Estimator reading from s.
func New(s Sampler) *Estimator {
	return &Estimator{sampler: s}
}

type ink struct {
	color string
	alpha uint8
}

// Color returns the most frequent non-background (color, alpha) sample
// and its opacity on the 0-100 scale. Ties go to the pair seen first.
// When every sample is background the result is DefaultColor at full
// opacity.
func (e *Estimator) Color(points []types.Point) (string, int) {
	counts := make(map[ink]int)
	var order []ink
	for _, p := range points {
		hex, alpha := e.sampler.ColorAt(segment.PixelCoord(p.X), segment.PixelCoord(p.Y))
		if raster.IsBackground(hex, alpha) {
			continue
		}
		k := ink{color: hex, alpha: alpha}
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}

	if len(order) == 0 {
		return types.DefaultColor, types.DefaultOpacity
	}

	best := order[0]
	for _, k := range order[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return best.color, OpacityFromAlpha(best.alpha)
}

// Width returns the representative pen width of the stroke in raster
// pixels. Points over transparent or out-of-bounds pixels are ignored;
// with no usable samples the width is DefaultWidth.
func (e *Estimator) Width(points []types.Point) float64 {
	samples := make([]int, 0, len(points))
	for _, p := range points {
		if w := e.sampler.LocalThickness(segment.PixelCoord(p.X), segment.PixelCoord(p.Y)); w > 0 {
			samples = append(samples, w)
		}
	}
	return float64(RobustWidth(samples))
}

// Style estimates the full style of one stroke.
func (e *Estimator) Style(points []types.Point) types.StrokeStyle {
	color, opacity := e.Color(points)
	return types.StrokeStyle{
		Color:   color,
		Width:   e.Width(points),
		Opacity: opacity,
	}
}
