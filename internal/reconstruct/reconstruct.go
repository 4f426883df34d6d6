// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reconstruct turns a page's raw pen samples and optional raster
// into finished strokes: segmentation, then per-stroke attribute
// estimation from the raster.
package reconstruct

import (
	"fmt"
	"regexp"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pdiddy/petrify/internal/estimate"
	"github.com/pdiddy/petrify/internal/logging"
	"github.com/pdiddy/petrify/internal/raster"
	"github.com/pdiddy/petrify/internal/segment"
	"github.com/pdiddy/petrify/pkg/types"
)

// Reconstructor runs the per-page stroke pipeline. The zero value is not
// usable; call New.
type Reconstructor struct {
	segmenter segment.Segmenter
}

// New returns a Reconstructor using the default gap threshold.
func New() *Reconstructor {
	return &Reconstructor{segmenter: segment.New()}
}

// WithSegmenter returns a Reconstructor using s.
func WithSegmenter(s segment.Segmenter) *Reconstructor {
	return &Reconstructor{segmenter: s}
}

// Strokes reconstructs the strokes of one page. With a decodable raster
// the samples are split on gaps and ink changes and each stroke's style is
// estimated from the raster. Without one, or when the raster cannot be
// decoded, strokes are split on gaps only and get the default style.
func (r *Reconstructor) Strokes(pageID string, points []types.Point, background []byte) []types.Stroke {
	if len(points) == 0 {
		return nil
	}

	var sampler *raster.Sampler
	if background != nil {
		s, err := raster.Decode(background)
		if err != nil {
			logging.Logger().Warn("page raster unusable, using default stroke style",
				"page", pageID, "error", err)
		} else {
			sampler = s
		}
	}

	if sampler == nil {
		runs := r.segmenter.Segment(points, segment.Temporal{})
		strokes := make([]types.Stroke, len(runs))
		for i, run := range runs {
			strokes[i] = types.Stroke{Points: run, StrokeStyle: types.DefaultStyle()}
		}
		logging.Logger().Debug("reconstructed page without raster",
			"page", pageID, "points", len(points), "strokes", len(strokes))
		return strokes
	}

	runs := r.segmenter.Segment(points, segment.InkChange{Sampler: sampler})
	est := estimate.New(sampler)
	strokes := make([]types.Stroke, len(runs))
	for i, run := range runs {
		strokes[i] = types.Stroke{Points: run, StrokeStyle: est.Style(run)}
	}
	logging.Logger().Debug("reconstructed page from raster",
		"page", pageID, "points", len(points), "strokes", len(strokes),
		"raster_width", sampler.Width(), "raster_height", sampler.Height())
	return strokes
}

// Page reconstructs one page with the default canvas size.
func (r *Reconstructor) Page(id string, points []types.Point, background []byte) types.Page {
	return types.NewPage(id, r.Strokes(id, points, background), background)
}

// hexColor matches "#rgb" and "#rrggbb". colorful.Hex alone tolerates
// short or overlong input and would silently pick a different color.
var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// NormalizeOverrides validates o and returns it with the color in
// lowercase "#rrggbb" form.
func NormalizeOverrides(o types.Overrides) (types.Overrides, error) {
	if o.StrokeColor != "" {
		if !hexColor.MatchString(o.StrokeColor) {
			return o, fmt.Errorf("invalid stroke color %q: want #rgb or #rrggbb", o.StrokeColor)
		}
		c, err := colorful.Hex(o.StrokeColor)
		if err != nil {
			return o, fmt.Errorf("invalid stroke color %q: %w", o.StrokeColor, err)
		}
		o.StrokeColor = c.Hex()
	}
	if o.StrokeWidth < 0 {
		return o, fmt.Errorf("invalid stroke width %v: must be positive", o.StrokeWidth)
	}
	return o, nil
}

// ApplyOverrides replaces the color and/or width of every stroke of every
// page. Overrides always win over estimated values.
func ApplyOverrides(note *types.Note, o types.Overrides) {
	if o.Empty() {
		return
	}
	for pi := range note.Pages {
		strokes := note.Pages[pi].Strokes
		for si := range strokes {
			if o.StrokeColor != "" {
				strokes[si].Color = o.StrokeColor
			}
			if o.StrokeWidth > 0 {
				strokes[si].Width = o.StrokeWidth
			}
		}
	}
}
