// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package raster decodes a page's annotation image and answers per-pixel
// color, alpha and local stroke thickness queries against it.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// OutOfBoundsColor and OutOfBoundsAlpha are returned by ColorAt for
// coordinates outside the raster. Stroke and raster coordinates come from
// different files and disagree at the edges.
const (
	OutOfBoundsColor = "#000000"
	OutOfBoundsAlpha = uint8(255)
)

// BackgroundColors lists the near-white colors treated as paper rather
// than ink.
var BackgroundColors = map[string]struct{}{
	"#ffffff": {},
	"#fffff0": {},
}

// IsBackground reports whether a sample carries no ink: a background
// color or a fully transparent pixel.
func IsBackground(hex string, alpha uint8) bool {
	if alpha == 0 {
		return true
	}
	_, ok := BackgroundColors[strings.ToLower(hex)]
	return ok
}

// Sampler holds one decoded raster. It is read-only after construction.
type Sampler struct {
	pix    *image.NRGBA
	width  int
	height int
}

// Decode decodes PNG, BMP or WebP bytes into a Sampler.
func Decode(data []byte) (*Sampler, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding raster: %w", err)
	}
	s := NewSampler(img)
	if s.width == 0 || s.height == 0 {
		return nil, fmt.Errorf("decoding raster: empty %s image", format)
	}
	return s, nil
}

// NewSampler wraps an already-decoded image. Pixels are stored
// non-premultiplied so that translucent ink keeps its true color.
func NewSampler(img image.Image) *Sampler {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return &Sampler{pix: n, width: b.Dx(), height: b.Dy()}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			dst.SetNRGBA(x-b.Min.X, y-b.Min.Y, c)
		}
	}
	return &Sampler{pix: dst, width: b.Dx(), height: b.Dy()}
}

// Width returns the raster width in pixels.
func (s *Sampler) Width() int { return s.width }

// Height returns the raster height in pixels.
func (s *Sampler) Height() int { return s.height }

func (s *Sampler) inBounds(x, y int) bool {
	return x >= 0 && x < s.width && y >= 0 && y < s.height
}

// ColorAt returns the pixel's RGB as a lowercase "#rrggbb" string and its
// alpha. Out-of-bounds coordinates return OutOfBoundsColor and
// OutOfBoundsAlpha.
func (s *Sampler) ColorAt(x, y int) (string, uint8) {
	if !s.inBounds(x, y) {
		return OutOfBoundsColor, OutOfBoundsAlpha
	}
	c := s.pix.NRGBAAt(x, y)
	hex := colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
	return hex, c.A
}

func (s *Sampler) covered(x, y int) bool {
	return s.inBounds(x, y) && s.pix.NRGBAAt(x, y).A > 0
}

// run counts covered pixels starting at (x, y) and stepping by (dx, dy),
// including the origin.
func (s *Sampler) run(x, y, dx, dy int) int {
	n := 0
	for s.covered(x, y) {
		n++
		x += dx
		y += dy
	}
	return n
}

// LocalThickness estimates the pen width at (x, y) as the smaller of the
// vertical and horizontal covered extents through the point. Taking the
// minimum keeps a crossing stroke, which widens only one axis, from
// inflating the estimate. Returns 0 when the origin is out of bounds or
// transparent.
func (s *Sampler) LocalThickness(x, y int) int {
	if !s.covered(x, y) {
		return 0
	}
	vertical := s.run(x, y, 0, -1) + s.run(x, y, 0, 1) - 1
	horizontal := s.run(x, y, -1, 0) + s.run(x, y, 1, 0) - 1
	return min(vertical, horizontal)
}
