// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for notes, strokes,
// conversion configuration and conversion status.
package types

import "time"

const (
	// DefaultPageWidth is the canvas width used when the archive does not
	// declare one.
	DefaultPageWidth = 1440.0
	// DefaultPageHeight is the canvas height used when the archive does not
	// declare one.
	DefaultPageHeight = 1920.0

	// DefaultColor is the stroke color used when no ink can be sampled.
	DefaultColor = "#000000"
	// DefaultWidth is the stroke width used when no thickness can be sampled.
	DefaultWidth = 1.0
	// DefaultOpacity is full opacity on the 0-100 scale.
	DefaultOpacity = 100

	// EmptyPageID identifies the placeholder page emitted for archives
	// without any path files.
	EmptyPageID = "empty"
)

// Point is one pen sample: position in raster pixels and a device tick
// timestamp.
type Point struct {
	X         float64 `json:"x" yaml:"x"`
	Y         float64 `json:"y" yaml:"y"`
	Timestamp int64   `json:"timestamp" yaml:"timestamp"`
}

// PointFromTriple builds a Point from an [x, y, timestamp] path entry.
// Missing components are zero.
func PointFromTriple(v []float64) Point {
	var p Point
	if len(v) > 0 {
		p.X = v[0]
	}
	if len(v) > 1 {
		p.Y = v[1]
	}
	if len(v) > 2 {
		p.Timestamp = int64(v[2])
	}
	return p
}

// StrokeStyle holds the visual attributes of a stroke.
type StrokeStyle struct {
	// Color is a "#rrggbb" lowercase hex string.
	Color string `json:"color" yaml:"color"`

	// Width is the pen width in raster pixels, before any output scaling.
	Width float64 `json:"width" yaml:"width"`

	// Opacity is on the 0-100 scale.
	Opacity int `json:"opacity" yaml:"opacity"`
}

// DefaultStyle returns the style applied when no raster is available.
func DefaultStyle() StrokeStyle {
	return StrokeStyle{Color: DefaultColor, Width: DefaultWidth, Opacity: DefaultOpacity}
}

// Stroke is one continuous pen gesture. Points are in non-decreasing
// timestamp order and belong to this stroke only.
type Stroke struct {
	Points []Point `json:"points" yaml:"points"`
	StrokeStyle `yaml:",inline"`
}

// Page is one page of a note. Strokes are in creation order, which is
// also the z-order.
type Page struct {
	ID      string   `json:"id" yaml:"id"`
	Strokes []Stroke `json:"strokes" yaml:"strokes"`
	Width   float64  `json:"width" yaml:"width"`
	Height  float64  `json:"height" yaml:"height"`

	// Background holds the raw raster bytes, or nil when the page has none.
	Background []byte `json:"-" yaml:"-"`
}

// NewPage returns a page with the default canvas size.
func NewPage(id string, strokes []Stroke, background []byte) Page {
	return Page{
		ID:         id,
		Strokes:    strokes,
		Width:      DefaultPageWidth,
		Height:     DefaultPageHeight,
		Background: background,
	}
}

// Note is a parsed handwritten-note document.
type Note struct {
	Title      string    `json:"title" yaml:"title"`
	Pages      []Page    `json:"pages" yaml:"pages"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	ModifiedAt time.Time `json:"modified_at" yaml:"modified_at"`
}

// StrokeCount returns the number of strokes across all pages.
func (n Note) StrokeCount() int {
	total := 0
	for _, p := range n.Pages {
		total += len(p.Strokes)
	}
	return total
}
