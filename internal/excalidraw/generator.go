// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package excalidraw assembles reconstructed notes into Excalidraw scenes
// and writes them as plain JSON or as the Markdown container read by the
// Obsidian Excalidraw plugin.
package excalidraw

import (
	"encoding/base64"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/petrify/pkg/types"
)

const (
	documentType    = "excalidraw"
	documentSource  = "petrify-converter"
	sceneBackground = "#ffffff"

	// PageGap is the vertical space between stacked pages.
	PageGap = 100.0

	// DefaultStrokeWidthDivisor scales raster pixel widths to Excalidraw
	// stroke widths.
	DefaultStrokeWidthDivisor = 6.0

	minStrokeWidth = 1
	pressureValue  = 0.5
	maxSeed        = 2147483647
	pngMimeType    = "image/png"
)

// Background is a page raster placed in the scene, kept so callers can
// write it next to the document instead of inline.
type Background struct {
	PageIndex int
	FileID    string
	Data      []byte
}

// Generator converts Notes to Documents.
type Generator struct {
	includeBackground bool
	divisor           float64

	newID   func() string
	newSeed func() int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithBackground controls whether page rasters become image elements.
func WithBackground(include bool) Option {
	return func(g *Generator) { g.includeBackground = include }
}

// WithStrokeWidthDivisor sets the raster-to-scene width divisor. Values
// <= 0 keep the default.
func WithStrokeWidthDivisor(d float64) Option {
	return func(g *Generator) {
		if d > 0 {
			g.divisor = d
		}
	}
}

// NewGenerator returns a Generator that includes backgrounds and uses the
// default width divisor unless options say otherwise.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		includeBackground: true,
		divisor:           DefaultStrokeWidthDivisor,
		newID:             newElementID,
		newSeed:           newSeed,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate builds the scene for note. Pages are stacked top to bottom
// with PageGap between them. The returned backgrounds list every image
// element in page order.
func (g *Generator) Generate(note types.Note) (Document, []Background) {
	doc := Document{
		Type:     documentType,
		Version:  2,
		Source:   documentSource,
		Elements: []Element{},
		AppState: AppState{ViewBackgroundColor: sceneBackground},
		Files:    map[string]FileEntry{},
	}
	var backgrounds []Background

	var yOffset float64
	for i, page := range note.Pages {
		if g.includeBackground && page.Background != nil {
			img, file := g.image(page, yOffset)
			doc.Elements = append(doc.Elements, img)
			doc.Files[file.ID] = file
			backgrounds = append(backgrounds, Background{PageIndex: i, FileID: file.ID, Data: page.Background})
		}
		for _, s := range page.Strokes {
			doc.Elements = append(doc.Elements, g.freedraw(s, yOffset))
		}
		yOffset += page.Height + PageGap
	}
	return doc, backgrounds
}

// ScaleStrokeWidth maps a raster pixel width to a scene stroke width.
func (g *Generator) ScaleStrokeWidth(width float64) int {
	return max(minStrokeWidth, int(math.Floor(width/g.divisor)))
}

func (g *Generator) newBase(typ string, x, y, w, h float64) base {
	return base{
		Type:            typ,
		ID:              g.newID(),
		X:               x,
		Y:               y,
		Width:           w,
		Height:          h,
		BackgroundColor: "transparent",
		FillStyle:       "solid",
		StrokeStyle:     "solid",
		Seed:            g.newSeed(),
		Version:         1,
		VersionNonce:    g.newSeed(),
		GroupIDs:        []string{},
		Updated:         1,
	}
}

func (g *Generator) freedraw(s types.Stroke, yOffset float64) Freedraw {
	if len(s.Points) == 0 {
		el := Freedraw{
			base:      g.newBase("freedraw", 0, yOffset, 0, 0),
			Points:    [][2]float64{},
			Pressures: []float64{},
		}
		g.styleStroke(&el.base, s.StrokeStyle)
		return el
	}

	first := s.Points[0]
	points := make([][2]float64, len(s.Points))
	pressures := make([]float64, len(s.Points))
	minX, maxX, minY, maxY := 0.0, 0.0, 0.0, 0.0
	for i, p := range s.Points {
		dx, dy := p.X-first.X, p.Y-first.Y
		points[i] = [2]float64{dx, dy}
		pressures[i] = pressureValue
		minX, maxX = min(minX, dx), max(maxX, dx)
		minY, maxY = min(minY, dy), max(maxY, dy)
	}

	el := Freedraw{
		base:      g.newBase("freedraw", first.X, first.Y+yOffset, maxX-minX, maxY-minY),
		Points:    points,
		Pressures: pressures,
	}
	g.styleStroke(&el.base, s.StrokeStyle)
	return el
}

func (g *Generator) styleStroke(b *base, st types.StrokeStyle) {
	b.StrokeColor = st.Color
	b.StrokeWidth = g.ScaleStrokeWidth(st.Width)
	b.Opacity = st.Opacity
}

func (g *Generator) image(page types.Page, yOffset float64) (Image, FileEntry) {
	fileID := g.newID()
	el := Image{
		base:   g.newBase("image", 0, yOffset, page.Width, page.Height),
		Index:  "a0",
		FileID: fileID,
		Status: "saved",
		Scale:  [2]float64{1, 1},
	}
	el.StrokeColor = "transparent"
	el.StrokeWidth = 1
	el.Opacity = 100

	file := FileEntry{
		MimeType: pngMimeType,
		ID:       fileID,
		DataURL:  "data:" + pngMimeType + ";base64," + base64.StdEncoding.EncodeToString(page.Background),
		Created:  1,
	}
	return el, file
}

// newElementID returns 40 lowercase hex characters, the id length the
// Obsidian plugin expects.
func newElementID() string {
	a := strings.ReplaceAll(uuid.NewString(), "-", "")
	b := strings.ReplaceAll(uuid.NewString(), "-", "")
	return a + b[:8]
}

func newSeed() int64 {
	return rand.Int64N(maxSeed) + 1
}
