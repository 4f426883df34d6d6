// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package excalidraw

import (
	"encoding/json"
	"fmt"
)

// Document is a complete Excalidraw scene.
type Document struct {
	Type     string               `json:"type"`
	Version  int                  `json:"version"`
	Source   string               `json:"source"`
	Elements []Element            `json:"elements"`
	AppState AppState             `json:"appState"`
	Files    map[string]FileEntry `json:"files"`
}

// AppState holds the scene-level settings written with every document.
type AppState struct {
	GridSize            *int   `json:"gridSize"`
	ViewBackgroundColor string `json:"viewBackgroundColor"`
}

// FileEntry is one binary file referenced by an image element.
type FileEntry struct {
	MimeType string `json:"mimeType"`
	ID       string `json:"id"`
	DataURL  string `json:"dataURL"`
	Created  int64  `json:"created"`
}

// Element is a scene element. Freedraw and Image implement it.
type Element interface {
	ElementType() string
}

// base carries the properties shared by every element type.
type base struct {
	Type            string   `json:"type"`
	ID              string   `json:"id"`
	X               float64  `json:"x"`
	Y               float64  `json:"y"`
	Width           float64  `json:"width"`
	Height          float64  `json:"height"`
	StrokeColor     string   `json:"strokeColor"`
	BackgroundColor string   `json:"backgroundColor"`
	FillStyle       string   `json:"fillStyle"`
	StrokeWidth     int      `json:"strokeWidth"`
	StrokeStyle     string   `json:"strokeStyle"`
	Roughness       int      `json:"roughness"`
	Opacity         int      `json:"opacity"`
	Angle           float64  `json:"angle"`
	Seed            int64    `json:"seed"`
	Version         int      `json:"version"`
	VersionNonce    int64    `json:"versionNonce"`
	IsDeleted       bool     `json:"isDeleted"`
	GroupIDs        []string `json:"groupIds"`
	FrameID         *string  `json:"frameId"`
	BoundElements   []string `json:"boundElements"`
	Updated         int64    `json:"updated"`
	Link            *string  `json:"link"`
	Locked          bool     `json:"locked"`
}

// ElementType returns the Excalidraw element type name.
func (b base) ElementType() string { return b.Type }

// Freedraw is a pen stroke. Points are relative to (X, Y).
type Freedraw struct {
	base
	Points           [][2]float64 `json:"points"`
	Pressures        []float64    `json:"pressures"`
	SimulatePressure bool         `json:"simulatePressure"`
}

// Image is a bitmap element backed by a FileEntry.
type Image struct {
	base
	Index     string     `json:"index"`
	FileID    string     `json:"fileId"`
	Status    string     `json:"status"`
	Scale     [2]float64 `json:"scale"`
	Roundness *struct{}  `json:"roundness"`
	Crop      *struct{}  `json:"crop"`
}

// UnmarshalJSON decodes elements into their concrete types.
func (d *Document) UnmarshalJSON(data []byte) error {
	type plain Document
	var raw struct {
		plain
		Elements []json.RawMessage `json:"elements"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = Document(raw.plain)
	d.Elements = make([]Element, 0, len(raw.Elements))
	for i, msg := range raw.Elements {
		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &head); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		var el Element
		switch head.Type {
		case "freedraw":
			var f Freedraw
			if err := json.Unmarshal(msg, &f); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
			el = f
		case "image":
			var img Image
			if err := json.Unmarshal(msg, &img); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
			el = img
		default:
			return fmt.Errorf("element %d: unsupported type %q", i, head.Type)
		}
		d.Elements = append(d.Elements, el)
	}
	return nil
}
