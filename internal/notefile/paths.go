// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notefile

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pdiddy/petrify/pkg/types"
)

const defaultTitle = "Untitled"

// noteInfo is the *_NoteFileInfo.json document. Times are epoch
// milliseconds.
type noteInfo struct {
	FileName         string `json:"fileName"`
	CreationTime     int64  `json:"creationTime"`
	LastModifiedTime int64  `json:"lastModifiedTime"`
}

func parseNoteInfo(data []byte) (noteInfo, error) {
	var info noteInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return noteInfo{}, fmt.Errorf("%w: NoteFileInfo: %v", types.ErrParse, err)
	}
	return info, nil
}

func (n noteInfo) title() string {
	if n.FileName == "" {
		return defaultTitle
	}
	return n.FileName
}

// ParsePoints decodes a path file: a JSON array of [x, y, timestamp]
// triples.
func ParsePoints(data []byte) ([]types.Point, error) {
	var raw [][]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: stroke data: %v", types.ErrParse, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	points := make([]types.Point, 0, len(raw))
	for i, triple := range raw {
		if len(triple) < 3 {
			return nil, fmt.Errorf("%w: stroke data: sample %d has %d components, want 3", types.ErrParse, i, len(triple))
		}
		points = append(points, types.PointFromTriple(triple))
	}
	return points, nil
}

// millisToTime converts epoch milliseconds; zero means "now".
func millisToTime(ms int64, now func() time.Time) time.Time {
	if ms == 0 {
		return now()
	}
	return time.UnixMilli(ms)
}
