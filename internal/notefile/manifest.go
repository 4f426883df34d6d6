// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notefile

import (
	"encoding/json"
	"fmt"
)

// Resource types found in the page-resource manifest.
const (
	ResourceMainBmp = 1
	ResourcePath    = 7
)

// resource is one entry of a *_PageResource.json manifest.
type resource struct {
	ResourceType int    `json:"resourceType"`
	ID           string `json:"id"`
	FileName     string `json:"fileName"`
	Nickname     string `json:"nickname"`
}

// Manifest maps a page (path resource nickname) to the file name of its
// raster.
type Manifest map[string]string

// ParseManifest decodes a page-resource manifest. Path resources are
// linked to the raster resource whose id equals the path's nickname.
func ParseManifest(data []byte) (Manifest, error) {
	var resources []resource
	if err := json.Unmarshal(data, &resources); err != nil {
		return nil, fmt.Errorf("parsing page resources: %w", err)
	}

	rasterByID := make(map[string]string)
	var pathNicknames []string
	for _, r := range resources {
		switch r.ResourceType {
		case ResourceMainBmp:
			rasterByID[r.ID] = r.FileName
		case ResourcePath:
			pathNicknames = append(pathNicknames, r.Nickname)
		}
	}

	m := make(Manifest)
	for _, nick := range pathNicknames {
		if name, ok := rasterByID[nick]; ok {
			m[nick] = name
		}
	}
	return m, nil
}

// ResolveBackground picks the raster for a page. The manifest mapping is
// looked up in mapped first, which holds every file the manifest names
// whatever its name; failing that, an archive holding exactly one mainBmp
// raster uses it for every page. Returns nil when no raster applies.
func ResolveBackground(pageID string, manifest Manifest, mapped, rasters map[string][]byte) []byte {
	if name, ok := manifest[pageID]; ok {
		if data, ok := mapped[name]; ok {
			return data
		}
	}
	if len(rasters) == 1 {
		for _, data := range rasters {
			return data
		}
	}
	return nil
}
