// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notefile

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/petrify/pkg/types"
)

var pinned = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func testReader(t *testing.T) (*Reader, string) {
	t.Helper()
	r := NewReader(nil)
	r.now = func() time.Time { return pinned }
	r.tempDir = t.TempDir()
	return r, r.tempDir
}

// writeZip writes files into a zip archive under t.TempDir and returns its
// path.
func writeZip(t *testing.T, files map[string][]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.note")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, data := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func solidPNG(t *testing.T, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

const twoStrokes = `[[1,1,0],[2,2,1],[3,3,2],[8,8,20],[9,9,21]]`

func assertScratchRemoved(t *testing.T, tmp string) {
	t.Helper()
	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries, "scratch directory left behind")
}

func TestRead_Metadata(t *testing.T) {
	r, tmp := testReader(t)
	path := writeZip(t, map[string][]byte{
		"abc_NoteFileInfo.json": []byte(`{"fileName":"My Note","creationTime":1700000000000,"lastModifiedTime":1700001000000}`),
		"path_p1.json":          []byte(twoStrokes),
	})

	note, err := r.Read(path)
	require.NoError(t, err)

	assert.Equal(t, "My Note", note.Title)
	assert.True(t, note.CreatedAt.Equal(time.UnixMilli(1700000000000)))
	assert.True(t, note.ModifiedAt.Equal(time.UnixMilli(1700001000000)))
	require.Len(t, note.Pages, 1)
	assert.Equal(t, "p1", note.Pages[0].ID)
	assert.Len(t, note.Pages[0].Strokes, 2)
	assertScratchRemoved(t, tmp)
}

func TestRead_DefaultsWithoutNoteInfo(t *testing.T) {
	r, _ := testReader(t)
	path := writeZip(t, map[string][]byte{"path_p1.json": []byte(`[]`)})

	note, err := r.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "Untitled", note.Title)
	assert.Equal(t, pinned, note.CreatedAt)
	assert.Equal(t, pinned, note.ModifiedAt)
	require.Len(t, note.Pages, 1)
	assert.Empty(t, note.Pages[0].Strokes)
}

func TestRead_PlaceholderPage(t *testing.T) {
	r, _ := testReader(t)
	path := writeZip(t, map[string][]byte{"abc_NoteFileInfo.json": []byte(`{"fileName":"Blank"}`)})

	note, err := r.Read(path)
	require.NoError(t, err)
	require.Len(t, note.Pages, 1)
	assert.Equal(t, types.EmptyPageID, note.Pages[0].ID)
	assert.Empty(t, note.Pages[0].Strokes)
	assert.Equal(t, types.DefaultPageWidth, note.Pages[0].Width)
}

func TestRead_Errors(t *testing.T) {
	notZip := filepath.Join(t.TempDir(), "bad.note")
	require.NoError(t, os.WriteFile(notZip, []byte("definitely not a zip"), 0o644))

	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr error
	}{
		{
			name:    "not a zip",
			path:    func(*testing.T) string { return notZip },
			wantErr: types.ErrInvalidNote,
		},
		{
			name: "unparsable note info",
			path: func(t *testing.T) string {
				return writeZip(t, map[string][]byte{
					"x_NoteFileInfo.json": []byte(`{broken`),
					"path_p1.json":        []byte(twoStrokes),
				})
			},
			wantErr: types.ErrParse,
		},
		{
			name: "unparsable path file",
			path: func(t *testing.T) string {
				return writeZip(t, map[string][]byte{"path_p1.json": []byte(`[[1,2,`)})
			},
			wantErr: types.ErrParse,
		},
		{
			name: "entry escaping the archive",
			path: func(t *testing.T) string {
				return writeZip(t, map[string][]byte{"../evil.json": []byte(`[]`)})
			},
			wantErr: types.ErrInvalidNote,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, tmp := testReader(t)
			_, err := r.Read(tt.path(t))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assertScratchRemoved(t, tmp)
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	r, _ := testReader(t)
	_, err := r.Read(filepath.Join(t.TempDir(), "nope.note"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, types.ErrInvalidNote)
}

func TestRead_ManifestMapsRasters(t *testing.T) {
	red := solidPNG(t, color.NRGBA{R: 255, A: 255})
	blue := solidPNG(t, color.NRGBA{B: 255, A: 255})
	r, _ := testReader(t)
	path := writeZip(t, map[string][]byte{
		"n_PageResource.json": []byte(`[
			{"resourceType":1,"id":"pa","fileName":"mainBmp_1.png"},
			{"resourceType":1,"id":"pb","fileName":"mainBmp_2.png"},
			{"resourceType":7,"id":"x1","nickname":"pa"},
			{"resourceType":7,"id":"x2","nickname":"pb"}
		]`),
		"mainBmp_1.png": red,
		"mainBmp_2.png": blue,
		"path_pa.json":  []byte(`[[2,2,0],[3,3,1]]`),
		"path_pb.json":  []byte(`[[2,2,0],[3,3,1]]`),
	})

	note, err := r.Read(path)
	require.NoError(t, err)
	require.Len(t, note.Pages, 2)

	assert.Equal(t, "pa", note.Pages[0].ID)
	assert.Equal(t, red, note.Pages[0].Background)
	assert.Equal(t, "#ff0000", note.Pages[0].Strokes[0].Color)

	assert.Equal(t, "pb", note.Pages[1].ID)
	assert.Equal(t, blue, note.Pages[1].Background)
	assert.Equal(t, "#0000ff", note.Pages[1].Strokes[0].Color)
}

func TestRead_ManifestNamesRasterOutsideMainBmp(t *testing.T) {
	red := solidPNG(t, color.NRGBA{R: 255, A: 255})
	blue := solidPNG(t, color.NRGBA{B: 255, A: 255})
	r, _ := testReader(t)
	path := writeZip(t, map[string][]byte{
		"n_PageResource.json": []byte(`[
			{"resourceType":1,"id":"pa","fileName":"page_a.png"},
			{"resourceType":1,"id":"pb","fileName":"../escape.png"},
			{"resourceType":7,"id":"x1","nickname":"pa"},
			{"resourceType":7,"id":"x2","nickname":"pb"}
		]`),
		"page_a.png":    red,
		"mainBmp_1.png": blue,
		"path_pa.json":  []byte(`[[2,2,0],[3,3,1]]`),
		"path_pb.json":  []byte(`[[2,2,0],[3,3,1]]`),
	})

	note, err := r.Read(path)
	require.NoError(t, err)
	require.Len(t, note.Pages, 2)

	assert.Equal(t, red, note.Pages[0].Background)
	assert.Equal(t, "#ff0000", note.Pages[0].Strokes[0].Color)

	// pb's mapping is not a note file, so the lone mainBmp raster applies.
	assert.Equal(t, blue, note.Pages[1].Background)
}

func TestRead_BrokenManifestFallsBackToSingleRaster(t *testing.T) {
	red := solidPNG(t, color.NRGBA{R: 255, A: 255})
	r, _ := testReader(t)
	path := writeZip(t, map[string][]byte{
		"n_PageResource.json": []byte(`not json`),
		"mainBmp_only.png":    red,
		"path_p1.json":        []byte(`[[2,2,0],[3,3,1]]`),
	})

	note, err := r.Read(path)
	require.NoError(t, err)
	assert.Equal(t, red, note.Pages[0].Background)
	assert.Equal(t, "#ff0000", note.Pages[0].Strokes[0].Color)
}

func TestRead_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "path_b.json"), []byte(twoStrokes), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "path_a.json"), []byte(`[[0,0,0]]`), 0o644))

	r, _ := testReader(t)
	note, err := r.Read(dir)
	require.NoError(t, err)
	require.Len(t, note.Pages, 2)
	assert.Equal(t, "a", note.Pages[0].ID)
	assert.Equal(t, "b", note.Pages[1].ID)
	assert.Nil(t, note.Pages[1].Background)
	assert.Equal(t, types.DefaultStyle(), note.Pages[1].Strokes[0].StrokeStyle)
}

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(`[
		{"resourceType":1,"id":"p1","fileName":"mainBmp_p1.png"},
		{"resourceType":7,"id":"r1","nickname":"p1"},
		{"resourceType":7,"id":"r2","nickname":"orphan"},
		{"resourceType":3,"id":"p2","fileName":"thumb.png"}
	]`))
	require.NoError(t, err)
	assert.Equal(t, Manifest{"p1": "mainBmp_p1.png"}, m)

	_, err = ParseManifest([]byte(`{`))
	assert.Error(t, err)
}

func TestResolveBackground(t *testing.T) {
	a, b := []byte("a"), []byte("b")
	tests := []struct {
		name     string
		pageID   string
		manifest Manifest
		mapped   map[string][]byte
		rasters  map[string][]byte
		want     []byte
	}{
		{"manifest hit", "p1", Manifest{"p1": "x.png"}, map[string][]byte{"x.png": a}, map[string][]byte{"x.png": a, "y.png": b}, a},
		{"manifest hit outside mainBmp set", "p1", Manifest{"p1": "page.png"}, map[string][]byte{"page.png": a}, map[string][]byte{"y.png": b}, a},
		{"manifest points at missing file, single raster", "p1", Manifest{"p1": "gone.png"}, nil, map[string][]byte{"y.png": b}, b},
		{"no mapping, single raster", "p9", Manifest{}, nil, map[string][]byte{"y.png": b}, b},
		{"no mapping, several rasters", "p9", nil, nil, map[string][]byte{"x.png": a, "y.png": b}, nil},
		{"no rasters", "p1", Manifest{"p1": "x.png"}, nil, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveBackground(tt.pageID, tt.manifest, tt.mapped, tt.rasters))
		})
	}
}

func TestParsePoints(t *testing.T) {
	points, err := ParsePoints([]byte(`[[1.5, 2.25, 10], [3, 4, 11]]`))
	require.NoError(t, err)
	assert.Equal(t, []types.Point{{X: 1.5, Y: 2.25, Timestamp: 10}, {X: 3, Y: 4, Timestamp: 11}}, points)

	points, err = ParsePoints([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, points)

	_, err = ParsePoints([]byte(`[[1, 2]]`))
	assert.ErrorIs(t, err, types.ErrParse)

	_, err = ParsePoints([]byte(`{"x":1}`))
	assert.ErrorIs(t, err, types.ErrParse)
}
