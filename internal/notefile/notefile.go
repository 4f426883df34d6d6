// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notefile reads .note archives: a zip container of per-page
// stroke path JSON, page rasters, a page-resource manifest and note
// metadata. An already-extracted directory is accepted too.
package notefile

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/petrify/internal/logging"
	"github.com/pdiddy/petrify/internal/reconstruct"
	"github.com/pdiddy/petrify/pkg/types"
)

const (
	noteInfoSuffix = "_NoteFileInfo.json"
	manifestSuffix = "_PageResource.json"
	pathPrefix     = "path_"
	rasterPrefix   = "mainBmp_"
	scratchPattern = "petrify-note-*"
)

// Reader parses note archives into Notes.
type Reader struct {
	rec *reconstruct.Reconstructor

	// now supplies the time used for missing timestamps. Tests pin it.
	now func() time.Time

	// tempDir is the parent of scratch directories ("" means os.TempDir).
	tempDir string
}

// NewReader returns a Reader that reconstructs strokes with rec.
func NewReader(rec *reconstruct.Reconstructor) *Reader {
	if rec == nil {
		rec = reconstruct.New()
	}
	return &Reader{rec: rec, now: time.Now}
}

// Read parses the archive or directory at path. Zip archives are
// extracted into a scratch directory that is removed before Read returns,
// on success and on failure.
func (r *Reader) Read(path string) (types.Note, error) {
	info, err := os.Stat(path)
	if err != nil {
		return types.Note{}, fmt.Errorf("opening %s: %w", path, err)
	}
	if info.IsDir() {
		return r.readDir(path)
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return types.Note{}, fmt.Errorf("%w: not a valid zip file: %s", types.ErrInvalidNote, path)
	}
	defer zr.Close()

	scratch, err := os.MkdirTemp(r.tempDir, scratchPattern)
	if err != nil {
		return types.Note{}, fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	if err := extract(&zr.Reader, scratch); err != nil {
		return types.Note{}, err
	}
	return r.readDir(scratch)
}

// extract writes every entry of zr under dir. Entries resolving outside
// dir are rejected.
func extract(zr *zip.Reader, dir string) error {
	root := filepath.Clean(dir) + string(os.PathSeparator)
	for _, f := range zr.File {
		target := filepath.Join(dir, f.Name)
		if !strings.HasPrefix(target, root) {
			return fmt.Errorf("%w: entry %q escapes archive root", types.ErrInvalidNote, f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
	}
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: reading entry %s: %v", types.ErrInvalidNote, f.Name, err)
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("%w: extracting %s: %v", types.ErrInvalidNote, f.Name, err)
	}
	return dst.Close()
}

// listing holds the top-level file names of an extracted note, sorted.
type listing []string

func list(dir string) (listing, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var names listing
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (l listing) withSuffix(suffix string) (string, bool) {
	for _, n := range l {
		if strings.HasSuffix(n, suffix) {
			return n, true
		}
	}
	return "", false
}

func (l listing) contains(name string) bool {
	i := sort.SearchStrings(l, name)
	return i < len(l) && l[i] == name
}

func (l listing) matching(prefix, suffix string) []string {
	var out []string
	for _, n := range l {
		if strings.HasPrefix(n, prefix) && strings.HasSuffix(n, suffix) {
			out = append(out, n)
		}
	}
	return out
}

func (r *Reader) readDir(dir string) (types.Note, error) {
	names, err := list(dir)
	if err != nil {
		return types.Note{}, err
	}

	info, err := r.loadNoteInfo(dir, names)
	if err != nil {
		return types.Note{}, err
	}

	pages, err := r.loadPages(dir, names)
	if err != nil {
		return types.Note{}, err
	}

	return types.Note{
		Title:      info.title(),
		Pages:      pages,
		CreatedAt:  millisToTime(info.CreationTime, r.now),
		ModifiedAt: millisToTime(info.LastModifiedTime, r.now),
	}, nil
}

func (r *Reader) loadNoteInfo(dir string, names listing) (noteInfo, error) {
	name, ok := names.withSuffix(noteInfoSuffix)
	if !ok {
		return noteInfo{}, nil
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return noteInfo{}, fmt.Errorf("reading %s: %w", name, err)
	}
	return parseNoteInfo(data)
}

// loadManifest returns the page-resource mapping. A missing or unreadable
// manifest is not an error; background lookup then relies on the
// single-raster fallback.
func loadManifest(dir string, names listing) Manifest {
	name, ok := names.withSuffix(manifestSuffix)
	if !ok {
		return Manifest{}
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		logging.Logger().Warn("page resources unreadable", "file", name, "error", err)
		return Manifest{}
	}
	m, err := ParseManifest(data)
	if err != nil {
		logging.Logger().Warn("page resources unparsable, using raster fallback", "file", name, "error", err)
		return Manifest{}
	}
	return m
}

func loadRasters(dir string, names listing) map[string][]byte {
	rasters := make(map[string][]byte)
	for _, name := range names.matching(rasterPrefix, ".png") {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logging.Logger().Warn("raster unreadable", "file", name, "error", err)
			continue
		}
		rasters[name] = data
	}
	return rasters
}

// loadMappedRasters reads every file the manifest names. Files already
// loaded as mainBmp rasters are reused; names that are not plain top-level
// files of the note are ignored.
func loadMappedRasters(dir string, names listing, manifest Manifest, rasters map[string][]byte) map[string][]byte {
	mapped := make(map[string][]byte, len(manifest))
	for _, name := range manifest {
		if _, done := mapped[name]; done {
			continue
		}
		if data, ok := rasters[name]; ok {
			mapped[name] = data
			continue
		}
		if name != filepath.Base(name) || !names.contains(name) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logging.Logger().Warn("raster unreadable", "file", name, "error", err)
			continue
		}
		mapped[name] = data
	}
	return mapped
}

func (r *Reader) loadPages(dir string, names listing) ([]types.Page, error) {
	pathFiles := names.matching(pathPrefix, ".json")
	manifest := loadManifest(dir, names)
	rasters := loadRasters(dir, names)
	mapped := loadMappedRasters(dir, names, manifest, rasters)

	pages := make([]types.Page, 0, len(pathFiles))
	for _, name := range pathFiles {
		pageID := strings.TrimSuffix(strings.TrimPrefix(name, pathPrefix), ".json")

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		points, err := ParsePoints(data)
		if err != nil {
			return nil, fmt.Errorf("page %s: %w", pageID, err)
		}

		background := ResolveBackground(pageID, manifest, mapped, rasters)
		if background == nil {
			logging.Logger().Debug("no raster for page", "page", pageID)
		}
		pages = append(pages, r.rec.Page(pageID, points, background))
	}

	if len(pages) == 0 {
		pages = append(pages, types.NewPage(types.EmptyPageID, nil, nil))
	}
	return pages, nil
}
