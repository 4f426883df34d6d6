// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert runs the note-to-Excalidraw conversion: read the note,
// apply stroke overrides, assemble the scene and write it as JSON or as
// an Obsidian Excalidraw Markdown file.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/petrify/internal/excalidraw"
	"github.com/pdiddy/petrify/internal/ledger"
	"github.com/pdiddy/petrify/internal/logging"
	"github.com/pdiddy/petrify/internal/reconstruct"
	"github.com/pdiddy/petrify/pkg/types"
)

// NoteReader parses a note archive or extracted note directory.
type NoteReader interface {
	Read(path string) (types.Note, error)
}

// Ledger remembers past conversions. *ledger.Store implements it.
type Ledger interface {
	Unchanged(ctx context.Context, inputPath string, modTime time.Time) (bool, error)
	Record(ctx context.Context, e ledger.Entry) error
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of inputs processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any input failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Result describes one written conversion.
type Result struct {
	Output  string
	Pages   int
	Strokes int
	// Sidecars lists background images written next to a Markdown output.
	Sidecars []string
}

// Converter converts notes with one fixed configuration.
type Converter struct {
	reader NoteReader
	cfg    types.ConversionConfig
	ledger Ledger
}

// New returns a Converter. The overrides in cfg are validated here so a
// bad color fails the run before any input is read. A nil ledger disables
// skipping and recording.
func New(reader NoteReader, cfg types.ConversionConfig, l Ledger) (*Converter, error) {
	o, err := reconstruct.NormalizeOverrides(cfg.Overrides)
	if err != nil {
		return nil, err
	}
	cfg.Overrides = o
	if cfg.Format == "" {
		cfg.Format = types.OutputMarkdown
	}
	return &Converter{reader: reader, cfg: cfg, ledger: l}, nil
}

// OutputPath derives where input is written: outDir (or the input's own
// directory when empty), the input's base name without extension, and the
// format's extension.
func OutputPath(input, outDir string, format types.OutputFormat) string {
	clean := filepath.Clean(input)
	base := strings.TrimSuffix(filepath.Base(clean), filepath.Ext(clean))
	if outDir == "" {
		outDir = filepath.Dir(clean)
	}
	return filepath.Join(outDir, base+format.Extension())
}

// ConvertFile converts input and writes output. Output ending in ".md" is
// written as Markdown; anything else as JSON.
func (c *Converter) ConvertFile(input, output string) (Result, error) {
	note, err := c.reader.Read(input)
	if err != nil {
		return Result{}, err
	}
	reconstruct.ApplyOverrides(&note, c.cfg.Overrides)

	gen := excalidraw.NewGenerator(
		excalidraw.WithBackground(c.cfg.IncludeBackground),
		excalidraw.WithStrokeWidthDivisor(c.cfg.StrokeWidthDivisor),
	)
	doc, backgrounds := gen.Generate(note)

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return Result{}, fmt.Errorf("creating output directory: %w", err)
	}

	res := Result{Output: output, Pages: len(note.Pages), Strokes: note.StrokeCount()}

	var content []byte
	if strings.HasSuffix(output, ".md") {
		embedded, sidecars, err := writeSidecars(output, backgrounds)
		if err != nil {
			return Result{}, err
		}
		res.Sidecars = sidecars
		if len(embedded) > 0 {
			doc.Files = map[string]excalidraw.FileEntry{}
		}
		md, err := excalidraw.Markdown(doc, embedded, c.cfg.Tags)
		if err != nil {
			return Result{}, err
		}
		content = []byte(md)
	} else {
		content, err = excalidraw.JSON(doc)
		if err != nil {
			return Result{}, err
		}
	}

	if err := os.WriteFile(output, content, 0o644); err != nil {
		return Result{}, fmt.Errorf("writing %s: %w", output, err)
	}
	logging.Logger().Debug("wrote drawing", "input", input, "output", output,
		"pages", res.Pages, "strokes", res.Strokes, "elements", len(doc.Elements))
	return res, nil
}

// writeSidecars writes each background as <stem>_bg_<page>.png beside
// output, where stem is output without its last extension.
func writeSidecars(output string, backgrounds []excalidraw.Background) ([]excalidraw.EmbeddedFile, []string, error) {
	if len(backgrounds) == 0 {
		return nil, nil, nil
	}
	dir := filepath.Dir(output)
	stem := strings.TrimSuffix(filepath.Base(output), filepath.Ext(output))

	embedded := make([]excalidraw.EmbeddedFile, 0, len(backgrounds))
	paths := make([]string, 0, len(backgrounds))
	for _, bg := range backgrounds {
		name := fmt.Sprintf("%s_bg_%d.png", stem, bg.PageIndex)
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, bg.Data, 0o644); err != nil {
			return nil, nil, fmt.Errorf("writing background %s: %w", name, err)
		}
		embedded = append(embedded, excalidraw.EmbeddedFile{FileID: bg.FileID, Name: name})
		paths = append(paths, p)
	}
	return embedded, paths, nil
}

// ConvertBatch converts each input into the configured output directory,
// printing per-input status to w and returning a summary. A failing input
// is counted and reported; the remaining inputs still run.
func (c *Converter) ConvertBatch(ctx context.Context, inputs []string, w io.Writer) BatchResult {
	var result BatchResult
	for _, input := range inputs {
		select {
		case <-ctx.Done():
			fmt.Fprintf(w, "\nBatch interrupted: %v\n", ctx.Err())
			return result
		default:
		}

		switch c.convertOne(ctx, input, w) {
		case types.ConversionDone:
			result.Converted++
		case types.ConversionSkipped:
			result.Skipped++
		case types.ConversionFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

func (c *Converter) convertOne(ctx context.Context, input string, w io.Writer) types.ConversionStatus {
	name := filepath.Base(input)
	output := OutputPath(input, c.cfg.OutputDir, c.cfg.Format)

	key, err := filepath.Abs(input)
	if err != nil {
		key = input
	}
	modTime, err := inputModTime(input)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
		return types.ConversionFailed
	}

	if c.ledger != nil && !c.cfg.Force {
		unchanged, err := c.ledger.Unchanged(ctx, key, modTime)
		if err != nil {
			logging.Logger().Warn("ledger lookup failed", "input", key, "error", err)
		}
		if unchanged {
			fmt.Fprintf(w, "skipped: %s (unchanged)\n", name)
			return types.ConversionSkipped
		}
	}

	entry := ledger.Entry{InputPath: key, InputModTime: modTime, OutputPath: output}
	res, err := c.ConvertFile(input, output)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
		entry.Status = types.ConversionFailed
		entry.Error = err.Error()
	} else {
		fmt.Fprintf(w, "converted: %s -> %s (%d pages, %d strokes)\n", name, output, res.Pages, res.Strokes)
		entry.Status = types.ConversionDone
		entry.Pages = res.Pages
		entry.Strokes = res.Strokes
	}

	if c.ledger != nil {
		if err := c.ledger.Record(ctx, entry); err != nil {
			logging.Logger().Warn("ledger write failed", "input", key, "error", err)
		}
	}
	return entry.Status
}

// inputModTime is the modification time the ledger compares. For an
// extracted note directory it is the newest of the directory and its
// top-level files, since editing a file in place leaves the directory's
// own mtime untouched.
func inputModTime(input string) (time.Time, error) {
	info, err := os.Stat(input)
	if err != nil {
		return time.Time{}, err
	}
	newest := info.ModTime()
	if !info.IsDir() {
		return newest, nil
	}
	entries, err := os.ReadDir(input)
	if err != nil {
		return time.Time{}, fmt.Errorf("reading %s: %w", input, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			return time.Time{}, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		if fi.ModTime().After(newest) {
			newest = fi.ModTime()
		}
	}
	return newest, nil
}
