// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/petrify/pkg/types"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(types.LedgerConfig{Path: filepath.Join(dir, "state", "ledger.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, dir
}

func writeOutput(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("out"), 0o644))
	return p
}

func TestOpenCreatesDatabase(t *testing.T) {
	s, dir := openTestStore(t)
	assert.Equal(t, filepath.Join(dir, "state", "ledger.db"), s.Path())
	_, err := os.Stat(s.Path())
	assert.NoError(t, err)

	// Reopening an existing ledger keeps the schema.
	again, err := Open(types.LedgerConfig{Path: s.Path()})
	require.NoError(t, err)
	require.NoError(t, again.Close())
}

func TestRecordAndGet(t *testing.T) {
	s, dir := openTestStore(t)
	ctx := t.Context()
	mod := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
	entry := Entry{
		InputPath:    "/notes/a.note",
		InputModTime: mod,
		OutputPath:   writeOutput(t, dir, "a.excalidraw.md"),
		Status:       types.ConversionDone,
		Pages:        3,
		Strokes:      42,
		ConvertedAt:  mod.Add(time.Minute),
	}
	require.NoError(t, s.Record(ctx, entry))

	got, ok, err := s.Get(ctx, entry.InputPath)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entry, got)

	_, ok, err = s.Get(ctx, "/notes/missing.note")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordUpserts(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := t.Context()
	mod := time.Unix(1700000000, 0).UTC()

	require.NoError(t, s.Record(ctx, Entry{InputPath: "x.note", InputModTime: mod, Status: types.ConversionFailed, Error: "bad zip"}))
	require.NoError(t, s.Record(ctx, Entry{InputPath: "x.note", InputModTime: mod, Status: types.ConversionDone, Pages: 1}))

	entries, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, types.ConversionDone, entries[0].Status)
	assert.Empty(t, entries[0].Error)
	assert.False(t, entries[0].ConvertedAt.IsZero())
}

func TestUnchanged(t *testing.T) {
	s, dir := openTestStore(t)
	ctx := t.Context()
	mod := time.Unix(1700000000, 0)
	out := writeOutput(t, dir, "n.excalidraw.md")

	require.NoError(t, s.Record(ctx, Entry{InputPath: "done.note", InputModTime: mod, OutputPath: out, Status: types.ConversionDone}))
	require.NoError(t, s.Record(ctx, Entry{InputPath: "failed.note", InputModTime: mod, Status: types.ConversionFailed}))
	require.NoError(t, s.Record(ctx, Entry{InputPath: "gone.note", InputModTime: mod, OutputPath: filepath.Join(dir, "deleted.md"), Status: types.ConversionDone}))

	tests := []struct {
		name    string
		path    string
		modTime time.Time
		want    bool
	}{
		{"same mod time", "done.note", mod, true},
		{"same instant in another zone", "done.note", mod.In(time.FixedZone("KST", 9*3600)), true},
		{"modified since", "done.note", mod.Add(time.Second), false},
		{"last run failed", "failed.note", mod, false},
		{"output deleted", "gone.note", mod, false},
		{"never seen", "new.note", mod, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Unchanged(ctx, tt.path, tt.modTime)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListFiltersAndOrders(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := t.Context()
	mod := time.Unix(1700000000, 0)
	for _, e := range []Entry{
		{InputPath: "c.note", Status: types.ConversionDone},
		{InputPath: "a.note", Status: types.ConversionFailed},
		{InputPath: "b.note", Status: types.ConversionDone},
	} {
		e.InputModTime = mod
		require.NoError(t, s.Record(ctx, e))
	}

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a.note", all[0].InputPath)
	assert.Equal(t, "b.note", all[1].InputPath)
	assert.Equal(t, "c.note", all[2].InputPath)

	done, err := s.List(ctx, types.ConversionDone)
	require.NoError(t, err)
	assert.Len(t, done, 2)
}

func TestExport(t *testing.T) {
	s, dir := openTestStore(t)
	ctx := t.Context()
	require.NoError(t, s.Record(ctx, Entry{
		InputPath:    "a.note",
		InputModTime: time.Unix(1700000000, 0),
		Status:       types.ConversionFailed,
		Error:        "not a valid zip file",
	}))

	yamlPath := filepath.Join(dir, "export", "ledger.yaml")
	require.NoError(t, s.ExportYAML(ctx, yamlPath))
	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	var fromYAML []map[string]any
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	require.Len(t, fromYAML, 1)
	assert.Equal(t, "a.note", fromYAML[0]["input_path"])
	assert.Equal(t, "failed", fromYAML[0]["status"])
	assert.Equal(t, "not a valid zip file", fromYAML[0]["error"])

	jsonPath := filepath.Join(dir, "export", "ledger.json")
	require.NoError(t, s.ExportJSON(ctx, jsonPath))
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	var fromJSON []Entry
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	require.Len(t, fromJSON, 1)
	assert.Equal(t, types.ConversionFailed, fromJSON[0].Status)
}

func TestExportEmpty(t *testing.T) {
	s, dir := openTestStore(t)
	p := filepath.Join(dir, "empty.json")
	require.NoError(t, s.ExportJSON(t.Context(), p))
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
