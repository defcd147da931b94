package memory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/markerlane/markerlane/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_SurvivesRestart(t *testing.T) {
	cfg := config.MemoryConfig{OutputDir: t.TempDir(), CompressOutput: true}

	first := New(cfg)
	require.NoError(t, first.Init())
	for _, m := range sampleMarkers() {
		require.NoError(t, first.SaveMarker(&m))
	}
	require.NoError(t, first.Close())
	written := first.GetExportedFilePath()
	require.NotEmpty(t, written)

	second := New(cfg)
	require.NoError(t, second.Init())
	assert.Equal(t, written, second.GetExportedFilePath())

	got, err := second.LoadMarkers("42")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "m1", got[0].ID)
	assert.Equal(t, "1. Foreplay", got[0].PrimaryTag.Parents[0].Name)

	scenes, err := second.Scenes()
	require.NoError(t, err)
	assert.Equal(t, []string{"42"}, scenes)
}

func TestSnapshot_CloseWithoutChangesWritesNothing(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir})
	require.NoError(t, b.Init())
	require.NoError(t, b.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSnapshot_NoOutputDir(t *testing.T) {
	b := New(config.MemoryConfig{})
	require.NoError(t, b.Init())
	m := sampleMarkers()[0]
	require.NoError(t, b.SaveMarker(&m))
	require.NoError(t, b.Close())
	assert.Empty(t, b.GetExportedFilePath())
}

func TestLatestSnapshot(t *testing.T) {
	dir := t.TempDir()

	path, err := latestSnapshot(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, path)

	for _, name := range []string{
		"markerlane_20261017_235959.json.gz",
		"markerlane_20261018_090000.json",
		"markerlane_20261018_080000.json.gz",
		"scene_42_20261019_000000.json", // not a snapshot
		"markerlane_notes.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	path, err = latestSnapshot(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "markerlane_20261018_090000.json"), path)
}

func TestInit_CorruptSnapshot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "markerlane_20261018_090000.json"), []byte("{not json"), 0644))

	b := New(config.MemoryConfig{OutputDir: dir})
	assert.ErrorContains(t, b.Init(), "failed to load snapshot")
}
