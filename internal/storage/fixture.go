package storage

import (
	"fmt"
	"time"

	"github.com/markerlane/markerlane/internal/storage/memory"
)

// Import saves every marker of a fixture file into b and returns how many
// were written. Markers without an id are assigned one.
func Import(b Backend, path string) (int, error) {
	f, err := memory.ReadFixture(path)
	if err != nil {
		return 0, err
	}
	for i := range f.Markers {
		if err := b.SaveMarker(&f.Markers[i]); err != nil {
			return i, fmt.Errorf("failed to import marker %d: %w", i, err)
		}
	}
	return len(f.Markers), nil
}

// ExportScene writes one scene's markers from b to a fixture file.
func ExportScene(b Backend, sceneID, path string) (int, error) {
	markers, err := b.LoadMarkers(sceneID)
	if err != nil {
		return 0, err
	}
	f := memory.Fixture{
		Version:    memory.FixtureVersion,
		ExportedAt: time.Now().UTC(),
		Markers:    markers,
	}
	if err := memory.WriteFixture(path, f); err != nil {
		return 0, fmt.Errorf("failed to write fixture: %w", err)
	}
	return len(markers), nil
}
