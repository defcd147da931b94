// internal/storage/memory/memory.go
package memory

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/markerlane/markerlane/internal/config"
	"github.com/markerlane/markerlane/pkg/core"
)

// Backend keeps markers in memory and exports them to JSON
type Backend struct {
	cfg config.MemoryConfig

	markers map[string]core.Marker // keyed by marker ID
	scenes  map[string][]string    // scene ID -> marker IDs

	lastExportPath string
	dirty          bool // changed since Init
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:     cfg,
		markers: make(map[string]core.Marker),
		scenes:  make(map[string][]string),
	}
}

// Init loads the newest snapshot from OutputDir, so markers written by an
// earlier run are visible. Without an OutputDir the store starts empty.
func (b *Backend) Init() error {
	if b.cfg.OutputDir == "" {
		return nil
	}
	path, err := latestSnapshot(b.cfg.OutputDir)
	if err != nil || path == "" {
		return err
	}

	f, err := ReadFixture(path)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, m := range f.Markers {
		b.markers[m.ID] = cloneMarker(m)
		b.scenes[m.SceneID] = append(b.scenes[m.SceneID], m.ID)
	}
	b.lastExportPath = path
	b.dirty = false
	return nil
}

// Close writes a new snapshot to OutputDir when anything changed since Init.
func (b *Backend) Close() error {
	b.mu.RLock()
	dirty := b.dirty
	b.mu.RUnlock()

	if !dirty || b.cfg.OutputDir == "" {
		return nil
	}
	_, err := b.Export(SnapshotName)
	return err
}

// LoadMarkers returns copies of a scene's markers ordered by start then id.
func (b *Backend) LoadMarkers(sceneID string) ([]core.Marker, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := b.scenes[sceneID]
	out := make([]core.Marker, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneMarker(b.markers[id]))
	}
	sortMarkers(out)
	return out, nil
}

// sortMarkers orders by scene, then start, then id.
func sortMarkers(ms []core.Marker) {
	slices.SortFunc(ms, func(x, y core.Marker) int {
		if c := strings.Compare(x.SceneID, y.SceneID); c != 0 {
			return c
		}
		if c := cmp.Compare(x.StartSeconds, y.StartSeconds); c != 0 {
			return c
		}
		return strings.Compare(x.ID, y.ID)
	})
}

// SaveMarker inserts or replaces a marker, assigning a uuid when ID is empty.
func (b *Backend) SaveMarker(m *core.Marker) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if prev, ok := b.markers[m.ID]; ok && prev.SceneID != m.SceneID {
		b.unlinkLocked(prev.SceneID, m.ID)
		b.scenes[m.SceneID] = append(b.scenes[m.SceneID], m.ID)
	} else if !ok {
		b.scenes[m.SceneID] = append(b.scenes[m.SceneID], m.ID)
	}
	b.markers[m.ID] = cloneMarker(*m)
	b.dirty = true
	return nil
}

// DeleteMarker removes a marker, returning core.ErrNotFound if absent.
func (b *Backend) DeleteMarker(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	m, ok := b.markers[id]
	if !ok {
		return core.ErrNotFound
	}
	delete(b.markers, id)
	b.unlinkLocked(m.SceneID, id)
	b.dirty = true
	return nil
}

// Scenes returns the ids of every scene holding at least one marker, sorted.
func (b *Backend) Scenes() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]string, 0, len(b.scenes))
	for id, markers := range b.scenes {
		if len(markers) > 0 {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out, nil
}

// GetExportedFilePath returns the path of the last export, if any.
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

func (b *Backend) unlinkLocked(sceneID, id string) {
	ids := b.scenes[sceneID]
	if i := slices.Index(ids, id); i >= 0 {
		b.scenes[sceneID] = slices.Delete(ids, i, i+1)
	}
	if len(b.scenes[sceneID]) == 0 {
		delete(b.scenes, sceneID)
	}
}

// cloneMarker copies the pointer and slice fields so callers cannot mutate
// stored state.
func cloneMarker(m core.Marker) core.Marker {
	if m.EndSeconds != nil {
		m.EndSeconds = core.Seconds(*m.EndSeconds)
	}
	m.PrimaryTag = cloneTag(m.PrimaryTag)
	if m.Tags != nil {
		tags := make([]core.Tag, len(m.Tags))
		for i, t := range m.Tags {
			tags[i] = cloneTag(t)
		}
		m.Tags = tags
	}
	return m
}

func cloneTag(t core.Tag) core.Tag {
	if t.Parents != nil {
		parents := make([]core.Tag, len(t.Parents))
		for i, p := range t.Parents {
			parents[i] = cloneTag(p)
		}
		t.Parents = parents
	}
	return t
}
