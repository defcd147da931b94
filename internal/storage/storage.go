// internal/storage/storage.go
package storage

import (
	"github.com/markerlane/markerlane/internal/model"
	"github.com/markerlane/markerlane/pkg/core"
)

// ErrNotFound is returned when a marker id is unknown to the backend.
var ErrNotFound = core.ErrNotFound

// Backend is the interface all marker stores must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// LoadMarkers returns every marker of a scene, ordered by start then id.
	LoadMarkers(sceneID string) ([]core.Marker, error)

	// SaveMarker inserts or replaces a marker. An empty ID is assigned a
	// fresh uuid, written back to m.
	SaveMarker(m *core.Marker) error

	// DeleteMarker removes a marker, returning ErrNotFound if absent.
	DeleteMarker(id string) error
}

// Exporter is an optional interface for backends that write the store to a
// file, returning the path written.
type Exporter interface {
	Export(name string) (string, error)
}

// Historian is an optional interface for backends that keep a review event
// log per marker.
type Historian interface {
	History(markerID string) ([]model.ReviewEvent, error)
}

// SceneLister is an optional interface for backends that can list the scenes
// they hold markers for.
type SceneLister interface {
	Scenes() ([]string, error)
}
