// Package gormstorage implements the storage.Backend interface on top of any
// GORM dialect. The sqlite and postgres backends embed it and only add their
// own connection handling.
package gormstorage

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/markerlane/markerlane/internal/database"
	"github.com/markerlane/markerlane/internal/model"
	"github.com/markerlane/markerlane/internal/model/convert"
	"github.com/markerlane/markerlane/pkg/core"
	"gorm.io/gorm"
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB  *gorm.DB
	Log *slog.Logger
}

// Backend stores markers in a SQL database through GORM.
type Backend struct {
	deps Dependencies
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	return &Backend{deps: deps}
}

// DB returns the underlying connection, or nil before one is attached.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Attach sets the connection for backends that open it lazily in Init.
func (b *Backend) Attach(db *gorm.DB) {
	b.deps.DB = db
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return fmt.Errorf("gorm backend has no database")
	}
	if err := database.Setup(b.deps.DB, b.deps.Log); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (b *Backend) Close() error {
	if b.deps.DB == nil {
		return nil
	}
	sqlDB, err := b.deps.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}

// LoadMarkers returns a scene's markers ordered by start then id.
func (b *Backend) LoadMarkers(sceneID string) ([]core.Marker, error) {
	var rows []model.Marker
	err := b.deps.DB.
		Where("scene_id = ?", sceneID).
		Order("start_seconds ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load markers for scene %s: %w", sceneID, err)
	}
	return convert.MarkersToCore(rows), nil
}

// SaveMarker upserts a marker and records a review event in one transaction.
func (b *Backend) SaveMarker(m *core.Marker) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	row := convert.CoreToMarker(*m)

	err := b.deps.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		return tx.Create(&model.ReviewEvent{
			Time:     time.Now().UTC(),
			MarkerID: m.ID,
			SceneID:  m.SceneID,
			Action:   "save",
		}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save marker %s: %w", m.ID, err)
	}

	b.deps.Log.Debug("Saved marker", "marker", m.ID, "scene", m.SceneID)
	return nil
}

// DeleteMarker removes a marker, returning core.ErrNotFound if absent.
func (b *Backend) DeleteMarker(id string) error {
	err := b.deps.DB.Transaction(func(tx *gorm.DB) error {
		var row model.Marker
		if err := tx.First(&row, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return core.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(&row).Error; err != nil {
			return err
		}
		return tx.Create(&model.ReviewEvent{
			Time:     time.Now().UTC(),
			MarkerID: id,
			SceneID:  row.SceneID,
			Action:   "delete",
		}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete marker %s: %w", id, err)
	}

	b.deps.Log.Debug("Deleted marker", "marker", id)
	return nil
}

// History returns the review events recorded for a marker, oldest first.
func (b *Backend) History(markerID string) ([]model.ReviewEvent, error) {
	var events []model.ReviewEvent
	err := b.deps.DB.
		Where("marker_id = ?", markerID).
		Order("id ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load history for %s: %w", markerID, err)
	}
	return events, nil
}

// Scenes returns the distinct scene ids with at least one marker, sorted.
func (b *Backend) Scenes() ([]string, error) {
	var scenes []string
	err := b.deps.DB.Model(&model.Marker{}).
		Distinct("scene_id").
		Order("scene_id ASC").
		Pluck("scene_id", &scenes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list scenes: %w", err)
	}
	return scenes, nil
}
