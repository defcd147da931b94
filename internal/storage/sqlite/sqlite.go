// Package sqlitestorage implements the storage.Backend interface using a
// SQLite file through the pure-Go glebarez driver.
// It wraps the GORM backend via composition. The only SQLite-specific
// concerns are opening the file and snapshotting it with VACUUM INTO.
package sqlitestorage

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/markerlane/markerlane/internal/database"
	gormstorage "github.com/markerlane/markerlane/internal/storage/gorm"
)

// Config holds configuration for the SQLite storage backend.
type Config struct {
	Path string // empty for an in-memory database
}

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	cfg Config
	log *slog.Logger
}

// New creates a new SQLite storage backend. The file is opened by Init.
func New(cfg Config, log *slog.Logger) *Backend {
	if log == nil {
		log = slog.Default()
	}
	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{Log: log}),
		cfg:     cfg,
		log:     log,
	}
}

// Init opens the database file and migrates the schema.
func (b *Backend) Init() error {
	db, err := database.GetSqliteDB(b.cfg.Path)
	if err != nil {
		return fmt.Errorf("failed to open SQLite DB: %w", err)
	}
	b.Attach(db)

	if b.cfg.Path != "" {
		b.log.Info("Using local SQLite DB", "path", b.cfg.Path)
	} else {
		b.log.Info("Using local SQLite DB in memory")
	}
	return b.Backend.Init()
}

// Export writes a point-in-time copy of the database next to the store file
// (or into the working directory for in-memory stores).
func (b *Backend) Export(name string) (string, error) {
	dir := "."
	if b.cfg.Path != "" {
		dir = filepath.Dir(b.cfg.Path)
	}
	name = strings.NewReplacer(" ", "_", ":", "_", "/", "_").Replace(name)
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.db", name, time.Now().UTC().Format("20060102_150405")))

	start := time.Now()
	if err := database.DumpToDisk(b.DB(), path); err != nil {
		return "", err
	}
	b.log.Debug("Dumped to disk", "path", path, "duration", time.Since(start))
	return path, nil
}
