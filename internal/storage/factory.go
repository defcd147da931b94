// internal/storage/factory.go
package storage

import (
	"fmt"
	"log/slog"

	"github.com/markerlane/markerlane/internal/config"
	"github.com/markerlane/markerlane/internal/storage/memory"
	"github.com/markerlane/markerlane/internal/storage/postgres"
	sqlitestorage "github.com/markerlane/markerlane/internal/storage/sqlite"
)

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, log *slog.Logger) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		return postgres.New(nil, log), nil
	case "sqlite":
		return sqlitestorage.New(sqlitestorage.Config{Path: cfg.SQLite.Path}, log), nil
	case "memory":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
