// Package postgres implements the storage.Backend interface against a
// PostgreSQL server configured through the db.* settings.
package postgres

import (
	"fmt"
	"log/slog"

	"github.com/markerlane/markerlane/internal/database"
	gormstorage "github.com/markerlane/markerlane/internal/storage/gorm"
	"gorm.io/gorm"
)

// Backend wraps the GORM backend with Postgres connection handling.
type Backend struct {
	*gormstorage.Backend
	log *slog.Logger
}

// New creates a new Postgres storage backend. If db is nil, Init connects
// using the db.* configuration.
func New(db *gorm.DB, log *slog.Logger) *Backend {
	if log == nil {
		log = slog.Default()
	}
	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{DB: db, Log: log}),
		log:     log,
	}
}

// Init connects if needed, validates the connection and migrates the schema.
func (b *Backend) Init() error {
	if b.DB() == nil {
		db, err := database.GetPostgresDB()
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		b.Attach(db)
	}

	sqlDB, err := b.DB().DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err = sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to validate connection: %w", err)
	}
	if b.DB().Dialector.Name() == "postgres" {
		sqlDB.SetMaxOpenConns(10)
	}

	b.log.Info("Connected to database", "dialect", b.DB().Dialector.Name())
	return b.Backend.Init()
}
