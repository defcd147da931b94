package config

import (
	"fmt"
	"time"

	"github.com/markerlane/markerlane/pkg/core"
	"github.com/spf13/viper"
)

// ConfigFileName is the file Load looks for in the config directory.
const ConfigFileName = "markerlane.cfg.json"

// ReviewConfig names the status tags and the vertical navigation reference.
type ReviewConfig struct {
	ConfirmedTagID    string
	RejectedTagID     string
	VerticalReference string // "playhead" or "selection"
}

// StatusTags returns the status tag pair used by the classifier.
func (c ReviewConfig) StatusTags() core.StatusTags {
	return core.StatusTags{ConfirmedTagID: c.ConfirmedTagID, RejectedTagID: c.RejectedTagID}
}

// TimelineConfig holds the three independent duration fallbacks.
type TimelineConfig struct {
	OverlapDuration time.Duration // length of point markers when packing tracks
	RenderMinimum   time.Duration // minimum drawn marker width
	PlayheadWindow  time.Duration // half-width of the playhead search window
}

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds SQLite storage backend settings
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// StorageConfig selects and configures the marker store
type StorageConfig struct {
	Type   string
	Memory MemoryConfig
	SQLite SQLiteConfig
}

// CatalogConfig points at the media catalog service.
type CatalogConfig struct {
	ServerURL string
	APIKey    string
	Timeout   time.Duration
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(ConfigFileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("review.confirmedTagId", "")
	viper.SetDefault("review.rejectedTagId", "")
	viper.SetDefault("review.verticalReference", "playhead")

	viper.SetDefault("sort.markerGroupParentId", "")
	viper.SetDefault("sort.tagOrder", map[string][]string{})

	viper.SetDefault("timeline.overlapDuration", "30s")
	viper.SetDefault("timeline.renderMinimum", "1s")
	viper.SetDefault("timeline.playheadWindow", "15s")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./exports")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.path", "./markerlane.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "markerlane")

	viper.SetDefault("catalog.serverUrl", "http://localhost:9999")
	viper.SetDefault("catalog.apiKey", "")
	viper.SetDefault("catalog.timeout", "30s")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "markerlane")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetReviewConfig returns the status tag and navigation settings.
func GetReviewConfig() ReviewConfig {
	return ReviewConfig{
		ConfirmedTagID:    viper.GetString("review.confirmedTagId"),
		RejectedTagID:     viper.GetString("review.rejectedTagId"),
		VerticalReference: viper.GetString("review.verticalReference"),
	}
}

// GetSortConfig returns the lane ordering settings.
func GetSortConfig() core.SortConfig {
	return core.SortConfig{
		MarkerGroupParentID: viper.GetString("sort.markerGroupParentId"),
		TagOrder:            viper.GetStringMapStringSlice("sort.tagOrder"),
	}
}

// GetTimelineConfig returns the duration fallbacks.
func GetTimelineConfig() TimelineConfig {
	return TimelineConfig{
		OverlapDuration: viper.GetDuration("timeline.overlapDuration"),
		RenderMinimum:   viper.GetDuration("timeline.renderMinimum"),
		PlayheadWindow:  viper.GetDuration("timeline.playheadWindow"),
	}
}

// GetStorageConfig returns the storage backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path: viper.GetString("storage.sqlite.path"),
		},
	}
}

// GetCatalogConfig returns the catalog client settings.
func GetCatalogConfig() CatalogConfig {
	return CatalogConfig{
		ServerURL: viper.GetString("catalog.serverUrl"),
		APIKey:    viper.GetString("catalog.apiKey"),
		Timeout:   viper.GetDuration("catalog.timeout"),
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}
