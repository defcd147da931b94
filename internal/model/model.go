package model

import (
	"time"

	"github.com/markerlane/markerlane/pkg/core"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&StoreInfo{},
	&Marker{},
	&ReviewEvent{},
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// StoreInfo records which schema version created the store
type StoreInfo struct {
	gorm.Model
	SchemaVersion int    `json:"schemaVersion"`
	CreatedBy     string `json:"createdBy" gorm:"size:64"`
}

func (*StoreInfo) TableName() string {
	return "store_infos"
}

////////////////////////
// MARKERS
////////////////////////

// Marker is one scene marker. Tag hierarchies are stored as JSON since
// they are only ever read back whole.
type Marker struct {
	ID           string                        `json:"id" gorm:"primaryKey;size:64"`
	SceneID      string                        `json:"sceneId" gorm:"size:64;index:idx_marker_scene_start,priority:1"`
	Title        string                        `json:"title" gorm:"size:256"`
	StartSeconds float64                       `json:"startSeconds" gorm:"index:idx_marker_scene_start,priority:2"`
	EndSeconds   *float64                      `json:"endSeconds"`
	PrimaryTag   datatypes.JSONType[core.Tag]  `json:"primaryTag"`
	Tags         datatypes.JSONSlice[core.Tag] `json:"tags"`
	CreatedAt    time.Time                     `json:"createdAt"`
	UpdatedAt    time.Time                     `json:"updatedAt"`
}

func (*Marker) TableName() string {
	return "markers"
}

// ReviewEvent is an audit row written whenever a marker is saved or deleted.
type ReviewEvent struct {
	ID       uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time     time.Time `json:"time" gorm:"index:idx_review_time"`
	MarkerID string    `json:"markerId" gorm:"size:64;index:idx_review_marker"`
	SceneID  string    `json:"sceneId" gorm:"size:64"`
	Action   string    `json:"action" gorm:"size:16"` // "save" or "delete"
}

func (*ReviewEvent) TableName() string {
	return "review_events"
}
