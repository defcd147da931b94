// pkg/core/lane.go
package core

// Lane is the set of markers sharing one primary tag name, rendered as one
// horizontal row. Markers are sorted by start time, then id.
type Lane struct {
	Name         string
	TagID        string
	Markers      []Marker
	RejectedOnly bool
	Group        *Tag // marker group used for ordering and labels, nil when ungrouped
}

// Placement locates a marker on the timeline.
type Placement struct {
	MarkerID   string
	LaneIndex  int
	TrackIndex int
	Start      float64
	End        float64 // effective end used for overlap checks
	RenderEnd  float64 // End widened to the render minimum
}

// SortConfig controls lane ordering.
// TagOrder maps a marker group tag id to an ordered list of tag ids.
type SortConfig struct {
	MarkerGroupParentID string              `json:"markerGroupParentId" mapstructure:"markerGroupParentId"`
	TagOrder            map[string][]string `json:"tagOrder" mapstructure:"tagOrder"`
}
