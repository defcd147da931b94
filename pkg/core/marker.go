// pkg/core/marker.go
package core

// Tag is a catalog tag with its parent chain.
type Tag struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Parents []Tag  `json:"parents,omitempty" yaml:"parents,omitempty"`
}

// Marker is a time interval annotation on a scene video.
// EndSeconds is nil for point markers.
type Marker struct {
	ID           string   `json:"id" yaml:"id"`
	SceneID      string   `json:"sceneId" yaml:"scene_id"`
	Title        string   `json:"title,omitempty" yaml:"title,omitempty"`
	StartSeconds float64  `json:"startSeconds" yaml:"start_seconds"`
	EndSeconds   *float64 `json:"endSeconds,omitempty" yaml:"end_seconds,omitempty"`
	PrimaryTag   Tag      `json:"primaryTag" yaml:"primary_tag"`
	Tags         []Tag    `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// HasTag reports whether id is one of the marker's additional tags.
// An empty id never matches.
func (m Marker) HasTag(id string) bool {
	if id == "" {
		return false
	}
	for _, t := range m.Tags {
		if t.ID == id {
			return true
		}
	}
	return false
}

// HasEnd reports whether the marker carries an explicit end time.
func (m Marker) HasEnd() bool {
	return m.EndSeconds != nil
}

// Seconds returns a pointer to v, for building optional end times.
func Seconds(v float64) *float64 {
	return &v
}

// Status is the review state of a marker, derived from its tags.
type Status int

const (
	StatusPending Status = iota
	StatusConfirmed
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusConfirmed:
		return "confirmed"
	case StatusRejected:
		return "rejected"
	default:
		return "pending"
	}
}

// StatusTags names the tags that mark a marker as confirmed or rejected.
type StatusTags struct {
	ConfirmedTagID string
	RejectedTagID  string
}
