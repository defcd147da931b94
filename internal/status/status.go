// Package status classifies markers as confirmed, rejected or pending.
package status

import "github.com/markerlane/markerlane/pkg/core"

// Classify derives a marker's review status from its tags.
// A marker carrying both status tags is reported as rejected.
func Classify(m core.Marker, tags core.StatusTags) core.Status {
	switch {
	case m.HasTag(tags.RejectedTagID):
		return core.StatusRejected
	case m.HasTag(tags.ConfirmedTagID):
		return core.StatusConfirmed
	default:
		return core.StatusPending
	}
}

// IsUnprocessed reports whether the marker is neither confirmed nor rejected.
func IsUnprocessed(m core.Marker, tags core.StatusTags) bool {
	return Classify(m, tags) == core.StatusPending
}
