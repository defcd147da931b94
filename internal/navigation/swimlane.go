package navigation

import (
	"github.com/markerlane/markerlane/internal/layout"
	"github.com/markerlane/markerlane/pkg/core"
)

// LaneUp moves to the lane above and selects the marker starting closest to
// the reference time. It does not wrap past the first lane.
func LaneUp(l *layout.Layout, cursor string, playhead float64, ref Reference) (string, bool) {
	return vertical(l, cursor, playhead, ref, -1)
}

// LaneDown moves to the lane below. See LaneUp.
func LaneDown(l *layout.Layout, cursor string, playhead float64, ref Reference) (string, bool) {
	return vertical(l, cursor, playhead, ref, 1)
}

func vertical(l *layout.Layout, cursor string, playhead float64, ref Reference, step int) (string, bool) {
	li, idx, ok := l.Position(cursor)
	if !ok {
		return firstMarker(l)
	}

	target := li + step
	if target < 0 || target >= len(l.Lanes) {
		return "", false
	}

	at := playhead
	if ref == ReferenceSelection {
		at = l.Lanes[li].Markers[idx].StartSeconds
	}
	return closestStart(l.Lanes[target].Markers, at)
}

// closestStart returns the first marker whose start is nearest to at.
func closestStart(markers []core.Marker, at float64) (string, bool) {
	if len(markers) == 0 {
		return "", false
	}
	best := 0
	for i := 1; i < len(markers); i++ {
		if distance(markers[i].StartSeconds, at) < distance(markers[best].StartSeconds, at) {
			best = i
		}
	}
	return markers[best].ID, true
}
