package navigation

import "github.com/markerlane/markerlane/internal/layout"

// NextUnprocessedInLane returns the next pending marker in the cursor's lane,
// wrapping to the start of the lane. When the lane has no other pending
// marker the cursor itself is returned with ok == true.
func NextUnprocessedInLane(l *layout.Layout, cursor string) (string, bool) {
	return scanLane(l, cursor, 1)
}

// PreviousUnprocessedInLane is the backward counterpart of NextUnprocessedInLane.
func PreviousUnprocessedInLane(l *layout.Layout, cursor string) (string, bool) {
	return scanLane(l, cursor, -1)
}

func scanLane(l *layout.Layout, cursor string, dir int) (string, bool) {
	li, idx, ok := l.Position(cursor)
	if !ok {
		return firstUnprocessedChronological(l)
	}

	markers := l.Lanes[li].Markers
	n := len(markers)
	for step := 1; step < n; step++ {
		m := markers[((idx+dir*step)%n+n)%n]
		if l.IsUnprocessed(m.ID) {
			return m.ID, true
		}
	}
	return cursor, true
}

// NextUnprocessed scans forward lane by lane, in lane order, for a pending
// marker. It stops at the last lane and returns ok == false when nothing is
// left to review.
func NextUnprocessed(l *layout.Layout, cursor string) (string, bool) {
	li, idx, ok := l.Position(cursor)
	if !ok {
		return firstUnprocessedByLane(l)
	}

	for lane := li; lane < len(l.Lanes); lane++ {
		start := 0
		if lane == li {
			start = idx + 1
		}
		for _, m := range l.Lanes[lane].Markers[start:] {
			if l.IsUnprocessed(m.ID) {
				return m.ID, true
			}
		}
	}
	return "", false
}

// PreviousUnprocessed scans backward lane by lane for a pending marker,
// stopping at the first lane.
func PreviousUnprocessed(l *layout.Layout, cursor string) (string, bool) {
	li, idx, ok := l.Position(cursor)
	if !ok {
		return firstUnprocessedByLane(l)
	}

	for lane := li; lane >= 0; lane-- {
		markers := l.Lanes[lane].Markers
		end := len(markers)
		if lane == li {
			end = idx
		}
		for i := end - 1; i >= 0; i-- {
			if l.IsUnprocessed(markers[i].ID) {
				return markers[i].ID, true
			}
		}
	}
	return "", false
}
