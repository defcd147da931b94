package navigation

import "github.com/markerlane/markerlane/internal/layout"

// NextChronological returns the marker starting after the cursor across all
// lanes. It does not wrap.
func NextChronological(l *layout.Layout, cursor string) (string, bool) {
	i, ok := l.ChronologicalIndex(cursor)
	if !ok {
		return firstMarker(l)
	}
	if i+1 >= l.Len() {
		return "", false
	}
	return l.Chronological[i+1].ID, true
}

// PreviousChronological returns the marker starting before the cursor across
// all lanes. It does not wrap.
func PreviousChronological(l *layout.Layout, cursor string) (string, bool) {
	i, ok := l.ChronologicalIndex(cursor)
	if !ok {
		return firstMarker(l)
	}
	if i == 0 {
		return "", false
	}
	return l.Chronological[i-1].ID, true
}

// Right moves to the next marker in the cursor's lane, clamped at the end.
func Right(l *layout.Layout, cursor string) (string, bool) {
	return horizontal(l, cursor, 1)
}

// Left moves to the previous marker in the cursor's lane, clamped at the start.
func Left(l *layout.Layout, cursor string) (string, bool) {
	return horizontal(l, cursor, -1)
}

func horizontal(l *layout.Layout, cursor string, step int) (string, bool) {
	li, idx, ok := l.Position(cursor)
	if !ok {
		return firstMarker(l)
	}
	markers := l.Lanes[li].Markers
	target := idx + step
	if target < 0 || target >= len(markers) {
		return "", false
	}
	return markers[target].ID, true
}
