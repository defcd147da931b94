package navigation

import (
	"cmp"
	"slices"
	"strings"

	"github.com/markerlane/markerlane/internal/layout"
)

type candidate struct {
	id       string
	lane     int
	distance float64
}

// candidatesAt collects markers whose effective interval intersects
// [playhead-window, playhead+window], ordered by lane, then distance from
// the playhead, then id.
func candidatesAt(l *layout.Layout, playhead, window float64) []candidate {
	lo, hi := playhead-window, playhead+window

	var out []candidate
	for _, m := range l.Chronological {
		p := l.Placements[m.ID]
		if p.Start <= hi && p.End > lo {
			out = append(out, candidate{
				id:       m.ID,
				lane:     p.LaneIndex,
				distance: distance(p.Start, playhead),
			})
		}
	}

	slices.SortFunc(out, func(a, b candidate) int {
		if c := cmp.Compare(a.lane, b.lane); c != 0 {
			return c
		}
		if c := cmp.Compare(a.distance, b.distance); c != 0 {
			return c
		}
		return strings.Compare(a.id, b.id)
	})
	return out
}

// NextAtPlayhead cycles forward through the lanes that have markers near the
// playhead, skipping the cursor's lane, and selects the closest marker of
// the next such lane. It wraps to the first lane. If only the cursor's lane
// has markers near the playhead, it cycles through those instead.
func NextAtPlayhead(l *layout.Layout, cursor string, playhead, window float64) (string, bool) {
	cands, others, current := splitCandidates(l, cursor, playhead, window)
	if len(cands) == 0 {
		return "", false
	}
	if len(others) == 0 {
		return cycle(cands, cursor, 1)
	}

	for _, c := range others {
		if c.lane > current {
			return c.id, true
		}
	}
	return others[0].id, true
}

// PreviousAtPlayhead mirrors NextAtPlayhead: it selects the closest marker of
// the nearest preceding lane, wrapping to the last lane.
func PreviousAtPlayhead(l *layout.Layout, cursor string, playhead, window float64) (string, bool) {
	cands, others, current := splitCandidates(l, cursor, playhead, window)
	if len(cands) == 0 {
		return "", false
	}
	if len(others) == 0 {
		return cycle(cands, cursor, -1)
	}

	target := others[len(others)-1].lane
	for i := len(others) - 1; i >= 0; i-- {
		if others[i].lane < current {
			target = others[i].lane
			break
		}
	}
	for _, c := range others {
		if c.lane == target {
			return c.id, true
		}
	}
	return "", false
}

// splitCandidates returns all candidates, those outside the cursor's lane,
// and the cursor's lane index (-1 without a selection).
func splitCandidates(l *layout.Layout, cursor string, playhead, window float64) (all, others []candidate, current int) {
	current = -1
	if li, _, ok := l.Position(cursor); ok {
		current = li
	}

	all = candidatesAt(l, playhead, window)
	for _, c := range all {
		if c.lane != current {
			others = append(others, c)
		}
	}
	return all, others, current
}

// cycle steps through cands from the cursor, wrapping at either end.
func cycle(cands []candidate, cursor string, step int) (string, bool) {
	n := len(cands)
	pos := slices.IndexFunc(cands, func(c candidate) bool { return c.id == cursor })
	if pos == -1 {
		if step > 0 {
			return cands[0].id, true
		}
		return cands[n-1].id, true
	}
	return cands[((pos+step)%n+n)%n].id, true
}
