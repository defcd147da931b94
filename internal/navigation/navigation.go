// Package navigation computes cursor movement over a marker layout.
//
// Every function is a pure query over a *layout.Layout and the caller's
// cursor. A result of ok == false means nothing was found or the cursor
// cannot move; the caller keeps its current selection. An empty cursor, or
// one naming a marker that is no longer in the layout, means "no selection".
package navigation

import (
	"fmt"
	"math"

	"github.com/markerlane/markerlane/internal/layout"
)

// DefaultPlayheadWindow is the half-width, in seconds, of the window around
// the playhead searched by the playhead cycling actions.
const DefaultPlayheadWindow = 15.0

// Reference selects the time LaneUp and LaneDown aim for in the target lane.
type Reference int

const (
	// ReferencePlayhead aims for the current video position.
	ReferencePlayhead Reference = iota
	// ReferenceSelection aims for the start of the selected marker.
	ReferenceSelection
)

// ParseReference converts "playhead" or "selection" to a Reference.
func ParseReference(s string) (Reference, error) {
	switch s {
	case "", "playhead":
		return ReferencePlayhead, nil
	case "selection":
		return ReferenceSelection, nil
	default:
		return ReferencePlayhead, fmt.Errorf("unknown vertical reference: %s", s)
	}
}

func (r Reference) String() string {
	if r == ReferenceSelection {
		return "selection"
	}
	return "playhead"
}

// Options tunes the playhead and vertical actions.
type Options struct {
	Window    float64
	Reference Reference
}

// DefaultOptions returns a 15 second playhead window aimed at the playhead.
func DefaultOptions() Options {
	return Options{Window: DefaultPlayheadWindow, Reference: ReferencePlayhead}
}

// Action is one cursor movement.
type Action int

const (
	ActionNext Action = iota
	ActionPrevious
	ActionNextUnprocessedInLane
	ActionPreviousUnprocessedInLane
	ActionNextUnprocessed
	ActionPreviousUnprocessed
	ActionLaneUp
	ActionLaneDown
	ActionLeft
	ActionRight
	ActionNextAtPlayhead
	ActionPreviousAtPlayhead
)

var actionNames = map[Action]string{
	ActionNext:                      "next",
	ActionPrevious:                  "previous",
	ActionNextUnprocessedInLane:     "next-lane-unprocessed",
	ActionPreviousUnprocessedInLane: "previous-lane-unprocessed",
	ActionNextUnprocessed:           "next-unprocessed",
	ActionPreviousUnprocessed:       "previous-unprocessed",
	ActionLaneUp:                    "up",
	ActionLaneDown:                  "down",
	ActionLeft:                      "left",
	ActionRight:                     "right",
	ActionNextAtPlayhead:            "next-at-playhead",
	ActionPreviousAtPlayhead:        "previous-at-playhead",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Actions lists every action in declaration order.
func Actions() []Action {
	out := make([]Action, 0, len(actionNames))
	for a := ActionNext; a <= ActionPreviousAtPlayhead; a++ {
		out = append(out, a)
	}
	return out
}

// ParseAction converts a command name such as "next-unprocessed" to an Action.
func ParseAction(name string) (Action, error) {
	for a, n := range actionNames {
		if n == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown action: %s", name)
}

// Navigate runs action against the layout.
func Navigate(l *layout.Layout, action Action, cursor string, playhead float64, opts Options) (string, bool) {
	switch action {
	case ActionNext:
		return NextChronological(l, cursor)
	case ActionPrevious:
		return PreviousChronological(l, cursor)
	case ActionNextUnprocessedInLane:
		return NextUnprocessedInLane(l, cursor)
	case ActionPreviousUnprocessedInLane:
		return PreviousUnprocessedInLane(l, cursor)
	case ActionNextUnprocessed:
		return NextUnprocessed(l, cursor)
	case ActionPreviousUnprocessed:
		return PreviousUnprocessed(l, cursor)
	case ActionLaneUp:
		return LaneUp(l, cursor, playhead, opts.Reference)
	case ActionLaneDown:
		return LaneDown(l, cursor, playhead, opts.Reference)
	case ActionLeft:
		return Left(l, cursor)
	case ActionRight:
		return Right(l, cursor)
	case ActionNextAtPlayhead:
		return NextAtPlayhead(l, cursor, playhead, opts.Window)
	case ActionPreviousAtPlayhead:
		return PreviousAtPlayhead(l, cursor, playhead, opts.Window)
	default:
		return "", false
	}
}

func firstMarker(l *layout.Layout) (string, bool) {
	if l.Len() == 0 {
		return "", false
	}
	return l.Chronological[0].ID, true
}

func firstUnprocessedChronological(l *layout.Layout) (string, bool) {
	for _, m := range l.Chronological {
		if l.IsUnprocessed(m.ID) {
			return m.ID, true
		}
	}
	return "", false
}

func firstUnprocessedByLane(l *layout.Layout) (string, bool) {
	for _, lane := range l.Lanes {
		for _, m := range lane.Markers {
			if l.IsUnprocessed(m.ID) {
				return m.ID, true
			}
		}
	}
	return "", false
}

func distance(a, b float64) float64 {
	return math.Abs(a - b)
}
