package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/markerlane/markerlane/internal/layout"
	"github.com/markerlane/markerlane/pkg/core"
)

var (
	confirmedColor = color.New(color.FgGreen)
	rejectedColor  = color.New(color.FgRed)
	pendingColor   = color.New(color.FgYellow)
	laneColor      = color.New(color.Bold)
	cursorColor    = color.New(color.ReverseVideo)
)

func statusColor(s core.Status) *color.Color {
	switch s {
	case core.StatusConfirmed:
		return confirmedColor
	case core.StatusRejected:
		return rejectedColor
	default:
		return pendingColor
	}
}

// renderLayout prints one row per track. The lane label is printed on the
// lane's first row only; later rows of the same lane are indented instead.
func renderLayout(w io.Writer, l *layout.Layout, cursor string) {
	width := 0
	for _, lane := range l.Lanes {
		width = max(width, len(laneLabel(lane)))
	}

	shown := make(map[int]bool, len(l.Lanes))
	for li, lane := range l.Lanes {
		rows := make([][]core.Marker, l.TrackCounts[li])
		for _, m := range lane.Markers {
			t := l.Placements[m.ID].TrackIndex
			for t >= len(rows) {
				rows = append(rows, nil)
			}
			rows[t] = append(rows[t], m)
		}

		for _, row := range rows {
			label := strings.Repeat(" ", width)
			if !shown[li] {
				label = laneColor.Sprintf("%-*s", width, laneLabel(lane))
				shown[li] = true
			}

			cells := make([]string, 0, len(row))
			for _, m := range row {
				cells = append(cells, markerCell(l, m, cursor))
			}
			fmt.Fprintf(w, "%s | %s\n", label, strings.Join(cells, " "))
		}
	}
}

func laneLabel(lane core.Lane) string {
	label := lane.Name
	if lane.Group != nil {
		label = lane.Group.Name + " / " + label
	}
	if lane.RejectedOnly {
		label += " (rejected)"
	}
	return label
}

func markerCell(l *layout.Layout, m core.Marker, cursor string) string {
	p := l.Placements[m.ID]
	cell := fmt.Sprintf("[%s %s-%s]", m.ID, formatSeconds(p.Start), formatSeconds(p.RenderEnd))
	cell = statusColor(l.Status(m.ID)).Sprint(cell)
	if m.ID == cursor {
		cell = cursorColor.Sprint(cell)
	}
	return cell
}

// formatSeconds renders seconds as m:ss, or h:mm:ss past an hour.
func formatSeconds(sec float64) string {
	total := int(sec)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// renderSummary prints per-status counts for a layout.
func renderSummary(w io.Writer, l *layout.Layout) {
	counts := map[core.Status]int{}
	for _, m := range l.Chronological {
		counts[l.Status(m.ID)]++
	}
	statuses := []core.Status{core.StatusPending, core.StatusConfirmed, core.StatusRejected}
	parts := make([]string, 0, len(statuses))
	for _, s := range statuses {
		parts = append(parts, statusColor(s).Sprintf("%s=%d", s, counts[s]))
	}
	fmt.Fprintf(w, "%d markers in %d lanes: %s\n", l.Len(), len(l.Lanes), strings.Join(parts, " "))
}

// describeMarker is the one-line cursor report printed by the review loop.
func describeMarker(l *layout.Layout, id string) string {
	m, ok := l.Marker(id)
	if !ok {
		return "no selection"
	}
	li, _, _ := l.Position(id)
	p := l.Placements[id]
	tags := make([]string, 0, len(m.Tags))
	for _, t := range m.Tags {
		tags = append(tags, t.ID)
	}
	slices.Sort(tags)
	return fmt.Sprintf("%s  lane=%q track=%d %s-%s %s tags=[%s]",
		m.ID, l.Lanes[li].Name, p.TrackIndex,
		formatSeconds(p.Start), formatSeconds(p.RenderEnd),
		l.Status(id), strings.Join(tags, ","))
}
