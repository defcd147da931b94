// Package layout computes the lane and track layout of a marker snapshot.
// The same Layout feeds the timeline renderer and the navigation functions.
package layout

import (
	"log/slog"
	"math"
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/markerlane/markerlane/internal/lanes"
	"github.com/markerlane/markerlane/internal/status"
	"github.com/markerlane/markerlane/internal/tracks"
	"github.com/markerlane/markerlane/pkg/core"
)

// DefaultRenderMinimum is the narrowest width, in seconds, a marker is drawn with.
const DefaultRenderMinimum = 1.0

// Options holds the duration fallbacks used while laying out markers.
type Options struct {
	Overlap       float64 // length given to point markers for packing
	RenderMinimum float64 // minimum drawn width
}

// DefaultOptions returns the built-in durations.
func DefaultOptions() Options {
	return Options{
		Overlap:       tracks.DefaultOverlapDuration,
		RenderMinimum: DefaultRenderMinimum,
	}
}

// Settings is every configuration input of a layout.
type Settings struct {
	StatusTags core.StatusTags
	Sort       core.SortConfig
	Options    Options
}

// Fingerprint hashes the settings so that any change yields a new value.
func (s Settings) Fingerprint() uint64 {
	d := xxhash.New()
	write := func(parts ...string) {
		for _, p := range parts {
			_, _ = d.WriteString(p)
			_, _ = d.Write([]byte{0})
		}
	}

	write(s.StatusTags.ConfirmedTagID, s.StatusTags.RejectedTagID, s.Sort.MarkerGroupParentID)

	groups := make([]string, 0, len(s.Sort.TagOrder))
	for g := range s.Sort.TagOrder {
		groups = append(groups, g)
	}
	slices.Sort(groups)
	for _, g := range groups {
		write("group", g)
		write(s.Sort.TagOrder[g]...)
	}

	write(
		strconv.FormatUint(math.Float64bits(s.Options.Overlap), 16),
		strconv.FormatUint(math.Float64bits(s.Options.RenderMinimum), 16),
	)
	return d.Sum64()
}

type position struct {
	lane  int
	index int
}

// Layout is the derived view of one marker snapshot.
type Layout struct {
	Lanes         []core.Lane
	Placements    map[string]core.Placement
	TrackCounts   []int         // per lane
	Chronological []core.Marker // all markers by start, then id
	Overlap       float64

	statuses    map[string]core.Status
	positions   map[string]position
	chronoIndex map[string]int
}

// Build groups markers into lanes and packs each lane into tracks.
// log receives malformed-interval warnings and may be nil.
func Build(markers []core.Marker, s Settings, log *slog.Logger) *Layout {
	l := &Layout{
		Lanes:         lanes.Group(markers, s.Sort, s.StatusTags),
		Placements:    make(map[string]core.Placement, len(markers)),
		Chronological: lanes.SortByStart(markers),
		Overlap:       s.Options.Overlap,
		statuses:      make(map[string]core.Status, len(markers)),
		positions:     make(map[string]position, len(markers)),
		chronoIndex:   make(map[string]int, len(markers)),
	}

	for i, m := range l.Chronological {
		l.chronoIndex[m.ID] = i
		l.statuses[m.ID] = status.Classify(m, s.StatusTags)
	}

	l.TrackCounts = make([]int, len(l.Lanes))
	for li, lane := range l.Lanes {
		assigned := tracks.Assign(lane.Markers, s.Options.Overlap, log)
		l.TrackCounts[li] = tracks.Count(lane.Markers, s.Options.Overlap)

		for mi, m := range lane.Markers {
			end, _ := tracks.EffectiveEnd(m, s.Options.Overlap)
			l.Placements[m.ID] = core.Placement{
				MarkerID:   m.ID,
				LaneIndex:  li,
				TrackIndex: assigned[m.ID],
				Start:      m.StartSeconds,
				End:        end,
				RenderEnd:  renderEnd(m, s.Options.RenderMinimum),
			}
			l.positions[m.ID] = position{lane: li, index: mi}
		}
	}
	return l
}

// renderEnd is the drawn end: the marker's own end (its start for point
// markers), widened to at least renderMin.
func renderEnd(m core.Marker, renderMin float64) float64 {
	end := m.StartSeconds
	if m.EndSeconds != nil && *m.EndSeconds > end {
		end = *m.EndSeconds
	}
	return max(end, m.StartSeconds+renderMin)
}

// Len returns the number of markers in the layout.
func (l *Layout) Len() int {
	return len(l.Chronological)
}

// Contains reports whether id is a marker of this layout.
func (l *Layout) Contains(id string) bool {
	_, ok := l.positions[id]
	return ok
}

// Position returns the lane index and the index within that lane of a marker.
func (l *Layout) Position(id string) (lane, index int, ok bool) {
	p, ok := l.positions[id]
	return p.lane, p.index, ok
}

// ChronologicalIndex returns the marker's index in start order.
func (l *Layout) ChronologicalIndex(id string) (int, bool) {
	i, ok := l.chronoIndex[id]
	return i, ok
}

// Marker returns the marker with the given id.
func (l *Layout) Marker(id string) (core.Marker, bool) {
	i, ok := l.chronoIndex[id]
	if !ok {
		return core.Marker{}, false
	}
	return l.Chronological[i], true
}

// Status returns the classified status of a marker.
func (l *Layout) Status(id string) core.Status {
	return l.statuses[id]
}

// IsUnprocessed reports whether the marker is pending review.
func (l *Layout) IsUnprocessed(id string) bool {
	s, ok := l.statuses[id]
	return ok && s == core.StatusPending
}
