// Package tracks packs the markers of a lane into non-overlapping tracks.
package tracks

import (
	"container/heap"
	"log/slog"

	"github.com/markerlane/markerlane/pkg/core"
)

// DefaultOverlapDuration is the length, in seconds, given to markers without
// an end time when checking for overlaps.
const DefaultOverlapDuration = 30.0

// EffectiveEnd returns the end used for overlap checks. Markers without an
// end, or with an end not after the start, get start+overlap. malformed is
// true for the latter.
func EffectiveEnd(m core.Marker, overlap float64) (end float64, malformed bool) {
	if m.EndSeconds == nil {
		return m.StartSeconds + overlap, false
	}
	if *m.EndSeconds <= m.StartSeconds {
		return m.StartSeconds + overlap, true
	}
	return *m.EndSeconds, false
}

// Assign maps each marker id to a track index. Markers must be sorted by
// start time. A marker reuses the lowest-indexed track that is free at its
// start; otherwise a new track is opened. log may be nil.
func Assign(markers []core.Marker, overlap float64, log *slog.Logger) map[string]int {
	result := make(map[string]int, len(markers))
	p := newPacker()
	for _, m := range markers {
		end, malformed := EffectiveEnd(m, overlap)
		if malformed && log != nil {
			log.Warn("marker end is not after its start, using fallback duration",
				"marker", m.ID, "start", m.StartSeconds, "end", *m.EndSeconds, "fallback", overlap)
		}
		result[m.ID] = p.place(m.StartSeconds, end)
	}
	return result
}

// Count returns the number of tracks the markers need, at least 1.
func Count(markers []core.Marker, overlap float64) int {
	p := newPacker()
	for _, m := range markers {
		end, _ := EffectiveEnd(m, overlap)
		p.place(m.StartSeconds, end)
	}
	return max(p.tracks, 1)
}

// packer tracks busy tracks by end time and free tracks by index.
type packer struct {
	busy   busyHeap
	free   indexHeap
	tracks int
}

func newPacker() *packer {
	return &packer{}
}

func (p *packer) place(start, end float64) int {
	for p.busy.Len() > 0 && p.busy[0].end <= start {
		t := heap.Pop(&p.busy).(busyTrack)
		heap.Push(&p.free, t.index)
	}

	var index int
	if p.free.Len() > 0 {
		index = heap.Pop(&p.free).(int)
	} else {
		index = p.tracks
		p.tracks++
	}
	heap.Push(&p.busy, busyTrack{index: index, end: end})
	return index
}

type busyTrack struct {
	index int
	end   float64
}

type busyHeap []busyTrack

func (h busyHeap) Len() int { return len(h) }
func (h busyHeap) Less(i, j int) bool {
	if h[i].end != h[j].end {
		return h[i].end < h[j].end
	}
	return h[i].index < h[j].index
}
func (h busyHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *busyHeap) Push(x any)   { *h = append(*h, x.(busyTrack)) }
func (h *busyHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

type indexHeap []int

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *indexHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
