// Package lanes partitions markers into ordered swimlanes by primary tag.
package lanes

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/markerlane/markerlane/internal/status"
	"github.com/markerlane/markerlane/pkg/core"
)

type bucket struct {
	name    string
	tagID   string
	group   *core.Tag
	markers []core.Marker
}

// groupRank orders marker groups: numbered groups by their prefix, then
// unnumbered groups by first appearance.
type groupRank struct {
	numbered   bool
	number     int
	name       string
	appearance int
}

// Group partitions markers by primary tag name and returns the lanes in
// display order. The input slice is not modified.
func Group(markers []core.Marker, cfg core.SortConfig, tags core.StatusTags) []core.Lane {
	if len(markers) == 0 {
		return nil
	}

	sorted := SortByStart(markers)

	buckets := make(map[string]*bucket)
	ranks := make(map[string]groupRank)
	for _, m := range sorted {
		b, ok := buckets[m.PrimaryTag.Name]
		if !ok {
			b = &bucket{name: m.PrimaryTag.Name}
			buckets[b.name] = b
		}
		if b.tagID == "" {
			b.tagID = m.PrimaryTag.ID
		}
		// A marker created without its tag's parent chain must not hide
		// the group the rest of the lane carries.
		if b.group == nil {
			b.group = MarkerGroup(m.PrimaryTag, cfg.MarkerGroupParentID)
			if b.group != nil {
				if _, seen := ranks[b.group.ID]; !seen {
					ranks[b.group.ID] = newGroupRank(*b.group, len(ranks))
				}
			}
		}
		b.markers = append(b.markers, m)
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	slices.SortFunc(ordered, func(a, b *bucket) int {
		return compareBuckets(a, b, ranks, cfg.TagOrder)
	})

	result := make([]core.Lane, 0, len(ordered))
	for _, b := range ordered {
		result = append(result, core.Lane{
			Name:         b.name,
			TagID:        b.tagID,
			Markers:      b.markers,
			RejectedOnly: allRejected(b.markers, tags),
			Group:        b.group,
		})
	}
	return result
}

// SortByStart returns a copy of markers sorted by start time, ties by id.
func SortByStart(markers []core.Marker) []core.Marker {
	sorted := slices.Clone(markers)
	slices.SortStableFunc(sorted, func(a, b core.Marker) int {
		if c := cmp.Compare(a.StartSeconds, b.StartSeconds); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return sorted
}

// MarkerGroup returns the first tag on the tag's ancestor chain, the tag
// itself included, whose direct parent is parentID. The chain is walked
// breadth-first. Returns nil when parentID is empty or nothing matches.
func MarkerGroup(tag core.Tag, parentID string) *core.Tag {
	if parentID == "" {
		return nil
	}

	queue := []core.Tag{tag}
	seen := make(map[string]bool)
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true

		for _, p := range t.Parents {
			if p.ID == parentID {
				group := core.Tag{ID: t.ID, Name: t.Name}
				return &group
			}
		}
		queue = append(queue, t.Parents...)
	}
	return nil
}

func compareBuckets(a, b *bucket, ranks map[string]groupRank, tagOrder map[string][]string) int {
	// Ungrouped lanes sort after every grouped lane.
	switch {
	case a.group == nil && b.group != nil:
		return 1
	case a.group != nil && b.group == nil:
		return -1
	case a.group != nil && b.group != nil && a.group.ID != b.group.ID:
		return compareRanks(ranks[a.group.ID], ranks[b.group.ID])
	}

	if a.group != nil {
		order := tagOrder[a.group.ID]
		ai, bi := slices.Index(order, a.tagID), slices.Index(order, b.tagID)
		switch {
		case ai >= 0 && bi >= 0 && ai != bi:
			return cmp.Compare(ai, bi)
		case ai >= 0 && bi < 0:
			return -1
		case ai < 0 && bi >= 0:
			return 1
		}
	}

	return compareNames(a.name, b.name)
}

func compareRanks(a, b groupRank) int {
	switch {
	case a.numbered && !b.numbered:
		return -1
	case !a.numbered && b.numbered:
		return 1
	case a.numbered && b.numbered && a.number != b.number:
		return cmp.Compare(a.number, b.number)
	case a.numbered && b.numbered:
		if c := compareNames(a.name, b.name); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.appearance, b.appearance)
}

func compareNames(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func newGroupRank(group core.Tag, appearance int) groupRank {
	rank := groupRank{name: group.Name, appearance: appearance}
	if n, ok := numericPrefix(group.Name); ok {
		rank.numbered = true
		rank.number = n
	}
	return rank
}

// numericPrefix parses the leading digits of a group name such as
// "1. Positions" or "02-Acts".
func numericPrefix(name string) (int, bool) {
	name = strings.TrimLeftFunc(name, unicode.IsSpace)
	end := strings.IndexFunc(name, func(r rune) bool { return r < '0' || r > '9' })
	if end == -1 {
		end = len(name)
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(name[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func allRejected(markers []core.Marker, tags core.StatusTags) bool {
	for _, m := range markers {
		if status.Classify(m, tags) != core.StatusRejected {
			return false
		}
	}
	return len(markers) > 0
}
