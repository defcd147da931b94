package layout

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/markerlane/markerlane/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var statusTags = core.StatusTags{ConfirmedTagID: "ok", RejectedTagID: "no"}

func testSettings() Settings {
	return Settings{StatusTags: statusTags, Options: DefaultOptions()}
}

func testMarkers() []core.Marker {
	kissing := core.Tag{ID: "k", Name: "Kissing"}
	dancing := core.Tag{ID: "d", Name: "Dancing"}
	return []core.Marker{
		{ID: "C", StartSeconds: 12, EndSeconds: core.Seconds(20), PrimaryTag: kissing},
		{ID: "A", StartSeconds: 0, EndSeconds: core.Seconds(10), PrimaryTag: kissing},
		{ID: "B", StartSeconds: 5, EndSeconds: core.Seconds(8), PrimaryTag: kissing, Tags: []core.Tag{{ID: "ok"}}},
		{ID: "D", StartSeconds: 3, PrimaryTag: dancing, Tags: []core.Tag{{ID: "no"}}},
	}
}

func TestBuild_Placements(t *testing.T) {
	l := Build(testMarkers(), testSettings(), nil)

	require.Len(t, l.Lanes, 2)
	assert.Equal(t, "Dancing", l.Lanes[0].Name)
	assert.Equal(t, "Kissing", l.Lanes[1].Name)
	assert.Equal(t, []int{1, 2}, l.TrackCounts)

	assert.Equal(t, core.Placement{MarkerID: "A", LaneIndex: 1, TrackIndex: 0, Start: 0, End: 10, RenderEnd: 10}, l.Placements["A"])
	assert.Equal(t, 1, l.Placements["B"].TrackIndex)
	assert.Equal(t, 0, l.Placements["C"].TrackIndex)

	d := l.Placements["D"]
	assert.Equal(t, 0, d.LaneIndex)
	assert.Equal(t, 33.0, d.End)
}

func TestBuild_RenderMinimum(t *testing.T) {
	s := testSettings()
	s.Options.RenderMinimum = 5
	markers := []core.Marker{
		{ID: "short", StartSeconds: 1, EndSeconds: core.Seconds(2), PrimaryTag: core.Tag{ID: "t", Name: "T"}},
	}

	l := Build(markers, s, nil)

	assert.Equal(t, 2.0, l.Placements["short"].End)
	assert.Equal(t, 6.0, l.Placements["short"].RenderEnd)
}

func TestBuild_PointMarkerRendersAtMinimumWidth(t *testing.T) {
	s := testSettings()
	s.Options.RenderMinimum = 1
	markers := []core.Marker{
		{ID: "point", StartSeconds: 10, PrimaryTag: core.Tag{ID: "t", Name: "T"}},
	}

	l := Build(markers, s, nil)

	assert.Equal(t, 10+s.Options.Overlap, l.Placements["point"].End, "packing uses the overlap duration")
	assert.Equal(t, 11.0, l.Placements["point"].RenderEnd, "drawing uses the render minimum")
}

func TestBuild_Lookups(t *testing.T) {
	l := Build(testMarkers(), testSettings(), nil)

	assert.Equal(t, 4, l.Len())
	assert.True(t, l.Contains("A"))
	assert.False(t, l.Contains("nope"))

	lane, idx, ok := l.Position("C")
	require.True(t, ok)
	assert.Equal(t, 1, lane)
	assert.Equal(t, 2, idx)

	ci, ok := l.ChronologicalIndex("D")
	require.True(t, ok)
	assert.Equal(t, 1, ci)

	m, ok := l.Marker("B")
	require.True(t, ok)
	assert.Equal(t, 5.0, m.StartSeconds)

	assert.Equal(t, core.StatusConfirmed, l.Status("B"))
	assert.Equal(t, core.StatusRejected, l.Status("D"))
	assert.True(t, l.IsUnprocessed("A"))
	assert.False(t, l.IsUnprocessed("B"))
	assert.False(t, l.IsUnprocessed("missing"))
}

func TestBuild_Deterministic(t *testing.T) {
	first := Build(testMarkers(), testSettings(), nil)
	second := Build(testMarkers(), testSettings(), nil)

	assert.Equal(t, first.Lanes, second.Lanes)
	assert.Equal(t, first.Placements, second.Placements)
	assert.Equal(t, first.TrackCounts, second.TrackCounts)
}

func TestBuild_MalformedWarning(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	markers := []core.Marker{
		{ID: "bad", StartSeconds: 10, EndSeconds: core.Seconds(10), PrimaryTag: core.Tag{ID: "t", Name: "T"}},
	}

	l := Build(markers, testSettings(), log)

	assert.Contains(t, buf.String(), "marker=bad")
	assert.Equal(t, 40.0, l.Placements["bad"].End)
}

func TestFingerprint(t *testing.T) {
	base := testSettings()
	assert.Equal(t, base.Fingerprint(), testSettings().Fingerprint())

	changed := testSettings()
	changed.Options.Overlap = 20
	assert.NotEqual(t, base.Fingerprint(), changed.Fingerprint())

	order1 := testSettings()
	order1.Sort.TagOrder = map[string][]string{"g": {"a", "b"}, "h": {"c"}}
	order2 := testSettings()
	order2.Sort.TagOrder = map[string][]string{"h": {"c"}, "g": {"a", "b"}}
	assert.Equal(t, order1.Fingerprint(), order2.Fingerprint())

	order3 := testSettings()
	order3.Sort.TagOrder = map[string][]string{"g": {"b", "a"}, "h": {"c"}}
	assert.NotEqual(t, order1.Fingerprint(), order3.Fingerprint())
}

func TestEngine_Memoizes(t *testing.T) {
	e, err := NewEngine(nil)
	require.NoError(t, err)

	markers := testMarkers()
	first := e.Layout(1, markers, testSettings())
	second := e.Layout(1, markers, testSettings())
	assert.Same(t, first, second)

	changedSnapshot := e.Layout(2, markers, testSettings())
	assert.NotSame(t, first, changedSnapshot)

	s := testSettings()
	s.StatusTags.RejectedTagID = "other"
	changedConfig := e.Layout(2, markers, s)
	assert.NotSame(t, changedSnapshot, changedConfig)
	assert.Equal(t, core.StatusPending, changedConfig.Status("D"))
}

func TestEngine_Invalidate(t *testing.T) {
	e, err := NewEngine(nil)
	require.NoError(t, err)

	first := e.Layout(1, testMarkers(), testSettings())
	e.Invalidate()
	second := e.Layout(1, testMarkers(), testSettings())

	assert.NotSame(t, first, second)
	assert.Equal(t, first.Placements, second.Placements)
}
