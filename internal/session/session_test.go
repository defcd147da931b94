package session

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/markerlane/markerlane/internal/layout"
	"github.com/markerlane/markerlane/internal/navigation"
	"github.com/markerlane/markerlane/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var statusTags = core.StatusTags{ConfirmedTagID: "ok", RejectedTagID: "no"}

func mk(id, lane string, start, end float64, tags ...core.Tag) core.Marker {
	m := core.Marker{
		ID:           id,
		SceneID:      "scene",
		StartSeconds: start,
		PrimaryTag:   core.Tag{ID: "tag-" + lane, Name: lane},
		Tags:         tags,
	}
	if end > 0 {
		m.EndSeconds = core.Seconds(end)
	}
	return m
}

func testSettings() Settings {
	return Settings{
		Layout:     layout.Settings{StatusTags: statusTags, Options: layout.DefaultOptions()},
		Navigation: navigation.DefaultOptions(),
	}
}

func newTestSession(t *testing.T, markers ...core.Marker) *Session {
	t.Helper()
	engine, err := layout.NewEngine(nil)
	require.NoError(t, err)
	return New("scene", markers, testSettings(), engine, nil)
}

func sample() []core.Marker {
	return []core.Marker{
		mk("a1", "A", 0, 10),
		mk("a2", "A", 20, 25),
		mk("b1", "B", 5, 8, core.Tag{ID: "ok"}),
		mk("b2", "B", 30, 0),
	}
}

func TestNew_CopiesMarkers(t *testing.T) {
	markers := sample()
	s := newTestSession(t, markers...)
	markers[0].ID = "changed"

	assert.Equal(t, "a1", s.Markers()[0].ID)
	assert.Equal(t, "scene", s.SceneID())
	assert.Equal(t, uint64(1), s.Version())
	assert.Equal(t, "", s.Cursor())
}

func TestNavigate_MovesCursor(t *testing.T) {
	s := newTestSession(t, sample()...)

	cursor, ok := s.Navigate(navigation.ActionNext)
	require.True(t, ok)
	assert.Equal(t, "a1", cursor)

	cursor, ok = s.Navigate(navigation.ActionNext)
	require.True(t, ok)
	assert.Equal(t, "b1", cursor)

	cursor, ok = s.Navigate(navigation.ActionNextUnprocessed)
	require.True(t, ok)
	assert.Equal(t, "b2", cursor, "b1 is confirmed; B lane is scanned from the cursor onward")
}

func TestNavigate_FailureKeepsCursor(t *testing.T) {
	s := newTestSession(t, sample()...)
	require.NoError(t, s.Select("b2"))

	cursor, ok := s.Navigate(navigation.ActionNext)
	assert.False(t, ok)
	assert.Equal(t, "b2", cursor)
	assert.Equal(t, "b2", s.Cursor())
}

func TestSelect(t *testing.T) {
	s := newTestSession(t, sample()...)

	require.NoError(t, s.Select("a2"))
	assert.Equal(t, "a2", s.Cursor())

	err := s.Select("missing")
	assert.True(t, errors.Is(err, core.ErrNotFound))
	assert.Equal(t, "a2", s.Cursor())

	require.NoError(t, s.Select(""))
	assert.Equal(t, "", s.Cursor())
}

func TestSeek_ClampsNegative(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.Seek(-3))
	assert.Equal(t, 0.0, s.Playhead())
	require.NoError(t, s.Seek(12.5))
	assert.Equal(t, 12.5, s.Playhead())
}

func TestSeek_RejectsNonFinite(t *testing.T) {
	s := newTestSession(t, sample()...)
	require.NoError(t, s.Seek(12.5))

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.ErrorIs(t, s.Seek(v), ErrInvalidPosition, "%v", v)
	}
	assert.Equal(t, 12.5, s.Playhead(), "playhead unchanged")
}

func TestConfirmAndReject(t *testing.T) {
	s := newTestSession(t, sample()...)
	require.NoError(t, s.Select("a1"))

	c, err := s.Confirm()
	require.NoError(t, err)
	assert.True(t, c.Marker.HasTag("ok"))
	assert.Equal(t, core.StatusConfirmed, s.Layout().Status("a1"))
	assert.Equal(t, uint64(2), s.Version())

	c, err = s.Reject()
	require.NoError(t, err)
	assert.True(t, c.Marker.HasTag("no"))
	assert.False(t, c.Marker.HasTag("ok"), "rejecting clears the confirmation")
	assert.Equal(t, core.StatusRejected, s.Layout().Status("a1"))

	// Confirming twice must not duplicate the tag.
	_, err = s.Confirm()
	require.NoError(t, err)
	c, err = s.Confirm()
	require.NoError(t, err)
	assert.Len(t, c.Marker.Tags, 1)
}

func TestConfirm_Errors(t *testing.T) {
	s := newTestSession(t, sample()...)

	_, err := s.Confirm()
	assert.ErrorIs(t, err, ErrNoSelection)

	settings := testSettings()
	settings.Layout.StatusTags.ConfirmedTagID = ""
	s.UpdateSettings(settings)
	require.NoError(t, s.Select("a1"))

	_, err = s.Confirm()
	assert.ErrorIs(t, err, ErrNoStatusTag)
}

func TestMutation_DoesNotAlterEarlierLayout(t *testing.T) {
	s := newTestSession(t, sample()...)
	before := s.Layout()
	require.NoError(t, s.Select("a1"))

	_, err := s.Confirm()
	require.NoError(t, err)

	assert.Equal(t, core.StatusPending, before.Status("a1"))
	m, _ := before.Marker("a1")
	assert.False(t, m.HasTag("ok"))
	assert.NotSame(t, before, s.Layout())
}

func TestLayout_MemoizedUntilChange(t *testing.T) {
	s := newTestSession(t, sample()...)

	l1 := s.Layout()
	s.Seek(4)
	require.NoError(t, s.Select("a1"))
	assert.Same(t, l1, s.Layout(), "cursor and playhead do not invalidate the layout")

	settings := testSettings()
	settings.Layout.Options.Overlap = 5
	s.UpdateSettings(settings)
	assert.NotSame(t, l1, s.Layout(), "settings changes do")
}

func TestDelete_MovesCursor(t *testing.T) {
	s := newTestSession(t, sample()...)
	require.NoError(t, s.Select("b1"))

	c, err := s.Delete()
	require.NoError(t, err)
	assert.True(t, c.Deleted)
	assert.Equal(t, "b1", c.Marker.ID)
	assert.Equal(t, "a2", s.Cursor(), "next chronological marker")
	assert.False(t, s.Layout().Contains("b1"))

	require.NoError(t, s.Select("b2"))
	_, err = s.Delete()
	require.NoError(t, err)
	assert.Equal(t, "a2", s.Cursor(), "last marker falls back to the previous one")
}

func TestDelete_LastRemainingMarker(t *testing.T) {
	s := newTestSession(t, mk("only", "A", 1, 2))
	require.NoError(t, s.Select("only"))

	_, err := s.Delete()
	require.NoError(t, err)
	assert.Equal(t, "", s.Cursor())
	assert.Equal(t, 0, s.Layout().Len())
}

func TestSplit(t *testing.T) {
	s := newTestSession(t, sample()...)
	require.NoError(t, s.Select("a1"))
	s.Seek(4)

	first, second, err := s.Split()
	require.NoError(t, err)

	assert.Equal(t, "a1", first.Marker.ID)
	assert.Equal(t, 4.0, *first.Marker.EndSeconds)

	_, err = uuid.Parse(second.Marker.ID)
	assert.NoError(t, err)
	assert.Equal(t, 4.0, second.Marker.StartSeconds)
	assert.Equal(t, 10.0, *second.Marker.EndSeconds)
	assert.Equal(t, "A", second.Marker.PrimaryTag.Name)

	assert.Equal(t, "a1", s.Cursor())
	l := s.Layout()
	assert.True(t, l.Contains(second.Marker.ID))
	assert.Equal(t, 5, l.Len())
}

func TestSplit_PointMarkerUsesOverlap(t *testing.T) {
	s := newTestSession(t, mk("p", "A", 10, 0))
	require.NoError(t, s.Select("p"))
	s.Seek(25)

	first, second, err := s.Split()
	require.NoError(t, err)
	assert.Equal(t, 25.0, *first.Marker.EndSeconds)
	assert.Equal(t, 10+layout.DefaultOptions().Overlap, *second.Marker.EndSeconds)
}

func TestSplit_Outside(t *testing.T) {
	s := newTestSession(t, sample()...)
	require.NoError(t, s.Select("a1"))

	for _, at := range []float64{0, 10, 11} {
		s.Seek(at)
		_, _, err := s.Split()
		assert.ErrorIs(t, err, ErrSplitOutside, "at %v", at)
	}
	assert.Equal(t, uint64(1), s.Version())
}

func TestCreate(t *testing.T) {
	s := newTestSession(t, sample()...)
	s.Seek(42)

	c, err := s.Create(core.Tag{ID: "tag-C", Name: "C"}, "new", 6)
	require.NoError(t, err)

	assert.Equal(t, c.Marker.ID, s.Cursor())
	assert.Equal(t, "scene", c.Marker.SceneID)
	assert.Equal(t, 42.0, c.Marker.StartSeconds)
	assert.Equal(t, 48.0, *c.Marker.EndSeconds)
	assert.Equal(t, core.StatusPending, s.Layout().Status(c.Marker.ID))

	point, err := s.Create(core.Tag{ID: "tag-C"}, "", 0)
	require.NoError(t, err)
	assert.False(t, point.Marker.HasEnd())

	_, err = s.Create(core.Tag{}, "", 0)
	assert.Error(t, err)

	_, err = s.Create(core.Tag{ID: "tag-unknown"}, "", 0)
	assert.ErrorIs(t, err, ErrUnknownTag)
}

func groupedSession(t *testing.T) *Session {
	t.Helper()
	acts := core.Tag{ID: "g1", Name: "1. Acts", Parents: []core.Tag{{ID: "P", Name: "Groups"}}}
	kissing := core.Tag{ID: "t1", Name: "Kissing", Parents: []core.Tag{acts}}
	markers := []core.Marker{
		{ID: "k1", SceneID: "scene", StartSeconds: 10, EndSeconds: core.Seconds(20), PrimaryTag: kissing},
		{ID: "x1", SceneID: "scene", StartSeconds: 0, EndSeconds: core.Seconds(5), PrimaryTag: core.Tag{ID: "t9", Name: "Alpha"}},
	}
	settings := testSettings()
	settings.Layout.Sort = core.SortConfig{MarkerGroupParentID: "P"}

	engine, err := layout.NewEngine(nil)
	require.NoError(t, err)
	return New("scene", markers, settings, engine, nil)
}

func laneSummary(s *Session) []string {
	var out []string
	for _, lane := range s.Layout().Lanes {
		group := "-"
		if lane.Group != nil {
			group = lane.Group.Name
		}
		out = append(out, fmt.Sprintf("%s(%s)x%d", lane.Name, group, len(lane.Markers)))
	}
	return out
}

func TestCreate_JoinsExistingTagLane(t *testing.T) {
	s := groupedSession(t)
	require.Equal(t, []string{"Kissing(1. Acts)x1", "Alpha(-)x1"}, laneSummary(s))

	// no name given: the tag is resolved from the scene
	c, err := s.Create(core.Tag{ID: "t1"}, "", 0)
	require.NoError(t, err)
	assert.Equal(t, "Kissing", c.Marker.PrimaryTag.Name)
	require.Len(t, c.Marker.PrimaryTag.Parents, 1)
	assert.Equal(t, []string{"Kissing(1. Acts)x2", "Alpha(-)x1"}, laneSummary(s))

	// a name is given and the marker starts before the lane's others: the
	// parent chain is kept and the lane keeps its group
	c, err = s.Create(core.Tag{ID: "t1", Name: "Kissing"}, "", 5)
	require.NoError(t, err)
	assert.Equal(t, "g1", c.Marker.PrimaryTag.Parents[0].ID)
	assert.Equal(t, []string{"Kissing(1. Acts)x3", "Alpha(-)x1"}, laneSummary(s))
}

func TestReplace(t *testing.T) {
	s := newTestSession(t, sample()...)
	require.NoError(t, s.Select("a2"))

	s.Replace([]core.Marker{mk("a2", "A", 20, 25), mk("c1", "C", 1, 2)})
	assert.Equal(t, "a2", s.Cursor())

	s.Replace([]core.Marker{mk("c1", "C", 1, 2)})
	assert.Equal(t, "", s.Cursor())
}

func TestLogAttrs(t *testing.T) {
	s := newTestSession(t, sample()...)
	require.NoError(t, s.Select("a1"))

	attrs := s.LogAttrs()
	require.Len(t, attrs, 2)
	assert.Equal(t, "scene", attrs[0].Value.String())
	assert.Equal(t, "a1", attrs[1].Value.String())
}

func TestConcurrentUse(t *testing.T) {
	s := newTestSession(t, sample()...)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Navigate(navigation.Actions()[(i+j)%len(navigation.Actions())])
				s.Seek(float64(j))
				_ = s.Layout().Len()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, uint64(1), s.Version())
}
