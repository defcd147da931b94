// Package session holds the state of one scene review: the marker snapshot,
// the cursor and the playhead. Navigation runs against the memoized layout
// of the current snapshot, and every mutation bumps the snapshot version so
// the next read rebuilds it.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/markerlane/markerlane/internal/layout"
	"github.com/markerlane/markerlane/internal/navigation"
	"github.com/markerlane/markerlane/internal/status"
	"github.com/markerlane/markerlane/internal/tracks"
	"github.com/markerlane/markerlane/pkg/core"
)

var (
	// ErrNoSelection is returned by mutations that need a selected marker.
	ErrNoSelection = errors.New("no marker selected")
	// ErrNoStatusTag is returned when the status tag to apply is not configured.
	ErrNoStatusTag = errors.New("status tag not configured")
	// ErrSplitOutside is returned when the split point is not strictly inside the marker.
	ErrSplitOutside = errors.New("split point outside marker")
	// ErrUnknownTag is returned by Create for a tag id no marker uses when
	// no name was given for it.
	ErrUnknownTag = errors.New("unknown tag")
	// ErrInvalidPosition is returned by Seek for NaN or infinite positions.
	ErrInvalidPosition = errors.New("invalid playhead position")
)

// Settings bundles everything that shapes layout and navigation.
type Settings struct {
	Layout     layout.Settings
	Navigation navigation.Options
}

// Change describes one persisted mutation.
type Change struct {
	Deleted bool
	Marker  core.Marker
}

// Session is safe for concurrent use.
type Session struct {
	mu sync.RWMutex

	sceneID  string
	markers  []core.Marker
	version  uint64
	cursor   string
	playhead float64
	settings Settings

	engine *layout.Engine
	log    *slog.Logger
}

// New creates a session over a copy of markers. engine memoizes on the
// session's snapshot version, so it must not be shared between sessions; a
// nil engine rebuilds the layout on every read.
func New(sceneID string, markers []core.Marker, settings Settings, engine *layout.Engine, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		sceneID:  sceneID,
		markers:  slices.Clone(markers),
		version:  1,
		settings: settings,
		engine:   engine,
		log:      log,
	}
}

// SceneID returns the scene under review.
func (s *Session) SceneID() string {
	return s.sceneID
}

// Version returns the snapshot version.
func (s *Session) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Cursor returns the selected marker id, or "" without a selection.
func (s *Session) Cursor() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor
}

// Playhead returns the current video position in seconds.
func (s *Session) Playhead() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playhead
}

// Settings returns the current settings.
func (s *Session) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Markers returns a copy of the marker snapshot.
func (s *Session) Markers() []core.Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.markers)
}

// LogAttrs reports the scene and cursor, for logging.ContextHandler.
func (s *Session) LogAttrs() []slog.Attr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return []slog.Attr{
		slog.String("scene", s.sceneID),
		slog.String("cursor", s.cursor),
	}
}

// Layout returns the layout of the current snapshot.
func (s *Session) Layout() *layout.Layout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layoutLocked()
}

func (s *Session) layoutLocked() *layout.Layout {
	if s.engine == nil {
		return layout.Build(s.markers, s.settings.Layout, s.log)
	}
	return s.engine.Layout(s.version, s.markers, s.settings.Layout)
}

// UpdateSettings replaces the settings. The layout memo keys on the settings
// fingerprint, so no version bump is needed.
func (s *Session) UpdateSettings(settings Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

// Seek moves the playhead. Negative positions clamp to zero.
func (s *Session) Seek(seconds float64) error {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return fmt.Errorf("seek %v: %w", seconds, ErrInvalidPosition)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playhead = max(seconds, 0)
	return nil
}

// Select sets the cursor to id, or clears it when id is empty. Unknown ids
// are rejected.
func (s *Session) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" && s.indexLocked(id) < 0 {
		return fmt.Errorf("select %s: %w", id, core.ErrNotFound)
	}
	s.cursor = id
	return nil
}

// Navigate applies a navigation action. When the action finds nothing the
// cursor is left alone and ok is false.
func (s *Session) Navigate(action navigation.Action) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.layoutLocked()
	next, ok := navigation.Navigate(l, action, s.cursor, s.playhead, s.settings.Navigation)
	if ok {
		s.cursor = next
	}
	return s.cursor, ok
}

// Confirm tags the selected marker as confirmed, clearing a rejection.
func (s *Session) Confirm() (Change, error) {
	tags := s.Settings().Layout.StatusTags
	return s.retag(tags.ConfirmedTagID, tags.RejectedTagID)
}

// Reject tags the selected marker as rejected, clearing a confirmation.
func (s *Session) Reject() (Change, error) {
	tags := s.Settings().Layout.StatusTags
	return s.retag(tags.RejectedTagID, tags.ConfirmedTagID)
}

func (s *Session) retag(add, remove string) (Change, error) {
	if add == "" {
		return Change{}, ErrNoStatusTag
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(s.cursor)
	if i < 0 {
		return Change{}, ErrNoSelection
	}

	m := s.markers[i]
	tags := slices.DeleteFunc(slices.Clone(m.Tags), func(t core.Tag) bool {
		return t.ID == add || (remove != "" && t.ID == remove)
	})
	m.Tags = append(tags, core.Tag{ID: add})
	s.replaceLocked(i, m)

	s.log.Info("Marker reviewed", "marker", m.ID, "status", status.Classify(m, s.settings.Layout.StatusTags).String())
	return Change{Marker: m}, nil
}

// Delete removes the selected marker. The cursor moves to the next marker in
// chronological order, or the previous one when the last was deleted.
func (s *Session) Delete() (Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(s.cursor)
	if i < 0 {
		return Change{}, ErrNoSelection
	}

	l := s.layoutLocked()
	m := s.markers[i]
	next, ok := navigation.NextChronological(l, m.ID)
	if !ok {
		next, _ = navigation.PreviousChronological(l, m.ID)
	}

	s.markers = slices.Delete(slices.Clone(s.markers), i, i+1)
	s.version++
	s.cursor = next

	s.log.Info("Marker deleted", "marker", m.ID)
	return Change{Deleted: true, Marker: m}, nil
}

// Split cuts the selected marker at the playhead. The selected marker keeps
// the first half and a new marker with a fresh id takes the rest. Point
// markers are split within their overlap-duration interval.
func (s *Session) Split() (first, second Change, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(s.cursor)
	if i < 0 {
		return Change{}, Change{}, ErrNoSelection
	}

	m := s.markers[i]
	end, _ := tracks.EffectiveEnd(m, s.settings.Layout.Options.Overlap)
	at := s.playhead
	if at <= m.StartSeconds || at >= end {
		return Change{}, Change{}, fmt.Errorf("split %s at %.3f: %w", m.ID, at, ErrSplitOutside)
	}

	tail := m
	tail.ID = uuid.NewString()
	tail.StartSeconds = at
	tail.EndSeconds = core.Seconds(end)
	tail.Tags = slices.Clone(m.Tags)

	m.EndSeconds = core.Seconds(at)
	s.replaceLocked(i, m)
	s.markers = append(s.markers, tail)

	s.log.Info("Marker split", "marker", m.ID, "new", tail.ID, "at", at)
	return Change{Marker: m}, Change{Marker: tail}, nil
}

// Create adds a marker with the given primary tag starting at the playhead
// and selects it. A non-positive duration creates a point marker. When a
// marker of the scene already uses tag.ID, its full primary tag (name and
// parent chain) is used so the new marker joins that lane.
func (s *Session) Create(tag core.Tag, title string, duration float64) (Change, error) {
	if tag.ID == "" {
		return Change{}, fmt.Errorf("create: primary tag id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if known, ok := s.primaryTagLocked(tag.ID); ok {
		tag = known
	} else if tag.Name == "" {
		return Change{}, fmt.Errorf("create %s: %w", tag.ID, ErrUnknownTag)
	}

	m := core.Marker{
		ID:           uuid.NewString(),
		SceneID:      s.sceneID,
		Title:        title,
		StartSeconds: s.playhead,
		PrimaryTag:   tag,
	}
	if duration > 0 {
		m.EndSeconds = core.Seconds(s.playhead + duration)
	}

	s.markers = append(slices.Clone(s.markers), m)
	s.version++
	s.cursor = m.ID

	s.log.Info("Marker created", "marker", m.ID, "tag", tag.Name, "start", m.StartSeconds)
	return Change{Marker: m}, nil
}

// Replace swaps in a fresh marker set, e.g. after a sync. The cursor is kept
// if its marker survived.
func (s *Session) Replace(markers []core.Marker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.markers = slices.Clone(markers)
	s.version++
	if s.indexLocked(s.cursor) < 0 {
		s.cursor = ""
	}
}

// primaryTagLocked returns the richest primary tag with the given id: one
// carrying a parent chain wins over a bare one.
func (s *Session) primaryTagLocked(id string) (core.Tag, bool) {
	var found core.Tag
	ok := false
	for _, m := range s.markers {
		if m.PrimaryTag.ID != id {
			continue
		}
		if !ok || (len(found.Parents) == 0 && len(m.PrimaryTag.Parents) > 0) {
			found = m.PrimaryTag
			ok = true
		}
	}
	return found, ok
}

func (s *Session) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.markers, func(m core.Marker) bool { return m.ID == id })
}

// replaceLocked copies the slice before writing so layouts built from the
// previous snapshot stay intact.
func (s *Session) replaceLocked(i int, m core.Marker) {
	s.markers = slices.Clone(s.markers)
	s.markers[i] = m
	s.version++
}
