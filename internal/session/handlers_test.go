package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/markerlane/markerlane/internal/dispatcher"
	"github.com/markerlane/markerlane/internal/navigation"
	"github.com/markerlane/markerlane/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// fakeStore records writes in memory.
type fakeStore struct {
	mu      sync.Mutex
	saved   map[string]core.Marker
	deleted []string
	failOn  string
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: make(map[string]core.Marker)}
}

func (f *fakeStore) SaveMarker(m *core.Marker) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m.ID == f.failOn {
		return errors.New("write failed")
	}
	f.saved[m.ID] = *m
	return nil
}

func (f *fakeStore) DeleteMarker(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.saved[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.saved, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func newTestDispatcher(t *testing.T, s *Session, store Store) *dispatcher.Dispatcher {
	t.Helper()
	d, err := dispatcher.New(nopLogger{})
	require.NoError(t, err)
	t.Cleanup(d.Close)
	RegisterHandlers(d, s, store)
	return d
}

func dispatch(t *testing.T, d *dispatcher.Dispatcher, cmd string, args ...string) any {
	t.Helper()
	result, err := d.Dispatch(dispatcher.Event{Command: cmd, Args: args})
	require.NoError(t, err, cmd)
	return result
}

func TestRegisterHandlers_Commands(t *testing.T) {
	s := newTestSession(t, sample()...)
	d := newTestDispatcher(t, s, newFakeStore())

	for _, a := range navigation.Actions() {
		assert.True(t, d.HasHandler(a.String()), a.String())
	}
	for _, cmd := range []string{"seek", "select", "confirm", "reject", "delete", "split", "create", CommandSave, CommandDelete} {
		assert.True(t, d.HasHandler(cmd), cmd)
	}
}

func TestRegisterHandlers_NilStore(t *testing.T) {
	s := newTestSession(t, sample()...)
	d := newTestDispatcher(t, s, nil)

	assert.False(t, d.HasHandler(CommandSave))

	dispatch(t, d, "select", "a1")
	assert.Equal(t, "a1", dispatch(t, d, "confirm"))
	assert.Equal(t, core.StatusConfirmed, s.Layout().Status("a1"))
}

func TestNavigationCommands(t *testing.T) {
	s := newTestSession(t, sample()...)
	d := newTestDispatcher(t, s, nil)

	assert.Equal(t, "a1", dispatch(t, d, "next"))
	assert.Equal(t, "b1", dispatch(t, d, "next"))
	assert.Equal(t, "a1", dispatch(t, d, "up"), "lane A, closest start to the playhead")
	assert.Equal(t, "a1", dispatch(t, d, "up"), "up from the first lane keeps the cursor")
	assert.Equal(t, "b1", dispatch(t, d, "down"))
	assert.Equal(t, "b2", dispatch(t, d, "right"))
	assert.Equal(t, "a2", dispatch(t, d, "previous"))
}

func TestSeekAndSelect(t *testing.T) {
	s := newTestSession(t, sample()...)
	d := newTestDispatcher(t, s, nil)

	assert.Equal(t, 21.5, dispatch(t, d, "seek", "21.5"))

	_, err := d.Dispatch(dispatcher.Event{Command: "seek"})
	assert.Error(t, err)
	_, err = d.Dispatch(dispatcher.Event{Command: "seek", Args: []string{"soon"}})
	assert.Error(t, err)
	for _, v := range []string{"NaN", "Inf", "-Inf"} {
		_, err = d.Dispatch(dispatcher.Event{Command: "seek", Args: []string{v}})
		assert.ErrorIs(t, err, ErrInvalidPosition, v)
	}
	assert.Equal(t, 21.5, s.Playhead())

	assert.Equal(t, "a2", dispatch(t, d, "select", "a2"))
	assert.Equal(t, "", dispatch(t, d, "select"))

	_, err = d.Dispatch(dispatcher.Event{Command: "select", Args: []string{"zzz"}})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMutationsPersist(t *testing.T) {
	s := newTestSession(t, sample()...)
	store := newFakeStore()
	d := newTestDispatcher(t, s, store)

	dispatch(t, d, "select", "a1")
	dispatch(t, d, "confirm")
	dispatch(t, d, "seek", "4")
	dispatch(t, d, "split")
	dispatch(t, d, "seek", "50")
	created := dispatch(t, d, "create", "tag-C", "5", "Close", "up")
	d.Close()

	store.mu.Lock()
	defer store.mu.Unlock()

	require.Len(t, store.saved, 3)
	a1 := store.saved["a1"]
	assert.True(t, a1.HasTag("ok"))
	assert.Equal(t, 4.0, *a1.EndSeconds, "the queued confirm save persists the latest state")

	c := store.saved[created.(string)]
	assert.Equal(t, "Close up", c.PrimaryTag.Name)
	assert.Equal(t, 55.0, *c.EndSeconds)
}

func TestDeletePersists(t *testing.T) {
	s := newTestSession(t, sample()...)
	store := newFakeStore()
	store.saved["b1"] = sample()[2]
	d := newTestDispatcher(t, s, store)

	dispatch(t, d, "select", "b1")
	assert.Equal(t, "a2", dispatch(t, d, "delete"))

	// Deleting a marker the store never saw is not an error.
	dispatch(t, d, "delete")
	d.Close()

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, []string{"b1"}, store.deleted)
	assert.Empty(t, store.saved)
}

func TestMutationErrors(t *testing.T) {
	s := newTestSession(t, sample()...)
	d := newTestDispatcher(t, s, newFakeStore())

	for _, cmd := range []string{"confirm", "reject", "delete", "split"} {
		_, err := d.Dispatch(dispatcher.Event{Command: cmd})
		assert.ErrorIs(t, err, ErrNoSelection, cmd)
	}

	_, err := d.Dispatch(dispatcher.Event{Command: "create"})
	assert.Error(t, err)

	_, err = d.Dispatch(dispatcher.Event{Command: "create", Args: []string{"tag-Z", "5"}})
	assert.ErrorIs(t, err, ErrUnknownTag)
}

func TestCreateCommand_UsesSceneTag(t *testing.T) {
	s := newTestSession(t, sample()...)
	d := newTestDispatcher(t, s, nil)

	created := dispatch(t, d, "create", "tag-A", "2")
	m, ok := s.Layout().Marker(created.(string))
	require.True(t, ok)
	assert.Equal(t, "A", m.PrimaryTag.Name)
	assert.Len(t, s.Layout().Lanes, 2, "no new lane")
}
