package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/markerlane/markerlane/internal/dispatcher"
	"github.com/markerlane/markerlane/internal/navigation"
	"github.com/markerlane/markerlane/pkg/core"
)

// Persistence commands are queued on the dispatcher and run in order on its
// worker, so review keystrokes never wait on the store.
const (
	CommandSave   = "persist:save"
	CommandDelete = "persist:delete"
)

// Store is the subset of storage.Backend the session writes through.
type Store interface {
	SaveMarker(m *core.Marker) error
	DeleteMarker(id string) error
}

// RegisterHandlers wires every review command to d. Navigation commands
// return the new cursor. With a nil store, mutations stay in memory.
func RegisterHandlers(d *dispatcher.Dispatcher, s *Session, store Store) {
	for _, action := range navigation.Actions() {
		d.Register(action.String(), func(e dispatcher.Event) (any, error) {
			cursor, _ := s.Navigate(action)
			return cursor, nil
		}, dispatcher.Logged())
	}

	d.Register("seek", func(e dispatcher.Event) (any, error) {
		if len(e.Args) != 1 {
			return nil, fmt.Errorf("seek: expected 1 argument, got %d", len(e.Args))
		}
		sec, err := strconv.ParseFloat(e.Args[0], 64)
		if err != nil {
			return nil, fmt.Errorf("seek: %w", err)
		}
		if err := s.Seek(sec); err != nil {
			return nil, err
		}
		return s.Playhead(), nil
	}, dispatcher.Logged())

	d.Register("select", func(e dispatcher.Event) (any, error) {
		id := ""
		if len(e.Args) > 0 {
			id = e.Args[0]
		}
		if err := s.Select(id); err != nil {
			return nil, err
		}
		return s.Cursor(), nil
	}, dispatcher.Logged())

	persist := func(changes ...Change) error {
		if store == nil {
			return nil
		}
		var errs []error
		for _, c := range changes {
			cmd := CommandSave
			if c.Deleted {
				cmd = CommandDelete
			}
			if _, err := d.Dispatch(dispatcher.Event{Command: cmd, Args: []string{c.Marker.ID}}); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	mutation := func(name string, fn func() (Change, error)) {
		d.Register(name, func(e dispatcher.Event) (any, error) {
			c, err := fn()
			if err != nil {
				return nil, err
			}
			return s.Cursor(), persist(c)
		}, dispatcher.Logged())
	}
	mutation("confirm", s.Confirm)
	mutation("reject", s.Reject)
	mutation("delete", s.Delete)

	d.Register("split", func(e dispatcher.Event) (any, error) {
		first, second, err := s.Split()
		if err != nil {
			return nil, err
		}
		return s.Cursor(), persist(first, second)
	}, dispatcher.Logged())

	// create TAG_ID [DURATION] [TAG NAME...]
	d.Register("create", func(e dispatcher.Event) (any, error) {
		if len(e.Args) == 0 {
			return nil, fmt.Errorf("create: expected a tag id")
		}
		tag := core.Tag{ID: e.Args[0]}
		duration := 0.0
		rest := e.Args[1:]
		if len(rest) > 0 {
			if v, err := strconv.ParseFloat(rest[0], 64); err == nil {
				duration = v
				rest = rest[1:]
			}
		}
		tag.Name = strings.Join(rest, " ")

		c, err := s.Create(tag, "", duration)
		if err != nil {
			return nil, err
		}
		return s.Cursor(), persist(c)
	}, dispatcher.Logged())

	if store == nil {
		return
	}

	// The marker is read back from the session at write time, so several
	// queued saves of one marker all persist its latest state.
	d.Register(CommandSave, func(e dispatcher.Event) (any, error) {
		id := e.Args[0]
		for _, m := range s.Markers() {
			if m.ID == id {
				return nil, store.SaveMarker(&m)
			}
		}
		return nil, nil
	}, dispatcher.Buffered(256), dispatcher.Blocking(), dispatcher.Logged())

	d.Register(CommandDelete, func(e dispatcher.Event) (any, error) {
		err := store.DeleteMarker(e.Args[0])
		if errors.Is(err, core.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}, dispatcher.Buffered(256), dispatcher.Blocking(), dispatcher.Logged())
}
