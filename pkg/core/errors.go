package core

import "errors"

// ErrNotFound is returned by marker stores when no marker has the given id.
var ErrNotFound = errors.New("marker not found")
