package watcher

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDebounce = errors.New("debounce window must not be negative")
	ErrClosed          = errors.New("watcher is closed")
)

// InitError reports that the observer could not be created. It is fatal to
// callers that depend on reloads.
type InitError struct {
	Err error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("setting up file watcher: %v", e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// WatchError reports a failed watch or unwatch of a single path.
type WatchError struct {
	Op   string
	Path string
	Err  error
}

func (e *WatchError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

func (e *WatchError) Unwrap() error {
	return e.Err
}
