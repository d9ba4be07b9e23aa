package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"shaderplayground/internal/logging"
)

// Subscriber is the directory-granular side of an observer.
type Subscriber interface {
	Add(dir string) error
	Remove(dir string) error
}

// Tracker maps the files of interest onto directory subscriptions. A
// directory stays subscribed exactly while at least one of its files is
// tracked.
type Tracker struct {
	subscriber Subscriber
	watching   map[string]map[string]struct{}
	logger     *logging.Logger
}

func NewTracker(subscriber Subscriber, logger *logging.Logger) *Tracker {
	return &Tracker{
		subscriber: subscriber,
		watching:   make(map[string]map[string]struct{}),
		logger:     logger,
	}
}

// Canonicalize resolves path to an absolute, symlink-free (dir, name) pair.
// The path must exist.
func Canonicalize(path string) (string, string, error) {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return "", "", err
	}
	resolved, err := filepath.EvalSymlinks(absolute)
	if err != nil {
		return "", "", err
	}
	return filepath.Dir(resolved), filepath.Base(resolved), nil
}

// canonicalizeGone resolves the directory of a path whose file may already
// have been removed.
func canonicalizeGone(path string) (string, string, error) {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return "", "", err
	}
	dir, err := filepath.EvalSymlinks(filepath.Dir(absolute))
	if err != nil {
		return "", "", err
	}
	return dir, filepath.Base(absolute), nil
}

func (t *Tracker) Watch(path string) error {
	dir, name, err := Canonicalize(path)
	if err != nil {
		return &WatchError{Op: "watch", Path: path, Err: err}
	}
	info, err := os.Stat(filepath.Join(dir, name))
	if err != nil {
		return &WatchError{Op: "watch", Path: path, Err: err}
	}
	if info.IsDir() {
		return &WatchError{Op: "watch", Path: path, Err: errors.New("path is a directory")}
	}

	files, subscribed := t.watching[dir]
	if !subscribed {
		t.logger.Debug("watching dir", map[string]string{"dir": dir})
		if err := t.subscriber.Add(dir); err != nil {
			return &WatchError{Op: "watch", Path: path, Err: err}
		}
		files = make(map[string]struct{})
		t.watching[dir] = files
	}
	files[name] = struct{}{}
	return nil
}

func (t *Tracker) Unwatch(path string) error {
	t.logger.Debug("unwatching", map[string]string{"path": path})
	dir, name, err := Canonicalize(path)
	if err != nil {
		dir, name, err = canonicalizeGone(path)
		if err != nil {
			return &WatchError{Op: "unwatch", Path: path, Err: err}
		}
	}

	files, ok := t.watching[dir]
	if !ok {
		return nil
	}
	delete(files, name)
	if len(files) > 0 {
		return nil
	}
	delete(t.watching, dir)
	if err := t.subscriber.Remove(dir); err != nil {
		return &WatchError{Op: "unwatch", Path: path, Err: err}
	}
	return nil
}

// UnwatchAll drops every subscription. The tracked set is cleared even when
// an unsubscribe fails; the first failure is returned.
func (t *Tracker) UnwatchAll() error {
	var first error
	for _, dir := range t.Dirs() {
		t.logger.Debug("unwatching dir", map[string]string{
			"dir":   dir,
			"files": joinNames(t.watching[dir]),
		})
		delete(t.watching, dir)
		if err := t.subscriber.Remove(dir); err != nil && first == nil {
			first = &WatchError{Op: "unwatch", Path: dir, Err: err}
		}
	}
	return first
}

// Matches reports whether path names a tracked file.
func (t *Tracker) Matches(path string) bool {
	dir, name, err := Canonicalize(path)
	if err != nil {
		return false
	}
	files, ok := t.watching[dir]
	if !ok {
		return false
	}
	_, ok = files[name]
	return ok
}

// Dirs returns the subscribed directories in sorted order.
func (t *Tracker) Dirs() []string {
	dirs := make([]string, 0, len(t.watching))
	for dir := range t.watching {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

func joinNames(files map[string]struct{}) string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}
