package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

type recordingSubscriber struct {
	added   []string
	removed []string
	failAdd error
	active  map[string]bool
}

func newRecordingSubscriber() *recordingSubscriber {
	return &recordingSubscriber{active: make(map[string]bool)}
}

func (s *recordingSubscriber) Add(dir string) error {
	if s.failAdd != nil {
		return s.failAdd
	}
	s.added = append(s.added, dir)
	s.active[dir] = true
	return nil
}

func (s *recordingSubscriber) Remove(dir string) error {
	s.removed = append(s.removed, dir)
	delete(s.active, dir)
	return nil
}

func writeShader(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("void main() {}\n"), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func canonicalDir(t *testing.T, path string) string {
	t.Helper()
	dir, _, err := Canonicalize(path)
	if err != nil {
		t.Fatalf("canonicalize %s: %v", path, err)
	}
	return dir
}

func TestTrackerWatchTwoDirectories(t *testing.T) {
	subscriber := newRecordingSubscriber()
	tracker := NewTracker(subscriber, nil)
	pathA := writeShader(t, t.TempDir(), "a.frag")
	pathB := writeShader(t, t.TempDir(), "b.frag")

	if err := tracker.Watch(pathA); err != nil {
		t.Fatalf("watch a: %v", err)
	}
	if err := tracker.Watch(pathB); err != nil {
		t.Fatalf("watch b: %v", err)
	}

	if got := len(tracker.Dirs()); got != 2 {
		t.Fatalf("expected 2 subscribed dirs, got %d", got)
	}
	if len(subscriber.active) != 2 {
		t.Fatalf("expected 2 active subscriptions, got %v", subscriber.active)
	}
}

func TestTrackerUnwatchAllThenWatch(t *testing.T) {
	subscriber := newRecordingSubscriber()
	tracker := NewTracker(subscriber, nil)
	pathA := writeShader(t, t.TempDir(), "a.frag")
	pathB := writeShader(t, t.TempDir(), "b.frag")

	if err := tracker.Watch(pathA); err != nil {
		t.Fatalf("watch a: %v", err)
	}
	if err := tracker.UnwatchAll(); err != nil {
		t.Fatalf("unwatch all: %v", err)
	}
	if err := tracker.Watch(pathB); err != nil {
		t.Fatalf("watch b: %v", err)
	}

	want := []string{canonicalDir(t, pathB)}
	if got := tracker.Dirs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected dirs %v, got %v", want, got)
	}
	if len(subscriber.active) != 1 || !subscriber.active[want[0]] {
		t.Fatalf("expected only %s subscribed, got %v", want[0], subscriber.active)
	}
	if tracker.Matches(pathA) {
		t.Fatalf("expected %s to no longer match", pathA)
	}
	if !tracker.Matches(pathB) {
		t.Fatalf("expected %s to match", pathB)
	}
}

func TestTrackerSharesDirectorySubscription(t *testing.T) {
	subscriber := newRecordingSubscriber()
	tracker := NewTracker(subscriber, nil)
	dir := t.TempDir()
	pathA := writeShader(t, dir, "a.frag")
	pathB := writeShader(t, dir, "b.frag")

	if err := tracker.Watch(pathA); err != nil {
		t.Fatalf("watch a: %v", err)
	}
	if err := tracker.Watch(pathB); err != nil {
		t.Fatalf("watch b: %v", err)
	}
	if len(subscriber.added) != 1 {
		t.Fatalf("expected one subscribe call, got %v", subscriber.added)
	}

	if err := tracker.Unwatch(pathA); err != nil {
		t.Fatalf("unwatch a: %v", err)
	}
	if len(subscriber.removed) != 0 {
		t.Fatalf("expected dir kept while b.frag is watched, removed %v", subscriber.removed)
	}

	if err := tracker.Unwatch(pathB); err != nil {
		t.Fatalf("unwatch b: %v", err)
	}
	if len(subscriber.removed) != 1 || len(tracker.Dirs()) != 0 {
		t.Fatalf("expected dir dropped after last file, removed %v dirs %v", subscriber.removed, tracker.Dirs())
	}
}

func TestTrackerUnwatchRemovedFile(t *testing.T) {
	subscriber := newRecordingSubscriber()
	tracker := NewTracker(subscriber, nil)
	path := writeShader(t, t.TempDir(), "gone.frag")
	if err := tracker.Watch(path); err != nil {
		t.Fatalf("watch: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if err := tracker.Unwatch(path); err != nil {
		t.Fatalf("unwatch: %v", err)
	}
	if len(tracker.Dirs()) != 0 {
		t.Fatalf("expected dir unsubscribed, got %v", tracker.Dirs())
	}
}

func TestTrackerWatchMissingFile(t *testing.T) {
	subscriber := newRecordingSubscriber()
	tracker := NewTracker(subscriber, nil)

	err := tracker.Watch(filepath.Join(t.TempDir(), "missing.frag"))

	var watchErr *WatchError
	if !errors.As(err, &watchErr) {
		t.Fatalf("expected WatchError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist cause, got %v", err)
	}
	if len(subscriber.added) != 0 || len(tracker.Dirs()) != 0 {
		t.Fatalf("expected nothing subscribed")
	}
}

func TestTrackerWatchRejectsDirectory(t *testing.T) {
	tracker := NewTracker(newRecordingSubscriber(), nil)

	if err := tracker.Watch(t.TempDir()); err == nil {
		t.Fatalf("expected error watching a directory")
	}
}

func TestTrackerSubscribeFailure(t *testing.T) {
	subscriber := newRecordingSubscriber()
	subscriber.failAdd = errors.New("too many open files")
	tracker := NewTracker(subscriber, nil)
	path := writeShader(t, t.TempDir(), "a.frag")

	err := tracker.Watch(path)

	var watchErr *WatchError
	if !errors.As(err, &watchErr) || watchErr.Op != "watch" {
		t.Fatalf("expected watch error, got %v", err)
	}
	if tracker.Matches(path) || len(tracker.Dirs()) != 0 {
		t.Fatalf("expected failed watch to leave no state")
	}
}

func TestTrackerMatchesThroughSymlink(t *testing.T) {
	subscriber := newRecordingSubscriber()
	tracker := NewTracker(subscriber, nil)
	dir := t.TempDir()
	target := writeShader(t, dir, "real.frag")
	link := filepath.Join(t.TempDir(), "link.frag")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	if err := tracker.Watch(link); err != nil {
		t.Fatalf("watch link: %v", err)
	}
	if !tracker.Matches(target) {
		t.Fatalf("expected link target to match")
	}
	if got, want := tracker.Dirs(), []string{canonicalDir(t, target)}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected dirs %v, got %v", want, got)
	}
}
