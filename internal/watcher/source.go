package watcher

import "shaderplayground/internal/logging"

// Observer is a directory subscriber that reports coalesced batches.
type Observer interface {
	Subscriber
	Batches() <-chan Batch
	Close() error
}

// Source answers "did the watched file change since the last frame?".
type Source struct {
	observer Observer
	tracker  *Tracker
	logger   *logging.Logger
}

// NewSource creates an fsnotify-backed Source. Failure is an *InitError.
func NewSource(options Options) (*Source, error) {
	observer, err := New(options)
	if err != nil {
		return nil, err
	}
	return NewSourceWithObserver(observer, options.Logger), nil
}

func NewSourceWithObserver(observer Observer, logger *logging.Logger) *Source {
	logger = logger.Component("watcher")
	return &Source{
		observer: observer,
		tracker:  NewTracker(observer, logger),
		logger:   logger,
	}
}

func (s *Source) Watch(path string) error {
	return s.tracker.Watch(path)
}

func (s *Source) Unwatch(path string) error {
	return s.tracker.Unwatch(path)
}

func (s *Source) UnwatchAll() error {
	return s.tracker.UnwatchAll()
}

func (s *Source) Tracker() *Tracker {
	return s.tracker
}

// PollChangedPath drains every queued batch without blocking and returns the
// last event path that names a tracked file. Earlier matches are discarded.
func (s *Source) PollChangedPath() (string, bool) {
	var (
		changed string
		found   bool
	)
	for {
		select {
		case batch := <-s.observer.Batches():
			for _, event := range batch {
				if s.tracker.Matches(event.Path) {
					changed = event.Path
					found = true
				}
			}
		default:
			if found {
				s.logger.Debug("file changed", map[string]string{"path": changed})
			}
			return changed, found
		}
	}
}

// Metrics returns the observer counters when it is an fsnotify Watcher.
func (s *Source) Metrics() (Metrics, bool) {
	watcher, ok := s.observer.(*Watcher)
	if !ok {
		return Metrics{}, false
	}
	return watcher.Metrics(), true
}

func (s *Source) Close() error {
	return s.observer.Close()
}
