package watcher

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	DefaultDebounce    = 250 * time.Millisecond
	defaultQueueSize   = 64
	maxRestartAttempts = 3
	restartBaseDelay   = 200 * time.Millisecond
)

// New creates a Watcher and starts its background goroutines.
func New(options Options) (*Watcher, error) {
	debounce := options.Debounce
	if debounce < 0 {
		return nil, &InitError{Err: ErrInvalidDebounce}
	}
	if debounce == 0 {
		debounce = DefaultDebounce
	}
	maxWait := options.MaxWait
	if maxWait < debounce {
		maxWait = 2 * debounce
	}
	queueSize := options.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	source, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, &InitError{Err: err}
	}

	instance := &Watcher{
		watcher:      source,
		dirs:         make(map[string]struct{}),
		batches:      make(chan Batch, queueSize),
		events:       make(chan fsnotify.Event, 16),
		errors:       make(chan error, 4),
		done:         make(chan struct{}),
		logger:       options.Logger.Component("watcher"),
		errorHandler: options.ErrorHandler,
	}
	instance.debouncer = newDebouncer(debounce, maxWait, instance.deliver)

	instance.startForwarder(source)
	go instance.run()
	instance.logger.Debug("watcher started", map[string]string{
		"debounce": debounce.String(),
		"max_wait": maxWait.String(),
	})
	return instance, nil
}

// Batches delivers coalesced events. The channel is never closed; consumers
// drain it without blocking.
func (watcher *Watcher) Batches() <-chan Batch {
	return watcher.batches
}

// Add subscribes a directory, non-recursively.
func (watcher *Watcher) Add(dir string) error {
	watcher.mutex.Lock()
	if watcher.closed {
		watcher.mutex.Unlock()
		return ErrClosed
	}
	if _, ok := watcher.dirs[dir]; ok {
		watcher.mutex.Unlock()
		return nil
	}
	source := watcher.watcher
	watcher.mutex.Unlock()

	if err := source.Add(dir); err != nil {
		watcher.logWarn("watch add failed", map[string]string{
			"dir":   dir,
			"error": err.Error(),
		})
		return err
	}

	watcher.mutex.Lock()
	watcher.dirs[dir] = struct{}{}
	active := len(watcher.dirs)
	watcher.mutex.Unlock()
	watcher.logDebug("watch added", dir, active)
	return nil
}

// Remove unsubscribes a directory.
func (watcher *Watcher) Remove(dir string) error {
	watcher.mutex.Lock()
	if watcher.closed {
		watcher.mutex.Unlock()
		return ErrClosed
	}
	if _, ok := watcher.dirs[dir]; !ok {
		watcher.mutex.Unlock()
		return nil
	}
	delete(watcher.dirs, dir)
	active := len(watcher.dirs)
	source := watcher.watcher
	watcher.mutex.Unlock()

	if err := source.Remove(dir); err != nil {
		watcher.logWarn("watch remove failed", map[string]string{
			"dir":   dir,
			"error": err.Error(),
		})
		return err
	}
	watcher.logDebug("watch removed", dir, active)
	return nil
}

// Close shuts down the watcher and stops event processing.
func (watcher *Watcher) Close() error {
	if watcher == nil {
		return nil
	}

	watcher.mutex.Lock()
	if watcher.closed {
		watcher.mutex.Unlock()
		return nil
	}
	watcher.closed = true
	watcher.debouncer.stop()
	source := watcher.watcher
	watcher.mutex.Unlock()

	watcher.restartMutex.Lock()
	if watcher.restartTimer != nil {
		watcher.restartTimer.Stop()
		watcher.restartTimer = nil
	}
	watcher.restartMutex.Unlock()

	close(watcher.done)
	if source == nil {
		return nil
	}
	return source.Close()
}

func (watcher *Watcher) run() {
	for {
		select {
		case event := <-watcher.events:
			watcher.handleEvent(event)
		case err := <-watcher.errors:
			watcher.handleError(err)
		case <-watcher.done:
			return
		}
	}
}

func (watcher *Watcher) startForwarder(source *fsnotify.Watcher) {
	if source == nil {
		return
	}

	go func() {
		for {
			select {
			case event, ok := <-source.Events:
				if !ok {
					return
				}
				select {
				case watcher.events <- event:
				case <-watcher.done:
					return
				}
			case err, ok := <-source.Errors:
				if !ok {
					return
				}
				select {
				case watcher.errors <- err:
				case <-watcher.done:
					return
				}
			case <-watcher.done:
				return
			}
		}
	}()
}

func (watcher *Watcher) handleEvent(event fsnotify.Event) {
	watcher.mutex.Lock()
	closed := watcher.closed
	watcher.mutex.Unlock()
	if closed {
		return
	}

	coalesced := watcher.debouncer.add(Event{
		Path:      event.Name,
		Op:        event.Op,
		Timestamp: time.Now(),
	})
	if coalesced {
		atomic.AddUint64(&watcher.eventsCoalesced, 1)
	}
}

// deliver queues a batch without ever blocking. When the queue is full the
// oldest batch is discarded so the newest state of the files wins.
func (watcher *Watcher) deliver(batch Batch) {
	for {
		select {
		case <-watcher.done:
			return
		default:
		}
		select {
		case watcher.batches <- batch:
			atomic.AddUint64(&watcher.batchesDelivered, 1)
			return
		default:
		}
		select {
		case <-watcher.batches:
			atomic.AddUint64(&watcher.batchesDropped, 1)
		default:
		}
	}
}

// SetErrorHandler configures a callback for unrecoverable watcher failures.
func (watcher *Watcher) SetErrorHandler(handler func(error)) {
	watcher.restartMutex.Lock()
	watcher.errorHandler = handler
	watcher.restartMutex.Unlock()
}

// Metrics reports current watcher stats.
func (watcher *Watcher) Metrics() Metrics {
	if watcher == nil {
		return Metrics{}
	}
	watcher.mutex.Lock()
	active := len(watcher.dirs)
	watcher.mutex.Unlock()
	watcher.restartMutex.Lock()
	restartAttempts := watcher.restartAttempts
	watcher.restartMutex.Unlock()
	return Metrics{
		ActiveWatches:    active,
		BatchesDelivered: atomic.LoadUint64(&watcher.batchesDelivered),
		BatchesDropped:   atomic.LoadUint64(&watcher.batchesDropped),
		EventsCoalesced:  atomic.LoadUint64(&watcher.eventsCoalesced),
		Errors:           atomic.LoadUint64(&watcher.errorCount),
		RestartAttempts:  restartAttempts,
	}
}

func (watcher *Watcher) logWarn(message string, fields map[string]string) {
	if watcher == nil {
		return
	}
	watcher.logger.Warn(message, fields)
}

func (watcher *Watcher) logDebug(message, dir string, activeCount int) {
	if watcher == nil {
		return
	}
	watcher.logger.Debug(message, map[string]string{
		"dir":            dir,
		"active_watches": strconv.Itoa(activeCount),
	})
}
