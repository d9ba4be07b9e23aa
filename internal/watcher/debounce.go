package watcher

import (
	"sync"
	"time"
)

// debouncer collects events into one batch per window. The window restarts
// with every event; a batch open for maxWait is flushed regardless.
type debouncer struct {
	mutex   sync.Mutex
	window  time.Duration
	maxWait time.Duration
	emit    func(Batch)
	pending map[string]int
	events  Batch
	first   time.Time
	last    time.Time
	timer   *time.Timer
	stopped bool
}

func newDebouncer(window, maxWait time.Duration, emit func(Batch)) *debouncer {
	return &debouncer{
		window:  window,
		maxWait: maxWait,
		emit:    emit,
		pending: make(map[string]int),
	}
}

// add records an event and reports whether it joined an already open batch.
func (debouncer *debouncer) add(event Event) bool {
	if debouncer == nil {
		return false
	}
	debouncer.mutex.Lock()
	defer debouncer.mutex.Unlock()
	if debouncer.stopped {
		return false
	}

	now := time.Now()
	coalesced := len(debouncer.events) > 0
	if !coalesced {
		debouncer.first = now
	}
	debouncer.last = now

	if index, ok := debouncer.pending[event.Path]; ok {
		debouncer.events = append(debouncer.events[:index], debouncer.events[index+1:]...)
		for path, position := range debouncer.pending {
			if position > index {
				debouncer.pending[path] = position - 1
			}
		}
	}
	debouncer.pending[event.Path] = len(debouncer.events)
	debouncer.events = append(debouncer.events, event)

	if debouncer.timer == nil {
		debouncer.timer = time.AfterFunc(debouncer.window, debouncer.fire)
	}
	return coalesced
}

func (debouncer *debouncer) fire() {
	debouncer.mutex.Lock()
	if debouncer.stopped || len(debouncer.events) == 0 {
		debouncer.timer = nil
		debouncer.mutex.Unlock()
		return
	}

	now := time.Now()
	quiet := now.Sub(debouncer.last)
	open := now.Sub(debouncer.first)
	if quiet < debouncer.window && open < debouncer.maxWait {
		wait := debouncer.window - quiet
		if remaining := debouncer.maxWait - open; remaining < wait {
			wait = remaining
		}
		debouncer.timer.Reset(wait)
		debouncer.mutex.Unlock()
		return
	}

	batch := debouncer.events
	debouncer.events = nil
	debouncer.pending = make(map[string]int)
	debouncer.timer = nil
	debouncer.mutex.Unlock()

	debouncer.emit(batch)
}

func (debouncer *debouncer) stop() {
	if debouncer == nil {
		return
	}
	debouncer.mutex.Lock()
	defer debouncer.mutex.Unlock()
	debouncer.stopped = true
	if debouncer.timer != nil {
		debouncer.timer.Stop()
		debouncer.timer = nil
	}
	debouncer.events = nil
	debouncer.pending = nil
}
