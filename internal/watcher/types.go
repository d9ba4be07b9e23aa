package watcher

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"shaderplayground/internal/logging"
)

// Event represents a single filesystem change.
type Event struct {
	Path      string
	Op        fsnotify.Op
	Timestamp time.Time
}

// Batch is every event collected during one debounce window, oldest first.
// A path appears at most once, positioned by its latest event.
type Batch []Event

// Options controls watcher behavior.
type Options struct {
	Logger *logging.Logger
	// Debounce is the quiet period closing a batch. Zero selects the default;
	// negative values are rejected.
	Debounce time.Duration
	// MaxWait bounds how long a batch stays open under a constant stream of
	// events. Zero selects twice the debounce window.
	MaxWait time.Duration
	// QueueSize is the number of undelivered batches kept before the oldest
	// one is discarded.
	QueueSize int
	// ErrorHandler is called when the watcher gives up restarting.
	ErrorHandler func(error)
}

// Metrics reports watcher counters.
type Metrics struct {
	ActiveWatches    int
	BatchesDelivered uint64
	BatchesDropped   uint64
	EventsCoalesced  uint64
	Errors           uint64
	RestartAttempts  int
}

// Watcher is the fsnotify-backed directory observer.
type Watcher struct {
	watcher      *fsnotify.Watcher
	mutex        sync.Mutex
	dirs         map[string]struct{}
	debouncer    *debouncer
	batches      chan Batch
	events       chan fsnotify.Event
	errors       chan error
	done         chan struct{}
	closed       bool
	logger       *logging.Logger
	errorHandler func(error)

	restartMutex    sync.Mutex
	restartTimer    *time.Timer
	restartAttempts int

	batchesDelivered uint64
	batchesDropped   uint64
	eventsCoalesced  uint64
	errorCount       uint64
}
