// Package watcher reports changes to individual files on top of fsnotify,
// which only observes whole directories.
//
// A Watcher owns the fsnotify handle and a debouncer running on background
// goroutines; it hands coalesced batches to the consumer over a buffered
// channel. A Tracker decides which directories must be subscribed for the
// files of interest, and a Source combines both behind a non-blocking poll
// meant to be called once per rendered frame.
package watcher
