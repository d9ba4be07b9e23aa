package watcher

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

func (watcher *Watcher) handleError(err error) {
	if err == nil {
		return
	}
	atomic.AddUint64(&watcher.errorCount, 1)
	watcher.logWarn("watcher error", map[string]string{
		"error": err.Error(),
	})
	watcher.scheduleRestart(err)
}

func restartDelay(attempt int) time.Duration {
	return restartBaseDelay * time.Duration(1<<attempt)
}

func (watcher *Watcher) scheduleRestart(err error) {
	watcher.restartMutex.Lock()
	if watcher.isClosed() || watcher.restartTimer != nil {
		watcher.restartMutex.Unlock()
		return
	}
	if watcher.restartAttempts >= maxRestartAttempts {
		handler := watcher.errorHandler
		watcher.restartMutex.Unlock()
		if handler != nil {
			handler(err)
		}
		return
	}
	delay := restartDelay(watcher.restartAttempts)
	watcher.restartAttempts++
	watcher.restartTimer = time.AfterFunc(delay, watcher.performRestart)
	watcher.restartMutex.Unlock()
}

func (watcher *Watcher) performRestart() {
	restartErr := watcher.restart()

	watcher.restartMutex.Lock()
	watcher.restartTimer = nil
	if restartErr == nil {
		watcher.restartAttempts = 0
		watcher.restartMutex.Unlock()
		return
	}
	watcher.restartMutex.Unlock()

	watcher.logWarn("watcher restart failed", map[string]string{
		"error": restartErr.Error(),
	})
	watcher.scheduleRestart(restartErr)
}

// restart swaps in a fresh fsnotify handle subscribed to the same directories.
func (watcher *Watcher) restart() error {
	watcher.mutex.Lock()
	if watcher.closed {
		watcher.mutex.Unlock()
		return nil
	}
	dirs := make([]string, 0, len(watcher.dirs))
	for dir := range watcher.dirs {
		dirs = append(dirs, dir)
	}
	watcher.mutex.Unlock()

	replacement, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := replacement.Add(dir); err != nil {
			watcher.logWarn("watcher re-add failed", map[string]string{
				"dir":   dir,
				"error": err.Error(),
			})
		}
	}

	watcher.mutex.Lock()
	if watcher.closed {
		watcher.mutex.Unlock()
		_ = replacement.Close()
		return nil
	}
	previous := watcher.watcher
	watcher.watcher = replacement
	watcher.mutex.Unlock()

	watcher.startForwarder(replacement)
	if previous != nil {
		_ = previous.Close()
	}
	watcher.logger.Info("watcher restarted", map[string]string{
		"dirs": strconv.Itoa(len(dirs)),
	})
	return nil
}

func (watcher *Watcher) isClosed() bool {
	watcher.mutex.Lock()
	defer watcher.mutex.Unlock()
	return watcher.closed
}
