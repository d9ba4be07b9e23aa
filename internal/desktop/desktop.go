// Package desktop wraps the native helpers used by the previewer: the file
// picker, the OS "open with" handler, the clipboard and notifications.
package desktop

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/gen2brain/beeep"
	"github.com/skratchdot/open-golang/open"
	"github.com/sqweek/dialog"
	"golang.design/x/clipboard"

	"shaderplayground/internal/logging"
)

// shaderExtensions are offered by the picker's filter.
var shaderExtensions = []string{"frag", "fs", "glsl"}

type Integration struct {
	logger        *logging.Logger
	clipboardOnce sync.Once
	clipboardErr  error
}

func New(logger *logging.Logger) *Integration {
	return &Integration{logger: logger.Component("desktop")}
}

// PickShaderFile blocks until the user picks a file. Cancelling returns an
// empty path and no error.
func (i *Integration) PickShaderFile() (string, error) {
	path, err := dialog.File().
		Title("Open fragment shader").
		Filter("Fragment shaders", shaderExtensions...).
		Filter("All files", "*").
		Load()
	if err != nil {
		if errors.Is(err, dialog.Cancelled) {
			return "", nil
		}
		return "", fmt.Errorf("file picker: %w", err)
	}
	return path, nil
}

// OpenFile hands path to the default application without waiting for it.
func (i *Integration) OpenFile(path string) error {
	if err := open.Start(path); err != nil {
		return fmt.Errorf("open %q: %w", path, err)
	}
	return nil
}

func (i *Integration) CopyText(text string) error {
	i.clipboardOnce.Do(func() {
		i.clipboardErr = clipboard.Init()
	})
	if i.clipboardErr != nil {
		return fmt.Errorf("clipboard unavailable: %w", i.clipboardErr)
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

// Notify shows a best-effort notification. It is a no-op without a display
// or without a body.
func (i *Integration) Notify(title, body string) error {
	if body == "" || Headless() {
		i.logger.Debug("notification skipped", map[string]string{"title": title})
		return nil
	}
	if err := beeep.Notify(title, body, ""); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

// Headless reports a Linux session without an X11 or Wayland display.
func Headless() bool {
	return runtime.GOOS == "linux" && os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == ""
}
