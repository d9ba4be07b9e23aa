// Package engine drives live shader reloading from the frame loop: it polls
// the change source, swaps programs, feeds uniforms and draws the quad.
package engine

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"shaderplayground/internal/gpu"
	"shaderplayground/internal/logging"
	"shaderplayground/internal/metrics"
	"shaderplayground/internal/shader"
	"shaderplayground/internal/window"
)

// ChangeSource reports changes of the watched shader file without blocking.
type ChangeSource interface {
	Watch(path string) error
	UnwatchAll() error
	PollChangedPath() (string, bool)
	Close() error
}

// Desktop is the optional native integration behind the keyboard shortcuts.
type Desktop interface {
	// PickShaderFile blocks; an empty path means the user cancelled.
	PickShaderFile() (string, error)
	OpenFile(path string) error
	CopyText(text string) error
	Notify(title, body string) error
}

type Options struct {
	Device gpu.Device
	Source ChangeSource
	Logger *logging.Logger

	VertexSource string
	// ExampleSource is compiled at startup when no InitialFile is given.
	ExampleSource string
	InitialFile   string
	ClearColor    gpu.Color

	Desktop       Desktop
	NotifyOnError bool
	// Metrics is optional.
	Metrics *metrics.Registry

	Now func() time.Time
}

// Engine is a window.App. Apart from the file picker goroutine, every method
// runs on the goroutine owning the graphics context.
type Engine struct {
	device  gpu.Device
	source  ChangeSource
	loader  *shader.Loader
	slot    *shader.Slot
	quad    gpu.Quad
	logger  *logging.Logger
	desktop Desktop
	notify  bool
	metrics *metrics.Registry
	now     func() time.Time
	clear   gpu.Color

	activePath string
	resolution [2]float32
	mouse      [2]float32
	origin     time.Time
	elapsed    float32
	quit       bool
	closed     bool

	picked  chan string
	picking atomic.Bool
}

var _ window.App = (*Engine)(nil)

// New allocates the quad and loads the initial shader, if any. A failed quad
// allocation is fatal.
func New(options Options) (*Engine, error) {
	if options.Device == nil {
		return nil, errors.New("engine requires a graphics device")
	}
	if options.Source == nil {
		return nil, errors.New("engine requires a change source")
	}
	now := options.Now
	if now == nil {
		now = time.Now
	}

	quad, err := options.Device.NewQuad()
	if err != nil {
		return nil, fmt.Errorf("allocate quad: %w", err)
	}

	engine := &Engine{
		device:  options.Device,
		source:  options.Source,
		loader:  shader.NewLoader(options.Device, options.VertexSource),
		slot:    shader.NewSlot(),
		quad:    quad,
		logger:  options.Logger.Component("engine"),
		desktop: options.Desktop,
		notify:  options.NotifyOnError,
		metrics: options.Metrics,
		now:     now,
		clear:   options.ClearColor,
		origin:  now(),
		picked:  make(chan string, 1),
	}

	switch {
	case options.InitialFile != "":
		engine.open(options.InitialFile)
	case options.ExampleSource != "":
		engine.apply("example", engine.loader.LoadFromString(options.ExampleSource), 0)
	}
	return engine, nil
}

func (e *Engine) State() shader.State {
	return e.slot.State()
}

// ActivePath is the shader file currently watched, empty before any file.
func (e *Engine) ActivePath() string {
	return e.activePath
}

// Elapsed is the time since the current shader was loaded.
func (e *Engine) Elapsed() time.Duration {
	return e.now().Sub(e.origin)
}

// Frame returns the uniform values bound by the most recent Draw.
func (e *Engine) Frame() shader.FrameUniforms {
	return shader.FrameUniforms{
		Resolution: e.resolution,
		Mouse:      e.mouse,
		Time:       e.elapsed,
	}
}

func (e *Engine) ShouldQuit() bool {
	return e.quit
}

// Close releases the program and the quad and stops the change source.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.slot.Release()
	e.device.DeleteQuad(e.quad)
	if err := e.source.Close(); err != nil {
		return fmt.Errorf("close change source: %w", err)
	}
	return nil
}
