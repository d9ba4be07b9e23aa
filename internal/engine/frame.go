package engine

import (
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"shaderplayground/internal/shader"
)

// Draw runs one frame: picked file, change poll, uniforms, clear, draw.
func (e *Engine) Draw() {
	e.metrics.IncFrames()
	select {
	case path := <-e.picked:
		e.OnFileDrop(path)
	default:
	}

	if path, ok := e.source.PollChangedPath(); ok {
		e.reload(path)
	}

	e.elapsed = float32(e.Elapsed().Seconds())
	compiled, drawable := e.slot.State().(shader.Compiled)
	if drawable {
		compiled.Program.Use()
		compiled.Uniforms.Bind(e.device, e.Frame())
	}

	e.device.Clear(e.clear)
	if drawable {
		e.device.DrawQuad(e.quad)
	}
}

// open makes path the single watched file and loads it right away.
func (e *Engine) open(path string) {
	if err := e.source.UnwatchAll(); err != nil {
		e.logger.Warn("unwatch failed", map[string]string{"error": err.Error()})
	}
	if err := e.source.Watch(path); err != nil {
		e.logger.Warn("watch failed, changes will not reload", map[string]string{
			"path":  path,
			"error": err.Error(),
		})
	}
	e.activePath = path
	e.reload(path)
}

func (e *Engine) reload(path string) {
	start := time.Now()
	next := e.loader.LoadFromFile(path)
	e.apply(path, next, time.Since(start))
}

// apply installs next, restarts the shader clock and reports the outcome.
func (e *Engine) apply(path string, next shader.State, took time.Duration) {
	e.slot.Replace(next)
	e.origin = e.now()
	e.elapsed = 0
	e.metrics.RecordLoad(next.String(), took)

	switch state := next.(type) {
	case shader.Compiled:
		e.logger.Info("shader loaded", map[string]string{
			"path":    path,
			"size":    humanize.Bytes(uint64(state.SourceBytes)),
			"compile": took.Round(time.Microsecond).String(),
		})
	case shader.FileReadError:
		e.logger.Error("shader file unreadable", map[string]string{
			"path":  path,
			"error": state.Err.Error(),
		})
		e.notifyFailure(path, state)
	case shader.CompileError:
		e.logger.Error("shader compile failed", map[string]string{
			"path":  path,
			"stage": state.Stage.String(),
			"log":   state.Log,
			"lines": strconv.Itoa(strings.Count(state.Log, "\n") + 1),
		})
		e.notifyFailure(path, state)
	case shader.NotProvided:
	}
}

func (e *Engine) notifyFailure(path string, state shader.State) {
	if !e.notify || e.desktop == nil {
		return
	}
	diagnostic, _ := shader.Diagnostic(state)
	if err := e.desktop.Notify("Shader reload failed: "+path, diagnostic); err != nil {
		e.logger.Debug("notification failed", map[string]string{"error": err.Error()})
	}
}
