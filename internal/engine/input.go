package engine

import (
	"strconv"

	"shaderplayground/internal/shader"
	"shaderplayground/internal/window"
)

func (e *Engine) OnResize(width, height uint32) {
	e.resolution = [2]float32{float32(width), float32(height)}
	e.device.Viewport(0, 0, int32(width), int32(height))
}

func (e *Engine) OnMouseMove(x, y float32) {
	e.mouse = [2]float32{x, y}
}

func (e *Engine) OnMouseButton(button window.MouseButton, pressed bool) {
	e.logger.Debug("mouse button", map[string]string{
		"button":  button.String(),
		"pressed": strconv.FormatBool(pressed),
	})
}

// OnFileDrop switches the watch to path and loads it without waiting for a
// filesystem event.
func (e *Engine) OnFileDrop(path string) {
	e.logger.Info("file dropped", map[string]string{"path": path})
	e.metrics.IncFileDrops()
	e.open(path)
}

func (e *Engine) OnKey(key window.Key, pressed bool) {
	if !pressed {
		return
	}
	switch key {
	case window.KeyEscape:
		e.quit = true
	case window.KeyReload:
		if e.activePath == "" {
			e.logger.Info("nothing to reload", nil)
			return
		}
		e.reload(e.activePath)
	case window.KeyOpen:
		e.pickFile()
	case window.KeyEdit:
		e.editActive()
	case window.KeyCopy:
		e.copyDiagnostic()
	case window.KeyOther:
	}
}

// pickFile shows the picker on its own goroutine; the choice is consumed by
// the next Draw.
func (e *Engine) pickFile() {
	if e.desktop == nil {
		e.logger.Warn("file picker unavailable", nil)
		return
	}
	if !e.picking.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer e.picking.Store(false)
		path, err := e.desktop.PickShaderFile()
		if err != nil {
			e.logger.Warn("file picker failed", map[string]string{"error": err.Error()})
			return
		}
		if path == "" {
			return
		}
		select {
		case e.picked <- path:
		default:
		}
	}()
}

func (e *Engine) editActive() {
	if e.desktop == nil || e.activePath == "" {
		return
	}
	if err := e.desktop.OpenFile(e.activePath); err != nil {
		e.logger.Warn("open in editor failed", map[string]string{
			"path":  e.activePath,
			"error": err.Error(),
		})
	}
}

func (e *Engine) copyDiagnostic() {
	if e.desktop == nil {
		return
	}
	diagnostic, ok := shader.Diagnostic(e.slot.State())
	if !ok {
		e.logger.Info("no diagnostics to copy", nil)
		return
	}
	if err := e.desktop.CopyText(diagnostic); err != nil {
		e.logger.Warn("copy diagnostics failed", map[string]string{"error": err.Error()})
		return
	}
	e.logger.Info("diagnostics copied", nil)
}
