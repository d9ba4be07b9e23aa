// Package glfwwindow runs a window.App inside a GLFW window with an OpenGL
// 3.3 core context.
package glfwwindow

import (
	"context"
	"fmt"
	"io"

	"github.com/go-gl/glfw/v3.3/glfw"

	"shaderplayground/internal/gpu"
	"shaderplayground/internal/gpu/opengl"
	"shaderplayground/internal/logging"
	"shaderplayground/internal/window"
)

// Run must be called from the main goroutine with the OS thread locked. The
// app is built once the context is current and closed, if it implements
// io.Closer, before the context is destroyed.
func Run(ctx context.Context, options window.Options, logger *logging.Logger, newApp func(gpu.Device) (window.App, error)) error {
	logger = logger.Component("window")
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("initialize glfw: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	handle, err := glfw.CreateWindow(options.Width, options.Height, options.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer handle.Destroy()
	handle.MakeContextCurrent()
	if options.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	device, err := opengl.New()
	if err != nil {
		return err
	}
	logger.Info("opengl context ready", map[string]string{"version": device.Version()})

	app, err := newApp(device)
	if err != nil {
		return err
	}
	if closer, ok := app.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Warn("app close failed", map[string]string{"error": err.Error()})
			}
		}()
	}

	attach(handle, app)
	width, height := handle.GetFramebufferSize()
	app.OnResize(uint32(width), uint32(height))

	return window.Loop(ctx, surface{handle: handle}, app, options.MaxFPS)
}

func attach(handle *glfw.Window, app window.App) {
	handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		app.OnResize(uint32(width), uint32(height))
	})
	handle.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action == glfw.Repeat {
			return
		}
		app.OnKey(mapKey(key), action == glfw.Press)
	})
	handle.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		app.OnMouseButton(mapButton(button), action == glfw.Press)
	})
	handle.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		// Cursor positions are in screen coordinates; uniforms use pixels.
		scaleX, scaleY := pixelScale(w)
		app.OnMouseMove(float32(x*scaleX), float32(y*scaleY))
	})
	handle.SetDropCallback(func(_ *glfw.Window, names []string) {
		if len(names) == 0 {
			return
		}
		app.OnFileDrop(names[len(names)-1])
	})
}

func pixelScale(handle *glfw.Window) (float64, float64) {
	windowWidth, windowHeight := handle.GetSize()
	framebufferWidth, framebufferHeight := handle.GetFramebufferSize()
	if windowWidth == 0 || windowHeight == 0 {
		return 1, 1
	}
	return float64(framebufferWidth) / float64(windowWidth), float64(framebufferHeight) / float64(windowHeight)
}

func mapKey(key glfw.Key) window.Key {
	switch key {
	case glfw.KeyEscape:
		return window.KeyEscape
	case glfw.KeyR:
		return window.KeyReload
	case glfw.KeyO:
		return window.KeyOpen
	case glfw.KeyE:
		return window.KeyEdit
	case glfw.KeyC:
		return window.KeyCopy
	default:
		return window.KeyOther
	}
}

func mapButton(button glfw.MouseButton) window.MouseButton {
	switch button {
	case glfw.MouseButtonLeft:
		return window.MouseLeft
	case glfw.MouseButtonRight:
		return window.MouseRight
	case glfw.MouseButtonMiddle:
		return window.MouseMiddle
	default:
		return window.MouseOther
	}
}

type surface struct {
	handle *glfw.Window
}

func (s surface) PollEvents() {
	glfw.PollEvents()
}

func (s surface) SwapBuffers() {
	s.handle.SwapBuffers()
}

func (s surface) ShouldClose() bool {
	return s.handle.ShouldClose()
}
