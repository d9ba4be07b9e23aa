package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"shaderplayground"
	"shaderplayground/internal/config"
	"shaderplayground/internal/desktop"
	"shaderplayground/internal/engine"
	"shaderplayground/internal/gpu"
	"shaderplayground/internal/logging"
	"shaderplayground/internal/metrics"
	"shaderplayground/internal/version"
	"shaderplayground/internal/watcher"
	"shaderplayground/internal/window"
	"shaderplayground/internal/window/glfwwindow"
)

const (
	exitCodeSuccess = 0
	exitCodeFailure = 1
)

// starter runs the previewer until it exits.
type starter func(ctx context.Context, cfg Config, settings config.Settings, logger *logging.Logger) error

func init() {
	// GLFW and OpenGL calls must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, startPreview))
}

func run(args []string, out, errOut io.Writer, start starter) int {
	cfg, err := parseArgs(args, errOut)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitCodeSuccess
		}
		fmt.Fprintln(errOut, err)
		return exitCodeFailure
	}
	if cfg.ShowVersion {
		fmt.Fprintln(out, version.String("shaderplayground"))
		return exitCodeSuccess
	}

	settings, err := config.LoadSettings(cfg.ConfigPath, shaderplayground.DefaultSettings, cfg.Overrides)
	if err != nil {
		fmt.Fprintf(errOut, "load settings: %v\n", err)
		return exitCodeFailure
	}
	logger := logging.NewLoggerWithOutput(settings.Log.Level, errOut)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := start(ctx, cfg, settings, logger); err != nil {
		fields := map[string]string{"error": err.Error()}
		var initErr *watcher.InitError
		if errors.As(err, &initErr) {
			fields["hint"] = "file watching is required for live reload"
		}
		logger.Error("shaderplayground failed", fields)
		return exitCodeFailure
	}
	return exitCodeSuccess
}

func startPreview(ctx context.Context, cfg Config, settings config.Settings, logger *logging.Logger) error {
	source, err := watcher.NewSource(watcher.Options{
		Logger:    logger,
		Debounce:  settings.Watch.Debounce(),
		QueueSize: int(settings.Watch.QueueSize),
		ErrorHandler: func(err error) {
			logger.Error("file watching stopped, reloads disabled", map[string]string{"error": err.Error()})
		},
	})
	if err != nil {
		return err
	}

	registry := metrics.New()
	options := engine.Options{
		Metrics:       registry,
		Source:        source,
		Logger:        logger,
		VertexSource:  shaderplayground.VertexShader,
		InitialFile:   cfg.ShaderPath,
		ClearColor:    clearColor(settings.Render.ClearColor),
		Desktop:       desktop.New(logger),
		NotifyOnError: settings.Desktop.NotifyOnError,
	}
	if cfg.Example {
		options.ExampleSource = shaderplayground.ExampleShader
	}

	built := false
	err = glfwwindow.Run(ctx, window.Options{
		Title:  settings.Window.Title,
		Width:  int(settings.Window.Width),
		Height: int(settings.Window.Height),
		VSync:  settings.Window.VSync,
		MaxFPS: int(settings.Window.MaxFPS),
	}, logger, func(device gpu.Device) (window.App, error) {
		options.Device = device
		app, err := engine.New(options)
		if err != nil {
			return nil, err
		}
		built = true
		return app, nil
	})
	if !built {
		_ = source.Close()
	}
	if cfg.MetricsOut != "" {
		if writeErr := writeMetrics(cfg.MetricsOut, registry, source); writeErr != nil {
			logger.Warn("metrics not written", map[string]string{"error": writeErr.Error()})
		}
	}
	return err
}

func writeMetrics(path string, registry *metrics.Registry, source *watcher.Source) error {
	if watched, ok := source.Metrics(); ok {
		registry.SetGauge("shaderplayground_watch_batches_delivered", "Debounced batches delivered", int64(watched.BatchesDelivered))
		registry.SetGauge("shaderplayground_watch_batches_dropped", "Batches dropped on a full queue", int64(watched.BatchesDropped))
		registry.SetGauge("shaderplayground_watch_events_coalesced", "Events merged into an open batch", int64(watched.EventsCoalesced))
		registry.SetGauge("shaderplayground_watch_errors", "Watcher errors", int64(watched.Errors))
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := registry.WritePrometheus(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func clearColor(components [4]float32) gpu.Color {
	return gpu.Color{R: components[0], G: components[1], B: components[2], A: components[3]}
}
