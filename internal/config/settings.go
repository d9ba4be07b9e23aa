// Package config loads the previewer settings: embedded defaults, then an
// optional user file, then command-line overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shaderplayground/internal/config/tomlkeys"
	"shaderplayground/internal/logging"
)

// EnvConfigPath names the settings file when --config is not given.
const EnvConfigPath = "SHADERPLAYGROUND_CONFIG"

type Settings struct {
	Watch   WatchSettings
	Window  WindowSettings
	Render  RenderSettings
	Desktop DesktopSettings
	Log     LogSettings
}

type WatchSettings struct {
	DebounceMS int64
	QueueSize  int64
}

// Debounce is the configured window. Negative values are passed through so
// the watcher can reject them.
func (w WatchSettings) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

type WindowSettings struct {
	Title  string
	Width  int64
	Height int64
	VSync  bool
	MaxFPS int64
}

type RenderSettings struct {
	ClearColor [4]float32
}

type DesktopSettings struct {
	NotifyOnError bool
}

type LogSettings struct {
	Level logging.Level
}

// LoadSettings layers path (TOML, or YAML for .yaml/.yml) and overrides over
// the defaults payload. A missing file is not an error.
func LoadSettings(path string, defaultsPayload []byte, overrides map[string]any) (Settings, error) {
	defaultsStore, err := tomlkeys.Decode(defaultsPayload)
	if err != nil {
		return Settings{}, fmt.Errorf("decode default settings: %w", err)
	}
	defaults := defaultsStore.Flat()
	values := defaultsStore.Flat()

	if strings.TrimSpace(path) != "" {
		payload, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Settings{}, err
			}
		} else {
			store, err := decodeFile(path, payload)
			if err != nil {
				return Settings{}, fmt.Errorf("decode %s: %w", path, err)
			}
			for key, value := range store.Flat() {
				values[key] = value
			}
		}
	}

	for key, value := range overrides {
		normalized := tomlkeys.NormalizeKey(key)
		if normalized == "" {
			continue
		}
		values[normalized] = value
	}

	settings := Settings{}
	settings.Watch.DebounceMS = intSetting(values, "watch.debounce-ms", 0)
	settings.Watch.QueueSize = intSetting(values, "watch.queue-size", 0)
	settings.Window.Title = stringSetting(values, "window.title", "")
	settings.Window.Width = intSetting(values, "window.width", 0)
	settings.Window.Height = intSetting(values, "window.height", 0)
	settings.Window.VSync = boolSetting(values, "window.vsync", boolSetting(defaults, "window.vsync", false))
	settings.Window.MaxFPS = intSetting(values, "window.max-fps", 0)
	settings.Desktop.NotifyOnError = boolSetting(values, "desktop.notify-on-error", boolSetting(defaults, "desktop.notify-on-error", false))

	color, err := colorSetting(values, "render.clear-color")
	if err != nil {
		return Settings{}, err
	}
	settings.Render.ClearColor = color

	levelName := stringSetting(values, "log.level", "")
	level, ok := logging.ParseLevel(levelName)
	if !ok && levelName != "" {
		return Settings{}, fmt.Errorf("log.level: unknown level %q", levelName)
	}
	settings.Log.Level = level

	return normalizeSettings(settings, defaults), nil
}

func decodeFile(path string, payload []byte) (tomlkeys.Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return tomlkeys.DecodeYAML(payload)
	default:
		return tomlkeys.Decode(payload)
	}
}

func normalizeSettings(settings Settings, defaults map[string]any) Settings {
	if settings.Watch.QueueSize <= 0 {
		settings.Watch.QueueSize = intSetting(defaults, "watch.queue-size", 0)
	}
	if settings.Window.Title == "" {
		settings.Window.Title = stringSetting(defaults, "window.title", "")
	}
	if settings.Window.Width <= 0 {
		settings.Window.Width = intSetting(defaults, "window.width", 0)
	}
	if settings.Window.Height <= 0 {
		settings.Window.Height = intSetting(defaults, "window.height", 0)
	}
	if settings.Window.MaxFPS < 0 {
		settings.Window.MaxFPS = 0
	}
	if settings.Log.Level == "" {
		level, _ := logging.ParseLevel(stringSetting(defaults, "log.level", ""))
		settings.Log.Level = level
	}
	return settings
}

func intSetting(values map[string]any, key string, fallback int64) int64 {
	value, ok := values[tomlkeys.NormalizeKey(key)]
	if !ok {
		return fallback
	}
	if parsed, ok := tomlkeys.AsInt(value); ok {
		return parsed
	}
	return fallback
}

func stringSetting(values map[string]any, key string, fallback string) string {
	value, ok := values[tomlkeys.NormalizeKey(key)]
	if !ok {
		return fallback
	}
	if parsed, ok := value.(string); ok {
		return strings.TrimSpace(parsed)
	}
	return fallback
}

func boolSetting(values map[string]any, key string, fallback bool) bool {
	value, ok := values[tomlkeys.NormalizeKey(key)]
	if !ok {
		return fallback
	}
	if parsed, ok := value.(bool); ok {
		return parsed
	}
	return fallback
}

func colorSetting(values map[string]any, key string) ([4]float32, error) {
	var color [4]float32
	value, ok := values[tomlkeys.NormalizeKey(key)]
	if !ok {
		return color, nil
	}
	components, err := tomlkeys.AsFloats(value)
	if err != nil {
		return color, fmt.Errorf("%s: %w", key, err)
	}
	if len(components) != len(color) {
		return color, fmt.Errorf("%s: expected 4 components (r, g, b, a), got %d", key, len(components))
	}
	for index, component := range components {
		if component < 0 || component > 1 {
			return color, fmt.Errorf("%s: component %d out of range [0, 1]: %g", key, index, component)
		}
		color[index] = float32(component)
	}
	return color, nil
}
