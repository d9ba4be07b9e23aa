// Package metrics counts frames and shader loads and renders them in the
// Prometheus text exposition format.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Registry struct {
	frames    atomic.Int64
	fileDrops atomic.Int64
	loads     sync.Map
	gauges    sync.Map
}

type loadStats struct {
	count         atomic.Int64
	durationNanos atomic.Int64
}

type gauge struct {
	help  string
	value atomic.Int64
}

func New() *Registry {
	return &Registry{}
}

func (r *Registry) IncFrames() {
	if r == nil {
		return
	}
	r.frames.Add(1)
}

func (r *Registry) IncFileDrops() {
	if r == nil {
		return
	}
	r.fileDrops.Add(1)
}

// RecordLoad counts one shader load attempt by outcome ("compiled",
// "compile error", ...).
func (r *Registry) RecordLoad(outcome string, duration time.Duration) {
	if r == nil {
		return
	}
	if strings.TrimSpace(outcome) == "" {
		outcome = "unknown"
	}
	stats := r.loadStats(outcome)
	stats.count.Add(1)
	stats.durationNanos.Add(duration.Nanoseconds())
}

// SetGauge publishes a value owned elsewhere, such as a watcher counter.
func (r *Registry) SetGauge(name, help string, value int64) {
	if r == nil {
		return
	}
	stored, _ := r.gauges.LoadOrStore(name, &gauge{help: help})
	stored.(*gauge).value.Store(value)
}

func (r *Registry) Frames() int64 {
	if r == nil {
		return 0
	}
	return r.frames.Load()
}

func (r *Registry) FileDrops() int64 {
	if r == nil {
		return 0
	}
	return r.fileDrops.Load()
}

func (r *Registry) Loads(outcome string) int64 {
	if r == nil {
		return 0
	}
	value, ok := r.loads.Load(outcome)
	if !ok {
		return 0
	}
	return value.(*loadStats).count.Load()
}

func (r *Registry) WritePrometheus(writer io.Writer) error {
	if r == nil {
		return nil
	}

	writeCounter(writer, "shaderplayground_frames_total", "Frames drawn", r.frames.Load())
	writeCounter(writer, "shaderplayground_file_drops_total", "Shader files dropped or picked", r.fileDrops.Load())

	outcomes := r.loadOutcomes()
	sort.Strings(outcomes)
	writeHelp(writer, "shaderplayground_shader_load_seconds", "Shader load duration in seconds by outcome")
	fmt.Fprintln(writer, "# TYPE shaderplayground_shader_load_seconds summary")
	for _, outcome := range outcomes {
		stats := r.loadStats(outcome)
		label := formatLabel(outcome)
		durationSeconds := float64(stats.durationNanos.Load()) / float64(time.Second)
		fmt.Fprintf(writer, "shaderplayground_shader_load_seconds_sum{outcome=%s} %.6f\n", label, durationSeconds)
		fmt.Fprintf(writer, "shaderplayground_shader_load_seconds_count{outcome=%s} %d\n", label, stats.count.Load())
	}

	var names []string
	r.gauges.Range(func(key, value any) bool {
		names = append(names, key.(string))
		return true
	})
	sort.Strings(names)
	for _, name := range names {
		value, _ := r.gauges.Load(name)
		stored := value.(*gauge)
		writeHelp(writer, name, stored.help)
		fmt.Fprintf(writer, "# TYPE %s gauge\n", name)
		fmt.Fprintf(writer, "%s %d\n", name, stored.value.Load())
	}
	return nil
}

func (r *Registry) loadStats(outcome string) *loadStats {
	value, _ := r.loads.LoadOrStore(outcome, &loadStats{})
	return value.(*loadStats)
}

func (r *Registry) loadOutcomes() []string {
	var outcomes []string
	r.loads.Range(func(key, value any) bool {
		if outcome, ok := key.(string); ok {
			outcomes = append(outcomes, outcome)
		}
		return true
	})
	return outcomes
}

func writeHelp(writer io.Writer, metric, help string) {
	fmt.Fprintf(writer, "# HELP %s %s\n", metric, help)
}

func writeCounter(writer io.Writer, metric, help string, value int64) {
	writeHelp(writer, metric, help)
	fmt.Fprintf(writer, "# TYPE %s counter\n", metric)
	fmt.Fprintf(writer, "%s %d\n", metric, value)
}

func formatLabel(value string) string {
	escaped := strings.ReplaceAll(value, "\\", "\\\\")
	escaped = strings.ReplaceAll(escaped, "\"", "\\\"")
	return fmt.Sprintf("\"%s\"", escaped)
}
