package metrics

import (
	"strings"
	"testing"
	"time"
)

func TestWritePrometheus(t *testing.T) {
	registry := New()
	registry.IncFrames()
	registry.IncFrames()
	registry.IncFileDrops()
	registry.RecordLoad("compiled", 1500*time.Millisecond)
	registry.RecordLoad("compile error", 500*time.Millisecond)
	registry.SetGauge("shaderplayground_watch_batches_dropped", "Batches dropped on a full queue", 3)

	var out strings.Builder
	if err := registry.WritePrometheus(&out); err != nil {
		t.Fatalf("write: %v", err)
	}
	text := out.String()
	for _, want := range []string{
		"shaderplayground_frames_total 2",
		"shaderplayground_file_drops_total 1",
		`shaderplayground_shader_load_seconds_sum{outcome="compiled"} 1.500000`,
		`shaderplayground_shader_load_seconds_count{outcome="compile error"} 1`,
		"# TYPE shaderplayground_watch_batches_dropped gauge",
		"shaderplayground_watch_batches_dropped 3",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}
}

func TestLoadsByOutcome(t *testing.T) {
	registry := New()
	registry.RecordLoad("compiled", time.Millisecond)
	registry.RecordLoad("compiled", time.Millisecond)
	registry.RecordLoad("", time.Millisecond)

	if got := registry.Loads("compiled"); got != 2 {
		t.Fatalf("expected 2 compiled loads, got %d", got)
	}
	if got := registry.Loads("unknown"); got != 1 {
		t.Fatalf("expected blank outcome stored as unknown, got %d", got)
	}
}

func TestNilRegistryIsSafe(t *testing.T) {
	var registry *Registry
	registry.IncFrames()
	registry.RecordLoad("compiled", time.Second)
	registry.SetGauge("x", "y", 1)
	if registry.Frames() != 0 || registry.Loads("compiled") != 0 {
		t.Fatalf("expected nil registry to report zero")
	}
	if err := registry.WritePrometheus(&strings.Builder{}); err != nil {
		t.Fatalf("write: %v", err)
	}
}
