package desktop

import (
	"runtime"
	"testing"
)

func TestHeadlessWithoutDisplay(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("display detection only applies to linux")
	}
	t.Setenv("DISPLAY", "")
	t.Setenv("WAYLAND_DISPLAY", "")
	if !Headless() {
		t.Fatalf("expected headless session")
	}

	t.Setenv("WAYLAND_DISPLAY", "wayland-0")
	if Headless() {
		t.Fatalf("expected wayland session to count as a display")
	}
}

func TestNotifySkipsHeadlessSession(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("display detection only applies to linux")
	}
	t.Setenv("DISPLAY", "")
	t.Setenv("WAYLAND_DISPLAY", "")

	if err := New(nil).Notify("Shader reload failed", "0:3: syntax error"); err != nil {
		t.Fatalf("expected headless notify to be a no-op, got %v", err)
	}
}

func TestNotifySkipsEmptyBody(t *testing.T) {
	if err := New(nil).Notify("title", ""); err != nil {
		t.Fatalf("expected empty notification to be skipped, got %v", err)
	}
}
