package window

import (
	"context"
	"testing"
	"time"
)

type countingSurface struct {
	polls      int
	swaps      int
	closeAfter int
}

func (s *countingSurface) PollEvents() {
	s.polls++
}

func (s *countingSurface) SwapBuffers() {
	s.swaps++
}

func (s *countingSurface) ShouldClose() bool {
	return s.closeAfter > 0 && s.polls >= s.closeAfter
}

type countingApp struct {
	draws     int
	quitAfter int
}

func (a *countingApp) OnResize(width, height uint32) {}
func (a *countingApp) OnKey(key Key, pressed bool) {}
func (a *countingApp) OnMouseButton(button MouseButton, pressed bool) {}
func (a *countingApp) OnMouseMove(x, y float32) {}
func (a *countingApp) OnFileDrop(path string) {}

func (a *countingApp) Draw() {
	a.draws++
}

func (a *countingApp) ShouldQuit() bool {
	return a.quitAfter > 0 && a.draws >= a.quitAfter
}

func TestLoopStopsWhenAppQuits(t *testing.T) {
	surface := &countingSurface{}
	app := &countingApp{quitAfter: 3}

	if err := Loop(context.Background(), surface, app, 0); err != nil {
		t.Fatalf("loop: %v", err)
	}
	if app.draws != 3 || surface.swaps != 3 {
		t.Fatalf("expected 3 draws and swaps, got %d and %d", app.draws, surface.swaps)
	}
}

func TestLoopStopsWhenSurfaceCloses(t *testing.T) {
	surface := &countingSurface{closeAfter: 2}
	app := &countingApp{}

	if err := Loop(context.Background(), surface, app, 0); err != nil {
		t.Fatalf("loop: %v", err)
	}
	if app.draws != 1 {
		t.Fatalf("expected 1 draw before close, got %d", app.draws)
	}
}

func TestLoopStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	app := &countingApp{}

	if err := Loop(ctx, &countingSurface{}, app, 0); err != nil {
		t.Fatalf("loop: %v", err)
	}
	if app.draws != 0 {
		t.Fatalf("expected no draws after cancel, got %d", app.draws)
	}
}

func TestLoopPacesFrames(t *testing.T) {
	app := &countingApp{quitAfter: 6}
	start := time.Now()

	if err := Loop(context.Background(), &countingSurface{}, app, 50); err != nil {
		t.Fatalf("loop: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Fatalf("expected frames paced to 50 fps, took %s", elapsed)
	}
}

func TestKeyNames(t *testing.T) {
	cases := map[Key]string{
		KeyEscape: "escape",
		KeyReload: "r",
		KeyOther:  "other",
	}
	for key, want := range cases {
		if got := key.String(); got != want {
			t.Fatalf("key %d: expected %q, got %q", key, want, got)
		}
	}
}
