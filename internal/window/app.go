// Package window defines the contract between a platform surface and the
// application drawn on it, and the frame loop that drives the two.
package window

// Key is a platform-independent key code. Only the keys the application
// reacts to are named.
type Key int

const (
	KeyOther Key = iota
	KeyEscape
	KeyReload
	KeyOpen
	KeyEdit
	KeyCopy
)

func (k Key) String() string {
	switch k {
	case KeyEscape:
		return "escape"
	case KeyReload:
		return "r"
	case KeyOpen:
		return "o"
	case KeyEdit:
		return "e"
	case KeyCopy:
		return "c"
	default:
		return "other"
	}
}

type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
	MouseOther
)

func (b MouseButton) String() string {
	switch b {
	case MouseLeft:
		return "left"
	case MouseRight:
		return "right"
	case MouseMiddle:
		return "middle"
	default:
		return "other"
	}
}

// App receives platform events and draws one frame per loop iteration. All
// methods are called from the goroutine that owns the graphics context.
type App interface {
	OnResize(width, height uint32)
	OnKey(key Key, pressed bool)
	OnMouseButton(button MouseButton, pressed bool)
	OnMouseMove(x, y float32)
	OnFileDrop(path string)
	Draw()
	ShouldQuit() bool
}

// Options describes the surface to create.
type Options struct {
	Title  string
	Width  int
	Height int
	VSync  bool
	// MaxFPS caps the frame rate when positive.
	MaxFPS int
}
