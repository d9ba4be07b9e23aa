// Package gpu describes the graphics primitives the preview needs: stage
// compilation, program linking, uniform binding, and drawing a static quad.
//
// Every call is synchronous and must happen on the goroutine that owns the
// graphics context. Failures are reported through return values and info logs.
package gpu

type Stage int

const (
	StageVertex Stage = iota
	StageFragment
	StageLink
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageLink:
		return "link"
	default:
		return "unknown"
	}
}

type ShaderID uint32

type ProgramID uint32

type UniformLocation int32

// AbsentUniform is the location reported for a uniform the program does not use.
const AbsentUniform UniformLocation = -1

func (l UniformLocation) Present() bool {
	return l >= 0
}

type Color struct {
	R, G, B, A float32
}

// Quad is the vertex array and buffer holding the four corners of clip space.
type Quad struct {
	VertexArray uint32
	Buffer      uint32
}

// QuadVertices are drawn as a triangle fan.
var QuadVertices = [8]float32{
	-1.0, -1.0, // bottom left
	1.0, -1.0, // bottom right
	1.0, 1.0, // top right
	-1.0, 1.0, // top left
}

type Device interface {
	// CompileShader returns ok=false when the stage failed to compile; the
	// shader object is still allocated so its info log can be read.
	CompileShader(stage Stage, source string) (id ShaderID, ok bool)
	ShaderInfoLog(id ShaderID) string
	DeleteShader(id ShaderID)

	// LinkProgram returns ok=false when linking failed; the program object is
	// still allocated so its info log can be read.
	LinkProgram(shaders ...ShaderID) (id ProgramID, ok bool)
	ProgramInfoLog(id ProgramID) string
	DeleteProgram(id ProgramID)
	UseProgram(id ProgramID)

	UniformLocation(program ProgramID, name string) UniformLocation
	Uniform1f(location UniformLocation, value float32)
	Uniform2f(location UniformLocation, x, y float32)

	Viewport(x, y, width, height int32)
	// Clear clears the color and stencil buffers.
	Clear(color Color)

	NewQuad() (Quad, error)
	DrawQuad(quad Quad)
	DeleteQuad(quad Quad)
}
