// Package opengl implements gpu.Device on an OpenGL 3.3 core context.
package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"

	"shaderplayground/internal/gpu"
)

type Device struct{}

// New loads the GL function pointers. The context must be current on the
// calling goroutine, which must stay locked to its OS thread.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("init opengl: %w", err)
	}
	gl.Disable(gl.DEPTH_TEST)
	return &Device{}, nil
}

// Version reports the driver's GL version string.
func (d *Device) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

func (d *Device) CompileShader(stage gpu.Stage, source string) (gpu.ShaderID, bool) {
	kind := uint32(gl.VERTEX_SHADER)
	if stage == gpu.StageFragment {
		kind = gl.FRAGMENT_SHADER
	}
	shader := gl.CreateShader(kind)

	sources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, sources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	return gpu.ShaderID(shader), status == gl.TRUE
}

func (d *Device) ShaderInfoLog(id gpu.ShaderID) string {
	var length int32
	gl.GetShaderiv(uint32(id), gl.INFO_LOG_LENGTH, &length)
	if length <= 0 {
		return ""
	}
	buf := make([]uint8, length+1)
	gl.GetShaderInfoLog(uint32(id), length, nil, &buf[0])
	return strings.TrimRight(string(buf), "\x00")
}

func (d *Device) DeleteShader(id gpu.ShaderID) {
	gl.DeleteShader(uint32(id))
}

func (d *Device) LinkProgram(shaders ...gpu.ShaderID) (gpu.ProgramID, bool) {
	program := gl.CreateProgram()
	for _, shader := range shaders {
		gl.AttachShader(program, uint32(shader))
	}
	gl.LinkProgram(program)
	for _, shader := range shaders {
		gl.DetachShader(program, uint32(shader))
	}

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	return gpu.ProgramID(program), status == gl.TRUE
}

func (d *Device) ProgramInfoLog(id gpu.ProgramID) string {
	var length int32
	gl.GetProgramiv(uint32(id), gl.INFO_LOG_LENGTH, &length)
	if length <= 0 {
		return ""
	}
	buf := make([]uint8, length+1)
	gl.GetProgramInfoLog(uint32(id), length, nil, &buf[0])
	return strings.TrimRight(string(buf), "\x00")
}

func (d *Device) DeleteProgram(id gpu.ProgramID) {
	gl.DeleteProgram(uint32(id))
}

func (d *Device) UseProgram(id gpu.ProgramID) {
	gl.UseProgram(uint32(id))
}

func (d *Device) UniformLocation(program gpu.ProgramID, name string) gpu.UniformLocation {
	return gpu.UniformLocation(gl.GetUniformLocation(uint32(program), gl.Str(name+"\x00")))
}

func (d *Device) Uniform1f(location gpu.UniformLocation, value float32) {
	gl.Uniform1f(int32(location), value)
}

func (d *Device) Uniform2f(location gpu.UniformLocation, x, y float32) {
	gl.Uniform2f(int32(location), x, y)
}

func (d *Device) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (d *Device) Clear(color gpu.Color) {
	gl.ClearColor(color.R, color.G, color.B, color.A)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.STENCIL_BUFFER_BIT)
}

func (d *Device) NewQuad() (gpu.Quad, error) {
	var quad gpu.Quad
	gl.GenVertexArrays(1, &quad.VertexArray)
	gl.GenBuffers(1, &quad.Buffer)
	if quad.VertexArray == 0 || quad.Buffer == 0 {
		d.DeleteQuad(quad)
		return gpu.Quad{}, fmt.Errorf("allocate quad buffers: gl error 0x%x", gl.GetError())
	}

	vertices := gpu.QuadVertices
	gl.BindVertexArray(quad.VertexArray)
	gl.BindBuffer(gl.ARRAY_BUFFER, quad.Buffer)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(&vertices[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		d.DeleteQuad(quad)
		return gpu.Quad{}, fmt.Errorf("upload quad vertices: gl error 0x%x", code)
	}
	return quad, nil
}

func (d *Device) DrawQuad(quad gpu.Quad) {
	gl.BindVertexArray(quad.VertexArray)
	gl.DrawArrays(gl.TRIANGLE_FAN, 0, 4)
}

func (d *Device) DeleteQuad(quad gpu.Quad) {
	if quad.VertexArray != 0 {
		gl.DeleteVertexArrays(1, &quad.VertexArray)
	}
	if quad.Buffer != 0 {
		gl.DeleteBuffers(1, &quad.Buffer)
	}
}

var _ gpu.Device = (*Device)(nil)
