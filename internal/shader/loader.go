package shader

import (
	"errors"
	"os"
	"strings"
	"unicode/utf8"

	"shaderplayground/internal/gpu"
)

var ErrInvalidUTF8 = errors.New("shader source is not valid UTF-8")

// Loader compiles fragment sources against a fixed vertex stage.
type Loader struct {
	device       gpu.Device
	vertexSource string
}

func NewLoader(device gpu.Device, vertexSource string) *Loader {
	return &Loader{device: device, vertexSource: vertexSource}
}

// LoadFromFile reads path and compiles it. Read failures never reach the
// compiler.
func (l *Loader) LoadFromFile(path string) State {
	payload, err := os.ReadFile(path)
	if err != nil {
		return FileReadError{Path: path, Err: err}
	}
	if !utf8.Valid(payload) {
		return FileReadError{Path: path, Err: ErrInvalidUTF8}
	}
	return l.LoadFromString(string(payload))
}

// LoadFromString compiles the vertex stage, the fragment stage, then links.
// The first failing step decides the CompileError. Stage objects are deleted
// on every path; a program that failed to link is deleted immediately.
func (l *Loader) LoadFromString(fragmentSource string) State {
	device := l.device

	vertex, ok := device.CompileShader(gpu.StageVertex, l.vertexSource)
	if !ok {
		log := device.ShaderInfoLog(vertex)
		device.DeleteShader(vertex)
		return CompileError{Stage: gpu.StageVertex, Log: cleanLog(log)}
	}
	defer device.DeleteShader(vertex)

	fragment, ok := device.CompileShader(gpu.StageFragment, fragmentSource)
	if !ok {
		log := device.ShaderInfoLog(fragment)
		device.DeleteShader(fragment)
		return CompileError{Stage: gpu.StageFragment, Log: cleanLog(log)}
	}
	defer device.DeleteShader(fragment)

	id, ok := device.LinkProgram(vertex, fragment)
	if !ok {
		log := device.ProgramInfoLog(id)
		device.DeleteProgram(id)
		return CompileError{Stage: gpu.StageLink, Log: cleanLog(log)}
	}

	program := &Program{device: device, id: id}
	return Compiled{
		Program:     program,
		Uniforms:    ResolveUniforms(program),
		SourceBytes: len(fragmentSource),
	}
}

func cleanLog(log string) string {
	return strings.TrimSpace(log)
}
