package shader

import "shaderplayground/internal/gpu"

const (
	UniformResolution = "uResolution"
	UniformMouse      = "uMouse"
	UniformTime       = "uTime"
)

// UniformTable caches the locations of the uniforms fed every frame.
type UniformTable struct {
	Resolution gpu.UniformLocation
	Mouse      gpu.UniformLocation
	Time       gpu.UniformLocation
}

// FrameUniforms are the per-frame values. Mouse is in window coordinates,
// origin at the top left.
type FrameUniforms struct {
	Resolution [2]float32
	Mouse      [2]float32
	Time       float32
}

func AbsentUniforms() UniformTable {
	return UniformTable{
		Resolution: gpu.AbsentUniform,
		Mouse:      gpu.AbsentUniform,
		Time:       gpu.AbsentUniform,
	}
}

func ResolveUniforms(program *Program) UniformTable {
	if program == nil {
		return AbsentUniforms()
	}
	return UniformTable{
		Resolution: program.UniformLocation(UniformResolution),
		Mouse:      program.UniformLocation(UniformMouse),
		Time:       program.UniformLocation(UniformTime),
	}
}

// Bind writes the frame values to the currently used program. Absent
// locations are skipped. The mouse Y axis is flipped to match gl_FragCoord.
func (t UniformTable) Bind(device gpu.Device, frame FrameUniforms) {
	if t.Resolution.Present() {
		device.Uniform2f(t.Resolution, frame.Resolution[0], frame.Resolution[1])
	}
	if t.Mouse.Present() {
		device.Uniform2f(t.Mouse, frame.Mouse[0], frame.Resolution[1]-frame.Mouse[1])
	}
	if t.Time.Present() {
		device.Uniform1f(t.Time, frame.Time)
	}
}
