package shader

import "shaderplayground/internal/gpu"

// Program owns one linked GPU program. Release deletes it exactly once.
type Program struct {
	device   gpu.Device
	id       gpu.ProgramID
	released bool
}

func (p *Program) ID() gpu.ProgramID {
	return p.id
}

func (p *Program) Use() {
	if p == nil || p.released {
		return
	}
	p.device.UseProgram(p.id)
}

func (p *Program) UniformLocation(name string) gpu.UniformLocation {
	if p == nil || p.released {
		return gpu.AbsentUniform
	}
	return p.device.UniformLocation(p.id, name)
}

func (p *Program) Release() {
	if p == nil || p.released {
		return
	}
	p.released = true
	p.device.DeleteProgram(p.id)
}

func (p *Program) Released() bool {
	return p == nil || p.released
}
