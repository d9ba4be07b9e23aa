// Package gputest provides an in-memory gpu.Device that tracks every
// allocated object, so tests can assert on leaks and on what was drawn.
package gputest

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"shaderplayground/internal/gpu"
)

var uniformPattern = regexp.MustCompile(`(?m)^\s*uniform\s+\w+\s+(\w+)\s*;`)

type shaderObject struct {
	stage  gpu.Stage
	source string
	log    string
}

type programObject struct {
	uniforms map[string]gpu.UniformLocation
	log      string
}

// Device compiles nothing; it checks sources for a few structural mistakes
// (unbalanced brackets, an `#error` directive, a missing main) and reports
// them the way a GLSL compiler would.
type Device struct {
	mutex sync.Mutex

	// FailLink makes every LinkProgram call fail.
	FailLink bool
	// FailQuad makes NewQuad return an error.
	FailQuad bool

	nextID   uint32
	shaders  map[gpu.ShaderID]shaderObject
	programs map[gpu.ProgramID]programObject
	quads    map[gpu.Quad]struct{}

	current        gpu.ProgramID
	uniformValues  map[gpu.UniformLocation][]float32
	viewport       [4]int32
	clears         int
	draws          int
	lastClear      gpu.Color
	invalidDeletes int
	absentWrites   int
	compiles       int
}

func New() *Device {
	return &Device{
		shaders:       make(map[gpu.ShaderID]shaderObject),
		programs:      make(map[gpu.ProgramID]programObject),
		quads:         make(map[gpu.Quad]struct{}),
		uniformValues: make(map[gpu.UniformLocation][]float32),
	}
}

func (d *Device) allocate() uint32 {
	d.nextID++
	return d.nextID
}

func (d *Device) CompileShader(stage gpu.Stage, source string) (gpu.ShaderID, bool) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.compiles++
	id := gpu.ShaderID(d.allocate())
	log := check(stage, source)
	d.shaders[id] = shaderObject{stage: stage, source: source, log: log}
	return id, log == ""
}

func (d *Device) ShaderInfoLog(id gpu.ShaderID) string {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.shaders[id].log
}

func (d *Device) DeleteShader(id gpu.ShaderID) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if _, ok := d.shaders[id]; !ok {
		d.invalidDeletes++
		return
	}
	delete(d.shaders, id)
}

func (d *Device) LinkProgram(shaders ...gpu.ShaderID) (gpu.ProgramID, bool) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	id := gpu.ProgramID(d.allocate())
	program := programObject{uniforms: make(map[string]gpu.UniformLocation)}
	if d.FailLink {
		program.log = "error: linking failed: unresolved varying"
		d.programs[id] = program
		return id, false
	}

	next := gpu.UniformLocation(0)
	for _, shaderID := range shaders {
		shader, ok := d.shaders[shaderID]
		if !ok {
			program.log = fmt.Sprintf("error: shader %d is not a shader object", shaderID)
			d.programs[id] = program
			return id, false
		}
		for _, match := range uniformPattern.FindAllStringSubmatch(shader.source, -1) {
			if _, seen := program.uniforms[match[1]]; !seen {
				program.uniforms[match[1]] = next
				next++
			}
		}
	}
	d.programs[id] = program
	return id, true
}

func (d *Device) ProgramInfoLog(id gpu.ProgramID) string {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.programs[id].log
}

func (d *Device) DeleteProgram(id gpu.ProgramID) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if _, ok := d.programs[id]; !ok {
		d.invalidDeletes++
		return
	}
	delete(d.programs, id)
	if d.current == id {
		d.current = 0
	}
}

func (d *Device) UseProgram(id gpu.ProgramID) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.current = id
}

func (d *Device) UniformLocation(program gpu.ProgramID, name string) gpu.UniformLocation {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	location, ok := d.programs[program].uniforms[name]
	if !ok {
		return gpu.AbsentUniform
	}
	return location
}

func (d *Device) Uniform1f(location gpu.UniformLocation, value float32) {
	d.setUniform(location, value)
}

func (d *Device) Uniform2f(location gpu.UniformLocation, x, y float32) {
	d.setUniform(location, x, y)
}

func (d *Device) setUniform(location gpu.UniformLocation, values ...float32) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if !location.Present() {
		d.absentWrites++
		return
	}
	d.uniformValues[location] = values
}

func (d *Device) Viewport(x, y, width, height int32) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.viewport = [4]int32{x, y, width, height}
}

func (d *Device) Clear(color gpu.Color) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.clears++
	d.lastClear = color
}

func (d *Device) NewQuad() (gpu.Quad, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.FailQuad {
		return gpu.Quad{}, errors.New("out of memory")
	}
	quad := gpu.Quad{VertexArray: d.allocate(), Buffer: d.allocate()}
	d.quads[quad] = struct{}{}
	return quad, nil
}

func (d *Device) DrawQuad(quad gpu.Quad) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if _, ok := d.quads[quad]; ok && d.current != 0 {
		d.draws++
	}
}

func (d *Device) DeleteQuad(quad gpu.Quad) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if _, ok := d.quads[quad]; !ok {
		d.invalidDeletes++
		return
	}
	delete(d.quads, quad)
}

// Stats is a snapshot of the device counters.
type Stats struct {
	LiveShaders    int
	LivePrograms   int
	LiveQuads      int
	Compiles       int
	Clears         int
	Draws          int
	InvalidDeletes int
	AbsentWrites   int
	CurrentProgram gpu.ProgramID
	Viewport       [4]int32
	LastClear      gpu.Color
}

func (d *Device) Stats() Stats {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return Stats{
		LiveShaders:    len(d.shaders),
		LivePrograms:   len(d.programs),
		LiveQuads:      len(d.quads),
		Compiles:       d.compiles,
		Clears:         d.clears,
		Draws:          d.draws,
		InvalidDeletes: d.invalidDeletes,
		AbsentWrites:   d.absentWrites,
		CurrentProgram: d.current,
		Viewport:       d.viewport,
		LastClear:      d.lastClear,
	}
}

// UniformValue returns the last values written to a location.
func (d *Device) UniformValue(location gpu.UniformLocation) ([]float32, bool) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	values, ok := d.uniformValues[location]
	return values, ok
}

func check(stage gpu.Stage, source string) string {
	lines := strings.Split(source, "\n")
	depth := map[rune]int{}
	pairs := map[rune]rune{'}': '{', ')': '(', ']': '['}
	for index, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#error") {
			return fmt.Sprintf("ERROR: 0:%d: '#error' : %s", index+1, strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "#error")))
		}
		for _, r := range line {
			switch r {
			case '{', '(', '[':
				depth[r]++
			case '}', ')', ']':
				open := pairs[r]
				if depth[open] == 0 {
					return fmt.Sprintf("ERROR: 0:%d: '%c' : syntax error", index+1, r)
				}
				depth[open]--
			}
		}
	}
	for _, open := range []rune{'{', '(', '['} {
		if depth[open] != 0 {
			return fmt.Sprintf("ERROR: 0:%d: '' : syntax error: unexpected end of file, unclosed '%c'", len(lines), open)
		}
	}
	if !strings.Contains(source, "void main") {
		return fmt.Sprintf("ERROR: 0:%d: '' : %s shader has no entry point 'main'", len(lines), stage)
	}
	return ""
}

var _ gpu.Device = (*Device)(nil)
