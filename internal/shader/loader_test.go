package shader

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shaderplayground"
	"shaderplayground/internal/gpu"
	"shaderplayground/internal/gpu/gputest"
)

const validFragment = `#version 330 core
uniform vec2 uResolution;
uniform vec2 uMouse;
uniform float uTime;
out vec4 FragColor;
void main() {
    FragColor = vec4(gl_FragCoord.xy / uResolution, sin(uTime), 1.0);
}
`

const brokenFragment = `#version 330 core
out vec4 FragColor;
void main() {
    FragColor = vec4(1.0;
}
`

func newTestLoader() (*Loader, *gputest.Device) {
	device := gputest.New()
	return NewLoader(device, shaderplayground.VertexShader), device
}

func TestLoadFromStringCompilesAndResolvesUniforms(t *testing.T) {
	loader, device := newTestLoader()

	state := loader.LoadFromString(validFragment)

	compiled, ok := state.(Compiled)
	if !ok {
		t.Fatalf("expected compiled state, got %s: %v", state, state)
	}
	if !compiled.Uniforms.Resolution.Present() || !compiled.Uniforms.Mouse.Present() || !compiled.Uniforms.Time.Present() {
		t.Fatalf("expected all uniforms resolved, got %+v", compiled.Uniforms)
	}
	if compiled.SourceBytes != len(validFragment) {
		t.Fatalf("expected %d source bytes, got %d", len(validFragment), compiled.SourceBytes)
	}
	stats := device.Stats()
	if stats.LiveShaders != 0 {
		t.Fatalf("expected stage objects deleted after link, %d alive", stats.LiveShaders)
	}
	if stats.LivePrograms != 1 {
		t.Fatalf("expected one live program, got %d", stats.LivePrograms)
	}
}

func TestLoadFromStringMissingUniformIsAbsent(t *testing.T) {
	loader, device := newTestLoader()
	source := "#version 330 core\nuniform float uTime;\nout vec4 c;\nvoid main() { c = vec4(uTime); }\n"

	state := loader.LoadFromString(source)

	compiled, ok := state.(Compiled)
	if !ok {
		t.Fatalf("expected compiled state, got %v", state)
	}
	if compiled.Uniforms.Resolution != gpu.AbsentUniform || compiled.Uniforms.Mouse != gpu.AbsentUniform {
		t.Fatalf("expected absent resolution and mouse, got %+v", compiled.Uniforms)
	}
	if !compiled.Uniforms.Time.Present() {
		t.Fatalf("expected uTime resolved")
	}

	compiled.Program.Use()
	compiled.Uniforms.Bind(device, FrameUniforms{Resolution: [2]float32{800, 600}, Time: 1.5})
	if writes := device.Stats().AbsentWrites; writes != 0 {
		t.Fatalf("expected no writes to absent locations, got %d", writes)
	}
	values, ok := device.UniformValue(compiled.Uniforms.Time)
	if !ok || values[0] != 1.5 {
		t.Fatalf("expected uTime=1.5, got %v", values)
	}
}

func TestLoadFromStringFragmentError(t *testing.T) {
	loader, device := newTestLoader()

	state := loader.LoadFromString(brokenFragment)

	compileErr, ok := state.(CompileError)
	if !ok {
		t.Fatalf("expected compile error, got %s", state)
	}
	if compileErr.Stage != gpu.StageFragment {
		t.Fatalf("expected fragment stage, got %s", compileErr.Stage)
	}
	if !strings.Contains(compileErr.Log, "syntax error") {
		t.Fatalf("expected compiler diagnostic, got %q", compileErr.Log)
	}
	if !strings.Contains(compileErr.Error(), "fragment shader failed to compile") {
		t.Fatalf("unexpected error text %q", compileErr.Error())
	}
	stats := device.Stats()
	if stats.LiveShaders != 0 || stats.LivePrograms != 0 {
		t.Fatalf("expected nothing allocated after failure, got %+v", stats)
	}
}

func TestLoadFromStringVertexErrorShortCircuits(t *testing.T) {
	device := gputest.New()
	loader := NewLoader(device, "void main() {")

	state := loader.LoadFromString(validFragment)

	compileErr, ok := state.(CompileError)
	if !ok || compileErr.Stage != gpu.StageVertex {
		t.Fatalf("expected vertex compile error, got %v", state)
	}
	if compiles := device.Stats().Compiles; compiles != 1 {
		t.Fatalf("expected fragment stage skipped, got %d compiles", compiles)
	}
	if live := device.Stats().LiveShaders; live != 0 {
		t.Fatalf("expected vertex shader deleted, %d alive", live)
	}
}

func TestLoadFromStringLinkError(t *testing.T) {
	loader, device := newTestLoader()
	device.FailLink = true

	state := loader.LoadFromString(validFragment)

	compileErr, ok := state.(CompileError)
	if !ok || compileErr.Stage != gpu.StageLink {
		t.Fatalf("expected link error, got %v", state)
	}
	stats := device.Stats()
	if stats.LivePrograms != 0 || stats.LiveShaders != 0 {
		t.Fatalf("expected failed program and stages deleted, got %+v", stats)
	}
}

func TestLoadFromFileMissingPath(t *testing.T) {
	loader, device := newTestLoader()
	path := filepath.Join(t.TempDir(), "missing.frag")

	state := loader.LoadFromFile(path)

	readErr, ok := state.(FileReadError)
	if !ok {
		t.Fatalf("expected file read error, got %v", state)
	}
	if !errors.Is(readErr, fs.ErrNotExist) {
		t.Fatalf("expected not-exist cause, got %v", readErr.Err)
	}
	if compiles := device.Stats().Compiles; compiles != 0 {
		t.Fatalf("expected no compilation attempt, got %d", compiles)
	}
}

func TestLoadFromFileRejectsInvalidUTF8(t *testing.T) {
	loader, _ := newTestLoader()
	path := filepath.Join(t.TempDir(), "binary.frag")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 0x00}, 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	state := loader.LoadFromFile(path)

	readErr, ok := state.(FileReadError)
	if !ok || !errors.Is(readErr, ErrInvalidUTF8) {
		t.Fatalf("expected invalid utf8 read error, got %v", state)
	}
}

func TestLoadFromFileCompilesContents(t *testing.T) {
	loader, _ := newTestLoader()
	path := filepath.Join(t.TempDir(), "shader.frag")
	if err := os.WriteFile(path, []byte(validFragment), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if _, ok := loader.LoadFromFile(path).(Compiled); !ok {
		t.Fatalf("expected compiled state")
	}
}

func TestExampleShaderCompiles(t *testing.T) {
	loader, _ := newTestLoader()
	if _, ok := loader.LoadFromString(shaderplayground.ExampleShader).(Compiled); !ok {
		t.Fatalf("expected embedded example shader to compile")
	}
}

func TestDiagnostic(t *testing.T) {
	cases := []struct {
		name  string
		state State
		want  bool
	}{
		{name: "not provided", state: NotProvided{}, want: false},
		{name: "compiled", state: Compiled{}, want: false},
		{name: "read error", state: FileReadError{Path: "a", Err: fs.ErrNotExist}, want: true},
		{name: "compile error", state: CompileError{Stage: gpu.StageLink, Log: "boom"}, want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text, ok := Diagnostic(tc.state)
			if ok != tc.want {
				t.Fatalf("expected ok=%v, got %v (%q)", tc.want, ok, text)
			}
			if ok && text == "" {
				t.Fatalf("expected diagnostic text")
			}
		})
	}
}
