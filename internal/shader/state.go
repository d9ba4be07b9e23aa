// Package shader turns fragment source into a drawable program and models the
// outcome of every load attempt as a State.
package shader

import (
	"fmt"

	"shaderplayground/internal/gpu"
)

// State is the outcome of the most recent load attempt. The implementations
// are NotProvided, Compiled, FileReadError and CompileError; the unexported
// method keeps the set closed to this package.
type State interface {
	state()
	String() string
}

// NotProvided means no shader source has been supplied yet.
type NotProvided struct{}

// Compiled holds the drawable program and its resolved uniform locations.
type Compiled struct {
	Program     *Program
	Uniforms    UniformTable
	SourceBytes int
}

// FileReadError means the source file could not be read; nothing was compiled.
type FileReadError struct {
	Path string
	Err  error
}

// CompileError carries the diagnostic log of the first stage that failed.
type CompileError struct {
	Stage gpu.Stage
	Log   string
}

func (NotProvided) state() {}
func (Compiled) state() {}
func (FileReadError) state() {}
func (CompileError) state() {}

func (NotProvided) String() string { return "not provided" }
func (Compiled) String() string { return "compiled" }
func (FileReadError) String() string { return "file read error" }
func (CompileError) String() string { return "compile error" }

func (e FileReadError) Error() string {
	return fmt.Sprintf("could not read shader file: %v", e.Err)
}

func (e FileReadError) Unwrap() error {
	return e.Err
}

func (e CompileError) Error() string {
	if e.Stage == gpu.StageLink {
		return fmt.Sprintf("shader program failed to link:\n%s", e.Log)
	}
	return fmt.Sprintf("%s shader failed to compile:\n%s", e.Stage, e.Log)
}

// AsProgram returns the program of a Compiled state.
func AsProgram(state State) (*Program, bool) {
	compiled, ok := state.(Compiled)
	if !ok || compiled.Program == nil {
		return nil, false
	}
	return compiled.Program, true
}

// Diagnostic returns the user-facing failure text of an error state.
func Diagnostic(state State) (string, bool) {
	switch typed := state.(type) {
	case FileReadError:
		return typed.Error(), true
	case CompileError:
		return typed.Error(), true
	case NotProvided, Compiled:
		return "", false
	default:
		panic(fmt.Sprintf("shader: unknown state %T", state))
	}
}
