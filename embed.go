package shaderplayground

import _ "embed"

// VertexShader is the fixed vertex stage paired with every fragment program.
//
//go:embed shaders/quad.vert
var VertexShader string

// ExampleShader is shown by --example when no shader file is given.
//
//go:embed shaders/example.frag
var ExampleShader string

// DefaultSettings holds the built-in configuration values.
//
//go:embed config/defaults.toml
var DefaultSettings []byte
