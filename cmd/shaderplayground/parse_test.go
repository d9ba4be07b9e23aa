package main

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"strings"
	"testing"
)

func TestParseArgsDefaults(t *testing.T) {
	t.Setenv("SHADERPLAYGROUND_CONFIG", "")

	cfg, err := parseArgs(nil, io.Discard)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.ShaderPath != "" || cfg.Debug || cfg.Example {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
	if len(cfg.Overrides) != 0 {
		t.Fatalf("expected no overrides without flags, got %v", cfg.Overrides)
	}
}

func TestParseArgsShaderAndFlags(t *testing.T) {
	cfg, err := parseArgs([]string{"--debouncer-ms", "400", "shader.frag", "--debug", "--notify"}, io.Discard)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.ShaderPath != "shader.frag" {
		t.Fatalf("expected shader.frag, got %q", cfg.ShaderPath)
	}
	if !cfg.Debug {
		t.Fatalf("expected debug after the positional argument")
	}
	if got := cfg.Overrides["watch.debounce-ms"]; got != int64(400) {
		t.Fatalf("expected debounce override 400, got %v", got)
	}
	if got := cfg.Overrides["desktop.notify-on-error"]; got != true {
		t.Fatalf("expected notify override, got %v", got)
	}
	if got := cfg.Overrides["log.level"]; got != "debug" {
		t.Fatalf("expected debug level override, got %v", got)
	}
}

func TestParseArgsConfigFromEnv(t *testing.T) {
	t.Setenv("SHADERPLAYGROUND_CONFIG", "/tmp/env.toml")

	cfg, err := parseArgs(nil, io.Discard)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.ConfigPath != "/tmp/env.toml" {
		t.Fatalf("expected env config path, got %q", cfg.ConfigPath)
	}

	cfg, err = parseArgs([]string{"--config", "flag.toml"}, io.Discard)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.ConfigPath != "flag.toml" {
		t.Fatalf("expected flag to win over env, got %q", cfg.ConfigPath)
	}
}

func TestParseArgsHelp(t *testing.T) {
	var out bytes.Buffer

	_, err := parseArgs([]string{"-h"}, &out)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected ErrHelp, got %v", err)
	}
	if !strings.Contains(out.String(), "Usage: shaderplayground") {
		t.Fatalf("expected usage text, got %q", out.String())
	}
}

func TestParseArgsVersion(t *testing.T) {
	cfg, err := parseArgs([]string{"--version"}, io.Discard)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !cfg.ShowVersion {
		t.Fatalf("expected version request")
	}
}

func TestParseArgsRejectsTwoShaders(t *testing.T) {
	if _, err := parseArgs([]string{"a.frag", "b.frag"}, io.Discard); err == nil {
		t.Fatalf("expected error for two shader files")
	}
}

func TestParseArgsRejectsBadNumber(t *testing.T) {
	if _, err := parseArgs([]string{"--debouncer-ms", "soon"}, io.Discard); err == nil {
		t.Fatalf("expected error for a non-numeric debounce")
	}
}
