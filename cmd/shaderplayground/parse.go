package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"shaderplayground/internal/cli"
	"shaderplayground/internal/config"
)

const defaultDebounceMS = 250

type Config struct {
	ShaderPath  string
	ConfigPath  string
	Debug       bool
	Example     bool
	ShowVersion bool
	MetricsOut  string
	// Overrides holds settings keys for the flags given explicitly.
	Overrides map[string]any
}

func parseArgs(args []string, errOut io.Writer) (Config, error) {
	fs := flag.NewFlagSet("shaderplayground", flag.ContinueOnError)
	fs.SetOutput(errOut)
	debounceFlag := fs.Int("debouncer-ms", defaultDebounceMS, "Debounce window for file changes in milliseconds")
	debugFlag := fs.Bool("debug", false, "Enable debug logging")
	configFlag := fs.String("config", "", "Settings file (env: SHADERPLAYGROUND_CONFIG)")
	vsyncFlag := fs.Bool("vsync", false, "Synchronize frames with the display")
	maxFPSFlag := fs.Int("max-fps", 0, "Frame rate cap, 0 for none")
	notifyFlag := fs.Bool("notify", false, "Show a desktop notification when a reload fails")
	exampleFlag := fs.Bool("example", false, "Start with the example shader when no file is given")
	metricsFlag := fs.String("metrics-out", "", "Write reload metrics to this file on exit")
	helpVersion := cli.AddHelpVersionFlags(fs, "Show this help message", "Print version and exit")
	fs.Usage = func() {
		printHelp(fs.Output())
	}

	// Flags may follow the shader path.
	var positional []string
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return Config{}, err
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		rest = fs.Args()[1:]
	}

	if helpVersion.Help {
		fs.Usage()
		return Config{}, flag.ErrHelp
	}
	if helpVersion.Version {
		return Config{ShowVersion: true}, nil
	}
	if len(positional) > 1 {
		fs.Usage()
		return Config{}, fmt.Errorf("expected at most one shader file, got %d", len(positional))
	}

	cfg := Config{
		ConfigPath: strings.TrimSpace(*configFlag),
		Debug:      *debugFlag,
		Example:    *exampleFlag,
		MetricsOut: strings.TrimSpace(*metricsFlag),
		Overrides:  map[string]any{},
	}
	if len(positional) == 1 {
		cfg.ShaderPath = strings.TrimSpace(positional[0])
	}
	if cfg.ConfigPath == "" {
		cfg.ConfigPath = strings.TrimSpace(os.Getenv(config.EnvConfigPath))
	}

	set := cli.SetFlags(fs)
	if set["debouncer-ms"] {
		cfg.Overrides["watch.debounce-ms"] = int64(*debounceFlag)
	}
	if set["vsync"] {
		cfg.Overrides["window.vsync"] = *vsyncFlag
	}
	if set["max-fps"] {
		cfg.Overrides["window.max-fps"] = int64(*maxFPSFlag)
	}
	if set["notify"] {
		cfg.Overrides["desktop.notify-on-error"] = *notifyFlag
	}
	if *debugFlag {
		cfg.Overrides["log.level"] = "debug"
	}
	return cfg, nil
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Usage: shaderplayground [options] [shader.frag]")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Render a fragment shader on a full-window quad and reload it on every save")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Options:")
	writeOption(out, "--debouncer-ms N", "Debounce window for file changes (default: 250)")
	writeOption(out, "--debug", "Enable debug logging")
	writeOption(out, "--config PATH", "Settings file, TOML or YAML (env: SHADERPLAYGROUND_CONFIG)")
	writeOption(out, "--vsync", "Synchronize frames with the display")
	writeOption(out, "--max-fps N", "Frame rate cap, 0 for none")
	writeOption(out, "--notify", "Desktop notification when a reload fails")
	writeOption(out, "--example", "Start with the example shader when no file is given")
	writeOption(out, "--metrics-out PATH", "Write reload metrics (Prometheus text) on exit")
	writeOption(out, "--help", "Show this help message")
	writeOption(out, "--version", "Print version and exit")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Keys:")
	fmt.Fprintln(out, "  Esc  quit          R  reload")
	fmt.Fprintln(out, "  O    open a file   E  edit the active file")
	fmt.Fprintln(out, "  C    copy the last error")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Drop a file on the window to switch to it.")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Exit codes:")
	fmt.Fprintln(out, "  0  Success")
	fmt.Fprintln(out, "  1  Usage error or startup failure")
}

func writeOption(out io.Writer, name, desc string) {
	fmt.Fprintf(out, "  %-17s %s\n", name, desc)
}
