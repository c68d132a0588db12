package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gogpu/rendergraph"
)

// ExitError carries the process exit code for a failed run.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

type config struct {
	framePath string
	width     uint
	height    uint
	pngPath   string
	backend   string
	logLevel  string
	logFormat string
}

// parseArgs returns the config, whether to exit cleanly, or an ExitError.
func parseArgs(args []string, output io.Writer) (*config, bool, error) {
	flagSet := flag.NewFlagSet("rgplan", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, `
rgplan - compile a frame description and print its barrier plan.

Usage:
  rgplan [options] FRAME.hcl

Options:
`)
		flagSet.PrintDefaults()
	}

	width := flagSet.Uint("width", 1920, "Value of screen.width in the frame file.")
	height := flagSet.Uint("height", 1080, "Value of screen.height in the frame file.")
	pngPath := flagSet.String("png", "", "Write a timeline image to this path.")
	backendName := flagSet.String("backend", "noop", "Device backend to compile on.")
	logLevel := flagSet.String("log-level", "warn", "Logging level. Options: 'debug', 'info', 'warn', 'error'.")
	logFormat := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	version := flagSet.Bool("version", false, "Print the version and exit.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if *version {
		fmt.Fprintf(output, "rgplan %s\n", rendergraph.Version)
		return nil, true, nil
	}
	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}

	cfg := &config{
		framePath: flagSet.Arg(0),
		width:     *width,
		height:    *height,
		pngPath:   *pngPath,
		backend:   *backendName,
		logLevel:  strings.ToLower(*logLevel),
		logFormat: strings.ToLower(*logFormat),
	}
	if cfg.logFormat != "text" && cfg.logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	switch cfg.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	if cfg.width == 0 || cfg.height == 0 {
		return nil, false, &ExitError{Code: 2, Message: "width and height must be positive"}
	}
	return cfg, false, nil
}

func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}
	return slog.New(handler)
}
