// Command rgplan loads a frame description, compiles it on a registered
// device backend (the noop HAL device by default) and prints the pass
// order with the barriers between passes.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gogpu/rendergraph"
	"github.com/gogpu/rendergraph/backend"
	_ "github.com/gogpu/rendergraph/backend/native"
	"github.com/gogpu/rendergraph/internal/framefile"
	"github.com/gogpu/rendergraph/internal/timeline"
)

func main() {
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(outW io.Writer, args []string) error {
	cfg, shouldExit, err := parseArgs(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	rendergraph.SetLogger(newLogger(cfg.logLevel, cfg.logFormat, outW))
	defer rendergraph.SetLogger(nil)

	frame, err := framefile.Load(cfg.framePath, framefile.Screen{
		Width:  uint32(cfg.width),  //nolint:gosec // flag values are small
		Height: uint32(cfg.height), //nolint:gosec // flag values are small
	})
	if err != nil {
		return err
	}

	dev, release, err := backend.Open(cfg.backend)
	if errors.Is(err, backend.ErrUnknownBackend) {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	if err != nil {
		return err
	}
	defer release()

	g := rendergraph.New(dev, rendergraph.WithLabel("rgplan"))
	defer g.Shutdown()

	draws, err := newFullscreenDraws(dev)
	if err != nil {
		return err
	}
	defer draws.destroy()

	if err := frame.Build(g, draws.executeFor); err != nil {
		return fmt.Errorf("%s: %w", frame.Filename, err)
	}
	if err := draws.prepare(g); err != nil {
		return err
	}
	if err := dev.RecordFrame(g); err != nil {
		return err
	}
	printPlan(outW, g)
	fmt.Fprintf(outW, "%d fullscreen draws\n", draws.count())

	if cfg.pngPath != "" {
		f, err := os.Create(cfg.pngPath)
		if err != nil {
			return fmt.Errorf("create timeline: %w", err)
		}
		defer f.Close()
		if err := timeline.WritePNG(f, g, timeline.Options{}); err != nil {
			return err
		}
		fmt.Fprintf(outW, "timeline written to %s\n", cfg.pngPath)
	}
	return nil
}
