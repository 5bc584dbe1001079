// Command heat runs the 2D heat equation solver headless and validates the
// result against the analytical solution.
//
// Exit status: 0 validation passed, 1 validation failed, 2 unstable
// configuration, 3 any other error.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"heat2d/internal/core"
	"heat2d/internal/render"
	"heat2d/internal/sim"
	"heat2d/internal/snapshot"
	"heat2d/internal/stream"
)

const (
	exitPassed   = 0
	exitFailed   = 1
	exitUnstable = 2
	exitError    = 3
)

type options struct {
	file       string
	pngDir     string
	pngScale   int
	rawDir     string
	serve      string
	params     bool
	verbose    bool
	quiet      bool
	cpuProfile string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("heat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg := sim.DefaultConfig()
	cfg.Bind(fs)
	var opts options
	fs.StringVar(&opts.file, "config", "", "load run parameters from a .json or .toml file before applying flags")
	fs.StringVar(&opts.pngDir, "png", "", "write PNG snapshots into this directory")
	fs.IntVar(&opts.pngScale, "png-scale", 4, "PNG snapshot upscale factor")
	fs.StringVar(&opts.rawDir, "raw", "", "write raw float64 snapshots with JSON metadata into this directory")
	fs.StringVar(&opts.serve, "serve", "", "stream snapshots to websocket clients on this address (path /ws)")
	fs.BoolVar(&opts.params, "params", false, "print the run parameters before stepping")
	fs.BoolVar(&opts.verbose, "verbose", false, "log the work division and snapshot failures")
	fs.BoolVar(&opts.quiet, "quiet", false, "print nothing but errors")
	fs.StringVar(&opts.cpuProfile, "profile-cpu", "", "CPU profile output file")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "heat - explicit finite-difference solver for u_t = u_xx + u_yy\n\n")
		fmt.Fprintf(stderr, "Usage: heat [OPTIONS]\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  heat -rows 62 -cols 62 -tile-rows 31 -tile-cols 31\n")
		fmt.Fprintf(stderr, "  heat -config run.toml -png out/ -snapshot-every 200\n")
		fmt.Fprintf(stderr, "\nExit status: 0 passed, 1 validation failed, 2 unstable, 3 error\n")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitPassed
		}
		return exitError
	}

	logger := log.New(stderr, "heat: ", log.LstdFlags)
	if opts.file != "" {
		base, err := sim.LoadFile(opts.file)
		if err != nil {
			logger.Print(err)
			return exitError
		}
		if cfg, err = sim.Overlay(base, fs); err != nil {
			logger.Print(err)
			return exitError
		}
	}

	if opts.cpuProfile != "" {
		f, err := os.Create(opts.cpuProfile)
		if err != nil {
			logger.Printf("could not create CPU profile: %v", err)
			return exitError
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			logger.Printf("could not start CPU profile: %v", err)
			return exitError
		}
		defer pprof.StopCPUProfile()
	}

	driverLog := log.New(io.Discard, "", 0)
	if opts.verbose && !opts.quiet {
		driverLog = logger
	}
	sinks, cleanup, err := buildSinks(cfg, opts, logger)
	if err != nil {
		logger.Print(err)
		return exitError
	}
	defer cleanup()

	driverOpts := []sim.Option{sim.WithLogger(driverLog)}
	if len(sinks) > 0 {
		driverOpts = append(driverOpts, sim.WithSnapshotter(sinks))
	}
	d, err := sim.New(cfg, driverOpts...)
	if err != nil {
		logger.Print(err)
		return exitError
	}
	if opts.params && !opts.quiet {
		if _, err := d.Parameters().WriteTo(stdout); err != nil {
			logger.Print(err)
		}
	}

	res, err := d.Run(ctx)
	if err != nil {
		logger.Print(err)
		if errors.Is(err, core.ErrUnstableConfiguration) {
			return exitUnstable
		}
		return exitError
	}
	if !opts.quiet {
		report(stdout, res)
	}
	if !res.Passed {
		return exitFailed
	}
	return exitPassed
}

func buildSinks(cfg sim.Config, opts options, logger *log.Logger) (snapshot.Multi, func(), error) {
	var sinks snapshot.Multi
	cleanup := func() {}
	if opts.pngDir != "" {
		s, err := snapshot.NewPNG(opts.pngDir, render.DefaultRange, opts.pngScale)
		if err != nil {
			return nil, cleanup, err
		}
		sinks = append(sinks, s)
	}
	if opts.rawDir != "" {
		dx, dy := cfg.Spacing()
		s, err := snapshot.NewRaw(opts.rawDir, snapshot.Meta{Dt: cfg.Dt(), Dx: dx, Dy: dy})
		if err != nil {
			return nil, cleanup, err
		}
		sinks = append(sinks, s)
	}
	if opts.serve != "" {
		hub := stream.NewHub(cfg.Dt(), logger)
		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		srv := &http.Server{Addr: opts.serve, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Printf("stream server: %v", err)
			}
		}()
		logger.Printf("streaming snapshots on ws://%s/ws", opts.serve)
		sinks = append(sinks, hub)
		cleanup = func() {
			hub.Close()
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}
	}
	return sinks, cleanup, nil
}

func report(w io.Writer, res sim.Result) {
	verdict := "FAILED"
	if res.Passed {
		verdict = "passed"
	}
	fmt.Fprintf(w, "validation %s: max error %.6g (threshold %g)\n", verdict, res.MaxError, res.Threshold)
	fmt.Fprintf(w, "steps %d, t = %g, r = %.4f\n", res.Steps, res.SimulatedTime, res.R)
	fmt.Fprintf(w, "elapsed %s, %s per step\n", res.Elapsed.Round(time.Millisecond), res.StepTime)
	if res.Snapshots > 0 {
		fmt.Fprintf(w, "snapshots %d (%d failed)\n", res.Snapshots, res.SnapshotFailures)
	}
}
