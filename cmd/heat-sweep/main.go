// Command heat-sweep runs a grid of resolutions and step counts concurrently
// and tabulates stability and validation error for each.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"heat2d/internal/core"
	"heat2d/internal/sim"
)

type scenario struct {
	core  int
	steps int
	tile  int
}

func (s scenario) String() string {
	return fmt.Sprintf("core=%dx%d steps=%d tile=%d", s.core, s.core, s.steps, s.tile)
}

type scenarioResult struct {
	scenario scenario
	r        float64
	unstable bool
	passed   bool
	maxError float64
	elapsed  time.Duration
	err      error
}

func main() {
	cores := flag.String("cores", "14,30,62,126", "comma-separated core sizes (square grids)")
	steps := flag.String("steps", "1000,4000,16000", "comma-separated step counts")
	tmax := flag.Float64("tmax", 0.1, "simulated end time")
	strategy := flag.String("strategy", "cached", "stencil read strategy")
	threshold := flag.Float64("threshold", 1e-4, "validation threshold")
	workers := flag.Int("workers", runtime.NumCPU(), "number of scenarios run at once")
	flag.Parse()

	coreSizes, err := parseInts(*cores)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cores:", err)
		os.Exit(2)
	}
	stepCounts, err := parseInts(*steps)
	if err != nil {
		fmt.Fprintln(os.Stderr, "steps:", err)
		os.Exit(2)
	}

	base := sim.DefaultConfig()
	base.TMax = *tmax
	base.Strategy = *strategy
	base.Threshold = *threshold
	base.SnapshotEvery = 0
	// Scenarios already run in parallel; keep each driver to one tile at a time.
	base.Workers = 1

	sets := scenarios(coreSizes, stepCounts)
	fmt.Printf("Sweeping %d scenarios (%d workers, strategy %s)\n", len(sets), *workers, *strategy)

	start := time.Now()
	all := sweep(base, sets, *workers)
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i].scenario, all[j].scenario
		if a.core != b.core {
			return a.core < b.core
		}
		return a.steps < b.steps
	})
	printTable(os.Stdout, all)
	fmt.Printf("\nelapsed %s\n", time.Since(start).Round(time.Millisecond))
}

func parseInts(list string) ([]int, error) {
	var out []int
	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.Atoi(field)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid value %q", field)
		}
		out = append(out, v)
	}
	return out, nil
}

// scenarios crosses core sizes with step counts. The tile is the largest
// divisor of the core size not above 16.
func scenarios(cores, steps []int) []scenario {
	var sets []scenario
	for _, c := range cores {
		tile := 1
		for t := 16; t > 1; t-- {
			if c%t == 0 {
				tile = t
				break
			}
		}
		for _, n := range steps {
			sets = append(sets, scenario{core: c, steps: n, tile: tile})
		}
	}
	return sets
}

func sweep(base sim.Config, sets []scenario, workers int) []scenarioResult {
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan scenario)
	results := make(chan scenarioResult)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range jobs {
				results <- runScenario(base, s)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		for _, s := range sets {
			jobs <- s
		}
		close(jobs)
	}()

	var all []scenarioResult
	for res := range results {
		all = append(all, res)
	}
	return all
}

func runScenario(base sim.Config, s scenario) scenarioResult {
	cfg := base
	cfg.CoreRows, cfg.CoreCols = s.core, s.core
	cfg.TileRows, cfg.TileCols = s.tile, s.tile
	cfg.TimeSteps = s.steps

	start := time.Now()
	out := scenarioResult{scenario: s}
	dx, dy := cfg.Spacing()
	out.r = sim.StabilityNumber(cfg.Dt(), dx, dy)

	d, err := sim.New(cfg)
	if err != nil {
		out.err = err
		return out
	}
	res, err := d.Run(context.Background())
	out.elapsed = time.Since(start)
	if errors.Is(err, core.ErrUnstableConfiguration) {
		out.unstable = true
		return out
	}
	if err != nil {
		out.err = err
		return out
	}
	out.passed = res.Passed
	out.maxError = res.MaxError
	return out
}

func printTable(w io.Writer, all []scenarioResult) {
	fmt.Fprintf(w, "%6s %7s %5s %8s  %-9s %12s %10s\n", "core", "steps", "tile", "r", "verdict", "max error", "elapsed")
	for _, res := range all {
		s := res.scenario
		verdict, maxErr := "failed", fmt.Sprintf("%.3e", res.maxError)
		switch {
		case res.err != nil:
			verdict, maxErr = "error", res.err.Error()
		case res.unstable:
			verdict, maxErr = "unstable", "-"
		case res.passed:
			verdict = "passed"
		}
		fmt.Fprintf(w, "%6d %7d %5d %8.4f  %-9s %12s %10s\n",
			s.core, s.steps, s.tile, res.r, verdict, maxErr, res.elapsed.Round(time.Millisecond))
	}
}
