// Package stencil implements the explicit 5-point update of the 2D heat
// equation over a tiled core region.
//
// Two read strategies are provided. Direct reads every neighbor straight from
// the current buffer. Cached first stages each tile plus its halo into a
// TileCache and resolves all reads against it. Both evaluate the same
// expression in the same order on the same frozen snapshot of the current
// buffer, so their results are bit-identical.
//
// Tiles are independent: a step dispatches all tiles concurrently and
// returns only when every tile has been written. Within a tile a group of
// workers shares the work cell-by-cell in strided passes.
package stencil

import (
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"heat2d/internal/core"
)

// Kernel computes next from curr for every core cell. Halo cells of next are
// never written.
type Kernel interface {
	Name() string
	Apply(curr, next *core.Buffer) error
}

// Coefficients of the forward-Euler scheme:
// next = c*Center + (e + w)*RX + (s + n)*RY, with Center = 1 - 2RX - 2RY.
type Coefficients struct {
	RX, RY float64
	Center float64
}

// NewCoefficients derives rX = dt/dx^2 and rY = dt/dy^2.
func NewCoefficients(dt, dx, dy float64) Coefficients {
	rX := dt / (dx * dx)
	rY := dt / (dy * dy)
	return Coefficients{RX: rX, RY: rY, Center: 1.0 - 2.0*rX - 2.0*rY}
}

// Update evaluates the scheme for one cell. Every strategy goes through this
// function so the floating point evaluation order is shared.
func (k Coefficients) Update(center, east, west, south, north float64) float64 {
	return center*k.Center + east*k.RX + west*k.RX + south*k.RY + north*k.RY
}

// Options control work partitioning.
type Options struct {
	// Tile is the tile extent; it must divide the core extent.
	Tile core.Vec2
	// GroupSize is the number of cooperating workers per tile. Values below
	// one mean one.
	GroupSize int
	// Workers bounds how many tiles run at once. Zero means GOMAXPROCS.
	Workers int
}

// Factory constructs a kernel for grid with the given time step.
type Factory func(grid core.Grid, coef Coefficients, opts Options) (Kernel, error)

// Strategies returns the available kernel factories keyed by name.
func Strategies() map[string]Factory {
	return map[string]Factory{
		"direct": func(g core.Grid, c Coefficients, o Options) (Kernel, error) { return NewDirect(g, c, o) },
		"cached": func(g core.Grid, c Coefficients, o Options) (Kernel, error) { return NewCached(g, c, o) },
	}
}

// StrategyNames lists the keys of Strategies in sorted order.
func StrategyNames() []string {
	names := make([]string, 0, 2)
	for name := range Strategies() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the named strategy.
func New(name string, grid core.Grid, coef Coefficients, opts Options) (Kernel, error) {
	f, ok := Strategies()[name]
	if !ok {
		return nil, fmt.Errorf("stencil: unknown strategy %q (want one of %v)", name, StrategyNames())
	}
	return f(grid, coef, opts)
}

// executor owns the partitioning shared by both strategies.
type executor struct {
	tiling  Tiling
	coef    Coefficients
	group   int
	workers int
}

func newExecutor(grid core.Grid, coef Coefficients, opts Options) (executor, error) {
	tiling, err := NewTiling(grid, opts.Tile)
	if err != nil {
		return executor{}, err
	}
	if err := tiling.Validate(); err != nil {
		return executor{}, fmt.Errorf("core %v is not divisible by tile %v: %w", grid.Core(), opts.Tile, err)
	}
	group := opts.GroupSize
	if group < 1 {
		group = 1
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return executor{tiling: tiling, coef: coef, group: group, workers: workers}, nil
}

// Tiling exposes the partition used by the kernel.
func (x executor) Tiling() Tiling { return x.tiling }

// GroupSize is the number of workers per tile.
func (x executor) GroupSize() int { return x.group }

func (x executor) check(curr, next *core.Buffer) error {
	ext := x.tiling.Grid().Extent()
	if curr.Extent() != ext {
		return &core.IndexError{Space: "grid", Coord: curr.Extent(), Extent: ext}
	}
	if next.Extent() != ext {
		return &core.IndexError{Space: "grid", Coord: next.Extent(), Extent: ext}
	}
	if curr == next {
		return fmt.Errorf("stencil: curr and next must be distinct buffers")
	}
	return nil
}

// forEachTile runs fn for every tile and waits for all of them. The wait is
// the per-step completion barrier.
func (x executor) forEachTile(fn func(tile core.Frame) error) error {
	var g errgroup.Group
	g.SetLimit(x.workers)
	for i := 0; i < x.tiling.Len(); i++ {
		frame := x.tiling.Frame(i)
		g.Go(func() error { return fn(frame) })
	}
	return g.Wait()
}

// runGroup runs fn once per worker of a tile group and returns after all of
// them finished.
func runGroup(size int, fn func(worker int)) {
	if size == 1 {
		fn(0)
		return
	}
	var g errgroup.Group
	for w := 0; w < size; w++ {
		g.Go(func() error {
			fn(w)
			return nil
		})
	}
	_ = g.Wait()
}
