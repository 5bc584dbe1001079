// Package sim drives a heat equation run: it checks the stability
// precondition, seeds the field from the analytical solution, advances the
// double-buffered state one step at a time and validates the final field.
package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"heat2d/internal/analytic"
	"heat2d/internal/boundary"
	"heat2d/internal/core"
	"heat2d/internal/stencil"
	"heat2d/internal/validate"
)

// ErrComplete is returned by Step once every configured step has run.
var ErrComplete = errors.New("heat2d: all time steps completed")

// State is the driver's position in its lifecycle.
type State int

const (
	Uninitialized State = iota
	Stable
	Unstable
	Updated
	BoundaryApplied
	Swapped
	Finalized
)

var stateNames = [...]string{"uninitialized", "stable", "unstable", "updated", "boundary-applied", "swapped", "finalized"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Snapshotter persists a read-only view of the field at a 0-based time level.
// Implementations must not retain v after returning.
type Snapshotter interface {
	Snapshot(step int, v core.View) error
}

// StepError reports a failure while advancing to Step.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("heat2d: step %d (t=%g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error { return e.Wrapped }

// Result summarises a finished run. A failed validation is reported through
// Passed, not as an error.
type Result struct {
	Passed    bool
	MaxError  float64
	Threshold float64

	Steps         int
	SimulatedTime float64
	R             float64

	Elapsed  time.Duration
	StepTime time.Duration

	Snapshots        int
	SnapshotFailures int
}

// Option customises a Driver.
type Option func(*Driver)

// WithAllocator replaces the default host allocator.
func WithAllocator(a Allocator) Option { return func(d *Driver) { d.alloc = a } }

// WithAnalytic overrides the reference solution named in the config.
func WithAnalytic(f analytic.Func) Option { return func(d *Driver) { d.f = f } }

// WithSnapshotter installs the persistence hook called every
// Config.SnapshotEvery steps.
func WithSnapshotter(s Snapshotter) Option { return func(d *Driver) { d.snap = s } }

// WithLogger routes progress and snapshot failures to l.
func WithLogger(l *log.Logger) Option { return func(d *Driver) { d.logger = l } }

// WithKernel replaces the kernel built from Config.Strategy.
func WithKernel(k stencil.Kernel) Option { return func(d *Driver) { d.kernel = k } }

// Driver owns both field buffers and the step counter.
type Driver struct {
	cfg    Config
	grid   core.Grid
	dt     float64
	dx, dy float64
	r      float64

	f      analytic.Func
	alloc  Allocator
	kernel stencil.Kernel
	bnd    boundary.Evaluator
	snap   Snapshotter
	logger *log.Logger

	curr, next *core.Buffer
	state      State
	step       int

	started   time.Time
	compute   time.Duration
	snapshots int
	snapFails int
}

// New validates cfg and builds a driver in the Uninitialized state.
func New(cfg Config, opts ...Option) (*Driver, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	grid, _ := cfg.Grid()
	d := &Driver{cfg: cfg, grid: grid, dt: cfg.Dt()}
	d.dx, d.dy = grid.Spacing()
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = log.New(io.Discard, "", 0)
	}
	if d.alloc == nil {
		d.alloc = NewHostAllocator(cfg.Align)
	}
	if d.f == nil {
		f, ok := analytic.ByName(cfg.Analytic)
		if !ok {
			return nil, fmt.Errorf("analytic %q: %w", cfg.Analytic, ErrInvalidConfig)
		}
		d.f = f
	}
	if d.kernel == nil {
		coef := stencil.NewCoefficients(d.dt, d.dx, d.dy)
		k, err := stencil.New(cfg.Strategy, grid, coef, stencil.Options{
			Tile:      cfg.Tile(),
			GroupSize: cfg.GroupSize,
			Workers:   cfg.Workers,
		})
		if err != nil {
			return nil, err
		}
		d.kernel = k
	}
	d.bnd = boundary.New(grid, d.f)
	return d, nil
}

// Init runs the stability check and seeds both buffers with the analytical
// solution at t = 0. An unstable configuration leaves the driver in the
// Unstable state and allocates nothing.
func (d *Driver) Init() error {
	if d.state != Uninitialized {
		return fmt.Errorf("heat2d: Init in state %s", d.state)
	}
	r, err := CheckStability(d.dt, d.dx, d.dy)
	d.r = r
	if err != nil {
		d.state = Unstable
		d.logger.Printf("stability check failed: r=%.4f", r)
		return err
	}
	d.state = Stable
	d.started = time.Now()

	ext := d.grid.Extent()
	host := d.alloc.Allocate(ext)
	d.bnd.Initialize(host)
	d.curr = d.alloc.Allocate(ext)
	d.next = d.alloc.Allocate(ext)
	if err := d.alloc.Copy(d.curr, host); err != nil {
		return fmt.Errorf("seed current buffer: %w", err)
	}
	if err := d.alloc.Copy(d.next, host); err != nil {
		return fmt.Errorf("seed next buffer: %w", err)
	}
	d.alloc.Wait()

	d.logWorkDivision()
	return nil
}

func (d *Driver) logWorkDivision() {
	d.logger.Printf("grid: core %v halo %v extent %v pitch %d", d.grid.Core(), d.grid.Halo(), d.grid.Extent(), d.curr.Pitch())
	d.logger.Printf("time: steps %d tmax %g dt %g dx %g dy %g r %.4f", d.cfg.TimeSteps, d.cfg.TMax, d.dt, d.dx, d.dy, d.r)
	if tk, ok := d.kernel.(interface {
		Tiling() stencil.Tiling
		GroupSize() int
	}); ok {
		t := tk.Tiling()
		d.logger.Printf("tiles: %v of %v, group %d, strategy %s", t.Count(), t.Tile(), tk.GroupSize(), d.kernel.Name())
	} else {
		d.logger.Printf("strategy %s", d.kernel.Name())
	}
}

// Step advances the field by one time level: stencil into next, boundary on
// next at the new time, optional snapshot of curr, swap.
func (d *Driver) Step() error {
	switch d.state {
	case Stable, Swapped:
	case Uninitialized:
		return fmt.Errorf("heat2d: Step before Init")
	case Unstable:
		return &core.StabilityError{R: d.r, Dt: d.dt, Dx: d.dx, Dy: d.dy}
	default:
		return fmt.Errorf("heat2d: Step in state %s", d.state)
	}
	if d.step >= d.cfg.TimeSteps {
		return ErrComplete
	}

	step := d.step + 1
	t := float64(step) * d.dt
	start := time.Now()
	if err := d.kernel.Apply(d.curr, d.next); err != nil {
		return &StepError{Step: step, Time: t, Wrapped: err}
	}
	d.state = Updated
	d.bnd.Apply(d.next, t)
	d.state = BoundaryApplied
	d.compute += time.Since(start)

	if d.snap != nil && d.cfg.SnapshotEvery > 0 && (step-1)%d.cfg.SnapshotEvery == 0 {
		d.snapshot(step - 1)
	}

	d.curr, d.next = d.next, d.curr
	d.step = step
	d.state = Swapped
	return nil
}

func (d *Driver) snapshot(index int) {
	d.snapshots++
	if err := d.snap.Snapshot(index, core.ReadOnly(d.curr)); err != nil {
		d.snapFails++
		d.logger.Printf("snapshot %d failed: %v", index, err)
	}
}

// Finalize validates the current field against the analytical solution at
// the current simulated time.
func (d *Driver) Finalize() (Result, error) {
	switch d.state {
	case Stable, Swapped:
	case Unstable:
		return Result{}, &core.StabilityError{R: d.r, Dt: d.dt, Dx: d.dx, Dy: d.dy}
	default:
		return Result{}, fmt.Errorf("heat2d: Finalize in state %s", d.state)
	}
	t := d.SimulatedTime()
	if d.step == d.cfg.TimeSteps {
		t = d.cfg.TMax
	}
	passed, maxErr := validate.Field(core.ReadOnly(d.curr), d.grid, d.f, t, d.cfg.Threshold)
	d.state = Finalized

	res := d.result()
	res.Passed = passed
	res.MaxError = maxErr
	res.SimulatedTime = t
	d.logger.Printf("validation: passed=%v max error %g (threshold %g)", passed, maxErr, d.cfg.Threshold)
	return res, nil
}

func (d *Driver) result() Result {
	res := Result{
		Threshold:        d.cfg.Threshold,
		Steps:            d.step,
		SimulatedTime:    d.SimulatedTime(),
		R:                d.r,
		Elapsed:          time.Since(d.started),
		Snapshots:        d.snapshots,
		SnapshotFailures: d.snapFails,
	}
	if d.step > 0 {
		res.StepTime = d.compute / time.Duration(d.step)
	}
	return res
}

// Run initialises, steps TimeSteps times and finalises. Cancelling ctx stops
// the loop between steps with a *StepError wrapping ctx.Err(); the partial
// result is returned alongside it.
func (d *Driver) Run(ctx context.Context) (Result, error) {
	if err := d.Init(); err != nil {
		return Result{R: d.r}, err
	}
	for d.step < d.cfg.TimeSteps {
		if err := ctx.Err(); err != nil {
			return d.result(), &StepError{Step: d.step + 1, Time: float64(d.step+1) * d.dt, Wrapped: err}
		}
		if err := d.Step(); err != nil {
			return d.result(), err
		}
	}
	return d.Finalize()
}

// State returns the lifecycle state.
func (d *Driver) State() State { return d.state }

// StepIndex is the number of completed steps.
func (d *Driver) StepIndex() int { return d.step }

// SimulatedTime is step*dt.
func (d *Driver) SimulatedTime() float64 { return float64(d.step) * d.dt }

// Current returns a read-only view of the latest time level, or nil before
// Init.
func (d *Driver) Current() core.View {
	if d.curr == nil {
		return nil
	}
	return core.ReadOnly(d.curr)
}

// Grid returns the simulation grid.
func (d *Driver) Grid() core.Grid { return d.grid }

// Config returns the configuration the driver was built with.
func (d *Driver) Config() Config { return d.cfg }

// Kernel returns the stencil kernel in use.
func (d *Driver) Kernel() stencil.Kernel { return d.kernel }
