// Package boundary fills buffer cells from an analytical solution: the outer
// ring at every time level (time-varying Dirichlet condition) and the whole
// field at t = 0.
package boundary

import (
	"github.com/exascience/pargo/parallel"

	"heat2d/internal/analytic"
	"heat2d/internal/core"
)

// Evaluator writes analytical values into a buffer. It holds no mutable
// state and may be shared across goroutines.
type Evaluator struct {
	grid   core.Grid
	f      analytic.Func
	dx, dy float64
}

// New returns an evaluator for grid using f as the reference solution.
func New(grid core.Grid, f analytic.Func) Evaluator {
	dx, dy := grid.Spacing()
	return Evaluator{grid: grid, f: f, dx: dx, dy: dy}
}

// Value is the analytical value of global cell (row, col) at time t.
func (e Evaluator) Value(row, col int, t float64) float64 {
	return e.f(float64(col)*e.dx, float64(row)*e.dy, t)
}

// Apply overwrites every cell selected by Grid.OnRing with the analytical
// value at time t. Prior contents are never read.
func (e Evaluator) Apply(buf *core.Buffer, t float64) {
	e.fill(buf, t, e.grid.OnRing)
}

// Initialize sets every cell, halo included, to the analytical value at t = 0.
func (e Evaluator) Initialize(buf *core.Buffer) {
	e.fill(buf, 0, func(core.Vec2) bool { return true })
}

func (e Evaluator) fill(buf *core.Buffer, t float64, selected func(core.Vec2) bool) {
	ext := e.grid.Extent()
	parallel.Range(0, ext[0], 0, func(low, high int) {
		for r := low; r < high; r++ {
			row := buf.Row(r)
			for c := range row {
				if selected(core.Vec2{r, c}) {
					row[c] = e.Value(r, c, t)
				}
			}
		}
	})
}
