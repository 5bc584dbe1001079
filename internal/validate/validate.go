// Package validate compares a computed field against the analytical
// solution it was seeded from.
package validate

import (
	"math"

	"github.com/exascience/pargo/parallel"

	"heat2d/internal/analytic"
	"heat2d/internal/core"
)

// DefaultThreshold is the pass bound on the maximum absolute error.
const DefaultThreshold = 1e-4

// Field reports whether the largest absolute difference between v and f at
// time tMax stays strictly below threshold, along with that difference.
//
// Only cells away from the outermost ring are checked: the ring is
// overwritten with exact values every step and carries no information about
// the scheme. Cell (r, c) sits at x = c*dx, y = r*dy.
//
// With a halo wider than one cell the inner halo rings keep their t = 0
// values and are still checked, so such runs report a failure for any
// tMax > 0. Validate halo-1 grids.
func Field(v core.View, grid core.Grid, f analytic.Func, tMax, threshold float64) (bool, float64) {
	maxErr := MaxError(v, grid, f, tMax)
	return maxErr < threshold, maxErr
}

// MaxError is the largest absolute error over the checked cells.
func MaxError(v core.View, grid core.Grid, f analytic.Func, tMax float64) float64 {
	ext := grid.Extent()
	rows, cols := ext[0], ext[1]
	if rows < 3 || cols < 3 {
		return 0
	}
	dx, dy := grid.Spacing()
	return parallel.RangeReduceFloat64(
		1, rows-1, 0,
		func(low, high int) (result float64) {
			for r := low; r < high; r++ {
				y := float64(r) * dy
				for c := 1; c < cols-1; c++ {
					diff := math.Abs(v.At(r, c) - f(float64(c)*dx, y, tMax))
					if diff > result || math.IsNaN(diff) {
						result = diff
					}
				}
			}
			return
		},
		maxNaN,
	)
}

// maxNaN keeps NaN sticky so a diverged field never passes.
func maxNaN(a, b float64) float64 {
	if math.IsNaN(a) || a > b {
		return a
	}
	return b
}

// ErrorField writes |v - f| at time t into every cell of dst, halo included.
// dst and v must share the grid extent.
func ErrorField(dst *core.Buffer, v core.View, grid core.Grid, f analytic.Func, t float64) {
	dx, dy := grid.Spacing()
	ext := grid.Extent()
	parallel.Range(0, ext[0], 0, func(low, high int) {
		for r := low; r < high; r++ {
			y := float64(r) * dy
			row := dst.Row(r)
			for c := range row {
				row[c] = math.Abs(v.At(r, c) - f(float64(c)*dx, y, t))
			}
		}
	})
}
