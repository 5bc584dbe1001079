package stencil

import "heat2d/internal/core"

// Direct reads the five stencil operands straight from the current buffer.
// Neighbor values shared between adjacent cells and tiles are re-read for
// every cell that needs them.
type Direct struct {
	executor
}

// NewDirect builds a direct-read kernel. It fails with an error wrapping
// core.ErrIndexOutOfRange when opts.Tile does not divide the core extent.
func NewDirect(grid core.Grid, coef Coefficients, opts Options) (*Direct, error) {
	x, err := newExecutor(grid, coef, opts)
	if err != nil {
		return nil, err
	}
	return &Direct{executor: x}, nil
}

// Name identifies the strategy.
func (d *Direct) Name() string { return "direct" }

// Apply updates every core cell of next from curr.
func (d *Direct) Apply(curr, next *core.Buffer) error {
	if err := d.check(curr, next); err != nil {
		return err
	}
	coef := d.coef
	group := d.group
	return d.forEachTile(func(tile core.Frame) error {
		n := tile.Local.Len()
		runGroup(group, func(worker int) {
			for i := worker; i < n; i += group {
				g := tile.GlobalOf(i)
				r, c := g[0], g[1]
				next.Set(r, c, coef.Update(
					curr.At(r, c),
					curr.At(r, c+1),
					curr.At(r, c-1),
					curr.At(r+1, c),
					curr.At(r-1, c),
				))
			}
		})
		return nil
	})
}
