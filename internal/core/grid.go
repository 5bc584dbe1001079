package core

import "fmt"

// Grid describes the discretized unit square: the full buffer extent, the
// halo ring on each side and the core region updated by the stencil. A Grid
// is immutable once built.
type Grid struct {
	extent Vec2
	halo   Vec2
}

// NewGrid derives the full extent from the number of core cells and the halo
// width: extent = numCore + 2*halo. The stencil reaches one cell in every
// direction, so each halo axis must be at least one cell wide.
func NewGrid(numCore, halo Vec2) (Grid, error) {
	if !numCore.Positive() {
		return Grid{}, fmt.Errorf("core extent %v: %w", numCore, ErrInvalidDomain)
	}
	if !halo.Positive() {
		return Grid{}, fmt.Errorf("halo %v must be at least one cell per axis: %w", halo, ErrInvalidDomain)
	}
	return Grid{extent: numCore.Add(halo.Scale(2)), halo: halo}, nil
}

// Extent is the full buffer extent including the halo.
func (g Grid) Extent() Vec2 { return g.extent }

// Halo is the border width on each side, per axis.
func (g Grid) Halo() Vec2 { return g.halo }

// Core is the extent of the region updated by the stencil.
func (g Grid) Core() Vec2 { return g.extent.Sub(g.halo.Scale(2)) }

// CoreOrigin is the global coordinate of the first core cell.
func (g Grid) CoreOrigin() Vec2 { return g.halo }

// Spacing returns dx and dy for the unit domain: 1/(extent-1) along the
// column and row axes respectively.
func (g Grid) Spacing() (dx, dy float64) {
	dx = 1.0 / float64(g.extent[1]-1)
	dy = 1.0 / float64(g.extent[0]-1)
	return dx, dy
}

// InCore reports whether the global coordinate lies inside the core region.
func (g Grid) InCore(c Vec2) bool {
	return c.Sub(g.halo).Within(g.Core())
}

// OnRing reports whether c lies on the outermost ring of the full extent.
func (g Grid) OnRing(c Vec2) bool {
	for axis := range c {
		if c[axis] == 0 || c[axis] == g.extent[axis]-1 {
			return true
		}
	}
	return false
}

func (g Grid) String() string {
	return fmt.Sprintf("extent=%v halo=%v core=%v", g.extent, g.halo, g.Core())
}
