package stencil

import (
	"fmt"

	"heat2d/internal/core"
)

// TileCache is a staging block holding one tile's core cells plus the halo
// ring around them, copied from the current buffer. A cache is bound to one
// tile for one time step; Bind re-targets it for the next use.
type TileCache struct {
	halo     core.Vec2
	capacity core.Vec2
	frame    core.Frame
	data     []float64
}

// NewTileCache allocates a cache large enough for tiles up to maxTile.
func NewTileCache(maxTile, halo core.Vec2) *TileCache {
	capacity := maxTile.Add(halo.Scale(2))
	return &TileCache{
		halo:     halo,
		capacity: capacity,
		data:     make([]float64, capacity.Prod()),
	}
}

// Bind targets the cache at tile, whose frame is given in global grid
// coordinates. The staged block spans tile.Origin-halo with extent
// tile+2*halo.
func (tc *TileCache) Bind(tile core.Frame) error {
	extent := tile.Local.Extent().Add(tc.halo.Scale(2))
	for axis := range extent {
		if extent[axis] > tc.capacity[axis] {
			return &core.IndexError{Space: "cache", Coord: extent, Extent: tc.capacity}
		}
	}
	tc.frame = core.NewFrame(tile.Origin.Sub(tc.halo), extent)
	return nil
}

// Extent returns the extent of the currently bound block.
func (tc *TileCache) Extent() core.Vec2 { return tc.frame.Local.Extent() }

// Origin returns the global coordinate of cache cell (0, 0).
func (tc *TileCache) Origin() core.Vec2 { return tc.frame.Origin }

// Len is the number of cells in the bound block.
func (tc *TileCache) Len() int { return tc.frame.Local.Len() }

// StagePass copies the cells owned by worker out of a group of size workers:
// linear cells worker, worker+workers, ... Passes of different workers write
// disjoint cells. Every pass of the group must complete before any Read.
func (tc *TileCache) StagePass(curr *core.Buffer, worker, workers int) {
	n := tc.frame.Local.Len()
	for i := worker; i < n; i += workers {
		g := tc.frame.GlobalOf(i)
		tc.data[i] = curr.At(g[0], g[1])
	}
}

// Stage binds the cache to tile and copies the whole block from curr on the
// calling goroutine.
func (tc *TileCache) Stage(tile core.Frame, curr *core.Buffer) error {
	if err := tc.Bind(tile); err != nil {
		return err
	}
	if !tc.frame.Origin.Within(curr.Extent()) ||
		!tc.frame.Origin.Add(tc.Extent()).Sub(core.Vec2{1, 1}).Within(curr.Extent()) {
		return fmt.Errorf("stage tile at %v: %w", tile.Origin,
			&core.IndexError{Space: "grid", Coord: tc.frame.Origin, Extent: curr.Extent()})
	}
	tc.StagePass(curr, 0, 1)
	return nil
}

// Read returns the staged value at a cache-local coordinate. Coordinates
// outside the staged block, halo included, are rejected rather than clamped.
func (tc *TileCache) Read(local core.Vec2) (float64, error) {
	if !local.Within(tc.frame.Local.Extent()) {
		return 0, &core.IndexError{Space: "cache", Coord: local, Extent: tc.frame.Local.Extent()}
	}
	return tc.at(local[0], local[1]), nil
}

func (tc *TileCache) at(row, col int) float64 {
	return tc.data[row*tc.frame.Local.Extent()[1]+col]
}
