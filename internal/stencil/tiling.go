package stencil

import (
	"fmt"

	"heat2d/internal/core"
)

// Tiling partitions the core region of a grid into fixed-size tiles,
// numbered row-major. Tile i covers the core cells starting at
// CoreOrigin + coord(i)*tile.
type Tiling struct {
	grid  core.Grid
	tile  core.Vec2
	count core.Vec2
	index core.Mapper
}

// NewTiling computes numTiles = ceil(core / tile) per axis. It does not
// reject uneven partitions; use Validate or Even for that.
func NewTiling(grid core.Grid, tile core.Vec2) (Tiling, error) {
	if !tile.Positive() {
		return Tiling{}, fmt.Errorf("tile extent %v: %w", tile, core.ErrInvalidDomain)
	}
	count := grid.Core().DivCeil(tile)
	return Tiling{grid: grid, tile: tile, count: count, index: core.NewMapper(count)}, nil
}

// Grid returns the partitioned grid.
func (t Tiling) Grid() core.Grid { return t.grid }

// Tile returns the nominal tile extent.
func (t Tiling) Tile() core.Vec2 { return t.tile }

// Count returns the number of tiles along each axis.
func (t Tiling) Count() core.Vec2 { return t.count }

// Len returns the total number of tiles.
func (t Tiling) Len() int { return t.count.Prod() }

// Remainder is core % tile per axis; zero on both axes for an even partition.
func (t Tiling) Remainder() core.Vec2 { return t.grid.Core().Mod(t.tile) }

// Even reports whether the tile extent divides the core extent on every axis.
func (t Tiling) Even() bool { return t.Remainder() == core.Vec2{} }

// Validate fails with an *core.IndexError when the partition leaves
// remainder tiles: the last tile on some axis would address cells past the
// core region.
func (t Tiling) Validate() error {
	if t.Even() {
		return nil
	}
	return &core.IndexError{Space: "tiling", Coord: t.count.Mul(t.tile), Extent: t.grid.Core()}
}

// Frame returns tile i placed in global grid coordinates. Trailing tiles of
// an uneven partition are clipped to the core region.
func (t Tiling) Frame(i int) core.Frame {
	origin := t.grid.CoreOrigin().Add(t.index.Coord(i).Mul(t.tile))
	end := t.grid.CoreOrigin().Add(t.grid.Core())
	extent := t.tile
	for axis := range extent {
		if origin[axis]+extent[axis] > end[axis] {
			extent[axis] = end[axis] - origin[axis]
		}
	}
	return core.NewFrame(origin, extent)
}
