package stencil

import (
	"sync"
	"sync/atomic"

	"heat2d/internal/core"
)

// Cached stages each tile and its halo into a TileCache before computing.
// Staging is split across the tile's worker group; the group joins before
// any worker reads from the cache.
type Cached struct {
	executor
	halo   core.Vec2
	pool   sync.Pool
	staged atomic.Int64
}

// NewCached builds a cache-staging kernel. It fails with an error wrapping
// core.ErrIndexOutOfRange when opts.Tile does not divide the core extent.
func NewCached(grid core.Grid, coef Coefficients, opts Options) (*Cached, error) {
	x, err := newExecutor(grid, coef, opts)
	if err != nil {
		return nil, err
	}
	k := &Cached{executor: x, halo: grid.Halo()}
	tile := x.tiling.Tile()
	k.pool.New = func() any { return NewTileCache(tile, k.halo) }
	return k, nil
}

// Name identifies the strategy.
func (k *Cached) Name() string { return "cached" }

// StagedCells reports how many cells have been copied into tile caches since
// the kernel was built.
func (k *Cached) StagedCells() int64 {
	return k.staged.Load()
}

// Apply updates every core cell of next from curr.
func (k *Cached) Apply(curr, next *core.Buffer) error {
	if err := k.check(curr, next); err != nil {
		return err
	}
	return k.forEachTile(func(tile core.Frame) error {
		tc := k.pool.Get().(*TileCache)
		defer k.pool.Put(tc)
		if err := tc.Bind(tile); err != nil {
			return err
		}
		k.stage(tc, curr)
		k.compute(tc, tile, next)
		return nil
	})
}

func (k *Cached) stage(tc *TileCache, curr *core.Buffer) {
	group := k.group
	runGroup(group, func(worker int) {
		tc.StagePass(curr, worker, group)
	})
	k.staged.Add(int64(tc.Len()))
}

func (k *Cached) compute(tc *TileCache, tile core.Frame, next *core.Buffer) {
	coef := k.coef
	group := k.group
	halo := k.halo
	n := tile.Local.Len()
	runGroup(group, func(worker int) {
		for i := worker; i < n; i += group {
			local := tile.Local.Coord(i)
			r, c := local[0]+halo[0], local[1]+halo[1]
			g := tile.Global(local)
			next.Set(g[0], g[1], coef.Update(
				tc.at(r, c),
				tc.at(r, c+1),
				tc.at(r, c-1),
				tc.at(r+1, c),
				tc.at(r-1, c),
			))
		}
	})
}
