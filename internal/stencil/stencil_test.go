package stencil

import (
	"errors"
	"math"
	"testing"

	"heat2d/internal/core"
)

func mustGrid(t *testing.T, numCore, halo core.Vec2) core.Grid {
	t.Helper()
	g, err := core.NewGrid(numCore, halo)
	if err != nil {
		t.Fatalf("NewGrid(%v, %v): %v", numCore, halo, err)
	}
	return g
}

func coefFor(g core.Grid, dt float64) Coefficients {
	dx, dy := g.Spacing()
	return NewCoefficients(dt, dx, dy)
}

func randomBuffer(g core.Grid, seed int64, align int) *core.Buffer {
	b := core.NewBuffer(g.Extent(), align)
	core.NewRNG(seed).FillUniform(b, -1, 1)
	return b
}

func TestDirectMatchesCached(t *testing.T) {
	cases := []struct {
		name   string
		core   core.Vec2
		halo   core.Vec2
		tile   core.Vec2
		group  int
		align  int
		worker int
	}{
		{"16x16 tiles", core.Vec2{64, 64}, core.Vec2{1, 1}, core.Vec2{16, 16}, 1, 1, 0},
		{"strided group", core.Vec2{64, 64}, core.Vec2{1, 1}, core.Vec2{16, 16}, 7, 8, 0},
		{"wide tiles", core.Vec2{64, 64}, core.Vec2{1, 1}, core.Vec2{8, 32}, 3, 1, 2},
		{"single tile", core.Vec2{62, 62}, core.Vec2{1, 1}, core.Vec2{62, 62}, 4, 1, 1},
		{"unit tiles", core.Vec2{6, 10}, core.Vec2{1, 1}, core.Vec2{1, 1}, 1, 1, 0},
		{"rectangular", core.Vec2{12, 30}, core.Vec2{1, 1}, core.Vec2{4, 15}, 5, 4, 3},
		{"halo two", core.Vec2{12, 12}, core.Vec2{2, 2}, core.Vec2{6, 4}, 2, 1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := mustGrid(t, tc.core, tc.halo)
			coef := coefFor(g, 2.5e-5)
			opts := Options{Tile: tc.tile, GroupSize: tc.group, Workers: tc.worker}

			direct, err := NewDirect(g, coef, opts)
			if err != nil {
				t.Fatalf("NewDirect: %v", err)
			}
			cached, err := NewCached(g, coef, opts)
			if err != nil {
				t.Fatalf("NewCached: %v", err)
			}

			curr := randomBuffer(g, 11, tc.align)
			a := core.NewBuffer(g.Extent(), tc.align)
			b := core.NewBuffer(g.Extent(), 1)
			if err := direct.Apply(curr, a); err != nil {
				t.Fatalf("direct Apply: %v", err)
			}
			if err := cached.Apply(curr, b); err != nil {
				t.Fatalf("cached Apply: %v", err)
			}

			ext := g.Extent()
			for r := 0; r < ext[0]; r++ {
				for c := 0; c < ext[1]; c++ {
					if math.Float64bits(a.At(r, c)) != math.Float64bits(b.At(r, c)) {
						t.Fatalf("(%d,%d): direct %v != cached %v", r, c, a.At(r, c), b.At(r, c))
					}
				}
			}
			if want := int64(tc.core.DivCeil(tc.tile).Prod() * tc.tile.Add(tc.halo.Scale(2)).Prod()); cached.StagedCells() != want {
				t.Fatalf("staged cells = %d, want %d", cached.StagedCells(), want)
			}
		})
	}
}

func TestUpdateMatchesFormula(t *testing.T) {
	g := mustGrid(t, core.Vec2{4, 4}, core.Vec2{1, 1})
	dt := 1e-3
	coef := coefFor(g, dt)
	curr := randomBuffer(g, 5, 1)
	next := core.NewBuffer(g.Extent(), 1)
	k, err := NewDirect(g, coef, Options{Tile: core.Vec2{2, 2}})
	if err != nil {
		t.Fatal(err)
	}
	if err := k.Apply(curr, next); err != nil {
		t.Fatal(err)
	}

	dx, dy := g.Spacing()
	rX, rY := dt/(dx*dx), dt/(dy*dy)
	for r := 1; r <= 4; r++ {
		for c := 1; c <= 4; c++ {
			want := curr.At(r, c)*(1-2*rX-2*rY) +
				curr.At(r, c+1)*rX + curr.At(r, c-1)*rX +
				curr.At(r+1, c)*rY + curr.At(r-1, c)*rY
			if math.Abs(next.At(r, c)-want) > 1e-15 {
				t.Fatalf("(%d,%d) = %v, want %v", r, c, next.At(r, c), want)
			}
		}
	}
}

func TestKernelNeverWritesHalo(t *testing.T) {
	g := mustGrid(t, core.Vec2{8, 8}, core.Vec2{2, 1})
	coef := coefFor(g, 1e-4)
	for _, name := range StrategyNames() {
		k, err := New(name, g, coef, Options{Tile: core.Vec2{4, 4}, GroupSize: 3})
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		curr := randomBuffer(g, 1, 1)
		next := core.NewBuffer(g.Extent(), 1)
		const sentinel = 123.0
		next.Fill(sentinel)
		if err := k.Apply(curr, next); err != nil {
			t.Fatalf("%s Apply: %v", name, err)
		}
		ext := g.Extent()
		for r := 0; r < ext[0]; r++ {
			for c := 0; c < ext[1]; c++ {
				in := g.InCore(core.Vec2{r, c})
				if in && next.At(r, c) == sentinel {
					t.Fatalf("%s: core cell (%d,%d) not written", name, r, c)
				}
				if !in && next.At(r, c) != sentinel {
					t.Fatalf("%s: halo cell (%d,%d) written", name, r, c)
				}
			}
		}
	}
}

func TestZeroIsFixedPoint(t *testing.T) {
	g := mustGrid(t, core.Vec2{16, 16}, core.Vec2{1, 1})
	coef := coefFor(g, 2.5e-5)
	for _, name := range StrategyNames() {
		k, err := New(name, g, coef, Options{Tile: core.Vec2{8, 8}, GroupSize: 2})
		if err != nil {
			t.Fatal(err)
		}
		curr := core.NewBuffer(g.Extent(), 1)
		next := core.NewBuffer(g.Extent(), 1)
		for step := 0; step < 10; step++ {
			if err := k.Apply(curr, next); err != nil {
				t.Fatal(err)
			}
			curr, next = next, curr
		}
		ext := g.Extent()
		for r := 0; r < ext[0]; r++ {
			for c := 0; c < ext[1]; c++ {
				if curr.At(r, c) != 0 {
					t.Fatalf("%s: (%d,%d) = %v after zero steps", name, r, c, curr.At(r, c))
				}
			}
		}
	}
}

func TestNonDividingTileRejected(t *testing.T) {
	g := mustGrid(t, core.Vec2{62, 62}, core.Vec2{1, 1})
	coef := coefFor(g, 2.5e-5)
	for _, name := range StrategyNames() {
		_, err := New(name, g, coef, Options{Tile: core.Vec2{16, 16}})
		if !errors.Is(err, core.ErrIndexOutOfRange) {
			t.Fatalf("%s: err = %v, want ErrIndexOutOfRange", name, err)
		}
		var ie *core.IndexError
		if !errors.As(err, &ie) || ie.Space != "tiling" {
			t.Fatalf("%s: expected tiling IndexError, got %v", name, err)
		}
	}
}

func TestUnknownStrategy(t *testing.T) {
	g := mustGrid(t, core.Vec2{4, 4}, core.Vec2{1, 1})
	if _, err := New("shared", g, coefFor(g, 1e-4), Options{Tile: core.Vec2{2, 2}}); err == nil {
		t.Fatal("expected unknown strategy error")
	}
}

func TestApplyRejectsMismatchedBuffers(t *testing.T) {
	g := mustGrid(t, core.Vec2{4, 4}, core.Vec2{1, 1})
	k, _ := NewCached(g, coefFor(g, 1e-4), Options{Tile: core.Vec2{2, 2}})
	good := core.NewBuffer(g.Extent(), 1)
	bad := core.NewBuffer(core.Vec2{5, 6}, 1)
	if err := k.Apply(bad, good); !errors.Is(err, core.ErrIndexOutOfRange) {
		t.Fatalf("mismatched curr err = %v", err)
	}
	if err := k.Apply(good, good); err == nil {
		t.Fatal("aliased curr/next must be rejected")
	}
}

func TestTilingCountInvariant(t *testing.T) {
	for _, coreExt := range []core.Vec2{{64, 64}, {62, 62}, {17, 5}, {1, 1}} {
		g := mustGrid(t, coreExt, core.Vec2{1, 1})
		for _, tile := range []core.Vec2{{16, 16}, {1, 1}, {3, 7}, {64, 2}} {
			tl, err := NewTiling(g, tile)
			if err != nil {
				t.Fatal(err)
			}
			covered := tl.Count().Mul(tile)
			for axis := 0; axis < 2; axis++ {
				if covered[axis] < coreExt[axis] {
					t.Fatalf("core %v tile %v: %d tiles cover %d < %d", coreExt, tile, tl.Count()[axis], covered[axis], coreExt[axis])
				}
				divides := coreExt[axis]%tile[axis] == 0
				if divides && covered[axis] != coreExt[axis] {
					t.Fatalf("core %v tile %v: even axis %d covers %d", coreExt, tile, axis, covered[axis])
				}
			}
			if tl.Even() != (tl.Validate() == nil) {
				t.Fatalf("Even and Validate disagree for core %v tile %v", coreExt, tile)
			}
		}
	}
}

func TestTilingFramesCoverCoreOnce(t *testing.T) {
	g := mustGrid(t, core.Vec2{10, 7}, core.Vec2{1, 1})
	tl, _ := NewTiling(g, core.Vec2{4, 3})
	seen := map[core.Vec2]int{}
	for i := 0; i < tl.Len(); i++ {
		f := tl.Frame(i)
		for j := 0; j < f.Local.Len(); j++ {
			seen[f.GlobalOf(j)]++
		}
	}
	if len(seen) != g.Core().Prod() {
		t.Fatalf("covered %d cells, want %d", len(seen), g.Core().Prod())
	}
	for cell, n := range seen {
		if n != 1 || !g.InCore(cell) {
			t.Fatalf("cell %v covered %d times (in core=%v)", cell, n, g.InCore(cell))
		}
	}
}

func TestTileCacheStageAndRead(t *testing.T) {
	g := mustGrid(t, core.Vec2{8, 8}, core.Vec2{1, 1})
	curr := randomBuffer(g, 9, 4)
	tl, _ := NewTiling(g, core.Vec2{4, 4})
	frame := tl.Frame(3)

	tc := NewTileCache(tl.Tile(), g.Halo())
	if err := tc.Stage(frame, curr); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if tc.Extent() != (core.Vec2{6, 6}) || tc.Origin() != (core.Vec2{4, 4}) {
		t.Fatalf("extent %v origin %v", tc.Extent(), tc.Origin())
	}
	for r := 0; r < 6; r++ {
		for c := 0; c < 6; c++ {
			v, err := tc.Read(core.Vec2{r, c})
			if err != nil {
				t.Fatalf("Read(%d,%d): %v", r, c, err)
			}
			if v != curr.At(4+r, 4+c) {
				t.Fatalf("cache (%d,%d) = %v, want %v", r, c, v, curr.At(4+r, 4+c))
			}
		}
	}
	for _, bad := range []core.Vec2{{6, 0}, {0, 6}, {-1, 2}} {
		if _, err := tc.Read(bad); !errors.Is(err, core.ErrIndexOutOfRange) {
			t.Fatalf("Read(%v) err = %v, want ErrIndexOutOfRange", bad, err)
		}
	}
}

func TestTileCacheStridedPassesCommute(t *testing.T) {
	g := mustGrid(t, core.Vec2{6, 9}, core.Vec2{1, 1})
	curr := randomBuffer(g, 21, 1)
	tl, _ := NewTiling(g, core.Vec2{3, 3})
	frame := tl.Frame(4)

	whole := NewTileCache(tl.Tile(), g.Halo())
	if err := whole.Stage(frame, curr); err != nil {
		t.Fatal(err)
	}
	strided := NewTileCache(tl.Tile(), g.Halo())
	if err := strided.Bind(frame); err != nil {
		t.Fatal(err)
	}
	const workers = 4
	for w := workers - 1; w >= 0; w-- {
		strided.StagePass(curr, w, workers)
	}
	for i := range whole.data[:whole.Len()] {
		if whole.data[i] != strided.data[i] {
			t.Fatalf("cell %d differs between whole and strided staging", i)
		}
	}
}

func TestTileCacheCapacity(t *testing.T) {
	tc := NewTileCache(core.Vec2{2, 2}, core.Vec2{1, 1})
	if err := tc.Bind(core.NewFrame(core.Vec2{1, 1}, core.Vec2{3, 2})); !errors.Is(err, core.ErrIndexOutOfRange) {
		t.Fatalf("oversized tile err = %v", err)
	}
}
