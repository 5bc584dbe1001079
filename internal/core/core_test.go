package core

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestNewGridExtentAndSpacing(t *testing.T) {
	g, err := NewGrid(Vec2{62, 62}, Vec2{1, 1})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	if g.Extent() != (Vec2{64, 64}) {
		t.Fatalf("extent = %v, want {64, 64}", g.Extent())
	}
	if g.Core() != (Vec2{62, 62}) {
		t.Fatalf("core = %v, want {62, 62}", g.Core())
	}
	dx, dy := g.Spacing()
	if dx != 1.0/63 || dy != 1.0/63 {
		t.Fatalf("spacing = (%v, %v), want 1/63", dx, dy)
	}

	rect, err := NewGrid(Vec2{10, 30}, Vec2{2, 1})
	if err != nil {
		t.Fatalf("NewGrid rect: %v", err)
	}
	if rect.Extent() != (Vec2{14, 32}) {
		t.Fatalf("rect extent = %v", rect.Extent())
	}
	dx, dy = rect.Spacing()
	if dx != 1.0/31 || dy != 1.0/13 {
		t.Fatalf("rect spacing = (%v, %v)", dx, dy)
	}
}

func TestNewGridRejectsEmptyCore(t *testing.T) {
	cases := []struct {
		core, halo Vec2
	}{
		{Vec2{0, 8}, Vec2{1, 1}},
		{Vec2{8, -1}, Vec2{1, 1}},
		{Vec2{8, 8}, Vec2{0, 1}},
	}
	for _, tc := range cases {
		if _, err := NewGrid(tc.core, tc.halo); !errors.Is(err, ErrInvalidDomain) {
			t.Fatalf("NewGrid(%v, %v) err = %v, want ErrInvalidDomain", tc.core, tc.halo, err)
		}
	}
}

func TestGridRingAndCorePredicates(t *testing.T) {
	g, _ := NewGrid(Vec2{4, 5}, Vec2{1, 1})
	ext := g.Extent()
	ring, core := 0, 0
	for r := 0; r < ext[0]; r++ {
		for c := 0; c < ext[1]; c++ {
			p := Vec2{r, c}
			if g.OnRing(p) {
				ring++
			}
			if g.InCore(p) {
				core++
			}
			if g.OnRing(p) && g.InCore(p) {
				t.Fatalf("%v is both on the ring and in the core", p)
			}
		}
	}
	if want := ext.Prod() - (ext[0]-2)*(ext[1]-2); ring != want {
		t.Fatalf("ring cells = %d, want %d", ring, want)
	}
	if core != 20 {
		t.Fatalf("core cells = %d, want 20", core)
	}
}

func TestMapperRoundTrip(t *testing.T) {
	for _, ext := range []Vec2{{1, 1}, {3, 7}, {16, 16}, {64, 5}} {
		m := NewMapper(ext)
		for i := 0; i < m.Len(); i++ {
			c, err := m.Unflatten(i)
			if err != nil {
				t.Fatalf("Unflatten(%d): %v", i, err)
			}
			j, err := m.Flatten(c)
			if err != nil {
				t.Fatalf("Flatten(%v): %v", c, err)
			}
			if i != j {
				t.Fatalf("extent %v: flatten(unflatten(%d)) = %d", ext, i, j)
			}
		}
		for r := 0; r < ext[0]; r++ {
			for c := 0; c < ext[1]; c++ {
				coord := Vec2{r, c}
				if got := m.Coord(m.Linear(coord)); got != coord {
					t.Fatalf("unflatten(flatten(%v)) = %v", coord, got)
				}
			}
		}
	}
}

func TestMapperLastAxisFastest(t *testing.T) {
	m := NewMapper(Vec2{4, 6})
	prev := -1
	for r := 0; r < 4; r++ {
		for c := 0; c < 6; c++ {
			i := m.Linear(Vec2{r, c})
			if i != prev+1 {
				t.Fatalf("linear(%d,%d) = %d, want %d", r, c, i, prev+1)
			}
			prev = i
		}
	}
}

func TestMapperRangeErrors(t *testing.T) {
	m := NewMapper(Vec2{3, 3})
	if _, err := m.Flatten(Vec2{3, 0}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("Flatten out of range err = %v", err)
	}
	if _, err := m.Unflatten(9); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("Unflatten out of range err = %v", err)
	}
	var ie *IndexError
	if _, err := m.Flatten(Vec2{-1, 0}); !errors.As(err, &ie) || ie.Space != "linear" {
		t.Fatalf("expected *IndexError, got %v", err)
	}
}

func TestFrameLocalGlobal(t *testing.T) {
	f := NewFrame(Vec2{17, 33}, Vec2{16, 16})
	if got := f.Global(Vec2{0, 0}); got != (Vec2{17, 33}) {
		t.Fatalf("Global(0,0) = %v", got)
	}
	if got := f.GlobalOf(17); got != (Vec2{18, 34}) {
		t.Fatalf("GlobalOf(17) = %v", got)
	}
	local, err := f.ToLocal(Vec2{32, 48})
	if err != nil || local != (Vec2{15, 15}) {
		t.Fatalf("ToLocal = %v, %v", local, err)
	}
	if _, err := f.ToLocal(Vec2{33, 40}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("ToLocal outside err = %v", err)
	}
}

func TestBufferPitchAndCopy(t *testing.T) {
	src := NewBuffer(Vec2{5, 6}, 8)
	if src.Pitch() != 8 || src.PitchBytes() != 64 {
		t.Fatalf("pitch = %d (%d bytes), want 8 (64)", src.Pitch(), src.PitchBytes())
	}
	for r := 0; r < 5; r++ {
		for c := 0; c < 6; c++ {
			src.Set(r, c, float64(r*10+c))
		}
	}
	if len(src.Row(2)) != 6 || src.Row(2)[3] != 23 {
		t.Fatalf("row view = %v", src.Row(2))
	}

	dst := NewBuffer(Vec2{5, 6}, 1)
	if err := dst.CopyFrom(src); err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	for r := 0; r < 5; r++ {
		for c := 0; c < 6; c++ {
			if dst.At(r, c) != src.At(r, c) {
				t.Fatalf("copy mismatch at (%d,%d)", r, c)
			}
		}
	}
	if err := dst.CopyFrom(NewBuffer(Vec2{5, 5}, 1)); err == nil {
		t.Fatal("expected extent mismatch error")
	}
}

func TestReadOnlyView(t *testing.T) {
	b := NewBuffer(Vec2{2, 3}, 1)
	b.Fill(1.5)
	v := ReadOnly(b)
	if _, ok := v.(*Buffer); ok {
		t.Fatal("read-only view must not expose *Buffer")
	}
	row := v.RowTo(nil, 1)
	row[0] = 99
	if b.At(1, 0) != 1.5 {
		t.Fatal("RowTo must copy")
	}
}

func TestRNGFillDeterministic(t *testing.T) {
	a := NewBuffer(Vec2{4, 4}, 1)
	b := NewBuffer(Vec2{4, 4}, 4)
	NewRNG(7).FillUniform(a, -1, 1)
	NewRNG(7).FillUniform(b, -1, 1)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if a.At(r, c) != b.At(r, c) {
				t.Fatalf("fill differs at (%d,%d)", r, c)
			}
			if v := a.At(r, c); v < -1 || v >= 1 || math.IsNaN(v) {
				t.Fatalf("value %v out of range", v)
			}
		}
	}
}

func TestFixedStepDue(t *testing.T) {
	now := time.Unix(0, 0)
	fs := NewFixedStep(10)
	fs.now = func() time.Time { return now }

	if got := fs.Due(100); got != 1 {
		t.Fatalf("first Due = %d, want 1 (primed accumulator)", got)
	}
	now = now.Add(350 * time.Millisecond)
	if got := fs.Due(100); got != 3 {
		t.Fatalf("Due after 350ms = %d, want 3", got)
	}
	now = now.Add(10 * time.Second)
	if got := fs.Due(5); got != 5 {
		t.Fatalf("Due capped = %d, want 5", got)
	}
	if got := fs.Due(5); got != 0 {
		t.Fatalf("Due after cap = %d, want 0", got)
	}
}

func TestParameterSnapshotWriteTo(t *testing.T) {
	s := ParameterSnapshot{Groups: []ParameterGroup{{
		Name: "Grid",
		Params: []Parameter{
			VecParam("core", "Core", Vec2{64, 64}),
			FloatParam("dt", "dt", 2.5e-5),
		},
	}}}
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Core:") || !strings.Contains(out, "{64, 64}") || !strings.Contains(out, "2.5e-05") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if p, ok := s.Lookup("dt"); !ok || p.Type != ParamTypeFloat {
		t.Fatalf("Lookup(dt) = %+v, %v", p, ok)
	}
}
