package render

import (
	"image/color"
	"math"
	"testing"

	"heat2d/internal/core"
)

func TestHeatPaletteEnds(t *testing.T) {
	p := HeatPalette(256)
	if len(p) != 256 {
		t.Fatalf("len = %d", len(p))
	}
	if p[0] != heatStops[0] || p[255] != heatStops[len(heatStops)-1] {
		t.Fatalf("ends = %v %v", p[0], p[255])
	}
	for i, c := range p {
		if c.A != 255 {
			t.Fatalf("palette[%d] not opaque", i)
		}
	}
}

func TestFillHeatRGBAClampsAndPaintsNaN(t *testing.T) {
	b := core.NewBuffer(core.Vec2{2, 3}, 4)
	b.Set(0, 0, -5)
	b.Set(0, 1, 1)
	b.Set(0, 2, 50)
	b.Set(1, 0, math.NaN())
	palette := []color.RGBA{{R: 1, A: 255}, {G: 2, A: 255}, {B: 3, A: 255}}
	buf := make([]byte, 2*3*4)
	FillHeatRGBA(buf, core.ReadOnly(b), Range{Lo: 0, Hi: 2}, palette)

	px := func(r, c int) color.RGBA {
		i := (r*3 + c) * 4
		return color.RGBA{R: buf[i], G: buf[i+1], B: buf[i+2], A: buf[i+3]}
	}
	if px(0, 0) != palette[0] || px(0, 1) != palette[1] || px(0, 2) != palette[2] {
		t.Fatalf("row 0 = %v %v %v", px(0, 0), px(0, 1), px(0, 2))
	}
	if px(1, 0) != (color.RGBA{A: 255}) {
		t.Fatalf("NaN pixel = %v", px(1, 0))
	}
}

func TestFillHeatRGBAEmptyPalette(t *testing.T) {
	b := core.NewBuffer(core.Vec2{1, 2}, 1)
	buf := []byte{9, 9, 9, 9, 9, 9, 9, 9}
	FillHeatRGBA(buf, core.ReadOnly(b), DefaultRange, nil)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("byte %d = %d, want cleared", i, v)
		}
	}
}

func TestAutoRange(t *testing.T) {
	b := core.NewBuffer(core.Vec2{2, 2}, 1)
	b.Set(0, 1, 3)
	b.Set(1, 1, -1)
	if got := AutoRange(core.ReadOnly(b)); got != (Range{Lo: -1, Hi: 3}) {
		t.Fatalf("range = %+v", got)
	}
	flat := core.NewBuffer(core.Vec2{2, 2}, 1)
	flat.Fill(4)
	if got := AutoRange(core.ReadOnly(flat)); got.Hi-got.Lo != 1 {
		t.Fatalf("constant range = %+v", got)
	}
}

func TestImageAndUpscale(t *testing.T) {
	b := core.NewBuffer(core.Vec2{2, 3}, 8)
	b.Set(1, 2, 2)
	img := Image(core.ReadOnly(b), DefaultRange, HeatPalette(16))
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	big := Upscale(img, 4)
	if big.Bounds().Dx() != 12 || big.Bounds().Dy() != 8 {
		t.Fatalf("upscaled bounds = %v", big.Bounds())
	}
	if big.RGBAAt(11, 7) != img.RGBAAt(2, 1) || big.RGBAAt(0, 0) != img.RGBAAt(0, 0) {
		t.Fatal("nearest-neighbour upscale changed colors")
	}
	if Upscale(img, 1) != img {
		t.Fatal("factor 1 must return the source")
	}
}
