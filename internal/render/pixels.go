// Package render turns scalar fields into RGBA pixels.
package render

import (
	"image/color"
	"math"

	"heat2d/internal/core"
)

// Range maps field values onto the palette. Values outside [Lo, Hi] clamp to
// the end colors.
type Range struct {
	Lo, Hi float64
}

// DefaultRange covers the sine-mode reference solution, whose peak is 2 at
// t = 0.
var DefaultRange = Range{Lo: 0, Hi: 2}

// AutoRange returns the min and max over every cell of v. A constant field
// gets a unit-wide range.
func AutoRange(v core.View) Range {
	ext := v.Extent()
	lo, hi := math.Inf(1), math.Inf(-1)
	row := make([]float64, ext[1])
	for r := 0; r < ext[0]; r++ {
		row = v.RowTo(row, r)
		for _, x := range row {
			if math.IsNaN(x) {
				continue
			}
			lo = math.Min(lo, x)
			hi = math.Max(hi, x)
		}
	}
	if math.IsInf(lo, 1) {
		return Range{Lo: 0, Hi: 1}
	}
	if hi-lo == 0 {
		return Range{Lo: lo - 0.5, Hi: hi + 0.5}
	}
	return Range{Lo: lo, Hi: hi}
}

// index quantises x to a palette slot in [0, n).
func (r Range) index(x float64, n int) int {
	span := r.Hi - r.Lo
	if span <= 0 {
		return 0
	}
	idx := int((x - r.Lo) / span * float64(n-1))
	if idx < 0 {
		return 0
	}
	if idx > n-1 {
		return n - 1
	}
	return idx
}

var heatStops = []color.RGBA{
	{R: 0, G: 0, B: 128, A: 255},
	{R: 0, G: 0, B: 255, A: 255},
	{R: 0, G: 255, B: 255, A: 255},
	{R: 255, G: 255, B: 0, A: 255},
	{R: 255, G: 0, B: 0, A: 255},
	{R: 128, G: 0, B: 0, A: 255},
}

// HeatPalette interpolates n colors from dark blue through cyan and yellow to
// dark red.
func HeatPalette(n int) []color.RGBA {
	if n < 2 {
		n = 2
	}
	out := make([]color.RGBA, n)
	segments := len(heatStops) - 1
	for i := range out {
		pos := float64(i) / float64(n-1) * float64(segments)
		seg := int(pos)
		if seg >= segments {
			seg = segments - 1
		}
		f := pos - float64(seg)
		a, b := heatStops[seg], heatStops[seg+1]
		out[i] = color.RGBA{
			R: lerp8(a.R, b.R, f),
			G: lerp8(a.G, b.G, f),
			B: lerp8(a.B, b.B, f),
			A: 255,
		}
	}
	return out
}

func lerp8(a, b uint8, f float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
}

// FillHeatRGBA writes one RGBA pixel per cell of v into buf, row-major. buf
// must hold 4*rows*cols bytes. NaN cells are painted opaque black.
func FillHeatRGBA(buf []byte, v core.View, rng Range, palette []color.RGBA) {
	ext := v.Extent()
	row := make([]float64, ext[1])
	for r := 0; r < ext[0]; r++ {
		row = v.RowTo(row, r)
		fillPaletteRGBA(buf[r*ext[1]*4:(r+1)*ext[1]*4], row, rng, palette)
	}
}

// fillPaletteRGBA converts cell values into RGBA pixels using a palette. When
// the palette is empty the buffer is cleared to transparent black.
func fillPaletteRGBA(buf []byte, cells []float64, rng Range, palette []color.RGBA) {
	if len(palette) == 0 {
		for i := range cells {
			base := i * 4
			buf[base+0] = 0
			buf[base+1] = 0
			buf[base+2] = 0
			buf[base+3] = 0
		}
		return
	}

	for i, x := range cells {
		base := i * 4
		if math.IsNaN(x) {
			buf[base+0], buf[base+1], buf[base+2], buf[base+3] = 0, 0, 0, 255
			continue
		}
		col := palette[rng.index(x, len(palette))]
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}
