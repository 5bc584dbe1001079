//go:build ebiten

package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"heat2d/internal/core"
)

// FieldPainter uploads a scalar field into a single RGBA image.
type FieldPainter struct {
	w, h    int
	img     *ebiten.Image
	buf     []byte
	palette []color.RGBA
}

// NewFieldPainter allocates a painter for a field of extent {h, w}.
func NewFieldPainter(extent core.Vec2) *FieldPainter {
	w, h := extent[1], extent[0]
	fp := &FieldPainter{w: w, h: h, buf: make([]byte, 4*w*h), palette: HeatPalette(256)}
	fp.img = ebiten.NewImage(w, h)
	return fp
}

// Blit uploads v into the painter image and draws it scaled onto dst.
func (fp *FieldPainter) Blit(dst *ebiten.Image, v core.View, rng Range, scale int) {
	if v == nil || v.Extent() != (core.Vec2{fp.h, fp.w}) {
		return
	}
	FillHeatRGBA(fp.buf, v, rng, fp.palette)
	fp.img.WritePixels(fp.buf)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	dst.DrawImage(fp.img, op)
}

// Size returns the dimensions of the underlying image.
func (fp *FieldPainter) Size() (int, int) { return fp.w, fp.h }
