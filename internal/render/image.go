package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"heat2d/internal/core"
)

// Image renders v into a new RGBA image with one pixel per cell, row 0 at the
// top.
func Image(v core.View, rng Range, palette []color.RGBA) *image.RGBA {
	ext := v.Extent()
	img := image.NewRGBA(image.Rect(0, 0, ext[1], ext[0]))
	FillHeatRGBA(img.Pix, v, rng, palette)
	return img
}

// Upscale enlarges src by an integer factor with nearest-neighbour sampling.
// Factors below two return src unchanged.
func Upscale(src *image.RGBA, factor int) *image.RGBA {
	if factor < 2 {
		return src
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
