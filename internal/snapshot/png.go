package snapshot

import (
	"fmt"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"heat2d/internal/core"
	"heat2d/internal/render"
)

// PNG writes heat_NNNNNN.png images colored with the heat palette.
type PNG struct {
	dir     string
	rng     render.Range
	scale   int
	palette []color.RGBA
}

// NewPNG creates dir if needed. Images are upscaled by scale when it is at
// least two.
func NewPNG(dir string, rng render.Range, scale int) (*PNG, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("png snapshot dir: %w", err)
	}
	return &PNG{dir: dir, rng: rng, scale: scale, palette: render.HeatPalette(256)}, nil
}

// Path returns the file written for step.
func (p *PNG) Path(step int) string {
	return filepath.Join(p.dir, fileName("heat", step, ".png"))
}

func (p *PNG) Snapshot(step int, v core.View) error {
	img := render.Upscale(render.Image(v, p.rng, p.palette), p.scale)
	f, err := os.Create(p.Path(step))
	if err != nil {
		return fmt.Errorf("png snapshot %d: %w", step, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("png snapshot %d: %w", step, err)
	}
	return f.Close()
}
