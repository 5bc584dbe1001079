//go:build ebiten

package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"heat2d/internal/core"
	"heat2d/internal/render"
)

// Overlay draws the absolute error against the reference solution on top of
// the field. Key 1 toggles it.
type Overlay struct {
	scale   int
	show    bool
	painter *render.FieldPainter
}

// NewOverlay constructs an overlay for a field of the given extent.
func NewOverlay(extent core.Vec2, scale int) *Overlay {
	return &Overlay{scale: scale, painter: render.NewFieldPainter(extent)}
}

// Visible reports whether the overlay is drawn.
func (o *Overlay) Visible() bool { return o != nil && o.show }

// Update handles the toggle key.
func (o *Overlay) Update() {
	if o == nil {
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.show = !o.show
	}
}

// Draw paints errField colored over its own min/max range.
func (o *Overlay) Draw(screen *ebiten.Image, errField core.View) {
	if !o.Visible() || errField == nil {
		return
	}
	o.painter.Blit(screen, errField, render.AutoRange(errField), o.scale)
}
