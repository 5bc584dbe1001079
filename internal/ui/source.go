// Package ui draws the viewer's side panel and overlays.
package ui

import "heat2d/internal/core"

// Source feeds the HUD.
type Source interface {
	Parameters() core.ParameterSnapshot
	Status() []string
}
