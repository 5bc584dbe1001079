package sim

import "heat2d/internal/core"

// StabilityNumber returns r = 2dt / (dx^2 dy^2 / (dx^2 + dy^2)). The explicit
// scheme is stable for r <= 1.
func StabilityNumber(dt, dx, dy float64) float64 {
	dx2, dy2 := dx*dx, dy*dy
	return 2 * dt / ((dx2 * dy2) / (dx2 + dy2))
}

// CheckStability returns r and, when r > 1, a *core.StabilityError.
func CheckStability(dt, dx, dy float64) (float64, error) {
	r := StabilityNumber(dt, dx, dy)
	if r > 1 {
		return r, &core.StabilityError{R: r, Dt: dt, Dx: dx, Dy: dy}
	}
	return r, nil
}
