// Package analytic provides closed-form reference solutions of the 2D heat
// equation u_t = u_xx + u_yy on the unit square.
package analytic

import "math"

// Func evaluates a reference solution at position (x, y) and time t. It must
// be pure: the engine calls it concurrently for boundary fill and validation.
type Func func(x, y, t float64) float64

// SineModes is u(x, y, t) = exp(-pi^2 t) * (sin(pi x) + sin(pi y)).
func SineModes(x, y, t float64) float64 {
	return math.Exp(-math.Pi*math.Pi*t) * (math.Sin(math.Pi*x) + math.Sin(math.Pi*y))
}

// Zero is the trivial solution, a fixed point of the discrete scheme.
func Zero(x, y, t float64) float64 { return 0 }

// ByName resolves a solution by its configuration name.
func ByName(name string) (Func, bool) {
	switch name {
	case "", "sine":
		return SineModes, true
	case "zero":
		return Zero, true
	}
	return nil, false
}
