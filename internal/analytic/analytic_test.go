package analytic

import (
	"math"
	"testing"
)

func TestSineModesSatisfiesHeatEquation(t *testing.T) {
	const h = 1e-4
	points := [][3]float64{{0.3, 0.7, 0.01}, {0.5, 0.5, 0.05}, {0.1, 0.9, 0.1}}
	for _, p := range points {
		x, y, tt := p[0], p[1], p[2]
		ut := (SineModes(x, y, tt+h) - SineModes(x, y, tt-h)) / (2 * h)
		uxx := (SineModes(x+h, y, tt) - 2*SineModes(x, y, tt) + SineModes(x-h, y, tt)) / (h * h)
		uyy := (SineModes(x, y+h, tt) - 2*SineModes(x, y, tt) + SineModes(x, y-h, tt)) / (h * h)
		if math.Abs(ut-(uxx+uyy)) > 1e-3 {
			t.Fatalf("u_t=%v, u_xx+u_yy=%v at %v", ut, uxx+uyy, p)
		}
	}
}

func TestByName(t *testing.T) {
	if f, ok := ByName("sine"); !ok || f(0.5, 0, 0) != 1 {
		t.Fatal("sine should resolve and equal 1 at (0.5, 0, 0)")
	}
	if f, ok := ByName("zero"); !ok || f(0.2, 0.3, 1) != 0 {
		t.Fatal("zero should resolve")
	}
	if _, ok := ByName("gaussian"); ok {
		t.Fatal("unknown name resolved")
	}
}
