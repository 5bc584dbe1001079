package core

import "fmt"

// Vec2 is a 2D integer vector ordered {rows, cols}. Axis 1 is the
// fastest-varying axis in every linear layout used by the engine.
type Vec2 [2]int

// Rows returns the slow (row) component.
func (v Vec2) Rows() int { return v[0] }

// Cols returns the fast (column) component.
func (v Vec2) Cols() int { return v[1] }

// Add returns the component-wise sum.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v[0] + o[0], v[1] + o[1]} }

// Sub returns the component-wise difference.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v[0] - o[0], v[1] - o[1]} }

// Mul returns the component-wise product.
func (v Vec2) Mul(o Vec2) Vec2 { return Vec2{v[0] * o[0], v[1] * o[1]} }

// Scale multiplies both components by k.
func (v Vec2) Scale(k int) Vec2 { return Vec2{v[0] * k, v[1] * k} }

// Prod returns the number of cells spanned by v.
func (v Vec2) Prod() int { return v[0] * v[1] }

// DivCeil returns the component-wise ceiling division v / d.
func (v Vec2) DivCeil(d Vec2) Vec2 {
	return Vec2{(v[0] + d[0] - 1) / d[0], (v[1] + d[1] - 1) / d[1]}
}

// Mod returns the component-wise remainder v % d.
func (v Vec2) Mod(d Vec2) Vec2 { return Vec2{v[0] % d[0], v[1] % d[1]} }

// Within reports whether 0 <= v[axis] < extent[axis] on every axis.
func (v Vec2) Within(extent Vec2) bool {
	for axis := range v {
		if v[axis] < 0 || v[axis] >= extent[axis] {
			return false
		}
	}
	return true
}

// Positive reports whether every component is strictly greater than zero.
func (v Vec2) Positive() bool {
	for _, c := range v {
		if c <= 0 {
			return false
		}
	}
	return true
}

func (v Vec2) String() string { return fmt.Sprintf("{%d, %d}", v[0], v[1]) }
