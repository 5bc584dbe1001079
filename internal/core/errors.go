package core

import (
	"errors"
	"fmt"
)

// Domain errors shared by every engine component.
var (
	// ErrInvalidDomain indicates a grid whose core region is empty on some axis.
	ErrInvalidDomain = errors.New("heat2d: invalid domain (core extent must be positive)")

	// ErrUnstableConfiguration indicates dt is too large for the explicit scheme.
	ErrUnstableConfiguration = errors.New("heat2d: unstable configuration")

	// ErrIndexOutOfRange indicates a partitioning or addressing defect.
	ErrIndexOutOfRange = errors.New("heat2d: index out of range")
)

// IndexError reports a coordinate that falls outside the extent of the
// addressed space. Space names the address space ("grid", "tile", "cache",
// "tiling", "linear").
type IndexError struct {
	Space  string
	Coord  Vec2
	Extent Vec2
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("heat2d: %s index %v out of range for extent %v", e.Space, e.Coord, e.Extent)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }

// StabilityError carries the computed stability number r for a rejected
// configuration. r must be <= 1.
type StabilityError struct {
	R      float64
	Dt     float64
	Dx, Dy float64
}

func (e *StabilityError) Error() string {
	return fmt.Sprintf("heat2d: stability condition failed: r = 2*dt/((dx^2*dy^2)/(dx^2+dy^2)) = %g > 1 (dt=%g dx=%g dy=%g)",
		e.R, e.Dt, e.Dx, e.Dy)
}

func (e *StabilityError) Unwrap() error { return ErrUnstableConfiguration }
