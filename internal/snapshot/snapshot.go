// Package snapshot persists field time levels. Every sink receives a
// read-only view that is only valid for the duration of the call.
package snapshot

import (
	"errors"
	"fmt"

	"heat2d/internal/core"
)

// Sink persists one time level. step is the 0-based time level of v.
type Sink interface {
	Snapshot(step int, v core.View) error
}

// Multi fans a snapshot out to every sink. All sinks are called even when
// some fail; the failures are joined.
type Multi []Sink

func (m Multi) Snapshot(step int, v core.View) error {
	var errs []error
	for _, s := range m {
		if err := s.Snapshot(step, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Meta describes the discretisation shared by all snapshots of a run.
type Meta struct {
	Dt     float64
	Dx, Dy float64
}

// Time returns the simulated time of a time level.
func (m Meta) Time(step int) float64 { return float64(step) * m.Dt }

func fileName(prefix string, step int, ext string) string {
	return fmt.Sprintf("%s_%06d%s", prefix, step, ext)
}
