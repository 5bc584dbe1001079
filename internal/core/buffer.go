package core

import (
	"fmt"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

// Buffer stores a 2D field of float64 values in row-major order. Rows may be
// padded: the distance between the first elements of consecutive rows is
// Pitch() elements, which is never smaller than the column count.
type Buffer struct {
	extent Vec2
	dense  *mat.Dense
	raw    blas64.General
}

// NewBuffer allocates a zeroed buffer. When align > 1 the pitch is rounded up
// to a multiple of align elements.
func NewBuffer(extent Vec2, align int) *Buffer {
	if !extent.Positive() {
		panic(fmt.Sprintf("core: buffer extent %v must be positive", extent))
	}
	pitch := extent[1]
	if align > 1 {
		pitch = ((pitch + align - 1) / align) * align
	}
	raw := blas64.General{
		Rows:   extent[0],
		Cols:   extent[1],
		Stride: pitch,
		Data:   make([]float64, extent[0]*pitch),
	}
	dense := &mat.Dense{}
	dense.SetRawMatrix(raw)
	return &Buffer{extent: extent, dense: dense, raw: raw}
}

// Extent returns {rows, cols}.
func (b *Buffer) Extent() Vec2 { return b.extent }

// Pitch returns the row stride in elements.
func (b *Buffer) Pitch() int { return b.raw.Stride }

// PitchBytes returns the row stride in bytes.
func (b *Buffer) PitchBytes() int { return b.raw.Stride * 8 }

// At returns the value at (row, col). Coordinates are not range checked
// beyond what the backing slice enforces.
func (b *Buffer) At(row, col int) float64 { return b.raw.Data[row*b.raw.Stride+col] }

// Set stores v at (row, col).
func (b *Buffer) Set(row, col int, v float64) { b.raw.Data[row*b.raw.Stride+col] = v }

// Row exposes the cells of one row without the padding.
func (b *Buffer) Row(row int) []float64 { return b.dense.RawRowView(row) }

// RowTo copies one row into dst, growing it when needed, and returns it.
func (b *Buffer) RowTo(dst []float64, row int) []float64 {
	if cap(dst) < b.extent[1] {
		dst = make([]float64, b.extent[1])
	}
	dst = dst[:b.extent[1]]
	copy(dst, b.Row(row))
	return dst
}

// Fill sets every cell to v.
func (b *Buffer) Fill(v float64) {
	for r := 0; r < b.extent[0]; r++ {
		row := b.Row(r)
		for c := range row {
			row[c] = v
		}
	}
}

// CopyFrom deep-copies src into b. Pitches may differ; extents may not.
func (b *Buffer) CopyFrom(src *Buffer) error {
	if src.extent != b.extent {
		return fmt.Errorf("core: copy extent mismatch: dst %v, src %v", b.extent, src.extent)
	}
	b.dense.Copy(src.dense)
	return nil
}

// Matrix exposes the buffer as a gonum matrix sharing the same storage.
func (b *Buffer) Matrix() *mat.Dense { return b.dense }

// View is read-only access to a buffer, handed to collaborators that must not
// mutate simulation state.
type View interface {
	Extent() Vec2
	At(row, col int) float64
	RowTo(dst []float64, row int) []float64
}

type readOnly struct{ b *Buffer }

// ReadOnly wraps b so that only the View methods are reachable.
func ReadOnly(b *Buffer) View { return readOnly{b: b} }

func (r readOnly) Extent() Vec2                           { return r.b.Extent() }
func (r readOnly) At(row, col int) float64                { return r.b.At(row, col) }
func (r readOnly) RowTo(dst []float64, row int) []float64 { return r.b.RowTo(dst, row) }
