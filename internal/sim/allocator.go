package sim

import (
	"sync/atomic"

	"heat2d/internal/core"
)

// Allocator provides the buffers a run computes on and moves data between
// them.
type Allocator interface {
	// Allocate returns a zeroed buffer of the given extent.
	Allocate(extent core.Vec2) *core.Buffer
	// Copy queues a copy of src into dst. Extents must match.
	Copy(dst, src *core.Buffer) error
	// Wait blocks until every queued copy has completed.
	Wait()
}

// HostAllocator allocates pitched buffers in host memory. Copies complete
// before Copy returns.
type HostAllocator struct {
	// Align rounds the row pitch up to a multiple of Align elements.
	Align int

	bytes atomic.Int64
	count atomic.Int64
}

// NewHostAllocator returns an allocator padding rows to align elements.
func NewHostAllocator(align int) *HostAllocator {
	return &HostAllocator{Align: align}
}

func (a *HostAllocator) Allocate(extent core.Vec2) *core.Buffer {
	b := core.NewBuffer(extent, a.Align)
	a.bytes.Add(int64(b.PitchBytes() * extent[0]))
	a.count.Add(1)
	return b
}

func (a *HostAllocator) Copy(dst, src *core.Buffer) error { return dst.CopyFrom(src) }

func (a *HostAllocator) Wait() {}

// Allocations reports the number of buffers handed out.
func (a *HostAllocator) Allocations() int { return int(a.count.Load()) }

// Bytes reports the total size of all buffers handed out, padding included.
func (a *HostAllocator) Bytes() int64 { return a.bytes.Load() }
