package memory

import (
	"unsafe"

	"github.com/octet-server/octet/core/errs"
)

// Manager is the shared, reference-counted owner of an Allocator. Every
// Handle it produces keeps the Allocator alive via the Manager's pointer,
// mirroring the Arc<MemoryAllocator> ownership the core's design notes
// call for.
type Manager struct {
	allocator *Allocator
}

// NewManager creates a Manager wrapping a fresh Allocator.
func NewManager() *Manager {
	return &Manager{allocator: NewAllocator()}
}

// Allocate acquires a block of at least size bytes and wraps it in a
// Handle. The block goes back to its pool only when the caller calls
// Handle.Release; nothing releases it automatically.
func (m *Manager) Allocate(size int) (*Handle, error) {
	ptr, sizeClass, err := m.allocator.Allocate(size)
	if err != nil {
		return nil, err
	}
	return &Handle{addr: ptr, sizeClass: sizeClass, allocator: m.allocator}, nil
}

// CreateBuffer is an alias for Allocate kept for callers that think in
// terms of "give me a scratch buffer" rather than "give me a block".
func (m *Manager) CreateBuffer(size int) (*Handle, error) {
	return m.Allocate(size)
}

// Handle is a scoped owner of one allocation: the address, the size
// class it was carved from, and the allocator it must be returned to. A
// Handle is valid exactly once: Release must run exactly once, and no
// finalizer runs it for a Handle that is dropped. Calling Release twice
// is a programming error and returns a Memory error on the second call.
type Handle struct {
	addr      unsafe.Pointer
	sizeClass int
	allocator *Allocator
	released  bool
}

// Bytes views the block as a byte slice of its size class.
func (h *Handle) Bytes() []byte {
	return unsafe.Slice((*byte)(h.addr), h.sizeClass)
}

// Size returns the size class this handle was carved from.
func (h *Handle) Size() int { return h.sizeClass }

// Release returns the block to its pool. A handle is valid exactly once:
// calling Release a second time is forbidden and reports a Memory error
// rather than silently succeeding.
func (h *Handle) Release() error {
	if h.released {
		return errs.New(errs.Memory, "handle already released")
	}
	h.released = true
	return h.allocator.Deallocate(h.addr, h.sizeClass)
}
