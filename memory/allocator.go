package memory

import (
	"sync"
	"unsafe"

	"github.com/octet-server/octet/core/errs"
)

// defaultMinClass/defaultMaxClass bound the power-of-two size classes the
// allocator services by default: 16 bytes up to 8KiB.
const (
	defaultMinClass = 16
	defaultMaxClass = 8192
	// initialBlocksPerClass is how many blocks each size class starts
	// with before any allocation pressure forces a grow.
	initialBlocksPerClass = 16
)

// Allocator is a fixed vector of size-class pools behind a single mutex.
// Allocate/Deallocate serialize all pool access through that one lock;
// splitting to per-class locks is a valid implementation choice that
// doesn't change this external contract (spec rationale).
type Allocator struct {
	mu         sync.Mutex
	sizeClasses []int
	pools      []*Pool
}

// NewAllocator builds an Allocator with power-of-two size classes from 16
// to 8192 bytes (inclusive), each backed by a freshly warmed Pool.
func NewAllocator() *Allocator {
	a := &Allocator{}
	for size := defaultMinClass; size <= defaultMaxClass; size *= 2 {
		a.sizeClasses = append(a.sizeClasses, size)
		a.pools = append(a.pools, NewPool(size, initialBlocksPerClass))
	}
	return a
}

// findSizeClass returns the index of the smallest configured class >= s,
// clamped to the largest class when s exceeds every class.
func (a *Allocator) findSizeClass(s int) int {
	for i, class := range a.sizeClasses {
		if s <= class {
			return i
		}
	}
	return len(a.sizeClasses) - 1
}

// Allocate acquires the allocator's lock, selects the smallest size class
// covering size, and returns the block's address along with that class.
func (a *Allocator) Allocate(size int) (unsafe.Pointer, int, error) {
	idx := a.findSizeClass(size)

	a.mu.Lock()
	defer a.mu.Unlock()

	ptr, err := a.pools[idx].Allocate()
	if err != nil {
		return nil, 0, err
	}
	return ptr, a.sizeClasses[idx], nil
}

// Deallocate resolves the pool for sizeClass and returns ptr to it.
func (a *Allocator) Deallocate(ptr unsafe.Pointer, sizeClass int) error {
	idx := -1
	for i, class := range a.sizeClasses {
		if class == sizeClass {
			idx = i
			break
		}
	}
	if idx == -1 {
		return errs.New(errs.Memory, "invalid size class %d", sizeClass)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	return a.pools[idx].Deallocate(ptr)
}

// PoolStats describes one size class's pool for observability.
type PoolStats struct {
	SizeClass int
	Capacity  int
	InUse     int64
}

// Stats snapshots every size class's pool under the allocator's lock.
func (a *Allocator) Stats() []PoolStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]PoolStats, len(a.pools))
	for i, p := range a.pools {
		out[i] = PoolStats{SizeClass: a.sizeClasses[i], Capacity: p.Capacity(), InUse: p.InUse()}
	}
	return out
}
