// Package memory implements the sized-class slab allocator described by
// the core: a fixed vector of size-class pools behind one mutex, handing
// out scoped allocation handles. Acquire and release each scan the
// pool's blocks linearly, so both are O(capacity).
package memory

import (
	"sync/atomic"
	"unsafe"

	"github.com/octet-server/octet/core/errs"
)

// block tracks one fixed-size chunk carved out of a slab. Its address
// never moves once created.
type block struct {
	addr  unsafe.Pointer
	size  int
	inUse bool
}

// Pool holds every block of one uniform size class. allocate/deallocate
// run under the owning Allocator's mutex; inUse is still atomic so
// metrics readers can observe it without taking that lock.
type Pool struct {
	slabs     [][]byte // owned slab chunks; each contributes len/blockSize blocks
	blocks    []block
	blockSize int
	capacity  int
	inUse     atomic.Int64
}

// NewPool creates a pool of the given block size with an initial number
// of blocks already carved out.
func NewPool(blockSize, initialBlocks int) *Pool {
	p := &Pool{blockSize: blockSize}
	if initialBlocks > 0 {
		p.grow(initialBlocks)
	}
	return p
}

// grow carves `additional` new blocks of blockSize out of a freshly
// allocated slab and appends them to the pool's block index.
func (p *Pool) grow(additional int) {
	slab := make([]byte, p.blockSize*additional)
	base := unsafe.Pointer(&slab[0])

	for i := 0; i < additional; i++ {
		addr := unsafe.Add(base, i*p.blockSize)
		p.blocks = append(p.blocks, block{addr: addr, size: p.blockSize})
	}

	p.capacity += additional
	p.slabs = append(p.slabs, slab)
}

// Allocate scans linearly for the first free block, grows the pool by
// max(capacity/2, 1) if none is free, and returns the chosen block's
// address.
func (p *Pool) Allocate() (unsafe.Pointer, error) {
	for i := range p.blocks {
		if !p.blocks[i].inUse {
			p.blocks[i].inUse = true
			p.inUse.Add(1)
			return p.blocks[i].addr, nil
		}
	}

	additional := p.capacity / 2
	if additional < 1 {
		additional = 1
	}
	start := len(p.blocks)
	p.grow(additional)

	for i := start; i < len(p.blocks); i++ {
		if !p.blocks[i].inUse {
			p.blocks[i].inUse = true
			p.inUse.Add(1)
			return p.blocks[i].addr, nil
		}
	}

	return nil, errs.New(errs.Memory, "failed to allocate memory block")
}

// Deallocate finds the block whose address matches ptr and marks it
// free. It fails if the address is unknown or already free.
func (p *Pool) Deallocate(ptr unsafe.Pointer) error {
	for i := range p.blocks {
		if p.blocks[i].addr == ptr {
			if !p.blocks[i].inUse {
				return errs.New(errs.Memory, "block not in-use")
			}
			p.blocks[i].inUse = false
			p.inUse.Add(-1)
			return nil
		}
	}
	return errs.New(errs.Memory, "block not found in pool")
}

// Resize grows the pool if n exceeds its current capacity. It fails if n
// is smaller than the number of blocks currently in use.
func (p *Pool) Resize(n int) error {
	if int64(n) < p.inUse.Load() {
		return errs.New(errs.Memory, "cannot resize pool smaller than number of blocks in use")
	}
	if n > p.capacity {
		p.grow(n - p.capacity)
	}
	return nil
}

// Capacity returns the total number of blocks the pool currently owns.
func (p *Pool) Capacity() int { return p.capacity }

// InUse returns the number of blocks currently allocated.
func (p *Pool) InUse() int64 { return p.inUse.Load() }

// SizeClass returns the fixed block size served by this pool.
func (p *Pool) SizeClass() int { return p.blockSize }
