package memory

import (
	"testing"
	"unsafe"
)

func TestPoolAllocateDeallocateBalance(t *testing.T) {
	p := NewPool(64, 4)

	addrs := make([]unsafe.Pointer, 0, 8)
	for i := 0; i < 8; i++ {
		addr, err := p.Allocate()
		if err != nil {
			t.Fatalf("allocate %d: %v", i, err)
		}
		addrs = append(addrs, addr)
	}

	if p.InUse() != 8 {
		t.Fatalf("in_use = %d, want 8", p.InUse())
	}
	capacityAfterAlloc := p.Capacity()
	if capacityAfterAlloc < 8 {
		t.Fatalf("capacity = %d, want >= 8", capacityAfterAlloc)
	}

	for _, a := range addrs {
		if err := p.Deallocate(a); err != nil {
			t.Fatalf("deallocate: %v", err)
		}
	}

	if p.InUse() != 0 {
		t.Fatalf("in_use after deallocate all = %d, want 0", p.InUse())
	}
	if p.Capacity() < capacityAfterAlloc {
		t.Fatalf("capacity decreased: %d < %d", p.Capacity(), capacityAfterAlloc)
	}
}

func TestPoolGrowthUnderPressure(t *testing.T) {
	p := NewPool(64, 2)

	for i := 0; i < 3; i++ {
		if _, err := p.Allocate(); err != nil {
			t.Fatalf("allocate %d: %v", i, err)
		}
	}

	if p.Capacity() < 3 {
		t.Fatalf("capacity = %d, want >= 3", p.Capacity())
	}
	if p.InUse() != 3 {
		t.Fatalf("in_use = %d, want 3", p.InUse())
	}
}

func TestAllocatorSizeClassCoverage(t *testing.T) {
	a := NewAllocator()

	sizes := []int{1, 15, 16, 17, 100, 1000, 8192, 9000, 100000}
	for _, s := range sizes {
		ptr, class, err := a.Allocate(s)
		if err != nil {
			t.Fatalf("allocate(%d): %v", s, err)
		}
		if class < s && s <= 8192 {
			t.Fatalf("allocate(%d) returned class %d smaller than requested", s, class)
		}
		if s > 8192 && class != 8192 {
			t.Fatalf("allocate(%d) should clamp to 8192, got %d", s, class)
		}

		// the chosen class must be the smallest configured class covering s
		for _, smaller := range a.sizeClasses {
			if smaller < class && smaller >= s {
				t.Fatalf("allocate(%d) chose %d but smaller class %d also covers it", s, class, smaller)
			}
		}

		if err := a.Deallocate(ptr, class); err != nil {
			t.Fatalf("deallocate: %v", err)
		}
	}
}

func TestHandleRelease(t *testing.T) {
	m := NewManager()

	h, err := m.Allocate(64)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}

	statsBefore := statsFor(m.allocator, h.Size())
	if err := h.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	statsAfter := statsFor(m.allocator, h.Size())

	if statsAfter.InUse != statsBefore.InUse-1 {
		t.Fatalf("in_use after release = %d, want %d", statsAfter.InUse, statsBefore.InUse-1)
	}

	if err := h.Release(); err == nil {
		t.Fatal("expected error on double release")
	}
}

func statsFor(a *Allocator, sizeClass int) PoolStats {
	for _, s := range a.Stats() {
		if s.SizeClass == sizeClass {
			return s
		}
	}
	return PoolStats{}
}
