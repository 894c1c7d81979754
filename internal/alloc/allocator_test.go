package alloc

import (
	"sync"
	"testing"
)

func TestAllocatorBasic(t *testing.T) {
	a := New(1024)

	if addr := a.Alloc(100); addr != 1024 {
		t.Errorf("first allocation: got 0x%x, want 0x%x", addr, 1024)
	}
	if addr := a.Alloc(200); addr != 1124 {
		t.Errorf("second allocation: got 0x%x, want 0x%x", addr, 1124)
	}
	if a.EOFAddr() != 1324 {
		t.Errorf("EOF: got 0x%x, want 0x%x", a.EOFAddr(), 1324)
	}
}

func TestAllocatorZeroSize(t *testing.T) {
	a := New(100)
	if addr := a.Alloc(0); addr != 100 {
		t.Errorf("zero allocation: got 0x%x, want 0x%x", addr, 100)
	}
	if a.EOFAddr() != 100 {
		t.Errorf("EOF after zero alloc: got 0x%x, want 0x%x", a.EOFAddr(), 100)
	}
}

func TestAllocatorAligned(t *testing.T) {
	a := New(100)
	a.Alloc(13)

	addr := a.AllocAligned(50, 8)
	if addr != 120 {
		t.Errorf("aligned allocation: got 0x%x, want 0x%x", addr, 120)
	}
	if err := a.Validate(); err != nil {
		t.Error(err)
	}
}

func TestAllocatorReuse(t *testing.T) {
	a := New(0)
	hdr := a.AllocTagged(131, "group header")
	a.Alloc(64)
	a.Free(hdr, 131)

	// Smaller request splits the free block.
	if addr := a.Alloc(100); addr != hdr {
		t.Errorf("reused address = %d, want %d", addr, hdr)
	}
	if fb := a.FreeBlocks(); len(fb) != 1 || fb[0].Addr != 100 || fb[0].Size != 31 {
		t.Errorf("free blocks = %+v", fb)
	}
	// Too big for the remainder: taken from EOF.
	if addr := a.Alloc(40); addr != 195 {
		t.Errorf("EOF allocation = %d, want 195", addr)
	}
	// Exact fit consumes the block.
	if addr := a.Alloc(31); addr != 100 {
		t.Errorf("exact fit = %d, want 100", addr)
	}
	if len(a.FreeBlocks()) != 0 {
		t.Errorf("free list not empty: %+v", a.FreeBlocks())
	}
	if s := a.Stats(); s.ReusedBytes != 131 || s.TotalBytesFree != 131 {
		t.Errorf("stats = %+v", s)
	}
	if err := a.Validate(); err != nil {
		t.Error(err)
	}
}

func TestAllocatorValidateOverlap(t *testing.T) {
	a := New(0)
	a.Alloc(10)
	a.allocations = append(a.allocations, Allocation{Addr: 5, Size: 2})
	if err := a.Validate(); err == nil {
		t.Error("expected overlap error")
	}
}

func TestAllocatorConcurrent(t *testing.T) {
	a := New(0)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				a.Alloc(8)
			}
		}()
	}
	wg.Wait()
	if a.EOFAddr() != 16*100*8 {
		t.Errorf("EOF = %d", a.EOFAddr())
	}
	if err := a.Validate(); err != nil {
		t.Error(err)
	}
}
