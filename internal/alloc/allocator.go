package alloc

import (
	"fmt"
	"slices"
	"sync"
)

// Allocator hands out file addresses. It is safe for concurrent use.
type Allocator struct {
	mu sync.Mutex

	// eofAddr is the next address taken from the end of the file.
	eofAddr uint64
	// baseAddr is the lowest address that may be allocated.
	baseAddr uint64

	allocations []Allocation
	freeBlocks  []FreeBlock
	stats       Stats
}

// Allocation is one live block.
type Allocation struct {
	Addr uint64
	Size uint64
	Tag  string
}

// FreeBlock is a released block available for reuse.
type FreeBlock struct {
	Addr uint64
	Size uint64
}

// Stats holds allocation counters.
type Stats struct {
	TotalAllocations uint64
	TotalBytesAlloc  uint64
	TotalBytesFree   uint64
	ReusedBytes      uint64
	LargestAlloc     uint64
}

// New returns an Allocator whose first allocation lands at baseAddr. For an
// existing file pass the superblock's end-of-file address.
func New(baseAddr uint64) *Allocator {
	return &Allocator{
		eofAddr:  baseAddr,
		baseAddr: baseAddr,
	}
}

// Alloc allocates size bytes.
func (a *Allocator) Alloc(size uint64) uint64 {
	return a.AllocTagged(size, "")
}

// AllocTagged allocates size bytes and records tag with the block.
func (a *Allocator) AllocTagged(size uint64, tag string) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	if size == 0 {
		return a.eofAddr
	}
	if addr, ok := a.reuseLocked(size); ok {
		a.recordLocked(addr, size, tag)
		a.stats.ReusedBytes += size
		return addr
	}
	addr := a.eofAddr
	a.eofAddr += size
	a.recordLocked(addr, size, tag)
	return addr
}

// AllocAligned allocates size bytes at the end of the file, aligned to
// alignment. Free blocks are not considered.
func (a *Allocator) AllocAligned(size, alignment uint64) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	if alignment > 1 {
		if rem := a.eofAddr % alignment; rem != 0 {
			a.eofAddr += alignment - rem
		}
	}
	if size == 0 {
		return a.eofAddr
	}
	addr := a.eofAddr
	a.eofAddr += size
	a.recordLocked(addr, size, "")
	return addr
}

func (a *Allocator) reuseLocked(size uint64) (uint64, bool) {
	for i, fb := range a.freeBlocks {
		if fb.Size < size {
			continue
		}
		if fb.Size == size {
			a.freeBlocks = slices.Delete(a.freeBlocks, i, i+1)
		} else {
			a.freeBlocks[i] = FreeBlock{Addr: fb.Addr + size, Size: fb.Size - size}
		}
		return fb.Addr, true
	}
	return 0, false
}

func (a *Allocator) recordLocked(addr, size uint64, tag string) {
	a.allocations = append(a.allocations, Allocation{Addr: addr, Size: size, Tag: tag})
	a.stats.TotalAllocations++
	a.stats.TotalBytesAlloc += size
	a.stats.LargestAlloc = max(a.stats.LargestAlloc, size)
}

// Free releases a block. Blocks that were never handed out by this
// allocator, such as headers of a file opened from disk, may be freed too.
func (a *Allocator) Free(addr, size uint64) {
	if size == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.allocations = slices.DeleteFunc(a.allocations, func(al Allocation) bool {
		return al.Addr == addr && al.Size == size
	})
	a.freeBlocks = append(a.freeBlocks, FreeBlock{Addr: addr, Size: size})
	a.stats.TotalBytesFree += size
}

// EOFAddr returns the current end-of-file address.
func (a *Allocator) EOFAddr() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.eofAddr
}

// BaseAddr returns the lowest allocatable address.
func (a *Allocator) BaseAddr() uint64 {
	return a.baseAddr
}

// Stats returns a copy of the counters.
func (a *Allocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Allocations returns a copy of the live blocks.
func (a *Allocator) Allocations() []Allocation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.allocations)
}

// FreeBlocks returns a copy of the free list.
func (a *Allocator) FreeBlocks() []FreeBlock {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.freeBlocks)
}

// Validate checks that live blocks are in bounds and do not overlap.
func (a *Allocator) Validate() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	sorted := slices.Clone(a.allocations)
	slices.SortFunc(sorted, func(x, y Allocation) int {
		switch {
		case x.Addr < y.Addr:
			return -1
		case x.Addr > y.Addr:
			return 1
		}
		return 0
	})
	for i, al := range sorted {
		if al.Addr < a.baseAddr {
			return fmt.Errorf("allocation at 0x%x is before base address 0x%x", al.Addr, a.baseAddr)
		}
		if al.Addr+al.Size > a.eofAddr {
			return fmt.Errorf("allocation at 0x%x size %d extends past EOF 0x%x", al.Addr, al.Size, a.eofAddr)
		}
		if i > 0 {
			prev := sorted[i-1]
			if prev.Addr+prev.Size > al.Addr {
				return fmt.Errorf("overlapping allocations: [0x%x, size %d] and [0x%x, size %d]",
					prev.Addr, prev.Size, al.Addr, al.Size)
			}
		}
	}
	return nil
}
