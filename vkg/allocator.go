package vkg

import (
	"fmt"
)

// Allocation is a range of a larger memory region.
type Allocation struct {
	Offset uint64
	Size   uint64
}

func (a *Allocation) String() string {
	return fmt.Sprintf("[%d %d]", a.Offset, a.Size)
}

// IAllocator hands out ranges of a fixed size region.
type IAllocator interface {
	Free(a *Allocation)
	// Allocate returns nil when no aligned range of size bytes is free.
	Allocate(size uint64, align uint64) *Allocation
	Used() uint64
}

// FirstFitAllocator places each allocation in the first gap large enough to hold it.
type FirstFitAllocator struct {
	Size uint64
	// sorted by offset
	allocs []*Allocation
}

func makeAlignUp(a uint64, align uint64) uint64 {
	if align <= 1 {
		return a
	}
	m := a % align
	if m == 0 {
		return a
	}
	return (a - m) + align
}

func (p *FirstFitAllocator) Free(fa *Allocation) {
	for i, a := range p.allocs {
		if a == fa {
			p.allocs = append(p.allocs[:i], p.allocs[i+1:]...)
			return
		}
	}
}

func (p *FirstFitAllocator) Allocate(size uint64, align uint64) *Allocation {
	if size == 0 || size > p.Size {
		return nil
	}

	var end uint64
	for i, a := range p.allocs {
		start := makeAlignUp(end, align)
		if start <= a.Offset && a.Offset-start >= size {
			na := &Allocation{Offset: start, Size: size}
			p.allocs = append(p.allocs[:i], append([]*Allocation{na}, p.allocs[i:]...)...)
			return na
		}
		end = a.Offset + a.Size
	}

	start := makeAlignUp(end, align)
	if start > p.Size || p.Size-start < size {
		return nil
	}
	na := &Allocation{Offset: start, Size: size}
	p.allocs = append(p.allocs, na)
	return na
}

// Used is the number of bytes currently allocated, alignment padding excluded.
func (p *FirstFitAllocator) Used() uint64 {
	var used uint64
	for _, a := range p.allocs {
		used += a.Size
	}
	return used
}

func (p *FirstFitAllocator) String() string {
	return fmt.Sprintf("%v", p.allocs)
}
