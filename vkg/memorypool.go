package vkg

import (
	units "github.com/docker/go-units"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	cgin "github.com/Daniel-JSmith/cgin1"
)

// DefaultBlockSize is the size of each device memory block a MemoryPool reserves.
const DefaultBlockSize = 64 * units.MiB

// ErrAllocation is returned when a memory pool cannot place a request.
var ErrAllocation = errors.New("no space for allocation")

type memoryBlock struct {
	memory    *DeviceMemory
	allocator *FirstFitAllocator
	hostSide  bool
}

// blockKey separates blocks by memory type and by tiling. Linear buffers and optimal
// images never share a block, so bufferImageGranularity never applies between neighbours.
type blockKey struct {
	typeIndex uint32
	tiling    vk.ImageTiling
}

// reserveFunc allocates a block of a memory type, mapping it when mapped is set.
type reserveFunc func(size uint64, typeIndex uint32, mapped bool) (*DeviceMemory, error)

// MemoryPool suballocates buffers and images from large device memory blocks, one
// list of blocks per memory type and tiling. Host visible blocks stay mapped for their lifetime.
type MemoryPool struct {
	Device    *Device
	BlockSize uint64

	memoryTypes []vk.MemoryType
	reserve     reserveFunc
	blocks      map[blockKey][]*memoryBlock
}

// Suballocation is a range of a pooled memory block.
type Suballocation struct {
	*Allocation
	block *memoryBlock
}

// Memory is the block the range belongs to.
func (s *Suballocation) Memory() *DeviceMemory {
	return s.block.memory
}

// Bytes returns the mapped range, nil for memory that is not host visible.
func (s *Suballocation) Bytes() []byte {
	if !s.block.hostSide {
		return nil
	}
	return s.block.memory.Bytes(s.Offset, s.Size)
}

// CreateMemoryPool creates a pool reserving blocks of blockSize bytes, or DefaultBlockSize when zero.
func (d *Device) CreateMemoryPool(blockSize uint64) *MemoryPool {
	m := newMemoryPool(d.PhysicalDevice.MemoryTypes(), blockSize, d.reserveBlock)
	m.Device = d
	return m
}

func newMemoryPool(types []vk.MemoryType, blockSize uint64, reserve reserveFunc) *MemoryPool {
	if blockSize == 0 {
		blockSize = DefaultBlockSize
	}
	return &MemoryPool{
		BlockSize:   blockSize,
		memoryTypes: types,
		reserve:     reserve,
		blocks:      make(map[blockKey][]*memoryBlock),
	}
}

func (d *Device) reserveBlock(size uint64, typeIndex uint32, mapped bool) (*DeviceMemory, error) {
	mem, err := d.Allocate(size, typeIndex)
	if err != nil {
		return nil, err
	}
	if mapped {
		if _, err := mem.Map(); err != nil {
			mem.Destroy()
			return nil, err
		}
	}
	return mem, nil
}

// Allocate places memory matching requirements with at least the given properties.
// Buffers pass vk.ImageTilingLinear, images their own tiling.
func (m *MemoryPool) Allocate(requirements vk.MemoryRequirements, properties vk.MemoryPropertyFlags, tiling vk.ImageTiling) (*Suballocation, error) {
	requirements.Deref()
	size := uint64(requirements.Size)
	align := uint64(requirements.Alignment)

	typeIndex, err := findMemoryType(m.memoryTypes, requirements.MemoryTypeBits, properties)
	if err != nil {
		return nil, err
	}
	key := blockKey{typeIndex: typeIndex, tiling: tiling}

	for _, b := range m.blocks[key] {
		if a := b.allocator.Allocate(size, align); a != nil {
			return &Suballocation{Allocation: a, block: b}, nil
		}
	}

	b, err := m.newBlock(key, size)
	if err != nil {
		return nil, err
	}
	a := b.allocator.Allocate(size, align)
	if a == nil {
		return nil, errors.Wrapf(ErrAllocation, "%s in a fresh block", units.BytesSize(float64(size)))
	}
	return &Suballocation{Allocation: a, block: b}, nil
}

// newBlock maps the block whenever its memory type is host visible, whatever the
// request asked for. A device local and host visible type serves both kinds of request.
func (m *MemoryPool) newBlock(key blockKey, minSize uint64) (*memoryBlock, error) {
	size := m.BlockSize
	if minSize > size {
		size = minSize
	}

	hostSide := m.memoryTypes[key.typeIndex].PropertyFlags&vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) != 0
	mem, err := m.reserve(size, key.typeIndex, hostSide)
	if err != nil {
		return nil, errors.Wrapf(err, "allocate %s block", units.BytesSize(float64(size)))
	}

	b := &memoryBlock{
		memory:    mem,
		allocator: &FirstFitAllocator{Size: size},
		hostSide:  hostSide,
	}
	m.blocks[key] = append(m.blocks[key], b)

	cgin.Logger().Debug("memory block allocated",
		"type", key.typeIndex,
		"tiling", key.tiling,
		"size", units.BytesSize(float64(size)),
		"mapped", hostSide)
	return b, nil
}

// Free returns a range to its block. Blocks are kept until the pool is destroyed.
func (m *MemoryPool) Free(s *Suballocation) {
	if s == nil {
		return
	}
	s.block.allocator.Free(s.Allocation)
}

// Stats reports the number of blocks, the bytes they reserve and the bytes in use.
func (m *MemoryPool) Stats() (blocks int, reserved, used uint64) {
	for _, list := range m.blocks {
		for _, b := range list {
			blocks++
			reserved += b.memory.Size
			used += b.allocator.Used()
		}
	}
	return blocks, reserved, used
}

// Destroy unmaps and frees every block.
func (m *MemoryPool) Destroy() {
	blocks, reserved, used := m.Stats()
	cgin.Logger().Debug("destroying memory pool",
		"blocks", blocks,
		"reserved", units.BytesSize(float64(reserved)),
		"used", units.BytesSize(float64(used)))

	for _, list := range m.blocks {
		for _, b := range list {
			if b.memory.IsMapped() {
				b.memory.Unmap()
			}
			b.memory.Destroy()
		}
	}
	m.blocks = make(map[blockKey][]*memoryBlock)
}
