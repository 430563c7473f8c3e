package vkg

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	cgin "github.com/Daniel-JSmith/cgin1"
)

// ErrNotMapped is returned when host access is attempted on device local memory.
var ErrNotMapped = errors.New("buffer memory is not host visible")

// Buffer are used to map hunks of data that are then bound to resources used by the pipeline
// and command buffers to render data. It implements cgin.DeviceBuffer.
type Buffer struct {
	Device   *Device
	VKBuffer vk.Buffer
	Usage    vk.BufferUsageFlags

	size   uint64
	memory *Suballocation
	pool   *MemoryPool
}

var _ cgin.DeviceBuffer = (*Buffer)(nil)

// CreateBufferWithOptions creates a buffer with no memory bound to it.
func (d *Device) CreateBufferWithOptions(sizeInBytes uint64, usage vk.BufferUsageFlags, sharing vk.SharingMode) (*Buffer, error) {
	bufferCreateInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(sizeInBytes),
		Usage:       usage,
		SharingMode: sharing,
	}

	var buffer vk.Buffer
	err := vk.Error(vk.CreateBuffer(d.VKDevice, &bufferCreateInfo, nil, &buffer))
	if err != nil {
		return nil, errors.Wrap(err, "create buffer")
	}
	return &Buffer{Device: d, VKBuffer: buffer, Usage: usage, size: sizeInBytes}, nil
}

// CreateBuffer creates a buffer bound to pooled memory with the given properties.
func (m *MemoryPool) CreateBuffer(sizeInBytes uint64, usage vk.BufferUsageFlags, properties vk.MemoryPropertyFlags) (*Buffer, error) {
	b, err := m.Device.CreateBufferWithOptions(sizeInBytes, usage, vk.SharingModeExclusive)
	if err != nil {
		return nil, err
	}

	mem, err := m.Allocate(b.VKMemoryRequirements(), properties, vk.ImageTilingLinear)
	if err != nil {
		b.Destroy()
		return nil, errors.Wrap(err, "allocate buffer memory")
	}
	b.memory, b.pool = mem, m

	if err := b.Bind(mem.Memory(), mem.Offset); err != nil {
		b.Destroy()
		return nil, err
	}
	return b, nil
}

func (b *Buffer) Size() uint64 {
	return b.size
}

func (b *Buffer) VKMemoryRequirements() vk.MemoryRequirements {
	var memoryRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(b.Device.VKDevice, b.VKBuffer, &memoryRequirements)
	return memoryRequirements
}

func (b *Buffer) Bind(memory *DeviceMemory, offset uint64) error {
	return errors.Wrap(vk.Error(vk.BindBufferMemory(b.Device.VKDevice, b.VKBuffer, memory.VKDeviceMemory, vk.DeviceSize(offset))), "bind buffer memory")
}

// Bytes returns the mapped contents of a host visible buffer.
func (b *Buffer) Bytes() []byte {
	if b.memory == nil {
		return nil
	}
	if p := b.memory.Bytes(); p != nil {
		return p[:b.size]
	}
	return nil
}

func (b *Buffer) Write(data []byte) error {
	p := b.Bytes()
	if p == nil {
		return ErrNotMapped
	}
	copy(p, data)
	return nil
}

func (b *Buffer) Read(p []byte) error {
	src := b.Bytes()
	if src == nil {
		return ErrNotMapped
	}
	copy(p, src)
	return nil
}

func (b *Buffer) DSInfo() vk.DescriptorBufferInfo {
	return vk.DescriptorBufferInfo{
		Buffer: b.VKBuffer,
		Range:  vk.DeviceSize(b.size),
	}
}

// Destroy destroys the buffer and returns its memory to the pool.
func (b *Buffer) Destroy() {
	vk.DestroyBuffer(b.Device.VKDevice, b.VKBuffer, nil)
	if b.pool != nil {
		b.pool.Free(b.memory)
		b.memory, b.pool = nil, nil
	}
}
