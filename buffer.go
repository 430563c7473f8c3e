package cgin

import (
	units "github.com/docker/go-units"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

var bufferBaseUsage = map[AccessProperty]vk.BufferUsageFlags{
	PreferHost:   0,
	PreferDevice: vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
}

var bufferOperationUsage = map[Operation]vk.BufferUsageFlags{
	VertexBuffer:        vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit),
	IndexBuffer:         vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit),
	UniformBuffer:       vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
	ShaderStorageBuffer: vk.BufferUsageFlags(vk.BufferUsageStorageBufferBit),
	TransferSource:      vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
	TransferDestination: vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
}

// BufferUsage returns the usage flags a buffer with the given property and operations
// is created with. It panics on an operation buffers do not support.
func BufferUsage(property AccessProperty, operations []Operation) vk.BufferUsageFlags {
	usage := lookup(bufferBaseUsage, property, "buffer usage")
	for _, op := range operations {
		usage |= lookup(bufferOperationUsage, op, "buffer usage")
	}
	return usage
}

// BufferConfig holds what a buffer is built from.
type BufferConfig struct {
	Size     uint64
	Property AccessProperty
	// Operations the buffer is used for outside of any pass, e.g. vertex data.
	Operations []Operation
	// Data is copied into the buffer when it is initialized.
	Data []byte
}

// Buffer is a linear block of device memory.
type Buffer struct {
	resourceBase
	size   uint64
	data   []byte
	handle DeviceBuffer
}

// NewBuffer configures a buffer, memory is allocated by Initialize.
func NewBuffer(cfg BufferConfig) *Buffer {
	return &Buffer{
		resourceBase: newResourceBase(cfg.Property, cfg.Operations...),
		size:         cfg.Size,
		data:         cfg.Data,
	}
}

// Size is the size of the buffer in bytes.
func (b *Buffer) Size() uint64 {
	return b.size
}

// Handle returns the device buffer, nil before Initialize.
func (b *Buffer) Handle() DeviceBuffer {
	return b.handle
}

func (b *Buffer) Initialize(dev Device) error {
	if err := b.begin(dev); err != nil {
		return err
	}

	usage := BufferUsage(b.property, b.Operations())
	if usage == 0 {
		return ErrUnusedResource
	}

	handle, err := dev.CreateBuffer(b.size, usage, memoryProperties[b.property])
	if err != nil {
		return errors.Wrap(err, "create buffer")
	}
	b.handle = handle

	Logger().Debug("buffer initialized",
		"size", units.BytesSize(float64(b.size)),
		"operations", b.Operations(),
		"property", b.property)

	if b.data == nil {
		return nil
	}
	data := b.data
	b.data = nil
	return b.CopyData(data)
}

// CopyData waits until no pass uses the buffer, then copies data to its start.
func (b *Buffer) CopyData(data []byte) error {
	if uint64(len(data)) > b.size {
		return errors.Wrapf(ErrDataTooLarge, "%d > %d", len(data), b.size)
	}
	if err := b.WaitForReady(); err != nil {
		return err
	}

	switch b.property {
	case PreferHost:
		return b.handle.Write(data)
	default:
		return b.copyStaged(data)
	}
}

func (b *Buffer) copyStaged(data []byte) error {
	staging, err := b.dev.CreateBuffer(uint64(len(data)),
		BufferUsage(PreferHost, []Operation{TransferSource}),
		memoryProperties[PreferHost])
	if err != nil {
		return errors.Wrap(err, "create staging buffer")
	}
	defer staging.Destroy()

	if err := staging.Write(data); err != nil {
		return errors.Wrap(err, "write staging buffer")
	}

	err = b.dev.ExecuteInstant(func(cmd CommandBuffer) {
		cmd.CopyBuffer(staging, b.handle, uint64(len(data)))
	})
	return errors.Wrap(err, "copy staging buffer")
}

// ReadData waits until no pass uses the buffer, then copies its start into p.
func (b *Buffer) ReadData(p []byte) error {
	if b.property != PreferHost {
		return ErrNotHostVisible
	}
	if uint64(len(p)) > b.size {
		return errors.Wrapf(ErrDataTooLarge, "%d > %d", len(p), b.size)
	}
	if err := b.WaitForReady(); err != nil {
		return err
	}
	return b.handle.Read(p)
}

func (b *Buffer) DescriptorWrite(binding int, access Access) DescriptorWrite {
	return DescriptorWrite{
		Binding: binding,
		Type:    access.DescriptorType(),
		Buffer:  b.handle,
		Offset:  0,
		Range:   b.size,
	}
}

func (b *Buffer) PrepareForInitialAccess(cmd CommandBuffer, access Access) {
	b.InsertBarrier(cmd, InitialAccess, access)
}

func (b *Buffer) InsertBarrier(cmd CommandBuffer, prev, curr Access) {
	cmd.MemoryBarrier(b.barrier(prev, curr))
}

func (b *Buffer) Destroy() {
	if b.handle != nil {
		b.handle.Destroy()
		b.handle = nil
	}
}
