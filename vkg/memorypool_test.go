package vkg

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

// fakeReserve hands out Go backed blocks and records every reservation.
type fakeReserve struct {
	calls  []bool
	memory [][]byte
}

func (f *fakeReserve) reserve(size uint64, typeIndex uint32, mapped bool) (*DeviceMemory, error) {
	f.calls = append(f.calls, mapped)
	mem := &DeviceMemory{Size: size, MemoryTypeIndex: typeIndex}
	if mapped {
		buf := make([]byte, size)
		f.memory = append(f.memory, buf)
		mem.Ptr = unsafe.Pointer(&buf[0])
		mem.MapCount = 1
	}
	return mem, nil
}

func requirements(size, align uint64, bits uint32) vk.MemoryRequirements {
	return vk.MemoryRequirements{Size: vk.DeviceSize(size), Alignment: vk.DeviceSize(align), MemoryTypeBits: bits}
}

var (
	deviceLocal = vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	hostVisible = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
)

func TestMemoryPoolUnifiedMemory(t *testing.T) {
	// a single type that is both device local and host visible
	f := &fakeReserve{}
	m := newMemoryPool([]vk.MemoryType{{PropertyFlags: deviceLocal | hostVisible}}, 1024, f.reserve)

	vertices, err := m.Allocate(requirements(64, 16, 0b1), deviceLocal, vk.ImageTilingLinear)
	require.NoError(t, err)
	staging, err := m.Allocate(requirements(64, 16, 0b1), hostVisible, vk.ImageTilingLinear)
	require.NoError(t, err)

	assert.Equal(t, []bool{true}, f.calls, "one block, mapped because its type is host visible")
	assert.Same(t, vertices.Memory(), staging.Memory())
	assert.Len(t, staging.Bytes(), 64)
	assert.Equal(t, uint64(64), staging.Offset)
}

func TestMemoryPoolDiscreteMemory(t *testing.T) {
	f := &fakeReserve{}
	m := newMemoryPool([]vk.MemoryType{{PropertyFlags: deviceLocal}, {PropertyFlags: hostVisible}}, 1024, f.reserve)

	local, err := m.Allocate(requirements(64, 16, 0b11), deviceLocal, vk.ImageTilingLinear)
	require.NoError(t, err)
	host, err := m.Allocate(requirements(64, 16, 0b11), hostVisible, vk.ImageTilingLinear)
	require.NoError(t, err)

	assert.Equal(t, []bool{false, true}, f.calls)
	assert.Nil(t, local.Bytes())
	assert.Len(t, host.Bytes(), 64)
	assert.Equal(t, uint32(1), host.Memory().MemoryTypeIndex)
}

func TestMemoryPoolSeparatesTiling(t *testing.T) {
	f := &fakeReserve{}
	m := newMemoryPool([]vk.MemoryType{{PropertyFlags: deviceLocal}}, 1024, f.reserve)

	buf, err := m.Allocate(requirements(100, 4, 0b1), deviceLocal, vk.ImageTilingLinear)
	require.NoError(t, err)
	img, err := m.Allocate(requirements(100, 4, 0b1), deviceLocal, vk.ImageTilingOptimal)
	require.NoError(t, err)
	buf2, err := m.Allocate(requirements(100, 4, 0b1), deviceLocal, vk.ImageTilingLinear)
	require.NoError(t, err)

	assert.NotSame(t, buf.Memory(), img.Memory())
	assert.Same(t, buf.Memory(), buf2.Memory())
	assert.Equal(t, uint64(0), img.Offset)

	blocks, reserved, used := m.Stats()
	assert.Equal(t, 2, blocks)
	assert.Equal(t, uint64(2048), reserved)
	assert.Equal(t, uint64(300), used)
}

func TestMemoryPoolGrows(t *testing.T) {
	f := &fakeReserve{}
	m := newMemoryPool([]vk.MemoryType{{PropertyFlags: hostVisible}}, 256, f.reserve)

	_, err := m.Allocate(requirements(200, 1, 0b1), hostVisible, vk.ImageTilingLinear)
	require.NoError(t, err)
	big, err := m.Allocate(requirements(1000, 1, 0b1), hostVisible, vk.ImageTilingLinear)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), big.Memory().Size, "oversized requests get a block of their own")

	m.Free(big)
	_, _, used := m.Stats()
	assert.Equal(t, uint64(200), used)

	_, err = m.Allocate(requirements(8, 1, 0b10), hostVisible, vk.ImageTilingLinear)
	assert.Error(t, err, "no allowed memory type")
}
