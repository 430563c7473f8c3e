package vkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"

	cgin "github.com/Daniel-JSmith/cgin1"
)

func TestDescriptorWrites(t *testing.T) {
	buf := &Buffer{size: 256}
	img := &Image{View: &ImageView{}}

	writes := vkDescriptorWrites(nil, []cgin.DescriptorWrite{
		{Binding: 0, Type: vk.DescriptorTypeUniformBuffer, Buffer: buf, Offset: 16, Range: 64},
		{Binding: 3, Type: vk.DescriptorTypeCombinedImageSampler, Image: img, Layout: vk.ImageLayoutShaderReadOnlyOptimal},
		// nothing to point at
		{Binding: 4, Type: vk.DescriptorTypeStorageImage},
	})
	require.Len(t, writes, 2)

	assert.Equal(t, uint32(0), writes[0].DstBinding)
	assert.Equal(t, vk.DescriptorTypeUniformBuffer, writes[0].DescriptorType)
	require.Len(t, writes[0].PBufferInfo, 1)
	assert.Equal(t, vk.DeviceSize(16), writes[0].PBufferInfo[0].Offset)
	assert.Equal(t, vk.DeviceSize(64), writes[0].PBufferInfo[0].Range)
	assert.Empty(t, writes[0].PImageInfo)

	assert.Equal(t, uint32(3), writes[1].DstBinding)
	assert.Equal(t, uint32(1), writes[1].DescriptorCount)
	require.Len(t, writes[1].PImageInfo, 1)
	assert.Equal(t, vk.ImageLayoutShaderReadOnlyOptimal, writes[1].PImageInfo[0].ImageLayout)
	assert.Empty(t, writes[1].PBufferInfo)
}
