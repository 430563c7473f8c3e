package vkg

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	cgin "github.com/Daniel-JSmith/cgin1"
)

// CommandBuffer records a sequence of commands that execute once the buffer is submitted
// to a queue. It implements cgin.CommandBuffer, every handle passed to it must come
// from the same Context.
type CommandBuffer struct {
	VKCommandBuffer vk.CommandBuffer
	Pool            *CommandPool

	recorded int
}

var _ cgin.CommandBuffer = (*CommandBuffer)(nil)

// VK is a utility function for accessing the native vulkan command buffer
func (c *CommandBuffer) VK() vk.CommandBuffer {
	return c.VKCommandBuffer
}

// Reset this command buffer
func (c *CommandBuffer) Reset() error {
	return vk.Error(vk.ResetCommandBuffer(c.VKCommandBuffer, 0))
}

// Begin capturing work for this command buffer, the recording may be submitted any number of times.
func (c *CommandBuffer) Begin() error {
	c.recorded = 0
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}
	return errors.Wrap(vk.Error(vk.BeginCommandBuffer(c.VKCommandBuffer, &beginInfo)), "begin command buffer")
}

// BeginOneTime begins capturing work for this command buffer, with the stipulation that it will only be submitted once
func (c *CommandBuffer) BeginOneTime() error {
	c.recorded = 0
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	return errors.Wrap(vk.Error(vk.BeginCommandBuffer(c.VKCommandBuffer, &beginInfo)), "begin command buffer")
}

// End describing work for this command buffer
func (c *CommandBuffer) End() error {
	return errors.Wrap(vk.Error(vk.EndCommandBuffer(c.VKCommandBuffer)), "end command buffer")
}

func (c *CommandBuffer) MemoryBarrier(b cgin.Barrier) {
	c.recorded++
	vk.CmdPipelineBarrier(c.VKCommandBuffer, b.SrcStage, b.DstStage, 0,
		1, []vk.MemoryBarrier{{
			SType:         vk.StructureTypeMemoryBarrier,
			SrcAccessMask: b.SrcAccess,
			DstAccessMask: b.DstAccess,
		}},
		0, nil, 0, nil)
}

func (c *CommandBuffer) ImageBarrier(image cgin.DeviceImage, b cgin.Barrier) {
	c.recorded++
	img := image.(*Image)
	aspect := b.Aspect
	if aspect == 0 {
		aspect = img.Aspect
	}

	vk.CmdPipelineBarrier(c.VKCommandBuffer, b.SrcStage, b.DstStage, 0, 0, nil, 0, nil,
		1, []vk.ImageMemoryBarrier{{
			SType:               vk.StructureTypeImageMemoryBarrier,
			SrcAccessMask:       b.SrcAccess,
			DstAccessMask:       b.DstAccess,
			OldLayout:           b.OldLayout,
			NewLayout:           b.NewLayout,
			SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
			DstQueueFamilyIndex: vk.QueueFamilyIgnored,
			Image:               img.VKImage,
			SubresourceRange:    img.subresourceRange(aspect),
		}})
}

func (c *CommandBuffer) CopyBuffer(src, dst cgin.DeviceBuffer, size uint64) {
	c.recorded++
	vk.CmdCopyBuffer(c.VKCommandBuffer, src.(*Buffer).VKBuffer, dst.(*Buffer).VKBuffer, 1, []vk.BufferCopy{{
		Size: vk.DeviceSize(size),
	}})
}

func (c *CommandBuffer) CopyBufferToImage(src cgin.DeviceBuffer, dst cgin.DeviceImage, layout vk.ImageLayout, extent vk.Extent2D) {
	c.recorded++
	img := dst.(*Image)
	vk.CmdCopyBufferToImage(c.VKCommandBuffer, src.(*Buffer).VKBuffer, img.VKImage, layout, 1, []vk.BufferImageCopy{{
		ImageSubresource: img.subresourceLayers(),
		ImageExtent:      vk.Extent3D{Width: extent.Width, Height: extent.Height, Depth: 1},
	}})
}

// ClearColorImage clears every texel of the image to zero.
func (c *CommandBuffer) ClearColorImage(image cgin.DeviceImage, layout vk.ImageLayout) {
	c.recorded++
	img := image.(*Image)
	var color vk.ClearColorValue
	vk.CmdClearColorImage(c.VKCommandBuffer, img.VKImage, layout, &color, 1,
		[]vk.ImageSubresourceRange{img.subresourceRange(img.Aspect)})
}

func (c *CommandBuffer) BlitImage(src cgin.DeviceImage, srcLayout vk.ImageLayout, srcExtent vk.Extent2D,
	dst cgin.DeviceImage, dstLayout vk.ImageLayout, dstExtent vk.Extent2D) {
	c.recorded++
	s, d := src.(*Image), dst.(*Image)
	vk.CmdBlitImage(c.VKCommandBuffer, s.VKImage, srcLayout, d.VKImage, dstLayout, 1, []vk.ImageBlit{{
		SrcSubresource: s.subresourceLayers(),
		SrcOffsets:     [2]vk.Offset3D{{}, {X: int32(srcExtent.Width), Y: int32(srcExtent.Height), Z: 1}},
		DstSubresource: d.subresourceLayers(),
		DstOffsets:     [2]vk.Offset3D{{}, {X: int32(dstExtent.Width), Y: int32(dstExtent.Height), Z: 1}},
	}}, vk.FilterNearest)
}

func clearValues(clears []cgin.ClearValue) []vk.ClearValue {
	values := make([]vk.ClearValue, len(clears))
	for i, c := range clears {
		if c.IsDepth {
			values[i].SetDepthStencil(c.Depth, c.Stencil)
		} else {
			values[i].SetColor(c.Color[:])
		}
	}
	return values
}

func (c *CommandBuffer) BeginRenderPass(renderPass cgin.RenderPass, framebuffer cgin.Framebuffer, extent vk.Extent2D, clears []cgin.ClearValue) {
	c.recorded++
	values := clearValues(clears)
	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  renderPass.(*RenderPass).VKRenderPass,
		Framebuffer: framebuffer.(*Framebuffer).VKFramebuffer,
		RenderArea: vk.Rect2D{
			Extent: extent,
		},
		ClearValueCount: uint32(len(values)),
		PClearValues:    values,
	}
	vk.CmdBeginRenderPass(c.VKCommandBuffer, &beginInfo, vk.SubpassContentsInline)
}

func (c *CommandBuffer) EndRenderPass() {
	c.recorded++
	vk.CmdEndRenderPass(c.VKCommandBuffer)
}

func (c *CommandBuffer) BindPipeline(bindPoint vk.PipelineBindPoint, pipeline cgin.Pipeline) {
	c.recorded++
	vk.CmdBindPipeline(c.VKCommandBuffer, bindPoint, pipeline.(*Pipeline).VKPipeline)
}

func (c *CommandBuffer) BindDescriptorSet(bindPoint vk.PipelineBindPoint, layout cgin.PipelineLayout, set cgin.DescriptorSet) {
	c.recorded++
	sets := []vk.DescriptorSet{set.(*DescriptorSet).VKDescriptorSet}
	vk.CmdBindDescriptorSets(c.VKCommandBuffer, bindPoint,
		layout.(*PipelineLayout).VKPipelineLayout, 0, uint32(len(sets)), sets, 0, nil)
}

func (c *CommandBuffer) BindVertexBuffer(buffer cgin.DeviceBuffer) {
	c.recorded++
	vk.CmdBindVertexBuffers(c.VKCommandBuffer, 0, 1, []vk.Buffer{buffer.(*Buffer).VKBuffer}, []vk.DeviceSize{0})
}

func (c *CommandBuffer) BindIndexBuffer(buffer cgin.DeviceBuffer, indexType vk.IndexType) {
	c.recorded++
	vk.CmdBindIndexBuffer(c.VKCommandBuffer, buffer.(*Buffer).VKBuffer, vk.DeviceSize(0), indexType)
}

func (c *CommandBuffer) DrawIndexed(indexCount int) {
	c.recorded++
	vk.CmdDrawIndexed(c.VKCommandBuffer, uint32(indexCount), 1, 0, 0, 0)
}

func (c *CommandBuffer) Dispatch(x, y, z int) {
	c.recorded++
	vk.CmdDispatch(c.VKCommandBuffer, uint32(x), uint32(y), uint32(z))
}

// Recorded is the number of commands recorded since the last Begin.
func (c *CommandBuffer) Recorded() int {
	return c.recorded
}

// Destroy returns the buffer to its pool.
func (c *CommandBuffer) Destroy() {
	c.Pool.FreeBuffer(c)
}
