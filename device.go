package cgin

import (
	"math"
	"time"

	vk "github.com/vulkan-go/vulkan"
)

// WaitForever is the timeout used for fence waits that must not give up.
const WaitForever = time.Duration(math.MaxInt64)

// Device is everything the render graph needs from a graphics context. Every handle it
// returns is destroyed through its own Destroy method.
type Device interface {
	CreateFence(signaled bool) (Fence, error)
	WaitForFences(timeout time.Duration, fences ...Fence) error
	ResetFences(fences ...Fence) error

	AllocateCommandBuffer() (CommandBuffer, error)
	// Submit queues a recorded command buffer, fence is signaled when it retires.
	Submit(cmd CommandBuffer, fence Fence) error
	// ExecuteInstant records, submits and waits for a one time command buffer.
	ExecuteInstant(record func(cmd CommandBuffer)) error

	CreateBuffer(size uint64, usage vk.BufferUsageFlags, properties vk.MemoryPropertyFlags) (DeviceBuffer, error)
	CreateImage(info ImageInfo) (DeviceImage, error)

	CreateDescriptorSetLayout(bindings []vk.DescriptorSetLayoutBinding) (DescriptorSetLayout, error)
	AllocateDescriptorSet(layout DescriptorSetLayout) (DescriptorSet, error)
	UpdateDescriptorSet(set DescriptorSet, writes []DescriptorWrite)

	CreatePipelineLayout(layout DescriptorSetLayout) (PipelineLayout, error)
	CreateComputePipeline(layout PipelineLayout, shader ShaderModule, entryPoint string) (Pipeline, error)
	CreateGraphicsPipeline(desc *GraphicsPipelineDesc) (Pipeline, error)
	CreateRenderPass(desc *RenderPassDesc) (RenderPass, error)
	CreateFramebuffer(renderPass RenderPass, attachments []DeviceImage, extent vk.Extent2D) (Framebuffer, error)

	// RenderResolution is the resolution compute work is dispatched over.
	RenderResolution() vk.Extent2D
}

// CommandBuffer records commands for later submission.
type CommandBuffer interface {
	Begin() error
	End() error

	MemoryBarrier(b Barrier)
	ImageBarrier(image DeviceImage, b Barrier)

	CopyBuffer(src, dst DeviceBuffer, size uint64)
	CopyBufferToImage(src DeviceBuffer, dst DeviceImage, layout vk.ImageLayout, extent vk.Extent2D)
	ClearColorImage(image DeviceImage, layout vk.ImageLayout)
	BlitImage(src DeviceImage, srcLayout vk.ImageLayout, srcExtent vk.Extent2D, dst DeviceImage, dstLayout vk.ImageLayout, dstExtent vk.Extent2D)

	BeginRenderPass(renderPass RenderPass, framebuffer Framebuffer, extent vk.Extent2D, clears []ClearValue)
	EndRenderPass()

	BindPipeline(bindPoint vk.PipelineBindPoint, pipeline Pipeline)
	BindDescriptorSet(bindPoint vk.PipelineBindPoint, layout PipelineLayout, set DescriptorSet)
	BindVertexBuffer(buffer DeviceBuffer)
	BindIndexBuffer(buffer DeviceBuffer, indexType vk.IndexType)
	DrawIndexed(indexCount int)
	Dispatch(x, y, z int)

	// Recorded is the number of commands recorded since Begin.
	Recorded() int
	Destroy()
}

// Barrier orders the memory effects of one access before another. The layout and
// aspect fields are only read by image barriers.
type Barrier struct {
	SrcAccess vk.AccessFlags
	DstAccess vk.AccessFlags
	SrcStage  vk.PipelineStageFlags
	DstStage  vk.PipelineStageFlags
	OldLayout vk.ImageLayout
	NewLayout vk.ImageLayout
	Aspect    vk.ImageAspectFlags
}

// ClearValue is the clear value for one render pass attachment.
type ClearValue struct {
	Color   [4]float32
	Depth   float32
	Stencil uint32
	IsDepth bool
}

// ImageInfo describes an image for Device.CreateImage. The device also creates a 2D view
// with Aspect and a sampler for it.
type ImageInfo struct {
	Extent     vk.Extent2D
	Format     vk.Format
	Usage      vk.ImageUsageFlags
	Aspect     vk.ImageAspectFlags
	Properties vk.MemoryPropertyFlags
}

// DescriptorWrite points one binding of a descriptor set at a resource.
type DescriptorWrite struct {
	Binding int
	Type    vk.DescriptorType

	Buffer DeviceBuffer
	Offset uint64
	Range  uint64

	Image  DeviceImage
	Layout vk.ImageLayout
}

// RenderPassDesc describes a render pass with a single subpass.
type RenderPassDesc struct {
	Attachments []vk.AttachmentDescription
	Color       []vk.AttachmentReference
	Depth       *vk.AttachmentReference
}

// GraphicsPipelineDesc describes the fixed function and shader state of a graphics pipeline.
type GraphicsPipelineDesc struct {
	Layout     PipelineLayout
	RenderPass RenderPass
	Extent     vk.Extent2D

	VertexShader   ShaderModule
	FragmentShader ShaderModule
	EntryPoint     string

	Bindings   []vk.VertexInputBindingDescription
	Attributes []vk.VertexInputAttributeDescription

	Topology   vk.PrimitiveTopology
	CullMode   vk.CullModeFlagBits
	FrontFace  vk.FrontFace
	DepthTest  bool
	DepthWrite bool
	// One entry per color attachment, true enables additive blending.
	Blend []bool
}

type Fence interface{ Destroy() }

type DescriptorSetLayout interface{ Destroy() }

type DescriptorSet interface{}

type PipelineLayout interface{ Destroy() }

type Pipeline interface{ Destroy() }

type RenderPass interface{ Destroy() }

type Framebuffer interface{ Destroy() }

type ShaderModule interface{ Destroy() }

// DeviceBuffer is a buffer bound to device memory.
type DeviceBuffer interface {
	Size() uint64
	// Write copies data to the start of a host visible buffer.
	Write(data []byte) error
	// Read copies the start of a host visible buffer into p.
	Read(p []byte) error
	Destroy()
}

// DeviceImage is an image together with its view and sampler.
type DeviceImage interface {
	Destroy()
}
