package vkg

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	cgin "github.com/Daniel-JSmith/cgin1"
)

// RenderPass is a render pass with a single graphics subpass.
type RenderPass struct {
	Device       *Device
	VKRenderPass vk.RenderPass
}

func (r *RenderPass) Destroy() {
	vk.DestroyRenderPass(r.Device.VKDevice, r.VKRenderPass, nil)
}

// VKRenderPassCreateInfo builds the create info for a single subpass that writes the
// described color attachments and an optional depth attachment.
func VKRenderPassCreateInfo(desc *cgin.RenderPassDesc) vk.RenderPassCreateInfo {
	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(desc.Color)),
		PColorAttachments:    desc.Color,
	}
	if desc.Depth != nil {
		depth := *desc.Depth
		subpass.PDepthStencilAttachment = &depth
	}

	return vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(desc.Attachments)),
		PAttachments:    desc.Attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
	}
}

func (d *Device) CreateRenderPass(desc *cgin.RenderPassDesc) (*RenderPass, error) {
	createInfo := VKRenderPassCreateInfo(desc)

	var renderPass vk.RenderPass
	err := vk.Error(vk.CreateRenderPass(d.VKDevice, &createInfo, nil, &renderPass))
	if err != nil {
		return nil, errors.Wrap(err, "create render pass")
	}
	return &RenderPass{Device: d, VKRenderPass: renderPass}, nil
}

// Framebuffer binds image views to the attachments of a render pass.
type Framebuffer struct {
	Device        *Device
	VKFramebuffer vk.Framebuffer
}

func (f *Framebuffer) Destroy() {
	vk.DestroyFramebuffer(f.Device.VKDevice, f.VKFramebuffer, nil)
}

func (r *RenderPass) CreateFramebuffer(attachments []*Image, extent vk.Extent2D) (*Framebuffer, error) {
	views := make([]vk.ImageView, len(attachments))
	for i, img := range attachments {
		if img.View == nil {
			return nil, errors.Errorf("framebuffer attachment %d has no view", i)
		}
		views[i] = img.View.VKImageView
	}

	fbCreateInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      r.VKRenderPass,
		Layers:          1,
		AttachmentCount: uint32(len(views)),
		PAttachments:    views,
		Width:           extent.Width,
		Height:          extent.Height,
	}

	var framebuffer vk.Framebuffer
	err := vk.Error(vk.CreateFramebuffer(r.Device.VKDevice, &fbCreateInfo, nil, &framebuffer))
	if err != nil {
		return nil, errors.Wrap(err, "create framebuffer")
	}
	return &Framebuffer{Device: r.Device, VKFramebuffer: framebuffer}, nil
}
