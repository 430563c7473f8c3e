package vkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"

	cgin "github.com/Daniel-JSmith/cgin1"
)

func TestRenderPassCreateInfo(t *testing.T) {
	desc := &cgin.RenderPassDesc{
		Attachments: []vk.AttachmentDescription{
			{Format: vk.FormatR8g8b8a8Unorm},
			{Format: vk.FormatD32Sfloat},
		},
		Color: []vk.AttachmentReference{{Attachment: 0, Layout: vk.ImageLayoutColorAttachmentOptimal}},
		Depth: &vk.AttachmentReference{Attachment: 1, Layout: vk.ImageLayoutDepthStencilAttachmentOptimal},
	}

	ci := VKRenderPassCreateInfo(desc)
	assert.Equal(t, uint32(2), ci.AttachmentCount)
	require.Len(t, ci.PSubpasses, 1)

	sub := ci.PSubpasses[0]
	assert.Equal(t, vk.PipelineBindPointGraphics, sub.PipelineBindPoint)
	assert.Equal(t, uint32(1), sub.ColorAttachmentCount)
	require.NotNil(t, sub.PDepthStencilAttachment)
	assert.Equal(t, uint32(1), sub.PDepthStencilAttachment.Attachment)
}

func TestRenderPassCreateInfoColorOnly(t *testing.T) {
	ci := VKRenderPassCreateInfo(&cgin.RenderPassDesc{
		Attachments: []vk.AttachmentDescription{{}, {}},
		Color: []vk.AttachmentReference{
			{Attachment: 0, Layout: vk.ImageLayoutColorAttachmentOptimal},
			{Attachment: 1, Layout: vk.ImageLayoutColorAttachmentOptimal},
		},
	})
	assert.Equal(t, uint32(2), ci.PSubpasses[0].ColorAttachmentCount)
	assert.Nil(t, ci.PSubpasses[0].PDepthStencilAttachment)
}
