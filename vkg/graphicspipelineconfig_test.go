package vkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"

	cgin "github.com/Daniel-JSmith/cgin1"
)

func TestGraphicsPipelineConfigFromDesc(t *testing.T) {
	g := GraphicsPipelineConfigFromDesc(&cgin.GraphicsPipelineDesc{
		Extent:     vk.Extent2D{Width: 640, Height: 480},
		Topology:   vk.PrimitiveTopologyTriangleList,
		CullMode:   vk.CullModeBackBit,
		FrontFace:  vk.FrontFaceClockwise,
		DepthTest:  true,
		DepthWrite: true,
		Blend:      []bool{false, true},
	})

	require.Len(t, g.BlendAttachments, 2)
	assert.Equal(t, vk.Bool32(vk.False), g.BlendAttachments[0].BlendEnable)
	assert.Equal(t, vk.Bool32(vk.True), g.BlendAttachments[1].BlendEnable)
	assert.Equal(t, vk.BlendFactorOne, g.BlendAttachments[1].DstColorBlendFactor)
	assert.Empty(t, g.ShaderStages)

	ci := g.VKGraphicsPipelineCreateInfo()
	assert.Equal(t, uint32(2), ci.PColorBlendState.AttachmentCount)
	assert.Equal(t, vk.Bool32(vk.True), ci.PDepthStencilState.DepthTestEnable)
	assert.Equal(t, vk.CompareOpLess, ci.PDepthStencilState.DepthCompareOp)
	assert.Equal(t, vk.FrontFaceClockwise, ci.PRasterizationState.FrontFace)
	require.Len(t, ci.PViewportState.PViewports, 1)
	assert.Equal(t, float32(640), ci.PViewportState.PViewports[0].Width)
	assert.Equal(t, float32(480), ci.PViewportState.PViewports[0].Height)
}

func TestGraphicsPipelineConfigWithoutDepth(t *testing.T) {
	g := GraphicsPipelineConfigFromDesc(&cgin.GraphicsPipelineDesc{
		Topology: vk.PrimitiveTopologyTriangleList,
	})
	ci := g.VKGraphicsPipelineCreateInfo()

	assert.Equal(t, vk.Bool32(vk.False), ci.PDepthStencilState.DepthTestEnable)
	assert.Equal(t, vk.Bool32(vk.False), ci.PDepthStencilState.DepthWriteEnable)
	// a single opaque attachment is assumed when none is described
	assert.Equal(t, uint32(1), ci.PColorBlendState.AttachmentCount)
}
