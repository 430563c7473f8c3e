package cgin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestIsWrite(t *testing.T) {
	reads := []Operation{NoOperation, ColorSampler, DepthSampler, PrepareForPresentation,
		Present, TransferSource, VertexBuffer, IndexBuffer, UniformBuffer}
	writes := []Operation{ColorAttachmentOutput, TransferDestination, ShaderStorageBuffer,
		DepthBuffer, ShaderStorageImage, ClearOutsideRenderPass}

	for _, op := range reads {
		assert.False(t, Access{Operation: op}.IsWrite(), op.String())
	}
	for _, op := range writes {
		assert.True(t, Access{Operation: op}.IsWrite(), op.String())
	}
}

func TestStageMask(t *testing.T) {
	tests := []struct {
		access Access
		want   vk.PipelineStageFlagBits
	}{
		{InitialAccess, vk.PipelineStageTopOfPipeBit},
		{Access{ColorSampler, StageFragmentShader}, vk.PipelineStageFragmentShaderBit},
		{Access{ShaderStorageImage, StageComputeShader}, vk.PipelineStageComputeShaderBit},
		{Access{TransferSource, StageTransfer}, vk.PipelineStageTransferBit},
		{Access{NoOperation, StageFinal}, vk.PipelineStageBottomOfPipeBit},
		// attachment writes ignore the declared stage
		{Access{ColorAttachmentOutput, StageFragmentShader}, vk.PipelineStageColorAttachmentOutputBit},
		{Access{DepthBuffer, StageFragmentShader}, vk.PipelineStageLateFragmentTestsBit},
	}
	for _, tt := range tests {
		assert.Equal(t, vk.PipelineStageFlags(tt.want), tt.access.StageMask(), tt.access.String())
	}
}

func TestLayout(t *testing.T) {
	tests := []struct {
		op   Operation
		want vk.ImageLayout
	}{
		{NoOperation, vk.ImageLayoutUndefined},
		{ColorAttachmentOutput, vk.ImageLayoutColorAttachmentOptimal},
		{ColorSampler, vk.ImageLayoutShaderReadOnlyOptimal},
		{PrepareForPresentation, vk.ImageLayoutTransferSrcOptimal},
		{Present, vk.ImageLayoutPresentSrc},
		{ShaderStorageImage, vk.ImageLayoutGeneral},
		{ClearOutsideRenderPass, vk.ImageLayoutTransferDstOptimal},
		{DepthBuffer, vk.ImageLayoutDepthStencilAttachmentOptimal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Access{Operation: tt.op}.Layout(), tt.op.String())
	}
}

func TestAspectMask(t *testing.T) {
	assert.Equal(t, vk.ImageAspectFlags(vk.ImageAspectDepthBit), Access{Operation: DepthBuffer}.AspectMask())
	assert.Equal(t, vk.ImageAspectFlags(vk.ImageAspectDepthBit), Access{Operation: DepthSampler}.AspectMask())
	assert.Equal(t, vk.ImageAspectFlags(vk.ImageAspectColorBit), Access{Operation: ColorSampler}.AspectMask())
}

func TestLookupPanics(t *testing.T) {
	assert.Panics(t, func() { Access{Operation: VertexBuffer}.Layout() })
	assert.Panics(t, func() { Access{Operation: Present}.DescriptorType() })
	assert.Panics(t, func() { Access{Operation: Operation(99)}.AccessMask() })
	assert.Panics(t, func() { Access{Operation: NoOperation, Stage: Stage(42)}.StageMask() })
	assert.Panics(t, func() { Access{Stage: StageTransfer}.ShaderStage() })
	assert.Panics(t, func() { BufferUsage(PreferHost, []Operation{ColorSampler}) })
	assert.Panics(t, func() { ImageUsage([]Operation{UniformBuffer}) })
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "{ColorSampler FragmentShader}", Access{ColorSampler, StageFragmentShader}.String())
	assert.Equal(t, "Operation(99)", Operation(99).String())
	assert.Equal(t, "PreferDevice", PreferDevice.String())
}
