package cgin

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// Operation is the purpose of a single resource access. The order matters, every
// operation from ColorAttachmentOutput on is a write.
type Operation int

const (
	NoOperation Operation = iota
	ColorSampler
	DepthSampler
	PrepareForPresentation
	Present
	TransferSource
	VertexBuffer
	IndexBuffer
	UniformBuffer

	ColorAttachmentOutput
	TransferDestination
	ShaderStorageBuffer
	DepthBuffer
	ShaderStorageImage
	ClearOutsideRenderPass
)

var operationNames = map[Operation]string{
	NoOperation:            "NoOperation",
	ColorSampler:           "ColorSampler",
	DepthSampler:           "DepthSampler",
	PrepareForPresentation: "PrepareForPresentation",
	Present:                "Present",
	TransferSource:         "TransferSource",
	VertexBuffer:           "VertexBuffer",
	IndexBuffer:            "IndexBuffer",
	UniformBuffer:          "UniformBuffer",
	ColorAttachmentOutput:  "ColorAttachmentOutput",
	TransferDestination:    "TransferDestination",
	ShaderStorageBuffer:    "ShaderStorageBuffer",
	DepthBuffer:            "DepthBuffer",
	ShaderStorageImage:     "ShaderStorageImage",
	ClearOutsideRenderPass: "ClearOutsideRenderPass",
}

func (o Operation) String() string {
	if n, ok := operationNames[o]; ok {
		return n
	}
	return fmt.Sprintf("Operation(%d)", int(o))
}

// Stage is the pipeline phase an access happens in. StageInitial and StageFinal stand
// for "before anything" and "after everything".
type Stage int

const (
	StageInitial Stage = iota
	StageVertexShader
	StageFragmentShader
	StageComputeShader
	StageTransfer
	StageFinal
)

var stageNames = map[Stage]string{
	StageInitial:        "Initial",
	StageVertexShader:   "VertexShader",
	StageFragmentShader: "FragmentShader",
	StageComputeShader:  "ComputeShader",
	StageTransfer:       "Transfer",
	StageFinal:          "Final",
}

func (s Stage) String() string {
	if n, ok := stageNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Access classifies one way a resource is touched.
type Access struct {
	Operation Operation
	Stage     Stage
}

// InitialAccess is the state of a resource no pass has touched.
var InitialAccess = Access{Operation: NoOperation, Stage: StageInitial}

func (a Access) String() string {
	return fmt.Sprintf("{%s %s}", a.Operation, a.Stage)
}

// IsWrite reports whether the access writes the resource.
func (a Access) IsWrite() bool {
	return a.Operation >= ColorAttachmentOutput
}

// AccessMask is the memory access the operation performs.
func (a Access) AccessMask() vk.AccessFlags {
	return lookup(accessMasks, a.Operation, "access mask")
}

// StageMask is the pipeline stage the access waits on or signals. Attachment writes
// happen at fixed stages whatever stage was declared.
func (a Access) StageMask() vk.PipelineStageFlags {
	if s, ok := operationStageOverrides[a.Operation]; ok {
		return s
	}
	return lookup(pipelineStages, a.Stage, "pipeline stage")
}

// Layout is the image layout the operation requires.
func (a Access) Layout() vk.ImageLayout {
	return lookup(requiredLayouts, a.Operation, "image layout")
}

// DescriptorType is the descriptor type used when the access is bound to a shader.
func (a Access) DescriptorType() vk.DescriptorType {
	return lookup(descriptorTypes, a.Operation, "descriptor type")
}

// AspectMask is the image aspect the operation touches.
func (a Access) AspectMask() vk.ImageAspectFlags {
	if m, ok := aspectMasks[a.Operation]; ok {
		return m
	}
	return vk.ImageAspectFlags(vk.ImageAspectColorBit)
}

// ShaderStage is the shader stage a descriptor binding for this access is visible to.
func (a Access) ShaderStage() vk.ShaderStageFlags {
	return lookup(shaderStages, a.Stage, "shader stage")
}

// lookup panics on a miss, asking a table for an operation it does not describe is a
// programming error.
func lookup[K comparable, V any](table map[K]V, key K, what string) V {
	v, ok := table[key]
	if !ok {
		panic(fmt.Sprintf("cgin: no %s for %v", what, key))
	}
	return v
}

var accessMasks = map[Operation]vk.AccessFlags{
	NoOperation:            0,
	ColorSampler:           vk.AccessFlags(vk.AccessShaderReadBit),
	DepthSampler:           vk.AccessFlags(vk.AccessShaderReadBit),
	PrepareForPresentation: vk.AccessFlags(vk.AccessTransferReadBit),
	Present:                vk.AccessFlags(vk.AccessTransferWriteBit),
	TransferSource:         vk.AccessFlags(vk.AccessTransferReadBit),
	TransferDestination:    vk.AccessFlags(vk.AccessTransferWriteBit),
	VertexBuffer:           vk.AccessFlags(vk.AccessVertexAttributeReadBit),
	IndexBuffer:            vk.AccessFlags(vk.AccessIndexReadBit),
	UniformBuffer:          vk.AccessFlags(vk.AccessUniformReadBit),
	ColorAttachmentOutput:  vk.AccessFlags(vk.AccessColorAttachmentWriteBit | vk.AccessColorAttachmentReadBit),
	ShaderStorageBuffer:    vk.AccessFlags(vk.AccessShaderWriteBit | vk.AccessShaderReadBit),
	ShaderStorageImage:     vk.AccessFlags(vk.AccessShaderWriteBit | vk.AccessShaderReadBit),
	DepthBuffer:            vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit),
	ClearOutsideRenderPass: vk.AccessFlags(vk.AccessTransferWriteBit),
}

var pipelineStages = map[Stage]vk.PipelineStageFlags{
	StageInitial:        vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
	StageVertexShader:   vk.PipelineStageFlags(vk.PipelineStageVertexShaderBit),
	StageFragmentShader: vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
	StageComputeShader:  vk.PipelineStageFlags(vk.PipelineStageComputeShaderBit),
	StageTransfer:       vk.PipelineStageFlags(vk.PipelineStageTransferBit),
	StageFinal:          vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit),
}

var operationStageOverrides = map[Operation]vk.PipelineStageFlags{
	ColorAttachmentOutput: vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
	DepthBuffer:           vk.PipelineStageFlags(vk.PipelineStageLateFragmentTestsBit),
}

var requiredLayouts = map[Operation]vk.ImageLayout{
	NoOperation:            vk.ImageLayoutUndefined,
	ColorAttachmentOutput:  vk.ImageLayoutColorAttachmentOptimal,
	ColorSampler:           vk.ImageLayoutShaderReadOnlyOptimal,
	DepthSampler:           vk.ImageLayoutShaderReadOnlyOptimal,
	TransferDestination:    vk.ImageLayoutTransferDstOptimal,
	TransferSource:         vk.ImageLayoutTransferSrcOptimal,
	PrepareForPresentation: vk.ImageLayoutTransferSrcOptimal,
	Present:                vk.ImageLayoutPresentSrc,
	ShaderStorageImage:     vk.ImageLayoutGeneral,
	ClearOutsideRenderPass: vk.ImageLayoutTransferDstOptimal,
	DepthBuffer:            vk.ImageLayoutDepthStencilAttachmentOptimal,
}

var descriptorTypes = map[Operation]vk.DescriptorType{
	ColorSampler:        vk.DescriptorTypeCombinedImageSampler,
	DepthSampler:        vk.DescriptorTypeCombinedImageSampler,
	ShaderStorageImage:  vk.DescriptorTypeStorageImage,
	UniformBuffer:       vk.DescriptorTypeUniformBuffer,
	ShaderStorageBuffer: vk.DescriptorTypeStorageBuffer,
}

var aspectMasks = map[Operation]vk.ImageAspectFlags{
	DepthSampler: vk.ImageAspectFlags(vk.ImageAspectDepthBit),
	DepthBuffer:  vk.ImageAspectFlags(vk.ImageAspectDepthBit),
}

var shaderStages = map[Stage]vk.ShaderStageFlags{
	StageVertexShader:   vk.ShaderStageFlags(vk.ShaderStageVertexBit),
	StageFragmentShader: vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
	StageComputeShader:  vk.ShaderStageFlags(vk.ShaderStageComputeBit),
}
