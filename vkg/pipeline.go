package vkg

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Pipeline is a compiled compute or graphics pipeline.
type Pipeline struct {
	Device     *Device
	VKPipeline vk.Pipeline
}

func (p *Pipeline) Destroy() {
	vk.DestroyPipeline(p.Device.VKDevice, p.VKPipeline, nil)
}

type PipelineCache struct {
	Device          *Device
	VKPipelineCache vk.PipelineCache
}

func (d *Device) CreatePipelineCache() (*PipelineCache, error) {
	pipelineCacheCreate := vk.PipelineCacheCreateInfo{
		SType: vk.StructureTypePipelineCacheCreateInfo,
	}

	var pipelineCache vk.PipelineCache
	err := vk.Error(vk.CreatePipelineCache(d.VKDevice, &pipelineCacheCreate, nil, &pipelineCache))
	if err != nil {
		return nil, errors.Wrap(err, "create pipeline cache")
	}
	return &PipelineCache{Device: d, VKPipelineCache: pipelineCache}, nil
}

func (p *PipelineCache) Destroy() {
	vk.DestroyPipelineCache(p.Device.VKDevice, p.VKPipelineCache, nil)
}

// CreateComputePipeline compiles shader's entryPoint against layout.
func (p *PipelineCache) CreateComputePipeline(layout *PipelineLayout, shader *ShaderModule, entryPoint string) (*Pipeline, error) {
	ci := []vk.ComputePipelineCreateInfo{{
		SType:  vk.StructureTypeComputePipelineCreateInfo,
		Stage:  shader.VKPipelineShaderStageCreateInfo(vk.ShaderStageComputeBit, entryPoint),
		Layout: layout.VKPipelineLayout,
	}}

	pipelines := make([]vk.Pipeline, 1)
	err := vk.Error(vk.CreateComputePipelines(p.Device.VKDevice, p.VKPipelineCache, 1, ci, nil, pipelines))
	if err != nil {
		return nil, errors.Wrapf(err, "create compute pipeline %q", shader.Description)
	}
	return &Pipeline{Device: p.Device, VKPipeline: pipelines[0]}, nil
}

// CreateGraphicsPipeline compiles the pipeline described by config.
func (p *PipelineCache) CreateGraphicsPipeline(config *GraphicsPipelineConfig) (*Pipeline, error) {
	ci := []vk.GraphicsPipelineCreateInfo{config.VKGraphicsPipelineCreateInfo()}

	pipelines := make([]vk.Pipeline, 1)
	err := vk.Error(vk.CreateGraphicsPipelines(p.Device.VKDevice, p.VKPipelineCache, 1, ci, nil, pipelines))
	if err != nil {
		return nil, errors.Wrap(err, "create graphics pipeline")
	}
	return &Pipeline{Device: p.Device, VKPipeline: pipelines[0]}, nil
}
