package cgin

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// ComputeTileSize is the workgroup size, in X and Y, compute shaders are expected to declare.
const ComputeTileSize = 16

// ComputePass runs a compute shader over the device's render resolution.
type ComputePass struct {
	pipelinePass
	shader ShaderModule
}

func NewComputePass(dev Device, name string, shader ShaderModule, uses []ResourceUse) (*ComputePass, error) {
	p := &ComputePass{shader: shader}
	if err := p.init(dev, name, uses); err != nil {
		return nil, err
	}
	return p, nil
}

// GroupCount is the dispatch size covering resolution with ComputeTileSize tiles. It
// always adds one tile, so shaders must bounds check.
func GroupCount(resolution vk.Extent2D) (x, y, z int) {
	return int(resolution.Width)/ComputeTileSize + 1, int(resolution.Height)/ComputeTileSize + 1, 1
}

func (p *ComputePass) PrepareExecution(insertBarriers BarrierFunc) error {
	if p.state != passCreated {
		return errors.Wrap(ErrAlreadyPrepared, p.name)
	}
	pipeline, err := p.dev.CreateComputePipeline(p.pipelineLayout, p.shader, "main")
	if err != nil {
		return errors.Wrapf(err, "pass %s: create compute pipeline", p.name)
	}
	p.pipeline = pipeline

	if err := p.writeDescriptors(); err != nil {
		return err
	}
	if err := p.startRecording(p, insertBarriers); err != nil {
		return err
	}
	p.cmd.BindPipeline(vk.PipelineBindPointCompute, p.pipeline)
	p.cmd.BindDescriptorSet(vk.PipelineBindPointCompute, p.pipelineLayout, p.descriptorSet)
	p.cmd.Dispatch(GroupCount(p.dev.RenderResolution()))
	return p.finishRecording()
}

func (p *ComputePass) Destroy() {
	p.destroy()
}
