package cgin

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// DrawPass rasterizes a geometry into its color and depth outputs. The geometry buffers
// are uploaded before registration and are not tracked as uses.
type DrawPass struct {
	pipelinePass
	geometry       *Geometry
	vertexShader   ShaderModule
	fragmentShader ShaderModule

	outputs     []ResourceUse
	renderPass  RenderPass
	framebuffer Framebuffer
	extent      vk.Extent2D
}

func NewDrawPass(dev Device, name string, geometry *Geometry, vertexShader, fragmentShader ShaderModule, uses []ResourceUse) (*DrawPass, error) {
	p := &DrawPass{
		geometry:       geometry,
		vertexShader:   vertexShader,
		fragmentShader: fragmentShader,
	}
	if err := p.init(dev, name, uses); err != nil {
		return nil, err
	}
	for _, u := range p.uses {
		if u.Access.Operation == ColorAttachmentOutput || u.Access.Operation == DepthBuffer {
			p.outputs = append(p.outputs, u)
		}
	}
	return p, nil
}

// renderPassDesc lays out the outputs as attachments, one slot per output in
// declaration order.
func (p *DrawPass) renderPassDesc() (*RenderPassDesc, []DeviceImage, []bool, error) {
	if len(p.outputs) == 0 {
		return nil, nil, nil, errors.Wrap(ErrNoAttachments, p.name)
	}
	desc := &RenderPassDesc{}
	var images []DeviceImage
	var blend []bool
	for slot, out := range p.outputs {
		img, ok := out.Resource.(*Image)
		if !ok {
			return nil, nil, nil, errors.Wrapf(ErrNotAnImage, "pass %s: output %d", p.name, slot)
		}
		if slot == 0 {
			p.extent = img.Extent()
		}
		desc.Attachments = append(desc.Attachments, img.AttachmentDescription(out.Access, out.Blend))
		images = append(images, img.Handle())
		ref := vk.AttachmentReference{
			Attachment: uint32(slot),
			Layout:     out.Access.Layout(),
		}
		if out.Access.Operation == DepthBuffer {
			if desc.Depth != nil {
				return nil, nil, nil, errors.Wrap(ErrMultipleDepthAttachments, p.name)
			}
			desc.Depth = &ref
			continue
		}
		desc.Color = append(desc.Color, ref)
		blend = append(blend, out.Blend)
	}
	return desc, images, blend, nil
}

func (p *DrawPass) createPipeline() error {
	desc, images, blend, err := p.renderPassDesc()
	if err != nil {
		return err
	}
	p.renderPass, err = p.dev.CreateRenderPass(desc)
	if err != nil {
		return errors.Wrapf(err, "pass %s: create render pass", p.name)
	}
	p.framebuffer, err = p.dev.CreateFramebuffer(p.renderPass, images, p.extent)
	if err != nil {
		return errors.Wrapf(err, "pass %s: create framebuffer", p.name)
	}

	depth := desc.Depth != nil
	p.pipeline, err = p.dev.CreateGraphicsPipeline(&GraphicsPipelineDesc{
		Layout:         p.pipelineLayout,
		RenderPass:     p.renderPass,
		Extent:         p.extent,
		VertexShader:   p.vertexShader,
		FragmentShader: p.fragmentShader,
		EntryPoint:     "main",
		Bindings:       []vk.VertexInputBindingDescription{p.geometry.Binding},
		Attributes:     p.geometry.Attributes,
		Topology:       vk.PrimitiveTopologyTriangleList,
		CullMode:       vk.CullModeBackBit,
		FrontFace:      p.geometry.FrontFace,
		DepthTest:      depth,
		DepthWrite:     depth,
		Blend:          blend,
	})
	if err != nil {
		return errors.Wrapf(err, "pass %s: create graphics pipeline", p.name)
	}
	return nil
}

func (p *DrawPass) clearValues() []ClearValue {
	clears := make([]ClearValue, len(p.outputs))
	for i, out := range p.outputs {
		if out.Access.Operation == DepthBuffer {
			clears[i] = ClearValue{Depth: 1, IsDepth: true}
		}
	}
	return clears
}

func (p *DrawPass) PrepareExecution(insertBarriers BarrierFunc) error {
	if p.state != passCreated {
		return errors.Wrap(ErrAlreadyPrepared, p.name)
	}
	if err := p.createPipeline(); err != nil {
		return err
	}
	if err := p.writeDescriptors(); err != nil {
		return err
	}
	if err := p.startRecording(p, insertBarriers); err != nil {
		return err
	}
	cmd := p.cmd
	cmd.BeginRenderPass(p.renderPass, p.framebuffer, p.extent, p.clearValues())
	cmd.BindPipeline(vk.PipelineBindPointGraphics, p.pipeline)
	cmd.BindVertexBuffer(p.geometry.Vertices.Handle())
	cmd.BindDescriptorSet(vk.PipelineBindPointGraphics, p.pipelineLayout, p.descriptorSet)
	cmd.BindIndexBuffer(p.geometry.Indices.Handle(), p.geometry.IndexType)
	cmd.DrawIndexed(p.geometry.IndexCount)
	cmd.EndRenderPass()
	return p.finishRecording()
}

func (p *DrawPass) Destroy() {
	p.destroy()
	if p.framebuffer != nil {
		p.framebuffer.Destroy()
		p.framebuffer = nil
	}
	if p.renderPass != nil {
		p.renderPass.Destroy()
		p.renderPass = nil
	}
}
