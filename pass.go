package cgin

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// NoBinding marks a resource use that is not bound to a shader descriptor.
const NoBinding = -1

// ResourceUse is one resource a pass touches and how it touches it.
type ResourceUse struct {
	Resource Resource
	Access   Access
	// Binding is the descriptor binding index, NoBinding if the use is not shader visible.
	Binding int
	// Blend loads and blends into a color attachment instead of clearing it.
	Blend bool
}

// Use declares an access that is not bound to a descriptor.
func Use(r Resource, access Access) ResourceUse {
	return ResourceUse{Resource: r, Access: access, Binding: NoBinding}
}

// Bind declares an access bound to a descriptor at binding.
func Bind(r Resource, access Access, binding int) ResourceUse {
	return ResourceUse{Resource: r, Access: access, Binding: binding}
}

// WithBlend returns a copy of the use with blending enabled.
func (u ResourceUse) WithBlend() ResourceUse {
	u.Blend = true
	return u
}

// BarrierFunc inserts the barriers a pass needs before it touches its resources.
// Graph.InsertBarriers is the implementation used in practice.
type BarrierFunc func(cmd CommandBuffer, pass Pass)

// Pass is a unit of GPU work over a fixed set of resources, recorded once and replayed
// every frame. ClearPass, DrawPass, ComputePass and PresentPass are the only implementations.
type Pass interface {
	Name() string
	// Uses returns the resources the pass declared at construction.
	Uses() []ResourceUse
	// PrepareExecution records the pass, calling insertBarriers exactly once before any
	// command touching a resource.
	PrepareExecution(insertBarriers BarrierFunc) error
	Prepared() bool
	// Execute waits for the previous submission of the pass to retire, then submits it again.
	Execute() error
	Destroy()

	base() *passBase
}

type passState int

const (
	passCreated passState = iota
	passPrepared
)

type passBase struct {
	dev   Device
	name  string
	uses  []ResourceUse
	state passState

	fence         Fence
	cmd           CommandBuffer
	setLayout     DescriptorSetLayout
	descriptorSet DescriptorSet
}

// init creates the idle fence, registers it with every used resource, builds the
// descriptor set layout and allocates the command buffer.
func (p *passBase) init(dev Device, name string, uses []ResourceUse) error {
	p.dev = dev
	p.name = name
	p.uses = append([]ResourceUse(nil), uses...)

	fence, err := dev.CreateFence(true)
	if err != nil {
		return errors.Wrapf(err, "pass %s: create fence", name)
	}
	p.fence = fence

	for _, u := range p.uses {
		u.Resource.RegisterUse(p.fence, u.Access)
	}

	var bindings []vk.DescriptorSetLayoutBinding
	for _, u := range p.uses {
		if u.Binding >= 0 {
			bindings = append(bindings, u.Resource.LayoutBinding(u.Binding, u.Access))
		}
	}
	p.setLayout, err = dev.CreateDescriptorSetLayout(bindings)
	if err != nil {
		return errors.Wrapf(err, "pass %s: create descriptor set layout", name)
	}

	p.cmd, err = dev.AllocateCommandBuffer()
	if err != nil {
		return errors.Wrapf(err, "pass %s: allocate command buffer", name)
	}
	return nil
}

func (p *passBase) base() *passBase {
	return p
}

func (p *passBase) Name() string {
	return p.name
}

func (p *passBase) Uses() []ResourceUse {
	return p.uses
}

func (p *passBase) Prepared() bool {
	return p.state == passPrepared
}

// Fence is the pass's idle fence, signaled whenever no submission of the pass is in flight.
func (p *passBase) Fence() Fence {
	return p.fence
}

// writeDescriptors allocates the descriptor set and points every bound use at its resource.
func (p *passBase) writeDescriptors() error {
	set, err := p.dev.AllocateDescriptorSet(p.setLayout)
	if err != nil {
		return errors.Wrapf(err, "pass %s: allocate descriptor set", p.name)
	}
	p.descriptorSet = set

	var writes []DescriptorWrite
	for _, u := range p.uses {
		if u.Binding >= 0 {
			writes = append(writes, u.Resource.DescriptorWrite(u.Binding, u.Access))
		}
	}
	if len(writes) > 0 {
		p.dev.UpdateDescriptorSet(set, writes)
	}
	return nil
}

// startRecording begins the command buffer and inserts the barriers for self, which is
// the concrete pass embedding p.
func (p *passBase) startRecording(self Pass, insertBarriers BarrierFunc) error {
	if p.state != passCreated {
		return errors.Wrap(ErrAlreadyPrepared, p.name)
	}
	if err := p.cmd.Begin(); err != nil {
		return errors.Wrapf(err, "pass %s: begin command buffer", p.name)
	}
	insertBarriers(p.cmd, self)
	return nil
}

func (p *passBase) finishRecording() error {
	if err := p.cmd.End(); err != nil {
		return errors.Wrapf(err, "pass %s: end command buffer", p.name)
	}
	p.state = passPrepared
	Logger().Debug("pass recorded", "pass", p.name, "resources", len(p.uses))
	return nil
}

func (p *passBase) Execute() error {
	if p.state != passPrepared {
		return errors.Wrap(ErrNotPrepared, p.name)
	}
	if err := p.dev.WaitForFences(WaitForever, p.fence); err != nil {
		return fenceWait("pass "+p.name, err)
	}
	if err := p.dev.ResetFences(p.fence); err != nil {
		return errors.Wrapf(err, "pass %s: reset fence", p.name)
	}
	if err := p.dev.Submit(p.cmd, p.fence); err != nil {
		return errors.Wrapf(err, "pass %s: submit", p.name)
	}
	return nil
}

// destroy waits for the pass to go idle and releases what the base owns.
func (p *passBase) destroy() {
	if p.fence != nil {
		if err := p.dev.WaitForFences(WaitForever, p.fence); err != nil {
			Logger().Warn("destroying pass that did not go idle", "pass", p.name, "err", err)
		}
	}
	if p.cmd != nil {
		p.cmd.Destroy()
		p.cmd = nil
	}
	if p.setLayout != nil {
		p.setLayout.Destroy()
		p.setLayout = nil
	}
	if p.fence != nil {
		p.fence.Destroy()
		p.fence = nil
	}
}
