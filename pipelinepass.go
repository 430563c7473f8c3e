package cgin

import "github.com/pkg/errors"

// pipelinePass is the shared part of passes driven by shaders.
type pipelinePass struct {
	passBase
	pipelineLayout PipelineLayout
	pipeline       Pipeline
}

func (p *pipelinePass) init(dev Device, name string, uses []ResourceUse) error {
	if err := p.passBase.init(dev, name, uses); err != nil {
		return err
	}
	layout, err := dev.CreatePipelineLayout(p.setLayout)
	if err != nil {
		return errors.Wrapf(err, "pass %s: create pipeline layout", name)
	}
	p.pipelineLayout = layout
	return nil
}

func (p *pipelinePass) destroy() {
	p.passBase.destroy()
	if p.pipeline != nil {
		p.pipeline.Destroy()
		p.pipeline = nil
	}
	if p.pipelineLayout != nil {
		p.pipelineLayout.Destroy()
		p.pipelineLayout = nil
	}
}
