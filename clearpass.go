package cgin

import "github.com/pkg/errors"

// ClearPass clears an image to zero outside of any render pass, giving it defined
// contents before other passes read it.
type ClearPass struct {
	passBase
	image *Image
}

// ClearAccess is how a ClearPass uses its image.
var ClearAccess = Access{Operation: ClearOutsideRenderPass, Stage: StageTransfer}

func NewClearPass(dev Device, name string, image *Image) (*ClearPass, error) {
	p := &ClearPass{image: image}
	if err := p.init(dev, name, []ResourceUse{Use(image, ClearAccess)}); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *ClearPass) PrepareExecution(insertBarriers BarrierFunc) error {
	if p.state != passCreated {
		return errors.Wrap(ErrAlreadyPrepared, p.name)
	}
	if err := p.writeDescriptors(); err != nil {
		return err
	}
	if err := p.startRecording(p, insertBarriers); err != nil {
		return err
	}
	p.cmd.ClearColorImage(p.image.Handle(), ClearAccess.Layout())
	return p.finishRecording()
}

func (p *ClearPass) Destroy() {
	p.destroy()
}
