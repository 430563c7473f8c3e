package cgin

import "github.com/pkg/errors"

// PresentPass blits a rendered image into a swapchain image and leaves the swapchain
// image ready for presentation. One is needed per swapchain image.
type PresentPass struct {
	passBase
	source *Image
	target *Image
}

var (
	// PresentSourceAccess is how a PresentPass reads its source image.
	PresentSourceAccess = Access{Operation: PrepareForPresentation, Stage: StageTransfer}
	// PresentTargetAccess is how a PresentPass uses its swapchain image.
	PresentTargetAccess = Access{Operation: Present, Stage: StageTransfer}
)

func NewPresentPass(dev Device, name string, source, target *Image) (*PresentPass, error) {
	p := &PresentPass{source: source, target: target}
	uses := []ResourceUse{
		Use(source, PresentSourceAccess),
		Use(target, PresentTargetAccess),
	}
	if err := p.init(dev, name, uses); err != nil {
		return nil, err
	}
	return p, nil
}

// Target returns the swapchain image the pass presents to.
func (p *PresentPass) Target() *Image {
	return p.target
}

func (p *PresentPass) PrepareExecution(insertBarriers BarrierFunc) error {
	if p.state != passCreated {
		return errors.Wrap(ErrAlreadyPrepared, p.name)
	}
	if err := p.writeDescriptors(); err != nil {
		return err
	}
	if err := p.startRecording(p, insertBarriers); err != nil {
		return err
	}
	transferDst := Access{Operation: TransferDestination, Stage: StageTransfer}
	// The swapchain image is undefined after acquisition, whatever the last frame left.
	p.target.PrepareForInitialAccess(p.cmd, transferDst)
	p.cmd.BlitImage(
		p.source.Handle(), PresentSourceAccess.Layout(), p.source.Extent(),
		p.target.Handle(), transferDst.Layout(), p.target.Extent())
	p.target.InsertBarrier(p.cmd, transferDst, PresentTargetAccess)
	return p.finishRecording()
}

func (p *PresentPass) Destroy() {
	p.destroy()
}
