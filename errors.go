package cgin

import "github.com/pkg/errors"

var (
	ErrAlreadyInitialized = errors.New("resource already initialized")
	ErrNotInitialized     = errors.New("resource not initialized")
	ErrUnusedResource     = errors.New("resource has no declared uses")
	ErrDataTooLarge       = errors.New("data larger than buffer")
	ErrNotHostVisible     = errors.New("buffer is not host visible")

	ErrAlreadyPrepared          = errors.New("pass already prepared")
	ErrNotPrepared              = errors.New("pass not prepared")
	ErrFenceWait                = errors.New("waiting on fence failed")
	ErrNotAnImage               = errors.New("attachment is not an image")
	ErrNoAttachments            = errors.New("draw pass has no output attachments")
	ErrMultipleDepthAttachments = errors.New("draw pass has more than one depth attachment")

	// Returned only when the graph runs with GraphOptions.Debug.
	ErrUnregisteredDependency = errors.New("dependency on a pass that is not registered yet")
	ErrUnorderedWriters       = errors.New("resource written by passes with no ordering between them")
	ErrBarrierCallback        = errors.New("barrier callback not invoked exactly once while recording")
	ErrDuplicatePass          = errors.New("pass registered more than once")
)

// fenceWaitError reports a failed fence wait. It matches ErrFenceWait and unwraps to
// the device error.
type fenceWaitError struct {
	what string
	err  error
}

func (e *fenceWaitError) Error() string {
	return e.what + ": " + ErrFenceWait.Error() + ": " + e.err.Error()
}

func (e *fenceWaitError) Is(target error) bool { return target == ErrFenceWait }

func (e *fenceWaitError) Unwrap() error { return e.err }

func fenceWait(what string, err error) error {
	return errors.WithStack(&fenceWaitError{what: what, err: err})
}
