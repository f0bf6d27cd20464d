package backend

import "errors"

var (
	// ErrContextLost reports that the device or presentation surface is gone. Fatal.
	ErrContextLost = errors.New("gpu context lost")

	// ErrUnsupportedCapability reports a feature the device cannot provide. Fatal.
	ErrUnsupportedCapability = errors.New("unsupported gpu capability")

	// ErrOutOfMemory reports a failed GPU allocation. Fatal.
	ErrOutOfMemory = errors.New("gpu out of memory")

	// ErrFramebufferIncomplete reports a render target whose attachments cannot be rendered to.
	// Recoverable: drawing into the target becomes a no-op.
	ErrFramebufferIncomplete = errors.New("framebuffer incomplete")
)

// IsFatal reports whether err must abort the current frame.
func IsFatal(err error) bool {
	return errors.Is(err, ErrContextLost) || errors.Is(err, ErrUnsupportedCapability) || errors.Is(err, ErrOutOfMemory)
}
