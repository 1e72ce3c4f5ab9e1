package core

import (
	"errors"
)

// Error taxonomy for the render loop. Transient errors mean "skip this frame
// and retry"; everything else that reaches the loop is fatal.
var (
	// ErrSwapchainBooting signals that the swapchain was resized or recreated
	// and the current frame must be skipped.
	ErrSwapchainBooting = errors.New("swapchain resized or recreated, booting")
	// ErrSurfaceOutdated signals that the presentation surface no longer
	// matches the window and must be reconfigured before the next frame.
	ErrSurfaceOutdated = errors.New("presentation surface outdated")
	// ErrDeviceLost signals an unrecoverable loss of the GPU device.
	ErrDeviceLost = errors.New("device lost")
	// ErrOutOfMemory signals a failed GPU allocation.
	ErrOutOfMemory = errors.New("out of device memory")
	ErrUnknown     = errors.New("unknown")
)

// IsTransient reports whether err is a skip-frame-and-retry condition
// rather than a reason to tear the render loop down.
func IsTransient(err error) bool {
	return errors.Is(err, ErrSwapchainBooting) || errors.Is(err, ErrSurfaceOutdated)
}
