package renderer

import (
	"github.com/spaghettifunk/volren/engine/core"
)

/**
 * @brief Keyboard camera controller: W/S (or up/down) dolly toward and away
 * from the center, A/D (or left/right) orbit around it. The eye keeps its
 * distance to the center while orbiting.
 */
type CameraController struct {
	Speed float32
}

func NewCameraController(speed float32) *CameraController {
	return &CameraController{Speed: speed}
}

func (cc *CameraController) Update(camera *Camera, deltaTime float64) {
	step := cc.Speed * float32(deltaTime)

	forward := camera.Center.Sub(camera.Eye)
	forwardNorm := forward.Normalized()
	forwardMag := forward.Length()

	// don't glitch through the center
	if (core.InputIsKeyDown(core.KEY_W) || core.InputIsKeyDown(core.KEY_UP)) && forwardMag > step {
		camera.Eye = camera.Eye.Add(forwardNorm.MulScalar(step))
	}
	if core.InputIsKeyDown(core.KEY_S) || core.InputIsKeyDown(core.KEY_DOWN) {
		camera.Eye = camera.Eye.Sub(forwardNorm.MulScalar(step))
	}

	right := forwardNorm.Cross(camera.Up)

	// recompute in case the dolly moved the eye
	forward = camera.Center.Sub(camera.Eye)
	forwardMag = forward.Length()

	if core.InputIsKeyDown(core.KEY_D) || core.InputIsKeyDown(core.KEY_RIGHT) {
		offset := forward.Add(right.MulScalar(step)).Normalized().MulScalar(forwardMag)
		camera.Eye = camera.Center.Sub(offset)
	}
	if core.InputIsKeyDown(core.KEY_A) || core.InputIsKeyDown(core.KEY_LEFT) {
		offset := forward.Sub(right.MulScalar(step)).Normalized().MulScalar(forwardMag)
		camera.Eye = camera.Center.Sub(offset)
	}

	vertical := float32(0)
	if core.InputIsKeyDown(core.KEY_SPACE) {
		vertical += step
	}
	if core.InputIsKeyDown(core.KEY_SHIFT) {
		vertical -= step
	}
	if vertical != 0 {
		camera.Eye.Z += vertical
	}
}
