package editor

import (
	"math"

	"github.com/gekko3d/blockworld/blockrt/rt/camera"
	"github.com/gekko3d/blockworld/blockrt/rt/core"
)

type Action int

const (
	MoveForward Action = iota
	MoveBack
	MoveLeft
	MoveRight
	MoveUp
	MoveDown
	TurnLeft
	TurnRight
	actionCount
)

// pitchEpsilon absorbs float drift when the view sits on the pitch limit.
const pitchEpsilon = 1e-3

// Controls turns held actions and pointer motion into camera moves.
type Controls struct {
	cam *camera.Camera

	MoveSpeed   float32
	PanSpeed    float32
	Sensitivity float32
	MaxPitch    float32

	held [actionCount]bool
}

func NewControls(cam *camera.Camera, cfg core.CameraConfig) *Controls {
	return &Controls{
		cam:         cam,
		MoveSpeed:   cfg.MoveSpeed,
		PanSpeed:    cfg.PanSpeed,
		Sensitivity: cfg.MouseSensitivity,
		MaxPitch:    cfg.MaxPitch,
	}
}

func (c *Controls) Camera() *camera.Camera { return c.cam }

func (c *Controls) Press(a Action) {
	if a >= 0 && a < actionCount {
		c.held[a] = true
	}
}

func (c *Controls) Release(a Action) {
	if a >= 0 && a < actionCount {
		c.held[a] = false
	}
}

func (c *Controls) Held(a Action) bool { return a >= 0 && a < actionCount && c.held[a] }

func (c *Controls) axis(pos, neg Action) float32 {
	var v float32
	if c.held[pos] {
		v++
	}
	if c.held[neg] {
		v--
	}
	return v
}

// Update applies one frame of held actions and reports what changed.
func (c *Controls) Update() (moved, turned bool) {
	forward := c.axis(MoveForward, MoveBack)
	left := c.axis(MoveLeft, MoveRight)
	up := c.axis(MoveUp, MoveDown)
	if forward != 0 || left != 0 || up != 0 {
		c.cam.Move(forward*c.MoveSpeed, left*c.MoveSpeed, up*c.MoveSpeed)
		moved = true
	}
	if yaw := c.axis(TurnLeft, TurnRight); yaw != 0 {
		c.cam.PanLeft(yaw * c.PanSpeed)
		turned = true
	}
	return moved, turned
}

// Pitch is the view elevation in degrees.
func (c *Controls) Pitch() float32 {
	f := c.cam.Forward()
	return float32(math.Asin(float64(max(-1, min(1, f[1]))))) * 180 / math.Pi
}

// Look pans by pointer motion in pixels. Positive dy moves the pointer down
// and tilts the view down; the elevation stays within MaxPitch.
func (c *Controls) Look(dx, dy float64) bool {
	yaw := float32(dx) * c.Sensitivity
	pitch := c.Pitch()
	delta := max(-c.MaxPitch, min(c.MaxPitch, pitch-float32(dy)*c.Sensitivity)) - pitch
	if delta > -pitchEpsilon && delta < pitchEpsilon {
		delta = 0
	}
	if yaw == 0 && delta == 0 {
		return false
	}
	if yaw != 0 {
		c.cam.PanRight(yaw)
	}
	if delta != 0 {
		c.cam.PanUp(delta)
	}
	return true
}
