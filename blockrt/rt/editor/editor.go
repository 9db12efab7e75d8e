// Package editor maps player input onto the camera and the block world.
package editor

import (
	"github.com/gekko3d/blockworld/blockrt/rt/camera"
	"github.com/gekko3d/blockworld/blockrt/rt/world"
	"github.com/go-gl/mathgl/mgl32"
)

type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
)

// reach is how far ahead of the eye edits land, in blocks.
const reach = 1.5

type Editor struct {
	PlaceBlock world.Block
}

func NewEditor(place world.Block) *Editor {
	return &Editor{PlaceBlock: place}
}

// Target is the world-space point edited by a click: the eye plus 1.5
// block steps along the view.
func Target(cam *camera.Camera, cubeSize float32) mgl32.Vec3 {
	return cam.Eye().Add(cam.Forward().Mul(reach * 2 * cubeSize))
}

// Grid is the block store a click edits. *world.World implements it.
type Grid interface {
	CubeSize() float32
	Counts() (total, visible int)
	ChangePoint(wx, wy, wz float32, t world.Block) error
}

// Click removes the targeted block on the left button and places
// PlaceBlock on the right. It reports whether the grid changed, which can
// be true alongside an error when the edit landed but the cache was dropped.
func (e *Editor) Click(w Grid, cam *camera.Camera, b Button) (bool, error) {
	t := world.Air
	switch b {
	case ButtonLeft:
	case ButtonRight:
		t = e.PlaceBlock
	default:
		return false, nil
	}
	before, _ := w.Counts()
	p := Target(cam, w.CubeSize())
	err := w.ChangePoint(p[0], p[1], p[2], t)
	after, _ := w.Counts()
	return before != after, err
}
