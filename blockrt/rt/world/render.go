package world

import (
	"math"

	"github.com/gekko3d/blockworld/blockrt/rt/camera"
	"github.com/gekko3d/blockworld/blockrt/rt/gpu"
)

// Render draws every cached block in one instanced call.
func (w *World) Render(ctx *gpu.RenderContext, depthOnly bool) error {
	return w.pipeline.Draw(ctx, w, depthOnly)
}

// Cull counts the cached blocks whose bounding sphere meets the frustum.
// The uploaded instances are not changed.
func (w *World) Cull(f *camera.Frustum) int {
	radius := w.cubeSize * float32(math.Sqrt(3))
	n := 0
	for _, inst := range w.cache {
		if f.ContainsSphere(w.GridToPoint(int(inst.X), int(inst.Y), int(inst.Z)), radius) {
			n++
		}
	}
	return n
}

// Uploaded reports the instance uploads made for this world so far.
func (w *World) Uploaded() (count int, bytes uint64) { return w.pipeline.Uploaded() }

func (w *World) Release() {
	w.pipeline.Release()
	w.log.Debugf("world %s: released GPU buffers", w.ID)
}
