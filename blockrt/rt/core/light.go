package core

import "github.com/go-gl/mathgl/mgl32"

// Light is the single directional light. Its camera only supplies the
// shadow-map view; Illumination is the diffuse color, alpha unused.
type Light struct {
	Illumination mgl32.Vec4
	Eye          mgl32.Vec3
	At           mgl32.Vec3
}

// Direction points from the lit scene toward the light.
func (l Light) Direction() mgl32.Vec3 {
	d := l.Eye.Sub(l.At)
	if d.Len() == 0 {
		return mgl32.Vec3{0, 1, 0}
	}
	return d.Normalize()
}
