package camera

import "github.com/go-gl/mathgl/mgl32"

// Corner triples for Top, Right, Left, Bottom, Near, Far. Each winds so that
// the plane normal points out of the frustum.
var planeCorners = [6][3]int{
	{0, 4, 1},
	{2, 4, 0},
	{1, 5, 3},
	{3, 6, 2},
	{5, 4, 7},
	{1, 3, 0},
}

// Frustum is eight world-space corners and six planes (nx, ny, nz, d) with
// outward normals. A point is inside when its signed distance to every plane
// is at most zero.
type Frustum struct {
	Points [8]mgl32.Vec3
	Planes [6]mgl32.Vec4
}

// NewFrustum unprojects the clip-space corners of viewProj. Corner i sits at
// x = -1 when bit 0 is set, y = -1 when bit 1 is set and on the near plane
// (depth 0) when bit 2 is set; the cleared bits give +1, +1 and depth 1.
func NewFrustum(viewProj mgl32.Mat4) *Frustum {
	inv := viewProj.Inv()
	f := &Frustum{}
	for i := 0; i < 8; i++ {
		ndc := mgl32.Vec4{1, 1, 1, 1}
		if i&1 != 0 {
			ndc[0] = -1
		}
		if i&2 != 0 {
			ndc[1] = -1
		}
		if i&4 != 0 {
			ndc[2] = 0
		}
		p := inv.Mul4x1(ndc)
		f.Points[i] = p.Vec3().Mul(1 / p[3])
	}
	for i, tri := range planeCorners {
		f.Planes[i] = planeFromPoints(f.Points[tri[0]], f.Points[tri[1]], f.Points[tri[2]])
	}
	return f
}

func planeFromPoints(p1, p2, p3 mgl32.Vec3) mgl32.Vec4 {
	n := p1.Sub(p2).Cross(p3.Sub(p2)).Normalize()
	return n.Vec4(-p1.Dot(n))
}

func distance(plane mgl32.Vec4, p mgl32.Vec3) float32 {
	return plane.Vec3().Dot(p) + plane[3]
}

func (f *Frustum) ContainsPoint(p mgl32.Vec3) bool {
	for _, pl := range f.Planes {
		if distance(pl, p) > 0 {
			return false
		}
	}
	return true
}

// ContainsSphere reports whether the sphere touches the frustum. It may
// accept spheres near a corner that are just outside.
func (f *Frustum) ContainsSphere(center mgl32.Vec3, radius float32) bool {
	for _, pl := range f.Planes {
		if distance(pl, center) > radius {
			return false
		}
	}
	return true
}

// IntersectsAABB rejects a box only when it lies entirely outside one plane.
func (f *Frustum) IntersectsAABB(min, max mgl32.Vec3) bool {
	for _, pl := range f.Planes {
		// Corner furthest inside the plane.
		var p mgl32.Vec3
		for axis := 0; axis < 3; axis++ {
			if pl[axis] > 0 {
				p[axis] = min[axis]
			} else {
				p[axis] = max[axis]
			}
		}
		if distance(pl, p) > 0 {
			return false
		}
	}
	return true
}

func (f *Frustum) AABB() [2]mgl32.Vec3 {
	lo, hi := f.Points[0], f.Points[0]
	for _, p := range f.Points[1:] {
		for axis := 0; axis < 3; axis++ {
			lo[axis] = min(lo[axis], p[axis])
			hi[axis] = max(hi[axis], p[axis])
		}
	}
	return [2]mgl32.Vec3{lo, hi}
}
