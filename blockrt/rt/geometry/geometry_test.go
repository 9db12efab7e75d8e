package geometry

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertOutwardWinding checks every triangle is counter-clockwise seen from
// outside, which is what back-face culling in the main pass expects.
func assertOutwardWinding(t *testing.T, m *Mesh) {
	t.Helper()
	for tri := 0; tri < m.TriangleCount(); tri++ {
		p0, _ := m.Vertex(tri * 3)
		p1, _ := m.Vertex(tri*3 + 1)
		p2, _ := m.Vertex(tri*3 + 2)
		face := p1.Sub(p0).Cross(p2.Sub(p0))
		centroid := p0.Add(p1).Add(p2).Mul(1.0 / 3)
		require.Greater(t, face.Dot(centroid), float32(0), "triangle %d winds inward", tri)
	}
}

func TestCube(t *testing.T) {
	m := Cube(0.5, true)
	require.Equal(t, 36, m.VertexCount())
	require.Len(t, m.Normals, 108)
	require.Len(t, m.UVs, 72)

	for i := 0; i < m.VertexCount(); i++ {
		p, n := m.Vertex(i)
		assert.InDelta(t, 1, n.Len(), 1e-6)
		for axis := 0; axis < 3; axis++ {
			assert.InDelta(t, 0.5, mgl32.Abs(p[axis]), 1e-6)
		}
		// The normal axis coordinate sits on the face.
		assert.InDelta(t, 0.5, p.Dot(n), 1e-6)
	}
	assertOutwardWinding(t, m)
}

func TestCubeWithoutUVs(t *testing.T) {
	m := Cube(1, false)
	assert.False(t, m.HasUVs())
	assert.Equal(t, 12, m.TriangleCount())
}

func TestIcosphere(t *testing.T) {
	for subdiv, tris := range []int{20, 80, 320} {
		m := Icosphere(subdiv, 2)
		require.Equal(t, tris, m.TriangleCount())
		for i := 0; i < m.VertexCount(); i++ {
			p, n := m.Vertex(i)
			assert.InDelta(t, 2, p.Len(), 1e-5)
			assert.InDelta(t, 1, n.Len(), 1e-5)
		}
		assertOutwardWinding(t, m)
	}
}

func TestUVSphereUnindexed(t *testing.T) {
	m := UVSphere(1, 8, 12)
	require.Equal(t, 9*13, m.VertexCount())
	require.Equal(t, 8*12*2, m.TriangleCount())

	flat := m.Unindexed()
	assert.Nil(t, flat.Indices)
	assert.Equal(t, 8*12*2*3, flat.VertexCount())
	assert.Equal(t, flat.VertexCount()*2, len(flat.UVs))
	assert.Same(t, flat, flat.Unindexed())
}
