// Package geometry builds the mesh templates drawn by the instanced pipeline.
package geometry

import "github.com/go-gl/mathgl/mgl32"

// Mesh is a triangle list. Positions and Normals hold xyz triples, UVs holds
// uv pairs and may be nil. When Indices is set the triangles index into the
// vertex arrays; otherwise every three vertices form a triangle.
type Mesh struct {
	Positions []float32
	Normals   []float32
	UVs       []float32
	Indices   []uint32
}

func (m *Mesh) VertexCount() int { return len(m.Positions) / 3 }

func (m *Mesh) HasUVs() bool { return len(m.UVs) > 0 }

// TriangleCount counts triangles whether or not the mesh is indexed.
func (m *Mesh) TriangleCount() int {
	if m.Indices != nil {
		return len(m.Indices) / 3
	}
	return m.VertexCount() / 3
}

// Vertex returns the position and normal of vertex i.
func (m *Mesh) Vertex(i int) (pos, normal mgl32.Vec3) {
	pos = mgl32.Vec3{m.Positions[i*3], m.Positions[i*3+1], m.Positions[i*3+2]}
	normal = mgl32.Vec3{m.Normals[i*3], m.Normals[i*3+1], m.Normals[i*3+2]}
	return pos, normal
}

// Unindexed expands an indexed mesh into a plain triangle list. The pipeline
// issues non-indexed draws, so indexed generators go through here before upload.
func (m *Mesh) Unindexed() *Mesh {
	if m.Indices == nil {
		return m
	}
	out := &Mesh{
		Positions: make([]float32, 0, len(m.Indices)*3),
		Normals:   make([]float32, 0, len(m.Indices)*3),
	}
	if m.HasUVs() {
		out.UVs = make([]float32, 0, len(m.Indices)*2)
	}
	for _, idx := range m.Indices {
		i := int(idx)
		out.Positions = append(out.Positions, m.Positions[i*3:i*3+3]...)
		out.Normals = append(out.Normals, m.Normals[i*3:i*3+3]...)
		if m.HasUVs() {
			out.UVs = append(out.UVs, m.UVs[i*2:i*2+2]...)
		}
	}
	return out
}
