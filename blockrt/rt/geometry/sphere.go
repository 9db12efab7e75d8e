package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// UVSphere returns an indexed latitude/longitude sphere.
func UVSphere(radius float32, latBands, longBands int) *Mesh {
	if latBands < 2 {
		latBands = 2
	}
	if longBands < 3 {
		longBands = 3
	}
	m := &Mesh{}
	for lat := 0; lat <= latBands; lat++ {
		theta := float64(lat) * math.Pi / float64(latBands)
		sinT, cosT := math.Sincos(theta)
		for lon := 0; lon <= longBands; lon++ {
			phi := float64(lon) * 2 * math.Pi / float64(longBands)
			sinP, cosP := math.Sincos(phi)
			x := float32(cosP * sinT)
			y := float32(cosT)
			z := float32(sinP * sinT)
			m.Positions = append(m.Positions, x*radius, y*radius, z*radius)
			m.Normals = append(m.Normals, x, y, z)
			m.UVs = append(m.UVs, float32(lon)/float32(longBands), float32(lat)/float32(latBands))
		}
	}
	stride := uint32(longBands + 1)
	for lat := 0; lat < latBands; lat++ {
		for lon := 0; lon < longBands; lon++ {
			first := uint32(lat)*stride + uint32(lon)
			second := first + stride
			m.Indices = append(m.Indices,
				first, first+1, second,
				second, first+1, second+1,
			)
		}
	}
	return m
}

// Icosphere subdivides an icosahedron and returns an unshared triangle list
// with smooth normals.
func Icosphere(subdivisions int, radius float32) *Mesh {
	t := float32((1 + math.Sqrt(5)) / 2)
	verts := []mgl32.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	for i := range verts {
		verts[i] = verts[i].Normalize()
	}
	faces := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}

	for s := 0; s < subdivisions; s++ {
		next := make([][3]int, 0, len(faces)*4)
		for _, f := range faces {
			a, b, c := f[0], f[1], f[2]
			ab := len(verts)
			verts = append(verts, verts[a].Add(verts[b]).Normalize())
			bc := len(verts)
			verts = append(verts, verts[b].Add(verts[c]).Normalize())
			ca := len(verts)
			verts = append(verts, verts[c].Add(verts[a]).Normalize())
			next = append(next,
				[3]int{a, ab, ca},
				[3]int{b, bc, ab},
				[3]int{c, ca, bc},
				[3]int{ab, bc, ca},
			)
		}
		faces = next
	}

	m := &Mesh{
		Positions: make([]float32, 0, len(faces)*9),
		Normals:   make([]float32, 0, len(faces)*9),
	}
	for _, f := range faces {
		for _, idx := range f {
			n := verts[idx]
			p := n.Mul(radius)
			m.Positions = append(m.Positions, p[0], p[1], p[2])
			m.Normals = append(m.Normals, n[0], n[1], n[2])
		}
	}
	return m
}
