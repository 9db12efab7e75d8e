package geometry

var cubeCorners = [8][3]float32{
	{0, 0, 0},
	{0, 0, 1},
	{0, 1, 0},
	{0, 1, 1},
	{1, 0, 0},
	{1, 0, 1},
	{1, 1, 0},
	{1, 1, 1},
}

// Two counter-clockwise triangles per face: +Y, -Y, -Z, +Z, -X, +X.
var cubeFaces = [36]int{
	2, 7, 6, 2, 3, 7,
	0, 4, 5, 0, 5, 1,
	0, 2, 6, 0, 6, 4,
	1, 7, 3, 1, 5, 7,
	0, 3, 2, 0, 1, 3,
	4, 6, 7, 4, 7, 5,
}

var cubeFaceNormals = [6][3]float32{
	{0, 1, 0},
	{0, -1, 0},
	{0, 0, -1},
	{0, 0, 1},
	{-1, 0, 0},
	{1, 0, 0},
}

// Face UVs alternate between two layouts so textures read upright on every side.
var cubeUVs = [2][12]float32{
	{0, 0, 1, 1, 1, 0, 0, 0, 0, 1, 1, 1},
	{0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 1},
}

// Cube returns a 36 vertex cube centered on the origin spanning [-size, size]
// on each axis, so neighboring blocks sit 2*size apart.
func Cube(size float32, withUVs bool) *Mesh {
	m := &Mesh{
		Positions: make([]float32, 0, len(cubeFaces)*3),
		Normals:   make([]float32, 0, len(cubeFaces)*3),
	}
	for i, c := range cubeFaces {
		v := cubeCorners[c]
		m.Positions = append(m.Positions,
			(v[0]-0.5)*2*size,
			(v[1]-0.5)*2*size,
			(v[2]-0.5)*2*size,
		)
		n := cubeFaceNormals[i/6]
		m.Normals = append(m.Normals, n[0], n[1], n[2])
	}
	if withUVs {
		m.UVs = make([]float32, 0, len(cubeFaces)*2)
		for face := 0; face < 6; face++ {
			m.UVs = append(m.UVs, cubeUVs[face%2][:]...)
		}
	}
	return m
}
