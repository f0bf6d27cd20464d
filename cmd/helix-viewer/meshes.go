package main

// Vertex layout of the viewer meshes: position, normal, uv.
const vertexStride = 8

// unitBoxVertices is a unit cube centred on the origin, four vertices per face so each face
// keeps its own normal. Faces: +X, -X, +Y, -Y, +Z, -Z.
var unitBoxVertices = []float32{
	0.5, -0.5, -0.5, 1, 0, 0, 0, 1,
	0.5, 0.5, -0.5, 1, 0, 0, 0, 0,
	0.5, 0.5, 0.5, 1, 0, 0, 1, 0,
	0.5, -0.5, 0.5, 1, 0, 0, 1, 1,

	-0.5, -0.5, 0.5, -1, 0, 0, 0, 1,
	-0.5, 0.5, 0.5, -1, 0, 0, 0, 0,
	-0.5, 0.5, -0.5, -1, 0, 0, 1, 0,
	-0.5, -0.5, -0.5, -1, 0, 0, 1, 1,

	-0.5, 0.5, -0.5, 0, 1, 0, 0, 1,
	-0.5, 0.5, 0.5, 0, 1, 0, 0, 0,
	0.5, 0.5, 0.5, 0, 1, 0, 1, 0,
	0.5, 0.5, -0.5, 0, 1, 0, 1, 1,

	-0.5, -0.5, 0.5, 0, -1, 0, 0, 1,
	-0.5, -0.5, -0.5, 0, -1, 0, 0, 0,
	0.5, -0.5, -0.5, 0, -1, 0, 1, 0,
	0.5, -0.5, 0.5, 0, -1, 0, 1, 1,

	-0.5, -0.5, 0.5, 0, 0, 1, 0, 1,
	0.5, -0.5, 0.5, 0, 0, 1, 0, 0,
	0.5, 0.5, 0.5, 0, 0, 1, 1, 0,
	-0.5, 0.5, 0.5, 0, 0, 1, 1, 1,

	0.5, -0.5, -0.5, 0, 0, -1, 0, 1,
	-0.5, -0.5, -0.5, 0, 0, -1, 0, 0,
	-0.5, 0.5, -0.5, 0, 0, -1, 1, 0,
	0.5, 0.5, -0.5, 0, 0, -1, 1, 1,
}

var unitBoxIndices = []uint32{
	0, 1, 2, 0, 2, 3,
	4, 5, 6, 4, 6, 7,
	8, 9, 10, 8, 10, 11,
	12, 13, 14, 12, 14, 15,
	16, 17, 18, 16, 18, 19,
	20, 21, 22, 20, 22, 23,
}

// unitQuadVertices is a unit square in the XZ plane facing +Y.
var unitQuadVertices = []float32{
	-0.5, 0, -0.5, 0, 1, 0, 0, 1,
	-0.5, 0, 0.5, 0, 1, 0, 0, 0,
	0.5, 0, 0.5, 0, 1, 0, 1, 0,
	0.5, 0, -0.5, 0, 1, 0, 1, 1,
}

var unitQuadIndices = []uint32{0, 1, 2, 0, 2, 3}
