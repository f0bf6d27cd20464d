package scene

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/helix-go/common"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxSkinningJoints is the number of joint matrices a skinned draw can upload.
const MaxSkinningJoints = 64

// Mesh is indexed, interleaved geometry. The GPU copy is created lazily by the renderer the first
// time the mesh is drawn and shared by every MeshInstance referencing it.
type Mesh struct {
	mu *sync.Mutex

	name     string
	vertices []float32
	stride   int
	indices  []uint32
	bounds   common.AABB

	gpu backend.Mesh
}

// NewMesh creates a mesh from interleaved vertex data whose first three floats per vertex are the
// position. The local bounds are computed from the positions.
//
// Parameters:
//   - name: label used in diagnostics
//   - vertices: interleaved vertex data
//   - stride: floats per vertex (at least 3)
//   - indices: triangle list indices
//
// Returns:
//   - *Mesh: the mesh
func NewMesh(name string, vertices []float32, stride int, indices []uint32) *Mesh {
	if stride < 3 {
		panic(fmt.Sprintf("scene: mesh %q stride %d cannot hold a position", name, stride))
	}
	m := &Mesh{
		mu:       &sync.Mutex{},
		name:     name,
		vertices: vertices,
		stride:   stride,
		indices:  indices,
		bounds:   common.NewEmptyAABB(),
	}
	for i := 0; i+2 < len(vertices); i += stride {
		m.bounds.GrowToIncludePoint(mgl32.Vec3{vertices[i], vertices[i+1], vertices[i+2]})
	}
	return m
}

// Name returns the mesh label.
func (m *Mesh) Name() string {
	return m.name
}

// Bounds returns the local-space bounds.
func (m *Mesh) Bounds() common.AABB {
	return m.bounds
}

// NumIndices returns the index count.
func (m *Mesh) NumIndices() int {
	return len(m.indices)
}

// GPUMesh returns the uploaded mesh, creating it through b on first use.
//
// Parameters:
//   - b: the backend used for the upload
//
// Returns:
//   - backend.Mesh: the GPU mesh
//   - error: the upload error, if any
func (m *Mesh) GPUMesh(b backend.Backend) (backend.Mesh, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gpu != nil {
		return m.gpu, nil
	}
	gpu, err := b.CreateMesh(backend.MeshData{
		Label:    m.name,
		Vertices: m.vertices,
		Stride:   m.stride,
		Indices:  m.indices,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload mesh %q: %w", m.name, err)
	}
	m.gpu = gpu
	return gpu, nil
}

// ReleaseGPU frees the uploaded copy. The next GPUMesh call uploads again.
func (m *Mesh) ReleaseGPU() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gpu != nil {
		m.gpu.Release()
		m.gpu = nil
	}
}

// MeshInstance pairs a mesh with the material it is drawn with.
type MeshInstance struct {
	Mesh     *Mesh
	Material material.Material
}

// Skeleton describes a joint hierarchy. Only the joint count matters to rendering; pose
// evaluation happens outside the renderer and arrives as skeleton matrices.
type Skeleton struct {
	Name       string
	JointNames []string
}

// NumJoints returns the number of joints.
func (s *Skeleton) NumJoints() int {
	return len(s.JointNames)
}
