package webgpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func floatAt(b []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[offset:]))
}

func TestStagingBlockWritesAtOffset(t *testing.T) {
	s := newStagingBlock(64)
	s.SetVec3(backend.UniformLocation{Offset: 16, Size: 12}, mgl32.Vec3{1, 2, 3})

	assert.Equal(t, float32(0), floatAt(s.data, 12))
	assert.Equal(t, float32(1), floatAt(s.data, 16))
	assert.Equal(t, float32(3), floatAt(s.data, 24))
	assert.Equal(t, float32(0), floatAt(s.data, 28))
}

func TestStagingBlockClampsToUniformSize(t *testing.T) {
	s := newStagingBlock(64)
	s.SetFloatArray(backend.UniformLocation{Offset: 0, Size: 8}, []float32{1, 2, 3, 4})

	assert.Equal(t, float32(2), floatAt(s.data, 4))
	assert.Equal(t, float32(0), floatAt(s.data, 8))
}

func TestStagingBlockClampsToBlockEnd(t *testing.T) {
	s := newStagingBlock(8)
	assert.NotPanics(t, func() {
		s.SetMat4(backend.UniformLocation{Offset: 0, Size: 64}, mgl32.Ident4())
	})
	assert.Equal(t, float32(1), floatAt(s.data, 0))
}

func TestStagingBlockMat3ColumnStride(t *testing.T) {
	s := newStagingBlock(48)
	m := mgl32.Mat3{1, 2, 3, 4, 5, 6, 7, 8, 9}
	s.SetMat3(backend.UniformLocation{Offset: 0, Size: 48}, m)

	for c := range 3 {
		for r := range 3 {
			assert.Equal(t, m[c*3+r], floatAt(s.data, c*16+r*4), "column %d row %d", c, r)
		}
		assert.Equal(t, float32(0), floatAt(s.data, c*16+12), "padding of column %d", c)
	}
}

func TestAlignUp(t *testing.T) {
	tests := []struct {
		n, align, want uint64
	}{
		{0, 256, 0},
		{1, 256, 256},
		{256, 256, 256},
		{257, 256, 512},
		{10, 0, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, alignUp(tt.n, tt.align))
	}
}
