package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes([]float32(nil)))
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f, 2, 0, 0, 0}, SliceToBytes([]uint32{0x3f800000, 2}))
}

func TestTransformPoint(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, TransformPoint(m, mgl32.Vec3{}))
}

func TestAlignUp(t *testing.T) {
	assert.Equal(t, uint64(256), AlignUp(1, 256))
	assert.Equal(t, uint64(256), AlignUp(256, 256))
	assert.Equal(t, uint64(32), AlignUp(17, 16))
}
