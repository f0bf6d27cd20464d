package webgpu

import (
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend"
	"github.com/go-gl/mathgl/mgl32"
)

// stagingBlock is the CPU copy of a program's uniform block. Writes land here and the whole
// block is copied into a fresh arena slot by every draw, so values persist across draws until
// overwritten.
type stagingBlock struct {
	data []byte
}

var _ backend.UniformWriter = &stagingBlock{}

func newStagingBlock(size uint64) *stagingBlock {
	return &stagingBlock{data: make([]byte, size)}
}

// put writes v at loc, never past the uniform's byte range or the block end.
func (s *stagingBlock) put(offset, end uint64, v []float32) {
	end = min(end, uint64(len(s.data)))
	for _, f := range v {
		if offset+4 > end {
			return
		}
		binary.LittleEndian.PutUint32(s.data[offset:offset+4], math.Float32bits(f))
		offset += 4
	}
}

func (s *stagingBlock) end(loc backend.UniformLocation) uint64 {
	if loc.Size == 0 {
		return uint64(len(s.data))
	}
	return loc.Offset + loc.Size
}

func (s *stagingBlock) SetFloat(loc backend.UniformLocation, v float32) {
	s.put(loc.Offset, s.end(loc), []float32{v})
}

func (s *stagingBlock) SetVec2(loc backend.UniformLocation, v mgl32.Vec2) {
	s.put(loc.Offset, s.end(loc), v[:])
}

func (s *stagingBlock) SetVec3(loc backend.UniformLocation, v mgl32.Vec3) {
	s.put(loc.Offset, s.end(loc), v[:])
}

func (s *stagingBlock) SetVec4(loc backend.UniformLocation, v mgl32.Vec4) {
	s.put(loc.Offset, s.end(loc), v[:])
}

// SetMat3 writes the three columns with the 16 byte column stride of mat3x3<f32>.
func (s *stagingBlock) SetMat3(loc backend.UniformLocation, m mgl32.Mat3) {
	end := s.end(loc)
	for c := range 3 {
		s.put(loc.Offset+uint64(c)*16, end, m[c*3:c*3+3])
	}
}

func (s *stagingBlock) SetMat4(loc backend.UniformLocation, m mgl32.Mat4) {
	s.put(loc.Offset, s.end(loc), m[:])
}

func (s *stagingBlock) SetFloatArray(loc backend.UniformLocation, data []float32) {
	s.put(loc.Offset, s.end(loc), data)
}

// alignUp rounds n up to a multiple of align.
func alignUp(n, align uint64) uint64 {
	if align == 0 {
		return n
	}
	return (n + align - 1) / align * align
}
