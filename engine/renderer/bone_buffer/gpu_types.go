package bone_buffer

import (
	_ "embed"
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// GPUBoneMatricesSource is the canonical WGSL definition of the BoneMatrices storage struct
// and the skin_matrix helper that blends up to four bones per vertex.
//
//go:embed assets/bone_matrices.wgsl
var GPUBoneMatricesSource string

// GPUBoneMatrixSize is the size of one mat4x4<f32> in a std430 array.
const GPUBoneMatrixSize = 64

// GPUBoneMatrices is the GPU-facing view of one instance's bone buffer.
// It matches the WGSL array<mat4x4<f32>> layout: column-major, 64 bytes per bone, no padding.
type GPUBoneMatrices struct {
	Matrices []mgl32.Mat4
}

// Size returns the size of the marshalled matrices in bytes.
//
// Returns:
//   - int: 64 bytes per matrix
func (g *GPUBoneMatrices) Size() int {
	return len(g.Matrices) * GPUBoneMatrixSize
}

// Marshal serializes the matrices into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: little-endian float32 data, 64 bytes per matrix
func (g *GPUBoneMatrices) Marshal() []byte {
	return g.MarshalInto(make([]byte, g.Size()))
}

// MarshalInto serializes the matrices into buf, which must hold at least Size bytes.
//
// Parameters:
//   - buf: the destination buffer
//
// Returns:
//   - []byte: buf truncated to Size bytes
func (g *GPUBoneMatrices) MarshalInto(buf []byte) []byte {
	buf = buf[:g.Size()]
	for b, m := range g.Matrices {
		base := b * GPUBoneMatrixSize
		for i := range 16 {
			binary.LittleEndian.PutUint32(buf[base+i*4:base+(i+1)*4], math.Float32bits(m[i]))
		}
	}
	return buf
}
