package loader

import (
	"errors"
	"fmt"
	"io"

	"github.com/Carmen-Shannon/oxy-skel/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

var errNoDocument = errors.New("no document loaded")

// gltfParserImpl is the implementation of the gltfParser interface.
type gltfParserImpl struct {
	document *gltf.Document
}

// gltfParser loads glTF/GLB documents and reads their accessors as engine-ready values.
// Decoding and buffer resolution are delegated to qmuntal/gltf; the parser narrows the
// accessor payloads into the float32 and mgl32 types the extractors work with.
type gltfParser interface {
	// Parse loads and decodes a glTF or GLB file. External buffers are resolved relative
	// to the file's directory.
	//
	// Parameters:
	//   - path: path to the glTF or GLB file
	//
	// Returns:
	//   - error: error if decoding fails
	Parse(path string) error

	// ParseReader decodes a glTF JSON or GLB stream. Only embedded buffers can be resolved.
	//
	// Parameters:
	//   - r: reader containing glTF JSON or GLB data
	//
	// Returns:
	//   - error: error if decoding fails
	ParseReader(r io.Reader) error

	// SetDocument uses an already decoded document.
	SetDocument(doc *gltf.Document)

	// Document returns the loaded document, or nil if nothing has been loaded.
	Document() *gltf.Document

	// ReadScalarAccessor reads a SCALAR FLOAT accessor.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []float32: the scalar values
	//   - error: error if the accessor is missing or not SCALAR FLOAT
	ReadScalarAccessor(accessorIndex int) ([]float32, error)

	// ReadVec3Accessor reads a VEC3 FLOAT accessor.
	ReadVec3Accessor(accessorIndex int) ([]mgl32.Vec3, error)

	// ReadQuatAccessor reads a VEC4 accessor of (x, y, z, w) quaternions. Normalised integer
	// component types are converted to float per the glTF rules.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []mgl32.Quat: the quaternions, not renormalised
	//   - error: error if the accessor is missing or has an unsupported layout
	ReadQuatAccessor(accessorIndex int) ([]mgl32.Quat, error)

	// ReadMat4Accessor reads a MAT4 FLOAT accessor of column-major matrices.
	ReadMat4Accessor(accessorIndex int) ([]mgl32.Mat4, error)
}

var _ gltfParser = &gltfParserImpl{}

// newGLTFParser creates a new glTF parser instance.
//
// Returns:
//   - gltfParser: a new parser instance
func newGLTFParser() gltfParser {
	return &gltfParserImpl{}
}

func (p *gltfParserImpl) Parse(path string) error {
	doc, err := gltf.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open glTF: %w", err)
	}
	p.document = doc
	return nil
}

func (p *gltfParserImpl) ParseReader(r io.Reader) error {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return fmt.Errorf("failed to decode glTF: %w", err)
	}
	p.document = doc
	return nil
}

func (p *gltfParserImpl) SetDocument(doc *gltf.Document) {
	p.document = doc
}

func (p *gltfParserImpl) Document() *gltf.Document {
	return p.document
}

func (p *gltfParserImpl) read(accessorIndex int) (any, error) {
	if p.document == nil {
		return nil, errNoDocument
	}
	if accessorIndex < 0 || accessorIndex >= len(p.document.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", accessorIndex)
	}
	data, err := modeler.ReadAccessor(p.document, p.document.Accessors[accessorIndex], nil)
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", accessorIndex, err)
	}
	return data, nil
}

func (p *gltfParserImpl) ReadScalarAccessor(accessorIndex int) ([]float32, error) {
	data, err := p.read(accessorIndex)
	if err != nil {
		return nil, err
	}
	values, ok := data.([]float32)
	if !ok {
		return nil, fmt.Errorf("accessor %d is not SCALAR FLOAT: %T", accessorIndex, data)
	}
	return values, nil
}

func (p *gltfParserImpl) ReadVec3Accessor(accessorIndex int) ([]mgl32.Vec3, error) {
	data, err := p.read(accessorIndex)
	if err != nil {
		return nil, err
	}
	values, ok := data.([][3]float32)
	if !ok {
		return nil, fmt.Errorf("accessor %d is not VEC3 FLOAT: %T", accessorIndex, data)
	}
	result := make([]mgl32.Vec3, len(values))
	for i, v := range values {
		result[i] = mgl32.Vec3(v)
	}
	return result, nil
}

func (p *gltfParserImpl) ReadQuatAccessor(accessorIndex int) ([]mgl32.Quat, error) {
	data, err := p.read(accessorIndex)
	if err != nil {
		return nil, err
	}

	var xyzw [][4]float32
	switch values := data.(type) {
	case [][4]float32:
		xyzw = values
	case [][4]int8:
		xyzw = normalised(values, 127)
	case [][4]uint8:
		xyzw = normalised(values, 255)
	case [][4]int16:
		xyzw = normalised(values, 32767)
	case [][4]uint16:
		xyzw = normalised(values, 65535)
	default:
		return nil, fmt.Errorf("accessor %d is not a VEC4 rotation: %T", accessorIndex, data)
	}

	result := make([]mgl32.Quat, len(xyzw))
	for i, v := range xyzw {
		result[i] = common.QuatFromXYZW(v)
	}
	return result, nil
}

func (p *gltfParserImpl) ReadMat4Accessor(accessorIndex int) ([]mgl32.Mat4, error) {
	data, err := p.read(accessorIndex)
	if err != nil {
		return nil, err
	}
	values, ok := data.([][4][4]float32)
	if !ok {
		return nil, fmt.Errorf("accessor %d is not MAT4 FLOAT: %T", accessorIndex, data)
	}
	result := make([]mgl32.Mat4, len(values))
	for i, v := range values {
		result[i] = common.Mat4FromColumns(v)
	}
	return result, nil
}

// normalised converts normalised integer components to float, clamping at -1.
func normalised[T int8 | uint8 | int16 | uint16](values [][4]T, maxValue float32) [][4]float32 {
	result := make([][4]float32, len(values))
	for i, v := range values {
		for c := range 4 {
			result[i][c] = max(float32(v[c])/maxValue, -1)
		}
	}
	return result
}
