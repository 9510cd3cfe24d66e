package loader

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// gltfSkeletonExtractorImpl is the implementation of the gltfSkeletonExtractor interface.
type gltfSkeletonExtractorImpl struct {
	parser gltfParser
	scene  gltfSceneExtractor
}

// gltfSkeletonExtractor converts glTF skins into SkinSource values. Joint names come from
// the scene extractor so they match the hierarchy and the animation channels.
type gltfSkeletonExtractor interface {
	// ExtractSkin extracts a single skin by index. Missing inverse bind matrices default to
	// identity.
	//
	// Parameters:
	//   - skinIndex: the index of the skin in the document
	//
	// Returns:
	//   - SkinSource: the skin's joints and inverse bind matrices
	//   - error: error if the skin or its accessor is invalid
	ExtractSkin(skinIndex int) (SkinSource, error)

	// ExtractAllSkins extracts every skin in document order.
	ExtractAllSkins() ([]SkinSource, error)
}

var _ gltfSkeletonExtractor = &gltfSkeletonExtractorImpl{}

// newGLTFSkeletonExtractor creates a new skin extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//   - scene: the scene extractor used for joint naming
//
// Returns:
//   - gltfSkeletonExtractor: the skin extractor
func newGLTFSkeletonExtractor(parser gltfParser, scene gltfSceneExtractor) gltfSkeletonExtractor {
	return &gltfSkeletonExtractorImpl{parser: parser, scene: scene}
}

func (e *gltfSkeletonExtractorImpl) ExtractSkin(skinIndex int) (SkinSource, error) {
	doc := e.parser.Document()
	if doc == nil {
		return SkinSource{}, errNoDocument
	}
	if skinIndex < 0 || skinIndex >= len(doc.Skins) {
		return SkinSource{}, fmt.Errorf("skin index %d out of range", skinIndex)
	}
	skin := doc.Skins[skinIndex]

	src := SkinSource{
		Name:        skin.Name,
		Joints:      make([]string, len(skin.Joints)),
		InverseBind: make([]mgl32.Mat4, len(skin.Joints)),
	}
	if src.Name == "" {
		src.Name = fmt.Sprintf("skin_%d", skinIndex)
	}

	for i, joint := range skin.Joints {
		if joint < 0 || joint >= len(doc.Nodes) {
			return SkinSource{}, fmt.Errorf("skin %q joint %d: node index %d out of range: %w", src.Name, i, joint, ErrInvalidDocument)
		}
		src.Joints[i] = e.scene.NodeName(joint)
		src.InverseBind[i] = mgl32.Ident4()
	}

	if skin.InverseBindMatrices != nil {
		matrices, err := e.parser.ReadMat4Accessor(*skin.InverseBindMatrices)
		if err != nil {
			return SkinSource{}, fmt.Errorf("skin %q: failed to read inverse bind matrices: %w", src.Name, err)
		}
		if len(matrices) < len(skin.Joints) {
			return SkinSource{}, fmt.Errorf("skin %q: %d inverse bind matrices for %d joints: %w",
				src.Name, len(matrices), len(skin.Joints), ErrInvalidDocument)
		}
		copy(src.InverseBind, matrices)
	}

	return src, nil
}

func (e *gltfSkeletonExtractorImpl) ExtractAllSkins() ([]SkinSource, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}

	skins := make([]SkinSource, len(doc.Skins))
	for i := range doc.Skins {
		skin, err := e.ExtractSkin(i)
		if err != nil {
			return nil, err
		}
		skins[i] = skin
	}
	return skins, nil
}
