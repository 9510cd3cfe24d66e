package loader

import (
	"fmt"
	"io"
	"log"

	"github.com/qmuntal/gltf"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct {
	logger *log.Logger
}

// gltfImporter orchestrates a full glTF/GLB import. It combines the parser and the scene,
// skin and animation extractors into a single Asset.
type gltfImporter interface {
	// Import loads a glTF/GLB file and extracts its skeletal content.
	//
	// Parameters:
	//   - name: the asset name, also used for the synthetic scene root
	//   - path: the file path to the glTF or GLB file
	//
	// Returns:
	//   - *Asset: the imported asset
	//   - error: error if import fails
	Import(name, path string) (*Asset, error)

	// ImportReader decodes a glTF JSON or GLB stream and extracts its skeletal content.
	ImportReader(name string, r io.Reader) (*Asset, error)

	// ImportDocument extracts the skeletal content of an already decoded document.
	ImportDocument(name string, doc *gltf.Document) (*Asset, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer.
//
// Parameters:
//   - logger: receives extraction notices
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter(logger *log.Logger) gltfImporter {
	return &gltfImporterImpl{logger: logger}
}

func (imp *gltfImporterImpl) Import(name, path string) (*Asset, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return imp.importFromParser(name, parser)
}

func (imp *gltfImporterImpl) ImportReader(name string, r io.Reader) (*Asset, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r); err != nil {
		return nil, fmt.Errorf("failed to parse from reader: %w", err)
	}
	return imp.importFromParser(name, parser)
}

func (imp *gltfImporterImpl) ImportDocument(name string, doc *gltf.Document) (*Asset, error) {
	if doc == nil {
		return nil, errNoDocument
	}
	parser := newGLTFParser()
	parser.SetDocument(doc)
	return imp.importFromParser(name, parser)
}

func (imp *gltfImporterImpl) importFromParser(name string, parser gltfParser) (*Asset, error) {
	scene := newGLTFSceneExtractor(parser)
	skins := newGLTFSkeletonExtractor(parser, scene)
	anims := newGLTFAnimationExtractor(parser, scene, imp.logger)

	root, err := scene.ExtractScene(name)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}

	skinSources, err := skins.ExtractAllSkins()
	if err != nil {
		return nil, fmt.Errorf("skins: %w", err)
	}

	clips, err := anims.ExtractAllAnimations()
	if err != nil {
		return nil, fmt.Errorf("animations: %w", err)
	}

	return &Asset{
		Name:  name,
		Root:  root,
		Clips: clips,
		Skins: skinSources,
	}, nil
}
