package loader

import (
	"io"
	"log"

	"github.com/qmuntal/gltf"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct {
	importer gltfImporter
}

// gltfLoaderBackend is a loaderBackend implementation for glTF/GLB files.
// It delegates to the gltfImporter for parsing and extraction.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Parameters:
//   - logger: receives extraction notices
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend(logger *log.Logger) gltfLoaderBackend {
	return &gltfLoaderBackendImpl{
		importer: newGLTFImporter(logger),
	}
}

func (b *gltfLoaderBackendImpl) Load(name, path string) (*Asset, error) {
	return b.importer.Import(name, path)
}

func (b *gltfLoaderBackendImpl) LoadReader(name string, r io.Reader) (*Asset, error) {
	return b.importer.ImportReader(name, r)
}

func (b *gltfLoaderBackendImpl) LoadDocument(name string, doc *gltf.Document) (*Asset, error) {
	return b.importer.ImportDocument(name, doc)
}
