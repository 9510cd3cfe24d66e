package loader

import (
	"io"

	"github.com/qmuntal/gltf"
)

// loaderBackend defines the generic interface for importing skeletal assets from files or
// streams. Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load imports the asset at the given file path.
	//
	// Parameters:
	//   - name: the asset name
	//   - path: the file path to load
	//
	// Returns:
	//   - *Asset: the imported asset
	//   - error: error if loading fails
	Load(name, path string) (*Asset, error)

	// LoadReader imports an asset from a reader stream.
	//
	// Parameters:
	//   - name: the asset name
	//   - r: the reader providing the encoded asset
	//
	// Returns:
	//   - *Asset: the imported asset
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader) (*Asset, error)

	// LoadDocument imports an asset from an already decoded glTF document.
	LoadDocument(name string, doc *gltf.Document) (*Asset, error)
}
