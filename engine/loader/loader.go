package loader

import (
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/qmuntal/gltf"
)

var (
	// ErrUnsupportedFormat is returned for files whose extension has no backend.
	ErrUnsupportedFormat = errors.New("unsupported asset format")

	// ErrInvalidDocument is returned when a document references nodes, samplers or
	// accessors that do not exist, or its node graph is not a forest.
	ErrInvalidDocument = errors.New("invalid glTF document")
)

// LoaderBackendType identifies the asset file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	logger      *log.Logger
	backendType LoaderBackendType

	assetCache map[string]*Asset

	backend loaderBackend
}

// Loader defines the public-facing interface for importing and caching skeletal assets.
// It abstracts the file format behind a backend and manages a cache of previously loaded
// assets. A Loader is safe for concurrent use; cached assets are shared and must be
// treated as read-only.
type Loader interface {
	// Load imports an asset file and caches the result by path.
	// If the asset is already cached, the cached version is returned.
	// The asset is named after the file name without its extension.
	//
	// Parameters:
	//   - path: the file path to the asset (.gltf or .glb)
	//
	// Returns:
	//   - *Asset: the loaded and cached asset
	//   - error: ErrUnsupportedFormat for unknown extensions, or the import error
	Load(path string) (*Asset, error)

	// LoadReader imports an asset from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the asset name and cache key
	//   - r: the reader providing glTF JSON or GLB data
	//
	// Returns:
	//   - *Asset: the loaded asset
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader) (*Asset, error)

	// LoadDocument imports an already decoded glTF document and caches it by the given name.
	//
	// Parameters:
	//   - name: the asset name and cache key
	//   - doc: the decoded document
	//
	// Returns:
	//   - *Asset: the loaded asset
	//   - error: error if the document is invalid
	LoadDocument(name string, doc *gltf.Document) (*Asset, error)

	// Get retrieves a cached asset by key. Returns nil if not found.
	//
	// Parameters:
	//   - key: the cache key to look up
	//
	// Returns:
	//   - *Asset: the cached asset or nil
	Get(key string) *Asset

	// Assets returns a copy of the asset cache.
	//
	// Returns:
	//   - map[string]*Asset: all cached assets keyed by path or name
	Assets() map[string]*Asset
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the options applied. The backend is created
// after the options so it picks up the configured logger.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		logger:      log.Default(),
		backendType: BackendTypeGLTF,
		assetCache:  make(map[string]*Asset),
	}

	for _, option := range options {
		option(l)
	}

	switch l.backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend(l.logger)
	}
	return l
}

func (l *loader) Load(path string) (*Asset, error) {
	if cached := l.Get(path); cached != nil {
		return cached, nil
	}

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	asset, err := backend.Load(name, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return l.store(path, asset), nil
}

func (l *loader) LoadReader(name string, r io.Reader) (*Asset, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}

	asset, err := l.backend.LoadReader(name, r)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}
	return l.store(name, asset), nil
}

func (l *loader) LoadDocument(name string, doc *gltf.Document) (*Asset, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}

	asset, err := l.backend.LoadDocument(name, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to load document %q: %w", name, err)
	}
	return l.store(name, asset), nil
}

// store caches asset under key unless a concurrent load got there first, in which case
// the earlier asset wins so every caller sees the same value.
func (l *loader) store(key string, asset *Asset) *Asset {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cached, ok := l.assetCache[key]; ok {
		return cached
	}
	l.assetCache[key] = asset
	l.logger.Printf("loader: loaded %q: %d clips, %d skins", asset.Name, len(asset.Clips), len(asset.Skins))
	return asset
}

func (l *loader) Get(key string) *Asset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.assetCache[key]
}

func (l *loader) Assets() map[string]*Asset {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*Asset, len(l.assetCache))
	for k, v := range l.assetCache {
		result[k] = v
	}
	return result
}

// resolveBackend selects an appropriate loader backend based on the file extension.
// Currently only glTF/GLB is supported.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gltf", ".glb":
		return l.backend, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
