package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-skel/common"
	"github.com/Carmen-Shannon/oxy-skel/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

// gltfSceneExtractorImpl is the implementation of the gltfSceneExtractor interface.
type gltfSceneExtractorImpl struct {
	parser gltfParser
}

// gltfSceneExtractor converts the node graph of a parsed glTF document into a
// skeleton.NodeData tree. Every extractor names nodes through NodeName so that channel,
// joint and hierarchy names agree.
type gltfSceneExtractor interface {
	// ExtractScene builds the default scene (or the first scene, or every parentless node
	// when the document has no scenes) under a synthetic identity root.
	//
	// Parameters:
	//   - rootName: the name of the synthetic root node
	//
	// Returns:
	//   - skeleton.NodeData: the scene tree
	//   - error: error if a node index is invalid or the graph is cyclic
	ExtractScene(rootName string) (skeleton.NodeData, error)

	// NodeName returns the node's name, or node_<index> when it has none.
	NodeName(nodeIndex int) string

	// LocalTransform returns the node's parent-relative transform: its matrix when not
	// identity, T*R*S of its translation, rotation and scale otherwise.
	LocalTransform(nodeIndex int) mgl32.Mat4
}

var _ gltfSceneExtractor = &gltfSceneExtractorImpl{}

// newGLTFSceneExtractor creates a new scene extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfSceneExtractor: the scene extractor
func newGLTFSceneExtractor(parser gltfParser) gltfSceneExtractor {
	return &gltfSceneExtractorImpl{parser: parser}
}

func (e *gltfSceneExtractorImpl) ExtractScene(rootName string) (skeleton.NodeData, error) {
	root := skeleton.NodeData{Name: rootName, Transform: mgl32.Ident4()}

	doc := e.parser.Document()
	if doc == nil {
		return root, errNoDocument
	}

	visited := make(map[int]bool)
	for _, idx := range e.sceneRoots(doc) {
		child, err := e.buildNode(doc, idx, visited)
		if err != nil {
			return root, err
		}
		root.Children = append(root.Children, child)
	}
	return root, nil
}

func (e *gltfSceneExtractorImpl) sceneRoots(doc *gltf.Document) []int {
	scene := -1
	if doc.Scene != nil {
		scene = *doc.Scene
	} else if len(doc.Scenes) > 0 {
		scene = 0
	}
	if scene >= 0 && scene < len(doc.Scenes) {
		return doc.Scenes[scene].Nodes
	}

	hasParent := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i, p := range hasParent {
		if !p {
			roots = append(roots, i)
		}
	}
	return roots
}

// buildNode copies a node and its subtree. A node reached twice means the graph is not a
// forest, which glTF forbids.
func (e *gltfSceneExtractorImpl) buildNode(doc *gltf.Document, idx int, visited map[int]bool) (skeleton.NodeData, error) {
	if idx < 0 || idx >= len(doc.Nodes) {
		return skeleton.NodeData{}, fmt.Errorf("node index %d out of range: %w", idx, ErrInvalidDocument)
	}
	if visited[idx] {
		return skeleton.NodeData{}, fmt.Errorf("node %d reached twice: %w", idx, ErrInvalidDocument)
	}
	visited[idx] = true

	data := skeleton.NodeData{
		Name:      e.NodeName(idx),
		Transform: e.LocalTransform(idx),
	}
	for _, c := range doc.Nodes[idx].Children {
		child, err := e.buildNode(doc, c, visited)
		if err != nil {
			return skeleton.NodeData{}, err
		}
		data.Children = append(data.Children, child)
	}
	return data, nil
}

func (e *gltfSceneExtractorImpl) NodeName(nodeIndex int) string {
	var name string
	if doc := e.parser.Document(); doc != nil && nodeIndex >= 0 && nodeIndex < len(doc.Nodes) {
		name = doc.Nodes[nodeIndex].Name
	}
	return common.Coalesce(name, fmt.Sprintf("node_%d", nodeIndex))
}

func (e *gltfSceneExtractorImpl) LocalTransform(nodeIndex int) mgl32.Mat4 {
	doc := e.parser.Document()
	if doc == nil || nodeIndex < 0 || nodeIndex >= len(doc.Nodes) {
		return mgl32.Ident4()
	}
	n := doc.Nodes[nodeIndex]

	if m := n.MatrixOrDefault(); m != gltf.DefaultMatrix {
		return common.Mat4FromFloat64(m)
	}

	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	return common.ComposeTRS(
		mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])},
		common.QuatFromXYZW([4]float32{float32(r[0]), float32(r[1]), float32(r[2]), float32(r[3])}).Normalize(),
		mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])},
	)
}
