package skeleton

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxHierarchyDepth bounds the nesting accepted by BuildHierarchy. Bone hierarchies are
// shallow in practice; a source deeper than this is treated as cyclic.
const MaxHierarchyDepth = 1024

var (
	// ErrEmptyHierarchy is returned when BuildHierarchy is given no root node.
	ErrEmptyHierarchy = errors.New("skeleton: hierarchy has no root node")

	// ErrHierarchyTooDeep is returned when the source tree nests deeper than MaxHierarchyDepth.
	ErrHierarchyTooDeep = errors.New("skeleton: hierarchy exceeds maximum depth")
)

// SceneNode is the scene graph source contract consumed by BuildHierarchy.
// A source is a tree with a single root whose child order is stable across loads.
type SceneNode interface {
	// NodeName returns the node name used to match animation channels and registry bones.
	//
	// Returns:
	//   - string: the node name
	NodeName() string

	// LocalTransform returns the node's bind-pose transform relative to its parent.
	//
	// Returns:
	//   - mgl32.Mat4: the column-major local bind transform
	LocalTransform() mgl32.Mat4

	// ChildNodes returns the node's children in source order.
	//
	// Returns:
	//   - []SceneNode: the ordered children
	ChildNodes() []SceneNode
}

// NodeData is a plain in-memory SceneNode. Loaders produce it and tests build it by hand.
type NodeData struct {
	// Name is the node identifier.
	Name string

	// Transform is the local bind-pose transform. The zero matrix is read as identity.
	Transform mgl32.Mat4

	// Children are the child nodes in source order.
	Children []NodeData
}

var _ SceneNode = NodeData{}

func (n NodeData) NodeName() string {
	return n.Name
}

func (n NodeData) LocalTransform() mgl32.Mat4 {
	if n.Transform == (mgl32.Mat4{}) {
		return mgl32.Ident4()
	}
	return n.Transform
}

func (n NodeData) ChildNodes() []SceneNode {
	children := make([]SceneNode, len(n.Children))
	for i := range n.Children {
		children[i] = n.Children[i]
	}
	return children
}

// Node is one entry of a Hierarchy arena. Hierarchy hands out copies, so changing a
// Node never alters the hierarchy it came from.
type Node struct {
	// Name is the node identifier copied from the source.
	Name string

	// Bind is the local bind-pose transform.
	Bind mgl32.Mat4

	// Parent is the arena index of the parent node, or -1 for the root.
	Parent int

	// children are the arena indices of the child nodes in source order.
	children []int

	// Depth is the distance from the root (0 for the root).
	Depth int
}

// Children returns a copy of the arena indices of the node's children in source order.
func (n Node) Children() []int {
	return slices.Clone(n.children)
}

// Hierarchy is an immutable node tree stored as an arena. Nodes are laid out in
// depth-first pre-order, so index 0 is the root and every parent precedes its children.
type Hierarchy struct {
	nodes []Node
	names map[string]int
}

// BuildHierarchy deep-copies a scene graph source into a Hierarchy.
//
// Parameters:
//   - root: the root of the source tree
//
// Returns:
//   - *Hierarchy: the arena copy of the tree
//   - error: ErrEmptyHierarchy for a nil root, ErrHierarchyTooDeep for a source nested past MaxHierarchyDepth
func BuildHierarchy(root SceneNode) (*Hierarchy, error) {
	if root == nil {
		return nil, ErrEmptyHierarchy
	}

	h := &Hierarchy{names: make(map[string]int)}

	type frame struct {
		src    SceneNode
		parent int
		depth  int
	}
	stack := []frame{{src: root, parent: -1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.depth > MaxHierarchyDepth {
			return nil, fmt.Errorf("%w: node %q at depth %d", ErrHierarchyTooDeep, f.src.NodeName(), f.depth)
		}

		idx := len(h.nodes)
		h.nodes = append(h.nodes, Node{
			Name:   f.src.NodeName(),
			Bind:   f.src.LocalTransform(),
			Parent: f.parent,
			Depth:  f.depth,
		})
		if f.parent >= 0 {
			h.nodes[f.parent].children = append(h.nodes[f.parent].children, idx)
		}
		if _, seen := h.names[f.src.NodeName()]; !seen {
			h.names[f.src.NodeName()] = idx
		}

		// Push in reverse so the first child is popped, and therefore numbered, first.
		children := f.src.ChildNodes()
		for i := len(children) - 1; i >= 0; i-- {
			if children[i] == nil {
				continue
			}
			stack = append(stack, frame{src: children[i], parent: idx, depth: f.depth + 1})
		}
	}

	return h, nil
}

// Root returns the arena index of the root node, which is always 0.
func (h *Hierarchy) Root() int {
	return 0
}

// Len returns the number of nodes in the hierarchy.
func (h *Hierarchy) Len() int {
	return len(h.nodes)
}

// Node returns a copy of the node at arena index i. It panics if i is out of range.
func (h *Hierarchy) Node(i int) Node {
	return h.nodes[i]
}

// Find returns the arena index of the first node, in depth-first order, named name.
//
// Parameters:
//   - name: the node name to look up
//
// Returns:
//   - int: the arena index, or -1 if not found
//   - bool: true if a node with that name exists
func (h *Hierarchy) Find(name string) (int, bool) {
	idx, ok := h.names[name]
	if !ok {
		return -1, false
	}
	return idx, true
}

// Walk visits every node depth-first, parents before children and children in source order.
// Because the arena is stored in that order, Walk is a linear scan.
//
// Parameters:
//   - fn: called with each node's arena index and a copy of the node
func (h *Hierarchy) Walk(fn func(idx int, n Node)) {
	for i, n := range h.nodes {
		fn(i, n)
	}
}

// BindGlobal composes the bind-pose transforms from the root down to node i.
//
// Parameters:
//   - i: the arena index of the node
//
// Returns:
//   - mgl32.Mat4: the model-space bind transform of the node
func (h *Hierarchy) BindGlobal(i int) mgl32.Mat4 {
	m := h.nodes[i].Bind
	for p := h.nodes[i].Parent; p >= 0; p = h.nodes[p].Parent {
		m = h.nodes[p].Bind.Mul4(m)
	}
	return m
}
