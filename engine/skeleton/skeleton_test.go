package skeleton

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func testTree() NodeData {
	return NodeData{
		Name:      "root",
		Transform: mgl32.Translate3D(0, 1, 0),
		Children: []NodeData{
			{
				Name:      "hip",
				Transform: mgl32.Translate3D(0, 2, 0),
				Children: []NodeData{
					{Name: "spine", Transform: mgl32.Translate3D(0, 3, 0)},
					{Name: "leg"},
				},
			},
			{Name: "prop"},
		},
	}
}

func TestBuildHierarchyOrder(t *testing.T) {
	h, err := BuildHierarchy(testTree())
	if err != nil {
		t.Fatalf("BuildHierarchy: %v", err)
	}

	want := []struct {
		name   string
		parent int
		depth  int
	}{
		{"root", -1, 0},
		{"hip", 0, 1},
		{"spine", 1, 2},
		{"leg", 1, 2},
		{"prop", 0, 1},
	}
	if h.Len() != len(want) {
		t.Fatalf("Len: have %d, want %d", h.Len(), len(want))
	}
	for i, w := range want {
		n := h.Node(i)
		if n.Name != w.name || n.Parent != w.parent || n.Depth != w.depth {
			t.Errorf("node %d: have (%s, %d, %d), want (%s, %d, %d)", i, n.Name, n.Parent, n.Depth, w.name, w.parent, w.depth)
		}
	}
	if c := h.Node(0).Children(); len(c) != 2 || c[0] != 1 || c[1] != 4 {
		t.Errorf("root children: have %v, want [1 4]", c)
	}
	if c := h.Node(1).Children(); len(c) != 2 || c[0] != 2 || c[1] != 3 {
		t.Errorf("hip children: have %v, want [2 3]", c)
	}
}

func TestBuildHierarchyZeroTransformIsIdentity(t *testing.T) {
	h, err := BuildHierarchy(testTree())
	if err != nil {
		t.Fatalf("BuildHierarchy: %v", err)
	}
	idx, ok := h.Find("leg")
	if !ok {
		t.Fatal("Find(leg): not found")
	}
	if h.Node(idx).Bind != mgl32.Ident4() {
		t.Errorf("leg bind: have %v, want identity", h.Node(idx).Bind)
	}
}

func TestBuildHierarchyErrors(t *testing.T) {
	if _, err := BuildHierarchy(nil); !errors.Is(err, ErrEmptyHierarchy) {
		t.Errorf("nil root: have %v, want ErrEmptyHierarchy", err)
	}

	deep := NodeData{Name: "leaf"}
	for range MaxHierarchyDepth + 1 {
		deep = NodeData{Name: "n", Children: []NodeData{deep}}
	}
	if _, err := BuildHierarchy(deep); !errors.Is(err, ErrHierarchyTooDeep) {
		t.Errorf("deep tree: have %v, want ErrHierarchyTooDeep", err)
	}
}

func TestHierarchyBindGlobal(t *testing.T) {
	h, err := BuildHierarchy(testTree())
	if err != nil {
		t.Fatalf("BuildHierarchy: %v", err)
	}
	idx, _ := h.Find("spine")
	want := mgl32.Translate3D(0, 6, 0)
	if got := h.BindGlobal(idx); !got.ApproxEqualThreshold(want, 1e-6) {
		t.Errorf("BindGlobal(spine): have %v, want %v", got, want)
	}
}

func TestHierarchyNodesAreCopies(t *testing.T) {
	h, err := BuildHierarchy(testTree())
	if err != nil {
		t.Fatalf("BuildHierarchy: %v", err)
	}

	n := h.Node(1)
	n.Bind = mgl32.Scale3D(9, 9, 9)
	n.Parent = 3
	n.Children()[0] = 4
	h.Walk(func(_ int, n Node) {
		if c := n.Children(); len(c) > 0 {
			c[0] = 0
		}
	})

	hip := h.Node(1)
	if hip.Bind != mgl32.Translate3D(0, 2, 0) || hip.Parent != 0 {
		t.Errorf("hip changed through a copy: bind %v, parent %d", hip.Bind, hip.Parent)
	}
	if c := hip.Children(); len(c) != 2 || c[0] != 2 || c[1] != 3 {
		t.Errorf("hip children changed through a copy: %v", c)
	}
	if h.Node(0).Parent != -1 {
		t.Errorf("root parent changed: %d", h.Node(0).Parent)
	}
}

func TestHierarchyWalk(t *testing.T) {
	h, err := BuildHierarchy(testTree())
	if err != nil {
		t.Fatalf("BuildHierarchy: %v", err)
	}
	var names []string
	h.Walk(func(_ int, n Node) { names = append(names, n.Name) })
	want := []string{"root", "hip", "spine", "leg", "prop"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Walk order: have %v, want %v", names, want)
		}
	}
}

func TestRegistrySharedAcrossClips(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"hip", "spine"} {
		if _, err := r.Ensure(name); err != nil {
			t.Fatalf("Ensure(%s): %v", name, err)
		}
	}
	for _, name := range []string{"spine", "head"} {
		if _, err := r.Ensure(name); err != nil {
			t.Fatalf("Ensure(%s): %v", name, err)
		}
	}

	want := map[string]int{"hip": 0, "spine": 1, "head": 2}
	for name, id := range want {
		info, ok := r.Lookup(name)
		if !ok || info.ID != id {
			t.Errorf("Lookup(%s): have (%d, %t), want (%d, true)", name, info.ID, ok, id)
		}
	}
	if r.Len() != 3 {
		t.Errorf("Len: have %d, want 3", r.Len())
	}
	names := r.Names()
	if len(names) != 3 || names[0] != "hip" || names[1] != "spine" || names[2] != "head" {
		t.Errorf("Names: have %v", names)
	}
}

func TestRegistryRegisterKeepsID(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Ensure("arm"); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	offset := mgl32.Translate3D(1, 2, 3)
	info, err := r.Register("arm", offset)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if info.ID != 0 || info.Offset != offset {
		t.Errorf("Register: have %+v", info)
	}
	if got, _ := r.Lookup("arm"); got.Offset != offset {
		t.Errorf("offset not stored: %v", got.Offset)
	}
}

func TestRegistryCapacity(t *testing.T) {
	r := NewRegistry(WithCapacity(2))
	if _, err := r.Ensure("a"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Register("b", mgl32.Ident4()); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Ensure("c"); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("third bone: have %v, want ErrCapacityExceeded", err)
	}
	if _, ok := r.Lookup("c"); ok || r.Len() != 2 {
		t.Errorf("registry changed after failed allocation: len %d", r.Len())
	}
	if _, err := r.Ensure("a"); err != nil {
		t.Errorf("existing bone at capacity: %v", err)
	}
}

func TestRegistryComputeOffsets(t *testing.T) {
	h, err := BuildHierarchy(testTree())
	if err != nil {
		t.Fatalf("BuildHierarchy: %v", err)
	}
	r := NewRegistry()
	for _, name := range []string{"spine", "missing"} {
		if _, err := r.Ensure(name); err != nil {
			t.Fatal(err)
		}
	}
	if n := r.ComputeOffsets(h); n != 1 {
		t.Fatalf("ComputeOffsets: have %d updated, want 1", n)
	}
	info, _ := r.Lookup("spine")
	want := mgl32.Translate3D(0, -6, 0)
	if !info.Offset.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("spine offset: have %v, want %v", info.Offset, want)
	}
	if info, _ := r.Lookup("missing"); info.Offset != mgl32.Ident4() {
		t.Errorf("missing offset changed: %v", info.Offset)
	}
}
