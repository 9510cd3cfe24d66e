package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-skel/engine/animation"
	"github.com/Carmen-Shannon/oxy-skel/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
)

// Asset is the skeletal content of one imported glTF document: its scene graph, the
// animation sources targeting that graph, and the skins binding joints to meshes.
// Nothing in an Asset is tied to a registry until RegisterSkins or animation.NewClip.
type Asset struct {
	Name  string
	Root  skeleton.NodeData
	Clips []animation.ClipSource
	Skins []SkinSource
}

// SkinSource lists the joints of one glTF skin with their inverse bind matrices.
// Joints and InverseBind are parallel slices.
type SkinSource struct {
	Name        string
	Joints      []string
	InverseBind []mgl32.Mat4
}

// Hierarchy builds the asset's scene graph into an arena.
//
// Returns:
//   - *skeleton.Hierarchy: the built hierarchy
//   - error: error if the scene graph is too deep
func (a *Asset) Hierarchy() (*skeleton.Hierarchy, error) {
	return skeleton.BuildHierarchy(a.Root)
}

// Clip returns the clip source with the given name.
//
// Parameters:
//   - name: the clip name
//
// Returns:
//   - animation.ClipSource: the clip source
//   - bool: true if found
func (a *Asset) Clip(name string) (animation.ClipSource, bool) {
	for _, c := range a.Clips {
		if c.Name == name {
			return c, true
		}
	}
	return animation.ClipSource{}, false
}

// RegisterSkins registers every skin joint with reg, in skin then joint order, using the
// joint's inverse bind matrix as its offset. Joints already in reg keep their id.
// If the new joints would not fit reg's capacity nothing is registered.
//
// Parameters:
//   - reg: the registry to populate
//
// Returns:
//   - int: the number of joints registered or updated
//   - error: skeleton.ErrCapacityExceeded if the joints do not fit
func (a *Asset) RegisterSkins(reg *skeleton.Registry) (int, error) {
	if reg == nil {
		return 0, animation.ErrNilRegistry
	}

	fresh := make(map[string]bool)
	for _, skin := range a.Skins {
		for _, joint := range skin.Joints {
			if _, ok := reg.Lookup(joint); !ok {
				fresh[joint] = true
			}
		}
	}
	if reg.Len()+len(fresh) > reg.Capacity() {
		return 0, fmt.Errorf("asset %q: %d new joints into %d free slots: %w",
			a.Name, len(fresh), reg.Capacity()-reg.Len(), skeleton.ErrCapacityExceeded)
	}

	n := 0
	for _, skin := range a.Skins {
		for i, joint := range skin.Joints {
			if _, err := reg.Register(joint, skin.InverseBind[i]); err != nil {
				return n, fmt.Errorf("asset %q skin %q: %w", a.Name, skin.Name, err)
			}
			n++
		}
	}
	return n, nil
}
