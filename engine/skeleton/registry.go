package skeleton

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultMaxBones is the bone capacity used when no WithCapacity option is given.
// It matches the size of the bone matrix array declared by the skinning shaders.
const DefaultMaxBones = 100

// ErrCapacityExceeded is returned when allocating a bone id would reach the registry capacity.
var ErrCapacityExceeded = errors.New("skeleton: bone capacity exceeded")

// BoneInfo is a registry entry for one bone.
type BoneInfo struct {
	// ID is the dense index of the bone in the output bone matrix buffer.
	ID int

	// Offset is the inverse bind-pose matrix converting model space into bone space.
	Offset mgl32.Mat4
}

// Registry maps bone names to stable, dense ids and inverse bind offsets.
// A single Registry is shared by every clip loaded against the same skeleton: a clip
// reuses the id of a bone already seen and allocates the next id for a new bone name.
//
// Registry is not safe for concurrent mutation. Callers loading clips from several
// goroutines against one registry must serialise those loads themselves.
type Registry struct {
	capacity int
	bones    map[string]BoneInfo
	names    []string
}

// NewRegistry creates an empty Registry with the provided options applied.
//
// Parameters:
//   - options: a variadic list of RegistryBuilderOption functions to configure the Registry
//
// Returns:
//   - *Registry: a new, empty registry
func NewRegistry(options ...RegistryBuilderOption) *Registry {
	r := &Registry{
		capacity: DefaultMaxBones,
		bones:    make(map[string]BoneInfo),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Register records a bone with a known inverse bind offset, typically read from a
// model's skin. A name already present keeps its id and has its offset replaced.
//
// Parameters:
//   - name: the bone name
//   - offset: the inverse bind-pose matrix
//
// Returns:
//   - BoneInfo: the stored entry
//   - error: ErrCapacityExceeded if a new id would not fit
func (r *Registry) Register(name string, offset mgl32.Mat4) (BoneInfo, error) {
	if info, ok := r.bones[name]; ok {
		info.Offset = offset
		r.bones[name] = info
		return info, nil
	}
	return r.allocate(name, offset)
}

// Ensure returns the entry for name, allocating the next id with an identity offset
// when the name is new. This is the path clip construction takes for channel bones.
//
// Parameters:
//   - name: the bone name
//
// Returns:
//   - BoneInfo: the existing or newly allocated entry
//   - error: ErrCapacityExceeded if a new id would not fit
func (r *Registry) Ensure(name string) (BoneInfo, error) {
	if info, ok := r.bones[name]; ok {
		return info, nil
	}
	return r.allocate(name, mgl32.Ident4())
}

func (r *Registry) allocate(name string, offset mgl32.Mat4) (BoneInfo, error) {
	if len(r.names) >= r.capacity {
		return BoneInfo{}, fmt.Errorf("%w: bone %q would receive id %d, capacity is %d", ErrCapacityExceeded, name, len(r.names), r.capacity)
	}
	info := BoneInfo{ID: len(r.names), Offset: offset}
	r.bones[name] = info
	r.names = append(r.names, name)
	return info, nil
}

// Lookup returns the entry for name.
//
// Parameters:
//   - name: the bone name
//
// Returns:
//   - BoneInfo: the entry, zero if absent
//   - bool: true if the bone is registered
func (r *Registry) Lookup(name string) (BoneInfo, bool) {
	info, ok := r.bones[name]
	return info, ok
}

// Len returns the number of registered bones.
func (r *Registry) Len() int {
	return len(r.names)
}

// Capacity returns the maximum number of bones the registry will allocate.
func (r *Registry) Capacity() int {
	return r.capacity
}

// Names returns the registered bone names ordered by id.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Each calls fn for every bone in id order.
func (r *Registry) Each(fn func(name string, info BoneInfo)) {
	for _, name := range r.names {
		fn(name, r.bones[name])
	}
}

// ComputeOffsets sets the offset of every registered bone found in h to the inverse of
// the bone's bind-pose global transform. Use it for sources that carry no inverse bind
// matrices. Bones missing from h, or whose bind transform is singular, keep their offset.
//
// Parameters:
//   - h: the hierarchy providing bind-pose transforms
//
// Returns:
//   - int: the number of offsets updated
func (r *Registry) ComputeOffsets(h *Hierarchy) int {
	updated := 0
	for _, name := range r.names {
		idx, ok := h.Find(name)
		if !ok {
			continue
		}
		global := h.BindGlobal(idx)
		if global.Det() == 0 {
			continue
		}
		info := r.bones[name]
		info.Offset = global.Inv()
		r.bones[name] = info
		updated++
	}
	return updated
}
