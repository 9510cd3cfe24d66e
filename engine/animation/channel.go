package animation

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-skel/common"
	"github.com/go-gl/mathgl/mgl32"
)

// RawChannel is the raw animation channel source for one bone, as extracted verbatim from
// an animation file. Every track must hold at least one key; timestamps are in ticks and
// each track keeps its own timestamps.
type RawChannel struct {
	// Name is the name of the animated bone.
	Name string

	// Positions are the translation keys.
	Positions []Keyframe[mgl32.Vec3]

	// Rotations are the rotation keys.
	Rotations []Keyframe[mgl32.Quat]

	// Scales are the scale keys.
	Scales []Keyframe[mgl32.Vec3]
}

// Pose is a decomposed local transform.
type Pose struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// PoseFromMatrix decomposes m into a Pose.
func PoseFromMatrix(m mgl32.Mat4) Pose {
	t, r, s := common.DecomposeTRS(m)
	return Pose{Translation: t, Rotation: r, Scale: s}
}

// Matrix composes the pose as Translation * Rotation * Scale.
func (p Pose) Matrix() mgl32.Mat4 {
	return common.ComposeTRS(p.Translation, p.Rotation, p.Scale)
}

// BlendPose interpolates two poses: translation and scale linearly, rotation along the shortest arc.
//
// Parameters:
//   - from: the pose at weight 0
//   - to: the pose at weight 1
//   - weight: the blend weight in [0, 1]
//
// Returns:
//   - Pose: the blended pose
func BlendPose(from, to Pose, weight float32) Pose {
	return Pose{
		Translation: LerpVec3(from.Translation, to.Translation, weight),
		Rotation:    SlerpQuat(from.Rotation, to.Rotation, weight),
		Scale:       LerpVec3(from.Scale, to.Scale, weight),
	}
}

// BoneChannel owns the position, rotation and scale tracks of one bone and produces
// the bone's local transform at a given time. It is immutable after construction.
type BoneChannel struct {
	name     string
	id       int
	position *VectorTrack
	rotation *RotationTrack
	scale    *VectorTrack
}

// NewBoneChannel builds the three tracks of raw.
//
// Parameters:
//   - raw: the raw keyframe data of the bone
//   - id: the registry id of the bone
//
// Returns:
//   - *BoneChannel: the channel
//   - error: ErrMalformedTrack, naming the bone and track, if any track is empty
func NewBoneChannel(raw RawChannel, id int) (*BoneChannel, error) {
	position, err := NewVectorTrack(raw.Positions)
	if err != nil {
		return nil, fmt.Errorf("bone %q position track: %w", raw.Name, err)
	}
	rotation, err := NewRotationTrack(raw.Rotations)
	if err != nil {
		return nil, fmt.Errorf("bone %q rotation track: %w", raw.Name, err)
	}
	scale, err := NewVectorTrack(raw.Scales)
	if err != nil {
		return nil, fmt.Errorf("bone %q scale track: %w", raw.Name, err)
	}
	return &BoneChannel{
		name:     raw.Name,
		id:       id,
		position: position,
		rotation: rotation,
		scale:    scale,
	}, nil
}

// Name returns the animated bone name.
func (c *BoneChannel) Name() string {
	return c.name
}

// ID returns the registry id of the bone.
func (c *BoneChannel) ID() int {
	return c.id
}

// Position returns the translation track.
func (c *BoneChannel) Position() *VectorTrack {
	return c.position
}

// Rotation returns the rotation track.
func (c *BoneChannel) Rotation() *RotationTrack {
	return c.rotation
}

// Scale returns the scale track.
func (c *BoneChannel) Scale() *VectorTrack {
	return c.scale
}

// Duration returns the latest keyframe time across the three tracks.
func (c *BoneChannel) Duration() float32 {
	return max(c.position.End(), c.rotation.End(), c.scale.End())
}

// Sample evaluates the three tracks at time.
//
// Parameters:
//   - time: the sample time in ticks
//
// Returns:
//   - Pose: the interpolated translation, rotation and scale
func (c *BoneChannel) Sample(time float32) Pose {
	return Pose{
		Translation: c.position.Evaluate(time),
		Rotation:    c.rotation.Evaluate(time),
		Scale:       c.scale.Evaluate(time),
	}
}

// Evaluate returns the local transform at time, Translation * Rotation * Scale.
//
// Parameters:
//   - time: the sample time in ticks
//
// Returns:
//   - mgl32.Mat4: the local bone transform
func (c *BoneChannel) Evaluate(time float32) mgl32.Mat4 {
	return c.Sample(time).Matrix()
}
