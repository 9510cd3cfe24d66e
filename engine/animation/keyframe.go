package animation

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Keyframe stores one value of an animated property at a point in time.
type Keyframe[T any] struct {
	// Time is the keyframe timestamp in ticks.
	Time float32

	// Value is the property value at Time.
	Value T
}

// Interpolator blends between two keyframe values. t is in [0, 1].
type Interpolator[T any] func(from, to T, t float32) T

// Track holds the ordered keyframes of one transform property of one bone and
// interpolates a value at an arbitrary time. Keys are kept in source order and
// are expected to have non-decreasing timestamps. A Track is immutable.
type Track[T any] struct {
	keys   []Keyframe[T]
	interp Interpolator[T]
}

// VectorTrack is a position or scale track.
type VectorTrack = Track[mgl32.Vec3]

// RotationTrack is a rotation track of unit quaternions.
type RotationTrack = Track[mgl32.Quat]

// NewTrack copies keys into a new Track that blends with interp.
//
// Parameters:
//   - keys: the keyframes in source order; at least one is required
//   - interp: the blend function used between bracketing keys
//
// Returns:
//   - *Track[T]: the new track
//   - error: ErrMalformedTrack if keys is empty
func NewTrack[T any](keys []Keyframe[T], interp Interpolator[T]) (*Track[T], error) {
	if len(keys) == 0 {
		return nil, ErrMalformedTrack
	}
	owned := make([]Keyframe[T], len(keys))
	copy(owned, keys)
	return &Track[T]{keys: owned, interp: interp}, nil
}

// NewVectorTrack creates a Track that interpolates vectors component-wise.
func NewVectorTrack(keys []Keyframe[mgl32.Vec3]) (*VectorTrack, error) {
	return NewTrack(keys, LerpVec3)
}

// NewRotationTrack creates a Track that spherically interpolates quaternions.
// Keys are normalised on construction.
func NewRotationTrack(keys []Keyframe[mgl32.Quat]) (*RotationTrack, error) {
	normalised := make([]Keyframe[mgl32.Quat], len(keys))
	for i, k := range keys {
		normalised[i] = Keyframe[mgl32.Quat]{Time: k.Time, Value: k.Value.Normalize()}
	}
	return NewTrack(normalised, SlerpQuat)
}

// LerpVec3 linearly interpolates between two vectors.
func LerpVec3(from, to mgl32.Vec3, t float32) mgl32.Vec3 {
	return from.Add(to.Sub(from).Mul(t))
}

// SlerpQuat spherically interpolates along the shortest arc between two unit quaternions
// and renormalises the result.
func SlerpQuat(from, to mgl32.Quat, t float32) mgl32.Quat {
	if from.Dot(to) < 0 {
		to = to.Scale(-1)
	}
	return mgl32.QuatSlerp(from, to, t).Normalize()
}

// Evaluate returns the track value at time. It never fails: times before the first key
// hold the first value and times past the last key hold the last value.
//
// Parameters:
//   - time: the sample time in ticks
//
// Returns:
//   - T: the interpolated value
func (tr *Track[T]) Evaluate(time float32) T {
	v, _ := tr.EvaluateChecked(time)
	return v
}

// EvaluateChecked behaves like Evaluate and additionally reports a time past the last key.
//
// Parameters:
//   - time: the sample time in ticks
//
// Returns:
//   - T: the interpolated value, clamped to the last key when out of range
//   - error: ErrTimeOutOfRange if time is past the last key of a multi-key track
func (tr *Track[T]) EvaluateChecked(time float32) (T, error) {
	if len(tr.keys) == 1 {
		return tr.keys[0].Value, nil
	}

	i, ok := tr.interval(time)
	if !ok {
		last := tr.keys[len(tr.keys)-1]
		return last.Value, fmt.Errorf("%w: time %g, last key at %g", ErrTimeOutOfRange, time, last.Time)
	}

	prev, next := tr.keys[i], tr.keys[i+1]
	return tr.interp(prev.Value, next.Value, blendFactor(prev.Time, next.Time, time)), nil
}

// interval returns the smallest i with time < keys[i+1].Time. A time equal to the last
// timestamp resolves to the final interval; a later time reports false.
func (tr *Track[T]) interval(time float32) (int, bool) {
	last := len(tr.keys) - 1
	for i := 0; i < last; i++ {
		if time < tr.keys[i+1].Time {
			return i, true
		}
	}
	return last - 1, time <= tr.keys[last].Time
}

// blendFactor maps time into [0, 1] between two timestamps. Equal timestamps snap to the later key.
func blendFactor(prev, next, time float32) float32 {
	span := next - prev
	if span <= 0 {
		return 1
	}
	t := (time - prev) / span
	switch {
	case t > 1:
		return 1
	case t >= 0:
		return t
	default:
		// Negative or NaN.
		return 0
	}
}

// Len returns the number of keyframes.
func (tr *Track[T]) Len() int {
	return len(tr.keys)
}

// Keys returns a copy of the keyframes in source order.
func (tr *Track[T]) Keys() []Keyframe[T] {
	out := make([]Keyframe[T], len(tr.keys))
	copy(out, tr.keys)
	return out
}

// Start returns the timestamp of the first keyframe.
func (tr *Track[T]) Start() float32 {
	return tr.keys[0].Time
}

// End returns the timestamp of the last keyframe.
func (tr *Track[T]) End() float32 {
	return tr.keys[len(tr.keys)-1].Time
}
