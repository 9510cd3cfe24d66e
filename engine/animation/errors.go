package animation

import "errors"

var (
	// ErrMalformedTrack is returned when a keyframe track has no keys. Clip construction aborts on it.
	ErrMalformedTrack = errors.New("animation: keyframe track has no keys")

	// ErrTimeOutOfRange is reported by EvaluateChecked for a time past the last key.
	// The evaluated value is still returned, clamped to the last key.
	ErrTimeOutOfRange = errors.New("animation: time is past the last keyframe")

	// ErrUnresolvedBone describes a channel whose bone has no node in the hierarchy.
	// It is logged, never returned from clip construction.
	ErrUnresolvedBone = errors.New("animation: channel bone not found in hierarchy")

	// ErrNilHierarchy is returned when a clip is built without a hierarchy.
	ErrNilHierarchy = errors.New("animation: clip requires a hierarchy")

	// ErrNilRegistry is returned when a clip is built without a bone registry.
	ErrNilRegistry = errors.New("animation: clip requires a bone registry")

	// ErrInvalidDuration is returned for a negative or non-finite clip duration.
	ErrInvalidDuration = errors.New("animation: invalid clip duration")
)
