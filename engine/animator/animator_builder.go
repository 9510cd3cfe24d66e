package animator

import (
	"log"

	"github.com/Carmen-Shannon/oxy-skel/engine/animation"
)

// AnimatorBuilderOption is a functional option for configuring an Animator during construction.
type AnimatorBuilderOption func(*animator)

// WithMaxBones is an option builder that sets the capacity of the bone matrix buffer.
// It should match the bone array size declared by the skinning shader and be at least the
// capacity of the registry the played clips are built against. Values <= 0 are ignored.
//
// Parameters:
//   - maxBones: the number of bone matrices to allocate
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the max bones option to an animator
func WithMaxBones(maxBones int) AnimatorBuilderOption {
	return func(a *animator) {
		if maxBones > 0 {
			a.maxBones = maxBones
		}
	}
}

// WithClip is an option builder that sets the clip the Animator starts with.
//
// Parameters:
//   - c: the initial clip
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the clip option to an animator
func WithClip(c *animation.Clip) AnimatorBuilderOption {
	return func(a *animator) {
		a.SetClip(c)
	}
}

// WithSpeed is an option builder that sets the playback speed multiplier.
//
// Parameters:
//   - speed: the speed multiplier (1.0 = normal)
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the speed option to an animator
func WithSpeed(speed float32) AnimatorBuilderOption {
	return func(a *animator) {
		a.speed = speed
	}
}

// WithLoop is an option builder that sets whether playback wraps at the end of the clip.
// Animators loop by default.
//
// Parameters:
//   - loop: true to loop
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the loop option to an animator
func WithLoop(loop bool) AnimatorBuilderOption {
	return func(a *animator) {
		a.loop = loop
	}
}

// WithLogger is an option builder that sets the logger used for playback warnings.
//
// Parameters:
//   - l: the logger; nil keeps log.Default()
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the logger option to an animator
func WithLogger(l *log.Logger) AnimatorBuilderOption {
	return func(a *animator) {
		if l != nil {
			a.logger = l
		}
	}
}
