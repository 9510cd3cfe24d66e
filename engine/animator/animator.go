package animator

import (
	"log"
	"math"

	"github.com/Carmen-Shannon/oxy-skel/engine/animation"
	"github.com/Carmen-Shannon/oxy-skel/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
)

// animator is the implementation of the Animator interface.
type animator struct {
	maxBones int
	logger   *log.Logger

	clip     *animation.Clip
	time     float32
	speed    float32
	loop     bool
	finished bool

	blendClip                   *animation.Clip
	blendTime                   float32
	blendDuration, blendElapsed float32

	// matrices is the output bone buffer, indexed by registry bone id.
	matrices []mgl32.Mat4

	// globals holds the model-space transform of every hierarchy node during a traversal.
	globals []mgl32.Mat4

	// warned records bones already reported as outside the buffer for the current clip.
	warned map[string]bool
}

// Animator drives skeletal playback for one skeleton instance.
//
// Each Update advances the active clip's time, walks the clip's hierarchy depth-first
// composing parent-relative transforms into model space, and writes one final matrix,
// global * inverse bind offset, per registered bone into a fixed-capacity buffer
// indexed by bone id.
//
// An Animator is not safe for concurrent use. Update must not be called reentrantly or
// from several goroutines without external serialisation.
type Animator interface {
	// MaxBones returns the capacity of the bone matrix buffer.
	//
	// Returns:
	//   - int: the number of matrices in the buffer
	MaxBones() int

	// Clip returns the active clip, or nil if none is set.
	//
	// Returns:
	//   - *animation.Clip: the active clip
	Clip() *animation.Clip

	// SetClip replaces the active clip and resets playback time to 0. Any in-progress blend
	// is cancelled. The bone buffer is refreshed on the next Update.
	//
	// Parameters:
	//   - c: the clip to play, or nil to stop playback
	SetClip(c *animation.Clip)

	// Update advances playback by dt seconds and refreshes the bone buffer.
	// It is a no-op when no clip is set or dt is NaN or infinite.
	//
	// Parameters:
	//   - dt: elapsed time since the last update in seconds
	Update(dt float32)

	// BoneMatrices returns the bone buffer as of the last Update. The slice is a view that
	// stays valid until the next Update and must not be modified. Slots of bones the
	// skeleton does not use hold identity.
	//
	// Returns:
	//   - []mgl32.Mat4: the bone matrices indexed by bone id
	BoneMatrices() []mgl32.Mat4

	// Time returns the playback position of the active clip in ticks.
	//
	// Returns:
	//   - float32: the current time
	Time() float32

	// SetTime moves the playback position of the active clip. Looping playback wraps the
	// time into the clip; non-looping playback clamps it.
	//
	// Parameters:
	//   - ticks: the new position in ticks
	SetTime(ticks float32)

	// Speed returns the playback speed multiplier.
	//
	// Returns:
	//   - float32: the speed (1.0 = normal)
	Speed() float32

	// SetSpeed sets the playback speed multiplier. Negative values play backwards.
	//
	// Parameters:
	//   - speed: the speed multiplier (1.0 = normal, 0.5 = half speed)
	SetSpeed(speed float32)

	// Loop reports whether playback wraps at the end of the clip.
	//
	// Returns:
	//   - bool: true if looping
	Loop() bool

	// SetLoop sets whether playback wraps at the end of the clip.
	//
	// Parameters:
	//   - loop: true to loop, false to stop on the last frame
	SetLoop(loop bool)

	// Finished reports whether non-looping playback has reached the end of the clip.
	//
	// Returns:
	//   - bool: true once a non-looping clip has played out
	Finished() bool

	// BlendTo cross-fades from the active clip to c over the given time. Both clips keep
	// advancing during the blend; when it completes c becomes the active clip. Without an
	// active clip, or with a non-positive duration, it behaves like SetClip.
	//
	// Parameters:
	//   - c: the clip to blend to; it must animate the same skeleton
	//   - seconds: the blend duration in seconds
	BlendTo(c *animation.Clip, seconds float32)

	// IsBlending reports whether a cross-fade is in progress.
	//
	// Returns:
	//   - bool: true while blending
	IsBlending() bool

	// BlendProgress returns the cross-fade weight of the target clip.
	//
	// Returns:
	//   - float32: 0.0 (start) to 1.0 (complete), or 0.0 when not blending
	BlendProgress() float32

	// CancelBlend stops an in-progress cross-fade and keeps the active clip.
	CancelBlend()
}

var _ Animator = &animator{}

// NewAnimator creates a new Animator with the provided options applied.
// The bone buffer is allocated after the options and filled with identity matrices.
//
// Parameters:
//   - options: variadic list of AnimatorBuilderOption functions to configure the Animator
//
// Returns:
//   - Animator: a new instance of Animator
func NewAnimator(options ...AnimatorBuilderOption) Animator {
	a := &animator{
		maxBones: skeleton.DefaultMaxBones,
		logger:   log.Default(),
		speed:    1,
		loop:     true,
		warned:   make(map[string]bool),
	}
	for _, opt := range options {
		opt(a)
	}

	a.matrices = make([]mgl32.Mat4, a.maxBones)
	for i := range a.matrices {
		a.matrices[i] = mgl32.Ident4()
	}
	return a
}

func (a *animator) MaxBones() int {
	return a.maxBones
}

func (a *animator) Clip() *animation.Clip {
	return a.clip
}

func (a *animator) SetClip(c *animation.Clip) {
	a.clip = c
	a.time = 0
	a.finished = false
	a.blendClip = nil
	clear(a.warned)
}

func (a *animator) Update(dt float32) {
	if a.clip == nil {
		return
	}
	if math.IsNaN(float64(dt)) || math.IsInf(float64(dt), 0) {
		a.logger.Printf("animator: ignoring non-finite dt %g", dt)
		return
	}

	a.time, a.finished = a.advance(a.clip, a.time, dt)

	if a.blendClip != nil {
		a.blendTime, _ = a.advance(a.blendClip, a.blendTime, dt)
		a.blendElapsed += mgl32.Abs(dt)
		if a.blendElapsed >= a.blendDuration {
			a.clip, a.time = a.blendClip, a.blendTime
			a.blendClip = nil
			a.finished = false
			clear(a.warned)
		}
	}

	a.traverse()
}

// advance moves t by dt seconds of clip c and applies the loop or clamp policy.
// A clip of zero duration is never wrapped.
func (a *animator) advance(c *animation.Clip, t, dt float32) (float32, bool) {
	t += c.TicksPerSecond() * a.speed * dt
	return a.wrap(c, t)
}

func (a *animator) wrap(c *animation.Clip, t float32) (float32, bool) {
	d := c.Duration()
	if d <= 0 {
		return t, false
	}
	if a.loop {
		t = float32(math.Mod(float64(t), float64(d)))
		if t < 0 {
			t += d
		}
		if t >= d {
			t = 0
		}
		return t, false
	}
	switch {
	case t >= d:
		return d, a.speed > 0
	case t <= 0:
		return 0, a.speed < 0
	default:
		return t, false
	}
}

// traverse refreshes the bone buffer from the active clip at the current time.
// The hierarchy arena is stored depth-first with parents first, so one forward pass
// visits nodes in traversal order with every parent's global transform already known.
func (a *animator) traverse() {
	h := a.clip.Hierarchy()
	reg := a.clip.Registry()

	if cap(a.globals) < h.Len() {
		a.globals = make([]mgl32.Mat4, h.Len())
	}
	globals := a.globals[:h.Len()]

	h.Walk(func(i int, n skeleton.Node) {
		local := a.local(n)
		if n.Parent < 0 {
			globals[i] = local
		} else {
			globals[i] = globals[n.Parent].Mul4(local)
		}

		info, ok := reg.Lookup(n.Name)
		if !ok {
			return
		}
		if info.ID < 0 || info.ID >= len(a.matrices) {
			if !a.warned[n.Name] {
				a.warned[n.Name] = true
				a.logger.Printf("animator: bone %q has id %d outside the %d-bone buffer, skipping", n.Name, info.ID, len(a.matrices))
			}
			return
		}
		a.matrices[info.ID] = globals[i].Mul4(info.Offset)
	})
}

// local returns the node's local transform: the channel value when the clip animates the
// node, the bind pose otherwise, cross-faded with the target clip while blending.
func (a *animator) local(n skeleton.Node) mgl32.Mat4 {
	if a.blendClip == nil {
		if ch, ok := a.clip.FindChannel(n.Name); ok {
			return ch.Evaluate(a.time)
		}
		return n.Bind
	}

	from := pose(a.clip, a.time, n)
	to := pose(a.blendClip, a.blendTime, n)
	return animation.BlendPose(from, to, a.BlendProgress()).Matrix()
}

func pose(c *animation.Clip, t float32, n skeleton.Node) animation.Pose {
	if ch, ok := c.FindChannel(n.Name); ok {
		return ch.Sample(t)
	}
	return animation.PoseFromMatrix(n.Bind)
}

func (a *animator) BoneMatrices() []mgl32.Mat4 {
	return a.matrices
}

func (a *animator) Time() float32 {
	return a.time
}

func (a *animator) SetTime(ticks float32) {
	if a.clip == nil {
		a.time = ticks
		return
	}
	a.time, a.finished = a.wrap(a.clip, ticks)
}

func (a *animator) Speed() float32 {
	return a.speed
}

func (a *animator) SetSpeed(speed float32) {
	a.speed = speed
}

func (a *animator) Loop() bool {
	return a.loop
}

func (a *animator) SetLoop(loop bool) {
	a.loop = loop
	if loop {
		a.finished = false
	}
}

func (a *animator) Finished() bool {
	return a.finished
}

func (a *animator) BlendTo(c *animation.Clip, seconds float32) {
	if c == nil {
		return
	}
	if a.clip == nil || seconds <= 0 {
		a.SetClip(c)
		return
	}
	a.blendClip = c
	a.blendTime = 0
	a.blendDuration = seconds
	a.blendElapsed = 0
}

func (a *animator) IsBlending() bool {
	return a.blendClip != nil
}

func (a *animator) BlendProgress() float32 {
	if a.blendClip == nil {
		return 0
	}
	return min(a.blendElapsed/a.blendDuration, 1)
}

func (a *animator) CancelBlend() {
	a.blendClip = nil
}
