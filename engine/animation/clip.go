package animation

import (
	"fmt"
	"log"
	"math"

	"github.com/Carmen-Shannon/oxy-skel/engine/skeleton"
)

// DefaultTicksPerSecond is used for clips whose source declares no tick rate.
const DefaultTicksPerSecond float32 = 25

// ClipSource is the raw animation source for one clip.
type ClipSource struct {
	// Name is the animation identifier.
	Name string

	// Duration is the clip length in ticks.
	Duration float32

	// TicksPerSecond converts ticks to seconds. Values <= 0 select the clip's default rate.
	TicksPerSecond float32

	// Channels holds one raw channel per animated bone.
	Channels []RawChannel
}

// Clip binds a skeleton hierarchy and bone registry to the channels of one animation.
// It is immutable after construction, apart from the shared registry it references.
type Clip struct {
	name           string
	duration       float32
	ticksPerSecond float32
	defaultTPS     float32

	hierarchy *skeleton.Hierarchy
	registry  *skeleton.Registry

	channels map[string]*BoneChannel
	ordered  []*BoneChannel
	orphans  []string

	logger *log.Logger
}

// NewClip builds a Clip from src against a hierarchy and a shared registry.
//
// Every channel bone missing from registry is allocated the next id, so loading several
// clips against one registry gives shared bone names identical ids. Allocation is
// all-or-nothing: on error the registry is left untouched. Channels whose bone has no
// node in the hierarchy are kept but never visited during playback; they are logged and
// listed by Orphans.
//
// Parameters:
//   - src: the raw clip data
//   - hierarchy: the node tree the clip animates
//   - registry: the bone registry shared by all clips of the skeleton
//   - options: a variadic list of ClipBuilderOption functions to configure the Clip
//
// Returns:
//   - *Clip: the loaded clip
//   - error: ErrNilHierarchy, ErrNilRegistry, ErrInvalidDuration, ErrMalformedTrack or skeleton.ErrCapacityExceeded
func NewClip(src ClipSource, hierarchy *skeleton.Hierarchy, registry *skeleton.Registry, options ...ClipBuilderOption) (*Clip, error) {
	if hierarchy == nil {
		return nil, ErrNilHierarchy
	}
	if registry == nil {
		return nil, ErrNilRegistry
	}

	c := &Clip{
		name:       src.Name,
		duration:   src.Duration,
		defaultTPS: DefaultTicksPerSecond,
		hierarchy:  hierarchy,
		registry:   registry,
		channels:   make(map[string]*BoneChannel, len(src.Channels)),
		logger:     log.Default(),
	}
	for _, opt := range options {
		opt(c)
	}

	d := float64(src.Duration)
	if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return nil, fmt.Errorf("clip %q: %w: %g", src.Name, ErrInvalidDuration, src.Duration)
	}

	c.ticksPerSecond = src.TicksPerSecond
	if c.ticksPerSecond <= 0 {
		c.ticksPerSecond = c.defaultTPS
		c.logger.Printf("animation: clip %q declares no tick rate, using %g ticks per second", src.Name, c.ticksPerSecond)
	}

	// Build every track before touching the registry so a malformed channel leaves it unchanged.
	newBones := 0
	pending := make(map[string]bool)
	for _, raw := range src.Channels {
		if _, dup := c.channels[raw.Name]; dup {
			c.logger.Printf("animation: clip %q has a second channel for bone %q, keeping the first", src.Name, raw.Name)
			continue
		}
		ch, err := NewBoneChannel(raw, -1)
		if err != nil {
			return nil, fmt.Errorf("clip %q: %w", src.Name, err)
		}
		c.channels[raw.Name] = ch
		c.ordered = append(c.ordered, ch)

		if _, known := registry.Lookup(raw.Name); !known && !pending[raw.Name] {
			pending[raw.Name] = true
			newBones++
		}
	}
	if free := registry.Capacity() - registry.Len(); newBones > free {
		return nil, fmt.Errorf("clip %q: %w: %d new bones, %d ids free", src.Name, skeleton.ErrCapacityExceeded, newBones, free)
	}

	for _, ch := range c.ordered {
		info, err := registry.Ensure(ch.name)
		if err != nil {
			return nil, fmt.Errorf("clip %q: %w", src.Name, err)
		}
		ch.id = info.ID

		if _, ok := hierarchy.Find(ch.name); !ok {
			c.orphans = append(c.orphans, ch.name)
			c.logger.Printf("animation: clip %q channel %q: %v", src.Name, ch.name, ErrUnresolvedBone)
		}
	}

	return c, nil
}

// Name returns the clip name.
func (c *Clip) Name() string {
	return c.name
}

// Duration returns the clip length in ticks.
func (c *Clip) Duration() float32 {
	return c.duration
}

// TicksPerSecond returns the tick rate used to advance playback.
func (c *Clip) TicksPerSecond() float32 {
	return c.ticksPerSecond
}

// DurationSeconds returns the clip length in seconds.
func (c *Clip) DurationSeconds() float32 {
	return c.duration / c.ticksPerSecond
}

// Hierarchy returns the node tree the clip animates.
func (c *Clip) Hierarchy() *skeleton.Hierarchy {
	return c.hierarchy
}

// Registry returns the shared bone registry.
func (c *Clip) Registry() *skeleton.Registry {
	return c.registry
}

// FindChannel returns the channel animating the named bone. Hierarchy nodes without a
// channel, such as decoration nodes, report false.
//
// Parameters:
//   - name: the bone name
//
// Returns:
//   - *BoneChannel: the channel, or nil
//   - bool: true if the clip animates the bone
func (c *Clip) FindChannel(name string) (*BoneChannel, bool) {
	ch, ok := c.channels[name]
	return ch, ok
}

// Channels returns the clip's channels in source order.
func (c *Clip) Channels() []*BoneChannel {
	out := make([]*BoneChannel, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Orphans returns the names of channel bones that have no node in the hierarchy.
func (c *Clip) Orphans() []string {
	out := make([]string, len(c.orphans))
	copy(out, c.orphans)
	return out
}
