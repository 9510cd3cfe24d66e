package animation

import "log"

// ClipBuilderOption is a functional option for configuring a Clip via NewClip.
type ClipBuilderOption func(*Clip)

// WithLogger is an option builder that sets the logger used for load warnings
// (orphaned channels, duplicate channels, defaulted tick rate).
//
// Parameters:
//   - l: the logger; nil keeps log.Default()
//
// Returns:
//   - ClipBuilderOption: a function that applies the logger option to a clip
func WithLogger(l *log.Logger) ClipBuilderOption {
	return func(c *Clip) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDefaultTicksPerSecond is an option builder that sets the tick rate used when the
// source declares none. Values <= 0 are ignored.
//
// Parameters:
//   - tps: the fallback ticks per second
//
// Returns:
//   - ClipBuilderOption: a function that applies the tick rate option to a clip
func WithDefaultTicksPerSecond(tps float32) ClipBuilderOption {
	return func(c *Clip) {
		if tps > 0 {
			c.defaultTPS = tps
		}
	}
}
