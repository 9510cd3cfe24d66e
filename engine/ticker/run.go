package ticker

import (
	"context"
	"time"

	"github.com/Carmen-Shannon/oxy-skel/engine/profiler"
)

// DefaultRate is the update rate used when Run is given a non-positive rate.
const DefaultRate = 60.0

// runConfig holds the optional settings of a Run loop.
type runConfig struct {
	profiler *profiler.Profiler
}

// RunOption is a functional option for configuring Run.
type RunOption func(*runConfig)

// WithProfiler reports the loop's update rate and memory use through p after every update.
//
// Parameters:
//   - p: the profiler to tick
//
// Returns:
//   - RunOption: option function to apply
func WithProfiler(p *profiler.Profiler) RunOption {
	return func(c *runConfig) {
		c.profiler = p
	}
}

// Run calls fn at the given rate, passing the seconds t reports since the previous call,
// until ctx is cancelled. With a clock ticker the first call receives 0. The wall clock
// only paces the loop; dt always comes from t, so a ManualTicker yields fixed-step
// playback regardless of scheduling jitter.
//
// Parameters:
//   - ctx: cancels the loop
//   - t: the clock that supplies dt
//   - rate: updates per second; values <= 0 use DefaultRate
//   - fn: the update callback
//   - options: functional options for the loop
//
// Returns:
//   - error: ctx.Err() once the loop stops
func Run(ctx context.Context, t Ticker, rate float64, fn func(dt float32), options ...RunOption) error {
	cfg := &runConfig{}
	for _, opt := range options {
		opt(cfg)
	}

	if rate <= 0 {
		rate = DefaultRate
	}
	clock := time.NewTicker(time.Duration(float64(time.Second) / rate))
	defer clock.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clock.C:
			fn(t.Tick())
			if cfg.profiler != nil {
				cfg.profiler.Tick()
			}
		}
	}
}
