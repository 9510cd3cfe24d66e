package ticker

import (
	"sync"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Ticker is a clock that reports the seconds elapsed between successive calls.
// The first Tick starts the clock and returns 0.
type Ticker interface {
	// Tick returns the seconds since the previous Tick.
	//
	// Returns:
	//   - float32: the elapsed time in seconds
	Tick() float32
}

// timeTicker measures elapsed time with the monotonic wall clock.
type timeTicker struct {
	last    time.Time
	started bool
}

var _ Ticker = &timeTicker{}

// NewTimeTicker creates a Ticker backed by time.Now.
//
// Returns:
//   - Ticker: a wall-clock ticker
func NewTimeTicker() Ticker {
	return &timeTicker{}
}

func (t *timeTicker) Tick() float32 {
	now := time.Now()
	if !t.started {
		t.started = true
		t.last = now
		return 0
	}
	dt := float32(now.Sub(t.last).Seconds())
	t.last = now
	return dt
}

// glfwTicker measures elapsed time with the GLFW timer.
type glfwTicker struct {
	last    float64
	started bool
}

var _ Ticker = &glfwTicker{}

// NewGLFWTicker creates a Ticker backed by glfw.GetTime, so animation time follows the same
// clock as the window's frame loop. The caller owns glfw.Init and glfw.Terminate.
//
// Returns:
//   - Ticker: a GLFW-clock ticker
func NewGLFWTicker() Ticker {
	return &glfwTicker{}
}

func (t *glfwTicker) Tick() float32 {
	now := glfw.GetTime()
	if !t.started {
		t.started = true
		t.last = now
		return 0
	}
	dt := float32(now - t.last)
	t.last = now
	return dt
}

// ManualTicker returns a fixed step on every Tick. It drives deterministic playback and tests.
type ManualTicker struct {
	mu    sync.Mutex
	step  float32
	ticks int
}

var _ Ticker = &ManualTicker{}

// NewManualTicker creates a ManualTicker that advances by step seconds per Tick.
// Unlike the clock tickers, its first Tick already returns step.
//
// Parameters:
//   - step: the seconds returned by each Tick
//
// Returns:
//   - *ManualTicker: the ticker
func NewManualTicker(step float32) *ManualTicker {
	return &ManualTicker{step: step}
}

func (t *ManualTicker) Tick() float32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ticks++
	return t.step
}

// SetStep changes the seconds returned by subsequent ticks.
func (t *ManualTicker) SetStep(step float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.step = step
}

// Ticks returns how many times Tick has been called.
func (t *ManualTicker) Ticks() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ticks
}
