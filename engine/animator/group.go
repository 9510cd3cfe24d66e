package animator

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// Group updates many animators in parallel, one worker task per animator.
// Each animator drives its own skeleton instance, so tasks never share mutable state.
// Clips must not be loaded against a registry used by the group while Update runs.
type Group struct {
	mu        sync.Mutex
	workers   int
	queueSize int
	animators []Animator
	members   map[Animator]struct{}
	pool      worker.DynamicWorkerPool
	closed    bool
}

// NewGroup creates an empty Group with the provided options applied.
// The worker pool is created after the options so WithWorkers can override the default.
//
// Parameters:
//   - options: a variadic list of GroupBuilderOption functions to configure the Group
//
// Returns:
//   - *Group: a new group
func NewGroup(options ...GroupBuilderOption) *Group {
	g := &Group{
		workers:   max(runtime.NumCPU()-1, 1),
		queueSize: 256,
		members:   make(map[Animator]struct{}),
	}
	for _, opt := range options {
		opt(g)
	}
	g.pool = worker.NewDynamicWorkerPool(g.workers, g.queueSize, 1*time.Second)
	return g
}

// Add registers an animator with the group. An animator already in the group is not added
// again, so it is updated by exactly one task per frame.
//
// Parameters:
//   - a: the animator to add
//
// Returns:
//   - bool: true if the animator was added, false if it was nil or already present
func (g *Group) Add(a Animator) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if a == nil {
		return false
	}
	if _, ok := g.members[a]; ok {
		return false
	}
	g.members[a] = struct{}{}
	g.animators = append(g.animators, a)
	return true
}

// Remove unregisters an animator. It reports whether the animator was found.
func (g *Group) Remove(a Animator) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.members[a]; !ok {
		return false
	}
	delete(g.members, a)
	for i, other := range g.animators {
		if other == a {
			g.animators = append(g.animators[:i], g.animators[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of animators in the group.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.animators)
}

// Close stops the worker pool. Update is a no-op on a closed group.
func (g *Group) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.closed = true
	g.pool.Stop()
}

// Update advances every animator by dt and returns once all of them have refreshed their
// bone buffers. Animators without a clip are skipped.
//
// Parameters:
//   - dt: elapsed time since the last update in seconds
func (g *Group) Update(dt float32) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	animators := make([]Animator, len(g.animators))
	copy(animators, g.animators)
	g.mu.Unlock()

	// pool.Wait blocks until workers idle-exit, so a WaitGroup is the per-frame barrier.
	var wg sync.WaitGroup
	for id, a := range animators {
		if a.Clip() == nil {
			continue
		}
		wg.Add(1)
		g.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				a.Update(dt)
				return nil, nil
			},
		})
	}
	wg.Wait()
}
