package animator

// GroupBuilderOption is a functional option for configuring a Group via NewGroup.
type GroupBuilderOption func(*Group)

// WithWorkers is an option builder that sets the number of workers updating animators.
// Values <= 0 keep the default of one worker per CPU minus one.
//
// Parameters:
//   - workers: the worker count
//
// Returns:
//   - GroupBuilderOption: a function that applies the workers option to a group
func WithWorkers(workers int) GroupBuilderOption {
	return func(g *Group) {
		if workers > 0 {
			g.workers = workers
		}
	}
}

// WithQueueSize is an option builder that sets the task queue size of the worker pool.
// Values <= 0 are ignored.
func WithQueueSize(size int) GroupBuilderOption {
	return func(g *Group) {
		if size > 0 {
			g.queueSize = size
		}
	}
}
