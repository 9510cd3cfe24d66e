package skeleton

// RegistryBuilderOption is a functional option for configuring a Registry via NewRegistry.
type RegistryBuilderOption func(*Registry)

// WithCapacity is an option builder that sets the maximum number of bone ids the Registry
// will allocate. It should not exceed the bone buffer capacity of the animators fed by
// clips built against the registry. Values <= 0 are treated as DefaultMaxBones.
//
// Parameters:
//   - capacity: the maximum bone count
//
// Returns:
//   - RegistryBuilderOption: a function that applies the capacity option to a registry
func WithCapacity(capacity int) RegistryBuilderOption {
	return func(r *Registry) {
		if capacity <= 0 {
			capacity = DefaultMaxBones
		}
		r.capacity = capacity
	}
}
