package bone_buffer

// BoneBufferBuilderOption is a functional option for configuring a BoneBuffer via NewBoneBuffer.
type BoneBufferBuilderOption func(*boneBuffer)

// WithLabel is an option builder that sets the debug label of the GPU buffer.
//
// Parameters:
//   - label: the buffer label
//
// Returns:
//   - BoneBufferBuilderOption: a function that applies the label option to a bone buffer
func WithLabel(label string) BoneBufferBuilderOption {
	return func(b *boneBuffer) {
		b.label = label
	}
}

// WithBinding is an option builder that sets the bind group binding index of the buffer.
//
// Parameters:
//   - binding: the binding index
//
// Returns:
//   - BoneBufferBuilderOption: a function that applies the binding option to a bone buffer
func WithBinding(binding int) BoneBufferBuilderOption {
	return func(b *boneBuffer) {
		b.binding = binding
	}
}

// WithMaxBones is an option builder that sets the number of matrices per instance slot.
// It should match the animators' MaxBones. Zero is ignored.
func WithMaxBones(maxBones uint32) BoneBufferBuilderOption {
	return func(b *boneBuffer) {
		if maxBones > 0 {
			b.maxBones = maxBones
		}
	}
}

// WithMaxInstances is an option builder that sets the number of instance slots. Zero is ignored.
func WithMaxInstances(maxInstances uint32) BoneBufferBuilderOption {
	return func(b *boneBuffer) {
		if maxInstances > 0 {
			b.maxInstances = maxInstances
		}
	}
}
