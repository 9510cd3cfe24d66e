package bone_buffer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-skel/engine/animator"
	"github.com/Carmen-Shannon/oxy-skel/engine/skeleton"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrInstanceOutOfRange is returned when staging into a slot past MaxInstances.
	ErrInstanceOutOfRange = errors.New("bone buffer instance out of range")

	// ErrTooManyBones is returned when an animator's buffer is larger than a slot.
	ErrTooManyBones = errors.New("animator bone buffer larger than slot")
)

// BufferWrite describes a single GPU buffer write at a binding and byte offset.
type BufferWrite struct {
	Binding int
	Offset  uint64
	Data    []byte
}

// boneBuffer is the implementation of the BoneBuffer interface.
type boneBuffer struct {
	mu sync.Mutex

	label                  string
	binding                int
	maxBones, maxInstances uint32

	// staging holds one reusable byte block per instance; wgpu copies on write so the
	// blocks can be refilled every frame.
	staging [][]byte
	staged  []bool

	stagedWriteData []BufferWrite

	buffer *wgpu.Buffer
}

// BoneBuffer packs the bone matrices of many animators into one GPU storage buffer.
//
// The buffer is split into MaxInstances slots of MaxBones mat4x4<f32> each, so a skinning
// shader finds bone id b of instance i at index i*MaxBones + b (see GPUBoneMatricesSource).
// Stage marshals an animator's matrices into its slot's staging block after the animator
// updates; Upload writes every staged block to the GPU.
type BoneBuffer interface {
	// Label returns the debug label of the GPU buffer.
	Label() string

	// Binding returns the bind group binding index the buffer is written to.
	Binding() int

	// MaxBones returns the number of matrices per instance slot.
	MaxBones() uint32

	// MaxInstances returns the number of instance slots.
	MaxInstances() uint32

	// Size returns the total buffer size in bytes.
	Size() uint64

	// InstanceOffset returns the byte offset of an instance slot.
	//
	// Parameters:
	//   - instance: the slot index
	//
	// Returns:
	//   - uint64: the slot's byte offset in the buffer
	InstanceOffset(instance uint32) uint64

	// Stage marshals the animator's current bone matrices into an instance slot and queues
	// a BufferWrite for it. Staging the same slot again before Upload refreshes the data
	// without queueing a second write.
	//
	// Parameters:
	//   - instance: the slot index
	//   - a: the animator whose BoneMatrices are staged
	//
	// Returns:
	//   - error: ErrInstanceOutOfRange or ErrTooManyBones
	Stage(instance uint32, a animator.Animator) error

	// StagedWriteData returns the queued writes and clears the queue.
	//
	// Returns:
	//   - []BufferWrite: the writes staged since the last call
	StagedWriteData() []BufferWrite

	// Init creates the GPU storage buffer on the device. Calling Init again releases the
	// previous buffer first.
	//
	// Parameters:
	//   - device: the wgpu device
	//
	// Returns:
	//   - error: error if buffer creation fails
	Init(device *wgpu.Device) error

	// Upload writes every staged block to the GPU buffer and clears the queue.
	// It does nothing before Init.
	//
	// Parameters:
	//   - queue: the device queue
	//
	// Returns:
	//   - int: the number of writes submitted
	Upload(queue *wgpu.Queue) int

	// Buffer returns the GPU buffer, or nil before Init.
	Buffer() *wgpu.Buffer

	// Release frees the GPU buffer.
	Release()
}

var _ BoneBuffer = &boneBuffer{}

// NewBoneBuffer creates a BoneBuffer with the provided options applied.
// Staging blocks are allocated after the options.
//
// Parameters:
//   - options: a variadic list of BoneBufferBuilderOption functions to configure the BoneBuffer
//
// Returns:
//   - BoneBuffer: a new bone buffer with no GPU resources yet
func NewBoneBuffer(options ...BoneBufferBuilderOption) BoneBuffer {
	b := &boneBuffer{
		label:        "Bone Matrices",
		maxBones:     skeleton.DefaultMaxBones,
		maxInstances: 1,
	}
	for _, opt := range options {
		opt(b)
	}

	b.staging = make([][]byte, b.maxInstances)
	for i := range b.staging {
		b.staging[i] = make([]byte, int(b.maxBones)*GPUBoneMatrixSize)
	}
	b.staged = make([]bool, b.maxInstances)
	b.stagedWriteData = make([]BufferWrite, 0, b.maxInstances)
	return b
}

func (b *boneBuffer) Label() string {
	return b.label
}

func (b *boneBuffer) Binding() int {
	return b.binding
}

func (b *boneBuffer) MaxBones() uint32 {
	return b.maxBones
}

func (b *boneBuffer) MaxInstances() uint32 {
	return b.maxInstances
}

func (b *boneBuffer) Size() uint64 {
	return uint64(b.maxInstances) * uint64(b.maxBones) * GPUBoneMatrixSize
}

func (b *boneBuffer) InstanceOffset(instance uint32) uint64 {
	return uint64(instance) * uint64(b.maxBones) * GPUBoneMatrixSize
}

func (b *boneBuffer) Stage(instance uint32, a animator.Animator) error {
	if instance >= b.maxInstances {
		return fmt.Errorf("%w: %d of %d", ErrInstanceOutOfRange, instance, b.maxInstances)
	}
	matrices := a.BoneMatrices()
	if len(matrices) > int(b.maxBones) {
		return fmt.Errorf("%w: %d bones into %d", ErrTooManyBones, len(matrices), b.maxBones)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	gpu := GPUBoneMatrices{Matrices: matrices}
	data := gpu.MarshalInto(b.staging[instance])

	if b.staged[instance] {
		return nil
	}
	b.staged[instance] = true
	b.stagedWriteData = append(b.stagedWriteData, BufferWrite{
		Binding: b.binding,
		Offset:  b.InstanceOffset(instance),
		Data:    data,
	})
	return nil
}

func (b *boneBuffer) StagedWriteData() []BufferWrite {
	b.mu.Lock()
	defer b.mu.Unlock()
	w := b.stagedWriteData
	b.stagedWriteData = b.stagedWriteData[:0]
	clear(b.staged)
	return w
}

func (b *boneBuffer) Init(device *wgpu.Device) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
	}

	buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            b.label,
		Size:             b.Size(),
		Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return fmt.Errorf("failed to create %s buffer: %w", b.label, err)
	}
	b.buffer = buf
	return nil
}

func (b *boneBuffer) Upload(queue *wgpu.Queue) int {
	b.mu.Lock()
	buf := b.buffer
	b.mu.Unlock()
	if buf == nil {
		return 0
	}

	writes := b.StagedWriteData()
	for _, w := range writes {
		queue.WriteBuffer(buf, w.Offset, w.Data)
	}
	return len(writes)
}

func (b *boneBuffer) Buffer() *wgpu.Buffer {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer
}

func (b *boneBuffer) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
	}
}
