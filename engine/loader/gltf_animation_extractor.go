package loader

import (
	"fmt"
	"log"

	"github.com/Carmen-Shannon/oxy-skel/engine/animation"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

// gltfAnimationExtractorImpl is the implementation of the gltfAnimationExtractor interface.
type gltfAnimationExtractorImpl struct {
	parser gltfParser
	scene  gltfSceneExtractor
	logger *log.Logger
}

// gltfAnimationExtractor converts glTF animations into animation.ClipSource values.
//
// Channels are grouped per target node into one RawChannel named after the node. glTF
// keys are in seconds, so clips use one tick per second and the duration is the latest
// key time across all samplers. A node animated on only some of its paths gets a single
// key holding its rest value on the others, so every track has at least one key.
type gltfAnimationExtractor interface {
	// ExtractAnimation extracts a single animation by index.
	//
	// Parameters:
	//   - animIndex: the index of the animation in the document
	//
	// Returns:
	//   - animation.ClipSource: the extracted clip source
	//   - error: error if a sampler or accessor is invalid
	ExtractAnimation(animIndex int) (animation.ClipSource, error)

	// ExtractAnimationsForSkin extracts the animations that target at least one joint of a skin.
	//
	// Parameters:
	//   - skinIndex: the skin whose joints select the animations
	//
	// Returns:
	//   - []animation.ClipSource: the matching clip sources in document order
	//   - error: error if extraction fails
	ExtractAnimationsForSkin(skinIndex int) ([]animation.ClipSource, error)

	// ExtractAllAnimations extracts every animation in document order.
	ExtractAllAnimations() ([]animation.ClipSource, error)
}

var _ gltfAnimationExtractor = &gltfAnimationExtractorImpl{}

// newGLTFAnimationExtractor creates a new animation extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//   - scene: the scene extractor used for node naming and rest transforms
//   - logger: receives notices about skipped channels
//
// Returns:
//   - gltfAnimationExtractor: the animation extractor
func newGLTFAnimationExtractor(parser gltfParser, scene gltfSceneExtractor, logger *log.Logger) gltfAnimationExtractor {
	return &gltfAnimationExtractorImpl{parser: parser, scene: scene, logger: logger}
}

func (e *gltfAnimationExtractorImpl) ExtractAnimation(animIndex int) (animation.ClipSource, error) {
	doc := e.parser.Document()
	if doc == nil {
		return animation.ClipSource{}, errNoDocument
	}
	if animIndex < 0 || animIndex >= len(doc.Animations) {
		return animation.ClipSource{}, fmt.Errorf("animation index %d out of range", animIndex)
	}
	anim := doc.Animations[animIndex]

	name := anim.Name
	if name == "" {
		name = fmt.Sprintf("animation_%d", animIndex)
	}

	// channels keeps first-appearance order of target nodes so output is deterministic.
	var order []int
	channels := make(map[int]*animation.RawChannel)

	var maxTime float32

	for i, ch := range anim.Channels {
		if ch.Target.Node == nil {
			continue
		}
		nodeIndex := *ch.Target.Node
		if nodeIndex < 0 || nodeIndex >= len(doc.Nodes) {
			return animation.ClipSource{}, fmt.Errorf("animation %q channel %d: node index %d out of range: %w", name, i, nodeIndex, ErrInvalidDocument)
		}
		if ch.Target.Path == gltf.TRSWeights {
			e.logger.Printf("loader: animation %q channel %d: morph weights are not supported, skipping", name, i)
			continue
		}

		if ch.Sampler < 0 || ch.Sampler >= len(anim.Samplers) {
			return animation.ClipSource{}, fmt.Errorf("animation %q channel %d: invalid sampler index %d: %w", name, i, ch.Sampler, ErrInvalidDocument)
		}
		sampler := anim.Samplers[ch.Sampler]

		timestamps, err := e.parser.ReadScalarAccessor(sampler.Input)
		if err != nil {
			return animation.ClipSource{}, fmt.Errorf("animation %q channel %d: failed to read timestamps: %w", name, i, err)
		}
		if len(timestamps) > 0 {
			maxTime = max(maxTime, timestamps[len(timestamps)-1])
		}

		stride := 1
		switch sampler.Interpolation {
		case gltf.InterpolationCubicSpline:
			// Output holds in-tangent, value, out-tangent per key; tangents are dropped.
			stride = 3
		case gltf.InterpolationStep:
			e.logger.Printf("loader: animation %q channel %d: STEP interpolation is played back linearly", name, i)
		}

		raw, ok := channels[nodeIndex]
		if !ok {
			raw = &animation.RawChannel{Name: e.scene.NodeName(nodeIndex)}
			channels[nodeIndex] = raw
			order = append(order, nodeIndex)
		}

		switch ch.Target.Path {
		case gltf.TRSTranslation, gltf.TRSScale:
			values, err := e.parser.ReadVec3Accessor(sampler.Output)
			if err != nil {
				return animation.ClipSource{}, fmt.Errorf("animation %q channel %d: failed to read %s values: %w", name, i, pathName(ch.Target.Path), err)
			}
			keys := vectorKeys(timestamps, values, stride)
			if ch.Target.Path == gltf.TRSTranslation {
				raw.Positions = keys
			} else {
				raw.Scales = keys
			}

		case gltf.TRSRotation:
			values, err := e.parser.ReadQuatAccessor(sampler.Output)
			if err != nil {
				return animation.ClipSource{}, fmt.Errorf("animation %q channel %d: failed to read rotation values: %w", name, i, err)
			}
			keys := make([]animation.Keyframe[mgl32.Quat], min(len(timestamps), len(values)/stride))
			for j := range keys {
				keys[j] = animation.Keyframe[mgl32.Quat]{Time: timestamps[j], Value: values[j*stride+stride/2]}
			}
			raw.Rotations = keys
		}
	}

	src := animation.ClipSource{
		Name:           name,
		Duration:       maxTime,
		TicksPerSecond: 1,
		Channels:       make([]animation.RawChannel, 0, len(order)),
	}
	for _, nodeIndex := range order {
		raw := channels[nodeIndex]
		e.fillRest(raw, nodeIndex)
		src.Channels = append(src.Channels, *raw)
	}
	return src, nil
}

// fillRest gives every empty track of raw a single key at time 0 holding the node's rest value.
func (e *gltfAnimationExtractorImpl) fillRest(raw *animation.RawChannel, nodeIndex int) {
	if len(raw.Positions) > 0 && len(raw.Rotations) > 0 && len(raw.Scales) > 0 {
		return
	}
	rest := animation.PoseFromMatrix(e.scene.LocalTransform(nodeIndex))
	if len(raw.Positions) == 0 {
		raw.Positions = []animation.Keyframe[mgl32.Vec3]{{Value: rest.Translation}}
	}
	if len(raw.Rotations) == 0 {
		raw.Rotations = []animation.Keyframe[mgl32.Quat]{{Value: rest.Rotation}}
	}
	if len(raw.Scales) == 0 {
		raw.Scales = []animation.Keyframe[mgl32.Vec3]{{Value: rest.Scale}}
	}
}

func (e *gltfAnimationExtractorImpl) ExtractAnimationsForSkin(skinIndex int) ([]animation.ClipSource, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}
	if skinIndex < 0 || skinIndex >= len(doc.Skins) {
		return nil, fmt.Errorf("skin index %d out of range", skinIndex)
	}

	joints := make(map[int]bool)
	for _, j := range doc.Skins[skinIndex].Joints {
		joints[j] = true
	}

	var clips []animation.ClipSource
	for animIdx, anim := range doc.Animations {
		relevant := false
		for _, ch := range anim.Channels {
			if ch.Target.Node != nil && joints[*ch.Target.Node] {
				relevant = true
				break
			}
		}
		if !relevant {
			continue
		}

		clip, err := e.ExtractAnimation(animIdx)
		if err != nil {
			return nil, err
		}
		clips = append(clips, clip)
	}
	return clips, nil
}

func (e *gltfAnimationExtractorImpl) ExtractAllAnimations() ([]animation.ClipSource, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}

	clips := make([]animation.ClipSource, len(doc.Animations))
	for i := range doc.Animations {
		clip, err := e.ExtractAnimation(i)
		if err != nil {
			return nil, err
		}
		clips[i] = clip
	}
	return clips, nil
}

func vectorKeys(timestamps []float32, values []mgl32.Vec3, stride int) []animation.Keyframe[mgl32.Vec3] {
	keys := make([]animation.Keyframe[mgl32.Vec3], min(len(timestamps), len(values)/stride))
	for j := range keys {
		keys[j] = animation.Keyframe[mgl32.Vec3]{Time: timestamps[j], Value: values[j*stride+stride/2]}
	}
	return keys
}

func pathName(p gltf.TRSProperty) string {
	switch p {
	case gltf.TRSTranslation:
		return "translation"
	case gltf.TRSScale:
		return "scale"
	case gltf.TRSRotation:
		return "rotation"
	default:
		return "weights"
	}
}
