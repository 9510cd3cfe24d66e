package animation

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func staticChannel(name string, pos mgl32.Vec3, rot mgl32.Quat, scale mgl32.Vec3) RawChannel {
	return RawChannel{
		Name:      name,
		Positions: []Keyframe[mgl32.Vec3]{{Time: 0, Value: pos}},
		Rotations: []Keyframe[mgl32.Quat]{{Time: 0, Value: rot}},
		Scales:    []Keyframe[mgl32.Vec3]{{Time: 0, Value: scale}},
	}
}

func absEqual(a, b float32) bool {
	return mgl32.Abs(a-b) < eps
}

func TestBoneChannelTRSOrder(t *testing.T) {
	rot := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1})
	ch, err := NewBoneChannel(staticChannel("arm", mgl32.Vec3{1, 2, 3}, rot, mgl32.Vec3{2, 2, 2}), 7)
	if err != nil {
		t.Fatalf("NewBoneChannel: %v", err)
	}
	want := mgl32.Translate3D(1, 2, 3).Mul4(rot.Mat4()).Mul4(mgl32.Scale3D(2, 2, 2))
	// Rotation keys are normalised, which shifts the zero entries by float noise.
	if got := ch.Evaluate(0); !got.ApproxFuncEqual(want, absEqual) {
		t.Errorf("Evaluate: have %v, want %v", got, want)
	}

	// The local x axis is scaled first, then rotated onto +y, then translated.
	p := ch.Evaluate(0).Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	if !p.Vec3().ApproxEqualThreshold(mgl32.Vec3{1, 4, 3}, 1e-4) {
		t.Errorf("transformed point: have %v, want (1, 4, 3)", p)
	}
	if ch.Name() != "arm" || ch.ID() != 7 {
		t.Errorf("accessors: %s %d", ch.Name(), ch.ID())
	}
}

func TestBoneChannelIndependentTimestamps(t *testing.T) {
	raw := RawChannel{
		Name: "leg",
		Positions: []Keyframe[mgl32.Vec3]{
			{Time: 0, Value: mgl32.Vec3{0, 0, 0}},
		},
		Rotations: []Keyframe[mgl32.Quat]{
			{Time: 0, Value: mgl32.QuatIdent()},
			{Time: 2, Value: mgl32.QuatIdent()},
		},
		Scales: []Keyframe[mgl32.Vec3]{
			{Time: 0, Value: mgl32.Vec3{1, 1, 1}},
			{Time: 8, Value: mgl32.Vec3{3, 3, 3}},
		},
	}
	ch, err := NewBoneChannel(raw, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Scale uses its own keys: halfway between 0 and 8, not clamped at the rotation's last key.
	if got := ch.Sample(4).Scale; !got.ApproxEqualThreshold(mgl32.Vec3{2, 2, 2}, eps) {
		t.Errorf("scale at 4: have %v, want (2, 2, 2)", got)
	}
	if d := ch.Duration(); d != 8 {
		t.Errorf("Duration: have %g, want 8", d)
	}
}

func TestBoneChannelMalformed(t *testing.T) {
	base := staticChannel("spine", mgl32.Vec3{}, mgl32.QuatIdent(), mgl32.Vec3{1, 1, 1})
	tests := []struct {
		name   string
		mutate func(*RawChannel)
	}{
		{"positions", func(r *RawChannel) { r.Positions = nil }},
		{"rotations", func(r *RawChannel) { r.Rotations = nil }},
		{"scales", func(r *RawChannel) { r.Scales = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := base
			tt.mutate(&raw)
			if _, err := NewBoneChannel(raw, 0); !errors.Is(err, ErrMalformedTrack) {
				t.Errorf("have %v, want ErrMalformedTrack", err)
			}
		})
	}
}

func TestPoseRoundTrip(t *testing.T) {
	p := Pose{
		Translation: mgl32.Vec3{1, -2, 3},
		Rotation:    mgl32.QuatRotate(mgl32.DegToRad(35), mgl32.Vec3{1, 2, 3}.Normalize()),
		Scale:       mgl32.Vec3{1, 2, 0.5},
	}
	got := PoseFromMatrix(p.Matrix())
	if !got.Translation.ApproxEqualThreshold(p.Translation, 1e-4) ||
		!got.Scale.ApproxEqualThreshold(p.Scale, 1e-4) ||
		!sameRotation(got.Rotation, p.Rotation) {
		t.Errorf("PoseFromMatrix: have %+v, want %+v", got, p)
	}
}

func TestBlendPose(t *testing.T) {
	a := Pose{Translation: mgl32.Vec3{0, 0, 0}, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
	b := Pose{Translation: mgl32.Vec3{2, 0, 0}, Rotation: mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}), Scale: mgl32.Vec3{3, 3, 3}}
	got := BlendPose(a, b, 0.5)
	if !got.Translation.ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, eps) || !got.Scale.ApproxEqualThreshold(mgl32.Vec3{2, 2, 2}, eps) {
		t.Errorf("BlendPose: %+v", got)
	}
	want := mgl32.QuatRotate(mgl32.DegToRad(45), mgl32.Vec3{0, 1, 0})
	if !sameRotation(got.Rotation, want) {
		t.Errorf("BlendPose rotation: have %v, want %v", got.Rotation, want)
	}
}
