package animator

import (
	"bytes"
	"io"
	"log"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-skel/engine/animation"
	"github.com/Carmen-Shannon/oxy-skel/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
)

const eps = 1e-4

var quietLog = log.New(io.Discard, "", 0)

func posKeys(pairs ...float32) []animation.Keyframe[mgl32.Vec3] {
	var keys []animation.Keyframe[mgl32.Vec3]
	for i := 0; i < len(pairs); i += 2 {
		keys = append(keys, animation.Keyframe[mgl32.Vec3]{Time: pairs[i], Value: mgl32.Vec3{pairs[i+1], 0, 0}})
	}
	return keys
}

func slideChannel(name string, pairs ...float32) animation.RawChannel {
	return animation.RawChannel{
		Name:      name,
		Positions: posKeys(pairs...),
		Rotations: []animation.Keyframe[mgl32.Quat]{{Time: 0, Value: mgl32.QuatIdent()}},
		Scales:    []animation.Keyframe[mgl32.Vec3]{{Time: 0, Value: mgl32.Vec3{1, 1, 1}}},
	}
}

type fixture struct {
	hierarchy *skeleton.Hierarchy
	registry  *skeleton.Registry
}

func newFixture(t *testing.T, root skeleton.NodeData) fixture {
	t.Helper()
	h, err := skeleton.BuildHierarchy(root)
	if err != nil {
		t.Fatalf("BuildHierarchy: %v", err)
	}
	return fixture{hierarchy: h, registry: skeleton.NewRegistry()}
}

func (f fixture) clip(t *testing.T, src animation.ClipSource) *animation.Clip {
	t.Helper()
	c, err := animation.NewClip(src, f.hierarchy, f.registry, animation.WithLogger(quietLog))
	if err != nil {
		t.Fatalf("NewClip: %v", err)
	}
	return c
}

func simpleFixture(t *testing.T) (fixture, *animation.Clip) {
	f := newFixture(t, skeleton.NodeData{
		Name:     "root",
		Children: []skeleton.NodeData{{Name: "A"}},
	})
	c := f.clip(t, animation.ClipSource{
		Name:           "slide",
		Duration:       10,
		TicksPerSecond: 10,
		Channels:       []animation.RawChannel{slideChannel("A", 0, 0, 10, 10)},
	})
	return f, c
}

func TestAnimatorEndToEnd(t *testing.T) {
	f, c := simpleFixture(t)
	offset := mgl32.Translate3D(0, -1, 0)
	if _, err := f.registry.Register("A", offset); err != nil {
		t.Fatal(err)
	}

	a := NewAnimator(WithClip(c), WithLogger(quietLog))
	a.Update(0.5)

	if a.Time() != 5 {
		t.Fatalf("Time: have %g, want 5", a.Time())
	}
	info, _ := f.registry.Lookup("A")
	want := mgl32.Ident4().Mul4(mgl32.Translate3D(5, 0, 0)).Mul4(offset)
	if got := a.BoneMatrices()[info.ID]; !got.ApproxEqualThreshold(want, eps) {
		t.Errorf("bone A: have %v, want %v", got, want)
	}
}

func TestAnimatorNoClipIsNoop(t *testing.T) {
	a := NewAnimator(WithMaxBones(4))
	a.Update(1)
	if a.Time() != 0 || len(a.BoneMatrices()) != 4 {
		t.Fatalf("no-clip update changed state: time %g, len %d", a.Time(), len(a.BoneMatrices()))
	}
	for i, m := range a.BoneMatrices() {
		if m != mgl32.Ident4() {
			t.Errorf("slot %d: have %v, want identity", i, m)
		}
	}
}

func TestAnimatorLoopsToZero(t *testing.T) {
	_, c := simpleFixture(t)
	a := NewAnimator(WithClip(c))
	for range 4 {
		a.Update(0.25)
	}
	if got := a.Time(); mgl32.Abs(got) > eps && mgl32.Abs(got-c.Duration()) > eps {
		t.Errorf("after one duration: time %g, want 0", got)
	}

	a.Update(1.35)
	if got := a.Time(); mgl32.Abs(got-3.5) > eps {
		t.Errorf("wrapped time: have %g, want 3.5", got)
	}
}

func TestAnimatorDeterministic(t *testing.T) {
	f := newFixture(t, skeleton.NodeData{
		Name: "root",
		Children: []skeleton.NodeData{
			{Name: "hip", Transform: mgl32.Translate3D(0, 1, 0), Children: []skeleton.NodeData{
				{Name: "spine", Transform: mgl32.Translate3D(0, 1, 0)},
				{Name: "leg", Transform: mgl32.Translate3D(0, -1, 0)},
			}},
		},
	})
	c := f.clip(t, animation.ClipSource{
		Duration:       4,
		TicksPerSecond: 1,
		Channels: []animation.RawChannel{
			slideChannel("hip", 0, 0, 4, 2),
			slideChannel("spine", 0, 1, 2, -1, 4, 1),
		},
	})
	if _, err := f.registry.Ensure("leg"); err != nil {
		t.Fatal(err)
	}

	a := NewAnimator(WithClip(c))
	a.SetTime(1.3)
	a.Update(0)
	first := append([]mgl32.Mat4(nil), a.BoneMatrices()...)
	a.SetTime(1.3)
	a.Update(0)
	for i := range first {
		if first[i] != a.BoneMatrices()[i] {
			t.Fatalf("slot %d differs between identical traversals", i)
		}
	}
}

func TestAnimatorBindPosePassthrough(t *testing.T) {
	f := newFixture(t, skeleton.NodeData{
		Name:      "root",
		Transform: mgl32.Translate3D(0, 0, 1),
		Children: []skeleton.NodeData{
			{Name: "hip", Transform: mgl32.Translate3D(0, 2, 0), Children: []skeleton.NodeData{
				{Name: "hand", Transform: mgl32.Translate3D(3, 0, 0)},
			}},
		},
	})
	c := f.clip(t, animation.ClipSource{
		Duration:       1,
		TicksPerSecond: 1,
		Channels:       []animation.RawChannel{slideChannel("hip", 0, 5)},
	})
	if _, err := f.registry.Ensure("hand"); err != nil {
		t.Fatal(err)
	}

	a := NewAnimator(WithClip(c))
	a.Update(0)

	// hip is animated to (5, 0, 0), replacing its bind pose; hand keeps its bind transform.
	hand, _ := f.registry.Lookup("hand")
	want := mgl32.Translate3D(8, 0, 1)
	if got := a.BoneMatrices()[hand.ID]; !got.ApproxEqualThreshold(want, eps) {
		t.Errorf("hand: have %v, want %v", got, want)
	}
}

func TestAnimatorSetClipResetsTime(t *testing.T) {
	f, c := simpleFixture(t)
	other := f.clip(t, animation.ClipSource{Duration: 2, TicksPerSecond: 1, Channels: []animation.RawChannel{slideChannel("A", 0, 1)}})

	a := NewAnimator(WithClip(c))
	a.Update(0.3)
	a.SetClip(other)
	if a.Time() != 0 || a.Clip() != other {
		t.Fatalf("SetClip: time %g", a.Time())
	}
	a.Update(0.5)
	if a.Time() != 0.5 {
		t.Errorf("after switch: time %g, want 0.5", a.Time())
	}
}

func TestAnimatorNonLooping(t *testing.T) {
	_, c := simpleFixture(t)
	a := NewAnimator(WithClip(c), WithLoop(false))
	a.Update(0.6)
	if a.Finished() {
		t.Fatal("finished early")
	}
	a.Update(0.6)
	if !a.Finished() || a.Time() != c.Duration() {
		t.Errorf("non-looping end: finished %t, time %g", a.Finished(), a.Time())
	}
	a.SetLoop(true)
	if a.Finished() {
		t.Error("SetLoop(true) kept finished flag")
	}
}

func TestAnimatorSpeed(t *testing.T) {
	_, c := simpleFixture(t)
	a := NewAnimator(WithClip(c), WithSpeed(0.5))
	a.Update(0.4)
	if got := a.Time(); mgl32.Abs(got-2) > eps {
		t.Errorf("half speed: have %g, want 2", got)
	}
	a.SetSpeed(-1)
	a.Update(0.3)
	if got := a.Time(); mgl32.Abs(got-9) > eps {
		t.Errorf("reverse wrap: have %g, want 9", got)
	}
}

func TestAnimatorBlend(t *testing.T) {
	f, c := simpleFixture(t)
	target := f.clip(t, animation.ClipSource{
		Duration:       10,
		TicksPerSecond: 10,
		Channels:       []animation.RawChannel{slideChannel("A", 0, 20)},
	})
	info, _ := f.registry.Lookup("A")

	a := NewAnimator(WithClip(c))
	a.BlendTo(target, 1)
	if !a.IsBlending() {
		t.Fatal("BlendTo did not start a blend")
	}

	a.Update(0.5)
	// Source at time 5 is x=5, target is x=20, weight 0.5.
	want := mgl32.Translate3D(12.5, 0, 0)
	if got := a.BoneMatrices()[info.ID]; !got.ApproxEqualThreshold(want, eps) {
		t.Errorf("mid-blend: have %v, want %v", got, want)
	}
	if p := a.BlendProgress(); mgl32.Abs(p-0.5) > eps {
		t.Errorf("BlendProgress: %g", p)
	}

	a.Update(0.5)
	if a.IsBlending() || a.Clip() != target {
		t.Fatalf("blend did not complete")
	}
	if got := a.BoneMatrices()[info.ID]; !got.ApproxEqualThreshold(mgl32.Translate3D(20, 0, 0), eps) {
		t.Errorf("after blend: %v", got)
	}

	a.BlendTo(c, 1)
	a.CancelBlend()
	if a.IsBlending() || a.Clip() != target || a.BlendProgress() != 0 {
		t.Error("CancelBlend did not keep the active clip")
	}
}

func TestAnimatorIgnoresNonFiniteDt(t *testing.T) {
	_, c := simpleFixture(t)
	var buf bytes.Buffer
	a := NewAnimator(WithClip(c), WithLogger(log.New(&buf, "", 0)))
	a.Update(0.3)
	before := a.Time()

	for _, dt := range []float32{float32(math.NaN()), float32(math.Inf(1)), float32(math.Inf(-1))} {
		a.Update(dt)
		if a.Time() != before {
			t.Fatalf("Update(%g): time %g, want %g", dt, a.Time(), before)
		}
	}
	if n := bytes.Count(buf.Bytes(), []byte("non-finite")); n != 3 {
		t.Errorf("non-finite warning logged %d times, want 3", n)
	}

	a.Update(0.1)
	if mgl32.Abs(a.Time()-4) > eps {
		t.Errorf("playback after bad dt: time %g, want 4", a.Time())
	}
}

func TestAnimatorBufferTooSmall(t *testing.T) {
	_, c := simpleFixture(t)
	// p and q take ids 0 and 1, so "A" lands on id 2, past a two-slot buffer.
	var buf bytes.Buffer
	reg := skeleton.NewRegistry()
	for _, name := range []string{"p", "q"} {
		if _, err := reg.Ensure(name); err != nil {
			t.Fatal(err)
		}
	}
	clip, err := animation.NewClip(animation.ClipSource{Duration: 10, TicksPerSecond: 10, Channels: []animation.RawChannel{slideChannel("A", 0, 1)}}, c.Hierarchy(), reg, animation.WithLogger(quietLog))
	if err != nil {
		t.Fatal(err)
	}

	a := NewAnimator(WithMaxBones(2), WithClip(clip), WithLogger(log.New(&buf, "", 0)))
	a.Update(0.1)
	a.Update(0.1)
	if n := bytes.Count(buf.Bytes(), []byte("outside")); n != 1 {
		t.Errorf("out-of-buffer warning logged %d times, want 1", n)
	}
	for i, m := range a.BoneMatrices() {
		if m != mgl32.Ident4() {
			t.Errorf("slot %d overwritten: %v", i, m)
		}
	}
}

func TestGroupUpdate(t *testing.T) {
	_, c := simpleFixture(t)
	g := NewGroup(WithWorkers(2))
	var animators []Animator
	for range 8 {
		a := NewAnimator(WithClip(c))
		animators = append(animators, a)
		g.Add(a)
	}
	idle := NewAnimator()
	g.Add(idle)

	g.Update(0.2)
	for i, a := range animators {
		if mgl32.Abs(a.Time()-2) > eps {
			t.Errorf("animator %d: time %g, want 2", i, a.Time())
		}
	}
	if !g.Remove(idle) || g.Len() != 8 {
		t.Errorf("Remove: len %d", g.Len())
	}
	if g.Remove(idle) {
		t.Error("second Remove reported success")
	}
	g.Close()
}

func TestGroupAddTwiceUpdatesOnce(t *testing.T) {
	_, c := simpleFixture(t)
	g := NewGroup(WithWorkers(4))
	defer g.Close()

	a := NewAnimator(WithClip(c), WithLogger(quietLog))
	if !g.Add(a) {
		t.Fatal("first Add rejected")
	}
	if g.Add(a) {
		t.Error("second Add of the same animator accepted")
	}
	if g.Add(nil) {
		t.Error("Add(nil) accepted")
	}
	if g.Len() != 1 {
		t.Fatalf("Len: have %d, want 1", g.Len())
	}

	for range 50 {
		g.Update(0.01)
	}
	if mgl32.Abs(a.Time()-5) > eps {
		t.Errorf("time: have %g, want 5 (one advance per Update)", a.Time())
	}

	if !g.Remove(a) || !g.Add(a) {
		t.Error("animator could not be re-added after Remove")
	}
}

func TestGroupClose(t *testing.T) {
	_, c := simpleFixture(t)
	g := NewGroup(WithWorkers(1))
	a := NewAnimator(WithClip(c), WithLogger(quietLog))
	g.Add(a)
	g.Update(0.1)

	g.Close()
	g.Close()
	g.Update(0.1)
	if mgl32.Abs(a.Time()-1) > eps {
		t.Errorf("Update after Close advanced time to %g", a.Time())
	}
}
