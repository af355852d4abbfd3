package animation

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/reliquary/pkg/math"
)

func TestClampGemScale(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{0, MinGemScale},
		{0.0001, MinGemScale},
		{0.009999, MinGemScale},
		{0.01, 0.01},
		{0.02, 0.02},
		{0.0299, 0.0299},
	}
	for _, tt := range tests {
		if got := ClampGemScale(tt.in); got != tt.want {
			t.Errorf("ClampGemScale(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewRingBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	r := NewRing(1000, 0.6, 4.75, rng)

	if r.Len() != 1000 {
		t.Fatalf("len = %d", r.Len())
	}

	var clamped int
	for i, g := range r.Gems {
		if g.Angle < 0 || g.Angle > math32.Pi {
			t.Errorf("gem %d angle %v outside [0, pi)", i, g.Angle)
		}
		if g.Scale < MinGemScale || g.Scale > MaxGemScale {
			t.Errorf("gem %d scale %v outside [%v, %v]", i, g.Scale, MinGemScale, MaxGemScale)
		}
		if g.Scale == MinGemScale {
			clamped++
		}
	}
	// About a third of uniform samples fall below the minimum.
	if clamped < 200 {
		t.Errorf("only %d gems clamped to the minimum", clamped)
	}
}

func TestNewRingDeterministic(t *testing.T) {
	a := NewRing(10, 0.6, 4.75, rand.New(rand.NewSource(7)))
	b := NewRing(10, 0.6, 4.75, rand.New(rand.NewSource(7)))
	for i := range a.Gems {
		if a.Gems[i] != b.Gems[i] {
			t.Fatalf("gem %d differs for the same seed", i)
		}
	}
}

func TestRingWorldOrbit(t *testing.T) {
	r := &Ring{Radius: 0.6, Height: 4.75, Gems: []Gem{
		{Angle: 0, Scale: 0.02},
		{Angle: math32.Pi / 2, Scale: 0.02},
	}}

	// Gem origins sit on the ring, not at the centre.
	for i := range r.Gems {
		p := r.World(i).TransformPoint(math.Vec3{})
		dist := math32.Sqrt(p.X*p.X + p.Z*p.Z)
		if math32.Abs(dist-0.6) > 1e-5 || math32.Abs(p.Y-4.75) > 1e-5 {
			t.Errorf("gem %d origin = %v, want radius 0.6 at height 4.75", i, p)
		}
	}

	// A quarter turn about Y moves (r,0,0) to (0,0,-r).
	p := r.World(1).TransformPoint(math.Vec3{})
	if math32.Abs(p.X) > 1e-5 || math32.Abs(p.Z+0.6) > 1e-5 {
		t.Errorf("gem 1 origin = %v, want (0, 4.75, -0.6)", p)
	}

	// Scale applies before the translation.
	q := r.World(0).TransformPoint(math.Vec3{X: 1})
	if math32.Abs(q.X-0.62) > 1e-5 {
		t.Errorf("scaled point x = %v, want 0.62", q.X)
	}
}

func TestMainGem(t *testing.T) {
	m := MainGem(math.Vec3{Y: 4.75, Z: 0.2}, 0.05)

	want := math.Translate(0, 4.75, 0.2).Mul(math.ScaleUniform(0.05))
	if !m.ApproxEqual(want, 1e-7) {
		t.Errorf("main gem = %v, want %v", m, want)
	}
	if p := m.TransformPoint(math.Vec3{X: 1}); math32.Abs(p.X-0.05) > 1e-6 {
		t.Errorf("unit x mapped to %v", p)
	}
}
