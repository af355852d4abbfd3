package animation

import (
	"math/rand"

	"github.com/chewxy/math32"

	"github.com/Faultbox/reliquary/pkg/math"
)

// Gem scale bounds. Samples below MinGemScale are clamped up, not redrawn.
const (
	MinGemScale = 0.01
	MaxGemScale = 0.03
)

// Gem is one ring member's fixed random placement.
type Gem struct {
	Angle float32
	Scale float32
}

// Ring places N gems at a fixed radius and height around the vertical axis.
type Ring struct {
	Radius float32
	Height float32
	Gems   []Gem
}

// NewRing samples n gems once. Angles lie in [0, pi); scales in
// [MinGemScale, MaxGemScale).
func NewRing(n int, radius, height float32, rng *rand.Rand) *Ring {
	r := &Ring{Radius: radius, Height: height, Gems: make([]Gem, n)}
	for i := range r.Gems {
		r.Gems[i].Angle = rng.Float32() * math32.Pi
	}
	for i := range r.Gems {
		r.Gems[i].Scale = ClampGemScale(rng.Float32() * MaxGemScale)
	}
	return r
}

// ClampGemScale raises s to MinGemScale when it is smaller.
func ClampGemScale(s float32) float32 {
	if s < MinGemScale {
		return MinGemScale
	}
	return s
}

// Len returns the number of gems.
func (r *Ring) Len() int {
	return len(r.Gems)
}

// World returns gem i's world matrix: RotateY(angle) * Translate(radius, height, 0) * Scale(s).
// The gem is pushed out to the radius after being rotated about the ring
// center, so it does not spin in place.
func (r *Ring) World(i int) math.Mat4 {
	g := r.Gems[i]
	return math.Compose(
		math.RotateY(g.Angle),
		math.Translate(r.Radius, r.Height, 0),
		math.ScaleUniform(g.Scale),
	)
}

// MainGem returns the world matrix of the centre gem.
func MainGem(translate math.Vec3, scale float32) math.Mat4 {
	return math.TranslateVec(translate).Mul(math.ScaleUniform(scale))
}
