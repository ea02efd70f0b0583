// Package scene describes a static gravitational scene: a fixed, ordered set
// of massive bodies plus the field constants, and the softened Newtonian
// acceleration they induce at a point.
package scene

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Body is a static disc source of gravitational attraction. Its identity is
// its index in Scene.Bodies; lower indices win same-step collision ties.
type Body struct {
	Pos    r2.Vec
	Mass   float64
	Radius float64
	Color  color.RGBA
}

// Scene holds the bodies and field constants for one render or live run.
// It is read-only after construction; regeneration swaps in a new value.
type Scene struct {
	Bodies []Body

	// G is the gravitational constant of the force law.
	G float64

	// Softening is added to the squared distance in the force law so the
	// acceleration stays bounded when a particle reaches a body center.
	Softening float64
}

// New validates the bodies and constants and returns the scene.
func New(bodies []Body, g, softening float64) (*Scene, error) {
	s := &Scene{Bodies: bodies, G: g, Softening: softening}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate rejects configurations that could stall or corrupt a run.
func (s *Scene) Validate() error {
	if len(s.Bodies) == 0 {
		return ErrNoBodies
	}
	for i, b := range s.Bodies {
		if math.IsNaN(b.Pos.X) || math.IsInf(b.Pos.X, 0) || math.IsNaN(b.Pos.Y) || math.IsInf(b.Pos.Y, 0) {
			return fmt.Errorf("%w: body %d position (%v, %v)", ErrBadBody, i, b.Pos.X, b.Pos.Y)
		}
		if b.Mass <= 0 || math.IsInf(b.Mass, 0) || math.IsNaN(b.Mass) {
			return fmt.Errorf("%w: body %d mass %g", ErrBadBody, i, b.Mass)
		}
		if b.Radius <= 0 || math.IsInf(b.Radius, 0) || math.IsNaN(b.Radius) {
			return fmt.Errorf("%w: body %d radius %g", ErrBadBody, i, b.Radius)
		}
	}
	if s.G <= 0 || math.IsInf(s.G, 0) || math.IsNaN(s.G) {
		return fmt.Errorf("%w: gravitational constant %g", ErrBadField, s.G)
	}
	if s.Softening < 0 || math.IsInf(s.Softening, 0) || math.IsNaN(s.Softening) {
		return fmt.Errorf("%w: softening %g", ErrBadField, s.Softening)
	}
	return nil
}

// Accel returns the net acceleration at p, summed over bodies in index order
// so identical scenes always accumulate in the same floating-point order.
func (s *Scene) Accel(p r2.Vec) r2.Vec {
	var a r2.Vec
	for _, b := range s.Bodies {
		d := r2.Sub(b.Pos, p)
		d2 := r2.Norm2(d) + s.Softening
		a = r2.Add(a, r2.Scale(s.G*b.Mass/(d2*math.Sqrt(d2)), d))
	}
	return a
}

// Collide reports the lowest-indexed body whose collision radius contains p.
func (s *Scene) Collide(p r2.Vec) (int, bool) {
	for i, b := range s.Bodies {
		if r2.Norm(r2.Sub(p, b.Pos)) <= b.Radius {
			return i, true
		}
	}
	return -1, false
}
