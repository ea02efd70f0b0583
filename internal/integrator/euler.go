package integrator

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kmoroz/gravbasin/internal/scene"
)

// SemiImplicitEuler updates velocity before position, which keeps orbits far
// more stable than the naive explicit ordering at the same cost.
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (*SemiImplicitEuler) Step(sc *scene.Scene, p Particle, dt float64) Particle {
	a := sc.Accel(p.Pos)
	p.Vel = r2.Add(p.Vel, r2.Scale(dt, a))
	p.Pos = r2.Add(p.Pos, r2.Scale(dt, p.Vel))
	return p
}
