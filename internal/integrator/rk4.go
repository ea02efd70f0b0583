package integrator

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kmoroz/gravbasin/internal/scene"
)

// RK4 is the classical fourth-order Runge-Kutta scheme over the joint
// (position, velocity) state, whose derivative is (velocity, acceleration).
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (*RK4) Step(sc *scene.Scene, p Particle, dt float64) Particle {
	k1x := p.Vel
	k1v := sc.Accel(p.Pos)

	k2x := r2.Add(p.Vel, r2.Scale(dt*0.5, k1v))
	k2v := sc.Accel(r2.Add(p.Pos, r2.Scale(dt*0.5, k1x)))

	k3x := r2.Add(p.Vel, r2.Scale(dt*0.5, k2v))
	k3v := sc.Accel(r2.Add(p.Pos, r2.Scale(dt*0.5, k2x)))

	k4x := r2.Add(p.Vel, r2.Scale(dt, k3v))
	k4v := sc.Accel(r2.Add(p.Pos, r2.Scale(dt, k3x)))

	dt6 := dt / 6.0
	dx := r2.Add(r2.Add(k1x, r2.Scale(2, k2x)), r2.Add(r2.Scale(2, k3x), k4x))
	dv := r2.Add(r2.Add(k1v, r2.Scale(2, k2v)), r2.Add(r2.Scale(2, k3v), k4v))
	p.Pos = r2.Add(p.Pos, r2.Scale(dt6, dx))
	p.Vel = r2.Add(p.Vel, r2.Scale(dt6, dv))
	return p
}
