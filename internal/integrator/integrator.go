// Package integrator advances a test particle through a gravitational scene
// by one time step, using one of two interchangeable schemes.
package integrator

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kmoroz/gravbasin/internal/scene"
)

// Particle is the integration state of one test particle. Value semantics:
// steppers return the advanced copy and never retain state between calls.
type Particle struct {
	Pos r2.Vec
	Vel r2.Vec
}

// Method selects the integration scheme.
type Method int

const (
	Euler Method = iota
	RungeKutta4
)

func (m Method) String() string {
	switch m {
	case Euler:
		return "euler"
	case RungeKutta4:
		return "rk4"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// ParseMethod maps a config/flag string to a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "euler":
		return Euler, nil
	case "rk4", "runge-kutta4", "rungekutta4":
		return RungeKutta4, nil
	default:
		return 0, fmt.Errorf("integrator: unknown method %q", s)
	}
}

// Stepper advances a particle by dt under the scene's field. Implementations
// are deterministic given (particle, dt, scene).
type Stepper interface {
	Step(sc *scene.Scene, p Particle, dt float64) Particle
}

// New returns the stepper for a method.
func New(m Method) Stepper {
	if m == RungeKutta4 {
		return NewRK4()
	}
	return NewSemiImplicitEuler()
}
