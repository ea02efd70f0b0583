// Package sim runs single-particle trajectories to a terminal outcome and
// hosts the tick-driven live replay used by interactive front ends.
package sim

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kmoroz/gravbasin/internal/integrator"
	"github.com/kmoroz/gravbasin/internal/scene"
)

// ErrBadParams indicates run parameters that cannot guarantee termination.
var ErrBadParams = errors.New("sim: invalid parameters")

// Params bounds one trajectory run. A run always terminates within MaxSteps
// integrator steps: by collision, by the escape safeguard, or by exhaustion.
type Params struct {
	Dt       float64
	MaxSteps int
	Method   integrator.Method

	// EscapeRadius cuts off particles diverging under numerical error.
	// It is a stability safeguard, not a physical escape condition.
	EscapeRadius float64
}

// DefaultParams mirrors the classic demo: 20000 fine steps of dt=0.0016.
func DefaultParams() Params {
	return Params{
		Dt:           0.0016,
		MaxSteps:     20000,
		Method:       integrator.RungeKutta4,
		EscapeRadius: 1e6,
	}
}

func (p Params) Validate() error {
	if p.Dt <= 0 || math.IsInf(p.Dt, 0) || math.IsNaN(p.Dt) {
		return fmt.Errorf("%w: dt %g", ErrBadParams, p.Dt)
	}
	if p.MaxSteps <= 0 {
		return fmt.Errorf("%w: max steps %d", ErrBadParams, p.MaxSteps)
	}
	if p.EscapeRadius <= 0 || math.IsNaN(p.EscapeRadius) {
		return fmt.Errorf("%w: escape radius %g", ErrBadParams, p.EscapeRadius)
	}
	if p.Method != integrator.Euler && p.Method != integrator.RungeKutta4 {
		return fmt.Errorf("%w: method %v", ErrBadParams, p.Method)
	}
	return nil
}

// Outcome is the terminal result of one trajectory run. Steps counts the
// integrator steps taken before termination; for a hit it is in
// [0, MaxSteps).
type Outcome struct {
	Hit   bool
	Body  int
	Steps int
}

func (o Outcome) TimedOut() bool { return !o.Hit }

func (o Outcome) String() string {
	if o.Hit {
		return fmt.Sprintf("hit body %d after %d steps", o.Body, o.Steps)
	}
	return fmt.Sprintf("timed out after %d steps", o.Steps)
}

// Runner drives the integrator for single particles against one scene
// snapshot. It is read-only after construction and safe for concurrent use.
type Runner struct {
	sc      *scene.Scene
	params  Params
	stepper integrator.Stepper
}

func NewRunner(sc *scene.Scene, params Params) (*Runner, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Runner{sc: sc, params: params, stepper: integrator.New(params.Method)}, nil
}

func (r *Runner) Scene() *scene.Scene { return r.sc }

func (r *Runner) Params() Params { return r.params }

// terminal reports whether the particle is done before taking another step:
// inside a body (lowest index wins), diverged past the escape bound, or
// numerically corrupt. NaN/Inf counts as a timeout, never an error.
func (r *Runner) terminal(p integrator.Particle, steps int) (Outcome, bool) {
	if !finite(p) {
		return Outcome{Steps: steps}, true
	}
	if idx, ok := r.sc.Collide(p.Pos); ok {
		return Outcome{Hit: true, Body: idx, Steps: steps}, true
	}
	if r2.Norm(p.Pos) > r.params.EscapeRadius {
		return Outcome{Steps: steps}, true
	}
	return Outcome{}, false
}

// Run integrates from start until the termination policy fires.
func (r *Runner) Run(start integrator.Particle) Outcome {
	p := start
	for i := 0; i < r.params.MaxSteps; i++ {
		if out, done := r.terminal(p, i); done {
			return out
		}
		p = r.stepper.Step(r.sc, p, r.params.Dt)
	}
	return Outcome{Steps: r.params.MaxSteps}
}

// RunTrace is Run with a per-step callback carrying the particle before each
// step. Returning false aborts the run, reported as a timeout.
func (r *Runner) RunTrace(start integrator.Particle, fn func(step int, p integrator.Particle) bool) Outcome {
	p := start
	for i := 0; i < r.params.MaxSteps; i++ {
		if out, done := r.terminal(p, i); done {
			return out
		}
		if !fn(i, p) {
			return Outcome{Steps: i}
		}
		p = r.stepper.Step(r.sc, p, r.params.Dt)
	}
	return Outcome{Steps: r.params.MaxSteps}
}

func finite(p integrator.Particle) bool {
	for _, v := range [...]float64{p.Pos.X, p.Pos.Y, p.Vel.X, p.Vel.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
