package sim

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kmoroz/gravbasin/internal/integrator"
	"github.com/kmoroz/gravbasin/internal/scene"
)

// Phase is the live-run state machine position.
type Phase int

const (
	Idle Phase = iota
	Running
	Finished
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// DefaultStepsPerTick batches fine integrator steps behind one display tick
// so the replay moves at a watchable speed.
const DefaultStepsPerTick = 10

// LiveRun replays a single trajectory incrementally: the host calls Tick once
// per displayed frame and reads the particle position between ticks. It is
// single-threaded and owns no resources; a new Start at any phase discards
// the run in flight outright.
type LiveRun struct {
	runner       *Runner
	stepsPerTick int

	phase    Phase
	particle integrator.Particle
	steps    int
	history  []r2.Vec
	outcome  Outcome
}

func NewLiveRun(r *Runner, stepsPerTick int) *LiveRun {
	if stepsPerTick <= 0 {
		stepsPerTick = DefaultStepsPerTick
	}
	return &LiveRun{runner: r, stepsPerTick: stepsPerTick}
}

// Start seeds a fresh particle at pos and transitions to Running, regardless
// of the current phase. Prior trajectory progress is dropped, not queued.
func (l *LiveRun) Start(pos, vel r2.Vec) {
	l.particle = integrator.Particle{Pos: pos, Vel: vel}
	l.steps = 0
	l.history = append(l.history[:0], pos)
	l.outcome = Outcome{}
	l.phase = Running
}

// Tick advances up to stepsPerTick integrator steps under the same
// termination policy as Runner.Run, then records one history point. It is a
// no-op outside Running.
func (l *LiveRun) Tick() {
	if l.phase != Running {
		return
	}
	for k := 0; k < l.stepsPerTick; k++ {
		if l.steps >= l.runner.params.MaxSteps {
			l.outcome = Outcome{Steps: l.steps}
			l.phase = Finished
			break
		}
		if out, done := l.runner.terminal(l.particle, l.steps); done {
			l.outcome = out
			l.phase = Finished
			break
		}
		l.particle = l.runner.stepper.Step(l.runner.sc, l.particle, l.runner.params.Dt)
		l.steps++
	}
	l.history = append(l.history, l.particle.Pos)
}

func (l *LiveRun) Phase() Phase { return l.phase }

func (l *LiveRun) Scene() *scene.Scene { return l.runner.sc }

func (l *LiveRun) Pos() r2.Vec { return l.particle.Pos }

func (l *LiveRun) Vel() r2.Vec { return l.particle.Vel }

func (l *LiveRun) Steps() int { return l.steps }

func (l *LiveRun) History() []r2.Vec { return l.history }

// Outcome reports the terminal result; ok is false until the run finishes.
func (l *LiveRun) Outcome() (out Outcome, ok bool) { return l.outcome, l.phase == Finished }
