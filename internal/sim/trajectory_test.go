package sim_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kmoroz/gravbasin/internal/integrator"
	"github.com/kmoroz/gravbasin/internal/scene"
	"github.com/kmoroz/gravbasin/internal/sim"
)

func binaryScene() *scene.Scene {
	return &scene.Scene{
		Bodies: []scene.Body{
			{Pos: r2.Vec{X: -40}, Mass: 1000, Radius: 5},
			{Pos: r2.Vec{X: 40}, Mass: 1000, Radius: 5},
		},
		G:         1,
		Softening: 0.1,
	}
}

func newRunner(sc *scene.Scene, p sim.Params) *sim.Runner {
	r, err := sim.NewRunner(sc, p)
	Expect(err).NotTo(HaveOccurred())
	return r
}

var _ = Describe("Params", func() {
	It("rejects non-positive dt, steps and escape radius", func() {
		for _, p := range []sim.Params{
			{Dt: 0, MaxSteps: 10, EscapeRadius: 1},
			{Dt: -0.1, MaxSteps: 10, EscapeRadius: 1},
			{Dt: 0.1, MaxSteps: 0, EscapeRadius: 1},
			{Dt: 0.1, MaxSteps: -3, EscapeRadius: 1},
			{Dt: 0.1, MaxSteps: 10, EscapeRadius: 0},
		} {
			Expect(p.Validate()).To(MatchError(sim.ErrBadParams))
		}
	})

	It("accepts the defaults", func() {
		Expect(sim.DefaultParams().Validate()).To(Succeed())
	})
})

var _ = Describe("Runner", func() {
	var params sim.Params

	BeforeEach(func() {
		params = sim.DefaultParams()
		params.Dt = 0.01
		params.MaxSteps = 5000
	})

	It("terminates within the step budget for every method", func() {
		for _, m := range []integrator.Method{integrator.Euler, integrator.RungeKutta4} {
			p := params
			p.Method = m
			r := newRunner(binaryScene(), p)
			out := r.Run(integrator.Particle{Pos: r2.Vec{X: 500, Y: 500}, Vel: r2.Vec{X: 50}})
			Expect(out.Steps).To(BeNumerically("<=", p.MaxSteps))
		}
	})

	It("reports an immediate hit for a particle born at a body center", func() {
		r := newRunner(binaryScene(), params)
		out := r.Run(integrator.Particle{Pos: r2.Vec{X: -40}})
		Expect(out.Hit).To(BeTrue())
		Expect(out.Body).To(Equal(0))
		Expect(out.Steps).To(Equal(0))
	})

	It("breaks same-step ties toward the lower body index", func() {
		sc := &scene.Scene{
			Bodies: []scene.Body{
				{Pos: r2.Vec{X: -1}, Mass: 1, Radius: 10},
				{Pos: r2.Vec{X: 1}, Mass: 1, Radius: 10},
			},
			G: 1,
		}
		r := newRunner(sc, params)
		out := r.Run(integrator.Particle{})
		Expect(out.Hit).To(BeTrue())
		Expect(out.Body).To(Equal(0))
	})

	It("times out when the step budget runs dry", func() {
		p := params
		p.MaxSteps = 3
		r := newRunner(binaryScene(), p)
		out := r.Run(integrator.Particle{Pos: r2.Vec{Y: 500}})
		Expect(out.TimedOut()).To(BeTrue())
		Expect(out.Steps).To(Equal(3))
	})

	It("cuts off diverging particles at the escape radius", func() {
		p := params
		p.EscapeRadius = 1000
		r := newRunner(binaryScene(), p)
		out := r.Run(integrator.Particle{Pos: r2.Vec{Y: 900}, Vel: r2.Vec{Y: 100}})
		Expect(out.TimedOut()).To(BeTrue())
		Expect(out.Steps).To(BeNumerically("<", p.MaxSteps))
	})

	It("treats non-finite state as a timeout", func() {
		r := newRunner(binaryScene(), params)
		out := r.Run(integrator.Particle{Pos: r2.Vec{X: math.NaN()}})
		Expect(out.TimedOut()).To(BeTrue())
		Expect(out.Steps).To(Equal(0))
	})

	It("keeps a particle on the symmetry axis of equal bodies", func() {
		// Two equal bodies at ±40: the lateral pulls cancel exactly, so a
		// release on the axis must not drift toward either index.
		for _, m := range []integrator.Method{integrator.Euler, integrator.RungeKutta4} {
			p := params
			p.Method = m
			r := newRunner(binaryScene(), p)
			maxDrift := 0.0
			r.RunTrace(integrator.Particle{Pos: r2.Vec{Y: 100}}, func(step int, pt integrator.Particle) bool {
				if d := math.Abs(pt.Pos.X); d > maxDrift {
					maxDrift = d
				}
				return step < 2000
			})
			Expect(maxDrift).To(BeNumerically("<=", 1e-9), "method %v", m)
		}
	})

	It("aborts a trace when the callback declines", func() {
		r := newRunner(binaryScene(), params)
		out := r.RunTrace(integrator.Particle{Pos: r2.Vec{Y: 500}}, func(step int, _ integrator.Particle) bool {
			return step < 7
		})
		Expect(out.TimedOut()).To(BeTrue())
		Expect(out.Steps).To(Equal(7))
	})

	It("produces identical outcomes for identical runs", func() {
		r := newRunner(binaryScene(), params)
		start := integrator.Particle{Pos: r2.Vec{X: 13, Y: 120}, Vel: r2.Vec{X: -2}}
		Expect(r.Run(start)).To(Equal(r.Run(start)))
	})
})

var _ = Describe("LiveRun", func() {
	var (
		runner *sim.Runner
		run    *sim.LiveRun
	)

	BeforeEach(func() {
		p := sim.DefaultParams()
		p.Dt = 0.01
		p.MaxSteps = 5000
		runner = newRunner(binaryScene(), p)
		run = sim.NewLiveRun(runner, 10)
	})

	It("starts idle and ticks are no-ops until started", func() {
		Expect(run.Phase()).To(Equal(sim.Idle))
		run.Tick()
		Expect(run.Phase()).To(Equal(sim.Idle))
		Expect(run.History()).To(BeEmpty())
	})

	It("runs to the same outcome as a batch run", func() {
		start := r2.Vec{X: -40, Y: 60}
		want := runner.Run(integrator.Particle{Pos: start})

		run.Start(start, r2.Vec{})
		Expect(run.Phase()).To(Equal(sim.Running))
		for run.Phase() == sim.Running {
			run.Tick()
		}
		out, done := run.Outcome()
		Expect(done).To(BeTrue())
		Expect(out).To(Equal(want))
	})

	It("restarting mid-run discards all prior progress", func() {
		run.Start(r2.Vec{X: 200, Y: 200}, r2.Vec{})
		for i := 0; i < 25; i++ {
			run.Tick()
		}
		Expect(run.Steps()).To(BeNumerically(">", 0))
		priorHistory := len(run.History())
		Expect(priorHistory).To(BeNumerically(">", 1))

		next := r2.Vec{X: -7, Y: 80}
		run.Start(next, r2.Vec{})
		Expect(run.Phase()).To(Equal(sim.Running))
		Expect(run.Steps()).To(BeZero())
		Expect(run.History()).To(HaveLen(1))
		Expect(run.Pos()).To(Equal(next))
	})

	It("restarts cleanly from Finished as well", func() {
		run.Start(r2.Vec{X: -40}, r2.Vec{}) // born inside body 0
		run.Tick()
		Expect(run.Phase()).To(Equal(sim.Finished))
		out, _ := run.Outcome()
		Expect(out.Body).To(Equal(0))
		Expect(out.Steps).To(Equal(0))

		run.Start(r2.Vec{X: 300, Y: 300}, r2.Vec{})
		Expect(run.Phase()).To(Equal(sim.Running))
		_, done := run.Outcome()
		Expect(done).To(BeFalse())
	})

	It("advances at most stepsPerTick steps per tick", func() {
		run.Start(r2.Vec{X: 200, Y: 300}, r2.Vec{})
		run.Tick()
		Expect(run.Steps()).To(BeNumerically("<=", 10))
		Expect(run.History()).To(HaveLen(2))
	})
})
