package render

import (
	"bytes"
	"context"
	"image/color"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kmoroz/gravbasin/internal/camera"
	"github.com/kmoroz/gravbasin/internal/integrator"
	"github.com/kmoroz/gravbasin/internal/scene"
	"github.com/kmoroz/gravbasin/internal/sim"
)

func testScene() *scene.Scene {
	return &scene.Scene{
		Bodies: []scene.Body{
			{Pos: r2.Vec{X: 8, Y: 8}, Mass: 500, Radius: 3, Color: color.RGBA{200, 40, 40, 255}},
			{Pos: r2.Vec{X: 24, Y: 24}, Mass: 500, Radius: 3, Color: color.RGBA{40, 200, 40, 255}},
		},
		G:         1,
		Softening: 0.1,
	}
}

func testParams() sim.Params {
	return sim.Params{Dt: 0.05, MaxSteps: 400, Method: integrator.RungeKutta4, EscapeRadius: 1e5}
}

func TestFrameBitIdenticalAcrossWorkerCounts(t *testing.T) {
	sc := testScene()
	sp := testParams()
	cam := camera.Default()

	var reference []byte
	for _, workers := range []int{1, 2, 3, 7, 32} {
		rp := Params{Width: 32, Height: 32, Workers: workers}
		img, err := Frame(context.Background(), sc, sp, cam, rp)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if reference == nil {
			reference = img.Pix
			continue
		}
		if !bytes.Equal(reference, img.Pix) {
			t.Errorf("workers=%d produced a different image", workers)
		}
	}
}

func TestOutcomesRejectsBadInput(t *testing.T) {
	sc := testScene()
	if _, err := Outcomes(context.Background(), sc, testParams(), camera.Default(), Params{Width: 0, Height: 10}); err == nil {
		t.Error("expected error for zero width")
	}
	bad := testParams()
	bad.Dt = 0
	if _, err := Outcomes(context.Background(), sc, bad, camera.Default(), Params{Width: 4, Height: 4}); err == nil {
		t.Error("expected error for invalid sim params")
	}
}

func TestOutcomesHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Outcomes(ctx, testScene(), testParams(), camera.Default(), Params{Width: 8, Height: 8})
	if err == nil {
		t.Error("expected context error")
	}
}

func TestTimeoutsRenderPureBlack(t *testing.T) {
	// One far-away body and a tiny budget: every pixel times out.
	sc := &scene.Scene{
		Bodies:    []scene.Body{{Pos: r2.Vec{X: 1e5}, Mass: 1, Radius: 1, Color: color.RGBA{255, 255, 255, 255}}},
		G:         1,
		Softening: 0.1,
	}
	sp := testParams()
	sp.MaxSteps = 5
	rp := Params{Width: 8, Height: 8}
	img, err := Frame(context.Background(), sc, sp, camera.Default(), rp)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < rp.Height; y++ {
		for x := 0; x < rp.Width; x++ {
			if got := img.RGBAAt(x, y); got != (color.RGBA{0, 0, 0, 255}) {
				t.Fatalf("pixel (%d,%d) = %+v, want pure black", x, y, got)
			}
		}
	}
}

func TestImmediateHitsUseTheBodyColor(t *testing.T) {
	// A body radius covering the whole view: every pixel is born inside it.
	base := color.RGBA{200, 100, 50, 255}
	sc := &scene.Scene{
		Bodies:    []scene.Body{{Pos: r2.Vec{X: 4, Y: 4}, Mass: 1, Radius: 100, Color: base}},
		G:         1,
		Softening: 0.1,
	}
	rp := Params{Width: 8, Height: 8}
	img, err := Frame(context.Background(), sc, testParams(), camera.Default(), rp)
	if err != nil {
		t.Fatal(err)
	}
	want := Shade(sim.Outcome{Hit: true}, sc, testParams().MaxSteps)
	if got := img.RGBAAt(0, 0); got != want {
		t.Errorf("immediate hit pixel = %+v, want %+v", got, want)
	}
}

func TestShadeMonotonicInSteps(t *testing.T) {
	sc := testScene()
	const maxSteps = 1000
	prev := 0
	first := true
	for steps := 0; steps < maxSteps; steps += 50 {
		c := Shade(sim.Outcome{Hit: true, Body: 0, Steps: steps}, sc, maxSteps)
		sum := int(c.R) + int(c.G) + int(c.B)
		if !first && sum > prev {
			t.Fatalf("brightness increased at steps=%d", steps)
		}
		if sum == 0 {
			t.Fatalf("hit at steps=%d shaded to black", steps)
		}
		prev = sum
		first = false
	}
}

func TestShadeBounds(t *testing.T) {
	sc := testScene()
	fast := Shade(sim.Outcome{Hit: true, Body: 0, Steps: 0}, sc, 100)
	slow := Shade(sim.Outcome{Hit: true, Body: 0, Steps: 99}, sc, 100)

	base := sc.Bodies[0].Color
	if want := uint8(float64(base.R) * maxShade); fast.R != want {
		t.Errorf("fastest hit R = %d, want %d", fast.R, want)
	}
	if slow.R == 0 && slow.G == 0 && slow.B == 0 {
		t.Errorf("slowest hit must stay visible, got %+v", slow)
	}
	if timeout := Shade(sim.Outcome{}, sc, 100); timeout != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("timeout shade = %+v", timeout)
	}
}

func TestGridMatchesPerPixelRuns(t *testing.T) {
	sc := testScene()
	sp := testParams()
	cam := camera.Camera{Zoom: 2, Offset: r2.Vec{X: 1, Y: 1}, LaunchVel: r2.Vec{X: 0.5}}
	rp := Params{Width: 6, Height: 5, Workers: 2}

	grid, err := Outcomes(context.Background(), sc, sp, cam, rp)
	if err != nil {
		t.Fatal(err)
	}
	runner, err := sim.NewRunner(sc, sp)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < rp.Height; y++ {
		for x := 0; x < rp.Width; x++ {
			want := runner.Run(integrator.Particle{Pos: cam.WorldAt(float64(x), float64(y)), Vel: cam.LaunchVel})
			if got := grid[y*rp.Width+x]; got != want {
				t.Fatalf("pixel (%d,%d): grid %+v, direct %+v", x, y, got, want)
			}
		}
	}
}
