// Package render turns a scene snapshot into a basin-of-attraction image by
// running one trajectory per pixel across a worker pool.
package render

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"sync"

	"github.com/kmoroz/gravbasin/internal/camera"
	"github.com/kmoroz/gravbasin/internal/integrator"
	"github.com/kmoroz/gravbasin/internal/scene"
	"github.com/kmoroz/gravbasin/internal/sim"
)

// Params sizes the output grid and the worker pool. Workers <= 0 means one
// worker per CPU.
type Params struct {
	Width   int
	Height  int
	Workers int
}

func DefaultParams() Params {
	return Params{Width: 600, Height: 600}
}

func (p Params) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: image %dx%d", sim.ErrBadParams, p.Width, p.Height)
	}
	return nil
}

// Outcomes runs one trajectory per pixel and returns the row-major outcome
// grid. Rows are partitioned across workers; each worker writes only its own
// disjoint slots, so the grid is bit-identical for any worker count.
func Outcomes(ctx context.Context, sc *scene.Scene, sp sim.Params, cam camera.Camera, rp Params) ([]sim.Outcome, error) {
	if err := rp.Validate(); err != nil {
		return nil, err
	}
	runner, err := sim.NewRunner(sc, sp)
	if err != nil {
		return nil, err
	}

	workers := rp.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > rp.Height {
		workers = rp.Height
	}

	grid := make([]sim.Outcome, rp.Width*rp.Height)
	rowsPer := (rp.Height + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		y0 := w * rowsPer
		y1 := y0 + rowsPer
		if y1 > rp.Height {
			y1 = rp.Height
		}
		if y0 >= y1 {
			break
		}
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			for y := y0; y < y1; y++ {
				select {
				case <-ctx.Done():
					return
				default:
				}
				for x := 0; x < rp.Width; x++ {
					start := integrator.Particle{
						Pos: cam.WorldAt(float64(x), float64(y)),
						Vel: cam.LaunchVel,
					}
					grid[y*rp.Width+x] = runner.Run(start)
				}
			}
		}(y0, y1)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return grid, nil
}

// Compose colors an outcome grid with the shading law.
func Compose(grid []sim.Outcome, sc *scene.Scene, sp sim.Params, rp Params) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, rp.Width, rp.Height))
	for y := 0; y < rp.Height; y++ {
		for x := 0; x < rp.Width; x++ {
			img.SetRGBA(x, y, Shade(grid[y*rp.Width+x], sc, sp.MaxSteps))
		}
	}
	return img
}

// Frame renders and colors a full frame in one call.
func Frame(ctx context.Context, sc *scene.Scene, sp sim.Params, cam camera.Camera, rp Params) (*image.RGBA, error) {
	grid, err := Outcomes(ctx, sc, sp, cam, rp)
	if err != nil {
		return nil, err
	}
	return Compose(grid, sc, sp, rp), nil
}
