package render

import (
	"image/color"

	"github.com/kmoroz/gravbasin/internal/scene"
	"github.com/kmoroz/gravbasin/internal/sim"
)

// Shading is linear in steps taken: an immediate capture gets maxShade of the
// body's color and a capture at the step budget approaches minShade, which
// stays above zero so slow hits remain distinguishable from timeouts.
const (
	minShade = 0.15
	maxShade = 0.85
)

var timeoutColor = color.RGBA{A: 255}

// Shade maps a trajectory outcome to a pixel color. Timeouts are pure black.
func Shade(o sim.Outcome, sc *scene.Scene, maxSteps int) color.RGBA {
	if o.TimedOut() {
		return timeoutColor
	}
	base := sc.Bodies[o.Body].Color
	f := 1 - float64(o.Steps)/float64(maxSteps)
	s := minShade + f*(maxShade-minShade)
	return color.RGBA{
		R: uint8(float64(base.R) * s),
		G: uint8(float64(base.G) * s),
		B: uint8(float64(base.B) * s),
		A: 255,
	}
}
