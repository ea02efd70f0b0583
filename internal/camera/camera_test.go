package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestDefaultIsIdentity(t *testing.T) {
	c := Default()
	w := c.WorldAt(123, 456)
	if w.X != 123 || w.Y != 456 {
		t.Errorf("identity camera moved the point: %+v", w)
	}
}

func TestWorldAtAppliesZoomThenOffset(t *testing.T) {
	c := Camera{Offset: r2.Vec{X: 10, Y: -5}, Zoom: 2}
	w := c.WorldAt(100, 40)
	if w.X != 40 || w.Y != 25 {
		t.Errorf("WorldAt(100, 40) = %+v, want (40, 25)", w)
	}
}

func TestRoundTrip(t *testing.T) {
	cams := []Camera{
		{Zoom: 1},
		{Offset: r2.Vec{X: 50, Y: 70}, Zoom: 0.5},
		{Offset: r2.Vec{X: -12.5, Y: 3}, Zoom: 4},
	}
	points := [][2]float64{{0, 0}, {599, 599}, {17.25, 301.5}}

	for _, c := range cams {
		for _, pt := range points {
			w := c.WorldAt(pt[0], pt[1])
			px, py := c.ScreenAt(w)
			if math.Abs(px-pt[0]) > 1e-9 || math.Abs(py-pt[1]) > 1e-9 {
				t.Errorf("cam %+v: (%g, %g) -> %+v -> (%g, %g)", c, pt[0], pt[1], w, px, py)
			}
		}
	}
}
