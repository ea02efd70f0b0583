package scene

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// wellRadius derives a collision radius from a well's mass, floored so small
// wells stay clickable on screen.
func wellRadius(mass float64) float64 {
	return math.Max(math.Sqrt(mass/1000), 10)
}

var presets = map[string]func() *Scene{
	// Three unequal wells, the classic demo layout.
	"wells": func() *Scene {
		return &Scene{
			Bodies: []Body{
				{Pos: r2.Vec{X: 150, Y: 150}, Mass: 50000, Radius: wellRadius(50000), Color: color.RGBA{255, 100, 100, 255}},
				{Pos: r2.Vec{X: 450, Y: 150}, Mass: 30000, Radius: wellRadius(30000), Color: color.RGBA{100, 255, 100, 255}},
				{Pos: r2.Vec{X: 300, Y: 400}, Mass: 40000, Radius: wellRadius(40000), Color: color.RGBA{100, 100, 255, 255}},
			},
			G:         100,
			Softening: 0.1,
		}
	},
	// Two equal bodies straddling the origin; the basin boundary is the
	// perpendicular bisector, handy for symmetry checks.
	"binary": func() *Scene {
		return &Scene{
			Bodies: []Body{
				{Pos: r2.Vec{X: -40}, Mass: 1000, Radius: 5, Color: color.RGBA{255, 160, 80, 255}},
				{Pos: r2.Vec{X: 40}, Mass: 1000, Radius: 5, Color: color.RGBA{80, 160, 255, 255}},
			},
			G:         1,
			Softening: 0.1,
		}
	},
	// Three equal wells on an equilateral triangle around the view center.
	"trinity": func() *Scene {
		const r, cx, cy = 180.0, 300.0, 300.0
		colors := []color.RGBA{
			{230, 80, 80, 255},
			{80, 230, 120, 255},
			{120, 120, 255, 255},
		}
		bodies := make([]Body, 3)
		for i := range bodies {
			a := 2 * math.Pi * float64(i) / 3
			bodies[i] = Body{
				Pos:    r2.Vec{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)},
				Mass:   40000,
				Radius: wellRadius(40000),
				Color:  colors[i],
			}
		}
		return &Scene{Bodies: bodies, G: 100, Softening: 0.1}
	},
}

// Preset returns a fresh copy of a named built-in scene.
func Preset(name string) (*Scene, error) {
	f, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return f(), nil
}

// Presets lists the available preset names, sorted.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
