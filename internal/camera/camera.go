// Package camera maps pixel coordinates to the world positions where test
// particles are released, and back again for click handling.
package camera

import "gonum.org/v1/gonum/spatial/r2"

// Camera is a pure view transform plus the launch velocity shared by every
// particle in a frame. The host owns the current value and passes a snapshot
// into each render; it is never mutated mid-frame.
type Camera struct {
	Offset r2.Vec
	Zoom   float64

	// LaunchVel is the initial velocity given to every released particle.
	LaunchVel r2.Vec
}

// Default is the identity view: no pan, unit zoom, particles at rest.
func Default() Camera {
	return Camera{Zoom: 1}
}

// WorldAt returns the world position for a pixel coordinate.
func (c Camera) WorldAt(px, py float64) r2.Vec {
	return r2.Vec{
		X: px/c.Zoom - c.Offset.X,
		Y: py/c.Zoom - c.Offset.Y,
	}
}

// ScreenAt is the inverse of WorldAt.
func (c Camera) ScreenAt(w r2.Vec) (px, py float64) {
	return (w.X + c.Offset.X) * c.Zoom, (w.Y + c.Offset.Y) * c.Zoom
}
