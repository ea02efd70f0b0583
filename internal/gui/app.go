// Package gui is the windowed host: it renders basin frames on demand and
// replays clicked trajectories on top, driving the core with keyboard and
// mouse state the way the terminal hosts drive it with ticks.
package gui

import (
	"context"
	"fmt"
	"image"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kmoroz/gravbasin/internal/camera"
	"github.com/kmoroz/gravbasin/internal/integrator"
	"github.com/kmoroz/gravbasin/internal/render"
	"github.com/kmoroz/gravbasin/internal/scene"
	"github.com/kmoroz/gravbasin/internal/sim"
)

var (
	colText   = rl.NewColor(230, 230, 230, 255)
	colDim    = rl.NewColor(140, 140, 140, 255)
	colAccent = rl.NewColor(120, 200, 255, 255)
	colWarn   = rl.NewColor(255, 220, 90, 255)
	colTrail  = rl.NewColor(250, 230, 80, 255)
	colHit    = rl.NewColor(255, 90, 90, 255)
)

const (
	stepMin = 0.1
	stepMax = 50
	zoomMin = 0.1
	zoomMax = 10
)

// App owns the mutable host state: the current scene/camera/params values and
// the in-flight render or live run. Core calls always receive snapshots.
type App struct {
	sc     *scene.Scene
	params sim.Params
	cam    camera.Camera
	rp     render.Params

	step    float64 // pan/velocity/zoom increment
	dirty   bool    // parameters changed since last render
	waiting bool    // render goroutine in flight

	frames  chan *image.RGBA
	tex     rl.Texture2D
	hasTex  bool
	live    *sim.LiveRun
	clicked r2.Vec
	hasLive bool
}

func NewApp(sc *scene.Scene, params sim.Params, cam camera.Camera, rp render.Params) *App {
	return &App{
		sc:     sc,
		params: params,
		cam:    cam,
		rp:     rp,
		step:   2.0,
		dirty:  true,
		frames: make(chan *image.RGBA, 1),
	}
}

// Run opens the window and drives the event loop until close.
func Run(sc *scene.Scene, params sim.Params, cam camera.Camera, rp render.Params) error {
	a := NewApp(sc, params, cam, rp)

	rl.InitWindow(int32(rp.Width), int32(rp.Height), "gravbasin")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	for !rl.WindowShouldClose() {
		a.handleInput()
		a.pollFrame()
		a.stepLive()

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		a.drawFrame()
		a.drawBodies()
		a.drawLive()
		a.drawHUD()
		rl.EndDrawing()
	}
	return nil
}

func (a *App) handleInput() {
	// Step size scales every other control.
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		a.step = min(a.step*1.2, stepMax)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		a.step = max(a.step*0.8, stepMin)
	}

	changed := false

	// WASD pans, Q/E zooms; held keys glide.
	if rl.IsKeyDown(rl.KeyW) {
		a.cam.Offset.Y -= a.step
		changed = true
	}
	if rl.IsKeyDown(rl.KeyS) {
		a.cam.Offset.Y += a.step
		changed = true
	}
	if rl.IsKeyDown(rl.KeyA) {
		a.cam.Offset.X -= a.step
		changed = true
	}
	if rl.IsKeyDown(rl.KeyD) {
		a.cam.Offset.X += a.step
		changed = true
	}
	if rl.IsKeyDown(rl.KeyQ) {
		a.cam.Zoom = max(a.cam.Zoom*0.99, zoomMin)
		changed = true
	}
	if rl.IsKeyDown(rl.KeyE) {
		a.cam.Zoom = min(a.cam.Zoom*1.01, zoomMax)
		changed = true
	}

	// Arrows adjust the shared launch velocity.
	if rl.IsKeyPressed(rl.KeyUp) {
		a.cam.LaunchVel.Y -= a.step
		changed = true
	}
	if rl.IsKeyPressed(rl.KeyDown) {
		a.cam.LaunchVel.Y += a.step
		changed = true
	}
	if rl.IsKeyPressed(rl.KeyLeft) {
		a.cam.LaunchVel.X -= a.step
		changed = true
	}
	if rl.IsKeyPressed(rl.KeyRight) {
		a.cam.LaunchVel.X += a.step
		changed = true
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		if a.params.Method == integrator.Euler {
			a.params.Method = integrator.RungeKutta4
		} else {
			a.params.Method = integrator.Euler
		}
		changed = true
	}

	if changed {
		a.dirty = true
		a.hasLive = false
	}

	if rl.IsKeyPressed(rl.KeyEnter) && a.dirty && !a.waiting {
		a.startRender()
	}

	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		m := rl.GetMousePosition()
		if m.X >= 0 && int(m.X) < a.rp.Width && m.Y >= 0 && int(m.Y) < a.rp.Height {
			a.startLive(a.cam.WorldAt(float64(m.X), float64(m.Y)))
		}
	}
}

// startRender kicks off a frame against snapshots of the current values; the
// goroutine never touches App state, only the channel.
func (a *App) startRender() {
	sc, params, cam, rp := a.sc, a.params, a.cam, a.rp
	a.waiting = true
	go func() {
		img, err := render.Frame(context.Background(), sc, params, cam, rp)
		if err != nil {
			img = nil
		}
		a.frames <- img
	}()
}

// pollFrame uploads a finished render as a texture on the GL thread.
func (a *App) pollFrame() {
	select {
	case img := <-a.frames:
		a.waiting = false
		if img == nil {
			return
		}
		if a.hasTex {
			rl.UnloadTexture(a.tex)
		}
		a.tex = rl.LoadTextureFromImage(rl.NewImageFromImage(img))
		a.hasTex = true
		a.dirty = false
	default:
	}
}

// startLive rebuilds the runner from the current params so a method or
// velocity change applies to the very next click.
func (a *App) startLive(worldPos r2.Vec) {
	runner, err := sim.NewRunner(a.sc, a.params)
	if err != nil {
		return
	}
	a.live = sim.NewLiveRun(runner, sim.DefaultStepsPerTick)
	a.clicked = worldPos
	a.live.Start(worldPos, a.cam.LaunchVel)
	a.hasLive = true
}

func (a *App) stepLive() {
	if a.hasLive {
		a.live.Tick()
	}
}

func (a *App) screenV(w r2.Vec) rl.Vector2 {
	x, y := a.cam.ScreenAt(w)
	return rl.NewVector2(float32(x), float32(y))
}

func (a *App) drawFrame() {
	if a.hasTex {
		rl.DrawTexture(a.tex, 0, 0, rl.White)
	} else if !a.waiting {
		rl.DrawText("press ENTER to render the basin map", 10, int32(a.rp.Height/2), 20, colDim)
	}
}

func (a *App) drawBodies() {
	for _, b := range a.sc.Bodies {
		p := a.screenV(b.Pos)
		r := float32(b.Radius * a.cam.Zoom)
		rl.DrawCircleV(p, r+2, rl.Black)
		rl.DrawCircleV(p, r, rl.NewColor(b.Color.R, b.Color.G, b.Color.B, 255))
	}
}

func (a *App) drawLive() {
	if !a.hasLive {
		return
	}
	hist := a.live.History()
	for i := 1; i < len(hist); i++ {
		rl.DrawLineEx(a.screenV(hist[i-1]), a.screenV(hist[i]), 2, colTrail)
	}
	col := colTrail
	if out, done := a.live.Outcome(); done && out.Hit {
		col = colHit
	}
	rl.DrawCircleV(a.screenV(a.live.Pos()), 3, col)
	click := a.screenV(a.clicked)
	rl.DrawRectangleLines(int32(click.X)-2, int32(click.Y)-2, 4, 4, rl.White)
}

func (a *App) drawHUD() {
	lines := []string{
		"arrows: launch velocity   wasd: pan   q/e: zoom",
		"+/-: step size   space: integrator   enter: render   click: trace",
	}
	y := int32(10)
	for _, l := range lines {
		rl.DrawText(l, 10, y, 10, colDim)
		y += 14
	}
	y += 6
	rl.DrawText(fmt.Sprintf("step %.1f  vel (%.1f, %.1f)  cam (%.1f, %.1f)  zoom %.2f  %s",
		a.step, a.cam.LaunchVel.X, a.cam.LaunchVel.Y,
		a.cam.Offset.X, a.cam.Offset.Y, a.cam.Zoom, a.params.Method), 10, y, 10, colAccent)
	y += 16

	switch {
	case a.waiting:
		rl.DrawText("rendering...", 10, y, 10, colWarn)
		y += 16
	case a.dirty:
		rl.DrawText("parameters changed - press ENTER to re-render", 10, y, 10, colWarn)
		y += 16
	}

	if a.hasLive {
		status := fmt.Sprintf("tracing... step %d", a.live.Steps())
		if out, done := a.live.Outcome(); done {
			status = out.String()
		}
		rl.DrawText(status, 10, y, 10, colText)
	}
}
