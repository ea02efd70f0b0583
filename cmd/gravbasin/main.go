package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kmoroz/gravbasin/internal/analysis"
	"github.com/kmoroz/gravbasin/internal/camera"
	"github.com/kmoroz/gravbasin/internal/config"
	"github.com/kmoroz/gravbasin/internal/gui"
	"github.com/kmoroz/gravbasin/internal/integrator"
	"github.com/kmoroz/gravbasin/internal/render"
	"github.com/kmoroz/gravbasin/internal/scene"
	"github.com/kmoroz/gravbasin/internal/sim"
	"github.com/kmoroz/gravbasin/internal/storage"
	"github.com/kmoroz/gravbasin/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	width      int
	height     int
	workers    int
	dt         float64
	maxSteps   int
	method     string
	escape     float64
	zoom       float64
	camX       float64
	camY       float64
	velX       float64
	velY       float64
	startX     float64
	startY     float64
	frameRate  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gravbasin",
		Short: "gravitational basin-of-attraction renderer",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to the windowed interactive mode.
			return runGUI(cmd, args)
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gravbasin", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "render the basin map to a PNG",
		RunE:  runRender,
	}
	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "animate one trajectory in the terminal",
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&startX, "x", 300, "release position x (world)")
	liveCmd.Flags().Float64Var(&startY, "y", 50, "release position y (world)")
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	traceCmd := &cobra.Command{
		Use:   "trace",
		Short: "run one trajectory and export it as CSV",
		RunE:  runTrace,
	}
	traceCmd.Flags().Float64Var(&startX, "x", 300, "release position x (world)")
	traceCmd.Flags().Float64Var(&startY, "y", 50, "release position y (world)")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "basin statistics for the current setup",
		RunE:  runStats,
	}
	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "compare euler and rk4 basin classifications",
		RunE:  runCompare,
	}
	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenes",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range scene.Presets() {
				fmt.Println(name)
			}
		},
	}
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  runList,
	}
	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "windowed interactive mode",
		RunE:  runGUI,
	}

	for _, c := range []*cobra.Command{rootCmd, renderCmd, liveCmd, traceCmd, statsCmd, compareCmd, guiCmd} {
		c.Flags().StringVar(&preset, "preset", "", "built-in scene name")
		c.Flags().IntVar(&width, "width", 600, "image width")
		c.Flags().IntVar(&height, "height", 600, "image height")
		c.Flags().IntVar(&workers, "workers", 0, "render workers (0 = all CPUs)")
		c.Flags().Float64Var(&dt, "dt", 0.0016, "integration timestep")
		c.Flags().IntVar(&maxSteps, "steps", 20000, "step budget per trajectory")
		c.Flags().StringVar(&method, "method", "rk4", "integration method (euler|rk4)")
		c.Flags().Float64Var(&escape, "escape", 1e6, "escape radius safeguard")
		c.Flags().Float64Var(&zoom, "zoom", 1, "camera zoom")
		c.Flags().Float64Var(&camX, "cx", 0, "camera offset x")
		c.Flags().Float64Var(&camY, "cy", 0, "camera offset y")
		c.Flags().Float64Var(&velX, "vx", 0, "launch velocity x")
		c.Flags().Float64Var(&velY, "vy", 0, "launch velocity y")
	}

	rootCmd.AddCommand(renderCmd, liveCmd, traceCmd, statsCmd, compareCmd, presetsCmd, listCmd, guiCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup resolves the config file, then applies any explicitly set flags on
// top, and builds the core values from the result.
func setup(cmd *cobra.Command) (*scene.Scene, sim.Params, camera.Camera, render.Params, *config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, sim.Params{}, camera.Camera{}, render.Params{}, nil, err
		}
		cfg = loaded
	}

	set := func(name string) bool { return cmd.Flags().Changed(name) }
	if set("preset") {
		cfg.Preset = preset
	}
	if set("width") {
		cfg.Width = width
	}
	if set("height") {
		cfg.Height = height
	}
	if set("workers") {
		cfg.Workers = workers
	}
	if set("dt") {
		cfg.Dt = dt
	}
	if set("steps") {
		cfg.MaxSteps = maxSteps
	}
	if set("method") {
		cfg.Method = method
	}
	if set("escape") {
		cfg.EscapeRadius = escape
	}
	if set("zoom") {
		cfg.Camera.Zoom = zoom
	}
	if set("cx") {
		cfg.Camera.OffsetX = camX
	}
	if set("cy") {
		cfg.Camera.OffsetY = camY
	}
	if set("vx") {
		cfg.Camera.VX = velX
	}
	if set("vy") {
		cfg.Camera.VY = velY
	}

	sc, err := cfg.Scene()
	if err != nil {
		return nil, sim.Params{}, camera.Camera{}, render.Params{}, nil, err
	}
	sp, err := cfg.SimParams()
	if err != nil {
		return nil, sim.Params{}, camera.Camera{}, render.Params{}, nil, err
	}
	rp := cfg.RenderParams()
	if err := rp.Validate(); err != nil {
		return nil, sim.Params{}, camera.Camera{}, render.Params{}, nil, err
	}
	return sc, sp, cfg.View(), rp, cfg, nil
}

func metaFor(cfg *config.Config, sp sim.Params, cam camera.Camera, rp render.Params) storage.RunMetadata {
	return storage.RunMetadata{
		Preset:   cfg.Preset,
		Method:   sp.Method.String(),
		Dt:       sp.Dt,
		MaxSteps: sp.MaxSteps,
		Width:    rp.Width,
		Height:   rp.Height,
		Zoom:     cam.Zoom,
		OffsetX:  cam.Offset.X,
		OffsetY:  cam.Offset.Y,
		VX:       cam.LaunchVel.X,
		VY:       cam.LaunchVel.Y,
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	sc, sp, cam, rp, cfg, err := setup(cmd)
	if err != nil {
		return err
	}

	start := time.Now()
	grid, err := render.Outcomes(context.Background(), sc, sp, cam, rp)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	img := render.Compose(grid, sc, sp, rp)
	report := analysis.Basins(grid, len(sc.Bodies))

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	meta := metaFor(cfg, sp, cam, rp)
	meta.ElapsedMilli = elapsed.Milliseconds()
	meta.Basins = &report

	id, err := store.SaveRender(meta, img)
	if err != nil {
		return err
	}
	fmt.Printf("rendered %dx%d in %s (%s)\n", rp.Width, rp.Height, elapsed.Round(time.Millisecond), sp.Method)
	fmt.Printf("saved to %s\n", store.Dir(id))
	printReport(sc, report)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	sc, sp, cam, rp, _, err := setup(cmd)
	if err != nil {
		return err
	}
	grid, err := render.Outcomes(context.Background(), sc, sp, cam, rp)
	if err != nil {
		return err
	}
	printReport(sc, analysis.Basins(grid, len(sc.Bodies)))
	return nil
}

func printReport(sc *scene.Scene, rep analysis.Report) {
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tCOLOR\tSHARE\tMEAN STEPS\tSTD")
	for _, b := range rep.Basins {
		fmt.Fprintf(w, "%d\t%s\t%.1f%%\t%.0f\t%.0f\n",
			b.Body, config.FormatColor(sc.Bodies[b.Body].Color), b.Share*100, b.MeanSteps, b.StdSteps)
	}
	fmt.Fprintf(w, "-\ttimeout\t%.1f%%\t\t\n", rep.TimedOut*100)
	w.Flush()
}

func runCompare(cmd *cobra.Command, args []string) error {
	sc, sp, cam, rp, _, err := setup(cmd)
	if err != nil {
		return err
	}

	grids := make(map[integrator.Method][]sim.Outcome, 2)
	times := make(map[integrator.Method]time.Duration, 2)
	for _, m := range []integrator.Method{integrator.Euler, integrator.RungeKutta4} {
		p := sp
		p.Method = m
		start := time.Now()
		grid, err := render.Outcomes(context.Background(), sc, p, cam, rp)
		if err != nil {
			return err
		}
		times[m] = time.Since(start)
		grids[m] = grid
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tTIME\tTIMEOUT")
	for _, m := range []integrator.Method{integrator.Euler, integrator.RungeKutta4} {
		rep := analysis.Basins(grids[m], len(sc.Bodies))
		fmt.Fprintf(w, "%s\t%s\t%.1f%%\n", m, times[m].Round(time.Millisecond), rep.TimedOut*100)
	}
	w.Flush()
	fmt.Printf("classification agreement: %.2f%%\n",
		analysis.Agreement(grids[integrator.Euler], grids[integrator.RungeKutta4])*100)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	sc, sp, cam, rp, _, err := setup(cmd)
	if err != nil {
		return err
	}
	runner, err := sim.NewRunner(sc, sp)
	if err != nil {
		return err
	}
	run := sim.NewLiveRun(runner, sim.DefaultStepsPerTick)
	return viz.Run(run, cam, r2.Vec{X: startX, Y: startY}, rp.Width, rp.Height, frameRate)
}

func runTrace(cmd *cobra.Command, args []string) error {
	sc, sp, cam, rp, cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	runner, err := sim.NewRunner(sc, sp)
	if err != nil {
		return err
	}

	start := integrator.Particle{Pos: r2.Vec{X: startX, Y: startY}, Vel: cam.LaunchVel}
	var history []r2.Vec
	out := runner.RunTrace(start, func(step int, p integrator.Particle) bool {
		history = append(history, p.Pos)
		return true
	})

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	id, err := store.SaveTrace(metaFor(cfg, sp, cam, rp), history)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", out)
	fmt.Printf("saved %d positions to %s\n", len(history), store.Dir(id))
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no saved runs")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tWHEN\tMETHOD\tSIZE")
	for _, r := range runs {
		size := ""
		if r.Kind == "render" {
			size = fmt.Sprintf("%dx%d", r.Width, r.Height)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Kind, r.Timestamp.Format("2006-01-02 15:04:05"), r.Method, size)
	}
	return w.Flush()
}

func runGUI(cmd *cobra.Command, args []string) error {
	sc, sp, cam, rp, _, err := setup(cmd)
	if err != nil {
		return err
	}
	return gui.Run(sc, sp, cam, rp)
}
