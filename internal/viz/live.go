package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kmoroz/gravbasin/internal/camera"
	"github.com/kmoroz/gravbasin/internal/sim"
)

const (
	canvasCols = 76
	canvasRows = 28
	speedHist  = 240
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(42)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	hitStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Model animates one live trajectory: one sim tick per display tick, drawn
// onto a braille canvas next to a stats pane.
type Model struct {
	run    *sim.LiveRun
	cam    camera.Camera
	start  r2.Vec
	refW   int
	refH   int
	fps    int
	canvas *Canvas
	speeds []float64
	paused bool
}

// NewModel seeds a live run released at the world position start.
func NewModel(run *sim.LiveRun, cam camera.Camera, start r2.Vec, refW, refH, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	m := Model{
		run:    run,
		cam:    cam,
		start:  start,
		refW:   refW,
		refH:   refH,
		fps:    fps,
		canvas: NewCanvas(canvasCols, canvasRows),
		speeds: make([]float64, 0, speedHist),
	}
	m.run.Start(start, cam.LaunchVel)
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "r":
			m.run.Start(m.start, m.cam.LaunchVel)
			m.speeds = m.speeds[:0]
		}
	case TickMsg:
		if !m.paused && m.run.Phase() == sim.Running {
			m.run.Tick()
			m.speeds = append(m.speeds, r2.Norm(m.run.Vel()))
			if len(m.speeds) > speedHist {
				m.speeds = m.speeds[1:]
			}
		}
		return m, m.tick()
	}
	return m, nil
}

// dotAt projects a world position through the camera into canvas dots.
func (m Model) dotAt(w r2.Vec) (int, int) {
	sx, sy := m.cam.ScreenAt(w)
	return int(sx / float64(m.refW) * float64(m.canvas.DotWidth())),
		int(sy / float64(m.refH) * float64(m.canvas.DotHeight()))
}

func (m Model) draw() {
	m.canvas.Clear()
	sc := m.run.Scene()
	for _, b := range sc.Bodies {
		bx, by := m.dotAt(b.Pos)
		_, edge := m.dotAt(r2.Add(b.Pos, r2.Vec{Y: b.Radius}))
		m.canvas.DrawCircle(bx, by, edge-by)
	}
	hist := m.run.History()
	for i := 1; i < len(hist); i++ {
		x0, y0 := m.dotAt(hist[i-1])
		x1, y1 := m.dotAt(hist[i])
		m.canvas.DrawLine(x0, y0, x1, y1)
	}
	px, py := m.dotAt(m.run.Pos())
	m.canvas.FillBlock(px, py, 1)
}

func (m Model) View() string {
	m.draw()

	var s strings.Builder
	s.WriteString(headerStyle.Render("LIVE TRAJECTORY") + "\n")

	status := strings.ToUpper(m.run.Phase().String())
	if m.paused && m.run.Phase() == sim.Running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")

	if len(m.speeds) > 1 {
		chart := asciigraph.Plot(m.speeds, asciigraph.Height(4), asciigraph.Width(28), asciigraph.Caption("Speed"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	pos := m.run.Pos()
	s.WriteString(labelStyle.Render("Steps") + valueStyle.Render(fmt.Sprintf("%d", m.run.Steps())) + "\n")
	s.WriteString(labelStyle.Render("Pos") + valueStyle.Render(fmt.Sprintf("(%.1f, %.1f)", pos.X, pos.Y)) + "\n")
	s.WriteString(labelStyle.Render("Speed") + valueStyle.Render(fmt.Sprintf("%.2f", r2.Norm(m.run.Vel()))) + "\n")

	if out, done := m.run.Outcome(); done {
		s.WriteString("\n")
		if out.Hit {
			s.WriteString(hitStyle.Render(fmt.Sprintf("CAPTURED by body %d (%d steps)", out.Body, out.Steps)) + "\n")
		} else {
			s.WriteString(valueStyle.Render(fmt.Sprintf("NO CAPTURE (%d steps)", out.Steps)) + "\n")
		}
	}

	s.WriteString(helpStyle.Render("\n──────────────────\nSP:Pause R:Restart Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(m.canvas.String()),
		statsStyle.Render(s.String()),
	)
}

// Run starts the bubbletea program for a live trajectory.
func Run(run *sim.LiveRun, cam camera.Camera, start r2.Vec, refW, refH, fps int) error {
	_, err := tea.NewProgram(NewModel(run, cam, start, refW, refH, fps)).Run()
	return err
}
