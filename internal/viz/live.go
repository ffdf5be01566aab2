package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/quadsim/internal/control"
	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/sim"
)

const (
	width           = 60
	height          = 20
	historyCapacity = 600
	trailCapacity   = 200
	frameRate       = 60

	thrustStep = 0.05
	stickStep  = 0.1
	armLength  = 0.6
	viewSpan   = 20.0
	minCeiling = 10.0
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model drives a simulator from Bubble Tea ticks. The simulator and the
// manual source are shared pointers, so copies of Model see the same
// flight.
type Model struct {
	sim           *sim.Simulator
	manual        *control.Manual
	cfg           sim.Config
	unitsPerMeter float64
	name          string

	canvas   *Canvas
	trail    []dynamo.Vec3
	altitude []float64
	climb    []float64
	ceiling  float64
	running  bool
	showHelp bool
	err      error
}

func NewModel(s *sim.Simulator, manual *control.Manual, cfg sim.Config, unitsPerMeter float64, name string) Model {
	return Model{
		sim:           s,
		manual:        manual,
		cfg:           cfg,
		unitsPerMeter: unitsPerMeter,
		name:          name,
		canvas:        NewCanvas(width, height),
		trail:         make([]dynamo.Vec3, 0, trailCapacity),
		altitude:      make([]float64, 0, historyCapacity),
		climb:         make([]float64, 0, historyCapacity),
		ceiling:       minCeiling,
		running:       true,
	}
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "?":
			m.showHelp = !m.showHelp
		case "w":
			m.manual.Nudge(control.AxisThrust, thrustStep)
		case "s":
			m.manual.Nudge(control.AxisThrust, -thrustStep)
		case "up", "k":
			m.manual.Nudge(control.AxisMoveUp, stickStep)
		case "down", "j":
			m.manual.Nudge(control.AxisMoveUp, -stickStep)
		case "right", "l":
			m.manual.Nudge(control.AxisMoveRight, stickStep)
		case "left", "h":
			m.manual.Nudge(control.AxisMoveRight, -stickStep)
		case "x":
			in := m.manual.Sample(dynamo.Sample{})
			m.manual.Set(control.Inputs{Thrust: in.Thrust})
		case "c":
			m.manual.Collide()
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

// step runs one input frame. The frame length is fixed so a slow terminal
// slows the flight down instead of making it coarser.
func (m *Model) step() {
	n, err := m.sim.Frame(m.cfg, 1.0/frameRate)
	if err != nil {
		m.err = err
		m.running = false
	}
	if n == 0 {
		return
	}

	s := m.sim.Last()
	m.trail = appendCapped(m.trail, s.Position, trailCapacity)
	m.altitude = appendCapped(m.altitude, s.Position[2], historyCapacity)
	m.climb = appendCapped(m.climb, s.Velocity[2], historyCapacity)
	for s.Position[2] > m.ceiling*0.9 {
		m.ceiling *= 2
	}
}

func (m *Model) reset() {
	m.sim.Reset()
	m.manual.Set(control.Inputs{})
	m.manual.TakeCollision()
	m.trail = m.trail[:0]
	m.altitude = m.altitude[:0]
	m.climb = m.climb[:0]
	m.ceiling = minCeiling
	m.err = nil
	m.running = true
}

func appendCapped[T any](s []T, v T, capacity int) []T {
	s = append(s, v)
	if len(s) > capacity {
		s = s[1:]
	}
	return s
}

// draw renders the side view: ground, trail, and the airframe pitched by
// its current attitude.
func (m *Model) draw() {
	m.canvas.Clear()
	s := m.sim.Last()
	vp := Viewport{CenterX: s.Position[0], Top: m.ceiling, Span: viewSpan}

	w, h := m.canvas.Dots()
	m.canvas.Line(0, h-1, w-1, h-1)

	for _, p := range m.trail {
		m.canvas.Set(vp.Project(m.canvas, p[0], p[2]))
	}

	pitch := s.Orientation.Pitch
	dx, dz := armLength*math.Cos(pitch), armLength*math.Sin(pitch)
	x, z := s.Position[0], s.Position[2]
	lx, lz := vp.Project(m.canvas, x-dx, z+dz)
	rx, rz := vp.Project(m.canvas, x+dx, z-dz)
	m.canvas.Line(lx, lz, rx, rz)
	m.canvas.Line(lx-2, lz-2, lx+2, lz-2)
	m.canvas.Line(rx-2, rz-2, rx+2, rz-2)
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return statusFailed.Render("DIVERGED")
	case !m.running:
		return statusPaused.Render("PAUSED")
	}
	return statusRunning.Render("FLYING")
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
}

func (m Model) View() string {
	m.draw()
	s := m.sim.Last()
	pose := s.Pose()
	world := pose.World(m.unitsPerMeter)
	rot := pose.Rotator()
	rates := m.sim.Mapper().Rates()
	in := m.manual.Sample(dynamo.Sample{})

	var b strings.Builder
	b.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	b.WriteString(m.status() + "\n\n")

	if len(m.altitude) > 1 {
		chart := asciigraph.Plot(m.altitude, asciigraph.Height(5), asciigraph.Width(34), asciigraph.Caption("Altitude (m)"))
		b.WriteString(graphStyle.Render(chart) + "\n")
	}

	b.WriteString(row("Time", fmt.Sprintf("%.2fs", s.Time)))
	b.WriteString(row("Position", fmt.Sprintf("%6.2f %6.2f %6.2f", s.Position[0], s.Position[1], s.Position[2])))
	b.WriteString(row("World", fmt.Sprintf("%6.0f %6.0f %6.0f", world[0], world[1], world[2])))
	b.WriteString(row("Velocity", fmt.Sprintf("%6.2f %6.2f %6.2f", s.Velocity[0], s.Velocity[1], s.Velocity[2])))
	b.WriteString(row("Climb", Sparkline(m.climb, 30)))
	b.WriteString(row("Rotator", fmt.Sprintf("P%6.1f Y%6.1f R%6.1f", rot.Pitch, rot.Yaw, rot.Roll)))
	grounded := "no"
	if s.Grounded {
		grounded = "yes"
	}
	b.WriteString(row("Grounded", grounded))

	b.WriteString("\nINPUT\n")
	b.WriteString(row("Thrust", AxisBar(in.Thrust, 20)))
	b.WriteString(row("MoveUp", AxisBar(in.MoveUp, 20)))
	b.WriteString(row("MoveRight", AxisBar(in.MoveRight, 20)))

	b.WriteString("\nRATES\n")
	b.WriteString(row("Forward", fmt.Sprintf("%.1f", rates.Forward)))
	b.WriteString(row("Pitch", fmt.Sprintf("%.2f", rates.Pitch)))
	b.WriteString(row("Yaw", fmt.Sprintf("%.2f", rates.Yaw)))
	b.WriteString(row("Roll", fmt.Sprintf("%.2f", rates.Roll)))

	if m.err != nil {
		b.WriteString("\n" + statusFailed.Render(m.err.Error()) + "\n")
	}
	b.WriteString(helpStyle.Render("─────────────────────\nW/S:Thrust ↑↓←→:Sticks X:Center\nC:Collide SP:Pause R:Reset Q:Quit ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(m.canvas.String()), statsStyle.Render(b.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  W / S    - Thrust up / down         ║
║  Up/Down  - MoveUp stick             ║
║  Lt/Rt    - MoveRight stick          ║
║  X        - Center sticks            ║
║  C        - Collision event          ║
║  Space    - Pause/Resume             ║
║  R        - Reset flight             ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// Run starts the live view on the alternate screen.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
