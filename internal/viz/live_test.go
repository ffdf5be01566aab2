package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/quadsim/internal/control"
	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/models"
	"github.com/san-kum/quadsim/internal/sim"
)

func newTestModel(t *testing.T) (Model, *control.Manual) {
	t.Helper()
	q := models.NewQuad(nil)
	if err := q.Initialize(models.DefaultParams(), models.InitialConditions{}); err != nil {
		t.Fatal(err)
	}
	manual := control.NewManual()
	s := sim.New(q, control.NewMapper(control.DefaultMapperParams()), manual)
	return NewModel(s, manual, sim.DefaultConfig(), 100, "test"), manual
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelThrustKeysDriveFlight(t *testing.T) {
	m, manual := newTestModel(t)

	for i := 0; i < 25; i++ {
		m = update(m, key("w"))
	}
	if got := manual.Sample(dynamo.Sample{}).Thrust; got != 1 {
		t.Fatalf("expected full thrust, got %f", got)
	}

	for i := 0; i < 120; i++ {
		m = update(m, TickMsg(time.Now()))
	}
	if z := m.sim.Last().Position[2]; z <= 0 {
		t.Errorf("expected the quad to climb, z=%f", z)
	}
	if len(m.altitude) == 0 {
		t.Error("expected altitude history")
	}
}

func TestModelPauseStopsClock(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(m, tea.KeyMsg{Type: tea.KeySpace})
	m = update(m, TickMsg(time.Now()))
	m = update(m, TickMsg(time.Now()))

	if m.sim.Ticks() != 0 {
		t.Errorf("paused model should not tick, got %d", m.sim.Ticks())
	}
}

func TestModelCollisionAndReset(t *testing.T) {
	m, manual := newTestModel(t)
	m = update(m, key("w"))
	m = update(m, key("c"))
	m = update(m, TickMsg(time.Now()))

	if got := m.sim.Mapper().Rates().Forward; got != 0 {
		t.Errorf("expected collision to stop forward channel, got %f", got)
	}

	for i := 0; i < 10; i++ {
		m = update(m, TickMsg(time.Now()))
	}
	m = update(m, key("r"))
	if m.sim.Ticks() != 0 || len(m.trail) != 0 {
		t.Error("reset should rewind the flight")
	}
	if manual.Sample(dynamo.Sample{}) != (control.Inputs{}) {
		t.Error("reset should center the sticks")
	}
}

func TestModelView(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(m, TickMsg(time.Now()))
	m = update(m, TickMsg(time.Now()))

	out := m.View()
	for _, want := range []string{"TEST", "FLYING", "Rotator", "Forward"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestPickerOpensPreset(t *testing.T) {
	var built string
	p := NewPicker([]Preset{{Name: "hover"}, {Name: "drop"}}, func(name string) (Model, error) {
		built = name
		m, _ := newTestModel(t)
		return m, nil
	})

	next, _ := p.Update(key("j"))
	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if built != "drop" {
		t.Errorf("expected drop to be built, got %q", built)
	}
	if cmd == nil {
		t.Error("expected the live model to start ticking")
	}
	if !strings.Contains(next.View(), "FLYING") {
		t.Error("picker should hand over to the live view")
	}
}

func TestCanvasProjection(t *testing.T) {
	c := NewCanvas(10, 5)
	vp := Viewport{CenterX: 0, Top: 10, Span: 20}

	x, y := vp.Project(c, 0, 0)
	if x != 10 || y != 19 {
		t.Errorf("ground center should map to (10,19), got (%d,%d)", x, y)
	}
	c.Set(x, y)
	if !strings.ContainsRune(c.String(), 0x2800|0x40) {
		t.Error("expected a lit dot in the bottom row")
	}
}
