package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Preset is one entry in the picker.
type Preset struct {
	Name        string
	Description string
}

// BuildFunc creates the live model for a preset.
type BuildFunc func(name string) (Model, error)

// Picker lists presets and hands over to a live Model once one is chosen.
type Picker struct {
	presets []Preset
	cursor  int
	build   BuildFunc
	live    *Model
	err     error
}

func NewPicker(presets []Preset, build BuildFunc) Picker {
	return Picker{presets: presets, build: build}
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.live != nil {
		next, cmd := p.live.Update(msg)
		live := next.(Model)
		p.live = &live
		return p, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.presets)-1 {
			p.cursor++
		}
	case "enter", " ":
		if len(p.presets) == 0 {
			return p, nil
		}
		live, err := p.build(p.presets[p.cursor].Name)
		if err != nil {
			p.err = err
			return p, nil
		}
		p.err = nil
		p.live = &live
		return p, live.Init()
	}
	return p, nil
}

func (p Picker) View() string {
	if p.live != nil {
		return p.live.View()
	}

	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("QUADSIM") + "\n    " + menuSubtle.Render("quadcopter flight dynamics") + "\n    " + menuSubtle.Render("─────────────────────────") + "\n\n")
	for i, preset := range p.presets {
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuSelected.Render(fmt.Sprintf("%-12s", preset.Name)), menuDesc.Render(preset.Description)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", menuIdle.Render(fmt.Sprintf("%-12s", preset.Name)), menuIdle.Render(preset.Description)))
		}
	}
	if p.err != nil {
		b.WriteString("\n    " + statusFailed.Render(p.err.Error()) + "\n")
	}
	b.WriteString("\n    " + menuKey.Render("j/k") + menuSubtle.Render(" navigate  ") + menuKey.Render("enter") + menuSubtle.Render(" fly  ") + menuKey.Render("q") + menuSubtle.Render(" quit") + "\n")
	return b.String()
}

// RunPicker starts the preset picker on the alternate screen.
func RunPicker(p Picker) error {
	_, err := tea.NewProgram(p, tea.WithAltScreen()).Run()
	return err
}
