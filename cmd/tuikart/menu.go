package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/taigrr/tuikart/pkg/ai"
	"github.com/taigrr/tuikart/pkg/race"
	"github.com/taigrr/tuikart/pkg/vehicle"
)

var docStyle = lipgloss.NewStyle().Margin(1, 2)

type menuStep int

const (
	pickMode menuStep = iota
	pickDifficulty
	pickClass
	numSteps
)

type choice struct {
	title, desc string
	value       string
}

func (c choice) Title() string       { return c.title }
func (c choice) Description() string { return c.desc }
func (c choice) FilterValue() string { return c.title }

type menuModel struct {
	lists  [numSteps]list.Model
	step   menuStep
	picks  [numSteps]string
	done   bool
	width  int
	height int
}

func newMenu() menuModel {
	modes := []list.Item{
		choice{"Single race", "One race against the field", race.SingleRace.String()},
		choice{"Grand Prix", "A series of races scored 10-8-6-5-4-3-2-1", race.GrandPrix.String()},
		choice{"Time trial", "Just you and the clock", race.TimeTrial.String()},
	}

	var levels []list.Item
	for d := ai.Easy; d <= ai.Expert; d++ {
		p := d.Profile()
		levels = append(levels, choice{
			title: d.String(),
			desc:  fmt.Sprintf("skill %.0f%%, pace %.0f%%", p.Skill*100, p.SpeedFactor*100),
			value: d.String(),
		})
	}

	var classes []list.Item
	for _, c := range vehicle.Classes {
		classes = append(classes, choice{
			title: c.Name,
			desc:  fmt.Sprintf("top speed %.0f, grip %.1f", c.MaxSpeed, c.Grip),
			value: c.Name,
		})
	}

	var m menuModel
	titles := [numSteps]string{"Race mode", "Opponents", "Kart"}
	for i, items := range [numSteps][]list.Item{modes, levels, classes} {
		l := list.New(items, list.NewDefaultDelegate(), 0, 0)
		l.Title = titles[i]
		l.SetFilteringEnabled(false)
		m.lists[i] = l
	}
	return m
}

func (m menuModel) Init() tea.Cmd {
	return nil
}

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.step == pickMode {
				return m, tea.Quit
			}
			m.step--
			if m.step == pickDifficulty && m.picks[pickMode] == race.TimeTrial.String() {
				m.step--
			}
			return m, nil
		case "enter":
			if it, ok := m.lists[m.step].SelectedItem().(choice); ok {
				m.picks[m.step] = it.value
			}
			// Time trials have no opponents to pick.
			if m.step == pickMode && m.picks[pickMode] == race.TimeTrial.String() {
				m.step++
			}
			m.step++
			if m.step == numSteps {
				m.done = true
				return m, tea.Quit
			}
			return m, nil
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		for i := range m.lists {
			m.lists[i].SetSize(msg.Width-h, msg.Height-v)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.lists[m.step], cmd = m.lists[m.step].Update(msg)
	return m, cmd
}

func (m menuModel) View() string {
	return docStyle.Render(m.lists[m.step].View())
}

func menuAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	p := tea.NewProgram(newMenu(), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("menu: %w", err)
	}
	m := final.(menuModel)
	if !m.done {
		return nil
	}

	cfg.Mode = m.picks[pickMode]
	if d := m.picks[pickDifficulty]; d != "" {
		cfg.Difficulty = d
	}
	cfg.VehicleClass = m.picks[pickClass]
	return play(ctx, cfg)
}
