// Package tui is the terminal front end for the weather page.
package tui

import (
	"context"
	"strings"

	"weather-lookup/ui"
	"weather-lookup/ui/autocomplete"
	"weather-lookup/ui/weathercard"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
)

const (
	inputRow      = 2
	firstPanelRow = inputRow + 1
)

// changedMsg tells the model that page state moved under it.
type changedMsg struct{}

type model struct {
	page    *ui.Page
	changes chan struct{}

	input   textinput.Model
	spinner spinner.Model
	// highlighted suggestion, -1 for none
	cursor int
	// last text handed to the page
	query string

	keyMap KeyMap
	style  *Style
	width  int
}

func newModel(backend ui.Backend, opts ui.Options) model {
	changes := make(chan struct{}, 1)
	opts.OnChange = func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	}

	input := textinput.New()
	input.Placeholder = "Enter city name..."
	input.Prompt = "> "
	input.Focus()

	return model{
		page:    ui.NewPage(backend, opts),
		changes: changes,
		input:   input,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		cursor:  -1,
		keyMap:  DefaultKeyMap,
		style:   DefaultStyles(),
	}
}

func (m model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		<-m.changes
		return changedMsg{}
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.waitForChange())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.Quit):
			m.page.Close()
			return m, tea.Quit

		case key.Matches(msg, m.keyMap.Dismiss):
			m.page.Pointer.PointerDown(autocomplete.TargetOutside)
			m.cursor = -1

		case key.Matches(msg, m.keyMap.SelectNext):
			if n := len(m.visibleSuggestions()); n > 0 {
				m.cursor = (m.cursor + 1) % n
			}

		case key.Matches(msg, m.keyMap.SelectPrev):
			if n := len(m.visibleSuggestions()); n > 0 {
				m.cursor = (m.cursor - 1 + n) % n
			}

		case key.Matches(msg, m.keyMap.Submit):
			if m.cursor >= 0 && m.cursor < len(m.visibleSuggestions()) {
				m.selectSuggestion(m.cursor)
			} else {
				m.page.Input.Submit()
			}
			m.cursor = -1

		default:
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
			m.syncQuery()
		}

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress {
			m.pointerDown(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-4, 10)

	case changedMsg:
		if m.cursor >= len(m.visibleSuggestions()) {
			m.cursor = -1
		}
		cmds = append(cmds, m.waitForChange())

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	default:
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) syncQuery() {
	if v := m.input.Value(); v != m.query {
		m.query = v
		m.cursor = -1
		m.page.Input.SetQuery(v)
	}
}

func (m *model) selectSuggestion(i int) {
	m.page.Input.Select(i)
	m.query = m.page.Input.State().Query
	m.input.SetValue(m.query)
	m.input.CursorEnd()
}

// pointerDown classifies a click by the row it landed on.
func (m *model) pointerDown(msg tea.MouseMsg) {
	suggestions := m.visibleSuggestions()

	switch {
	case msg.Y == inputRow:
		m.page.Pointer.PointerDown(autocomplete.TargetInput)
	case msg.Y >= firstPanelRow && msg.Y < firstPanelRow+len(suggestions):
		m.page.Pointer.PointerDown(autocomplete.TargetPanel)
		if msg.Button == tea.MouseButtonLeft {
			m.selectSuggestion(msg.Y - firstPanelRow)
			m.cursor = -1
		}
	default:
		m.page.Pointer.PointerDown(autocomplete.TargetOutside)
		m.cursor = -1
	}
}

func (m model) visibleSuggestions() []string {
	state := m.page.Input.State()
	if !state.Visible() {
		return nil
	}
	labels := make([]string, len(state.Suggestions))
	for i, s := range state.Suggestions {
		labels[i] = s.Label()
	}
	return labels
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(m.style.Title.Render("Weather Forecast"))
	b.WriteString("\n")
	b.WriteString(m.style.Muted.Render("Enter a city name to get detailed weather information"))
	b.WriteString("\n")

	card := m.page.Card.State()
	b.WriteString(m.input.View())
	if card.Loading {
		b.WriteString(" " + m.spinner.View())
	}
	b.WriteString("\n")

	for i, label := range m.visibleSuggestions() {
		if i == m.cursor {
			b.WriteString(m.style.Selected.Render(label))
		} else {
			b.WriteString(m.style.Suggestion.Render(label))
		}
		b.WriteString("\n")
	}

	if card.Err != "" {
		b.WriteString("\n")
		b.WriteString(m.style.Error.Render(card.Err))
		b.WriteString("\n")
	}

	if view, ok := m.page.Card.View(); ok {
		b.WriteString("\n")
		b.WriteString(m.style.Card.Render(m.renderCard(view)))
		b.WriteString("\n")
	}

	b.WriteString(m.style.Muted.Render("enter: search • ↑/↓: pick • esc: close • ctrl+c: quit"))
	b.WriteString("\n")

	return b.String()
}

var iconGlyphs = map[weathercard.Icon]string{
	weathercard.IconStorm: "⛈",
	weathercard.IconRain:  "🌧",
	weathercard.IconSnow:  "❄",
	weathercard.IconFog:   "🌫",
	weathercard.IconClear: "☀",
	weathercard.IconCloud: "☁",
}

func (m model) renderCard(v weathercard.View) string {
	row := func(label, value string) string {
		return m.style.Label.Render(label) + value
	}

	lines := []string{
		m.style.Big.Render(v.City) + "  " + m.style.Big.Render(v.Temperature),
		m.style.Muted.Render(v.Description) + "  " + m.style.Muted.Render(v.FeelsLike),
		"",
		row("Min/Max", v.MinMax),
		row("Wind Speed", v.Wind),
		row("Humidity", v.Humidity),
		row("Pressure", v.Pressure),
		row("Sunrise", v.Sunrise),
		row("Sunset", v.Sunset),
		"",
		iconGlyphs[v.Icon] + "  Current Conditions",
		row("Visibility", v.Visibility),
	}
	return strings.Join(lines, "\n")
}

// Run starts the terminal UI and blocks until the user quits or ctx ends.
func Run(ctx context.Context, backend ui.Backend, opts ui.Options) error {
	m := newModel(backend, opts)
	defer m.page.Close()

	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "terminal UI failed")
	}
	return nil
}
