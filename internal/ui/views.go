package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Step is one dependency shown in the install view.
type Step struct {
	Key    string
	System string
	Name   string
	Status string
	Detail string
}

type AppState int

const (
	StateInstalling AppState = iota
	StateComplete
	StateError
)

// Messages
type (
	StepStartedMsg struct {
		Key string
	}
	StepFinishedMsg struct {
		Key    string
		Status string
		Detail string
	}
	RunCompleteMsg struct {
		Report string
		Err    error
	}
	ShutdownMsg struct{}
)

const (
	// maxOutputLines bounds the command output kept in memory.
	maxOutputLines = 200
	// outputRows is how much of it the install view shows.
	outputRows = 8
)

// Model follows a run: a list of dependencies with a progress bar while
// installing, then the Markdown report in a scrollable viewport.
type Model struct {
	title  string
	state  AppState
	width  int
	height int

	steps []Step
	index map[string]int

	// Components
	spinner  spinner.Model
	progress progress.Model
	viewport viewport.Model

	output []string
	report string
	err    error
}

func NewModel(title string, steps []Step) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	p := progress.New(progress.WithDefaultGradient())
	p.Width = 60

	index := make(map[string]int, len(steps))
	for i := range steps {
		if steps[i].Status == "" {
			steps[i].Status = StatusPending
		}
		index[steps[i].Key] = i
	}

	return &Model{
		title:    title,
		state:    StateInstalling,
		steps:    steps,
		index:    index,
		spinner:  s,
		progress: p,
		viewport: viewport.New(80, 20),
	}
}

func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = max(msg.Width-4, 10)
		m.viewport.Width = max(msg.Width-4, 10)
		m.viewport.Height = max(msg.Height-10, 5)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q", "esc":
			if m.state != StateInstalling {
				return m, tea.Quit
			}
		default:
			if m.state != StateInstalling {
				var cmd tea.Cmd
				m.viewport, cmd = m.viewport.Update(msg)
				cmds = append(cmds, cmd)
			}
		}

	case tea.MouseMsg:
		if m.state != StateInstalling {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case StepStartedMsg:
		m.updateStep(msg.Key, StatusRunning, "")

	case StepFinishedMsg:
		m.updateStep(msg.Key, msg.Status, msg.Detail)

	case OutputMsg:
		m.output = append(m.output, msg.Line)
		if len(m.output) > maxOutputLines {
			m.output = m.output[len(m.output)-maxOutputLines:]
		}

	case RunCompleteMsg:
		m.report = msg.Report
		m.err = msg.Err
		m.state = StateComplete
		if msg.Err != nil {
			m.state = StateError
		}
		m.viewport.SetContent(msg.Report)
		m.viewport.GotoTop()

	case ShutdownMsg:
		return m, tea.Quit
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) View() string {
	var sections []string

	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderProgress())

	switch m.state {
	case StateInstalling:
		sections = append(sections, m.renderSteps())
		if len(m.output) > 0 {
			sections = append(sections, m.renderOutput())
		}
	case StateComplete:
		sections = append(sections, m.renderReport())
	case StateError:
		sections = append(sections, m.renderError(), m.renderReport())
	}

	sections = append(sections, m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// State reports the current view state.
func (m *Model) State() AppState {
	return m.state
}

// Output returns the command output lines kept so far, oldest first.
func (m *Model) Output() []string {
	return append([]string(nil), m.output...)
}

// Counts returns how many steps were installed, and the total.
func (m *Model) Counts() (installed, total int) {
	for _, step := range m.steps {
		if step.Status == StatusInstalled {
			installed++
		}
	}
	return installed, len(m.steps)
}

func (m *Model) renderHeader() string {
	logo := logoStyle.Render("🧰 envsetup")
	if m.title == "" {
		return logo
	}
	return lipgloss.JoinVertical(lipgloss.Left, logo, headerStyle.Render(m.title))
}

func (m *Model) renderProgress() string {
	installed, total := m.Counts()
	finished := 0
	for _, step := range m.steps {
		if step.Status != StatusPending && step.Status != StatusRunning {
			finished++
		}
	}

	percent := 0.0
	if total > 0 {
		percent = float64(installed) / float64(total)
	}

	label := fmt.Sprintf("%d/%d installed", installed, total)
	if m.state == StateInstalling {
		label = fmt.Sprintf("%s %d/%d done, %s", m.spinner.View(), finished, total, label)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.progress.ViewAs(percent), mutedStyle.Render(label))
}

func (m *Model) renderSteps() string {
	var rows []string
	system := ""
	for _, step := range m.steps {
		if step.System != system {
			system = step.System
			rows = append(rows, highlightStyle.Render(system))
		}
		row := fmt.Sprintf("  %s %s", StatusIndicator(step.Status), step.Name)
		if step.Detail != "" {
			row += " " + mutedStyle.Render(step.Detail)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		rows = append(rows, mutedStyle.Render("nothing to install"))
	}
	return adaptiveCardStyle(m.width).Render(strings.Join(rows, "\n"))
}

// renderOutput shows the tail of the install commands' output.
func (m *Model) renderOutput() string {
	lines := m.output
	if len(lines) > outputRows {
		lines = lines[len(lines)-outputRows:]
	}
	style := mutedStyle
	if m.width > 4 {
		style = style.MaxWidth(m.width - 4)
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderReport() string {
	return m.viewport.View()
}

func (m *Model) renderError() string {
	return errorStyle.Render("✘ " + m.err.Error())
}

func (m *Model) renderFooter() string {
	if m.state == StateInstalling {
		return mutedStyle.Render("installing... • Ctrl+C to stop")
	}
	return mutedStyle.Render(fmt.Sprintf("↑/↓ scroll • q to quit • %3.f%%", m.viewport.ScrollPercent()*100))
}

func (m *Model) updateStep(key, status, detail string) {
	i, ok := m.index[key]
	if !ok {
		return
	}
	m.steps[i].Status = status
	m.steps[i].Detail = detail
}
