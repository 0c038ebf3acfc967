package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"probe/internal/inject"
)

type progressModel struct {
	title   string
	events  <-chan inject.Event
	spinner spinner.Model
	prog    progress.Model
	items   []traceItem
	width   int
	done    bool
}

type traceItem struct {
	label  string
	path   string
	status string
}

type eventMsg inject.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders apply progress:
// one row per trace request, in batch order. Rows are addressed by the
// request index carried on each event, so requests sharing a label each keep
// their own row.
func NewProgressModel(title string, requests []inject.Request, events <-chan inject.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76 // Default width

	items := make([]traceItem, 0, len(requests))
	for _, req := range requests {
		items = append(items, traceItem{label: req.Label, path: req.Path, status: "queued"})
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(inject.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	labelWidth := 24
	pathWidth := m.width - statusWidth - labelWidth - 6
	if pathWidth < 20 {
		pathWidth = 20
	}

	for _, item := range m.items {
		label := truncate(item.label, labelWidth)
		path := truncate(item.path, pathWidth)
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%12s", item.status))
		fmt.Fprintf(&b, "  %s %-*s %s\n", statusStyled, labelWidth, label, path)
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")

	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev inject.Event) tea.Cmd {
	if ev.Index < 0 || ev.Index >= len(m.items) {
		return nil
	}
	m.items[ev.Index].status = statusLabel(ev)

	finished := 0
	for _, item := range m.items {
		switch item.status {
		case "inserted", "present", "warning":
			finished++
		}
	}
	if len(m.items) > 0 {
		return m.prog.SetPercent(float64(finished) / float64(len(m.items)))
	}
	return nil
}

func statusLabel(ev inject.Event) string {
	switch ev.Status {
	case inject.StatusQueued:
		return "queued"
	case inject.StatusWorking:
		return "splicing"
	case inject.StatusInserted:
		return "inserted"
	case inject.StatusPresent:
		return "present"
	case inject.StatusWarning:
		return "warning"
	default:
		return ""
	}
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "inserted":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "warning":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "splicing":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
