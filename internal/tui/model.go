// Package tui renders sensor snapshots in the terminal.
package tui

import (
	"fmt"
	"strings"
	"time"

	"codeberg.org/mutker/zensensors/internal/errors"
	"codeberg.org/mutker/zensensors/internal/poller"
	"codeberg.org/mutker/zensensors/internal/sensor"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	colorTitle   = "#BD93F9"
	colorMuted   = "#6272A4"
	colorError   = "#FF5555"
	colorHeader  = "#8BE9FD"
	coresHeight  = 16
	sensorHeight = 9
)

type resultMsg poller.Result

type closedMsg struct{}

type styles struct {
	title, muted, error, panel lipgloss.Style
}

func newStyles() styles {
	return styles{
		title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorTitle)).
			Bold(true),
		muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorMuted)),
		error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorError)).
			Bold(true),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorMuted)).
			Padding(0, 1),
	}
}

// Model is the bubbletea model fed by a poller's result channel.
type Model struct {
	results <-chan poller.Result
	host    Host
	styles  styles

	cores   table.Model
	sensors table.Model

	snapshot *sensor.Snapshot
	lastErr  error
	updated  time.Time
	polls    int
}

func New(results <-chan poller.Result, h Host) Model {
	tableStyles := table.DefaultStyles()
	tableStyles.Header = tableStyles.Header.
		Foreground(lipgloss.Color(colorHeader)).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true)

	cores := table.New(
		table.WithColumns([]table.Column{
			{Title: "Core", Width: 5},
			{Title: "MHz", Width: 10},
		}),
		table.WithHeight(coresHeight),
		table.WithFocused(true),
		table.WithStyles(tableStyles),
	)

	sensors := table.New(
		table.WithColumns([]table.Column{
			{Title: "Sensor", Width: 8},
			{Title: "Value", Width: 9},
			{Title: "Unit", Width: 4},
		}),
		table.WithHeight(sensorHeight),
		table.WithStyles(tableStyles),
	)

	return Model{
		results: results,
		host:    h,
		styles:  newStyles(),
		cores:   cores,
		sensors: sensors,
	}
}

// waitForResult blocks on the mailbox off the UI goroutine.
func waitForResult(results <-chan poller.Result) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-results
		if !ok {
			return closedMsg{}
		}

		return resultMsg(res)
	}
}

func (m Model) Init() tea.Cmd {
	return waitForResult(m.results)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case resultMsg:
		m.apply(poller.Result(msg))
		return m, waitForResult(m.results)
	case closedMsg:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.cores, cmd = m.cores.Update(msg)

	return m, cmd
}

// apply keeps the last good snapshot on screen when a poll fails.
func (m *Model) apply(res poller.Result) {
	m.polls++
	m.updated = res.At

	if res.Err != nil {
		m.lastErr = res.Err
		return
	}

	m.lastErr = nil
	m.snapshot = res.Snapshot
	if res.Snapshot != nil && res.Snapshot.CPU != nil {
		m.cores.SetRows(CoreRows(res.Snapshot.CPU.Cores))
		m.sensors.SetRows(TemperatureRows(res.Snapshot.CPU.Temperature))
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.title.Render("Sensors"))
	b.WriteString("  ")
	b.WriteString(m.styles.muted.Render(m.host.String()))
	b.WriteString("\n\n")

	if m.snapshot == nil && m.lastErr == nil {
		b.WriteString(m.styles.muted.Render("Waiting for first reading..."))
		b.WriteString("\n")
	}

	if m.snapshot != nil {
		family := ""
		if m.snapshot.CPU != nil && m.snapshot.CPU.Temperature != nil {
			family = m.snapshot.CPU.Temperature.Family()
		}
		b.WriteString(lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.styles.panel.Render(m.cores.View()),
			" ",
			m.styles.panel.Render(m.styles.muted.Render("CPU "+family)+"\n"+m.sensors.View()),
		))
		b.WriteString("\n")
	}

	if m.lastErr != nil {
		b.WriteString(m.styles.error.Render(describeError(m.lastErr)))
		b.WriteString("\n")
	}

	status := fmt.Sprintf("polls: %d", m.polls)
	if !m.updated.IsZero() {
		status += "  updated: " + m.updated.Format(time.TimeOnly)
	}
	b.WriteString(m.styles.muted.Render(status + "  q: quit"))
	b.WriteString("\n")

	return b.String()
}

func describeError(err error) string {
	if code := errors.CodeOf(err); code != "" {
		return fmt.Sprintf("[%s] %v", code, err)
	}

	return err.Error()
}
