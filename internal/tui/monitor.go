package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kelsos/recall-rebalance/internal/services"
)

const maxLogs = 10

// AllocationRow is one network's current share next to its target
type AllocationRow struct {
	Network     string
	DisplayName string
	Current     float64
	Target      float64
	Value       string
	Within      bool
}

type Model struct {
	title     string
	stage     services.Stage
	progress  float64
	message   string
	rows      []AllocationRow
	logs      []string
	succeeded int
	failed    int
	err       error
	done      bool
	spinner   spinner.Model
	bar       progress.Model
	width     int
	height    int
	quit      bool
}

type StageUpdate struct {
	Stage    services.Stage
	Progress float64
	Message  string
}

type AllocationUpdate struct {
	Rows []AllocationRow
}

type LogMessage struct {
	Message string
}

// RunFinished is sent once the cycle returns
type RunFinished struct {
	Err error
}

func NewModel(title string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	bar := progress.New(progress.WithDefaultGradient())

	return Model{
		title:   title,
		logs:    []string{},
		spinner: sp,
		bar:     bar,
		width:   80,
		height:  24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.handleKeyMsg(msg) {
			m.quit = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m = m.handleWindowSizeMsg(msg)

	case StageUpdate:
		m.stage = msg.Stage
		m.progress = msg.Progress
		m.message = msg.Message

	case AllocationUpdate:
		m.rows = msg.Rows

	case LogMessage:
		m = m.handleLogMessage(msg)

	case RunFinished:
		m.done = true
		m.err = msg.Err
		if msg.Err != nil {
			m = m.handleLogMessage(LogMessage{Message: fmt.Sprintf("❌ Run failed: %v", msg.Err)})
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case progress.FrameMsg:
		progressModel, cmd := m.bar.Update(msg)
		if progressModel, ok := progressModel.(progress.Model); ok {
			m.bar = progressModel
		}
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return true
	}
	return false
}

func (m Model) handleWindowSizeMsg(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.bar.Width = max(msg.Width-50, 10)
	return m
}

func (m Model) handleLogMessage(msg LogMessage) Model {
	switch {
	case strings.HasPrefix(msg.Message, "✅"):
		m.succeeded++
	case strings.HasPrefix(msg.Message, "❌"):
		m.failed++
	}
	m.logs = append(m.logs, fmt.Sprintf("[%s] %s",
		time.Now().Format("15:04:05"), msg.Message))
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
	return m
}

func (m Model) View() string {
	if m.quit {
		return "Shutting down...\n"
	}

	var s strings.Builder

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginBottom(1)

	s.WriteString(headerStyle.Render("⚖️  " + m.title))
	s.WriteString("\n\n")

	summaryStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("244"))

	indicator := m.spinner.View()
	if m.done {
		indicator = "✔"
	}
	summary := fmt.Sprintf("%s %s %s %s | ✅ %d | ❌ %d",
		indicator, getStageIcon(m.stage), stageLabel(m.stage), m.bar.ViewAs(m.progress), m.succeeded, m.failed)
	s.WriteString(summaryStyle.Render(summary))
	if m.message != "" {
		s.WriteString("\n")
		s.WriteString(summaryStyle.Render(m.message))
	}
	s.WriteString("\n\n")

	allocationStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1).
		Width(m.width - 2)

	var allocation strings.Builder
	allocation.WriteString("📊 Allocation (current vs target)\n")
	allocation.WriteString(strings.Repeat("─", 60) + "\n")

	if len(m.rows) == 0 {
		allocation.WriteString("waiting for portfolio...\n")
	}
	for _, row := range m.rows {
		line := fmt.Sprintf("%-10s %s %5.1f%% / %5.1f%% %s",
			truncate(row.DisplayName, 10),
			m.bar.ViewAs(clamp(row.Current)),
			row.Current*100,
			row.Target*100,
			row.Value)

		color := "82"
		if !row.Within {
			color = "214"
		}
		allocation.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(line) + "\n")
	}

	s.WriteString(allocationStyle.Render(allocation.String()))
	s.WriteString("\n\n")

	logSectionStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(m.width - 2).
		Height(maxLogs)

	var logSection strings.Builder
	logSection.WriteString("📝 Recent Logs\n")
	for _, log := range m.logs {
		logSection.WriteString(log + "\n")
	}

	s.WriteString(logSectionStyle.Render(logSection.String()))
	s.WriteString("\n\n")

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	footer := "Press 'q' to quit | Logs: logs/recall-rebalance_*.log"
	if m.done {
		footer = "Run finished, press 'q' to exit | Logs: logs/recall-rebalance_*.log"
	}
	s.WriteString(footerStyle.Render(footer))

	return s.String()
}

func getStageIcon(stage services.Stage) string {
	switch stage {
	case "":
		return "⏸"
	case services.StageFetch:
		return "📡"
	case services.StageConvert:
		return "🔄"
	case services.StageSettle:
		return "⏳"
	case services.StagePlan:
		return "🧮"
	case services.StageRebalance:
		return "⚖️"
	case services.StageReport:
		return "📊"
	case services.StageComplete:
		return "✅"
	default:
		return "❓"
	}
}

func stageLabel(stage services.Stage) string {
	if stage == "" {
		return "idle"
	}
	return string(stage)
}

func clamp(f float64) float64 {
	return min(max(f, 0), 1)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
