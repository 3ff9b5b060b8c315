// Package tui renders the deployment pipeline as a live terminal view:
// a stage list with status icons, a scrolling log, and the final result.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/slipway-sh/slipway/pipeline"
)

// logTail is the number of trailing log entries shown while running.
const logTail = 12

// DeployModel is the bubbletea model for a single pipeline run. It
// starts the run, subscribes to state change signals, and re-reads the
// authoritative snapshot on every signal.
type DeployModel struct {
	styles  *StyleSet
	runner  *pipeline.Runner
	input   pipeline.Input
	version string

	sub       <-chan struct{}
	cancelSub func()
	snap      pipeline.Snapshot
	spin      spinner.Model
	width     int
	done      bool
	runErr    error
}

// NewDeployModel creates the deploy view for the given runner and input.
func NewDeployModel(theme TermTheme, runner *pipeline.Runner, in pipeline.Input, version string) DeployModel {
	styles := NewStyleSet(theme)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Accent)

	sub, cancel := runner.State().Subscribe()
	return DeployModel{
		styles:    styles,
		runner:    runner,
		input:     in,
		version:   version,
		sub:       sub,
		cancelSub: cancel,
		snap:      runner.State().Snapshot(),
		spin:      sp,
		width:     80,
	}
}

// Init starts the spinner, the pipeline run, and the change listener.
func (m DeployModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.startRun(), m.waitForChange())
}

func (m DeployModel) startRun() tea.Cmd {
	return func() tea.Msg {
		return RunDoneMsg{Err: m.runner.Run(context.Background(), m.input)}
	}
}

func (m DeployModel) waitForChange() tea.Cmd {
	sub := m.sub
	return func() tea.Msg {
		<-sub
		return StateChangedMsg{}
	}
}

// Update handles messages.
func (m DeployModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancelSub()
			return m, tea.Quit
		case "q", "enter", "esc":
			if m.done {
				return m, tea.Quit
			}
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case StateChangedMsg:
		m.snap = m.runner.State().Snapshot()
		return m, m.waitForChange()

	case RunDoneMsg:
		m.done = true
		m.runErr = msg.Err
		m.snap = m.runner.State().Snapshot()
		m.cancelSub()
		return m, tea.Quit
	}
	return m, nil
}

// View renders the banner, stage list, log tail, and outcome.
func (m DeployModel) View() string {
	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(RenderBanner(m.styles, m.version, m.width))

	for _, st := range m.snap.Stages {
		var icon string
		var labelStyle lipgloss.Style
		switch st.Status {
		case pipeline.StatusRunning:
			icon = m.spin.View()
			labelStyle = m.styles.PrimaryTxt.Bold(true)
		case pipeline.StatusSuccess:
			icon = m.styles.SuccessTxt.Render("✓")
			labelStyle = m.styles.SuccessTxt
		case pipeline.StatusError:
			icon = m.styles.ErrorTxt.Render("✗")
			labelStyle = m.styles.ErrorTxt
		default:
			icon = m.styles.DimTxt.Render("·")
			labelStyle = m.styles.DimTxt
		}
		fmt.Fprintf(&out, "  %s %s\n", icon, labelStyle.Render(st.Label))
	}
	out.WriteString("\n")

	entries := m.snap.Log
	if !m.done && len(entries) > logTail {
		entries = entries[len(entries)-logTail:]
	}
	for _, e := range entries {
		ts := m.styles.DimTxt.Render(e.Time.Format("15:04:05"))
		fmt.Fprintf(&out, "  %s %s\n", ts, m.entryStyle(e.Kind).Render(e.Message))
	}

	out.WriteString("\n" + m.footer() + "\n")
	return out.String()
}

func (m DeployModel) entryStyle(k pipeline.Kind) lipgloss.Style {
	switch k {
	case pipeline.KindSuccess:
		return m.styles.SuccessTxt
	case pipeline.KindError:
		return m.styles.ErrorTxt
	case pipeline.KindWarning:
		return m.styles.WarningTxt
	default:
		return m.styles.SecondaryTxt
	}
}

func (m DeployModel) footer() string {
	switch {
	case !m.done:
		if cur, ok := m.snap.CurrentStage(); ok {
			return "  " + m.styles.DimTxt.Render(fmt.Sprintf("deploying %s — %s", m.input.Project, strings.ToLower(cur.Label)))
		}
		return "  " + m.styles.DimTxt.Render("deploying "+m.input.Project)
	case m.snap.Result != "":
		return "  " + m.styles.ResultBox.Render("Published: "+m.styles.AccentTxt.Render(m.snap.Result))
	case m.snap.Failure != "":
		return "  " + m.styles.ErrorTxt.Render("Deployment failed: "+m.snap.Failure)
	default:
		return "  " + m.styles.ErrorTxt.Render("Deployment ended unexpectedly (see log)")
	}
}

// Err returns the run's terminal error, if any.
func (m DeployModel) Err() error { return m.runErr }

// Done reports whether the run reached a terminal outcome.
func (m DeployModel) Done() bool { return m.done }
