// Package tui implements the encodemgrtop operator dashboard: a Bubble
// Tea program that polls Manager.Stats and listens on an events.Broadcaster
// subscription to render queue depth, gate occupancy, and a scrolling feed
// of recent job lifecycle events.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"encodemgr/events"
	"encodemgr/manager"
)

const (
	statsPollInterval = 500 * time.Millisecond
	feedMaxLines      = 12
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	panelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	heldStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Bold(true)
)

// Run starts the dashboard against mgr, subscribing to broadcaster for the
// live event feed. It blocks until the user quits (q or ctrl+c).
func Run(mgr *manager.Manager, broadcaster *events.Broadcaster) error {
	sub, unsubscribe := broadcaster.Subscribe()
	defer unsubscribe()

	m := model{mgr: mgr, sub: sub}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type model struct {
	mgr   *manager.Manager
	sub   <-chan events.Event
	stats manager.Stats
	feed  []string
	width int
}

type statsTickMsg manager.Stats

func pollStatsCmd(mgr *manager.Manager) tea.Cmd {
	return tea.Tick(statsPollInterval, func(time.Time) tea.Msg {
		return statsTickMsg(mgr.Stats())
	})
}

func listenCmd(sub <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-sub
		if !ok {
			return nil
		}
		return e
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(pollStatsCmd(m.mgr), listenCmd(m.sub))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
		return m, nil

	case statsTickMsg:
		m.stats = manager.Stats(msg)
		return m, pollStatsCmd(m.mgr)

	case events.Event:
		m.feed = appendFeedLine(m.feed, renderEvent(msg))
		return m, listenCmd(m.sub)

	default:
		return m, nil
	}
}

func appendFeedLine(feed []string, line string) []string {
	feed = append(feed, line)
	if len(feed) > feedMaxLines {
		feed = feed[len(feed)-feedMaxLines:]
	}
	return feed
}

func renderEvent(e events.Event) string {
	switch e.Kind {
	case events.KindAddEncode:
		return mutedStyle.Render(fmt.Sprintf("enqueued  job=%d", e.JobID))
	case events.KindFinishEncode:
		return okStyle.Render(fmt.Sprintf("finished  recordedId=%d output=%s removeOriginal=%v",
			e.Finish.RecordedID, e.Finish.FullOutputPath, e.Finish.RemoveOriginal))
	case events.KindErrorEncode:
		return errStyle.Render("failed")
	case events.KindProgress:
		if e.Progress == nil {
			return mutedStyle.Render(fmt.Sprintf("progress  job=%d", e.JobID))
		}
		return mutedStyle.Render(fmt.Sprintf("progress  job=%d frame=%d speed=%.2fx", e.JobID, e.Progress.Frame, e.Progress.Speed))
	default:
		return mutedStyle.Render("event")
	}
}

func (m model) View() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	header := titleStyle.Render("encodemgrtop") + "  " +
		mutedStyle.Render("q: quit")

	gate := mutedStyle.Render("gate: free")
	if m.stats.GateHeld {
		gate = heldStyle.Render(" gate held ")
	}

	statsLine := fmt.Sprintf("waiting=%d  running=%d  gateQueueDepth=%d  %s",
		m.stats.Waiting, m.stats.Running, m.stats.GateQueueDepth, gate)
	statsPanel := panelStyle.Width(width - 2).Render(statsLine)

	feedBody := "(no events yet)"
	if len(m.feed) > 0 {
		feedBody = strings.Join(m.feed, "\n")
	}
	feedPanel := panelStyle.Width(width - 2).Render(feedBody)

	return lipgloss.JoinVertical(lipgloss.Left, header, statsPanel, feedPanel)
}
