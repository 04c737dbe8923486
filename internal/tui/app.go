// Package tui renders the dashboard: session history sidebar, upload control
// and live result panel. It is a pure view over the orchestrator's display
// state; all analysis work happens in the orchestrator.
package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/veriscope/veriscope/internal/analysis"
	"github.com/veriscope/veriscope/internal/app"
	"github.com/veriscope/veriscope/internal/detection"
	"github.com/veriscope/veriscope/internal/events"
	"github.com/veriscope/veriscope/internal/export"
	"github.com/veriscope/veriscope/internal/watch"
)

const sidebarWidth = 38

type analysisDoneMsg struct {
	session *detection.Session
	err     error
}

type orchUpdateMsg events.Event[analysis.Update]

type healthTickMsg struct{}

type inboxFileMsg struct {
	path string
}

type exportDoneMsg struct {
	dir   string
	count int
	err   error
}

// Model is the dashboard's bubbletea model.
type Model struct {
	app     *app.App
	orch    *analysis.Orchestrator
	watcher *watch.InboxWatcher

	sessionList list.Model
	picker      filepicker.Model
	spinner     spinner.Model
	toasts      toastManager

	updates <-chan events.Event[analysis.Update]
	cancel  context.CancelFunc

	width      int
	height     int
	busy       bool
	online     bool
	showPicker bool
	quitting   bool
}

func New(application *app.App, watcher *watch.InboxWatcher) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	fp := filepicker.New()
	fp.AllowedTypes = []string{".png", ".jpg", ".jpeg", ".mp4", ".avi"}
	fp.CurrentDirectory, _ = filepath.Abs(".")

	sessions, err := application.Orchestrator.Sessions()
	if err != nil {
		sessions = nil
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Model{
		app:         application,
		orch:        application.Orchestrator,
		watcher:     watcher,
		sessionList: newSessionList(sessions),
		picker:      fp,
		spinner:     sp,
		updates:     application.Orchestrator.Subscribe(ctx),
		cancel:      cancel,
	}
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		m.waitForUpdate(),
		m.healthTick(),
	}
	if m.watcher != nil {
		cmds = append(cmds, m.waitForInboxFile())
	}
	return tea.Batch(cmds...)
}

// waitForUpdate relays orchestrator events into the bubbletea loop.
func (m *Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.updates
		if !ok {
			return nil
		}
		return orchUpdateMsg(ev)
	}
}

func (m *Model) healthTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return healthTickMsg{}
	})
}

func (m *Model) waitForInboxFile() tea.Cmd {
	return func() tea.Msg {
		path, ok := <-m.watcher.Files()
		if !ok {
			return nil
		}
		return inboxFileMsg{path: path}
	}
}

// submitCmd runs a full analysis cycle off the UI loop.
func (m *Model) submitCmd(path string) tea.Cmd {
	return func() tea.Msg {
		session, _, err := m.orch.SubmitFile(context.Background(), path)
		return analysisDoneMsg{session: session, err: err}
	}
}

func (m *Model) exportCmd(result *detection.Result, sessionID string) tea.Cmd {
	dir := filepath.Join(m.app.Config.Data.Directory, "exports", sessionID)
	return func() tea.Msg {
		written, err := export.Heatmaps(result, dir)
		return exportDoneMsg{dir: dir, count: len(written), err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sessionList.SetSize(sidebarWidth-2, m.height-4)
		m.picker.Height = m.height - 6
		return m, nil

	case tea.KeyMsg:
		if m.showPicker {
			return m.updatePicker(msg)
		}
		// While the filter input is open, keystrokes belong to the list.
		if m.sessionList.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			m.cancel()
			return m, tea.Quit

		case key.Matches(msg, keys.Upload):
			if m.busy {
				return m, errorToast("An analysis is already running")
			}
			m.showPicker = true
			return m, m.picker.Init()

		case key.Matches(msg, keys.Select):
			if item, ok := m.sessionList.SelectedItem().(sessionItem); ok {
				return m, m.selectSession(item.session.ID)
			}
			return m, nil

		case key.Matches(msg, keys.Delete):
			if item, ok := m.sessionList.SelectedItem().(sessionItem); ok {
				return m, m.deleteSession(item.session.ID)
			}
			return m, nil

		case key.Matches(msg, keys.Export):
			snap := m.orch.Snapshot()
			if snap.Result == nil || snap.SelectedID == "" {
				return m, infoToast("Nothing to export")
			}
			if len(snap.Result.Heatmaps) == 0 {
				return m, infoToast("This result has no heatmaps")
			}
			return m, m.exportCmd(snap.Result, snap.SelectedID)
		}

	case analysisDoneMsg:
		m.busy = false
		cmds = append(cmds, m.refreshSessions())
		if msg.err != nil {
			cmds = append(cmds, errorToast(msg.err.Error()))
		} else {
			cmds = append(cmds, successToast(fmt.Sprintf("Analysis complete: %s", msg.session.Name)))
		}
		return m, tea.Batch(cmds...)

	case orchUpdateMsg:
		// Display state lives in the orchestrator; the event only wakes the
		// view. Keep listening.
		return m, m.waitForUpdate()

	case healthTickMsg:
		m.online = m.app.Monitor.Online()
		return m, m.healthTick()

	case inboxFileMsg:
		cmds = append(cmds, m.waitForInboxFile())
		if m.busy {
			cmds = append(cmds, errorToast(fmt.Sprintf("Skipped %s: analysis already running", filepath.Base(msg.path))))
		} else {
			m.busy = true
			cmds = append(cmds, infoToast(fmt.Sprintf("Analyzing %s from inbox...", filepath.Base(msg.path))))
			cmds = append(cmds, m.submitCmd(msg.path))
		}
		return m, tea.Batch(cmds...)

	case exportDoneMsg:
		if msg.err != nil {
			return m, errorToast(fmt.Sprintf("Export failed: %v", msg.err))
		}
		return m, successToast(fmt.Sprintf("Wrote %d file(s) to %s", msg.count, msg.dir))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case showToastMsg, dismissToastMsg:
		return m, m.toasts.Update(msg)
	}

	// The picker reads directories via its own messages, which must reach it
	// even when they are not key presses.
	if m.showPicker {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.sessionList, cmd = m.sessionList.Update(msg)
	return m, cmd
}

func (m *Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Cancel) {
		m.showPicker = false
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if selected, path := m.picker.DidSelectFile(msg); selected {
		m.showPicker = false
		m.busy = true
		return m, tea.Batch(cmd,
			infoToast(fmt.Sprintf("Uploading %s...", filepath.Base(path))),
			m.submitCmd(path))
	}
	return m, cmd
}

func (m *Model) selectSession(id string) tea.Cmd {
	_, err := m.orch.SelectSession(id)
	if errors.Is(err, analysis.ErrResultMissing) {
		return errorToast("Stored result for this session is missing")
	}
	if err != nil {
		return errorToast(err.Error())
	}
	return nil
}

func (m *Model) deleteSession(id string) tea.Cmd {
	if err := m.orch.DeleteSession(id); err != nil {
		return errorToast(err.Error())
	}
	return tea.Batch(m.refreshSessions(), successToast("Session deleted"))
}

// refreshSessions reloads the sidebar from the store.
func (m *Model) refreshSessions() tea.Cmd {
	sessions, err := m.orch.Sessions()
	if err != nil {
		return errorToast(err.Error())
	}
	return m.sessionList.SetItems(sessionItems(sessions))
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	header := m.renderHeader()

	var body string
	if m.showPicker {
		body = panelStyle.Render(
			titleStyle.Render("Select media to analyze") + "\n\n" + m.picker.View())
	} else {
		sidebar := sidebarStyle.Height(m.height - 3).Render(m.sessionList.View())
		panel := m.renderResultPanel(m.width-sidebarWidth-2, m.height-3)
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, panel)
	}

	footer := helpStyle.Render(" u upload · enter show · x delete · e export · / filter · q quit")

	view := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	return m.toasts.Overlay(view, m.width)
}

func (m *Model) renderHeader() string {
	badge := offlineBadge.Render("OFFLINE")
	if m.online {
		badge = onlineBadge.Render("ONLINE")
	}
	title := headerStyle.Render("VERISCOPE · deepfake analysis")
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(badge)
	if gap < 1 {
		gap = 1
	}
	return title + lipgloss.NewStyle().Width(gap).Render("") + badge
}

// Run starts the dashboard and blocks until it exits.
func Run(application *app.App, watcher *watch.InboxWatcher) error {
	model := New(application, watcher)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running dashboard: %w", err)
	}
	return nil
}
