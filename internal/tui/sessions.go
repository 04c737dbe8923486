package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/veriscope/veriscope/internal/detection"
)

// sessionItem adapts a history entry to the bubbles list. The list's built-in
// filter ("/") gives the session search box.
type sessionItem struct {
	session detection.Session
}

func (i sessionItem) Title() string {
	icon := "🖼"
	if i.session.Type == detection.MediaVideo {
		icon = "🎬"
	}
	return fmt.Sprintf("%s %s", icon, i.session.Name)
}

func (i sessionItem) Description() string {
	verdict := realStyle.Render(string(i.session.Status))
	if i.session.Status == detection.VerdictFake {
		verdict = fakeStyle.Render(string(i.session.Status))
	}
	return fmt.Sprintf("%s · %s", verdict, i.session.Timestamp)
}

func (i sessionItem) FilterValue() string {
	return i.session.Name
}

func newSessionList(sessions []detection.Session) list.Model {
	l := list.New(sessionItems(sessions), list.NewDefaultDelegate(), 0, 0)
	l.Title = "Session History"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	return l
}

func sessionItems(sessions []detection.Session) []list.Item {
	items := make([]list.Item, len(sessions))
	for i, s := range sessions {
		items[i] = sessionItem{session: s}
	}
	return items
}
