package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const toastDuration = 4 * time.Second

// showToastMsg displays a transient notification.
type showToastMsg struct {
	message string
	color   lipgloss.Color
}

// dismissToastMsg removes a toast after its duration elapses.
type dismissToastMsg struct {
	id string
}

type toast struct {
	id      string
	message string
	color   lipgloss.Color
}

// toastManager holds the active transient notifications.
type toastManager struct {
	toasts []toast
}

func (tm *toastManager) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case showToastMsg:
		t := toast{
			id:      fmt.Sprintf("toast-%d", time.Now().UnixNano()),
			message: msg.message,
			color:   msg.color,
		}
		tm.toasts = append(tm.toasts, t)
		return tea.Tick(toastDuration, func(time.Time) tea.Msg {
			return dismissToastMsg{id: t.id}
		})

	case dismissToastMsg:
		kept := tm.toasts[:0]
		for _, t := range tm.toasts {
			if t.id != msg.id {
				kept = append(kept, t)
			}
		}
		tm.toasts = kept
	}
	return nil
}

func (tm *toastManager) View(width int) string {
	if len(tm.toasts) == 0 {
		return ""
	}
	var views []string
	for _, t := range tm.toasts {
		style := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.color).
			Padding(0, 1).
			MaxWidth(max(width/2, 30))
		views = append(views, style.Render(t.message))
	}
	return strings.Join(views, "\n")
}

// Overlay paints the active toasts over the top-right corner of background.
func (tm *toastManager) Overlay(background string, width int) string {
	view := tm.View(width)
	if view == "" {
		return background
	}
	x := max(width-lipgloss.Width(view)-2, 0)
	return placeOverlay(x, 1, view, background)
}

// placeOverlay replaces runes of background with overlay starting at (x, y).
func placeOverlay(x, y int, overlay, background string) string {
	bgLines := strings.Split(background, "\n")
	for i, overlayLine := range strings.Split(overlay, "\n") {
		idx := y + i
		if idx < 0 || idx >= len(bgLines) {
			continue
		}
		lineRunes := []rune(bgLines[idx])
		for j, r := range []rune(overlayLine) {
			if x+j < len(lineRunes) {
				lineRunes[x+j] = r
			}
		}
		bgLines[idx] = string(lineRunes)
	}
	return strings.Join(bgLines, "\n")
}

func infoToast(message string) tea.Cmd {
	return func() tea.Msg {
		return showToastMsg{message: message, color: lipgloss.Color("39")}
	}
}

func successToast(message string) tea.Cmd {
	return func() tea.Msg {
		return showToastMsg{message: message, color: lipgloss.Color("42")}
	}
}

func errorToast(message string) tea.Cmd {
	return func() tea.Msg {
		return showToastMsg{message: message, color: lipgloss.Color("196")}
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
