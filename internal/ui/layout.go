package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/stockwatch/internal/theme"
)

// Layout sizes and renders the chrome around the active panel: a
// header carrying the unread badge and stream state, an optional toast
// banner below it, and the key-hint status bar at the bottom.
type Layout struct {
	Width  int
	Height int
}

// chromeRows is the header row plus the status bar row.
const chromeRows = 2

// NewLayout creates a Layout for the given terminal dimensions.
func NewLayout(width, height int) Layout {
	return Layout{Width: width, Height: height}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available to the active panel.
func (l Layout) ContentHeight() int {
	return l.Height - chromeRows
}

// RenderHeader draws the title bar: the application title, an unread
// notification badge when any are pending, and the connection state
// right-aligned.
func (l Layout) RenderHeader(title string, unread int, connStatus string) string {
	left := theme.HeaderStyle.Render(title)
	if unread > 0 {
		left += theme.UnreadBadgeStyle.Render(fmt.Sprintf("%d unread", unread))
	}
	right := theme.HeaderStyle.Align(lipgloss.Right).Render(connStatus)
	return l.spread(left, right, theme.HeaderStyle)
}

// RenderStatusBar draws the bottom bar with key hints or transient
// action feedback.
func (l Layout) RenderStatusBar(hints string) string {
	return l.spread(theme.StatusBarStyle.Render(hints), "", theme.StatusBarStyle)
}

// RenderFrame stacks the chrome around the panel content. An empty
// toast renders nothing between the header and the content.
func (l Layout) RenderFrame(header, toast, content, statusBar string) string {
	rows := make([]string, 0, 4)
	rows = append(rows, header)
	if toast != "" {
		rows = append(rows, theme.ToastStyle.Render("⚠ "+toast))
	}
	rows = append(rows, content, statusBar)
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// spread pads the gap between a left and a right segment to the full
// terminal width using the segment background.
func (l Layout) spread(left, right string, style lipgloss.Style) string {
	gap := l.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	filler := style.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(style.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}
