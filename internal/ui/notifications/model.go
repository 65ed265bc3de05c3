package notifications

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/stockwatch/internal/keys"
	"github.com/nhle/stockwatch/internal/model"
	"github.com/nhle/stockwatch/internal/theme"
)

// FeedUpdatedMsg carries the latest notification feed to display.
type FeedUpdatedMsg struct {
	Notifications []model.Notification
}

// MarkReadMsg is sent when the user marks the selected entry read.
type MarkReadMsg struct {
	ID string
}

// MarkAllReadMsg is sent when the user marks every entry read.
type MarkAllReadMsg struct{}

// Model is the notification feed view component.
type Model struct {
	list   list.Model
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates a new notification feed model.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Notifications"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Update handles messages for the notification feed view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FeedUpdatedMsg:
		items := make([]list.Item, len(msg.Notifications))
		for i, n := range msg.Notifications {
			items[i] = NotificationItem{Notification: n}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.MarkRead):
			item, ok := m.list.SelectedItem().(NotificationItem)
			if !ok || item.Notification.Read {
				return m, nil
			}
			id := item.Notification.ID
			return m, func() tea.Msg {
				return MarkReadMsg{ID: id}
			}

		case key.Matches(msg, m.keys.MarkAllRead):
			return m, func() tea.Msg {
				return MarkAllReadMsg{}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the notification feed.
func (m Model) View() string {
	return m.list.View()
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
