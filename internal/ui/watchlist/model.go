package watchlist

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/stockwatch/internal/keys"
	"github.com/nhle/stockwatch/internal/model"
	"github.com/nhle/stockwatch/internal/theme"
)

// QuotesUpdatedMsg carries the latest quotes to display.
type QuotesUpdatedMsg struct {
	Quotes []model.Quote
}

// AddSymbolMsg is sent when the user submits a symbol to add.
type AddSymbolMsg struct {
	Symbol string
}

// RemoveSymbolMsg is sent when the user removes the selected symbol.
type RemoveSymbolMsg struct {
	Symbol string
}

// AlertRequestMsg is sent when the user asks to set a price alert on
// the selected symbol.
type AlertRequestMsg struct {
	Symbol string
	Price  float64
}

// Model is the watchlist view component.
type Model struct {
	list     list.Model
	keys     *keys.KeyMap
	addMode  bool
	addInput textinput.Model
	width    int
	height   int
}

// New creates a new watchlist model.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Watchlist"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	ai := textinput.New()
	ai.Placeholder = "symbol to add..."
	ai.Prompt = "+ "
	ai.CharLimit = 10

	return Model{
		list:     l,
		keys:     k,
		addInput: ai,
		width:    width,
		height:   height,
	}
}

// Update handles messages for the watchlist view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case QuotesUpdatedMsg:
		items := make([]list.Item, len(msg.Quotes))
		for i, q := range msg.Quotes {
			items[i] = QuoteItem{Quote: q}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		if m.addMode {
			return m.handleAddKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleAddKeys processes key input while the add-symbol prompt is open.
func (m Model) handleAddKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.addMode = false
		symbol := strings.ToUpper(strings.TrimSpace(m.addInput.Value()))
		m.addInput.Reset()
		if symbol == "" {
			return m, nil
		}
		return m, func() tea.Msg {
			return AddSymbolMsg{Symbol: symbol}
		}

	case "esc":
		m.addMode = false
		m.addInput.Reset()
		return m, nil
	}

	var cmd tea.Cmd
	m.addInput, cmd = m.addInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input outside the add prompt.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Add):
		m.addMode = true
		m.addInput.Reset()
		return m, m.addInput.Focus()

	case key.Matches(msg, m.keys.Remove):
		item, ok := m.list.SelectedItem().(QuoteItem)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return RemoveSymbolMsg{Symbol: item.Quote.Symbol}
		}

	case key.Matches(msg, m.keys.Alert):
		item, ok := m.list.SelectedItem().(QuoteItem)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return AlertRequestMsg{Symbol: item.Quote.Symbol, Price: item.Quote.Price}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the watchlist view.
func (m Model) View() string {
	if m.addMode {
		return m.addInput.View() + "\n" + m.list.View()
	}
	return m.list.View()
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.addInput.Width = width - 4
}

// InAddMode reports whether the add-symbol prompt is capturing input.
func (m Model) InAddMode() bool {
	return m.addMode
}

// SelectedSymbol returns the currently highlighted symbol, if any.
func (m Model) SelectedSymbol() (string, bool) {
	item, ok := m.list.SelectedItem().(QuoteItem)
	if !ok {
		return "", false
	}
	return item.Quote.Symbol, true
}
