package portfolio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/stockwatch/internal/keys"
	"github.com/nhle/stockwatch/internal/model"
	"github.com/nhle/stockwatch/internal/theme"
)

// HoldingsLoadedMsg carries the portfolio holdings and the
// backend-computed performance summary.
type HoldingsLoadedMsg struct {
	Holdings    []model.Holding
	Performance *model.Performance
}

// AddHoldingMsg is emitted when the user submits a new position.
type AddHoldingMsg struct {
	Symbol   string
	Shares   float64
	BuyPrice float64
}

// RemoveHoldingMsg is emitted when the user deletes the selected
// position.
type RemoveHoldingMsg struct {
	ID string
}

// Model is the portfolio view component.
type Model struct {
	holdings    []model.Holding
	performance *model.Performance
	keys        *keys.KeyMap
	cursor      int
	addMode     bool
	addInput    textinput.Model
	inputErr    string
	loading     bool
	width       int
	height      int
}

// New creates a new portfolio model.
func New(k *keys.KeyMap, width, height int) Model {
	input := textinput.New()
	input.Placeholder = "SYMBOL SHARES PRICE"
	input.Prompt = "+ "
	input.CharLimit = 40

	return Model{
		keys:     k,
		addInput: input,
		loading:  true,
		width:    width,
		height:   height,
	}
}

// Update handles messages for the portfolio view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case HoldingsLoadedMsg:
		m.holdings = msg.Holdings
		m.performance = msg.Performance
		m.loading = false
		if m.cursor >= len(m.holdings) {
			m.cursor = len(m.holdings) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil

	case tea.KeyMsg:
		if m.addMode {
			return m.handleAddKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

func (m Model) handleAddKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		add, err := parsePositionInput(m.addInput.Value())
		if err != nil {
			m.inputErr = err.Error()
			return m, nil
		}
		m.addMode = false
		m.inputErr = ""
		m.addInput.Reset()
		return m, func() tea.Msg { return add }

	case "esc":
		m.addMode = false
		m.inputErr = ""
		m.addInput.Reset()
		return m, nil
	}

	var cmd tea.Cmd
	m.addInput, cmd = m.addInput.Update(msg)
	return m, cmd
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.holdings)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Add):
		m.addMode = true
		m.addInput.Reset()
		return m, m.addInput.Focus()

	case key.Matches(msg, m.keys.Remove):
		if m.cursor < len(m.holdings) {
			id := m.holdings[m.cursor].ID
			return m, func() tea.Msg { return RemoveHoldingMsg{ID: id} }
		}
	}

	return m, nil
}

// parsePositionInput parses "SYMBOL SHARES PRICE" into an
// AddHoldingMsg.
func parsePositionInput(raw string) (AddHoldingMsg, error) {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) != 3 {
		return AddHoldingMsg{}, fmt.Errorf("expected SYMBOL SHARES PRICE")
	}

	shares, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || shares <= 0 {
		return AddHoldingMsg{}, fmt.Errorf("shares must be a positive number")
	}
	price, err := strconv.ParseFloat(fields[2], 64)
	if err != nil || price <= 0 {
		return AddHoldingMsg{}, fmt.Errorf("price must be a positive number")
	}

	return AddHoldingMsg{
		Symbol:   strings.ToUpper(fields[0]),
		Shares:   shares,
		BuyPrice: price,
	}, nil
}

// InAddMode reports whether the add-position prompt has focus.
func (m Model) InAddMode() bool {
	return m.addMode
}

// View renders the holdings table and the performance summary.
func (m Model) View() string {
	var b strings.Builder

	if m.addMode {
		b.WriteString(m.addInput.View())
		b.WriteString("\n")
		if m.inputErr != "" {
			b.WriteString(theme.DimmedStyle.Render(m.inputErr))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	switch {
	case m.loading:
		b.WriteString(theme.DimmedStyle.Render("Loading portfolio..."))
	case len(m.holdings) == 0:
		b.WriteString(theme.DimmedStyle.Render("No holdings yet. Press 'a' to add a position."))
	default:
		m.renderTable(&b)
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m Model) renderTable(b *strings.Builder) {
	header := fmt.Sprintf("%-6s %10s %12s %12s %12s",
		"SYMBOL", "SHARES", "BUY PRICE", "CURRENT", "GAIN/LOSS")
	b.WriteString(theme.HeaderStyle.Render(header))
	b.WriteString("\n")

	for i, h := range m.holdings {
		gain := (h.CurrentPrice - h.BuyPrice) * h.Shares
		gainRendered := theme.PriceStyle(gain).Render(fmt.Sprintf("%+12.2f", gain))
		row := fmt.Sprintf("%-6s %10.2f %12.2f %12.2f %s",
			h.Symbol, h.Shares, h.BuyPrice, h.CurrentPrice, gainRendered)
		if i == m.cursor && !m.addMode {
			row = theme.SelectedItemStyle.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}

	if m.performance != nil {
		p := m.performance
		summary := fmt.Sprintf("Total %.2f | Cost %.2f | ", p.TotalValue, p.TotalCost)
		gl := theme.PriceStyle(p.GainLoss).Render(
			fmt.Sprintf("%+.2f (%+.2f%%)", p.GainLoss, p.GainLossPercent),
		)
		b.WriteString("\n")
		b.WriteString(theme.BorderStyle.Padding(0, 1).Render(summary + gl))
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
