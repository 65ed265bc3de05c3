package portfolio

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/stockwatch/internal/keys"
	"github.com/nhle/stockwatch/internal/model"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func twoHoldings() HoldingsLoadedMsg {
	return HoldingsLoadedMsg{Holdings: []model.Holding{
		{ID: "h1", Symbol: "AAPL", Shares: 10, BuyPrice: 150, CurrentPrice: 160},
		{ID: "h2", Symbol: "TSLA", Shares: 5, BuyPrice: 200, CurrentPrice: 190},
	}}
}

func TestParsePositionInput(t *testing.T) {
	msg, err := parsePositionInput("  aapl 10 150.50 ")
	require.NoError(t, err)
	assert.Equal(t, AddHoldingMsg{Symbol: "AAPL", Shares: 10, BuyPrice: 150.50}, msg)

	_, err = parsePositionInput("AAPL 10")
	assert.Error(t, err, "all three fields are required")

	_, err = parsePositionInput("AAPL ten 150")
	assert.Error(t, err, "shares must parse")

	_, err = parsePositionInput("AAPL 10 -5")
	assert.Error(t, err, "price must be positive")
}

func TestRemoveEmitsSelectedHoldingID(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 24)
	m, _ = m.Update(twoHoldings())

	m, _ = m.Update(keyRunes("j"))
	m, cmd := m.Update(keyRunes("d"))

	require.NotNil(t, cmd)
	assert.Equal(t, RemoveHoldingMsg{ID: "h2"}, cmd())
}

func TestAddPromptEmitsParsedPosition(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 24)
	m, _ = m.Update(twoHoldings())

	m, _ = m.Update(keyRunes("a"))
	require.True(t, m.InAddMode())

	for _, r := range "msft 3 410" {
		m, _ = m.Update(keyRunes(string(r)))
	}
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.Equal(t, AddHoldingMsg{Symbol: "MSFT", Shares: 3, BuyPrice: 410}, cmd())
	assert.False(t, m.InAddMode())
}

func TestCursorClampsWhenHoldingsShrink(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 24)
	m, _ = m.Update(twoHoldings())
	m, _ = m.Update(keyRunes("j"))

	m, _ = m.Update(HoldingsLoadedMsg{Holdings: []model.Holding{
		{ID: "h1", Symbol: "AAPL", Shares: 10, BuyPrice: 150, CurrentPrice: 160},
	}})
	m, cmd := m.Update(keyRunes("d"))

	require.NotNil(t, cmd)
	assert.Equal(t, RemoveHoldingMsg{ID: "h1"}, cmd())
}
