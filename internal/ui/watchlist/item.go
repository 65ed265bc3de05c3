package watchlist

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/stockwatch/internal/model"
	"github.com/nhle/stockwatch/internal/theme"
)

// QuoteItem wraps a model.Quote so it can be used in a bubbles/list.
type QuoteItem struct {
	Quote model.Quote
}

// FilterValue returns the string used for fuzzy filtering.
func (i QuoteItem) FilterValue() string { return i.Quote.Symbol }

// Title returns the symbol for the list.
func (i QuoteItem) Title() string { return i.Quote.Symbol }

// Description returns a short summary line for the list.
func (i QuoteItem) Description() string {
	return fmt.Sprintf("%s %.2f", i.Quote.Name, i.Quote.Price)
}

// ItemDelegate implements list.ItemDelegate for rendering quote rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single quote line: symbol, price, change, and the
// live / delayed data badge.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	qi, ok := item.(QuoteItem)
	if !ok {
		return
	}

	q := qi.Quote

	symbol := fmt.Sprintf("%-6s", q.Symbol)
	price := fmt.Sprintf("%10.2f", q.Price)
	change := theme.PriceStyle(q.Change).Render(
		fmt.Sprintf("%+8.2f (%+.2f%%)", q.Change, q.ChangePercent),
	)

	badge := "delayed"
	if q.RealTime {
		badge = "live"
	}
	badgeRendered := theme.LiveBadgeStyle(q.RealTime).Render(badge)

	updated := theme.DimmedStyle.Render(relativeTime(q.UpdatedAt))

	line := fmt.Sprintf("%s %s  %s  %s  %s", symbol, price, change, badgeRendered, updated)

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
