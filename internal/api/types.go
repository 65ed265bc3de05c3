package api

import (
	"time"

	"github.com/nhle/stockwatch/internal/model"
)

// notificationPayload mirrors the backend's notification document.
type notificationPayload struct {
	ID        string `json:"_id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Priority  string `json:"priority"`
	Read      bool   `json:"read"`
	Symbol    string `json:"symbol"`
	CreatedAt string `json:"created_at"`
}

func (p notificationPayload) toModel() model.Notification {
	priority := p.Priority
	if priority == "" {
		priority = model.PriorityNormal
	}
	kind := model.NotificationKind(p.Type)
	if kind == "" {
		kind = model.KindInfo
	}
	return model.Notification{
		ID:        p.ID,
		Title:     p.Title,
		Message:   p.Message,
		Kind:      kind,
		Priority:  priority,
		Read:      p.Read,
		Symbol:    p.Symbol,
		CreatedAt: parseTimestamp(p.CreatedAt),
	}
}

// quotePayload mirrors the backend's stock snapshot.
type quotePayload struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	PreviousClose float64 `json:"previous_close"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	DayHigh       float64 `json:"day_high"`
	DayLow        float64 `json:"day_low"`
	Volume        int64   `json:"volume"`
	Exchange      string  `json:"exchange"`
	Sector        string  `json:"sector"`
	IsRealTime    bool    `json:"is_real_time"`
	LastUpdated   string  `json:"last_updated"`
}

func (p quotePayload) toModel() model.Quote {
	return model.Quote{
		Symbol:        p.Symbol,
		Name:          p.Name,
		Price:         p.Price,
		PreviousClose: p.PreviousClose,
		Change:        p.Change,
		ChangePercent: p.ChangePercent,
		DayHigh:       p.DayHigh,
		DayLow:        p.DayLow,
		Volume:        p.Volume,
		Exchange:      p.Exchange,
		Sector:        p.Sector,
		RealTime:      p.IsRealTime,
		UpdatedAt:     parseTimestamp(p.LastUpdated),
	}
}

// watchlistPayload mirrors a watchlist entry document.
type watchlistPayload struct {
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
	AddedAt string `json:"added_at"`
}

func (p watchlistPayload) toModel() model.WatchlistItem {
	return model.WatchlistItem{
		Symbol:  p.Symbol,
		Name:    p.Name,
		AddedAt: parseTimestamp(p.AddedAt),
	}
}

// holdingPayload mirrors a portfolio holding document.
type holdingPayload struct {
	ID           string  `json:"_id"`
	Symbol       string  `json:"symbol"`
	Shares       float64 `json:"shares"`
	BuyPrice     float64 `json:"buy_price"`
	CurrentPrice float64 `json:"current_price"`
	AddedAt      string  `json:"added_at"`
}

func (p holdingPayload) toModel() model.Holding {
	return model.Holding{
		ID:           p.ID,
		Symbol:       p.Symbol,
		Shares:       p.Shares,
		BuyPrice:     p.BuyPrice,
		CurrentPrice: p.CurrentPrice,
		AddedAt:      parseTimestamp(p.AddedAt),
	}
}

// parseTimestamp decodes the backend's ISO-8601 timestamps, which are
// emitted both with and without a timezone suffix. A zero time is
// returned for empty or unparseable input; timestamps only drive
// display ordering and formatting.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
