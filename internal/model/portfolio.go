package model

import "time"

// Holding is a single position in the user's portfolio.
type Holding struct {
	// ID is the backend's identifier for this holding.
	ID string `json:"id"`

	// Symbol is the ticker symbol of the held instrument.
	Symbol string `json:"symbol"`

	// Shares is the position size.
	Shares float64 `json:"shares"`

	// BuyPrice is the average purchase price per share.
	BuyPrice float64 `json:"buy_price"`

	// CurrentPrice is the latest price known to the backend.
	CurrentPrice float64 `json:"current_price"`

	// AddedAt is when the holding was recorded.
	AddedAt time.Time `json:"added_at"`
}

// Performance summarizes portfolio gain/loss as computed by the
// backend. All aggregation happens server-side; the client only
// displays these figures.
type Performance struct {
	TotalValue      float64 `json:"total_value"`
	TotalCost       float64 `json:"total_cost"`
	GainLoss        float64 `json:"gain_loss"`
	GainLossPercent float64 `json:"gain_loss_percent"`
}
