package model

import "time"

// Quote is a point-in-time snapshot of a single instrument's price
// as reported by the backend.
type Quote struct {
	// Symbol is the ticker symbol (e.g., "AAPL").
	Symbol string `json:"symbol"`

	// Name is the company or instrument display name.
	Name string `json:"name"`

	// Price is the last traded price.
	Price float64 `json:"price"`

	// PreviousClose is the prior session's closing price.
	PreviousClose float64 `json:"previous_close"`

	// Change is the absolute price change versus the previous close.
	Change float64 `json:"change"`

	// ChangePercent is the relative price change versus the previous close.
	ChangePercent float64 `json:"change_percent"`

	// DayHigh and DayLow bound the current session's range.
	DayHigh float64 `json:"day_high"`
	DayLow  float64 `json:"day_low"`

	// Volume is the session's traded volume.
	Volume int64 `json:"volume"`

	// Exchange and Sector are informational metadata.
	Exchange string `json:"exchange"`
	Sector   string `json:"sector"`

	// RealTime reports whether the backend served live data for this
	// quote. Only real-time quotes participate in periodic refresh.
	RealTime bool `json:"is_real_time"`

	// UpdatedAt is when this snapshot was produced.
	UpdatedAt time.Time `json:"last_updated"`
}
