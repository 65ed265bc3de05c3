package model

import "time"

// WatchlistItem is a single tracked instrument on the user's watchlist.
type WatchlistItem struct {
	// Symbol is the ticker symbol.
	Symbol string `json:"symbol"`

	// Name is the display name recorded when the symbol was added.
	Name string `json:"name"`

	// AddedAt is when the symbol was added to the watchlist.
	AddedAt time.Time `json:"added_at"`
}
