package api

import (
	"context"
	"net/url"

	"github.com/nhle/stockwatch/internal/model"
)

// Holdings retrieves the user's portfolio holdings.
func (c *Client) Holdings(ctx context.Context) ([]model.Holding, error) {
	var payloads []holdingPayload
	if err := c.get(ctx, "/portfolio", &payloads); err != nil {
		return nil, err
	}

	holdings := make([]model.Holding, 0, len(payloads))
	for _, p := range payloads {
		holdings = append(holdings, p.toModel())
	}
	return holdings, nil
}

type addHoldingRequest struct {
	Symbol   string  `json:"symbol"`
	Shares   float64 `json:"shares"`
	BuyPrice float64 `json:"buy_price"`
}

// AddHolding records a new position in the portfolio.
func (c *Client) AddHolding(ctx context.Context, symbol string, shares, buyPrice float64) error {
	return c.post(ctx, "/portfolio/holdings", addHoldingRequest{
		Symbol:   symbol,
		Shares:   shares,
		BuyPrice: buyPrice,
	}, nil)
}

// RemoveHolding deletes a position from the portfolio.
func (c *Client) RemoveHolding(ctx context.Context, holdingID string) error {
	return c.delete(ctx, "/portfolio/holdings/"+url.PathEscape(holdingID))
}

// Performance retrieves the backend-computed portfolio summary.
func (c *Client) Performance(ctx context.Context) (*model.Performance, error) {
	var perf model.Performance
	if err := c.get(ctx, "/portfolio/performance", &perf); err != nil {
		return nil, err
	}
	return &perf, nil
}
