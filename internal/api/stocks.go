package api

import (
	"context"
	"net/url"
	"strings"

	"github.com/nhle/stockwatch/internal/model"
)

// Quote retrieves the current snapshot for a single symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (*model.Quote, error) {
	var payload quotePayload
	if err := c.get(ctx, "/stock/"+url.PathEscape(symbol), &payload); err != nil {
		return nil, err
	}
	quote := payload.toModel()
	return &quote, nil
}

// Quotes retrieves snapshots for multiple symbols in one request.
func (c *Client) Quotes(ctx context.Context, symbols []string) ([]model.Quote, error) {
	var payloads []quotePayload
	path := "/stocks?symbols=" + url.QueryEscape(strings.Join(symbols, ","))
	if err := c.get(ctx, path, &payloads); err != nil {
		return nil, err
	}

	quotes := make([]model.Quote, 0, len(payloads))
	for _, p := range payloads {
		quotes = append(quotes, p.toModel())
	}
	return quotes, nil
}

// SearchStocks finds instruments matching the query string.
func (c *Client) SearchStocks(ctx context.Context, query string) ([]model.Quote, error) {
	var payloads []quotePayload
	if err := c.get(ctx, "/stocks/search?q="+url.QueryEscape(query), &payloads); err != nil {
		return nil, err
	}

	quotes := make([]model.Quote, 0, len(payloads))
	for _, p := range payloads {
		quotes = append(quotes, p.toModel())
	}
	return quotes, nil
}
