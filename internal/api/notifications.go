package api

import (
	"context"
	"fmt"

	"github.com/nhle/stockwatch/internal/model"
)

// Notifications retrieves the user's notification list, newest first.
// Server order is authoritative.
func (c *Client) Notifications(ctx context.Context, unreadOnly bool) ([]model.Notification, error) {
	var payloads []notificationPayload
	path := fmt.Sprintf("/notifications?unread_only=%t", unreadOnly)
	if err := c.get(ctx, path, &payloads); err != nil {
		return nil, err
	}

	notifications := make([]model.Notification, 0, len(payloads))
	for _, p := range payloads {
		notifications = append(notifications, p.toModel())
	}
	return notifications, nil
}

// UnreadCount retrieves the server's authoritative unread count.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var count int
	if err := c.get(ctx, "/notifications/unread/count", &count); err != nil {
		return 0, err
	}
	return count, nil
}

// MarkRead marks a single notification as read on the server.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	return c.put(ctx, "/notifications/"+id+"/read", nil, nil)
}

type createAlertRequest struct {
	Symbol      string  `json:"symbol"`
	TargetPrice float64 `json:"target_price"`
	AlertType   string  `json:"alert_type"`
}

// CreateAlert registers a server-side price alert for symbol.
// alertType is "above" or "below".
func (c *Client) CreateAlert(ctx context.Context, symbol string, targetPrice float64, alertType string) error {
	return c.post(ctx, "/alerts", createAlertRequest{
		Symbol:      symbol,
		TargetPrice: targetPrice,
		AlertType:   alertType,
	}, nil)
}
